package catalog

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"assessment-rag/internal/models"
)

// Option configures Load.
type Option func(*loader)

type loader struct {
	sheet   string
	fetcher Fetcher
}

// WithSheet selects the worksheet of a spreadsheet catalog. The first sheet is
// used when unset.
func WithSheet(name string) Option {
	return func(l *loader) { l.sheet = name }
}

// WithFetcher sets the object store used for s3:// catalog paths.
func WithFetcher(f Fetcher) Option {
	return func(l *loader) { l.fetcher = f }
}

// Load reads the catalog at path and returns its normalized records. Rows
// without an assessment name are skipped with a warning.
func Load(ctx context.Context, catalogPath string, opts ...Option) ([]models.AssessmentRecord, error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}

	table, err := l.readTable(ctx, catalogPath)
	if err != nil {
		return nil, err
	}
	records, err := FromTable(table)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrDataLoad, catalogPath, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s: no valid rows", models.ErrDataLoad, catalogPath)
	}
	log.Info().Str("path", catalogPath).Int("records", len(records)).Msg("Loaded catalog")
	return records, nil
}

func (l *loader) readTable(ctx context.Context, catalogPath string) ([][]string, error) {
	var (
		data []byte
		ext  string
		err  error
	)
	if bucket, key, ok := splitS3URL(catalogPath); ok {
		if l.fetcher == nil {
			return nil, fmt.Errorf("%w: no object store configured for %s", models.ErrDataLoad, catalogPath)
		}
		data, err = l.fetcher.Fetch(ctx, bucket, key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrDataLoad, err)
		}
		ext = strings.ToLower(path.Ext(key))
	} else {
		ext = strings.ToLower(filepath.Ext(catalogPath))
	}

	var table [][]string
	switch ext {
	case ".csv":
		table, err = readCSV(catalogPath, data)
	case ".xlsx", ".xlsm":
		table, err = readWorkbook(catalogPath, data, l.sheet)
	default:
		return nil, fmt.Errorf("%w: unsupported catalog format: %s", models.ErrDataLoad, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDataLoad, err)
	}
	return table, nil
}

// FromTable converts a header row plus data rows into records.
func FromTable(table [][]string) ([]models.AssessmentRecord, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	columns := make(map[string]int, len(table[0]))
	for i, h := range table[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		if _, dup := columns[h]; !dup {
			columns[h] = i
		}
	}
	var missing []string
	for _, c := range models.RequiredColumns {
		if _, ok := columns[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}

	records := make([]models.AssessmentRecord, 0, len(table)-1)
	for i, row := range table[1:] {
		get := func(col string) string {
			idx := columns[col]
			if idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}
		rec := models.AssessmentRecord{
			Name:          get(models.ColumnName),
			Description:   get(models.ColumnDescription),
			JobLevels:     ParseJobLevels(get(models.ColumnJobLevels)),
			TestType:      get(models.ColumnTestType),
			Duration:      get(models.ColumnLength),
			RemoteTesting: get(models.ColumnRemote),
			Adaptive:      get(models.ColumnAdaptive),
			URL:           get(models.ColumnURL),
		}
		if rec.Name == "" {
			if !isBlank(row) {
				// row 1 is the header
				log.Warn().Int("row", i+2).Msg("Skipping catalog row without assessment name")
			}
			continue
		}
		records = append(records, Normalize(rec))
	}
	return records, nil
}

// Normalize fills defaults for every optional field. It is idempotent.
func Normalize(rec models.AssessmentRecord) models.AssessmentRecord {
	rec.Name = strings.TrimSpace(rec.Name)
	rec.JobLevels = ParseJobLevels(strings.Join(rec.JobLevels, ", "))
	rec.Description = orDefault(rec.Description, models.DefaultDescription)
	rec.TestType = orDefault(rec.TestType, models.DefaultTestType)
	rec.Duration = orDefault(rec.Duration, models.DefaultDuration)
	rec.RemoteTesting = orDefault(rec.RemoteTesting, models.DefaultYesNo)
	rec.Adaptive = orDefault(rec.Adaptive, models.DefaultYesNo)
	rec.URL = strings.TrimSpace(rec.URL)
	return rec
}

// ParseJobLevels splits a "Job Levels" cell on ", " into a de-duplicated list.
// Empty input yields the default level.
func ParseJobLevels(s string) []string {
	seen := make(map[string]struct{})
	var levels []string
	for _, l := range strings.Split(s, ", ") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		levels = append(levels, l)
	}
	if len(levels) == 0 {
		return []string{models.DefaultJobLevel}
	}
	return levels
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
