package parser

import (
	"regexp"
	"strconv"
	"strings"

	"assessment-rag/internal/models"
)

var thinkRe = regexp.MustCompile(models.ThinkTag)

// parserState tracks the record being built. current is nil until the first
// name marker is seen.
type parserState struct {
	current *models.ParsedAssessment
	result  []models.ParsedAssessment
}

// fieldSetters maps each non-name marker to the field it fills.
var fieldSetters = []struct {
	marker string
	set    func(a *models.ParsedAssessment, v string)
}{
	{models.MarkerURL, func(a *models.ParsedAssessment, v string) { a.URL = v }},
	{models.MarkerAdaptive, func(a *models.ParsedAssessment, v string) { a.Adaptive = v }},
	{models.MarkerDescription, func(a *models.ParsedAssessment, v string) { a.Description = v }},
	{models.MarkerDuration, func(a *models.ParsedAssessment, v string) {
		a.DurationText = v
		a.Duration = ParseDuration(v)
	}},
	{models.MarkerRemote, func(a *models.ParsedAssessment, v string) { a.RemoteTesting = v }},
	{models.MarkerTestType, func(a *models.ParsedAssessment, v string) { a.TestType = v }},
	{models.MarkerKeyFeatures, func(a *models.ParsedAssessment, v string) { a.KeyFeatures = v }},
}

// Parse extracts assessments from marker-formatted model output. It never
// fails: unknown lines are skipped and missing fields take defaults. An empty
// result means the caller should show raw instead.
func Parse(raw string) []models.ParsedAssessment {
	var state parserState
	raw = thinkRe.ReplaceAllString(raw, "")
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		processLine(line, &state)
	}
	state.finalize()
	return state.result
}

func processLine(line string, state *parserState) {
	if v, ok := strings.CutPrefix(line, models.MarkerName); ok {
		state.finalize()
		state.current = &models.ParsedAssessment{Name: strings.TrimSpace(v)}
		return
	}
	if state.current == nil {
		return
	}
	for _, f := range fieldSetters {
		if v, ok := strings.CutPrefix(line, f.marker); ok {
			f.set(state.current, strings.TrimSpace(v))
			return
		}
	}
}

// finalize appends the in-progress record, if any, with defaults applied.
func (s *parserState) finalize() {
	if s.current == nil {
		return
	}
	a := *s.current
	if a.RemoteTesting == "" {
		a.RemoteTesting = models.DefaultYesNo
	}
	if a.Adaptive == "" {
		a.Adaptive = models.DefaultYesNo
	}
	s.result = append(s.result, a)
	s.current = nil
}

// ParseDuration reads the first whitespace-separated token as whole minutes,
// sign included. A token that is not an integer yields 0.
func ParseDuration(s string) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}
