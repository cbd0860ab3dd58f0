package jobdesc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractText(t *testing.T) {
	got, err := Extract("role.txt", []byte("\n  Hiring a Java developer.\n\n\n\nMust collaborate.  \n"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if want := "Hiring a Java developer.\n\nMust collaborate."; got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name, filename string
		data           []byte
		wantMsg        string
	}{
		{"unsupported", "role.rtf", []byte("x"), "unsupported"},
		{"empty", "role.txt", []byte("  \n "), "no text"},
		{"invalid utf8", "role.txt", []byte{0xff, 0xfe}, "UTF-8"},
		{"broken pdf", "role.pdf", []byte("not a pdf"), "failed to parse"},
		{"broken docx", "role.docx", []byte("not a zip"), "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.filename, tt.data)
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %v, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestExtractFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "jd.md")
	if err := os.WriteFile(p, []byte("# Analyst\nSQL and Excel"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ExtractFile(p)
	if err != nil || !strings.Contains(got, "SQL and Excel") {
		t.Fatalf("ExtractFile() = %q, %v", got, err)
	}
}

func TestSupported(t *testing.T) {
	for name, want := range map[string]bool{"a.PDF": true, "a.docx": true, "a.txt": true, "a.xlsx": false, "a": false} {
		if got := Supported(name); got != want {
			t.Errorf("Supported(%q) = %v, want %v", name, got, want)
		}
	}
}
