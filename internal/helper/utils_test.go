package helper

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateUUID(t *testing.T) {
	a, err := GenerateUUID()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("not a uuid: %q", a)
	}
	if b := NewRequestID(); a == b {
		t.Error("ids repeat")
	}
}

func TestPrettyPrint(t *testing.T) {
	var buf bytes.Buffer
	PrettyPrint(&buf, map[string]int{"chunks": 3})
	if got := buf.String(); got != "{\n  \"chunks\": 3\n}\n" {
		t.Errorf("PrettyPrint() = %q", got)
	}

	buf.Reset()
	PrettyPrint(&buf, make(chan int))
	if strings.TrimSpace(buf.String()) != "" {
		t.Errorf("unmarshalable value printed %q", buf.String())
	}
}

func TestCreateParentFolder(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a", "b", "index.gob")
	if err := CreateParentFolder(p); err != nil {
		t.Fatal(err)
	}
	if st, err := os.Stat(filepath.Dir(p)); err != nil || !st.IsDir() {
		t.Errorf("folder not created: %v", err)
	}
}
