package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Out: &buf}
	r.Start(2)
	r.Update(1, "a.pdf")
	r.Update(2, "b.pdf")
	r.Finish()

	out := buf.String()
	for _, want := range []string{"Indexing 2 files", "[1/2] a.pdf", "[2/2] b.pdf", "Indexing complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNewReporterCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter().(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}
}

func TestNop(t *testing.T) {
	var r Reporter = Nop{}
	r.Start(1)
	r.Update(1, "x")
	r.Finish()
}
