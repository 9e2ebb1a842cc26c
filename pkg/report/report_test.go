package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/provmap/pkg/errors"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Error(perrors.New(perrors.ErrCodeProvinceNotFound, "province %q not found", "Bali"))
	r.Error(nil)
	r.Warn("skipping connection", "city", "Bogor")

	if got := len(r.Errors()); got != 1 {
		t.Fatalf("len(Errors()) = %d, want 1", got)
	}
	if got := len(r.Warnings()); got != 1 {
		t.Fatalf("len(Warnings()) = %d, want 1", got)
	}

	msgs := r.Messages()
	want := []string{`province "Bali" not found`, "skipping connection"}
	if len(msgs) != len(want) {
		t.Fatalf("Messages() = %v, want %v", msgs, want)
	}
	for i := range want {
		if msgs[i] != want[i] {
			t.Errorf("Messages()[%d] = %q, want %q", i, msgs[i], want[i])
		}
	}
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))

	r.Error(perrors.New(perrors.ErrCodeFileNotFound, "file %s not found", "province_data.json"))
	r.Warn("dangling connection", "city", "Garut")

	out := buf.String()
	for _, want := range []string{"province_data.json", "FILE_NOT_FOUND", "dangling connection", "Garut"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestTee(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	r := Tee(a, b, Discard)
	r.Error(errors.New("boom"))
	r.Warn("careful")

	for i, rec := range []*Recorder{a, b} {
		if len(rec.Errors()) != 1 || len(rec.Warnings()) != 1 {
			t.Errorf("recorder %d: errors=%d warnings=%d, want 1 and 1", i, len(rec.Errors()), len(rec.Warnings()))
		}
	}
}

func TestWarningString(t *testing.T) {
	tests := []struct {
		w    Warning
		want string
	}{
		{Warning{Message: "skipped"}, "skipped"},
		{Warning{Message: "dangling connection skipped", KeyVals: []any{"city", "Bandung", "target", "Sumedang"}}, "dangling connection skipped (city=Bandung, target=Sumedang)"},
		{Warning{Message: "odd", KeyVals: []any{"key"}}, "odd"},
	}
	for _, tt := range tests {
		if got := tt.w.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
