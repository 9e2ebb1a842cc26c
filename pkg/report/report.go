// Package report delivers user-visible errors and warnings to whichever
// interface is in front of the user.
//
// Loader and flattener code never prints. It hands failures to a [Reporter]
// and returns; the CLI plugs in a reporter that writes styled lines to the
// terminal, the HTTP server one that collects messages for the response, and
// tests use [Recorder] to count what was reported.
package report

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/provmap/pkg/errors"
)

// Reporter receives errors and warnings destined for the user.
type Reporter interface {
	// Error reports a failure of the current operation.
	Error(err error)
	// Warn reports a recoverable problem; keyvals follow charmbracelet/log conventions.
	Warn(msg string, keyvals ...any)
}

// Discard is a Reporter that drops everything.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Error(error)         {}
func (discard) Warn(string, ...any) {}

// LogReporter forwards reports to a charmbracelet logger.
type LogReporter struct {
	Logger *log.Logger
}

// NewLogReporter returns a reporter that logs through l, or log.Default() if l is nil.
func NewLogReporter(l *log.Logger) *LogReporter {
	if l == nil {
		l = log.Default()
	}
	return &LogReporter{Logger: l}
}

// Error logs the user message of err along with its code.
func (r *LogReporter) Error(err error) {
	if err == nil {
		return
	}
	r.Logger.Error(perrors.UserMessage(err), "code", perrors.GetCode(err))
}

// Warn logs msg at warning level.
func (r *LogReporter) Warn(msg string, keyvals ...any) {
	r.Logger.Warn(msg, keyvals...)
}

// Warning is a recorded warning.
type Warning struct {
	Message string
	KeyVals []any
}

// String formats the warning as "message (key=value, ...)".
func (w Warning) String() string {
	if len(w.KeyVals) < 2 {
		return w.Message
	}
	var b strings.Builder
	b.WriteString(w.Message)
	b.WriteString(" (")
	for i := 0; i+1 < len(w.KeyVals); i += 2 {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v=%v", w.KeyVals[i], w.KeyVals[i+1])
	}
	b.WriteByte(')')
	return b.String()
}

// Recorder collects reports in memory. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	errors   []error
	warnings []Warning
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Error records err. Nil errors are ignored.
func (r *Recorder) Error(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

// Warn records a warning.
func (r *Recorder) Warn(msg string, keyvals ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, Warning{Message: msg, KeyVals: keyvals})
}

// Errors returns a copy of the recorded errors.
func (r *Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errors...)
}

// Warnings returns a copy of the recorded warnings.
func (r *Recorder) Warnings() []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Warning(nil), r.warnings...)
}

// Messages returns the user messages of all recorded errors followed by all warnings.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.errors)+len(r.warnings))
	for _, err := range r.errors {
		out = append(out, perrors.UserMessage(err))
	}
	for _, w := range r.warnings {
		out = append(out, w.Message)
	}
	return out
}

// Tee fans reports out to several reporters.
func Tee(rs ...Reporter) Reporter {
	return tee(rs)
}

type tee []Reporter

func (t tee) Error(err error) {
	for _, r := range t {
		r.Error(err)
	}
}

func (t tee) Warn(msg string, keyvals ...any) {
	for _, r := range t {
		r.Warn(msg, keyvals...)
	}
}
