package semant

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// HaltLine closes every failed run's report.
const HaltLine = "Compilation halted due to static semantic errors."

var (
	// ErrHalted is wrapped by every *HaltError.
	ErrHalted = errors.New("static semantic errors")
	// ErrInternal wraps a broken analyzer invariant. It never describes
	// the input program.
	ErrInternal = errors.New("internal error")
)

// Diagnostic is one user-facing semantic error.
type Diagnostic struct {
	File    string
	Line    int
	Message string
}

// String renders "<file>:<line>: <message>", or only the message when the
// diagnostic has no source position.
func (d Diagnostic) String() string {
	if d.File == "" {
		return d.Message
	}
	return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Message)
}

// Diagnostics is the ordered error list of one analysis run.
type Diagnostics []Diagnostic

func (ds *Diagnostics) addf(file string, line int, format string, args ...any) {
	*ds = append(*ds, Diagnostic{File: file, Line: line, Message: fmt.Sprintf(format, args...)})
}

func (ds Diagnostics) String() string {
	var sb strings.Builder
	for _, d := range ds {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Messages returns the bare messages in order.
func (ds Diagnostics) Messages() []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Message
	}
	return out
}

// HaltError stops a run at one of the two checkpoints: after the class
// hierarchy is validated and after type checking.
type HaltError struct {
	Phase       string
	Diagnostics Diagnostics
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("%s: %d error(s) after %s", ErrHalted, len(e.Diagnostics), e.Phase)
}

func (e *HaltError) Unwrap() error { return ErrHalted }

// Report writes the diagnostics carried by err followed by HaltLine. Errors
// other than a *HaltError are written as a single line.
func Report(w io.Writer, err error) error {
	var halt *HaltError
	if !errors.As(err, &halt) {
		_, werr := fmt.Fprintln(w, err)
		return werr
	}
	if _, werr := io.WriteString(w, halt.Diagnostics.String()); werr != nil {
		return werr
	}
	_, werr := fmt.Fprintln(w, HaltLine)
	return werr
}

// internalError is raised with panic when an invariant established by an
// earlier phase turns out not to hold.
type internalError struct {
	msg string
}

func (e internalError) Error() string { return e.msg }

func internalf(format string, args ...any) {
	panic(internalError{msg: fmt.Sprintf(format, args...)})
}
