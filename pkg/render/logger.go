package render

import (
	"fmt"
	"io"
	"time"
)

// StdLogger writes timestamp-prefixed progress lines to w, matching the
// teacher's DefaultLogger — spec.md carries no third-party structured
// logging dependency anywhere in the retrieved corpus, so pkg/core.Logger
// stays a thin stdlib wrapper.
type StdLogger struct {
	W io.Writer
}

// NewStdLogger creates a StdLogger writing to w.
func NewStdLogger(w io.Writer) *StdLogger {
	return &StdLogger{W: w}
}

func (l *StdLogger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(l.W, "[%s] %s\n", time.Now().Format("15:04:05.000"), fmt.Sprintf(format, args...))
}
