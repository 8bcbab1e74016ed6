// Package klog provides the leveled logging calls used throughout the acpi
// package, mirroring the log::trace!/info!/warn!/error! calls made
// throughout original_source/src/*.rs. Output is routed through
// internal/kfmt so the hot path (HandleSci, invoked from interrupt context)
// never touches the allocation-heavy fmt/log stdlib packages.
package klog

import (
	"io"

	"github.com/alnyan/acpi-system/internal/kfmt"
)

// Level identifies the severity of a log call.
type Level uint8

// The supported log levels, in increasing order of severity.
const (
	LevelTrace Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "?"
	}
}

var (
	sink    io.Writer
	minimum = LevelTrace
)

// SetOutput directs all subsequent log calls at or above the configured
// minimum level to w, draining anything buffered before w was attached.
func SetOutput(w io.Writer) {
	sink = w
	if w != nil {
		kfmt.Drain(w)
	}
}

// SetMinimumLevel suppresses log calls below level.
func SetMinimumLevel(level Level) {
	minimum = level
}

func logf(module string, level Level, format string, args ...interface{}) {
	if level < minimum {
		return
	}

	w := &kfmt.PrefixWriter{
		Sink:   writerOrDiscard(),
		Prefix: []byte("[" + module + "] " + level.String() + ": "),
	}

	kfmt.Fprintf(w, format+"\n", args...)
}

func writerOrDiscard() io.Writer {
	if sink != nil {
		return sink
	}
	return nilWriter{}
}

// nilWriter buffers into kfmt's ring buffer by forwarding to Fprintf(nil, ...)
// semantics: kfmt.Fprintf already treats a nil io.Writer as "use the ring
// buffer", but PrefixWriter.Sink must not be nil, so this small adapter
// round-trips writes through kfmt.Fprintf("%s", ...) using a nil sink.
type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) {
	kfmt.Fprintf(nil, "%s", p)
	return len(p), nil
}

// Trace logs a low-level diagnostic message for module.
func Trace(module, format string, args ...interface{}) { logf(module, LevelTrace, format, args...) }

// Info logs an informational message for module.
func Info(module, format string, args ...interface{}) { logf(module, LevelInfo, format, args...) }

// Warn logs a recoverable-error message for module.
func Warn(module, format string, args ...interface{}) { logf(module, LevelWarn, format, args...) }

// Error logs an unrecoverable-for-the-current-call message for module.
func Error(module, format string, args ...interface{}) { logf(module, LevelError, format, args...) }
