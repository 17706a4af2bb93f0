// Package errors extends the standard library errors with slog annotations and stack traces.
//
// Errors created with New or Wrap remember where they were created. SlogError renders the message, the
// accumulated annotations and the stack trace as a single slog group so that a failure can be traced from a
// log line alone.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
)

const maxStackDepth = 32

// annotatedError carries a message, slog attributes and the stack of the call site that created it.
type annotatedError struct {
	msg   string
	err   error
	attrs []slog.Attr
	stack []uintptr
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// callers skips runtime.Callers, callers itself and the exported constructor.
func callers() []uintptr {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(3, pcs) //nolint:mnd // see comment above
	return pcs[:n]
}

// NewSentinel creates an error without a stack trace for package-level sentinel values.
func NewSentinel(msg string) error {
	return stderrors.New(msg)
}

// New creates an error annotated with the given attributes and the current stack trace.
func New(msg string, attrs ...slog.Attr) error {
	return &annotatedError{
		msg:   msg,
		err:   nil,
		attrs: attrs,
		stack: callers(),
	}
}

// Wrap annotates err with a message and attributes. Wrapping a nil error returns nil.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return &annotatedError{
		msg:   msg,
		err:   err,
		attrs: attrs,
		stack: callers(),
	}
}

// DecoratePanic converts a recovered panic value into an error with the stack of the panicking goroutine.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	var msg string
	switch v := excp.(type) {
	case error:
		msg = v.Error()
	case string:
		msg = v
	default:
		msg = fmt.Sprint(v)
	}
	return &annotatedError{
		msg:   "panic: " + msg,
		err:   nil,
		attrs: nil,
		stack: callers(),
	}
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// SlogError renders err as a slog group with the message, all annotations found in the chain and the stack
// trace of the innermost annotated error.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}

	var (
		annotations []any
		stack       []uintptr
	)
	collect(err, &annotations, &stack)

	args := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		args = append(args, slog.Group("annotations", annotations...))
	}
	if len(stack) > 0 {
		args = append(args, slog.String("stack_trace", formatStack(stack)))
	}
	return slog.Group("error", args...)
}

// collect walks the error tree depth first. Outer annotations come first and the deepest stack wins.
func collect(err error, annotations *[]any, stack *[]uintptr) {
	if err == nil {
		return
	}
	if ae, ok := err.(*annotatedError); ok { //nolint:errorlint // only the node itself
		for _, attr := range ae.attrs {
			*annotations = append(*annotations, attr)
		}
		if len(ae.stack) > 0 {
			*stack = ae.stack
		}
	}
	switch x := err.(type) { //nolint:errorlint // walking the tree manually
	case interface{ Unwrap() []error }:
		for _, inner := range x.Unwrap() {
			collect(inner, annotations, stack)
		}
	case interface{ Unwrap() error }:
		collect(x.Unwrap(), annotations, stack)
	}
}

func formatStack(pcs []uintptr) string {
	frames := runtime.CallersFrames(pcs)
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(frame.Function)
			sb.WriteString(" ")
			sb.WriteString(frame.File)
			sb.WriteString(":")
			sb.WriteString(strconv.Itoa(frame.Line))
		}
		if !more {
			break
		}
	}
	return sb.String()
}
