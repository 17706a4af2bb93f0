package testhelpers

import (
	"bytes"
	"io"
	"sync/atomic"
	"testing"
)

// testWriter forwards each write to t.Log so that server logs only show up for failing tests.
type testWriter struct {
	t    testing.TB
	done atomic.Bool
}

// NewWriter returns a writer that logs through t. Writing after the test has finished panics, which catches
// servers and goroutines that outlive their test.
func NewWriter(t testing.TB) io.Writer {
	w := &testWriter{t: t}
	t.Cleanup(func() { w.done.Store(true) })
	return w
}

func (w *testWriter) Write(p []byte) (int, error) {
	if w.done.Load() {
		panic("testhelpers: log written after test completion, is the server shut down in t.Cleanup?")
	}
	if line := bytes.TrimRight(p, "\n"); len(line) > 0 {
		w.t.Helper()
		w.t.Log(string(line))
	}
	return len(p), nil
}
