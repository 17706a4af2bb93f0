package logging_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/myrjola/calicoach/internal/logging"
)

func TestNewOutput(t *testing.T) {
	t.Run("stdout only", func(t *testing.T) {
		var stdout bytes.Buffer
		out, closer := logging.NewOutput(&stdout, "")
		if _, err := out.Write([]byte("hello\n")); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := closer.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if got := stdout.String(); got != "hello\n" {
			t.Errorf("stdout = %q, want %q", got, "hello\n")
		}
	})

	t.Run("mirrors to rotating file", func(t *testing.T) {
		var stdout bytes.Buffer
		path := filepath.Join(t.TempDir(), "calicoach.log")
		out, closer := logging.NewOutput(&stdout, path)
		logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(out, nil)))
		ctx := logging.WithAttrs(t.Context(), slog.String("trace_id", "abc"))
		logger.InfoContext(ctx, "plan generated")
		if err := closer.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}

		contents, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		for _, want := range []string{"plan generated", "trace_id=abc"} {
			if !strings.Contains(string(contents), want) {
				t.Errorf("log file %q missing %q", contents, want)
			}
			if !strings.Contains(stdout.String(), want) {
				t.Errorf("stdout %q missing %q", stdout.String(), want)
			}
		}
	})
}

func TestWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil)))

	parent := logging.WithAttrs(t.Context(), slog.String("trace_id", "abc"))
	guest := logging.WithAttrs(parent, slog.String("session_hash", "s1"))
	account := logging.WithAttrs(parent, slog.Int("user_id", 7))

	logger.InfoContext(guest, "generated plan")
	logger.InfoContext(account, "generated plan")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two log lines, got %q", buf.String())
	}
	if !strings.Contains(lines[0], "trace_id=abc") || !strings.Contains(lines[0], "session_hash=s1") ||
		strings.Contains(lines[0], "user_id") {
		t.Errorf("guest line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "trace_id=abc") || !strings.Contains(lines[1], "user_id=7") ||
		strings.Contains(lines[1], "session_hash") {
		t.Errorf("account line = %q", lines[1])
	}
}
