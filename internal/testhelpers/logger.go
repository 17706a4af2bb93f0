package testhelpers

import (
	"io"
	"log/slog"

	"github.com/myrjola/calicoach/internal/logging"
)

// NewLogger returns a debug level text logger that includes the request attributes stored with
// logging.WithAttrs. Pair it with NewWriter in tests.
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	})))
}
