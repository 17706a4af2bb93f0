package logging

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

type contextKey struct{}

// ContextHandler adds the request attributes stored with WithAttrs, such as trace_id and user_id, to every record
// logged with a context.
type ContextHandler struct {
	handler slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{handler: h}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(attrsFrom(ctx)...)
	if err := h.handler.Handle(ctx, r); err != nil {
		return fmt.Errorf("handle log record: %w", err)
	}
	return nil
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}

func attrsFrom(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(contextKey{}).([]slog.Attr)
	return attrs
}

// WithAttrs returns a context whose log records carry attr in addition to the attributes already in ctx.
// Sibling contexts derived from the same parent never see each other's attributes.
func WithAttrs(ctx context.Context, attr ...slog.Attr) context.Context {
	return context.WithValue(ctx, contextKey{}, append(slices.Clip(attrsFrom(ctx)), attr...))
}
