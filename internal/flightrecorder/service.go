// Package flightrecorder keeps a rolling runtime trace and writes it to disk when a generation request overruns.
package flightrecorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync"
	"time"
)

const (
	defaultMinAge   = 2 * time.Minute
	defaultMaxBytes = 32 << 20
	defaultCooldown = 15 * time.Minute
)

// Recorder captures the last minutes of execution when a plan or coach request runs past its deadline.
type Recorder struct {
	logger   *slog.Logger
	fr       *trace.FlightRecorder
	dir      string
	cooldown time.Duration
	now      func() time.Time

	mu          sync.Mutex
	lastCapture time.Time
}

type Config struct {
	Logger *slog.Logger
	// Dir receives the trace files. It is created if missing.
	Dir string
	// MinAge and MaxBytes size the in-memory window. Zero picks defaults.
	MinAge   time.Duration
	MaxBytes uint64
	// Cooldown is the minimum time between two captures.
	Cooldown time.Duration
}

// New creates a stopped recorder.
func New(cfg Config) (*Recorder, error) {
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.Dir == "" {
		return nil, errors.New("trace directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil { //nolint:mnd // owner and group
		return nil, fmt.Errorf("create trace directory: %w", err)
	}

	minAge := cfg.MinAge
	if minAge == 0 {
		minAge = defaultMinAge
	}
	maxBytes := cfg.MaxBytes
	if maxBytes == 0 {
		maxBytes = defaultMaxBytes
	}
	cooldown := cfg.Cooldown
	if cooldown == 0 {
		cooldown = defaultCooldown
	}

	return &Recorder{
		logger:      cfg.Logger,
		fr:          trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: minAge, MaxBytes: maxBytes}),
		dir:         cfg.Dir,
		cooldown:    cooldown,
		now:         time.Now,
		mu:          sync.Mutex{},
		lastCapture: time.Time{},
	}, nil
}

// Start begins recording.
func (r *Recorder) Start(ctx context.Context) error {
	if err := r.fr.Start(); err != nil {
		return fmt.Errorf("start flight recorder: %w", err)
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started", slog.String("dir", r.dir),
		slog.Duration("cooldown", r.cooldown))
	return nil
}

func (r *Recorder) Stop(ctx context.Context) {
	r.fr.Stop()
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder stopped")
}

// CaptureSlowRequest writes the current trace window for route unless a capture happened within the cooldown.
// It returns the written file or an empty string when skipped.
func (r *Recorder) CaptureSlowRequest(ctx context.Context, route string, elapsed time.Duration) string {
	if !r.fr.Enabled() {
		return ""
	}
	now := r.now()
	r.mu.Lock()
	if !r.lastCapture.IsZero() && now.Sub(r.lastCapture) < r.cooldown {
		r.mu.Unlock()
		r.logger.LogAttrs(ctx, slog.LevelDebug, "trace capture in cooldown", slog.String("route", route))
		return ""
	}
	r.lastCapture = now
	r.mu.Unlock()

	path := filepath.Join(r.dir, fmt.Sprintf("slow-%s.trace", now.UTC().Format("20060102-150405")))
	file, err := os.Create(path)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "create trace file", slog.String("file", path),
			slog.Any("error", err))
		return ""
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "close trace file", slog.Any("error", closeErr))
		}
	}()

	n, err := r.fr.WriteTo(file)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "write trace", slog.String("file", path), slog.Any("error", err))
		return ""
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "captured trace of slow request",
		slog.String("route", route), slog.Duration("elapsed", elapsed),
		slog.String("file", path), slog.Int64("bytes", n))
	return path
}
