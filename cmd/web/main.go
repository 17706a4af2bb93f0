package main

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/calicoach/internal/coach"
	"github.com/myrjola/calicoach/internal/envstruct"
	"github.com/myrjola/calicoach/internal/errors"
	"github.com/myrjola/calicoach/internal/flightrecorder"
	"github.com/myrjola/calicoach/internal/logging"
	"github.com/myrjola/calicoach/internal/sqlite"
	"github.com/myrjola/calicoach/internal/training"
	"github.com/yuin/goldmark"
)

type application struct {
	logger            *slog.Logger
	sessionManager    *scs.SessionManager
	pages             map[string]*template.Template
	markdown          goldmark.Markdown
	trainingService   *training.Service
	generationTimeout time.Duration
	coachOnline       bool
	// flightRecorder is nil unless a trace directory is configured.
	flightRecorder *flightrecorder.Recorder
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"CALICOACH_ADDR" envDefault:"localhost:8081"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"CALICOACH_SQLITE_URL" envDefault:"./calicoach.sqlite3"`
	// TemplatePath is the path to the directory containing the HTML templates.
	TemplatePath string `env:"CALICOACH_TEMPLATE_PATH" envDefault:""`
	// OpenAIAPIKey enables generated plans and the coach chat. Without it every plan comes from templates.
	OpenAIAPIKey string `env:"OPENAI_API_KEY" envDefault:""`
	// OpenAIBaseURL overrides the API endpoint, e.g. for a proxy.
	OpenAIBaseURL string `env:"CALICOACH_OPENAI_BASE_URL" envDefault:""`
	OpenAIModel   string `env:"CALICOACH_OPENAI_MODEL" envDefault:"gpt-4o-2024-08-06"`
	// GenerationTimeout bounds all generator attempts of one submission before falling back to a template.
	GenerationTimeout time.Duration `env:"CALICOACH_GENERATION_TIMEOUT" envDefault:"25s"`
	// MaxConcurrentGenerations bounds the outbound model calls across all requests.
	MaxConcurrentGenerations int `env:"CALICOACH_MAX_CONCURRENT_GENERATIONS" envDefault:"4"`
	// TracesDir enables the flight recorder. Generation requests that overrun write a runtime trace there.
	TracesDir string `env:"CALICOACH_TRACES_DIR" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	templates, err := openTemplates(cfg.TemplatePath)
	if err != nil {
		return errors.Wrap(err, "open templates", slog.String("path", cfg.TemplatePath))
	}
	pages, err := parsePages(templates)
	if err != nil {
		return errors.Wrap(err, "parse templates")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	client := coach.NewClient(coach.Config{
		APIKey:        cfg.OpenAIAPIKey,
		BaseURL:       cfg.OpenAIBaseURL,
		Model:         cfg.OpenAIModel,
		Timeout:       cfg.GenerationTimeout,
		MaxConcurrent: int64(cfg.MaxConcurrentGenerations),
	}, logger)
	opts := training.Options{
		Source:            nil,
		Coach:             coach.NewChat(client),
		GenerationTimeout: cfg.GenerationTimeout,
		Now:               nil,
	}
	if client != nil {
		opts.Source = coach.NewPlanGenerator(client)
		logger.LogAttrs(ctx, slog.LevelInfo, "coach online", slog.String("model", cfg.OpenAIModel))
	} else {
		logger.LogAttrs(ctx, slog.LevelWarn, "OPENAI_API_KEY not set, serving template plans only")
	}

	trainingService := training.NewService(db, logger, opts)
	if err = trainingService.StartMaintenance(ctx); err != nil {
		return errors.Wrap(err, "start maintenance")
	}

	app := application{
		logger:            logger,
		sessionManager:    initializeSessionManager(db),
		pages:             pages,
		markdown:          goldmark.New(),
		trainingService:   trainingService,
		generationTimeout: cfg.GenerationTimeout,
		coachOnline:       client != nil,
		flightRecorder:    nil,
	}
	if cfg.TracesDir != "" {
		if app.flightRecorder, err = flightrecorder.New(flightrecorder.Config{
			Logger:   logger,
			Dir:      cfg.TracesDir,
			MinAge:   0,
			MaxBytes: 0,
			Cooldown: 0,
		}); err != nil {
			return errors.Wrap(err, "create flight recorder")
		}
		if err = app.flightRecorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer app.flightRecorder.Stop(context.WithoutCancel(ctx))
	}

	var handler http.Handler
	if handler, err = app.routes(); err != nil {
		return errors.Wrap(err, "configure routes")
	}
	if err = app.serve(ctx, cfg.Addr, handler); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 30 * 24 * time.Hour                                           //nolint:mnd // a month
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	// The log file is resolved before config parsing so that config errors end up in it too.
	logFile, _ := os.LookupEnv("CALICOACH_LOG_FILE")
	output, closer := logging.NewOutput(os.Stdout, logFile)
	defer func() {
		_ = closer.Close()
	}()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(output, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		_ = closer.Close()
		os.Exit(1)
	}
}
