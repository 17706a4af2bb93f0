package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/myrjola/calicoach/internal/e2etest"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout  = 2 * time.Second
	shutdownTimeout = 10 * time.Second
)

func (app *application) newHTTPServer(handler http.Handler) *http.Server {
	return &http.Server{
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
		Handler:           handler,
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       defaultTimeout,
		// Generation routes extend their own deadline with http.ResponseController.
		WriteTimeout: defaultTimeout,
	}
}

// serve listens on addr and serves handler until ctx is done. In-flight requests, including plan generation,
// get shutdownTimeout to finish.
func (app *application) serve(ctx context.Context, addr string, handler http.Handler) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	srv := app.newHTTPServer(handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.logger.LogAttrs(ctx, slog.LevelInfo, "starting server",
			slog.String(e2etest.LogAddrKey, listener.Addr().String()))
		if serveErr := srv.Serve(listener); !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", serveErr)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.logger.LogAttrs(ctx, slog.LevelInfo, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			return fmt.Errorf("shutdown: %w", shutdownErr)
		}
		return nil
	})
	if err = g.Wait(); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
