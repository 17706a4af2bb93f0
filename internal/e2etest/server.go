package e2etest

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"

	_ "github.com/mattn/go-sqlite3" // driver for DB()
	"github.com/myrjola/calicoach/internal/logging"
)

const (
	// LogAddrKey is the log attribute carrying the address the server listens on.
	LogAddrKey = "addr"
	// LogDsnKey is the log attribute carrying the read-write SQLite DSN.
	LogDsnKey = "sqlDsn"
)

// RunFunc starts a server and blocks until ctx is cancelled. It has the signature of cmd/web's run.
type RunFunc func(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error

// Server is a running instance of the web application for end-to-end tests.
type Server struct {
	url    string
	client *Client
	db     *sql.DB
	stop   context.CancelCauseFunc
	done   <-chan struct{}
}

// startupInfo collects the values the server logs while starting.
type startupInfo struct {
	addr chan string
	dsn  chan string
}

func (s startupInfo) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case LogAddrKey:
		s.addr <- a.Value.String()
	case LogDsnKey:
		s.dsn <- a.Value.String()
	}
	return a
}

// StartServer runs the application in the background and returns once it answers /api/healthy. The server is
// shut down when the test finishes.
//
// Server logs go to logSink, usually testhelpers.NewWriter(t). The application must log its listening address
// under LogAddrKey and its database DSN under LogDsnKey.
func StartServer(t *testing.T, logSink io.Writer, lookupEnv func(string) (string, bool), run RunFunc) (*Server, error) {
	ctx, stop := context.WithCancelCause(t.Context())
	done := make(chan struct{})
	info := startupInfo{addr: make(chan string, 1), dsn: make(chan string, 1)}
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: info.replaceAttr,
	})))

	go func() {
		defer close(done)
		if err := run(ctx, logger, lookupEnv); err != nil {
			stop(err)
		}
	}()
	server := &Server{url: "", client: nil, db: nil, stop: stop, done: done}
	t.Cleanup(server.Shutdown)

	var addr, dsn string
	for addr == "" || dsn == "" {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("server stopped before it was ready: %w", context.Cause(ctx))
		case addr = <-info.addr:
		case dsn = <-info.dsn:
		}
	}

	var err error
	server.url = "http://" + addr
	if server.client, err = NewClient(server.url); err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	if err = server.client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return nil, fmt.Errorf("wait for ready: %w", err)
	}
	if server.db, err = sql.Open("sqlite3", dsn); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return server, nil
}

// Client returns a client with its own cookie jar, i.e. a fresh guest session.
func (s *Server) Client() *Client {
	return s.client
}

// NewClient returns another client for the same server, for tests that need two independent visitors.
func (s *Server) NewClient() (*Client, error) {
	return NewClient(s.url)
}

// DB gives direct access to the server's database for assertions the UI does not expose.
func (s *Server) DB() *sql.DB {
	return s.db
}

// Shutdown stops the server and waits for run to return. It is safe to call more than once.
func (s *Server) Shutdown() {
	s.stop(nil)
	<-s.done
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
}
