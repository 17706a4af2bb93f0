package main

import (
	"cmp"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/trace"
	"strings"
	"time"

	"github.com/myrjola/calicoach/internal/contexthelpers"
	"github.com/myrjola/calicoach/internal/errors"
	"github.com/myrjola/calicoach/internal/logging"
)

// userIDSessionKey holds the account ID of the session. Sessions without it belong to guests.
const userIDSessionKey = "user_id"

// statusRecorder remembers the first status code written so that it can be logged after the handler returns.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(statusCode int) {
	if sr.status == 0 {
		sr.status = statusCode
	}
	sr.ResponseWriter.WriteHeader(statusCode)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

// Unwrap lets http.ResponseController reach the connection, e.g. to extend the write deadline.
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// contentSecurityPolicy allows only same-origin resources and scripts or styles carrying the per-request nonce.
func contentSecurityPolicy(nonce string) string {
	return strings.Join([]string{
		"default-src 'none'",
		fmt.Sprintf("script-src 'nonce-%s' 'strict-dynamic' 'unsafe-inline' https: http:", nonce),
		"connect-src 'self'",
		"img-src 'self'",
		fmt.Sprintf("style-src 'nonce-%s' 'self'", nonce),
		"frame-ancestors 'none'",
		"form-action 'self'",
		"font-src 'none'",
		"object-src 'none'",
		"manifest-src 'self'",
		"base-uri 'none'",
		"report-uri /api/csp-violation",
	}, "; ")
}

//nolint:gochecknoglobals // constant header set
var securityHeaders = map[string]string{
	"Referrer-Policy":            "origin-when-cross-origin",
	"X-Content-Type-Options":     "nosniff",
	"X-Frame-Options":            "deny",
	"X-XSS-Protection":           "0",
	"Cross-Origin-Opener-Policy": "same-origin",
	"Strict-Transport-Security":  "max-age=63072000; includeSubDomains; preload",
}

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce := rand.Text()
		h := w.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy(nonce))
		for k, v := range securityHeaders {
			h.Set(k, v)
		}
		next.ServeHTTP(w, contexthelpers.SetCSPNonce(r, nonce))
	})
}

func cacheForever(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

		next.ServeHTTP(w, r)
	})
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}

// logAndTraceRequest tags the request context with a trace ID and logs the outcome. Responses of 500 and above
// are logged as errors. When runtime tracing is on, each request becomes a trace task.
func (app *application) logAndTraceRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := rand.Text()
		ctx := logging.WithAttrs(r.Context(),
			slog.String("trace_id", traceID),
			slog.String("proto", r.Proto),
			slog.String("method", r.Method),
			slog.String("uri", r.URL.RequestURI()),
		)
		if trace.IsEnabled() {
			var task *trace.Task
			ctx, task = trace.NewTask(ctx, "HTTP "+r.Method+" "+r.URL.Path)
			trace.Log(ctx, "trace_id", traceID)
			defer task.End()
		}
		r = r.WithContext(ctx)

		start := time.Now()
		app.logger.LogAttrs(ctx, slog.LevelDebug, "received request")
		rec := &statusRecorder{ResponseWriter: w, status: 0}
		next.ServeHTTP(rec, r)

		status := cmp.Or(rec.status, http.StatusOK)
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		app.logger.LogAttrs(ctx, level, "request completed", slog.Int("status_code", status),
			slog.Duration("duration", time.Since(start)))
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if excp := recover(); excp != nil {
				app.serverError(w, r, errors.DecoratePanic(excp))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// authenticate binds the account stored in the session to the request context. It must run inside LoadAndSave.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionHash := sha256.Sum256([]byte(app.sessionManager.Token(ctx)))
		ctx = logging.WithAttrs(ctx, slog.String("session_hash", hex.EncodeToString(sessionHash[:8])))
		r = r.WithContext(ctx)

		userID := app.sessionManager.GetInt(ctx, userIDSessionKey)
		if userID != 0 {
			r = contexthelpers.AuthenticateContext(r, userID)
			r = r.WithContext(logging.WithAttrs(r.Context(), slog.Int("user_id", userID)))
		}
		next.ServeHTTP(w, r)
	})
}

// mustAuthenticate redirects guests to the home page where they can create an account.
func (app *application) mustAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !contexthelpers.IsAuthenticated(r.Context()) {
			redirect(w, r, "/")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func commonContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = contexthelpers.SetCurrentPath(r, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// crossOriginProtection rejects cross-origin form submissions.
func (app *application) crossOriginProtection(next http.Handler) http.Handler {
	protection := http.NewCrossOriginProtection()
	return protection.Handler(next)
}

// responseMargin leaves room for writing the response before the server's write deadline.
const responseMargin = 200 * time.Millisecond

// timeout times out the request and cancels the context using http.TimeoutHandler.
func (app *application) timeout(next http.Handler) http.Handler {
	return http.TimeoutHandler(next, defaultTimeout-responseMargin, "timed out")
}

// generationTimeoutHandler is timeout for routes that wait on plan generation or the coach. The handler deadline
// leaves room for the template fallback after the generation deadline passes.
func (app *application) generationTimeoutHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		budget := app.generationTimeout + defaultTimeout
		rc := http.NewResponseController(w)
		if err := rc.SetWriteDeadline(time.Now().Add(budget)); err != nil {
			if !errors.Is(err, http.ErrNotSupported) {
				app.serverError(w, r, fmt.Errorf("extend write deadline: %w", err))
				return
			}
			app.logger.LogAttrs(r.Context(), slog.LevelWarn, "response writer cannot extend write deadline")
		}
		start := time.Now()
		http.TimeoutHandler(next, budget-responseMargin, "timed out").ServeHTTP(w, r)
		if elapsed := time.Since(start); elapsed > app.generationTimeout && app.flightRecorder != nil {
			app.flightRecorder.CaptureSlowRequest(r.Context(), r.Pattern, elapsed)
		}
	})
}
