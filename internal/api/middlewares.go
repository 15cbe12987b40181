package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gofrs/uuid/v5"

	"github.com/wavythought/relay/internal/entity"
	"github.com/wavythought/relay/pkg/logger"
)

type Middleware struct {
	cors func(http.Handler) http.Handler
}

// NewMiddleware builds the middleware set. An empty allowedOrigins list allows any origin.
func NewMiddleware(allowedOrigins []string) *Middleware {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return &Middleware{
		cors: cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "Origin", "X-Request-Id"},
			MaxAge:         300,
		}),
	}
}

func (m *Middleware) Cors(next http.Handler) http.Handler {
	return m.cors(next)
}

func (m *Middleware) Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.Must(uuid.NewV4()).String()
		}

		ctx := logger.SetRequestID(r.Context(), reqID)
		ctx = logger.SetMethod(ctx, r.Method)
		ctx = logger.SetURL(ctx, r.URL.Path)
		ctx = logger.SetUserAgent(ctx, r.UserAgent())
		ctx = logger.SetLogType(ctx, "webrequest")
		ctx = logger.SetIP(ctx, entity.IPFromCtx(ctx))

		w.Header().Set("X-Request-Id", reqID)

		slog.InfoContext(ctx, "incoming request")

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		slog.InfoContext(ctx, "request completed",
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func(ctx context.Context) {
			rec := recover()
			if rec == nil {
				return
			}

			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			slog.ErrorContext(ctx, "panic", "error", fmt.Sprint(rec), "stack", string(debug.Stack()))

			SendJSON(ctx, w, http.StatusInternalServerError, ResponseMessage{Message: msgInternal})
		}(r.Context())

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) WithIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := removePort(r.RemoteAddr)

		if xForwardedFor := r.Header.Get("X-Forwarded-For"); xForwardedFor != "" {
			for _, part := range strings.Split(xForwardedFor, ",") {
				part = removePort(strings.TrimSpace(part))
				if isValidIP(part) {
					ip = part
					break
				}
			}
		}

		if xRealIP := removePort(r.Header.Get("X-Real-IP")); isValidIP(xRealIP) {
			ip = xRealIP
		}

		if !isValidIP(ip) {
			ip = "unknown"
		}

		ctx := context.WithValue(r.Context(), entity.CtxKeyIP{}, ip)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func removePort(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return host
}

func isValidIP(ip string) bool {
	return ip != "" && net.ParseIP(ip) != nil
}
