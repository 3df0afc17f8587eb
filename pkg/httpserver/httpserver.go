// Package httpserver holds the JSON helpers and middleware shared by every
// HTTP handler: CORS, rate limiting, panic recovery, request logging and
// latency metrics.
package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/raiox-score/pkg/metrics"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// WriteError writes {"error": message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Error: message})
}

// Options configures the middleware stack.
type Options struct {
	AllowedOrigins     []string
	RateLimitPerSecond int
	RateLimitBurst     int
	Logger             *slog.Logger
	Metrics            *metrics.Metrics
}

// Wrap applies, outermost first: CORS, recovery, logging/metrics, rate limiting.
func Wrap(h http.Handler, opts Options) http.Handler {
	if opts.RateLimitPerSecond > 0 {
		h = rateLimit(h, opts.RateLimitPerSecond, opts.RateLimitBurst)
	}
	h = observe(h, opts.Logger, opts.Metrics)
	h = recoverPanics(h, opts.Logger)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", "X-Requested-With"},
		MaxAge:         600,
	})
	return c.Handler(h)
}

func rateLimit(next http.Handler, perSecond, burst int) http.Handler {
	if burst < perSecond {
		burst = perSecond
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			WriteError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func observe(next http.Handler, logger *slog.Logger, m *metrics.Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(started)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(route, strconv.Itoa(rec.status), elapsed)
		if logger != nil {
			logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.Int("status", rec.status),
				slog.Duration("elapsed", elapsed),
			)
		}
	})
}

func recoverPanics(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if logger != nil {
					logger.Error("panic while serving request",
						slog.String("path", r.URL.Path),
						slog.Any("panic", v),
					)
				}
				WriteError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
