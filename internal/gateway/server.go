// Package gateway is the web front end: it serves the static UI and forwards
// the OpenAI-compatible /v1 API to the supervised llama-server.
package gateway

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"mmjd/pkg/types"
)

// Service defines what the gateway needs to know about the child.
type Service interface {
	Ready() bool
	Snapshot() types.ChildStatus
}

// Options configures the gateway handler.
type Options struct {
	// Upstream is the llama-server base URL, e.g. http://127.0.0.1:8080.
	Upstream *url.URL
	// FrontendDir is served for every path not handled otherwise.
	FrontendDir string
	// CORS is opt-in; with it disabled no CORS middleware is added.
	CORSEnabled        bool
	CORSAllowedOrigins []string
	Logger             zerolog.Logger
}

// NewMux builds the gateway router.
func NewMux(svc Service, opts Options) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if opts.CORSEnabled {
		origins := opts.CORSAllowedOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Log-Level"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Snapshot()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	if opts.Upstream != nil {
		r.Handle("/v1/*", newAPIProxy(opts.Upstream, opts.Logger))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Handle("/*", http.FileServer(http.Dir(opts.FrontendDir)))
	})

	return r
}

// NewServer wraps h in an http.Server listening on addr. There is no write
// timeout because completions are streamed.
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
