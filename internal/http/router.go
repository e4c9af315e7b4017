package http

import (
	"context"
	"net/http"
	"time"

	"bookcatalog/internal/book"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterDeps struct {
	Books    *book.HTTPHandler
	Users    *user.HTTPHandler
	Store    Pinger
	Log      *zap.Logger
	Registry *prometheus.Registry

	CORSAllowedOrigins []string
	EnableHSTS         bool
	MaxBodyBytes       int64
}

// NewRouter mounts every route of the catalog API.
func NewRouter(d RouterDeps) http.Handler {
	metrics := httpx.NewMetrics(d.Registry)

	r := chi.NewRouter()
	r.Use(
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(d.Log),
		httpx.RecoveryMiddleware(d.Log),
		metrics.Middleware,
		httpx.CORSMiddleware(d.CORSAllowedOrigins),
		httpx.SecurityHeadersMiddleware(d.EnableHSTS),
		httpx.RequestSizeLimitMiddleware(d.MaxBodyBytes),
	)

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.Text(w, http.StatusOK, "Hello World!")
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.Text(w, http.StatusOK, "ok")
	})
	r.Get("/readyz", readiness(d.Store, d.Log))
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))

	r.Post("/register", d.Users.Register)
	r.Post("/login", d.Users.Login)

	r.Route("/books", func(r chi.Router) {
		r.Get("/", d.Books.List)
		r.Post("/", d.Books.Create)
		r.Get("/{id}", d.Books.Get)
		r.Put("/{id}", d.Books.Replace)
		r.Delete("/{id}", d.Books.Delete)
	})
	r.Post("/reviews/{id}", d.Books.AddReview)

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httpx.JSONError(w, http.StatusNotFound, "route not found")
}

func readiness(store Pinger, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			log.Warn("readiness check failed", zap.Error(err))
			httpx.Text(w, http.StatusServiceUnavailable, "store not ready")
			return
		}
		httpx.Text(w, http.StatusOK, "ready")
	}
}
