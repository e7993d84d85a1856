// Package api exposes the recommender over HTTP with a chi router.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"recommender/internal/domain"
	"recommender/internal/logging"
)

// DefaultHealthWait bounds how long /api/health waits on initialization.
const DefaultHealthWait = 2 * time.Second

// RouterConfig configures NewRouter.
type RouterConfig struct {
	// RateLimit is requests per minute per client IP on /api routes; 0 disables it.
	RateLimit  int
	HealthWait time.Duration
}

// NewRouter mounts the API and the metrics endpoint.
func NewRouter(service domain.Recommender, cfg RouterConfig) http.Handler {
	h := NewHandler(service, cfg.HealthWait)

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.MethodNotAllowed(methodNotAllowed)
	r.NotFound(notFound)

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
		}
		r.Get("/catalog", h.Catalog)
		r.Get("/health", h.Health)
		r.Get("/recommendations", h.Recommendations)
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// requestID propagates X-Request-ID, generating one when absent, into the
// logging context and the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(chimiddleware.RequestIDHeader)
		if id == "" {
			id = logging.GenerateRequestID()
		}
		w.Header().Set(chimiddleware.RequestIDHeader, id)
		ctx := logging.ContextWithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// Serve runs an HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func Serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logging.Info().Msg("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
