// Package web provides the JSON HTTP API for pawstay.
package web

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/evcraddock/pawstay/internal/appointment"
	"github.com/evcraddock/pawstay/internal/dashboard"
	"github.com/evcraddock/pawstay/internal/lifecycle"
	"github.com/evcraddock/pawstay/internal/logging"
	"github.com/evcraddock/pawstay/internal/review"
)

// Options tunes the HTTP layer.
type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	// SubmitRate is the sustained number of appointment submissions per
	// second; SubmitBurst is how many may arrive at once.
	SubmitRate  float64
	SubmitBurst int
	// Now returns the current time. It defaults to time.Now and decides
	// "today" for the upcoming view.
	Now func() time.Time
}

// Server is the JSON API server.
type Server struct {
	coord   *lifecycle.Coordinator
	dash    *dashboard.Service
	reviews *review.Service
	submit  *rate.Limiter
	now     func() time.Time
	handler http.Handler
}

// NewServer creates an API server over the given database. All status
// changes go through coord.
func NewServer(d *sql.DB, coord *lifecycle.Coordinator, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if opts.SubmitRate <= 0 {
		opts.SubmitRate = 1
	}
	if opts.SubmitBurst < 1 {
		opts.SubmitBurst = 5
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		coord:   coord,
		dash:    dashboard.NewService(d),
		reviews: review.NewService(review.NewRepository(d), appointment.NewRepository(d)),
		submit:  rate.NewLimiter(rate.Limit(opts.SubmitRate), opts.SubmitBurst),
		now:     opts.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/appointments", func(r chi.Router) {
			r.With(s.limitSubmissions).Post("/", s.apiSubmit)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.apiGetAppointment)
				r.Post("/approve", s.apiApprove)
				r.Post("/reject", s.apiReject)
				r.Post("/check-in", s.apiCheckIn)
				r.Get("/logs", s.apiListLogs)
				r.Post("/logs", s.apiAddLog)
			})
		})
		r.Post("/occupancies/{id}/check-out", s.apiCheckOut)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/pending", s.apiPending)
			r.Get("/upcoming", s.apiUpcoming)
			r.Get("/occupants", s.apiOccupants)
			r.Get("/history", s.apiHistory)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", s.apiListReviews)
			r.Post("/", s.apiCreateReview)
			r.Get("/export", s.apiExportReviews)
			r.Delete("/{id}", s.apiDeleteReview)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apiError(w, "not found", "not_found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apiError(w, "method not allowed", "method_not_allowed", http.StatusMethodNotAllowed)
	})

	s.handler = r
	if len(opts.AllowedOrigins) > 0 {
		s.handler = cors.New(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", ActorHeader, middleware.RequestIDHeader},
		}).Handler(r)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("starting API server", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("shutting down API server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// limitSubmissions rejects public submissions beyond the configured rate.
func (s *Server) limitSubmissions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.submit.Allow() {
			w.Header().Set("Retry-After", "1")
			apiError(w, "too many submissions, try again shortly", "rate_limited", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
