// Package api exposes the verifier and finder over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/mailprobe/mailprobe/internal/verify"
)

// shutdownGrace bounds connection draining after the context ends.
const shutdownGrace = 10 * time.Second

// bulkWorkerCap is the hard ceiling for a caller-requested pool size.
const bulkWorkerCap = 100

// VerifierService is the verification core consumed by the handlers.
// Implemented by verify.Verifier.
type VerifierService interface {
	Verify(ctx context.Context, email string) verify.Result
	VerifyBulk(ctx context.Context, emails []string, maxWorkers int) []verify.Result
}

// FinderService locates a deliverable address for a person at a
// domain. Implemented by finder.Finder.
type FinderService interface {
	Find(ctx context.Context, fullName, domain string) (found string, ok bool, err error)
}

// Config carries the HTTP surface settings and collaborators.
type Config struct {
	// Address is the listen address, e.g. ":8000".
	Address string
	// ReadTimeout and WriteTimeout bound each request. WriteTimeout
	// must leave room for a full bulk batch.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// RateLimit is the per-client request budget per minute. Zero
	// disables limiting.
	RateLimit int
	// AllowedOrigins configures CORS. Empty disables the middleware.
	AllowedOrigins []string
	// MaxWorkers is the default bulk pool size when the request does
	// not choose one.
	MaxWorkers int

	Verifier VerifierService
	Finder   FinderService
	Logger   *slog.Logger
}

// Server is the HTTP front end.
type Server struct {
	cfg      Config
	verifier VerifierService
	finder   FinderService
	logger   *slog.Logger
	validate *validator.Validate
}

// New creates a Server around the given collaborators.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	validate := validator.New()
	_ = validate.RegisterValidation("notblank", validators.NotBlank)

	return &Server{
		cfg:      cfg,
		verifier: cfg.Verifier,
		finder:   cfg.Finder,
		logger:   logger,
		validate: validate,
	}
}

// Router assembles the middleware chain and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}
	if s.cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
	}

	r.Get("/", s.handleIndex)
	r.Post("/find", s.handleFind)
	r.Post("/verify", s.handleVerify)
	r.Post("/verify/bulk", s.handleVerifyBulk)
	return r
}

// Run starts the listener and blocks until ctx is canceled or the
// server fails. On cancellation, in-flight requests get shutdownGrace
// to finish.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", "address", s.cfg.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	s.logger.Info("api server stopped")
	return nil
}
