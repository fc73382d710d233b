package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/court-case-tracker/internal/config"
	"github.com/JakeFAU/court-case-tracker/internal/courtcase"
	"github.com/JakeFAU/court-case-tracker/internal/metrics"
)

const readyTimeout = 2 * time.Second

// CaseService is the coordinator surface used by the handlers.
type CaseService interface {
	RequestCrawl(ctx context.Context, caseNumbers []string) ([]courtcase.CaseStatus, error)
	Status(ctx context.Context, caseNumbers []string) ([]courtcase.CaseStatus, error)
	FindByCaseNumbers(ctx context.Context, caseNumbers []string) ([]courtcase.CourtCase, error)
	UpsertMany(ctx context.Context, cases []courtcase.CourtCase) error
}

// Pinger reports whether the persistence backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires HTTP handlers to the case service.
type Server struct {
	router   chi.Router
	cases    CaseService
	pinger   Pinger
	validate *validator.Validate
	maxBatch int
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes. pinger may be nil.
func NewServer(cases CaseService, pinger Pinger, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cases:    cases,
		pinger:   pinger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		maxBatch: cfg.Server.MaxBatch,
		logger:   logger,
	}
	timeout := cfg.RequestTimeout()
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(timeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		if cfg.Auth.Enabled {
			r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
		}
		r.Route("/court-cases", func(r chi.Router) {
			r.Get("/", s.findCourtCases)
			r.Put("/", s.upsertCourtCases)
			r.Post("/crawl", s.requestCrawl)
			r.Post("/status", s.caseStatus)
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			s.logger.Warn("readiness check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// writeServiceError maps coordinator failures onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, courtcase.ErrCourtNotRecognized),
		errors.Is(err, courtcase.ErrProcessNotRecognized),
		errors.Is(err, courtcase.ErrOriginUnitNotRecognized):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, courtcase.ErrDispatch):
		s.logger.Error("crawl dispatch failed", zap.String("request_id", requestID(r.Context())), zap.Error(err))
		writeError(w, http.StatusBadGateway, "crawl service unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	default:
		s.logger.Error("court case operation failed", zap.String("request_id", requestID(r.Context())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type requestIDKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
