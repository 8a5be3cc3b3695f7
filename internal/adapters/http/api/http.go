// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/compensa/internal/app"
	"github.com/okian/compensa/internal/domain/compensation"
	"github.com/okian/compensa/internal/domain/model"
	"github.com/okian/compensa/internal/domain/types"
	"github.com/okian/compensa/pkg/logger"
)

// Default request limits.
const (
	defaultMaxBodyBytes   = 10 << 20
	defaultMaxUploadBytes = 10 << 20
	defaultMaxUploadRows  = 10000
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Calculate(ctx context.Context, emp model.Employee, cfg model.Config) (model.Result, error)
	CalculateBatch(ctx context.Context, employees []model.Employee, cfg model.Config) (types.BatchResult, error)
	Summarize(ctx context.Context, employees []model.Employee, cfg model.Config) (types.SummaryResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	calculateHandler *CalculateHandler
	uploadHandler    *UploadHandler
}

// Option configures the Server.
type Option func(*settings)

type settings struct {
	maxBodyBytes   int64
	maxUploadBytes int64
	maxUploadRows  int
	logger         logger.Logger
}

// WithMaxBodyBytes caps JSON request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithMaxUploadBytes caps CSV upload bodies.
func WithMaxUploadBytes(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithMaxUploadRows caps the rows accepted from one CSV upload.
func WithMaxUploadRows(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxUploadRows = n
		}
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := settings{
		maxBodyBytes:   defaultMaxBodyBytes,
		maxUploadBytes: defaultMaxUploadBytes,
		maxUploadRows:  defaultMaxUploadRows,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		calculateHandler: NewCalculateHandler(deps, cfg.maxBodyBytes, cfg.logger),
		uploadHandler:    NewUploadHandler(cfg.maxUploadBytes, cfg.maxUploadRows, cfg.logger),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.Handle("/healthz", RequestID(MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")))
	mux.Handle("/stats", RequestID(MetricsMiddleware(s.statsHandler.HandleStats, "stats")))
	mux.Handle("/api/calculate", RequestID(MetricsMiddleware(s.calculateHandler.HandleCalculate, "calculate")))
	mux.Handle("/api/summary", RequestID(MetricsMiddleware(s.calculateHandler.HandleSummary, "summary")))
	mux.Handle("/api/upload-data", RequestID(MetricsMiddleware(s.uploadHandler.HandleUpload, "upload")))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service and engine errors onto HTTP statuses.
func writeServiceError(ctx context.Context, w http.ResponseWriter, log logger.Logger, op string, err error) {
	var fe *compensation.FieldError
	switch {
	case errors.As(err, &fe):
		ie := service.ItemError(err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: ie.Code, Message: ie.Message, Field: ie.Field})
	case errors.Is(err, service.ErrBatchTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, types.CodeBatchTooLarge, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "cancelled", Wrap(op, err))
	default:
		log.Error(ctx, "request failed",
			logger.String("op", op),
			logger.String("request_id", RequestIDFrom(ctx)),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, types.CodeInternal, Wrap(op, err))
	}
}
