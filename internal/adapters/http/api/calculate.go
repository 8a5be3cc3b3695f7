package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/compensa/internal/domain/model"
	"github.com/okian/compensa/internal/domain/types"
	"github.com/okian/compensa/pkg/logger"
)

// calculateRequest mirrors the OpenAPI schema for POST /api/calculate and
// POST /api/summary. Exactly one of Employee and Employees is used.
type calculateRequest struct {
	Employee  *model.Employee  `json:"employee"`
	Employees []model.Employee `json:"employees"`
	Config    *model.Config    `json:"config"`
}

var (
	errNoConfig    = errors.New("missing required field: config")
	errNoEmployees = errors.New("request needs either employee or employees")
	errAmbiguous   = errors.New("request must not carry both employee and employees")
)

// CalculateHandler serves compensation calculations.
type CalculateHandler struct {
	deps         Dependencies
	maxBodyBytes int64
	logger       logger.Logger
}

// NewCalculateHandler creates a new calculate handler.
func NewCalculateHandler(deps Dependencies, maxBodyBytes int64, log logger.Logger) *CalculateHandler {
	return &CalculateHandler{deps: deps, maxBodyBytes: maxBodyBytes, logger: log}
}

func (h *CalculateHandler) decode(w http.ResponseWriter, r *http.Request, op string) (calculateRequest, bool) {
	var req calculateRequest
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethod))
		return req, false
	}

	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", WrapKind(op, ErrTooLarge, err))
			return req, false
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return req, false
	}
	if req.Config == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: types.CodeMissingField, Message: errNoConfig.Error(), Field: "config"})
		return req, false
	}
	return req, true
}

// HandleCalculate handles POST /api/calculate. A single employee yields a
// result or a 400; a list yields a batch with per-item errors.
func (h *CalculateHandler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "api.calculate"
	req, ok := h.decode(w, r, op)
	if !ok {
		return
	}

	ctx := r.Context()
	switch {
	case req.Employee != nil && req.Employees != nil:
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errAmbiguous))
	case req.Employee != nil:
		res, err := h.deps.Calculate(ctx, *req.Employee, *req.Config)
		if err != nil {
			writeServiceError(ctx, w, h.logger, op, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	case req.Employees != nil:
		batch, err := h.deps.CalculateBatch(ctx, req.Employees, *req.Config)
		if err != nil {
			writeServiceError(ctx, w, h.logger, op, err)
			return
		}
		writeJSON(w, http.StatusOK, batch)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errNoEmployees))
	}
}

// HandleSummary handles POST /api/summary: the batch plus its analytics
// roll-up. An empty employees list returns an empty summary.
func (h *CalculateHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.summary"
	req, ok := h.decode(w, r, op)
	if !ok {
		return
	}
	if req.Employees == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errNoEmployees))
		return
	}

	ctx := r.Context()
	res, err := h.deps.Summarize(ctx, req.Employees, *req.Config)
	if err != nil {
		writeServiceError(ctx, w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
