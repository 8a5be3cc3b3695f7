package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/okian/compensa/internal/adapters/ingest"
	"github.com/okian/compensa/internal/domain/model"
	"github.com/okian/compensa/pkg/logger"
)

// uploadField is the multipart form field carrying the CSV.
const uploadField = "file"

var errNoFile = errors.New("no file part")

type uploadResponse struct {
	Filename  string           `json:"filename"`
	Count     int              `json:"count"`
	Employees []model.Employee `json:"employees"`
}

// UploadHandler parses employee CSV uploads.
type UploadHandler struct {
	maxBytes int64
	maxRows  int
	logger   logger.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(maxBytes int64, maxRows int, log logger.Logger) *UploadHandler {
	return &UploadHandler{maxBytes: maxBytes, maxRows: maxRows, logger: log}
}

// HandleUpload handles POST /api/upload-data. The body is a multipart form
// whose "file" part is a .csv of employees; the parsed employees are echoed
// back so clients can submit them to /api/calculate.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.upload"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethod))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", WrapKind(op, ErrTooLarge, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errNoFile))
		return
	}
	defer func() { _ = file.Close() }()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "unsupported_file", NewKind(op, ErrUnsupportedFile))
		return
	}

	ctx := r.Context()
	employees, err := ingest.ParseCSV(ctx, file, ingest.WithMaxRows(h.maxRows))
	if err != nil {
		if errors.Is(err, ingest.ErrTooManyRows) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", Wrap(op, err))
			return
		}
		h.logger.Debug(ctx, "rejected csv upload",
			logger.String("filename", header.Filename),
			logger.String("request_id", RequestIDFrom(ctx)),
			logger.Error(err),
		)
		writeError(w, http.StatusBadRequest, "invalid_csv", Wrap(op, err))
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Filename:  header.Filename,
		Count:     len(employees),
		Employees: employees,
	})
}
