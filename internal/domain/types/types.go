// Package types contains the batch shapes shared by the service, the HTTP API
// and the report CLI.
package types

import (
	"github.com/okian/compensa/internal/domain/analytics"
	"github.com/okian/compensa/internal/domain/model"
)

// Error codes reported per item and in HTTP error bodies.
const (
	CodeMissingField  = "missing_field"
	CodeInvalidValue  = "invalid_value"
	CodeBatchTooLarge = "batch_too_large"
	CodeInternal      = "internal_error"
)

// ItemError describes why one employee could not be computed.
type ItemError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// BatchItem is the outcome for one submitted employee. Exactly one of Result
// and Error is set.
type BatchItem struct {
	Index  int           `json:"index"`
	ID     string        `json:"id,omitempty"`
	Result *model.Result `json:"result,omitempty"`
	Error  *ItemError    `json:"error,omitempty"`
}

// OK reports whether the item was computed.
func (i BatchItem) OK() bool { return i.Error == nil }

// BatchResult is the response to a batch calculation.
type BatchResult struct {
	BatchID   string      `json:"batch_id"`
	Items     []BatchItem `json:"results"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// SummaryResult is a batch plus its analytics roll-up.
type SummaryResult struct {
	BatchResult
	Summary analytics.Summary `json:"summary"`
}

// Stats is the service snapshot served at /stats.
type Stats struct {
	Started            bool   `json:"started"`
	WorkerLimit        int    `json:"worker_limit"`
	MaxBatchSize       int    `json:"max_batch_size"`
	DivisionPrecision  int32  `json:"division_precision"`
	HistogramBinWidth  int    `json:"histogram_bin_width"`
	Calculations       int64  `json:"calculations"`
	FailedCalculations int64  `json:"failed_calculations"`
	Batches            int64  `json:"batches"`
	BandLookupFailures int64  `json:"band_lookup_failures"`
	Uptime             string `json:"uptime"`
}
