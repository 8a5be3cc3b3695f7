// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the report CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/compensa/internal/adapters/worker"
	"github.com/okian/compensa/internal/domain/analytics"
	"github.com/okian/compensa/internal/domain/compensation"
	"github.com/okian/compensa/internal/domain/model"
	"github.com/okian/compensa/internal/domain/types"
	"github.com/okian/compensa/pkg/logger"
	"github.com/okian/compensa/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultPrecision    = 28
	defaultBinWidth     = 1
	defaultMaxBatchSize = 10000
)

// Batch modes used in logs and metrics.
const (
	modeSingle  = "single"
	modeBatch   = "batch"
	modeSummary = "summary"
)

// Service computes compensation for single employees and batches.
type Service struct {
	mu sync.RWMutex

	// Core components
	lookup compensation.BandLookup
	engine *compensation.Engine
	pool   *worker.Pool

	// Configuration
	workerCount  int
	precision    int32
	binWidth     int
	maxBatchSize int
	newID        func() string

	// State
	started   bool
	startedAt time.Time

	// Counters for /stats
	calculations       atomic.Int64
	failedCalculations atomic.Int64
	batches            atomic.Int64
	lookupFailures     atomic.Int64

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		precision:    defaultPrecision,
		binWidth:     defaultBinWidth,
		maxBatchSize: defaultMaxBatchSize,
		newID:        func() string { return uuid.NewString() },
		logger:       nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the engine and worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.lookup == nil {
		return ErrNoBandLookup
	}

	s.engine = compensation.NewEngine(s.lookup,
		compensation.WithDivisionPrecision(s.precision),
		compensation.WithLogger(s.logger.Named("engine")),
	)
	s.pool = worker.NewPool(s.engine,
		worker.WithSize(s.workerCount),
		worker.WithLogger(s.logger),
	)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "compensation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("maxBatchSize", s.maxBatchSize),
		logger.Int("precision", int(s.precision)),
	)
	return nil
}

// Stop marks the service as stopped. In-flight calls finish normally.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "compensation service stopped")
}

func (s *Service) components() (*compensation.Engine, *worker.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.engine, s.pool, nil
}

// Calculate computes one employee. Validation errors are returned unchanged so
// callers can match them with errors.Is.
func (s *Service) Calculate(ctx context.Context, emp model.Employee, cfg model.Config) (model.Result, error) { //nolint:gocritic // hugeParam
	engine, _, err := s.components()
	if err != nil {
		return model.Result{}, err
	}

	start := time.Now()
	res, err := engine.Compute(ctx, emp, cfg)
	metrics.RecordCalculationLatency(float64(time.Since(start).Microseconds()) / 1000)
	s.record(res, err)
	if err != nil {
		s.logger.Debug(ctx, "calculation rejected",
			logger.String("mode", modeSingle),
			logger.String("employee_id", emp.ID),
			logger.Error(err),
		)
	}
	return res, err
}

// CalculateBatch computes every employee with per-item isolation: one
// employee's error is reported on its item and never fails the batch.
func (s *Service) CalculateBatch(ctx context.Context, employees []model.Employee, cfg model.Config) (types.BatchResult, error) { //nolint:gocritic // hugeParam
	batch, _, err := s.run(ctx, modeBatch, employees, cfg)
	return batch, err
}

// Summarize computes the batch and rolls the successful items up into a
// summary. total_employees counts every submitted employee.
func (s *Service) Summarize(ctx context.Context, employees []model.Employee, cfg model.Config) (types.SummaryResult, error) { //nolint:gocritic // hugeParam
	batch, records, err := s.run(ctx, modeSummary, employees, cfg)
	if err != nil {
		return types.SummaryResult{}, err
	}

	summary := analytics.GenerateSummary(records, employees, cfg,
		analytics.WithBinWidth(s.binWidth),
		analytics.WithPrecision(s.precision),
	)
	return types.SummaryResult{BatchResult: batch, Summary: summary}, nil
}

func (s *Service) run(ctx context.Context, mode string, employees []model.Employee, cfg model.Config) (types.BatchResult, []analytics.Record, error) { //nolint:gocritic // hugeParam
	_, pool, err := s.components()
	if err != nil {
		return types.BatchResult{}, nil, err
	}
	if len(employees) > s.maxBatchSize {
		return types.BatchResult{}, nil, fmt.Errorf("%w: %d employees, limit is %d", ErrBatchTooLarge, len(employees), s.maxBatchSize)
	}

	batchID := s.newID()
	log := s.logger.With(logger.String("batch_id", batchID), logger.String("mode", mode))
	start := time.Now()

	items, err := pool.Run(ctx, employees, cfg)
	if err != nil {
		metrics.RecordErrorByComponent("service", "batch_aborted")
		return types.BatchResult{}, nil, err
	}

	out := types.BatchResult{BatchID: batchID, Items: make([]types.BatchItem, len(items))}
	records := make([]analytics.Record, 0, len(items))
	for i := range items {
		it := &items[i]
		s.record(it.Result, it.Err)

		bi := types.BatchItem{Index: it.Index, ID: it.Employee.ID}
		if it.Err != nil {
			bi.Error = ItemError(it.Err)
			out.Failed++
			metrics.RecordBatchItemError()
		} else {
			res := it.Result
			bi.Result = &res
			out.Succeeded++
			records = append(records, analytics.RecordFromResult(it.Employee, it.Result))
		}
		out.Items[i] = bi
	}

	elapsed := time.Since(start)
	s.batches.Add(1)
	metrics.RecordBatch(mode, len(employees), float64(elapsed.Microseconds())/1000)
	log.Info(ctx, "batch computed",
		logger.Int("employees", len(employees)),
		logger.Int("succeeded", out.Succeeded),
		logger.Int("failed", out.Failed),
		logger.Duration("elapsed", elapsed),
	)
	return out, records, nil
}

// record updates counters and metrics for one calculation.
func (s *Service) record(res model.Result, err error) { //nolint:gocritic // hugeParam
	s.calculations.Add(1)
	if err != nil {
		s.failedCalculations.Add(1)
		metrics.RecordCalculation(Outcome(err))
		return
	}

	metrics.RecordCalculation(metrics.OutcomeOK)
	for _, f := range analytics.FlagNames(res.Flags) {
		metrics.RecordFlag(f)
	}
	if res.Flags.BandBreach == model.BandBreachLookupError {
		s.lookupFailures.Add(1)
		metrics.RecordBandLookupFailure()
	}
}

// Outcome maps a calculation error to its metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, compensation.ErrMissingField):
		return metrics.OutcomeMissingField
	case errors.Is(err, compensation.ErrInvalidValue):
		return metrics.OutcomeInvalidValue
	default:
		return metrics.OutcomeInternal
	}
}

// ItemError converts a calculation error into its per-item shape.
func ItemError(err error) *types.ItemError {
	ie := &types.ItemError{Code: types.CodeInternal, Message: err.Error()}
	var fe *compensation.FieldError
	if errors.As(err, &fe) {
		ie.Field = fe.Field
	}
	switch {
	case errors.Is(err, compensation.ErrMissingField):
		ie.Code = types.CodeMissingField
	case errors.Is(err, compensation.ErrInvalidValue):
		ie.Code = types.CodeInvalidValue
	}
	return ie
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		Started:            s.started,
		WorkerLimit:        s.workerCount,
		MaxBatchSize:       s.maxBatchSize,
		DivisionPrecision:  s.precision,
		HistogramBinWidth:  s.binWidth,
		Calculations:       s.calculations.Load(),
		FailedCalculations: s.failedCalculations.Load(),
		Batches:            s.batches.Load(),
		BandLookupFailures: s.lookupFailures.Load(),
	}
	if s.started {
		stats.Uptime = time.Since(s.startedAt).Round(time.Second).String()
	}
	return stats
}
