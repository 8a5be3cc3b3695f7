// Package worker fans employee calculations out across a bounded pool.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/okian/compensa/internal/domain/model"
	"github.com/okian/compensa/pkg/logger"
	"github.com/okian/compensa/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// ErrCalculationPanic marks an item whose calculation panicked.
var ErrCalculationPanic = errors.New("calculation panicked")

// Calculator computes one employee's compensation.
type Calculator interface {
	Compute(ctx context.Context, emp model.Employee, cfg model.Config) (model.Result, error)
}

// Item is the outcome for one employee, in submission order. Exactly one of
// Result and Err is meaningful.
type Item struct {
	Index    int
	Employee model.Employee
	Result   model.Result
	Err      error
	Elapsed  time.Duration
}

// Pool runs calculations with at most Size in flight. A failed employee never
// affects the others; only context cancellation aborts a run.
type Pool struct {
	calc   Calculator
	size   int
	name   string
	logger logger.Logger
}

// NewPool creates a pool. Without WithSize it runs one calculation per CPU.
func NewPool(calc Calculator, opts ...Option) *Pool {
	p := &Pool{
		calc:   calc,
		size:   runtime.NumCPU(),
		name:   "worker-pool",
		logger: logger.Nop(),
	}

	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named(p.name)

	metrics.UpdateWorkerLimit(p.size)
	return p
}

// Size returns the concurrency limit.
func (p *Pool) Size() int { return p.size }

// Run computes every employee against cfg and returns one item per employee.
func (p *Pool) Run(ctx context.Context, employees []model.Employee, cfg model.Config) ([]Item, error) { //nolint:gocritic // hugeParam: cfg is shared read-only
	items := make([]Item, len(employees))
	if len(employees) == 0 {
		return items, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)

	for i := range employees {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i] = p.compute(gctx, i, employees[i], cfg)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.logger.Warn(ctx, "batch aborted", logger.Int("size", len(employees)), logger.Error(err))
		return nil, fmt.Errorf("batch aborted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch aborted: %w", err)
	}
	return items, nil
}

func (p *Pool) compute(ctx context.Context, i int, emp model.Employee, cfg model.Config) (item Item) { //nolint:gocritic // hugeParam
	metrics.WorkerStarted()
	start := time.Now()
	item = Item{Index: i, Employee: emp}

	defer func() {
		if r := recover(); r != nil {
			item.Err = fmt.Errorf("%w: %v", ErrCalculationPanic, r)
			p.logger.Error(ctx, "calculation panicked",
				logger.Int("index", i),
				logger.String("employee_id", emp.ID),
				logger.Any("panic", r),
			)
		}
		item.Elapsed = time.Since(start)
		metrics.RecordCalculationLatency(float64(item.Elapsed.Microseconds()) / 1000)
		metrics.WorkerFinished()
	}()

	item.Result, item.Err = p.calc.Compute(ctx, emp, cfg)
	if item.Err != nil {
		p.logger.Debug(ctx, "calculation rejected",
			logger.Int("index", i),
			logger.String("employee_id", emp.ID),
			logger.Error(item.Err),
		)
	}
	return item
}
