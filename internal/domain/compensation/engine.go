// Package compensation computes adjusted base salary, bonus and diagnostic
// flags for a single employee.
package compensation

import (
	"context"
	"fmt"

	"github.com/okian/compensa/internal/domain/model"
	"github.com/okian/compensa/pkg/logger"
	"github.com/shopspring/decimal"
)

// defaultDivisionPrecision is the number of decimal places kept by divisions.
const defaultDivisionPrecision = 28

// BandLookup resolves the salary band for a role and level. Implementations
// return a fallback band for unknown pairs instead of an error.
type BandLookup interface {
	Lookup(ctx context.Context, role, level string) (model.Band, error)
}

// BandLookupFunc adapts a function to BandLookup.
type BandLookupFunc func(ctx context.Context, role, level string) (model.Band, error)

// Lookup calls f.
func (f BandLookupFunc) Lookup(ctx context.Context, role, level string) (model.Band, error) {
	return f(ctx, role, level)
}

// Calculator computes one employee's compensation.
type Calculator interface {
	Compute(ctx context.Context, emp model.Employee, cfg model.Config) (model.Result, error)
}

// Engine implements Calculator. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	lookup    BandLookup
	precision int32
	logger    logger.Logger
}

// NewEngine creates an engine that checks salary bands through lookup.
func NewEngine(lookup BandLookup, opts ...Option) *Engine {
	e := &Engine{
		lookup:    lookup,
		precision: defaultDivisionPrecision,
		logger:    logger.Nop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Precision returns the number of decimal places kept by divisions.
func (e *Engine) Precision() int32 { return e.precision }

// Compute validates the inputs and returns the compensation result. Validation
// errors wrap ErrMissingField or ErrInvalidValue; band lookup failures never
// fail the call and surface as BandBreachLookupError instead.
func (e *Engine) Compute(ctx context.Context, emp model.Employee, cfg model.Config) (model.Result, error) { //nolint:gocritic // hugeParam: inputs are read-only snapshots
	in, err := validate(&emp, &cfg)
	if err != nil {
		return model.Result{}, err
	}

	adjusted, capped, floored := adjustBase(in)

	revenue := currentRevenue(in)
	share := baselineShare(in.aum, in.brackets, in.shares)
	effectiveShare := share.DivRound(decimal.NewFromInt(int64(max(in.teamSize, 1))), e.precision)
	rawBonus := revenue.Mul(effectiveShare)
	bonus := rawBonus.Mul(in.multiplier)

	flags := model.Flags{
		Capped:     capped,
		Floored:    floored,
		BandBreach: e.bandBreach(ctx, in.role, in.level, adjusted),
		MRTFlag:    model.MRTFlagOK,
	}
	if in.mrt && bonus.GreaterThan(adjusted.Mul(in.mrtCap)) {
		flags.MRTFlag = model.MRTFlagCapExceeded
	}

	return model.Result{
		EmployeeID:               emp.ID,
		OriginalBase:             in.base,
		AdjustedBase:             adjusted,
		BaseSalaryChange:         adjusted.Sub(in.base),
		EffectiveShare:           effectiveShare,
		RawBonus:                 rawBonus,
		PerformanceMultiplier:    in.multiplier,
		PerformanceAdjustedBonus: bonus,
		TotalCompensation:        adjusted.Add(bonus),
		Flags:                    flags,
	}, nil
}

// adjustBase applies the revenue pass-through, then the cap, then the floor.
func adjustBase(in inputs) (adjusted decimal.Decimal, capped, floored bool) { //nolint:gocritic // hugeParam
	one := decimal.NewFromInt(1)
	raw := in.base.Mul(one.Add(in.revenueDelta.Mul(in.adjustmentFactor)))
	maxAllowed := in.base.Mul(one.Add(in.maxIncrease))
	minAllowed := in.base.Mul(one.Add(in.maxDecrease))

	switch {
	case raw.GreaterThan(maxAllowed):
		return maxAllowed, true, false
	case raw.LessThan(minAllowed):
		return minAllowed, false, true
	default:
		return raw, false, false
	}
}

// currentRevenue estimates revenue from AUM when a management fee rate is
// configured and last year's revenue is absent or zero.
func currentRevenue(in inputs) decimal.Decimal { //nolint:gocritic // hugeParam
	if in.feeRate.Valid && (!in.revenue.Valid || in.revenue.Decimal.IsZero()) {
		return in.aum.Mul(in.feeRate.Decimal)
	}
	return in.revenue.Decimal.Mul(decimal.NewFromInt(1).Add(in.revenueDelta))
}

// baselineShare returns the share of the first bracket containing aum. When
// gaps in the table leave aum uncovered, the bracket with the highest minimum
// wins; ties keep the earliest bracket.
func baselineShare(aum decimal.Decimal, brackets []model.Bracket, shares map[string]decimal.Decimal) decimal.Decimal {
	for _, b := range brackets {
		if b.Contains(aum) {
			return shares[b.Name]
		}
	}

	top := brackets[0]
	for _, b := range brackets[1:] {
		if b.Min.GreaterThan(top.Min) {
			top = b
		}
	}
	return shares[top.Name]
}

// bandBreach compares adjusted against the role/level band. Any lookup problem
// degrades to BandBreachLookupError.
func (e *Engine) bandBreach(ctx context.Context, role, level string, adjusted decimal.Decimal) model.BandBreach {
	band, err := e.safeLookup(ctx, role, level)
	if err != nil {
		e.logger.Warn(ctx, "salary band lookup degraded",
			logger.String("role", role),
			logger.String("level", level),
			logger.Error(err),
		)
		return model.BandBreachLookupError
	}

	switch {
	case adjusted.GreaterThan(band.Max):
		return model.BandBreachAboveMax
	case adjusted.LessThan(band.Min):
		return model.BandBreachBelowMin
	default:
		return model.BandBreachNone
	}
}

func (e *Engine) safeLookup(ctx context.Context, role, level string) (band model.Band, err error) {
	if e.lookup == nil {
		return model.Band{}, fmt.Errorf("%w: no lookup configured", ErrLookupFailure)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrLookupFailure, r)
		}
	}()

	band, err = e.lookup.Lookup(ctx, role, level)
	if err != nil {
		return model.Band{}, fmt.Errorf("%w: %w", ErrLookupFailure, err)
	}
	if !band.Usable() {
		return model.Band{}, fmt.Errorf("%w: band min %s above max %s", ErrLookupFailure, band.Min, band.Max)
	}
	return band, nil
}
