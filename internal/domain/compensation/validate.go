package compensation

import (
	"github.com/okian/compensa/internal/domain/model"
	"github.com/shopspring/decimal"
)

// inputs is the validated, fully present view of an employee and config.
type inputs struct {
	base     decimal.Decimal
	aum      decimal.Decimal
	revenue  decimal.NullDecimal
	teamSize int
	quintile model.Quintile
	mrt      bool
	role     string
	level    string

	revenueDelta     decimal.Decimal
	adjustmentFactor decimal.Decimal
	maxIncrease      decimal.Decimal
	maxDecrease      decimal.Decimal
	mrtCap           decimal.Decimal
	feeRate          decimal.NullDecimal
	brackets         []model.Bracket
	shares           map[string]decimal.Decimal
	multiplier       decimal.Decimal
}

// validate checks presence first, then domain ranges. Nothing is computed
// until it returns nil.
func validate(emp *model.Employee, cfg *model.Config) (inputs, error) {
	var in inputs

	if err := requireEmployee(emp, cfg.ManagementFeeRate.Valid); err != nil {
		return in, err
	}
	if err := requireConfig(cfg); err != nil {
		return in, err
	}

	if *emp.TeamSize < 1 {
		return in, invalid(model.KeyTeamSize, "must be at least 1, got %d", *emp.TeamSize)
	}
	multiplier, ok := cfg.QuintileMultipliers[emp.PerformanceQuintile]
	if !ok {
		return in, invalid(model.KeyPerformanceQuintile, "unknown tier %q", emp.PerformanceQuintile)
	}
	if !emp.BaseSalary.Decimal.IsPositive() {
		return in, invalid(model.KeyBaseSalary, "must be positive, got %s", emp.BaseSalary.Decimal)
	}
	if emp.AUM.Decimal.IsNegative() {
		return in, invalid(model.KeyAUM, "must not be negative, got %s", emp.AUM.Decimal)
	}
	if cfg.MaxDecrease.Decimal.GreaterThan(cfg.MaxIncrease.Decimal) {
		return in, invalid(model.KeyMaxDecrease, "floor %s is above cap %s", cfg.MaxDecrease.Decimal, cfg.MaxIncrease.Decimal)
	}
	for _, b := range cfg.AUMBrackets {
		if _, ok := cfg.AUMBracketShares[b.Name]; !ok {
			return in, invalid(model.KeyAUMBracketShares, "no share for bracket %q", b.Name)
		}
		if b.Max.Valid && !b.Max.Decimal.GreaterThan(b.Min) {
			return in, invalid(model.KeyAUMBrackets, "bracket %q has max %s not above min %s", b.Name, b.Max.Decimal, b.Min)
		}
	}

	in = inputs{
		base:             emp.BaseSalary.Decimal,
		aum:              emp.AUM.Decimal,
		revenue:          emp.LastYearRevenue,
		teamSize:         *emp.TeamSize,
		quintile:         emp.PerformanceQuintile,
		mrt:              *emp.MRTStatus,
		role:             emp.Role,
		level:            emp.Level,
		revenueDelta:     cfg.RevenueDelta.Decimal,
		adjustmentFactor: cfg.AdjustmentFactor.Decimal,
		maxIncrease:      cfg.MaxIncrease.Decimal,
		maxDecrease:      cfg.MaxDecrease.Decimal,
		mrtCap:           cfg.MRTBonusRatioCap.Decimal,
		feeRate:          cfg.ManagementFeeRate,
		brackets:         cfg.AUMBrackets,
		shares:           cfg.AUMBracketShares,
		multiplier:       multiplier,
	}
	return in, nil
}

// requireEmployee reports the first absent employee key. last_year_revenue is
// optional only when revenue can be derived from AUM.
func requireEmployee(emp *model.Employee, hasFeeRate bool) error {
	switch {
	case !emp.BaseSalary.Valid:
		return missing(model.KeyBaseSalary)
	case !emp.AUM.Valid:
		return missing(model.KeyAUM)
	case emp.TeamSize == nil:
		return missing(model.KeyTeamSize)
	case emp.PerformanceQuintile == "":
		return missing(model.KeyPerformanceQuintile)
	case !emp.LastYearRevenue.Valid && !hasFeeRate:
		return missing(model.KeyLastYearRevenue)
	case emp.MRTStatus == nil:
		return missing(model.KeyMRTStatus)
	case emp.Role == "":
		return missing(model.KeyRole)
	case emp.Level == "":
		return missing(model.KeyLevel)
	}
	return nil
}

func requireConfig(cfg *model.Config) error {
	switch {
	case !cfg.RevenueDelta.Valid:
		return missing(model.KeyRevenueDelta)
	case !cfg.AdjustmentFactor.Valid:
		return missing(model.KeyAdjustmentFactor)
	case !cfg.MaxIncrease.Valid:
		return missing(model.KeyMaxIncrease)
	case !cfg.MaxDecrease.Valid:
		return missing(model.KeyMaxDecrease)
	case len(cfg.AUMBrackets) == 0:
		return missing(model.KeyAUMBrackets)
	case cfg.AUMBracketShares == nil:
		return missing(model.KeyAUMBracketShares)
	case cfg.QuintileMultipliers == nil:
		return missing(model.KeyQuintileMultipliers)
	case !cfg.MRTBonusRatioCap.Valid:
		return missing(model.KeyMRTBonusRatioCap)
	}
	return nil
}
