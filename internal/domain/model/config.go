package model

import "github.com/shopspring/decimal"

// Bracket is a named AUM range [Min, Max). An invalid Max leaves the range open.
type Bracket struct {
	Name string              `json:"name"`
	Min  decimal.Decimal     `json:"min"`
	Max  decimal.NullDecimal `json:"max"`
}

// Contains reports whether aum falls inside the bracket.
func (b Bracket) Contains(aum decimal.Decimal) bool {
	if aum.LessThan(b.Min) {
		return false
	}
	return !b.Max.Valid || aum.LessThan(b.Max.Decimal)
}

// Config is the per-request set of compensation parameters.
// JSON keys keep the upper-case names used by the calculator's clients.
type Config struct {
	RevenueDelta        decimal.NullDecimal          `json:"revenue_delta"`
	AdjustmentFactor    decimal.NullDecimal          `json:"adjustment_factor"`
	MaxIncrease         decimal.NullDecimal          `json:"MAX_INCREASE"`
	MaxDecrease         decimal.NullDecimal          `json:"MAX_DECREASE"`
	AUMBrackets         []Bracket                    `json:"AUM_BRACKETS,omitempty"`
	AUMBracketShares    map[string]decimal.Decimal   `json:"AUM_BRACKET_SHARES,omitempty"`
	QuintileMultipliers map[Quintile]decimal.Decimal `json:"QUINTILE_MULTIPLIERS,omitempty"`
	MRTBonusRatioCap    decimal.NullDecimal          `json:"MRT_BONUS_RATIO_CAP"`
	ManagementFeeRate   decimal.NullDecimal          `json:"management_fee_rate"`
}

// Configuration keys, as reported in missing-field errors.
const (
	KeyRevenueDelta        = "revenue_delta"
	KeyAdjustmentFactor    = "adjustment_factor"
	KeyMaxIncrease         = "MAX_INCREASE"
	KeyMaxDecrease         = "MAX_DECREASE"
	KeyAUMBrackets         = "AUM_BRACKETS"
	KeyAUMBracketShares    = "AUM_BRACKET_SHARES"
	KeyQuintileMultipliers = "QUINTILE_MULTIPLIERS"
	KeyMRTBonusRatioCap    = "MRT_BONUS_RATIO_CAP"
	KeyManagementFeeRate   = "management_fee_rate"
)

// Employee keys, as reported in missing-field errors.
const (
	KeyBaseSalary          = "base_salary"
	KeyAUM                 = "aum"
	KeyTeamSize            = "team_size"
	KeyPerformanceQuintile = "performance_quintile"
	KeyLastYearRevenue     = "last_year_revenue"
	KeyMRTStatus           = "mrt_status"
	KeyRole                = "role"
	KeyLevel               = "level"
)
