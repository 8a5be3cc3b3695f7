package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Band is the salary range defined for a role and level.
type Band struct {
	Min    decimal.Decimal `json:"min"`
	Max    decimal.Decimal `json:"max"`
	Target decimal.Decimal `json:"target"`
}

// Usable reports whether the band can be compared against (min <= max).
func (b Band) Usable() bool {
	return b.Min.LessThanOrEqual(b.Max)
}

// BandBreach describes where the adjusted base sits relative to its band.
type BandBreach string

// Band breach states. The zero value means the base is inside the band.
const (
	BandBreachNone        BandBreach = ""
	BandBreachAboveMax    BandBreach = "Above Max"
	BandBreachBelowMin    BandBreach = "Below Min"
	BandBreachLookupError BandBreach = "Lookup Error"
)

// MarshalJSON encodes BandBreachNone as null.
func (b BandBreach) MarshalJSON() ([]byte, error) {
	if b == BandBreachNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(b))
}

// UnmarshalJSON accepts null as BandBreachNone.
func (b *BandBreach) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = BandBreachNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*b = BandBreach(s)
	return nil
}

// MRTFlag is the outcome of the material-risk-taker bonus ratio check.
type MRTFlag string

// MRT check outcomes.
const (
	MRTFlagOK          MRTFlag = "OK"
	MRTFlagCapExceeded MRTFlag = "Cap Exceeded"
)

// Flags are the diagnostics attached to a result.
type Flags struct {
	Capped     bool       `json:"capped"`
	Floored    bool       `json:"floored"`
	BandBreach BandBreach `json:"band_breach"`
	MRTFlag    MRTFlag    `json:"mrt_flag"`
}

// Result is the compensation computed for one employee. It is never mutated
// after the engine returns it.
type Result struct {
	EmployeeID               string          `json:"id,omitempty"`
	OriginalBase             decimal.Decimal `json:"original_base"`
	AdjustedBase             decimal.Decimal `json:"adjusted_base"`
	BaseSalaryChange         decimal.Decimal `json:"base_salary_change"`
	EffectiveShare           decimal.Decimal `json:"effective_share"`
	RawBonus                 decimal.Decimal `json:"raw_bonus"`
	PerformanceMultiplier    decimal.Decimal `json:"performance_multiplier"`
	PerformanceAdjustedBonus decimal.Decimal `json:"performance_adjusted_bonus"`
	TotalCompensation        decimal.Decimal `json:"total_compensation"`
	Flags                    Flags           `json:"flags"`
}
