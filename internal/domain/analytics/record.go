// Package analytics reduces a batch of compensation results into
// organization-wide summary statistics. All functions are pure.
package analytics

import (
	"github.com/okian/compensa/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Flag names as they appear in distributions and the flag matrix.
const (
	FlagCapped          = "CAPPED"
	FlagFloored         = "FLOORED"
	FlagBandAboveMax    = "BAND_ABOVE_MAX"
	FlagBandBelowMin    = "BAND_BELOW_MIN"
	FlagBandLookupError = "BAND_LOOKUP_ERROR"
	FlagMRTCapExceeded  = "MRT_CAP_EXCEEDED"

	// FlagMRTDecrease is the marker older clients send for an MRT breach.
	FlagMRTDecrease = "MRT_DECREASE"
)

// Unknown buckets records without a department or role.
const Unknown = "Unknown"

// Record is the aggregator's view of one computed employee.
type Record struct {
	EmployeeID   string          `json:"id,omitempty"`
	Department   string          `json:"department,omitempty"`
	Role         string          `json:"role,omitempty"`
	OriginalBase decimal.Decimal `json:"original_base"`
	AdjustedBase decimal.Decimal `json:"adjusted_base"`
	Bonus        decimal.Decimal `json:"bonus"`
	Flags        []string        `json:"flags"`
}

// Total returns adjusted base plus bonus.
func (r Record) Total() decimal.Decimal {
	return r.AdjustedBase.Add(r.Bonus)
}

// RecordFromResult pairs an engine result with the employee it was computed for.
func RecordFromResult(emp model.Employee, res model.Result) Record { //nolint:gocritic // hugeParam
	return Record{
		EmployeeID:   res.EmployeeID,
		Department:   emp.Department,
		Role:         emp.Role,
		OriginalBase: res.OriginalBase,
		AdjustedBase: res.AdjustedBase,
		Bonus:        res.PerformanceAdjustedBonus,
		Flags:        FlagNames(res.Flags),
	}
}

// FlagNames lists the raised flags in a fixed order. OK states produce nothing.
func FlagNames(f model.Flags) []string {
	names := make([]string, 0, 3)
	if f.Capped {
		names = append(names, FlagCapped)
	}
	if f.Floored {
		names = append(names, FlagFloored)
	}
	switch f.BandBreach {
	case model.BandBreachAboveMax:
		names = append(names, FlagBandAboveMax)
	case model.BandBreachBelowMin:
		names = append(names, FlagBandBelowMin)
	case model.BandBreachLookupError:
		names = append(names, FlagBandLookupError)
	}
	if f.MRTFlag == model.MRTFlagCapExceeded {
		names = append(names, FlagMRTCapExceeded)
	}
	return names
}

func isMRTBreach(flag string) bool {
	return flag == FlagMRTCapExceeded || flag == FlagMRTDecrease
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
