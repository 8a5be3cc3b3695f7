package analytics

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// DepartmentTotal sums one department's adjusted base and bonus.
type DepartmentTotal struct {
	Base  decimal.Decimal `json:"base"`
	Bonus decimal.Decimal `json:"bonus"`
	Total decimal.Decimal `json:"total"`
}

// DepartmentTotals sums base, bonus and total per department. Records without
// a department are counted under Unknown instead of being skipped, so the
// totals always add up to the payroll.
func DepartmentTotals(records []Record) map[string]DepartmentTotal {
	out := make(map[string]DepartmentTotal)
	for i := range records {
		r := &records[i]
		dept := orUnknown(r.Department)
		t := out[dept]
		t.Base = t.Base.Add(r.AdjustedBase)
		t.Bonus = t.Bonus.Add(r.Bonus)
		t.Total = t.Total.Add(r.Total())
		out[dept] = t
	}
	return out
}

// RoleTotals sums total compensation per department and role.
func RoleTotals(records []Record) map[string]map[string]decimal.Decimal {
	out := make(map[string]map[string]decimal.Decimal)
	for i := range records {
		r := &records[i]
		dept := orUnknown(r.Department)
		roles, ok := out[dept]
		if !ok {
			roles = make(map[string]decimal.Decimal)
			out[dept] = roles
		}
		role := orUnknown(r.Role)
		roles[role] = roles[role].Add(r.Total())
	}
	return out
}

// FlagMatrix counts flags per department: dept -> flag -> count.
type FlagMatrix map[string]map[string]int

// Count returns the number of times flag was raised in dept.
func (m FlagMatrix) Count(dept, flag string) int {
	return m[dept][flag]
}

// MarshalJSON keeps an empty matrix as {} rather than null.
func (m FlagMatrix) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]map[string]int(m))
}

// BuildFlagMatrix increments one cell per flag occurrence; a record with two
// flags contributes to two cells.
func BuildFlagMatrix(records []Record) FlagMatrix {
	m := make(FlagMatrix)
	for i := range records {
		r := &records[i]
		if len(r.Flags) == 0 {
			continue
		}
		dept := orUnknown(r.Department)
		row, ok := m[dept]
		if !ok {
			row = make(map[string]int)
			m[dept] = row
		}
		for _, f := range r.Flags {
			row[f]++
		}
	}
	return m
}
