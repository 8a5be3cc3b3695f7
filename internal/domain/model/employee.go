// Package model contains domain models passed between layers.
package model

import "github.com/shopspring/decimal"

// Quintile is one of five ordered performance tiers.
type Quintile string

// Performance tiers, best first.
const (
	Q1 Quintile = "Q1"
	Q2 Quintile = "Q2"
	Q3 Quintile = "Q3"
	Q4 Quintile = "Q4"
	Q5 Quintile = "Q5"
)

// Quintiles lists the tiers in rank order.
var Quintiles = []Quintile{Q1, Q2, Q3, Q4, Q5}

// Employee carries the attributes the engine reads for one person.
// Invalid NullDecimals, nil pointers and empty strings mean "field absent".
type Employee struct {
	ID                  string              `json:"id,omitempty"`
	BaseSalary          decimal.NullDecimal `json:"base_salary"`
	AUM                 decimal.NullDecimal `json:"aum"`
	TeamSize            *int                `json:"team_size,omitempty"`
	PerformanceQuintile Quintile            `json:"performance_quintile,omitempty"`
	LastYearRevenue     decimal.NullDecimal `json:"last_year_revenue"`
	MRTStatus           *bool               `json:"mrt_status,omitempty"`
	Role                string              `json:"role,omitempty"`
	Level               string              `json:"level,omitempty"`
	Department          string              `json:"department,omitempty"` // analytics only
}

// Amount wraps d as a present decimal field.
func Amount(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

// Int returns a pointer to v, for optional integer fields.
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for optional boolean fields.
func Bool(v bool) *bool { return &v }
