package analytics

import (
	"github.com/okian/compensa/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Version is reported in every summary so clients can detect shape changes.
const Version = "1.0.0"

// Summary is the batch-wide roll-up returned alongside calculation results.
type Summary struct {
	TotalPayroll          decimal.Decimal                       `json:"total_payroll"`
	AvgBaseIncrease       decimal.Decimal                       `json:"avg_base_increase"`
	TotalEmployees        int                                   `json:"total_employees"`
	MRTBreaches           int                                   `json:"mrt_breaches"`
	TotalFlags            int                                   `json:"total_flags"`
	FlagDistribution      map[string]int                        `json:"flag_distribution"`
	DeptTotals            map[string]DepartmentTotal            `json:"dept_totals"`
	RoleTotals            map[string]map[string]decimal.Decimal `json:"role_totals"`
	FlagMatrix            FlagMatrix                            `json:"flag_matrix"`
	SalaryChangeHistogram Histogram                             `json:"salary_change_histogram"`
	Version               string                                `json:"version"`
}

func emptySummary(employees int) Summary {
	return Summary{
		TotalEmployees:        employees,
		FlagDistribution:      map[string]int{},
		DeptTotals:            map[string]DepartmentTotal{},
		RoleTotals:            map[string]map[string]decimal.Decimal{},
		FlagMatrix:            FlagMatrix{},
		SalaryChangeHistogram: Histogram{},
		Version:               Version,
	}
}

// ExpectedBaseIncrease is revenue_delta x adjustment_factor, with absent
// values read as 0 and 1. It is the planned increase, not an observed mean.
func ExpectedBaseIncrease(cfg *model.Config) decimal.Decimal {
	delta := decimal.Zero
	if cfg.RevenueDelta.Valid {
		delta = cfg.RevenueDelta.Decimal
	}
	factor := decimal.NewFromInt(1)
	if cfg.AdjustmentFactor.Valid {
		factor = cfg.AdjustmentFactor.Decimal
	}
	return delta.Mul(factor)
}

// GenerateSummary composes every reduction over records. total_employees
// counts the submitted employees, which may exceed len(records) when some
// failed validation. An empty batch yields an empty shell.
func GenerateSummary(records []Record, employees []model.Employee, cfg model.Config, opts ...Option) Summary { //nolint:gocritic // hugeParam
	s := emptySummary(len(employees))
	if len(records) == 0 {
		return s
	}

	o := newOptions(opts...)
	for i := range records {
		r := &records[i]
		s.TotalPayroll = s.TotalPayroll.Add(r.Total())
		s.TotalFlags += len(r.Flags)

		breach := false
		for _, f := range r.Flags {
			s.FlagDistribution[f]++
			breach = breach || isMRTBreach(f)
		}
		if breach {
			s.MRTBreaches++
		}
	}

	s.AvgBaseIncrease = ExpectedBaseIncrease(&cfg)
	s.DeptTotals = DepartmentTotals(records)
	s.RoleTotals = RoleTotals(records)
	s.FlagMatrix = BuildFlagMatrix(records)
	s.SalaryChangeHistogram = SalaryChangeHistogram(records, o.binWidth, WithPrecision(o.precision), WithMaxBins(o.maxBins))
	return s
}
