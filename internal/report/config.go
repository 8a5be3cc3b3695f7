// Package report runs a compensation batch from files and writes the result
// as JSON. It backs the comp-report command.
package report

import (
	"errors"
	"time"

	"github.com/okian/compensa/internal/domain/types"
)

// Sentinel errors for this package.
var (
	ErrNoEmployeesFile = errors.New("employees file is required")
	ErrNoParamsFile    = errors.New("params file is required")
	ErrItemsFailed     = errors.New("some employees could not be computed")
)

// Config holds the options of one report run.
type Config struct {
	EmployeesFile string // CSV of employees
	ParamsFile    string // YAML or JSON compensation parameters
	OutputFile    string // Output path; empty writes to stdout
	Workers       int    // Concurrent calculations; zero uses the service config
	Precision     int32  // Division precision; zero uses the service config
	BinWidth      int    // Histogram bin width; zero uses the service config
	BatchOnly     bool   // Skip the summary
	Strict        bool   // Fail when any employee could not be computed
}

// Report is the document written by Run.
type Report struct {
	GeneratedAt   time.Time `json:"generated_at"`
	EmployeesFile string    `json:"employees_file"`
	ParamsFile    string    `json:"params_file"`
	types.SummaryResult
}

// Stats holds run statistics.
type Stats struct {
	Employees int
	Succeeded int
	Failed    int
	StartTime time.Time
	Duration  time.Duration
}
