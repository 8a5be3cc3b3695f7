package report

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/compensa/pkg/logger"
)

// SetupLogging routes logs to w as text so stdout stays free for the report.
func SetupLogging(w io.Writer, verbose bool) error {
	if err := logger.Init(logger.WithFormat("text"), logger.WithOutput(w)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "info"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

// ShowHelp prints usage information for the report tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Compensa Report Tool
====================

Computes compensation for every employee in a CSV file and prints the
results, plus a payroll summary, as JSON.

Usage:
  go run ./cmd/comp-report -employees FILE -params FILE [options]

Options:
  -employees string
        CSV of employees with a header row (required)
  -params string
        YAML or JSON compensation parameters (required)
  -output string
        Write the report to this file instead of stdout
  -workers int
        Concurrent calculations (default from service config)
  -precision int
        Decimal places kept by divisions (default from service config)
  -bin-width int
        Salary change histogram bin width in percent (default from service config)
  -batch-only
        Skip the summary
  -strict
        Exit non-zero when any employee could not be computed
  -verbose
        Enable debug logging
  -help
        Show this help message

Salary bands, batch limits and defaults are read from the service
configuration (COMPENSA_CONFIG and COMPENSA_* variables).

Examples:
  go run ./cmd/comp-report -employees staff.csv -params params.yaml
  go run ./cmd/comp-report -employees staff.csv -params params.json -output out/report.json -strict
`)
}
