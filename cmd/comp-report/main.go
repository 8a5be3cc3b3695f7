package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/compensa/internal/config"
	"github.com/okian/compensa/internal/report"
	"github.com/okian/compensa/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	var (
		employeesFile = flag.String("employees", "", "CSV of employees with a header row")
		paramsFile    = flag.String("params", "", "YAML or JSON compensation parameters")
		outputFile    = flag.String("output", "", "Write the report to this file instead of stdout")
		workers       = flag.Int("workers", 0, "Concurrent calculations (default from service config)")
		precision     = flag.Int("precision", 0, "Decimal places kept by divisions (default from service config)")
		binWidth      = flag.Int("bin-width", 0, "Salary change histogram bin width in percent (default from service config)")
		batchOnly     = flag.Bool("batch-only", false, "Skip the summary")
		strict        = flag.Bool("strict", false, "Exit non-zero when any employee could not be computed")
		verbose       = flag.Bool("verbose", false, "Enable debug logging")
		help          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		report.ShowHelp()
		return
	}

	if err := report.SetupLogging(os.Stderr, *verbose); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svcCfg, err := config.Load(ctx)
	if err != nil {
		logger.Get().Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1) //nolint:gocritic // exitAfterDefer
	}

	cfg := &report.Config{
		EmployeesFile: *employeesFile,
		ParamsFile:    *paramsFile,
		OutputFile:    *outputFile,
		Workers:       *workers,
		Precision:     int32(*precision), //nolint:gosec // flag value is small
		BinWidth:      *binWidth,
		BatchOnly:     *batchOnly,
		Strict:        *strict,
	}

	if _, err := report.Run(ctx, cfg, svcCfg, os.Stdout); err != nil {
		logger.Get().Error(ctx, "report failed", logger.Error(err))
		os.Exit(1) //nolint:gocritic // exitAfterDefer
	}
}
