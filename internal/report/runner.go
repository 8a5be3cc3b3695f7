package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/compensa/internal/adapters/bands"
	"github.com/okian/compensa/internal/adapters/ingest"
	service "github.com/okian/compensa/internal/app"
	"github.com/okian/compensa/internal/config"
	"github.com/okian/compensa/internal/domain/model"
	"github.com/okian/compensa/internal/domain/types"
	"github.com/okian/compensa/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o640
)

// Run computes every employee in cfg.EmployeesFile against the parameters in
// cfg.ParamsFile and writes the report to cfg.OutputFile, or to stdout when
// no output file is set. Salary bands and defaults come from svcCfg.
func Run(ctx context.Context, cfg *Config, svcCfg *config.Config, stdout io.Writer) (Stats, error) {
	stats := Stats{StartTime: time.Now()}
	log := logger.Get().Named("report")

	switch {
	case cfg.EmployeesFile == "":
		return stats, ErrNoEmployeesFile
	case cfg.ParamsFile == "":
		return stats, ErrNoParamsFile
	}

	log.Info(ctx, "starting compensation report",
		logger.String("employees", cfg.EmployeesFile),
		logger.String("params", cfg.ParamsFile),
		logger.Bool("batchOnly", cfg.BatchOnly))

	// Step 1: Read inputs
	employees, err := readEmployees(ctx, cfg.EmployeesFile, svcCfg.MaxBatchSize)
	if err != nil {
		return stats, err
	}
	params, err := LoadParams(cfg.ParamsFile)
	if err != nil {
		return stats, err
	}
	stats.Employees = len(employees)

	// Step 2: Build the service
	svc, err := newService(ctx, cfg, svcCfg, log)
	if err != nil {
		return stats, err
	}
	defer svc.Stop()

	// Step 3: Compute
	var result types.SummaryResult
	if cfg.BatchOnly {
		result.BatchResult, err = svc.CalculateBatch(ctx, employees, params)
	} else {
		result, err = svc.Summarize(ctx, employees, params)
	}
	if err != nil {
		return stats, fmt.Errorf("compute batch: %w", err)
	}
	stats.Succeeded, stats.Failed = result.Succeeded, result.Failed

	// Step 4: Write the report
	rep := Report{
		GeneratedAt:   stats.StartTime.UTC(),
		EmployeesFile: cfg.EmployeesFile,
		ParamsFile:    cfg.ParamsFile,
		SummaryResult: result,
	}
	if err := write(cfg.OutputFile, stdout, rep, cfg.BatchOnly); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if cfg.Strict && stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrItemsFailed, stats.Failed, stats.Employees)
	}
	return stats, nil
}

func readEmployees(ctx context.Context, path string, maxRows int) ([]model.Employee, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("open employees: %w", err)
	}
	defer func() { _ = f.Close() }()

	employees, err := ingest.ParseCSV(ctx, f, ingest.WithMaxRows(maxRows))
	if err != nil {
		return nil, fmt.Errorf("read employees %s: %w", path, err)
	}
	return employees, nil
}

func newService(ctx context.Context, cfg *Config, svcCfg *config.Config, log logger.Logger) (*service.Service, error) {
	table, err := svcCfg.BandTable()
	if err != nil {
		return nil, err
	}

	workers, precision, binWidth := svcCfg.WorkerCount, svcCfg.DivisionPrecision, svcCfg.HistogramBinWidth
	if cfg.Workers > 0 {
		workers = cfg.Workers
	}
	if cfg.Precision > 0 {
		precision = cfg.Precision
	}
	if cfg.BinWidth > 0 {
		binWidth = cfg.BinWidth
	}

	svc := service.New(
		service.WithLogger(log),
		service.WithBandLookup(bands.NewCached(table, svcCfg.BandCacheTTL())),
		service.WithWorkerCount(workers),
		service.WithDivisionPrecision(precision),
		service.WithHistogramBinWidth(binWidth),
		service.WithMaxBatchSize(svcCfg.MaxBatchSize),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("start service: %w", err)
	}
	return svc, nil
}

// write encodes rep as indented JSON. Batch-only reports omit the summary.
func write(path string, stdout io.Writer, rep Report, batchOnly bool) error {
	var doc any = rep
	if batchOnly {
		doc = struct {
			GeneratedAt   time.Time `json:"generated_at"`
			EmployeesFile string    `json:"employees_file"`
			ParamsFile    string    `json:"params_file"`
			types.BatchResult
		}{rep.GeneratedAt, rep.EmployeesFile, rep.ParamsFile, rep.BatchResult}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("employees", stats.Employees),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration))
}
