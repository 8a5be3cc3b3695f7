// Package ingest turns uploaded employee files into domain employees.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/compensa/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Sentinel kinds for ingestion errors.
var (
	ErrNoHeader     = errors.New("csv has no header row")
	ErrMalformedRow = errors.New("malformed csv row")
	ErrTooManyRows  = errors.New("too many rows")
)

// RowError reports the first bad cell in a row. Line counts the header as 1.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: column %s: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() []error { return []error{ErrMalformedRow, e.Err} }

type column int

const (
	colIgnored column = iota
	colID
	colBaseSalary
	colAUM
	colTeamSize
	colQuintile
	colRevenue
	colMRT
	colRole
	colLevel
	colDepartment
)

var columns = map[string]column{
	"id":                         colID,
	"employee_id":                colID,
	model.KeyBaseSalary:          colBaseSalary,
	model.KeyAUM:                 colAUM,
	model.KeyTeamSize:            colTeamSize,
	model.KeyPerformanceQuintile: colQuintile,
	model.KeyLastYearRevenue:     colRevenue,
	model.KeyMRTStatus:           colMRT,
	model.KeyRole:                colRole,
	model.KeyLevel:               colLevel,
	"department":                 colDepartment,
}

type options struct {
	maxRows int
}

// Option applies a configuration option to ParseCSV.
type Option func(*options)

// WithMaxRows rejects files with more than n data rows. Zero means no limit.
func WithMaxRows(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxRows = n
		}
	}
}

// ParseCSV reads employees from a header-mapped CSV. Empty cells are left
// absent, decimal cells are parsed exactly and unknown columns are ignored.
// Missing required fields are not an error here; the engine reports them.
func ParseCSV(ctx context.Context, r io.Reader, opts ...Option) ([]model.Employee, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	mapping := make([]column, len(header))
	for i, h := range header {
		mapping[i] = columns[normalizeHeader(h)]
	}

	employees := make([]model.Employee, 0)
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RowError{Line: line, Err: err}
		}
		if isBlank(row) {
			continue
		}
		if o.maxRows > 0 && len(employees) >= o.maxRows {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyRows, o.maxRows)
		}

		emp, rowErr := parseRow(row, mapping, header)
		if rowErr != nil {
			rowErr.Line = line
			return nil, rowErr
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

func parseRow(row []string, mapping []column, header []string) (model.Employee, *RowError) {
	var emp model.Employee
	for i, raw := range row {
		if i >= len(mapping) {
			break
		}
		val := strings.TrimSpace(raw)
		if val == "" || mapping[i] == colIgnored {
			continue
		}

		var err error
		switch mapping[i] {
		case colID:
			emp.ID = val
		case colBaseSalary:
			emp.BaseSalary, err = parseDecimal(val)
		case colAUM:
			emp.AUM, err = parseDecimal(val)
		case colRevenue:
			emp.LastYearRevenue, err = parseDecimal(val)
		case colTeamSize:
			var n int
			n, err = strconv.Atoi(val)
			if err == nil {
				emp.TeamSize = model.Int(n)
			}
		case colQuintile:
			emp.PerformanceQuintile = model.Quintile(strings.ToUpper(val))
		case colMRT:
			emp.MRTStatus = model.Bool(ParseBool(val))
		case colRole:
			emp.Role = val
		case colLevel:
			emp.Level = val
		case colDepartment:
			emp.Department = val
		}
		if err != nil {
			return emp, &RowError{Column: normalizeHeader(header[i]), Err: err}
		}
	}
	return emp, nil
}

func parseDecimal(s string) (decimal.NullDecimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("not a number: %q", s)
	}
	return decimal.NewNullDecimal(d), nil
}

// ParseBool reads true, yes and 1 (any case) as true and anything else as false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
