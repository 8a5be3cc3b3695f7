// Package bands provides salary band lookups for the compensation engine.
package bands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/compensa/internal/domain/model"
)

// Sentinel kinds for band table errors.
var (
	ErrInvalidBand   = errors.New("invalid salary band")
	ErrDuplicateBand = errors.New("duplicate salary band")
)

// Entry defines the band for one role and level.
type Entry struct {
	Role  string
	Level string
	Band  model.Band
}

type key struct {
	role  string
	level string
}

func keyOf(role, level string) key {
	return key{
		role:  strings.ToLower(strings.TrimSpace(role)),
		level: strings.ToLower(strings.TrimSpace(level)),
	}
}

// Table is an immutable in-memory band table. Role and level match
// case-insensitively; unknown pairs get the fallback band.
type Table struct {
	bands    map[key]model.Band
	fallback model.Band
}

// NewTable validates every band (min <= max) and builds the table.
func NewTable(entries []Entry, fallback model.Band) (*Table, error) {
	if !fallback.Usable() {
		return nil, fmt.Errorf("%w: fallback min %s above max %s", ErrInvalidBand, fallback.Min, fallback.Max)
	}

	t := &Table{bands: make(map[key]model.Band, len(entries)), fallback: fallback}
	for _, e := range entries {
		if !e.Band.Usable() {
			return nil, fmt.Errorf("%w: %s/%s min %s above max %s", ErrInvalidBand, e.Role, e.Level, e.Band.Min, e.Band.Max)
		}
		k := keyOf(e.Role, e.Level)
		if _, dup := t.bands[k]; dup {
			return nil, fmt.Errorf("%w: %s/%s", ErrDuplicateBand, e.Role, e.Level)
		}
		t.bands[k] = e.Band
	}
	return t, nil
}

// Lookup implements compensation.BandLookup.
func (t *Table) Lookup(_ context.Context, role, level string) (model.Band, error) {
	if b, ok := t.bands[keyOf(role, level)]; ok {
		return b, nil
	}
	return t.fallback, nil
}

// Len returns the number of configured (non-fallback) bands.
func (t *Table) Len() int { return len(t.bands) }
