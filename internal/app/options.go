package service

import (
	"github.com/okian/compensa/internal/domain/compensation"
	"github.com/okian/compensa/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of concurrent calculations per batch.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDivisionPrecision sets the decimal places kept by divisions.
func WithDivisionPrecision(places int32) Option {
	return func(s *Service) {
		if places > 0 {
			s.precision = places
		}
	}
}

// WithHistogramBinWidth sets the salary change histogram bin width in
// percentage points.
func WithHistogramBinWidth(width int) Option {
	return func(s *Service) {
		if width > 0 {
			s.binWidth = width
		}
	}
}

// WithMaxBatchSize caps the number of employees accepted per batch.
func WithMaxBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.maxBatchSize = size
		}
	}
}

// WithBandLookup sets the salary band source used by the engine.
func WithBandLookup(lookup compensation.BandLookup) Option {
	return func(s *Service) {
		if lookup != nil {
			s.lookup = lookup
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator overrides how batch IDs are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}
