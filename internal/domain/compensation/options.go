package compensation

import "github.com/okian/compensa/pkg/logger"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithDivisionPrecision sets the number of decimal places kept by divisions
// (team share scaling). Multiplication and addition are always exact.
func WithDivisionPrecision(places int32) Option {
	return func(e *Engine) {
		if places > 0 {
			e.precision = places
		}
	}
}

// WithLogger sets the logger used to report degraded band lookups.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
