package analytics

const (
	defaultBinWidth  = 1
	defaultPrecision = 28
	defaultMaxBins   = 10_000
)

type options struct {
	binWidth  int
	precision int32
	maxBins   int
}

// Option applies a configuration option to the aggregator.
type Option func(*options)

// WithBinWidth sets the histogram bin width in percentage points.
func WithBinWidth(width int) Option {
	return func(o *options) {
		if width > 0 {
			o.binWidth = width
		}
	}
}

// WithPrecision sets the decimal places kept when computing percentages.
func WithPrecision(places int32) Option {
	return func(o *options) {
		if places > 0 {
			o.precision = places
		}
	}
}

// WithMaxBins caps the number of bins in a gap-free histogram. Wider
// spreads only get bins for the observed changes.
func WithMaxBins(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBins = n
		}
	}
}

func newOptions(opts ...Option) options {
	o := options{binWidth: defaultBinWidth, precision: defaultPrecision, maxBins: defaultMaxBins}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
