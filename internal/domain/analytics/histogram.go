package analytics

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)

	// Changes beyond +/- maxChange percent are counted in the edge bins.
	maxChange = decimal.New(1, 15)
)

// HistogramBin counts salary changes in [Lower, Upper) percent.
type HistogramBin struct {
	Label string `json:"label"`
	Lower int64  `json:"lower"`
	Upper int64  `json:"upper"`
	Count int    `json:"count"`
}

// Histogram is an ordered run of bins from the lowest observed change to the
// highest. It is gap-free unless the spread needs more bins than the
// configured maximum, in which case only observed bins are listed.
type Histogram []HistogramBin

// Count returns the count for label, or 0 when there is no such bin.
func (h Histogram) Count(label string) int {
	for _, b := range h {
		if b.Label == label {
			return b.Count
		}
	}
	return 0
}

// Has reports whether a bin with label exists.
func (h Histogram) Has(label string) bool {
	for _, b := range h {
		if b.Label == label {
			return true
		}
	}
	return false
}

// BinLabel formats the label of the bin starting at lower.
func BinLabel(lower, width int64) string {
	return fmt.Sprintf("%d%% to %d%%", lower, lower+width)
}

// SalaryChangeHistogram bins ((adjusted/original)-1)*100 into binWidth-wide
// percentage bins. Records with a non-positive original base are skipped.
// Bins are anchored at multiples of binWidth; a value sits in the bin whose
// lower edge is the floor of value/binWidth. Changes are clamped to
// +/- 1e15 percent.
func SalaryChangeHistogram(records []Record, binWidth int, opts ...Option) Histogram {
	o := newOptions(opts...)
	width := int64(max(binWidth, 1))
	w := decimal.NewFromInt(width)

	starts := make([]int64, 0, len(records))
	for i := range records {
		r := &records[i]
		if !r.OriginalBase.IsPositive() {
			continue
		}
		pct := r.AdjustedBase.Sub(r.OriginalBase).Mul(hundred).DivRound(r.OriginalBase, o.precision)
		pct = decimal.Min(decimal.Max(pct, maxChange.Neg()), maxChange)
		bin := pct.DivRound(w, o.precision).Floor().IntPart() * width
		starts = append(starts, bin)
	}
	if len(starts) == 0 {
		return Histogram{}
	}

	lo, hi := slices.Min(starts), slices.Max(starts)
	if (hi-lo)/width >= int64(o.maxBins) {
		return sparseHistogram(starts, width)
	}

	h := make(Histogram, 0, (hi-lo)/width+1)
	for b := lo; b <= hi; b += width {
		h = append(h, HistogramBin{Label: BinLabel(b, width), Lower: b, Upper: b + width})
	}
	for _, s := range starts {
		h[(s-lo)/width].Count++
	}
	return h
}

func sparseHistogram(starts []int64, width int64) Histogram {
	slices.Sort(starts)
	var h Histogram
	for _, s := range starts {
		if n := len(h); n > 0 && h[n-1].Lower == s {
			h[n-1].Count++
			continue
		}
		h = append(h, HistogramBin{Label: BinLabel(s, width), Lower: s, Upper: s + width, Count: 1})
	}
	return h
}
