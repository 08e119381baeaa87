package valuation

import "sort"

// RelativeInput holds the raw figures needed for EV/EBITDA, P/E, and P/B.
type RelativeInput struct {
	MarketCap  float64
	TotalDebt  float64
	Cash       float64
	EBITDA     float64
	Price      float64
	EPSDiluted float64
	BookValue  float64
	Shares     float64
}

// RelativeMultiples holds the three ratios; a nil pointer means "not
// meaningful" (denominator <= 0).
type RelativeMultiples struct {
	EnterpriseValue float64
	EVToEBITDA      *float64
	PriceToEarnings *float64
	PriceToBook     *float64
}

// CalculateMultiples derives the three relative-valuation ratios.
func CalculateMultiples(in RelativeInput) RelativeMultiples {
	ev := in.MarketCap + in.TotalDebt - in.Cash
	out := RelativeMultiples{EnterpriseValue: ev}

	if in.EBITDA > 0 {
		v := ev / in.EBITDA
		out.EVToEBITDA = &v
	}
	if in.EPSDiluted > 0 {
		v := in.Price / in.EPSDiluted
		out.PriceToEarnings = &v
	}
	if in.Shares > 0 {
		bvps := in.BookValue / in.Shares
		if bvps > 0 {
			v := in.Price / bvps
			out.PriceToBook = &v
		}
	}
	return out
}

// ImpliedPriceFromMultiple computes a fair price from a sector multiple and
// the corresponding per-share denominator (EBITDA/share, EPS, or BVPS).
func ImpliedPriceFromMultiple(sectorMultiple, denominatorPerShare float64) *float64 {
	if denominatorPerShare <= 0 {
		return nil
	}
	v := sectorMultiple * denominatorPerShare
	return &v
}

// percentileRange returns the 25th and 75th percentile of a value set via a
// sort-based rank lookup.
func percentileRange(values []float64) (p25, p75 float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := func(p float64) float64 {
		pos := p * float64(len(sorted)-1)
		lo := int(pos)
		hi := lo + 1
		if hi >= len(sorted) {
			return sorted[lo]
		}
		frac := pos - float64(lo)
		return sorted[lo]*(1-frac) + sorted[hi]*frac
	}
	return idx(0.25), idx(0.75)
}

// PeerComparable is one peer's contributing multiple, used to derive a
// sector-level range for implied-price calculations.
type PeerComparable struct {
	Name   string
	Metric float64
}

// PeerRange returns the 25th-75th percentile range of a peer set's metric.
func PeerRange(peers []PeerComparable) (p25, p75 float64) {
	values := make([]float64, len(peers))
	for i, p := range peers {
		values[i] = p.Metric
	}
	return percentileRange(values)
}
