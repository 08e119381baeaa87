// Package fcf is the Free-Cash-Flow Computer, named separately from the data
// model: it derives the canonical FCF series and its historical YoY growth
// from a FinancialData snapshot, the sole input the Growth Projection
// Engine's volatility classification consumes. The canonical rule itself
// (OCF - |CAPEX|) lives on FinancialData.FCF; this package never recomputes
// it independently.
package fcf

import (
	"valuationengine/pkg/enginerr"
	"valuationengine/pkg/models"
	"valuationengine/pkg/validate"
)

// Series returns the canonical FCF series, most-recent-first, and the base
// FCF used as the DCF's year-zero figure (the most recent entry).
func Series(fd *models.FinancialData) ([]float64, float64, error) {
	if fd == nil {
		return nil, 0, enginerr.New(enginerr.ValidationFailed, "fcf: financial data is nil")
	}
	series := fd.FCF()
	if len(series) == 0 {
		return nil, 0, enginerr.New(enginerr.DataUnavailable, "fcf: no OCF/CAPEX history available")
	}
	return series, series[0], nil
}

// YoYGrowth derives the historical year-over-year FCF growth series,
// most-recent-first, the input the Growth Projection Engine's volatility
// classifier consumes.
func YoYGrowth(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	out := make([]float64, 0, len(series)-1)
	for i := 0; i < len(series)-1; i++ {
		current, prior := series[i], series[i+1]
		out = append(out, validate.CalculateYoY(current, prior)/100)
	}
	return out
}

// outlierThresholdPct flags a year-over-year FCF swing wider than 75% as
// suspicious: plausible for a genuine earnings shock, but common enough as
// a provider extraction artifact that callers should see it surfaced.
const outlierThresholdPct = 75.0

// DetectOutliers walks the FCF series (most-recent-first) and returns a
// warning for every consecutive pair CheckForOutlier flags, oldest pair
// first.
func DetectOutliers(series []float64) []string {
	var warnings []string
	for i := len(series) - 2; i >= 0; i-- {
		current, prior := series[i], series[i+1]
		check := validate.CheckForOutlier("fcf", current, prior, outlierThresholdPct)
		if check.IsOutlier {
			warnings = append(warnings, "fcf: "+check.Reason)
		}
	}
	return warnings
}
