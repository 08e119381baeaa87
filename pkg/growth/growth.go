// Package growth derives the explicit-horizon growth list and the terminal
// growth rate, via a decision-tree style ("which volatility tier fits this
// FCF history") rather than a single static formula.
package growth

import (
	"math"

	"valuationengine/internal/logging"
	"valuationengine/pkg/models"
)

var log = logging.Tag("GROWTH")

const (
	defaultHorizon        = 5
	terminalBase          = 0.025
	terminalFloor         = 0.015
	terminalCap           = 0.035
	spreadGuardMinimum    = 0.04
	epsilon               = 1e-6
)

// tier holds the mid-point growth rates this engine emits for a volatility
// profile's years 1-2, years 3-4, and year 5 buckets.
type tier struct {
	yr1_2 float64
	yr3_4 float64
	yr5   float64
}

var tiers = map[models.VolatilityProfile]tier{
	models.ProfileAggressive:         {0.21, 0.13, 0.07},
	models.ProfileModerateOptimistic: {0.17, 0.11, 0.06},
	models.ProfileModerate:           {0.14, 0.09, 0.05},
	models.ProfileConservative:       {0.11, 0.07, 0.04},
	models.ProfileVeryConservative:   {0.07, 0.045, 0.03},
}

// Fundamentals carries the company metrics the terminal-growth premia
// consult: ROE, average margin, and historical revenue growth.
type Fundamentals struct {
	ROE               float64
	AverageMargin     float64
	RevenueGrowth     float64
}

// Classify derives a VolatilityProfile from a historical YoY growth series
// (most-recent-first, as returned by FCF-derived series elsewhere).
func Classify(yoyGrowth []float64) models.VolatilityProfile {
	if len(yoyGrowth) == 0 {
		return models.ProfileVeryConservative
	}
	mean := 0.0
	for _, g := range yoyGrowth {
		mean += g
	}
	mean /= float64(len(yoyGrowth))

	var variance float64
	for _, g := range yoyGrowth {
		d := g - mean
		variance += d * d
	}
	variance /= float64(len(yoyGrowth))
	stdDev := math.Sqrt(variance)

	switch {
	case mean <= 0:
		return models.ProfileVeryConservative
	case mean >= 0.15 && stdDev < 0.08:
		return models.ProfileAggressive
	case mean >= 0.15:
		return models.ProfileModerateOptimistic
	case mean >= 0.10:
		return models.ProfileModerate
	case mean >= 0.05:
		return models.ProfileConservative
	default:
		return models.ProfileVeryConservative
	}
}

// ExplicitRates returns the default-horizon per-year growth list for a
// volatility profile.
func ExplicitRates(profile models.VolatilityProfile, horizon int) []float64 {
	if horizon <= 0 {
		horizon = defaultHorizon
	}
	t, ok := tiers[profile]
	if !ok {
		t = tiers[models.ProfileModerate]
	}
	rates := make([]float64, horizon)
	for i := range rates {
		switch {
		case i < 2:
			rates[i] = t.yr1_2
		case i < 4:
			rates[i] = t.yr3_4
		default:
			rates[i] = t.yr5
		}
	}
	return rates
}

// TerminalGrowth applies the three conservative premia to the GDP-proxy
// base, clamps to [1.5%, 3.5%], then applies the spread guard against the
// supplied WACC. Returns the pre-guard and post-guard values and whether the
// guard fired.
func TerminalGrowth(f Fundamentals, wacc float64) (raw, final float64, guardApplied bool) {
	g := terminalBase

	switch {
	case f.ROE > 0.15:
		g += 0.0025
	case f.ROE < 0.10:
		g -= 0.0025
	}

	switch {
	case f.AverageMargin > 0.20:
		g += 0.0025
	case f.AverageMargin > 0.10:
		g += 0.00125
	case f.AverageMargin < 0.05:
		g -= 0.0025
	}

	switch {
	case f.RevenueGrowth > 0.15:
		g += 0.0025
	case f.RevenueGrowth > 0.05:
		g += 0.00125
	}

	if g < terminalFloor {
		g = terminalFloor
	}
	if g > terminalCap {
		g = terminalCap
	}
	raw = g

	final = g
	if wacc-g < spreadGuardMinimum-epsilon {
		final = math.Max(terminalFloor, wacc-spreadGuardMinimum)
		guardApplied = true
		log.Warnf("spread guard fired: wacc=%.4f raw_g=%.4f -> g=%.4f", wacc, raw, final)
	}
	return raw, final, guardApplied
}

// Plan assembles a full GrowthPlan from a historical YoY growth series,
// fundamentals, WACC, and base FCF, using the historical-tiering method.
func Plan(baseFCF float64, yoyGrowth []float64, f Fundamentals, wacc float64, horizon int) models.GrowthPlan {
	profile := Classify(yoyGrowth)
	rates := ExplicitRates(profile, horizon)
	raw, final, guarded := TerminalGrowth(f, wacc)

	plan := models.GrowthPlan{
		BaseFCF:            baseFCF,
		Rates:              rates,
		Method:             models.GrowthHistorical,
		Profile:            profile,
		TerminalGrowthRaw:  raw,
		TerminalGrowth:     final,
		SpreadGuardApplied: guarded,
	}
	if guarded {
		plan.Warnings = append(plan.Warnings, "terminal growth reduced by spread guard")
	}
	return plan
}

// Manual builds a GrowthPlan from a caller-supplied explicit rate series,
// used verbatim, still subject to the terminal spread guard.
func Manual(baseFCF float64, rates []float64, terminalGrowth, wacc float64) models.GrowthPlan {
	final := terminalGrowth
	guarded := false
	if wacc-terminalGrowth < spreadGuardMinimum-epsilon {
		final = math.Max(terminalFloor, wacc-spreadGuardMinimum)
		guarded = true
	}
	plan := models.GrowthPlan{
		BaseFCF:            baseFCF,
		Rates:              rates,
		Method:             models.GrowthManual,
		TerminalGrowthRaw:  terminalGrowth,
		TerminalGrowth:     final,
		SpreadGuardApplied: guarded,
	}
	if guarded {
		plan.Warnings = append(plan.Warnings, "terminal growth reduced by spread guard")
	}
	return plan
}
