// Package scenario implements the three-scenario generator and the WACC x
// terminal-growth sensitivity matrix: rather than running every valuation
// model once, it runs one model three times under scenario-shifted inputs.
package scenario

import (
	"math"

	"valuationengine/internal/logging"
	"valuationengine/pkg/enginerr"
	"valuationengine/pkg/models"
	"valuationengine/pkg/valuation"
)

var log = logging.Tag("SCENARIO")

const epsilon = 1e-6

// BaseCase is the shared input the three scenarios are derived from.
type BaseCase struct {
	BaseFCF        float64
	GrowthRates    []float64
	TerminalGrowth float64
	WACC           float64
	Cash           float64
	Debt           float64
	Shares         float64
	CurrentPrice   float64
}

func scaleRates(rates []float64, factor float64) []float64 {
	out := make([]float64, len(rates))
	for i, r := range rates {
		out[i] = r * factor
	}
	return out
}

// Generate produces the pessimistic/base/optimistic ValuationResults by
// re-running the DCF model under scenario-shifted inputs, then enforces
// monotonicity and computes the probability-weighted bundle.
func Generate(base BaseCase, weights [3]float64) (*models.ScenarioBundle, error) {
	if weights == ([3]float64{}) {
		weights = [3]float64{0.25, 0.50, 0.25}
	}
	sum := weights[0] + weights[1] + weights[2]
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, enginerr.WithField(enginerr.ValidationFailed, "scenario probability weights must sum to 1", "weights")
	}

	pessimisticIn := valuation.DCFInput{
		BaseFCF:        base.BaseFCF,
		GrowthRates:    scaleRates(base.GrowthRates, 0.6),
		TerminalGrowth: base.TerminalGrowth - 0.01,
		WACC:           base.WACC + 0.02,
		Cash:           base.Cash, Debt: base.Debt, Shares: base.Shares, CurrentPrice: base.CurrentPrice,
	}
	baseIn := valuation.DCFInput{
		BaseFCF: base.BaseFCF, GrowthRates: base.GrowthRates, TerminalGrowth: base.TerminalGrowth,
		WACC: base.WACC, Cash: base.Cash, Debt: base.Debt, Shares: base.Shares, CurrentPrice: base.CurrentPrice,
	}
	optimisticIn := valuation.DCFInput{
		BaseFCF:        base.BaseFCF,
		GrowthRates:    scaleRates(base.GrowthRates, 1.4),
		TerminalGrowth: base.TerminalGrowth + 0.005,
		WACC:           base.WACC - 0.01,
		Cash:           base.Cash, Debt: base.Debt, Shares: base.Shares, CurrentPrice: base.CurrentPrice,
	}

	pessimistic, err := valuation.CalculateDCF(pessimisticIn)
	if err != nil {
		return nil, err
	}
	baseResult, err := valuation.CalculateDCF(baseIn)
	if err != nil {
		return nil, err
	}
	optimistic, err := valuation.CalculateDCF(optimisticIn)
	if err != nil {
		return nil, err
	}

	bundle := &models.ScenarioBundle{
		Pessimistic: *pessimistic,
		Base:        *baseResult,
		Optimistic:  *optimistic,
		Weights:     weights,
	}

	if !(pessimistic.FairValuePerShare <= baseResult.FairValuePerShare+epsilon &&
		baseResult.FairValuePerShare <= optimistic.FairValuePerShare+epsilon) {
		bundle.MonotonicityViolated = true
		bundle.ConfidenceBand = "low"
		bundle.Warnings = append(bundle.Warnings, "scenario monotonicity violated: pessimistic <= base <= optimistic does not hold")
		log.Warnf("monotonicity violated: pess=%.4f base=%.4f opt=%.4f", pessimistic.FairValuePerShare, baseResult.FairValuePerShare, optimistic.FairValuePerShare)
	}

	weighted := weights[0]*pessimistic.FairValuePerShare + weights[1]*baseResult.FairValuePerShare + weights[2]*optimistic.FairValuePerShare
	bundle.WeightedFairValue = weighted

	if pessimistic.FairValuePerShare > 0 {
		bundle.RiskRewardRatio = (optimistic.FairValuePerShare - baseResult.FairValuePerShare) / (baseResult.FairValuePerShare - pessimistic.FairValuePerShare + epsilon)
	}

	if base.CurrentPrice > 0 {
		upside := (weighted - base.CurrentPrice) / base.CurrentPrice * 100
		rec, confidence := recommend(upside)
		bundle.Recommendation = rec
		if bundle.ConfidenceBand == "" {
			bundle.ConfidenceBand = confidence
		}
	}

	return bundle, nil
}

func recommend(upsidePct float64) (models.Recommendation, string) {
	switch {
	case upsidePct >= 30:
		return models.RecStrongBuy, "high"
	case upsidePct >= 10:
		return models.RecBuy, "medium"
	case upsidePct > -10:
		return models.RecHold, "medium"
	case upsidePct > -30:
		return models.RecSell, "medium"
	default:
		return models.RecStrongSell, "high"
	}
}

// SensitivityGrid builds the default 9x9 (WACC x terminal-growth) grid,
// spanning +/-2pp around base WACC and +/-1pp around base terminal growth.
func SensitivityGrid(baseWACC, baseGrowth float64) (waccAxis, growthAxis []float64) {
	waccAxis = axis(baseWACC, 0.02, 9)
	growthAxis = axis(baseGrowth, 0.01, 9)
	return
}

func axis(center, span float64, n int) []float64 {
	out := make([]float64, n)
	step := 2 * span / float64(n-1)
	start := center - span
	for i := 0; i < n; i++ {
		out[i] = start + step*float64(i)
	}
	return out
}

// Sensitivity computes the fair-value-per-share matrix over a WACC x
// terminal-growth grid. Invalid cells (WACC <= g) are null; colouring is on
// clipped upside percentage, never on fair value.
func Sensitivity(base BaseCase, waccAxis, growthAxis []float64) *models.SensitivityMatrix {
	matrix := &models.SensitivityMatrix{
		WACCAxis:   waccAxis,
		GrowthAxis: growthAxis,
		Cells:      make([][]models.SensitivityCell, len(waccAxis)),
	}

	for i, w := range waccAxis {
		row := make([]models.SensitivityCell, len(growthAxis))
		for j, g := range growthAxis {
			cell := models.SensitivityCell{WACC: w, TerminalGrowth: g}
			if w-g < epsilon {
				row[j] = cell
				continue
			}
			fv, ok := valuation.CalculateSensitivityFairValue(base.BaseFCF, base.GrowthRates, g, w, base.Cash, base.Debt, base.Shares)
			if !ok {
				row[j] = cell
				continue
			}
			cell.FairValuePerShare = fv
			cell.Valid = true
			if base.CurrentPrice > 0 {
				upside := (fv - base.CurrentPrice) / base.CurrentPrice * 100
				cell.UpsidePctClipped = math.Max(-30, math.Min(30, upside))
			}
			row[j] = cell
		}
		matrix.Cells[i] = row
	}
	return matrix
}
