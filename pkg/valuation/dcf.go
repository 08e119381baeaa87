// Package valuation implements the DCF, DDM, RIM, relative-multiples, and
// bank-hybrid model families, built around a two-stage explicit-then-terminal
// growth-rate-list input rather than full projected financial statements.
package valuation

import (
	"valuationengine/pkg/enginerr"
	"valuationengine/pkg/models"
)

const epsilon = 1e-6

// DCFInput is the two-stage DCF's parameter set.
type DCFInput struct {
	BaseFCF        float64
	GrowthRates    []float64 // length N, explicit horizon
	TerminalGrowth float64
	WACC           float64
	Cash           float64
	Debt           float64
	Shares         float64
	CurrentPrice   float64 // 0 => UpsidePct left at 0
}

// CalculateDCF runs the two-stage discounted cash flow model.
func CalculateDCF(in DCFInput) (*models.ValuationResult, error) {
	if len(in.GrowthRates) < 1 {
		return nil, enginerr.WithField(enginerr.ValidationFailed, "dcf: projection horizon must be >= 1 year", "GrowthRates")
	}
	if in.Shares <= 0 {
		return nil, enginerr.WithField(enginerr.ValidationFailed, "dcf: shares must be > 0", "Shares")
	}
	if in.WACC-in.TerminalGrowth < epsilon {
		return nil, enginerr.WithField(enginerr.NumericalDegenerate, "dcf: WACC must exceed terminal growth", "WACC")
	}

	result := &models.ValuationResult{Method: models.MethodDCF}
	if in.BaseFCF < 0 {
		result.Warnings = append(result.Warnings, "dcf: base FCF is negative, projection continues on the raw value")
	}

	fcf := in.BaseFCF
	var pvSum float64
	pvPerYear := make([]float64, len(in.GrowthRates))
	discount := 1.0
	for t, rate := range in.GrowthRates {
		fcf = fcf * (1 + rate)
		discount *= 1 + in.WACC
		pv := fcf / discount
		pvPerYear[t] = pv
		pvSum += pv
	}

	terminalValue := fcf * (1 + in.TerminalGrowth) / (in.WACC - in.TerminalGrowth)
	pvTerminal := terminalValue / discount

	ev := pvSum + pvTerminal
	equity := ev + in.Cash - in.Debt
	fairValuePerShare := equity / in.Shares

	result.EnterpriseValue = ev
	result.EquityValue = equity
	result.FairValuePerShare = fairValuePerShare
	result.PVFCFPerYear = pvPerYear
	result.PVTerminal = pvTerminal

	if in.CurrentPrice > 0 {
		result.UpsidePct = (fairValuePerShare - in.CurrentPrice) / in.CurrentPrice * 100
	}

	return result, nil
}

// CalculateSensitivityFairValue is the inner DCF computation reused by the
// sensitivity matrix: it skips warnings/PV-series bookkeeping the full
// result carries, since a 9x9 grid only needs the scalar fair value.
func CalculateSensitivityFairValue(baseFCF float64, rates []float64, terminalGrowth, wacc, cash, debt, shares float64) (float64, bool) {
	if wacc-terminalGrowth < epsilon || shares <= 0 || len(rates) < 1 {
		return 0, false
	}
	fcf := baseFCF
	discount := 1.0
	var pvSum float64
	for _, rate := range rates {
		fcf = fcf * (1 + rate)
		discount *= 1 + wacc
		pvSum += fcf / discount
	}
	terminalValue := fcf * (1 + terminalGrowth) / (wacc - terminalGrowth)
	pvTerminal := terminalValue / discount
	equity := pvSum + pvTerminal + cash - debt
	return equity / shares, true
}
