package valuation

import (
	"valuationengine/pkg/enginerr"
	"valuationengine/pkg/models"
)

const defaultBookValueGrowth = 0.03

// RIMInput parameterizes the residual-income model.
type RIMInput struct {
	BookValue0     float64
	ROE            float64
	CostOfEquity   float64
	Years          int
	BookValueGrowth float64 // default 0.03
	PerpetuityTail bool     // add a terminal residual-income perpetuity
	TerminalGrowth float64  // only consulted when PerpetuityTail is true
	Shares         float64
	CurrentPrice   float64
}

// CalculateResidualIncome runs the residual-income model:
// V = BV_0 + sum(RI_t / (1+r_e)^t), RI_t = (ROE - r_e) * BV_{t-1}.
func CalculateResidualIncome(in RIMInput) (*models.ValuationResult, error) {
	if in.BookValue0 <= 0 {
		return nil, enginerr.WithField(enginerr.ValidationFailed, "rim: BookValue0 must be > 0", "BookValue0")
	}
	if in.Years < 1 {
		return nil, enginerr.WithField(enginerr.ValidationFailed, "rim: Years must be >= 1", "Years")
	}
	bvGrowth := in.BookValueGrowth
	if bvGrowth == 0 {
		bvGrowth = defaultBookValueGrowth
	}

	bv := in.BookValue0
	discount := 1.0
	var pvSum float64
	for t := 1; t <= in.Years; t++ {
		ri := (in.ROE - in.CostOfEquity) * bv
		discount *= 1 + in.CostOfEquity
		pvSum += ri / discount
		bv = bv * (1 + bvGrowth)
	}

	if in.PerpetuityTail {
		if in.CostOfEquity-in.TerminalGrowth < epsilon {
			return nil, enginerr.WithField(enginerr.NumericalDegenerate, "rim: cost of equity must exceed terminal growth for perpetuity tail", "CostOfEquity")
		}
		terminalRI := (in.ROE - in.CostOfEquity) * bv
		tailValue := terminalRI * (1 + in.TerminalGrowth) / (in.CostOfEquity - in.TerminalGrowth)
		pvSum += tailValue / discount
	}

	equity := in.BookValue0 + pvSum
	result := &models.ValuationResult{
		Method:      models.MethodRIM,
		EquityValue: equity,
	}
	if in.Shares > 0 {
		result.FairValuePerShare = equity / in.Shares
		if in.CurrentPrice > 0 {
			result.UpsidePct = (result.FairValuePerShare - in.CurrentPrice) / in.CurrentPrice * 100
		}
	}
	return result, nil
}

// PBROEInput parameterizes the bank-hybrid's price-to-book/ROE leg.
type PBROEInput struct {
	ROE            float64
	TerminalGrowth float64
	CostOfEquity   float64
	BookValuePerShare float64
}

// PBROEValue computes V_PB_ROE = [(ROE - g)/(r_e - g)] * BV_per_share.
func PBROEValue(in PBROEInput) (float64, error) {
	if in.CostOfEquity-in.TerminalGrowth < epsilon {
		return 0, enginerr.New(enginerr.NumericalDegenerate, "pb/roe: cost of equity must exceed terminal growth")
	}
	multiple := (in.ROE - in.TerminalGrowth) / (in.CostOfEquity - in.TerminalGrowth)
	return multiple * in.BookValuePerShare, nil
}
