package valuation

import (
	"valuationengine/pkg/enginerr"
	"valuationengine/pkg/models"
)

// DDMInput parameterizes all three dividend-discount-model variants.
type DDMInput struct {
	Variant      models.DDMVariant
	D0           float64 // most recent annual dividend per share
	CostOfEquity float64

	// Gordon
	TerminalGrowth float64
	GrowthCap      float64 // default 0.05, see models.Overrides.GordonGrowthCap
	GrowthFloor    float64 // default 0.01

	// Two-stage
	HighGrowth  float64
	HighYears   int
	SteadyGrowth float64

	// H-model
	ShortGrowth float64
	LongGrowth  float64
	HalfLifeYears float64 // "H" in the H-model formula

	CurrentPrice float64
}

// CalculateDDM dispatches to the selected dividend-discount-model variant.
func CalculateDDM(in DDMInput) (*models.ValuationResult, error) {
	if in.D0 <= 0 {
		return nil, enginerr.WithField(enginerr.ValidationFailed, "ddm: D0 must be > 0", "D0")
	}

	var value float64
	var err error
	method := models.MethodDDMGordon

	switch in.Variant {
	case models.DDMTwoStage:
		method = models.MethodDDMTwoStage
		value, err = ddmTwoStage(in)
	case models.DDMHModel:
		method = models.MethodDDMHModel
		value, err = ddmHModel(in)
	default:
		value, err = ddmGordon(in)
	}
	if err != nil {
		return nil, err
	}

	result := &models.ValuationResult{
		Method:            method,
		EquityValue:       value,
		FairValuePerShare: value,
	}
	if in.CurrentPrice > 0 {
		result.UpsidePct = (value - in.CurrentPrice) / in.CurrentPrice * 100
	}
	return result, nil
}

func ddmGordon(in DDMInput) (float64, error) {
	cap := in.GrowthCap
	if cap <= 0 {
		cap = 0.05
	}
	floor := in.GrowthFloor
	if floor <= 0 {
		floor = 0.01
	}
	g := in.TerminalGrowth
	if g > cap {
		g = cap
	}
	if g < floor {
		g = floor
	}
	if in.CostOfEquity-g < epsilon {
		return 0, enginerr.WithField(enginerr.NumericalDegenerate, "ddm gordon: cost of equity must exceed growth", "CostOfEquity")
	}
	return in.D0 * (1 + g) / (in.CostOfEquity - g), nil
}

func ddmTwoStage(in DDMInput) (float64, error) {
	if in.HighYears < 1 {
		return 0, enginerr.WithField(enginerr.ValidationFailed, "ddm two-stage: HighYears must be >= 1", "HighYears")
	}
	if in.CostOfEquity-in.SteadyGrowth < epsilon {
		return 0, enginerr.WithField(enginerr.NumericalDegenerate, "ddm two-stage: cost of equity must exceed steady growth", "CostOfEquity")
	}

	var pvSum float64
	div := in.D0
	discount := 1.0
	for t := 1; t <= in.HighYears; t++ {
		div = div * (1 + in.HighGrowth)
		discount *= 1 + in.CostOfEquity
		pvSum += div / discount
	}

	terminal := div * (1 + in.SteadyGrowth) / (in.CostOfEquity - in.SteadyGrowth)
	pvTerminal := terminal / discount

	return pvSum + pvTerminal, nil
}

func ddmHModel(in DDMInput) (float64, error) {
	if in.CostOfEquity-in.LongGrowth < epsilon {
		return 0, enginerr.WithField(enginerr.NumericalDegenerate, "ddm h-model: cost of equity must exceed long-run growth", "CostOfEquity")
	}
	base := in.D0 * (1 + in.LongGrowth) / (in.CostOfEquity - in.LongGrowth)
	decay := in.D0 * in.HalfLifeYears * (in.ShortGrowth - in.LongGrowth) / (in.CostOfEquity - in.LongGrowth)
	return base + decay, nil
}

// ImpliedGrowth solves the Gordon formula for g given an observed market
// price: the inverse of the usual fair-value computation.
func ImpliedGrowth(price, d0, costOfEquity float64) (float64, error) {
	if price <= 0 {
		return 0, enginerr.WithField(enginerr.ValidationFailed, "implied growth: price must be > 0", "price")
	}
	denom := price + d0
	if denom == 0 {
		return 0, enginerr.New(enginerr.NumericalDegenerate, "implied growth: price + D0 is zero")
	}
	return (price*costOfEquity - d0) / denom, nil
}
