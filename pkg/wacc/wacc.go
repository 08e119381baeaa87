// Package wacc computes the cost of capital: CAPM cost of equity with
// optional Blume shrinkage and Hamada unlever/relever, cost of debt, the
// gross-vs-net-debt capital-structure weighting rule, sector floors, and the
// financial-services industry-WACC redirect. Grounded directly on the
// teacher's pkg/core/valuation/wacc.go (Hamada relever, CAPM, weight
// derivation) and wacc_series.go, generalized to add the Blume step, the
// unlever stage, a dynamic risk-free rate, and the Damodaran lookups.
package wacc

import (
	"context"
	"math"

	"valuationengine/internal/logging"
	"valuationengine/pkg/damodaran"
	"valuationengine/pkg/enginerr"
	"valuationengine/pkg/models"
)

var log = logging.Tag("WACC")

const defaultRiskFreeRate = 0.0445
const defaultMarketRiskPremium = 0.0447
const epsilon = 1e-6

// RiskFreeSource supplies a dynamic risk-free rate; pkg/providers.Treasury
// wrapped by internal/cache.TreasuryCache implements this.
type RiskFreeSource interface {
	Rate(ctx context.Context, maturityYears int) (rate float64, source string, err error)
}

// Engine derives WACCResult values from WACCInputs.
type Engine struct {
	riskFree        RiskFreeSource
	riskFreeMaturity int
	dynamicRiskFree bool
}

// New builds a WACC engine. riskFree may be nil, in which case the static
// default rate is always used regardless of dynamicRiskFree.
func New(riskFree RiskFreeSource, dynamicRiskFree bool, maturityYears int) *Engine {
	if maturityYears <= 0 {
		maturityYears = 10
	}
	return &Engine{riskFree: riskFree, riskFreeMaturity: maturityYears, dynamicRiskFree: dynamicRiskFree}
}

// Calculate derives a full WACCResult from the given inputs.
func (e *Engine) Calculate(ctx context.Context, in models.WACCInputs) (*models.WACCResult, error) {
	if in.MarketRiskPremium <= 0 {
		in.MarketRiskPremium = defaultMarketRiskPremium
	}

	rf, rfSource, err := e.resolveRiskFree(ctx)
	if err != nil {
		return nil, err
	}
	in.RiskFreeRate = rf
	in.RiskFreeSource = rfSource

	result := &models.WACCResult{}

	beta := in.RawBeta
	if in.ApplyBlume {
		beta = (2.0/3.0)*beta + (1.0 / 3.0)
		result.BlumeBeta = beta
	} else {
		result.BlumeBeta = beta
	}

	// Financial-services redirect takes precedence over the rest of the
	// capital-structure machinery: the engine never computes a
	// company-specific WACC for banks, whose leverage is operational
	// rather than financing. Cost of equity is still a genuine CAPM figure
	// (no Hamada relever, since there is no target D/E to relever against),
	// because the Bank Hybrid's RIM and DDM legs both discount at it.
	if damodaran.IsFinancialServices(in.Sector) {
		row := damodaran.Industry(in.Sector)
		result.RelevBeta = beta
		result.CostOfEquity = in.RiskFreeRate + beta*in.MarketRiskPremium + in.CountryPremium
		result.WACC = row.WACC
		result.IndustryWACCOverride = true
		result.Warnings = append(result.Warnings, "financial services sector: redirected to industry WACC, company-specific computation skipped")
		return result, nil
	}

	relevBeta := beta
	if in.TargetDebtEquity != nil {
		currentDE := 0.0
		if in.CurrentEquity > 0 {
			currentDE = in.CurrentDebt / in.CurrentEquity
		}
		unlevered := beta / (1 + (1-in.TaxRate)*currentDE)
		result.UnleveredBeta = unlevered
		relevBeta = unlevered * (1 + (1-in.TaxRate)*(*in.TargetDebtEquity))
	}
	result.RelevBeta = relevBeta

	costOfEquity := in.RiskFreeRate + relevBeta*in.MarketRiskPremium + in.CountryPremium
	result.CostOfEquity = costOfEquity

	costOfDebt := in.PreTaxCostOfDebt
	if costOfDebt <= 0 {
		costOfDebt = damodaran.Industry(in.Sector).CostOfDebt
	}
	result.CostOfDebt = costOfDebt
	result.AfterTaxCostOfDebt = costOfDebt * (1 - in.TaxRate)

	grossDebtThreshold := math.Max(5e9, 0.01*in.MarketCap)
	useGross := in.CurrentDebt > grossDebtThreshold
	debt := in.CurrentDebt
	if !useGross && in.UseNetDebt {
		debt = math.Max(0, in.CurrentDebt-in.Cash)
	}
	result.UsedGrossDebt = useGross || !in.UseNetDebt

	equity := in.CurrentEquity
	v := equity + debt
	if v <= 0 {
		return nil, enginerr.New(enginerr.NumericalDegenerate, "wacc: equity + debt is non-positive")
	}
	result.EquityWeight = equity / v
	result.DebtWeight = debt / v

	wacc := result.EquityWeight*costOfEquity + result.DebtWeight*result.AfterTaxCostOfDebt
	result.WACC = wacc

	floor, specific := damodaran.SectorFloor(in.Sector)
	if wacc < floor-epsilon {
		result.WACC = floor
		result.SectorFloor = floor
		result.SectorFloorApplied = true
		tag := "default"
		if specific {
			tag = "sector-specific"
		}
		result.Warnings = append(result.Warnings, "wacc floored at "+tag+" sector minimum")
		log.Printf("sector floor applied for %s: raw=%.4f floor=%.4f", in.Sector, wacc, floor)
	} else {
		result.SectorFloor = floor
	}

	return result, nil
}

func (e *Engine) resolveRiskFree(ctx context.Context) (float64, string, error) {
	if !e.dynamicRiskFree || e.riskFree == nil {
		return defaultRiskFreeRate, "static_default", nil
	}
	rate, source, err := e.riskFree.Rate(ctx, e.riskFreeMaturity)
	if err != nil {
		log.Warnf("treasury probe failed, falling back to static default: %v", err)
		return defaultRiskFreeRate, "static_default", nil
	}
	return rate, source, nil
}
