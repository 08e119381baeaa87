// Package engine orchestrates the three caller-facing operations:
// value_equity, compute_wacc, and sensitivity. It wires the Data Aggregator,
// FCF Computer, WACC Engine, Growth Projection Engine, Valuation Models,
// Scenario Engine, and Validator in strict order: aggregator -> FCF -> WACC
// & growth -> valuation -> scenarios -> validation.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"valuationengine/internal/logging"
	"valuationengine/pkg/aggregator"
	"valuationengine/pkg/damodaran"
	"valuationengine/pkg/enginerr"
	"valuationengine/pkg/fcf"
	"valuationengine/pkg/growth"
	"valuationengine/pkg/models"
	"valuationengine/pkg/scenario"
	"valuationengine/pkg/validate"
	"valuationengine/pkg/valuation"
	"valuationengine/pkg/wacc"
)

var log = logging.Tag("ENGINE")

// Engine wires every component behind the three caller-facing operations.
type Engine struct {
	aggregator         *aggregator.Aggregator
	waccEngine         *wacc.Engine
	horizon            int
	aggregatorDeadline time.Duration
}

// New builds an Engine. horizon is the default explicit-projection length
// (5 years if unset).
func New(agg *aggregator.Aggregator, waccEngine *wacc.Engine, horizon int) *Engine {
	if horizon <= 0 {
		horizon = 5
	}
	return &Engine{aggregator: agg, waccEngine: waccEngine, horizon: horizon}
}

// WithAggregatorDeadline bounds the Data Aggregator fan-out step on its own,
// distinct from the caller's overall request deadline: a slow fan-out should
// not be allowed to consume the entire request budget before WACC, growth,
// and valuation even begin.
func (e *Engine) WithAggregatorDeadline(d time.Duration) *Engine {
	e.aggregatorDeadline = d
	return e
}

func (e *Engine) fetch(ctx context.Context, ticker string, strategy models.AggregatorStrategy) (*models.FinancialData, error) {
	if e.aggregatorDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.aggregatorDeadline)
		defer cancel()
	}
	return e.aggregator.Fetch(ctx, ticker, e.horizon, strategy)
}

// Request parameterizes value_equity.
type Request struct {
	Ticker    string
	Overrides models.Overrides
}

// Result bundles whatever value_equity produced: a single Bank Hybrid
// ValuationResult for financial-services tickers with a BankMethod set, or a
// ScenarioBundle for every other ticker.
type Result struct {
	Single   *models.ValuationResult
	Scenario *models.ScenarioBundle
	Data     *models.FinancialData
	WACC     *models.WACCResult
	Growth   models.GrowthPlan
}

// ValueEquity runs the full pipeline end to end.
func (e *Engine) ValueEquity(ctx context.Context, req Request) (*Result, error) {
	overrides := req.Overrides
	if overrides.Strategy == "" {
		overrides.Strategy = models.StrategyBestQuality
	}
	if overrides.GordonGrowthCap == 0 {
		overrides.GordonGrowthCap = 0.05
	}

	requestID := uuid.New().String()

	data, err := e.fetch(ctx, req.Ticker, overrides.Strategy)
	if err != nil {
		return nil, err
	}
	if err := data.Validate(); err != nil {
		return nil, enginerr.Wrap(enginerr.ValidationFailed, "engine: financial data failed structural validation", err)
	}

	fcfSeries, baseFCF, err := fcf.Series(data)
	if err != nil {
		return nil, err
	}
	if overrides.FCFBaseOverride != nil {
		baseFCF = *overrides.FCFBaseOverride
	}
	yoy := fcf.YoYGrowth(fcfSeries)
	fcfOutlierWarnings := fcf.DetectOutliers(fcfSeries)

	waccIn := models.WACCInputs{
		RawBeta:          data.Beta,
		CountryPremium:   damodaran.CountryPremium(overrides.CountryCode),
		Sector:           data.Sector,
		CurrentDebt:      data.TotalDebt,
		Cash:             data.Cash,
		CurrentEquity:    data.CurrentPrice * data.SharesOutstanding,
		TargetDebtEquity: overrides.ApplyHamadaTargetDE,
		TaxRate:          damodaran.Industry(data.Sector).TaxRate,
		PreTaxCostOfDebt: damodaran.Industry(data.Sector).CostOfDebt,
		ApplyBlume:       overrides.ApplyBlume,
		UseNetDebt:       overrides.UseNetDebt,
		MarketCap:        data.CurrentPrice * data.SharesOutstanding,
	}

	waccResult, err := e.waccEngine.Calculate(ctx, waccIn)
	if err != nil {
		return nil, err
	}
	effectiveWACC := waccResult.WACC
	if overrides.WACCOverride != nil {
		effectiveWACC = *overrides.WACCOverride
	}

	fundamentals := growth.Fundamentals{
		ROE:           roe(data),
		AverageMargin: margin(data),
		RevenueGrowth: revenueGrowth(yoy),
	}
	var plan models.GrowthPlan
	if len(overrides.ProjectionGrowthOverrides) > 0 {
		terminal := effectiveWACC - 0.045
		if overrides.TerminalGrowthOverride != nil {
			terminal = *overrides.TerminalGrowthOverride
		}
		plan = growth.Manual(baseFCF, overrides.ProjectionGrowthOverrides, terminal, effectiveWACC)
	} else {
		plan = growth.Plan(baseFCF, yoy, fundamentals, effectiveWACC, e.horizon)
	}
	if overrides.TerminalGrowthOverride != nil {
		plan.TerminalGrowth = *overrides.TerminalGrowthOverride
	}

	shares := data.SharesOutstanding
	if overrides.SharesOverride != nil {
		shares = *overrides.SharesOverride
	}

	if err := validate.PreCheck(validate.PreCheckInput{
		BaseFCF: baseFCF, WACC: effectiveWACC, TerminalGrowth: plan.TerminalGrowth,
		Shares: shares, Cash: data.Cash, Debt: data.TotalDebt, Revenue: data.Revenue, EBITDA: data.EBITDA,
	}); err != nil {
		return nil, err
	}

	if damodaran.IsFinancialServices(data.Sector) && overrides.BankMethod != "" {
		return e.valueBank(data, waccResult, plan, shares, overrides, requestID, fcfOutlierWarnings)
	}

	scenarioBundle, err := scenario.Generate(scenario.BaseCase{
		BaseFCF: baseFCF, GrowthRates: plan.Rates, TerminalGrowth: plan.TerminalGrowth,
		WACC: effectiveWACC, Cash: data.Cash, Debt: data.TotalDebt, Shares: shares, CurrentPrice: data.CurrentPrice,
	}, derefWeights(overrides.ProbabilityWeights))
	if err != nil {
		return nil, err
	}

	postWarnings, err := validate.PostCheck(validate.PostCheckInput{
		FairValuePerShare: scenarioBundle.Base.FairValuePerShare,
		CurrentPrice:      data.CurrentPrice,
		WACC:              effectiveWACC,
		TerminalGrowth:    plan.TerminalGrowth,
	})
	if err != nil {
		return nil, err
	}
	scenarioBundle.Warnings = append(scenarioBundle.Warnings, postWarnings...)
	scenarioBundle.Warnings = append(scenarioBundle.Warnings, fcfOutlierWarnings...)
	scenarioBundle.RequestID = requestID

	log.Printf("value_equity %s: request_id=%s weighted_fair_value=%.2f recommendation=%s", req.Ticker, requestID, scenarioBundle.WeightedFairValue, scenarioBundle.Recommendation)

	return &Result{Scenario: scenarioBundle, Data: data, WACC: waccResult, Growth: plan}, nil
}

func (e *Engine) valueBank(data *models.FinancialData, waccResult *models.WACCResult, plan models.GrowthPlan, shares float64, overrides models.Overrides, requestID string, fcfOutlierWarnings []string) (*Result, error) {
	bookValuePerShare := 0.0
	if shares > 0 {
		bookValuePerShare = data.BookValue / shares
	}
	d0 := 0.0
	if len(data.DividendsPerShare) > 0 {
		d0 = data.DividendsPerShare[0]
	}

	hybrid, err := valuation.CalculateBankHybrid(valuation.HybridInput{
		RIM: valuation.RIMInput{
			BookValue0: data.BookValue, ROE: roe(data), CostOfEquity: waccResult.CostOfEquity,
			Years: e.horizon, Shares: shares, CurrentPrice: data.CurrentPrice,
		},
		PBROE: valuation.PBROEInput{
			ROE: roe(data), TerminalGrowth: plan.TerminalGrowth, CostOfEquity: waccResult.CostOfEquity,
			BookValuePerShare: bookValuePerShare,
		},
		DDM: valuation.DDMInput{
			Variant: models.DDMGordon, D0: d0, CostOfEquity: waccResult.CostOfEquity,
			TerminalGrowth: plan.TerminalGrowth, GrowthCap: overrides.GordonGrowthCap,
		},
		Shares: shares, CurrentPrice: data.CurrentPrice,
	})
	if err != nil {
		return nil, err
	}
	hybrid.RequestID = requestID
	hybrid.Warnings = append(hybrid.Warnings, fcfOutlierWarnings...)
	return &Result{Single: hybrid, Data: data, WACC: waccResult, Growth: plan}, nil
}

// ComputeWACCForTicker fetches a snapshot via the aggregator and runs the
// WACC Engine standalone, for callers (the HTTP surface) that only have a
// ticker rather than a pre-fetched FinancialData.
func (e *Engine) ComputeWACCForTicker(ctx context.Context, ticker string, overrides models.Overrides) (*models.WACCResult, error) {
	if overrides.Strategy == "" {
		overrides.Strategy = models.StrategyBestQuality
	}
	data, err := e.fetch(ctx, ticker, overrides.Strategy)
	if err != nil {
		return nil, err
	}
	return e.ComputeWACC(ctx, data, overrides)
}

// ComputeWACC runs the WACC Engine standalone.
func (e *Engine) ComputeWACC(ctx context.Context, data *models.FinancialData, overrides models.Overrides) (*models.WACCResult, error) {
	in := models.WACCInputs{
		RawBeta: data.Beta, CountryPremium: damodaran.CountryPremium(overrides.CountryCode),
		Sector: data.Sector, CurrentDebt: data.TotalDebt, Cash: data.Cash,
		CurrentEquity: data.CurrentPrice * data.SharesOutstanding, TargetDebtEquity: overrides.ApplyHamadaTargetDE,
		TaxRate: damodaran.Industry(data.Sector).TaxRate, PreTaxCostOfDebt: damodaran.Industry(data.Sector).CostOfDebt,
		ApplyBlume: overrides.ApplyBlume, UseNetDebt: overrides.UseNetDebt,
		MarketCap: data.CurrentPrice * data.SharesOutstanding,
	}
	return e.waccEngine.Calculate(ctx, in)
}

// Sensitivity runs the sensitivity matrix standalone, given a precomputed
// base FCF/growth-rate list and an optional custom grid (defaults to the
// standard 9x9 span when nil).
func (e *Engine) Sensitivity(data *models.FinancialData, baseFCF float64, growthRates []float64, baseWACC, baseGrowth float64, waccAxis, growthAxis []float64) *models.SensitivityMatrix {
	if waccAxis == nil || growthAxis == nil {
		waccAxis, growthAxis = scenario.SensitivityGrid(baseWACC, baseGrowth)
	}
	return scenario.Sensitivity(scenario.BaseCase{
		BaseFCF: baseFCF, GrowthRates: growthRates, Cash: data.Cash, Debt: data.TotalDebt,
		Shares: data.SharesOutstanding, CurrentPrice: data.CurrentPrice,
	}, waccAxis, growthAxis)
}

func derefWeights(w *[3]float64) [3]float64 {
	if w == nil {
		return [3]float64{0.25, 0.50, 0.25}
	}
	return *w
}

func roe(data *models.FinancialData) float64 {
	if data.BookValue <= 0 {
		return 0
	}
	return data.NetIncome / data.BookValue
}

func margin(data *models.FinancialData) float64 {
	if data.Revenue <= 0 {
		return 0
	}
	return data.EBITDA / data.Revenue
}

func revenueGrowth(yoy []float64) float64 {
	if len(yoy) == 0 {
		return 0
	}
	return yoy[0]
}
