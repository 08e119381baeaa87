package models

// ValuationMethod tags which model family produced a ValuationResult.
type ValuationMethod string

const (
	MethodDCF          ValuationMethod = "dcf"
	MethodDDMGordon     ValuationMethod = "ddm_gordon"
	MethodDDMTwoStage   ValuationMethod = "ddm_two_stage"
	MethodDDMHModel     ValuationMethod = "ddm_h_model"
	MethodRIM           ValuationMethod = "rim"
	MethodRelative      ValuationMethod = "relative"
	MethodBankHybrid    ValuationMethod = "bank_hybrid"
)

// DDMVariant selects which dividend-discount-model formula to apply.
type DDMVariant string

const (
	DDMGordon   DDMVariant = "gordon"
	DDMTwoStage DDMVariant = "two_stage"
	DDMHModel   DDMVariant = "h_model"
)

// BankMethod names the bank-sector valuation components. In pkg/engine any
// non-empty BankMethod routes a financial-services ticker to the full Bank
// Hybrid composite; rim, pb_roe and ddm do not select a single leg.
type BankMethod string

const (
	BankRIM    BankMethod = "rim"
	BankPBROE  BankMethod = "pb_roe"
	BankDDM    BankMethod = "ddm"
	BankHybrid BankMethod = "hybrid"
)

// Recommendation is the scenario engine's band for the weighted upside.
type Recommendation string

const (
	RecStrongBuy  Recommendation = "STRONG BUY"
	RecBuy        Recommendation = "BUY"
	RecHold       Recommendation = "HOLD"
	RecSell       Recommendation = "SELL"
	RecStrongSell Recommendation = "STRONG SELL"
)

// ValuationResult is the output of a single model invocation.
type ValuationResult struct {
	RequestID string // caller-side correlation id, set once per value_equity call
	Method    ValuationMethod

	EnterpriseValue float64
	EquityValue     float64
	FairValuePerShare float64

	PVFCFPerYear []float64 // present value of each explicit-horizon cash flow
	PVTerminal   float64

	UpsidePct      float64 // vs. current price, if provided
	Recommendation Recommendation

	Warnings []string
}

// ScenarioType tags pessimistic/base/optimistic within a ScenarioBundle.
type ScenarioType string

const (
	ScenarioPessimistic ScenarioType = "pessimistic"
	ScenarioBase        ScenarioType = "base"
	ScenarioOptimistic  ScenarioType = "optimistic"
)

// ScenarioBundle aggregates three ValuationResults into a probability-weighted
// fair value with a risk/reward read.
type ScenarioBundle struct {
	RequestID   string // caller-side correlation id, set once per value_equity call
	Pessimistic ValuationResult
	Base        ValuationResult
	Optimistic  ValuationResult

	Weights [3]float64 // pessimistic, base, optimistic; sums to 1.0 within 1e-9

	WeightedFairValue float64
	RiskRewardRatio   float64
	Recommendation    Recommendation
	ConfidenceBand    string // "high", "medium", "low"

	MonotonicityViolated bool
	Warnings             []string
}

// SensitivityCell is one (WACC, g) grid point. Invalid cells (WACC <= g) carry
// Valid == false and a zero FairValue.
type SensitivityCell struct {
	WACC             float64
	TerminalGrowth   float64
	FairValuePerShare float64
	UpsidePctClipped float64 // clipped to [-30, 30] for colour mapping only
	Valid            bool
}

// SensitivityMatrix is a WACC x growth grid of SensitivityCell, row-major by
// WACC ascending, column-major by terminal growth ascending.
type SensitivityMatrix struct {
	WACCAxis   []float64
	GrowthAxis []float64
	Cells      [][]SensitivityCell // Cells[i][j] == grid point (WACCAxis[i], GrowthAxis[j])
}

// Overrides is the configuration record the caller may supply to
// value_equity to steer individual engine decisions away from their
// defaults.
type Overrides struct {
	WACCOverride               *float64
	TerminalGrowthOverride     *float64
	ProjectionGrowthOverrides  []float64
	SharesOverride             *float64
	FCFBaseOverride            *float64
	ApplyBlume                 bool // default true
	ApplyHamadaTargetDE        *float64
	UseDynamicRiskFreeRate     bool
	CountryCode                string // default "USA"
	UseNetDebt                 bool
	Strategy                   AggregatorStrategy
	DDMVariant                 DDMVariant
	BankMethod                 BankMethod
	GordonGrowthCap            float64 // ceiling on the Gordon terminal growth rate; default 0.05
	ProbabilityWeights         *[3]float64
}

// DefaultOverrides returns the engine's baseline override values.
func DefaultOverrides() Overrides {
	return Overrides{
		ApplyBlume:      true,
		CountryCode:     "USA",
		Strategy:        StrategyBestQuality,
		DDMVariant:      DDMGordon,
		BankMethod:      BankHybrid,
		GordonGrowthCap: 0.05,
	}
}
