package models

// WACCInputs captures everything the WACC Engine needs to derive a discount
// rate for one valuation request.
type WACCInputs struct {
	RawBeta           float64
	MarketRiskPremium float64
	RiskFreeRate      float64
	RiskFreeSource    string // "static_default", or the probe's tag: "treasury_json", "treasury_html", "fallback_static"

	CountryPremium float64
	Sector         string

	CurrentDebt       float64
	Cash              float64 // used by the gross-vs-net-debt weighting rule
	CurrentEquity     float64 // market value of equity if known, else book value
	TargetDebtEquity  *float64 // nil => Hamada relever step is skipped
	TaxRate           float64
	PreTaxCostOfDebt  float64

	ApplyBlume bool // default true
	UseNetDebt bool // caller preference; overridden by the gross-debt rule below

	MarketCap float64 // used by the gross-vs-net-debt weighting rule
}

// WACCResult holds every intermediate the engine derived, not just the
// final number, so callers can audit how the rate was built.
type WACCResult struct {
	BlumeBeta      float64
	UnleveredBeta  float64
	RelevBeta      float64 // beta actually used in CAPM (== RawBeta if no adjustments applied)
	CostOfEquity   float64
	CostOfDebt     float64 // pre-tax
	AfterTaxCostOfDebt float64

	EquityWeight float64
	DebtWeight   float64
	UsedGrossDebt bool

	SectorFloor       float64
	SectorFloorApplied bool
	IndustryWACCOverride bool // financial-services redirect fired

	WACC float64

	Warnings []string
}
