package valuation

import (
	"math"
	"testing"

	"valuationengine/pkg/models"
)

func TestDDMGordonRoundTripImpliedGrowth(t *testing.T) {
	d0, re, g := 2.0, 0.09, 0.03
	result, err := CalculateDDM(DDMInput{Variant: models.DDMGordon, D0: d0, CostOfEquity: re, TerminalGrowth: g, GrowthCap: 0.05, GrowthFloor: 0.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	price := result.FairValuePerShare

	impliedG, err := ImpliedGrowth(price, d0, re)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(impliedG-g) > 1e-6 {
		t.Fatalf("implied growth round-trip: got %v, want %v", impliedG, g)
	}
}

func TestDDMGordonFiveDollarDividendTenPercentCostOfEquity(t *testing.T) {
	result, err := CalculateDDM(DDMInput{Variant: models.DDMGordon, D0: 5.00, CostOfEquity: 0.10, TerminalGrowth: 0.05, GrowthCap: 0.05, GrowthFloor: 0.01})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 105.00
	if math.Abs(result.FairValuePerShare-want) > 1e-9 {
		t.Fatalf("D0=5.00, r_e=10%%, g=5%% Gordon value: got %v, want %v", result.FairValuePerShare, want)
	}
}

func TestDDMGordonEnforcesCap(t *testing.T) {
	result, err := CalculateDDM(DDMInput{Variant: models.DDMGordon, D0: 1.0, CostOfEquity: 0.09, TerminalGrowth: 0.20, GrowthCap: 0.05})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	uncapped := 1.0 * 1.20 / (0.09 - 0.20)
	if result.FairValuePerShare == uncapped || result.FairValuePerShare < 0 {
		t.Fatalf("expected growth cap to apply, got fair value %v", result.FairValuePerShare)
	}
}

func TestDDMRejectsNonPositiveDividend(t *testing.T) {
	if _, err := CalculateDDM(DDMInput{Variant: models.DDMGordon, D0: 0, CostOfEquity: 0.09, TerminalGrowth: 0.02}); err == nil {
		t.Fatal("expected error for D0 <= 0")
	}
}

func TestDDMTwoStage(t *testing.T) {
	result, err := CalculateDDM(DDMInput{
		Variant: models.DDMTwoStage, D0: 1.0, CostOfEquity: 0.10,
		HighGrowth: 0.15, HighYears: 5, SteadyGrowth: 0.03,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FairValuePerShare <= 0 {
		t.Fatalf("expected positive two-stage value, got %v", result.FairValuePerShare)
	}
}

func TestDDMHModel(t *testing.T) {
	result, err := CalculateDDM(DDMInput{
		Variant: models.DDMHModel, D0: 1.0, CostOfEquity: 0.10,
		ShortGrowth: 0.12, LongGrowth: 0.03, HalfLifeYears: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FairValuePerShare <= 0 {
		t.Fatalf("expected positive H-model value, got %v", result.FairValuePerShare)
	}
}
