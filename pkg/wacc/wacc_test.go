package wacc

import (
	"context"
	"testing"

	"valuationengine/pkg/models"
)

func TestCalculateAppliesBlumeAndHamada(t *testing.T) {
	e := New(nil, false, 10)
	targetDE := 0.5
	in := models.WACCInputs{
		RawBeta: 1.2, Sector: "Technology",
		CurrentDebt: 2e9, Cash: 1e9, CurrentEquity: 8e9,
		TargetDebtEquity: &targetDE, TaxRate: 0.21, PreTaxCostOfDebt: 0.05,
		ApplyBlume: true, MarketCap: 8e9,
	}
	result, err := e.Calculate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantBlume := (2.0/3.0)*1.2 + 1.0/3.0
	if diff := result.BlumeBeta - wantBlume; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("blume beta = %v, want %v", result.BlumeBeta, wantBlume)
	}
	if result.WACC <= 0 {
		t.Fatalf("expected positive WACC, got %v", result.WACC)
	}
}

func TestFinancialServicesRedirect(t *testing.T) {
	e := New(nil, false, 10)
	in := models.WACCInputs{RawBeta: 0.9, Sector: "Financial Services", CurrentDebt: 5e9, CurrentEquity: 3e9, TaxRate: 0.21}
	result, err := e.Calculate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IndustryWACCOverride {
		t.Fatal("expected financial-services redirect to fire")
	}
	if result.WACC <= 0 || result.WACC > 0.2 {
		t.Fatalf("unexpected redirected WACC: %v", result.WACC)
	}
}

func TestSectorFloorApplied(t *testing.T) {
	e := New(nil, false, 10)
	in := models.WACCInputs{
		RawBeta: 0.1, Sector: "Technology", CurrentDebt: 1e8, CurrentEquity: 9e9,
		TaxRate: 0.21, PreTaxCostOfDebt: 0.03, ApplyBlume: false, MarketCap: 9e9,
	}
	result, err := e.Calculate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.SectorFloorApplied {
		t.Fatalf("expected sector floor to apply for a low-beta tech company, WACC=%v", result.WACC)
	}
}

func TestGrossDebtRuleUsesGrossWhenLarge(t *testing.T) {
	e := New(nil, false, 10)
	in := models.WACCInputs{
		RawBeta: 1.0, Sector: "Industrials", CurrentDebt: 6e9, Cash: 7e9, CurrentEquity: 10e9,
		TaxRate: 0.21, PreTaxCostOfDebt: 0.05, UseNetDebt: true, MarketCap: 10e9,
	}
	result, err := e.Calculate(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.UsedGrossDebt {
		t.Fatal("expected gross-debt rule to fire when debt exceeds the threshold even with UseNetDebt set")
	}
}
