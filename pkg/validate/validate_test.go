package validate

import "testing"

func validPreCheck() PreCheckInput {
	return PreCheckInput{
		BaseFCF: 1000, WACC: 0.09, TerminalGrowth: 0.025,
		Shares: 1_000_000, Cash: 100, Debt: 50, Revenue: 5000, EBITDA: 800,
	}
}

func TestPreCheckAcceptsWellFormedInput(t *testing.T) {
	if err := PreCheck(validPreCheck()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPreCheckRejectsGrowthAboveWACC(t *testing.T) {
	in := validPreCheck()
	in.TerminalGrowth = in.WACC
	if err := PreCheck(in); err == nil {
		t.Fatal("expected error when terminal growth equals WACC")
	}
}

func TestPreCheckRejectsSharesBelowThreshold(t *testing.T) {
	in := validPreCheck()
	in.Shares = 500 // looks like a billions-scaled figure, not an absolute count
	if err := PreCheck(in); err == nil {
		t.Fatal("expected error for implausibly small share count")
	}
}

func TestPreCheckRejectsNegativeCash(t *testing.T) {
	in := validPreCheck()
	in.Cash = -1
	if err := PreCheck(in); err == nil {
		t.Fatal("expected error for negative cash")
	}
}

func TestPreCheckRejectsWACCOutOfRange(t *testing.T) {
	in := validPreCheck()
	in.WACC = 0.6
	if err := PreCheck(in); err == nil {
		t.Fatal("expected error for WACC >= 0.5")
	}
}

func TestPostCheckRejectsNonPositiveFairValue(t *testing.T) {
	_, err := PostCheck(PostCheckInput{FairValuePerShare: 0, CurrentPrice: 10, WACC: 0.09, TerminalGrowth: 0.025})
	if err == nil {
		t.Fatal("expected error for non-positive fair value")
	}
}

func TestPostCheckRejectsMagnitudeBlowout(t *testing.T) {
	_, err := PostCheck(PostCheckInput{FairValuePerShare: 500, CurrentPrice: 10, WACC: 0.09, TerminalGrowth: 0.025})
	if err == nil {
		t.Fatal("expected error when fair value exceeds 10x current price")
	}
}

func TestPostCheckWarnsOnThinSpread(t *testing.T) {
	warnings, err := PostCheck(PostCheckInput{FairValuePerShare: 15, CurrentPrice: 10, WACC: 0.06, TerminalGrowth: 0.03})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a warning for a sub-4pp WACC-g spread")
	}
}

func TestPostCheckNoWarningsForHealthyInputs(t *testing.T) {
	warnings, err := PostCheck(PostCheckInput{FairValuePerShare: 15, CurrentPrice: 10, WACC: 0.10, TerminalGrowth: 0.025})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
}

func TestCalculateYoYHandlesZeroPrior(t *testing.T) {
	if got := CalculateYoY(0, 0); got != 0 {
		t.Fatalf("expected 0 for 0-to-0, got %v", got)
	}
	if got := CalculateYoY(10, 0); got <= 0 {
		t.Fatalf("expected positive infinity-like growth from a zero base, got %v", got)
	}
}

func TestCheckForOutlierFlagsDropToZero(t *testing.T) {
	check := CheckForOutlier("revenue", 0, 100, 50)
	if !check.IsOutlier {
		t.Fatal("expected a drop to zero to be flagged as an outlier")
	}
}
