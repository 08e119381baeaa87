// Package validate is the cross-cutting Validator: pre-checks on raw inputs
// before any model runs, and post-checks on produced fair values.
// CalculateYoY and CheckForOutlier are the shared numeric building blocks;
// CheckForOutlier is driven by pkg/fcf against the FCF history.
package validate

import (
	"fmt"
	"math"

	"valuationengine/pkg/enginerr"
)

const spreadGuardMinimum = 0.04
const epsilon = 1e-6

// PreCheckInput is the raw material checked before a valuation model runs.
type PreCheckInput struct {
	BaseFCF   float64
	WACC      float64
	TerminalGrowth float64
	Shares    float64
	Cash      float64
	Debt      float64
	Revenue   float64
	EBITDA    float64
}

// PreCheck validates inputs against the engine's pre-check list. It returns
// a VALIDATION_FAILED error on the first fatal violation.
func PreCheck(in PreCheckInput) error {
	if math.IsNaN(in.BaseFCF) || math.IsInf(in.BaseFCF, 0) {
		return enginerr.WithField(enginerr.ValidationFailed, "base_fcf must be finite", "BaseFCF")
	}
	if in.WACC <= 0 || in.WACC >= 0.5 {
		return enginerr.WithField(enginerr.ValidationFailed, "WACC must be in (0, 0.5)", "WACC")
	}
	if in.TerminalGrowth >= in.WACC {
		return enginerr.WithField(enginerr.ValidationFailed, "terminal growth must be below WACC", "TerminalGrowth")
	}
	if in.TerminalGrowth < -0.05 {
		return enginerr.WithField(enginerr.ValidationFailed, "terminal growth must not be below -5%", "TerminalGrowth")
	}
	if in.Shares <= 1000 {
		return enginerr.WithField(enginerr.ValidationFailed, "shares must be an absolute count > 1000, not a billions-scaled figure", "Shares")
	}
	if in.Cash < 0 {
		return enginerr.WithField(enginerr.ValidationFailed, "cash must be >= 0", "Cash")
	}
	if in.Debt < 0 {
		return enginerr.WithField(enginerr.ValidationFailed, "debt must be >= 0", "Debt")
	}
	if math.IsNaN(in.Revenue) || math.IsInf(in.Revenue, 0) {
		return enginerr.WithField(enginerr.ValidationFailed, "revenue must be finite", "Revenue")
	}
	if math.IsNaN(in.EBITDA) || math.IsInf(in.EBITDA, 0) {
		return enginerr.WithField(enginerr.ValidationFailed, "EBITDA must be finite", "EBITDA")
	}
	return nil
}

// PostCheckInput is a produced fair value checked against magnitude and
// spread sanity.
type PostCheckInput struct {
	FairValuePerShare float64
	CurrentPrice      float64
	WACC              float64
	TerminalGrowth    float64
	GDPProxy          float64 // nominal GDP growth + inflation proxy, default 0.045
}

// PostCheck validates a produced fair value. Fatal violations return an
// error; non-fatal concerns are returned as warnings.
func PostCheck(in PostCheckInput) (warnings []string, err error) {
	if in.FairValuePerShare <= 0 {
		return nil, enginerr.WithField(enginerr.ValidationFailed, "fair value per share must be > 0", "FairValuePerShare")
	}
	if in.CurrentPrice > 0 && in.FairValuePerShare >= 10*in.CurrentPrice {
		return nil, enginerr.WithField(enginerr.ValidationFailed, "fair value exceeds 10x current price, likely a magnitude error", "FairValuePerShare")
	}

	if in.WACC-in.TerminalGrowth < spreadGuardMinimum-epsilon {
		warnings = append(warnings, fmt.Sprintf("WACC-g spread %.4f is below the 4pp guard", in.WACC-in.TerminalGrowth))
	}

	gdpProxy := in.GDPProxy
	if gdpProxy == 0 {
		gdpProxy = 0.045
	}
	if in.TerminalGrowth > gdpProxy {
		warnings = append(warnings, fmt.Sprintf("terminal growth %.4f exceeds the GDP+inflation proxy %.4f", in.TerminalGrowth, gdpProxy))
	}

	return warnings, nil
}

// CalculateYoY returns percentage change: (current - prior) / prior * 100.
func CalculateYoY(current, prior float64) float64 {
	if prior == 0 {
		if current == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return (current - prior) / prior * 100
}

// OutlierCheck identifies suspicious YoY value changes.
type OutlierCheck struct {
	Item       string
	Value      float64
	PriorValue float64
	ChangePct  float64
	IsOutlier  bool
	Reason     string
	Threshold  float64
}

// CheckForOutlier flags a value change as suspicious against a threshold.
func CheckForOutlier(item string, current, prior, thresholdPct float64) *OutlierCheck {
	changePct := CalculateYoY(current, prior)
	check := &OutlierCheck{Item: item, Value: current, PriorValue: prior, ChangePct: changePct, Threshold: thresholdPct}

	if current == 0 && prior > 0 {
		check.IsOutlier = true
		check.Reason = "value dropped to zero, likely a provider extraction error"
		return check
	}
	if math.Abs(changePct) > thresholdPct {
		check.IsOutlier = true
		check.Reason = fmt.Sprintf("change of %.1f%% exceeds threshold of %.1f%%", changePct, thresholdPct)
	}
	return check
}
