package valuation

import (
	"valuationengine/pkg/enginerr"
	"valuationengine/pkg/models"
)

// HybridInput parameterizes the bank-sector composite: 50% RIM, 30% PB/ROE,
// 20% DDM. If any leg errors, its weight redistributes proportionally among
// the remaining legs.
type HybridInput struct {
	RIM    RIMInput
	PBROE  PBROEInput
	DDM    DDMInput
	Shares float64
	CurrentPrice float64
}

const (
	weightRIM   = 0.50
	weightPBROE = 0.30
	weightDDM   = 0.20
)

// CalculateBankHybrid composes the three bank-sector legs into one fair
// value per share. It fails only if every leg fails.
func CalculateBankHybrid(in HybridInput) (*models.ValuationResult, error) {
	type leg struct {
		name   string
		weight float64
		value  float64
		ok     bool
	}

	legs := make([]leg, 0, 3)

	rim, err := CalculateResidualIncome(in.RIM)
	if err == nil && rim.FairValuePerShare > 0 {
		legs = append(legs, leg{"rim", weightRIM, rim.FairValuePerShare, true})
	} else {
		legs = append(legs, leg{"rim", weightRIM, 0, false})
	}

	pbroe, err := PBROEValue(in.PBROE)
	if err == nil {
		legs = append(legs, leg{"pb_roe", weightPBROE, pbroe, true})
	} else {
		legs = append(legs, leg{"pb_roe", weightPBROE, 0, false})
	}

	ddm, err := CalculateDDM(in.DDM)
	if err == nil {
		legs = append(legs, leg{"ddm", weightDDM, ddm.FairValuePerShare, true})
	} else {
		legs = append(legs, leg{"ddm", weightDDM, 0, false})
	}

	var okWeight float64
	for _, l := range legs {
		if l.ok {
			okWeight += l.weight
		}
	}
	if okWeight <= 0 {
		return nil, enginerr.New(enginerr.NumericalDegenerate, "bank hybrid: every valuation leg failed")
	}

	var value float64
	var warnings []string
	for _, l := range legs {
		if !l.ok {
			warnings = append(warnings, l.name+" leg failed, weight redistributed proportionally")
			continue
		}
		redistributed := l.weight / okWeight
		value += redistributed * l.value
	}

	result := &models.ValuationResult{
		Method:            models.MethodBankHybrid,
		FairValuePerShare: value,
		EquityValue:       value * in.Shares,
		Warnings:          warnings,
	}
	if in.CurrentPrice > 0 {
		result.UpsidePct = (value - in.CurrentPrice) / in.CurrentPrice * 100
	}
	return result, nil
}
