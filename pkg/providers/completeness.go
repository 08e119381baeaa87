package providers

import "valuationengine/pkg/models"

// completeness scores a snapshot against the ten-field checklist the
// aggregator's data_completeness figure is computed from.
func completeness(fd *models.FinancialData) float64 {
	checks := []bool{
		fd.CurrentPrice > 0,
		fd.SharesOutstanding > 0,
		len(fd.OCF) > 0,
		len(fd.CAPEX) > 0,
		fd.Revenue >= 0,
		fd.TotalDebt >= 0,
		fd.Cash >= 0,
		fd.BookValue != 0,
		fd.Beta != 0,
		fd.Sector != "",
	}
	pass := 0
	for _, ok := range checks {
		if ok {
			pass++
		}
	}
	return float64(pass) / float64(len(checks))
}
