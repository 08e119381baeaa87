// Package damodaran holds the process-local, read-only static tables the
// WACC engine and growth engine consult: industry betas/WACCs/tax rates,
// country risk premia, and sector discount-rate floors. A built-in copy of
// the tables is the default; Load replaces it with a versioned YAML snapshot
// (config/damodaran.yaml), so they can be refreshed without a rebuild.
package damodaran

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v2"
)

// IndustryRow is one Damodaran industry-level data row.
type IndustryRow struct {
	Sector       string  `yaml:"sector"`
	UnleveredBeta float64 `yaml:"unlevered_beta"`
	WACC         float64 `yaml:"wacc"`
	TaxRate      float64 `yaml:"tax_rate"`
	CostOfDebt   float64 `yaml:"cost_of_debt"`
}

// Dataset is the full static table set, process-wide and read-only once
// loaded.
type Dataset struct {
	Industries     map[string]IndustryRow `yaml:"industries"`
	SectorFloors   map[string]float64     `yaml:"sector_floors"`
	CountryPremia  map[string]float64     `yaml:"country_premia"`
	DefaultSectorFloor float64 `yaml:"default_sector_floor"`
}

var (
	mu      sync.RWMutex
	current *Dataset
)

// builtin is the embedded fallback snapshot used when no YAML override is
// loaded, reflecting Damodaran's published aggregates as of the engine's
// last data refresh.
func builtin() *Dataset {
	return &Dataset{
		Industries: map[string]IndustryRow{
			"Technology": {Sector: "Technology", UnleveredBeta: 1.10, WACC: 0.0851, TaxRate: 0.21, CostOfDebt: 0.045},
			"Healthcare": {Sector: "Healthcare", UnleveredBeta: 0.85, WACC: 0.0712, TaxRate: 0.21, CostOfDebt: 0.042},
			"Consumer Defensive": {Sector: "Consumer Defensive", UnleveredBeta: 0.70, WACC: 0.0658, TaxRate: 0.21, CostOfDebt: 0.040},
			"Consumer Cyclical": {Sector: "Consumer Cyclical", UnleveredBeta: 1.15, WACC: 0.0835, TaxRate: 0.21, CostOfDebt: 0.048},
			"Industrials": {Sector: "Industrials", UnleveredBeta: 1.00, WACC: 0.0790, TaxRate: 0.21, CostOfDebt: 0.044},
			"Energy": {Sector: "Energy", UnleveredBeta: 1.05, WACC: 0.0805, TaxRate: 0.21, CostOfDebt: 0.052},
			"Financial Services": {Sector: "Financial Services", UnleveredBeta: 0.90, WACC: 0.0599, TaxRate: 0.21, CostOfDebt: 0.038},
			"Utilities": {Sector: "Utilities", UnleveredBeta: 0.55, WACC: 0.0545, TaxRate: 0.21, CostOfDebt: 0.041},
			"Basic Materials": {Sector: "Basic Materials", UnleveredBeta: 1.05, WACC: 0.0822, TaxRate: 0.21, CostOfDebt: 0.047},
			"Real Estate": {Sector: "Real Estate", UnleveredBeta: 0.80, WACC: 0.0620, TaxRate: 0.21, CostOfDebt: 0.043},
		},
		SectorFloors: map[string]float64{
			"Technology":         0.075,
			"Healthcare":         0.065,
			"Consumer Defensive": 0.060,
		},
		DefaultSectorFloor: 0.065,
		CountryPremia: map[string]float64{
			"USA": 0.0, "CAN": 0.0, "GBR": 0.0, "DEU": 0.0, "JPN": 0.0, "AUS": 0.0,
			"CHN": 0.0145, "IND": 0.0225, "BRA": 0.0295, "MEX": 0.0215, "ZAF": 0.0310,
			"TUR": 0.0450, "ARG": 0.0825, "RUS": 0.0340,
		},
	}
}

func init() {
	current = builtin()
}

// Load replaces the process-wide dataset with the contents of a YAML
// snapshot file. It is safe to call before any valuation request begins;
// concurrent readers thereafter see a consistent table (read-only, shared
// freely once swapped in).
func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("damodaran: read %s: %w", path, err)
	}
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return fmt.Errorf("damodaran: parse %s: %w", path, err)
	}
	mu.Lock()
	current = &ds
	mu.Unlock()
	return nil
}

// Industry returns the static row for a sector, falling back to a
// conservative market-average row when the sector is unknown.
func Industry(sector string) IndustryRow {
	mu.RLock()
	defer mu.RUnlock()
	if row, ok := current.Industries[sector]; ok {
		return row
	}
	return IndustryRow{Sector: sector, UnleveredBeta: 1.0, WACC: 0.08, TaxRate: 0.21, CostOfDebt: 0.045}
}

// SectorFloor returns the minimum allowed WACC for a sector and whether a
// sector-specific floor (rather than the default) was found.
func SectorFloor(sector string) (floor float64, sectorSpecific bool) {
	mu.RLock()
	defer mu.RUnlock()
	if f, ok := current.SectorFloors[sector]; ok {
		return f, true
	}
	return current.DefaultSectorFloor, false
}

// CountryPremium returns the country risk premium for an ISO-ish country
// code, 0 for mature markets and for unknown codes.
func CountryPremium(code string) float64 {
	mu.RLock()
	defer mu.RUnlock()
	return current.CountryPremia[code]
}

// IsFinancialServices reports whether the sector triggers the
// financial-services WACC redirect.
func IsFinancialServices(sector string) bool {
	return sector == "Financial Services"
}
