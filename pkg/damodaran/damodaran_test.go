package damodaran

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIndustryFallsBackForUnknownSector(t *testing.T) {
	row := Industry("Not A Real Sector")
	if row.WACC != 0.08 || row.UnleveredBeta != 1.0 {
		t.Fatalf("expected conservative market-average fallback, got %+v", row)
	}
}

func TestIndustryReturnsKnownRow(t *testing.T) {
	row := Industry("Technology")
	if row.UnleveredBeta != 1.10 {
		t.Fatalf("expected Technology unlevered beta 1.10, got %v", row.UnleveredBeta)
	}
}

func TestSectorFloorSectorSpecificVsDefault(t *testing.T) {
	if floor, specific := SectorFloor("Technology"); !specific || floor != 0.075 {
		t.Fatalf("expected Technology-specific floor 0.075, got %v specific=%v", floor, specific)
	}
	if floor, specific := SectorFloor("Energy"); specific || floor != 0.065 {
		t.Fatalf("expected default floor 0.065 for Energy, got %v specific=%v", floor, specific)
	}
}

func TestIsFinancialServicesRedirect(t *testing.T) {
	if !IsFinancialServices("Financial Services") {
		t.Fatal("expected Financial Services to trigger the redirect")
	}
	if IsFinancialServices("Technology") {
		t.Fatal("did not expect Technology to trigger the redirect")
	}
}

func TestLoadReplacesDatasetAndIsRestorable(t *testing.T) {
	t.Cleanup(func() { current = builtin() })

	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	yamlDoc := `
industries:
  Technology:
    sector: Technology
    unlevered_beta: 2.0
    wacc: 0.10
    tax_rate: 0.21
    cost_of_debt: 0.05
sector_floors:
  Technology: 0.09
default_sector_floor: 0.07
country_premia:
  USA: 0.0
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if err := Load(path); err != nil {
		t.Fatalf("unexpected error loading override: %v", err)
	}
	if row := Industry("Technology"); row.UnleveredBeta != 2.0 {
		t.Fatalf("expected overridden unlevered beta 2.0, got %v", row.UnleveredBeta)
	}
	if floor, _ := SectorFloor("Technology"); floor != 0.09 {
		t.Fatalf("expected overridden floor 0.09, got %v", floor)
	}
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error reading a nonexistent file")
	}
}
