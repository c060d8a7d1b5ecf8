package scoring

import (
	"math"
	"testing"

	"github.com/vsinha/procureplan/pkg/application/services/allocation"
	testhelpers "github.com/vsinha/procureplan/pkg/application/services/testing"
	"github.com/vsinha/procureplan/pkg/domain/entities"
)

func planWithRows(rows ...entities.AllocationRow) *entities.Plan {
	return &entities.Plan{
		Allocation: rows,
		Summary:    entities.PlanSummary{TotalCost: entities.TotalCost(rows)},
	}
}

func row(sku, supplier string, qty entities.Quantity, price float64) entities.AllocationRow {
	return entities.NewAllocationRow(testhelpers.MustCreateOffer(supplier, sku, price, 1, 1), qty)
}

func TestComputeKPIs_FullCoverage(t *testing.T) {
	forecast := testhelpers.BuildForecast(10, 5, "SKU_A", "SKU_B")
	plan := planWithRows(row("SKU_A", "S1", 50, 1.0), row("SKU_B", "S2", 50, 2.0))

	kpis := ComputeKPIs(plan, forecast)

	if kpis.ServiceLevel != 1.0 {
		t.Errorf("Expected service level 1.0, got %f", kpis.ServiceLevel)
	}
	if kpis.StockoutRisk != 0 {
		t.Errorf("Expected stockout risk 0, got %f", kpis.StockoutRisk)
	}
	if kpis.SupplierDiversity != 1.0 {
		t.Errorf("Expected supplier diversity 1.0, got %f", kpis.SupplierDiversity)
	}
	if kpis.TotalCost != 150 {
		t.Errorf("Expected total cost 150, got %.2f", kpis.TotalCost)
	}
}

func TestComputeKPIs_PartialCoverage(t *testing.T) {
	forecast := testhelpers.BuildForecast(10, 10, "SKU_A", "SKU_B")
	// SKU_A half covered, SKU_B not allocated
	plan := planWithRows(row("SKU_A", "S1", 50, 1.0))

	kpis := ComputeKPIs(plan, forecast)

	if math.Abs(kpis.ServiceLevel-0.25) > 1e-4 {
		t.Errorf("Expected service level 0.25, got %f", kpis.ServiceLevel)
	}
	if math.Abs(kpis.StockoutRisk-0.75) > 1e-4 {
		t.Errorf("Expected stockout risk 0.75, got %f", kpis.StockoutRisk)
	}
}

func TestComputeKPIs_Diversity(t *testing.T) {
	plan := planWithRows(
		row("SKU_A", "S1", 1, 1.0),
		row("SKU_B", "S1", 1, 1.0),
		row("SKU_C", "S2", 1, 1.0),
		row("SKU_D", "S2", 1, 1.0),
	)

	kpis := ComputeKPIs(plan, nil)

	if kpis.SupplierDiversity != 0.5 {
		t.Errorf("Expected supplier diversity 0.5, got %f", kpis.SupplierDiversity)
	}
}

func TestComputeKPIs_EmptyInputs(t *testing.T) {
	kpis := ComputeKPIs(&entities.Plan{}, nil)

	if kpis.ServiceLevel != 0 || kpis.SupplierDiversity != 0 || kpis.TotalCost != 0 {
		t.Errorf("Expected zero KPIs, got %+v", kpis)
	}
	if kpis.StockoutRisk != 1 {
		t.Errorf("Expected stockout risk 1 for no items, got %f", kpis.StockoutRisk)
	}
}

func TestComputeKPIs_ServiceLevelBounded(t *testing.T) {
	tables := testhelpers.BuildSampleTables()
	targets := []float64{0, 0.5, 0.95, 1.0}
	forecast := testhelpers.BuildForecast(30, 13.7, "SKU_COFFEE", "SKU_MILK", "SKU_CUPS", "SKU_NO_OFFER")

	for _, target := range targets {
		plan := allocation.Allocate(forecast, testhelpers.EnrichAll(tables.Offers...), target, 1000)
		kpis := ComputeKPIs(plan, forecast)
		if kpis.ServiceLevel < 0 || kpis.ServiceLevel > 1 {
			t.Errorf("Target %.2f: service level %f outside [0,1]", target, kpis.ServiceLevel)
		}
	}
}

func TestScore_DefaultWeights(t *testing.T) {
	forecast := testhelpers.BuildForecast(10, 5, "SKU_A", "SKU_B")
	plan := planWithRows(row("SKU_A", "S1", 50, 1.0), row("SKU_B", "S2", 50, 2.0))

	scored := NewDefaultScorer().Score(plan, forecast, nil)

	// 0.3 x -150 + 0.5 x 1000 + 0.2 x 100
	if scored.Score != 475 {
		t.Errorf("Expected score 475, got %f", scored.Score)
	}
	if scored.Weights != entities.DefaultWeights() {
		t.Errorf("Expected default weights, got %+v", scored.Weights)
	}
}

func TestScore_OverridesReplaceOnlyNamedWeights(t *testing.T) {
	forecast := testhelpers.BuildForecast(10, 5, "SKU_A")
	plan := planWithRows(row("SKU_A", "S1", 50, 2.0))

	scored := NewDefaultScorer().Score(plan, forecast, map[string]float64{"cost": 1.0, "unknown": 9})

	expected := entities.Weights{Cost: 1.0, Service: 0.5, Diversity: 0.2}
	if scored.Weights != expected {
		t.Errorf("Expected weights %+v, got %+v", expected, scored.Weights)
	}
	// 1.0 x -100 + 0.5 x 1000 + 0.2 x 100
	if scored.Score != 420 {
		t.Errorf("Expected score 420, got %f", scored.Score)
	}
}

func TestScore_CheaperPlanScoresHigher(t *testing.T) {
	forecast := testhelpers.BuildForecast(10, 5, "SKU_A")
	cheap := planWithRows(row("SKU_A", "S1", 50, 1.0))
	pricey := planWithRows(row("SKU_A", "S1", 50, 3.0))
	scorer := NewDefaultScorer()

	if scorer.Score(cheap, forecast, nil).Score <= scorer.Score(pricey, forecast, nil).Score {
		t.Error("Expected the cheaper plan with equal service to score higher")
	}
}
