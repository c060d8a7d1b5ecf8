package policy

import (
	"testing"

	"github.com/vsinha/procureplan/pkg/application/services/allocation"
	testhelpers "github.com/vsinha/procureplan/pkg/application/services/testing"
	"github.com/vsinha/procureplan/pkg/domain/entities"
)

func buildTestPlan() *entities.Plan {
	forecast := testhelpers.BuildForecast(10, 10, "SKU_A", "SKU_B")
	offers := testhelpers.EnrichAll(
		testhelpers.MustCreateOffer("CheapCo", "SKU_A", 1.00, 1, 1),
		testhelpers.MustCreateOffer("BackupCo", "SKU_A", 1.25, 150, 1),
		testhelpers.MustCreateOffer("CheapCo", "SKU_B", 2.00, 1, 1),
	)
	// Budget sits between the plan cost and the post-reassignment cost
	return allocation.Allocate(forecast, offers, 1.0, 250)
}

func TestApplyPolicies_NoBansReturnsInputUnchanged(t *testing.T) {
	plan := buildTestPlan()

	adjusted := ApplyPolicies(plan, Constraints{})

	if adjusted != plan {
		t.Error("Expected the input plan to be returned unchanged")
	}
}

func TestApplyPolicies_BansUnusedSupplier(t *testing.T) {
	plan := buildTestPlan()

	adjusted, report := Enforce(plan, Constraints{BannedSuppliers: []entities.SupplierID{"Nobody"}})

	if adjusted != plan {
		t.Error("Expected the input plan when nothing is removed")
	}
	if report.Changed() {
		t.Error("Expected empty report")
	}
}

func TestApplyPolicies_ReassignsToCheapestPermitted(t *testing.T) {
	plan := buildTestPlan()

	adjusted, report := Enforce(plan, Constraints{BannedSuppliers: []entities.SupplierID{"CheapCo"}})

	for _, row := range adjusted.Allocation {
		if row.SupplierID == "CheapCo" {
			t.Errorf("Banned supplier still present for %s", row.ItemID)
		}
	}
	if len(adjusted.Allocation) != 1 {
		t.Fatalf("Expected 1 row after enforcement, got %d", len(adjusted.Allocation))
	}

	row := adjusted.Allocation[0]
	if row.ItemID != "SKU_A" || row.SupplierID != "BackupCo" {
		t.Errorf("Expected SKU_A reassigned to BackupCo, got %s from %s", row.ItemID, row.SupplierID)
	}
	// removed quantity was 100, backup moq is 150
	if row.Quantity != 150 {
		t.Errorf("Expected reassigned quantity 150, got %g", row.Quantity)
	}
	if adjusted.Summary.TotalCost != 187.5 {
		t.Errorf("Expected recomputed total 187.50, got %.2f", adjusted.Summary.TotalCost)
	}

	if len(report.Removed) != 2 || len(report.Reassigned) != 1 {
		t.Errorf("Expected 2 removed and 1 reassigned, got %d and %d", len(report.Removed), len(report.Reassigned))
	}
	if len(report.Dropped) != 1 || report.Dropped[0] != "SKU_B" {
		t.Errorf("Expected SKU_B dropped, got %v", report.Dropped)
	}
}

func TestApplyPolicies_CarriesSummaryFlags(t *testing.T) {
	plan := buildTestPlan()
	if plan.Summary.WithinBudget {
		t.Fatalf("Expected base plan (cost %.2f) over budget 250", plan.Summary.TotalCost)
	}

	adjusted := ApplyPolicies(plan, Constraints{BannedSuppliers: []entities.SupplierID{"CheapCo"}})

	// The new total is under budget but the flag is not recomputed
	if adjusted.Summary.WithinBudget != plan.Summary.WithinBudget {
		t.Error("Expected within_budget carried over unchanged")
	}
	if adjusted.Summary.Budget != plan.Summary.Budget || adjusted.Summary.ServiceTarget != plan.Summary.ServiceTarget {
		t.Error("Expected budget and target carried over unchanged")
	}
	if err := adjusted.CheckCostInvariant(); err != nil {
		t.Errorf("Cost invariant violated: %v", err)
	}
}

func TestApplyPolicies_ReassignedQuantityKeepsRemovedAmount(t *testing.T) {
	forecast := testhelpers.BuildForecast(10, 10, "SKU_A")
	offers := testhelpers.EnrichAll(
		testhelpers.MustCreateOffer("Banned", "SKU_A", 1.00, 1, 1),
		testhelpers.MustCreateOffer("Alt", "SKU_A", 3.00, 5, 1),
	)
	plan := allocation.Allocate(forecast, offers, 0.9, 1000)

	adjusted := ApplyPolicies(plan, Constraints{BannedSuppliers: []entities.SupplierID{"Banned"}})

	if adjusted.Allocation[0].Quantity != plan.Allocation[0].Quantity {
		t.Errorf("Expected quantity %g kept, got %g", plan.Allocation[0].Quantity, adjusted.Allocation[0].Quantity)
	}
}

func TestApplyPolicies_EmptyAllocation(t *testing.T) {
	plan := &entities.Plan{}

	adjusted := ApplyPolicies(plan, Constraints{BannedSuppliers: []entities.SupplierID{"X"}})

	if adjusted != plan {
		t.Error("Expected empty plan returned unchanged")
	}
}
