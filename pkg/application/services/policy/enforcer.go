// Package policy applies hard exclusion rules to an allocation.
package policy

import (
	"github.com/vsinha/procureplan/pkg/application/services/allocation"
	"github.com/vsinha/procureplan/pkg/domain/entities"
)

// Version tags the policy method in provenance graphs
const Version = "simple-0.1"

// Constraints are the hard rules a plan must satisfy
type Constraints struct {
	BannedSuppliers []entities.SupplierID `json:"banned_suppliers"`
}

// Report describes what enforcement changed
type Report struct {
	Removed    []entities.AllocationRow `json:"removed"`
	Reassigned []entities.AllocationRow `json:"reassigned"`
	Dropped    []entities.ItemID        `json:"dropped"`
}

// Changed reports whether any row was removed
func (r Report) Changed() bool {
	return len(r.Removed) > 0
}

// ApplyPolicies removes rows from banned suppliers and reassigns their quantity
func ApplyPolicies(plan *entities.Plan, constraints Constraints) *entities.Plan {
	adjusted, _ := Enforce(plan, constraints)
	return adjusted
}

// Enforce removes allocation rows naming a banned supplier. Each affected item is
// reassigned to its cheapest permitted offer with quantity max(moq, removed quantity),
// or dropped when none exists. The total cost is recomputed while WithinBudget, Budget
// and ServiceTarget are carried over unchanged. With no bans, or nothing to remove, the
// input plan itself is returned.
func Enforce(plan *entities.Plan, constraints Constraints) (*entities.Plan, Report) {
	if plan == nil || len(plan.Allocation) == 0 || len(constraints.BannedSuppliers) == 0 {
		return plan, Report{}
	}

	banned := make(map[entities.SupplierID]bool, len(constraints.BannedSuppliers))
	for _, id := range constraints.BannedSuppliers {
		banned[id] = true
	}

	var report Report
	kept := make([]entities.AllocationRow, 0, len(plan.Allocation))
	removedQty := make(map[entities.ItemID]entities.Quantity)
	var removedOrder []entities.ItemID
	for _, row := range plan.Allocation {
		if !banned[row.SupplierID] {
			kept = append(kept, row)
			continue
		}
		report.Removed = append(report.Removed, row)
		if _, seen := removedQty[row.ItemID]; !seen {
			removedOrder = append(removedOrder, row.ItemID)
		}
		removedQty[row.ItemID] += row.Quantity
	}

	if !report.Changed() {
		return plan, Report{}
	}

	permitted := allocation.CheapestOffers(plan.Offers, banned)
	for _, id := range removedOrder {
		offer, ok := permitted[id]
		if !ok {
			report.Dropped = append(report.Dropped, id)
			continue
		}
		row := entities.NewAllocationRow(offer.Offer, max(offer.MinimumOrderQty, removedQty[id]))
		kept = append(kept, row)
		report.Reassigned = append(report.Reassigned, row)
	}

	summary := plan.Summary
	summary.TotalCost = entities.TotalCost(kept)

	return &entities.Plan{
		Allocation: kept,
		Summary:    summary,
		Offers:     plan.Offers,
	}, report
}
