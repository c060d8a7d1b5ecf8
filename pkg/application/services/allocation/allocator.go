// Package allocation turns forecast demand into a greedy purchase plan.
package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/procureplan/pkg/domain/entities"
)

// Version tags the allocation method in provenance graphs
const Version = "greedy-0.1"

// Allocate buys each item with positive forecast demand from its cheapest offer.
// Quantity is max(moq, ceil(demand x serviceTarget)). Items without offers are skipped.
// The budget is only reported through Summary.WithinBudget and never limits selection.
func Allocate(
	forecast []entities.ForecastPoint,
	offers []entities.EnrichedOffer,
	serviceTarget float64,
	budget float64,
) *entities.Plan {
	demand := TotalDemand(forecast)

	items := make([]entities.ItemID, 0, len(demand))
	for id := range demand {
		items = append(items, id)
	}
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })

	cheapest := CheapestOffers(offers, nil)

	rows := make([]entities.AllocationRow, 0, len(items))
	for _, id := range items {
		if demand[id] <= 0 {
			continue
		}
		offer, ok := cheapest[id]
		if !ok {
			continue
		}
		need := ceilNeed(demand[id], serviceTarget)
		rows = append(rows, entities.NewAllocationRow(offer.Offer, max(offer.MinimumOrderQty, need)))
	}

	total := entities.TotalCost(rows)
	catalog := make([]entities.EnrichedOffer, len(offers))
	copy(catalog, offers)

	return &entities.Plan{
		Allocation: rows,
		Summary: entities.PlanSummary{
			TotalCost:     total,
			WithinBudget:  total <= budget,
			Budget:        budget,
			ServiceTarget: serviceTarget,
		},
		Offers: catalog,
	}
}

// TotalDemand sums forecast quantities per item
func TotalDemand(forecast []entities.ForecastPoint) map[entities.ItemID]entities.Quantity {
	demand := make(map[entities.ItemID]entities.Quantity)
	for _, p := range forecast {
		demand[p.ItemID] += p.ForecastQty
	}
	return demand
}

// CheapestOffers returns the lowest-priced offer per item among suppliers not in excluded.
// Equal prices resolve to the offer listed first in the catalog.
func CheapestOffers(
	offers []entities.EnrichedOffer,
	excluded map[entities.SupplierID]bool,
) map[entities.ItemID]entities.EnrichedOffer {
	cheapest := make(map[entities.ItemID]entities.EnrichedOffer)
	for _, offer := range offers {
		if excluded[offer.SupplierID] {
			continue
		}
		current, ok := cheapest[offer.ItemID]
		if !ok || offer.UnitPrice < current.UnitPrice {
			cheapest[offer.ItemID] = offer
		}
	}
	return cheapest
}

// ceilNeed computes ceil(demand x target) in decimal so exact products are not pushed
// up a unit by binary rounding
func ceilNeed(demand entities.Quantity, target float64) entities.Quantity {
	need := decimal.NewFromFloat(float64(demand)).Mul(decimal.NewFromFloat(target)).Ceil()
	return entities.Quantity(need.InexactFloat64())
}
