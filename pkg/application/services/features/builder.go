// Package features derives the per-item and per-supplier tables the planner works on.
package features

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/procureplan/pkg/application/dto"
	"github.com/vsinha/procureplan/pkg/domain/entities"
)

// reliabilityEpsilon keeps the normalization finite when all suppliers share a lead time
const reliabilityEpsilon = 1e-6

type dayItemKey struct {
	date   time.Time
	itemID entities.ItemID
}

// BuildFeatures derives daily demand, ABC classes, supplier reliability and enriched
// offers from validated input tables. Inputs are never modified.
func BuildFeatures(tables dto.Tables) *dto.FeatureSet {
	classes := ClassifyItems(tables.Sales)

	inventory := make([]entities.InventoryRow, len(tables.Inventory))
	copy(inventory, tables.Inventory)

	return &dto.FeatureSet{
		DailyDemand:         AggregateDailyDemand(tables.Sales),
		ItemClasses:         classes,
		SupplierReliability: SupplierReliability(tables.Offers),
		EnrichedOffers:      EnrichOffers(tables.Offers, classes),
		Inventory:           inventory,
	}
}

// AggregateDailyDemand sums same-day quantities per item, ordered by (date, item_id)
func AggregateDailyDemand(records []entities.DemandRecord) []entities.DailyDemand {
	totals := make(map[dayItemKey]entities.Quantity)
	for _, record := range records {
		key := dayItemKey{date: truncateToDay(record.Date), itemID: record.ItemID}
		totals[key] += record.Quantity
	}

	daily := make([]entities.DailyDemand, 0, len(totals))
	for key, qty := range totals {
		daily = append(daily, entities.DailyDemand{Date: key.date, ItemID: key.itemID, Demand: qty})
	}
	sort.Slice(daily, func(i, j int) bool {
		if !daily[i].Date.Equal(daily[j].Date) {
			return daily[i].Date.Before(daily[j].Date)
		}
		return daily[i].ItemID < daily[j].ItemID
	})
	return daily
}

// ClassifyItems ranks items by revenue and assigns A/B/C tiers by cumulative share.
// Equal revenues are ordered by item id. When total revenue is zero every item is C.
// Revenue is accumulated in decimal so a share landing on a tier threshold is classed
// inclusively.
func ClassifyItems(records []entities.DemandRecord) []entities.ItemClass {
	revenue := make(map[entities.ItemID]decimal.Decimal)
	for _, record := range records {
		revenue[record.ItemID] = revenue[record.ItemID].Add(decimal.NewFromFloat(record.Revenue()))
	}

	items := make([]entities.ItemID, 0, len(revenue))
	total := decimal.Zero
	for id, rev := range revenue {
		items = append(items, id)
		total = total.Add(rev)
	}
	sort.Slice(items, func(i, j int) bool {
		if c := revenue[items[i]].Cmp(revenue[items[j]]); c != 0 {
			return c > 0
		}
		return items[i] < items[j]
	})

	classes := make([]entities.ItemClass, 0, len(items))
	cumulative := decimal.Zero
	for _, id := range items {
		share := 1.0
		class := entities.ClassC
		if total.IsPositive() {
			cumulative = cumulative.Add(revenue[id])
			share = cumulative.Div(total).InexactFloat64()
			class = entities.ClassifyShare(share)
		}
		classes = append(classes, entities.ItemClass{
			ItemID:                 id,
			CumulativeRevenueShare: share,
			Class:                  class,
		})
	}
	return classes
}

// SupplierReliability scores each supplier by mean lead time so the fastest scores 1.0.
// Results are ordered by supplier id.
func SupplierReliability(offers []entities.Offer) []entities.SupplierReliability {
	sums := make(map[entities.SupplierID]float64)
	counts := make(map[entities.SupplierID]int)
	for _, offer := range offers {
		sums[offer.SupplierID] += float64(offer.LeadTimeDays)
		counts[offer.SupplierID]++
	}
	if len(sums) == 0 {
		return []entities.SupplierReliability{}
	}

	suppliers := make([]entities.SupplierID, 0, len(sums))
	for id := range sums {
		suppliers = append(suppliers, id)
	}
	sort.Slice(suppliers, func(i, j int) bool { return suppliers[i] < suppliers[j] })

	avg := make(map[entities.SupplierID]float64, len(suppliers))
	minLead, maxLead := 0.0, 0.0
	for i, id := range suppliers {
		avg[id] = sums[id] / float64(counts[id])
		if i == 0 || avg[id] < minLead {
			minLead = avg[id]
		}
		if i == 0 || avg[id] > maxLead {
			maxLead = avg[id]
		}
	}

	result := make([]entities.SupplierReliability, 0, len(suppliers))
	for _, id := range suppliers {
		result = append(result, entities.SupplierReliability{
			SupplierID:  id,
			AvgLeadDays: avg[id],
			Reliability: 1.0 - (avg[id]-minLead)/(maxLead-minLead+reliabilityEpsilon),
		})
	}
	return result
}

// EnrichOffers joins each offer with its item class, defaulting to C, keeping catalog order
func EnrichOffers(offers []entities.Offer, classes []entities.ItemClass) []entities.EnrichedOffer {
	byItem := make(map[entities.ItemID]entities.ABCClass, len(classes))
	for _, c := range classes {
		byItem[c.ItemID] = c.Class
	}

	enriched := make([]entities.EnrichedOffer, 0, len(offers))
	for _, offer := range offers {
		class, ok := byItem[offer.ItemID]
		if !ok {
			class = entities.ClassC
		}
		enriched = append(enriched, entities.EnrichedOffer{Offer: offer, Class: class})
	}
	return enriched
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
