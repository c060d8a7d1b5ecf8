package dto

import "github.com/vsinha/procureplan/pkg/domain/entities"

// Tables holds the three validated input tables of a planning run
type Tables struct {
	Sales     []entities.DemandRecord `json:"sales"`
	Inventory []entities.InventoryRow `json:"inventory"`
	Offers    []entities.Offer        `json:"offers"`
}

// Presence reports which inputs carry at least one row
func (t Tables) Presence() map[entities.InputID]bool {
	return map[entities.InputID]bool{
		entities.InputSales:     len(t.Sales) > 0,
		entities.InputInventory: len(t.Inventory) > 0,
		entities.InputOffers:    len(t.Offers) > 0,
	}
}

// FeatureSet contains the derived tables consumed by the downstream stages
type FeatureSet struct {
	DailyDemand         []entities.DailyDemand         `json:"daily_demand"`
	ItemClasses         []entities.ItemClass           `json:"item_classes"`
	SupplierReliability []entities.SupplierReliability `json:"supplier_reliability"`
	EnrichedOffers      []entities.EnrichedOffer       `json:"enriched_offers"`
	Inventory           []entities.InventoryRow        `json:"inventory"`
}

