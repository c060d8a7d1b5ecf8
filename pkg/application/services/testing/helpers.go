package testing

import (
	"time"

	"github.com/vsinha/procureplan/pkg/application/dto"
	"github.com/vsinha/procureplan/pkg/domain/entities"
)

// SampleStart is the first sales date of the sample tables
var SampleStart = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// MustCreateDemandRecord is a helper for tests - panics on validation error
func MustCreateDemandRecord(date time.Time, sku string, qty entities.Quantity, price float64) entities.DemandRecord {
	record, err := entities.NewDemandRecord(date, entities.ItemID(sku), qty, price)
	if err != nil {
		panic(err)
	}
	return *record
}

// MustCreateOffer is a helper for tests - panics on validation error
func MustCreateOffer(supplier, sku string, price float64, moq entities.Quantity, leadDays int) entities.Offer {
	offer, err := entities.NewOffer(
		entities.SupplierID(supplier),
		entities.ItemID(sku),
		price,
		moq,
		leadDays,
		SampleStart.AddDate(0, 6, 0),
	)
	if err != nil {
		panic(err)
	}
	return *offer
}

// MustCreateInventoryRow is a helper for tests - panics on validation error
func MustCreateInventoryRow(sku string, onHand, safetyStock entities.Quantity) entities.InventoryRow {
	row, err := entities.NewInventoryRow(entities.ItemID(sku), onHand, safetyStock)
	if err != nil {
		panic(err)
	}
	return *row
}

// BuildSampleTables builds a small café scenario: three SKUs sold daily for two weeks,
// offered by three suppliers with different prices and lead times
func BuildSampleTables() dto.Tables {
	sales := make([]entities.DemandRecord, 0, 42)
	for day := 0; day < 14; day++ {
		date := SampleStart.AddDate(0, 0, day)
		sales = append(sales,
			MustCreateDemandRecord(date, "SKU_COFFEE", entities.Quantity(20+day%3), 4.50),
			MustCreateDemandRecord(date, "SKU_MILK", entities.Quantity(10+day%2), 1.20),
			MustCreateDemandRecord(date, "SKU_CUPS", entities.Quantity(5), 0.10),
		)
	}

	inventory := []entities.InventoryRow{
		MustCreateInventoryRow("SKU_COFFEE", 40, 20),
		MustCreateInventoryRow("SKU_MILK", 15, 10),
		MustCreateInventoryRow("SKU_CUPS", 200, 50),
	}

	offers := []entities.Offer{
		MustCreateOffer("SupplierA", "SKU_COFFEE", 3.80, 50, 3),
		MustCreateOffer("SupplierB", "SKU_COFFEE", 3.50, 100, 7),
		MustCreateOffer("SupplierA", "SKU_MILK", 0.90, 24, 3),
		MustCreateOffer("SupplierC", "SKU_MILK", 0.95, 12, 1),
		MustCreateOffer("SupplierC", "SKU_CUPS", 0.05, 500, 1),
	}

	return dto.Tables{Sales: sales, Inventory: inventory, Offers: offers}
}

// BuildConstantDemand builds daily demand of a fixed quantity for each sku over days
func BuildConstantDemand(days int, qty entities.Quantity, skus ...string) []entities.DailyDemand {
	daily := make([]entities.DailyDemand, 0, days*len(skus))
	for day := 0; day < days; day++ {
		for _, sku := range skus {
			daily = append(daily, entities.DailyDemand{
				Date:   SampleStart.AddDate(0, 0, day),
				ItemID: entities.ItemID(sku),
				Demand: qty,
			})
		}
	}
	return daily
}

// BuildForecast builds a flat forecast of qty per day for each sku over horizon days
func BuildForecast(horizon int, qty entities.Quantity, skus ...string) []entities.ForecastPoint {
	points := make([]entities.ForecastPoint, 0, horizon*len(skus))
	for _, sku := range skus {
		for k := 0; k < horizon; k++ {
			points = append(points, entities.ForecastPoint{
				ItemID:      entities.ItemID(sku),
				Date:        SampleStart.AddDate(0, 0, k),
				ForecastQty: qty,
			})
		}
	}
	return points
}

// EnrichAll wraps offers as class C enriched offers
func EnrichAll(offers ...entities.Offer) []entities.EnrichedOffer {
	enriched := make([]entities.EnrichedOffer, 0, len(offers))
	for _, offer := range offers {
		enriched = append(enriched, entities.EnrichedOffer{Offer: offer, Class: entities.ClassC})
	}
	return enriched
}
