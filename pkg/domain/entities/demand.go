package entities

import (
	"fmt"
	"time"
)

// DemandRecord represents a single observed sale
type DemandRecord struct {
	Date      time.Time `json:"date"`
	ItemID    ItemID    `json:"item_id" validate:"required"`
	Quantity  Quantity  `json:"quantity" validate:"gte=0"`
	UnitPrice float64   `json:"unit_price" validate:"gte=0"`
}

// NewDemandRecord creates a validated DemandRecord
func NewDemandRecord(date time.Time, itemID ItemID, quantity Quantity, unitPrice float64) (*DemandRecord, error) {
	if string(itemID) == "" {
		return nil, fmt.Errorf("item id cannot be empty")
	}
	if date.IsZero() {
		return nil, fmt.Errorf("date cannot be empty")
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative, got %g", quantity)
	}
	if unitPrice < 0 {
		return nil, fmt.Errorf("unit price cannot be negative, got %g", unitPrice)
	}

	return &DemandRecord{
		Date:      date,
		ItemID:    itemID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}, nil
}

// Revenue returns quantity times unit price
func (r DemandRecord) Revenue() float64 {
	return float64(r.Quantity) * r.UnitPrice
}

// DailyDemand represents the summed demand of an item on one calendar day
type DailyDemand struct {
	Date   time.Time `json:"date"`
	ItemID ItemID    `json:"item_id"`
	Demand Quantity  `json:"demand"`
}

// ForecastPoint represents the projected demand of an item on a future day
type ForecastPoint struct {
	ItemID      ItemID    `json:"item_id"`
	Date        time.Time `json:"date"`
	ForecastQty Quantity  `json:"forecast_qty"`
}

// Shortage reasons
const (
	ShortageNoOffer      = "no_offer"
	ShortagePolicyBanned = "policy_banned"
	ShortageUnderServed  = "under_served"
)

// Shortage represents forecast demand the final allocation does not cover
type Shortage struct {
	ItemID ItemID   `json:"item_id"`
	Demand Quantity `json:"demand"`
	Bought Quantity `json:"bought"`
	Reason string   `json:"reason"`
}
