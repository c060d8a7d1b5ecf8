package entities

import (
	"fmt"
	"time"
)

// Offer represents a supplier's catalog terms for an item
type Offer struct {
	SupplierID      SupplierID `json:"supplier_id" validate:"required"`
	ItemID          ItemID     `json:"item_id" validate:"required"`
	UnitPrice       float64    `json:"unit_price" validate:"gte=0"`
	MinimumOrderQty Quantity   `json:"minimum_order_qty" validate:"gte=0"`
	LeadTimeDays    int        `json:"lead_time_days" validate:"gte=0"`
	ValidUntil      time.Time  `json:"valid_until"`
}

// NewOffer creates a validated Offer
func NewOffer(
	supplierID SupplierID,
	itemID ItemID,
	unitPrice float64,
	minimumOrderQty Quantity,
	leadTimeDays int,
	validUntil time.Time,
) (*Offer, error) {
	if string(supplierID) == "" {
		return nil, fmt.Errorf("supplier id cannot be empty")
	}
	if string(itemID) == "" {
		return nil, fmt.Errorf("item id cannot be empty")
	}
	if unitPrice < 0 {
		return nil, fmt.Errorf("unit price cannot be negative, got %g", unitPrice)
	}
	if minimumOrderQty < 0 {
		return nil, fmt.Errorf("minimum order quantity cannot be negative, got %g", minimumOrderQty)
	}
	if leadTimeDays < 0 {
		return nil, fmt.Errorf("lead time cannot be negative, got %d", leadTimeDays)
	}

	return &Offer{
		SupplierID:      supplierID,
		ItemID:          itemID,
		UnitPrice:       unitPrice,
		MinimumOrderQty: minimumOrderQty,
		LeadTimeDays:    leadTimeDays,
		ValidUntil:      validUntil,
	}, nil
}

// EnrichedOffer is an offer joined with the revenue class of its item
type EnrichedOffer struct {
	Offer
	Class ABCClass `json:"class"`
}

// SupplierReliability is a lead-time based reliability proxy in [0,1]
type SupplierReliability struct {
	SupplierID  SupplierID `json:"supplier_id"`
	AvgLeadDays float64    `json:"avg_lead_days"`
	Reliability float64    `json:"reliability"`
}
