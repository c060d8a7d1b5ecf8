package entities

import "fmt"

// InventoryRow represents the on-hand snapshot of an item
type InventoryRow struct {
	ItemID      ItemID   `json:"item_id" validate:"required"`
	OnHand      Quantity `json:"on_hand" validate:"gte=0"`
	SafetyStock Quantity `json:"safety_stock" validate:"gte=0"`
}

// NewInventoryRow creates a validated InventoryRow
func NewInventoryRow(itemID ItemID, onHand, safetyStock Quantity) (*InventoryRow, error) {
	if string(itemID) == "" {
		return nil, fmt.Errorf("item id cannot be empty")
	}
	if onHand < 0 {
		return nil, fmt.Errorf("on hand cannot be negative, got %g", onHand)
	}
	if safetyStock < 0 {
		return nil, fmt.Errorf("safety stock cannot be negative, got %g", safetyStock)
	}

	return &InventoryRow{
		ItemID:      itemID,
		OnHand:      onHand,
		SafetyStock: safetyStock,
	}, nil
}
