package entities

import (
	"fmt"
	"math"
)

// CostPlaces is the number of decimal places costs are reported with
const CostPlaces = 2

// AllocationRow represents a purchase of one item from one supplier
type AllocationRow struct {
	ItemID       ItemID     `json:"item_id"`
	SupplierID   SupplierID `json:"supplier_id"`
	UnitPrice    float64    `json:"unit_price"`
	Quantity     Quantity   `json:"quantity"`
	Cost         float64    `json:"cost"`
	LeadTimeDays int        `json:"lead_time_days"`
}

// NewAllocationRow builds a row buying quantity from the offer
func NewAllocationRow(offer Offer, quantity Quantity) AllocationRow {
	return AllocationRow{
		ItemID:       offer.ItemID,
		SupplierID:   offer.SupplierID,
		UnitPrice:    offer.UnitPrice,
		Quantity:     quantity,
		Cost:         float64(quantity) * offer.UnitPrice,
		LeadTimeDays: offer.LeadTimeDays,
	}
}

// PlanSummary holds the cost and feasibility summary of an allocation.
// WithinBudget is informational: the allocator never enforces the budget, and the
// policy enforcer carries the flag over without recomputing it.
type PlanSummary struct {
	TotalCost     float64 `json:"total_cost"`
	WithinBudget  bool    `json:"within_budget"`
	Budget        float64 `json:"budget"`
	ServiceTarget float64 `json:"service_target"`
}

// Plan is an allocation table with its summary and the offer catalog it was drawn from
type Plan struct {
	Allocation []AllocationRow `json:"allocation"`
	Summary    PlanSummary     `json:"summary"`
	Offers     []EnrichedOffer `json:"-"`
}

// TotalCost returns the rounded sum of row costs
func TotalCost(rows []AllocationRow) float64 {
	costs := make([]float64, len(rows))
	for i, row := range rows {
		costs[i] = row.Cost
	}
	return SumRounded(costs, CostPlaces)
}

// CheckCostInvariant verifies row costs and that the summary total matches the rows
func (p *Plan) CheckCostInvariant() error {
	for i, row := range p.Allocation {
		expected := float64(row.Quantity) * row.UnitPrice
		if math.Abs(row.Cost-expected) > 1e-9*math.Max(1, math.Abs(expected)) {
			return fmt.Errorf("allocation row %d (%s): cost %.4f does not equal quantity x unit price %.4f",
				i, row.ItemID, row.Cost, expected)
		}
	}
	total := TotalCost(p.Allocation)
	if math.Abs(total-p.Summary.TotalCost) > 1e-9 {
		return fmt.Errorf("summary total cost %.2f does not equal allocation total %.2f",
			p.Summary.TotalCost, total)
	}
	return nil
}

// Suppliers returns the suppliers used by the allocation in first-use order
func (p *Plan) Suppliers() []SupplierID {
	seen := make(map[SupplierID]bool)
	var suppliers []SupplierID
	for _, row := range p.Allocation {
		if !seen[row.SupplierID] {
			seen[row.SupplierID] = true
			suppliers = append(suppliers, row.SupplierID)
		}
	}
	return suppliers
}

// KPISet holds the key performance indicators of a plan
type KPISet struct {
	TotalCost         float64 `json:"total_cost"`
	ServiceLevel      float64 `json:"service_level"`
	StockoutRisk      float64 `json:"stockout_risk"`
	SupplierDiversity float64 `json:"supplier_diversity"`
}

// Weights are the scoring weights of each KPI term
type Weights struct {
	Cost      float64 `json:"cost" yaml:"cost"`
	Service   float64 `json:"service" yaml:"service"`
	Diversity float64 `json:"diversity" yaml:"diversity"`
}

// DefaultWeights returns the default scoring weights
func DefaultWeights() Weights {
	return Weights{Cost: 0.3, Service: 0.5, Diversity: 0.2}
}

// Override replaces only the weights named in overrides. Unknown keys are ignored.
func (w Weights) Override(overrides map[string]float64) Weights {
	for key, value := range overrides {
		switch key {
		case "cost":
			w.Cost = value
		case "service":
			w.Service = value
		case "diversity":
			w.Diversity = value
		}
	}
	return w
}

// ScoredPlan holds the scalar score of a plan together with its KPIs
type ScoredPlan struct {
	Score   float64 `json:"score"`
	KPIs    KPISet  `json:"kpis"`
	Weights Weights `json:"weights"`
}
