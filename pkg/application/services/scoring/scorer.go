// Package scoring computes plan KPIs and collapses them into a weighted score.
package scoring

import (
	"github.com/vsinha/procureplan/pkg/domain/entities"
)

// Version tags the scoring method in provenance graphs
const Version = "v0.1"

const (
	serviceEpsilon = 1e-6
	kpiPlaces      = 4
	scorePlaces    = 3

	serviceScale   = 1000
	diversityScale = 100
)

// Scorer scores plans against a base set of weights
type Scorer struct {
	base entities.Weights
}

// NewScorer creates a scorer with the given base weights
func NewScorer(base entities.Weights) *Scorer {
	return &Scorer{base: base}
}

// NewDefaultScorer creates a scorer with weights cost 0.3, service 0.5, diversity 0.2
func NewDefaultScorer() *Scorer {
	return NewScorer(entities.DefaultWeights())
}

// Score computes KPIs and the weighted score. Overrides replace only the weights they name.
func (s *Scorer) Score(
	plan *entities.Plan,
	forecast []entities.ForecastPoint,
	overrides map[string]float64,
) entities.ScoredPlan {
	weights := s.base.Override(overrides)
	kpis := ComputeKPIs(plan, forecast)

	total := weights.Cost*(-kpis.TotalCost) +
		weights.Service*(kpis.ServiceLevel*serviceScale) +
		weights.Diversity*(kpis.SupplierDiversity*diversityScale)

	return entities.ScoredPlan{
		Score:   entities.Round(total, scorePlaces),
		KPIs:    kpis,
		Weights: weights,
	}
}

// ComputeKPIs measures cost, service coverage and supplier diversity of a plan.
// Items are the union of forecast and allocation items; an item with no forecast
// demand counts as fully served.
func ComputeKPIs(plan *entities.Plan, forecast []entities.ForecastPoint) entities.KPISet {
	var rows []entities.AllocationRow
	if plan != nil {
		rows = plan.Allocation
	}

	demand := make(map[entities.ItemID]float64)
	for _, p := range forecast {
		demand[p.ItemID] += float64(p.ForecastQty)
	}
	bought := make(map[entities.ItemID]float64)
	for _, row := range rows {
		bought[row.ItemID] += float64(row.Quantity)
	}

	items := make(map[entities.ItemID]bool, len(demand)+len(bought))
	for id := range demand {
		items[id] = true
	}
	for id := range bought {
		items[id] = true
	}

	service := 0.0
	if len(items) > 0 {
		var sum float64
		for id := range items {
			sum += clip(bought[id]/(demand[id]+serviceEpsilon), 0, 1)
		}
		service = sum / float64(len(items))
	}

	diversity := 0.0
	if len(rows) > 0 {
		diversity = float64(len(plan.Suppliers())) / float64(len(rows))
	}

	return entities.KPISet{
		TotalCost:         entities.TotalCost(rows),
		ServiceLevel:      entities.Round(service, kpiPlaces),
		StockoutRisk:      entities.Round(1-service, kpiPlaces),
		SupplierDiversity: entities.Round(diversity, kpiPlaces),
	}
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
