// Package forecast projects per-item daily demand over a planning horizon.
package forecast

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/vsinha/procureplan/pkg/domain/entities"
)

const (
	// Version tags the forecasting method in provenance graphs
	Version = "fallback-0.1"

	maxWindow      = 14
	minWindow      = 3
	noiseStdDev    = 0.05
	forecastPlaces = 3
)

// Config holds forecaster configuration
type Config struct {
	Horizon int
	Seed    uint64
}

// Forecaster produces moving-average forecasts with seeded multiplicative noise
type Forecaster struct {
	config Config
}

// NewForecaster creates a forecaster, rejecting a non-positive horizon
func NewForecaster(config Config) (*Forecaster, error) {
	if config.Horizon <= 0 {
		return nil, fmt.Errorf("forecast horizon must be positive, got %d", config.Horizon)
	}
	return &Forecaster{config: config}, nil
}

// Horizon returns the number of days forecast per item
func (f *Forecaster) Horizon() int {
	return f.config.Horizon
}

// Forecast emits exactly Horizon points per item present in daily, on consecutive days
// starting the day after the latest observed date. A fresh generator is seeded for every
// call and items draw their noise in item id order, so equal inputs give equal output.
func (f *Forecaster) Forecast(daily []entities.DailyDemand) []entities.ForecastPoint {
	if len(daily) == 0 {
		return []entities.ForecastPoint{}
	}

	series := make(map[entities.ItemID][]entities.DailyDemand)
	var lastDate time.Time
	for _, d := range daily {
		series[d.ItemID] = append(series[d.ItemID], d)
		if d.Date.After(lastDate) {
			lastDate = d.Date
		}
	}

	items := make([]entities.ItemID, 0, len(series))
	for id := range series {
		items = append(items, id)
	}
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })

	rng := rand.New(rand.NewPCG(f.config.Seed, f.config.Seed))
	start := lastDate.AddDate(0, 0, 1)

	points := make([]entities.ForecastPoint, 0, len(items)*f.config.Horizon)
	for _, id := range items {
		avg := TrailingMean(series[id])
		for k := 0; k < f.config.Horizon; k++ {
			noise := rng.NormFloat64() * noiseStdDev
			qty := math.Max(0, avg*(1+noise))
			points = append(points, entities.ForecastPoint{
				ItemID:      id,
				Date:        start.AddDate(0, 0, k),
				ForecastQty: entities.Quantity(entities.Round(qty, forecastPlaces)),
			})
		}
	}
	return points
}

// TrailingMean averages the last min(14, max(3, n)) observations of a date-ordered series.
// It returns 0 for an empty series.
func TrailingMean(series []entities.DailyDemand) float64 {
	if len(series) == 0 {
		return 0
	}
	ordered := make([]entities.DailyDemand, len(series))
	copy(ordered, series)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	window := min(maxWindow, max(minWindow, len(ordered)))
	if window > len(ordered) {
		window = len(ordered)
	}
	var sum float64
	for _, d := range ordered[len(ordered)-window:] {
		sum += float64(d.Demand)
	}
	return sum / float64(window)
}
