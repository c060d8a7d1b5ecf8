// Package voi ranks missing planning inputs by their estimated value of information.
package voi

import (
	"fmt"
	"math"
	"sort"

	"github.com/vsinha/procureplan/pkg/domain/entities"
)

const (
	minSalesPrior = 0.5
	maxSalesPrior = 1.5
	voiPlaces     = 3
	cvEpsilon     = 1e-6
)

var priors = map[entities.InputID]float64{
	entities.InputSales:     1.0,
	entities.InputInventory: 0.6,
	entities.InputOffers:    0.7,
}

var rationales = map[entities.InputID]string{
	entities.InputSales:     "Forecast uncertainty high for key SKUs; need last 90d sales.",
	entities.InputInventory: "On-hand/safety stock needed to assess service feasibility.",
	entities.InputOffers:    "Supplier terms required to optimize cost and service.",
}

// RankQuestions returns one question per required input not marked provided, sorted by
// descending VoI score. Equal scores keep input priority order. When variability is
// non-nil it replaces the sales prior, clipped to [0.5, 1.5].
func RankQuestions(provided map[entities.InputID]bool, variability *float64) []entities.VoIQuestion {
	scores := make(map[entities.InputID]float64, len(priors))
	for id, prior := range priors {
		scores[id] = prior
	}
	if variability != nil && !math.IsNaN(*variability) {
		scores[entities.InputSales] = math.Min(maxSalesPrior, math.Max(minSalesPrior, *variability))
	}

	questions := make([]entities.VoIQuestion, 0, len(priors))
	for _, id := range entities.RequiredInputs() {
		if provided[id] {
			continue
		}
		questions = append(questions, entities.VoIQuestion{
			InputID:   id,
			Prompt:    fmt.Sprintf("Please provide %s", id),
			Rationale: rationales[id],
			VoIScore:  entities.Round(scores[id]*1.0, voiPlaces),
		})
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].VoIScore > questions[j].VoIScore
	})
	return questions
}

// DemandVariability returns the mean coefficient of variation of per-item daily demand,
// using the sample standard deviation. Items with fewer than two observations are
// skipped; ok is false when no item qualifies.
func DemandVariability(daily []entities.DailyDemand) (cv float64, ok bool) {
	series := make(map[entities.ItemID][]float64)
	for _, d := range daily {
		series[d.ItemID] = append(series[d.ItemID], float64(d.Demand))
	}

	var sum float64
	var count int
	for _, values := range series {
		if len(values) < 2 {
			continue
		}
		mean, std := meanStdDev(values)
		sum += std / (mean + cvEpsilon)
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

func meanStdDev(values []float64) (mean, std float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var squares float64
	for _, v := range values {
		squares += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(squares / float64(len(values)-1))
}
