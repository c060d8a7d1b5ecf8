package goals

import (
	"github.com/vsinha/procureplan/pkg/domain/entities"
)

// Defaults applied when a goal leaves budget or target at zero
const (
	DefaultBudget         = 8000.0
	DefaultOptionsService = 0.97
)

// Plan variant names
const (
	OptionCostFocused    = "cost-focused"
	OptionBalanced       = "balanced"
	OptionQualityFocused = "quality-focused"
)

const (
	costPlaces    = 2
	servicePlaces = 4
	maxService    = 0.9999
)

// BuildPlanOptions synthesizes the cost-focused, balanced and quality-focused variants
// of a goal, in that order
func BuildPlanOptions(goal entities.Goal) []entities.PlanOption {
	budget := goal.MonthlyBudgetGBP
	if budget == 0 {
		budget = DefaultBudget
	}
	target := goal.ServiceLevelTarget
	if target == 0 {
		target = DefaultOptionsService
	}
	target = clamp01(target)

	return []entities.PlanOption{
		{
			Name:                 OptionCostFocused,
			Description:          "Minimize spend with acceptable service compromise.",
			EstimatedMonthlyCost: entities.Round(budget*0.9, costPlaces),
			ExpectedServiceLevel: max(0, entities.Round(min(target-0.03, 0.99), servicePlaces)),
			Tradeoffs:            "Lower cost but higher stockout risk.",
		},
		{
			Name:                 OptionBalanced,
			Description:          "Balance cost and service near target.",
			EstimatedMonthlyCost: entities.Round(budget, costPlaces),
			ExpectedServiceLevel: entities.Round(target, servicePlaces),
			Tradeoffs:            "Meets target with moderate spend.",
		},
		{
			Name:                 OptionQualityFocused,
			Description:          "Maximize service, accept higher spend.",
			EstimatedMonthlyCost: entities.Round(budget*1.1, costPlaces),
			ExpectedServiceLevel: min(maxService, entities.Round(target+0.02, servicePlaces)),
			Tradeoffs:            "Higher cost to reduce stockouts.",
		},
	}
}
