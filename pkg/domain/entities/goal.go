package entities

import (
	"fmt"
	"strings"
)

// Constraint represents a simple named constraint, e.g. "avoid Supplier X"
type Constraint struct {
	Name    string `json:"name" validate:"required"`
	Details string `json:"details,omitempty"`
}

// Goal is the structured form of a merchant's planning goal
type Goal struct {
	MonthlyBudgetGBP   float64      `json:"monthly_budget_gbp" validate:"gte=0"`
	ServiceLevelTarget float64      `json:"service_level_target" validate:"gte=0,lte=1"`
	Categories         []string     `json:"categories"`
	Excludes           []string     `json:"excludes"`
	Constraints        []Constraint `json:"constraints" validate:"dive"`
}

// NewGoal creates a validated Goal with normalized categories and excludes
func NewGoal(budget, serviceTarget float64, categories, excludes []string) (*Goal, error) {
	if budget < 0 {
		return nil, fmt.Errorf("monthly budget cannot be negative, got %g", budget)
	}
	if serviceTarget < 0 || serviceTarget > 1 {
		return nil, fmt.Errorf("service level target must be within [0,1], got %g", serviceTarget)
	}

	goal := &Goal{
		MonthlyBudgetGBP:   budget,
		ServiceLevelTarget: serviceTarget,
		Categories:         categories,
		Excludes:           excludes,
		Constraints:        []Constraint{},
	}
	goal.Normalize()
	return goal, nil
}

// Normalize trims categories and excludes and drops empty entries
func (g *Goal) Normalize() {
	g.Categories = normalizeStrings(g.Categories)
	g.Excludes = normalizeStrings(g.Excludes)
	if g.Constraints == nil {
		g.Constraints = []Constraint{}
	}
}

// BannedSuppliers returns the excluded names as supplier ids
func (g Goal) BannedSuppliers() []SupplierID {
	banned := make([]SupplierID, 0, len(g.Excludes))
	for _, name := range g.Excludes {
		banned = append(banned, SupplierID(name))
	}
	return banned
}

func normalizeStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// PlanOption is one named plan variant with its estimated cost and service
type PlanOption struct {
	Name                 string  `json:"name"`
	Description          string  `json:"description"`
	EstimatedMonthlyCost float64 `json:"estimated_monthly_cost"`
	ExpectedServiceLevel float64 `json:"expected_service_level"`
	Tradeoffs            string  `json:"tradeoffs"`
}

// KPI is a named KPI observation reported back as feedback
type KPI struct {
	Name  string  `json:"name" validate:"required"`
	Value float64 `json:"value"`
}

// Feedback records observed KPIs for an executed plan
type Feedback struct {
	PlanName string `json:"plan_name" validate:"required"`
	KPIs     []KPI  `json:"kpis" validate:"required,dive"`
	Notes    string `json:"notes,omitempty"`
}
