package events

import (
	"github.com/vsinha/procureplan/pkg/domain/entities"
)

const (
	PlanForecastedEvent      = "plan.forecasted"
	PlanAllocatedEvent       = "plan.allocated"
	PlanPoliciesAppliedEvent = "plan.policies_applied"
	PlanScoredEvent          = "plan.scored"
	PlanCritiquedEvent       = "plan.critiqued"
	PlanCritiqueFailedEvent  = "plan.critique_failed"

	ShortageIdentifiedEvent = "shortage.identified"
)

// PlanEventTypes lists every event type a planning run can emit
func PlanEventTypes() []string {
	return []string{
		PlanForecastedEvent,
		PlanAllocatedEvent,
		PlanPoliciesAppliedEvent,
		PlanScoredEvent,
		PlanCritiquedEvent,
		PlanCritiqueFailedEvent,
		ShortageIdentifiedEvent,
	}
}

type PlanForecasted struct {
	Items   int `json:"items"`
	Points  int `json:"points"`
	Horizon int `json:"horizon"`
}

type PlanAllocated struct {
	Rows    int                  `json:"rows"`
	Summary entities.PlanSummary `json:"summary"`
}

type PlanPoliciesApplied struct {
	BannedSuppliers []entities.SupplierID `json:"banned_suppliers"`
	Removed         int                   `json:"removed"`
	Reassigned      int                   `json:"reassigned"`
	Dropped         []entities.ItemID     `json:"dropped"`
	Summary         entities.PlanSummary  `json:"summary"`
}

type PlanScored struct {
	Scored entities.ScoredPlan `json:"scored"`
}

type PlanCritiqued struct {
	Provider string            `json:"provider"`
	Critique entities.Critique `json:"critique"`
}

type PlanCritiqueFailed struct {
	Provider string `json:"provider"`
	Error    string `json:"error"`
}

type ShortageIdentified struct {
	Shortage entities.Shortage `json:"shortage"`
}

func NewPlanForecastedEvent(runID string, items, points, horizon int) Event {
	return NewEvent(PlanForecastedEvent, runID, PlanForecasted{Items: items, Points: points, Horizon: horizon})
}

func NewPlanAllocatedEvent(runID string, plan *entities.Plan) Event {
	return NewEvent(PlanAllocatedEvent, runID, PlanAllocated{Rows: len(plan.Allocation), Summary: plan.Summary})
}

func NewPlanPoliciesAppliedEvent(runID string, data PlanPoliciesApplied) Event {
	return NewEvent(PlanPoliciesAppliedEvent, runID, data)
}

func NewPlanScoredEvent(runID string, scored entities.ScoredPlan) Event {
	return NewEvent(PlanScoredEvent, runID, PlanScored{Scored: scored})
}

func NewPlanCritiquedEvent(runID, provider string, critique entities.Critique) Event {
	return NewEvent(PlanCritiquedEvent, runID, PlanCritiqued{Provider: provider, Critique: critique})
}

func NewPlanCritiqueFailedEvent(runID, provider string, err error) Event {
	return NewEvent(PlanCritiqueFailedEvent, runID, PlanCritiqueFailed{Provider: provider, Error: err.Error()})
}

func NewShortageIdentifiedEvent(runID string, shortage entities.Shortage) Event {
	return NewEvent(ShortageIdentifiedEvent, runID, ShortageIdentified{Shortage: shortage})
}
