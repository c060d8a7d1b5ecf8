package entities

import "time"

// PlanRun is the persisted record of one planning pipeline execution
type PlanRun struct {
	RunID      string          `json:"run_id"`
	CreatedAt  time.Time       `json:"created_at"`
	Goal       Goal            `json:"goal"`
	Allocation []AllocationRow `json:"allocation"`
	Summary    PlanSummary     `json:"summary"`
	Scored     ScoredPlan      `json:"scored"`
	Shortages  []Shortage      `json:"shortages"`
	Evidence   ProvenanceGraph `json:"evidence"`
	Critique   *Critique       `json:"critique,omitempty"`
}
