package dto

import (
	"time"

	"github.com/vsinha/procureplan/pkg/domain/entities"
)

// PolicyAdjustments records what policy enforcement changed in a plan
type PolicyAdjustments struct {
	BannedSuppliers []entities.SupplierID    `json:"banned_suppliers"`
	Removed         []entities.AllocationRow `json:"removed"`
	Reassigned      []entities.AllocationRow `json:"reassigned"`
	Dropped         []entities.ItemID        `json:"dropped"`
}

// PipelineResult contains the complete output of one planning run
type PipelineResult struct {
	RunID       string                   `json:"run_id"`
	CreatedAt   time.Time                `json:"created_at"`
	Goal        entities.Goal            `json:"goal"`
	Features    *FeatureSet              `json:"-"`
	Forecast    []entities.ForecastPoint `json:"-"`
	Plan        *entities.Plan           `json:"-"`
	Allocation  []entities.AllocationRow `json:"allocation"`
	Summary     entities.PlanSummary     `json:"summary"`
	Adjustments PolicyAdjustments        `json:"policy_adjustments"`
	Scored      entities.ScoredPlan      `json:"scored"`
	Shortages   []entities.Shortage      `json:"shortages"`
	Questions   []entities.VoIQuestion   `json:"questions"`
	Evidence    entities.ProvenanceGraph `json:"evidence"`
	Critique    *entities.Critique       `json:"critique,omitempty"`
}

// Run converts the result into its persisted form
func (r *PipelineResult) Run() *entities.PlanRun {
	return &entities.PlanRun{
		RunID:      r.RunID,
		CreatedAt:  r.CreatedAt,
		Goal:       r.Goal,
		Allocation: r.Allocation,
		Summary:    r.Summary,
		Scored:     r.Scored,
		Shortages:  r.Shortages,
		Evidence:   r.Evidence,
		Critique:   r.Critique,
	}
}
