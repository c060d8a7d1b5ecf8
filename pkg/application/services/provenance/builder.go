// Package provenance assembles the audit graph of inputs and stages behind a plan.
package provenance

import (
	"sort"

	"github.com/vsinha/procureplan/pkg/domain/entities"
)

// Edge reasons
const (
	ReasonInput    = "input"
	ReasonForecast = "forecast drives demand"
	ReasonPolicies = "policies adjust plan"
	ReasonEvaluate = "evaluate KPIs"
	ReasonSummary  = "produce summary"
)

// BuildGraph documents which inputs and pipeline stages produced a plan. Data nodes
// follow input priority order, with any further inputs sorted by id. Stage versions
// missing from versions are recorded as nil. The plan artifact and its edge appear
// only when summary is non-nil.
func BuildGraph(
	goal entities.Goal,
	inputs map[entities.InputID]bool,
	versions map[string]string,
	summary *entities.PlanSummary,
) entities.ProvenanceGraph {
	graph := entities.ProvenanceGraph{
		Nodes: []entities.ProvenanceNode{{
			ID:         entities.GoalNodeID,
			Kind:       entities.NodeGoal,
			Attributes: map[string]any{"data": goal},
		}},
		Edges: []entities.ProvenanceEdge{},
	}

	for _, id := range orderedInputs(inputs) {
		graph.Nodes = append(graph.Nodes, entities.ProvenanceNode{
			ID:         string(id),
			Kind:       entities.NodeData,
			Attributes: map[string]any{"present": inputs[id]},
		})
		graph.Edges = append(graph.Edges, entities.ProvenanceEdge{
			Source: string(id),
			Target: entities.GoalNodeID,
			Reason: ReasonInput,
		})
	}

	for _, stage := range entities.PipelineStages() {
		var version any
		if v, ok := versions[stage]; ok {
			version = v
		}
		graph.Nodes = append(graph.Nodes, entities.ProvenanceNode{
			ID:         stage,
			Kind:       entities.NodeComponent,
			Attributes: map[string]any{"version": version},
		})
	}

	graph.Edges = append(graph.Edges,
		entities.ProvenanceEdge{Source: entities.StageForecaster, Target: entities.StageOptimizer, Reason: ReasonForecast},
		entities.ProvenanceEdge{Source: entities.StageOptimizer, Target: entities.StagePolicies, Reason: ReasonPolicies},
		entities.ProvenanceEdge{Source: entities.StagePolicies, Target: entities.StageScoring, Reason: ReasonEvaluate},
	)

	if summary != nil {
		graph.Nodes = append(graph.Nodes, entities.ProvenanceNode{
			ID:         entities.PlanNodeID,
			Kind:       entities.NodeArtifact,
			Attributes: map[string]any{"summary": *summary},
		})
		graph.Edges = append(graph.Edges, entities.ProvenanceEdge{
			Source: entities.StageScoring,
			Target: entities.PlanNodeID,
			Reason: ReasonSummary,
		})
	}

	return graph
}

func orderedInputs(inputs map[entities.InputID]bool) []entities.InputID {
	ordered := make([]entities.InputID, 0, len(inputs))
	known := make(map[entities.InputID]bool)
	for _, id := range entities.RequiredInputs() {
		known[id] = true
		if _, ok := inputs[id]; ok {
			ordered = append(ordered, id)
		}
	}

	var extra []entities.InputID
	for id := range inputs {
		if !known[id] {
			extra = append(extra, id)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(ordered, extra...)
}
