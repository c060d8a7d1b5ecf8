package entities

// NodeKind represents the role of a provenance node
type NodeKind string

const (
	NodeGoal      NodeKind = "goal"
	NodeData      NodeKind = "data"
	NodeComponent NodeKind = "component"
	NodeArtifact  NodeKind = "artifact"
)

// Pipeline stage node ids
const (
	StageForecaster = "forecaster"
	StageOptimizer  = "optimizer"
	StagePolicies   = "policies"
	StageScoring    = "scoring"
)

// Fixed node ids
const (
	GoalNodeID = "goal"
	PlanNodeID = "plan"
)

// PipelineStages lists the component stages in execution order
func PipelineStages() []string {
	return []string{StageForecaster, StageOptimizer, StagePolicies, StageScoring}
}

// ProvenanceNode is a vertex of the provenance graph
type ProvenanceNode struct {
	ID         string         `json:"id"`
	Kind       NodeKind       `json:"kind"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// ProvenanceEdge records that source contributed to target
type ProvenanceEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Reason string `json:"reason"`
}

// ProvenanceGraph documents which inputs and stages produced a plan
type ProvenanceGraph struct {
	Nodes []ProvenanceNode `json:"nodes"`
	Edges []ProvenanceEdge `json:"edges"`
}

// Node returns the node with the given id
func (g *ProvenanceGraph) Node(id string) (ProvenanceNode, bool) {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node, true
		}
	}
	return ProvenanceNode{}, false
}

// NodeIDs returns the set of node ids
func (g *ProvenanceGraph) NodeIDs() map[string]bool {
	ids := make(map[string]bool, len(g.Nodes))
	for _, node := range g.Nodes {
		ids[node.ID] = true
	}
	return ids
}
