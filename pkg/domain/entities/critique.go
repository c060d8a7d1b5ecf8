package entities

// Critique is the structured assessment of a plan produced by a text-completion provider
type Critique struct {
	Assumptions  []string `json:"assumptions"`
	Risks        []string `json:"risks"`
	TweakActions []string `json:"tweak_actions"`
}
