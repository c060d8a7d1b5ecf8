package entities

// InputID identifies one of the tabular inputs a planning run consumes
type InputID string

const (
	InputSales     InputID = "sales.csv"
	InputInventory InputID = "inventory.csv"
	InputOffers    InputID = "offers.csv"
)

// RequiredInputs lists the planning inputs in fixed priority order
func RequiredInputs() []InputID {
	return []InputID{InputSales, InputInventory, InputOffers}
}

// VoIQuestion asks for a missing input, scored by its estimated value of information
type VoIQuestion struct {
	InputID   InputID `json:"id"`
	Prompt    string  `json:"text"`
	Rationale string  `json:"why"`
	VoIScore  float64 `json:"voi"`
}
