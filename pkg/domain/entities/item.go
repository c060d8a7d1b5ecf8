package entities

import "fmt"

// ItemID represents a unique stock keeping unit identifier
type ItemID string

// SupplierID represents a unique supplier identifier
type SupplierID string

// Quantity represents a demand or purchase quantity. Forecast demand is fractional,
// so quantities are real-valued.
type Quantity float64

// ABCClass represents the Pareto revenue tier of an item
type ABCClass int

const (
	ClassA ABCClass = iota
	ClassB
	ClassC
)

// Cumulative revenue share thresholds (inclusive) for the A and B tiers
const (
	ClassAThreshold = 0.80
	ClassBThreshold = 0.95
)

// String method for ABCClass enum
func (c ABCClass) String() string {
	switch c {
	case ClassA:
		return "A"
	case ClassB:
		return "B"
	case ClassC:
		return "C"
	default:
		return "Unknown"
	}
}

// MarshalText renders the class as its letter
func (c ABCClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a class letter
func (c *ABCClass) UnmarshalText(text []byte) error {
	parsed, err := ParseABCClass(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseABCClass parses "A", "B" or "C"
func ParseABCClass(s string) (ABCClass, error) {
	switch s {
	case "A":
		return ClassA, nil
	case "B":
		return ClassB, nil
	case "C":
		return ClassC, nil
	default:
		return ClassC, fmt.Errorf("invalid ABC class: %s (expected A, B or C)", s)
	}
}

// ClassifyShare maps a cumulative revenue share to its tier
func ClassifyShare(cumulativeShare float64) ABCClass {
	if cumulativeShare <= ClassAThreshold {
		return ClassA
	}
	if cumulativeShare <= ClassBThreshold {
		return ClassB
	}
	return ClassC
}

// ItemClass represents the revenue classification of an item
type ItemClass struct {
	ItemID                 ItemID   `json:"item_id"`
	CumulativeRevenueShare float64  `json:"cumulative_revenue_share"`
	Class                  ABCClass `json:"class"`
}
