package entities

import "fmt"

// ValidationError reports a malformed input table or goal rejected at the boundary
type ValidationError struct {
	Table  string
	Row    int // 1-based data row, 0 when the error concerns the whole table
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Row > 0 && e.Field != "":
		return fmt.Sprintf("%s row %d: invalid %s: %s", e.Table, e.Row, e.Field, e.Reason)
	case e.Row > 0:
		return fmt.Sprintf("%s row %d: %s", e.Table, e.Row, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("%s: invalid %s: %s", e.Table, e.Field, e.Reason)
	default:
		return fmt.Sprintf("%s: %s", e.Table, e.Reason)
	}
}
