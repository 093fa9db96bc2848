package captracker

import "fmt"

// SchemaError means parsed rows did not normalize into valid records,
// a required field was missing or a figure did not add up.
type SchemaError struct {
	Team   string
	Field  string
	Detail string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema %s/%s: %s", e.Team, e.Field, e.Detail)
}
