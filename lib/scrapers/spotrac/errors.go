package spotrac

import "fmt"

// FetchError means a team's page could not be retrieved at all.
type FetchError struct {
	Team   string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Team, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s", e.Team, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError means a page was retrieved but the expected table structure
// was absent or malformed, usually a sign the site markup changed.
type ParseError struct {
	Team   string
	Detail string
}

func (e *ParseError) Error() string {
	if e.Team == "" {
		return fmt.Sprintf("parse: %s", e.Detail)
	}
	return fmt.Sprintf("parse %s: %s", e.Team, e.Detail)
}
