package gsheets

import "fmt"

// PublishError covers auth, quota and transport failures from the
// spreadsheet service.
type PublishError struct {
	Op     string
	Status int
	Err    error
}

func (e *PublishError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("sheets %s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("sheets %s: %s", e.Op, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
