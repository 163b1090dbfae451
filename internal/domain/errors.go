package domain

import (
	"fmt"
	"strings"
)

// ValidationError reports a commit attempted with a missing or unknown
// account or category reference. Recoverable: the review step can correct
// the selection and retry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// IncompleteDataError reports a candidate lacking required fields at commit
// time. The pipeline should have caught this as a parse failure already, but
// commit re-validates defensively.
type IncompleteDataError struct {
	Missing []string
}

func (e *IncompleteDataError) Error() string {
	return fmt.Sprintf("candidate is missing required fields: %s", strings.Join(e.Missing, ", "))
}
