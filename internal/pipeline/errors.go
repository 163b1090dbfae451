package pipeline

import (
	"errors"
	"fmt"
)

// ErrBusy is returned by StartParse while a parse is already in flight.
// At most one message may be between Parsing and AwaitingReview at a time;
// contending requests are rejected, not queued.
var ErrBusy = errors.New("a parse is already in flight")

// ErrNoCandidate is returned by Commit when no candidate is awaiting review.
var ErrNoCandidate = errors.New("no candidate awaiting review")

// FailureKind distinguishes why a parse attempt failed. All kinds surface to
// the user as the same "parsing failed" condition; the kind exists for
// logging and tests.
type FailureKind string

const (
	// FailureRejected covers parser errors: network, timeout, API refusal.
	FailureRejected FailureKind = "rejected"
	// FailureInvalidOutput covers parser responses that were not usable
	// structured data.
	FailureInvalidOutput FailureKind = "invalid_output"
	// FailureIncomplete covers structurally valid responses missing the
	// required amount or type.
	FailureIncomplete FailureKind = "incomplete"
)

// ParseFailure is the pipeline's Failed-state payload. Recoverable: the
// message stays in the inbox and the user may retry with a fresh StartParse.
type ParseFailure struct {
	Kind   FailureKind
	Reason string
	Err    error
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("parsing failed (%s): %s", e.Kind, e.Reason)
}

func (e *ParseFailure) Unwrap() error { return e.Err }
