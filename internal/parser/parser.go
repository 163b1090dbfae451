// Package parser turns raw bank notification text into a candidate
// transaction. The core treats the parser as an opaque external capability:
// any output missing amount or type is handled upstream as a failure
// equivalent to an outright rejection.
package parser

import (
	"context"
	"errors"

	"github.com/voznikov/banknote/internal/domain"
)

// ErrBadOutput marks parser failures caused by unusable model output
// (empty response, non-JSON, wrong shape) as opposed to transport errors.
// Callers distinguish the two with errors.Is.
var ErrBadOutput = errors.New("unusable parser output")

// Parser extracts a candidate transaction from free-form message text.
type Parser interface {
	Parse(ctx context.Context, text string) (domain.Candidate, error)
}
