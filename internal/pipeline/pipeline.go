// Package pipeline drives one inbox message at a time through parsing,
// review and commit. It is a single-flight state machine: Idle until
// StartParse, Parsing while the external parser runs, then AwaitingReview or
// Failed, and back to Idle on commit or abort. Only the parser call is
// asynchronous; its result re-enters through the pipeline lock with a
// staleness check so a response arriving after Abort can never mutate state.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voznikov/banknote/internal/domain"
	"github.com/voznikov/banknote/internal/parser"
)

// State names the pipeline's position in its lifecycle.
type State string

const (
	StateIdle    State = "idle"
	StateParsing State = "parsing"
	StateReview  State = "awaiting_review"
	StateFailed  State = "failed"
)

// Committer is the slice of the ledger engine the pipeline needs.
type Committer interface {
	CommitTransaction(c domain.Candidate, accountID, categoryID int64, notes string) (domain.Transaction, error)
}

// MessageSource is the slice of the inbox the pipeline needs. Remove is
// called exactly once per successful commit.
type MessageSource interface {
	Get(id int64) (domain.InboxMessage, bool)
	Remove(id int64) bool
}

// Pipeline converts one inbox message into a committed transaction.
// Safe for concurrent use.
type Pipeline struct {
	parser parser.Parser
	ledger Committer
	inbox  MessageSource
	log    zerolog.Logger
	now    func() time.Time

	mu        sync.Mutex
	state     State
	runID     string
	cancel    context.CancelFunc
	message   domain.InboxMessage
	candidate domain.Candidate
	failure   *ParseFailure
}

// New creates an idle pipeline.
func New(p parser.Parser, ledger Committer, inbox MessageSource, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		parser: p,
		ledger: ledger,
		inbox:  inbox,
		log:    log,
		now:    time.Now,
		state:  StateIdle,
	}
}

// Status is a read-only snapshot of the pipeline for the review surface.
type Status struct {
	State     State                `json:"state"`
	Message   *domain.InboxMessage `json:"message,omitempty"`
	Candidate *domain.Candidate    `json:"candidate,omitempty"`
	Failure   string               `json:"failure,omitempty"`
}

// Status reports the current state, the message in flight, the candidate
// awaiting review and the failure reason, as applicable.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Status{State: p.state}
	if p.state != StateIdle {
		msg := p.message
		s.Message = &msg
	}
	if p.state == StateReview {
		cand := p.candidate
		s.Candidate = &cand
	}
	if p.state == StateFailed && p.failure != nil {
		s.Failure = p.failure.Error()
	}
	return s
}

// StartParse begins converting the identified inbox message. It returns
// ErrBusy unless the pipeline is idle, and an error if the message does not
// exist. The external parser runs on its own goroutine; progress is observed
// through Status.
func (p *Pipeline) StartParse(ctx context.Context, messageID int64) error {
	msg, ok := p.inbox.Get(messageID)
	if !ok {
		return fmt.Errorf("start parse: inbox message %d not found", messageID)
	}

	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		return ErrBusy
	}

	runID := uuid.NewString()
	parseCtx, cancel := context.WithCancel(ctx)

	p.state = StateParsing
	p.runID = runID
	p.cancel = cancel
	p.message = msg
	p.candidate = domain.Candidate{}
	p.failure = nil
	p.mu.Unlock()

	p.log.Info().
		Str("run_id", runID).
		Int64("message_id", msg.ID).
		Msg("Parse started")

	go func() {
		candidate, err := p.parser.Parse(parseCtx, msg.Text)
		p.applyResult(runID, candidate, err)
	}()

	return nil
}

// applyResult folds the parser's outcome into the state machine. A result
// whose run id no longer matches belongs to an aborted attempt and is
// dropped without touching state.
func (p *Pipeline) applyResult(runID string, candidate domain.Candidate, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateParsing || p.runID != runID {
		p.log.Debug().Str("run_id", runID).Msg("Stale parser result dropped")
		return
	}

	if err != nil {
		p.failure = classify(err)
		p.state = StateFailed
		p.log.Warn().
			Str("run_id", runID).
			Int64("message_id", p.message.ID).
			Str("kind", string(p.failure.Kind)).
			Err(err).
			Msg("Parse failed")
		return
	}

	if missing := candidate.Missing(); len(missing) > 0 {
		p.failure = &ParseFailure{
			Kind:   FailureIncomplete,
			Reason: fmt.Sprintf("parser result is missing %s", strings.Join(missing, ", ")),
		}
		p.state = StateFailed
		p.log.Warn().
			Str("run_id", runID).
			Int64("message_id", p.message.ID).
			Strs("missing", missing).
			Msg("Parse result incomplete")
		return
	}

	// An otherwise complete candidate without a date defaults to today.
	if candidate.Date == "" {
		candidate.Date = p.now().Format(domain.DateFormat)
	}

	p.candidate = candidate
	p.state = StateReview
	p.log.Info().
		Str("run_id", runID).
		Int64("message_id", p.message.ID).
		Str("amount", candidate.Amount.String()).
		Str("type", string(candidate.Type)).
		Msg("Candidate awaiting review")
}

// Commit finishes the in-flight conversion with the user's account and
// category selections. On a ledger validation error the pipeline STAYS in
// AwaitingReview so the selections can be corrected and Commit retried; on
// success the originating message leaves the inbox and the pipeline returns
// to Idle.
func (p *Pipeline) Commit(accountID, categoryID int64, notes string) (domain.Transaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateReview {
		return domain.Transaction{}, ErrNoCandidate
	}

	tx, err := p.ledger.CommitTransaction(p.candidate, accountID, categoryID, notes)
	if err != nil {
		p.log.Warn().
			Int64("message_id", p.message.ID).
			Err(err).
			Msg("Commit rejected")
		return domain.Transaction{}, err
	}

	p.inbox.Remove(p.message.ID)
	p.log.Info().
		Int64("message_id", p.message.ID).
		Int64("transaction_id", tx.ID).
		Msg("Message committed")

	p.resetLocked()
	return tx, nil
}

// Abort discards the in-flight attempt from any state and returns to Idle.
// The inbox message is untouched. A parser call still running is cancelled,
// and its eventual result is dropped by the run-id check.
func (p *Pipeline) Abort() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateIdle {
		return
	}

	p.log.Info().
		Int64("message_id", p.message.ID).
		Str("state", string(p.state)).
		Msg("Parse aborted")
	p.resetLocked()
}

// resetLocked returns the pipeline to Idle. Caller holds the lock.
func (p *Pipeline) resetLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.state = StateIdle
	p.runID = ""
	p.message = domain.InboxMessage{}
	p.candidate = domain.Candidate{}
	p.failure = nil
}

// classify maps a parser error onto a failure kind.
func classify(err error) *ParseFailure {
	kind := FailureRejected
	if errors.Is(err, parser.ErrBadOutput) {
		kind = FailureInvalidOutput
	}
	return &ParseFailure{Kind: kind, Reason: err.Error(), Err: err}
}
