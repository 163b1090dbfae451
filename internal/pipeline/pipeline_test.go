package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/voznikov/banknote/internal/domain"
	"github.com/voznikov/banknote/internal/inbox"
	"github.com/voznikov/banknote/internal/ledger"
	"github.com/voznikov/banknote/internal/parser"
)

// stubParser returns a fixed result, optionally blocking until released so
// tests can control when the asynchronous parse completes.
type stubParser struct {
	mu        sync.Mutex
	candidate domain.Candidate
	err       error
	release   chan struct{}
	calls     int
}

func (s *stubParser) Parse(ctx context.Context, text string) (domain.Candidate, error) {
	s.mu.Lock()
	s.calls++
	release := s.release
	candidate, err := s.candidate, s.err
	s.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return domain.Candidate{}, ctx.Err()
		}
	}
	return candidate, err
}

func (s *stubParser) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

type fixture struct {
	pipeline *Pipeline
	ledger   *ledger.Ledger
	inbox    *inbox.Inbox
	parser   *stubParser

	accountID  int64
	categoryID int64
	messageID  int64
}

func newFixture(t *testing.T, messageText string) *fixture {
	t.Helper()

	log := zerolog.Nop()
	led := ledger.New(log)
	in := inbox.New(log)

	account, err := led.AddAccount("Main", decimal.RequireFromString("1000000"))
	if err != nil {
		t.Fatalf("AddAccount: %v", err)
	}
	category, err := led.AddCategory("حقوق", "salary")
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	msg := in.Add("Bank", messageText)

	p := &stubParser{}
	pl := New(p, led, in, log)

	return &fixture{
		pipeline:   pl,
		ledger:     led,
		inbox:      in,
		parser:     p,
		accountID:  account.ID,
		categoryID: category.ID,
		messageID:  msg.ID,
	}
}

// waitState polls until the pipeline reaches the wanted state or the
// deadline passes.
func waitState(t *testing.T, p *Pipeline, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.Status().State == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("pipeline never reached state %q, currently %q", want, p.Status().State)
}

func TestStartParse_SuccessfulFlow(t *testing.T) {
	f := newFixture(t, "واریز به حساب. مبلغ: 25,000,000 ریال")
	f.parser.candidate = domain.Candidate{
		Amount: amount("25000000"),
		Type:   domain.Income,
		Bank:   "Mellat",
		Date:   "2024-04-02",
	}

	if err := f.pipeline.StartParse(context.Background(), f.messageID); err != nil {
		t.Fatalf("StartParse: %v", err)
	}
	waitState(t, f.pipeline, StateReview)

	status := f.pipeline.Status()
	if status.Candidate == nil || !status.Candidate.Amount.Equal(decimal.RequireFromString("25000000")) {
		t.Fatalf("unexpected candidate: %+v", status.Candidate)
	}

	tx, err := f.pipeline.Commit(f.accountID, f.categoryID, "April salary")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// The new transaction is first in the log, the message is gone, and
	// the balance grew by the income.
	log := f.ledger.Transactions()
	if len(log) != 1 || log[0].ID != tx.ID {
		t.Fatalf("transaction log = %+v", log)
	}
	if _, ok := f.inbox.Get(f.messageID); ok {
		t.Error("message still in inbox after commit")
	}
	want := decimal.RequireFromString("26000000")
	if got := f.ledger.Balances()[0].CurrentBalance; !got.Equal(want) {
		t.Errorf("balance = %s, want %s", got, want)
	}
	if f.pipeline.Status().State != StateIdle {
		t.Errorf("state after commit = %q, want idle", f.pipeline.Status().State)
	}
}

func TestStartParse_IncompleteResultFails(t *testing.T) {
	f := newFixture(t, "some text")
	f.parser.candidate = domain.Candidate{Type: domain.Expense} // no amount

	if err := f.pipeline.StartParse(context.Background(), f.messageID); err != nil {
		t.Fatalf("StartParse: %v", err)
	}
	waitState(t, f.pipeline, StateFailed)

	status := f.pipeline.Status()
	if status.Failure == "" {
		t.Error("expected a failure reason")
	}
	if _, ok := f.inbox.Get(f.messageID); !ok {
		t.Error("message must stay in inbox after a failed parse")
	}
	if len(f.ledger.Transactions()) != 0 {
		t.Error("no transaction may be created on failure")
	}

	// Only abort leaves Failed.
	f.pipeline.Abort()
	if f.pipeline.Status().State != StateIdle {
		t.Errorf("state after abort = %q, want idle", f.pipeline.Status().State)
	}
}

func TestStartParse_ParserErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind FailureKind
	}{
		{
			name:     "transport error",
			err:      errors.New("network unreachable"),
			wantKind: FailureRejected,
		},
		{
			name:     "unusable output",
			err:      fmt.Errorf("garbled: %w", parser.ErrBadOutput),
			wantKind: FailureInvalidOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "text")
			f.parser.err = tt.err

			if err := f.pipeline.StartParse(context.Background(), f.messageID); err != nil {
				t.Fatalf("StartParse: %v", err)
			}
			waitState(t, f.pipeline, StateFailed)

			f.pipeline.mu.Lock()
			kind := f.pipeline.failure.Kind
			f.pipeline.mu.Unlock()
			if kind != tt.wantKind {
				t.Errorf("failure kind = %q, want %q", kind, tt.wantKind)
			}
		})
	}
}

func TestStartParse_SingleFlight(t *testing.T) {
	f := newFixture(t, "text")
	f.parser.release = make(chan struct{})
	f.parser.candidate = domain.Candidate{Amount: amount("10"), Type: domain.Expense}
	second := f.inbox.Add("Bank", "another")

	if err := f.pipeline.StartParse(context.Background(), f.messageID); err != nil {
		t.Fatalf("first StartParse: %v", err)
	}

	// While Parsing.
	if err := f.pipeline.StartParse(context.Background(), second.ID); !errors.Is(err, ErrBusy) {
		t.Errorf("StartParse while parsing = %v, want ErrBusy", err)
	}

	close(f.parser.release)
	waitState(t, f.pipeline, StateReview)

	// While AwaitingReview.
	if err := f.pipeline.StartParse(context.Background(), second.ID); !errors.Is(err, ErrBusy) {
		t.Errorf("StartParse while reviewing = %v, want ErrBusy", err)
	}

	if got := f.parser.callCount(); got != 1 {
		t.Errorf("parser called %d times, want 1", got)
	}
}

func TestAbort_LateParserResponseIsDropped(t *testing.T) {
	f := newFixture(t, "text")
	f.parser.release = make(chan struct{})
	f.parser.candidate = domain.Candidate{Amount: amount("10"), Type: domain.Income}

	if err := f.pipeline.StartParse(context.Background(), f.messageID); err != nil {
		t.Fatalf("StartParse: %v", err)
	}
	f.pipeline.Abort()

	// Let the parser finish after the abort. Its result must be dropped.
	close(f.parser.release)
	time.Sleep(20 * time.Millisecond)

	if got := f.pipeline.Status().State; got != StateIdle {
		t.Errorf("state = %q, want idle", got)
	}
	if len(f.ledger.Transactions()) != 0 {
		t.Error("late parser response created a transaction")
	}
	if _, ok := f.inbox.Get(f.messageID); !ok {
		t.Error("message must remain in inbox after abort")
	}
}

func TestAbort_ThenReparseSameMessage(t *testing.T) {
	f := newFixture(t, "text")
	f.parser.release = make(chan struct{})
	f.parser.candidate = domain.Candidate{Amount: amount("10"), Type: domain.Income}

	if err := f.pipeline.StartParse(context.Background(), f.messageID); err != nil {
		t.Fatalf("StartParse: %v", err)
	}
	f.pipeline.Abort()

	// Retry is a fresh StartParse on the same message.
	f.parser.mu.Lock()
	f.parser.release = nil
	f.parser.mu.Unlock()
	if err := f.pipeline.StartParse(context.Background(), f.messageID); err != nil {
		t.Fatalf("retry StartParse: %v", err)
	}
	waitState(t, f.pipeline, StateReview)
}

func TestCommit_ValidationFailureStaysInReview(t *testing.T) {
	f := newFixture(t, "text")
	f.parser.candidate = domain.Candidate{Amount: amount("500"), Type: domain.Expense}

	if err := f.pipeline.StartParse(context.Background(), f.messageID); err != nil {
		t.Fatalf("StartParse: %v", err)
	}
	waitState(t, f.pipeline, StateReview)

	// Unknown account: commit fails, review state and inbox are intact.
	_, err := f.pipeline.Commit(999, f.categoryID, "")
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if f.pipeline.Status().State != StateReview {
		t.Fatalf("state = %q, want review after failed commit", f.pipeline.Status().State)
	}
	if _, ok := f.inbox.Get(f.messageID); !ok {
		t.Error("message left inbox on failed commit")
	}
	if len(f.ledger.Transactions()) != 0 {
		t.Error("failed commit mutated the log")
	}

	// Corrected selections commit cleanly.
	if _, err := f.pipeline.Commit(f.accountID, f.categoryID, ""); err != nil {
		t.Fatalf("retried commit: %v", err)
	}
	if f.pipeline.Status().State != StateIdle {
		t.Errorf("state = %q, want idle", f.pipeline.Status().State)
	}
}

func TestCommit_WithoutCandidate(t *testing.T) {
	f := newFixture(t, "text")

	if _, err := f.pipeline.Commit(f.accountID, f.categoryID, ""); !errors.Is(err, ErrNoCandidate) {
		t.Errorf("Commit while idle = %v, want ErrNoCandidate", err)
	}
}

func TestApplyResult_MissingDateDefaultsToToday(t *testing.T) {
	f := newFixture(t, "text")
	f.parser.candidate = domain.Candidate{Amount: amount("10"), Type: domain.Income}
	fixed := time.Date(2024, 7, 15, 13, 45, 0, 0, time.UTC)
	f.pipeline.now = func() time.Time { return fixed }

	if err := f.pipeline.StartParse(context.Background(), f.messageID); err != nil {
		t.Fatalf("StartParse: %v", err)
	}
	waitState(t, f.pipeline, StateReview)

	if got := f.pipeline.Status().Candidate.Date; got != "2024-07-15" {
		t.Errorf("candidate date = %q, want 2024-07-15", got)
	}
}

func TestStartParse_UnknownMessage(t *testing.T) {
	f := newFixture(t, "text")

	if err := f.pipeline.StartParse(context.Background(), 404); err == nil {
		t.Error("expected error for unknown message id")
	}
	if f.pipeline.Status().State != StateIdle {
		t.Errorf("state = %q, want idle", f.pipeline.Status().State)
	}
}
