// Package debt tracks money owed and derives each debt's status from its
// due date and paid flag.
package debt

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/voznikov/banknote/internal/domain"
)

// Tracker is the collection of debts. Safe for concurrent use.
type Tracker struct {
	mu  sync.Mutex
	log zerolog.Logger

	debts  []domain.Debt
	nextID int64
	subs   []func()
}

// New creates an empty tracker.
func New(log zerolog.Logger) *Tracker {
	return &Tracker{log: log, nextID: 1}
}

// Restore replaces the tracker contents with previously persisted state.
func (t *Tracker) Restore(debts []domain.Debt) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.debts = append([]domain.Debt(nil), debts...)
	for _, d := range t.debts {
		if d.ID >= t.nextID {
			t.nextID = d.ID + 1
		}
	}
}

// Subscribe registers fn to run after every mutation, outside the lock.
func (t *Tracker) Subscribe(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = append(t.subs, fn)
}

func (t *Tracker) notify() {
	t.mu.Lock()
	subs := append(([]func())(nil), t.subs...)
	t.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Debts returns a copy of the debts ordered by due date, earliest first.
func (t *Tracker) Debts() []domain.Debt {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := append([]domain.Debt(nil), t.debts...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out
}

// Add creates a new unpaid debt.
func (t *Tracker) Add(description string, amount decimal.Decimal, dueDate time.Time) (domain.Debt, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return domain.Debt{}, &domain.ValidationError{Field: "description", Reason: "must not be empty"}
	}

	t.mu.Lock()
	d := domain.Debt{
		ID:          t.nextID,
		Description: description,
		Amount:      amount,
		DueDate:     dueDate,
	}
	t.nextID++
	t.debts = append(t.debts, d)
	t.mu.Unlock()

	t.log.Info().Int64("debt_id", d.ID).Str("description", description).Msg("Debt added")
	t.notify()
	return d, nil
}

// Update replaces a debt's description, amount and due date.
func (t *Tracker) Update(id int64, description string, amount decimal.Decimal, dueDate time.Time) (domain.Debt, error) {
	t.mu.Lock()
	var updated domain.Debt
	found := false
	for i := range t.debts {
		if t.debts[i].ID == id {
			t.debts[i].Description = description
			t.debts[i].Amount = amount
			t.debts[i].DueDate = dueDate
			updated = t.debts[i]
			found = true
			break
		}
	}
	t.mu.Unlock()

	if !found {
		return domain.Debt{}, &domain.ValidationError{
			Field:  "debt_id",
			Reason: fmt.Sprintf("debt %d does not exist", id),
		}
	}
	t.notify()
	return updated, nil
}

// TogglePaid flips a debt's paid flag.
func (t *Tracker) TogglePaid(id int64) (domain.Debt, error) {
	t.mu.Lock()
	var toggled domain.Debt
	found := false
	for i := range t.debts {
		if t.debts[i].ID == id {
			t.debts[i].IsPaid = !t.debts[i].IsPaid
			toggled = t.debts[i]
			found = true
			break
		}
	}
	t.mu.Unlock()

	if !found {
		return domain.Debt{}, &domain.ValidationError{
			Field:  "debt_id",
			Reason: fmt.Sprintf("debt %d does not exist", id),
		}
	}

	t.log.Info().Int64("debt_id", id).Bool("is_paid", toggled.IsPaid).Msg("Debt toggled")
	t.notify()
	return toggled, nil
}

// Remove deletes a debt by id.
func (t *Tracker) Remove(id int64) error {
	t.mu.Lock()
	found := false
	for i := range t.debts {
		if t.debts[i].ID == id {
			t.debts = append(t.debts[:i], t.debts[i+1:]...)
			found = true
			break
		}
	}
	t.mu.Unlock()

	if !found {
		return &domain.ValidationError{
			Field:  "debt_id",
			Reason: fmt.Sprintf("debt %d does not exist", id),
		}
	}
	t.notify()
	return nil
}

// Status derives a debt's lifecycle position at the given moment. Both dates
// are normalized to midnight so the distance is a whole number of calendar
// days regardless of time of day or DST.
func Status(dueDate time.Time, isPaid bool, now time.Time) domain.DebtStatus {
	if isPaid {
		return domain.DebtStatus{State: domain.DebtPaid}
	}

	due := midnightUTC(dueDate)
	today := midnightUTC(now)
	days := int(due.Sub(today) / (24 * time.Hour))

	switch {
	case days > 0:
		return domain.DebtStatus{State: domain.DebtUpcoming, DaysRemaining: days}
	case days == 0:
		return domain.DebtStatus{State: domain.DebtDueToday}
	default:
		return domain.DebtStatus{State: domain.DebtOverdue, DaysPast: -days}
	}
}

// midnightUTC maps a timestamp to its calendar date at UTC midnight, making
// day arithmetic exact.
func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
