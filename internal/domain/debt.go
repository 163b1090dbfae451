package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Debt is money owed with a due date. The status is derived from the due
// date and paid flag, never stored.
type Debt struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	IsPaid      bool            `json:"is_paid"`
}

// DebtState is the derived lifecycle position of a debt.
type DebtState string

const (
	DebtPaid     DebtState = "paid"
	DebtOverdue  DebtState = "overdue"
	DebtDueToday DebtState = "due_today"
	DebtUpcoming DebtState = "upcoming"
)

// DebtStatus carries the derived state plus the whole-day distance to the
// due date: DaysPast for overdue debts, DaysRemaining for upcoming ones.
type DebtStatus struct {
	State         DebtState `json:"state"`
	DaysPast      int       `json:"days_past,omitempty"`
	DaysRemaining int       `json:"days_remaining,omitempty"`
}
