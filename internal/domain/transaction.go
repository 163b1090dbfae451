package domain

import (
	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction as money in or money out.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// DateFormat is the calendar-date layout used everywhere dates travel as
// strings. ISO dates compare correctly as plain strings, which the ledger
// relies on for ordering.
const DateFormat = "2006-01-02"

// Transaction is one committed ledger entry. Transactions are immutable once
// committed; the only writer is the parsing pipeline.
type Transaction struct {
	ID         int64           `json:"id"`
	AccountID  int64           `json:"account_id"`
	CategoryID int64           `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Type       TransactionType `json:"type"`

	// Date is a calendar date in DateFormat, or empty when the source
	// message carried none. Time is an optional time-of-day label.
	Date string `json:"date,omitempty"`
	Time string `json:"time,omitempty"`

	// Bank is the free-text source label reported by the parser.
	Bank  string `json:"bank,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// Candidate is the external parser's best-effort guess at a transaction.
// It is not yet linked to an account or category and only exists between
// pipeline start and commit/abort; it is never persisted.
type Candidate struct {
	Amount *decimal.Decimal `json:"amount"`
	Type   TransactionType  `json:"type,omitempty"`
	Bank   string           `json:"bank,omitempty"`
	Date   string           `json:"date,omitempty"`
	Time   string           `json:"time,omitempty"`
}

// Missing returns the required fields the candidate lacks. A candidate with
// no missing fields is complete enough to review and commit.
func (c Candidate) Missing() []string {
	var missing []string
	if c.Amount == nil {
		missing = append(missing, "amount")
	}
	if c.Type == "" {
		missing = append(missing, "type")
	}
	return missing
}
