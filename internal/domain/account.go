package domain

import "github.com/shopspring/decimal"

// Account is a money account the user tracks. Accounts are created by
// explicit user action and never deleted.
type Account struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// AccountWithBalance pairs an account with its derived current balance.
// It is computed from the transaction log on every read and never stored;
// persisting it would let it diverge from the log, which is the single
// source of truth.
type AccountWithBalance struct {
	Account
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// Category labels committed transactions. Flat set, names unique.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// InboxMessage is one raw bank notification awaiting parsing. A message is
// consumed exactly once, at successful commit of its derived transaction.
type InboxMessage struct {
	ID     int64  `json:"id"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}
