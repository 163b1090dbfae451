// Package ledger owns the canonical account set, category set and the
// append-only transaction log, and derives per-account balances from them.
// The log has a single writer: CommitTransaction, driven by the parsing
// pipeline. Everything the package hands out is a copy; derived balances are
// recomputed on every read and never cached.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/voznikov/banknote/internal/domain"
)

// EventKind identifies which collection changed.
type EventKind string

const (
	EventAccounts     EventKind = "accounts"
	EventCategories   EventKind = "categories"
	EventTransactions EventKind = "transactions"
)

// Event is delivered to subscribers after a committed mutation. The mutation
// is complete and visible through the snapshot getters by the time the event
// fires.
type Event struct {
	Kind EventKind
}

// Ledger is the canonical owner of accounts, categories and transactions.
// Safe for concurrent use.
type Ledger struct {
	mu  sync.Mutex
	log zerolog.Logger

	accounts     []domain.Account
	categories   []domain.Category
	transactions []domain.Transaction

	nextAccountID  int64
	nextCategoryID int64
	nextTxID       int64

	subs []func(Event)
}

// New creates an empty ledger.
func New(log zerolog.Logger) *Ledger {
	return &Ledger{
		log:            log,
		nextAccountID:  1,
		nextCategoryID: 1,
		nextTxID:       1,
	}
}

// Restore replaces the ledger's collections with previously persisted state.
// Called once at startup, before any subscriber is registered. ID counters
// resume above the highest restored id so ids stay unique for the lifetime
// of the store. The transaction log is re-sorted defensively in case the
// persisted copy predates the current ordering policy.
func (l *Ledger) Restore(accounts []domain.Account, categories []domain.Category, transactions []domain.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.accounts = append([]domain.Account(nil), accounts...)
	l.categories = append([]domain.Category(nil), categories...)
	l.transactions = append([]domain.Transaction(nil), transactions...)

	for _, a := range l.accounts {
		if a.ID >= l.nextAccountID {
			l.nextAccountID = a.ID + 1
		}
	}
	for _, c := range l.categories {
		if c.ID >= l.nextCategoryID {
			l.nextCategoryID = c.ID + 1
		}
	}
	for _, t := range l.transactions {
		if t.ID >= l.nextTxID {
			l.nextTxID = t.ID + 1
		}
	}

	sortTransactions(l.transactions)
}

// Subscribe registers fn to run after every committed mutation. Callbacks
// run on the mutating goroutine, outside the ledger lock, so they may call
// back into the snapshot getters.
func (l *Ledger) Subscribe(fn func(Event)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs = append(l.subs, fn)
}

func (l *Ledger) notify(e Event) {
	l.mu.Lock()
	subs := append(([]func(Event))(nil), l.subs...)
	l.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
}

// Accounts returns a copy of the account set.
func (l *Ledger) Accounts() []domain.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Account(nil), l.accounts...)
}

// Categories returns a copy of the category set.
func (l *Ledger) Categories() []domain.Category {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Category(nil), l.categories...)
}

// Transactions returns a copy of the transaction log in display order:
// most recent date first, undated entries last, same-date entries in
// most-recently-committed-first order.
func (l *Ledger) Transactions() []domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Transaction(nil), l.transactions...)
}

// Account looks up an account by id.
func (l *Ledger) Account(id int64) (domain.Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, a := range l.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Account{}, false
}

// Category looks up a category by id.
func (l *Ledger) Category(id int64) (domain.Category, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.categories {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Category{}, false
}

// AddAccount creates a new account with the given starting balance.
func (l *Ledger) AddAccount(name string, initialBalance decimal.Decimal) (domain.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Account{}, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	l.mu.Lock()
	account := domain.Account{
		ID:             l.nextAccountID,
		Name:           name,
		InitialBalance: initialBalance,
	}
	l.nextAccountID++
	l.accounts = append(l.accounts, account)
	l.mu.Unlock()

	l.log.Info().Int64("account_id", account.ID).Str("name", name).Msg("Account created")
	l.notify(Event{Kind: EventAccounts})
	return account, nil
}

// AddCategory creates a new category. Names are unique, compared
// case-insensitively after trimming.
func (l *Ledger) AddCategory(name, icon string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	l.mu.Lock()
	for _, c := range l.categories {
		if strings.EqualFold(c.Name, name) {
			l.mu.Unlock()
			return domain.Category{}, &domain.ValidationError{
				Field:  "name",
				Reason: fmt.Sprintf("category %q already exists", c.Name),
			}
		}
	}
	category := domain.Category{
		ID:   l.nextCategoryID,
		Name: name,
		Icon: icon,
	}
	l.nextCategoryID++
	l.categories = append(l.categories, category)
	l.mu.Unlock()

	l.log.Info().Int64("category_id", category.ID).Str("name", name).Msg("Category created")
	l.notify(Event{Kind: EventCategories})
	return category, nil
}

// CommitTransaction turns a reviewed candidate into a committed ledger
// entry. It validates the account and category references, re-validates
// candidate completeness, assigns a fresh monotonic id, prepends the entry
// and re-sorts the log. The mutation runs to completion under the ledger
// lock; subscribers are notified afterwards.
func (l *Ledger) CommitTransaction(c domain.Candidate, accountID, categoryID int64, notes string) (domain.Transaction, error) {
	if missing := c.Missing(); len(missing) > 0 {
		return domain.Transaction{}, &domain.IncompleteDataError{Missing: missing}
	}
	if !c.Type.Valid() {
		return domain.Transaction{}, &domain.ValidationError{
			Field:  "type",
			Reason: fmt.Sprintf("unknown transaction type %q", c.Type),
		}
	}
	if c.Amount.IsNegative() {
		return domain.Transaction{}, &domain.ValidationError{Field: "amount", Reason: "must not be negative"}
	}

	l.mu.Lock()
	if !l.hasAccount(accountID) {
		l.mu.Unlock()
		return domain.Transaction{}, &domain.ValidationError{
			Field:  "account_id",
			Reason: fmt.Sprintf("account %d does not exist", accountID),
		}
	}
	if !l.hasCategory(categoryID) {
		l.mu.Unlock()
		return domain.Transaction{}, &domain.ValidationError{
			Field:  "category_id",
			Reason: fmt.Sprintf("category %d does not exist", categoryID),
		}
	}

	tx := domain.Transaction{
		ID:         l.nextTxID,
		AccountID:  accountID,
		CategoryID: categoryID,
		Amount:     *c.Amount,
		Type:       c.Type,
		Date:       c.Date,
		Time:       c.Time,
		Bank:       c.Bank,
		Notes:      notes,
	}
	l.nextTxID++

	// Prepend, then stable-sort by date. Prepending first means the stable
	// sort keeps the new entry ahead of older same-date entries.
	l.transactions = append([]domain.Transaction{tx}, l.transactions...)
	sortTransactions(l.transactions)
	l.mu.Unlock()

	l.log.Info().
		Int64("transaction_id", tx.ID).
		Int64("account_id", accountID).
		Str("type", string(tx.Type)).
		Str("amount", tx.Amount.String()).
		Msg("Transaction committed")

	l.notify(Event{Kind: EventTransactions})
	return tx, nil
}

func (l *Ledger) hasAccount(id int64) bool {
	for _, a := range l.accounts {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (l *Ledger) hasCategory(id int64) bool {
	for _, c := range l.categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// sortTransactions orders the log most-recent-date-first. Dates are ISO
// strings, so plain string comparison orders them correctly and the empty
// (absent) date sorts after every dated entry. The sort is stable: equal
// dates keep their insertion order.
func sortTransactions(txs []domain.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date > txs[j].Date
	})
}
