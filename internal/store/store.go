// Package store provides keyed-slot durable storage for the tracker's
// collections. Each slot is loaded once at process start and saved after
// every committed mutation of its owning collection. Store failures are
// never fatal: in-memory state stays authoritative until the next load.
package store

// Slot names the core persists under.
const (
	SlotAccounts     = "accounts"
	SlotTransactions = "transactions"
	SlotCategories   = "categories"
	SlotDebts        = "debts"
	SlotInbox        = "inbox"
)

// Store is a generic key-to-value durable slot.
type Store interface {
	// Load reads the named slot into v. A slot that has never been saved
	// returns an error wrapping fs.ErrNotExist; callers fall back to the
	// slot's default value.
	Load(slot string, v interface{}) error

	// Save durably replaces the named slot with v.
	Save(slot string, v interface{}) error
}
