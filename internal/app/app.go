// Package app wires the core together: store, ledger, inbox, debts and the
// parsing pipeline, with persistence sync registered as change observers.
package app

import (
	"errors"
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/voznikov/banknote/internal/config"
	"github.com/voznikov/banknote/internal/debt"
	"github.com/voznikov/banknote/internal/domain"
	"github.com/voznikov/banknote/internal/inbox"
	"github.com/voznikov/banknote/internal/ledger"
	"github.com/voznikov/banknote/internal/parser"
	"github.com/voznikov/banknote/internal/pipeline"
	"github.com/voznikov/banknote/internal/store"
)

// App is the assembled tracker core.
type App struct {
	Cfg      *config.Config
	Log      zerolog.Logger
	Store    store.Store
	Ledger   *ledger.Ledger
	Inbox    *inbox.Inbox
	Debts    *debt.Tracker
	Pipeline *pipeline.Pipeline
}

// New builds the core on a file store at cfg.DataDir and a Gemini parser.
func New(cfg *config.Config, log zerolog.Logger) *App {
	st := store.NewFileStore(cfg.DataDir, log)
	p := parser.NewGemini(cfg.Gemini.Model, cfg.Gemini.APIKey, log)
	return NewWithDeps(cfg, st, p, log)
}

// NewWithDeps builds the core on explicit store and parser implementations.
// Each slot is loaded once here; a slot that has never been saved, or that
// cannot be read, falls back to its empty default; a read failure must not
// prevent startup.
func NewWithDeps(cfg *config.Config, st store.Store, p parser.Parser, log zerolog.Logger) *App {
	led := ledger.New(log)
	in := inbox.New(log)
	debts := debt.New(log)

	var (
		accounts     []domain.Account
		categories   []domain.Category
		transactions []domain.Transaction
		messages     []domain.InboxMessage
		debtRecords  []domain.Debt
	)
	loadSlot(st, log, store.SlotAccounts, &accounts)
	loadSlot(st, log, store.SlotCategories, &categories)
	loadSlot(st, log, store.SlotTransactions, &transactions)
	loadSlot(st, log, store.SlotInbox, &messages)
	loadSlot(st, log, store.SlotDebts, &debtRecords)

	led.Restore(accounts, categories, transactions)
	in.Restore(messages)
	debts.Restore(debtRecords)

	// Persistence sync: every committed mutation re-saves its owning slot.
	// Runs on the mutating goroutine after the logical operation completes;
	// failures are logged and in-memory state remains authoritative.
	led.Subscribe(func(e ledger.Event) {
		switch e.Kind {
		case ledger.EventAccounts:
			saveSlot(st, log, store.SlotAccounts, led.Accounts())
		case ledger.EventCategories:
			saveSlot(st, log, store.SlotCategories, led.Categories())
		case ledger.EventTransactions:
			saveSlot(st, log, store.SlotTransactions, led.Transactions())
		}
	})
	in.Subscribe(func() {
		saveSlot(st, log, store.SlotInbox, in.Messages())
	})
	debts.Subscribe(func() {
		saveSlot(st, log, store.SlotDebts, debts.Debts())
	})

	return &App{
		Cfg:      cfg,
		Log:      log,
		Store:    st,
		Ledger:   led,
		Inbox:    in,
		Debts:    debts,
		Pipeline: pipeline.New(p, led, in, log),
	}
}

func loadSlot(st store.Store, log zerolog.Logger, slot string, v interface{}) {
	err := st.Load(slot, v)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		log.Debug().Str("slot", slot).Msg("Slot not present, starting empty")
	default:
		log.Warn().Err(err).Str("slot", slot).Msg("Slot unreadable, using default")
	}
}

func saveSlot(st store.Store, log zerolog.Logger, slot string, v interface{}) {
	if err := st.Save(slot, v); err != nil {
		log.Error().Err(err).Str("slot", slot).Msg("Persistence sync failed, in-memory state stays authoritative")
	}
}
