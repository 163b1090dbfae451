// Package cli implements the command-line surface of the tracker. Commands
// operate on the same assembled core as the HTTP API and exit after one
// operation; persistence sync makes every committed mutation durable before
// the process ends.
package cli

import (
	"github.com/google/subcommands"

	"github.com/voznikov/banknote/internal/app"
)

// Register wires every command onto the commander.
func Register(c *subcommands.Commander, a *app.App) {
	c.Register(&balancesCmd{app: a}, "ledger")
	c.Register(&addAccountCmd{app: a}, "ledger")
	c.Register(&categoriesCmd{app: a}, "ledger")
	c.Register(&addCategoryCmd{app: a}, "ledger")
	c.Register(&transactionsCmd{app: a}, "ledger")

	c.Register(&inboxCmd{app: a}, "inbox")
	c.Register(&addMessageCmd{app: a}, "inbox")
	c.Register(&parseCmd{app: a}, "inbox")

	c.Register(&debtsCmd{app: a}, "debts")
	c.Register(&addDebtCmd{app: a}, "debts")
	c.Register(&toggleDebtCmd{app: a}, "debts")
}
