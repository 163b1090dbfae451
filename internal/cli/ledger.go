package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/voznikov/banknote/internal/app"
)

type balancesCmd struct {
	app *app.App
}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "list accounts with their derived current balances" }
func (*balancesCmd) Usage() string {
	return `banknote balances

  Prints every account with its current balance, derived from the initial
  balance and the committed transaction log.
`
}
func (*balancesCmd) SetFlags(f *flag.FlagSet) {}

func (c *balancesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	for _, a := range c.app.Ledger.Balances() {
		fmt.Printf("%4d  %-24s %s\n", a.ID, a.Name, a.CurrentBalance.String())
	}
	return subcommands.ExitSuccess
}

type addAccountCmd struct {
	app     *app.App
	name    string
	initial string
}

func (*addAccountCmd) Name() string     { return "add-account" }
func (*addAccountCmd) Synopsis() string { return "create a new account" }
func (*addAccountCmd) Usage() string {
	return `banknote add-account -name <name> [-initial <balance>]
`
}

func (c *addAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Account name.")
	f.StringVar(&c.initial, "initial", "0", "Initial balance.")
}

func (c *addAccountCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	initial, err := decimal.NewFromString(c.initial)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -initial %q: %v\n", c.initial, err)
		return subcommands.ExitUsageError
	}

	account, err := c.app.Ledger.AddAccount(c.name, initial)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Account %d (%s) created with balance %s\n", account.ID, account.Name, account.InitialBalance.String())
	return subcommands.ExitSuccess
}

type categoriesCmd struct {
	app *app.App
}

func (*categoriesCmd) Name() string             { return "categories" }
func (*categoriesCmd) Synopsis() string         { return "list categories" }
func (*categoriesCmd) Usage() string            { return "banknote categories\n" }
func (*categoriesCmd) SetFlags(f *flag.FlagSet) {}

func (c *categoriesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	for _, cat := range c.app.Ledger.Categories() {
		fmt.Printf("%4d  %s\n", cat.ID, cat.Name)
	}
	return subcommands.ExitSuccess
}

type addCategoryCmd struct {
	app  *app.App
	name string
	icon string
}

func (*addCategoryCmd) Name() string     { return "add-category" }
func (*addCategoryCmd) Synopsis() string { return "create a new category" }
func (*addCategoryCmd) Usage() string {
	return `banknote add-category -name <name> [-icon <icon>]
`
}

func (c *addCategoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Category name (unique).")
	f.StringVar(&c.icon, "icon", "", "Icon reference.")
}

func (c *addCategoryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	category, err := c.app.Ledger.AddCategory(c.name, c.icon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Category %d (%s) created\n", category.ID, category.Name)
	return subcommands.ExitSuccess
}

type transactionsCmd struct {
	app *app.App
}

func (*transactionsCmd) Name() string     { return "transactions" }
func (*transactionsCmd) Synopsis() string { return "list the transaction log, most recent first" }
func (*transactionsCmd) Usage() string    { return "banknote transactions\n" }

func (*transactionsCmd) SetFlags(f *flag.FlagSet) {}

func (c *transactionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	for _, tx := range c.app.Ledger.Transactions() {
		date := tx.Date
		if date == "" {
			date = "(no date)"
		}
		fmt.Printf("%4d  %-10s  %-7s %14s  account=%d category=%d  %s\n",
			tx.ID, date, tx.Type, tx.Amount.String(), tx.AccountID, tx.CategoryID, tx.Notes)
	}
	return subcommands.ExitSuccess
}
