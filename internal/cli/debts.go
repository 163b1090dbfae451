package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/voznikov/banknote/internal/app"
	"github.com/voznikov/banknote/internal/debt"
	"github.com/voznikov/banknote/internal/domain"
)

type debtsCmd struct {
	app *app.App
}

func (*debtsCmd) Name() string     { return "debts" }
func (*debtsCmd) Synopsis() string { return "list debts with their derived status" }
func (*debtsCmd) Usage() string    { return "banknote debts\n" }

func (*debtsCmd) SetFlags(f *flag.FlagSet) {}

func (c *debtsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	now := time.Now()
	for _, d := range c.app.Debts.Debts() {
		status := debt.Status(d.DueDate, d.IsPaid, now)
		label := string(status.State)
		switch status.State {
		case domain.DebtOverdue:
			label = fmt.Sprintf("overdue by %d day(s)", status.DaysPast)
		case domain.DebtUpcoming:
			label = fmt.Sprintf("due in %d day(s)", status.DaysRemaining)
		case domain.DebtDueToday:
			label = "due today"
		}
		fmt.Printf("%4d  %-24s %14s  due %s  [%s]\n",
			d.ID, d.Description, d.Amount.String(), d.DueDate.Format(domain.DateFormat), label)
	}
	return subcommands.ExitSuccess
}

type addDebtCmd struct {
	app         *app.App
	description string
	amount      string
	due         string
}

func (*addDebtCmd) Name() string     { return "add-debt" }
func (*addDebtCmd) Synopsis() string { return "record a new debt" }
func (*addDebtCmd) Usage() string {
	return `banknote add-debt -desc <description> -amount <amount> -due <YYYY-MM-DD>
`
}

func (c *addDebtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.description, "desc", "", "What the debt is for.")
	f.StringVar(&c.amount, "amount", "0", "Amount owed.")
	f.StringVar(&c.due, "due", "", "Due date (YYYY-MM-DD).")
}

func (c *addDebtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -amount %q: %v\n", c.amount, err)
		return subcommands.ExitUsageError
	}
	dueDate, err := time.Parse(domain.DateFormat, c.due)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -due %q: expected YYYY-MM-DD\n", c.due)
		return subcommands.ExitUsageError
	}

	d, err := c.app.Debts.Add(c.description, amount, dueDate)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Debt %d (%s) recorded, due %s\n", d.ID, d.Description, d.DueDate.Format(domain.DateFormat))
	return subcommands.ExitSuccess
}

type toggleDebtCmd struct {
	app *app.App
	id  int64
}

func (*toggleDebtCmd) Name() string     { return "toggle-debt" }
func (*toggleDebtCmd) Synopsis() string { return "flip a debt between paid and unpaid" }
func (*toggleDebtCmd) Usage() string {
	return `banknote toggle-debt -id <debt id>
`
}

func (c *toggleDebtCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Debt id.")
}

func (c *toggleDebtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	d, err := c.app.Debts.TogglePaid(c.id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	state := "unpaid"
	if d.IsPaid {
		state = "paid"
	}
	fmt.Printf("Debt %d (%s) marked %s\n", d.ID, d.Description, state)
	return subcommands.ExitSuccess
}
