package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/voznikov/banknote/internal/app"
	"github.com/voznikov/banknote/internal/pipeline"
)

type parseCmd struct {
	app      *app.App
	message  int64
	account  int64
	category int64
	notes    string
	timeout  time.Duration
}

func (*parseCmd) Name() string     { return "parse" }
func (*parseCmd) Synopsis() string { return "parse an inbox message and optionally commit it" }
func (*parseCmd) Usage() string {
	return `banknote parse -message <id> [-account <id> -category <id>] [-notes <text>]

  Runs the message through the external parser. With -account and -category
  the resulting candidate is committed as a transaction and the message
  leaves the inbox; without them the candidate is printed for review and the
  message stays put.
`
}

func (c *parseCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.message, "message", 0, "Inbox message id.")
	f.Int64Var(&c.account, "account", 0, "Account id to commit to.")
	f.Int64Var(&c.category, "category", 0, "Category id to commit with.")
	f.StringVar(&c.notes, "notes", "", "Optional notes for the committed transaction.")
	f.DurationVar(&c.timeout, "timeout", 2*time.Minute, "How long to wait for the parser.")
}

func (c *parseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.message == 0 {
		fmt.Fprintln(os.Stderr, "-message is required")
		return subcommands.ExitUsageError
	}

	parseCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.app.Pipeline.StartParse(parseCtx, c.message); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	status := c.waitForResult(parseCtx)

	switch status.State {
	case pipeline.StateFailed:
		fmt.Fprintf(os.Stderr, "Parsing failed: %s\nThe message stays in the inbox; retry with 'banknote parse'.\n", status.Failure)
		c.app.Pipeline.Abort()
		return subcommands.ExitFailure

	case pipeline.StateParsing:
		fmt.Fprintln(os.Stderr, "Timed out waiting for the parser; the message stays in the inbox.")
		c.app.Pipeline.Abort()
		return subcommands.ExitFailure

	case pipeline.StateReview:
		cand := status.Candidate
		fmt.Printf("Candidate: amount=%s type=%s bank=%q date=%s time=%s\n",
			cand.Amount.String(), cand.Type, cand.Bank, cand.Date, cand.Time)

		if c.account == 0 || c.category == 0 {
			fmt.Println("No -account/-category given; nothing committed, message stays in the inbox.")
			c.app.Pipeline.Abort()
			return subcommands.ExitSuccess
		}

		tx, err := c.app.Pipeline.Commit(c.account, c.category, c.notes)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			c.app.Pipeline.Abort()
			return subcommands.ExitFailure
		}

		fmt.Printf("Transaction %d committed, message %d removed from inbox\n", tx.ID, c.message)
		return subcommands.ExitSuccess
	}

	return subcommands.ExitFailure
}

// waitForResult polls the pipeline until it leaves the Parsing state or the
// context expires.
func (c *parseCmd) waitForResult(ctx context.Context) pipeline.Status {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		status := c.app.Pipeline.Status()
		if status.State != pipeline.StateParsing {
			return status
		}
		select {
		case <-ctx.Done():
			return c.app.Pipeline.Status()
		case <-ticker.C:
		}
	}
}
