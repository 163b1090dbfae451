package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/voznikov/banknote/internal/app"
)

type inboxCmd struct {
	app *app.App
}

func (*inboxCmd) Name() string     { return "inbox" }
func (*inboxCmd) Synopsis() string { return "list bank messages waiting to be parsed" }
func (*inboxCmd) Usage() string    { return "banknote inbox\n" }

func (*inboxCmd) SetFlags(f *flag.FlagSet) {}

func (c *inboxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	messages := c.app.Inbox.Messages()
	if len(messages) == 0 {
		fmt.Println("Inbox is empty.")
		return subcommands.ExitSuccess
	}
	for _, m := range messages {
		fmt.Printf("%4d  %-16s %s\n", m.ID, m.Sender, m.Text)
	}
	return subcommands.ExitSuccess
}

type addMessageCmd struct {
	app    *app.App
	sender string
	text   string
}

func (*addMessageCmd) Name() string     { return "add-message" }
func (*addMessageCmd) Synopsis() string { return "add a raw bank notification to the inbox" }
func (*addMessageCmd) Usage() string {
	return `banknote add-message -text <message text> [-sender <sender>]
`
}

func (c *addMessageCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sender, "sender", "", "Message sender label.")
	f.StringVar(&c.text, "text", "", "Raw notification text.")
}

func (c *addMessageCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.text == "" {
		fmt.Fprintln(os.Stderr, "-text is required")
		return subcommands.ExitUsageError
	}

	msg := c.app.Inbox.Add(c.sender, c.text)
	fmt.Printf("Message %d added to inbox\n", msg.ID)
	return subcommands.ExitSuccess
}
