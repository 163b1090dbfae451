package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/voznikov/banknote/internal/app"
	"github.com/voznikov/banknote/internal/cli"
	"github.com/voznikov/banknote/internal/config"
	"github.com/voznikov/banknote/internal/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("BANKNOTE_CONFIG"), "Path to config file (or set BANKNOTE_CONFIG)")

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	flag.Parse()

	log := logger.New()

	cfg, err := config.Read(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read configuration")
	}

	a := app.New(cfg, log)
	cli.Register(subcommands.DefaultCommander, a)

	os.Exit(int(subcommands.Execute(context.Background())))
}
