package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/cleared-dev/tally/internal/commands"
)

func main() {
	// Optional .env supplies TALLY_* overrides.
	_ = godotenv.Load()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "tally",
		ReportTimestamp: true,
	})

	if err := commands.NewRootCommand(logger).Execute(); err != nil {
		os.Exit(1)
	}
}
