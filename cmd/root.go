package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagDB     string
	flagServer string
)

var rootCmd = &cobra.Command{
	Use:   "syscompta",
	Short: "SYSCOHADA double-entry bookkeeping backend for SME client files",
	Long: "A double-entry bookkeeping backend backed by SQLite, implementing the SYSCOHADA\n" +
		"chart of accounts, journal entry validation, a rapid-entry grid workflow and\n" +
		"per-client dashboards.",
}

func init() {
	// A .env file is optional; real env vars win.
	godotenv.Load()

	db := os.Getenv("SYSCOMPTA_DB")
	if db == "" {
		db = "syscompta.db"
	}
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", db, "SQLite database path")

	server := os.Getenv("SYSCOMPTA_SERVER")
	if server == "" {
		server = "http://localhost:8787"
	}
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", server, "API server address")
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if v := os.Getenv("SYSCOMPTA_LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func Execute() error {
	return rootCmd.Execute()
}
