package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/explorer-guide/internal/config"
)

var (
	userID    string
	sessionID string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "guide",
	Short: "Ask the Explorer travel guide from the terminal",
	Long: `guide runs the Explorer travel guide in-process against the configured
backends (Vertex AI, Google Maps, Tavily and the history store).

Configuration is read from the same environment variables as the API server,
optionally layered on the YAML file named by CONFIGFILE. Unless HISTORYBACKEND
says otherwise, sessions are kept in the SQLite file at SQLITEPATH.

Quick Start:
  guide ask --user u1 --session s1 "Best hikes near Denver?"
  guide history --user u1 --session s1`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "cli", "User id the session belongs to")
	rootCmd.PersistentFlags().StringVarP(&sessionID, "session", "s", "default", "Session id")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOGLEVEL (debug, info, warn, error)")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	applyCLIDefaults(cfg, os.Getenv)
	return cfg, nil
}

// applyCLIDefaults keeps the terminal quiet and stores sessions in a local
// SQLite file, since in-memory history ends with the process.
func applyCLIDefaults(cfg *config.Config, getenv func(string) string) {
	if logLevel != "" {
		cfg.LogLevel = logLevel
	} else if getenv("LOGLEVEL") == "" {
		cfg.LogLevel = "error"
	}
	if getenv("HISTORYBACKEND") == "" && cfg.HistoryBackend == config.HistoryMemory {
		cfg.HistoryBackend = config.HistorySQLite
	}
}
