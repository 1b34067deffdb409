package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/explorer-guide/internal/bootstrap"
	"github.com/GregMSThompson/explorer-guide/internal/config"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the stored conversation for a session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		bs, err := bootstrap.RunHistory(cfg)
		if err != nil {
			return err
		}
		defer bs.Close()

		if cfg.HistoryBackend == config.HistoryMemory {
			fmt.Fprintln(cmd.ErrOrStderr(), "note: HISTORYBACKEND=memory keeps no history between runs")
		}

		msgs, err := bs.History.Get(cmd.Context(), userID, sessionID)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderHistory(userID, sessionID, msgs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
