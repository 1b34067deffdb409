package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/explorer-guide/internal/bootstrap"
	"github.com/GregMSThompson/explorer-guide/internal/services"
	"github.com/GregMSThompson/explorer-guide/internal/tools"
	"github.com/GregMSThompson/explorer-guide/pkg/logger"
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Ask the guide a question and record the turn in the session",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		bs, err := bootstrap.Run(cfg)
		if err != nil {
			return err
		}
		defer bs.Close()

		registry := tools.NewRegistry(
			tools.SearchPlaces(bs.MapsAdapter, cfg.GuideRegion, cfg.ToolTimeout),
			tools.WebSearch(bs.TavilyAdapter, cfg.WebSearchMaxResults, cfg.ToolTimeout),
		)
		guide := services.NewGuideService(bs.VertexAdapter, registry, bs.History, services.GuideOptions{
			Region:     cfg.GuideRegion,
			MaxRounds:  cfg.MaxRounds,
			LLMTimeout: cfg.LLMTimeout,

			Temperature:     cfg.VertexTemperature,
			MaxOutputTokens: cfg.VertexMaxOutputTokens,
		})

		ctx := logger.ToContext(cmd.Context(), bs.Log)
		resp, err := guide.Generate(ctx, userID, sessionID, strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderAnswer(guide.Region(), resp.Response))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
