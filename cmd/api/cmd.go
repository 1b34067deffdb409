package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GregMSThompson/explorer-guide/internal/bootstrap"
	"github.com/GregMSThompson/explorer-guide/internal/config"
	"github.com/GregMSThompson/explorer-guide/internal/handlers"
	"github.com/GregMSThompson/explorer-guide/internal/response"
	"github.com/GregMSThompson/explorer-guide/internal/router"
	"github.com/GregMSThompson/explorer-guide/internal/services"
	"github.com/GregMSThompson/explorer-guide/internal/tools"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg, err := config.New()
	exitOnError("config failed", err, slog.Default())
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// tools
	registry := tools.NewRegistry(
		tools.SearchPlaces(bs.MapsAdapter, cfg.GuideRegion, cfg.ToolTimeout),
		tools.WebSearch(bs.TavilyAdapter, cfg.WebSearchMaxResults, cfg.ToolTimeout),
	)

	// services
	guide := services.NewGuideService(bs.VertexAdapter, registry, bs.History, services.GuideOptions{
		Region:     cfg.GuideRegion,
		MaxRounds:  cfg.MaxRounds,
		LLMTimeout: cfg.LLMTimeout,

		Temperature:     cfg.VertexTemperature,
		MaxOutputTokens: cfg.VertexMaxOutputTokens,
	})

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Firebase = bs.Firebase
	deps.GuideSvc = guide

	// router
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			bs.Log.Error("server shutdown failed", "error", err)
		}
	}()

	bs.Log.Info("server listening", "addr", srv.Addr, "tools", registry.Names())
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		exitOnError("server start failed", err, bs.Log)
	}
}
