package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/listing-optimizer/internal/server"
	"github.com/jonathan/listing-optimizer/internal/server/ratelimit"
	"github.com/jonathan/listing-optimizer/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for keyword scoring and recommendation,
title generation, category matching and keyword catalog management. The store driver and rate
limits come from the config file and environment.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	engines, err := a.engines()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	// Record the active configuration so stored scores can be traced to the weights that produced them.
	if err := st.PutSetting(ctx, store.SettingWeights, engines.Scorer.Weights()); err != nil {
		return fmt.Errorf("failed to save scoring weights: %w", err)
	}
	if err := st.PutSetting(ctx, store.SettingTitleConfig, engines.Generator.Config()); err != nil {
		return fmt.Errorf("failed to save title config: %w", err)
	}

	port := a.cfg.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	srv, err := server.New(server.Config{
		Port:            port,
		Engines:         engines,
		Store:           st,
		Logger:          a.logger,
		RateLimit:       ratelimit.LoadConfig(os.Getenv),
		DiversityFactor: *a.cfg.DiversityFactor,
		RandomSeed:      a.cfg.RandomSeed,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
