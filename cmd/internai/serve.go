package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/internai/internai/internal/server"
)

var (
	serveConfigPath string
	servePort       int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  "Start an HTTP server exposing the optimization pipeline with SSE streaming and candidate indexing endpoints.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, serveConfigPath, true)
	if err != nil {
		return err
	}
	defer a.close()

	if cmd.Flags().Changed("port") {
		a.cfg.Port = servePort
	}

	srv := server.New(a.coordinator, a.indexer, a.store, a.db, a.cfg, a.log)
	return srv.Start()
}
