package main

import (
	"github.com/spf13/cobra"

	"ledgerchat/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP query endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, svc, err := openSessions()
		if err != nil {
			return err
		}
		defer db.Close()

		addr := serveAddr
		if addr == "" {
			addr = cfg.ServerAddr
		}
		mux := server.SetupRoutes(server.NewHandler(svc, logger))
		return server.Serve(cmd.Context(), addr, server.LogRequests(logger, mux), logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: SERVER_ADDR)")
}
