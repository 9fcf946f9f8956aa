package main

import (
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-peak/internal/batch"
	"github.com/cwbudde/algo-peak/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /v1/detect, /metrics and /healthz over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			srv := server.New(server.Config{
				Addr:    cfg.Serve.Addr,
				Params:  cfg.Params(),
				Metrics: batch.NewMetrics(),
				Logger:  a.logger,
			})
			return srv.Start(cmd.Context())
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	return cmd
}
