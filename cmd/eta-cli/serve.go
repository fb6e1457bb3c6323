package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ifaizanrathore/workora-eta-engine/internal/web"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the accountability API server",
		Long: `Start the HTTP API consumed by the Workora client.

Examples:
  eta serve
  eta serve --addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cfg, closeFn, err := openEngine(context.Background())
			if err != nil {
				return err
			}
			defer closeFn()

			if addr == "" {
				addr = cfg.Server.Addr
			}

			fmt.Printf("Starting accountability server at http://localhost%s\n", addr)
			server := web.NewServer(engine, engine.Config())
			return server.Run(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}
