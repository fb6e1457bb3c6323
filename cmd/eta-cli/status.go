package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ifaizanrathore/workora-eta-engine/internal/config"
)

// counter is implemented by backends that can report record totals.
type counter interface {
	Counts(ctx context.Context) (open, completed int, err error)
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show engine configuration and record counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			repo, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			fmt.Printf("Backend:     %s\n", cfg.Storage.Backend)
			if cfg.Storage.Backend == "sqlite" {
				fmt.Printf("Database:    %s\n", cfg.Storage.Path)
			}
			fmt.Printf("Max strikes: %d\n", cfg.Accountability.MaxStrikes)
			fmt.Printf("Grace hours: %d\n", cfg.Accountability.GraceHours)

			if c, ok := repo.(counter); ok {
				open, completed, err := c.Counts(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Open:        %d\n", open)
				fmt.Printf("Completed:   %d\n", completed)
			}
			return nil
		},
	}
}
