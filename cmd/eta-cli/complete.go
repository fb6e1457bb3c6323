package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func completeCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "complete [task-id]",
		Short: "Mark a task complete and close its record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			engine, _, closeFn, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			rec, err := engine.MarkComplete(ctx, args[0], userID)
			if err != nil {
				return err
			}

			fmt.Printf("Task %s completed at %s with %d strike(s)\n",
				rec.TaskID, rec.CompletedAt.Format("2006-01-02 15:04"), rec.StrikeCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "task owner")
	cmd.MarkFlagRequired("user")

	return cmd
}
