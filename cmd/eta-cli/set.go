package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ifaizanrathore/workora-eta-engine/internal/core"
)

func setCmd() *cobra.Command {
	var etaStr, dueStr, listID, userID, reason string

	cmd := &cobra.Command{
		Use:   "set [task-id]",
		Short: "Set the initial ETA for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			engine, _, closeFn, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			eta, err := parseTimestamp(etaStr)
			if err != nil {
				return err
			}
			due, err := parseTimestampPtr(dueStr)
			if err != nil {
				return err
			}

			rec, err := engine.SetEta(ctx, core.SetEtaRequest{
				TaskID: args[0], ListID: listID, UserID: userID,
				Eta: eta, DueDate: due, Reason: reason,
			})
			if err != nil {
				return err
			}

			fmt.Printf("ETA set for %s: %s (status %s)\n",
				rec.TaskID, rec.CurrentEta.Format("2006-01-02 15:04"), rec.Status())
			return nil
		},
	}

	cmd.Flags().StringVar(&etaStr, "eta", "", "proposed ETA (RFC3339 or epoch ms)")
	cmd.Flags().StringVar(&dueStr, "due", "", "task due date (RFC3339 or epoch ms)")
	cmd.Flags().StringVar(&listID, "list", "", "list the task belongs to")
	cmd.Flags().StringVar(&userID, "user", "", "task owner")
	cmd.Flags().StringVar(&reason, "reason", "", "optional note")
	cmd.MarkFlagRequired("eta")
	cmd.MarkFlagRequired("list")
	cmd.MarkFlagRequired("user")

	return cmd
}
