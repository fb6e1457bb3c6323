package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ifaizanrathore/workora-eta-engine/internal/core"
)

func extendCmd() *cobra.Command {
	var etaStr, dueStr, userID, reason string

	cmd := &cobra.Command{
		Use:   "extend [task-id]",
		Short: "Extend a lapsed ETA (applies one strike)",
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

			rec, err := engine.ExtendEta(ctx, core.ExtendEtaRequest{
				TaskID: args[0], UserID: userID,
				NewEta: eta, DueDate: due, Reason: reason,
			})
			if err != nil {
				return err
			}

			fmt.Printf("ETA extended for %s: %s (strike %d/%d, status %s)\n",
				rec.TaskID, rec.CurrentEta.Format("2006-01-02 15:04"),
				rec.StrikeCount, rec.MaxStrikes, rec.Status())
			return nil
		},
	}

	cmd.Flags().StringVar(&etaStr, "eta", "", "new ETA (RFC3339 or epoch ms)")
	cmd.Flags().StringVar(&dueStr, "due", "", "task due date (RFC3339 or epoch ms)")
	cmd.Flags().StringVar(&userID, "user", "", "task owner")
	cmd.Flags().StringVar(&reason, "reason", "", "why the ETA moved (min 3 chars)")
	cmd.MarkFlagRequired("eta")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("reason")

	return cmd
}
