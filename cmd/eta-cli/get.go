package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ifaizanrathore/workora-eta-engine/internal/core"
)

func getCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "get [task-id]",
		Short: "Show the accountability record for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			engine, _, closeFn, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			rec, err := engine.Get(ctx, args[0])
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					fmt.Println("No accountability record for this task.")
					return nil
				}
				return err
			}

			switch format {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			case "yaml":
				return yaml.NewEncoder(os.Stdout).Encode(rec)
			default:
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, yaml)")

	return cmd
}
