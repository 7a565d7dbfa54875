package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prospect-engine/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Args:  cobra.NoArgs,
		Short: "Config file helpers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Write the default config unless the file exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath
			if len(args) == 1 {
				path = args[0]
			}
			created, err := config.EnsureUserConfig(path)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
			}
			return nil
		},
	})

	return cmd
}
