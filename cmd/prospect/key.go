package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"prospect-engine/internal/secrets"
)

func newKeyCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "key",
		Args:  cobra.NoArgs,
		Short: "Manage the API key stored in the OS keychain",
	}
	cmd.PersistentFlags().StringVar(&account, "account", secrets.DefaultAccount, "keychain account name")

	set := &cobra.Command{
		Use:   "set [key]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Store the API key (read from stdin when not given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && strings.TrimSpace(line) == "" {
					return fmt.Errorf("read api key: %w", err)
				}
				key = line
			}
			if err := secrets.SetAPIKey(account, key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "api key stored in keychain")
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete",
		Args:  cobra.NoArgs,
		Short: "Remove the stored API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := secrets.DeleteAPIKey(account); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "api key removed from keychain")
			return nil
		},
	}

	cmd.AddCommand(set, del)
	return cmd
}
