package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the favorites schema in the configured database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(context.Background(), cfg)
		if err != nil {
			return err
		}
		store.Close()
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "Favorites schema is up to date.")
		return err
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
