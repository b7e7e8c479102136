package main

import (
	"github.com/spf13/cobra"

	"github.com/KoviRobi/sqlxx/inspect"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <provider> [connection-parameters...]",
	Short: "Print catalogs, schemas, tables and keys",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, conn, err := connect(ctx, args)
		if err != nil {
			return err
		}
		defer env.Close()

		return inspect.Run(ctx, conn, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
