package main

import (
	"github.com/spf13/cobra"

	"github.com/KoviRobi/sqlxx/shell"
)

var shellCmd = &cobra.Command{
	Use:   "shell <provider> [connection-parameters...]",
	Short: "Run statements interactively",
	Long: `Reads statements from the terminal and runs each one on its own, printing
the rows of queries as a table. Enter ".help" at the prompt for the dot
commands, e.g. ".begin" to turn autocommit off.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, conn, err := connect(ctx, args)
		if err != nil {
			return err
		}
		defer env.Close()

		return shell.New(conn, cmd.OutOrStdout()).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
