package main

import (
	"github.com/spf13/cobra"

	"github.com/KoviRobi/sqlxx/cli"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sqlxx",
	Short: "Inspect and query databases through ODBC style connections",
	Long: `Connects to a database named by a provider and its connection parameters,
then either prints what the catalog knows about it (inspect) or opens an
interactive statement prompt (shell).

` + providerUsage(),
}

func init() {
	cli.AddCommonFlags(rootCmd, "sqlxx")
}

func main() {
	cli.Execute(rootCmd)
}
