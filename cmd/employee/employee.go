package main

import (
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KoviRobi/sqlxx/cli"
	"github.com/KoviRobi/sqlxx/db"
	"github.com/KoviRobi/sqlxx/employee"
	"github.com/KoviRobi/sqlxx/limits"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "employee <action>",
	Short: "Create, list or drop the Employee table",
	Long: `Runs one action on the Employee ( name varchar(30), age int ) table of a
database, by default the SQLite file test.sqlite in the current directory.

Actions:
  create  create the table
  list    print every employee
  drop    drop the table
  seed    insert --count made up employees`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: employee.Names(),
	RunE:      run,
}

func init() {
	rootCmd.PersistentFlags().String("db", db.FlagDbDefault, db.FlagDbDescription)
	rootCmd.PersistentFlags().Int("count", 10, "number of employees seed inserts")

	cli.AddCommonFlags(rootCmd, "employee")
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Unknown actions fail before anything touches the database.
	action, err := employee.Lookup(args[0])
	if err != nil {
		return err
	}

	env, err := cli.NewEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	conn, err := db.NewDriver(ctx, env, db.FlagConnectionString(viper.GetString("db")))
	if err != nil {
		return err
	}

	opts := employee.Options{
		Out:       cmd.OutOrStdout(),
		SeedCount: viper.GetInt("count"),
		MaxRows:   limits.MaxRows,
	}
	if action.Name == "seed" {
		bar := progressbar.Default(int64(opts.SeedCount), "seeding")
		defer bar.Close()
		opts.Progress = func() { _ = bar.Add(1) }
	}

	return action.Run(ctx, conn, opts)
}

func main() {
	cli.Execute(rootCmd)
}
