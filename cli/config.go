// Package cli holds the command line plumbing shared by the employee and
// sqlxx commands: flags, config files, logging and exit codes.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/KoviRobi/sqlxx/db"
	"github.com/KoviRobi/sqlxx/limits"
)

var cfgFile string

// AddCommonFlags adds the flags every command has to root. Flags added to
// root before this call are bound to viper as well.
func AddCommonFlags(root *cobra.Command, name string) {
	flags := root.PersistentFlags()
	flags.SetNormalizeFunc(normalizeFlagName)
	flags.Int("odbc-version", int(db.ODBC3), "ODBC behaviour to ask for, 2 or 3")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.Duration("query-timeout", 30*time.Second, "timeout per statement, 0 for none")
	flags.Int("max-rows", 1000, "maximum rows to print, 0 for all")

	viper.BindPFlags(flags)

	flags.StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is /etc/%s.yaml)", name))
	AddVersion(root)

	cobra.OnInitialize(func() { initConfig(name) })
}

// normalizeFlagName lets --query_timeout stand for --query-timeout, as the
// environment variables spell it.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig(name string) {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("/etc")
		viper.SetConfigName(name)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("sqlxx")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	configErr := viper.ReadInConfig()

	logger, err := NewLogger(os.Stderr, viper.GetString("log-level"))
	if err != nil {
		logger, _ = NewLogger(os.Stderr, "warn")
		logger.Warn("ignoring log level", "err", err)
	}
	slog.SetDefault(logger)

	if configErr == nil {
		slog.Info("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		slog.Warn("could not read config file", "path", cfgFile, "err", configErr)
	}

	limits.QueryTimeout = viper.GetDuration("query-timeout")
	limits.MaxRows = viper.GetInt("max-rows")
}

// NewEnvironment returns an environment for the configured ODBC version.
func NewEnvironment() (*db.Environment, error) {
	return db.NewEnvironment(db.Version(viper.GetInt("odbc-version")))
}

// Execute runs root, cancelling its context on CTRL+C, and exits the
// process: 1 if the command failed, printing the error.
func Execute(root *cobra.Command) {
	root.SilenceErrors = true
	root.SilenceUsage = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(0)
}
