package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KoviRobi/sqlxx/db"
	"github.com/KoviRobi/sqlxx/limits"
)

func TestInitConfig(t *testing.T) {
	viper.Reset()
	logger, timeout, maxRows := slog.Default(), limits.QueryTimeout, limits.MaxRows
	t.Cleanup(func() {
		viper.Reset()
		cfgFile = ""
		slog.SetDefault(logger)
		limits.QueryTimeout, limits.MaxRows = timeout, maxRows
	})

	cfgFile = filepath.Join(t.TempDir(), "sqlxx.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("odbc-version: 2\nmax-rows: 50\nlog-level: error\n"), 0o644))
	t.Setenv("SQLXX_MAX_ROWS", "7")
	t.Setenv("SQLXX_QUERY_TIMEOUT", "2s")

	initConfig("sqlxx")

	assert.Equal(t, 7, limits.MaxRows, "environment beats config file")
	assert.Equal(t, 2*time.Second, limits.QueryTimeout)
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelWarn))

	env, err := NewEnvironment()
	require.NoError(t, err)
	assert.Equal(t, db.ODBC2, env.Version())
}

func TestNewEnvironmentRejectsVersion(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("odbc-version", 4)

	_, err := NewEnvironment()
	assert.ErrorIs(t, err, db.ErrEnvironment)
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level       string
		logged      bool
		expectError bool
	}{
		{level: "debug", logged: true},
		{level: "info", logged: true},
		{level: "WARN", logged: false},
		{level: "error", logged: false},
		{level: "loud", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var out bytes.Buffer
			logger, err := NewLogger(&out, tt.level)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			logger.Info("connecting", "connection", "Driver={SQLite ODBC Driver};")
			if tt.logged {
				assert.Contains(t, out.String(), "connecting")
			} else {
				assert.Empty(t, out.String())
			}
		})
	}
}

func TestNormalizeFlagName(t *testing.T) {
	flags := pflag.NewFlagSet("employee", pflag.ContinueOnError)
	flags.SetNormalizeFunc(normalizeFlagName)
	maxRows := flags.Int("max-rows", 1000, "")
	timeout := flags.Duration("query-timeout", time.Second, "")

	require.NoError(t, flags.Parse([]string{"--max_rows=3", "--query_timeout", "2m"}))
	assert.Equal(t, 3, *maxRows)
	assert.Equal(t, 2*time.Minute, *timeout)
}
