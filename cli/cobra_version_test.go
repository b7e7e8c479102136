package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionText(t *testing.T) {
	committed := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		revision string
		dirty    bool
		expected string
	}{
		{
			name:     "unknown revision",
			revision: "unknown",
			expected: "Version: v1.2.0\nRevision: unknown\n",
		},
		{
			name:     "clean",
			revision: "abc123",
			expected: "Version: v1.2.0\nRevision: abc123\nCommitted: Fri, 01 Mar 2024 12:00:00 UTC\n",
		},
		{
			name:     "dirty",
			revision: "abc123",
			dirty:    true,
			expected: "Version: v1.2.0\nRevision: abc123\nCommitted: Fri, 01 Mar 2024 12:00:00 UTC\nDirty Build\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, versionText("v1.2.0", tt.revision, committed, tt.dirty))
		})
	}
}

func TestVersionFlag(t *testing.T) {
	ran := false
	root := &cobra.Command{Use: "employee", Run: func(*cobra.Command, []string) { ran = true }}
	AddVersion(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"-v"})
	require.NoError(t, root.Execute())
	assert.False(t, ran)
	assert.Contains(t, out.String(), "Version: ")
	assert.Contains(t, out.String(), "Revision: ")
}
