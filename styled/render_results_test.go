package styled

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KoviRobi/sqlxx/db"
	"github.com/KoviRobi/sqlxx/test_utils"
)

func TestRenderResults(t *testing.T) {
	color.NoColor = true
	ctx := context.Background()
	conn := test_utils.CommonInit(t)
	test_utils.ExecAssert(t, conn, test_utils.CreateEmployee)
	test_utils.ExecAssert(t, conn, `insert into Employee values ('Ann', 31), ('Bob', NULL), ('Cy', 47)`)

	tests := []struct {
		name     string
		maxRows  int
		expected int
		contains []string
		missing  []string
	}{
		{name: "all rows", maxRows: 0, expected: 3, contains: []string{"name", "age", "Ann", "NULL", "Cy"}},
		{name: "capped", maxRows: 2, expected: 2, contains: []string{"Bob", "first 2 rows"}, missing: []string{"Cy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := db.NewDirectStatement(conn, "select * from Employee order by name").Query(ctx)
			require.NoError(t, err)
			defer results.Close()

			var out bytes.Buffer
			n, err := RenderResults(&out, results, tt.maxRows)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
			for _, s := range tt.missing {
				assert.NotContains(t, out.String(), s)
			}
		})
	}
}

func TestCell(t *testing.T) {
	color.NoColor = true
	assert.Equal(t, "NULL", Cell(nil))
	assert.Equal(t, "x'00ff'", Cell([]byte{0, 255}))
	assert.Equal(t, "42", Cell(int64(42)))
	assert.Equal(t, "Ann", strings.TrimSpace(Cell("Ann")))
}
