package shell

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/KoviRobi/sqlxx/styled"
)

type dotCmd struct {
	name string
	help string
}

var dotCmds = []dotCmd{
	{name: ".begin", help: "Turn autocommit off until .commit or .rollback"},
	{name: ".commit", help: "Commit the pending transaction"},
	{name: ".exit", help: "Exit the shell"},
	{name: ".help", help: "Show the help message"},
	{name: ".quit", help: "Exit the shell"},
	{name: ".rollback", help: "Discard the pending transaction"},
	{name: ".tables", help: "List all tables and views"},
}

func (s *Shell) help() {
	fmt.Fprintln(s.out, "Available commands:")

	tw := styled.NewTableWriter()
	tw.SetOutputMirror(s.out)
	tw.AppendHeader(table.Row{"Command", "Description"})
	for _, cmd := range dotCmds {
		tw.AppendRow(table.Row{cmd.name, cmd.help})
	}
	tw.AppendRow(table.Row{"CTRL+C", "Exit the shell"})
	tw.Render()
}

func complete(line string) []string {
	suggestions := []string{
		"SELECT ",
		"SELECT * FROM ",
		"SELECT COUNT(*) FROM ",
		"INSERT INTO ",
		"UPDATE ",
		"DELETE FROM ",
		"CREATE TABLE ",
		"DROP TABLE ",
	}
	for _, cmd := range dotCmds {
		suggestions = append(suggestions, cmd.name)
	}

	results := []string{}
	for _, suggestion := range suggestions {
		if strings.HasPrefix(strings.ToLower(suggestion), strings.ToLower(line)) {
			results = append(results, suggestion)
		}
	}
	return results
}
