// Package shell is an interactive statement prompt over one connection.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/peterh/liner"

	"github.com/KoviRobi/sqlxx/db"
	"github.com/KoviRobi/sqlxx/limits"
	"github.com/KoviRobi/sqlxx/styled"
)

type Shell struct {
	conn        *db.Driver
	out         io.Writer
	historyPath string
	// interrupt derives the context of one line of input.
	interrupt func(context.Context) (context.Context, context.CancelFunc)
}

func New(conn *db.Driver, out io.Writer) *Shell {
	return &Shell{
		conn:        conn,
		out:         out,
		historyPath: filepath.Join(os.TempDir(), ".sqlxx_history"),
		interrupt: func(ctx context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(ctx, os.Interrupt)
		},
	}
}

// Run reads statements from the terminal until .quit, EOF or CTRL+C at the
// prompt. CTRL+C while a statement runs cancels just that statement.
func (s *Shell) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(complete)

	if file, err := os.Open(s.historyPath); err == nil {
		_, _ = line.ReadHistory(file)
		file.Close()
	}
	defer s.saveHistory(line)

	fmt.Fprintf(s.out, "Connected to %s\n", s.conn.ConnectionString().Redacted())
	fmt.Fprintln(s.out, `Enter ".help" for usage hints and ".quit" or "CTRL+C" to quit`)

	for {
		input, err := line.Prompt(s.label())
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		quit, err := s.runLine(ctx, input)
		if err != nil {
			color.New(color.FgRed).Fprintln(s.out, err)
		}
		if quit {
			return nil
		}
	}
}

// runLine executes one line of input. The same interrupt that cancels the
// line also reaches ctx, so the line does not inherit ctx's cancellation.
func (s *Shell) runLine(ctx context.Context, input string) (bool, error) {
	ctx, stop := s.interrupt(context.WithoutCancel(ctx))
	defer stop()
	return s.Execute(ctx, input)
}

func (s *Shell) saveHistory(line *liner.State) {
	file, err := os.Create(s.historyPath)
	if err != nil {
		slog.Warn("could not save history", "path", s.historyPath, "err", err)
		return
	}
	defer file.Close()
	_, _ = line.WriteHistory(file)
}

func (s *Shell) label() string {
	if s.conn.Autocommit() {
		return "sqlxx> "
	}
	return "sqlxx(tx)> "
}

// Execute runs one line of input, either a dot command or a statement. It
// reports whether the shell should stop.
func (s *Shell) Execute(ctx context.Context, input string) (bool, error) {
	if !strings.HasPrefix(input, ".") {
		return false, s.statement(ctx, input)
	}

	switch strings.Fields(input)[0] {
	case ".quit", ".exit":
		return true, nil
	case ".help":
		s.help()
	case ".tables":
		return false, s.tables(ctx)
	case ".begin":
		s.conn.DisableAutocommit()
		fmt.Fprintln(s.out, "Transaction started")
	case ".commit":
		if err := s.conn.EnableAutocommit(ctx); err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, "Transaction committed")
	case ".rollback":
		err := s.conn.Rollback(ctx)
		if autoErr := s.conn.EnableAutocommit(ctx); err == nil {
			err = autoErr
		}
		if err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, "Transaction rolled back")
	default:
		fmt.Fprintln(s.out, "Unknown command, type .help for usage hints")
	}
	return false, nil
}

func (s *Shell) statement(ctx context.Context, text string) error {
	stmt := db.NewDirectStatement(s.conn, text)
	if !returnsRows(text) {
		if err := stmt.Execute(ctx); err != nil {
			return err
		}
		styled.DimmedColor().Fprintf(s.out, "OK, %d rows affected\n", stmt.RowsAffected())
		return nil
	}

	results, err := stmt.Query(ctx)
	if err != nil {
		return err
	}
	defer results.Close()

	count, err := styled.RenderResults(s.out, results, limits.MaxRows)
	if err != nil {
		return err
	}
	styled.DimmedColor().Fprintf(s.out, "%d rows\n", count)
	return nil
}

func (s *Shell) tables(ctx context.Context) error {
	tables, err := s.conn.Tables(ctx)
	if err != nil {
		return err
	}
	tw := styled.NewTableWriter()
	tw.SetOutputMirror(s.out)
	tw.AppendHeader(table.Row{"Name", "Type"})
	for _, t := range tables {
		tw.AppendRow(table.Row{t.Name, t.Type})
	}
	tw.Render()
	return nil
}

var rowKeywords = []string{"select", "with", "pragma", "values", "explain", "show", "describe"}

// returnsRows guesses from the first keyword whether text is a query.
func returnsRows(text string) bool {
	fields := strings.Fields(strings.TrimLeft(text, "( \t\n"))
	if len(fields) == 0 {
		return false
	}
	first := strings.ToLower(fields[0])
	for _, keyword := range rowKeywords {
		if first == keyword {
			return true
		}
	}
	return false
}
