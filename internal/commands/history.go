package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/auditlog"
	"github.com/cleared-dev/tally/internal/cli"
)

func newHistoryCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the audit trail of ledger changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.OutOrStdout(), a, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most this many recent entries (0 for all)")

	return cmd
}

func runHistory(out io.Writer, a *app, limit int) error {
	if a.auditPath == "" {
		fmt.Fprintln(out, "Audit log is disabled in the config.")
		return nil
	}
	entries, err := auditlog.Read(a.auditPath)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No changes recorded.")
		return nil
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Timestamp.Local().Format(time.DateTime),
			e.Action,
			strconv.Itoa(e.Affected),
			e.RecordID,
			e.Details,
		})
	}
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   "History",
		Headers: []string{"When", "Action", "Rows", "ID", "Details"},
		Rows:    rows,
	}))
	return nil
}
