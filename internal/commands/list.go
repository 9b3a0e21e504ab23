package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/aggregate"
	"github.com/cleared-dev/tally/internal/cli"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

func newListCommand(a *app) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show expenses, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flags.filter(cmd)
			if err != nil {
				return err
			}
			return runList(cmd.OutOrStdout(), a, f)
		},
	}

	flags.register(cmd, "show")

	return cmd
}

func runList(out io.Writer, a *app, f model.Filter) error {
	records, skipped, err := ledger.Collect(a.store.Scan(f))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(out, "No expenses match %s\n", f)
		noteSkipped(out, skipped)
		return nil
	}

	rows := make([][]string, 0, len(records)+2)
	for _, r := range records {
		rows = append(rows, []string{r.DateString(), r.Name, r.Category, cli.FormatMoney(r.Amount), r.ID})
	}
	rows = append(rows, cli.Separator, []string{"Total", "", "", cli.FormatMoney(aggregate.Total(records)), ""})

	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Expenses (%s)", f),
		Headers: []string{"Date", "Name", "Category", "Amount", "ID"},
		Rows:    rows,
	}))
	noteSkipped(out, skipped)
	return nil
}
