package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/cli"
	"github.com/cleared-dev/tally/internal/forecast"
)

func newForecastCommand(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project next month's spending from the monthly trend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForecast(cmd.OutOrStdout(), a, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show the monthly history and fitted trend")

	return cmd
}

func runForecast(out io.Writer, a *app, verbose bool) error {
	fc, err := forecast.NextMonth(a.store)
	if errors.Is(err, forecast.ErrInsufficientData) {
		fmt.Fprintln(out, "Not enough history to forecast: record some expenses first.")
		return nil
	}
	if err != nil {
		return err
	}

	if verbose {
		rows := make([][]string, 0, len(fc.History))
		for _, p := range fc.History {
			rows = append(rows, []string{p.Period.String(), cli.FormatMoney(p.Total)})
		}
		fmt.Fprint(out, cli.RenderTable(cli.Table{
			Title:   "History",
			Headers: []string{"Month", "Total"},
			Rows:    rows,
		}))
		fmt.Fprintf(out, "Trend: %s per month (R² %s)\n",
			cli.FormatDelta(fc.Line.Slope), fc.Line.RSquared.StringFixed(2))
	}
	if len(fc.History) == 1 {
		fmt.Fprintln(out, "Only one month of history: repeating its total.")
	}
	fmt.Fprintf(out, "Predicted expenses for %s: %s\n", fc.Period.Label(), cli.FormatMoney(fc.Amount))
	noteSkipped(out, fc.Skipped)
	return nil
}
