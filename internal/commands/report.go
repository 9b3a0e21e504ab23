package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/cli"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/report"
)

const chartWidth = 30

func newReportCommand(a *app) *cobra.Command {
	var (
		budget string
		chart  bool
	)

	cmd := &cobra.Command{
		Use:   "report <YYYY-MM>",
		Short: "Summarize one month by category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := model.ParsePeriod(args[0])
			if err != nil {
				return err
			}
			limit, err := a.cfg.MonthlyBudget()
			if err != nil {
				return err
			}
			if budget != "" {
				if limit, err = model.ParseCents(budget); err != nil {
					return err
				}
			}
			return runReport(cmd.OutOrStdout(), a, p, limit, chart)
		},
	}

	cmd.Flags().StringVar(&budget, "budget", "", "monthly budget (overrides config)")
	cmd.Flags().BoolVar(&chart, "chart", false, "draw a bar chart of the category totals")

	return cmd
}

func runReport(out io.Writer, a *app, p model.Period, budget decimal.Decimal, chart bool) error {
	rep, err := report.Monthly(a.store, p)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.RenderTitle("Expenses for "+p.Label()))
	if len(rep.Categories) == 0 {
		fmt.Fprintln(out, "No expenses recorded.")
	} else {
		rows := make([][]string, 0, len(rep.Categories)+2)
		for _, c := range rep.Categories {
			rows = append(rows, []string{c.Category, cli.FormatMoney(c.Amount)})
		}
		rows = append(rows, cli.Separator, []string{"Total", cli.FormatMoney(rep.Total)})
		fmt.Fprint(out, cli.RenderTable(cli.Table{
			Headers: []string{"Category", "Amount"},
			Rows:    rows,
		}))
	}

	if budget.IsPositive() {
		remaining := budget.Sub(rep.Total)
		fmt.Fprintf(out, "Budget:    %s\n", cli.FormatMoney(budget))
		fmt.Fprintf(out, "Remaining: %s\n", cli.FormatMoney(remaining))
		if perDay, ok := budgetPerDay(remaining, p, a.now()); ok {
			fmt.Fprintf(out, "Per day:   %s\n", cli.FormatMoney(perDay))
		} else {
			fmt.Fprintln(out, "No remaining days in this month.")
		}
		if remaining.IsNegative() {
			fmt.Fprintln(out, cli.RenderWarning("over budget by "+cli.FormatMoney(remaining.Neg())))
		}
	}

	if chart && len(rep.Categories) > 0 {
		fmt.Fprintln(out)
		fmt.Fprint(out, cli.RenderBars(rep.ByCategory(), chartWidth))
	}
	noteSkipped(out, rep.Skipped)
	return nil
}

// budgetPerDay spreads remaining over the days of p still ahead of now.
// Today counts as spent. A month entirely in the future has all its days
// ahead; a past month has none, reported as ok=false.
func budgetPerDay(remaining decimal.Decimal, p model.Period, now time.Time) (decimal.Decimal, bool) {
	var days int
	current := model.Period{Year: now.Year(), Month: now.Month()}
	switch {
	case p == current:
		days = p.DaysIn() - now.Day()
	case p.Index() > current.Index():
		days = p.DaysIn()
	}
	if days <= 0 {
		return decimal.Zero, false
	}
	return remaining.Div(decimal.NewFromInt(int64(days))).Round(2), true
}

func newCompareCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <YYYY-MM> <YYYY-MM>",
		Short: "Compare two months category by category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, err := model.ParsePeriod(args[0])
			if err != nil {
				return err
			}
			second, err := model.ParsePeriod(args[1])
			if err != nil {
				return err
			}
			return runCompare(cmd.OutOrStdout(), a, first, second)
		},
	}
	return cmd
}

func runCompare(out io.Writer, a *app, first, second model.Period) error {
	cmp, err := report.Comparative(a.store, first, second)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.RenderTitle(first.Label()+" vs "+second.Label()))
	if len(cmp.Rows) == 0 {
		fmt.Fprintln(out, "No expenses recorded in either month.")
		noteSkipped(out, cmp.Skipped)
		return nil
	}

	rows := make([][]string, 0, len(cmp.Rows)+2)
	for _, r := range cmp.Rows {
		rows = append(rows, []string{r.Category, cli.FormatMoney(r.First), cli.FormatMoney(r.Second), cli.FormatDelta(r.Delta())})
	}
	a1, a2 := cmp.Totals()
	rows = append(rows, cli.Separator, []string{"Total", cli.FormatMoney(a1), cli.FormatMoney(a2), cli.FormatDelta(a2.Sub(a1))})

	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers: []string{"Category", first.String(), second.String(), "Change"},
		Rows:    rows,
	}))
	noteSkipped(out, cmp.Skipped)
	return nil
}
