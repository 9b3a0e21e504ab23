package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/auditlog"
	"github.com/cleared-dev/tally/internal/cli"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/receipt"
)

func newAddCommand(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "add <name> <amount> <category>",
		Short: "Record an expense",
		Long: "Record an expense. Category is a name or its number in the\n" +
			"configured category list; date defaults to today.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd.OutOrStdout(), a, args[0], args[1], args[2], date)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "expense date (YYYY-MM-DD)")

	return cmd
}

func runAdd(out io.Writer, a *app, name, amount, categoryInput, date string) error {
	cat, err := a.categories.Resolve(categoryInput)
	if err != nil {
		return err
	}
	if date == "" {
		date = a.now().Format(model.DateFormat)
	}
	e, err := model.NewExpense(name, cat, amount, date)
	if err != nil {
		return err
	}
	return a.appendExpense(out, e)
}

func newReceiptCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt <image>",
		Short: "Record an expense from a scanned receipt",
		Long: "Record an expense from a receipt image. The OCR result is read\n" +
			"from <image>.yaml next to the image (name, amount, category, date).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner := receipt.SidecarScanner{DefaultCategory: "Misc"}
			return runReceipt(cmd.Context(), cmd.OutOrStdout(), a, scanner, args[0])
		},
	}
	return cmd
}

func runReceipt(ctx context.Context, out io.Writer, a *app, scanner receipt.Scanner, image string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := scanner.Scan(ctx, image)
	if err != nil {
		return fmt.Errorf("scanning receipt: %w", err)
	}
	if !a.categories.Exists(e.Category) {
		a.logger.Info("receipt category is outside the configured set", "category", e.Category)
	}
	return a.appendExpense(out, e)
}

func (a *app) appendExpense(out io.Writer, e model.Expense) error {
	if err := a.store.Append(e); err != nil {
		return err
	}
	recordID := a.lastID(e)
	a.audit(auditlog.ActionAppend, recordID, 1, describe(e))
	fmt.Fprintf(out, "Added %s [%s]\n", describe(e), recordID)
	return nil
}

// lastID finds the ID the store assigns to the most recent row equal to e.
func (a *app) lastID(e model.Expense) string {
	f := model.ByName(e.Name).And(model.ByCategory(e.Category)).And(model.ByDate(e.Date))
	records, _, err := ledger.Collect(a.store.Scan(f))
	if err != nil {
		a.logger.Warn("looking up new record id", "err", err)
		return ""
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Equal(e) {
			return records[i].ID
		}
	}
	return ""
}

func describe(e model.Expense) string {
	return fmt.Sprintf("%s %s %s %s", e.DateString(), e.Name, cli.FormatMoney(e.Amount), e.Category)
}
