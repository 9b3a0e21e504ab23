package commands

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/auditlog"
	"github.com/cleared-dev/tally/internal/importer"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

func newImportCommand(a *app) *cobra.Command {
	var (
		format   string
		category string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "import <statement.csv>",
		Short: "Record the debits from a bank statement export",
		Long: "Record every money-out row of a bank CSV export as an expense.\n" +
			"Rows already in the ledger are skipped, so re-importing a\n" +
			"statement is safe.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.OutOrStdout(), a, importer.DefaultRegistry(), args[0], format, category, dryRun)
		},
	}

	cmd.Flags().StringVar(&format, "format", "chase", "statement format")
	cmd.Flags().StringVar(&category, "category", "Misc", "category for imported expenses")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be added without writing")

	return cmd
}

func runImport(out io.Writer, a *app, reg *importer.Registry, path, format, categoryInput string, dryRun bool) error {
	parser := reg.Get(format)
	if parser == nil {
		formats := reg.Formats()
		slices.Sort(formats)
		return fmt.Errorf("unknown statement format %q (have %s)", format, strings.Join(formats, ", "))
	}
	cat, err := a.categories.Resolve(categoryInput)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	txns, err := parser.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	existing, _, err := ledger.Collect(a.store.Scan(model.Filter{}))
	if err != nil {
		return err
	}
	incoming := importer.Expenses(txns, cat)
	fresh := importer.Unseen(existing, incoming)

	for _, e := range fresh {
		fmt.Fprintf(out, "  + %s\n", describe(e))
	}
	if dryRun {
		fmt.Fprintf(out, "Would add %d of %d debit(s) (dry run)\n", len(fresh), len(incoming))
		return nil
	}
	if err := a.store.Append(fresh...); err != nil {
		return err
	}
	if len(fresh) > 0 {
		a.audit(auditlog.ActionAppend, "", len(fresh), fmt.Sprintf("import %s (%s)", path, parser.Format()))
	}
	fmt.Fprintf(out, "Added %d of %d debit(s)\n", len(fresh), len(incoming))
	return nil
}
