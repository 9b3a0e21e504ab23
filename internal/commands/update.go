package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/auditlog"
	"github.com/cleared-dev/tally/internal/model"
)

type updateOptions struct {
	id       string
	category string
	amount   string
	date     string
}

func newUpdateCommand(a *app) *cobra.Command {
	var opts updateOptions

	cmd := &cobra.Command{
		Use:   "update [name]",
		Short: "Replace the category, amount and date of an expense",
		Long: "Replace the category, amount and date of the first expense with\n" +
			"the given name, or of the expense with --id.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runUpdate(cmd.OutOrStdout(), a, name, opts)
		},
	}

	cmd.Flags().StringVar(&opts.id, "id", "", "record ID (from list) instead of a name")
	cmd.Flags().StringVar(&opts.category, "category", "", "new category (required)")
	cmd.Flags().StringVar(&opts.amount, "amount", "", "new amount (required)")
	cmd.Flags().StringVar(&opts.date, "date", "", "new date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func runUpdate(out io.Writer, a *app, name string, opts updateOptions) error {
	if (name == "") == (opts.id == "") {
		return errors.New("give either a name or --id")
	}

	cat, err := updateCategory(a, opts.category)
	if err != nil {
		return err
	}
	amount, err := model.ParseCents(opts.amount)
	if err != nil {
		return err
	}
	date, err := model.ParseDate(opts.date)
	if err != nil {
		return err
	}

	var n int
	query := "name=" + name
	if opts.id != "" {
		query = "id=" + opts.id
		n, err = a.store.UpdateByID(opts.id, cat, amount, date)
	} else {
		n, err = a.store.Update(name, cat, amount, date)
	}
	if err == nil {
		a.audit(auditlog.ActionUpdate, opts.id, n,
			fmt.Sprintf("%s -> %s %s %s", query, cat, amount.StringFixed(2), date.Format(model.DateFormat)))
	}
	return reportAffected(out, n, err)
}

// updateCategory resolves a menu number or known name like add does, but
// keeps any other name as typed so imported categories survive an update.
func updateCategory(a *app, input string) (string, error) {
	cat, err := a.categories.Resolve(input)
	if err == nil {
		return cat, nil
	}
	input = strings.TrimSpace(input)
	if _, numErr := strconv.Atoi(input); numErr == nil || input == "" {
		return "", err
	}
	a.logger.Info("category is outside the configured set", "category", input)
	return input, nil
}
