package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/auditlog"
	"github.com/cleared-dev/tally/internal/model"
)

type filterFlags struct {
	name     string
	category string
	date     string
}

func (f *filterFlags) register(cmd *cobra.Command, verb string) {
	cmd.Flags().StringVar(&f.name, "name", "", verb+" expenses with this exact name")
	cmd.Flags().StringVar(&f.category, "category", "", verb+" expenses in this category")
	cmd.Flags().StringVar(&f.date, "date", "", verb+" expenses on this date (YYYY-MM-DD)")
}

// filter builds a model.Filter from whichever flags were set. Set flags
// combine with AND.
func (f *filterFlags) filter(cmd *cobra.Command) (model.Filter, error) {
	var out model.Filter
	if cmd.Flags().Changed("name") {
		out = out.And(model.ByName(f.name))
	}
	if cmd.Flags().Changed("category") {
		out = out.And(model.ByCategory(f.category))
	}
	if cmd.Flags().Changed("date") {
		d, err := model.ParseDate(f.date)
		if err != nil {
			return model.Filter{}, err
		}
		out = out.And(model.ByDate(d))
	}
	return out, nil
}

func newDeleteCommand(a *app) *cobra.Command {
	var (
		flags filterFlags
		id    string
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove expenses matching every given filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flags.filter(cmd)
			if err != nil {
				return err
			}
			return runDelete(cmd.OutOrStdout(), a, f, id)
		},
	}

	flags.register(cmd, "delete")
	cmd.Flags().StringVar(&id, "id", "", "delete the record with this ID")
	cmd.MarkFlagsMutuallyExclusive("id", "name")
	cmd.MarkFlagsMutuallyExclusive("id", "category")
	cmd.MarkFlagsMutuallyExclusive("id", "date")

	return cmd
}

func runDelete(out io.Writer, a *app, f model.Filter, id string) error {
	var (
		n     int
		err   error
		query string
	)
	if id != "" {
		query = "id=" + id
		n, err = a.store.DeleteByID(id)
	} else {
		query = f.String()
		n, err = a.store.Delete(f)
	}
	if err == nil {
		a.audit(auditlog.ActionDelete, id, n, query)
	}
	return reportAffected(out, n, err)
}
