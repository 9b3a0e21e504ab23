package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/gitops"
)

type initOptions struct {
	budget string
	git    bool
}

func newInitCommand(a *app) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the config file and an empty ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.OutOrStdout(), a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.budget, "budget", "", "monthly budget to store in the config")
	cmd.Flags().BoolVar(&opts.git, "git", false, "keep the ledger in git and commit every change")

	return cmd
}

func runInit(out io.Writer, a *app, opts initOptions) error {
	// Write tally.yaml unless one exists.
	_, err := os.Stat(a.configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg := config.Default()
		if opts.budget != "" {
			cfg.Budget.Monthly = opts.budget
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		cfg.Git.AutoCommit = opts.git
		if dir := filepath.Dir(a.configPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating config dir: %w", err)
			}
		}
		if err := config.Save(a.configPath, cfg); err != nil {
			return err
		}
		a.cfg.Git = cfg.Git
		fmt.Fprintf(out, "Wrote %s\n", a.configPath)
	case err != nil:
		return fmt.Errorf("checking config: %w", err)
	default:
		fmt.Fprintf(out, "Keeping existing %s\n", a.configPath)
		if opts.git {
			if err := enableAutoCommit(out, a); err != nil {
				return err
			}
		}
	}

	// Create the ledger with its header.
	if err := a.store.Init(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Ledger ready at %s\n", a.store.Path())

	if opts.git {
		dir := filepath.Dir(a.store.Path())
		if !gitops.IsRepo(dir) {
			if err := gitops.Init(dir); err != nil {
				return err
			}
			fmt.Fprintf(out, "Initialized git repository in %s\n", dir)
		}
		a.commit("tally: init")
	}
	return nil
}

// enableAutoCommit turns on git.auto_commit in an existing config file.
// The file is reloaded so env and flag overrides are not written back.
func enableAutoCommit(out io.Writer, a *app) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg.Git.AutoCommit = true
	if cfg.Git.AutoCommit {
		return nil
	}
	cfg.Git.AutoCommit = true
	if err := config.Save(a.configPath, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "Enabled git.auto_commit in %s\n", a.configPath)
	return nil
}
