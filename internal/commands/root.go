// Package commands implements the tally command line.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/auditlog"
	"github.com/cleared-dev/tally/internal/buildinfo"
	"github.com/cleared-dev/tally/internal/category"
	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/gitops"
	"github.com/cleared-dev/tally/internal/ledger"
)

// app carries state resolved once per invocation and shared by subcommands.
type app struct {
	configPath string
	ledgerFlag string
	levelFlag  string

	logger     *log.Logger
	cfg        *config.Config
	store      *ledger.Store
	categories *category.Service
	auditPath  string
	now        func() time.Time
}

// NewRootCommand creates the root CLI command with all subcommands
// registered. A nil logger discards diagnostics.
func NewRootCommand(logger *log.Logger) *cobra.Command {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return newRoot(&app{logger: logger, now: time.Now})
}

func newRoot(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Personal expense ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.FileName, "config file")
	flags.StringVar(&a.ledgerFlag, "ledger", "", "ledger CSV file (overrides config)")
	flags.StringVar(&a.levelFlag, "log-level", "", "debug, info, warn or error (overrides config)")

	rootCmd.AddCommand(
		newInitCommand(a),
		newAddCommand(a),
		newReceiptCommand(a),
		newImportCommand(a),
		newUpdateCommand(a),
		newDeleteCommand(a),
		newListCommand(a),
		newReportCommand(a),
		newCompareCommand(a),
		newForecastCommand(a),
		newHistoryCommand(a),
	)

	return rootCmd
}

// setup resolves config in precedence order: file, environment, flags.
func (a *app) setup() error {
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if a.levelFlag != "" {
		cfg.Log.Level = a.levelFlag
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", a.configPath, err)
	}

	lvl, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	a.logger.SetLevel(lvl)

	ledgerPath := cfg.LedgerPath(a.configPath)
	if a.ledgerFlag != "" {
		ledgerPath = a.ledgerFlag
	}
	a.auditPath = cfg.AuditPath(a.configPath)
	if a.ledgerFlag != "" && cfg.Audit.Enabled && cfg.Audit.Path == "" {
		a.auditPath = auditlog.PathFor(ledgerPath)
	}

	a.cfg = cfg
	a.store = ledger.NewStore(ledgerPath, a.logger)
	a.categories = category.NewService(cfg.Categories)
	a.logger.Debug("resolved config", "config", a.configPath, "ledger", ledgerPath, "audit", a.auditPath)
	return nil
}

// audit records a successful mutation in the audit log and, when enabled,
// commits the ledger. Failures are logged, not returned: the ledger change
// has already happened.
func (a *app) audit(action, recordID string, affected int, details string) {
	if a.auditPath != "" {
		entry := auditlog.Entry{
			Timestamp: a.now(),
			Action:    action,
			RecordID:  recordID,
			Affected:  affected,
			Details:   details,
		}
		if err := auditlog.Append(a.auditPath, []auditlog.Entry{entry}); err != nil {
			a.logger.Warn("writing audit log", "path", a.auditPath, "err", err)
		}
	}
	if a.cfg.Git.AutoCommit {
		a.commit(fmt.Sprintf("tally: %s %s", action, details))
	}
}

func (a *app) commit(message string) {
	dir := filepath.Dir(a.store.Path())
	if !gitops.IsRepo(dir) {
		a.logger.Warn("git.auto_commit is set but the ledger is not in a git repository", "dir", dir)
		return
	}
	var paths []string
	for _, p := range []string{a.store.Path(), a.auditPath} {
		if _, err := os.Stat(p); p != "" && err == nil {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return
	}
	author := gitops.Author{Name: a.cfg.Git.AuthorName, Email: a.cfg.Git.AuthorEmail}
	hash, err := gitops.Commit(dir, message, author, paths...)
	if err != nil {
		a.logger.Warn("committing ledger", "err", err)
		return
	}
	a.logger.Debug("committed ledger", "commit", hash)
}

// reportAffected prints the outcome of an update or delete. A match
// failure is not an error for the command.
func reportAffected(out io.Writer, n int, err error) error {
	if errors.Is(err, ledger.ErrNotFound) {
		fmt.Fprintf(out, "0 rows affected (%v)\n", err)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d row(s) affected\n", n)
	return nil
}

// noteSkipped tells the user how many rows a read could not use. The
// store logs each one.
func noteSkipped(out io.Writer, skipped []*ledger.ParseError) {
	if len(skipped) > 0 {
		fmt.Fprintf(out, "(%d malformed row(s) skipped)\n", len(skipped))
	}
}
