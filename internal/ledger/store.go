// Package ledger persists expenses in a single flat CSV file.
//
// Mutations (update, delete) read the whole file, change it in memory and
// rewrite it through a temp file that is renamed over the original, so a
// crash mid-write leaves the previous ledger intact. There is no locking:
// two processes mutating the same ledger concurrently can lose each
// other's changes.
package ledger

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/id"
	"github.com/cleared-dev/tally/internal/model"
)

// Store is a handle on one ledger file.
type Store struct {
	path   string
	logger *log.Logger
}

// NewStore creates a Store for the ledger at path. A nil logger discards output.
func NewStore(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{path: path, logger: logger}
}

// Path returns the ledger file path.
func (s *Store) Path() string { return s.path }

// Init creates an empty ledger (header only) if the file does not exist.
func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}
	defer f.Close()

	if err := WriteExpenses(f, nil); err != nil {
		return err
	}
	s.logger.Debug("created ledger", "path", s.path)
	return nil
}

// Append validates every expense and then writes them as trailing rows,
// creating the file and header if needed. Nothing is written if any
// expense is invalid.
func (s *Store) Append(expenses ...model.Expense) error {
	for _, e := range expenses {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	if len(expenses) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat ledger: %w", err)
	}

	headed := false
	if info.Size() > 0 {
		rr := newRowReader(s.path, io.NewSectionReader(f, 0, info.Size()))
		if _, err := rr.next(); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		headed = rr.header
		// A hand-edited file may lack the final newline.
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err != nil {
			return fmt.Errorf("reading ledger tail: %w", err)
		}
		if last[0] != '\n' {
			if _, err := f.WriteString("\n"); err != nil {
				return fmt.Errorf("terminating last row: %w", err)
			}
		}
	}

	// Blank-only files have no header yet.
	write := AppendExpenses
	if !headed {
		write = WriteExpenses
	}
	if err := write(f, expenses); err != nil {
		return fmt.Errorf("appending expenses: %w", err)
	}
	s.logger.Debug("appended expenses", "path", s.path, "rows", len(expenses))
	return nil
}

// Scan returns a lazy sequence over the records matching f. Every call
// re-reads the file from the start.
//
// Malformed rows yield a *ParseError and the scan continues. A header
// mismatch yields a *SchemaError and ends the scan. A missing ledger
// yields nothing.
func (s *Store) Scan(f model.Filter) iter.Seq2[model.Expense, error] {
	return func(yield func(model.Expense, error) bool) {
		file, err := os.Open(s.path)
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		if err != nil {
			yield(model.Expense{}, fmt.Errorf("opening ledger %s: %w", s.path, err))
			return
		}
		defer file.Close()

		rr := newRowReader(s.path, file)
		for {
			r, err := rr.next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(model.Expense{}, err)
				return
			}
			if r.err != nil {
				s.logger.Warn("skipping malformed row", "line", r.line, "error", r.err)
				if !yield(model.Expense{}, r.err) {
					return
				}
				continue
			}
			if !f.Match(r.expense) {
				continue
			}
			if !yield(r.expense, nil) {
				return
			}
		}
	}
}

// Collect drains a scan. Row-level parse errors are returned separately;
// any other error aborts the collection.
func Collect(seq iter.Seq2[model.Expense, error]) ([]model.Expense, []*ParseError, error) {
	var (
		records []model.Expense
		skipped []*ParseError
	)
	for e, err := range seq {
		var perr *ParseError
		if errors.As(err, &perr) {
			skipped = append(skipped, perr)
			continue
		}
		if err != nil {
			return nil, skipped, err
		}
		records = append(records, e)
	}
	return records, skipped, nil
}

// Update replaces the category, amount and date of the first record named
// matchName. The row keeps its position. It returns the number of rows
// affected; a *NotFoundError accompanies 0.
func (s *Store) Update(matchName, category string, amount decimal.Decimal, date time.Time) (int, error) {
	return s.updateFirst("name="+matchName, func(e model.Expense) bool {
		return e.Name == matchName
	}, category, amount, date)
}

// UpdateByID is Update keyed on the record's surrogate ID.
func (s *Store) UpdateByID(recordID, category string, amount decimal.Decimal, date time.Time) (int, error) {
	if err := checkID(recordID); err != nil {
		return 0, err
	}
	return s.updateFirst("id="+recordID, func(e model.Expense) bool {
		return e.ID == recordID
	}, category, amount, date)
}

func (s *Store) updateFirst(query string, match func(model.Expense) bool, category string, amount decimal.Decimal, date time.Time) (int, error) {
	rows, err := s.readRows()
	if err != nil {
		return 0, err
	}

	for i, r := range rows {
		if r.err != nil || !match(r.expense) {
			continue
		}
		updated := model.Expense{
			Name:     r.expense.Name,
			Category: category,
			Amount:   amount,
			Date:     date,
		}
		if err := updated.Validate(); err != nil {
			return 0, err
		}
		rows[i].fields = MarshalExpense(updated)
		rows[i].expense = updated
		if err := s.rewrite(rows); err != nil {
			return 0, err
		}
		s.logger.Debug("updated expense", "query", query, "line", r.line)
		return 1, nil
	}
	return 0, &NotFoundError{Query: query}
}

// Delete removes every record matching all fields set on f and returns the
// count removed. An empty filter is rejected; a *NotFoundError accompanies 0.
func (s *Store) Delete(f model.Filter) (int, error) {
	if f.IsEmpty() {
		return 0, &model.ValidationError{Field: "filter", Reason: "at least one of name, category or date is required"}
	}
	return s.deleteWhere(f.String(), f.Match)
}

// DeleteByID removes the record with the given surrogate ID.
func (s *Store) DeleteByID(recordID string) (int, error) {
	if err := checkID(recordID); err != nil {
		return 0, err
	}
	return s.deleteWhere("id="+recordID, func(e model.Expense) bool {
		return e.ID == recordID
	})
}

func (s *Store) deleteWhere(query string, match func(model.Expense) bool) (int, error) {
	rows, err := s.readRows()
	if err != nil {
		return 0, err
	}

	kept := rows[:0:0]
	for _, r := range rows {
		if r.err == nil && match(r.expense) {
			continue
		}
		kept = append(kept, r)
	}

	removed := len(rows) - len(kept)
	if removed == 0 {
		return 0, &NotFoundError{Query: query}
	}
	if err := s.rewrite(kept); err != nil {
		return 0, err
	}
	s.logger.Debug("deleted expenses", "query", query, "removed", removed)
	return removed, nil
}

func checkID(recordID string) error {
	if _, _, err := id.ParseRecordID(recordID); err != nil {
		return &model.ValidationError{Field: "id", Reason: err.Error()}
	}
	return nil
}

// readRows loads every data row for a rewrite. Rows that are not valid CSV
// cannot be reproduced verbatim, so their presence blocks mutation.
func (s *Store) readRows() ([]row, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", s.path, err)
	}
	defer f.Close()

	var rows []row
	rr := newRowReader(s.path, f)
	for {
		r, err := rr.next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		if r.fields == nil {
			return nil, fmt.Errorf("refusing to rewrite ledger: %w", r.err)
		}
		rows = append(rows, r)
	}
}

// rewrite replaces the ledger with header + rows via temp file and rename.
func (s *Store) rewrite(rows []row) (err error) {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	preserved := 0
	records := make([][]string, 0, len(rows)+1)
	records = append(records, headerFields)
	for _, r := range rows {
		if r.err != nil {
			preserved++
		}
		records = append(records, r.fields)
	}
	if err = writeRecords(tmp, records); err != nil {
		return fmt.Errorf("writing temp ledger: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp ledger: %w", err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp ledger: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp ledger: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing ledger: %w", err)
	}

	if preserved > 0 {
		s.logger.Warn("kept malformed rows verbatim", "path", s.path, "rows", preserved)
	}
	s.logger.Debug("rewrote ledger", "path", s.path, "rows", len(rows))
	return nil
}
