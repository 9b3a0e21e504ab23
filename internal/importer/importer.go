// Package importer reads bank statement exports and turns their debits
// into ledger expenses.
package importer

import (
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// Transaction is one parsed statement row.
type Transaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = money out
	Type        string          // bank transaction type (ACH_DEBIT, etc.)
}

// Parser converts a bank CSV export into Transactions.
type Parser interface {
	Parse(r io.Reader) ([]Transaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists the registered format names.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		names = append(names, k)
	}
	return names
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	return r
}

// Expenses converts the money-out transactions to expenses in category.
// Credits and zero amounts are dropped.
func Expenses(txns []Transaction, category string) []model.Expense {
	var out []model.Expense
	for _, t := range txns {
		if !t.Amount.IsNegative() {
			continue
		}
		out = append(out, model.Expense{
			Name:     strings.TrimSpace(t.Description),
			Category: category,
			Amount:   t.Amount.Neg().Round(2),
			Date:     t.Date,
		})
	}
	return out
}

// Unseen returns the incoming expenses not already in existing. Each
// existing record absorbs at most one identical incoming one, so a
// statement imported twice adds nothing the second time while genuine
// same-day repeats within one statement are kept.
func Unseen(existing, incoming []model.Expense) []model.Expense {
	seen := make(map[string]int, len(existing))
	for _, e := range existing {
		seen[key(e)]++
	}
	var out []model.Expense
	for _, e := range incoming {
		k := key(e)
		if seen[k] > 0 {
			seen[k]--
			continue
		}
		out = append(out, e)
	}
	return out
}

func key(e model.Expense) string {
	return strings.Join([]string{e.Name, model.FormatAmount(e.Amount), e.Category, e.DateString()}, "\x1f")
}
