// Package report builds single-month and month-over-month summaries from
// a ledger.
package report

import (
	"errors"
	"iter"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/aggregate"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

// Source yields ledger records. *ledger.Store satisfies it.
type Source interface {
	Scan(f model.Filter) iter.Seq2[model.Expense, error]
}

// CategoryTotal is one line of a monthly summary.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// MonthlyReport summarizes a single month.
type MonthlyReport struct {
	Period     model.Period
	Categories []CategoryTotal // ordered by category name
	Total      decimal.Decimal
	Skipped    []*ledger.ParseError
}

// ByCategory returns the per-category totals as a map, the form consumed
// by chart renderers.
func (r *MonthlyReport) ByCategory() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(r.Categories))
	for _, c := range r.Categories {
		out[c.Category] = c.Amount
	}
	return out
}

// Monthly totals spending per category for p.
func Monthly(src Source, p model.Period) (*MonthlyReport, error) {
	records, skipped, err := collectPeriods(src, p)
	if err != nil {
		return nil, err
	}

	byCat := aggregate.ByCategory(records)
	rep := &MonthlyReport{
		Period:  p,
		Total:   aggregate.Sum(byCat),
		Skipped: skipped,
	}
	for _, name := range sortedKeys(byCat) {
		rep.Categories = append(rep.Categories, CategoryTotal{Category: name, Amount: byCat[name]})
	}
	return rep, nil
}

// ComparisonRow holds one category's totals in both periods.
type ComparisonRow struct {
	Category string
	First    decimal.Decimal
	Second   decimal.Decimal
}

// Delta is Second minus First.
func (r ComparisonRow) Delta() decimal.Decimal {
	return r.Second.Sub(r.First)
}

// Comparison contrasts two months category by category.
type Comparison struct {
	First   model.Period
	Second  model.Period
	Rows    []ComparisonRow // union of both months' categories, by name
	Skipped []*ledger.ParseError
}

// Totals returns the overall sums for the first and second period.
func (c *Comparison) Totals() (first, second decimal.Decimal) {
	first, second = decimal.Zero, decimal.Zero
	for _, r := range c.Rows {
		first = first.Add(r.First)
		second = second.Add(r.Second)
	}
	return first, second
}

// Comparative reports per-category totals for first and second side by
// side. A category seen in only one period shows zero for the other.
func Comparative(src Source, first, second model.Period) (*Comparison, error) {
	records, skipped, err := collectPeriods(src, first, second)
	if err != nil {
		return nil, err
	}

	a := aggregate.ByCategory(aggregate.FilterByPeriod(records, first))
	b := aggregate.ByCategory(aggregate.FilterByPeriod(records, second))

	union := make(map[string]decimal.Decimal, len(a)+len(b))
	for k := range a {
		union[k] = decimal.Zero
	}
	for k := range b {
		union[k] = decimal.Zero
	}

	cmp := &Comparison{First: first, Second: second, Skipped: skipped}
	for _, name := range sortedKeys(union) {
		row := ComparisonRow{Category: name, First: decimal.Zero, Second: decimal.Zero}
		if v, ok := a[name]; ok {
			row.First = v
		}
		if v, ok := b[name]; ok {
			row.Second = v
		}
		cmp.Rows = append(cmp.Rows, row)
	}
	return cmp, nil
}

// collectPeriods drains one scan and keeps the records that fall in any of
// periods. Row parse errors are returned separately.
func collectPeriods(src Source, periods ...model.Period) ([]model.Expense, []*ledger.ParseError, error) {
	var (
		records []model.Expense
		skipped []*ledger.ParseError
	)
	for e, err := range src.Scan(model.Filter{}) {
		var perr *ledger.ParseError
		if errors.As(err, &perr) {
			skipped = append(skipped, perr)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		if slices.ContainsFunc(periods, func(p model.Period) bool { return p.Contains(e.Date) }) {
			records = append(records, e)
		}
	}
	return records, skipped, nil
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, strings.Compare)
	return keys
}
