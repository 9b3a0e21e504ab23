// Package aggregate groups expense records by category and by month.
//
// Every function is pure: it reads the slice it is given and allocates its
// result. Sums use exact decimal arithmetic, so grouping order never
// changes a total.
package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// ByCategory sums amounts per category. Only categories present in
// records appear in the result.
func ByCategory(records []model.Expense) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, r := range records {
		out[r.Category] = out[r.Category].Add(r.Amount)
	}
	return out
}

// ByMonth sums amounts per calendar month.
func ByMonth(records []model.Expense) map[model.Period]decimal.Decimal {
	out := make(map[model.Period]decimal.Decimal)
	for _, r := range records {
		p := r.Period()
		out[p] = out[p].Add(r.Amount)
	}
	return out
}

// FilterByPeriod returns the records dated within p, in input order.
func FilterByPeriod(records []model.Expense, p model.Period) []model.Expense {
	var out []model.Expense
	for _, r := range records {
		if p.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// Total sums every amount in records.
func Total(records []model.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(r.Amount)
	}
	return sum
}

// Sum adds the values of a grouping.
func Sum[K comparable](groups map[K]decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range groups {
		sum = sum.Add(v)
	}
	return sum
}
