package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the on-disk and command-line date layout.
const DateFormat = "2006-01-02"

// Expense is one row in the ledger.
type Expense struct {
	ID       string // derived on scan, never persisted
	Name     string
	Category string
	Amount   decimal.Decimal
	Date     time.Time
}

// NewExpense builds an Expense from raw text fields, as typed by a user or
// returned by a receipt scanner.
func NewExpense(name, category, amount, date string) (Expense, error) {
	amt, err := ParseCents(amount)
	if err != nil {
		return Expense{}, err
	}
	d, err := ParseDate(date)
	if err != nil {
		return Expense{}, err
	}
	e := Expense{
		Name:     strings.TrimSpace(name),
		Category: strings.TrimSpace(category),
		Amount:   amt,
		Date:     d,
	}
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}
	return e, nil
}

// ParseAmount parses a non-negative decimal amount such as "12.50". Any
// precision is accepted, so ledgers written by other tools still load.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, invalid("amount", "must not be empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalidf("amount", "%q is not a number", s)
	}
	if err := validateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ParseCents is ParseAmount for typed input, which is limited to whole cents.
func ParseCents(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, invalidf("amount", "%s has more than 2 decimal places", d)
	}
	return d, nil
}

// FormatAmount renders an amount for the ledger file: two decimals, or
// every digit when the amount is finer than a cent.
func FormatAmount(d decimal.Decimal) string {
	if d.Equal(d.Round(2)) {
		return d.StringFixed(2)
	}
	return d.String()
}

// ParseDate parses a YYYY-MM-DD date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, invalidf("date", "%q is not a YYYY-MM-DD date", s)
	}
	return d, nil
}

// Validate checks the record-level rules shared by every entry path.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if err := validateAmount(e.Amount); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return invalid("date", "must be set")
	}
	return nil
}

func validateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return invalidf("amount", "%s is negative", d)
	}
	return nil
}

// DateString returns the record date in DateFormat.
func (e Expense) DateString() string {
	return e.Date.Format(DateFormat)
}

// Period returns the calendar month the expense falls in.
func (e Expense) Period() Period {
	return Period{Year: e.Date.Year(), Month: e.Date.Month()}
}

// Equal compares the persisted fields. ID is ignored.
func (e Expense) Equal(o Expense) bool {
	return e.Name == o.Name &&
		e.Category == o.Category &&
		e.Amount.Equal(o.Amount) &&
		e.DateString() == o.DateString()
}
