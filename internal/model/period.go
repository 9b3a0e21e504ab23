package model

import (
	"fmt"
	"time"
)

// Period is a single calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod validates month (1-12) and returns the Period.
func NewPeriod(year, month int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, invalidf("month", "%d is not in 1..12", month)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// ParsePeriod parses "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, invalidf("period", "%q is not a YYYY-MM month", s)
	}
	return NewPeriod(t.Year(), int(t.Month()))
}

// PeriodFromIndex is the inverse of Index.
func PeriodFromIndex(index int) Period {
	// Index is year*12 + month with month in 1..12, so shift to 0-based first.
	z := index - 1
	return Period{Year: z / 12, Month: time.Month(z%12 + 1)}
}

// Index maps the period onto an evenly spaced ordinal: year*12 + month.
func (p Period) Index() int {
	return p.Year*12 + int(p.Month)
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	return PeriodFromIndex(p.Index() + 1)
}

// Contains reports whether t falls within the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// DaysIn returns the number of days in the month.
func (p Period) DaysIn() int {
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Label returns a human-readable form such as "March 2024".
func (p Period) Label() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}
