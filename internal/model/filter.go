package model

import (
	"strings"
	"time"
)

// Filter selects records by exact field values. Nil fields are
// unconstrained; set fields must all match.
type Filter struct {
	Name     *string
	Category *string
	Date     *time.Time
}

// ByName matches records with the given name.
func ByName(name string) Filter { return Filter{Name: &name} }

// ByCategory matches records in the given category.
func ByCategory(category string) Filter { return Filter{Category: &category} }

// ByDate matches records on the given calendar date.
func ByDate(date time.Time) Filter { return Filter{Date: &date} }

// And merges two filters. Fields set on o take precedence.
func (f Filter) And(o Filter) Filter {
	if o.Name != nil {
		f.Name = o.Name
	}
	if o.Category != nil {
		f.Category = o.Category
	}
	if o.Date != nil {
		f.Date = o.Date
	}
	return f
}

// IsEmpty reports whether no field is constrained.
func (f Filter) IsEmpty() bool {
	return f.Name == nil && f.Category == nil && f.Date == nil
}

// Match reports whether e satisfies every constrained field.
func (f Filter) Match(e Expense) bool {
	if f.Name != nil && e.Name != *f.Name {
		return false
	}
	if f.Category != nil && e.Category != *f.Category {
		return false
	}
	if f.Date != nil && e.DateString() != f.Date.Format(DateFormat) {
		return false
	}
	return true
}

func (f Filter) String() string {
	var parts []string
	if f.Name != nil {
		parts = append(parts, "name="+*f.Name)
	}
	if f.Category != nil {
		parts = append(parts, "category="+*f.Category)
	}
	if f.Date != nil {
		parts = append(parts, "date="+f.Date.Format(DateFormat))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ",")
}
