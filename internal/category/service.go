// Package category holds the closed set of categories offered when an
// expense is entered by hand.
package category

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/cleared-dev/tally/internal/model"
)

// Service provides lookup over a fixed, ordered category list.
type Service struct {
	names  []string
	byFold map[string]string
	fold   cases.Caser
}

// NewService creates a Service from category names. Blank and duplicate
// (case-insensitive) names are dropped; order is preserved.
func NewService(names []string) *Service {
	s := &Service{byFold: make(map[string]string, len(names)), fold: cases.Fold()}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := s.fold.String(n)
		if _, dup := s.byFold[key]; dup {
			continue
		}
		s.byFold[key] = n
		s.names = append(s.names, n)
	}
	return s
}

// All returns the categories in menu order.
func (s *Service) All() []string {
	return slices.Clone(s.names)
}

// Exists reports whether name is in the set. The match is exact.
func (s *Service) Exists(name string) bool {
	return slices.Contains(s.names, name)
}

// Resolve maps user input to a canonical category name. Input may be a
// 1-based position in All() or a name in any letter case.
func (s *Service) Resolve(input string) (string, error) {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(s.names) {
			return "", &model.ValidationError{
				Field:  "category",
				Reason: "choice " + input + " is not between 1 and " + strconv.Itoa(len(s.names)),
			}
		}
		return s.names[n-1], nil
	}
	if name, ok := s.byFold[s.fold.String(input)]; ok {
		return name, nil
	}
	return "", &model.ValidationError{
		Field:  "category",
		Reason: strconv.Quote(input) + " is not one of " + strings.Join(s.names, ", "),
	}
}
