package forecast

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is matched by *InsufficientDataError via errors.Is.
var ErrInsufficientData = errors.New("insufficient history")

// InsufficientDataError reports that too few months were observed to
// produce a projection.
type InsufficientDataError struct {
	Months int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("cannot forecast from %d month(s) of history", e.Months)
}

// Is reports ErrInsufficientData as a match.
func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }
