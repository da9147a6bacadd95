package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Structure errors
	ErrMalformedStructure = errors.New("malformed structure")
	ErrCyclicGraph        = errors.New("structure graph contains a cycle")

	// Estimation errors
	ErrMissingColumn = errors.New("missing sample column")
	ErrEmptyColumn   = errors.New("sample column has no usable rows")
	ErrNotTrained    = errors.New("no CPD estimated for variable")

	// Presentation errors
	ErrEmptyLayout     = errors.New("layout has no nodes")
	ErrUnsupportedRank = errors.New("CPD rank not supported for tabulation")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")
)

// Error constructors with context
func NewMalformedStructureError(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedStructure, reason)
}

func NewMissingColumnError(variable string) error {
	return fmt.Errorf("%w: %s", ErrMissingColumn, variable)
}

func NewEmptyColumnError(variable string) error {
	return fmt.Errorf("%w: %s", ErrEmptyColumn, variable)
}

func NewUnsupportedRankError(variable string, rank int) error {
	return fmt.Errorf("%w: %s has rank %d, at most 2 can be tabulated", ErrUnsupportedRank, variable, rank)
}

func NewInvalidInputError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Error checking helpers
func IsStructureError(err error) bool {
	return errors.Is(err, ErrMalformedStructure) ||
		errors.Is(err, ErrCyclicGraph)
}

func IsDataError(err error) bool {
	return errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrEmptyColumn)
}
