package units

import (
	"errors"
	"fmt"
)

// Domain errors for the dimensional-analysis layer.
var (
	// ErrDimensionMismatch indicates arithmetic between incompatible dimensions.
	ErrDimensionMismatch = errors.New("units: dimension mismatch")

	// ErrUnknownUnit indicates a unit symbol the registry has no definition for.
	ErrUnknownUnit = errors.New("units: unknown unit")

	// ErrBadUnitExpr indicates a unit expression that could not be parsed.
	ErrBadUnitExpr = errors.New("units: malformed unit expression")
)

// MismatchError carries both sides of a failed dimensional check.
type MismatchError struct {
	Op    string
	Left  Dimension
	Right Dimension
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("units: %s requires identical dimensions, got %s and %s",
		e.Op, e.Left, e.Right)
}

func (e *MismatchError) Unwrap() error { return ErrDimensionMismatch }
