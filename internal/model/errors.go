package model

import (
	"errors"
	"fmt"
	"strings"
)

// Fatal model errors. Dimensional and structural problems indicate a
// broken model and surface loudly; MissingVariable is recovered locally
// by the structural analyzer.
var (
	// ErrUnitMismatch indicates a computed value does not match its
	// entity's declared unit, or a duration/timestep dimension mismatch.
	ErrUnitMismatch = errors.New("model: unit mismatch")

	// ErrCyclicDependency indicates a cycle among auxiliary declarations.
	ErrCyclicDependency = errors.New("model: cyclic auxiliary dependency")

	// ErrMissingVariable indicates a named lookup into system state failed.
	ErrMissingVariable = errors.New("model: missing variable")

	// ErrDuplicateName indicates two entities of the same kind share a name.
	ErrDuplicateName = errors.New("model: duplicate entity name")

	// ErrUnknownStock indicates a flow references a stock that does not exist.
	ErrUnknownStock = errors.New("model: flow references unknown stock")
)

// UnitError wraps a dimensional failure with the entity it occurred on.
type UnitError struct {
	Entity string
	Err    error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%q: %v", e.Entity, e.Err)
}

func (e *UnitError) Unwrap() error { return ErrUnitMismatch }

// CycleError reports every auxiliary cycle that blocks evaluation ordering.
type CycleError struct {
	Cycles [][]string
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		parts[i] = strings.Join(append(append([]string(nil), c...), c[0]), " -> ")
	}
	return fmt.Sprintf("cyclic dependency among auxiliaries: %s", strings.Join(parts, "; "))
}

func (e *CycleError) Unwrap() error { return ErrCyclicDependency }

// MissingError lists names a calculation looked up but the system lacks.
type MissingError struct {
	Entity string
	Names  []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%q read undeclared variables: %s", e.Entity, strings.Join(e.Names, ", "))
}

func (e *MissingError) Unwrap() error { return ErrMissingVariable }
