// Package store defines the hierarchical numeric store the ETAD core reads
// burst grids from, mirroring the group/variable/attribute layout of the
// product measurement file. It ships an in-memory implementation and a JSON
// loader; other backends only need to satisfy the Group interface.
package store

import "errors"

var (
	// ErrGroupNotFound is returned when a named child group does not exist.
	ErrGroupNotFound = errors.New("group not found")

	// ErrVariableNotFound is returned when a named variable does not exist.
	ErrVariableNotFound = errors.New("variable not found")

	// ErrAttributeNotFound is returned when a named attribute does not exist
	// or has an incompatible type.
	ErrAttributeNotFound = errors.New("attribute not found")
)

// Array is a numeric array read from the store. Data is laid out with the
// first dimension outermost. ETAD burst variables are stored range-major,
// i.e. 2-D variables have shape (samples, lines).
type Array struct {
	Dims []int
	Data []float64
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.Dims) }

// Size returns the total number of elements.
func (a *Array) Size() int {
	n := 1
	for _, d := range a.Dims {
		n *= d
	}
	return n
}

// Group is one node of the hierarchical store. Implementations are read-only
// apart from the auto-mask mode, which is mutable shared state: callers must
// not interleave SetAutoMask and Variable calls on the same handle from
// multiple goroutines without external synchronization.
type Group interface {
	// Name returns the group name ("" for the root).
	Name() string

	// Groups lists the child group names in a stable order.
	Groups() []string

	// Group returns the named child group.
	Group(name string) (Group, error)

	// Variables lists the variable names in a stable order.
	Variables() []string

	// Variable reads the named variable. When the auto-mask mode is
	// enabled, values equal to the variable's fill value are returned as
	// NaN. The returned array does not alias store memory.
	Variable(name string) (*Array, error)

	// FloatAttr returns a scalar numeric attribute.
	FloatAttr(name string) (float64, error)

	// IntAttr returns a scalar integer attribute.
	IntAttr(name string) (int, error)

	// StringAttr returns a scalar string attribute.
	StringAttr(name string) (string, error)

	// SetAutoMask toggles fill-value masking for subsequent variable reads
	// from this group and its descendants.
	SetAutoMask(enabled bool)
}
