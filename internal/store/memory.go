package store

import (
	"fmt"
	"math"
)

// Memory is an in-memory Group implementation. It doubles as the builder for
// synthetic products in tests and as the target of the JSON loader.
type Memory struct {
	name     string
	groups   map[string]*Memory
	order    []string
	vars     map[string]*variable
	varOrder []string
	attrs    map[string]any
	autoMask bool
}

type variable struct {
	dims []int
	data []float64
	fill *float64
}

// NewMemory creates an empty group with the given name.
func NewMemory(name string) *Memory {
	return &Memory{
		name:   name,
		groups: make(map[string]*Memory),
		vars:   make(map[string]*variable),
		attrs:  make(map[string]any),
	}
}

// AddGroup creates (or returns an existing) child group.
func (m *Memory) AddGroup(name string) *Memory {
	if g, ok := m.groups[name]; ok {
		return g
	}
	g := NewMemory(name)
	m.groups[name] = g
	m.order = append(m.order, name)
	return g
}

// SetAttr stores a scalar attribute. Accepted types are string, bool, int
// and float64.
func (m *Memory) SetAttr(name string, value any) {
	m.attrs[name] = value
}

// SetVariable stores a variable without a fill value. The data slice is
// retained, not copied.
func (m *Memory) SetVariable(name string, dims []int, data []float64) error {
	return m.setVariable(name, dims, data, nil)
}

// SetVariableFill stores a variable with a fill value that auto-masked reads
// replace with NaN.
func (m *Memory) SetVariableFill(name string, dims []int, data []float64, fill float64) error {
	return m.setVariable(name, dims, data, &fill)
}

func (m *Memory) setVariable(name string, dims []int, data []float64, fill *float64) error {
	n := 1
	for _, d := range dims {
		n *= d
	}
	if n != len(data) {
		return fmt.Errorf("store: variable %q data length %d does not match dims %v", name, len(data), dims)
	}
	if _, ok := m.vars[name]; !ok {
		m.varOrder = append(m.varOrder, name)
	}
	m.vars[name] = &variable{dims: dims, data: data, fill: fill}
	return nil
}

// Name implements Group.
func (m *Memory) Name() string { return m.name }

// Groups implements Group. Child groups are listed in creation order.
func (m *Memory) Groups() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Group implements Group.
func (m *Memory) Group(name string) (Group, error) {
	g, ok := m.groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %q", ErrGroupNotFound, name, m.name)
	}
	return g, nil
}

// Variables implements Group.
func (m *Memory) Variables() []string {
	out := make([]string, len(m.varOrder))
	copy(out, m.varOrder)
	return out
}

// Variable implements Group.
func (m *Memory) Variable(name string) (*Array, error) {
	v, ok := m.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %q", ErrVariableNotFound, name, m.name)
	}

	data := make([]float64, len(v.data))
	copy(data, v.data)
	if m.autoMask && v.fill != nil {
		for i, x := range data {
			if x == *v.fill {
				data[i] = math.NaN()
			}
		}
	}

	dims := make([]int, len(v.dims))
	copy(dims, v.dims)
	return &Array{Dims: dims, Data: data}, nil
}

// FloatAttr implements Group.
func (m *Memory) FloatAttr(name string) (float64, error) {
	switch v := m.attrs[name].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: float attribute %q in %q", ErrAttributeNotFound, name, m.name)
	}
}

// IntAttr implements Group.
func (m *Memory) IntAttr(name string) (int, error) {
	switch v := m.attrs[name].(type) {
	case int:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: attribute %q in %q is not integral", ErrAttributeNotFound, name, m.name)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%w: int attribute %q in %q", ErrAttributeNotFound, name, m.name)
	}
}

// StringAttr implements Group.
func (m *Memory) StringAttr(name string) (string, error) {
	if v, ok := m.attrs[name].(string); ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: string attribute %q in %q", ErrAttributeNotFound, name, m.name)
}

// SetAutoMask implements Group. The mode propagates to descendants.
func (m *Memory) SetAutoMask(enabled bool) {
	m.autoMask = enabled
	for _, g := range m.groups {
		g.SetAutoMask(enabled)
	}
}
