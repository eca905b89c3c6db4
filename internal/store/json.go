package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// jsonGroup mirrors the Memory layout for decoding measurement files.
type jsonGroup struct {
	Attributes map[string]any          `json:"attributes,omitempty"`
	Variables  map[string]jsonVariable `json:"variables,omitempty"`
	Groups     map[string]jsonGroup    `json:"groups,omitempty"`
}

type jsonVariable struct {
	Dims []int     `json:"dims"`
	Data []float64 `json:"data"`
	Fill *float64  `json:"fill,omitempty"`
}

// LoadJSON reads a hierarchical measurement file in the JSON layout produced
// by the product conversion tooling. Group and variable names are ordered
// lexicographically, which preserves the swath (IW1, IW2, ...) and burst
// (Burst0001, Burst0002, ...) ordering.
func LoadJSON(path string) (*Memory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read measurement file: %w", err)
	}

	var root jsonGroup
	if err := json.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("failed to parse measurement file %s: %w", path, err)
	}

	m := NewMemory("")
	if err := buildGroup(m, &root); err != nil {
		return nil, fmt.Errorf("invalid measurement file %s: %w", path, err)
	}
	return m, nil
}

func buildGroup(m *Memory, jg *jsonGroup) error {
	for name, value := range jg.Attributes {
		m.SetAttr(name, value)
	}

	for _, name := range sortedKeys(jg.Variables) {
		v := jg.Variables[name]
		var err error
		if v.Fill != nil {
			err = m.SetVariableFill(name, v.Dims, v.Data, *v.Fill)
		} else {
			err = m.SetVariable(name, v.Dims, v.Data)
		}
		if err != nil {
			return err
		}
	}

	for _, name := range sortedKeys(jg.Groups) {
		child := jg.Groups[name]
		if err := buildGroup(m.AddGroup(name), &child); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
