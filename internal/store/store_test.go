package store

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryGroups(t *testing.T) {
	root := NewMemory("")
	root.AddGroup("IW2")
	root.AddGroup("IW1")
	root.AddGroup("IW2") // duplicate add must be a no-op

	got := root.Groups()
	want := []string{"IW2", "IW1"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d groups, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Groups()[%d]: expected %s, got %s", i, want[i], got[i])
		}
	}

	if _, err := root.Group("IW3"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("Expected ErrGroupNotFound, got %v", err)
	}
}

func TestMemoryVariableAutoMask(t *testing.T) {
	root := NewMemory("")
	g := root.AddGroup("IW1")
	if err := g.SetVariableFill("lats", []int{2, 2}, []float64{1, -9999, 3, 4}, -9999); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Mask disabled: fill value comes through untouched.
	root.SetAutoMask(false)
	arr, err := g.Variable("lats")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if arr.Data[1] != -9999 {
		t.Errorf("Expected raw fill value, got %v", arr.Data[1])
	}

	// Mask enabled on the root propagates to the child group.
	root.SetAutoMask(true)
	arr, err = g.Variable("lats")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !math.IsNaN(arr.Data[1]) {
		t.Errorf("Expected NaN for fill value, got %v", arr.Data[1])
	}
	if arr.Data[0] != 1 || arr.Data[2] != 3 {
		t.Error("Non-fill values must not be masked")
	}
}

func TestMemoryVariableIsCopied(t *testing.T) {
	g := NewMemory("")
	if err := g.SetVariable("azimuth", []int{3}, []float64{1, 2, 3}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	arr, _ := g.Variable("azimuth")
	arr.Data[0] = 99

	again, _ := g.Variable("azimuth")
	if again.Data[0] != 1 {
		t.Error("Mutating a read result changed the stored variable")
	}
}

func TestMemoryVariableShapeMismatch(t *testing.T) {
	g := NewMemory("")
	if err := g.SetVariable("bad", []int{2, 3}, []float64{1, 2}); err == nil {
		t.Fatal("Expected error for mismatched dims, got nil")
	}
}

func TestMemoryAttrs(t *testing.T) {
	g := NewMemory("Burst0001")
	g.SetAttr("swathID", "IW1")
	g.SetAttr("bIndex", 4)
	g.SetAttr("gridSamplingAzimuth", 0.01)

	if s, err := g.StringAttr("swathID"); err != nil || s != "IW1" {
		t.Errorf("StringAttr: got (%q, %v)", s, err)
	}
	if i, err := g.IntAttr("bIndex"); err != nil || i != 4 {
		t.Errorf("IntAttr: got (%d, %v)", i, err)
	}
	if f, err := g.FloatAttr("gridSamplingAzimuth"); err != nil || f != 0.01 {
		t.Errorf("FloatAttr: got (%v, %v)", f, err)
	}
	// JSON numbers decode as float64; integral ones must still read as int.
	g.SetAttr("pIndex", 1.0)
	if i, err := g.IntAttr("pIndex"); err != nil || i != 1 {
		t.Errorf("IntAttr on float: got (%d, %v)", i, err)
	}
	if _, err := g.IntAttr("gridSamplingAzimuth"); err == nil {
		t.Error("Expected error for non-integral int attribute")
	}
	if _, err := g.StringAttr("missing"); !errors.Is(err, ErrAttributeNotFound) {
		t.Errorf("Expected ErrAttributeNotFound, got %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	doc := `{
		"attributes": {"rangeTimeMin": 0.005, "azimuthTimeMin": "2025-01-10T04:00:00.000000"},
		"groups": {
			"IW1": {
				"attributes": {"swathID": "IW1"},
				"groups": {
					"Burst0001": {
						"attributes": {"bIndex": 1},
						"variables": {
							"azimuth": {"dims": [3], "data": [0, 0.01, 0.02]},
							"lats": {"dims": [2, 3], "data": [1, 2, 3, 4, 5, -9999], "fill": -9999}
						}
					}
				}
			}
		}
	}`

	path := filepath.Join(t.TempDir(), "measurement.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	root, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if min, err := root.FloatAttr("rangeTimeMin"); err != nil || min != 0.005 {
		t.Errorf("rangeTimeMin: got (%v, %v)", min, err)
	}

	sw, err := root.Group("IW1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b, err := sw.Group("Burst0001")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	arr, err := b.Variable("lats")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if arr.Rank() != 2 || arr.Dims[0] != 2 || arr.Dims[1] != 3 {
		t.Errorf("Unexpected dims %v", arr.Dims)
	}

	root.SetAutoMask(true)
	arr, _ = b.Variable("lats")
	if !math.IsNaN(arr.Data[5]) {
		t.Error("Fill value from JSON must be masked to NaN")
	}
}

func TestLoadJSONMissingFile(t *testing.T) {
	if _, err := LoadJSON(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("Expected error for missing file, got nil")
	}
}
