package etad

import (
	"fmt"
	"math"
	"sort"

	"github.com/rkm/s1etad/internal/grid"
)

// MergeOptions control a swath- or product-level merge.
type MergeOptions struct {
	// BurstIndexes selects the bursts to merge; nil selects every burst of
	// the swath. Indexes are sorted ascending before merging so the overlap
	// tie-break stays well-defined.
	BurstIndexes []int

	// Swaths selects the swaths for a product-level merge; nil selects
	// every swath of the product.
	Swaths []string

	// AzimuthTimeMin and AzimuthTimeMax override the merge window, in
	// seconds relative to the product temporal reference.
	AzimuthTimeMin *float64
	AzimuthTimeMax *float64

	// Meter converts correction values from seconds to meters.
	Meter bool
}

// MergedGrid is one debursted variable together with its georeferencing
// record.
type MergedGrid struct {
	Data                *grid.Raster  `json:"data"`
	FirstAzimuthTime    float64       `json:"first_azimuth_time"`
	FirstSlantRangeTime float64       `json:"first_slant_range_time"`
	Sampling            grid.Sampling `json:"sampling"`
}

// MergedCorrection is a merged correction raster: the correction grids per
// axis, the unconverted geolocation grids merged the same way, and the
// georeferencing record shared by all of them.
type MergedCorrection struct {
	Name                CorrectionKind `json:"name"`
	X                   *grid.Raster   `json:"x,omitempty"` // range-axis correction
	Y                   *grid.Raster   `json:"y,omitempty"` // azimuth-axis correction
	Lats                *grid.Raster   `json:"lats,omitempty"`
	Lons                *grid.Raster   `json:"lons,omitempty"`
	Unit                string         `json:"unit"`
	FirstAzimuthTime    float64        `json:"first_azimuth_time"`
	FirstSlantRangeTime float64        `json:"first_slant_range_time"`
	Sampling            grid.Sampling  `json:"sampling"`
}

// MergeCorrection builds the merged swath raster for one correction kind: every
// axis the kind stores is debursted independently, plus the lat/lon grids
// for georeferencing.
func (s *Swath) MergeCorrection(kind CorrectionKind, opts MergeOptions) (*MergedCorrection, error) {
	spec, ok := correctionTable[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCorrection, kind)
	}

	out := &MergedCorrection{Name: kind, Unit: grid.UnitSeconds}
	if opts.Meter {
		out.Unit = grid.UnitMeters
	}

	if spec.x != "" {
		mg, err := s.MergeVariable(spec.x, opts)
		if err != nil {
			return nil, err
		}
		out.X = mg.Data
		out.FirstAzimuthTime = mg.FirstAzimuthTime
		out.FirstSlantRangeTime = mg.FirstSlantRangeTime
		out.Sampling = mg.Sampling
	}
	if spec.y != "" {
		mg, err := s.MergeVariable(spec.y, opts)
		if err != nil {
			return nil, err
		}
		out.Y = mg.Data
		out.FirstAzimuthTime = mg.FirstAzimuthTime
		out.FirstSlantRangeTime = mg.FirstSlantRangeTime
		out.Sampling = mg.Sampling
	}

	// Geolocation grids merge without unit conversion.
	auxOpts := opts
	auxOpts.Meter = false
	lats, err := s.MergeVariable("lats", auxOpts)
	if err != nil {
		return nil, err
	}
	lons, err := s.MergeVariable("lons", auxOpts)
	if err != nil {
		return nil, err
	}
	out.Lats = lats.Data
	out.Lons = lons.Data

	return out, nil
}

// MergeVariable merges one stored variable of the swath into a single
// non-overlapping raster addressed by absolute line index.
//
// Bursts are processed in ascending bIndex order and each burst's rows
// overwrite whatever a previous burst wrote there, so in overlap regions
// the higher-index burst is authoritative.
func (s *Swath) MergeVariable(name string, opts MergeOptions) (*MergedGrid, error) {
	indexes := opts.BurstIndexes
	if indexes == nil {
		var err error
		indexes, err = s.BurstIndexes()
		if err != nil {
			return nil, err
		}
	}
	if len(indexes) == 0 {
		return nil, fmt.Errorf("%w: swath %s", ErrEmptySelection, s.id)
	}
	indexes = append([]int(nil), indexes...)
	sort.Ints(indexes)

	bursts := make([]*Burst, 0, len(indexes))
	for _, idx := range indexes {
		b, err := s.Burst(idx)
		if err != nil {
			return nil, err
		}
		bursts = append(bursts, b)
	}

	first := bursts[0]
	dt := first.Sampling().Y
	rangeStart := first.StartRangeTime()

	// Validate the sampling invariants before writing anything: the line
	// index arithmetic below assumes a uniform dt and an aligned range
	// origin across the whole selection.
	for _, b := range bursts[1:] {
		if b.Sampling().Y != dt {
			return nil, fmt.Errorf("%w: azimuth sampling changes along swath %s (burst %d has dt=%g, burst %d has dt=%g)",
				ErrInconsistentSampling, s.id, first.Index(), dt, b.Index(), b.Sampling().Y)
		}
		if b.StartRangeTime() != rangeStart {
			return nil, fmt.Errorf("%w: range start time changes along swath %s (burst %d has t0=%g, burst %d has t0=%g)",
				ErrInconsistentSampling, s.id, first.Index(), rangeStart, b.Index(), b.StartRangeTime())
		}
	}

	firstAz, firstRg, err := first.Grid()
	if err != nil {
		return nil, err
	}
	lastAz, _, err := bursts[len(bursts)-1].Grid()
	if err != nil {
		return nil, err
	}
	if len(firstAz) == 0 || len(lastAz) == 0 {
		return nil, fmt.Errorf("burst grid of swath %s is empty", s.id)
	}

	t0 := firstAz[0]
	if opts.AzimuthTimeMin != nil {
		t0 = *opts.AzimuthTimeMin
	}
	t1 := lastAz[len(lastAz)-1]
	if opts.AzimuthTimeMax != nil {
		t1 = *opts.AzimuthTimeMax
	}

	numLines := int(math.Round((t1-t0)/dt)) + 1
	numSamples := len(firstRg)
	if numLines < 1 {
		return nil, fmt.Errorf("invalid merge window for swath %s: [%g, %g]", s.id, t0, t1)
	}

	out := grid.New(numLines, numSamples)
	for _, b := range bursts {
		az, _, err := b.Grid()
		if err != nil {
			return nil, err
		}
		field, err := b.param(name, true, opts.Meter)
		if err != nil {
			return nil, err
		}
		if field.Rows != len(az) || field.Cols != numSamples {
			return nil, fmt.Errorf("variable %q of burst %d has shape %dx%d, expected %dx%d",
				name, b.Index(), field.Rows, field.Cols, len(az), numSamples)
		}

		for row, t := range az {
			line := int(math.Round((t - t0) / dt))
			if line < 0 || line >= numLines {
				// Rows outside an overridden merge window are dropped.
				continue
			}
			out.SetRow(line, field.Row(row))
		}
	}

	return &MergedGrid{
		Data:                out,
		FirstAzimuthTime:    t0,
		FirstSlantRangeTime: rangeStart,
		Sampling:            first.Sampling(),
	}, nil
}
