package etad

import (
	"fmt"
	"sync"

	"github.com/rkm/s1etad/internal/grid"
	"github.com/rkm/s1etad/internal/store"
	"github.com/rkm/s1etad/pkg/geojson"
)

// Burst provides access to one burst's stored grids and corrections.
// Bursts are created through Swath indexing and cached there; the identity
// attributes are read once at construction.
type Burst struct {
	group          store.Group
	readMu         sync.Mutex // serializes auto-mask toggling against reads
	swathID        string
	pIndex         int
	sIndex         int
	bIndex         int
	sampling       grid.Sampling
	startRangeTime float64 // gridStartRangeTime0, two-way seconds
	azSpacing      float64 // azimuth pixel spacing in meters
}

func newBurst(g store.Group, azSpacingMeters float64) (*Burst, error) {
	swathID, err := g.StringAttr("swathID")
	if err != nil {
		return nil, fmt.Errorf("burst group %s: %w", g.Name(), err)
	}
	pIndex, err := g.IntAttr("pIndex")
	if err != nil {
		return nil, fmt.Errorf("burst group %s: %w", g.Name(), err)
	}
	sIndex, err := g.IntAttr("sIndex")
	if err != nil {
		return nil, fmt.Errorf("burst group %s: %w", g.Name(), err)
	}
	bIndex, err := g.IntAttr("bIndex")
	if err != nil {
		return nil, fmt.Errorf("burst group %s: %w", g.Name(), err)
	}
	sx, err := g.FloatAttr("gridSamplingRange")
	if err != nil {
		return nil, fmt.Errorf("burst group %s: %w", g.Name(), err)
	}
	sy, err := g.FloatAttr("gridSamplingAzimuth")
	if err != nil {
		return nil, fmt.Errorf("burst group %s: %w", g.Name(), err)
	}
	t0, err := g.FloatAttr("gridStartRangeTime0")
	if err != nil {
		return nil, fmt.Errorf("burst group %s: %w", g.Name(), err)
	}

	return &Burst{
		group:          g,
		swathID:        swathID,
		pIndex:         pIndex,
		sIndex:         sIndex,
		bIndex:         bIndex,
		sampling:       grid.Sampling{X: sx, Y: sy, Unit: grid.UnitSeconds},
		startRangeTime: t0,
		azSpacing:      azSpacingMeters,
	}, nil
}

// SwathID returns the identifier of the swath the burst belongs to.
func (b *Burst) SwathID() string { return b.swathID }

// Index returns the burst index (bIndex), unique within the product.
func (b *Burst) Index() int { return b.bIndex }

// ProductIndex returns the pIndex of the S-1 product the burst comes from.
func (b *Burst) ProductIndex() int { return b.pIndex }

// SwathIndex returns the sIndex of the swath within the product.
func (b *Burst) SwathIndex() int { return b.sIndex }

// Sampling returns the per-burst grid sampling in seconds.
func (b *Burst) Sampling() grid.Sampling { return b.sampling }

// StartRangeTime returns the two-way range start time (gridStartRangeTime0).
// It is identical for every burst of a swath; the swath merger enforces
// this.
func (b *Burst) StartRangeTime() float64 { return b.startRangeTime }

// Grid returns the burst's native azimuth and range time axes in seconds,
// relative to the product temporal reference. No unit conversion is applied.
func (b *Burst) Grid() (azimuth, rng []float64, err error) {
	az, err := b.vector("azimuth", true)
	if err != nil {
		return nil, nil, err
	}
	rg, err := b.vector("range", true)
	if err != nil {
		return nil, nil, err
	}
	return az, rg, nil
}

// Shape returns the burst grid dimensions (lines x samples).
func (b *Burst) Shape() (lines, samples int, err error) {
	az, rg, err := b.Grid()
	if err != nil {
		return 0, 0, err
	}
	return len(az), len(rg), nil
}

// Correction retrieves one of the seven correction kinds for this burst.
// With meter set, range-axis grids are scaled by c/2 and azimuth-axis grids
// by the along-track spacing over the azimuth sampling.
func (b *Burst) Correction(kind CorrectionKind, meter bool) (*Correction, error) {
	spec, ok := correctionTable[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCorrection, kind)
	}

	out := &Correction{Name: kind, Unit: grid.UnitSeconds}
	if meter {
		out.Unit = grid.UnitMeters
	}

	var err error
	if spec.x != "" {
		out.X, err = b.param(spec.x, false, meter)
		if err != nil {
			return nil, err
		}
	}
	if spec.y != "" {
		out.Y, err = b.param(spec.y, false, meter)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Footprint returns the burst footprint as a closed polygon of
// (lon, lat, height) corners, traversed first-row/first-col,
// first-row/last-col, last-row/last-col, last-row/first-col.
func (b *Burst) Footprint() (*geojson.Geometry, error) {
	lats, lons, heights, err := b.LatLonHeight()
	if err != nil {
		return nil, err
	}

	lastRow, lastCol := lats.Rows-1, lats.Cols-1
	corners := [][2]int{{0, 0}, {0, lastCol}, {lastRow, lastCol}, {lastRow, 0}}

	ring := make([][]float64, 0, len(corners))
	for _, c := range corners {
		ring = append(ring, []float64{
			lons.At(c[0], c[1]),
			lats.At(c[0], c[1]),
			heights.At(c[0], c[1]),
		})
	}
	return geojson.NewPolygon(ring)
}

// LatLonHeight returns the full geolocation grids in row-major orientation.
// Masking is disabled so fill values surface instead of being dropped.
func (b *Burst) LatLonHeight() (lats, lons, heights *grid.Raster, err error) {
	lats, err = b.param("lats", false, false)
	if err != nil {
		return nil, nil, nil, err
	}
	lons, err = b.param("lons", false, false)
	if err != nil {
		return nil, nil, nil, err
	}
	heights, err = b.param("height", false, false)
	if err != nil {
		return nil, nil, nil, err
	}
	return lats, lons, heights, nil
}

// param reads a stored 2-D variable, transposes it to row-major
// (lines x samples), and optionally converts it to meters. The auto-mask
// mode is set immediately before the read; the store handle must not be
// shared with concurrent readers.
func (b *Burst) param(name string, autoMask, meter bool) (*grid.Raster, error) {
	b.readMu.Lock()
	defer b.readMu.Unlock()
	b.group.SetAutoMask(autoMask)

	arr, err := b.group.Variable(name)
	if err != nil {
		return nil, err
	}
	if arr.Rank() != 2 {
		return nil, fmt.Errorf("variable %q of burst %d: expected 2 dimensions, got %d", name, b.bIndex, arr.Rank())
	}

	// Stored orientation is range-major (samples x lines).
	native, err := grid.FromData(arr.Dims[0], arr.Dims[1], arr.Data)
	if err != nil {
		return nil, fmt.Errorf("variable %q of burst %d: %w", name, b.bIndex, err)
	}
	field := native.Transpose()

	if meter {
		field.Scale(meterFactor(name, b.azSpacing, b.sampling.Y))
	}
	return field, nil
}

// vector reads a stored 1-D variable.
func (b *Burst) vector(name string, autoMask bool) ([]float64, error) {
	b.readMu.Lock()
	defer b.readMu.Unlock()
	b.group.SetAutoMask(autoMask)

	arr, err := b.group.Variable(name)
	if err != nil {
		return nil, err
	}
	if arr.Rank() != 1 {
		return nil, fmt.Errorf("variable %q of burst %d: expected 1 dimension, got %d", name, b.bIndex, arr.Rank())
	}
	return arr.Data, nil
}
