package etad

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rkm/s1etad/internal/annot"
	"github.com/rkm/s1etad/internal/grid"
	"github.com/rkm/s1etad/internal/store"
	"github.com/rkm/s1etad/pkg/geojson"
)

// ProcessingSettings reports which corrections the processor computed.
// A disabled correction is stored as an all-zero grid in the product.
type ProcessingSettings struct {
	TroposphericDelay bool `json:"troposphericDelayCorrection"`
	IonosphericDelay  bool `json:"ionosphericDelayCorrection"`
	SolidEarthTide    bool `json:"solidEarthTideCorrection"`
	BistaticAzimuth   bool `json:"bistaticAzimuthCorrection"`
	DopplerShiftRange bool `json:"dopplerShiftRangeCorrection"`
	FMMismatchAzimuth bool `json:"fmMismatchAzimuthCorrection"`
}

// Product is the top of the ETAD hierarchy: it pairs the annotation
// document with the measurement store and owns the burst catalogue.
type Product struct {
	path string
	doc  annot.Doc
	root store.Group

	azSpacing float64
	catalogue *Catalogue

	mu     sync.Mutex
	swaths map[string]*Swath
}

// NewProduct assembles a product from its annotation document and
// measurement store. The burst catalogue is built eagerly so malformed
// metadata fails here rather than on first query.
func NewProduct(path string, doc annot.Doc, root store.Group) (*Product, error) {
	azSpacing, err := doc.Lookup(".//correctionGridAzimuthSampling").Float()
	if err != nil {
		return nil, fmt.Errorf("%w: azimuth grid spacing: %v", ErrMalformedMetadata, err)
	}

	cat, err := buildCatalogue(doc)
	if err != nil {
		return nil, err
	}

	return &Product{
		path:      path,
		doc:       doc,
		root:      root,
		azSpacing: azSpacing,
		catalogue: cat,
		swaths:    make(map[string]*Swath),
	}, nil
}

// Path returns the product directory.
func (p *Product) Path() string { return p.path }

// Catalogue returns the full burst catalogue.
func (p *Product) Catalogue() *Catalogue { return p.catalogue }

// QueryBurst filters the catalogue.
func (p *Product) QueryBurst(q Query) (*Catalogue, error) {
	return p.catalogue.Select(q)
}

// SwathIDs returns the swath identifiers stored in the product, sorted.
func (p *Product) SwathIDs() []string {
	ids := append([]string(nil), p.root.Groups()...)
	sort.Strings(ids)
	return ids
}

// NumSwaths returns the number of swaths stored in the product.
func (p *Product) NumSwaths() int { return len(p.root.Groups()) }

// Swath returns the named swath. Instances are memoized, so repeated
// calls with the same identifier return the same *Swath. Safe for
// concurrent use.
func (p *Product) Swath(id string) (*Swath, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.swaths[id]; ok {
		return s, nil
	}

	g, err := p.root.Group(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownSwath, id, p.SwathIDs())
	}
	s, err := newSwath(g, p.azSpacing)
	if err != nil {
		return nil, err
	}
	p.swaths[id] = s
	return s, nil
}

// IterSwaths returns the swaths named by a catalogue selection, in the
// selection's first-encountered order. A nil selection yields every swath.
func (p *Product) IterSwaths(selection *Catalogue) ([]*Swath, error) {
	var ids []string
	if selection == nil {
		ids = p.SwathIDs()
	} else {
		ids = selection.SwathIDs()
	}

	swaths := make([]*Swath, 0, len(ids))
	for _, id := range ids {
		s, err := p.Swath(id)
		if err != nil {
			return nil, err
		}
		swaths = append(swaths, s)
	}
	return swaths, nil
}

// GridSampling returns the correction grid sampling in seconds.
func (p *Product) GridSampling() (grid.Sampling, error) {
	x, err := p.doc.Lookup(".//productInformation/gridSampling/range").Float()
	if err != nil {
		return grid.Sampling{}, fmt.Errorf("%w: range grid sampling: %v", ErrMalformedMetadata, err)
	}
	y, err := p.doc.Lookup(".//productInformation/gridSampling/azimuth").Float()
	if err != nil {
		return grid.Sampling{}, fmt.Errorf("%w: azimuth grid sampling: %v", ErrMalformedMetadata, err)
	}
	return grid.Sampling{X: x, Y: y, Unit: grid.UnitSeconds}, nil
}

// GridSpacing returns the correction grid spacing in meters.
func (p *Product) GridSpacing() (grid.Sampling, error) {
	x, err := p.doc.Lookup(".//correctionGridRangeSampling").Float()
	if err != nil {
		return grid.Sampling{}, fmt.Errorf("%w: range grid spacing: %v", ErrMalformedMetadata, err)
	}
	y, err := p.doc.Lookup(".//correctionGridAzimuthSampling").Float()
	if err != nil {
		return grid.Sampling{}, fmt.Errorf("%w: azimuth grid spacing: %v", ErrMalformedMetadata, err)
	}
	return grid.Sampling{X: x, Y: y, Unit: grid.UnitMeters}, nil
}

// InputProducts returns the Sentinel-1 products the ETAD product was
// computed from.
func (p *Product) InputProducts() ([]string, error) {
	v := p.doc.Lookup("productComponents/inputProductList/inputProduct/productID")
	if v.Empty() {
		return nil, fmt.Errorf("%w: input product list is empty", ErrMalformedMetadata)
	}
	return v.Strings(), nil
}

// ProcessingSettings reads the processor switches from the annotation.
// Settings are read on each call rather than cached.
func (p *Product) ProcessingSettings() (*ProcessingSettings, error) {
	const root = "processingInformation/processor/setapConfigurationFile/processorSettings/"

	var ps ProcessingSettings
	for _, f := range []struct {
		name string
		dst  *bool
	}{
		{"troposphericDelayCorrection", &ps.TroposphericDelay},
		{"ionosphericDelayCorrection", &ps.IonosphericDelay},
		{"solidEarthTideCorrection", &ps.SolidEarthTide},
		{"bistaticAzimuthCorrection", &ps.BistaticAzimuth},
		{"dopplerShiftRangeCorrection", &ps.DopplerShiftRange},
		{"FMMismatchAzimuthCorrection", &ps.FMMismatchAzimuth},
	} {
		on, err := p.doc.Lookup(root + f.name).Bool()
		if err != nil {
			return nil, fmt.Errorf("%w: processor setting %s: %v", ErrMalformedMetadata, f.name, err)
		}
		*f.dst = on
	}
	return &ps, nil
}

// TimeExtent returns the product azimuth time window from the store root
// attributes.
func (p *Product) TimeExtent() (min, max time.Time, err error) {
	s, err := p.root.StringAttr("azimuthTimeMin")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	min, err = annot.ParseTime(s)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: azimuthTimeMin: %v", ErrMalformedMetadata, err)
	}
	s, err = p.root.StringAttr("azimuthTimeMax")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	max, err = annot.ParseTime(s)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: azimuthTimeMax: %v", ErrMalformedMetadata, err)
	}
	return min, max, nil
}

// RangeExtent returns the product slant range time window in seconds.
func (p *Product) RangeExtent() (min, max float64, err error) {
	min, err = p.root.FloatAttr("rangeTimeMin")
	if err != nil {
		return 0, 0, err
	}
	max, err = p.root.FloatAttr("rangeTimeMax")
	if err != nil {
		return 0, 0, err
	}
	return min, max, nil
}

// Footprints collects the burst footprints of the named swaths. A nil or
// empty list collects every swath.
func (p *Product) Footprints(swathIDs ...string) ([]*geojson.Geometry, error) {
	if len(swathIDs) == 0 {
		swathIDs = p.SwathIDs()
	}

	var polys []*geojson.Geometry
	for _, id := range swathIDs {
		s, err := p.Swath(id)
		if err != nil {
			return nil, err
		}
		fps, err := s.Footprints(nil)
		if err != nil {
			return nil, err
		}
		polys = append(polys, fps...)
	}
	return polys, nil
}

// MergeCorrection assembles the product-wide correction raster: each
// selected swath is merged independently and placed on a common canvas
// spanning the full product time and range extents. Where swaths overlap
// in range, later swaths overwrite earlier ones.
func (p *Product) MergeCorrection(kind CorrectionKind, opts MergeOptions) (*MergedCorrection, error) {
	spec, ok := correctionTable[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCorrection, kind)
	}

	sampling, err := p.GridSampling()
	if err != nil {
		return nil, err
	}
	tMin, tMax, err := p.TimeExtent()
	if err != nil {
		return nil, err
	}
	rMin, rMax, err := p.RangeExtent()
	if err != nil {
		return nil, err
	}

	numLines := int(math.Round(tMax.Sub(tMin).Seconds()/sampling.Y)) + 1
	numSamples := int(math.Round((rMax-rMin)/sampling.X)) + 1
	if numLines < 1 || numSamples < 1 {
		return nil, fmt.Errorf("%w: degenerate product extent (%d lines, %d samples)",
			ErrMalformedMetadata, numLines, numSamples)
	}

	swathIDs := opts.Swaths
	if swathIDs == nil {
		swathIDs = p.SwathIDs()
	}
	if len(swathIDs) == 0 {
		return nil, fmt.Errorf("%w: no swaths selected", ErrEmptySelection)
	}

	out := &MergedCorrection{
		Name:                kind,
		Unit:                grid.UnitSeconds,
		FirstAzimuthTime:    0,
		FirstSlantRangeTime: rMin,
		Sampling:            sampling,
	}
	if opts.Meter {
		out.Unit = grid.UnitMeters
	}
	if spec.x != "" {
		out.X = grid.New(numLines, numSamples)
	}
	if spec.y != "" {
		out.Y = grid.New(numLines, numSamples)
	}
	out.Lats = grid.New(numLines, numSamples)
	out.Lons = grid.New(numLines, numSamples)

	swathOpts := opts
	swathOpts.Swaths = nil

	for _, id := range swathIDs {
		s, err := p.Swath(id)
		if err != nil {
			return nil, err
		}
		mc, err := s.MergeCorrection(kind, swathOpts)
		if err != nil {
			return nil, err
		}

		lineOfs := int(math.Round(mc.FirstAzimuthTime / sampling.Y))
		sampleOfs := int(math.Round(mc.FirstSlantRangeTime / sampling.X))

		blit(out.X, mc.X, lineOfs, sampleOfs)
		blit(out.Y, mc.Y, lineOfs, sampleOfs)
		blit(out.Lats, mc.Lats, lineOfs, sampleOfs)
		blit(out.Lons, mc.Lons, lineOfs, sampleOfs)
	}

	return out, nil
}

// blit copies src onto dst at the given offset, clipping the parts that
// fall outside dst.
func blit(dst, src *grid.Raster, lineOfs, sampleOfs int) {
	if dst == nil || src == nil {
		return
	}
	for r := 0; r < src.Rows; r++ {
		dr := lineOfs + r
		if dr < 0 || dr >= dst.Rows {
			continue
		}
		for c := 0; c < src.Cols; c++ {
			dc := sampleOfs + c
			if dc < 0 || dc >= dst.Cols {
				continue
			}
			dst.Set(dr, dc, src.At(r, c))
		}
	}
}
