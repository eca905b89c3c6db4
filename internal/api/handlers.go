package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rkm/s1etad/internal/annot"
	"github.com/rkm/s1etad/internal/config"
	"github.com/rkm/s1etad/internal/etad"
	"github.com/rkm/s1etad/pkg/geojson"
)

// ProductSource yields the currently loaded product. Implementations may
// swap the product at runtime (watch mode); handlers take one snapshot per
// request.
type ProductSource interface {
	Product() *etad.Product
}

// StaticProduct is a ProductSource that always serves the same product.
type StaticProduct struct {
	P *etad.Product
}

// Product implements ProductSource.
func (s StaticProduct) Product() *etad.Product { return s.P }

// Handlers contains all HTTP handlers for the catalogue API.
type Handlers struct {
	cfg    *config.Config
	source ProductSource
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(cfg *config.Config, source ProductSource, logger *slog.Logger) *Handlers {
	return &Handlers{
		cfg:    cfg,
		source: source,
		logger: logger,
	}
}

// Health returns the service health.
// GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"product": h.source.Product().Path(),
	})
}

// LandingPage returns the root catalog.
// GET /
func (h *Handlers) LandingPage(w http.ResponseWriter, r *http.Request) {
	baseURL := h.cfg.API.BaseURL

	catalog := newLandingCatalog(h.cfg)
	addCatalogLinks(catalog, baseURL)

	WriteJSON(w, http.StatusOK, catalog)
}

// ProductInfo returns the product-level metadata.
// GET /product
func (h *Handlers) ProductInfo(w http.ResponseWriter, r *http.Request) {
	p := h.source.Product()

	sampling, err := p.GridSampling()
	if err != nil {
		h.serveError(w, r, "grid sampling", err)
		return
	}
	spacing, err := p.GridSpacing()
	if err != nil {
		h.serveError(w, r, "grid spacing", err)
		return
	}
	inputs, err := p.InputProducts()
	if err != nil {
		h.serveError(w, r, "input products", err)
		return
	}
	settings, err := p.ProcessingSettings()
	if err != nil {
		h.serveError(w, r, "processing settings", err)
		return
	}
	tMin, tMax, err := p.TimeExtent()
	if err != nil {
		h.serveError(w, r, "time extent", err)
		return
	}
	rMin, rMax, err := p.RangeExtent()
	if err != nil {
		h.serveError(w, r, "range extent", err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"path":               p.Path(),
		"swaths":             p.SwathIDs(),
		"numBursts":          p.Catalogue().Len(),
		"gridSampling":       sampling,
		"gridSpacing":        spacing,
		"inputProducts":      inputs,
		"processingSettings": settings,
		"azimuthTimeMin":     tMin.Format(time.RFC3339Nano),
		"azimuthTimeMax":     tMax.Format(time.RFC3339Nano),
		"rangeTimeMin":       rMin,
		"rangeTimeMax":       rMax,
	})
}

// Bursts runs a catalogue query and returns the matching bursts as a STAC
// ItemCollection.
// GET /bursts?start=&end=&swath=&product=
func (h *Handlers) Bursts(w http.ResponseWriter, r *http.Request) {
	p := h.source.Product()

	query, err := parseBurstQuery(r)
	if err != nil {
		WriteInvalidParameter(w, err.Error())
		return
	}

	selection, err := p.QueryBurst(query)
	if err != nil {
		WriteInvalidParameter(w, fmt.Sprintf("invalid query: %v", err))
		return
	}

	ic, err := h.itemCollection(p, selection)
	if err != nil {
		h.serveError(w, r, "burst items", err)
		return
	}
	ic.AddLink("self", h.cfg.API.BaseURL+"/bursts", "application/geo+json")
	ic.AddLink("root", h.cfg.API.BaseURL+"/", "application/json")

	WriteGeoJSON(w, http.StatusOK, ic)
}

// Swaths lists the swaths of the product.
// GET /swaths
func (h *Handlers) Swaths(w http.ResponseWriter, r *http.Request) {
	p := h.source.Product()

	type swathInfo struct {
		ID           string `json:"id"`
		NumBursts    int    `json:"numBursts"`
		BurstIndexes []int  `json:"burstIndexes"`
	}

	out := make([]swathInfo, 0, p.NumSwaths())
	for _, id := range p.SwathIDs() {
		s, err := p.Swath(id)
		if err != nil {
			h.serveError(w, r, "swath", err)
			return
		}
		indexes, err := s.BurstIndexes()
		if err != nil {
			h.serveError(w, r, "burst indexes", err)
			return
		}
		out = append(out, swathInfo{ID: id, NumBursts: s.NumBursts(), BurstIndexes: indexes})
	}

	WriteJSON(w, http.StatusOK, map[string]any{"swaths": out})
}

// SwathDetail returns one swath.
// GET /swaths/{swathID}
func (h *Handlers) SwathDetail(w http.ResponseWriter, r *http.Request) {
	p := h.source.Product()

	s, ok := h.lookupSwath(w, p, chi.URLParam(r, "swathID"))
	if !ok {
		return
	}
	indexes, err := s.BurstIndexes()
	if err != nil {
		h.serveError(w, r, "burst indexes", err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"id":           s.ID(),
		"numBursts":    s.NumBursts(),
		"burstIndexes": indexes,
	})
}

// BurstDetail returns one burst with its footprint.
// GET /swaths/{swathID}/bursts/{bIndex}
func (h *Handlers) BurstDetail(w http.ResponseWriter, r *http.Request) {
	p := h.source.Product()

	b, ok := h.lookupBurst(w, p, chi.URLParam(r, "swathID"), chi.URLParam(r, "bIndex"))
	if !ok {
		return
	}

	lines, samples, err := b.Shape()
	if err != nil {
		h.serveError(w, r, "burst shape", err)
		return
	}
	fp, err := b.Footprint()
	if err != nil {
		h.serveError(w, r, "burst footprint", err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"swath":          b.SwathID(),
		"bIndex":         b.Index(),
		"pIndex":         b.ProductIndex(),
		"sIndex":         b.SwathIndex(),
		"lines":          lines,
		"samples":        samples,
		"sampling":       b.Sampling(),
		"startRangeTime": b.StartRangeTime(),
		"footprint":      fp,
	})
}

// BurstCorrection returns the correction grids of one burst.
// GET /swaths/{swathID}/bursts/{bIndex}/corrections/{name}?meter=
func (h *Handlers) BurstCorrection(w http.ResponseWriter, r *http.Request) {
	p := h.source.Product()

	b, ok := h.lookupBurst(w, p, chi.URLParam(r, "swathID"), chi.URLParam(r, "bIndex"))
	if !ok {
		return
	}
	kind, err := etad.ParseCorrectionKind(chi.URLParam(r, "name"))
	if err != nil {
		WriteInvalidParameter(w, err.Error())
		return
	}
	meter, err := parseBoolParam(r, "meter")
	if err != nil {
		WriteInvalidParameter(w, err.Error())
		return
	}

	c, err := b.Correction(kind, meter)
	if err != nil {
		h.serveError(w, r, "burst correction", err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"swath":      b.SwathID(),
		"bIndex":     b.Index(),
		"correction": c,
		"sampling":   b.Sampling(),
	})
}

// SwathMerge returns a merged correction raster for one swath.
// GET /swaths/{swathID}/merge/{name}?meter=&bursts=
func (h *Handlers) SwathMerge(w http.ResponseWriter, r *http.Request) {
	p := h.source.Product()

	s, ok := h.lookupSwath(w, p, chi.URLParam(r, "swathID"))
	if !ok {
		return
	}
	kind, opts, err := parseMergeParams(r)
	if err != nil {
		WriteInvalidParameter(w, err.Error())
		return
	}

	mc, err := s.MergeCorrection(kind, opts)
	if err != nil {
		h.serveMergeError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, mc)
}

// ProductMerge returns a merged correction raster across swaths.
// GET /merge/{name}?meter=&swath=
func (h *Handlers) ProductMerge(w http.ResponseWriter, r *http.Request) {
	p := h.source.Product()

	kind, opts, err := parseMergeParams(r)
	if err != nil {
		WriteInvalidParameter(w, err.Error())
		return
	}
	if v := r.URL.Query().Get("swath"); v != "" {
		opts.Swaths = strings.Split(v, ",")
	}

	mc, err := p.MergeCorrection(kind, opts)
	if err != nil {
		h.serveMergeError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, mc)
}

// Footprint returns the burst footprints as a GeoJSON FeatureCollection.
// GET /footprint?swath=
func (h *Handlers) Footprint(w http.ResponseWriter, r *http.Request) {
	p := h.source.Product()

	swathIDs := p.SwathIDs()
	if v := r.URL.Query().Get("swath"); v != "" {
		swathIDs = strings.Split(v, ",")
	}

	var features []*geojson.Feature
	for _, id := range swathIDs {
		s, err := p.Swath(id)
		if err != nil {
			if errors.Is(err, etad.ErrUnknownSwath) {
				WriteNotFound(w, err.Error())
				return
			}
			h.serveError(w, r, "swath", err)
			return
		}
		bursts, err := s.Bursts(nil)
		if err != nil {
			h.serveError(w, r, "bursts", err)
			return
		}
		for _, b := range bursts {
			fp, err := b.Footprint()
			if err != nil {
				h.serveError(w, r, "burst footprint", err)
				return
			}
			features = append(features, geojson.NewFeature(fp, map[string]any{
				"swath":  b.SwathID(),
				"bIndex": b.Index(),
			}))
		}
	}

	WriteGeoJSON(w, http.StatusOK, geojson.NewFeatureCollection(features))
}

// lookupSwath resolves a swath ID, writing a 404 on failure.
func (h *Handlers) lookupSwath(w http.ResponseWriter, p *etad.Product, id string) (*etad.Swath, bool) {
	s, err := p.Swath(id)
	if err != nil {
		if errors.Is(err, etad.ErrUnknownSwath) {
			WriteNotFound(w, err.Error())
		} else {
			WriteInternalError(w, "failed to load swath")
		}
		return nil, false
	}
	return s, true
}

// lookupBurst resolves a swath/burst pair, writing a 400 or 404 on failure.
func (h *Handlers) lookupBurst(w http.ResponseWriter, p *etad.Product, swathID, bIndex string) (*etad.Burst, bool) {
	s, ok := h.lookupSwath(w, p, swathID)
	if !ok {
		return nil, false
	}

	idx, err := strconv.Atoi(bIndex)
	if err != nil {
		WriteInvalidParameter(w, fmt.Sprintf("invalid burst index %q", bIndex))
		return nil, false
	}

	b, err := s.Burst(idx)
	if err != nil {
		if errors.Is(err, etad.ErrUnknownBurst) {
			WriteNotFound(w, err.Error())
		} else {
			WriteInternalError(w, "failed to load burst")
		}
		return nil, false
	}
	return b, true
}

func (h *Handlers) serveError(w http.ResponseWriter, r *http.Request, what string, err error) {
	h.logger.Error("request failed",
		slog.String("request_id", GetRequestID(r.Context())),
		slog.String("what", what),
		slog.String("error", err.Error()),
	)
	WriteInternalError(w, fmt.Sprintf("failed to read %s", what))
}

// serveMergeError maps merge failures onto HTTP statuses: selection
// problems are client errors, data problems are server errors.
func (h *Handlers) serveMergeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, etad.ErrUnknownSwath), errors.Is(err, etad.ErrUnknownBurst):
		WriteNotFound(w, err.Error())
	case errors.Is(err, etad.ErrUnknownCorrection), errors.Is(err, etad.ErrEmptySelection):
		WriteInvalidParameter(w, err.Error())
	default:
		h.serveError(w, r, "merged correction", err)
	}
}

// parseBurstQuery builds a catalogue query from request parameters.
func parseBurstQuery(r *http.Request) (etad.Query, error) {
	q := etad.Query{}
	params := r.URL.Query()

	if v := params.Get("start"); v != "" {
		t, err := annot.ParseTime(v)
		if err != nil {
			return q, fmt.Errorf("invalid start time: %v", err)
		}
		q.FirstTime = &t
	}
	if v := params.Get("end"); v != "" {
		t, err := annot.ParseTime(v)
		if err != nil {
			return q, fmt.Errorf("invalid end time: %v", err)
		}
		q.LastTime = &t
	}
	if v := params.Get("swath"); v != "" {
		q.Swaths = strings.Split(v, ",")
	}
	q.ProductName = params.Get("product")

	return q, nil
}

// parseMergeParams reads the correction name and shared merge options from
// the request.
func parseMergeParams(r *http.Request) (etad.CorrectionKind, etad.MergeOptions, error) {
	var opts etad.MergeOptions

	kind, err := etad.ParseCorrectionKind(chi.URLParam(r, "name"))
	if err != nil {
		return "", opts, err
	}

	opts.Meter, err = parseBoolParam(r, "meter")
	if err != nil {
		return "", opts, err
	}

	if v := r.URL.Query().Get("bursts"); v != "" {
		for _, part := range strings.Split(v, ",") {
			idx, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return "", opts, fmt.Errorf("invalid burst index %q", part)
			}
			opts.BurstIndexes = append(opts.BurstIndexes, idx)
		}
	}

	return kind, opts, nil
}

func parseBoolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s parameter %q", name, v)
	}
	return b, nil
}
