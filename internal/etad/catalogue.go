package etad

import (
	"fmt"
	"sort"
	"time"

	"github.com/rkm/s1etad/internal/annot"
	"github.com/rkm/s1etad/internal/s1name"
)

// Catalogue is the columnar burst index of a product: one row per burst,
// built once from the annotation and read-only afterwards. Rows are stored
// in annotation order; queries sort by AzimuthTimeMin on demand.
type Catalogue struct {
	PIndex         []int
	SIndex         []int
	BIndex         []int
	ProductID      []string
	SwathID        []string
	AzimuthTimeMin []time.Time
	AzimuthTimeMax []time.Time
}

// Query filters a catalogue. Zero-valued fields do not filter: the time
// window defaults to the full catalogue extent; ProductName matches every
// productID variant of the named S-1 product; Swaths restricts to the given
// identifiers.
type Query struct {
	FirstTime   *time.Time
	LastTime    *time.Time
	ProductName string
	Swaths      []string
}

// buildCatalogue scans every burst record in the annotation document.
func buildCatalogue(doc annot.Doc) (*Catalogue, error) {
	bursts := doc.Subtrees(".//etadBurst")

	cat := &Catalogue{
		PIndex:         make([]int, 0, len(bursts)),
		SIndex:         make([]int, 0, len(bursts)),
		BIndex:         make([]int, 0, len(bursts)),
		ProductID:      make([]string, 0, len(bursts)),
		SwathID:        make([]string, 0, len(bursts)),
		AzimuthTimeMin: make([]time.Time, 0, len(bursts)),
		AzimuthTimeMax: make([]time.Time, 0, len(bursts)),
	}

	for i, b := range bursts {
		pIndex, err := b.Lookup("burstData/@pIndex").Int()
		if err != nil {
			return nil, catalogueFieldErr(i, "pIndex", err)
		}
		sIndex, err := b.Lookup("burstData/@sIndex").Int()
		if err != nil {
			return nil, catalogueFieldErr(i, "sIndex", err)
		}
		bIndex, err := b.Lookup("burstData/@bIndex").Int()
		if err != nil {
			return nil, catalogueFieldErr(i, "bIndex", err)
		}
		productID, err := b.Lookup("burstData/productID").String()
		if err != nil {
			return nil, catalogueFieldErr(i, "productID", err)
		}
		swathID, err := b.Lookup("burstData/swathID").String()
		if err != nil {
			return nil, catalogueFieldErr(i, "swathID", err)
		}
		tMin, err := b.Lookup("burstCoverage/temporalCoverage/azimuthTimeMin").Time()
		if err != nil {
			return nil, catalogueFieldErr(i, "azimuthTimeMin", err)
		}
		tMax, err := b.Lookup("burstCoverage/temporalCoverage/azimuthTimeMax").Time()
		if err != nil {
			return nil, catalogueFieldErr(i, "azimuthTimeMax", err)
		}

		cat.PIndex = append(cat.PIndex, pIndex)
		cat.SIndex = append(cat.SIndex, sIndex)
		cat.BIndex = append(cat.BIndex, bIndex)
		cat.ProductID = append(cat.ProductID, productID)
		cat.SwathID = append(cat.SwathID, swathID)
		cat.AzimuthTimeMin = append(cat.AzimuthTimeMin, tMin)
		cat.AzimuthTimeMax = append(cat.AzimuthTimeMax, tMax)
	}

	if cat.Len() == 0 {
		return nil, fmt.Errorf("%w: no burst records found", ErrMalformedMetadata)
	}
	return cat, nil
}

func catalogueFieldErr(row int, field string, err error) error {
	return fmt.Errorf("%w: burst record %d, field %s: %v", ErrMalformedMetadata, row, field, err)
}

// Len returns the number of rows.
func (c *Catalogue) Len() int { return len(c.BIndex) }

// Select returns the rows matching the query, sorted by AzimuthTimeMin.
// An empty result is not an error.
func (c *Catalogue) Select(q Query) (*Catalogue, error) {
	// Sort rows by azimuth start time before windowing.
	order := make([]int, c.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return c.AzimuthTimeMin[order[a]].Before(c.AzimuthTimeMin[order[b]])
	})

	firstTime := q.FirstTime
	lastTime := q.LastTime
	if c.Len() > 0 {
		if firstTime == nil {
			firstTime = &c.AzimuthTimeMin[order[0]]
		}
		if lastTime == nil {
			t := c.AzimuthTimeMax[order[0]]
			for _, i := range order {
				if c.AzimuthTimeMax[i].After(t) {
					t = c.AzimuthTimeMax[i]
				}
			}
			lastTime = &t
		}
	}

	var productRe interface{ MatchString(string) bool }
	if q.ProductName != "" {
		re, err := s1name.AnnotationPattern(q.ProductName)
		if err != nil {
			return nil, err
		}
		productRe = re
	}

	var swathSet map[string]bool
	if len(q.Swaths) > 0 {
		swathSet = make(map[string]bool, len(q.Swaths))
		for _, s := range q.Swaths {
			swathSet[s] = true
		}
	}

	out := &Catalogue{}
	for _, i := range order {
		if c.AzimuthTimeMin[i].Before(*firstTime) || c.AzimuthTimeMax[i].After(*lastTime) {
			continue
		}
		if productRe != nil && !productRe.MatchString(c.ProductID[i]) {
			continue
		}
		if swathSet != nil && !swathSet[c.SwathID[i]] {
			continue
		}
		out.appendRow(c, i)
	}
	return out, nil
}

func (c *Catalogue) appendRow(src *Catalogue, i int) {
	c.PIndex = append(c.PIndex, src.PIndex[i])
	c.SIndex = append(c.SIndex, src.SIndex[i])
	c.BIndex = append(c.BIndex, src.BIndex[i])
	c.ProductID = append(c.ProductID, src.ProductID[i])
	c.SwathID = append(c.SwathID, src.SwathID[i])
	c.AzimuthTimeMin = append(c.AzimuthTimeMin, src.AzimuthTimeMin[i])
	c.AzimuthTimeMax = append(c.AzimuthTimeMax, src.AzimuthTimeMax[i])
}

// SwathIDs returns the distinct swath identifiers in first-encountered
// order.
func (c *Catalogue) SwathIDs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range c.SwathID {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// BurstIndexes returns the bIndex values of the rows belonging to the given
// swath, in row order.
func (c *Catalogue) BurstIndexes(swathID string) []int {
	var out []int
	for i, id := range c.SwathID {
		if id == swathID {
			out = append(out, c.BIndex[i])
		}
	}
	return out
}
