package etad

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rkm/s1etad/internal/store"
	"github.com/rkm/s1etad/pkg/geojson"
)

// Swath owns the bursts of one sub-swath and implements the deburst merge.
// Swaths are created through Product indexing and cached there.
type Swath struct {
	group     store.Group
	id        string
	azSpacing float64 // azimuth pixel spacing in meters, from the product grid

	mu     sync.Mutex
	bursts map[int]*Burst
}

func newSwath(g store.Group, azSpacingMeters float64) (*Swath, error) {
	id, err := g.StringAttr("swathID")
	if err != nil {
		return nil, fmt.Errorf("swath group %s: %w", g.Name(), err)
	}
	return &Swath{
		group:     g,
		id:        id,
		azSpacing: azSpacingMeters,
		bursts:    make(map[int]*Burst),
	}, nil
}

// ID returns the swath identifier (e.g. "IW1").
func (s *Swath) ID() string { return s.id }

// NumBursts returns the number of bursts in the swath.
func (s *Swath) NumBursts() int { return len(s.group.Groups()) }

// BurstIndexes returns the bIndex of every burst in the swath, ascending.
func (s *Swath) BurstIndexes() ([]int, error) {
	names := s.group.Groups()
	out := make([]int, 0, len(names))
	for _, name := range names {
		g, err := s.group.Group(name)
		if err != nil {
			return nil, err
		}
		idx, err := g.IntAttr("bIndex")
		if err != nil {
			return nil, fmt.Errorf("burst group %s: %w", name, err)
		}
		out = append(out, idx)
	}
	sort.Ints(out)
	return out, nil
}

// Burst returns the burst with the given bIndex. Repeated access with the
// same index returns the same accessor. Safe for concurrent use.
func (s *Swath) Burst(index int) (*Burst, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.bursts[index]; ok {
		return b, nil
	}

	name := fmt.Sprintf("Burst%04d", index)
	g, err := s.group.Group(name)
	if err != nil {
		return nil, fmt.Errorf("%w: bIndex %d in swath %s", ErrUnknownBurst, index, s.id)
	}

	b, err := newBurst(g, s.azSpacing)
	if err != nil {
		return nil, err
	}
	s.bursts[index] = b
	return b, nil
}

// Bursts returns the bursts with the given indexes, or every burst of the
// swath when indexes is nil.
func (s *Swath) Bursts(indexes []int) ([]*Burst, error) {
	if indexes == nil {
		var err error
		indexes, err = s.BurstIndexes()
		if err != nil {
			return nil, err
		}
	}

	out := make([]*Burst, 0, len(indexes))
	for _, idx := range indexes {
		b, err := s.Burst(idx)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Footprints returns the footprint polygon of the selected bursts (all
// bursts when indexes is nil).
func (s *Swath) Footprints(indexes []int) ([]*geojson.Geometry, error) {
	bursts, err := s.Bursts(indexes)
	if err != nil {
		return nil, err
	}

	out := make([]*geojson.Geometry, 0, len(bursts))
	for _, b := range bursts {
		fp, err := b.Footprint()
		if err != nil {
			return nil, fmt.Errorf("footprint of burst %d: %w", b.Index(), err)
		}
		out = append(out, fp)
	}
	return out, nil
}
