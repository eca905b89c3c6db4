package etad_test

import (
	"errors"
	"testing"

	"github.com/rkm/s1etad/internal/etad"
	"github.com/rkm/s1etad/internal/etad/etadtest"
	"github.com/rkm/s1etad/internal/grid"
)

func floatPtr(v float64) *float64 { return &v }

// expectedLine returns the burst that owns a merged IW1 line: bursts write
// in ascending index order, so in overlap regions the later burst wins.
func expectedIW1Line(line int) int {
	switch {
	case line < 5:
		return 1
	case line < 10:
		return 2
	default:
		return 3
	}
}

func TestSwathMergeOverlap(t *testing.T) {
	p := newTestProduct(t)
	s, err := p.Swath("IW1")
	if err != nil {
		t.Fatalf("Swath(IW1): %v", err)
	}

	mc, err := s.MergeCorrection(etad.CorrectionSum, etad.MergeOptions{})
	if err != nil {
		t.Fatalf("MergeCorrection: %v", err)
	}

	if mc.Name != etad.CorrectionSum {
		t.Errorf("Name = %q, want sum", mc.Name)
	}
	if mc.Unit != grid.UnitSeconds {
		t.Errorf("Unit = %q, want %q", mc.Unit, grid.UnitSeconds)
	}
	if mc.FirstAzimuthTime != 0 {
		t.Errorf("FirstAzimuthTime = %g, want 0", mc.FirstAzimuthTime)
	}
	if mc.FirstSlantRangeTime != 0.005 {
		t.Errorf("FirstSlantRangeTime = %g, want 0.005", mc.FirstSlantRangeTime)
	}

	// Three 8-line bursts starting 5 lines apart span 18 lines.
	if mc.X.Rows != 18 || mc.X.Cols != etadtest.SamplesPerBurst {
		t.Fatalf("X shape = (%d, %d), want (18, %d)", mc.X.Rows, mc.X.Cols, etadtest.SamplesPerBurst)
	}

	for line := 0; line < mc.X.Rows; line++ {
		owner := expectedIW1Line(line)
		wantX := etadtest.CorrectionValue(owner, "sumOfCorrectionsRg")
		wantY := etadtest.CorrectionValue(owner, "sumOfCorrectionsAz")
		for col := 0; col < mc.X.Cols; col++ {
			if got := mc.X.At(line, col); got != wantX {
				t.Fatalf("X(%d, %d) = %g, want %g (burst %d)", line, col, got, wantX, owner)
			}
			if got := mc.Y.At(line, col); got != wantY {
				t.Fatalf("Y(%d, %d) = %g, want %g (burst %d)", line, col, got, wantY, owner)
			}
		}
	}

	// Geolocation grids merge alongside the corrections, never converted.
	for line := 0; line < mc.Lats.Rows; line++ {
		if got, want := mc.Lats.At(line, 0), etadtest.Lat(line); got != want {
			t.Fatalf("Lats(%d, 0) = %g, want %g", line, got, want)
		}
	}
	for col := 0; col < mc.Lons.Cols; col++ {
		if got, want := mc.Lons.At(0, col), etadtest.Lon(5+col); got != want {
			t.Fatalf("Lons(0, %d) = %g, want %g", col, got, want)
		}
	}
}

func TestSwathMergeSingleBurst(t *testing.T) {
	p := newTestProduct(t)
	s, err := p.Swath("IW1")
	if err != nil {
		t.Fatalf("Swath(IW1): %v", err)
	}

	mc, err := s.MergeCorrection(etad.CorrectionSum, etad.MergeOptions{BurstIndexes: []int{2}})
	if err != nil {
		t.Fatalf("MergeCorrection: %v", err)
	}

	if mc.X.Rows != etadtest.LinesPerBurst || mc.X.Cols != etadtest.SamplesPerBurst {
		t.Fatalf("X shape = (%d, %d), want (%d, %d)",
			mc.X.Rows, mc.X.Cols, etadtest.LinesPerBurst, etadtest.SamplesPerBurst)
	}
	if mc.FirstAzimuthTime != 0.05 {
		t.Errorf("FirstAzimuthTime = %g, want 0.05", mc.FirstAzimuthTime)
	}

	// A single-burst merge reproduces the burst correction exactly.
	b, err := s.Burst(2)
	if err != nil {
		t.Fatalf("Burst(2): %v", err)
	}
	c, err := b.Correction(etad.CorrectionSum, false)
	if err != nil {
		t.Fatalf("Correction(sum): %v", err)
	}
	if !mc.X.Equal(c.X) {
		t.Error("merged X differs from the burst correction")
	}
	if !mc.Y.Equal(c.Y) {
		t.Error("merged Y differs from the burst correction")
	}
}

func TestSwathMergeIdempotent(t *testing.T) {
	p := newTestProduct(t)
	s, err := p.Swath("IW1")
	if err != nil {
		t.Fatalf("Swath(IW1): %v", err)
	}

	first, err := s.MergeCorrection(etad.CorrectionSum, etad.MergeOptions{})
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	second, err := s.MergeCorrection(etad.CorrectionSum, etad.MergeOptions{})
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}

	if !first.X.Equal(second.X) || !first.Y.Equal(second.Y) {
		t.Error("repeated merges produced different rasters")
	}
	if first.FirstAzimuthTime != second.FirstAzimuthTime ||
		first.FirstSlantRangeTime != second.FirstSlantRangeTime {
		t.Error("repeated merges produced different georeferencing")
	}
}

func TestSwathMergeWindow(t *testing.T) {
	p := newTestProduct(t)
	s, err := p.Swath("IW1")
	if err != nil {
		t.Fatalf("Swath(IW1): %v", err)
	}

	mc, err := s.MergeCorrection(etad.CorrectionSum, etad.MergeOptions{
		AzimuthTimeMin: floatPtr(0.05),
		AzimuthTimeMax: floatPtr(0.12),
	})
	if err != nil {
		t.Fatalf("MergeCorrection: %v", err)
	}

	if mc.X.Rows != 8 {
		t.Fatalf("windowed merge has %d lines, want 8", mc.X.Rows)
	}
	if mc.FirstAzimuthTime != 0.05 {
		t.Errorf("FirstAzimuthTime = %g, want 0.05", mc.FirstAzimuthTime)
	}

	// Window lines 0-4 land in the burst 1/2 overlap and burst 2 body,
	// lines 5-7 in the burst 2/3 overlap where burst 3 wins. Burst rows
	// outside the window are dropped.
	for line := 0; line < mc.X.Rows; line++ {
		owner := 2
		if line >= 5 {
			owner = 3
		}
		if got, want := mc.X.At(line, 0), etadtest.CorrectionValue(owner, "sumOfCorrectionsRg"); got != want {
			t.Errorf("X(%d, 0) = %g, want %g (burst %d)", line, got, want, owner)
		}
	}
}

func TestSwathMergeEmptySelection(t *testing.T) {
	p := newTestProduct(t)
	s, err := p.Swath("IW1")
	if err != nil {
		t.Fatalf("Swath(IW1): %v", err)
	}

	_, err = s.MergeCorrection(etad.CorrectionSum, etad.MergeOptions{BurstIndexes: []int{}})
	if !errors.Is(err, etad.ErrEmptySelection) {
		t.Errorf("merge over zero bursts: err = %v, want ErrEmptySelection", err)
	}
}

func TestSwathMergeUnknownBurst(t *testing.T) {
	p := newTestProduct(t)
	s, err := p.Swath("IW1")
	if err != nil {
		t.Fatalf("Swath(IW1): %v", err)
	}

	_, err = s.MergeCorrection(etad.CorrectionSum, etad.MergeOptions{BurstIndexes: []int{1, 42}})
	if !errors.Is(err, etad.ErrUnknownBurst) {
		t.Errorf("merge with unknown burst: err = %v, want ErrUnknownBurst", err)
	}
}

func TestSwathMergeInconsistentSampling(t *testing.T) {
	t.Run("azimuth sampling changes", func(t *testing.T) {
		st := etadtest.Store(t)
		st.AddGroup("IW1").AddGroup("Burst0002").SetAttr("gridSamplingAzimuth", 0.02)

		p, err := etad.NewProduct("synthetic", etadtest.Doc(t), st)
		if err != nil {
			t.Fatalf("NewProduct: %v", err)
		}
		s, err := p.Swath("IW1")
		if err != nil {
			t.Fatalf("Swath(IW1): %v", err)
		}

		_, err = s.MergeCorrection(etad.CorrectionSum, etad.MergeOptions{})
		if !errors.Is(err, etad.ErrInconsistentSampling) {
			t.Errorf("err = %v, want ErrInconsistentSampling", err)
		}
	})

	t.Run("range origin changes", func(t *testing.T) {
		st := etadtest.Store(t)
		st.AddGroup("IW1").AddGroup("Burst0003").SetAttr("gridStartRangeTime0", 0.006)

		p, err := etad.NewProduct("synthetic", etadtest.Doc(t), st)
		if err != nil {
			t.Fatalf("NewProduct: %v", err)
		}
		s, err := p.Swath("IW1")
		if err != nil {
			t.Fatalf("Swath(IW1): %v", err)
		}

		_, err = s.MergeCorrection(etad.CorrectionSum, etad.MergeOptions{})
		if !errors.Is(err, etad.ErrInconsistentSampling) {
			t.Errorf("err = %v, want ErrInconsistentSampling", err)
		}
	})
}

func TestSwathMergeMeter(t *testing.T) {
	p := newTestProduct(t)
	s, err := p.Swath("IW2")
	if err != nil {
		t.Fatalf("Swath(IW2): %v", err)
	}

	mc, err := s.MergeCorrection(etad.CorrectionSum, etad.MergeOptions{Meter: true})
	if err != nil {
		t.Fatalf("MergeCorrection: %v", err)
	}
	if mc.Unit != grid.UnitMeters {
		t.Errorf("Unit = %q, want %q", mc.Unit, grid.UnitMeters)
	}

	wantX := etadtest.CorrectionValue(4, "sumOfCorrectionsRg") * (299792458.0 / 2)
	if got := mc.X.At(0, 0); got != wantX {
		t.Errorf("X(0, 0) = %g, want %g", got, wantX)
	}

	// Geolocation grids stay in degrees regardless of the meter flag.
	if got, want := mc.Lats.At(0, 0), etadtest.Lat(0); got != want {
		t.Errorf("Lats(0, 0) = %g, want %g", got, want)
	}
}

func TestProductMergeCanvas(t *testing.T) {
	p := newTestProduct(t)

	mc, err := p.MergeCorrection(etad.CorrectionSum, etad.MergeOptions{})
	if err != nil {
		t.Fatalf("MergeCorrection: %v", err)
	}

	// 0.17 s of azimuth at 0.01 s/line, 0.013 s of range at 0.001 s/sample.
	if mc.X.Rows != 18 || mc.X.Cols != 14 {
		t.Fatalf("canvas shape = (%d, %d), want (18, 14)", mc.X.Rows, mc.X.Cols)
	}
	if mc.FirstAzimuthTime != 0 {
		t.Errorf("FirstAzimuthTime = %g, want 0", mc.FirstAzimuthTime)
	}
	if mc.FirstSlantRangeTime != etadtest.RangeTimeMin {
		t.Errorf("FirstSlantRangeTime = %g, want %g", mc.FirstSlantRangeTime, etadtest.RangeTimeMin)
	}

	// IW1 occupies samples 5-10, IW2 samples 8-13 and overwrites the
	// overlap. IW2 spans only 13 lines, so lines 13-17 of the overlap keep
	// the IW1 values.
	checks := []struct {
		line, col int
		want      float64
	}{
		{0, 0, 0},   // outside both swaths
		{17, 4, 0},  // outside both swaths
		{0, 5, 1},   // IW1 only, burst 1
		{7, 7, 2},   // IW1 only, burst 2
		{17, 6, 3},  // IW1 only, burst 3
		{0, 9, 4},   // overlap, IW2 burst 4 wins
		{12, 8, 5},  // overlap, IW2 burst 5 wins
		{15, 9, 3},  // overlap beyond IW2, IW1 burst 3 kept
		{3, 13, 4},  // IW2 only, burst 4
		{10, 12, 5}, // IW2 only, burst 5
		{16, 13, 0}, // beyond IW2 in a column IW1 never covers
	}
	for _, c := range checks {
		if got := mc.X.At(c.line, c.col); got != c.want {
			t.Errorf("X(%d, %d) = %g, want %g", c.line, c.col, got, c.want)
		}
	}
}

func TestProductMergeSwathSelection(t *testing.T) {
	p := newTestProduct(t)

	mc, err := p.MergeCorrection(etad.CorrectionSum, etad.MergeOptions{Swaths: []string{"IW2"}})
	if err != nil {
		t.Fatalf("MergeCorrection: %v", err)
	}
	if got := mc.X.At(0, 5); got != 0 {
		t.Errorf("X(0, 5) = %g, want 0 (IW1 excluded)", got)
	}
	if got, want := mc.X.At(0, 9), etadtest.CorrectionValue(4, "sumOfCorrectionsRg"); got != want {
		t.Errorf("X(0, 9) = %g, want %g", got, want)
	}

	_, err = p.MergeCorrection(etad.CorrectionSum, etad.MergeOptions{Swaths: []string{}})
	if !errors.Is(err, etad.ErrEmptySelection) {
		t.Errorf("merge over zero swaths: err = %v, want ErrEmptySelection", err)
	}

	_, err = p.MergeCorrection(etad.CorrectionSum, etad.MergeOptions{Swaths: []string{"IW9"}})
	if !errors.Is(err, etad.ErrUnknownSwath) {
		t.Errorf("merge with unknown swath: err = %v, want ErrUnknownSwath", err)
	}
}
