// Package etadtest builds a small synthetic ETAD product for tests: two
// swaths with overlapping bursts, deterministic correction values, and an
// annotation document matching the measurement store. The correction value
// of every cell encodes the burst it came from, so merge tests can tell
// which burst wrote a given line.
package etadtest

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rkm/s1etad/internal/annot"
	"github.com/rkm/s1etad/internal/store"
)

// Product geometry. Bursts are 8 lines by 6 samples; consecutive bursts of
// a swath start 5 lines apart, giving a 3-line overlap.
const (
	ProductID = "S1B_IW_SLC__1ADV_20250110T040000_20250110T040027_019964_025C12_5BB1"

	AzimuthSampling = 0.01  // seconds per line
	RangeSampling   = 0.001 // seconds per sample
	AzimuthSpacing  = 140.0 // meters per line
	RangeSpacing    = 5.0   // meters per sample

	LinesPerBurst   = 8
	SamplesPerBurst = 6

	RangeTimeMin = 0.0
	RangeTimeMax = 0.013
)

// RefTime is the product azimuth time origin: burst azimuth vectors are
// seconds relative to it.
var RefTime = time.Date(2025, 1, 10, 4, 0, 0, 0, time.UTC)

// BurstSpec describes one synthetic burst.
type BurstSpec struct {
	Swath        string
	SIndex       int
	BIndex       int
	StartAzimuth float64 // seconds relative to RefTime
	StartRange   float64 // swath range origin, seconds
}

var burstSpecs = []BurstSpec{
	{"IW1", 1, 1, 0.00, 0.005},
	{"IW1", 2, 2, 0.05, 0.005},
	{"IW1", 3, 3, 0.10, 0.005},
	{"IW2", 1, 4, 0.00, 0.008},
	{"IW2", 2, 5, 0.05, 0.008},
}

// Bursts returns the synthetic burst layout.
func Bursts() []BurstSpec {
	return append([]BurstSpec(nil), burstSpecs...)
}

var correctionVars = []string{
	"troposphericCorrectionRg",
	"ionosphericCorrectionRg",
	"geodeticCorrectionRg",
	"geodeticCorrectionAz",
	"bistaticCorrectionAz",
	"dopplerRangeShiftRg",
	"fmMismatchCorrectionAz",
	"sumOfCorrectionsRg",
	"sumOfCorrectionsAz",
}

// CorrectionValue returns the constant stored in every cell of the given
// correction variable of a burst. Azimuth variables carry an extra offset
// so the two axes of a correction are distinguishable.
func CorrectionValue(bIndex int, variable string) float64 {
	if strings.HasSuffix(variable, "Az") {
		return float64(bIndex) + 0.25
	}
	return float64(bIndex)
}

// Lat returns the latitude stored for an absolute grid line.
func Lat(line int) float64 { return 40.0 + 0.01*float64(line) }

// Lon returns the longitude stored for an absolute grid sample.
func Lon(sample int) float64 { return 10.0 + 0.01*float64(sample) }

// Height returns the constant height of a burst.
func Height(bIndex int) float64 { return 100.0 + float64(bIndex) }

// StartLine returns a burst's first absolute grid line.
func StartLine(b BurstSpec) int {
	return int(math.Round(b.StartAzimuth / AzimuthSampling))
}

// StartSample returns a burst's first absolute grid sample.
func StartSample(b BurstSpec) int {
	return int(math.Round(b.StartRange / RangeSampling))
}

// TimeAt returns RefTime shifted by the given number of seconds.
func TimeAt(seconds float64) time.Time {
	return RefTime.Add(time.Duration(math.Round(seconds*1e6)) * time.Microsecond)
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000000")
}

// Annotation returns the synthetic annotation document.
func Annotation() string {
	var b strings.Builder
	b.WriteString("<etadProduct>\n")

	b.WriteString("  <productComponents>\n    <inputProductList>\n")
	fmt.Fprintf(&b, "      <inputProduct><productID>%s</productID></inputProduct>\n", ProductID)
	b.WriteString("    </inputProductList>\n  </productComponents>\n")

	b.WriteString("  <processingInformation>\n    <processor>\n      <setapConfigurationFile>\n        <processorSettings>\n")
	for _, s := range []struct {
		name string
		on   bool
	}{
		{"troposphericDelayCorrection", true},
		{"ionosphericDelayCorrection", true},
		{"solidEarthTideCorrection", true},
		{"bistaticAzimuthCorrection", true},
		{"dopplerShiftRangeCorrection", false},
		{"FMMismatchAzimuthCorrection", true},
	} {
		fmt.Fprintf(&b, "          <%s>%t</%s>\n", s.name, s.on, s.name)
	}
	b.WriteString("        </processorSettings>\n      </setapConfigurationFile>\n    </processor>\n  </processingInformation>\n")

	b.WriteString("  <productInformation>\n")
	fmt.Fprintf(&b, "    <gridSampling><range>%g</range><azimuth>%g</azimuth></gridSampling>\n",
		RangeSampling, AzimuthSampling)
	fmt.Fprintf(&b, "    <correctionGridRangeSampling>%g</correctionGridRangeSampling>\n", RangeSpacing)
	fmt.Fprintf(&b, "    <correctionGridAzimuthSampling>%g</correctionGridAzimuthSampling>\n", AzimuthSpacing)
	b.WriteString("  </productInformation>\n")

	b.WriteString("  <etadBurstList>\n")
	for _, spec := range burstSpecs {
		b.WriteString("    <etadBurst>\n")
		fmt.Fprintf(&b, "      <burstData pIndex=\"1\" sIndex=\"%d\" bIndex=\"%d\">\n", spec.SIndex, spec.BIndex)
		fmt.Fprintf(&b, "        <productID>%s</productID>\n", ProductID)
		fmt.Fprintf(&b, "        <swathID>%s</swathID>\n", spec.Swath)
		b.WriteString("      </burstData>\n")
		b.WriteString("      <burstCoverage>\n        <temporalCoverage>\n")
		fmt.Fprintf(&b, "          <azimuthTimeMin>%s</azimuthTimeMin>\n", formatTime(TimeAt(spec.StartAzimuth)))
		fmt.Fprintf(&b, "          <azimuthTimeMax>%s</azimuthTimeMax>\n",
			formatTime(TimeAt(spec.StartAzimuth+float64(LinesPerBurst-1)*AzimuthSampling)))
		b.WriteString("        </temporalCoverage>\n      </burstCoverage>\n")
		b.WriteString("    </etadBurst>\n")
	}
	b.WriteString("  </etadBurstList>\n")

	b.WriteString("</etadProduct>\n")
	return b.String()
}

// Doc parses the synthetic annotation.
func Doc(t *testing.T) annot.Doc {
	t.Helper()
	doc, err := annot.ParseXML(strings.NewReader(Annotation()))
	if err != nil {
		t.Fatalf("parse synthetic annotation: %v", err)
	}
	return doc
}

// variable is the JSON layout of one stored array.
type variable struct {
	Dims []int     `json:"dims"`
	Data []float64 `json:"data"`
}

type group struct {
	Attributes map[string]any      `json:"attributes,omitempty"`
	Variables  map[string]variable `json:"variables,omitempty"`
	Groups     map[string]group    `json:"groups,omitempty"`
}

// Measurement returns the synthetic measurement store as a JSON document.
func Measurement() []byte {
	root := group{
		Attributes: map[string]any{
			"azimuthTimeMin": formatTime(RefTime),
			"azimuthTimeMax": formatTime(TimeAt(0.17)),
			"rangeTimeMin":   RangeTimeMin,
			"rangeTimeMax":   RangeTimeMax,
		},
		Groups: map[string]group{},
	}

	for _, spec := range burstSpecs {
		sg, ok := root.Groups[spec.Swath]
		if !ok {
			sg = group{
				Attributes: map[string]any{"swathID": spec.Swath},
				Groups:     map[string]group{},
			}
		}
		sg.Groups[fmt.Sprintf("Burst%04d", spec.BIndex)] = burstGroup(spec)
		root.Groups[spec.Swath] = sg
	}

	b, err := json.Marshal(root)
	if err != nil {
		panic(err)
	}
	return b
}

func burstGroup(spec BurstSpec) group {
	g := group{
		Attributes: map[string]any{
			"swathID":             spec.Swath,
			"pIndex":              1,
			"sIndex":              spec.SIndex,
			"bIndex":              spec.BIndex,
			"gridSamplingRange":   RangeSampling,
			"gridSamplingAzimuth": AzimuthSampling,
			"gridStartRangeTime0": spec.StartRange,
		},
		Variables: map[string]variable{},
	}

	azimuth := make([]float64, LinesPerBurst)
	for i := range azimuth {
		azimuth[i] = spec.StartAzimuth + float64(i)*AzimuthSampling
	}
	g.Variables["azimuth"] = variable{Dims: []int{LinesPerBurst}, Data: azimuth}

	rng := make([]float64, SamplesPerBurst)
	for j := range rng {
		rng[j] = spec.StartRange + float64(j)*RangeSampling
	}
	g.Variables["range"] = variable{Dims: []int{SamplesPerBurst}, Data: rng}

	// 2-D variables are stored range-major (samples x lines).
	grid2d := func(at func(line, sample int) float64) variable {
		data := make([]float64, SamplesPerBurst*LinesPerBurst)
		for s := 0; s < SamplesPerBurst; s++ {
			for l := 0; l < LinesPerBurst; l++ {
				data[s*LinesPerBurst+l] = at(l, s)
			}
		}
		return variable{Dims: []int{SamplesPerBurst, LinesPerBurst}, Data: data}
	}

	line0 := StartLine(spec)
	sample0 := StartSample(spec)
	g.Variables["lats"] = grid2d(func(l, s int) float64 { return Lat(line0 + l) })
	g.Variables["lons"] = grid2d(func(l, s int) float64 { return Lon(sample0 + s) })
	g.Variables["height"] = grid2d(func(l, s int) float64 { return Height(spec.BIndex) })

	for _, name := range correctionVars {
		v := CorrectionValue(spec.BIndex, name)
		g.Variables[name] = grid2d(func(l, s int) float64 { return v })
	}

	return g
}

// Store loads the synthetic measurement into a fresh in-memory store.
func Store(t *testing.T) *store.Memory {
	t.Helper()
	path := filepath.Join(t.TempDir(), "etad.json")
	if err := os.WriteFile(path, Measurement(), 0o644); err != nil {
		t.Fatalf("write synthetic measurement: %v", err)
	}
	m, err := store.LoadJSON(path)
	if err != nil {
		t.Fatalf("load synthetic measurement: %v", err)
	}
	return m
}

// WriteProduct lays out the synthetic product as a directory tree and
// returns its path.
func WriteProduct(t *testing.T, dir string) string {
	t.Helper()
	root := filepath.Join(dir, "S1B_IW_ETA__AXDV_20250110T040000_20250110T040027_019964_025C12_7F4E.SAFE")
	for _, sub := range []string{"annotation", "measurement"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			t.Fatalf("create product layout: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "annotation", "etad.xml"), []byte(Annotation()), 0o644); err != nil {
		t.Fatalf("write annotation: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "measurement", "etad.json"), Measurement(), 0o644); err != nil {
		t.Fatalf("write measurement: %v", err)
	}
	return root
}
