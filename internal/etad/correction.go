package etad

import (
	"fmt"
	"strings"

	"github.com/rkm/s1etad/internal/grid"
)

// speedOfLight is the vacuum speed of light in m/s, used to convert two-way
// range delays to one-way distances.
const speedOfLight = 299792458.0

// CorrectionKind identifies one of the seven correction fields stored in an
// ETAD product.
type CorrectionKind string

const (
	CorrectionTropospheric CorrectionKind = "tropospheric"
	CorrectionIonospheric  CorrectionKind = "ionospheric"
	CorrectionGeodetic     CorrectionKind = "geodetic"
	CorrectionBistatic     CorrectionKind = "bistatic"
	CorrectionDoppler      CorrectionKind = "doppler"
	CorrectionFMRate       CorrectionKind = "fmrate"
	CorrectionSum          CorrectionKind = "sum"
)

// correctionSpec names the stored variable per axis. An empty name means the
// correction has no component on that axis.
type correctionSpec struct {
	x string // range-axis variable
	y string // azimuth-axis variable
}

// correctionTable is the closed mapping from correction kind to stored
// variables.
var correctionTable = map[CorrectionKind]correctionSpec{
	CorrectionTropospheric: {x: "troposphericCorrectionRg"},
	CorrectionIonospheric:  {x: "ionosphericCorrectionRg"},
	CorrectionGeodetic:     {x: "geodeticCorrectionRg", y: "geodeticCorrectionAz"},
	CorrectionBistatic:     {y: "bistaticCorrectionAz"},
	CorrectionDoppler:      {x: "dopplerRangeShiftRg"},
	CorrectionFMRate:       {y: "fmMismatchCorrectionAz"},
	CorrectionSum:          {x: "sumOfCorrectionsRg", y: "sumOfCorrectionsAz"},
}

// CorrectionKinds returns the seven kinds in a fixed order.
func CorrectionKinds() []CorrectionKind {
	return []CorrectionKind{
		CorrectionTropospheric,
		CorrectionIonospheric,
		CorrectionGeodetic,
		CorrectionBistatic,
		CorrectionDoppler,
		CorrectionFMRate,
		CorrectionSum,
	}
}

// ParseCorrectionKind validates a correction name.
func ParseCorrectionKind(name string) (CorrectionKind, error) {
	kind := CorrectionKind(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := correctionTable[kind]; !ok {
		names := make([]string, 0, len(correctionTable))
		for _, k := range CorrectionKinds() {
			names = append(names, string(k))
		}
		return "", fmt.Errorf("%w: %q (available corrections: %s)", ErrUnknownCorrection, name, strings.Join(names, ", "))
	}
	return kind, nil
}

// Correction is the result of a per-burst correction retrieval: up to two
// grids in row-major (lines x samples) orientation. Values are seconds, or
// meters when retrieved with the meter flag.
type Correction struct {
	Name CorrectionKind `json:"name"`
	X    *grid.Raster   `json:"x,omitempty"` // range-axis correction
	Y    *grid.Raster   `json:"y,omitempty"` // azimuth-axis correction
	Unit string         `json:"unit"`
}

// meterFactor returns the scale from seconds to meters for a stored
// variable: azimuth offsets scale by the along-track pixel spacing over the
// azimuth sampling, range delays by c/2 (two-way time to one-way distance).
func meterFactor(variable string, azSpacingMeters, azSamplingSeconds float64) float64 {
	if strings.HasSuffix(variable, "Az") {
		return azSpacingMeters / azSamplingSeconds
	}
	return speedOfLight / 2
}
