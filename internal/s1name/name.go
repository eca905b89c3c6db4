// Package s1name parses and manipulates Sentinel-1 product names.
//
// A product name is a sequence of underscore-separated fields, e.g.
//
//	S1B_IW_SLC__1SDV_20190805T162509_20190805T162536_017453_020D3A_AB12.SAFE
//
// The second character of the type/polarization field marks standard ("S"),
// annotation ("A") or default ("D") products; the last field is a checksum.
package s1name

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Field positions within the underscore-separated name.
const (
	fieldMission = iota
	fieldMode
	fieldType
	fieldTypePol
	fieldStartTime
	fieldStopTime
	fieldOrbit
	fieldDataTakeID
	fieldCRC
	numFields
)

// ProductName is a parsed Sentinel-1 product name.
type ProductName struct {
	suffix string
	parts  []string
}

// Parse splits a product name into its fields. The ".SAFE" suffix (or any
// other extension) is preserved for Recompose.
//
// SLC names carry a double underscore after the type field; the empty field
// it produces is folded back into the type ("SLC_") so that the remaining
// fields line up with the other product types.
func Parse(name string) (*ProductName, error) {
	base := filepath.Base(name)
	suffix := filepath.Ext(base)
	stem := strings.TrimSuffix(base, suffix)

	parts := strings.Split(stem, "_")
	if len(parts) == numFields+1 && strings.Contains(parts[fieldType], "SLC") {
		parts = append(parts[:fieldType+1], parts[fieldType+2:]...)
		parts[fieldType] = "SLC_"
	}
	if len(parts) != numFields {
		return nil, fmt.Errorf("invalid Sentinel-1 product name %q: expected %d fields, got %d", name, numFields, len(parts))
	}

	return &ProductName{suffix: suffix, parts: parts}, nil
}

// Mission returns the mission identifier (e.g. "S1B").
func (p *ProductName) Mission() string { return p.parts[fieldMission] }

// Mode returns the acquisition mode (e.g. "IW").
func (p *ProductName) Mode() string { return p.parts[fieldMode] }

// Type returns the product type field (e.g. "SLC_").
func (p *ProductName) Type() string { return p.parts[fieldType] }

// TypePol returns the type/polarization field (e.g. "1SDV").
func (p *ProductName) TypePol() string { return p.parts[fieldTypePol] }

// StartTime returns the sensing start field.
func (p *ProductName) StartTime() string { return p.parts[fieldStartTime] }

// StopTime returns the sensing stop field.
func (p *ProductName) StopTime() string { return p.parts[fieldStopTime] }

// Orbit returns the absolute orbit field.
func (p *ProductName) Orbit() string { return p.parts[fieldOrbit] }

// DataTakeID returns the data-take identifier field.
func (p *ProductName) DataTakeID() string { return p.parts[fieldDataTakeID] }

// CRC returns the checksum field.
func (p *ProductName) CRC() string { return p.parts[fieldCRC] }

// SetCRC replaces the checksum field. An empty value drops the checksum from
// the recomposed name (leaving the trailing separator).
func (p *ProductName) SetCRC(value string) { p.parts[fieldCRC] = value }

// IsAnnotation reports whether the name marks an annotation product.
func (p *ProductName) IsAnnotation() bool {
	tp := p.parts[fieldTypePol]
	return len(tp) > 1 && tp[1] == 'A'
}

// ToAnnotation replaces the product marker with value. Passing a character
// class such as "[AD]" turns the name into a match pattern instead of a
// concrete name.
func (p *ProductName) ToAnnotation(value string) {
	tp := p.parts[fieldTypePol]
	if len(tp) < 2 {
		return
	}
	p.parts[fieldTypePol] = tp[:1] + value + tp[2:]
}

// ToStandard replaces the product marker with "S".
func (p *ProductName) ToStandard() { p.ToAnnotation("S") }

// Recompose joins the fields back into a product name.
func (p *ProductName) Recompose(withSuffix bool) string {
	name := strings.Join(p.parts, "_")
	if withSuffix {
		name += p.suffix
	}
	return name
}

// AnnotationPattern derives the catalogue match predicate from a product
// name: the product marker is widened to accept annotation and default
// products and the checksum is dropped, so the pattern matches every
// productID variant of the same acquisition. The pattern is unanchored.
func AnnotationPattern(name string) (*regexp.Regexp, error) {
	p, err := Parse(name)
	if err != nil {
		return nil, err
	}
	p.ToAnnotation("[AD]")
	p.SetCRC("")

	re, err := regexp.Compile(p.Recompose(false))
	if err != nil {
		return nil, fmt.Errorf("invalid product name pattern: %w", err)
	}
	return re, nil
}
