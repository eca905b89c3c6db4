// Package grid provides the sampling and raster value objects shared by the
// ETAD decoding packages.
package grid

import "fmt"

// Units for Sampling records.
const (
	UnitSeconds = "s"
	UnitMeters  = "m"
)

// Sampling describes the sample interval along the range (X) and azimuth (Y)
// axes of an ETAD grid. The same shape is used for the grid sampling in
// seconds and the grid spacing in meters; Unit tells them apart.
type Sampling struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Unit string  `json:"unit"`
}

// Raster is a dense 2-D array of float64 values in row-major order.
// Rows index the azimuth (line) axis, columns the range (sample) axis.
type Raster struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// New allocates a zero-initialized raster with the given shape.
func New(rows, cols int) *Raster {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("grid: negative raster shape %dx%d", rows, cols))
	}
	return &Raster{
		Rows: rows,
		Cols: cols,
		Data: make([]float64, rows*cols),
	}
}

// FromData wraps an existing row-major slice in a Raster.
// It returns an error if the slice length does not match the shape.
func FromData(rows, cols int, data []float64) (*Raster, error) {
	if len(data) != rows*cols {
		return nil, fmt.Errorf("grid: data length %d does not match shape %dx%d", len(data), rows, cols)
	}
	return &Raster{Rows: rows, Cols: cols, Data: data}, nil
}

// At returns the value at (row, col).
func (r *Raster) At(row, col int) float64 {
	return r.Data[row*r.Cols+col]
}

// Set stores v at (row, col).
func (r *Raster) Set(row, col int, v float64) {
	r.Data[row*r.Cols+col] = v
}

// Row returns the backing slice for one row. The slice aliases the raster.
func (r *Raster) Row(row int) []float64 {
	return r.Data[row*r.Cols : (row+1)*r.Cols]
}

// SetRow copies vals into the given row.
func (r *Raster) SetRow(row int, vals []float64) {
	copy(r.Row(row), vals)
}

// Transpose returns a new raster with rows and columns swapped.
func (r *Raster) Transpose() *Raster {
	out := New(r.Cols, r.Rows)
	for i := 0; i < r.Rows; i++ {
		for j := 0; j < r.Cols; j++ {
			out.Data[j*out.Cols+i] = r.Data[i*r.Cols+j]
		}
	}
	return out
}

// Scale multiplies every value by k in place and returns the raster.
func (r *Raster) Scale(k float64) *Raster {
	for i := range r.Data {
		r.Data[i] *= k
	}
	return r
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	out := New(r.Rows, r.Cols)
	copy(out.Data, r.Data)
	return out
}

// Equal reports whether two rasters have the same shape and bit-identical
// values.
func (r *Raster) Equal(other *Raster) bool {
	if other == nil || r.Rows != other.Rows || r.Cols != other.Cols {
		return false
	}
	for i, v := range r.Data {
		if v != other.Data[i] {
			return false
		}
	}
	return true
}
