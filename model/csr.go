package model

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// CSR is an immutable compressed sparse row feature matrix backed by
// sparse.CSR. Every stored entry, zero or not, is part of its row's
// support. Rows are meant to be read through Row, which aliases the raw
// storage.
type CSR struct {
	m       *sparse.CSR
	indptr  []int
	indices []int
	data    []float64
}

var _ mat.Matrix = (*CSR)(nil)

// NewCSR builds a CSR matrix from its raw arrays. Row i owns
// indices[indptr[i]:indptr[i+1]], which must be strictly increasing column
// indices in [0, cols). The slices are retained, not copied.
func NewCSR(rows, cols int, indptr, indices []int, data []float64) (*CSR, error) {
	if err := validateCSR(rows, cols, indptr, indices, data); err != nil {
		return nil, err
	}
	return wrapCSR(sparse.NewCSR(rows, cols, indptr, indices, data)), nil
}

// FromSparse wraps an existing sparse.CSR after checking that its column
// indices are sorted within each row.
func FromSparse(m *sparse.CSR) (*CSR, error) {
	if m == nil {
		return nil, fmt.Errorf("matrix must not be nil")
	}
	raw := m.RawMatrix()
	if err := validateCSR(raw.I, raw.J, raw.Indptr, raw.Ind, raw.Data); err != nil {
		return nil, err
	}
	return wrapCSR(m), nil
}

func validateCSR(rows, cols int, indptr, indices []int, data []float64) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("matrix dimensions must be positive, got %dx%d", rows, cols)
	}
	if len(indptr) != rows+1 {
		return fmt.Errorf("indptr length %d != rows+1 (%d)", len(indptr), rows+1)
	}
	if len(indices) != len(data) {
		return fmt.Errorf("indices length %d != data length %d", len(indices), len(data))
	}
	if indptr[0] != 0 || indptr[rows] != len(indices) {
		return fmt.Errorf("indptr must start at 0 and end at %d", len(indices))
	}
	for i := 0; i < rows; i++ {
		lo, hi := indptr[i], indptr[i+1]
		if hi < lo {
			return fmt.Errorf("indptr decreases at row %d", i)
		}
		for k := lo; k < hi; k++ {
			j := indices[k]
			if j < 0 || j >= cols {
				return fmt.Errorf("row %d: column index %d out of range [0, %d)", i, j, cols)
			}
			if k > lo && j <= indices[k-1] {
				return fmt.Errorf("row %d: column indices not strictly increasing", i)
			}
		}
	}
	return nil
}

func wrapCSR(m *sparse.CSR) *CSR {
	raw := m.RawMatrix()
	return &CSR{m: m, indptr: raw.Indptr, indices: raw.Ind, data: raw.Data}
}

// CSRFromDense compresses m, dropping exact zeros.
func CSRFromDense(m mat.Matrix) *CSR {
	rows, cols := m.Dims()
	indptr := make([]int, rows+1)
	var indices []int
	var data []float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := m.At(i, j); v != 0 {
				indices = append(indices, j)
				data = append(data, v)
			}
		}
		indptr[i+1] = len(indices)
	}
	return wrapCSR(sparse.NewCSR(rows, cols, indptr, indices, data))
}

// Dims returns the number of rows and columns.
func (c *CSR) Dims() (int, int) { return c.m.Dims() }

// At returns the element at row i, column j.
func (c *CSR) At(i, j int) float64 { return c.m.At(i, j) }

// T returns the transpose.
func (c *CSR) T() mat.Matrix { return c.m.T() }

// Sparse returns the underlying matrix.
func (c *CSR) Sparse() *sparse.CSR { return c.m }

// Row returns the stored column indices and values of row i. The returned
// slices alias the matrix storage.
func (c *CSR) Row(i int) ([]int, []float64) {
	lo, hi := c.indptr[i], c.indptr[i+1]
	return c.indices[lo:hi], c.data[lo:hi]
}

// NNZ returns the number of stored entries.
func (c *CSR) NNZ() int { return c.m.NNZ() }

// ColumnNonZeros writes, for each column, the number of rows storing an
// entry there. This matches the supports returned by Row.
func (c *CSR) ColumnNonZeros(out []int) {
	if _, cols := c.m.Dims(); len(out) != cols {
		panic(mat.ErrShape)
	}
	for j := range out {
		out[j] = 0
	}
	for _, j := range c.indices {
		out[j]++
	}
}
