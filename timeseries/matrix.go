package timeseries

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a row-major table of exogenous regressors. Each row lines up
// with one month of a Series (or of a forecast horizon).
type Matrix struct {
	Columns []string
	Rows    [][]float64
}

// NewMatrix builds a matrix from rows and validates its shape.
func NewMatrix(columns []string, rows [][]float64) (*Matrix, error) {
	m := &Matrix{Columns: columns, Rows: rows}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// MatrixFromColumns builds a matrix from column vectors of equal length.
func MatrixFromColumns(names []string, cols ...[]float64) (*Matrix, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("got %d column names for %d columns", len(names), len(cols))
	}
	if len(cols) == 0 {
		return &Matrix{}, nil
	}
	n := len(cols[0])
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, len(cols))
	}
	for j, c := range cols {
		if len(c) != n {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", names[j], len(c), n)
		}
		for i, v := range c {
			rows[i][j] = v
		}
	}
	return &Matrix{Columns: names, Rows: rows}, nil
}

// Len returns the number of rows. A nil matrix has zero rows.
func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Rows)
}

// Width returns the number of columns. A nil matrix has zero columns.
func (m *Matrix) Width() int {
	if m == nil {
		return 0
	}
	if len(m.Rows) > 0 {
		return len(m.Rows[0])
	}
	return len(m.Columns)
}

// Validate checks that all rows share one width, that the width matches the
// column names when names are given, and that every value is finite.
func (m *Matrix) Validate() error {
	if m == nil {
		return nil
	}
	w := m.Width()
	if len(m.Columns) > 0 && len(m.Columns) != w {
		return fmt.Errorf("matrix has %d column names for width %d", len(m.Columns), w)
	}
	for i, row := range m.Rows {
		if len(row) != w {
			return fmt.Errorf("row %d has %d columns, expected %d", i, len(row), w)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("non-finite value at row %d column %d", i, j)
			}
		}
	}
	return nil
}

// Column returns a copy of column j.
func (m *Matrix) Column(j int) []float64 {
	out := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = row[j]
	}
	return out
}

// Slice returns rows [start, end) as a new matrix sharing no row storage.
func (m *Matrix) Slice(start, end int) *Matrix {
	if start < 0 {
		start = 0
	}
	if end > len(m.Rows) {
		end = len(m.Rows)
	}
	if start > end {
		start = end
	}
	rows := make([][]float64, end-start)
	for i := range rows {
		rows[i] = append([]float64(nil), m.Rows[start+i]...)
	}
	return &Matrix{Columns: m.Columns, Rows: rows}
}

// Tail returns the last k rows.
func (m *Matrix) Tail(k int) *Matrix {
	return m.Slice(len(m.Rows)-k, len(m.Rows))
}

// Dense copies the matrix into a gonum dense matrix.
func (m *Matrix) Dense() *mat.Dense {
	r, c := m.Len(), m.Width()
	if r == 0 || c == 0 {
		return nil
	}
	d := mat.NewDense(r, c, nil)
	for i, row := range m.Rows {
		d.SetRow(i, row)
	}
	return d
}
