package plottypes

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// matrixArray exposes a gonum matrix as a 2D float64 shaped array.
type matrixArray struct {
	m          mat.Matrix
	rows, cols int
}

// FromMatrix adapts a gonum matrix. Rows become the outer extent.
func FromMatrix(m mat.Matrix) Grid {
	r, c := m.Dims()
	return Grid{Shaped: &matrixArray{m: m, rows: r, cols: c}}
}

func (a *matrixArray) Shape() []int { return []int{a.rows, a.cols} }

func (a *matrixArray) Len() int { return a.rows * a.cols }

func (a *matrixArray) At(i int) any { return a.m.At(i/a.cols, i%a.cols) }

func (a *matrixArray) Kind() Kind { return KindFloat64 }

// FromRows builds a 2D Grid from equally long rows.
func FromRows(rows [][]float64) (Grid, error) {
	if len(rows) == 0 {
		return Grid{}, NewValidationError("shape", "no rows")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return Grid{}, NewValidationError("shape", fmt.Sprintf("ragged rows: row 0 has %d columns, row %d has %d", cols, i, len(row)))
		}
		data = append(data, row...)
	}
	d, err := NewDense(data, len(rows), cols)
	if err != nil {
		return Grid{}, err
	}
	return Grid{Shaped: d}, nil
}
