package eval

import (
	"strconv"
	"strings"

	"github.com/ostnam/matlang/pkg/ast"
)

// Value is either a Scalar or a Matrix.
type Value interface {
	Type() ValueType
	String() string
}

type ValueType uint8

const (
	ScalarType ValueType = iota
	MatrixType
)

func (self ValueType) String() string {
	return []string{"scalar", "matrix"}[self]
}

// Scalar is an integer or a float. The tag is kept so that integer
// arithmetic stays integral.
type Scalar struct {
	IsFloat bool
	Int     int64
	Float   float64
}

func IntScalar(i int64) Scalar {
	return Scalar{Int: i}
}

func FloatScalar(f float64) Scalar {
	return Scalar{IsFloat: true, Float: f}
}

func (s Scalar) Type() ValueType { return ScalarType }

// Float64 returns the scalar as a float, converting integers.
func (s Scalar) Float64() float64 {
	if s.IsFloat {
		return s.Float
	}
	return float64(s.Int)
}

func (s Scalar) IsZero() bool {
	if s.IsFloat {
		return s.Float == 0
	}
	return s.Int == 0
}

func (s Scalar) String() string {
	return s.format(-1)
}

func (s Scalar) format(precision int) string {
	if !s.IsFloat {
		return strconv.FormatInt(s.Int, 10)
	}
	if precision < 0 {
		return ast.FormatFloat(s.Float)
	}
	return strconv.FormatFloat(s.Float, 'f', precision, 64)
}

// Matrix is a rectangular grid of scalars stored row by row.
type Matrix struct {
	Rows [][]Scalar
}

// NewMatrix returns a rows x cols matrix filled with integer zeros.
func NewMatrix(rows, cols int) Matrix {
	m := Matrix{Rows: make([][]Scalar, rows)}
	for i := range m.Rows {
		m.Rows[i] = make([]Scalar, cols)
	}
	return m
}

func (m Matrix) Type() ValueType { return MatrixType }

// Shape returns the row and column counts.
func (m Matrix) Shape() (int, int) {
	if len(m.Rows) == 0 {
		return 0, 0
	}
	return len(m.Rows), len(m.Rows[0])
}

func (m Matrix) SameShape(other Matrix) bool {
	r1, c1 := m.Shape()
	r2, c2 := other.Shape()
	return r1 == r2 && c1 == c2
}

func (m Matrix) Clone() Matrix {
	rows, cols := m.Shape()
	out := NewMatrix(rows, cols)
	for i, row := range m.Rows {
		copy(out.Rows[i], row)
	}
	return out
}

// Transpose returns a new matrix with rows and columns swapped.
func (m Matrix) Transpose() Matrix {
	rows, cols := m.Shape()
	out := NewMatrix(cols, rows)
	for i, row := range m.Rows {
		for j, cell := range row {
			out.Rows[j][i] = cell
		}
	}
	return out
}

// Map applies f to every cell, row by row, left to right.
func (m Matrix) Map(f func(Scalar) (Scalar, error)) (Matrix, error) {
	rows, cols := m.Shape()
	out := NewMatrix(rows, cols)
	for i, row := range m.Rows {
		for j, cell := range row {
			val, err := f(cell)
			if err != nil {
				return Matrix{}, err
			}
			out.Rows[i][j] = val
		}
	}
	return out, nil
}

func (m Matrix) String() string {
	return m.format(-1)
}

func (m Matrix) format(precision int) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, row := range m.Rows {
		if i > 0 {
			b.WriteString("; ")
		}
		for j, cell := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(cell.format(precision))
		}
	}
	b.WriteByte(']')
	return b.String()
}

// FormatValue renders a value for print. A negative precision prints floats
// in their shortest form.
func FormatValue(v Value, precision int) string {
	switch v := v.(type) {
	case Scalar:
		return v.format(precision)
	case Matrix:
		return v.format(precision)
	default:
		return "<nil>"
	}
}
