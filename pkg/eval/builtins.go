package eval

import (
	"github.com/ostnam/matlang/pkg/ast"
)

// builtins builds the n x n matrices of zeros(n), ones(n) and eye(n).
var builtins = map[ast.BuiltinKind]func(n int) Matrix{
	ast.Zeros: func(n int) Matrix {
		return NewMatrix(n, n)
	},
	ast.Ones: func(n int) Matrix {
		m := NewMatrix(n, n)
		for _, row := range m.Rows {
			for j := range row {
				row[j] = IntScalar(1)
			}
		}
		return m
	},
	ast.Eye: func(n int) Matrix {
		m := NewMatrix(n, n)
		for i := range m.Rows {
			m.Rows[i][i] = IntScalar(1)
		}
		return m
	},
}
