package eval

import (
	"math"

	"github.com/ostnam/matlang/pkg/ast"
)

// binary applies an arithmetic operator. Accepted operand shapes:
//
//	scalar op scalar      all operators
//	matrix +/- matrix     same shape
//	matrix * matrix       inner dimensions agree
//	scalar * matrix       either side
//	matrix / scalar
func binary(op ast.BinaryOperator, lhs Value, rhs Value, line int) (Value, error) {
	switch l := lhs.(type) {
	case Scalar:
		switch r := rhs.(type) {
		case Scalar:
			return scalarOp(op, l, r, line)
		case Matrix:
			if op == ast.Mult {
				return r.Map(func(cell Scalar) (Scalar, error) {
					return scalarOp(ast.Mult, l, cell, line)
				})
			}
		}
	case Matrix:
		switch r := rhs.(type) {
		case Scalar:
			if op == ast.Mult || op == ast.Div {
				return l.Map(func(cell Scalar) (Scalar, error) {
					return scalarOp(op, cell, r, line)
				})
			}
		case Matrix:
			switch op {
			case ast.Plus, ast.Minus:
				return cellwise(op, l, r, line)
			case ast.Mult:
				return matMul(l, r, line)
			}
		}
	}
	return nil, runtimeErr(ErrType, line, "unsupported operand types for %s: %s and %s", op, lhs.Type(), rhs.Type())
}

// scalarOp keeps integers integral for + - *. Division always yields a
// float.
func scalarOp(op ast.BinaryOperator, l Scalar, r Scalar, line int) (Scalar, error) {
	if op == ast.Div {
		if r.IsZero() {
			return Scalar{}, runtimeErr(ErrDivisionByZero, line, "division by zero")
		}
		return FloatScalar(l.Float64() / r.Float64()), nil
	}
	if !l.IsFloat && !r.IsFloat {
		res, ok := intOp(op, l.Int, r.Int)
		if !ok {
			return Scalar{}, runtimeErr(ErrIntegerOverflow, line, "integer overflow in %d %s %d", l.Int, op, r.Int)
		}
		return IntScalar(res), nil
	}
	a, b := l.Float64(), r.Float64()
	switch op {
	case ast.Plus:
		return FloatScalar(a + b), nil
	case ast.Minus:
		return FloatScalar(a - b), nil
	case ast.Mult:
		return FloatScalar(a * b), nil
	}
	return Scalar{}, runtimeErr(ErrType, line, "unknown operator %s", op)
}

// intOp reports false when the result does not fit in an int64.
func intOp(op ast.BinaryOperator, a, b int64) (int64, bool) {
	switch op {
	case ast.Plus:
		c := a + b
		return c, (c > a) == (b > 0)
	case ast.Minus:
		c := a - b
		return c, (c < a) == (b > 0)
	case ast.Mult:
		if a == 0 || b == 0 {
			return 0, true
		}
		c := a * b
		if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return c, false
		}
		return c, c/b == a
	}
	return 0, false
}

// cellwise applies op to corresponding cells of two same-shaped matrices.
func cellwise(op ast.BinaryOperator, l Matrix, r Matrix, line int) (Matrix, error) {
	if !l.SameShape(r) {
		lr, lc := l.Shape()
		rr, rc := r.Shape()
		return Matrix{}, runtimeErr(ErrShapeMismatch, line, "cannot apply %s to %dx%d and %dx%d matrices", op, lr, lc, rr, rc)
	}
	rows, cols := l.Shape()
	out := NewMatrix(rows, cols)
	for i := range l.Rows {
		for j := range l.Rows[i] {
			val, err := scalarOp(op, l.Rows[i][j], r.Rows[i][j], line)
			if err != nil {
				return Matrix{}, err
			}
			out.Rows[i][j] = val
		}
	}
	return out, nil
}

func matMul(l Matrix, r Matrix, line int) (Matrix, error) {
	lr, lc := l.Shape()
	rr, rc := r.Shape()
	if lc != rr {
		return Matrix{}, runtimeErr(ErrShapeMismatch, line, "cannot multiply %dx%d by %dx%d matrix", lr, lc, rr, rc)
	}
	out := NewMatrix(lr, rc)
	for i := 0; i < lr; i++ {
		for j := 0; j < rc; j++ {
			acc := IntScalar(0)
			for k := 0; k < lc; k++ {
				prod, err := scalarOp(ast.Mult, l.Rows[i][k], r.Rows[k][j], line)
				if err != nil {
					return Matrix{}, err
				}
				acc, err = scalarOp(ast.Plus, acc, prod, line)
				if err != nil {
					return Matrix{}, err
				}
			}
			out.Rows[i][j] = acc
		}
	}
	return out, nil
}

func negate(val Value, line int) (Value, error) {
	neg := func(s Scalar) (Scalar, error) {
		if s.IsFloat {
			return FloatScalar(-s.Float), nil
		}
		if s.Int == math.MinInt64 {
			return Scalar{}, runtimeErr(ErrIntegerOverflow, line, "integer overflow in -(%d)", s.Int)
		}
		return IntScalar(-s.Int), nil
	}
	switch val := val.(type) {
	case Scalar:
		return neg(val)
	case Matrix:
		return val.Map(neg)
	}
	return nil, runtimeErr(ErrType, line, "can't negate %v", val)
}

func transpose(val Value) Value {
	if m, ok := val.(Matrix); ok {
		return m.Transpose()
	}
	return val
}

// compare evaluates a relation. Matrices only support == and !=.
func compare(op ast.RelationalOperator, lhs Value, rhs Value, line int) (bool, error) {
	l, lok := lhs.(Scalar)
	r, rok := rhs.(Scalar)
	if lok && rok {
		return compareScalars(op, l, r), nil
	}
	if op != ast.Eql && op != ast.NotEql {
		return false, runtimeErr(ErrType, line, "can't order %s and %s with %s", lhs.Type(), rhs.Type(), op)
	}
	eq := valuesEqual(lhs, rhs)
	if op == ast.Eql {
		return eq, nil
	}
	return !eq, nil
}

func compareScalars(op ast.RelationalOperator, l Scalar, r Scalar) bool {
	var c int
	if !l.IsFloat && !r.IsFloat {
		c = cmpOrdered(l.Int, r.Int)
	} else {
		c = cmpOrdered(l.Float64(), r.Float64())
	}
	switch op {
	case ast.Less:
		return c < 0
	case ast.Greater:
		return c > 0
	case ast.LessEql:
		return c <= 0
	case ast.GreaterEql:
		return c >= 0
	case ast.Eql:
		return c == 0
	default:
		return c != 0
	}
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// valuesEqual compares numerically; 1 == 1.0 holds, also inside matrices.
func valuesEqual(lhs Value, rhs Value) bool {
	switch l := lhs.(type) {
	case Scalar:
		r, ok := rhs.(Scalar)
		return ok && compareScalars(ast.Eql, l, r)
	case Matrix:
		r, ok := rhs.(Matrix)
		if !ok || !l.SameShape(r) {
			return false
		}
		for i := range l.Rows {
			for j := range l.Rows[i] {
				if !compareScalars(ast.Eql, l.Rows[i][j], r.Rows[i][j]) {
					return false
				}
			}
		}
		return true
	}
	return false
}
