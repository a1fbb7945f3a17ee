package eval

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ostnam/matlang/pkg/ast"
)

// SignalKind tells how a statement completed.
type SignalKind uint8

const (
	Normal SignalKind = iota
	BreakSignal
	ContinueSignal
	ReturnSignal
)

func (self SignalKind) String() string {
	return []string{"normal", "break", "continue", "return"}[self]
}

// Signal is the result of executing a statement. Val is only set for
// ReturnSignal.
type Signal struct {
	Kind SignalKind
	Val  Value
}

// Interpreter owns one environment. Independent runs use independent
// interpreters.
type Interpreter struct {
	env           *Env
	out           io.Writer
	separator     string
	precision     int
	maxIterations int
}

type Option func(*Interpreter)

// WithOutput sets where print writes. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) { in.out = w }
}

// WithSeparator sets the string between print items. Defaults to " ".
func WithSeparator(sep string) Option {
	return func(in *Interpreter) { in.separator = sep }
}

// WithFloatPrecision sets the number of fractional digits printed for
// floats. A negative value prints the shortest exact form.
func WithFloatPrecision(precision int) Option {
	return func(in *Interpreter) { in.precision = precision }
}

// WithMaxLoopIterations caps the iterations of a single loop. Zero means no
// limit.
func WithMaxLoopIterations(n int) Option {
	return func(in *Interpreter) { in.maxIterations = n }
}

// WithEnv runs programs against an existing environment.
func WithEnv(env *Env) Option {
	return func(in *Interpreter) { in.env = env }
}

func NewInterpreter(opts ...Option) *Interpreter {
	in := &Interpreter{
		env:       NewEnv(),
		out:       os.Stdout,
		separator: " ",
		precision: -1,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

func (in *Interpreter) Env() *Env {
	return in.env
}

// Execute runs a program. A return statement ends the program with a
// ReturnSignal; break and continue may not escape it.
func (in *Interpreter) Execute(ctx context.Context, program *ast.Block) (Signal, error) {
	sig, err := in.execBlock(ctx, program)
	if err != nil {
		return Signal{}, err
	}
	switch sig.Kind {
	case BreakSignal:
		return Signal{}, runtimeErr(ErrJumpOutsideLoop, 0, "break outside of a loop")
	case ContinueSignal:
		return Signal{}, runtimeErr(ErrJumpOutsideLoop, 0, "continue outside of a loop")
	}
	return sig, nil
}

// execBlock stops at the first statement that does not complete normally
// and hands its signal to the caller.
func (in *Interpreter) execBlock(ctx context.Context, block *ast.Block) (Signal, error) {
	for _, stmt := range block.Statements {
		sig, err := in.execStmt(ctx, stmt)
		if err != nil {
			return Signal{}, err
		}
		if sig.Kind != Normal {
			return sig, nil
		}
	}
	return Signal{}, nil
}

func (in *Interpreter) execStmt(ctx context.Context, node ast.Stmt) (Signal, error) {
	switch node := node.(type) {
	case *ast.Block:
		return in.execBlock(ctx, node)

	case ast.Assignment:
		val, err := in.evalExpr(node.Val)
		if err != nil {
			return Signal{}, err
		}
		// matrices are values: later index writes must not reach the source
		if m, ok := val.(Matrix); ok {
			val = m.Clone()
		}
		in.env.Set(node.Name.Name, val)
		return Signal{}, nil

	case ast.CompoundAssign:
		cur, err := in.lookup(node.Name)
		if err != nil {
			return Signal{}, err
		}
		rhs, err := in.evalExpr(node.Val)
		if err != nil {
			return Signal{}, err
		}
		val, err := binary(node.Op, cur, rhs, node.Line)
		if err != nil {
			return Signal{}, err
		}
		in.env.Set(node.Name.Name, val)
		return Signal{}, nil

	case ast.IndexAssign:
		_, err := in.assignIndex(node)
		return Signal{}, err

	case ast.Print:
		return Signal{}, in.print(node)

	case ast.IfStmt:
		ok, err := in.evalRelation(node.Pred)
		if err != nil {
			return Signal{}, err
		}
		if ok {
			return in.execBlock(ctx, node.Body)
		}
		if node.Else != nil {
			return in.execBlock(ctx, node.Else)
		}
		return Signal{}, nil

	case ast.While:
		return in.execWhile(ctx, node)

	case ast.For:
		return in.execFor(ctx, node)

	case ast.Break:
		return Signal{Kind: BreakSignal}, nil

	case ast.Continue:
		return Signal{Kind: ContinueSignal}, nil

	case ast.Return:
		val, err := in.evalExpr(node.Val)
		if err != nil {
			return Signal{}, err
		}
		return Signal{Kind: ReturnSignal, Val: val}, nil

	default:
		return Signal{}, fmt.Errorf("BUG: unmatched statement type during evaluation: %T", node)
	}
}

// loopStep is called before every iteration. It enforces the iteration cap
// and host cancellation.
func (in *Interpreter) loopStep(ctx context.Context, iterations int, line int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("line %d: %w", line, err)
	}
	if in.maxIterations > 0 && iterations > in.maxIterations {
		return runtimeErr(ErrLoopLimit, line, "loop exceeded %d iterations", in.maxIterations)
	}
	return nil
}

// loopBody runs one iteration and reports whether the loop must stop. Break
// is consumed here; return travels up unchanged.
func (in *Interpreter) loopBody(ctx context.Context, body *ast.Block) (Signal, bool, error) {
	sig, err := in.execBlock(ctx, body)
	if err != nil {
		return Signal{}, true, err
	}
	switch sig.Kind {
	case BreakSignal:
		return Signal{}, true, nil
	case ReturnSignal:
		return sig, true, nil
	}
	return Signal{}, false, nil
}

func (in *Interpreter) execWhile(ctx context.Context, node ast.While) (Signal, error) {
	for iterations := 1; ; iterations++ {
		ok, err := in.evalRelation(node.Pred)
		if err != nil || !ok {
			return Signal{}, err
		}
		if err := in.loopStep(ctx, iterations, node.Line); err != nil {
			return Signal{}, err
		}
		sig, stop, err := in.loopBody(ctx, node.Body)
		if stop {
			return sig, err
		}
	}
}

// execFor counts from start to end inclusive. The counter does not follow
// writes to the loop variable made by the body.
func (in *Interpreter) execFor(ctx context.Context, node ast.For) (Signal, error) {
	start, err := in.evalScalar(node.Start, "for range start")
	if err != nil {
		return Signal{}, err
	}
	end, err := in.evalScalar(node.End, "for range end")
	if err != nil {
		return Signal{}, err
	}
	next := func(s Scalar) Scalar {
		if s.IsFloat {
			return FloatScalar(s.Float + 1)
		}
		return IntScalar(s.Int + 1)
	}
	if start.IsFloat || end.IsFloat {
		start = FloatScalar(start.Float64())
	}
	iterations := 1
	for cur := start; compareScalars(ast.LessEql, cur, end); cur = next(cur) {
		if err := in.loopStep(ctx, iterations, node.Line); err != nil {
			return Signal{}, err
		}
		iterations++
		in.env.Set(node.Var.Name, cur)
		sig, stop, err := in.loopBody(ctx, node.Body)
		if stop {
			return sig, err
		}
		// the counter must not step past end, it would wrap or stall
		if cur.IsFloat && next(cur) == cur {
			if cur.Float >= end.Float64() {
				break
			}
			return Signal{}, runtimeErr(ErrInvalidArgument, node.Line, "for range counter %s cannot be incremented", cur)
		}
		if !cur.IsFloat && cur.Int == end.Int {
			break
		}
	}
	return Signal{}, nil
}

func (in *Interpreter) assignIndex(node ast.IndexAssign) (Value, error) {
	cur, err := in.lookup(node.Name)
	if err != nil {
		return nil, err
	}
	m, ok := cur.(Matrix)
	if !ok {
		return nil, runtimeErr(ErrType, node.Line, "%s is a %s, not a matrix", node.Name.Name, cur.Type())
	}
	row, err := in.evalIndex(node.Row)
	if err != nil {
		return nil, err
	}
	col, err := in.evalIndex(node.Col)
	if err != nil {
		return nil, err
	}
	rows, cols := m.Shape()
	if row < 0 || row >= rows || col < 0 || col >= cols {
		return nil, runtimeErr(ErrIndexOutOfBounds, node.Line, "index [%d, %d] out of bounds for %dx%d matrix %s", row, col, rows, cols, node.Name.Name)
	}
	val, err := in.evalExpr(node.Val)
	if err != nil {
		return nil, err
	}
	cell, ok := val.(Scalar)
	if !ok {
		return nil, runtimeErr(ErrType, node.Line, "can't store a %s in a matrix cell", val.Type())
	}
	m.Rows[row][col] = cell
	return cell, nil
}

func (in *Interpreter) print(node ast.Print) error {
	parts := make([]string, len(node.Items))
	for i, item := range node.Items {
		if str, ok := item.(ast.Str); ok {
			parts[i] = str.Val
			continue
		}
		val, err := in.evalExpr(item)
		if err != nil {
			return err
		}
		parts[i] = FormatValue(val, in.precision)
	}
	// one write per statement keeps lines whole and ordered
	_, err := io.WriteString(in.out, strings.Join(parts, in.separator)+"\n")
	return err
}

func (in *Interpreter) lookup(name ast.Identifier) (Value, error) {
	val, ok := in.env.Get(name.Name)
	if !ok {
		return nil, runtimeErr(ErrUnboundVariable, name.Line, "variable %s is not defined", name.Name)
	}
	return val, nil
}

func (in *Interpreter) evalRelation(node ast.Relation) (bool, error) {
	lhs, err := in.evalExpr(node.Lhs)
	if err != nil {
		return false, err
	}
	rhs, err := in.evalExpr(node.Rhs)
	if err != nil {
		return false, err
	}
	return compare(node.Op, lhs, rhs, node.Line)
}

func (in *Interpreter) evalScalar(node ast.Expr, what string) (Scalar, error) {
	val, err := in.evalExpr(node)
	if err != nil {
		return Scalar{}, err
	}
	s, ok := val.(Scalar)
	if !ok {
		return Scalar{}, runtimeErr(ErrType, node.Pos(), "%s must be a scalar, got %s", what, val.Type())
	}
	return s, nil
}

func (in *Interpreter) evalIndex(node ast.Expr) (int, error) {
	s, err := in.evalScalar(node, "matrix index")
	if err != nil {
		return 0, err
	}
	if s.IsFloat {
		return 0, runtimeErr(ErrInvalidArgument, node.Pos(), "matrix index must be an integer, got %s", s)
	}
	return int(s.Int), nil
}

func (in *Interpreter) evalExpr(node ast.Expr) (Value, error) {
	switch node := node.(type) {
	case ast.Int:
		return IntScalar(node.Val), nil

	case ast.Float:
		return FloatScalar(node.Val), nil

	case ast.Identifier:
		return in.lookup(node)

	case ast.MatrixLit:
		m := Matrix{Rows: make([][]Scalar, len(node.Rows))}
		for i, row := range node.Rows {
			if len(row) != len(node.Rows[0]) {
				return nil, runtimeErr(ErrShapeMismatch, node.Line, "matrix row %d has %d elements, row 0 has %d", i, len(row), len(node.Rows[0]))
			}
			m.Rows[i] = make([]Scalar, len(row))
			for j, cell := range row {
				s, err := in.evalScalar(cell, "matrix element")
				if err != nil {
					return nil, err
				}
				m.Rows[i][j] = s
			}
		}
		return m, nil

	case ast.MatrixBuiltin:
		n, err := in.evalScalar(node.Size, node.Kind.String()+" size")
		if err != nil {
			return nil, err
		}
		if n.IsFloat || n.Int < 0 {
			return nil, runtimeErr(ErrInvalidArgument, node.Line, "%s size must be a non-negative integer, got %s", node.Kind, n)
		}
		return builtins[node.Kind](int(n.Int)), nil

	case ast.Unop:
		val, err := in.evalExpr(node.Val)
		if err != nil {
			return nil, err
		}
		switch node.Op {
		case ast.Neg:
			return negate(val, node.Line)
		default:
			return nil, fmt.Errorf("BUG: Unhandled unary operator in eval: %s", node.Op)
		}

	case ast.Binop:
		lhs, err := in.evalExpr(node.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := in.evalExpr(node.Rhs)
		if err != nil {
			return nil, err
		}
		return binary(node.Op, lhs, rhs, node.Line)

	case ast.Elementwise:
		l, err := in.matrixVar(node.Lhs, node.Op)
		if err != nil {
			return nil, err
		}
		r, err := in.matrixVar(node.Rhs, node.Op)
		if err != nil {
			return nil, err
		}
		return cellwise(node.Op.Scalar(), l, r, node.Line)

	case ast.Transpose:
		val, err := in.evalExpr(node.Val)
		if err != nil {
			return nil, err
		}
		return transpose(val), nil

	case ast.Str:
		return nil, runtimeErr(ErrType, node.Line, "string %q used as a value", node.Val)

	default:
		return nil, fmt.Errorf("BUG: unmatched AST node type during evaluation: %T", node)
	}
}

func (in *Interpreter) matrixVar(name ast.Identifier, op ast.ElementwiseOperator) (Matrix, error) {
	val, err := in.lookup(name)
	if err != nil {
		return Matrix{}, err
	}
	m, ok := val.(Matrix)
	if !ok {
		return Matrix{}, runtimeErr(ErrType, name.Line, "%s needs matrix operands, %s is a %s", op, name.Name, val.Type())
	}
	return m, nil
}
