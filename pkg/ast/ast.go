package ast

import (
	"github.com/ostnam/matlang/pkg/tokens"
)

// Node is implemented by every AST node. Pos returns the source line the
// node starts on.
type Node interface {
	Pos() int
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Integer literal
type Int struct {
	Val  int64
	Line int
}

// Float literal
type Float struct {
	Val  float64
	Line int
}

// String literal. Only valid as a print item.
type Str struct {
	Val  string
	Line int
}

// The name of a variable
type Identifier struct {
	Name string
	Line int
}

// AST node for matrix literals, ie:
// [1, 2; 3, 4]
type MatrixLit struct {
	Rows [][]Expr
	Line int
}

// AST node for zeros(n), ones(n) and eye(n)
type MatrixBuiltin struct {
	Kind BuiltinKind
	Size Expr
	Line int
}

type BuiltinKind uint8

const (
	Zeros BuiltinKind = iota
	Ones
	Eye
)

func (self BuiltinKind) String() string {
	return []string{"zeros", "ones", "eye"}[self]
}

// Ast node for unary operations
type Unop struct {
	Op   UnaryOperator
	Val  Expr
	Line int
}

type UnaryOperator uint8

const (
	Neg UnaryOperator = iota
)

func (self UnaryOperator) String() string {
	return []string{"-"}[self]
}

// Ast node for binary arithmetic
type Binop struct {
	Op   BinaryOperator
	Lhs  Expr
	Rhs  Expr
	Line int
}

type BinaryOperator uint8

const (
	Plus BinaryOperator = iota
	Minus
	Mult
	Div
)

func (self BinaryOperator) String() string {
	return []string{"+", "-", "*", "/"}[self]
}

// AST node for elementwise matrix operations. Both operands are variables.
type Elementwise struct {
	Op   ElementwiseOperator
	Lhs  Identifier
	Rhs  Identifier
	Line int
}

type ElementwiseOperator uint8

const (
	DotAdd ElementwiseOperator = iota
	DotSub
	DotMul
	DotDiv
)

func (self ElementwiseOperator) String() string {
	return []string{".+", ".-", ".*", "./"}[self]
}

// Scalar counterpart of an elementwise operator.
func (self ElementwiseOperator) Scalar() BinaryOperator {
	return []BinaryOperator{Plus, Minus, Mult, Div}[self]
}

// AST node for postfix transpose, ie:
// A'
type Transpose struct {
	Val  Expr
	Line int
}

// Relation is the guard of if and while statements. It is not an Expr:
// relations never mix with arithmetic.
type Relation struct {
	Op   RelationalOperator
	Lhs  Expr
	Rhs  Expr
	Line int
}

type RelationalOperator uint8

const (
	Less RelationalOperator = iota
	Greater
	LessEql
	GreaterEql
	Eql
	NotEql
)

func (self RelationalOperator) String() string {
	return []string{"<", ">", "<=", ">=", "==", "!="}[self]
}

// AST node for setting a value to a variable, ie:
// x = 11;
type Assignment struct {
	Name Identifier
	Val  Expr
	Line int
}

// AST node for x += e, x -= e, x *= e and x /= e
type CompoundAssign struct {
	Name Identifier
	Op   BinaryOperator
	Val  Expr
	Line int
}

// AST node for A[i, j] = e
type IndexAssign struct {
	Name Identifier
	Row  Expr
	Col  Expr
	Val  Expr
	Line int
}

// AST node for print statements. Items are expressions or Str.
type Print struct {
	Items []Expr
	Line  int
}

// AST node for blocks
type Block struct {
	Statements []Stmt
	Line       int
}

// AST node for if statements. Else is nil when there is no else branch.
type IfStmt struct {
	Pred Relation
	Body *Block
	Else *Block
	Line int
}

// AST node for while loops
type While struct {
	Pred Relation
	Body *Block
	Line int
}

// AST node for for loops, ie:
// for i = 1:10 { ... }
type For struct {
	Var   Identifier
	Start Expr
	End   Expr
	Body  *Block
	Line  int
}

type Break struct {
	Line int
}

type Continue struct {
	Line int
}

type Return struct {
	Val  Expr
	Line int
}

func (n Int) Pos() int            { return n.Line }
func (n Float) Pos() int          { return n.Line }
func (n Str) Pos() int            { return n.Line }
func (n Identifier) Pos() int     { return n.Line }
func (n MatrixLit) Pos() int      { return n.Line }
func (n MatrixBuiltin) Pos() int  { return n.Line }
func (n Unop) Pos() int           { return n.Line }
func (n Binop) Pos() int          { return n.Line }
func (n Elementwise) Pos() int    { return n.Line }
func (n Transpose) Pos() int      { return n.Line }
func (n Relation) Pos() int       { return n.Line }
func (n Assignment) Pos() int     { return n.Line }
func (n CompoundAssign) Pos() int { return n.Line }
func (n IndexAssign) Pos() int    { return n.Line }
func (n Print) Pos() int          { return n.Line }
func (n *Block) Pos() int         { return n.Line }
func (n IfStmt) Pos() int         { return n.Line }
func (n While) Pos() int          { return n.Line }
func (n For) Pos() int            { return n.Line }
func (n Break) Pos() int          { return n.Line }
func (n Continue) Pos() int       { return n.Line }
func (n Return) Pos() int         { return n.Line }

func (Int) exprNode()           {}
func (Float) exprNode()         {}
func (Str) exprNode()           {}
func (Identifier) exprNode()    {}
func (MatrixLit) exprNode()     {}
func (MatrixBuiltin) exprNode() {}
func (Unop) exprNode()          {}
func (Binop) exprNode()         {}
func (Elementwise) exprNode()   {}
func (Transpose) exprNode()     {}

func (Assignment) stmtNode()     {}
func (CompoundAssign) stmtNode() {}
func (IndexAssign) stmtNode()    {}
func (Print) stmtNode()          {}
func (*Block) stmtNode()         {}
func (IfStmt) stmtNode()         {}
func (While) stmtNode()          {}
func (For) stmtNode()            {}
func (Break) stmtNode()          {}
func (Continue) stmtNode()       {}
func (Return) stmtNode()         {}

// Maps tokens to their corresponding BinaryOperator if such a mapping exists.
var TokToBinop = map[tokens.TokType]BinaryOperator{
	tokens.Plus:  Plus,
	tokens.Minus: Minus,
	tokens.Star:  Mult,
	tokens.Slash: Div,
}

// Maps compound assignment tokens to the operator they apply.
var TokToCompound = map[tokens.TokType]BinaryOperator{
	tokens.PlusEql:  Plus,
	tokens.MinusEql: Minus,
	tokens.StarEql:  Mult,
	tokens.SlashEql: Div,
}

var TokToElementwise = map[tokens.TokType]ElementwiseOperator{
	tokens.DotPlus:  DotAdd,
	tokens.DotMinus: DotSub,
	tokens.DotStar:  DotMul,
	tokens.DotSlash: DotDiv,
}

var TokToRelation = map[tokens.TokType]RelationalOperator{
	tokens.Less:       Less,
	tokens.Greater:    Greater,
	tokens.LessEql:    LessEql,
	tokens.GreaterEql: GreaterEql,
	tokens.EqlEql:     Eql,
	tokens.BangEql:    NotEql,
}

var TokToBuiltin = map[tokens.TokType]BuiltinKind{
	tokens.Zeros: Zeros,
	tokens.Ones:  Ones,
	tokens.Eye:   Eye,
}
