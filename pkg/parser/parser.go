package parser

import (
	"errors"
	"fmt"

	"github.com/ostnam/matlang/pkg/ast"
	. "github.com/ostnam/matlang/pkg/tokens"
	"github.com/ostnam/matlang/pkg/utils"
)

var (
	// ErrSyntax is wrapped by every SyntaxError.
	ErrSyntax = errors.New("syntax error")

	// ErrUnexpectedEOF is wrapped when the tokens end inside a construct.
	ErrUnexpectedEOF = errors.New("unexpected end of input")

	// ErrRaggedMatrix is wrapped when matrix literal rows differ in length.
	ErrRaggedMatrix = errors.New("ragged matrix literal")
)

// SyntaxError reports the token the parser could not accept. Expected
// describes what the grammar wanted at that point.
type SyntaxError struct {
	Token    Token
	Expected string
	Kind     error
}

func (e *SyntaxError) Error() string {
	switch e.Kind {
	case ErrUnexpectedEOF:
		return "Unexpected end of input"
	case ErrRaggedMatrix:
		return fmt.Sprintf("Syntax error at line %d: %s", e.Token.Line, e.Expected)
	}
	return fmt.Sprintf("Syntax error at line %d: %s('%s')", e.Token.Line, e.Token.Type, e.Token.Lexeme)
}

func (e *SyntaxError) Unwrap() []error {
	if e.Kind == nil || e.Kind == ErrSyntax {
		return []error{ErrSyntax}
	}
	return []error{ErrSyntax, e.Kind}
}

func unexpected(tok *Token, expected string) error {
	if tok == nil || tok.Type == EOF {
		var t Token
		if tok != nil {
			t = *tok
		}
		return &SyntaxError{Token: t, Expected: expected, Kind: ErrUnexpectedEOF}
	}
	return &SyntaxError{Token: *tok, Expected: expected, Kind: ErrSyntax}
}

// Top-level parsing function. The first syntax error aborts the parse and no
// AST is returned.
func Parse(tokens []Token) (*ast.Block, error) {
	pos := 0
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens[:len(tokens):len(tokens)], Token{Type: EOF, Line: line})
	}
	program := &ast.Block{Line: 1}
	for !utils.PeekMatchesTokType(tokens, pos, EOF) {
		stmt, err := parseStmt(tokens, &pos)
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
	}
	return program, nil
}

func parseStmt(tokens []Token, pos *int) (ast.Stmt, error) {
	tok := utils.Peek(tokens, *pos)
	if tok == nil {
		return nil, unexpected(nil, "statement")
	}
	switch tok.Type {
	case If:
		return parseIf(tokens, pos)
	case While:
		return parseWhile(tokens, pos)
	case For:
		return parseFor(tokens, pos)
	case LeftBrace:
		return parseBlock(tokens, pos)
	}
	stmt, err := parseSimple(tokens, pos)
	if err != nil {
		return nil, err
	}
	if _, err := consume(tokens, pos, Semicolon, "';'"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func parseBlock(tokens []Token, pos *int) (*ast.Block, error) {
	open, err := consume(tokens, pos, LeftBrace, "'{'")
	if err != nil {
		return nil, err
	}
	block := &ast.Block{Line: open.Line}
	for !utils.MatchTokenType(tokens, pos, RightBrace) {
		if utils.PeekMatchesTokType(tokens, *pos, EOF) {
			return nil, unexpected(utils.Peek(tokens, *pos), "'}'")
		}
		stmt, err := parseStmt(tokens, pos)
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	return block, nil
}

// A branch is a single statement; a braced block is already one.
func parseBranch(tokens []Token, pos *int) (*ast.Block, error) {
	stmt, err := parseStmt(tokens, pos)
	if err != nil {
		return nil, err
	}
	if block, ok := stmt.(*ast.Block); ok {
		return block, nil
	}
	return &ast.Block{Statements: []ast.Stmt{stmt}, Line: stmt.Pos()}, nil
}

// The else-less form only applies when no ELSE follows the inner branch.
// Since the innermost if checks first, else binds to the nearest if.
func parseIf(tokens []Token, pos *int) (ast.Stmt, error) {
	kw := utils.Advance(tokens, pos)
	pred, err := parseGuard(tokens, pos)
	if err != nil {
		return nil, err
	}
	body, err := parseBranch(tokens, pos)
	if err != nil {
		return nil, err
	}
	stmt := ast.IfStmt{Pred: pred, Body: body, Line: kw.Line}
	if utils.MatchTokenType(tokens, pos, Else) {
		stmt.Else, err = parseBranch(tokens, pos)
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func parseWhile(tokens []Token, pos *int) (ast.Stmt, error) {
	kw := utils.Advance(tokens, pos)
	pred, err := parseGuard(tokens, pos)
	if err != nil {
		return nil, err
	}
	body, err := parseBlock(tokens, pos)
	if err != nil {
		return nil, err
	}
	return ast.While{Pred: pred, Body: body, Line: kw.Line}, nil
}

func parseFor(tokens []Token, pos *int) (ast.Stmt, error) {
	kw := utils.Advance(tokens, pos)
	name, err := consume(tokens, pos, Identifier, "loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := consume(tokens, pos, Eql, "'='"); err != nil {
		return nil, err
	}
	start, err := parseExpr(tokens, pos)
	if err != nil {
		return nil, err
	}
	if _, err := consume(tokens, pos, Colon, "':'"); err != nil {
		return nil, err
	}
	end, err := parseExpr(tokens, pos)
	if err != nil {
		return nil, err
	}
	body, err := parseBlock(tokens, pos)
	if err != nil {
		return nil, err
	}
	return ast.For{
		Var:   ast.Identifier{Name: name.Lexeme, Line: name.Line},
		Start: start,
		End:   end,
		Body:  body,
		Line:  kw.Line,
	}, nil
}

// Parses '(' expr relop expr ')'. A second relational operator is rejected
// by the closing paren check, which keeps relations non-associative.
func parseGuard(tokens []Token, pos *int) (ast.Relation, error) {
	if _, err := consume(tokens, pos, LeftParen, "'('"); err != nil {
		return ast.Relation{}, err
	}
	lhs, err := parseExpr(tokens, pos)
	if err != nil {
		return ast.Relation{}, err
	}
	op := utils.Peek(tokens, *pos)
	if op == nil {
		return ast.Relation{}, unexpected(nil, "relational operator")
	}
	rel, ok := ast.TokToRelation[op.Type]
	if !ok {
		return ast.Relation{}, unexpected(op, "relational operator")
	}
	*pos++
	rhs, err := parseExpr(tokens, pos)
	if err != nil {
		return ast.Relation{}, err
	}
	if _, err := consume(tokens, pos, RightParen, "')'"); err != nil {
		return ast.Relation{}, err
	}
	return ast.Relation{Op: rel, Lhs: lhs, Rhs: rhs, Line: op.Line}, nil
}

func parseSimple(tokens []Token, pos *int) (ast.Stmt, error) {
	tok := utils.Advance(tokens, pos)
	if tok == nil {
		return nil, unexpected(nil, "statement")
	}
	switch tok.Type {
	case Print:
		return parsePrint(tokens, pos, tok)
	case Break:
		return ast.Break{Line: tok.Line}, nil
	case Continue:
		return ast.Continue{Line: tok.Line}, nil
	case Return:
		val, err := parseExpr(tokens, pos)
		if err != nil {
			return nil, err
		}
		return ast.Return{Val: val, Line: tok.Line}, nil
	case Identifier:
		return parseAssignment(tokens, pos, tok)
	}
	return nil, unexpected(tok, "statement")
}

func parseAssignment(tokens []Token, pos *int, nameTok *Token) (ast.Stmt, error) {
	name := ast.Identifier{Name: nameTok.Lexeme, Line: nameTok.Line}
	op := utils.Advance(tokens, pos)
	if op == nil {
		return nil, unexpected(nil, "assignment")
	}
	if compound, ok := ast.TokToCompound[op.Type]; ok {
		val, err := parseExpr(tokens, pos)
		if err != nil {
			return nil, err
		}
		return ast.CompoundAssign{Name: name, Op: compound, Val: val, Line: nameTok.Line}, nil
	}
	switch op.Type {
	case Eql:
		val, err := parseExpr(tokens, pos)
		if err != nil {
			return nil, err
		}
		return ast.Assignment{Name: name, Val: val, Line: nameTok.Line}, nil
	case LeftBracket:
		row, err := parseExpr(tokens, pos)
		if err != nil {
			return nil, err
		}
		if _, err := consume(tokens, pos, Comma, "','"); err != nil {
			return nil, err
		}
		col, err := parseExpr(tokens, pos)
		if err != nil {
			return nil, err
		}
		if _, err := consume(tokens, pos, RightBracket, "']'"); err != nil {
			return nil, err
		}
		if _, err := consume(tokens, pos, Eql, "'='"); err != nil {
			return nil, err
		}
		val, err := parseExpr(tokens, pos)
		if err != nil {
			return nil, err
		}
		return ast.IndexAssign{Name: name, Row: row, Col: col, Val: val, Line: nameTok.Line}, nil
	}
	return nil, unexpected(op, "assignment operator")
}

func parsePrint(tokens []Token, pos *int, kw *Token) (ast.Stmt, error) {
	stmt := ast.Print{Line: kw.Line}
	for {
		if utils.MatchTokenType(tokens, pos, Str) {
			tok := utils.Previous(tokens, *pos)
			stmt.Items = append(stmt.Items, ast.Str{Val: tok.Literal.(string), Line: tok.Line})
		} else {
			item, err := parseExpr(tokens, pos)
			if err != nil {
				return nil, err
			}
			stmt.Items = append(stmt.Items, item)
		}
		if !utils.MatchTokenType(tokens, pos, Comma) {
			return stmt, nil
		}
	}
}

func parseExpr(tokens []Token, pos *int) (ast.Expr, error) {
	return parseTerm(tokens, pos)
}

// + - .+ .-, left-associative
func parseTerm(tokens []Token, pos *int) (ast.Expr, error) {
	expr, err := parseFactor(tokens, pos)
	if err != nil {
		return nil, err
	}
	for utils.MatchTokenType(tokens, pos, Plus, Minus, DotPlus, DotMinus) {
		op := utils.Previous(tokens, *pos)
		right, err := parseFactor(tokens, pos)
		if err != nil {
			return nil, err
		}
		expr, err = mkBinary(op, expr, right)
		if err != nil {
			return nil, err
		}
	}
	return expr, nil
}

// * / .* ./, left-associative
func parseFactor(tokens []Token, pos *int) (ast.Expr, error) {
	expr, err := parseUnary(tokens, pos)
	if err != nil {
		return nil, err
	}
	for utils.MatchTokenType(tokens, pos, Star, Slash, DotStar, DotSlash) {
		op := utils.Previous(tokens, *pos)
		right, err := parseUnary(tokens, pos)
		if err != nil {
			return nil, err
		}
		expr, err = mkBinary(op, expr, right)
		if err != nil {
			return nil, err
		}
	}
	return expr, nil
}

// Elementwise operators only take plain variable names.
func mkBinary(op *Token, lhs ast.Expr, rhs ast.Expr) (ast.Expr, error) {
	if binop, ok := ast.TokToBinop[op.Type]; ok {
		return ast.Binop{Op: binop, Lhs: lhs, Rhs: rhs, Line: op.Line}, nil
	}
	l, lok := lhs.(ast.Identifier)
	r, rok := rhs.(ast.Identifier)
	if !lok || !rok {
		return nil, &SyntaxError{Token: *op, Expected: "matrix variable operands", Kind: ErrSyntax}
	}
	return ast.Elementwise{Op: ast.TokToElementwise[op.Type], Lhs: l, Rhs: r, Line: op.Line}, nil
}

func parseUnary(tokens []Token, pos *int) (ast.Expr, error) {
	if utils.MatchTokenType(tokens, pos, Minus) {
		op := utils.Previous(tokens, *pos)
		val, err := parseUnary(tokens, pos)
		if err != nil {
			return nil, err
		}
		return ast.Unop{Op: ast.Neg, Val: val, Line: op.Line}, nil
	}
	return parsePostfix(tokens, pos)
}

func parsePostfix(tokens []Token, pos *int) (ast.Expr, error) {
	expr, err := parsePrimary(tokens, pos)
	if err != nil {
		return nil, err
	}
	for utils.MatchTokenType(tokens, pos, Transpose) {
		expr = ast.Transpose{Val: expr, Line: utils.Previous(tokens, *pos).Line}
	}
	return expr, nil
}

func parsePrimary(tokens []Token, pos *int) (ast.Expr, error) {
	tok := utils.Advance(tokens, pos)
	if tok == nil {
		return nil, unexpected(nil, "expression")
	}
	switch tok.Type {
	case IntNum:
		return ast.Int{Val: tok.Literal.(int64), Line: tok.Line}, nil
	case FloatNum:
		return ast.Float{Val: tok.Literal.(float64), Line: tok.Line}, nil
	case Identifier:
		return ast.Identifier{Name: tok.Lexeme, Line: tok.Line}, nil
	case LeftParen:
		expr, err := parseExpr(tokens, pos)
		if err != nil {
			return nil, err
		}
		if _, err := consume(tokens, pos, RightParen, "')'"); err != nil {
			return nil, err
		}
		return expr, nil
	case LeftBracket:
		return parseMatrix(tokens, pos, tok)
	case Zeros, Ones, Eye:
		if _, err := consume(tokens, pos, LeftParen, "'('"); err != nil {
			return nil, err
		}
		size, err := parseExpr(tokens, pos)
		if err != nil {
			return nil, err
		}
		if _, err := consume(tokens, pos, RightParen, "')'"); err != nil {
			return nil, err
		}
		return ast.MatrixBuiltin{Kind: ast.TokToBuiltin[tok.Type], Size: size, Line: tok.Line}, nil
	}
	return nil, unexpected(tok, "expression")
}

// Rows are separated by ';' and cells by ','. All rows must have the same
// length.
func parseMatrix(tokens []Token, pos *int, open *Token) (ast.Expr, error) {
	lit := ast.MatrixLit{Line: open.Line}
	row := []ast.Expr{}
	for {
		cell, err := parseExpr(tokens, pos)
		if err != nil {
			return nil, err
		}
		row = append(row, cell)
		switch {
		case utils.MatchTokenType(tokens, pos, Comma):
			continue
		case utils.MatchTokenType(tokens, pos, Semicolon):
			lit.Rows = append(lit.Rows, row)
			row = []ast.Expr{}
			continue
		case utils.MatchTokenType(tokens, pos, RightBracket):
			lit.Rows = append(lit.Rows, row)
		default:
			return nil, unexpected(utils.Peek(tokens, *pos), "',', ';' or ']'")
		}
		break
	}
	for i, r := range lit.Rows {
		if len(r) != len(lit.Rows[0]) {
			return nil, &SyntaxError{
				Token:    *open,
				Expected: fmt.Sprintf("matrix row %d has %d elements, row 0 has %d", i, len(r), len(lit.Rows[0])),
				Kind:     ErrRaggedMatrix,
			}
		}
	}
	return lit, nil
}

func consume(tokens []Token, pos *int, typ TokType, expected string) (*Token, error) {
	if utils.MatchTokenType(tokens, pos, typ) {
		return utils.Previous(tokens, *pos), nil
	}
	return nil, unexpected(utils.Peek(tokens, *pos), expected)
}
