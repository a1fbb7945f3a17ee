package scanner

import (
	"errors"
	"fmt"
	"strconv"

	. "github.com/ostnam/matlang/pkg/tokens"
	"github.com/ostnam/matlang/pkg/utils"
)

var (
	// ErrIllegalChar is wrapped by errors reporting a character that starts no token.
	ErrIllegalChar = errors.New("illegal character")

	// ErrUnterminatedString is wrapped by errors reporting a string literal without its closing quote.
	ErrUnterminatedString = errors.New("unterminated string")
)

// Error is a lexical diagnostic. Scanning continues past it.
type Error struct {
	Kind error
	Char rune
	Line int
}

func (e *Error) Error() string {
	if e.Kind == ErrUnterminatedString {
		return fmt.Sprintf("Unterminated string literal at line %d", e.Line)
	}
	return fmt.Sprintf("Illegal character '%c' at line %d", e.Char, e.Line)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Scan splits the input into tokens. The returned slice always ends with an
// EOF token. Every illegal character is reported and skipped, so the error
// slice lists all lexical errors of the input.
func Scan(input []rune) ([]Token, []error) {
	pos := 0
	lineNumber := 1
	toks := make([]Token, 0, len(input)/2)
	errs := []error{}
	for !utils.IsAtEnd(input, pos) {
		tok, err := scanToken(input, &pos, &lineNumber)
		if err != nil {
			errs = append(errs, err)
		}
		if tok != nil {
			toks = append(toks, *tok)
		}
	}
	toks = append(toks, Token{Type: EOF, Line: lineNumber})
	return toks, errs
}

func scanToken(str []rune, pos *int, lineNumber *int) (*Token, error) {
	start := *pos
	c := utils.Advance(str, pos)
	if c == nil {
		return nil, nil
	}
	line := *lineNumber
	switch *c {
	case '(':
		return mkToken(LeftParen, str, start, *pos, line), nil
	case ')':
		return mkToken(RightParen, str, start, *pos, line), nil
	case '[':
		return mkToken(LeftBracket, str, start, *pos, line), nil
	case ']':
		return mkToken(RightBracket, str, start, *pos, line), nil
	case '{':
		return mkToken(LeftBrace, str, start, *pos, line), nil
	case '}':
		return mkToken(RightBrace, str, start, *pos, line), nil
	case ',':
		return mkToken(Comma, str, start, *pos, line), nil
	case ':':
		return mkToken(Colon, str, start, *pos, line), nil
	case ';':
		return mkToken(Semicolon, str, start, *pos, line), nil
	case '\'':
		return mkToken(Transpose, str, start, *pos, line), nil
	case '+':
		return oneOrTwo(str, pos, start, line, Plus, PlusEql), nil
	case '-':
		return oneOrTwo(str, pos, start, line, Minus, MinusEql), nil
	case '*':
		return oneOrTwo(str, pos, start, line, Star, StarEql), nil
	case '/':
		return oneOrTwo(str, pos, start, line, Slash, SlashEql), nil
	case '=':
		return oneOrTwo(str, pos, start, line, Eql, EqlEql), nil
	case '<':
		return oneOrTwo(str, pos, start, line, Less, LessEql), nil
	case '>':
		return oneOrTwo(str, pos, start, line, Greater, GreaterEql), nil
	case '!':
		if utils.Match(str, pos, '=') {
			return mkToken(BangEql, str, start, *pos, line), nil
		}
		return nil, &Error{Kind: ErrIllegalChar, Char: '!', Line: line}
	case '.':
		next := utils.Peek(str, *pos)
		if next != nil {
			if typ, ok := dotOperators[*next]; ok {
				*pos++
				return mkToken(typ, str, start, *pos, line), nil
			}
		}
		return nil, &Error{Kind: ErrIllegalChar, Char: '.', Line: line}
	case '#':
		consumeRestOfLine(str, pos)
		return nil, nil
	case '"':
		return scanStrLiteral(str, pos, start, line)
	case ' ', '\t', '\r':
		return nil, nil
	case '\n':
		*lineNumber++
		return nil, nil
	default:
		if isDigit(*c) {
			return scanNumLiteral(str, pos, start, line)
		}
		if isIdentStart(*c) {
			return scanIdentifier(str, pos, start, line), nil
		}
		return nil, &Error{Kind: ErrIllegalChar, Char: *c, Line: line}
	}
}

var dotOperators = map[rune]TokType{
	'+': DotPlus,
	'-': DotMinus,
	'*': DotStar,
	'/': DotSlash,
}

// oneOrTwo emits two if the current char is followed by '=', one otherwise.
func oneOrTwo(str []rune, pos *int, start int, line int, one TokType, two TokType) *Token {
	if utils.Match(str, pos, '=') {
		return mkToken(two, str, start, *pos, line)
	}
	return mkToken(one, str, start, *pos, line)
}

// Strings span a single line. On a missing closing quote the scan resumes at
// the newline so the line counter stays right.
func scanStrLiteral(str []rune, pos *int, start int, line int) (*Token, error) {
	for {
		c := utils.Peek(str, *pos)
		if c == nil || *c == '\n' {
			return nil, &Error{Kind: ErrUnterminatedString, Char: '"', Line: line}
		}
		*pos++
		if *c == '"' {
			tok := mkToken(Str, str, start, *pos, line)
			tok.Literal = string(str[start+1 : *pos-1])
			return tok, nil
		}
	}
}

// A float needs digits on both sides of the dot; "3." is an int followed by
// whatever the dot starts.
func scanNumLiteral(str []rune, pos *int, start int, line int) (*Token, error) {
	consumeDigits(str, pos)
	dot := utils.Peek(str, *pos)
	after := utils.Peek(str, *pos+1)
	if dot != nil && *dot == '.' && after != nil && isDigit(*after) {
		*pos++
		consumeDigits(str, pos)
		tok := mkToken(FloatNum, str, start, *pos, line)
		val, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid float literal %s: %w", line, tok.Lexeme, err)
		}
		tok.Literal = val
		return tok, nil
	}
	tok := mkToken(IntNum, str, start, *pos, line)
	val, err := strconv.ParseInt(tok.Lexeme, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid integer literal %s: %w", line, tok.Lexeme, err)
	}
	tok.Literal = val
	return tok, nil
}

func scanIdentifier(str []rune, pos *int, start int, line int) *Token {
	for {
		c := utils.Peek(str, *pos)
		if c == nil || !isIdentPart(*c) {
			break
		}
		*pos++
	}
	tok := mkToken(Identifier, str, start, *pos, line)
	if kw, ok := Keywords[tok.Lexeme]; ok {
		tok.Type = kw
	}
	return tok
}

func mkToken(type_ TokType, str []rune, start int, pos int, line int) *Token {
	return &Token{
		Type:   type_,
		Lexeme: string(str[start:pos]),
		Line:   line,
	}
}

func consumeDigits(str []rune, pos *int) {
	for {
		c := utils.Peek(str, *pos)
		if c == nil || !isDigit(*c) {
			return
		}
		*pos++
	}
}

// Stops before the newline so the caller still counts it.
func consumeRestOfLine(str []rune, pos *int) {
	for ; *pos < len(str); *pos++ {
		if str[*pos] == '\n' {
			return
		}
	}
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || isDigit(c)
}
