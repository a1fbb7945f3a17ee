package tokens

import "fmt"

type Token struct {
	Type   TokType
	Lexeme string
	// Literal is an int64 for IntNum, a float64 for FloatNum and the
	// unquoted text for Str. It is nil for every other kind.
	Literal any
	Line    int
}

func (tok Token) String() string {
	return fmt.Sprintf("%s('%s') line %d", tok.Type, tok.Lexeme, tok.Line)
}

type TokType int8

const (
	// single char tokens
	LeftParen TokType = iota
	RightParen
	LeftBracket
	RightBracket
	LeftBrace
	RightBrace
	Comma
	Colon
	Semicolon
	Minus
	Plus
	Slash
	Star
	Transpose
	Eql
	Greater
	Less
	// 2 char tokens
	EqlEql
	BangEql
	GreaterEql
	LessEql
	PlusEql
	MinusEql
	StarEql
	SlashEql
	DotPlus
	DotMinus
	DotStar
	DotSlash
	// literals
	Identifier
	Str
	IntNum
	FloatNum
	// keywords
	If
	Else
	For
	While
	Break
	Continue
	Return
	Print
	Zeros
	Ones
	Eye
	EOF
)

var names = [...]string{
	LeftParen:    "(",
	RightParen:   ")",
	LeftBracket:  "[",
	RightBracket: "]",
	LeftBrace:    "{",
	RightBrace:   "}",
	Comma:        ",",
	Colon:        ":",
	Semicolon:    ";",
	Minus:        "-",
	Plus:         "+",
	Slash:        "/",
	Star:         "*",
	Transpose:    "TRANSPOSE",
	Eql:          "=",
	Greater:      ">",
	Less:         "<",
	EqlEql:       "EQ",
	BangEql:      "NE",
	GreaterEql:   "GE",
	LessEql:      "LE",
	PlusEql:      "ADDASSIGN",
	MinusEql:     "SUBASSIGN",
	StarEql:      "MULASSIGN",
	SlashEql:     "DIVASSIGN",
	DotPlus:      "DOTADD",
	DotMinus:     "DOTSUB",
	DotStar:      "DOTMUL",
	DotSlash:     "DOTDIV",
	Identifier:   "ID",
	Str:          "STRING",
	IntNum:       "INTNUM",
	FloatNum:     "FLOATNUM",
	If:           "IF",
	Else:         "ELSE",
	For:          "FOR",
	While:        "WHILE",
	Break:        "BREAK",
	Continue:     "CONTINUE",
	Return:       "RETURN",
	Print:        "PRINT",
	Zeros:        "ZEROS",
	Ones:         "ONES",
	Eye:          "EYE",
	EOF:          "EOF",
}

// String returns the kind name used in diagnostics.
func (t TokType) String() string {
	if t < 0 || int(t) >= len(names) {
		return fmt.Sprintf("TokType(%d)", t)
	}
	return names[t]
}

// Keywords maps reserved words to their token kind.
var Keywords = map[string]TokType{
	"if":       If,
	"else":     Else,
	"for":      For,
	"while":    While,
	"break":    Break,
	"continue": Continue,
	"return":   Return,
	"print":    Print,
	"zeros":    Zeros,
	"ones":     Ones,
	"eye":      Eye,
}
