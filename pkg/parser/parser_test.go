package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ostnam/matlang/pkg/ast"
	"github.com/ostnam/matlang/pkg/scanner"
)

func parse(t *testing.T, input string) (*ast.Block, error) {
	t.Helper()
	toks, errs := scanner.Scan([]rune(input))
	if len(errs) != 0 {
		t.Fatalf("scan %q: %v", input, errs)
	}
	return Parse(toks)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"mult binds tighter than plus", "x = 2 + 3 * 4;", "(block (= x (+ 2 (* 3 4))))"},
		{"grouping", "x = (2 + 3) * 4;", "(block (= x (* (+ 2 3) 4)))"},
		{"minus is left associative", "x = 1 - 2 - 3;", "(block (= x (- (- 1 2) 3)))"},
		{"division is left associative", "x = 8 / 4 / 2;", "(block (= x (/ (/ 8 4) 2)))"},
		{"transpose before negation", "x = -a';", "(block (= x (- (' a))))"},
		{"negation is right associative", "x = - - a;", "(block (= x (- (- a))))"},
		{"transpose chains", "x = (a')';", "(block (= x (' (' a))))"},
		{"negation binds tighter than mult", "x = 2 * -3;", "(block (= x (* 2 (- 3))))"},
		{"elementwise mult binds tighter than plus", "c = a .* b + 1;", "(block (= c (+ (.* a b) 1)))"},
		{"elementwise add", "c = a .+ b;", "(block (= c (.+ a b)))"},
		{"matrix literal", "A = [1, 2; 3, 4.5];", "(block (= A [1, 2; 3, 4.5]))"},
		{"matrix builtin", "A = eye(3) + zeros(n);", "(block (= A (+ (eye 3) (zeros n))))"},
		{"compound assignment", "x += y * 2;", "(block (+= x (* y 2)))"},
		{"index assignment", "A[0, 1] = 5;", "(block (= (index A 0 1) 5))"},
		{"print list", `print a, "s", 1 + 2;`, `(block (print a "s" (+ 1 2)))`},
		{"return", "return x + 1;", "(block (return (+ x 1)))"},
		{
			"for loop",
			"for i = 1:n { print i; }",
			"(block (for i 1 n (block (print i))))",
		},
		{
			"while with jumps",
			"while (i < 10) { i += 1; if (i == 5) break; continue; }",
			"(block (while (< i 10) (block (+= i 1) (if (== i 5) (block (break))) (continue))))",
		},
		{
			"if else with blocks",
			"if (a != b) { x = 1; y = 2; } else { x = 3; }",
			"(block (if (!= a b) (block (= x 1) (= y 2)) (block (= x 3))))",
		},
		{
			"else binds to the nearest if",
			`if (x > 0) if (y > 0) print "a"; else print "b";`,
			`(block (if (> x 0) (block (if (> y 0) (block (print "a")) (block (print "b"))))))`,
		},
		{
			"braces move the else to the outer if",
			`if (x > 0) { if (y > 0) print "a"; } else print "b";`,
			`(block (if (> x 0) (block (if (> y 0) (block (print "a")))) (block (print "b"))))`,
		},
		{"empty program", "# nothing\n", "(block)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := parse(t, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, ast.Format(program)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		kind  error
	}{
		{"missing operand", "x = 1 +;", "Syntax error at line 1: ;(';')", ErrSyntax},
		{"missing paren", "if (x > 0 { x = 1; }", "Syntax error at line 1: {('{')", ErrSyntax},
		{"chained relation", "while (a < b < c) { }", "Syntax error at line 1: <('<')", ErrSyntax},
		{"relation outside guard", "x = a < b;", "Syntax error at line 1: <('<')", ErrSyntax},
		{"bare expression", "1 + 2;", "Syntax error at line 1: INTNUM('1')", ErrSyntax},
		{"error line", "x = 1;\ny = 2 2;", "Syntax error at line 2: INTNUM('2')", ErrSyntax},
		{"elementwise on expression", "c = a' .+ b;", "Syntax error at line 1: DOTADD('.+')", ErrSyntax},
		{"missing semicolon at end", "x = 1", "Unexpected end of input", ErrUnexpectedEOF},
		{"unclosed block", "for i = 1:3 { print i;", "Unexpected end of input", ErrUnexpectedEOF},
		{"dangling if", "if (x > 1)", "Unexpected end of input", ErrUnexpectedEOF},
		{"ragged matrix", "x = [1, 2; 3];", "Syntax error at line 1: matrix row 1 has 1 elements, row 0 has 2", ErrRaggedMatrix},
		{"for body needs braces", "for i = 1:3 print i;", "Syntax error at line 1: PRINT('print')", ErrSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := parse(t, tt.input)
			if err == nil {
				t.Fatalf("expected an error, got %s", ast.Format(program))
			}
			if program != nil {
				t.Errorf("partial AST returned: %s", ast.Format(program))
			}
			if diff := cmp.Diff(tt.want, err.Error()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("error %v does not wrap %v", err, tt.kind)
			}
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("error %v does not wrap ErrSyntax", err)
			}
		})
	}
}

func TestSyntaxErrorUnwrap(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []error
	}{
		{"plain", "x = ;", []error{ErrSyntax}},
		{"end of input", "x = 1", []error{ErrSyntax, ErrUnexpectedEOF}},
		{"ragged", "x = [1; 2, 3];", []error{ErrSyntax, ErrRaggedMatrix}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.input)
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("want a SyntaxError, got %v", err)
			}
			if diff := cmp.Diff(tt.want, syntaxErr.Unwrap(), cmpopts.EquateErrors()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
