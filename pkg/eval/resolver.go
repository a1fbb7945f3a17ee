package eval

import (
	"fmt"

	"github.com/ostnam/matlang/pkg/ast"
)

// JumpError reports a break or continue that is not inside any loop.
type JumpError struct {
	Stmt string
	Line int
}

func (self *JumpError) Error() string {
	return fmt.Sprintf("Semantic error at line %d: '%s' outside of a loop", self.Line, self.Stmt)
}

func (self *JumpError) Unwrap() error {
	return ErrJumpOutsideLoop
}

// Resolver walks a program before it runs and checks that every jump
// statement has a loop to jump to.
type Resolver struct {
	loopDepth int
	errs      []error
}

// CheckJumps returns one error per misplaced break or continue.
func CheckJumps(program *ast.Block) []error {
	res := Resolver{}
	res.Resolve(program)
	return res.errs
}

func (res *Resolver) Resolve(node ast.Stmt) {
	switch node := node.(type) {
	case *ast.Block:
		for _, stmt := range node.Statements {
			res.Resolve(stmt)
		}

	case ast.IfStmt:
		res.Resolve(node.Body)
		if node.Else != nil {
			res.Resolve(node.Else)
		}

	case ast.While:
		res.loop(node.Body)

	case ast.For:
		res.loop(node.Body)

	case ast.Break:
		if res.loopDepth == 0 {
			res.errs = append(res.errs, &JumpError{Stmt: "break", Line: node.Line})
		}

	case ast.Continue:
		if res.loopDepth == 0 {
			res.errs = append(res.errs, &JumpError{Stmt: "continue", Line: node.Line})
		}
	}
}

func (res *Resolver) loop(body *ast.Block) {
	res.loopDepth++
	res.Resolve(body)
	res.loopDepth--
}
