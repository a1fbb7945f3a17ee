package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format renders a node as a one-line s-expression, ie:
// (= x (+ 2 (* 3 4)))
func Format(node Node) string {
	var b strings.Builder
	format(&b, node)
	return b.String()
}

func format(b *strings.Builder, node Node) {
	switch node := node.(type) {
	case Int:
		b.WriteString(strconv.FormatInt(node.Val, 10))
	case Float:
		b.WriteString(FormatFloat(node.Val))
	case Str:
		b.WriteString(strconv.Quote(node.Val))
	case Identifier:
		b.WriteString(node.Name)
	case MatrixLit:
		b.WriteByte('[')
		for i, row := range node.Rows {
			if i > 0 {
				b.WriteString("; ")
			}
			for j, cell := range row {
				if j > 0 {
					b.WriteString(", ")
				}
				format(b, cell)
			}
		}
		b.WriteByte(']')
	case MatrixBuiltin:
		list(b, node.Kind.String(), node.Size)
	case Unop:
		list(b, node.Op.String(), node.Val)
	case Binop:
		list(b, node.Op.String(), node.Lhs, node.Rhs)
	case Elementwise:
		list(b, node.Op.String(), node.Lhs, node.Rhs)
	case Transpose:
		list(b, "'", node.Val)
	case Relation:
		list(b, node.Op.String(), node.Lhs, node.Rhs)
	case Assignment:
		list(b, "=", node.Name, node.Val)
	case CompoundAssign:
		list(b, node.Op.String()+"=", node.Name, node.Val)
	case IndexAssign:
		b.WriteString("(= (index ")
		format(b, node.Name)
		b.WriteByte(' ')
		format(b, node.Row)
		b.WriteByte(' ')
		format(b, node.Col)
		b.WriteString(") ")
		format(b, node.Val)
		b.WriteByte(')')
	case Print:
		args := make([]Node, len(node.Items))
		for i, item := range node.Items {
			args[i] = item
		}
		list(b, "print", args...)
	case *Block:
		args := make([]Node, len(node.Statements))
		for i, stmt := range node.Statements {
			args[i] = stmt
		}
		list(b, "block", args...)
	case IfStmt:
		if node.Else != nil {
			list(b, "if", node.Pred, node.Body, node.Else)
		} else {
			list(b, "if", node.Pred, node.Body)
		}
	case While:
		list(b, "while", node.Pred, node.Body)
	case For:
		list(b, "for", node.Var, node.Start, node.End, node.Body)
	case Break:
		b.WriteString("(break)")
	case Continue:
		b.WriteString("(continue)")
	case Return:
		list(b, "return", node.Val)
	default:
		fmt.Fprintf(b, "<unknown %T>", node)
	}
}

func list(b *strings.Builder, head string, args ...Node) {
	b.WriteByte('(')
	b.WriteString(head)
	for _, arg := range args {
		b.WriteByte(' ')
		format(b, arg)
	}
	b.WriteByte(')')
}

// FormatFloat renders floats with at least one fractional digit so they stay
// distinguishable from integers: 2 -> "2.0", 0.5 -> "0.5".
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}

// Pretty prints an AST node as an indented tree.
func PrettyPrint(w io.Writer, node Node) {
	prettyPrintAst(w, node, 0)
}

func prettyPrintAst(w io.Writer, node Node, indent int) {
	const INDENT_LVL = 3
	if indent == 0 {
		fmt.Fprint(w, strings.Repeat(" ", indent))
	} else {
		fmt.Fprint(w, strings.Repeat(" ", indent-1)+"|"+" ")
	}
	child := func(n Node) { prettyPrintAst(w, n, indent+INDENT_LVL) }
	switch node := node.(type) {
	case *Block:
		fmt.Fprintf(w, "Block (line %d)\n", node.Line)
		for _, stmt := range node.Statements {
			child(stmt)
		}
	case IfStmt:
		fmt.Fprintf(w, "If (line %d)\n", node.Line)
		child(node.Pred)
		child(node.Body)
		if node.Else != nil {
			child(node.Else)
		}
	case While:
		fmt.Fprintf(w, "While (line %d)\n", node.Line)
		child(node.Pred)
		child(node.Body)
	case For:
		fmt.Fprintf(w, "For %s (line %d)\n", node.Var.Name, node.Line)
		child(node.Start)
		child(node.End)
		child(node.Body)
	case Assignment:
		fmt.Fprintf(w, "Assignment: %s (line %d)\n", node.Name.Name, node.Line)
		child(node.Val)
	case CompoundAssign:
		fmt.Fprintf(w, "CompoundAssign: %s %s= (line %d)\n", node.Name.Name, node.Op, node.Line)
		child(node.Val)
	case IndexAssign:
		fmt.Fprintf(w, "IndexAssign: %s (line %d)\n", node.Name.Name, node.Line)
		child(node.Row)
		child(node.Col)
		child(node.Val)
	case Print:
		fmt.Fprintf(w, "Print (line %d)\n", node.Line)
		for _, item := range node.Items {
			child(item)
		}
	case Return:
		fmt.Fprintf(w, "Return (line %d)\n", node.Line)
		child(node.Val)
	case Relation:
		fmt.Fprintf(w, "Relation: %s\n", node.Op)
		child(node.Lhs)
		child(node.Rhs)
	case Binop:
		fmt.Fprintf(w, "Binop: %s\n", node.Op)
		child(node.Lhs)
		child(node.Rhs)
	case Elementwise:
		fmt.Fprintf(w, "Elementwise: %s\n", node.Op)
		child(node.Lhs)
		child(node.Rhs)
	case Unop:
		fmt.Fprintf(w, "Unop: %s\n", node.Op)
		child(node.Val)
	case Transpose:
		fmt.Fprint(w, "Transpose\n")
		child(node.Val)
	case MatrixBuiltin:
		fmt.Fprintf(w, "Builtin: %s\n", node.Kind)
		child(node.Size)
	case MatrixLit:
		fmt.Fprintf(w, "Matrix: %d rows\n", len(node.Rows))
		for _, row := range node.Rows {
			for _, cell := range row {
				child(cell)
			}
		}
	default:
		// leaves
		fmt.Fprintf(w, "%s\n", Format(node))
	}
}
