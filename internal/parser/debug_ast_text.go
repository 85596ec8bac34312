package parser

import (
	"fmt"
	"lexwalk/internal/ast"
	"reflect"
	"strings"
)

// RenderASTAsText produces an indented, source-like rendering of the AST
// with explicit parentheses, for checking precedence and block structure.
func RenderASTAsText(node ast.Node, indent int) string {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return "nil"
	}

	sp := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *ast.Program:
		var sb strings.Builder
		for i, s := range n.Statements {
			if i > 0 {
				sb.WriteString("\n")
			}
			// Root level statements start at indent 0
			sb.WriteString(RenderASTAsText(s, 0))
		}
		return sb.String()

	case *ast.Declaration:
		if n.Value == nil {
			return fmt.Sprintf("%svar %s", sp, n.Name)
		}
		return fmt.Sprintf("%svar %s := %s", sp, n.Name, RenderASTAsText(n.Value, indent))

	case *ast.Assignment:
		return fmt.Sprintf("%s%s := %s", sp, n.Name, RenderASTAsText(n.Value, indent))

	case *ast.ArrayElementAssignment:
		return fmt.Sprintf("%s%s := %s", sp, RenderASTAsText(n.Target, 0), RenderASTAsText(n.Value, indent))

	case *ast.Print:
		return fmt.Sprintf("%sprint %s", sp, renderExpressions(n.Values))

	case *ast.Return:
		if n.Value == nil {
			return sp + "return"
		}
		return fmt.Sprintf("%sreturn %s", sp, RenderASTAsText(n.Value, indent))

	case *ast.If:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%sif %s then\n", sp, RenderASTAsText(n.Condition, 0)))
		sb.WriteString(renderBlock(n.Then, indent+1))
		if n.Else != nil {
			sb.WriteString(sp + "else\n")
			sb.WriteString(renderBlock(n.Else, indent+1))
		}
		sb.WriteString(sp + "end")
		return sb.String()

	case *ast.WhileLoop:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%swhile %s loop\n", sp, RenderASTAsText(n.Condition, 0)))
		sb.WriteString(renderBlock(n.Body, indent+1))
		sb.WriteString(sp + "end")
		return sb.String()

	case *ast.ForLoop:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%sfor %s in %s loop\n", sp, n.Variable, RenderASTAsText(n.Iterable, 0)))
		sb.WriteString(renderBlock(n.Body, indent+1))
		sb.WriteString(sp + "end")
		return sb.String()

	case *ast.ExpressionStatement:
		// The statement handles the line's starting indentation
		return sp + RenderASTAsText(n.Expression, indent)

	case *ast.Binary:
		return fmt.Sprintf("(%s %s %s)", RenderASTAsText(n.Left, indent), n.Operator, RenderASTAsText(n.Right, indent))

	case *ast.Unary:
		if n.Operator == ast.Not {
			return fmt.Sprintf("(not %s)", RenderASTAsText(n.Operand, indent))
		}
		return fmt.Sprintf("(%s%s)", n.Operator, RenderASTAsText(n.Operand, indent))

	case *ast.Access:
		return RenderASTAsText(n.Target, indent) + RenderASTAsText(n.Tail, indent)

	case *ast.CallTail:
		return "(" + renderExpressions(n.Arguments) + ")"

	case *ast.BracketTail:
		return "[" + RenderASTAsText(n.Index, 0) + "]"

	case *ast.DotTail:
		return n.String()

	case *ast.ArrayLiteral:
		return "[" + renderExpressions(n.Elements) + "]"

	case *ast.TupleLiteral:
		elems := []string{}
		for _, el := range n.Elements {
			if el.Name != "" {
				elems = append(elems, el.Name+" := "+RenderASTAsText(el.Value, 0))
			} else {
				elems = append(elems, RenderASTAsText(el.Value, 0))
			}
		}
		return "{" + strings.Join(elems, ", ") + "}"

	case *ast.FunctionLiteral:
		head := fmt.Sprintf("func(%s)", strings.Join(n.Parameters, ", "))
		if n.Expression != nil {
			return head + " => " + RenderASTAsText(n.Expression, indent)
		}
		// Body aligns its 'end' with 'indent'
		return head + " is\n" + renderBlock(n.Body, indent+1) + sp + "end"

	case *ast.Range:
		return RenderASTAsText(n.Low, 0) + ".." + RenderASTAsText(n.High, 0)

	case *ast.Variable, *ast.IntegerLiteral, *ast.RealLiteral, *ast.BooleanLiteral,
		*ast.StringLiteral, *ast.EmptyLiteral, *ast.ReadInt, *ast.ReadReal, *ast.ReadString:
		return n.String()

	default:
		return fmt.Sprintf("<unknown:%T>", n)
	}
}

func renderBlock(statements []ast.Statement, indent int) string {
	var sb strings.Builder
	for _, s := range statements {
		sb.WriteString(RenderASTAsText(s, indent))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderExpressions(expressions []ast.Expression) string {
	parts := []string{}
	for _, e := range expressions {
		parts = append(parts, RenderASTAsText(e, 0))
	}
	return strings.Join(parts, ", ")
}
