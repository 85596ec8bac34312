package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"lexwalk/internal/ast"
	"reflect"
)

// WalkAST recursively traverses an AST and serializes it into a map structure
// for JSON output. Every node carries its type and source position.
func WalkAST(node ast.Node) interface{} {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return nil
	}

	switch n := node.(type) {
	case *ast.Program:
		return map[string]interface{}{
			"type":       "Program",
			"statements": walkStatements(n.Statements),
		}

	case *ast.Declaration:
		return withPosition(n, map[string]interface{}{
			"type":  "Declaration",
			"name":  n.Name,
			"value": walkExpression(n.Value),
		})

	case *ast.Assignment:
		return withPosition(n, map[string]interface{}{
			"type":  "Assignment",
			"name":  n.Name,
			"value": WalkAST(n.Value),
		})

	case *ast.ArrayElementAssignment:
		return withPosition(n, map[string]interface{}{
			"type":   "ArrayElementAssignment",
			"target": WalkAST(n.Target),
			"value":  WalkAST(n.Value),
		})

	case *ast.Print:
		return withPosition(n, map[string]interface{}{
			"type":   "Print",
			"values": walkExpressions(n.Values),
		})

	case *ast.Return:
		return withPosition(n, map[string]interface{}{
			"type":  "Return",
			"value": walkExpression(n.Value),
		})

	case *ast.If:
		result := map[string]interface{}{
			"type":      "If",
			"condition": WalkAST(n.Condition),
			"then":      walkStatements(n.Then),
		}
		if n.Else != nil {
			result["else"] = walkStatements(n.Else)
		}
		return withPosition(n, result)

	case *ast.WhileLoop:
		return withPosition(n, map[string]interface{}{
			"type":      "WhileLoop",
			"condition": WalkAST(n.Condition),
			"body":      walkStatements(n.Body),
		})

	case *ast.ForLoop:
		return withPosition(n, map[string]interface{}{
			"type":     "ForLoop",
			"variable": n.Variable,
			"iterable": WalkAST(n.Iterable),
			"body":     walkStatements(n.Body),
		})

	case *ast.ExpressionStatement:
		return withPosition(n, map[string]interface{}{
			"type":       "ExpressionStatement",
			"expression": WalkAST(n.Expression),
		})

	case *ast.Binary:
		return withPosition(n, map[string]interface{}{
			"type":     "Binary",
			"operator": n.Operator.String(),
			"left":     WalkAST(n.Left),
			"right":    WalkAST(n.Right),
		})

	case *ast.Unary:
		return withPosition(n, map[string]interface{}{
			"type":     "Unary",
			"operator": n.Operator.String(),
			"operand":  WalkAST(n.Operand),
		})

	case *ast.Access:
		return withPosition(n, map[string]interface{}{
			"type":   "Access",
			"target": WalkAST(n.Target),
			"tail":   WalkAST(n.Tail),
		})

	case *ast.DotTail:
		if n.ByPosition() {
			return map[string]interface{}{"type": "DotTail", "position": n.Index}
		}
		return map[string]interface{}{"type": "DotTail", "name": n.Name}

	case *ast.BracketTail:
		return map[string]interface{}{
			"type":  "BracketTail",
			"index": WalkAST(n.Index),
		}

	case *ast.CallTail:
		return map[string]interface{}{
			"type":      "CallTail",
			"arguments": walkExpressions(n.Arguments),
		}

	case *ast.Variable:
		return withPosition(n, map[string]interface{}{"type": "Variable", "name": n.Name})

	case *ast.IntegerLiteral:
		return withPosition(n, map[string]interface{}{"type": "IntegerLiteral", "value": n.Value})

	case *ast.RealLiteral:
		return withPosition(n, map[string]interface{}{"type": "RealLiteral", "value": n.Value})

	case *ast.BooleanLiteral:
		return withPosition(n, map[string]interface{}{"type": "BooleanLiteral", "value": n.Value})

	case *ast.StringLiteral:
		return withPosition(n, map[string]interface{}{"type": "StringLiteral", "value": n.Value})

	case *ast.EmptyLiteral:
		return withPosition(n, map[string]interface{}{"type": "EmptyLiteral"})

	case *ast.ArrayLiteral:
		return withPosition(n, map[string]interface{}{
			"type":     "ArrayLiteral",
			"elements": walkExpressions(n.Elements),
		})

	case *ast.TupleLiteral:
		elements := make([]interface{}, len(n.Elements))
		for i, el := range n.Elements {
			element := map[string]interface{}{"value": WalkAST(el.Value)}
			if el.Name != "" {
				element["name"] = el.Name
			}
			elements[i] = element
		}
		return withPosition(n, map[string]interface{}{
			"type":     "TupleLiteral",
			"elements": elements,
		})

	case *ast.FunctionLiteral:
		result := map[string]interface{}{
			"type":       "FunctionLiteral",
			"parameters": n.Parameters,
		}
		if n.Expression != nil {
			result["expression"] = WalkAST(n.Expression)
		} else {
			result["body"] = walkStatements(n.Body)
		}
		return withPosition(n, result)

	case *ast.ReadInt:
		return withPosition(n, map[string]interface{}{"type": "ReadInt"})

	case *ast.ReadReal:
		return withPosition(n, map[string]interface{}{"type": "ReadReal"})

	case *ast.ReadString:
		return withPosition(n, map[string]interface{}{"type": "ReadString"})

	case *ast.Range:
		return withPosition(n, map[string]interface{}{
			"type": "Range",
			"low":  WalkAST(n.Low),
			"high": WalkAST(n.High),
		})

	default:
		return map[string]interface{}{
			"type": "Unknown",
			"node": fmt.Sprintf("%T", n),
		}
	}
}

func withPosition(node ast.Node, fields map[string]interface{}) map[string]interface{} {
	tok := node.Pos()
	fields["line"] = tok.Line
	fields["column"] = tok.Column
	return fields
}

func walkStatements(statements []ast.Statement) []interface{} {
	result := make([]interface{}, len(statements))
	for i, s := range statements {
		result[i] = WalkAST(s)
	}
	return result
}

func walkExpressions(expressions []ast.Expression) []interface{} {
	result := make([]interface{}, len(expressions))
	for i, e := range expressions {
		result[i] = WalkAST(e)
	}
	return result
}

// walkExpression keeps optional children as JSON null.
func walkExpression(e ast.Expression) interface{} {
	if e == nil {
		return nil
	}
	return WalkAST(e)
}

func RenderASTAsJSON(node ast.Node) (string, error) {
	astMap := WalkAST(node)
	buf := new(bytes.Buffer)
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(astMap); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %v", err)
	}
	return buf.String(), nil
}
