package evaluator

import (
	"lexwalk/internal/ast"
	"lexwalk/internal/object"
)

func (e *Evaluator) evalUnaryExpression(node *ast.Unary, operand object.Object) (object.Object, error) {
	switch node.Operator {
	case ast.Plus:
		switch operand.(type) {
		case *object.Integer, *object.Real:
			return operand, nil
		}
	case ast.Minus:
		switch operand := operand.(type) {
		case *object.Integer:
			return &object.Integer{Value: -operand.Value}, nil
		case *object.Real:
			return &object.Real{Value: -operand.Value}, nil
		}
	case ast.Not:
		if b, ok := operand.(*object.Boolean); ok {
			return object.NativeBool(!b.Value), nil
		}
	default:
		return nil, e.newError(node, object.KindInvalidTarget, "unknown unary operator %s", node.Operator)
	}
	return nil, e.newError(node, object.KindTypeMismatch, "invalid type for unary operation: %s%s", node.Operator, operand.Type())
}

// isLiteralKind reports whether val may appear as a binary operand at all.
func isLiteralKind(val object.Object) bool {
	switch val.(type) {
	case *object.Integer, *object.Real, *object.Boolean, *object.String, *object.Array, *object.Tuple:
		return true
	}
	return false
}

func (e *Evaluator) evalBinaryExpression(node *ast.Binary, left, right object.Object) (object.Object, error) {
	for _, operand := range []object.Object{left, right} {
		if !isLiteralKind(operand) {
			return nil, e.newError(node, object.KindTypeMismatch, "wrong literal type %s for operator %s", operand.Type(), node.Operator)
		}
	}

	switch {
	case node.Operator.IsArithmetic():
		return e.evalArithmetic(node, left, right)
	case node.Operator.IsLogical():
		return e.evalLogical(node, left, right)
	case node.Operator.IsRelational():
		return e.evalRelational(node, left, right)
	}
	return nil, e.newError(node, object.KindInvalidTarget, "unknown binary operator %s", node.Operator)
}

func (e *Evaluator) typeMismatch(node *ast.Binary, left, right object.Object) error {
	return e.newError(node, object.KindTypeMismatch, "invalid types for binary operation: %s %s %s",
		left.Type(), node.Operator, right.Type())
}

func (e *Evaluator) evalArithmetic(node *ast.Binary, left, right object.Object) (object.Object, error) {
	if l, ok := left.(*object.Integer); ok {
		if r, ok := right.(*object.Integer); ok {
			return e.evalIntegerArithmetic(node, l.Value, r.Value)
		}
	}
	if l, r, ok := promote(left, right); ok {
		return e.evalRealArithmetic(node, l, r)
	}

	if node.Operator == ast.Add {
		switch l := left.(type) {
		case *object.String:
			if r, ok := right.(*object.String); ok {
				return &object.String{Value: l.Value + r.Value}, nil
			}
		case *object.Array:
			if r, ok := right.(*object.Array); ok {
				return l.Union(r), nil
			}
		case *object.Tuple:
			if r, ok := right.(*object.Tuple); ok {
				return l.Concat(r), nil
			}
		}
	}

	return nil, e.typeMismatch(node, left, right)
}

func (e *Evaluator) evalIntegerArithmetic(node *ast.Binary, l, r int64) (object.Object, error) {
	switch node.Operator {
	case ast.Add:
		return &object.Integer{Value: l + r}, nil
	case ast.Subtract:
		return &object.Integer{Value: l - r}, nil
	case ast.Multiply:
		return &object.Integer{Value: l * r}, nil
	case ast.Divide:
		if r == 0 {
			return nil, e.newError(node, object.KindDivisionByZero, "division by zero")
		}
		return &object.Integer{Value: l / r}, nil
	}
	return nil, e.newError(node, object.KindInvalidTarget, "unknown arithmetic operator %s", node.Operator)
}

func (e *Evaluator) evalRealArithmetic(node *ast.Binary, l, r float64) (object.Object, error) {
	switch node.Operator {
	case ast.Add:
		return &object.Real{Value: l + r}, nil
	case ast.Subtract:
		return &object.Real{Value: l - r}, nil
	case ast.Multiply:
		return &object.Real{Value: l * r}, nil
	case ast.Divide:
		if r == 0 {
			return nil, e.newError(node, object.KindDivisionByZero, "division by zero")
		}
		return &object.Real{Value: l / r}, nil
	}
	return nil, e.newError(node, object.KindInvalidTarget, "unknown arithmetic operator %s", node.Operator)
}

func (e *Evaluator) evalLogical(node *ast.Binary, left, right object.Object) (object.Object, error) {
	l, lok := left.(*object.Boolean)
	r, rok := right.(*object.Boolean)
	if !lok || !rok {
		return nil, e.typeMismatch(node, left, right)
	}

	switch node.Operator {
	case ast.And:
		return object.NativeBool(l.Value && r.Value), nil
	case ast.Or:
		return object.NativeBool(l.Value || r.Value), nil
	case ast.Xor:
		return object.NativeBool(l.Value != r.Value), nil
	}
	return nil, e.newError(node, object.KindInvalidTarget, "unknown logical operator %s", node.Operator)
}

func (e *Evaluator) evalRelational(node *ast.Binary, left, right object.Object) (object.Object, error) {
	// Two integers compare exactly; float64 cannot hold every int64.
	if l, ok := left.(*object.Integer); ok {
		if r, ok := right.(*object.Integer); ok {
			return e.compare(node, cmpInt(l.Value, r.Value))
		}
	}
	l, r, ok := promote(left, right)
	if !ok {
		return nil, e.typeMismatch(node, left, right)
	}
	return e.compare(node, cmpFloat(l, r))
}

func (e *Evaluator) compare(node *ast.Binary, c int) (object.Object, error) {
	switch node.Operator {
	case ast.Less:
		return object.NativeBool(c < 0), nil
	case ast.More:
		return object.NativeBool(c > 0), nil
	case ast.LessOrEqual:
		return object.NativeBool(c <= 0), nil
	case ast.MoreOrEqual:
		return object.NativeBool(c >= 0), nil
	case ast.Equal:
		return object.NativeBool(c == 0), nil
	case ast.NotEqual:
		return object.NativeBool(c != 0), nil
	}
	return nil, e.newError(node, object.KindInvalidTarget, "unknown relational operator %s", node.Operator)
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// promote converts two numeric operands to float64. It fails unless both
// are numbers.
func promote(left, right object.Object) (float64, float64, bool) {
	l, lok := toFloat(left)
	r, rok := toFloat(right)
	return l, r, lok && rok
}

func toFloat(val object.Object) (float64, bool) {
	switch val := val.(type) {
	case *object.Integer:
		return float64(val.Value), true
	case *object.Real:
		return val.Value, true
	}
	return 0, false
}

func (e *Evaluator) evalAccess(node *ast.Access) (object.Object, error) {
	target, err := e.Eval(node.Target)
	if err != nil {
		return nil, err
	}

	switch tail := node.Tail.(type) {
	case nil:
		return target, nil
	case *ast.BracketTail:
		return e.evalArrayAccess(node, target, tail)
	case *ast.DotTail:
		return e.evalTupleAccess(node, target, tail)
	case *ast.CallTail:
		return e.evalCall(node, target, tail)
	}
	return nil, e.newError(node, object.KindInvalidTarget, "unknown access %s", node.String())
}

func (e *Evaluator) evalArrayAccess(node *ast.Access, target object.Object, tail *ast.BracketTail) (object.Object, error) {
	array, ok := target.(*object.Array)
	if !ok {
		return nil, e.newError(node, object.KindNonArrayAccess, "cannot index %s, it is not an array", target.Type())
	}

	pos, err := e.evalPosition(tail)
	if err != nil {
		return nil, err
	}

	val, ok := array.Get(pos)
	if !ok {
		return nil, e.newError(tail, object.KindIndex, "array has no element at position %d", pos)
	}
	return val, nil
}

// evalPosition evaluates a bracket index to a valid 1-based position.
func (e *Evaluator) evalPosition(tail *ast.BracketTail) (int64, error) {
	index, err := e.Eval(tail.Index)
	if err != nil {
		return 0, err
	}
	i, ok := index.(*object.Integer)
	if !ok {
		return 0, e.newError(tail, object.KindTypeMismatch, "array index must be an integer, got %s", index.Type())
	}
	if i.Value < 1 {
		return 0, e.newError(tail, object.KindIndex, "array positions start at 1, got %d", i.Value)
	}
	return i.Value, nil
}

func (e *Evaluator) evalTupleAccess(node *ast.Access, target object.Object, tail *ast.DotTail) (object.Object, error) {
	tuple, ok := target.(*object.Tuple)
	if !ok {
		return nil, e.newError(node, object.KindNonTupleAccess, "cannot access %s of %s, it is not a tuple", tail.String(), target.Type())
	}

	if tail.ByPosition() {
		val, ok := tuple.ByPosition(tail.Index)
		if !ok {
			return nil, e.newError(tail, object.KindIndex, "tuple has no element at position %d", tail.Index)
		}
		return val, nil
	}

	val, ok := tuple.ByName(tail.Name)
	if !ok {
		return nil, e.newError(tail, object.KindIndex, "tuple has no element named '%s'", tail.Name)
	}
	return val, nil
}
