package evaluator

import (
	"lexwalk/internal/ast"
	"lexwalk/internal/object"
	"log/slog"
)

const anonymousFunction = "<anonymous>"

func (e *Evaluator) evalCall(node *ast.Access, target object.Object, tail *ast.CallTail) (object.Object, error) {
	fn, ok := target.(*object.Function)
	if !ok {
		return nil, e.newError(node, object.KindNotCallable, "%s is not a function", target.Type())
	}

	args, err := e.evalExpressions(tail.Arguments)
	if err != nil {
		return nil, err
	}

	name := anonymousFunction
	if v, ok := node.Target.(*ast.Variable); ok {
		name = v.Name
	}

	return e.applyFunction(node, name, fn, args)
}

// applyFunction runs fn in a new innermost frame holding its parameters.
// Bodies see the frames below them, so free names resolve against the
// caller's scopes at call time.
func (e *Evaluator) applyFunction(call *ast.Access, name string, fn *object.Function, args []object.Object) (object.Object, error) {
	if len(args) != len(fn.Parameters) {
		return nil, e.newError(call, object.KindArity, "function %s expects %d arguments, got %d",
			name, len(fn.Parameters), len(args))
	}
	if len(e.calls) >= e.maxDepth {
		return nil, e.newError(call, object.KindCallDepth, "maximum call depth of %d exceeded calling %s", e.maxDepth, name)
	}

	site := call.Pos()
	e.calls = append(e.calls, object.StackFrame{Function: name, Line: site.Line, Column: site.Column})
	e.env.PushFrame()
	e.log.Debug("call", slog.String("function", name), slog.Int("depth", len(e.calls)))
	defer func() {
		e.popFrame()
		e.calls = e.calls[:len(e.calls)-1]
	}()

	for i, param := range fn.Parameters {
		if err := e.env.Declare(param, args[i]); err != nil {
			return nil, e.newError(call, object.KindRedeclaration, "parameter '%s' is declared twice", param)
		}
	}

	if fn.Expression != nil {
		return e.Eval(fn.Expression)
	}

	result, err := e.evalStatements(fn.Body)
	if err != nil {
		return nil, err
	}
	if rv, ok := result.(*object.ReturnValue); ok {
		return rv.Value, nil
	}
	return object.EMPTY, nil
}
