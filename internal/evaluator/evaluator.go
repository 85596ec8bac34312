package evaluator

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"lexwalk/internal/ast"
	"lexwalk/internal/object"
	"lexwalk/internal/util"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Evaluator walks an AST against a scope stack. The tree is never modified,
// so the same statements can be evaluated any number of times.
type Evaluator struct {
	env      *object.Environment
	out      io.Writer
	in       *bufio.Reader
	log      *slog.Logger
	maxDepth int

	calls []object.StackFrame // active calls, innermost last
}

type Option func(*Evaluator)

// WithOutput sets where print statements write. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Evaluator) { e.out = w }
}

// WithInput sets where readInt, readReal and readString read lines from.
// Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(e *Evaluator) { e.in = bufio.NewReader(r) }
}

// WithEnvironment evaluates against an existing scope stack, e.g. one kept
// alive across REPL lines.
func WithEnvironment(env *object.Environment) Option {
	return func(e *Evaluator) { e.env = env }
}

func WithLogger(log *slog.Logger) Option {
	return func(e *Evaluator) { e.log = log }
}

// WithMaxCallDepth bounds the number of nested function calls.
func WithMaxCallDepth(depth int) Option {
	return func(e *Evaluator) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		out:      os.Stdout,
		log:      slog.Default(),
		maxDepth: util.DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.env == nil {
		e.env = object.NewEnvironment()
	}
	if e.in == nil {
		e.in = bufio.NewReader(os.Stdin)
	}
	return e
}

func (e *Evaluator) Environment() *object.Environment {
	return e.env
}

// Result is the outcome of running a whole program.
type Result struct {
	Value    object.Object // last statement value, or the top-level return value
	Returned bool          // the program stopped at a top-level return
	Err      error         // a *object.RuntimeError when evaluation failed
}

func (r Result) Ok() bool {
	return r.Err == nil
}

// RuntimeError unwraps Err.
func (r Result) RuntimeError() (*object.RuntimeError, bool) {
	var rtErr *object.RuntimeError
	ok := errors.As(r.Err, &rtErr)
	return rtErr, ok
}

// Run evaluates program statement by statement. The first error aborts the
// run; a top-level return ends it successfully.
func (e *Evaluator) Run(program *ast.Program) Result {
	start := time.Now()
	result := Result{Value: object.EMPTY}

	for _, statement := range program.Statements {
		val, err := e.Eval(statement)
		if err != nil {
			result.Err = err
			break
		}
		if rv, ok := val.(*object.ReturnValue); ok {
			result.Value = rv.Value
			result.Returned = true
			break
		}
		result.Value = val
	}

	if rtErr, ok := result.RuntimeError(); ok {
		e.log.Info("evaluation failed",
			slog.String("kind", string(rtErr.Kind)),
			slog.Int("line", rtErr.Line),
			slog.Int("column", rtErr.Column),
			slog.String("error", rtErr.Message))
	} else {
		e.log.Debug("evaluation finished",
			slog.Int("statements", len(program.Statements)),
			slog.Bool("returned", result.Returned),
			slog.Duration("elapsed", time.Since(start)))
	}

	return result
}

// Eval reduces a single node. Statements that produce no value yield
// object.EMPTY; a return statement yields an *object.ReturnValue.
func (e *Evaluator) Eval(node ast.Node) (object.Object, error) {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		res := e.Run(node)
		return res.Value, res.Err

	case *ast.Declaration:
		return e.evalDeclaration(node)

	case *ast.Assignment:
		val, err := e.Eval(node.Value)
		if err != nil {
			return nil, err
		}
		if err := e.env.Set(node.Name, val); err != nil {
			return nil, e.newError(node, object.KindUnassignable, "cannot assign to undeclared variable '%s'%s", node.Name, e.didYouMean(node.Name))
		}
		return object.EMPTY, nil

	case *ast.ArrayElementAssignment:
		return e.evalArrayElementAssignment(node)

	case *ast.Print:
		return e.evalPrint(node)

	case *ast.Return:
		if node.Value == nil {
			return &object.ReturnValue{Value: object.EMPTY}, nil
		}
		val, err := e.Eval(node.Value)
		if err != nil {
			return nil, err
		}
		return &object.ReturnValue{Value: val}, nil

	case *ast.If:
		return e.evalIf(node)

	case *ast.WhileLoop:
		return e.evalWhileLoop(node)

	case *ast.ForLoop:
		return e.evalForLoop(node)

	case *ast.ExpressionStatement:
		return e.Eval(node.Expression)

	// Expressions
	case *ast.IntegerLiteral:
		return &object.Integer{Value: node.Value}, nil

	case *ast.RealLiteral:
		return &object.Real{Value: node.Value}, nil

	case *ast.BooleanLiteral:
		return object.NativeBool(node.Value), nil

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}, nil

	case *ast.EmptyLiteral:
		return object.EMPTY, nil

	case *ast.Variable:
		val, ok := e.env.Get(node.Name)
		if !ok {
			return nil, e.newError(node, object.KindUndeclared, "variable '%s' is not declared%s", node.Name, e.didYouMean(node.Name))
		}
		return val, nil

	case *ast.ArrayLiteral:
		elements, err := e.evalExpressions(node.Elements)
		if err != nil {
			return nil, err
		}
		return object.NewArray(elements...), nil

	case *ast.TupleLiteral:
		return e.evalTupleLiteral(node)

	case *ast.FunctionLiteral:
		return &object.Function{Parameters: node.Parameters, Body: node.Body, Expression: node.Expression}, nil

	case *ast.Unary:
		operand, err := e.Eval(node.Operand)
		if err != nil {
			return nil, err
		}
		return e.evalUnaryExpression(node, operand)

	case *ast.Binary:
		left, err := e.Eval(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := e.Eval(node.Right)
		if err != nil {
			return nil, err
		}
		return e.evalBinaryExpression(node, left, right)

	case *ast.Access:
		return e.evalAccess(node)

	case *ast.ReadInt:
		return e.readInt(node)

	case *ast.ReadReal:
		return e.readReal(node)

	case *ast.ReadString:
		return e.readString(node)

	case *ast.Range:
		return nil, e.newError(node, object.KindTypeMismatch, "a range is only allowed in a for loop header")
	}

	return nil, e.newError(node, object.KindInvalidTarget, "cannot evaluate %T", node)
}

// evalStatements runs statements in order. It stops at the first error and
// passes a *object.ReturnValue up unchanged.
func (e *Evaluator) evalStatements(statements []ast.Statement) (object.Object, error) {
	for _, statement := range statements {
		val, err := e.Eval(statement)
		if err != nil {
			return nil, err
		}
		if rv, ok := val.(*object.ReturnValue); ok {
			return rv, nil
		}
	}
	return object.EMPTY, nil
}

func (e *Evaluator) evalDeclaration(node *ast.Declaration) (object.Object, error) {
	var val object.Object = object.EMPTY
	if node.Value != nil {
		var err error
		if val, err = e.Eval(node.Value); err != nil {
			return nil, err
		}
	}

	if err := e.env.Declare(node.Name, val); err != nil {
		return nil, e.newError(node, object.KindRedeclaration, "variable '%s' is already declared in this scope", node.Name)
	}
	return object.EMPTY, nil
}

func (e *Evaluator) evalArrayElementAssignment(node *ast.ArrayElementAssignment) (object.Object, error) {
	tail, ok := node.Target.Tail.(*ast.BracketTail)
	if !ok {
		return nil, e.newError(node, object.KindInvalidTarget, "cannot assign to %s, only array elements can be assigned", node.Target.String())
	}

	container, err := e.Eval(node.Target.Target)
	if err != nil {
		return nil, err
	}
	array, ok := container.(*object.Array)
	if !ok {
		return nil, e.newError(node.Target, object.KindNonArrayAccess, "cannot index %s, it is not an array", container.Type())
	}

	pos, err := e.evalPosition(tail)
	if err != nil {
		return nil, err
	}

	val, err := e.Eval(node.Value)
	if err != nil {
		return nil, err
	}

	array.Set(pos, val)
	return object.EMPTY, nil
}

func (e *Evaluator) evalPrint(node *ast.Print) (object.Object, error) {
	values, err := e.evalExpressions(node.Values)
	if err != nil {
		return nil, err
	}

	parts := make([]string, len(values))
	for i, val := range values {
		parts[i] = val.Inspect()
	}
	if _, err := fmt.Fprintln(e.out, strings.Join(parts, " ")); err != nil {
		return nil, e.newError(node, object.KindOutput, "print failed: %s", err)
	}
	return object.EMPTY, nil
}

func (e *Evaluator) evalIf(node *ast.If) (object.Object, error) {
	condition, err := e.evalCondition(node.Condition)
	if err != nil {
		return nil, err
	}

	if condition {
		return e.evalStatements(node.Then)
	}
	return e.evalStatements(node.Else)
}

func (e *Evaluator) evalCondition(expr ast.Expression) (bool, error) {
	val, err := e.Eval(expr)
	if err != nil {
		return false, err
	}
	b, ok := val.(*object.Boolean)
	if !ok {
		return false, e.newError(expr, object.KindNonBooleanCondition, "condition is not boolean, got %s", val.Type())
	}
	return b.Value, nil
}

// evalInFrame runs body in a fresh innermost frame, optionally binding one
// name first. The frame is removed again whatever the outcome.
func (e *Evaluator) evalInFrame(node ast.Node, body []ast.Statement, name string, val object.Object) (object.Object, error) {
	e.env.PushFrame()
	defer e.popFrame()

	if name != "" {
		if err := e.env.Declare(name, val); err != nil {
			return nil, e.newError(node, object.KindRedeclaration, "variable '%s' is already declared in this scope", name)
		}
	}
	return e.evalStatements(body)
}

func (e *Evaluator) popFrame() {
	if err := e.env.PopFrame(); err != nil {
		e.log.Error("unbalanced scope stack", slog.Any("error", err))
	}
}

func (e *Evaluator) evalWhileLoop(node *ast.WhileLoop) (object.Object, error) {
	for {
		condition, err := e.evalCondition(node.Condition)
		if err != nil {
			return nil, err
		}
		if !condition {
			return object.EMPTY, nil
		}

		val, err := e.evalInFrame(node, node.Body, "", nil)
		if err != nil {
			return nil, err
		}
		if rv, ok := val.(*object.ReturnValue); ok {
			return rv, nil
		}
	}
}

func (e *Evaluator) evalForLoop(node *ast.ForLoop) (object.Object, error) {
	if rng, ok := node.Iterable.(*ast.Range); ok {
		return e.evalRangeLoop(node, rng)
	}

	iterable, err := e.Eval(node.Iterable)
	if err != nil {
		return nil, err
	}

	var values []object.Object
	switch it := iterable.(type) {
	case *object.Array:
		values = it.Values()
	case *object.Tuple:
		for _, el := range it.Elements {
			values = append(values, el.Value)
		}
	default:
		return nil, e.newError(node.Iterable, object.KindTypeMismatch, "cannot iterate over %s", iterable.Type())
	}

	for _, val := range values {
		res, err := e.evalInFrame(node, node.Body, node.Variable, val)
		if err != nil {
			return nil, err
		}
		if rv, ok := res.(*object.ReturnValue); ok {
			return rv, nil
		}
	}
	return object.EMPTY, nil
}

func (e *Evaluator) evalRangeLoop(node *ast.ForLoop, rng *ast.Range) (object.Object, error) {
	low, err := e.evalRangeBound(rng.Low)
	if err != nil {
		return nil, err
	}
	high, err := e.evalRangeBound(rng.High)
	if err != nil {
		return nil, err
	}

	for i := low; i <= high; i++ {
		res, err := e.evalInFrame(node, node.Body, node.Variable, &object.Integer{Value: i})
		if err != nil {
			return nil, err
		}
		if rv, ok := res.(*object.ReturnValue); ok {
			return rv, nil
		}
		if i == high {
			break // i++ would overflow at the int64 maximum
		}
	}
	return object.EMPTY, nil
}

func (e *Evaluator) evalRangeBound(expr ast.Expression) (int64, error) {
	val, err := e.Eval(expr)
	if err != nil {
		return 0, err
	}
	i, ok := val.(*object.Integer)
	if !ok {
		return 0, e.newError(expr, object.KindTypeMismatch, "range bounds must be integers, got %s", val.Type())
	}
	return i.Value, nil
}

func (e *Evaluator) evalExpressions(exps []ast.Expression) ([]object.Object, error) {
	result := make([]object.Object, 0, len(exps))

	for _, exp := range exps {
		evaluated, err := e.Eval(exp)
		if err != nil {
			return nil, err
		}
		result = append(result, evaluated)
	}

	return result, nil
}

func (e *Evaluator) evalTupleLiteral(node *ast.TupleLiteral) (object.Object, error) {
	elements := make([]object.TupleElement, 0, len(node.Elements))
	for _, el := range node.Elements {
		val, err := e.Eval(el.Value)
		if err != nil {
			return nil, err
		}
		elements = append(elements, object.TupleElement{Name: el.Name, Value: val})
	}
	return &object.Tuple{Elements: elements}, nil
}

func (e *Evaluator) didYouMean(name string) string {
	if suggestion := e.env.Suggest(name); suggestion != "" {
		return fmt.Sprintf(", did you mean '%s'?", suggestion)
	}
	return ""
}

// newError builds a runtime error positioned at node and records the calls
// active at that moment, innermost first.
func (e *Evaluator) newError(node ast.Node, kind object.ErrorKind, format string, a ...interface{}) *object.RuntimeError {
	tok := node.Pos()
	trace := make([]object.StackFrame, len(e.calls))
	for i, frame := range e.calls {
		trace[len(e.calls)-1-i] = frame
	}
	return &object.RuntimeError{
		Kind:       kind,
		Message:    fmt.Sprintf(format, a...),
		Line:       tok.Line,
		Column:     tok.Column,
		StackTrace: trace,
	}
}
