package parser

import (
	"lexwalk/internal/ast"
	"lexwalk/internal/lexer"
	"strings"
	"testing"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.Lex(input))
	program := p.ParseProgram()
	checkParserErrors(t, p)
	return program
}

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errors := p.Errors()
	if len(errors) == 0 {
		return
	}

	t.Errorf("parser has %d errors", len(errors))
	for _, msg := range errors {
		t.Errorf("parser error: %s", msg)
	}
	t.FailNow()
}

func TestDeclarations(t *testing.T) {
	program := parse(t, "var a := 3; var b; var c := a * 2")

	if len(program.Statements) != 3 {
		t.Fatalf("program.Statements does not contain 3 statements. got=%d", len(program.Statements))
	}

	tests := []struct {
		name     string
		hasValue bool
	}{
		{"a", true},
		{"b", false},
		{"c", true},
	}

	for i, tt := range tests {
		decl, ok := program.Statements[i].(*ast.Declaration)
		if !ok {
			t.Fatalf("statement %d is not *ast.Declaration. got=%T", i, program.Statements[i])
		}
		if decl.Name != tt.name {
			t.Errorf("statement %d: name wrong. expected=%q, got=%q", i, tt.name, decl.Name)
		}
		if (decl.Value != nil) != tt.hasValue {
			t.Errorf("statement %d: value presence wrong. expected=%t", i, tt.hasValue)
		}
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a + b * c", "(a + (b * c));"},
		{"a * b + c", "((a * b) + c);"},
		{"a + b - c", "((a + b) - c);"},
		{"a / b * c", "((a / b) * c);"},
		{"-a * b", "((-a) * b);"},
		{"+a - b", "((+a) - b);"},
		{"not a and b", "((not a) and b);"},
		{"a < b and c > d", "((a < b) and (c > d));"},
		{"a + b = c", "((a + b) = c);"},
		{"a /= b or c <= d", "((a /= b) or (c <= d));"},
		{"a xor b or c", "((a xor b) or c);"},
		{"(a + b) * c", "((a + b) * c);"},
		{"t[1] + t.x", "(t[1] + t.x);"},
		{"f(1, 2) * 3", "(f(1, 2) * 3);"},
		{"a.2", "a.2;"},
		{"t[1].b", "t[1].b;"},
		{"-t[1]", "(-t[1]);"},
		{"f()(1)", "f()(1);"},
	}

	for _, tt := range tests {
		program := parse(t, tt.input)
		if program.String() != tt.expected {
			t.Errorf("%q: expected=%q, got=%q", tt.input, tt.expected, program.String())
		}
	}
}

func TestLiterals(t *testing.T) {
	program := parse(t, `print 1, 2.5, true, false, "hi", 'there', empty, readInt, readReal, readString`)

	stmt, ok := program.Statements[0].(*ast.Print)
	if !ok {
		t.Fatalf("statement is not *ast.Print. got=%T", program.Statements[0])
	}
	if len(stmt.Values) != 10 {
		t.Fatalf("expected 10 values, got=%d", len(stmt.Values))
	}

	if lit := stmt.Values[0].(*ast.IntegerLiteral); lit.Value != 1 {
		t.Errorf("integer wrong. got=%d", lit.Value)
	}
	if lit := stmt.Values[1].(*ast.RealLiteral); lit.Value != 2.5 {
		t.Errorf("real wrong. got=%f", lit.Value)
	}
	if lit := stmt.Values[2].(*ast.BooleanLiteral); !lit.Value {
		t.Errorf("expected true")
	}
	if lit := stmt.Values[3].(*ast.BooleanLiteral); lit.Value {
		t.Errorf("expected false")
	}
	if lit := stmt.Values[4].(*ast.StringLiteral); lit.Value != "hi" {
		t.Errorf("double quoted string wrong. got=%q", lit.Value)
	}
	if lit := stmt.Values[5].(*ast.StringLiteral); lit.Value != "there" {
		t.Errorf("single quoted string wrong. got=%q", lit.Value)
	}
	if _, ok := stmt.Values[6].(*ast.EmptyLiteral); !ok {
		t.Errorf("expected *ast.EmptyLiteral. got=%T", stmt.Values[6])
	}
	if _, ok := stmt.Values[7].(*ast.ReadInt); !ok {
		t.Errorf("expected *ast.ReadInt. got=%T", stmt.Values[7])
	}
	if _, ok := stmt.Values[8].(*ast.ReadReal); !ok {
		t.Errorf("expected *ast.ReadReal. got=%T", stmt.Values[8])
	}
	if _, ok := stmt.Values[9].(*ast.ReadString); !ok {
		t.Errorf("expected *ast.ReadString. got=%T", stmt.Values[9])
	}
}

func TestAssignments(t *testing.T) {
	program := parse(t, "x := 1; t[2] := 3; t.a := 4")

	assign, ok := program.Statements[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("statement 0 is not *ast.Assignment. got=%T", program.Statements[0])
	}
	if assign.Name != "x" {
		t.Errorf("assignment name wrong. got=%q", assign.Name)
	}

	elem, ok := program.Statements[1].(*ast.ArrayElementAssignment)
	if !ok {
		t.Fatalf("statement 1 is not *ast.ArrayElementAssignment. got=%T", program.Statements[1])
	}
	if _, ok := elem.Target.Tail.(*ast.BracketTail); !ok {
		t.Errorf("expected a bracket tail. got=%T", elem.Target.Tail)
	}

	// Any access is accepted here; the evaluator rejects non-bracket tails.
	dot, ok := program.Statements[2].(*ast.ArrayElementAssignment)
	if !ok {
		t.Fatalf("statement 2 is not *ast.ArrayElementAssignment. got=%T", program.Statements[2])
	}
	if _, ok := dot.Target.Tail.(*ast.DotTail); !ok {
		t.Errorf("expected a dot tail. got=%T", dot.Target.Tail)
	}
}

func TestIfStatement(t *testing.T) {
	program := parse(t, "var a := 4; if a > 5 then var b := 2*a; print b; else var b := 100*a; print b; end")

	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements. got=%d", len(program.Statements))
	}
	stmt, ok := program.Statements[1].(*ast.If)
	if !ok {
		t.Fatalf("statement is not *ast.If. got=%T", program.Statements[1])
	}
	if stmt.Condition.String() != "(a > 5)" {
		t.Errorf("condition wrong. got=%q", stmt.Condition.String())
	}
	if len(stmt.Then) != 2 || len(stmt.Else) != 2 {
		t.Errorf("branches wrong. then=%d else=%d", len(stmt.Then), len(stmt.Else))
	}
}

func TestIfWithoutElse(t *testing.T) {
	program := parse(t, "if true then print 1 end print 2")

	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements. got=%d", len(program.Statements))
	}
	stmt := program.Statements[0].(*ast.If)
	if stmt.Else != nil {
		t.Errorf("expected no else branch. got=%v", stmt.Else)
	}

	program = parse(t, "if true then else end")
	stmt = program.Statements[0].(*ast.If)
	if stmt.Else == nil || len(stmt.Else) != 0 {
		t.Errorf("expected an empty else branch. got=%v", stmt.Else)
	}
}

func TestLoops(t *testing.T) {
	program := parse(t, `
var i := 0
while i < 3 loop i := i + 1 end
for j in 1..i loop print j end
for v in [1, 2] loop print v end
`)

	if len(program.Statements) != 4 {
		t.Fatalf("expected 4 statements. got=%d", len(program.Statements))
	}

	while, ok := program.Statements[1].(*ast.WhileLoop)
	if !ok {
		t.Fatalf("statement 1 is not *ast.WhileLoop. got=%T", program.Statements[1])
	}
	if len(while.Body) != 1 {
		t.Errorf("while body wrong. got=%d statements", len(while.Body))
	}

	ranged, ok := program.Statements[2].(*ast.ForLoop)
	if !ok {
		t.Fatalf("statement 2 is not *ast.ForLoop. got=%T", program.Statements[2])
	}
	rng, ok := ranged.Iterable.(*ast.Range)
	if !ok {
		t.Fatalf("expected a range. got=%T", ranged.Iterable)
	}
	if ranged.Variable != "j" || rng.String() != "1..i" {
		t.Errorf("for header wrong. got=%s in %s", ranged.Variable, rng.String())
	}

	overArray := program.Statements[3].(*ast.ForLoop)
	if _, ok := overArray.Iterable.(*ast.ArrayLiteral); !ok {
		t.Errorf("expected an array iterable. got=%T", overArray.Iterable)
	}
}

func TestFunctionLiterals(t *testing.T) {
	tests := []struct {
		input        string
		params       []string
		isExpression bool
		bodyLen      int
	}{
		{"var f := func(a, b) is return a + b end", []string{"a", "b"}, false, 1},
		{"var f := func(x) => x * 2", []string{"x"}, true, 0},
		{"var f := func() is end", []string{}, false, 0},
		{"var f := func is print 1; print 2 end", []string{}, false, 2},
	}

	for _, tt := range tests {
		program := parse(t, tt.input)
		decl := program.Statements[0].(*ast.Declaration)
		fn, ok := decl.Value.(*ast.FunctionLiteral)
		if !ok {
			t.Fatalf("%q: value is not *ast.FunctionLiteral. got=%T", tt.input, decl.Value)
		}
		if strings.Join(fn.Parameters, ",") != strings.Join(tt.params, ",") {
			t.Errorf("%q: parameters wrong. got=%v", tt.input, fn.Parameters)
		}
		if (fn.Expression != nil) != tt.isExpression {
			t.Errorf("%q: expression body presence wrong", tt.input)
		}
		if len(fn.Body) != tt.bodyLen {
			t.Errorf("%q: body length wrong. expected=%d, got=%d", tt.input, tt.bodyLen, len(fn.Body))
		}
	}
}

func TestReturn(t *testing.T) {
	program := parse(t, "var f := func() is return end; return; return 1")

	fn := program.Statements[0].(*ast.Declaration).Value.(*ast.FunctionLiteral)
	if ret := fn.Body[0].(*ast.Return); ret.Value != nil {
		t.Errorf("expected a bare return in the body")
	}
	if ret := program.Statements[1].(*ast.Return); ret.Value != nil {
		t.Errorf("expected a bare return")
	}
	if ret := program.Statements[2].(*ast.Return); ret.Value == nil || ret.Value.String() != "1" {
		t.Errorf("expected return 1")
	}
}

func TestTupleLiteral(t *testing.T) {
	program := parse(t, "var t := {a := 1, 2, b := [3]}; var e := {}")

	tuple := program.Statements[0].(*ast.Declaration).Value.(*ast.TupleLiteral)
	names := []string{"a", "", "b"}
	if len(tuple.Elements) != len(names) {
		t.Fatalf("expected %d elements. got=%d", len(names), len(tuple.Elements))
	}
	for i, name := range names {
		if tuple.Elements[i].Name != name {
			t.Errorf("element %d: name wrong. expected=%q, got=%q", i, name, tuple.Elements[i].Name)
		}
	}

	empty := program.Statements[1].(*ast.Declaration).Value.(*ast.TupleLiteral)
	if len(empty.Elements) != 0 {
		t.Errorf("expected an empty tuple")
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"var := 1", "[  1: 5] expected next token to be IDENT, got ':=' instead"},
		{"if a then print a", "[  1: 1] missing END for 'if'"},
		{"while a print a end", "[  1: 9] expected next token to be LOOP, got 'print' instead"},
		{"1 := 2", "[  1: 3] cannot assign to 1"},
		{"print", "unexpected end of input"},
		{"end", "[  1: 1] unexpected 'end'"},
		{"var f := func(a, a) => a", "duplicate parameter 'a'"},
		{"var f := func(a) a", "expected 'is' or '=>'"},
		{"t.", "expected a name or a position after '.'"},
		{"var t := {1 2}", "expected next token to be ,"},
	}

	for _, tt := range tests {
		p := New(lexer.Lex(tt.input))
		p.ParseProgram()

		errors := p.Errors()
		if len(errors) == 0 {
			t.Errorf("%q: expected a parser error", tt.input)
			continue
		}
		if !strings.Contains(errors[0], tt.expected) {
			t.Errorf("%q: expected error containing %q, got %q", tt.input, tt.expected, errors[0])
		}
	}
}

func TestRenderASTAsJSON(t *testing.T) {
	program := parse(t, "var a := 1 + 2")

	out, err := RenderASTAsJSON(program)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{`"type": "Declaration"`, `"operator": "+"`, `"line": 1`, `"value": 2`} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON output is missing %s:\n%s", want, out)
		}
	}
}

func TestRenderASTAsText(t *testing.T) {
	program := parse(t, "if a then print 1 else while b loop x := -x end end")

	expected := "if a then\n" +
		"  print 1\n" +
		"else\n" +
		"  while b loop\n" +
		"    x := (-x)\n" +
		"  end\n" +
		"end"

	if got := RenderASTAsText(program, 0); got != expected {
		t.Errorf("unexpected rendering.\nwant:\n%s\ngot:\n%s", expected, got)
	}
}
