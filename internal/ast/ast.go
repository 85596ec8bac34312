package ast

import (
	"bytes"
	"lexwalk/internal/token"
	"strconv"
	"strings"
)

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
	// Pos is the token the node was built from; runtime errors report its
	// line and column.
	Pos() token.Token
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// AccessTail is the optional suffix of an Access: .name, .2, [i] or (args).
type AccessTail interface {
	Node
	tailNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	} else {
		return ""
	}
}

func (p *Program) Pos() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Token{Type: token.EOF, Line: 1, Column: 1}
}

func (p *Program) String() string {
	var out bytes.Buffer

	for _, s := range p.Statements {
		out.WriteString(s.String())
	}

	return out.String()
}

// Statements

type Declaration struct {
	Token token.Token // the token.VAR token
	Name  string
	Value Expression // nil for `var x;`
}

func (d *Declaration) statementNode()       {}
func (d *Declaration) TokenLiteral() string { return d.Token.Literal }
func (d *Declaration) Pos() token.Token     { return d.Token }
func (d *Declaration) String() string {
	var out bytes.Buffer

	out.WriteString("var " + d.Name)
	if d.Value != nil {
		out.WriteString(" := ")
		out.WriteString(d.Value.String())
	}
	out.WriteString(";")

	return out.String()
}

type Assignment struct {
	Token token.Token // the token.IDENT token of the target
	Name  string
	Value Expression
}

func (a *Assignment) statementNode()       {}
func (a *Assignment) TokenLiteral() string { return a.Token.Literal }
func (a *Assignment) Pos() token.Token     { return a.Token }
func (a *Assignment) String() string {
	return a.Name + " := " + a.Value.String() + ";"
}

// ArrayElementAssignment writes through an access such as t[2] := v.
type ArrayElementAssignment struct {
	Token  token.Token // the token.ASSIGN token
	Target *Access
	Value  Expression
}

func (a *ArrayElementAssignment) statementNode()       {}
func (a *ArrayElementAssignment) TokenLiteral() string { return a.Token.Literal }
func (a *ArrayElementAssignment) Pos() token.Token     { return a.Token }
func (a *ArrayElementAssignment) String() string {
	return a.Target.String() + " := " + a.Value.String() + ";"
}

type Print struct {
	Token  token.Token // the 'print' token
	Values []Expression
}

func (p *Print) statementNode()       {}
func (p *Print) TokenLiteral() string { return p.Token.Literal }
func (p *Print) Pos() token.Token     { return p.Token }
func (p *Print) String() string {
	return "print " + joinExpressions(p.Values) + ";"
}

type Return struct {
	Token token.Token // the 'return' token
	Value Expression  // nil for a bare return
}

func (r *Return) statementNode()       {}
func (r *Return) TokenLiteral() string { return r.Token.Literal }
func (r *Return) Pos() token.Token     { return r.Token }
func (r *Return) String() string {
	var out bytes.Buffer

	out.WriteString("return")
	if r.Value != nil {
		out.WriteString(" ")
		out.WriteString(r.Value.String())
	}
	out.WriteString(";")

	return out.String()
}

type If struct {
	Token     token.Token // the 'if' token
	Condition Expression
	Then      []Statement
	Else      []Statement // nil when there is no else branch
}

func (i *If) statementNode()       {}
func (i *If) TokenLiteral() string { return i.Token.Literal }
func (i *If) Pos() token.Token     { return i.Token }
func (i *If) String() string {
	var out bytes.Buffer

	out.WriteString("if ")
	out.WriteString(i.Condition.String())
	out.WriteString(" then ")
	writeBody(&out, i.Then)
	if i.Else != nil {
		out.WriteString(" else ")
		writeBody(&out, i.Else)
	}
	out.WriteString(" end")

	return out.String()
}

type WhileLoop struct {
	Token     token.Token // the 'while' token
	Condition Expression
	Body      []Statement
}

func (w *WhileLoop) statementNode()       {}
func (w *WhileLoop) TokenLiteral() string { return w.Token.Literal }
func (w *WhileLoop) Pos() token.Token     { return w.Token }
func (w *WhileLoop) String() string {
	var out bytes.Buffer

	out.WriteString("while ")
	out.WriteString(w.Condition.String())
	out.WriteString(" loop ")
	writeBody(&out, w.Body)
	out.WriteString(" end")

	return out.String()
}

type ForLoop struct {
	Token    token.Token // the 'for' token
	Variable string
	Iterable Expression // a *Range or any expression yielding an array or tuple
	Body     []Statement
}

func (f *ForLoop) statementNode()       {}
func (f *ForLoop) TokenLiteral() string { return f.Token.Literal }
func (f *ForLoop) Pos() token.Token     { return f.Token }
func (f *ForLoop) String() string {
	var out bytes.Buffer

	out.WriteString("for " + f.Variable + " in ")
	out.WriteString(f.Iterable.String())
	out.WriteString(" loop ")
	writeBody(&out, f.Body)
	out.WriteString(" end")

	return out.String()
}

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Pos() token.Token     { return es.Token }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String() + ";"
	}
	return ""
}

// Expressions

type Binary struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator BinaryOperator
	Right    Expression
}

func (b *Binary) expressionNode()      {}
func (b *Binary) TokenLiteral() string { return b.Token.Literal }
func (b *Binary) Pos() token.Token     { return b.Token }
func (b *Binary) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(b.Left.String())
	out.WriteString(" " + b.Operator.String() + " ")
	out.WriteString(b.Right.String())
	out.WriteString(")")

	return out.String()
}

type Unary struct {
	Token    token.Token // The prefix token, e.g. -
	Operator UnaryOperator
	Operand  Expression
}

func (u *Unary) expressionNode()      {}
func (u *Unary) TokenLiteral() string { return u.Token.Literal }
func (u *Unary) Pos() token.Token     { return u.Token }
func (u *Unary) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(u.Operator.String())
	if u.Operator == Not {
		out.WriteString(" ")
	}
	out.WriteString(u.Operand.String())
	out.WriteString(")")

	return out.String()
}

// Access applies an optional tail to a target. Chains such as a[1].x nest:
// the outer Access targets the inner one.
type Access struct {
	Token  token.Token // the first token of the target
	Target Expression
	Tail   AccessTail // nil when the access is just the target
}

func (a *Access) expressionNode()      {}
func (a *Access) TokenLiteral() string { return a.Token.Literal }
func (a *Access) Pos() token.Token     { return a.Token }
func (a *Access) String() string {
	if a.Tail == nil {
		return a.Target.String()
	}
	return a.Target.String() + a.Tail.String()
}

// DotTail addresses a tuple element by name (.x) or by 1-based position (.2).
type DotTail struct {
	Token token.Token // the '.' token
	Name  string      // empty when addressing by position
	Index int64       // 1-based, used when Name is empty
}

func (d *DotTail) tailNode()            {}
func (d *DotTail) TokenLiteral() string { return d.Token.Literal }
func (d *DotTail) Pos() token.Token     { return d.Token }
func (d *DotTail) String() string {
	if d.Name != "" {
		return "." + d.Name
	}
	return "." + strconv.FormatInt(d.Index, 10)
}

// ByPosition reports whether the tail was written as .N.
func (d *DotTail) ByPosition() bool {
	return d.Name == ""
}

type BracketTail struct {
	Token token.Token // the '[' token
	Index Expression
}

func (b *BracketTail) tailNode()            {}
func (b *BracketTail) TokenLiteral() string { return b.Token.Literal }
func (b *BracketTail) Pos() token.Token     { return b.Token }
func (b *BracketTail) String() string {
	return "[" + b.Index.String() + "]"
}

type CallTail struct {
	Token     token.Token // the '(' token
	Arguments []Expression
}

func (c *CallTail) tailNode()            {}
func (c *CallTail) TokenLiteral() string { return c.Token.Literal }
func (c *CallTail) Pos() token.Token     { return c.Token }
func (c *CallTail) String() string {
	return "(" + joinExpressions(c.Arguments) + ")"
}

type Variable struct {
	Token token.Token // the token.IDENT token
	Name  string
}

func (v *Variable) expressionNode()      {}
func (v *Variable) TokenLiteral() string { return v.Token.Literal }
func (v *Variable) Pos() token.Token     { return v.Token }
func (v *Variable) String() string       { return v.Name }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) Pos() token.Token     { return il.Token }
func (il *IntegerLiteral) String() string       { return strconv.FormatInt(il.Value, 10) }

type RealLiteral struct {
	Token token.Token
	Value float64
}

func (rl *RealLiteral) expressionNode()      {}
func (rl *RealLiteral) TokenLiteral() string { return rl.Token.Literal }
func (rl *RealLiteral) Pos() token.Token     { return rl.Token }
func (rl *RealLiteral) String() string       { return rl.Token.Literal }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BooleanLiteral) Pos() token.Token     { return b.Token }
func (b *BooleanLiteral) String() string       { return strconv.FormatBool(b.Value) }

type StringLiteral struct {
	Token token.Token
	Value string // without the surrounding quotes
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) Pos() token.Token     { return sl.Token }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

type EmptyLiteral struct {
	Token token.Token
}

func (e *EmptyLiteral) expressionNode()      {}
func (e *EmptyLiteral) TokenLiteral() string { return e.Token.Literal }
func (e *EmptyLiteral) Pos() token.Token     { return e.Token }
func (e *EmptyLiteral) String() string       { return "empty" }

// ArrayLiteral elements take positions 1..n in source order.
type ArrayLiteral struct {
	Token    token.Token // the '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) Pos() token.Token     { return al.Token }
func (al *ArrayLiteral) String() string {
	return "[" + joinExpressions(al.Elements) + "]"
}

type TupleElement struct {
	Token token.Token // the first token of the element
	Name  string      // empty for a positional element
	Value Expression
}

func (te *TupleElement) TokenLiteral() string { return te.Token.Literal }
func (te *TupleElement) Pos() token.Token     { return te.Token }
func (te *TupleElement) String() string {
	if te.Name == "" {
		return te.Value.String()
	}
	return te.Name + " := " + te.Value.String()
}

type TupleLiteral struct {
	Token    token.Token // the '{' token
	Elements []*TupleElement
}

func (tl *TupleLiteral) expressionNode()      {}
func (tl *TupleLiteral) TokenLiteral() string { return tl.Token.Literal }
func (tl *TupleLiteral) Pos() token.Token     { return tl.Token }
func (tl *TupleLiteral) String() string {
	elements := []string{}
	for _, el := range tl.Elements {
		elements = append(elements, el.String())
	}
	return "{" + strings.Join(elements, ", ") + "}"
}

// FunctionLiteral has either a statement body (func(x) is ... end) or an
// expression body (func(x) => x + 1).
type FunctionLiteral struct {
	Token      token.Token // The 'func' token
	Parameters []string
	Body       []Statement
	Expression Expression
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) Pos() token.Token     { return fl.Token }
func (fl *FunctionLiteral) String() string {
	var out bytes.Buffer

	out.WriteString("func(")
	out.WriteString(strings.Join(fl.Parameters, ", "))
	out.WriteString(")")
	if fl.Expression != nil {
		out.WriteString(" => ")
		out.WriteString(fl.Expression.String())
		return out.String()
	}
	out.WriteString(" is ")
	writeBody(&out, fl.Body)
	out.WriteString(" end")

	return out.String()
}

type ReadInt struct {
	Token token.Token
}

func (r *ReadInt) expressionNode()      {}
func (r *ReadInt) TokenLiteral() string { return r.Token.Literal }
func (r *ReadInt) Pos() token.Token     { return r.Token }
func (r *ReadInt) String() string       { return "readInt" }

type ReadReal struct {
	Token token.Token
}

func (r *ReadReal) expressionNode()      {}
func (r *ReadReal) TokenLiteral() string { return r.Token.Literal }
func (r *ReadReal) Pos() token.Token     { return r.Token }
func (r *ReadReal) String() string       { return "readReal" }

type ReadString struct {
	Token token.Token
}

func (r *ReadString) expressionNode()      {}
func (r *ReadString) TokenLiteral() string { return r.Token.Literal }
func (r *ReadString) Pos() token.Token     { return r.Token }
func (r *ReadString) String() string       { return "readString" }

// Range only appears in a for-loop header: for i in low..high loop.
type Range struct {
	Token token.Token // the '..' token
	Low   Expression
	High  Expression
}

func (r *Range) expressionNode()      {}
func (r *Range) TokenLiteral() string { return r.Token.Literal }
func (r *Range) Pos() token.Token     { return r.Token }
func (r *Range) String() string {
	return r.Low.String() + ".." + r.High.String()
}

func joinExpressions(exprs []Expression) string {
	parts := []string{}
	for _, e := range exprs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}

func writeBody(out *bytes.Buffer, body []Statement) {
	for i, s := range body {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(s.String())
	}
}
