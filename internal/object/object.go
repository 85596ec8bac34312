package object

import (
	"bytes"
	"lexwalk/internal/ast"
	"math"
	"strconv"
	"strings"
)

type ObjectType string

const (
	INTEGER_OBJ  = "INTEGER"
	REAL_OBJ     = "REAL"
	BOOLEAN_OBJ  = "BOOLEAN"
	STRING_OBJ   = "STRING"
	EMPTY_OBJ    = "EMPTY"
	ARRAY_OBJ    = "ARRAY"
	TUPLE_OBJ    = "TUPLE"
	FUNCTION_OBJ = "FUNCTION"

	RETURN_VALUE_OBJ = "RETURN_VALUE"
)

var (
	EMPTY = &Empty{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type Object interface {
	Type() ObjectType
	Inspect() string
}

// NativeBool returns the shared TRUE or FALSE instance.
func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

type Real struct {
	Value float64
}

func (r *Real) Type() ObjectType { return REAL_OBJ }

// Inspect always renders a decimal point so that reals stay visibly distinct
// from integers: 3.0, not 3.
func (r *Real) Inspect() string {
	if math.IsInf(r.Value, 0) || math.IsNaN(r.Value) {
		return strconv.FormatFloat(r.Value, 'g', -1, 64)
	}
	s := strconv.FormatFloat(r.Value, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// Empty is the value of a declaration without initializer and the result of
// a function that returns nothing.
type Empty struct{}

func (e *Empty) Type() ObjectType { return EMPTY_OBJ }
func (e *Empty) Inspect() string  { return "empty" }

// Array maps 1-based positions to values and remembers the order in which
// positions were first set. Arrays are reference values: every variable
// holding the same *Array observes writes made through any of them.
type Array struct {
	positions []int64
	elements  map[int64]Object
}

// NewArray places elems at positions 1..len(elems).
func NewArray(elems ...Object) *Array {
	a := &Array{elements: make(map[int64]Object, len(elems))}
	for i, el := range elems {
		a.Set(int64(i+1), el)
	}
	return a
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	var out bytes.Buffer

	elements := []string{}
	for _, pos := range a.positions {
		elements = append(elements, a.elements[pos].Inspect())
	}

	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")

	return out.String()
}

func (a *Array) Get(pos int64) (Object, bool) {
	v, ok := a.elements[pos]
	return v, ok
}

// Set overwrites the value at pos, or appends pos when it is new.
func (a *Array) Set(pos int64, v Object) {
	if _, ok := a.elements[pos]; !ok {
		a.positions = append(a.positions, pos)
	}
	a.elements[pos] = v
}

func (a *Array) Len() int { return len(a.positions) }

// Positions returns the positions in insertion order.
func (a *Array) Positions() []int64 {
	out := make([]int64, len(a.positions))
	copy(out, a.positions)
	return out
}

// Values returns the element values in insertion order.
func (a *Array) Values() []Object {
	out := make([]Object, 0, len(a.positions))
	for _, pos := range a.positions {
		out = append(out, a.elements[pos])
	}
	return out
}

// Union returns a new array holding a's positions overwritten and extended
// by other's. Neither operand is modified.
func (a *Array) Union(other *Array) *Array {
	out := &Array{elements: make(map[int64]Object, a.Len()+other.Len())}
	for _, pos := range a.positions {
		out.Set(pos, a.elements[pos])
	}
	for _, pos := range other.positions {
		out.Set(pos, other.elements[pos])
	}
	return out
}

type TupleElement struct {
	Name  string // empty for positional elements
	Value Object
}

// Tuple is an ordered sequence of elements addressable by 1-based position
// and, when named, by name. Like arrays, tuples are shared by reference.
type Tuple struct {
	Elements []TupleElement
}

func (t *Tuple) Type() ObjectType { return TUPLE_OBJ }
func (t *Tuple) Inspect() string {
	var out bytes.Buffer

	elements := []string{}
	for _, el := range t.Elements {
		if el.Name != "" {
			elements = append(elements, el.Name+" := "+el.Value.Inspect())
		} else {
			elements = append(elements, el.Value.Inspect())
		}
	}

	out.WriteString("{")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("}")

	return out.String()
}

// ByName returns the first element called name.
func (t *Tuple) ByName(name string) (Object, bool) {
	for _, el := range t.Elements {
		if el.Name == name {
			return el.Value, true
		}
	}
	return nil, false
}

// ByPosition returns the element at the 1-based position pos.
func (t *Tuple) ByPosition(pos int64) (Object, bool) {
	if pos < 1 || pos > int64(len(t.Elements)) {
		return nil, false
	}
	return t.Elements[pos-1].Value, true
}

// Concat returns a new tuple with t's elements followed by other's.
func (t *Tuple) Concat(other *Tuple) *Tuple {
	elements := make([]TupleElement, 0, len(t.Elements)+len(other.Elements))
	elements = append(elements, t.Elements...)
	elements = append(elements, other.Elements...)
	return &Tuple{Elements: elements}
}

// Function is a function literal turned into a value. The body is the
// original AST; calls re-evaluate it without modifying it.
type Function struct {
	Parameters []string
	Body       []ast.Statement
	Expression ast.Expression // set for func(x) => expr
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	return "func(" + strings.Join(f.Parameters, ", ") + ")"
}

// ReturnValue carries the operand of a return statement while it unwinds to
// the enclosing call or the program root. It is never bound to a variable.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }
