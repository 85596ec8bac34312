package ast

import (
	"fmt"
	"lexwalk/internal/token"
)

type BinaryOperator int

const (
	Add BinaryOperator = iota
	Subtract
	Multiply
	Divide
	And
	Or
	Xor
	Less
	More
	LessOrEqual
	MoreOrEqual
	Equal
	NotEqual
)

var binaryOperatorNames = [...]string{
	Add:         "+",
	Subtract:    "-",
	Multiply:    "*",
	Divide:      "/",
	And:         "and",
	Or:          "or",
	Xor:         "xor",
	Less:        "<",
	More:        ">",
	LessOrEqual: "<=",
	MoreOrEqual: ">=",
	Equal:       "=",
	NotEqual:    "/=",
}

func (op BinaryOperator) String() string {
	if op < 0 || int(op) >= len(binaryOperatorNames) {
		return fmt.Sprintf("BinaryOperator(%d)", int(op))
	}
	return binaryOperatorNames[op]
}

// IsArithmetic reports whether op is one of + - * /.
func (op BinaryOperator) IsArithmetic() bool {
	return op >= Add && op <= Divide
}

// IsLogical reports whether op is one of and, or, xor.
func (op BinaryOperator) IsLogical() bool {
	return op >= And && op <= Xor
}

// IsRelational reports whether op compares two numbers.
func (op BinaryOperator) IsRelational() bool {
	return op >= Less && op <= NotEqual
}

var binaryOperators = map[token.TokenType]BinaryOperator{
	token.PLUS:     Add,
	token.MINUS:    Subtract,
	token.ASTERISK: Multiply,
	token.SLASH:    Divide,
	token.AND:      And,
	token.OR:       Or,
	token.XOR:      Xor,
	token.LT:       Less,
	token.GT:       More,
	token.LT_EQ:    LessOrEqual,
	token.GT_EQ:    MoreOrEqual,
	token.EQ:       Equal,
	token.NOT_EQ:   NotEqual,
}

// LookupBinary maps an operator token to its BinaryOperator.
func LookupBinary(t token.TokenType) (BinaryOperator, bool) {
	op, ok := binaryOperators[t]
	return op, ok
}

type UnaryOperator int

const (
	Plus UnaryOperator = iota
	Minus
	Not
)

func (op UnaryOperator) String() string {
	switch op {
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Not:
		return "not"
	default:
		return fmt.Sprintf("UnaryOperator(%d)", int(op))
	}
}
