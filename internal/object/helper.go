package object

import (
	"bytes"
	"fmt"
	"lexwalk/internal/util"
)

// ErrorKind classifies runtime faults.
type ErrorKind string

const (
	KindRedeclaration       ErrorKind = "redeclaration"
	KindUndeclared          ErrorKind = "undeclared variable"
	KindUnassignable        ErrorKind = "unassignable"
	KindTypeMismatch        ErrorKind = "type mismatch"
	KindNonArrayAccess      ErrorKind = "non-array access"
	KindNonTupleAccess      ErrorKind = "non-tuple access"
	KindNonBooleanCondition ErrorKind = "non-boolean condition"
	KindNotCallable         ErrorKind = "not callable"
	KindArity               ErrorKind = "arity"
	KindIndex               ErrorKind = "index"
	KindDivisionByZero      ErrorKind = "division by zero"
	KindInput               ErrorKind = "input"
	KindOutput              ErrorKind = "output"
	KindCallDepth           ErrorKind = "call depth"
	KindInvalidTarget       ErrorKind = "invalid target"
)

// StackFrame records one active function call.
type StackFrame struct {
	Function string
	Line     int
	Column   int
}

// RuntimeError is the single failure value of evaluation. It is returned as
// an error and travels unchanged up to the program root.
type RuntimeError struct {
	Kind       ErrorKind
	Message    string
	Line       int
	Column     int
	StackTrace []StackFrame // innermost call first
}

func (re *RuntimeError) Error() string {
	if re.Line > 0 {
		return fmt.Sprintf("[%3d:%2d] %s", re.Line, re.Column, re.Message)
	}
	return re.Message
}

// RenderStacktrace formats err with the offending source lines and the
// active calls.
func RenderStacktrace(rtErr *RuntimeError, src string) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "RuntimeError (%s): %s\n\n", rtErr.Kind, rtErr.Message)

	if rtErr.Line > 0 && src != "" {
		buf.WriteString(util.GetContextLines(src, rtErr.Line, rtErr.Column))
		buf.WriteString("\n")
	}

	fmt.Fprintf(&buf, "Stack trace: %s", rtErr.Message)
	where := "<main>"
	if len(rtErr.StackTrace) > 0 {
		where = rtErr.StackTrace[0].Function
	}
	fmt.Fprintf(&buf, "\n  at [%3d:%3d] %s", rtErr.Line, rtErr.Column, where)
	for i, frame := range rtErr.StackTrace {
		caller := "<main>"
		if i+1 < len(rtErr.StackTrace) {
			caller = rtErr.StackTrace[i+1].Function
		}
		fmt.Fprintf(&buf, "\n  at [%3d:%3d] %s", frame.Line, frame.Column, caller)
	}

	return buf.String()
}
