package evaluator

import (
	"errors"
	"io"
	"lexwalk/internal/ast"
	"lexwalk/internal/object"
	"strconv"
	"strings"
)

// readLine returns the next input line without its line terminator.
func (e *Evaluator) readLine(node ast.Node) (string, error) {
	line, err := e.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", e.newError(node, object.KindInput, "%s: no more input", node.String())
		}
		return "", e.newError(node, object.KindInput, "%s: failed to read input: %s", node.String(), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (e *Evaluator) readInt(node *ast.ReadInt) (object.Object, error) {
	line, err := e.readLine(node)
	if err != nil {
		return nil, err
	}
	value, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		return nil, e.newError(node, object.KindInput, "readInt: %q is not an integer", line)
	}
	return &object.Integer{Value: value}, nil
}

func (e *Evaluator) readReal(node *ast.ReadReal) (object.Object, error) {
	line, err := e.readLine(node)
	if err != nil {
		return nil, err
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil {
		return nil, e.newError(node, object.KindInput, "readReal: %q is not a real number", line)
	}
	return &object.Real{Value: value}, nil
}

func (e *Evaluator) readString(node *ast.ReadString) (object.Object, error) {
	line, err := e.readLine(node)
	if err != nil {
		return nil, err
	}
	return &object.String{Value: line}, nil
}
