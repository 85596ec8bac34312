package repl

import (
	"bytes"
	"lexwalk/internal/util"
	"strings"
	"testing"
)

func runSession(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	Start(strings.NewReader(input), &out, util.DefaultConfiguration())
	return out.String()
}

func TestDeclarationsPersistAcrossLines(t *testing.T) {
	out := runSession(t, "var a := 20\nprint a + 1\na * 2\n")
	expected := ">> >> 21\n>> 40\n>> \n"
	if out != expected {
		t.Errorf("expected %q, got %q", expected, out)
	}
}

func TestErrorsDoNotEndSession(t *testing.T) {
	out := runSession(t, "print )\nprint y\nprint 3\n")

	if !strings.Contains(out, "parser errors:\n\t[  1: 7] unexpected ')'") {
		t.Errorf("expected parser error in output, got %q", out)
	}
	if !strings.Contains(out, "RuntimeError (undeclared variable): variable 'y' is not declared") {
		t.Errorf("expected runtime error in output, got %q", out)
	}
	if !strings.HasSuffix(out, "3\n>> \n") {
		t.Errorf("expected the session to continue, got %q", out)
	}
}

func TestOpenBlockContinuesOnNextLine(t *testing.T) {
	out := runSession(t, "var i := 0\nwhile i < 2 loop\n  i := i + 1\nend\nprint i\n")
	expected := ">> >> .. .. >> 2\n>> \n"
	if out != expected {
		t.Errorf("expected %q, got %q", expected, out)
	}
}

func TestUnclosedBlockAtEndOfInput(t *testing.T) {
	out := runSession(t, "if true then print 1")
	if !strings.Contains(out, "missing END for 'if'") {
		t.Errorf("expected the unclosed block to be reported, got %q", out)
	}
}

func TestReadFromSessionInput(t *testing.T) {
	out := runSession(t, "var n := readInt\n41\nprint n + 1\n")
	expected := ">> >> 42\n>> \n"
	if out != expected {
		t.Errorf("expected %q, got %q", expected, out)
	}
}
