package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeProgram(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.lw")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("failed to write program: %v", err)
	}
	return path
}

func runArgs(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		code     int
		stdout   string
		inStderr string
	}{
		{"ok", "var a := 3; print a * 8", ExitOK, "24\n", ""},
		{"syntax", "var := 1", ExitSyntax, "", "parser errors:"},
		{"runtime", "print 1;\nprint x", ExitRuntime, "1\n", "RuntimeError (undeclared variable)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runArgs(t, "", writeProgram(t, tt.src))
			if code != tt.code {
				t.Errorf("expected exit code %d, got %d (stderr %q)", tt.code, code, stderr)
			}
			if stdout != tt.stdout {
				t.Errorf("expected stdout %q, got %q", tt.stdout, stdout)
			}
			if !strings.Contains(stderr, tt.inStderr) {
				t.Errorf("expected stderr to contain %q, got %q", tt.inStderr, stderr)
			}
		})
	}
}

func TestUsageErrors(t *testing.T) {
	tests := [][]string{
		{"-no-such-flag"},
		{filepath.Join(t.TempDir(), "missing.lw")},
		{"-debug-ast", "yaml", "x.lw"},
		{"-max-depth", "0", "x.lw"},
		{"-journal", "redis:db", "x.lw"},
		{"-history", "3"},
		{"-config", filepath.Join(t.TempDir(), "missing.yaml")},
	}

	for _, args := range tests {
		if code, _, _ := runArgs(t, "", args...); code != ExitUsage {
			t.Errorf("%v: expected exit code %d, got %d", args, ExitUsage, code)
		}
	}
}

func TestVersionAndHelp(t *testing.T) {
	code, stdout, _ := runArgs(t, "", "-version")
	if code != ExitOK || !strings.HasPrefix(stdout, "lexwalk version") {
		t.Errorf("unexpected version output %q", stdout)
	}

	code, stdout, _ = runArgs(t, "", "-help")
	if code != ExitOK || !strings.Contains(stdout, "Usage: lexwalk") {
		t.Errorf("unexpected help output %q", stdout)
	}
}

func TestTokenListing(t *testing.T) {
	code, stdout, _ := runArgs(t, "", "-tokens", writeProgram(t, "print 1"))
	if code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	expected := "TokenType: PRINT, Value: print, Line: 1, Column: 1\n" +
		"TokenType: INT, Value: 1, Line: 1, Column: 7\n"
	if !strings.HasPrefix(stdout, expected) {
		t.Errorf("expected listing to start with %q, got %q", expected, stdout)
	}
	if !strings.HasSuffix(stdout, "1\n") {
		t.Errorf("expected the program to run after the listing, got %q", stdout)
	}
}

func TestDebugASTWritesFile(t *testing.T) {
	path := writeProgram(t, "var a := 1")

	if code, _, _ := runArgs(t, "", "-debug-ast", "json", path); code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	data, err := os.ReadFile(path + ".ast.json")
	if err != nil {
		t.Fatalf("expected AST file: %v", err)
	}
	if !strings.Contains(string(data), `"Declaration"`) {
		t.Errorf("expected a declaration node, got %s", data)
	}

	if code, _, _ := runArgs(t, "", "-debug-ast", "text", path); code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if _, err := os.Stat(path + ".ast.txt"); err != nil {
		t.Errorf("expected text AST file: %v", err)
	}
}

func TestConfigFileAndFlagOverride(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "lexwalk.yaml")
	if err := os.WriteFile(config, []byte("maxCallDepth: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := writeProgram(t, "var f := func(n) is if n = 0 then return 0 end return f(n - 1) end; print f(10)")

	code, _, stderr := runArgs(t, "", "-config", config, path)
	if code != ExitRuntime || !strings.Contains(stderr, "call depth") {
		t.Errorf("expected the configured depth to stop recursion, got %d: %q", code, stderr)
	}

	code, stdout, _ := runArgs(t, "", "-config", config, "-max-depth", "50", path)
	if code != ExitOK || stdout != "0\n" {
		t.Errorf("expected the flag to override the file, got %d: %q", code, stdout)
	}
}

func TestJournalAndHistory(t *testing.T) {
	journal := "sqlite3:" + filepath.Join(t.TempDir(), "runs.db")
	okProgram := writeProgram(t, "print 1")
	failing := writeProgram(t, "print y")

	runArgs(t, "", "-journal", journal, okProgram)
	runArgs(t, "", "-journal", journal, failing)

	code, stdout, stderr := runArgs(t, "", "-journal", journal, "-history", "5")
	if code != ExitOK {
		t.Fatalf("unexpected exit code %d: %s", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two journal entries, got %q", stdout)
	}
	if !strings.Contains(lines[0], "runtime exit=2") || !strings.Contains(lines[0], "[1:7] variable 'y' is not declared") {
		t.Errorf("unexpected newest entry %q", lines[0])
	}
	if !strings.Contains(lines[1], "ok      exit=0") {
		t.Errorf("unexpected oldest entry %q", lines[1])
	}
}

func TestNoFileStartsSession(t *testing.T) {
	code, stdout, _ := runArgs(t, "var a := 2\nprint a * 3\n")
	if code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if !strings.Contains(stdout, "6\n") {
		t.Errorf("expected session output, got %q", stdout)
	}
}

func TestLimitedWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &limitedWriter{buf: &buf, max: 4}
	for _, chunk := range []string{"ab", "cde", "f"} {
		if n, err := w.Write([]byte(chunk)); n != len(chunk) || err != nil {
			t.Errorf("write %q: got %d, %v", chunk, n, err)
		}
	}
	if buf.String() != "abcd" {
		t.Errorf("expected %q, got %q", "abcd", buf.String())
	}
}
