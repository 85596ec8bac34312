package repl

import (
	"bufio"
	"fmt"
	"io"
	"lexwalk/internal/evaluator"
	"lexwalk/internal/lexer"
	"lexwalk/internal/object"
	"lexwalk/internal/parser"
	"lexwalk/internal/util"
	"log/slog"
	"strings"
)

const (
	PROMPT          = ">> "
	CONTINUE_PROMPT = ".. "
)

// Start reads lines from in until it is exhausted. Every line runs against
// the same scope stack, so declarations persist for the whole session.
// A line that leaves a block open is joined with the following lines.
func Start(in io.Reader, out io.Writer, cfg util.Configuration) {
	reader := bufio.NewReader(in)
	env := object.NewEnvironment()
	eval := evaluator.New(
		evaluator.WithEnvironment(env),
		evaluator.WithInput(reader),
		evaluator.WithOutput(out),
		evaluator.WithMaxCallDepth(cfg.MaxCallDepth),
	)

	var pending strings.Builder
	for {
		if pending.Len() == 0 {
			io.WriteString(out, PROMPT)
		} else {
			io.WriteString(out, CONTINUE_PROMPT)
		}

		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			io.WriteString(out, "\n")
			return
		}
		pending.WriteString(line)
		src := pending.String()
		if strings.TrimSpace(src) == "" {
			pending.Reset()
			continue
		}

		stream := lexer.Lex(src)
		if cfg.DebugTokens {
			for _, tok := range stream.Tokens() {
				fmt.Fprintln(out, tok.String())
			}
		}

		p := parser.New(stream)
		program := p.ParseProgram()
		if len(p.Errors()) != 0 {
			if incomplete(p.Errors()) && err == nil {
				continue
			}
			printParserErrors(out, p.Errors())
			pending.Reset()
			continue
		}
		pending.Reset()

		result := eval.Run(program)
		if rtErr, ok := result.RuntimeError(); ok {
			io.WriteString(out, object.RenderStacktrace(rtErr, src))
			io.WriteString(out, "\n")
			continue
		}
		if result.Value != nil && result.Value != object.EMPTY {
			io.WriteString(out, result.Value.Inspect())
			io.WriteString(out, "\n")
		}
		slog.Debug("repl line evaluated", slog.Int("scopes", env.Depth()))
	}
}

// incomplete reports whether parsing failed only because the input ended
// inside an open construct.
func incomplete(errors []string) bool {
	last := errors[len(errors)-1]
	return strings.Contains(last, "missing END") || strings.Contains(last, "end of input")
}

func printParserErrors(out io.Writer, errors []string) {
	io.WriteString(out, "parser errors:\n")
	for _, msg := range errors {
		io.WriteString(out, "\t"+msg+"\n")
	}
}
