package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"lexwalk/internal/ast"
	"lexwalk/internal/evaluator"
	"lexwalk/internal/journal"
	"lexwalk/internal/lexer"
	lwlog "lexwalk/internal/log"
	"lexwalk/internal/object"
	"lexwalk/internal/parser"
	"lexwalk/internal/repl"
	"lexwalk/internal/util"
	"lexwalk/internal/util/future"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitSyntax  = 1
	ExitRuntime = 2
	ExitUsage   = 3
)

// maxJournalOutput caps the program output stored with a run.
const maxJournalOutput = 64 * 1024

type options struct {
	help       bool
	version    bool
	configPath string
	// logging
	logLevel string
	logFile  string
	// debugging
	tokens   bool
	debugAST string
	// journal
	journal string
	history int
	// evaluator
	maxDepth int
}

func newFlagSet(opts *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("lexwalk", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.BoolVar(&opts.help, "help", false, "Display help information and exit")
	fs.BoolVar(&opts.help, "h", false, "Display help information and exit")
	fs.BoolVar(&opts.version, "version", false, "Display version information and exit")
	fs.BoolVar(&opts.version, "v", false, "Display version information and exit")
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	// log config
	fs.StringVar(&opts.logLevel, "log-level", util.DefaultLogLevel, "Log level: debug, info, warn, error, none")
	fs.StringVar(&opts.logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
	// lexer and parser config
	fs.BoolVar(&opts.tokens, "tokens", false, "Print the token stream before running")
	fs.StringVar(&opts.debugAST, "debug-ast", "", "Write the AST next to the source file: json or text")
	// journal config
	fs.StringVar(&opts.journal, "journal", "", "Record runs in a journal, as driver:dsn (sqlite3, mysql or postgres)")
	fs.IntVar(&opts.history, "history", 0, "Print the n most recent journal entries and exit")
	// evaluator config
	fs.IntVar(&opts.maxDepth, "max-depth", util.DefaultMaxCallDepth, "Maximum nesting of function calls")
	return fs
}

// run is the whole command line program. It returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	fs := newFlagSet(&opts, stderr)
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if opts.version {
		printVersion(stdout)
		return ExitOK
	}
	if opts.help {
		printHelp(stdout)
		return ExitOK
	}

	config, err := configure(fs, opts)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return ExitUsage
	}

	logWriter, closeLog := configureLogWriter(config.LogFile, stderr)
	defer closeLog()
	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     lwlog.ParseLevel(config.LogLevel),
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logWriter, loggerOptions)))

	ctx := context.Background()

	// The journal connects while the program is lexed, parsed and run.
	pending := future.Resolved[*journal.Store](nil)
	if config.Journal.Enabled() {
		pending = future.Go(ctx, func(ctx context.Context) (*journal.Store, error) {
			return journal.Open(ctx, config.Journal.Driver, config.Journal.DSN)
		})
		defer func() {
			if store, err := pending.Wait(ctx); err == nil {
				store.Close()
			}
		}()
	}

	if opts.history > 0 {
		store, err := pending.Wait(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "journal error: %v\n", err)
			return ExitUsage
		}
		if store == nil {
			fmt.Fprintln(stderr, "-history requires a journal, see -journal")
			return ExitUsage
		}
		return printHistory(ctx, store, opts.history, stdout, stderr)
	}

	if fs.NArg() == 0 {
		repl.Start(stdin, stdout, config)
		return ExitOK
	}

	path := fs.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read '%s': %v\n", path, err)
		return ExitUsage
	}

	r := &runner{config: config, path: path, src: string(src), stdin: stdin, stdout: stdout, stderr: stderr}
	code, entry := r.execute()

	store, err := pending.Wait(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "journal error: %v\n", err)
	} else if store != nil {
		if _, err := store.Record(ctx, entry); err != nil {
			slog.Warn("failed to journal run", slog.String("path", path), slog.Any("error", err))
		}
	}
	return code
}

// configure layers the configuration file and then the explicitly set flags
// over the defaults.
func configure(fs *flag.FlagSet, opts options) (util.Configuration, error) {
	config := util.DefaultConfiguration()
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit

	if opts.configPath != "" {
		var err error
		if config, err = util.LoadConfiguration(opts.configPath, config); err != nil {
			return config, err
		}
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			config.LogLevel = opts.logLevel
		case "log-file":
			config.LogFile = opts.logFile
		case "tokens":
			config.DebugTokens = opts.tokens
		case "debug-ast":
			config.DebugAST = opts.debugAST
		case "max-depth":
			config.MaxCallDepth = opts.maxDepth
		case "journal":
			var j util.JournalConfig
			if j, err = util.ParseJournalSpec(opts.journal); err == nil {
				config.Journal = j
			}
		}
	})
	if err != nil {
		return config, err
	}
	return config, config.Validate()
}

type runner struct {
	config util.Configuration
	path   string
	src    string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// execute lexes, parses and evaluates one source file and describes the
// outcome as a journal entry.
func (r *runner) execute() (int, journal.Run) {
	entry := journal.Run{
		Source:    r.path,
		Checksum:  journal.Checksum(r.src),
		Status:    journal.StatusOK,
		StartedAt: time.Now(),
	}
	finish := func(code int) (int, journal.Run) {
		entry.ExitCode = code
		entry.Duration = time.Since(entry.StartedAt)
		return code, entry
	}

	stream := lexer.Lex(r.src)
	if r.config.DebugTokens {
		for _, tok := range stream.Tokens() {
			fmt.Fprintln(r.stdout, tok.String())
		}
	}

	p := parser.New(stream)
	program := p.ParseProgram()

	if r.config.DebugAST != "" {
		if err := writeAST(program, r.path, r.config.DebugAST); err != nil {
			slog.Error("failed to write AST", slog.String("path", r.path), slog.Any("error", err))
		}
	}

	if errs := p.Errors(); len(errs) != 0 {
		printParserErrors(r.stderr, errs)
		entry.Status = journal.StatusSyntax
		entry.Error = strings.Join(errs, "\n")
		return finish(ExitSyntax)
	}

	var captured bytes.Buffer
	e := evaluator.New(
		evaluator.WithInput(r.stdin),
		evaluator.WithOutput(io.MultiWriter(r.stdout, &limitedWriter{buf: &captured, max: maxJournalOutput})),
		evaluator.WithMaxCallDepth(r.config.MaxCallDepth),
	)
	result := e.Run(program)
	entry.Output = captured.String()

	if rtErr, ok := result.RuntimeError(); ok {
		fmt.Fprintln(r.stderr, object.RenderStacktrace(rtErr, r.src))
		entry.Status = journal.StatusRuntime
		entry.Error = rtErr.Message
		entry.Line = rtErr.Line
		entry.Column = rtErr.Column
		return finish(ExitRuntime)
	}
	if result.Err != nil {
		fmt.Fprintln(r.stderr, result.Err)
		entry.Status = journal.StatusRuntime
		entry.Error = result.Err.Error()
		return finish(ExitRuntime)
	}
	return finish(ExitOK)
}

// writeAST dumps program next to the source file as <path>.ast.json or
// <path>.ast.txt.
func writeAST(program *ast.Program, path, format string) error {
	switch format {
	case "json":
		out, err := parser.RenderASTAsJSON(program)
		if err != nil {
			return err
		}
		return os.WriteFile(path+".ast.json", []byte(out), 0o644)
	case "text":
		return os.WriteFile(path+".ast.txt", []byte(parser.RenderASTAsText(program, 0)), 0o644)
	}
	return fmt.Errorf("unknown AST format %q", format)
}

// limitedWriter keeps the first max bytes written to it and drops the rest
// without failing the write.
type limitedWriter struct {
	buf *bytes.Buffer
	max int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if room := w.max - w.buf.Len(); room > 0 {
		if len(p) > room {
			w.buf.Write(p[:room])
		} else {
			w.buf.Write(p)
		}
	}
	return len(p), nil
}

func printHistory(ctx context.Context, store *journal.Store, n int, stdout, stderr io.Writer) int {
	runs, err := store.Recent(ctx, n)
	if err != nil {
		fmt.Fprintf(stderr, "journal error: %v\n", err)
		return ExitUsage
	}
	for _, run := range runs {
		fmt.Fprintln(stdout, run.String())
	}
	return ExitOK
}

func printParserErrors(out io.Writer, errors []string) {
	io.WriteString(out, "parser errors:\n")
	for _, msg := range errors {
		io.WriteString(out, "\t"+msg+"\n")
	}
}

// configureLogWriter opens path as a log file that is reopened on SIGHUP.
// Without a path, or when the file cannot be opened, logs go to fallback.
func configureLogWriter(path string, fallback io.Writer) (io.Writer, func()) {
	if path == "" {
		return fallback, func() {}
	}
	f, err := lwlog.OpenFile(path)
	if err != nil {
		fmt.Fprintf(fallback, "%v; falling back to stderr\n", err)
		return fallback, func() {}
	}
	stop := f.ReopenOn(syscall.SIGHUP)
	return f, func() {
		stop()
		f.Close()
	}
}

func printVersion(out io.Writer) {
	fmt.Fprintf(out, "lexwalk version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp(out io.Writer) {
	fmt.Fprintf(out, `Usage: lexwalk [options] [filename]

Options:
  -config <path>         Read settings from a YAML or TOML file. Flags override it.
  -tokens                Print the token stream before running.
  -debug-ast <format>    Write the AST next to the source file as json or text.
  -journal <driver:dsn>  Record every run in sqlite3, mysql or postgres, e.g. sqlite3:runs.db.
  -history <n>           Print the n most recent journal entries and exit.
  -max-depth <n>         Maximum nesting of function calls. Default is %d.
  -help                  Display this help information and exit.
  -version               Display version information and exit.
  -log-level <level>     Set the log level: debug, info, warn, error, none. Default is 'none'.
  -log-file <path>       Specify a log file to write logs. Default is stderr.

Details:
Without a filename lexwalk starts an interactive session.

Exit codes:
  0  success
  1  syntax error
  2  runtime error
  3  usage, configuration or I/O error

Examples:
  lexwalk -log-level=debug             Start a session with debug logging enabled
  lexwalk program.lw                   Run the provided file
  lexwalk -journal sqlite3:runs.db -history 5

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, util.DefaultMaxCallDepth, Version, BuildDate, Commit)
}
