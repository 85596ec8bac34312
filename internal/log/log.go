// Package log holds the pieces of logging setup that slog leaves to the
// program: level names and a log file that can be reopened after rotation.
package log

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
)

// LevelTrace sits below slog.LevelDebug; LevelNone above every level slog
// emits.
const (
	LevelTrace = slog.LevelDebug - 4
	LevelNone  = slog.LevelError + 4
)

// ParseLevel maps a level name to a slog level. Unknown names disable
// logging.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return LevelNone
	}
}

// File is an append-only log file. Writes are serialized, and Reopen swaps
// the handle so an external tool can rotate the file underneath.
type File struct {
	mu         sync.Mutex
	path       string
	fileHandle *os.File
}

// OpenFile opens path for appending, creating it and its parent
// directories when they are missing.
func OpenFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for '%s': %w", path, err)
	}
	fh, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	return &File{path: path, fileHandle: fh}, nil
}

func openAppend(path string) (*os.File, error) {
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file '%s': %w", path, err)
	}
	return fh, nil
}

func (f *File) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fileHandle.Write(p)
}

// Reopen closes the current handle and opens the path again. After a
// rotation (mv app.log app.log.1) new lines land in a fresh app.log.
func (f *File) Reopen() error {
	fh, err := openAppend(f.path)
	if err != nil {
		return err
	}

	f.mu.Lock()
	old := f.fileHandle
	f.fileHandle = fh
	f.mu.Unlock()

	return old.Close()
}

// ReopenOn calls Reopen whenever one of sigs arrives, typically SIGHUP:
//
//	mv lexwalk.log lexwalk.log.1 && kill -HUP <pid>
//
// The returned function stops listening.
func (f *File) ReopenOn(sigs ...os.Signal) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ch:
				if err := f.Reopen(); err != nil {
					fmt.Fprintf(os.Stderr, "could not reopen log file: %v\n", err)
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fileHandle.Close()
}
