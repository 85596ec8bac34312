package object

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

var (
	ErrAlreadyDeclared = errors.New("variable already declared")
	ErrNotDeclared     = errors.New("variable not declared")
	ErrRootFrame       = errors.New("cannot pop the root frame")
)

// Frame holds the bindings of one lexical context. Names are unique per frame.
type Frame struct {
	Bindings map[string]Object
}

func newFrame() *Frame {
	return &Frame{Bindings: make(map[string]Object)}
}

// Environment is the scope stack: an ordered list of frames, innermost last.
// It always holds at least the root frame.
type Environment struct {
	frames []*Frame
}

func NewEnvironment() *Environment {
	slog.Debug("------ new root env ------")
	return &Environment{frames: []*Frame{newFrame()}}
}

func (e *Environment) PushFrame() {
	e.frames = append(e.frames, newFrame())
	slog.Debug("push frame", slog.Int("depth", len(e.frames)))
}

// PopFrame removes the innermost frame. The root frame is never removed.
func (e *Environment) PopFrame() error {
	if len(e.frames) <= 1 {
		return ErrRootFrame
	}
	e.frames[len(e.frames)-1] = nil
	e.frames = e.frames[:len(e.frames)-1]
	slog.Debug("pop frame", slog.Int("depth", len(e.frames)))
	return nil
}

// Depth is the number of frames, root included.
func (e *Environment) Depth() int {
	return len(e.frames)
}

func (e *Environment) innermost() *Frame {
	return e.frames[len(e.frames)-1]
}

// Declare binds name in the innermost frame. Only a binding in that same
// frame conflicts; a name bound further out is shadowed.
func (e *Environment) Declare(name string, val Object) error {
	frame := e.innermost()
	if _, exists := frame.Bindings[name]; exists {
		return fmt.Errorf("%w: '%s'", ErrAlreadyDeclared, name)
	}
	frame.Bindings[name] = val

	slog.Debug("binding value",
		slog.String("name", name),
		slog.Any("type", typeOf(val)),
		slog.Int("frame", len(e.frames)-1))
	return nil
}

// Get resolves name from the innermost frame outwards.
func (e *Environment) Get(name string) (Object, bool) {
	if frame := e.lookup(name); frame != nil {
		return frame.Bindings[name], true
	}
	return nil, false
}

// Set replaces the value of the nearest existing binding of name. It never
// declares a new one.
func (e *Environment) Set(name string, val Object) error {
	frame := e.lookup(name)
	if frame == nil {
		return fmt.Errorf("%w: '%s'", ErrNotDeclared, name)
	}
	frame.Bindings[name] = val
	return nil
}

func (e *Environment) lookup(name string) *Frame {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if _, ok := e.frames[i].Bindings[name]; ok {
			return e.frames[i]
		}
	}
	return nil
}

// Names returns every visible name, sorted.
func (e *Environment) Names() []string {
	seen := make(map[string]bool)
	for _, frame := range e.frames {
		for name := range frame.Bindings {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Suggest returns the visible name closest to an unknown one, or "" when
// nothing is close enough.
func (e *Environment) Suggest(name string) string {
	ranks := fuzzy.RankFindFold(name, e.Names())
	if len(ranks) == 0 {
		return ""
	}
	sort.Stable(ranks)
	return ranks[0].Target
}

func typeOf(val Object) ObjectType {
	if val == nil {
		return "<nil>"
	}
	return val.Type()
}
