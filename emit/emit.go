// Package emit defines the contract between the generator and the target language
// back ends, and the registry back ends add themselves to.
package emit

import (
	"bytes"
	"sort"
	"sync"

	"github.com/speakeasy-api/asyncapi-codegen/errors"
	"github.com/speakeasy-api/asyncapi-codegen/ir"
)

// DefaultWrapWidth is the column doc comments are wrapped at.
const DefaultWrapWidth = 77

// UnitKind tells what a unit holds.
type UnitKind string

const (
	UnitObject   UnitKind = "object"
	UnitAlias    UnitKind = "alias"
	UnitUmbrella UnitKind = "umbrella"
	UnitSupport  UnitKind = "support"
)

// Options are the settings shared by every unit of one run.
type Options struct {
	// Prefix is the output prefix: the include directory and namespace path for C++,
	// the package path for Go.
	Prefix string
	// WrapWidth is the doc comment column, DefaultWrapWidth when zero.
	WrapWidth int
}

// Width returns the effective wrap width.
func (o Options) Width() int {
	if o.WrapWidth <= 0 {
		return DefaultWrapWidth
	}
	return o.WrapWidth
}

// Unit is one generated file.
type Unit struct {
	// Name is the type name the unit declares, empty for umbrella and support units.
	Name string
	Kind UnitKind
	// Path is the file path relative to the output directory.
	Path string
	// Deps are the dependency declarations of the unit, sorted and without duplicates.
	Deps    []string
	Content []byte
}

// Lines counts the lines of Content.
func (u *Unit) Lines() int {
	if len(u.Content) == 0 {
		return 0
	}
	n := bytes.Count(u.Content, []byte("\n"))
	if u.Content[len(u.Content)-1] != '\n' {
		n++
	}
	return n
}

// Emitter prints declarations in one target language.
type Emitter interface {
	// Name is the target identifier used on the command line.
	Name() string
	// FileExtension is the extension of per-type units, including the dot.
	FileExtension() string
	// EmitUnit prints one top-level declaration.
	EmitUnit(decl ir.Decl, opts Options) (*Unit, error)
	// EmitUmbrella prints the unit that lets consumers depend on every unit at once.
	EmitUmbrella(units []*Unit, opts Options) (*Unit, error)
}

// SupportEmitter is implemented by back ends that need shared code next to the
// generated types.
type SupportEmitter interface {
	EmitSupport(opts Options) ([]*Unit, error)
}

// SymbolEmitter is implemented by back ends whose generated declarations share one
// scope, so that names derived from different entries can clash.
type SymbolEmitter interface {
	// Symbols lists the scope-level names EmitUnit declares for decl.
	Symbols(decl ir.Decl) []string
}

var (
	mu       sync.RWMutex
	emitters = map[string]Emitter{}
)

// Register adds an emitter to the registry, replacing any emitter of the same name.
func Register(e Emitter) {
	mu.Lock()
	defer mu.Unlock()
	emitters[e.Name()] = e
}

// Get retrieves an emitter by name.
func Get(name string) (Emitter, error) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := emitters[name]
	if !ok {
		return nil, errors.ErrUnknownTarget.Wrapf("%s", name)
	}
	return e, nil
}

// Available returns the registered emitter names, sorted.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(emitters))
	for name := range emitters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Deps collects dependency declarations.
type Deps map[string]struct{}

// Add records every declaration in decls.
func (d Deps) Add(decls ...string) {
	for _, decl := range decls {
		d[decl] = struct{}{}
	}
}

// Sorted returns the declarations in ascending order.
func (d Deps) Sorted() []string {
	out := make([]string, 0, len(d))
	for decl := range d {
		out = append(out, decl)
	}
	sort.Strings(out)
	return out
}
