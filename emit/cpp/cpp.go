// Package cpp prints C++17 headers over nlohmann::json. Every object type becomes a
// struct with isValid, toJson, dump and two fromJson overloads; nested types are
// declared inside the struct that uses them.
package cpp

import (
	"fmt"
	"path"

	"github.com/speakeasy-api/asyncapi-codegen/emit"
	"github.com/speakeasy-api/asyncapi-codegen/errors"
	"github.com/speakeasy-api/asyncapi-codegen/ir"
	"github.com/speakeasy-api/asyncapi-codegen/schema"
)

// TargetName is the name the emitter registers under.
const TargetName = "cpp"

// UmbrellaFile is the name of the header that includes every generated header.
const UmbrellaFile = "messages.h"

const generatedNotice = "/* This file was auto-generated. */"

func init() {
	emit.Register(New())
}

// Emitter prints C++ headers.
type Emitter struct{}

var _ emit.Emitter = (*Emitter)(nil)

// New creates a C++ emitter.
func New() *Emitter {
	return &Emitter{}
}

// Name returns the target identifier.
func (e *Emitter) Name() string {
	return TargetName
}

// FileExtension returns the extension of generated headers.
func (e *Emitter) FileExtension() string {
	return ".h"
}

// EmitUnit prints the header of one declaration.
func (e *Emitter) EmitUnit(decl ir.Decl, opts emit.Options) (*emit.Unit, error) {
	deps := emit.Deps{}
	deps.Add("#include <nlohmann/json.hpp>")
	for _, ref := range decl.Refs() {
		deps.Add(include(opts.Prefix, ref+e.FileExtension()))
	}

	body := &writer{}
	var (
		kind emit.UnitKind
		doc  string
	)
	switch d := decl.(type) {
	case *ir.Alias:
		kind, doc = emit.UnitAlias, d.Doc
		if p, ok := d.Target.(ir.Primitive); ok {
			switch p.Type {
			case schema.KindString:
				deps.Add("#include <string>")
			case schema.KindInteger:
				deps.Add("#include <cstdint>")
			}
		}
		writeDoc(body, doc, opts.Width())
		body.line("typedef %s %s;", typeName(d.Target), d.Name)
	case *ir.Object:
		kind, doc = emit.UnitObject, d.Doc
		deps.Add("#include <memory>", "#include <optional>", "#include <string>")
		if usesSequence(d) {
			deps.Add("#include <vector>")
		}
		if usesInteger(d) {
			deps.Add("#include <cstdint>")
		}
		writeDoc(body, doc, opts.Width())
		writeStruct(body, d)
	default:
		return nil, errors.ErrUnknownType.Wrapf("declaration %T", decl)
	}

	sorted := deps.Sorted()
	out := &writer{}
	out.line("#pragma once")
	out.blank()
	out.line(generatedNotice)
	out.blank()
	for _, dep := range sorted {
		out.line("%s", dep)
	}
	out.blank()
	out.line("using json = nlohmann::json;")
	out.blank()

	ns := namespace(opts.Prefix)
	if ns != "" {
		out.line("namespace %s {", ns)
		out.blank()
	}
	out.lines = append(out.lines, body.lines...)
	if ns != "" {
		out.blank()
		out.line("}  // namespace %s", ns)
	}

	return &emit.Unit{
		Name:    decl.TypeName(),
		Kind:    kind,
		Path:    path.Join(opts.Prefix, decl.TypeName()+e.FileExtension()),
		Deps:    sorted,
		Content: []byte(out.String()),
	}, nil
}

// EmitUmbrella prints messages.h, which includes every unit.
func (e *Emitter) EmitUmbrella(units []*emit.Unit, opts emit.Options) (*emit.Unit, error) {
	deps := emit.Deps{}
	for _, u := range units {
		if u.Kind == emit.UnitObject || u.Kind == emit.UnitAlias {
			deps.Add(include(opts.Prefix, u.Name+e.FileExtension()))
		}
	}
	sorted := deps.Sorted()

	out := &writer{}
	out.line("#pragma once")
	out.blank()
	out.line(generatedNotice)
	out.blank()
	for _, dep := range sorted {
		out.line("%s", dep)
	}

	return &emit.Unit{
		Kind:    emit.UnitUmbrella,
		Path:    path.Join(opts.Prefix, UmbrellaFile),
		Deps:    sorted,
		Content: []byte(out.String()),
	}, nil
}

func include(prefix, file string) string {
	return fmt.Sprintf("#include <%s>", path.Join(prefix, file))
}

func writeDoc(w *writer, doc string, width int) {
	lines := emit.Wrap(doc, width)
	if len(lines) == 0 {
		return
	}
	w.line("/**")
	for _, l := range lines {
		w.line(" * %s", l)
	}
	w.line(" */")
}

func usesSequence(obj *ir.Object) bool {
	found := false
	obj.Walk(func(o *ir.Object, _ []string) {
		for _, m := range o.Members {
			if m.IsSequence() {
				found = true
			}
		}
	})
	return found
}

func usesInteger(obj *ir.Object) bool {
	found := false
	obj.Walk(func(o *ir.Object, _ []string) {
		for _, m := range o.Members {
			if ir.ScalarKind(m.Type) == schema.KindInteger {
				found = true
			}
		}
	})
	return found
}
