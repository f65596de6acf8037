// Package golang prints Go source. Object types become structs with Validate,
// Serialize and String methods plus Deserialize<Type> and Deserialize<Type>String
// functions. Go has no nested type scopes, so synthesized types are named after the
// path from their top-level type. Output is passed through go/format.
package golang

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"path"
	"strings"
	"text/template"
	"unicode"

	"github.com/speakeasy-api/asyncapi-codegen/emit"
	"github.com/speakeasy-api/asyncapi-codegen/errors"
	"github.com/speakeasy-api/asyncapi-codegen/internal/sliceutil"
	"github.com/speakeasy-api/asyncapi-codegen/ir"
	"github.com/speakeasy-api/asyncapi-codegen/naming"
)

const (
	// TargetName is the name the emitter registers under.
	TargetName = "go"
	// UmbrellaFile holds the package documentation listing every generated type.
	UmbrellaFile = "doc.go"
	// SupportFile holds the decoding helpers shared by every generated type.
	SupportFile = "codec.go"

	defaultPackage = "messages"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

func init() {
	emit.Register(New())
}

// Emitter prints Go source files.
type Emitter struct{}

var (
	_ emit.Emitter        = (*Emitter)(nil)
	_ emit.SupportEmitter = (*Emitter)(nil)
	_ emit.SymbolEmitter  = (*Emitter)(nil)
)

// New creates a Go emitter.
func New() *Emitter {
	return &Emitter{}
}

// Name returns the target identifier.
func (e *Emitter) Name() string {
	return TargetName
}

// FileExtension returns the extension of generated files.
func (e *Emitter) FileExtension() string {
	return ".go"
}

type unitData struct {
	Package string
	Imports []string
	Alias   *aliasData
	Types   []*typeData
}

type aliasData struct {
	Name   string
	Doc    string
	Target string
}

type typeData struct {
	Name        string
	Doc         string
	Fields      []fieldData
	Validate    string
	Serialize   string
	Deserialize string
}

type fieldData struct {
	Name string
	Type string
	Tag  string
}

// EmitUnit prints the file of one declaration.
func (e *Emitter) EmitUnit(decl ir.Decl, opts emit.Options) (*emit.Unit, error) {
	data := unitData{Package: packageName(opts.Prefix)}
	imports := emit.Deps{}

	var kind emit.UnitKind
	switch d := decl.(type) {
	case *ir.Alias:
		kind = emit.UnitAlias
		name := goName(d.Name)
		data.Alias = &aliasData{
			Name:   name,
			Doc:    comment(d.Doc, opts.Width()),
			Target: goType(d.Target, ""),
		}
	case *ir.Object:
		kind = emit.UnitObject
		d.Walk(func(obj *ir.Object, p []string) {
			t := renderType(obj, qualifiedName(p), imports)
			if len(p) == 1 {
				t.Doc = comment(d.Doc, opts.Width())
			}
			data.Types = append(data.Types, t)
		})
	default:
		return nil, errors.ErrUnknownType.Wrapf("declaration %T", decl)
	}
	data.Imports = imports.Sorted()

	content, err := execute("unit.go.tmpl", data)
	if err != nil {
		return nil, fmt.Errorf("emitting %s: %w", decl.TypeName(), err)
	}

	return &emit.Unit{
		Name:    decl.TypeName(),
		Kind:    kind,
		Path:    path.Join(opts.Prefix, decl.TypeName()+e.FileExtension()),
		Deps:    sliceutil.Map(decl.Refs(), goName),
		Content: content,
	}, nil
}

// Symbols lists the package-level names of decl: the alias, or every struct with its
// two decoder functions.
func (e *Emitter) Symbols(decl ir.Decl) []string {
	switch d := decl.(type) {
	case *ir.Alias:
		return []string{goName(d.Name)}
	case *ir.Object:
		var out []string
		d.Walk(func(_ *ir.Object, p []string) {
			name := qualifiedName(p)
			out = append(out, name, "Deserialize"+name, "Deserialize"+name+"String")
		})
		return out
	default:
		return nil
	}
}

// EmitUmbrella prints doc.go, the package documentation listing every generated type.
func (e *Emitter) EmitUmbrella(units []*emit.Unit, opts emit.Options) (*emit.Unit, error) {
	names := emit.Deps{}
	for _, u := range units {
		if u.Kind == emit.UnitObject || u.Kind == emit.UnitAlias {
			names.Add(goName(u.Name))
		}
	}
	sorted := names.Sorted()

	content, err := execute("doc.go.tmpl", struct {
		Package string
		Types   []string
	}{Package: packageName(opts.Prefix), Types: sorted})
	if err != nil {
		return nil, fmt.Errorf("emitting %s: %w", UmbrellaFile, err)
	}

	return &emit.Unit{
		Kind:    emit.UnitUmbrella,
		Path:    path.Join(opts.Prefix, UmbrellaFile),
		Deps:    sorted,
		Content: content,
	}, nil
}

// EmitSupport prints codec.go, the helpers the generated decoders call.
func (e *Emitter) EmitSupport(opts emit.Options) ([]*emit.Unit, error) {
	content, err := execute("codec.go.tmpl", struct{ Package string }{Package: packageName(opts.Prefix)})
	if err != nil {
		return nil, fmt.Errorf("emitting %s: %w", SupportFile, err)
	}
	return []*emit.Unit{{
		Kind:    emit.UnitSupport,
		Path:    path.Join(opts.Prefix, SupportFile),
		Content: content,
	}}, nil
}

func execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated source: %w", err)
	}
	return formatted, nil
}

// packageName derives the package clause from the last element of the output prefix.
func packageName(prefix string) string {
	base := path.Base(strings.Trim(prefix, "/"))
	name := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToLower(r)
		}
		return -1
	}, base)
	if name == "" || unicode.IsDigit(rune(name[0])) {
		return defaultPackage
	}
	return name
}

func goName(name string) string {
	return naming.ToGoIdentifier(name)
}

func qualifiedName(p []string) string {
	return ir.QualifiedName(sliceutil.Map(p, goName))
}

// comment renders doc as a line comment block wrapped at width.
func comment(doc string, width int) string {
	lines := emit.Wrap(doc, width-3)
	if len(lines) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString("// ")
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return sb.String()
}
