package ir

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/speakeasy-api/asyncapi-codegen/asyncapi"
	"github.com/speakeasy-api/asyncapi-codegen/errors"
	"github.com/speakeasy-api/asyncapi-codegen/naming"
	"github.com/speakeasy-api/asyncapi-codegen/resolver"
	"github.com/speakeasy-api/asyncapi-codegen/schema"
	"github.com/speakeasy-api/asyncapi-codegen/validation"
	"gopkg.in/yaml.v3"
)

// Builder lowers schema entries into declarations. It only reads the sealed
// resolver, so one Builder may be shared by concurrent callers.
type Builder struct {
	r *resolver.Resolver
}

// NewBuilder returns a Builder over r, which must already be sealed.
func NewBuilder(r *resolver.Resolver) (*Builder, error) {
	if r == nil || !r.Sealed() {
		return nil, errors.ErrResolverNotSealed
	}
	return &Builder{r: r}, nil
}

// Build lowers one entry. Fragments that cannot be represented are left out and
// reported in the returned diagnostics; the declaration is nil when the entry as a
// whole was skipped.
func (b *Builder) Build(entry asyncapi.Entry) (Decl, []error) {
	l := &lowering{b: b, entry: entry, refs: map[string]struct{}{}}
	decl := l.lowerEntry()
	return decl, l.diags
}

// MapType classifies the schema of a property called propName. A non-empty reason
// means the property cannot be represented. Inline objects are named after the
// property but not lowered.
func (b *Builder) MapType(propName string, node *schema.Node) (TypeRef, string) {
	l := &lowering{b: b, refs: map[string]struct{}{}, shallow: true}
	t, _, reason := l.mapType(nil, propName, propName, node)
	return t, reason
}

type lowering struct {
	b       *Builder
	entry   asyncapi.Entry
	diags   []error
	refs    map[string]struct{}
	shallow bool
}

func (l *lowering) lowerEntry() Decl {
	node := l.entry.Schema
	name := l.entry.TypeName()
	if name == "" {
		l.warn(rootOf(node), validation.RuleGenerationSkippedEntry, "", "entry key produces an empty type name")
		return nil
	}

	l.unsupported(node, "")
	if node.Payload != nil {
		l.unsupported(node.Payload, "")
	}

	base := node.PayloadOrSelf()
	doc := node.Doc()
	if doc == "" && base != node {
		doc = base.Doc()
	}

	if target, ok := resolver.AliasTarget(node); ok {
		if k, ok := schema.PrimitiveKind(target); ok {
			return &Alias{Name: name, Doc: doc, EntryKey: l.entry.Key, Target: Primitive{Type: k}}
		}

		ref, _, reason := l.named(target, base)
		if reason != "" {
			l.warn(rootOf(base), validation.RuleGenerationSkippedEntry, "", "%s", reason)
			return nil
		}
		return &Alias{Name: name, Doc: doc, EntryKey: l.entry.Key, Target: ref}
	}

	var obj *Object
	switch base.Kind() {
	case schema.KindObject:
		obj = l.object(name, base, "")
	case schema.KindArray:
		l.warn(rootOf(base), validation.RuleGenerationSkippedEntry, "", "top-level array types are not supported")
		return nil
	default:
		// Entries without a type are read as a bare property map, every property required.
		obj = l.bareObject(name, node)
	}

	obj.Doc = doc
	obj.EntryKey = l.entry.Key
	obj.refs = sortedKeys(l.refs)
	return obj
}

func (l *lowering) bareObject(name string, node *schema.Node) *Object {
	for _, skipped := range node.Skipped {
		l.warn(skipped.KeyNode, validation.RuleGenerationSkippedProperty, skipped.Name, "value is not a schema")
	}
	return l.members(&Object{Name: name}, node.Fields, func(string) bool { return true }, "")
}

func (l *lowering) object(name string, node *schema.Node, path string) *Object {
	return l.members(&Object{Name: name}, node.Properties, node.IsRequired, path)
}

func (l *lowering) members(obj *Object, props []schema.Property, required func(string) bool, path string) *Object {
	used := map[string]string{}
	for _, prop := range props {
		propPath := joinPath(path, prop.Name)
		l.unsupported(prop.Schema, propPath)

		// Checked before mapType so a skipped property leaves no nested type behind.
		memberName := naming.ToMemberName(prop.Name)
		key := identifierKey(memberName)
		if other, ok := used[key]; ok {
			l.warn(prop.KeyNode, validation.RuleGenerationSkippedProperty, propPath,
				"member name %s clashes with property %q", memberName, other)
			continue
		}

		t, constraints, reason := l.mapType(obj, prop.Name, propPath, prop.Schema)
		if reason != "" {
			l.warn(prop.KeyNode, validation.RuleGenerationSkippedProperty, propPath, "%s", reason)
			continue
		}
		used[key] = prop.Name

		isRequired := required(prop.Name)
		if !isRequired && t.Kind() != TypeSequence {
			t = Optional{Elem: t}
		}

		obj.Members = append(obj.Members, Member{
			SchemaName:  prop.Name,
			Name:        memberName,
			Type:        t,
			Required:    isRequired,
			Constraints: constraints.ForKind(ScalarKind(t)),
		})
	}
	return obj
}

// mapType returns the type of a property and the constraints that apply to its value
// or, for sequences, to each element. Inline objects are lowered into parent.Nested.
func (l *lowering) mapType(parent *Object, propName, propPath string, node *schema.Node) (TypeRef, Constraints, string) {
	switch k := node.Kind(); {
	case k == schema.KindRef:
		return l.named(naming.ToTypeName(schema.RefName(node.Ref)), node)
	case k.IsPrimitive():
		return Primitive{Type: k}, ConstraintsOf(node), ""
	case k == schema.KindObject:
		n, reason := l.nested(parent, naming.ToTypeName(propName), propPath, node)
		return n, Constraints{}, reason
	case k == schema.KindArray:
		return l.sequence(parent, propName, propPath, node)
	default:
		return nil, Constraints{}, "property declares neither a type nor a $ref"
	}
}

func (l *lowering) sequence(parent *Object, propName, propPath string, node *schema.Node) (TypeRef, Constraints, string) {
	items := node.Items
	if items == nil {
		return nil, Constraints{}, "array declares no items"
	}

	var (
		elem        TypeRef
		constraints Constraints
		reason      string
	)
	switch k := items.Kind(); {
	case k == schema.KindRef:
		elem, constraints, reason = l.named(naming.ToTypeName(schema.RefName(items.Ref)), items)
	case k.IsPrimitive():
		elem, constraints = Primitive{Type: k}, ConstraintsOf(items)
	case k == schema.KindObject:
		elem, reason = l.nested(parent, naming.ToTypeName(propName)+"Item", propPath+"[]", items)
	case k == schema.KindArray:
		reason = "arrays of arrays are not supported"
	default:
		reason = "array items declare neither a type nor a $ref"
	}
	if reason != "" {
		return nil, Constraints{}, reason
	}
	return Sequence{Elem: elem}, constraints, ""
}

func (l *lowering) nested(parent *Object, name, path string, node *schema.Node) (Named, string) {
	if !l.shallow && parent != nil {
		if _, ok := parent.NestedObject(name); ok {
			return Named{}, fmt.Sprintf("nested type name %s is already used in %s", name, parent.Name)
		}
		parent.Nested = append(parent.Nested, l.object(name, node, path))
	}
	return Named{Name: name, Target: name, Synthesized: true}, ""
}

// named resolves a reference to the type called name. fallback supplies constraints
// when no registered component carries any.
func (l *lowering) named(name string, fallback *schema.Node) (Named, Constraints, string) {
	res := l.b.r.Resolve(name)
	switch res.Kind {
	case resolver.ResolvedPrimitive:
		l.refs[name] = struct{}{}
		return Named{Name: name, Primitive: res.Primitive}, ConstraintsOf(l.b.r.ResolveComponent(name, fallback)), ""
	case resolver.ResolvedObject:
		l.refs[name] = struct{}{}
		return Named{Name: name, Target: res.Terminal}, Constraints{}, ""
	case resolver.ResolvedUnsupported:
		return Named{}, Constraints{}, fmt.Sprintf("reference to %s does not resolve to a supported type", name)
	default:
		return Named{}, Constraints{}, fmt.Sprintf("unresolved reference to %s", res.Terminal)
	}
}

func (l *lowering) unsupported(node *schema.Node, property string) {
	if node == nil {
		return
	}
	for _, keyword := range node.Unsupported {
		l.diags = append(l.diags, validation.NewHint(node.RootNode, validation.RuleGenerationUnsupportedKeyword,
			"keyword %s is not supported and was ignored", keyword).At(l.entry.Key, property))
	}
}

func (l *lowering) warn(node *yaml.Node, rule, property, format string, args ...any) {
	l.diags = append(l.diags, validation.NewWarning(node, rule, format, args...).At(l.entry.Key, property))
}

// identifierKey folds a member name onto the identifier the back ends derive from it:
// every character that cannot appear in an identifier becomes '_'.
func identifierKey(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, name)
}

func rootOf(n *schema.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	return n.RootNode
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
