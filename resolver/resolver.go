// Package resolver holds the symbol tables shared by every emitted type: the alias
// table (type name to primitive keyword or another type name) and the component table
// (type name to the schema node that introduced it).
//
// A Resolver has two phases. During the build phase the pre-pass registers every
// entry. Seal freezes the tables; after that only lookups are allowed, which makes a
// sealed Resolver safe for concurrent readers.
package resolver

import (
	"slices"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/speakeasy-api/asyncapi-codegen/errors"
	"github.com/speakeasy-api/asyncapi-codegen/schema"
	"github.com/speakeasy-api/asyncapi-codegen/validation"
	"gopkg.in/yaml.v3"
)

// Kind describes what a type name finally resolves to.
type Kind int

const (
	// ResolvedMissing is a name no entry defines.
	ResolvedMissing Kind = iota
	// ResolvedPrimitive is a name whose alias chain ends in a primitive keyword.
	ResolvedPrimitive
	// ResolvedObject is a name whose alias chain ends in an object entry.
	ResolvedObject
	// ResolvedUnsupported is a name whose alias chain ends in an entry with no representation.
	ResolvedUnsupported
)

// Resolution is the outcome of chasing a type name through the alias table.
type Resolution struct {
	Kind Kind
	// Terminal is the last name of the chain: a primitive keyword or a type name.
	Terminal string
	// Primitive is set when Kind is ResolvedPrimitive.
	Primitive schema.Kind
}

type component struct {
	key  string
	node *schema.Node
}

// Resolver owns the alias and component tables.
type Resolver struct {
	aliases    map[string]string
	components map[string]component
	sealed     atomic.Bool
	diags      []error
}

// New creates a Resolver in its build phase.
func New() *Resolver {
	return &Resolver{
		aliases:    map[string]string{},
		components: map[string]component{},
	}
}

// RegisterAlias records that name is a typedef of underlying, a primitive keyword
// ("string", "integer", "number", "boolean") or another type name. A later registration
// for the same name replaces the earlier one.
func (r *Resolver) RegisterAlias(name, underlying string) error {
	if r.sealed.Load() {
		return errors.ErrResolverSealed.Wrapf("alias %s", name)
	}
	r.aliases[name] = underlying
	return nil
}

// RegisterComponent records the original schema node of the entry declared under key
// whose normalized type name is name. Two different keys normalizing to the same name
// are reported as a diagnostic; the later registration wins.
func (r *Resolver) RegisterComponent(name, key string, node *schema.Node) error {
	if r.sealed.Load() {
		return errors.ErrResolverSealed.Wrapf("component %s", name)
	}

	if existing, ok := r.components[name]; ok && existing.key != key {
		r.diags = append(r.diags, validation.NewWarning(rootNode(node), validation.RuleValidationDuplicateTypeName,
			"entries %q and %q both map to type %s, the later definition wins", existing.key, key, name).At(key, ""))
	}
	r.components[name] = component{key: key, node: node}
	return nil
}

// Seal ends the build phase. Alias cycles found while sealing are reported through
// Diagnostics. Calling Seal more than once has no further effect.
func (r *Resolver) Seal() {
	if r.sealed.Swap(true) {
		return
	}
	r.detectCycles()
}

// Sealed reports whether Seal was called.
func (r *Resolver) Sealed() bool {
	return r.sealed.Load()
}

// Diagnostics returns the problems found while building and sealing the tables.
func (r *Resolver) Diagnostics() []error {
	return slices.Clone(r.diags)
}

// IsComponent reports whether name was registered as a component.
func (r *Resolver) IsComponent(name string) bool {
	_, ok := r.components[name]
	return ok
}

// Component returns the original schema node registered for name.
func (r *Resolver) Component(name string) (*schema.Node, bool) {
	c, ok := r.components[name]
	return c.node, ok
}

// ResolveAlias follows the alias chain starting at name until it reaches a name with
// no alias entry and returns it. Names that were never aliased resolve to themselves.
// A cyclic chain stops at the first repeated name.
func (r *Resolver) ResolveAlias(name string) string {
	resolved := name
	seen := map[string]bool{}
	for {
		next, ok := r.aliases[resolved]
		if !ok || seen[resolved] {
			return resolved
		}
		seen[resolved] = true
		resolved = next
	}
}

// ResolveComponent walks the same chain as ResolveAlias and returns the schema node
// carrying the constraints for name. Along the chain the last registered component
// that declares constraints wins, otherwise the last registered component. Message
// components contribute their payload node. When no name on the chain is a component,
// fallback is returned unchanged.
func (r *Resolver) ResolveComponent(name string, fallback *schema.Node) *schema.Node {
	var last, constrained *schema.Node

	visit := func(n string) {
		c, ok := r.components[n]
		if !ok {
			return
		}
		node := c.node.PayloadOrSelf()
		last = node
		if node.HasConstraints() {
			constrained = node
		}
	}

	resolved := name
	visit(resolved)
	seen := map[string]bool{}
	for {
		next, ok := r.aliases[resolved]
		if !ok || seen[resolved] {
			break
		}
		seen[resolved] = true
		resolved = next
		visit(resolved)
	}

	switch {
	case constrained != nil:
		return constrained
	case last != nil:
		return last
	default:
		return fallback
	}
}

// Resolve classifies what name finally resolves to.
func (r *Resolver) Resolve(name string) Resolution {
	terminal := r.ResolveAlias(name)
	if k, ok := schema.PrimitiveKind(terminal); ok {
		return Resolution{Kind: ResolvedPrimitive, Terminal: terminal, Primitive: k}
	}

	c, ok := r.components[terminal]
	if !ok {
		return Resolution{Kind: ResolvedMissing, Terminal: terminal}
	}
	if _, aliased := r.aliases[terminal]; aliased {
		// The chain stopped early on a cycle.
		return Resolution{Kind: ResolvedUnsupported, Terminal: terminal}
	}

	switch c.node.PayloadOrSelf().Kind() {
	case schema.KindObject, schema.KindUnknown:
		return Resolution{Kind: ResolvedObject, Terminal: terminal}
	default:
		return Resolution{Kind: ResolvedUnsupported, Terminal: terminal}
	}
}

func (r *Resolver) detectCycles() {
	names := make([]string, 0, len(r.aliases))
	for name := range r.aliases {
		names = append(names, name)
	}
	sort.Strings(names)

	reported := map[string]bool{}
	for _, start := range names {
		var chain []string
		index := map[string]int{}
		current := start
		for {
			if i, ok := index[current]; ok {
				cycle := chain[i:]
				id := cycleID(cycle)
				if !reported[id] {
					reported[id] = true
					var node *yaml.Node
					if c, ok := r.components[cycle[0]]; ok {
						node = rootNode(c.node)
					}
					r.diags = append(r.diags, validation.NewError(node, validation.RuleValidationCircularReference,
						"alias cycle %s", strings.Join(append(cycle, cycle[0]), " -> ")).At(r.keyOf(cycle[0]), ""))
				}
				break
			}
			next, ok := r.aliases[current]
			if !ok {
				break
			}
			index[current] = len(chain)
			chain = append(chain, current)
			current = next
		}
	}
}

func (r *Resolver) keyOf(name string) string {
	if c, ok := r.components[name]; ok {
		return c.key
	}
	return name
}

func cycleID(cycle []string) string {
	sorted := append([]string(nil), cycle...)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

func rootNode(n *schema.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	return n.RootNode
}
