// Package generator drives a run: it registers every entry of a document, seals the
// resolver, lowers and emits the entries in parallel and collects the units together
// with the diagnostics produced along the way.
package generator

import (
	"context"
	"fmt"

	"github.com/speakeasy-api/asyncapi-codegen/asyncapi"
	"github.com/speakeasy-api/asyncapi-codegen/emit"
	"github.com/speakeasy-api/asyncapi-codegen/errors"
	"github.com/speakeasy-api/asyncapi-codegen/internal/sliceutil"
	"github.com/speakeasy-api/asyncapi-codegen/ir"
	"github.com/speakeasy-api/asyncapi-codegen/resolver"
	"github.com/speakeasy-api/asyncapi-codegen/validation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Generator turns AsyncAPI documents into units of one target language.
type Generator struct {
	opts    Options
	emitter emit.Emitter
	log     *zap.Logger
}

// New creates a Generator. It fails with ErrUnknownTarget when no back end is
// registered under the configured target.
func New(opts ...Option) (*Generator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	e, err := emit.Get(o.Target)
	if err != nil {
		return nil, err
	}

	return &Generator{
		opts:    o,
		emitter: e,
		log:     o.Logger.With(zap.String("target", e.Name())),
	}, nil
}

// Result is the outcome of one run.
type Result struct {
	// Units holds one unit per emitted entry, in declaration order.
	Units    []*emit.Unit
	Umbrella *emit.Unit
	Support  []*emit.Unit
	// Diagnostics are the document, resolution and lowering problems, sorted by position.
	Diagnostics []error
	TotalLines  int
}

// Files returns every unit of the result: entries, then support units, then the umbrella.
func (r *Result) Files() []*emit.Unit {
	files := make([]*emit.Unit, 0, len(r.Units)+len(r.Support)+1)
	files = append(files, r.Units...)
	files = append(files, r.Support...)
	if r.Umbrella != nil {
		files = append(files, r.Umbrella)
	}
	return files
}

// Generate emits doc. Entries that cannot be represented are skipped and reported in
// Result.Diagnostics; only a missing components section, an invalid selector or a
// failing back end abort the run.
func (g *Generator) Generate(ctx context.Context, doc *asyncapi.Document) (*Result, error) {
	if doc == nil || !doc.HasComponents() {
		return nil, errors.ErrNoComponents
	}

	entries := doc.Entries()

	r := resolver.New()
	if err := resolver.Populate(r, entries); err != nil {
		return nil, fmt.Errorf("failed to register entries: %w", err)
	}
	for _, e := range entries {
		g.log.Debug("registered entry", zap.String("entry", e.Key), zap.String("type", e.TypeName()), zap.String("section", string(e.Section)))
	}

	selected, err := g.selectEntries(doc)
	if err != nil {
		return nil, err
	}

	b, err := ir.NewBuilder(r)
	if err != nil {
		return nil, err
	}

	opts := emit.Options{Prefix: g.opts.Prefix, WrapWidth: g.opts.WrapWidth}
	units := make([]*emit.Unit, len(selected))
	decls := make([]ir.Decl, len(selected))
	entryDiags := make([][]error, len(selected))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Concurrency)

	for i, entry := range selected {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			decl, diags := b.Build(entry)
			entryDiags[i] = diags
			if decl == nil {
				return nil
			}

			u, err := g.emitter.EmitUnit(decl, opts)
			if err != nil {
				return fmt.Errorf("failed to emit %s: %w", entry.Key, err)
			}
			g.log.Debug("emitted unit", zap.String("entry", entry.Key), zap.String("path", u.Path), zap.Int("lines", u.Lines()))
			units[i] = u
			decls[i] = decl
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Units: dedupe(units)}
	if se, ok := g.emitter.(emit.SymbolEmitter); ok {
		res.Diagnostics = symbolCollisions(se, selected, decls, units, res.Units)
	}

	res.Umbrella, err = g.emitter.EmitUmbrella(res.Units, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to emit umbrella: %w", err)
	}
	if se, ok := g.emitter.(emit.SupportEmitter); ok {
		res.Support, err = se.EmitSupport(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to emit support units: %w", err)
		}
	}

	res.Diagnostics = append(res.Diagnostics, r.Diagnostics()...)
	for _, diags := range entryDiags {
		res.Diagnostics = append(res.Diagnostics, diags...)
	}
	validation.SortValidationErrors(res.Diagnostics)
	for _, d := range res.Diagnostics {
		g.log.Debug("diagnostic", zap.Error(d))
	}

	for _, u := range res.Files() {
		res.TotalLines += u.Lines()
	}

	g.log.Info("generation complete",
		zap.Int("entries", len(entries)),
		zap.Int("units", len(res.Units)),
		zap.Int("diagnostics", len(res.Diagnostics)),
		zap.Int("lines", res.TotalLines),
	)

	return res, nil
}

func (g *Generator) selectEntries(doc *asyncapi.Document) ([]asyncapi.Entry, error) {
	entries := doc.Entries()
	if g.opts.Select == "" {
		return entries, nil
	}

	keys, err := asyncapi.SelectEntries(doc, g.opts.Select)
	if err != nil {
		return nil, err
	}

	selected := make([]asyncapi.Entry, 0, len(keys))
	for _, e := range entries {
		if keys[e.Key] {
			selected = append(selected, e)
		}
	}
	g.log.Debug("selected entries", zap.String("select", g.opts.Select), zap.Int("count", len(selected)))
	return selected, nil
}

// dedupe drops skipped entries and, when several entries normalize to the same file,
// keeps the one registered last, matching the resolver tables.
func dedupe(units []*emit.Unit) []*emit.Unit {
	units = sliceutil.Compact(units)

	last := make(map[string]int, len(units))
	for i, u := range units {
		last[u.Path] = i
	}

	out := make([]*emit.Unit, 0, len(last))
	for i, u := range units {
		if last[u.Path] == i {
			out = append(out, u)
		}
	}
	return out
}

// symbolCollisions reports scope-level names declared by more than one of the kept
// units. The first declaration in entry order keeps the name.
func symbolCollisions(se emit.SymbolEmitter, entries []asyncapi.Entry, decls []ir.Decl, emitted, kept []*emit.Unit) []error {
	keep := make(map[*emit.Unit]bool, len(kept))
	for _, u := range kept {
		keep[u] = true
	}

	owners := map[string]string{}
	var diags []error
	for i, decl := range decls {
		if decl == nil || !keep[emitted[i]] {
			continue
		}
		entry := entries[i]
		for _, sym := range se.Symbols(decl) {
			if other, ok := owners[sym]; ok {
				diags = append(diags, validation.NewWarning(entry.KeyNode, validation.RuleGenerationNameCollision,
					"generated name %s is already declared for %s", sym, other).At(entry.Key, ""))
				continue
			}
			owners[sym] = entry.Key
		}
	}
	return diags
}
