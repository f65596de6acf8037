package generator

import (
	"fmt"

	"github.com/speakeasy-api/asyncapi-codegen/asyncapi"
	"github.com/speakeasy-api/asyncapi-codegen/errors"
	"github.com/speakeasy-api/asyncapi-codegen/ir"
	"github.com/speakeasy-api/asyncapi-codegen/resolver"
	"github.com/speakeasy-api/asyncapi-codegen/validation"
)

// Lower registers every entry of doc and lowers each of them into a declaration,
// without emitting anything. Skipped entries are missing from the result and reported
// in the diagnostics.
func Lower(doc *asyncapi.Document) ([]ir.Decl, []error, error) {
	if doc == nil || !doc.HasComponents() {
		return nil, nil, errors.ErrNoComponents
	}

	r := resolver.New()
	if err := resolver.Populate(r, doc.Entries()); err != nil {
		return nil, nil, fmt.Errorf("failed to register entries: %w", err)
	}

	b, err := ir.NewBuilder(r)
	if err != nil {
		return nil, nil, err
	}

	diags := r.Diagnostics()
	decls := make([]ir.Decl, 0, len(doc.Entries()))
	for _, e := range doc.Entries() {
		decl, errs := b.Build(e)
		diags = append(diags, errs...)
		if decl != nil {
			decls = append(decls, decl)
		}
	}
	validation.SortValidationErrors(diags)

	return decls, diags, nil
}
