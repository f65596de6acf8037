package resolver

import (
	"github.com/speakeasy-api/asyncapi-codegen/asyncapi"
	"github.com/speakeasy-api/asyncapi-codegen/naming"
	"github.com/speakeasy-api/asyncapi-codegen/schema"
)

// AliasTarget reports what an entry node is a typedef of, if anything. A message whose
// payload is a $ref aliases the referenced type; a payload (or the entry itself when it
// has no payload) that is a bare primitive aliases the primitive keyword; an entry that
// is itself a bare $ref aliases the referenced type.
func AliasTarget(node *schema.Node) (string, bool) {
	base := node.PayloadOrSelf()
	switch k := base.Kind(); {
	case k == schema.KindRef:
		name := naming.ToTypeName(schema.RefName(base.Ref))
		return name, name != ""
	case k.IsPrimitive():
		return base.Type, true
	default:
		return "", false
	}
}

// Populate runs the registration pre-pass over every entry in declaration order and
// seals the resolver. Entries may reference names declared after them.
func Populate(r *Resolver, entries []asyncapi.Entry) error {
	for _, entry := range entries {
		name := entry.TypeName()
		if name == "" {
			continue
		}

		if target, ok := AliasTarget(entry.Schema); ok {
			if err := r.RegisterAlias(name, target); err != nil {
				return err
			}
		}
		if err := r.RegisterComponent(name, entry.Key, entry.Schema); err != nil {
			return err
		}
	}

	r.Seal()
	return nil
}
