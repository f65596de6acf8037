package yml

import "gopkg.in/yaml.v3"

// NodeKindToString returns a human-readable string representation of a yaml.Kind
// for use in error messages.
func NodeKindToString(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "array"
	case yaml.MappingNode:
		return "object"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}

// Describe names the JSON type of node for error messages. Scalars are reported by
// their resolved tag ("string", "integer", "number", "boolean", "null").
func Describe(node *yaml.Node) string {
	node = ResolveAlias(node)
	if node == nil {
		return "nothing"
	}
	if node.Kind != yaml.ScalarNode {
		return NodeKindToString(node.Kind)
	}

	switch node.ShortTag() {
	case "!!str":
		return "string"
	case "!!int":
		return "integer"
	case "!!float":
		return "number"
	case "!!bool":
		return "boolean"
	case "!!null":
		return "null"
	default:
		return "scalar"
	}
}
