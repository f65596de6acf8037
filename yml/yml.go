// Package yml contains helpers for reading yaml.v3 node trees while keeping the
// declared order of mapping keys.
package yml

import (
	"iter"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ResolveAlias follows alias nodes until a concrete node is reached.
func ResolveAlias(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case yaml.AliasNode:
		return ResolveAlias(node.Alias)
	default:
		return node
	}
}

// Unwrap resolves aliases and steps into the content of a document node.
func Unwrap(node *yaml.Node) *yaml.Node {
	node = ResolveAlias(node)
	if node != nil && node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		return Unwrap(node.Content[0])
	}
	return node
}

// IsMergeKey returns true if the given node is a YAML merge key (<<).
func IsMergeKey(node *yaml.Node) bool {
	return node != nil && node.Kind == yaml.ScalarNode && node.Tag == "!!merge" && node.Value == "<<"
}

// MapEntries iterates the key and value nodes of a mapping node in declared order.
// Aliases are resolved and merge keys are expanded in place.
func MapEntries(mapNode *yaml.Node) iter.Seq2[*yaml.Node, *yaml.Node] {
	return func(yield func(*yaml.Node, *yaml.Node) bool) {
		resolved := ResolveAlias(mapNode)
		if resolved == nil || resolved.Kind != yaml.MappingNode {
			return
		}

		for i := 0; i+1 < len(resolved.Content); i += 2 {
			key := ResolveAlias(resolved.Content[i])
			value := ResolveAlias(resolved.Content[i+1])

			if IsMergeKey(key) {
				for _, merged := range mergeSources(value) {
					for k, v := range MapEntries(merged) {
						if !yield(k, v) {
							return
						}
					}
				}
				continue
			}

			if !yield(key, value) {
				return
			}
		}
	}
}

func mergeSources(value *yaml.Node) []*yaml.Node {
	if value == nil {
		return nil
	}
	if value.Kind == yaml.SequenceNode {
		sources := make([]*yaml.Node, 0, len(value.Content))
		for _, n := range value.Content {
			sources = append(sources, ResolveAlias(n))
		}
		return sources
	}
	return []*yaml.Node{value}
}

// GetMapElementNodes returns the key and value nodes stored under key in a mapping node.
// When a key is repeated the last occurrence wins, matching yaml decoding.
func GetMapElementNodes(mapNode *yaml.Node, key string) (*yaml.Node, *yaml.Node, bool) {
	var keyNode, valueNode *yaml.Node
	for k, v := range MapEntries(mapNode) {
		if k.Value == key {
			keyNode, valueNode = k, v
		}
	}
	return keyNode, valueNode, keyNode != nil
}

// GetMapElement returns the value node stored under key in a mapping node or nil.
func GetMapElement(mapNode *yaml.Node, key string) *yaml.Node {
	_, v, _ := GetMapElementNodes(mapNode, key)
	return v
}

// HasKey reports whether a mapping node declares key.
func HasKey(mapNode *yaml.Node, key string) bool {
	_, _, ok := GetMapElementNodes(mapNode, key)
	return ok
}

// IsNull reports whether node is missing or an explicit YAML null.
func IsNull(node *yaml.Node) bool {
	node = ResolveAlias(node)
	return node == nil || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

// ScalarString returns the literal value of a scalar node.
func ScalarString(node *yaml.Node) (string, bool) {
	node = ResolveAlias(node)
	if node == nil || node.Kind != yaml.ScalarNode {
		return "", false
	}
	return node.Value, true
}

// ScalarInt returns the value of an integer scalar node.
func ScalarInt(node *yaml.Node) (int, bool) {
	node = ResolveAlias(node)
	s, ok := ScalarString(node)
	if !ok || node.ShortTag() != "!!int" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsNumber reports whether node is an integer or float scalar.
func IsNumber(node *yaml.Node) bool {
	node = ResolveAlias(node)
	if node == nil || node.Kind != yaml.ScalarNode {
		return false
	}
	switch node.ShortTag() {
	case "!!int", "!!float":
		return true
	default:
		return false
	}
}

// ToValue decodes node into plain Go values: map[string]any, []any, string, int,
// float64, bool or nil.
func ToValue(node *yaml.Node) (any, error) {
	node = ResolveAlias(node)
	if node == nil {
		return nil, nil
	}

	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
