package conformance

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/speakeasy-api/asyncapi-codegen/yml"
	"gopkg.in/yaml.v3"
)

// jsonValue converts a YAML node into the value model the JSON Schema validator works
// on: map[string]any, []any, string, bool, nil and json.Number for every number.
// Non-string mapping keys are replaced by their JSON encoding.
func jsonValue(node *yaml.Node) (any, error) {
	node = yml.ResolveAlias(node)
	if node == nil {
		return nil, nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return jsonValue(node.Content[0])
	case yaml.MappingNode:
		m := map[string]any{}
		for k, v := range yml.MapEntries(node) {
			key, err := jsonKey(k)
			if err != nil {
				return nil, err
			}
			val, err := jsonValue(v)
			if err != nil {
				return nil, err
			}
			m[key] = val
		}
		return m, nil
	case yaml.SequenceNode:
		s := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			val, err := jsonValue(item)
			if err != nil {
				return nil, err
			}
			s = append(s, val)
		}
		return s, nil
	case yaml.ScalarNode:
		return jsonScalar(node)
	default:
		return nil, fmt.Errorf("unknown node kind: %s", yml.NodeKindToString(node.Kind))
	}
}

func jsonKey(node *yaml.Node) (string, error) {
	v, err := jsonValue(node)
	if err != nil {
		return "", err
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func jsonScalar(node *yaml.Node) (any, error) {
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}

	switch n := v.(type) {
	case int:
		return json.Number(strconv.Itoa(n)), nil
	case int64:
		return json.Number(strconv.FormatInt(n, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(n, 10)), nil
	case float64:
		if math.IsInf(n, 0) || math.IsNaN(n) {
			return nil, fmt.Errorf("line %d: %s has no JSON representation", node.Line, node.Value)
		}
		return json.Number(strconv.FormatFloat(n, 'g', -1, 64)), nil
	default:
		return v, nil
	}
}
