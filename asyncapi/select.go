package asyncapi

import (
	"fmt"

	"github.com/speakeasy-api/asyncapi-codegen/yml"
	"github.com/vmware-labs/yaml-jsonpath/pkg/yamlpath"
	"gopkg.in/yaml.v3"
)

// SelectEntries evaluates a JSONPath expression against the document and returns the
// keys of the entries whose schema node was matched, for example
// "$.components.messages.*" or "$.components.schemas[?(@.type=='object')]".
// Entries only contribute when the expression matches their node exactly.
func SelectEntries(doc *Document, expr string) (map[string]bool, error) {
	path, err := yamlpath.NewPath(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", expr, err)
	}

	matches, err := path.Find(doc.RootNode)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate selector %q: %w", expr, err)
	}

	matched := make(map[*yaml.Node]bool, len(matches))
	for _, m := range matches {
		matched[yml.ResolveAlias(m)] = true
	}

	selected := map[string]bool{}
	for _, entry := range doc.entries {
		if matched[entry.Schema.RootNode] {
			selected[entry.Key] = true
		}
	}
	return selected, nil
}
