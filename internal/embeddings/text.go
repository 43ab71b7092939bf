package embeddings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rigforge/rigforge/internal/catalog"
	"github.com/rigforge/rigforge/internal/graph"
)

// GenerateEmbeddingText builds the feature text for a component node. The
// text folds in the category, tier, normalized spec fields, and raw spec
// sheet so parts with matching platforms land close together.
func GenerateEmbeddingText(node *graph.Node) string {
	if node == nil {
		return ""
	}

	var parts []string

	parts = append(parts, fmt.Sprintf("%s %s", node.Kind, node.Name))

	if node.Category != "" && node.Category != catalog.CategoryUnknown {
		parts = append(parts, fmt.Sprintf("category %s", node.Category))
	}

	if node.Tier != catalog.TierUnknown {
		parts = append(parts, fmt.Sprintf("tier %s", node.Tier))
	}

	if node.Spec != nil {
		fields := node.Spec.Fields()
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s %s", k, fields[k]))
		}
	}

	if node.Raw != "" {
		raw := node.Raw
		if len(raw) > 500 {
			raw = raw[:500]
		}
		parts = append(parts, raw)
	}

	return strings.Join(parts, ". ")
}
