package ingestion

import (
	"sort"

	"github.com/rigforge/rigforge/internal/catalog"
	"github.com/rigforge/rigforge/internal/graph"
	"github.com/rigforge/rigforge/internal/specs"
)

// BuildNodes creates component, category, and attribute nodes with their
// BELONGS_TO and HAS_ATTRIBUTE edges. Attribute nodes are deduplicated per
// distinct (spec-key, spec-value) pair.
func BuildNodes(cat *catalog.Catalog, g *graph.Graph) {
	// Category nodes up front, in step order.
	categoryIdx := make(map[catalog.Category]graph.NodeIndex)
	for _, c := range catalog.Categories {
		categoryIdx[c] = g.AddNode(graph.Node{
			ID:   graph.CategoryID(c),
			Kind: graph.NodeCategory,
			Name: string(c),
		})
	}
	categoryIdx[catalog.CategoryUnknown] = g.AddNode(graph.Node{
		ID:   graph.CategoryID(catalog.CategoryUnknown),
		Kind: graph.NodeCategory,
		Name: string(catalog.CategoryUnknown),
	})

	for i := range cat.Parts {
		part := &cat.Parts[i]
		partCat := part.NormalizedCategory()
		raw := part.RawText()

		idx := g.AddNode(graph.Node{
			ID:       part.ID,
			Kind:     graph.NodeComponent,
			Name:     part.Name,
			Category: partCat,
			Price:    part.Price,
			Tier:     catalog.ParseTier(part.Tier),
			Spec:     specs.Extract(partCat, raw),
			Raw:      raw,
		})

		_ = g.AddEdge(graph.Edge{
			Source: idx,
			Target: categoryIdx[partCat],
			Kind:   graph.EdgeBelongsTo,
		})

		addAttributeEdges(g, idx)
	}
}

// addAttributeEdges links a component to one deduplicated attribute node
// per known spec field.
func addAttributeEdges(g *graph.Graph, idx graph.NodeIndex) {
	// Copy the spec out before AddNode below grows the arena.
	spec := g.Node(idx).Spec
	if spec == nil {
		return
	}

	fields := spec.Fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic edge order

	for _, key := range keys {
		value := fields[key]
		attrIdx := g.AddNode(graph.Node{
			ID:   graph.AttributeID(key, value),
			Kind: graph.NodeAttribute,
			Name: key + "=" + value,
		})
		_ = g.AddEdge(graph.Edge{
			Source: idx,
			Target: attrIdx,
			Kind:   graph.EdgeHasAttribute,
		})
	}
}
