// Package graph provides the in-memory component graph for Rigforge.
//
// Nodes live in a flat arena; edges reference arena indexes resolved once
// at insert time. Secondary indexes on kind, category, and adjacency keep
// queries O(result). The graph is built single-threaded by the ingestion
// pipeline and is immutable afterwards, which makes it safe for unlimited
// concurrent readers without locking.
package graph

import (
	"fmt"
	"strings"

	"github.com/rigforge/rigforge/internal/catalog"
)

// Graph is the component compatibility graph.
type Graph struct {
	nodes []Node
	edges []Edge

	byID       map[string]NodeIndex
	byKind     map[NodeKind][]NodeIndex
	byCategory map[catalog.Category][]NodeIndex

	// Adjacency: edge indexes per node.
	outgoing [][]int32
	incoming [][]int32

	// Normalized component name -> arena index.
	names map[string]NodeIndex
}

// New creates an empty component graph.
func New() *Graph {
	return &Graph{
		byID:       make(map[string]NodeIndex),
		byKind:     make(map[NodeKind][]NodeIndex),
		byCategory: make(map[catalog.Category][]NodeIndex),
		names:      make(map[string]NodeIndex),
	}
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// CountByKind returns the number of nodes of the given kind.
func (g *Graph) CountByKind(kind NodeKind) int { return len(g.byKind[kind]) }

// AddNode inserts a node and returns its arena index. Inserting an ID that
// already exists returns the existing index unchanged, so deduplicated
// nodes (attributes, categories) can be added blindly.
func (g *Graph) AddNode(n Node) NodeIndex {
	if idx, ok := g.byID[n.ID]; ok {
		return idx
	}

	idx := NodeIndex(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.outgoing = append(g.outgoing, nil)
	g.incoming = append(g.incoming, nil)

	g.byID[n.ID] = idx
	g.byKind[n.Kind] = append(g.byKind[n.Kind], idx)
	if n.Kind == NodeComponent {
		g.byCategory[n.Category] = append(g.byCategory[n.Category], idx)
		g.names[NormalizeName(n.Name)] = idx
	}
	return idx
}

// AddEdge inserts a directed edge between two arena indexes. A zero weight
// is defaulted to 1.0. Duplicate (source, target, kind) edges are harmless
// and not deduplicated.
func (g *Graph) AddEdge(e Edge) error {
	if e.Source < 0 || int(e.Source) >= len(g.nodes) {
		return fmt.Errorf("edge source index %d out of range", e.Source)
	}
	if e.Target < 0 || int(e.Target) >= len(g.nodes) {
		return fmt.Errorf("edge target index %d out of range", e.Target)
	}
	if e.Weight == 0 {
		e.Weight = 1.0
	}

	edgeIdx := int32(len(g.edges))
	g.edges = append(g.edges, e)
	g.outgoing[e.Source] = append(g.outgoing[e.Source], edgeIdx)
	g.incoming[e.Target] = append(g.incoming[e.Target], edgeIdx)
	return nil
}

// Node returns the node at the given arena index.
func (g *Graph) Node(idx NodeIndex) *Node {
	return &g.nodes[idx]
}

// NodeByID returns the node with the given ID and its index, or
// (nil, InvalidNode) if it does not exist.
func (g *Graph) NodeByID(id string) (*Node, NodeIndex) {
	idx, ok := g.byID[id]
	if !ok {
		return nil, InvalidNode
	}
	return &g.nodes[idx], idx
}

// NodesByKind returns the arena indexes of all nodes of a kind.
func (g *Graph) NodesByKind(kind NodeKind) []NodeIndex {
	return g.byKind[kind]
}

// NodesByCategory returns the arena indexes of all component nodes in a
// category.
func (g *Graph) NodesByCategory(cat catalog.Category) []NodeIndex {
	return g.byCategory[cat]
}

// Edges returns all edges. The slice is shared; callers must not mutate.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Outgoing returns the edges originating at idx. If kind is provided, only
// edges of that kind are returned.
func (g *Graph) Outgoing(idx NodeIndex, kind ...EdgeKind) []Edge {
	return g.collect(g.outgoing[idx], kind...)
}

// Incoming returns the edges targeting idx. If kind is provided, only
// edges of that kind are returned.
func (g *Graph) Incoming(idx NodeIndex, kind ...EdgeKind) []Edge {
	return g.collect(g.incoming[idx], kind...)
}

// OutDegree returns the number of outgoing edges of a kind at idx,
// optionally restricted to one rule tag. Used to enforce the fan-out cap.
func (g *Graph) OutDegree(idx NodeIndex, kind EdgeKind, rule string) int {
	count := 0
	for _, ei := range g.outgoing[idx] {
		e := &g.edges[ei]
		if e.Kind == kind && (rule == "" || e.Rule == rule) {
			count++
		}
	}
	return count
}

func (g *Graph) collect(edgeIdxs []int32, kind ...EdgeKind) []Edge {
	if len(kind) == 0 {
		result := make([]Edge, 0, len(edgeIdxs))
		for _, ei := range edgeIdxs {
			result = append(result, g.edges[ei])
		}
		return result
	}

	var result []Edge
	for _, ei := range edgeIdxs {
		if g.edges[ei].Kind == kind[0] {
			result = append(result, g.edges[ei])
		}
	}
	return result
}

// NormalizeName canonicalizes a component name for index lookup: spaces
// and hyphens stripped, uppercased.
func NormalizeName(name string) string {
	name = strings.NewReplacer(" ", "", "-", "").Replace(name)
	return strings.ToUpper(name)
}

// ResolveName resolves a loosely specified component name to an arena
// index. Lookup is two-tier: exact normalized match first, then substring
// containment in either direction. The exact flag is false for fallback
// hits so callers can log the looser match; two distinct SKUs sharing a
// substring can collide here.
func (g *Graph) ResolveName(name string) (idx NodeIndex, exact bool, ok bool) {
	norm := NormalizeName(name)
	if norm == "" {
		return InvalidNode, false, false
	}

	if idx, found := g.names[norm]; found {
		return idx, true, true
	}

	// Deterministic fallback: among all containment matches, prefer the
	// shortest candidate name (the most specific overlap).
	best := InvalidNode
	bestLen := 0
	for candidate, cidx := range g.names {
		if !strings.Contains(candidate, norm) && !strings.Contains(norm, candidate) {
			continue
		}
		if best == InvalidNode || len(candidate) < bestLen ||
			(len(candidate) == bestLen && cidx < best) {
			best = cidx
			bestLen = len(candidate)
		}
	}
	if best != InvalidNode {
		return best, false, true
	}
	return InvalidNode, false, false
}

// Stats returns a summary of graph size.
func (g *Graph) Stats() map[string]int {
	return map[string]int{
		"nodes":      len(g.nodes),
		"edges":      len(g.edges),
		"components": len(g.byKind[NodeComponent]),
		"attributes": len(g.byKind[NodeAttribute]),
		"purposes":   len(g.byKind[NodePurpose]),
	}
}
