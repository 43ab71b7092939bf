package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rigforge/rigforge/internal/graph"
)

// MemoryBackend is an in-memory implementation of Backend for testing.
type MemoryBackend struct {
	mu         sync.RWMutex
	nodes      map[string]*graph.Node
	edges      []storedEdge
	embeddings map[string][]float32
}

// NewMemoryBackend creates a new in-memory storage backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		nodes:      make(map[string]*graph.Node),
		embeddings: make(map[string][]float32),
	}
}

// Initialize implements Backend.
func (m *MemoryBackend) Initialize(path string, readOnly bool) error {
	return nil
}

// Close implements Backend.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes = nil
	m.edges = nil
	m.embeddings = nil
	return nil
}

// BulkLoad implements Backend.
func (m *MemoryBackend) BulkLoad(ctx context.Context, g *graph.Graph) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nodes = make(map[string]*graph.Node, g.NodeCount())
	m.edges = m.edges[:0]

	for i := 0; i < g.NodeCount(); i++ {
		node := *g.Node(graph.NodeIndex(i))
		m.nodes[node.ID] = &node
	}
	for _, e := range g.Edges() {
		m.edges = append(m.edges, storedEdge{
			Source: g.Node(e.Source).ID,
			Target: g.Node(e.Target).ID,
			Kind:   e.Kind,
			Weight: e.Weight,
			Rule:   e.Rule,
		})
	}
	return nil
}

// GetNode implements Backend.
func (m *MemoryBackend) GetNode(ctx context.Context, nodeID string) (*graph.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nodes[nodeID], nil
}

// GetNodesByCategory implements Backend.
func (m *MemoryBackend) GetNodesByCategory(ctx context.Context, category string) []*graph.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*graph.Node
	for _, node := range m.nodes {
		if node.Kind == graph.NodeComponent && string(node.Category) == category {
			result = append(result, node)
		}
	}
	return result
}

// GetRelated implements Backend.
func (m *MemoryBackend) GetRelated(ctx context.Context, nodeID string, kind graph.EdgeKind) ([]RelatedPart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var related []RelatedPart
	for _, e := range m.edges {
		if e.Source != nodeID || e.Kind != kind {
			continue
		}
		node, ok := m.nodes[e.Target]
		if !ok {
			continue
		}
		related = append(related, RelatedPart{Node: node, Rule: e.Rule, Weight: e.Weight})
	}
	return related, nil
}

// FTSSearch implements Backend with naive substring scoring.
func (m *MemoryBackend) FTSSearch(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	query = strings.ToUpper(query)
	var results []SearchResult
	for _, node := range m.nodes {
		if node.Kind != graph.NodeComponent {
			continue
		}
		haystack := strings.ToUpper(node.Name) + " " + node.Raw
		if !strings.Contains(haystack, query) {
			continue
		}
		results = append(results, SearchResult{
			NodeID:   node.ID,
			Score:    1,
			Name:     node.Name,
			Category: string(node.Category),
			Price:    node.Price,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Price < results[j].Price
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// VectorSearch implements Backend.
func (m *MemoryBackend) VectorSearch(ctx context.Context, vector []float32, limit int) ([]SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []SearchResult
	for nodeID, emb := range m.embeddings {
		sim := cosineSimilarity(vector, emb)
		if sim <= 0 {
			continue
		}
		node, ok := m.nodes[nodeID]
		if !ok {
			continue
		}
		results = append(results, SearchResult{
			NodeID:   nodeID,
			Score:    float64(sim),
			Name:     node.Name,
			Category: string(node.Category),
			Price:    node.Price,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// StoreEmbeddings implements Backend.
func (m *MemoryBackend) StoreEmbeddings(ctx context.Context, embeddings []NodeEmbedding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, emb := range embeddings {
		m.embeddings[emb.NodeID] = emb.Embedding
	}
	return nil
}

// LoadEmbeddings implements Backend.
func (m *MemoryBackend) LoadEmbeddings(ctx context.Context) (map[string][]float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]float32, len(m.embeddings))
	for k, v := range m.embeddings {
		result[k] = v
	}
	return result, nil
}

// NodeCount implements Backend.
func (m *MemoryBackend) NodeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// EdgeCount implements Backend.
func (m *MemoryBackend) EdgeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.edges)
}
