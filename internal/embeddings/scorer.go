package embeddings

import (
	"math"

	"github.com/rigforge/rigforge/internal/graph"
)

// CosineScorer scores a candidate against the mean feature vector of the
// components already selected. It satisfies the session engine's Scorer
// interface with precomputed vectors keyed by node ID.
type CosineScorer struct {
	vectors map[string][]float32
}

// NewCosineScorer builds a scorer over all component nodes in the graph.
func NewCosineScorer(g *graph.Graph) *CosineScorer {
	idxs := g.NodesByKind(graph.NodeComponent)
	nodes := make([]*graph.Node, 0, len(idxs))
	for _, idx := range idxs {
		nodes = append(nodes, g.Node(idx))
	}

	embedder := NewTFIDFEmbedder()
	vecs := embedder.EmbedNodes(nodes)

	vectors := make(map[string][]float32, len(nodes))
	for i, node := range nodes {
		vectors[node.ID] = vecs[i]
	}
	return &CosineScorer{vectors: vectors}
}

// NewCosineScorerFromVectors builds a scorer from externally computed
// vectors (e.g. loaded from the persisted store).
func NewCosineScorerFromVectors(vectors map[string][]float32) *CosineScorer {
	return &CosineScorer{vectors: vectors}
}

// Score returns a similarity in [0, 1] between the candidate and the mean
// vector of the current selections. With no usable context or an unknown
// candidate it returns 0.5, a neutral score that keeps price as the
// effective tie-breaker.
func (s *CosineScorer) Score(selectionIDs []string, candidateID string) float64 {
	candidate, ok := s.vectors[candidateID]
	if !ok {
		return 0.5
	}

	mean := make([]float64, len(candidate))
	n := 0
	for _, id := range selectionIDs {
		vec, ok := s.vectors[id]
		if !ok || len(vec) != len(candidate) {
			continue
		}
		for i, v := range vec {
			mean[i] += float64(v)
		}
		n++
	}
	if n == 0 {
		return 0.5
	}
	for i := range mean {
		mean[i] /= float64(n)
	}

	cos := cosine(mean, candidate)

	// Map cosine [-1, 1] into [0, 1].
	return (cos + 1) / 2
}

func cosine(a []float64, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * float64(b[i])
		normA += a[i] * a[i]
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Vectors exposes the precomputed vectors for persistence.
func (s *CosineScorer) Vectors() map[string][]float32 {
	return s.vectors
}
