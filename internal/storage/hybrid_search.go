package storage

import (
	"context"
	"sort"
)

// HybridSearch combines FTS and vector search using Reciprocal Rank Fusion
// (RRF). k is the RRF constant (typically 60).
func HybridSearch(ctx context.Context, backend Backend, query string, queryVector []float32, limit, k int) ([]SearchResult, error) {
	ftsResults, err := backend.FTSSearch(ctx, query, limit*2)
	if err != nil {
		ftsResults = []SearchResult{}
	}

	var vectorResults []SearchResult
	if len(queryVector) > 0 {
		vectorResults, err = backend.VectorSearch(ctx, queryVector, limit*2)
		if err != nil {
			vectorResults = []SearchResult{}
		}
	}

	// RRF fusion
	rrfScores := make(map[string]float64)
	metadata := make(map[string]SearchResult)

	for i, result := range ftsResults {
		rrfScores[result.NodeID] += 1.0 / float64(k+i)
		if _, exists := metadata[result.NodeID]; !exists {
			metadata[result.NodeID] = result
		}
	}

	for i, result := range vectorResults {
		rrfScores[result.NodeID] += 1.0 / float64(k+i)
		if _, exists := metadata[result.NodeID]; !exists {
			metadata[result.NodeID] = result
		}
	}

	results := make([]SearchResult, 0, len(rrfScores))
	for nodeID, score := range rrfScores {
		meta := metadata[nodeID]
		results = append(results, SearchResult{
			NodeID:   nodeID,
			Score:    score,
			Name:     meta.Name,
			Category: meta.Category,
			Price:    meta.Price,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Price < results[j].Price
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}
