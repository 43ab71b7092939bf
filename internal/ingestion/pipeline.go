// Package ingestion provides the graph build pipeline for Rigforge.
//
// The pipeline is a one-time, single-pass batch job over the full catalog:
// load, node construction, the six compatibility rules, synergy,
// suitability, feature vectors, and a bulk load into the persisted store.
// It is sub-quadratic by construction (sorted-partition binary search with
// a fan-out cap) since catalogs can exceed 10^5 parts.
package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/rigforge/rigforge/internal/catalog"
	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/embeddings"
	"github.com/rigforge/rigforge/internal/graph"
	"github.com/rigforge/rigforge/internal/storage"
)

// PipelineResult summarizes a pipeline run.
type PipelineResult struct {
	Parts            int     `json:"parts"`
	Components       int     `json:"components"`
	Attributes       int     `json:"attributes"`
	CompatEdges      int     `json:"compat_edges"`
	SynergyEdges     int     `json:"synergy_edges"`
	SuitabilityEdges int     `json:"suitability_edges"`
	DurationSecs     float64 `json:"duration_secs"`
}

// ProgressCallback is called with phase name and progress (0.0-1.0).
type ProgressCallback func(phase string, progress float64)

// RunPipeline runs the full graph build pipeline. A catalog-load failure
// aborts the whole run; no partial graph is ever bulk-loaded.
func RunPipeline(
	ctx context.Context,
	catalogDir string,
	store storage.Backend,
	cfg config.Config,
	progress ProgressCallback,
	withEmbeddings bool,
) (*graph.Graph, *PipelineResult, error) {
	start := time.Now()
	result := &PipelineResult{}

	report := func(phase string, pct float64) {
		if progress != nil {
			progress(phase, pct)
		}
	}

	// Phase 1: Catalog load
	report("Loading catalog", 0.0)
	cat, err := catalog.Load(catalogDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading catalog: %w", err)
	}
	result.Parts = len(cat.Parts)
	report("Loading catalog", 1.0)

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	g := graph.New()

	// Phase 2: Nodes and attribute edges
	report("Building nodes", 0.0)
	BuildNodes(cat, g)
	result.Components = g.CountByKind(graph.NodeComponent)
	result.Attributes = g.CountByKind(graph.NodeAttribute)
	report("Building nodes", 1.0)

	// Phase 3: Compatibility rules
	report("Deriving compatibility", 0.0)
	result.CompatEdges = GenerateCompatibilityEdges(g, cfg)
	report("Deriving compatibility", 1.0)

	// Phase 4: Synergy
	report("Deriving synergy", 0.0)
	result.SynergyEdges = GenerateSynergyEdges(g, cat, cfg)
	report("Deriving synergy", 1.0)

	// Phase 5: Suitability
	report("Deriving suitability", 0.0)
	result.SuitabilityEdges = GenerateSuitabilityEdges(g, cat, cfg)
	report("Deriving suitability", 1.0)

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Phase 6: Feature vectors (if enabled)
	if withEmbeddings && store != nil {
		report("Generating feature vectors", 0.0)
		if err := GenerateAndStoreEmbeddings(ctx, g, store); err != nil {
			// Vectors only affect ranking quality; don't fail the build.
			fmt.Printf("Warning: feature vector generation failed: %v\n", err)
		}
		report("Generating feature vectors", 1.0)
	}

	// Phase 7: Persist
	if store != nil {
		report("Loading to storage", 0.0)
		if err := store.BulkLoad(ctx, g); err != nil {
			return nil, nil, fmt.Errorf("bulk load: %w", err)
		}
		report("Loading to storage", 1.0)
	}

	result.DurationSecs = time.Since(start).Seconds()
	return g, result, nil
}

// GenerateAndStoreEmbeddings computes TF-IDF feature vectors for all
// component nodes and persists them.
func GenerateAndStoreEmbeddings(ctx context.Context, g *graph.Graph, store storage.Backend) error {
	idxs := g.NodesByKind(graph.NodeComponent)
	if len(idxs) == 0 {
		return nil
	}

	nodes := make([]*graph.Node, 0, len(idxs))
	for _, idx := range idxs {
		nodes = append(nodes, g.Node(idx))
	}

	embedder := embeddings.NewTFIDFEmbedder()
	vectors := embedder.EmbedNodes(nodes)

	storageEmbeddings := make([]storage.NodeEmbedding, len(nodes))
	for i, node := range nodes {
		storageEmbeddings[i] = storage.NodeEmbedding{
			NodeID:    node.ID,
			Embedding: vectors[i],
		}
	}

	return store.StoreEmbeddings(ctx, storageEmbeddings)
}
