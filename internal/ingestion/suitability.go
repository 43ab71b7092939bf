package ingestion

import (
	"fmt"
	"os"

	"github.com/rigforge/rigforge/internal/catalog"
	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/graph"
	"github.com/rigforge/rigforge/internal/specs"
)

// SuitabilityRule tags SUITABLE_FOR edges.
const SuitabilityRule = "purpose_fit"

// GenerateSuitabilityEdges creates a purpose node per catalog purpose and
// links every GPU meeting the purpose's minimum requirement to it. The
// minimum is a GPU referenced by display name, resolved through the fuzzy
// name index; fallback (non-exact) hits are reported to stderr because
// two SKUs sharing a substring can collide there.
func GenerateSuitabilityEdges(g *graph.Graph, cat *catalog.Catalog, cfg config.Config) int {
	// Purpose nodes first: AddNode grows the arena and would invalidate
	// any node pointers held across the loop below.
	type target struct {
		purposeIdx graph.NodeIndex
		minGPU     string
	}
	targets := make([]target, 0, len(cat.Purposes))
	for _, p := range cat.Purposes {
		idx := g.AddNode(graph.Node{
			ID:   graph.PurposeID(p.ID),
			Kind: graph.NodePurpose,
			Name: p.Name,
		})
		targets = append(targets, target{purposeIdx: idx, minGPU: p.MinGPU})
	}

	added := 0
	for _, t := range targets {
		if t.minGPU == "" {
			continue
		}

		minIdx, exact, ok := g.ResolveName(t.minGPU)
		if !ok {
			continue
		}
		if !exact {
			fmt.Fprintf(os.Stderr, "purpose %q: fuzzy match %q -> %q\n",
				g.Node(t.purposeIdx).Name, t.minGPU, g.Node(minIdx).Name)
		}

		minNode := g.Node(minIdx)
		for _, gpuIdx := range g.NodesByCategory(catalog.CategoryGPU) {
			if !meetsMinimum(g.Node(gpuIdx), minNode) {
				continue
			}
			if g.OutDegree(gpuIdx, graph.EdgeSuitableFor, "") >= cfg.MaxEdgesPerNode {
				continue
			}
			_ = g.AddEdge(graph.Edge{
				Source: gpuIdx,
				Target: t.purposeIdx,
				Kind:   graph.EdgeSuitableFor,
				Rule:   SuitabilityRule,
			})
			added++
		}
	}
	return added
}

// meetsMinimum reports whether a GPU is at least as capable as the
// reference GPU: by tier when both tiers are known, by TDP as a proxy
// otherwise, and permissively when neither is comparable.
func meetsMinimum(gpu, minGPU *graph.Node) bool {
	if gpu.Tier != catalog.TierUnknown && minGPU.Tier != catalog.TierUnknown {
		return gpu.Tier >= minGPU.Tier
	}

	gpuTDP := gpuTDPOf(gpu)
	minTDP := gpuTDPOf(minGPU)
	if gpuTDP > 0 && minTDP > 0 {
		return gpuTDP >= minTDP
	}

	return true
}

func gpuTDPOf(n *graph.Node) int {
	if s, ok := n.Spec.(specs.GPUSpec); ok {
		return s.TDP
	}
	return 0
}
