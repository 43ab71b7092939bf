package ingestion

import (
	"github.com/rigforge/rigforge/internal/catalog"
	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/graph"
)

// Synergy edge tags and scores. Co-occurrence in a curated build is a
// stronger signal than mere tier alignment.
const (
	SynergyCooccurrence = "build_cooccurrence"
	SynergyTierMatch    = "tier_match"

	cooccurrenceScore = 1.0
	tierMatchScore    = 0.7
)

// GenerateSynergyEdges adds SYNERGY_WITH edges from curated popular builds
// (pairwise among the build's resolvable parts) and from CPU/GPU tier
// alignment. Returns the number of edges added. Every source node keeps at
// most MaxEdgesPerNode outgoing synergy edges.
func GenerateSynergyEdges(g *graph.Graph, cat *catalog.Catalog, cfg config.Config) int {
	added := 0
	added += cooccurrenceEdges(g, cat.Builds, cfg)
	added += tierMatchEdges(g, cfg)
	return added
}

func cooccurrenceEdges(g *graph.Graph, builds []catalog.Build, cfg config.Config) int {
	added := 0
	for _, build := range builds {
		members := resolveBuildParts(g, build.Parts)

		for i, a := range members {
			for j, b := range members {
				if i == j {
					continue
				}
				if g.OutDegree(a, graph.EdgeSynergyWith, "") >= cfg.MaxEdgesPerNode {
					break
				}
				_ = g.AddEdge(graph.Edge{
					Source: a,
					Target: b,
					Kind:   graph.EdgeSynergyWith,
					Weight: cooccurrenceScore,
					Rule:   SynergyCooccurrence,
				})
				added++
			}
		}
	}
	return added
}

// resolveBuildParts maps build part references (ids or display names) to
// arena indexes, skipping anything unresolvable.
func resolveBuildParts(g *graph.Graph, refs []string) []graph.NodeIndex {
	var members []graph.NodeIndex
	seen := make(map[graph.NodeIndex]bool)

	for _, ref := range refs {
		idx := graph.InvalidNode
		if node, i := g.NodeByID(ref); node != nil {
			idx = i
		} else if i, _, ok := g.ResolveName(ref); ok {
			idx = i
		}
		if idx == graph.InvalidNode || seen[idx] {
			continue
		}
		seen[idx] = true
		members = append(members, idx)
	}
	return members
}

// tierMatchEdges links CPUs and GPUs that share a known performance tier,
// in both directions.
func tierMatchEdges(g *graph.Graph, cfg config.Config) int {
	byTier := make(map[catalog.Tier][]graph.NodeIndex)
	for _, idx := range g.NodesByCategory(catalog.CategoryGPU) {
		if tier := g.Node(idx).Tier; tier != catalog.TierUnknown {
			byTier[tier] = append(byTier[tier], idx)
		}
	}

	added := 0
	link := func(src, dst graph.NodeIndex) {
		if g.OutDegree(src, graph.EdgeSynergyWith, "") >= cfg.MaxEdgesPerNode {
			return
		}
		_ = g.AddEdge(graph.Edge{
			Source: src,
			Target: dst,
			Kind:   graph.EdgeSynergyWith,
			Weight: tierMatchScore,
			Rule:   SynergyTierMatch,
		})
		added++
	}

	for _, cpuIdx := range g.NodesByCategory(catalog.CategoryCPU) {
		tier := g.Node(cpuIdx).Tier
		if tier == catalog.TierUnknown {
			continue
		}
		for _, gpuIdx := range byTier[tier] {
			link(cpuIdx, gpuIdx)
			link(gpuIdx, cpuIdx)
		}
	}
	return added
}
