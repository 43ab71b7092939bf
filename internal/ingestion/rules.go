package ingestion

import (
	"sort"
	"strings"

	"github.com/rigforge/rigforge/internal/catalog"
	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/graph"
	"github.com/rigforge/rigforge/internal/specs"
)

// Rule tags carried on CompatibleWith edges.
const (
	RuleSocket       = "socket"
	RuleMemoryType   = "memory_type"
	RuleGPULength    = "gpu_length"
	RuleFormFactor   = "form_factor"
	RulePSUCapacity  = "psu_capacity"
	RuleCoolerHeight = "cooler_height"
)

// GenerateCompatibilityEdges runs the six compatibility rules over the
// graph's category partitions and returns the number of edges added.
//
// Rules with a numeric threshold avoid O(n^2) pairwise comparison: targets
// are sorted once by the relevant capacity, then each source binary-searches
// the lowest feasible index and takes up to MaxEdgesPerNode entries from
// there. That yields the smallest feasible superset deterministically.
func GenerateCompatibilityEdges(g *graph.Graph, cfg config.Config) int {
	added := 0

	// CPU -> Motherboard: socket strings must match exactly.
	added += bucketRule(g, cfg, catalog.CategoryCPU, catalog.CategoryMotherboard, RuleSocket,
		func(n *graph.Node) []string {
			if s, ok := n.Spec.(specs.CPUSpec); ok && s.Socket != "" {
				return []string{s.Socket}
			}
			return nil
		},
		func(n *graph.Node) []string {
			if s, ok := n.Spec.(specs.MotherboardSpec); ok && s.Socket != "" {
				return []string{s.Socket}
			}
			return nil
		})

	// Memory -> Motherboard: memory type must match exactly.
	added += bucketRule(g, cfg, catalog.CategoryMemory, catalog.CategoryMotherboard, RuleMemoryType,
		func(n *graph.Node) []string {
			if s, ok := n.Spec.(specs.MemorySpec); ok && s.MemoryType != "" {
				return []string{s.MemoryType}
			}
			return nil
		},
		func(n *graph.Node) []string {
			if s, ok := n.Spec.(specs.MotherboardSpec); ok && s.MemoryType != "" {
				return []string{s.MemoryType}
			}
			return nil
		})

	// GPU -> Case: case GPU clearance must cover the card length.
	added += thresholdRule(g, cfg, catalog.CategoryGPU, catalog.CategoryCase, RuleGPULength,
		func(n *graph.Node) int {
			if s, ok := n.Spec.(specs.GPUSpec); ok {
				return s.LengthMM
			}
			return 0
		},
		func(n *graph.Node) int {
			if s, ok := n.Spec.(specs.CaseSpec); ok {
				return s.MaxGPUMM
			}
			return 0
		})

	// Motherboard -> Case: the case must support the board's form factor.
	// Support is string containment against the case raw text, so a case
	// listing "E-ATX ATX M-ATX" buckets under each listed factor.
	added += bucketRule(g, cfg, catalog.CategoryMotherboard, catalog.CategoryCase, RuleFormFactor,
		func(n *graph.Node) []string {
			if s, ok := n.Spec.(specs.MotherboardSpec); ok && s.FormFactor != "" {
				return []string{s.FormFactor}
			}
			return nil
		},
		caseFormFactors)

	// GPU -> PSU: wattage must cover TDP plus headroom margin.
	added += thresholdRule(g, cfg, catalog.CategoryGPU, catalog.CategoryPSU, RulePSUCapacity,
		func(n *graph.Node) int {
			tdp := 0
			if s, ok := n.Spec.(specs.GPUSpec); ok {
				tdp = s.TDP
			}
			return cfg.RequiredWattage(tdp)
		},
		func(n *graph.Node) int {
			if s, ok := n.Spec.(specs.PSUSpec); ok {
				return s.Wattage
			}
			return 0
		})

	// Cooler -> Case: case cooler clearance must cover the tower height.
	added += thresholdRule(g, cfg, catalog.CategoryCooler, catalog.CategoryCase, RuleCoolerHeight,
		func(n *graph.Node) int {
			if s, ok := n.Spec.(specs.CoolerSpec); ok {
				return s.HeightMM
			}
			return 0
		},
		func(n *graph.Node) int {
			if s, ok := n.Spec.(specs.CaseSpec); ok {
				return s.MaxCoolerMM
			}
			return 0
		})

	return added
}

// caseFormFactors returns every form factor a case supports, derived from
// token containment in its raw text. M-ATX and MATX spellings collapse.
func caseFormFactors(n *graph.Node) []string {
	var supported []string
	raw := n.Raw
	for _, ff := range []string{"E-ATX", "ATX", "MATX", "ITX"} {
		if strings.Contains(raw, ff) || (ff == "MATX" && strings.Contains(raw, "M-ATX")) {
			supported = append(supported, ff)
		}
	}
	return supported
}

// bucketRule links each source to up to MaxEdgesPerNode targets that share
// an exact-match key. Targets within a bucket are ordered by ascending
// price so the cap keeps the cheapest feasible set.
func bucketRule(
	g *graph.Graph,
	cfg config.Config,
	srcCat, dstCat catalog.Category,
	rule string,
	srcKeys func(*graph.Node) []string,
	dstKeys func(*graph.Node) []string,
) int {
	buckets := make(map[string][]graph.NodeIndex)
	for _, idx := range g.NodesByCategory(dstCat) {
		for _, key := range dstKeys(g.Node(idx)) {
			buckets[key] = append(buckets[key], idx)
		}
	}
	for _, bucket := range buckets {
		sortByPrice(g, bucket)
	}

	added := 0
	for _, srcIdx := range g.NodesByCategory(srcCat) {
		for _, key := range srcKeys(g.Node(srcIdx)) {
			bucket := buckets[key]
			if len(bucket) > cfg.MaxEdgesPerNode {
				bucket = bucket[:cfg.MaxEdgesPerNode]
			}
			for _, dstIdx := range bucket {
				_ = g.AddEdge(graph.Edge{
					Source: srcIdx,
					Target: dstIdx,
					Kind:   graph.EdgeCompatibleWith,
					Rule:   rule,
				})
				added++
			}
		}
	}
	return added
}

// thresholdRule links each source to up to MaxEdgesPerNode targets whose
// capacity meets the source's requirement, via binary search into the
// capacity-sorted target list. Targets with unknown (zero) capacity cannot
// be ordered and are skipped.
func thresholdRule(
	g *graph.Graph,
	cfg config.Config,
	srcCat, dstCat catalog.Category,
	rule string,
	requirement func(*graph.Node) int,
	capacity func(*graph.Node) int,
) int {
	type entry struct {
		capacity int
		idx      graph.NodeIndex
	}

	var entries []entry
	for _, idx := range g.NodesByCategory(dstCat) {
		if c := capacity(g.Node(idx)); c > 0 {
			entries = append(entries, entry{capacity: c, idx: idx})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].capacity != entries[j].capacity {
			return entries[i].capacity < entries[j].capacity
		}
		return entries[i].idx < entries[j].idx
	})

	added := 0
	for _, srcIdx := range g.NodesByCategory(srcCat) {
		required := requirement(g.Node(srcIdx))

		// Lowest index satisfying the requirement.
		start := sort.Search(len(entries), func(i int) bool {
			return entries[i].capacity >= required
		})

		end := start + cfg.MaxEdgesPerNode
		if end > len(entries) {
			end = len(entries)
		}
		for _, e := range entries[start:end] {
			_ = g.AddEdge(graph.Edge{
				Source: srcIdx,
				Target: e.idx,
				Kind:   graph.EdgeCompatibleWith,
				Rule:   rule,
			})
			added++
		}
	}
	return added
}

// sortByPrice orders node indexes by ascending price, then index.
func sortByPrice(g *graph.Graph, idxs []graph.NodeIndex) {
	sort.Slice(idxs, func(i, j int) bool {
		pi, pj := g.Node(idxs[i]).Price, g.Node(idxs[j]).Price
		if pi != pj {
			return pi < pj
		}
		return idxs[i] < idxs[j]
	})
}
