package embeddings

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigforge/rigforge/internal/catalog"
	"github.com/rigforge/rigforge/internal/graph"
	"github.com/rigforge/rigforge/internal/specs"
)

func componentNode(id, name string, cat catalog.Category, spec specs.Spec, raw string) *graph.Node {
	return &graph.Node{
		ID:       id,
		Kind:     graph.NodeComponent,
		Name:     name,
		Category: cat,
		Spec:     spec,
		Raw:      raw,
	}
}

func TestGenerateEmbeddingText(t *testing.T) {
	t.Parallel()

	t.Run("FoldsInAllFeatures", func(t *testing.T) {
		t.Parallel()
		node := &graph.Node{
			ID:       "cpu-1",
			Kind:     graph.NodeComponent,
			Name:     "Ryzen 7 9700X",
			Category: catalog.CategoryCPU,
			Tier:     catalog.TierPerformance,
			Spec:     specs.CPUSpec{Socket: "AM5", MemoryType: "DDR5", TDP: 65},
			Raw:      "SOCKET AM5 DDR5 65W",
		}

		text := GenerateEmbeddingText(node)
		assert.Contains(t, text, "Ryzen 7 9700X")
		assert.Contains(t, text, "category cpu")
		assert.Contains(t, text, "tier performance")
		assert.Contains(t, text, "socket AM5")
		assert.Contains(t, text, "memory_type DDR5")
		assert.Contains(t, text, "SOCKET AM5 DDR5 65W")
	})

	t.Run("SkipsUnknowns", func(t *testing.T) {
		t.Parallel()
		node := componentNode("x", "Mystery Part", catalog.CategoryUnknown, nil, "")

		text := GenerateEmbeddingText(node)
		assert.Contains(t, text, "Mystery Part")
		assert.NotContains(t, text, "category")
		assert.NotContains(t, text, "tier")
	})

	t.Run("CapsRawText", func(t *testing.T) {
		t.Parallel()
		long := make([]byte, 2000)
		for i := range long {
			long[i] = 'A'
		}
		node := componentNode("x", "Part", catalog.CategoryCPU, nil, string(long))

		assert.Less(t, len(GenerateEmbeddingText(node)), 600)
	})

	t.Run("NilNode", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, GenerateEmbeddingText(nil))
	})
}

func TestTFIDFEmbedder(t *testing.T) {
	t.Parallel()

	docs := []string{
		"amd ryzen cpu socket am5 ddr5",
		"intel core cpu socket lga1700 ddr5",
		"nvidia geforce gpu gddr6",
	}

	t.Run("Dimension", func(t *testing.T) {
		t.Parallel()
		e := NewTFIDFEmbedder()
		e.BuildVocabulary(docs)
		e.ComputeIDF(docs)

		vec := e.Embed(docs[0])
		assert.Len(t, vec, EmbeddingDimension)
	})

	t.Run("L2Normalized", func(t *testing.T) {
		t.Parallel()
		e := NewTFIDFEmbedder()
		e.BuildVocabulary(docs)
		e.ComputeIDF(docs)

		vec := e.Embed(docs[1])
		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
	})

	t.Run("EmptyDocumentIsZeroVector", func(t *testing.T) {
		t.Parallel()
		e := NewTFIDFEmbedder()
		e.BuildVocabulary(docs)
		e.ComputeIDF(docs)

		for _, v := range e.Embed("") {
			assert.Zero(t, v)
		}
	})

	t.Run("SharedTermsOverlap", func(t *testing.T) {
		t.Parallel()
		e := NewTFIDFEmbedder()
		e.BuildVocabulary(docs)
		e.ComputeIDF(docs)

		a := e.Embed(docs[0])
		b := e.Embed(docs[1])
		c := e.Embed(docs[2])

		// The two CPU documents share terms; the GPU one shares none.
		assert.Greater(t, dot(a, b), dot(a, c))
	})

	t.Run("TokenizeDropsShortAndNonAlnum", func(t *testing.T) {
		t.Parallel()
		terms := tokenize("DDR5-6000, a B c2! x")
		assert.Equal(t, []string{"ddr5", "6000", "c2"}, terms)
	})
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func TestCosineScorer(t *testing.T) {
	t.Parallel()

	newGraph := func() *graph.Graph {
		g := graph.New()
		g.AddNode(*componentNode("cpu-amd", "Ryzen 7 9700X", catalog.CategoryCPU,
			specs.CPUSpec{Socket: "AM5", MemoryType: "DDR5"}, "AMD AM5 DDR5"))
		g.AddNode(*componentNode("mb-am5", "ASUS B650", catalog.CategoryMotherboard,
			specs.MotherboardSpec{Socket: "AM5", MemoryType: "DDR5"}, "AMD AM5 DDR5 ATX"))
		g.AddNode(*componentNode("mb-lga", "MSI Z790", catalog.CategoryMotherboard,
			specs.MotherboardSpec{Socket: "LGA1700", MemoryType: "DDR5"}, "INTEL LGA1700 DDR5 ATX"))
		return g
	}

	t.Run("ScoreWithinBounds", func(t *testing.T) {
		t.Parallel()
		scorer := NewCosineScorer(newGraph())

		score := scorer.Score([]string{"cpu-amd"}, "mb-am5")
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	})

	t.Run("NeutralWithoutContext", func(t *testing.T) {
		t.Parallel()
		scorer := NewCosineScorer(newGraph())

		assert.Equal(t, 0.5, scorer.Score(nil, "mb-am5"))
		assert.Equal(t, 0.5, scorer.Score([]string{"no-such-part"}, "mb-am5"))
	})

	t.Run("NeutralForUnknownCandidate", func(t *testing.T) {
		t.Parallel()
		scorer := NewCosineScorer(newGraph())

		assert.Equal(t, 0.5, scorer.Score([]string{"cpu-amd"}, "no-such-part"))
	})

	t.Run("SamePlatformScoresHigher", func(t *testing.T) {
		t.Parallel()
		scorer := NewCosineScorer(newGraph())

		am5 := scorer.Score([]string{"cpu-amd"}, "mb-am5")
		lga := scorer.Score([]string{"cpu-amd"}, "mb-lga")
		assert.Greater(t, am5, lga)
	})

	t.Run("FromVectors", func(t *testing.T) {
		t.Parallel()
		vectors := map[string][]float32{
			"a": {1, 0},
			"b": {1, 0},
			"c": {0, 1},
		}
		scorer := NewCosineScorerFromVectors(vectors)

		assert.InDelta(t, 1.0, scorer.Score([]string{"a"}, "b"), 1e-9)
		assert.InDelta(t, 0.5, scorer.Score([]string{"a"}, "c"), 1e-9)
		require.Len(t, scorer.Vectors(), 3)
	})
}
