package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigforge/rigforge/internal/catalog"
	"github.com/rigforge/rigforge/internal/graph"
	"github.com/rigforge/rigforge/internal/specs"
)

func storageTestGraph() *graph.Graph {
	g := graph.New()
	cpu := g.AddNode(graph.Node{
		ID: "cpu-1", Kind: graph.NodeComponent, Name: "Ryzen 7 9700X",
		Category: catalog.CategoryCPU, Price: 58000,
		Spec: specs.CPUSpec{Socket: "AM5", MemoryType: "DDR5", TDP: 65},
		Raw:  "SOCKET AM5 DDR5 65W",
	})
	mb := g.AddNode(graph.Node{
		ID: "mb-1", Kind: graph.NodeComponent, Name: "ASUS TUF B650-PLUS",
		Category: catalog.CategoryMotherboard, Price: 25000,
		Spec: specs.MotherboardSpec{Socket: "AM5", MemoryType: "DDR5", FormFactor: "ATX"},
		Raw:  "AM5 DDR5 ATX",
	})
	gpu := g.AddNode(graph.Node{
		ID: "gpu-1", Kind: graph.NodeComponent, Name: "GeForce RTX 4070",
		Category: catalog.CategoryGPU, Price: 88000,
		Spec: specs.GPUSpec{TDP: 200, LengthMM: 304},
		Raw:  "200W 304MM",
	})
	g.AddNode(graph.Node{
		ID: "cat:cpu", Kind: graph.NodeCategory, Name: "cpu",
	})

	_ = g.AddEdge(graph.Edge{Source: cpu, Target: mb, Kind: graph.EdgeCompatibleWith, Weight: 1, Rule: "socket"})
	_ = g.AddEdge(graph.Edge{Source: cpu, Target: gpu, Kind: graph.EdgeSynergyWith, Weight: 0.6, Rule: "tier_match"})
	return g
}

func newBadger(t *testing.T) (*BadgerBackend, string) {
	t.Helper()
	dir := t.TempDir()
	b := NewBadgerBackend()
	require.NoError(t, b.Initialize(dir, false))
	t.Cleanup(func() { _ = b.Close() })
	return b, dir
}

func TestBadgerBackend_BulkLoad(t *testing.T) {
	t.Parallel()

	b, _ := newBadger(t)
	ctx := context.Background()
	require.NoError(t, b.BulkLoad(ctx, storageTestGraph()))

	assert.Equal(t, 4, b.NodeCount())
	assert.Equal(t, 2, b.EdgeCount())

	t.Run("GetNode", func(t *testing.T) {
		node, err := b.GetNode(ctx, "cpu-1")
		require.NoError(t, err)
		require.NotNil(t, node)
		assert.Equal(t, "Ryzen 7 9700X", node.Name)
		assert.Equal(t, catalog.CategoryCPU, node.Category)
		// The spec survives the JSON round trip with its concrete type.
		assert.Equal(t, specs.CPUSpec{Socket: "AM5", MemoryType: "DDR5", TDP: 65}, node.Spec)
	})

	t.Run("GetNodeMissing", func(t *testing.T) {
		node, err := b.GetNode(ctx, "no-such-node")
		require.NoError(t, err)
		assert.Nil(t, node)
	})

	t.Run("GetNodesByCategory", func(t *testing.T) {
		nodes := b.GetNodesByCategory(ctx, "cpu")
		require.Len(t, nodes, 1)
		assert.Equal(t, "cpu-1", nodes[0].ID)

		assert.Empty(t, b.GetNodesByCategory(ctx, "psu"))
	})

	t.Run("GetRelated", func(t *testing.T) {
		related, err := b.GetRelated(ctx, "cpu-1", graph.EdgeCompatibleWith)
		require.NoError(t, err)
		require.Len(t, related, 1)
		assert.Equal(t, "mb-1", related[0].Node.ID)
		assert.Equal(t, "socket", related[0].Rule)

		synergy, err := b.GetRelated(ctx, "cpu-1", graph.EdgeSynergyWith)
		require.NoError(t, err)
		require.Len(t, synergy, 1)
		assert.Equal(t, 0.6, synergy[0].Weight)
	})

	t.Run("ReplacesPreviousContents", func(t *testing.T) {
		small := graph.New()
		small.AddNode(graph.Node{ID: "only", Kind: graph.NodeComponent, Name: "Only", Category: catalog.CategoryCPU})
		require.NoError(t, b.BulkLoad(ctx, small))

		assert.Equal(t, 1, b.NodeCount())
		assert.Equal(t, 0, b.EdgeCount())
	})
}

func TestBadgerBackend_FTSSearch(t *testing.T) {
	t.Parallel()

	b, _ := newBadger(t)
	ctx := context.Background()
	require.NoError(t, b.BulkLoad(ctx, storageTestGraph()))

	t.Run("ByModelNumber", func(t *testing.T) {
		results, err := b.FTSSearch(ctx, "4070", 10)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "gpu-1", results[0].NodeID)
		assert.Equal(t, "GeForce RTX 4070", results[0].Name)
	})

	t.Run("ByName", func(t *testing.T) {
		results, err := b.FTSSearch(ctx, "Ryzen", 10)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "cpu-1", results[0].NodeID)
	})

	t.Run("ByRawText", func(t *testing.T) {
		// AM5 appears in two parts' raw text.
		results, err := b.FTSSearch(ctx, "AM5", 10)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("NoMatch", func(t *testing.T) {
		results, err := b.FTSSearch(ctx, "threadripper", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("LimitApplies", func(t *testing.T) {
		results, err := b.FTSSearch(ctx, "AM5", 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}

func TestBadgerBackend_Embeddings(t *testing.T) {
	t.Parallel()

	b, _ := newBadger(t)
	ctx := context.Background()
	require.NoError(t, b.BulkLoad(ctx, storageTestGraph()))

	embs := []NodeEmbedding{
		{NodeID: "cpu-1", Embedding: []float32{1, 0, 0}},
		{NodeID: "mb-1", Embedding: []float32{0.9, 0.1, 0}},
		{NodeID: "gpu-1", Embedding: []float32{0, 0, 1}},
	}
	require.NoError(t, b.StoreEmbeddings(ctx, embs))

	t.Run("LoadRoundTrip", func(t *testing.T) {
		loaded, err := b.LoadEmbeddings(ctx)
		require.NoError(t, err)
		require.Len(t, loaded, 3)
		assert.Equal(t, []float32{1, 0, 0}, loaded["cpu-1"])
	})

	t.Run("VectorSearch", func(t *testing.T) {
		results, err := b.VectorSearch(ctx, []float32{1, 0, 0}, 10)
		require.NoError(t, err)
		// gpu-1 is orthogonal to the query and is dropped.
		require.Len(t, results, 2)
		assert.Equal(t, "cpu-1", results[0].NodeID)
		assert.Equal(t, "mb-1", results[1].NodeID)
	})

	t.Run("VectorSearchLimit", func(t *testing.T) {
		results, err := b.VectorSearch(ctx, []float32{1, 0, 0}, 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}

func TestBadgerBackend_ReopenReadOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	b := NewBadgerBackend()
	require.NoError(t, b.Initialize(dir, false))
	require.NoError(t, b.BulkLoad(ctx, storageTestGraph()))
	require.NoError(t, b.Close())

	ro := NewBadgerBackend()
	require.NoError(t, ro.Initialize(dir, true))
	defer ro.Close()

	// Counts are rebuilt from the persisted keys.
	assert.Equal(t, 4, ro.NodeCount())
	assert.Equal(t, 2, ro.EdgeCount())

	node, err := ro.GetNode(ctx, "mb-1")
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "ASUS TUF B650-PLUS", node.Name)
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	tokens := tokenize("RTX4070-Super")
	assert.Contains(t, tokens, "rtx4070-super")
	assert.Contains(t, tokens, "rtx")
	assert.Contains(t, tokens, "4070")
	assert.Contains(t, tokens, "super")

	assert.Equal(t, []string{""}, tokenize(""))
}
