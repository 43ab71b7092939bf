package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/graph"
	"github.com/rigforge/rigforge/internal/storage"
)

const testPartsJSON = `[
	{"id": "cpu-1", "name": "Ryzen 7 9700X", "category": "cpu", "price": 58000, "tier": "performance",
		"fields": {"socket": "AM5", "memory": "DDR5", "tdp": "65W"}},
	{"id": "mb-1", "name": "ASUS TUF B650-PLUS", "category": "motherboard", "price": 25000,
		"fields": {"socket": "AM5", "memory": "DDR5", "form": "ATX"}},
	{"id": "mem-1", "name": "Corsair Vengeance 32GB", "category": "memory", "price": 16000,
		"fields": {"type": "DDR5"}},
	{"id": "gpu-1", "name": "RTX 4070", "category": "gpu", "price": 88000, "tier": "performance",
		"fields": {"tdp": "200W", "length": "304MM"}},
	{"id": "ssd-1", "name": "Samsung 990 Pro 2TB", "category": "ssd", "price": 21000},
	{"id": "psu-1", "name": "Corsair RM850x", "category": "psu", "price": 19000,
		"fields": {"wattage": "850W"}},
	{"id": "case-1", "name": "Fractal North", "category": "case", "price": 17000,
		"fields": {"support": "E-ATX ATX M-ATX", "gpu": "355MM", "cooler": "170MM"}},
	{"id": "cooler-1", "name": "Thermalright PA120", "category": "cooler", "price": 5000,
		"fields": {"height": "155MM"}}
]`

func writeTestCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parts.json"), []byte(testPartsJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "builds.json"),
		[]byte(`[{"name": "Mid build", "parts": ["cpu-1", "gpu-1", "mb-1"]}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "purposes.json"),
		[]byte(`[{"id": "esports", "name": "Esports", "min_gpu": "RTX 4070"}]`), 0o644))
	return dir
}

func TestRunPipeline(t *testing.T) {
	t.Parallel()

	dir := writeTestCatalog(t)
	store := storage.NewMemoryBackend()

	var phases []string
	progress := func(phase string, pct float64) {
		if pct == 0 {
			phases = append(phases, phase)
		}
	}

	g, result, err := RunPipeline(context.Background(), dir, store, config.Default(), progress, true)
	require.NoError(t, err)
	require.NotNil(t, g)

	assert.Equal(t, 8, result.Parts)
	assert.Equal(t, 8, result.Components)
	assert.Greater(t, result.Attributes, 0)
	assert.Greater(t, result.CompatEdges, 0)
	assert.Greater(t, result.SynergyEdges, 0)
	assert.Greater(t, result.SuitabilityEdges, 0)
	assert.GreaterOrEqual(t, result.DurationSecs, 0.0)

	assert.Contains(t, phases, "Loading catalog")
	assert.Contains(t, phases, "Deriving compatibility")
	assert.Contains(t, phases, "Loading to storage")

	// The store holds the whole graph.
	assert.Equal(t, g.NodeCount(), store.NodeCount())
	assert.Equal(t, g.EdgeCount(), store.EdgeCount())

	// Feature vectors were persisted for the component nodes.
	vectors, err := store.LoadEmbeddings(context.Background())
	require.NoError(t, err)
	assert.Len(t, vectors, 8)

	// Spot-check one compatibility edge survived the round trip.
	related, err := store.GetRelated(context.Background(), "cpu-1", graph.EdgeCompatibleWith)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "mb-1", related[0].Node.ID)
	assert.Equal(t, RuleSocket, related[0].Rule)
}

func TestRunPipelineMissingCatalog(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryBackend()
	_, _, err := RunPipeline(context.Background(), t.TempDir(), store, config.Default(), nil, false)

	require.Error(t, err)
	// Nothing was bulk-loaded.
	assert.Equal(t, 0, store.NodeCount())
}

func TestRunPipelineCancelled(t *testing.T) {
	t.Parallel()

	dir := writeTestCatalog(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := RunPipeline(ctx, dir, storage.NewMemoryBackend(), config.Default(), nil, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunPipelineWithoutStore(t *testing.T) {
	t.Parallel()

	dir := writeTestCatalog(t)

	g, result, err := RunPipeline(context.Background(), dir, nil, config.Default(), nil, false)
	require.NoError(t, err)
	assert.NotNil(t, g)
	assert.Equal(t, 8, result.Components)
}

func TestIsCatalogFile(t *testing.T) {
	t.Parallel()

	assert.True(t, isCatalogFile("/data/parts.json"))
	assert.True(t, isCatalogFile("/data/PARTS.JSON"))
	assert.False(t, isCatalogFile("/data/parts.yaml"))
	assert.False(t, isCatalogFile("/data/.rigforge/badger/000001.vlog"))
}
