package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, 20, cfg.MaxEdgesPerNode)
	assert.Equal(t, 250, cfg.DefaultGPUTDPW)
	assert.Equal(t, 300_000, cfg.MinBudget)
	assert.Equal(t, 5, cfg.DefaultTopK)

	// Every purpose table allocates at most the full budget.
	for purpose, table := range cfg.Allocations {
		total := 0.0
		for _, share := range table {
			total += share
		}
		assert.LessOrEqual(t, total, 1.0, "purpose %s", purpose)
	}
}

func TestPSUMargin(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, 300, cfg.PSUMargin(200))
	assert.Equal(t, 300, cfg.PSUMargin(399))
	// The threshold itself gets the large margin.
	assert.Equal(t, 400, cfg.PSUMargin(400))
	assert.Equal(t, 400, cfg.PSUMargin(450))
}

func TestRequiredWattage(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, 850, cfg.RequiredWattage(450))
	assert.Equal(t, 500, cfg.RequiredWattage(200))
	// Unknown TDP assumes the default 250W draw.
	assert.Equal(t, 550, cfg.RequiredWattage(0))
}

func TestAllocation(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, 0.35, cfg.Allocation("gaming", "gpu"))
	assert.Equal(t, 0.35, cfg.Allocation("workstation", "cpu"))

	// Unknown purposes fall back to the general table.
	assert.Equal(t, cfg.Allocation("general", "gpu"), cfg.Allocation("mining", "gpu"))

	// Unknown categories get a full share so only the budget filters.
	assert.Equal(t, 1.0, cfg.Allocation("gaming", "rgb"))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("EmptyPathReturnsDefaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("MissingFileReturnsDefaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("OverlaysDefaults", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "rigforge.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"max_edges_per_node: 5\nmin_budget: 100000\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.MaxEdgesPerNode)
		assert.Equal(t, 100_000, cfg.MinBudget)
		// Untouched fields keep their defaults.
		assert.Equal(t, 250, cfg.DefaultGPUTDPW)
	})

	t.Run("MalformedYAML", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_edges_per_node: [oops"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
