// Package config holds the tunable constants of the Rigforge engine.
//
// The rule margins and the edge fan-out cap are heuristics, not hard
// invariants, so they live in a config struct with defaults that a YAML
// file can override instead of being baked into the rules.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable constant of the graph build and the
// selection engine.
type Config struct {
	// MaxEdgesPerNode caps outgoing compatibility/synergy edges per
	// source node and rule, bounding memory on large catalogs.
	MaxEdgesPerNode int `yaml:"max_edges_per_node"`

	// DefaultGPUTDPW is assumed for GPUs whose TDP is unknown.
	DefaultGPUTDPW int `yaml:"default_gpu_tdp_w"`

	// PSUHighTDPThresholdW switches the PSU headroom margin: GPUs at or
	// above this TDP get PSUMarginHighW of headroom, others PSUMarginLowW.
	PSUHighTDPThresholdW int `yaml:"psu_high_tdp_threshold_w"`
	PSUMarginHighW       int `yaml:"psu_margin_high_w"`
	PSUMarginLowW        int `yaml:"psu_margin_low_w"`

	// MinBudget is the smallest budget accepted by start_session.
	MinBudget int `yaml:"min_budget"`

	// DefaultTopK is the candidate list size when the caller passes none.
	DefaultTopK int `yaml:"default_top_k"`

	// Allocations maps purpose -> category -> share of total budget
	// allotted to that category's step.
	Allocations map[string]map[string]float64 `yaml:"allocations"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxEdgesPerNode:      20,
		DefaultGPUTDPW:       250,
		PSUHighTDPThresholdW: 400,
		PSUMarginHighW:       400,
		PSUMarginLowW:        300,
		MinBudget:            300_000,
		DefaultTopK:          5,
		Allocations: map[string]map[string]float64{
			"gaming": {
				"cpu": 0.20, "motherboard": 0.10, "memory": 0.08,
				"gpu": 0.35, "storage": 0.08, "psu": 0.07,
				"case": 0.06, "cooler": 0.06,
			},
			"workstation": {
				"cpu": 0.35, "motherboard": 0.12, "memory": 0.15,
				"gpu": 0.15, "storage": 0.10, "psu": 0.06,
				"case": 0.04, "cooler": 0.03,
			},
			"general": {
				"cpu": 0.25, "motherboard": 0.12, "memory": 0.10,
				"gpu": 0.20, "storage": 0.12, "psu": 0.08,
				"case": 0.07, "cooler": 0.06,
			},
		},
	}
}

// Load reads a YAML config file over the defaults. A missing path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// PSUMargin returns the wattage headroom required above a GPU's TDP.
func (c Config) PSUMargin(tdpW int) int {
	if tdpW >= c.PSUHighTDPThresholdW {
		return c.PSUMarginHighW
	}
	return c.PSUMarginLowW
}

// RequiredWattage returns the minimum PSU wattage for a GPU TDP. An
// unknown (zero) TDP falls back to DefaultGPUTDPW.
func (c Config) RequiredWattage(tdpW int) int {
	if tdpW == 0 {
		tdpW = c.DefaultGPUTDPW
	}
	return tdpW + c.PSUMargin(tdpW)
}

// Allocation returns the budget share for a purpose and category. Unknown
// purposes fall back to the "general" table; an unknown category returns a
// full share so filtering degrades to the remaining budget.
func (c Config) Allocation(purpose, category string) float64 {
	table, ok := c.Allocations[purpose]
	if !ok {
		table = c.Allocations["general"]
	}
	if share, ok := table[category]; ok {
		return share
	}
	return 1.0
}
