// Package catalog provides raw part catalog loading for Rigforge.
//
// It defines the part record shape consumed by the build pipeline, the
// category taxonomy with normalization of vendor category strings, and the
// performance tier scale used for synergy matching.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrDataNotFound indicates a required catalog file is missing.
// This is fatal at startup: no partial graph is ever served.
var ErrDataNotFound = errors.New("catalog data not found")

// Category identifies a component category.
type Category string

const (
	CategoryCPU         Category = "cpu"
	CategoryMotherboard Category = "motherboard"
	CategoryMemory      Category = "memory"
	CategoryGPU         Category = "gpu"
	CategoryStorage     Category = "storage"
	CategoryPSU         Category = "psu"
	CategoryCase        Category = "case"
	CategoryCooler      Category = "cooler"

	// CategoryUnknown is an explicit bucket for unrecognized category
	// strings. Parts are never dropped for having a strange category.
	CategoryUnknown Category = "unknown"
)

// Categories lists all known component categories in selection-step order.
var Categories = []Category{
	CategoryCPU,
	CategoryMotherboard,
	CategoryMemory,
	CategoryGPU,
	CategoryStorage,
	CategoryPSU,
	CategoryCase,
	CategoryCooler,
}

// categoryAliases maps normalized vendor category strings to categories.
var categoryAliases = map[string]Category{
	"cpu":          CategoryCPU,
	"processor":    CategoryCPU,
	"motherboard":  CategoryMotherboard,
	"mainboard":    CategoryMotherboard,
	"mb":           CategoryMotherboard,
	"mobo":         CategoryMotherboard,
	"memory":       CategoryMemory,
	"ram":          CategoryMemory,
	"gpu":          CategoryGPU,
	"vga":          CategoryGPU,
	"graphics":     CategoryGPU,
	"graphicscard": CategoryGPU,
	"storage":      CategoryStorage,
	"ssd":          CategoryStorage,
	"hdd":          CategoryStorage,
	"nvme":         CategoryStorage,
	"psu":          CategoryPSU,
	"power":        CategoryPSU,
	"powersupply":  CategoryPSU,
	"case":         CategoryCase,
	"chassis":      CategoryCase,
	"cooler":       CategoryCooler,
	"cpucooler":    CategoryCooler,
	"aio":          CategoryCooler,
	"heatsink":     CategoryCooler,
}

// NormalizeCategory maps a raw category string to a known Category.
// Unrecognized strings land in CategoryUnknown rather than being dropped.
func NormalizeCategory(raw string) Category {
	key := strings.ToLower(raw)
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	if cat, ok := categoryAliases[key]; ok {
		return cat
	}
	return CategoryUnknown
}

// Tier is the ordinal performance classification of a part.
type Tier int

const (
	TierUnknown Tier = iota
	TierEntry
	TierMainstream
	TierPerformance
	TierHighEnd
	TierEnthusiast
)

var tierNames = map[Tier]string{
	TierUnknown:     "unknown",
	TierEntry:       "entry",
	TierMainstream:  "mainstream",
	TierPerformance: "performance",
	TierHighEnd:     "high-end",
	TierEnthusiast:  "enthusiast",
}

// String returns the lowercase tier name.
func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseTier maps a tier string to a Tier. Unrecognized strings map to
// TierUnknown.
func ParseTier(raw string) Tier {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "_", "-")
	switch key {
	case "entry", "budget":
		return TierEntry
	case "mainstream", "mid", "midrange", "mid-range":
		return TierMainstream
	case "performance":
		return TierPerformance
	case "high-end", "highend":
		return TierHighEnd
	case "enthusiast", "flagship":
		return TierEnthusiast
	default:
		return TierUnknown
	}
}

// Part is a raw catalog record for a single component.
type Part struct {
	// ID is the unique part identifier.
	ID string `json:"id"`

	// Name is the display name (e.g. "Ryzen 7 9700X").
	Name string `json:"name"`

	// Category is the raw category string as found in the catalog.
	Category string `json:"category"`

	// Price in integer currency units.
	Price int `json:"price"`

	// Tier is the raw performance tier string, if curated.
	Tier string `json:"tier,omitempty"`

	// Fields holds the raw per-part field values (spec sheet rows).
	Fields map[string]string `json:"fields,omitempty"`
}

// RawText concatenates a part's name and raw field values into the
// uppercased text the spec extractor matches against.
func (p *Part) RawText() string {
	parts := make([]string, 0, len(p.Fields)+1)
	parts = append(parts, p.Name)
	for _, v := range p.Fields {
		parts = append(parts, v)
	}
	return strings.ToUpper(strings.Join(parts, " "))
}

// NormalizedCategory returns the part's category mapped onto the taxonomy.
func (p *Part) NormalizedCategory() Category {
	return NormalizeCategory(p.Category)
}

// Build is a curated popular build: a set of parts known to go well
// together. Parts are referenced by id or by display name.
type Build struct {
	Name  string   `json:"name"`
	Parts []string `json:"parts"`
}

// Purpose is a usage purpose (typically a game) with a minimum GPU
// requirement, referenced by display name.
type Purpose struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	MinGPU string `json:"min_gpu,omitempty"`
}

// Catalog holds everything the build pipeline consumes.
type Catalog struct {
	Parts    []Part
	Builds   []Build
	Purposes []Purpose
}

// File names expected under the catalog directory.
const (
	partsFile    = "parts.json"
	buildsFile   = "builds.json"
	purposesFile = "purposes.json"
)

// Load reads a catalog directory. parts.json is required; builds.json and
// purposes.json are optional enrichment.
func Load(dir string) (*Catalog, error) {
	cat := &Catalog{}

	partsPath := filepath.Join(dir, partsFile)
	if err := readJSON(partsPath, &cat.Parts); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDataNotFound, partsPath)
		}
		return nil, fmt.Errorf("loading %s: %w", partsPath, err)
	}

	if err := readJSON(filepath.Join(dir, buildsFile), &cat.Builds); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading %s: %w", buildsFile, err)
	}

	if err := readJSON(filepath.Join(dir, purposesFile), &cat.Purposes); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading %s: %w", purposesFile, err)
	}

	return cat, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}
