package specs

import (
	"regexp"
	"strconv"

	"github.com/rigforge/rigforge/internal/catalog"
)

// DefaultMaxCoolerMM is the cooler clearance assumed for cases that list a
// GPU clearance but no second dimension.
const DefaultMaxCoolerMM = 160

// Each pattern is an independent extractor with first-match-wins semantics
// within its own key. Input text is expected uppercased (Part.RawText).
var (
	socketPattern     = regexp.MustCompile(`\b(LGA\d+|AM\d|TR\d|WRX\d)\b`)
	memoryTypePattern = regexp.MustCompile(`\bDDR\d\b`)
	formFactorPattern = regexp.MustCompile(`\b(E-ATX|M-ATX|MATX|ATX|ITX)\b`)
	powerPattern      = regexp.MustCompile(`\b(\d+)W\b`)
	dimensionPattern  = regexp.MustCompile(`\b(\d+)MM\b`)
)

// ExtractSocket returns the first socket token (LGA*, AM*, TR*, WRX*) in
// text, or "" if none matches.
func ExtractSocket(text string) string {
	return socketPattern.FindString(text)
}

// ExtractMemoryType returns the first DDR generation token in text, or "".
func ExtractMemoryType(text string) string {
	return memoryTypePattern.FindString(text)
}

// ExtractFormFactor returns the first form factor token in text, with M-ATX
// normalized to MATX. E-ATX is matched before ATX so the longer token wins.
func ExtractFormFactor(text string) string {
	ff := formFactorPattern.FindString(text)
	if ff == "M-ATX" {
		return "MATX"
	}
	return ff
}

// ExtractPower returns the first trailing-W power token in watts, or 0.
func ExtractPower(text string) int {
	m := powerPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	w, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return w
}

// ExtractDimensionsMM returns every NNNMM token in text, in order.
func ExtractDimensionsMM(text string) []int {
	matches := dimensionPattern.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return nil
	}
	dims := make([]int, 0, len(matches))
	for _, m := range matches {
		if d, err := strconv.Atoi(m[1]); err == nil {
			dims = append(dims, d)
		}
	}
	return dims
}

// Extract builds the tagged spec variant for a category from the part's
// uppercased raw text. A pattern that does not match leaves its field at
// the zero value; extraction never fails.
func Extract(cat catalog.Category, text string) Spec {
	switch cat {
	case catalog.CategoryCPU:
		return CPUSpec{
			Socket:     ExtractSocket(text),
			MemoryType: ExtractMemoryType(text),
			TDP:        ExtractPower(text),
		}

	case catalog.CategoryMotherboard:
		return MotherboardSpec{
			Socket:     ExtractSocket(text),
			MemoryType: ExtractMemoryType(text),
			FormFactor: ExtractFormFactor(text),
		}

	case catalog.CategoryMemory:
		return MemorySpec{
			MemoryType: ExtractMemoryType(text),
		}

	case catalog.CategoryGPU:
		spec := GPUSpec{TDP: ExtractPower(text)}
		if dims := ExtractDimensionsMM(text); len(dims) > 0 {
			spec.LengthMM = maxOf(dims)
		}
		return spec

	case catalog.CategoryPSU:
		return PSUSpec{Wattage: ExtractPower(text)}

	case catalog.CategoryCase:
		spec := CaseSpec{}
		dims := ExtractDimensionsMM(text)
		if len(dims) > 0 {
			spec.MaxGPUMM = maxOf(dims)
			if len(dims) >= 2 {
				spec.MaxCoolerMM = minOf(dims)
			} else {
				spec.MaxCoolerMM = DefaultMaxCoolerMM
			}
		}
		return spec

	case catalog.CategoryCooler:
		spec := CoolerSpec{TDP: ExtractPower(text)}
		if dims := ExtractDimensionsMM(text); len(dims) > 0 {
			spec.HeightMM = minOf(dims)
		}
		return spec

	default:
		// Storage and unknown categories carry no normalized spec.
		return nil
	}
}

func maxOf(vals []int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
