// Package specs provides normalized spec extraction for Rigforge.
//
// It defines one tagged spec variant per component category, carrying only
// the fields meaningful to that category. A zero field value always means
// "unknown": extraction never fails, it degrades. Downstream rules must
// treat unknown permissively unless the rule explicitly requires the value.
package specs

import (
	"strconv"

	"github.com/rigforge/rigforge/internal/catalog"
)

// Normalized spec field keys, shared between attribute nodes and the
// persisted artifact format.
const (
	KeySocket      = "socket"
	KeyMemoryType  = "memory_type"
	KeyFormFactor  = "form_factor"
	KeyWattage     = "wattage"
	KeyTDP         = "tdp"
	KeyLengthMM    = "length_mm"
	KeyMaxGPUMM    = "max_gpu_mm"
	KeyMaxCoolerMM = "max_cooler_mm"
	KeyHeightMM    = "height_mm"
)

// Spec is the tagged variant interface implemented by per-category specs.
type Spec interface {
	isSpec()

	// Fields returns the known (non-zero) normalized fields.
	Fields() map[string]string
}

// CPUSpec holds the normalized spec of a CPU.
type CPUSpec struct {
	Socket     string
	MemoryType string
	TDP        int
}

// MotherboardSpec holds the normalized spec of a motherboard.
type MotherboardSpec struct {
	Socket     string
	MemoryType string
	FormFactor string
}

// MemorySpec holds the normalized spec of a memory kit.
type MemorySpec struct {
	MemoryType string
}

// GPUSpec holds the normalized spec of a graphics card.
type GPUSpec struct {
	TDP      int
	LengthMM int
}

// PSUSpec holds the normalized spec of a power supply.
type PSUSpec struct {
	Wattage int
}

// CaseSpec holds the normalized spec of a case.
type CaseSpec struct {
	MaxGPUMM    int
	MaxCoolerMM int
}

// CoolerSpec holds the normalized spec of a CPU cooler.
type CoolerSpec struct {
	HeightMM int
	TDP      int
}

func (CPUSpec) isSpec()         {}
func (MotherboardSpec) isSpec() {}
func (MemorySpec) isSpec()      {}
func (GPUSpec) isSpec()         {}
func (PSUSpec) isSpec()         {}
func (CaseSpec) isSpec()        {}
func (CoolerSpec) isSpec()      {}

// Fields implements Spec.
func (s CPUSpec) Fields() map[string]string {
	m := map[string]string{}
	putStr(m, KeySocket, s.Socket)
	putStr(m, KeyMemoryType, s.MemoryType)
	putInt(m, KeyTDP, s.TDP)
	return m
}

// Fields implements Spec.
func (s MotherboardSpec) Fields() map[string]string {
	m := map[string]string{}
	putStr(m, KeySocket, s.Socket)
	putStr(m, KeyMemoryType, s.MemoryType)
	putStr(m, KeyFormFactor, s.FormFactor)
	return m
}

// Fields implements Spec.
func (s MemorySpec) Fields() map[string]string {
	m := map[string]string{}
	putStr(m, KeyMemoryType, s.MemoryType)
	return m
}

// Fields implements Spec.
func (s GPUSpec) Fields() map[string]string {
	m := map[string]string{}
	putInt(m, KeyTDP, s.TDP)
	putInt(m, KeyLengthMM, s.LengthMM)
	return m
}

// Fields implements Spec.
func (s PSUSpec) Fields() map[string]string {
	m := map[string]string{}
	putInt(m, KeyWattage, s.Wattage)
	return m
}

// Fields implements Spec.
func (s CaseSpec) Fields() map[string]string {
	m := map[string]string{}
	putInt(m, KeyMaxGPUMM, s.MaxGPUMM)
	putInt(m, KeyMaxCoolerMM, s.MaxCoolerMM)
	return m
}

// Fields implements Spec.
func (s CoolerSpec) Fields() map[string]string {
	m := map[string]string{}
	putInt(m, KeyHeightMM, s.HeightMM)
	putInt(m, KeyTDP, s.TDP)
	return m
}

func putStr(m map[string]string, key, val string) {
	if val != "" {
		m[key] = val
	}
}

func putInt(m map[string]string, key string, val int) {
	if val != 0 {
		m[key] = strconv.Itoa(val)
	}
}

// FromFields reconstructs the tagged spec variant for a category from
// normalized field values. Used when decoding persisted nodes. Returns nil
// for categories that carry no spec.
func FromFields(cat catalog.Category, fields map[string]string) Spec {
	geti := func(key string) int {
		n, _ := strconv.Atoi(fields[key])
		return n
	}

	switch cat {
	case catalog.CategoryCPU:
		return CPUSpec{
			Socket:     fields[KeySocket],
			MemoryType: fields[KeyMemoryType],
			TDP:        geti(KeyTDP),
		}
	case catalog.CategoryMotherboard:
		return MotherboardSpec{
			Socket:     fields[KeySocket],
			MemoryType: fields[KeyMemoryType],
			FormFactor: fields[KeyFormFactor],
		}
	case catalog.CategoryMemory:
		return MemorySpec{MemoryType: fields[KeyMemoryType]}
	case catalog.CategoryGPU:
		return GPUSpec{TDP: geti(KeyTDP), LengthMM: geti(KeyLengthMM)}
	case catalog.CategoryPSU:
		return PSUSpec{Wattage: geti(KeyWattage)}
	case catalog.CategoryCase:
		return CaseSpec{MaxGPUMM: geti(KeyMaxGPUMM), MaxCoolerMM: geti(KeyMaxCoolerMM)}
	case catalog.CategoryCooler:
		return CoolerSpec{HeightMM: geti(KeyHeightMM), TDP: geti(KeyTDP)}
	default:
		return nil
	}
}
