// Package session provides the ordered component selection engine for
// Rigforge.
//
// A selection session walks eight fixed steps (CPU through CPU cooler),
// carrying forward the constraints each choice imposes on later steps and
// deducting prices from the remaining budget. The engine holds the shared
// read-only component graph; each session owns its mutable state
// exclusively behind its own lock.
package session

import (
	"strings"
	"sync"

	"github.com/rigforge/rigforge/internal/catalog"
	"github.com/rigforge/rigforge/internal/specs"
)

// Purpose is the declared usage purpose of a build.
type Purpose string

const (
	PurposeGaming      Purpose = "gaming"
	PurposeWorkstation Purpose = "workstation"
	PurposeGeneral     Purpose = "general"
)

// ParsePurpose maps a purpose string onto the enum. Anything unrecognized
// falls back to PurposeGeneral; StartSession only rejects bad budgets.
func ParsePurpose(raw string) Purpose {
	switch Purpose(strings.ToLower(strings.TrimSpace(raw))) {
	case PurposeGaming:
		return PurposeGaming
	case PurposeWorkstation:
		return PurposeWorkstation
	default:
		return PurposeGeneral
	}
}

// TotalSteps is the number of selection steps in a session.
const TotalSteps = 8

// stepCategories is the fixed category order of the selection steps.
var stepCategories = [TotalSteps]catalog.Category{
	catalog.CategoryCPU,
	catalog.CategoryMotherboard,
	catalog.CategoryMemory,
	catalog.CategoryGPU,
	catalog.CategoryStorage,
	catalog.CategoryPSU,
	catalog.CategoryCase,
	catalog.CategoryCooler,
}

// StepCategory returns the component category selected at a step (1-based).
func StepCategory(step int) (catalog.Category, bool) {
	if step < 1 || step > TotalSteps {
		return "", false
	}
	return stepCategories[step-1], true
}

// Selection records one chosen component.
type Selection struct {
	Step        int               `json:"step"`
	ComponentID string            `json:"component_id"`
	Name        string            `json:"name"`
	Category    catalog.Category  `json:"category"`
	Price       int               `json:"price"`
	Specs       map[string]string `json:"specs,omitempty"`
}

// Constraints is the state carried forward across steps, derived from the
// specs of the components selected so far. Zero values mean "not yet
// fixed".
type Constraints struct {
	// Socket required for the motherboard, fixed by the CPU.
	Socket string `json:"socket,omitempty"`

	// MemoryType required for memory, fixed by CPU or motherboard.
	MemoryType string `json:"memory_type,omitempty"`

	// FormFactor required of the case, fixed by the motherboard.
	FormFactor string `json:"form_factor,omitempty"`

	// GPUTDP is the cumulative TDP of selected GPUs, sizing the PSU.
	GPUTDP int `json:"gpu_tdp,omitempty"`

	// GPULengthMM is the selected GPU's length, bounding case clearance.
	GPULengthMM int `json:"gpu_length_mm,omitempty"`

	// MaxCoolerMM is the selected case's cooler clearance.
	MaxCoolerMM int `json:"max_cooler_mm,omitempty"`
}

// Session is one user's selection state. Step holds the last completed
// step; 0 means not started. Operations within one session are serialized
// by mu; different sessions proceed independently.
type Session struct {
	mu sync.Mutex

	ID              string
	Budget          int
	Purpose         Purpose
	Step            int
	Selections      []Selection
	RemainingBudget int
	Constraints     Constraints
}

// snapshot returns a consistent copy of the mutable state for pure
// queries, so no torn reads of constraints or remaining budget occur.
func (s *Session) snapshot() (step int, selections []Selection, remaining int, constraints Constraints) {
	s.mu.Lock()
	defer s.mu.Unlock()

	selections = make([]Selection, len(s.Selections))
	copy(selections, s.Selections)
	return s.Step, selections, s.RemainingBudget, s.Constraints
}

// Store is an injectable, keyed session store. Sessions are never removed
// by the engine; expiry is an external TTL policy.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Put registers a session.
func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
}

// Get returns the session with the given ID.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Range calls fn for each live session until fn returns false. The
// iteration order is unspecified.
func (st *Store) Range(fn func(s *Session) bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	for _, s := range st.sessions {
		if !fn(s) {
			return
		}
	}
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// specFields flattens a spec variant for the selection record.
func specFields(spec specs.Spec) map[string]string {
	if spec == nil {
		return nil
	}
	return spec.Fields()
}
