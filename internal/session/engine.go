package session

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/rigforge/rigforge/internal/catalog"
	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/graph"
	"github.com/rigforge/rigforge/internal/specs"
)

// Scorer ranks a candidate component against the components selected so
// far. Implementations must return a score in [0, 1]; a context-free
// neutral score is 0.5.
type Scorer interface {
	Score(selectionIDs []string, candidateID string) float64
}

// Candidate is one ranked, compatibility-filtered component for a step.
type Candidate struct {
	Rank        int               `json:"rank"`
	ComponentID string            `json:"component_id"`
	Name        string            `json:"name"`
	Category    catalog.Category  `json:"category"`
	Price       int               `json:"price"`
	Score       float64           `json:"score"`
	Specs       map[string]string `json:"specs,omitempty"`
}

// CandidateContext reports the constraints that were in force when the
// candidate list was computed, so callers can explain an empty result.
type CandidateContext struct {
	RemainingBudget int    `json:"remaining_budget"`
	StepBudget      int    `json:"step_budget"`
	Socket          string `json:"socket,omitempty"`
	MemoryType      string `json:"memory_type,omitempty"`
	FormFactor      string `json:"form_factor,omitempty"`
	MinWattage      int    `json:"min_wattage,omitempty"`
	GPULengthMM     int    `json:"gpu_length_mm,omitempty"`
	MaxCoolerMM     int    `json:"max_cooler_mm,omitempty"`
}

// Candidates is the result of a candidate query for one step.
type Candidates struct {
	SessionID string           `json:"session_id"`
	Step      int              `json:"step"`
	Category  catalog.Category `json:"category"`
	Items     []Candidate      `json:"items"`

	// RelaxationNeeded is set when no component passes the filters. An
	// empty candidate set is an answer, not an error: the caller should
	// loosen budget or constraints and retry.
	RelaxationNeeded bool `json:"relaxation_needed,omitempty"`

	Context CandidateContext `json:"context"`
}

// Summary reports the full state of a session.
type Summary struct {
	SessionID       string      `json:"session_id"`
	Budget          int         `json:"budget"`
	Purpose         Purpose     `json:"purpose"`
	Step            int         `json:"step"`
	Selections      []Selection `json:"selections"`
	TotalPrice      int         `json:"total_price"`
	RemainingBudget int         `json:"remaining_budget"`
	Status          string      `json:"status"`
}

// Engine drives selection sessions over an immutable component graph.
// The graph and scorer are shared across sessions and never written after
// construction, so engine methods are safe for concurrent use.
type Engine struct {
	graph  *graph.Graph
	scorer Scorer
	store  *Store
	cfg    config.Config
}

// NewEngine creates an engine over a built graph. The scorer may be nil,
// in which case every candidate gets the neutral score.
func NewEngine(g *graph.Graph, scorer Scorer, cfg config.Config) *Engine {
	return &Engine{
		graph:  g,
		scorer: scorer,
		store:  NewStore(),
		cfg:    cfg,
	}
}

// Store exposes the session store, e.g. for an external expiry sweep.
func (e *Engine) Store() *Store { return e.store }

// StartSession opens a new session with the given total budget and
// purpose. Budgets below the configured minimum are rejected.
func (e *Engine) StartSession(budget int, purpose Purpose) (*Session, error) {
	if budget < e.cfg.MinBudget {
		return nil, fmt.Errorf("%w: %d (minimum %d)", ErrInvalidBudget, budget, e.cfg.MinBudget)
	}

	s := &Session{
		ID:              uuid.NewString(),
		Budget:          budget,
		Purpose:         purpose,
		RemainingBudget: budget,
	}
	e.store.Put(s)
	return s, nil
}

// GetStepCandidates returns the ranked candidate list for a step. This is
// a pure query: it never mutates the session, and it may be called for
// any valid step regardless of progress (previewing a later step applies
// the constraints accumulated so far). topK <= 0 uses the configured
// default.
func (e *Engine) GetStepCandidates(sessionID string, step, topK int) (*Candidates, error) {
	s, ok := e.store.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	category, ok := StepCategory(step)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
	if topK <= 0 {
		topK = e.cfg.DefaultTopK
	}

	_, selections, remaining, constraints := s.snapshot()

	stepBudget := int(float64(s.Budget) * e.cfg.Allocation(string(s.Purpose), string(category)))
	priceCap := stepBudget
	if remaining < priceCap {
		priceCap = remaining
	}

	selectionIDs := make([]string, len(selections))
	for i, sel := range selections {
		selectionIDs[i] = sel.ComponentID
	}

	var items []Candidate
	for _, idx := range e.graph.NodesByCategory(category) {
		node := e.graph.Node(idx)
		if node.Price > priceCap {
			continue
		}
		if !passesConstraints(node, category, constraints, e.cfg) {
			continue
		}
		items = append(items, Candidate{
			ComponentID: node.ID,
			Name:        node.Name,
			Category:    category,
			Price:       node.Price,
			Score:       e.score(selectionIDs, node.ID),
			Specs:       specFields(node.Spec),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		if items[i].Price != items[j].Price {
			return items[i].Price < items[j].Price
		}
		return items[i].ComponentID < items[j].ComponentID
	})
	if len(items) > topK {
		items = items[:topK]
	}
	for i := range items {
		items[i].Rank = i + 1
	}

	result := &Candidates{
		SessionID:        sessionID,
		Step:             step,
		Category:         category,
		Items:            items,
		RelaxationNeeded: len(items) == 0,
		Context: CandidateContext{
			RemainingBudget: remaining,
			StepBudget:      stepBudget,
		},
	}
	fillContext(&result.Context, category, constraints, e.cfg)
	return result, nil
}

// SelectComponent applies the component chosen for a step. Steps must be
// taken strictly in order; selecting out of order returns
// ErrSequenceViolation and leaves the session untouched. Re-selecting the
// already-applied component for a completed step is a no-op, so retried
// requests are safe.
func (e *Engine) SelectComponent(sessionID string, step int, componentID string) error {
	s, ok := e.store.Get(sessionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	category, ok := StepCategory(step)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}

	node, idx := e.graph.NodeByID(componentID)
	if idx == graph.InvalidNode || node.Kind != graph.NodeComponent {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, componentID)
	}
	if node.Category != category {
		return fmt.Errorf("%w: %s is %s, step %d selects %s",
			ErrCategoryMismatch, componentID, node.Category, step, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if step <= s.Step {
		// Duplicate delivery of an already-applied selection.
		if s.Selections[step-1].ComponentID == componentID {
			return nil
		}
		return fmt.Errorf("%w: step %d already completed", ErrSequenceViolation, step)
	}
	if step != s.Step+1 {
		return fmt.Errorf("%w: next step is %d, got %d", ErrSequenceViolation, s.Step+1, step)
	}

	s.Selections = append(s.Selections, Selection{
		Step:        step,
		ComponentID: node.ID,
		Name:        node.Name,
		Category:    category,
		Price:       node.Price,
		Specs:       specFields(node.Spec),
	})
	s.RemainingBudget -= node.Price
	applyConstraints(&s.Constraints, node)
	s.Step = step
	return nil
}

// GetSummary returns the session's selections, spend, and status.
func (e *Engine) GetSummary(sessionID string) (*Summary, error) {
	s, ok := e.store.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}

	step, selections, remaining, _ := s.snapshot()

	total := 0
	for _, sel := range selections {
		total += sel.Price
	}
	status := "in_progress"
	if step == TotalSteps {
		status = "complete"
	}

	return &Summary{
		SessionID:       sessionID,
		Budget:          s.Budget,
		Purpose:         s.Purpose,
		Step:            step,
		Selections:      selections,
		TotalPrice:      total,
		RemainingBudget: remaining,
		Status:          status,
	}, nil
}

func (e *Engine) score(selectionIDs []string, candidateID string) float64 {
	if e.scorer == nil {
		return 0.5
	}
	return e.scorer.Score(selectionIDs, candidateID)
}

// passesConstraints applies the carried-forward constraints to one
// candidate. Unknown (zero) spec values pass, except PSU wattage: a PSU
// whose capacity could not be extracted cannot be proven sufficient.
func passesConstraints(node *graph.Node, category catalog.Category, c Constraints, cfg config.Config) bool {
	switch category {
	case catalog.CategoryMotherboard:
		s, ok := node.Spec.(specs.MotherboardSpec)
		if !ok {
			return true
		}
		if c.Socket != "" && s.Socket != "" && s.Socket != c.Socket {
			return false
		}
		if c.MemoryType != "" && s.MemoryType != "" && s.MemoryType != c.MemoryType {
			return false
		}
		return true

	case catalog.CategoryMemory:
		s, ok := node.Spec.(specs.MemorySpec)
		if !ok {
			return true
		}
		if c.MemoryType != "" && s.MemoryType != "" && s.MemoryType != c.MemoryType {
			return false
		}
		return true

	case catalog.CategoryPSU:
		s, ok := node.Spec.(specs.PSUSpec)
		if !ok || s.Wattage == 0 {
			return false
		}
		return s.Wattage >= cfg.RequiredWattage(c.GPUTDP)

	case catalog.CategoryCase:
		if c.FormFactor != "" && !caseSupports(node.Raw, c.FormFactor) {
			return false
		}
		if s, ok := node.Spec.(specs.CaseSpec); ok {
			if c.GPULengthMM > 0 && s.MaxGPUMM > 0 && s.MaxGPUMM < c.GPULengthMM {
				return false
			}
		}
		return true

	case catalog.CategoryCooler:
		if c.MaxCoolerMM == 0 {
			return true
		}
		s, ok := node.Spec.(specs.CoolerSpec)
		if !ok || s.HeightMM == 0 {
			return true
		}
		return s.HeightMM <= c.MaxCoolerMM

	default:
		// CPU, GPU, and storage carry no inbound constraints.
		return true
	}
}

// caseSupports mirrors the form-factor containment rule of the graph
// build: the case raw text must mention the factor, with M-ATX accepted
// as a spelling of MATX.
func caseSupports(raw, formFactor string) bool {
	if strings.Contains(raw, formFactor) {
		return true
	}
	return formFactor == "MATX" && strings.Contains(raw, "M-ATX")
}

// applyConstraints folds one selection's spec into the carried state.
// Earlier steps win on shared fields: the CPU's socket and memory type
// stand even if a later board disagrees.
func applyConstraints(c *Constraints, node *graph.Node) {
	switch s := node.Spec.(type) {
	case specs.CPUSpec:
		if s.Socket != "" {
			c.Socket = s.Socket
		}
		if s.MemoryType != "" {
			c.MemoryType = s.MemoryType
		}
	case specs.MotherboardSpec:
		if s.FormFactor != "" {
			c.FormFactor = s.FormFactor
		}
		if c.Socket == "" && s.Socket != "" {
			c.Socket = s.Socket
		}
		if c.MemoryType == "" && s.MemoryType != "" {
			c.MemoryType = s.MemoryType
		}
	case specs.MemorySpec:
		if c.MemoryType == "" && s.MemoryType != "" {
			c.MemoryType = s.MemoryType
		}
	case specs.GPUSpec:
		c.GPUTDP += s.TDP
		if s.LengthMM > c.GPULengthMM {
			c.GPULengthMM = s.LengthMM
		}
	case specs.CaseSpec:
		if s.MaxCoolerMM > 0 {
			c.MaxCoolerMM = s.MaxCoolerMM
		}
	}
}

// fillContext records the constraints that applied to this step's
// category, for the caller's benefit on relaxation.
func fillContext(ctx *CandidateContext, category catalog.Category, c Constraints, cfg config.Config) {
	switch category {
	case catalog.CategoryMotherboard:
		ctx.Socket = c.Socket
		ctx.MemoryType = c.MemoryType
	case catalog.CategoryMemory:
		ctx.MemoryType = c.MemoryType
	case catalog.CategoryPSU:
		ctx.MinWattage = cfg.RequiredWattage(c.GPUTDP)
	case catalog.CategoryCase:
		ctx.FormFactor = c.FormFactor
		ctx.GPULengthMM = c.GPULengthMM
	case catalog.CategoryCooler:
		ctx.MaxCoolerMM = c.MaxCoolerMM
	}
}
