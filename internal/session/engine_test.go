package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigforge/rigforge/internal/catalog"
	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/graph"
	"github.com/rigforge/rigforge/internal/specs"
)

// buildTestGraph assembles a small catalog with one clearly correct path
// through all eight steps plus incompatible decoys at every step.
func buildTestGraph() *graph.Graph {
	g := graph.New()

	add := func(id string, cat catalog.Category, price int, spec specs.Spec, raw string) {
		g.AddNode(graph.Node{
			ID:       id,
			Kind:     graph.NodeComponent,
			Name:     id,
			Category: cat,
			Price:    price,
			Spec:     spec,
			Raw:      raw,
		})
	}

	add("cpu-intel", catalog.CategoryCPU, 58000,
		specs.CPUSpec{Socket: "LGA1700", MemoryType: "DDR5", TDP: 125}, "")
	add("cpu-amd", catalog.CategoryCPU, 42000,
		specs.CPUSpec{Socket: "AM5", MemoryType: "DDR5", TDP: 65}, "")

	add("mb-lga", catalog.CategoryMotherboard, 30000,
		specs.MotherboardSpec{Socket: "LGA1700", MemoryType: "DDR5", FormFactor: "ATX"}, "")
	add("mb-am5", catalog.CategoryMotherboard, 25000,
		specs.MotherboardSpec{Socket: "AM5", MemoryType: "DDR5", FormFactor: "MATX"}, "")
	add("mb-ddr4", catalog.CategoryMotherboard, 20000,
		specs.MotherboardSpec{Socket: "LGA1700", MemoryType: "DDR4", FormFactor: "ATX"}, "")

	add("mem-ddr5", catalog.CategoryMemory, 16000, specs.MemorySpec{MemoryType: "DDR5"}, "")
	add("mem-ddr4", catalog.CategoryMemory, 12000, specs.MemorySpec{MemoryType: "DDR4"}, "")

	add("gpu-450w", catalog.CategoryGPU, 160000, specs.GPUSpec{TDP: 450, LengthMM: 304}, "")
	add("gpu-200w", catalog.CategoryGPU, 80000, specs.GPUSpec{TDP: 200, LengthMM: 242}, "")

	add("ssd-1", catalog.CategoryStorage, 21000, nil, "")

	add("psu-850", catalog.CategoryPSU, 19000, specs.PSUSpec{Wattage: 850}, "")
	add("psu-750", catalog.CategoryPSU, 17000, specs.PSUSpec{Wattage: 750}, "")
	add("psu-mystery", catalog.CategoryPSU, 10000, specs.PSUSpec{}, "")

	add("case-atx", catalog.CategoryCase, 17000,
		specs.CaseSpec{MaxGPUMM: 355, MaxCoolerMM: 170}, "E-ATX ATX M-ATX GPU 355MM COOLER 170MM")
	add("case-itx", catalog.CategoryCase, 12000,
		specs.CaseSpec{MaxGPUMM: 280, MaxCoolerMM: 155}, "ITX GPU 280MM COOLER 155MM")

	add("cooler-160", catalog.CategoryCooler, 5000, specs.CoolerSpec{HeightMM: 160}, "")
	add("cooler-180", catalog.CategoryCooler, 9000, specs.CoolerSpec{HeightMM: 180}, "")

	return g
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(buildTestGraph(), nil, config.Default())
}

func candidateIDs(c *Candidates) []string {
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ComponentID)
	}
	return ids
}

func TestStartSession(t *testing.T) {
	t.Parallel()

	t.Run("Valid", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)

		s, err := engine.StartSession(500_000, PurposeGaming)
		require.NoError(t, err)
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, 500_000, s.Budget)
		assert.Equal(t, 500_000, s.RemainingBudget)
		assert.Equal(t, 0, s.Step)
		assert.Equal(t, 1, engine.Store().Len())
	})

	t.Run("BudgetBelowMinimum", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)

		_, err := engine.StartSession(100_000, PurposeGaming)
		require.ErrorIs(t, err, ErrInvalidBudget)
		assert.Equal(t, 0, engine.Store().Len())
	})

	t.Run("UnknownPurposeFallsBackToGeneral", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)

		s, err := engine.StartSession(500_000, ParsePurpose("mining"))
		require.NoError(t, err)
		assert.Equal(t, PurposeGeneral, s.Purpose)
	})
}

func TestGetStepCandidates(t *testing.T) {
	t.Parallel()

	t.Run("FirstStepListsOnlyCPUs", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)
		s, err := engine.StartSession(500_000, PurposeGaming)
		require.NoError(t, err)

		candidates, err := engine.GetStepCandidates(s.ID, 1, 10)
		require.NoError(t, err)

		assert.Equal(t, catalog.CategoryCPU, candidates.Category)
		// Neutral scores everywhere, so price ascending decides.
		assert.Equal(t, []string{"cpu-amd", "cpu-intel"}, candidateIDs(candidates))
		assert.Equal(t, 1, candidates.Items[0].Rank)
		assert.Equal(t, 2, candidates.Items[1].Rank)
		assert.False(t, candidates.RelaxationNeeded)
	})

	t.Run("ReadOnly", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)
		s, err := engine.StartSession(500_000, PurposeGaming)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err := engine.GetStepCandidates(s.ID, 1, 5)
			require.NoError(t, err)
		}

		assert.Equal(t, 0, s.Step)
		assert.Equal(t, 500_000, s.RemainingBudget)
		assert.Empty(t, s.Selections)
	})

	t.Run("LaterStepPreviewAllowed", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)
		s, err := engine.StartSession(500_000, PurposeGaming)
		require.NoError(t, err)

		// Previewing the PSU step before any selection applies the
		// default GPU wattage assumption.
		candidates, err := engine.GetStepCandidates(s.ID, 6, 10)
		require.NoError(t, err)
		assert.Equal(t, 550, candidates.Context.MinWattage)
		assert.ElementsMatch(t, []string{"psu-850", "psu-750"}, candidateIDs(candidates))
	})

	t.Run("TopKTruncates", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)
		s, err := engine.StartSession(500_000, PurposeGaming)
		require.NoError(t, err)

		candidates, err := engine.GetStepCandidates(s.ID, 2, 1)
		require.NoError(t, err)
		assert.Len(t, candidates.Items, 1)
	})

	t.Run("UnknownSession", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)

		_, err := engine.GetStepCandidates("nope", 1, 5)
		assert.ErrorIs(t, err, ErrUnknownSession)
	})

	t.Run("InvalidStep", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t)
		s, err := engine.StartSession(500_000, PurposeGaming)
		require.NoError(t, err)

		_, err = engine.GetStepCandidates(s.ID, 0, 5)
		assert.ErrorIs(t, err, ErrInvalidStep)
		_, err = engine.GetStepCandidates(s.ID, 9, 5)
		assert.ErrorIs(t, err, ErrInvalidStep)
	})
}

func TestSelectComponent_ConstraintCarryForward(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	s, err := engine.StartSession(500_000, PurposeGaming)
	require.NoError(t, err)

	// Step 1: the CPU fixes socket and memory type.
	require.NoError(t, engine.SelectComponent(s.ID, 1, "cpu-intel"))
	assert.Equal(t, "LGA1700", s.Constraints.Socket)
	assert.Equal(t, "DDR5", s.Constraints.MemoryType)
	assert.Equal(t, 500_000-58000, s.RemainingBudget)

	// Step 2: only the matching-socket, matching-memory board remains.
	candidates, err := engine.GetStepCandidates(s.ID, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"mb-lga"}, candidateIDs(candidates))
	assert.Equal(t, "LGA1700", candidates.Context.Socket)
	require.NoError(t, engine.SelectComponent(s.ID, 2, "mb-lga"))
	assert.Equal(t, "ATX", s.Constraints.FormFactor)

	// Step 3: memory must match the established type.
	candidates, err = engine.GetStepCandidates(s.ID, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"mem-ddr5"}, candidateIDs(candidates))
	require.NoError(t, engine.SelectComponent(s.ID, 3, "mem-ddr5"))

	// Step 4: the GPU fixes power draw and length.
	require.NoError(t, engine.SelectComponent(s.ID, 4, "gpu-450w"))
	assert.Equal(t, 450, s.Constraints.GPUTDP)
	assert.Equal(t, 304, s.Constraints.GPULengthMM)

	// Step 5: storage is unconstrained.
	require.NoError(t, engine.SelectComponent(s.ID, 5, "ssd-1"))

	// Step 6: 450W TDP demands 450+400=850W; the unknown-wattage unit
	// is excluded because it cannot be proven sufficient.
	candidates, err = engine.GetStepCandidates(s.ID, 6, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"psu-850"}, candidateIDs(candidates))
	assert.Equal(t, 850, candidates.Context.MinWattage)
	require.NoError(t, engine.SelectComponent(s.ID, 6, "psu-850"))

	// Step 7: the case must list ATX and clear the 304mm card.
	candidates, err = engine.GetStepCandidates(s.ID, 7, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"case-atx"}, candidateIDs(candidates))
	require.NoError(t, engine.SelectComponent(s.ID, 7, "case-atx"))
	assert.Equal(t, 170, s.Constraints.MaxCoolerMM)

	// Step 8: the cooler must fit under the case clearance.
	candidates, err = engine.GetStepCandidates(s.ID, 8, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"cooler-160"}, candidateIDs(candidates))
	require.NoError(t, engine.SelectComponent(s.ID, 8, "cooler-160"))

	summary, err := engine.GetSummary(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "complete", summary.Status)
	assert.Equal(t, TotalSteps, summary.Step)
	assert.Len(t, summary.Selections, TotalSteps)

	total := 58000 + 30000 + 16000 + 160000 + 21000 + 19000 + 17000 + 5000
	assert.Equal(t, total, summary.TotalPrice)
	assert.Equal(t, 500_000-total, summary.RemainingBudget)
}

func TestSelectComponent_SequenceViolation(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	s, err := engine.StartSession(500_000, PurposeGaming)
	require.NoError(t, err)

	require.NoError(t, engine.SelectComponent(s.ID, 1, "cpu-intel"))

	// Jumping to step 3 fails and leaves the session untouched.
	err = engine.SelectComponent(s.ID, 3, "mem-ddr5")
	require.ErrorIs(t, err, ErrSequenceViolation)
	assert.Equal(t, 1, s.Step)
	assert.Len(t, s.Selections, 1)
	assert.Equal(t, 500_000-58000, s.RemainingBudget)

	// So does revisiting a completed step with a different component.
	err = engine.SelectComponent(s.ID, 1, "cpu-amd")
	require.ErrorIs(t, err, ErrSequenceViolation)
	assert.Equal(t, "LGA1700", s.Constraints.Socket)
}

func TestSelectComponent_IdempotentRetry(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	s, err := engine.StartSession(500_000, PurposeGaming)
	require.NoError(t, err)

	require.NoError(t, engine.SelectComponent(s.ID, 1, "cpu-intel"))
	// A duplicate delivery of the same selection is a no-op.
	require.NoError(t, engine.SelectComponent(s.ID, 1, "cpu-intel"))

	assert.Equal(t, 1, s.Step)
	assert.Len(t, s.Selections, 1)
	assert.Equal(t, 500_000-58000, s.RemainingBudget)
}

func TestSelectComponent_Validation(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	s, err := engine.StartSession(500_000, PurposeGaming)
	require.NoError(t, err)

	assert.ErrorIs(t, engine.SelectComponent("nope", 1, "cpu-intel"), ErrUnknownSession)
	assert.ErrorIs(t, engine.SelectComponent(s.ID, 0, "cpu-intel"), ErrInvalidStep)
	assert.ErrorIs(t, engine.SelectComponent(s.ID, 1, "no-such-part"), ErrUnknownComponent)
	assert.ErrorIs(t, engine.SelectComponent(s.ID, 1, "gpu-450w"), ErrCategoryMismatch)

	// None of the rejections touched the session.
	assert.Equal(t, 0, s.Step)
	assert.Equal(t, 500_000, s.RemainingBudget)
}

func TestEmptyCandidatesIsAnAnswerNotAnError(t *testing.T) {
	t.Parallel()

	// No motherboard matches an AM5 CPU in this graph.
	g := graph.New()
	g.AddNode(graph.Node{
		ID: "cpu-am5", Kind: graph.NodeComponent, Name: "cpu-am5",
		Category: catalog.CategoryCPU, Price: 42000,
		Spec: specs.CPUSpec{Socket: "AM5", MemoryType: "DDR5"},
	})
	g.AddNode(graph.Node{
		ID: "mb-lga", Kind: graph.NodeComponent, Name: "mb-lga",
		Category: catalog.CategoryMotherboard, Price: 20000,
		Spec: specs.MotherboardSpec{Socket: "LGA1700", MemoryType: "DDR5"},
	})

	engine := NewEngine(g, nil, config.Default())
	s, err := engine.StartSession(500_000, PurposeGaming)
	require.NoError(t, err)
	require.NoError(t, engine.SelectComponent(s.ID, 1, "cpu-am5"))

	candidates, err := engine.GetStepCandidates(s.ID, 2, 10)
	require.NoError(t, err)
	assert.True(t, candidates.RelaxationNeeded)
	assert.Empty(t, candidates.Items)
	assert.Equal(t, "AM5", candidates.Context.Socket)
}

// stubScorer scores by a fixed table, defaulting to the neutral score.
type stubScorer struct {
	scores map[string]float64
}

func (s stubScorer) Score(selectionIDs []string, candidateID string) float64 {
	if score, ok := s.scores[candidateID]; ok {
		return score
	}
	return 0.5
}

func TestScorerOrdersCandidates(t *testing.T) {
	t.Parallel()

	scorer := stubScorer{scores: map[string]float64{
		"cpu-intel": 0.9,
		"cpu-amd":   0.2,
	}}
	engine := NewEngine(buildTestGraph(), scorer, config.Default())

	s, err := engine.StartSession(500_000, PurposeGaming)
	require.NoError(t, err)

	candidates, err := engine.GetStepCandidates(s.ID, 1, 10)
	require.NoError(t, err)

	// The pricier CPU wins on score; price only breaks ties.
	assert.Equal(t, []string{"cpu-intel", "cpu-amd"}, candidateIDs(candidates))
	assert.Equal(t, 0.9, candidates.Items[0].Score)
}

func TestBudgetAllocationFiltersCandidates(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)

	// Workstation allots 15% to the GPU: 0.15 * 500k = 75k, below both
	// cards' prices, so the step needs relaxation.
	s, err := engine.StartSession(500_000, PurposeWorkstation)
	require.NoError(t, err)

	candidates, err := engine.GetStepCandidates(s.ID, 4, 10)
	require.NoError(t, err)
	assert.True(t, candidates.RelaxationNeeded)
	assert.Equal(t, 75_000, candidates.Context.StepBudget)

	// Gaming allots 35%: 175k covers both.
	s2, err := engine.StartSession(500_000, PurposeGaming)
	require.NoError(t, err)

	candidates, err = engine.GetStepCandidates(s2.ID, 4, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"gpu-450w", "gpu-200w"}, candidateIDs(candidates))
}

func TestStepCategory(t *testing.T) {
	t.Parallel()

	want := []catalog.Category{
		catalog.CategoryCPU, catalog.CategoryMotherboard, catalog.CategoryMemory,
		catalog.CategoryGPU, catalog.CategoryStorage, catalog.CategoryPSU,
		catalog.CategoryCase, catalog.CategoryCooler,
	}
	for step := 1; step <= TotalSteps; step++ {
		cat, ok := StepCategory(step)
		require.True(t, ok)
		assert.Equal(t, want[step-1], cat)
	}

	_, ok := StepCategory(0)
	assert.False(t, ok)
	_, ok = StepCategory(9)
	assert.False(t, ok)
}
