package boundary

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnarlynerd-lab/pets/core/env"
)

func calmView() *env.View {
	return &env.View{
		Tier:           env.TierNarrow,
		CurrentWeather: env.WeatherClear,
		AmbientEnergy:  0.5,
		Regions:        map[string]*env.RegionView{},
	}
}

func stormyView() *env.View {
	v := calmView()
	v.CurrentWeather = env.WeatherStormy
	v.AmbientEnergy = 0.1
	return v
}

func TestBoundaryUpdate(t *testing.T) {
	t.Run("MaintainedTightensSlowly", func(t *testing.T) {
		s := NewSystem(rand.New(rand.NewSource(42)))
		before := s.Permeability()
		result := s.Update(calmView(), "p1", 50)
		assert.Equal(t, StatusMaintained, result.Status)
		assert.InDelta(t, before-0.01, result.Permeability, 1e-9)
	})

	t.Run("StarvedBoundaryFailsOpen", func(t *testing.T) {
		s := NewSystem(rand.New(rand.NewSource(42)))
		before := s.Permeability()
		result := s.Update(stormyView(), "p1", 0)
		assert.Equal(t, StatusFailing, result.Status)
		assert.InDelta(t, before+0.1, result.Permeability, 1e-9)
		assert.InDelta(t, 1.0-0.05, result.Size, 1e-9)
	})

	t.Run("PermeabilityNeverLeavesBounds", func(t *testing.T) {
		s := NewSystem(rand.New(rand.NewSource(42)))
		for i := 0; i < 300; i++ {
			available := 0.0
			if i%2 == 0 {
				available = 100.0
			}
			result := s.Update(stormyView(), "p1", available)
			assert.GreaterOrEqual(t, result.Permeability, MinPermeability)
			assert.LessOrEqual(t, result.Permeability, MaxPermeability)
			assert.GreaterOrEqual(t, result.Size, MinSize)
			assert.LessOrEqual(t, result.Size, MaxSize)
		}
	})

	t.Run("StormRaisesCost", func(t *testing.T) {
		calm := NewSystem(rand.New(rand.NewSource(1)))
		stormy := NewSystem(rand.New(rand.NewSource(1)))
		calmResult := calm.Update(calmView(), "p1", 100)
		stormyResult := stormy.Update(stormyView(), "p1", 100)
		assert.Greater(t, stormyResult.Consumed, calmResult.Consumed)
	})
}

func TestAssimilation(t *testing.T) {
	t.Run("RigidBoundaryRefuses", func(t *testing.T) {
		s := NewSystem(rand.New(rand.NewSource(42)))
		s.AdjustPermeability(-1.0, MinPermeability, MaxPermeability)
		require.Less(t, s.Permeability(), 0.2)

		result := s.AttemptAssimilation(ElementResource, nil, nil, 0.3)
		assert.False(t, result.Success)
		assert.Equal(t, "boundary_too_rigid", result.Reason)
	})

	t.Run("ZeroDifficultySucceedsEventually", func(t *testing.T) {
		s := NewSystem(rand.New(rand.NewSource(42)))
		succeeded := false
		for i := 0; i < 50 && !succeeded; i++ {
			succeeded = s.AttemptAssimilation(ElementResource, nil, map[string]float64{"energy": 1}, 0).Success
		}
		assert.True(t, succeeded)
		assert.Greater(t, s.Size(), 1.0)
	})

	t.Run("ImpossibleDifficultyAlwaysFails", func(t *testing.T) {
		s := NewSystem(rand.New(rand.NewSource(42)))
		for i := 0; i < 50; i++ {
			result := s.AttemptAssimilation(ElementFeature, nil, nil, 1.0)
			assert.False(t, result.Success)
		}
	})

	t.Run("ReleaseShrinksBoundary", func(t *testing.T) {
		s := NewSystem(rand.New(rand.NewSource(42)))
		var id string
		for id == "" {
			if result := s.AttemptAssimilation(ElementResource, nil, nil, 0); result.Success {
				id = result.ElementID
			}
		}
		sizeBefore := s.Size()
		result := s.ReleaseElement(id)
		require.True(t, result.Success)
		assert.InDelta(t, sizeBefore-0.05, s.Size(), 1e-9)
		assert.Equal(t, 0, s.ElementCount())

		assert.False(t, s.ReleaseElement("missing").Success)
	})
}

func TestExchangeSystem(t *testing.T) {
	newExchange := func(seed int64) (*System, *ExchangeSystem) {
		rng := rand.New(rand.NewSource(seed))
		b := NewSystem(rng)
		return b, NewExchangeSystem("p1", b, rng)
	}

	t.Run("ScanFiltersComplexFeatures", func(t *testing.T) {
		_, x := newExchange(42)
		view := calmView()
		view.Regions["central"] = &env.RegionView{
			ID: "central",
			Features: []env.Feature{
				{Type: "simple", Complexity: 0.4},
				{Type: "arcane", Complexity: 0.9},
			},
			Resources: map[string]float64{"food": 10, "ambient_energy": 1},
		}

		candidates := x.ScanEnvironment(view, nil)
		var types []string
		for _, c := range candidates {
			types = append(types, c.ID)
		}
		assert.Contains(t, types, "simple")
		assert.NotContains(t, types, "arcane")
		assert.Contains(t, types, "food")
	})

	t.Run("ProjectionCandidatesNeedCompatibility", func(t *testing.T) {
		_, x := newExchange(42)
		view := calmView()
		view.Regions["central"] = &env.RegionView{
			ID: "central",
			Projections: []*env.Projection{
				{ID: "other", SourcePet: "p2", Type: "social_signal"},
				{ID: "own", SourcePet: "p1", Type: "social_signal"},
			},
		}

		none := x.ScanEnvironment(view, func(*env.Projection) float64 { return 0.1 })
		assert.Empty(t, none)

		compatible := x.ScanEnvironment(view, func(*env.Projection) float64 { return 0.9 })
		require.Len(t, compatible, 1)
		assert.Equal(t, "other", compatible[0].ID)
	})

	t.Run("ResourceEffects", func(t *testing.T) {
		effects := elementEffects(Candidate{Type: ElementResource, Name: "food", Amount: 3})
		assert.InDelta(t, 6.0, effects["energy"], 1e-9)

		effects = elementEffects(Candidate{Type: ElementProjection})
		assert.InDelta(t, 0.2, effects["social_connection"], 1e-9)
	})

	t.Run("RigidBoundaryCannotProject", func(t *testing.T) {
		b, x := newExchange(42)
		b.AdjustPermeability(-1.0, MinPermeability, MaxPermeability)
		result := x.ProjectToEnvironment("social_signal", nil, "central")
		assert.False(t, result.Success)
		assert.Equal(t, "boundary_too_rigid", result.Reason)
	})

	t.Run("ProjectionDecaysToDissipation", func(t *testing.T) {
		_, x := newExchange(42)
		result := x.ProjectToEnvironment("territorial_marker", nil, "central")
		require.True(t, result.Success)

		// Empty region, creator absent: pure -0.05 decay from 0.5.
		view := calmView()
		view.Regions["central"] = &env.RegionView{ID: "central"}

		var last []ProjectionStatus
		for i := 0; i < 10; i++ {
			last = x.MaintainProjections(view)
		}
		require.Len(t, last, 1)
		assert.Equal(t, "dissipated", last[0].Status)
		assert.Equal(t, 0, x.ProjectionCount())
	})

	t.Run("CreatorPresenceSlowsDecay", func(t *testing.T) {
		_, x := newExchange(42)
		require.True(t, x.ProjectToEnvironment("social_signal", nil, "central").Success)

		view := calmView()
		view.Regions["central"] = &env.RegionView{ID: "central", CurrentPets: []string{"p1"}}

		statuses := x.MaintainProjections(view)
		require.Len(t, statuses, 1)
		assert.Equal(t, "maintained", statuses[0].Status)
		assert.InDelta(t, 0.5, statuses[0].Stability, 1e-9)
	})

	t.Run("MissingRegionFailsProjection", func(t *testing.T) {
		_, x := newExchange(42)
		require.True(t, x.ProjectToEnvironment("social_signal", nil, "gone").Success)

		statuses := x.MaintainProjections(calmView())
		require.Len(t, statuses, 1)
		assert.Equal(t, "failed", statuses[0].Status)
		assert.Equal(t, "region_not_found", statuses[0].Reason)
	})

	t.Run("IntegrationProgressesAndStaysBounded", func(t *testing.T) {
		b, x := newExchange(42)
		var id string
		for id == "" {
			if result := b.AttemptAssimilation(ElementResource, nil, map[string]float64{"energy": 2}, 0); result.Success {
				id = result.ElementID
			}
		}

		for i := 0; i < 500; i++ {
			for _, ev := range x.IntegrateElements() {
				assert.GreaterOrEqual(t, ev.Integration, 0.0)
				assert.LessOrEqual(t, ev.Integration, 1.0)
			}
		}
		elements := b.Elements()
		require.Len(t, elements, 1)
		assert.LessOrEqual(t, elements[0].Integration, 1.0)
		assert.Greater(t, elements[0].Integration, 0.1)
	})
}

func TestEnergySystem(t *testing.T) {
	t.Run("IntakeIsBounded", func(t *testing.T) {
		es := NewEnergySystem("p1", 50, rand.New(rand.NewSource(42)))
		view := calmView()
		view.Resources = map[string]float64{"food": 10}
		view.AmbientEnergy = 1.0

		result := es.Step(view)
		maxIntake := 10*(0.5+0.5*1.0) + 1.0*MaxSize*0.8 + 0.5*float64(es.Boundary().ElementCount())
		assert.LessOrEqual(t, result.Intake, maxIntake+1e-9)
		assert.LessOrEqual(t, result.EnergyLevel, MaxEnergy)
	})

	t.Run("AllocationPriorities", func(t *testing.T) {
		es := NewEnergySystem("p1", 100, rand.New(rand.NewSource(42)))
		allocations := es.allocate()

		assert.InDelta(t, 20.0, allocations[PurposeBoundary], 1e-9)
		assert.InDelta(t, 16.0, allocations[PurposeCritical], 1e-9)
		assert.Greater(t, allocations[PurposeGrowth], 0.0)
		assert.Greater(t, allocations[PurposeReproduction], 0.0)
	})

	t.Run("LowEnergySkipsGrowth", func(t *testing.T) {
		es := NewEnergySystem("p1", 20, rand.New(rand.NewSource(42)))
		allocations := es.allocate()
		assert.Zero(t, allocations[PurposeGrowth])
		assert.Zero(t, allocations[PurposeSocial])
		assert.Zero(t, allocations[PurposeExploration])
		assert.Zero(t, allocations[PurposeReproduction])
	})

	t.Run("OpenBoundaryClaimsHalf", func(t *testing.T) {
		es := NewEnergySystem("p1", 100, rand.New(rand.NewSource(42)))
		es.Boundary().AdjustPermeability(0.5, MinPermeability, MaxPermeability)
		allocations := es.allocate()
		assert.InDelta(t, 50.0, allocations[PurposeBoundary], 1e-9)
	})

	t.Run("StarvationFailsBoundary", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		es := NewEnergySystem("p1", 0, rng)
		es.Boundary().AdjustSize(0.5, MinSize, MaxSize) // size 1.5

		view := stormyView()
		permeability := es.Boundary().Permeability()
		failing := 0
		for i := 0; i < 3; i++ {
			result := es.Step(view)
			if result.BoundaryStatus == StatusFailing {
				failing++
			}
			assert.GreaterOrEqual(t, es.Boundary().Permeability(), permeability-1e-9)
			permeability = es.Boundary().Permeability()
			// Drain the trickle of ambient intake, as an exhausted
			// pet's behaviours would.
			es.SetEnergy(0)
		}
		assert.GreaterOrEqual(t, failing, 2)
	})

	t.Run("AddEnergyClampsAtCeiling", func(t *testing.T) {
		es := NewEnergySystem("p1", 95, rand.New(rand.NewSource(42)))
		assert.InDelta(t, MaxEnergy, es.AddEnergy(20, "interaction"), 1e-9)
	})

	t.Run("ConsumeRefusesOverdraft", func(t *testing.T) {
		es := NewEnergySystem("p1", 10, rand.New(rand.NewSource(42)))
		result := es.ConsumeEnergy(50, "boundary_repair")
		assert.False(t, result.Success)
		assert.Equal(t, "insufficient_energy", result.Reason)

		result = es.ConsumeEnergy(5, "boundary_repair")
		assert.True(t, result.Success)
		assert.InDelta(t, 5, result.Remaining, 1e-9)
	})

	t.Run("AssimilatedEffectsWeightedByIntegration", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		es := NewEnergySystem("p1", 100, rng)
		var id string
		for id == "" {
			if result := es.Boundary().AttemptAssimilation(ElementResource, nil, map[string]float64{"energy": 10}, 0); result.Success {
				id = result.ElementID
			}
		}
		effects := es.AssimilatedEffects()
		assert.InDelta(t, 1.0, effects["energy"], 1e-9) // 10 * 0.1 integration
	})
}
