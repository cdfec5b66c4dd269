package env

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(seed int64) *Environment {
	return New(rand.New(rand.NewSource(seed)), nil)
}

func TestEnvironmentStep(t *testing.T) {
	t.Run("AdvancesTime", func(t *testing.T) {
		e := newTestEnv(42)
		start := e.TimeOfDay
		e.Step()
		assert.InDelta(t, start+TickHours, e.TimeOfDay, 1e-9)
		assert.Equal(t, uint64(1), e.Tick())
	})

	t.Run("RollsOverDays", func(t *testing.T) {
		e := newTestEnv(42)
		// 8:00 start; 160 ticks reach midnight, one more rolls over.
		for i := 0; i < 161; i++ {
			e.Step()
		}
		assert.Equal(t, 1, e.DayCount)
		assert.Equal(t, 2, e.DayOfWeek)
		assert.Less(t, e.TimeOfDay, 1.0)
	})

	t.Run("WeatherStaysInVocabulary", func(t *testing.T) {
		e := newTestEnv(7)
		valid := map[Weather]bool{
			WeatherClear: true, WeatherCloudy: true, WeatherRainy: true,
			WeatherStormy: true, WeatherFoggy: true, WeatherWindy: true,
		}
		for i := 0; i < 500; i++ {
			e.Step()
			assert.True(t, valid[e.CurrentWeather], "unknown weather %q", e.CurrentWeather)
		}
	})

	t.Run("BoundedScalars", func(t *testing.T) {
		e := newTestEnv(3)
		for i := 0; i < 500; i++ {
			e.Step()
			assert.GreaterOrEqual(t, e.NoveltyLevel, 0.1)
			assert.LessOrEqual(t, e.NoveltyLevel, 1.0)
			assert.GreaterOrEqual(t, e.Temperature, 0.0)
			assert.LessOrEqual(t, e.Temperature, 1.0)
			assert.GreaterOrEqual(t, e.AmbientEnergy, 0.0)
		}
	})

	t.Run("ResourcesRegenerateToCaps", func(t *testing.T) {
		e := newTestEnv(42)
		e.Resources["food"] = 0
		for i := 0; i < 500; i++ {
			e.Step()
		}
		assert.InDelta(t, 100, e.Resources["food"], 1e-9)
	})
}

func TestEvents(t *testing.T) {
	e := newTestEnv(42)
	e.AddEvent(&Event{Type: "weather_event", Remaining: 3, Weather: WeatherStormy})
	require.Equal(t, 1, e.ActiveEventCount())

	e.Step()
	assert.Equal(t, WeatherStormy, e.CurrentWeather)

	e.Step()
	e.Step()
	assert.Equal(t, 0, e.ActiveEventCount())
}

func TestRegions(t *testing.T) {
	t.Run("UpdatePetLocation", func(t *testing.T) {
		e := newTestEnv(42)
		result := e.UpdatePetLocation("p1", "central")
		require.True(t, result.Success)
		assert.Equal(t, "central", e.PetRegion("p1"))

		result = e.UpdatePetLocation("p1", "play")
		require.True(t, result.Success)
		assert.Equal(t, "play", e.PetRegion("p1"))
		assert.NotContains(t, e.Regions["central"].PetIDs(), "p1")
	})

	t.Run("UnknownRegionRefused", func(t *testing.T) {
		e := newTestEnv(42)
		result := e.UpdatePetLocation("p1", "nowhere")
		assert.False(t, result.Success)
		assert.Equal(t, "region_not_found", result.Reason)
	})

	t.Run("PartialConsumption", func(t *testing.T) {
		e := newTestEnv(42)
		e.Regions["central"].Resources["food"] = 5

		result := e.ConsumeResources("central", map[string]float64{"food": 10, "water": 10})
		require.True(t, result.Success)
		assert.InDelta(t, 5, result.Consumed["food"], 1e-9)
		assert.InDelta(t, 10, result.Consumed["water"], 1e-9)
		assert.InDelta(t, 0, e.Regions["central"].Resources["food"], 1e-9)
	})
}

func TestProjections(t *testing.T) {
	t.Run("AddAndRemove", func(t *testing.T) {
		e := newTestEnv(42)
		result := e.AddPetProjection("p1", &Projection{
			ID: "proj-1", Type: "territorial_marker", RegionID: "central", Stability: 0.5,
		})
		require.True(t, result.Success)

		stability, ok := e.ProjectionStability("p1", "proj-1")
		require.True(t, ok)
		assert.InDelta(t, 0.5, stability, 1e-9)

		result = e.RemovePetProjection("p1", "proj-1")
		require.True(t, result.Success)
		_, ok = e.ProjectionStability("p1", "proj-1")
		assert.False(t, ok)
	})

	t.Run("SocialSignalLiftsAtmosphere", func(t *testing.T) {
		e := newTestEnv(42)
		before := e.SocialAtmosphere
		e.AddPetProjection("p1", &Projection{ID: "s1", Type: "social_signal", RegionID: "central", Stability: 0.5})
		assert.Greater(t, e.SocialAtmosphere, before-1e-9)
	})

	t.Run("UnknownRegionRefused", func(t *testing.T) {
		e := newTestEnv(42)
		result := e.AddPetProjection("p1", &Projection{ID: "x", Type: "social_signal", RegionID: "void"})
		assert.False(t, result.Success)
	})
}

func TestPetView(t *testing.T) {
	t.Run("NarrowTier", func(t *testing.T) {
		e := newTestEnv(42)
		e.UpdatePetLocation("p1", "central")

		view := e.GetPetView("p1", 0.2)
		assert.Equal(t, TierNarrow, view.Tier)
		assert.Equal(t, "central", view.CurrentRegion)
		assert.InDelta(t, e.AmbientEnergy*0.2*2, view.AmbientEnergy, 1e-9)
		assert.Empty(t, view.Regions)
	})

	t.Run("MediumTierHasOwnRegionDetail", func(t *testing.T) {
		e := newTestEnv(42)
		e.UpdatePetLocation("p1", "central")

		view := e.GetPetView("p1", 0.5)
		assert.Equal(t, TierMedium, view.Tier)
		require.Contains(t, view.Regions, "central")
		assert.NotEmpty(t, view.Regions["central"].Resources)
		assert.Contains(t, view.Regions["central"].CurrentPets, "p1")
		// Foreign regions reveal features only, never resources.
		assert.Empty(t, view.Regions["quiet"].Resources)
	})

	t.Run("FullTierSeesCompetitors", func(t *testing.T) {
		e := newTestEnv(42)
		e.UpdatePetLocation("p1", "central")
		e.UpdatePetLocation("p2", "play")

		view := e.GetPetView("p1", 0.9)
		assert.Equal(t, TierFull, view.Tier)
		require.Len(t, view.CompetingPets, 1)
		assert.Equal(t, "p2", view.CompetingPets[0].ID)
		assert.NotEmpty(t, view.Resources)
	})
}
