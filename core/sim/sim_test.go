package sim

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnarlynerd-lab/pets/core/bus"
)

func newTestModel(seed int64) *Model {
	m := NewModel(Options{Seed: seed})
	m.CreatePetForUser("user-1", "alpha")
	m.CreatePetForSession("session-1", "beta")
	m.CreatePet("gamma")
	return m
}

func TestModelRoster(t *testing.T) {
	t.Run("CreateAndLookup", func(t *testing.T) {
		m := newTestModel(42)
		ids := m.AgentIDs()
		require.Len(t, ids, 3)
		for _, id := range ids {
			a, ok := m.GetAgent(id)
			require.True(t, ok)
			assert.Equal(t, id, a.ID)
		}
	})

	t.Run("RemoveAgentDropsEverything", func(t *testing.T) {
		m := newTestModel(42)
		id := m.AgentIDs()[0]
		m.RemoveAgent(id)

		_, ok := m.GetAgent(id)
		assert.False(t, ok)
		assert.Empty(t, m.Environment().PetRegion(id))
		assert.False(t, m.Bus().Deliver(bus.Message{Recipient: id, Type: bus.TypeFeed}))
	})

	t.Run("Migration", func(t *testing.T) {
		m := NewModel(Options{Seed: 42})
		a := m.CreatePetForSession("session-9", "wanderer")
		require.NoError(t, m.MigratePet(a.ID, "user-9"))
		assert.Equal(t, "user-9", a.OwnerID)
		assert.Empty(t, a.SessionID)

		assert.Error(t, m.MigratePet("missing", "user-9"))
	})
}

func TestModelStep(t *testing.T) {
	t.Run("ProducesReports", func(t *testing.T) {
		m := newTestModel(42)
		result := m.Step(context.Background())

		assert.Equal(t, uint64(1), result.Tick)
		assert.False(t, result.Aborted)
		assert.Len(t, result.Agents, 3)
		assert.Equal(t, uint64(1), result.Environment.Tick)
		assert.NotEmpty(t, result.Environment.Weather)
	})

	t.Run("MessagesLandNextTick", func(t *testing.T) {
		m := newTestModel(42)
		id := m.AgentIDs()[0]
		a, _ := m.GetAgent(id)
		a.Needs.Hunger = 80

		m.Step(context.Background())
		m.Bus().Deliver(bus.Message{
			Sender: "user-1", Recipient: id, Type: bus.TypeFeed,
			Content: map[string]any{"amount": 2.0},
		})
		hungerBefore := a.Needs.Hunger
		m.Step(context.Background())
		assert.Less(t, a.Needs.Hunger, hungerBefore-30)
	})

	t.Run("CancelledContextAborts", func(t *testing.T) {
		m := newTestModel(42)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := m.Step(ctx)
		assert.True(t, result.Aborted)
		assert.Empty(t, result.Agents)
	})

	t.Run("SustainedRunStaysHealthy", func(t *testing.T) {
		m := newTestModel(7)
		for i := 0; i < 300; i++ {
			result := m.Step(context.Background())
			require.Empty(t, result.Quarantined, "tick %d", i)
			for _, report := range result.Agents {
				assert.GreaterOrEqual(t, report.Vitals.Health, 0.0)
				assert.LessOrEqual(t, report.Vitals.Health, 100.0)
				assert.GreaterOrEqual(t, report.Boundary.Permeability, 0.1)
				assert.LessOrEqual(t, report.Boundary.Permeability, 1.0)
				assert.GreaterOrEqual(t, report.Attention, 0.0)
				assert.LessOrEqual(t, report.Attention, 100.0)
				assert.GreaterOrEqual(t, report.Thriving, 0.0)
				assert.LessOrEqual(t, report.Thriving, 100.0)
			}
		}
	})
}

func TestDeterministicReplay(t *testing.T) {
	run := func() [][]byte {
		m := NewModel(Options{Seed: 42})
		m.CreatePetForUser("user-1", "alpha")
		m.CreatePetForUser("user-2", "beta")

		var stream [][]byte
		for i := 0; i < 50; i++ {
			if i == 10 {
				for _, id := range m.AgentIDs() {
					m.Bus().Deliver(bus.Message{
						Sender: "user-1", Recipient: id, Type: bus.TypePlay,
						Content:   map[string]any{"intensity": 1.0, "duration": 1.0},
						Timestamp: 1000,
					})
				}
			}
			result := m.Step(context.Background())
			blob, err := json.Marshal(result)
			require.NoError(t, err)
			stream = append(stream, blob)
		}
		return stream
	}

	first := run()
	second := run()
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, string(first[i]), string(second[i]), "tick %d diverged", i)
	}
}

func TestMetricsCollector(t *testing.T) {
	m := newTestModel(42)
	collector := NewMetricsCollector(10)
	m.AddCollector(collector)

	for i := 0; i < 25; i++ {
		m.Step(context.Background())
	}

	samples := collector.Samples()
	assert.Len(t, samples, 10)

	latest, ok := collector.Latest()
	require.True(t, ok)
	assert.Equal(t, uint64(25), latest.Tick)
	assert.Equal(t, 3, latest.AgentCount)
	assert.Greater(t, latest.AvgHealth, 0.0)
	assert.Greater(t, latest.AvgPermeability, 0.0)
}

func TestProjectionLifecycle(t *testing.T) {
	// A projection left behind in an empty region decays by 0.05 per
	// tick from 0.5 and is gone from the environment afterwards.
	m := NewModel(Options{Seed: 42})
	a := m.CreatePet("loner")

	exchange := a.Energy().Exchange()
	result := exchange.ProjectToEnvironment("territorial_marker", nil, "central")
	require.True(t, result.Success)
	m.Environment().AddPetProjection(a.ID, result.Projection)

	// Move the owner away so nothing slows the decay.
	m.Environment().UpdatePetLocation(a.ID, "quiet")
	a.Region = "quiet"

	alive := true
	for i := 0; i < 60 && alive; i++ {
		m.Step(context.Background())
		_, alive = m.Environment().ProjectionStability(a.ID, result.ProjectionID)
	}
	assert.False(t, alive)
}
