package fep

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCore(seed int64) *Core {
	return NewCore(DefaultStateSize, DefaultEmojiTable(), rand.New(rand.NewSource(seed)), nil)
}

func oneHot(size, index int) []float64 {
	v := make([]float64, size)
	v[index] = 1.0
	return v
}

func TestObserve(t *testing.T) {
	t.Run("SurpriseBounded", func(t *testing.T) {
		c := newTestCore(42)
		for i := 0; i < 200; i++ {
			result := c.Observe(oneHot(DefaultStateSize, i%DefaultStateSize))
			assert.GreaterOrEqual(t, result.Surprise, 0.0)
			assert.LessOrEqual(t, result.Surprise, 1.0)
		}
	})

	t.Run("DimensionsAndBoundsInvariant", func(t *testing.T) {
		c := newTestCore(42)
		for i := 0; i < 500; i++ {
			c.Observe(oneHot(DefaultStateSize, i%DefaultStateSize))
			beliefs := c.Beliefs()
			require.Len(t, beliefs, DefaultStateSize)
			for _, b := range beliefs {
				assert.GreaterOrEqual(t, b, 0.0)
				assert.LessOrEqual(t, b, 1.0)
			}
			for _, p := range c.precision {
				assert.GreaterOrEqual(t, p, MinPrecision)
				assert.LessOrEqual(t, p, MaxPrecision)
			}
		}
	})

	t.Run("SurpriseHistoryCapped", func(t *testing.T) {
		c := newTestCore(42)
		for i := 0; i < 300; i++ {
			c.Observe(oneHot(DefaultStateSize, 0))
		}
		assert.LessOrEqual(t, len(c.SurpriseHistory()), surpriseHistoryCap)
	})

	t.Run("StationaryStreamReducesSurprise", func(t *testing.T) {
		c := newTestCore(42)
		obs := oneHot(DefaultStateSize, 3)

		early := 0.0
		for i := 0; i < 10; i++ {
			c.SelectAction(obs, SelectGreedy, 0)
			early += c.Observe(obs).Surprise
		}
		for i := 0; i < 80; i++ {
			c.SelectAction(obs, SelectGreedy, 0)
			c.Observe(obs)
		}
		late := 0.0
		for i := 0; i < 10; i++ {
			c.SelectAction(obs, SelectGreedy, 0)
			late += c.Observe(obs).Surprise
		}
		assert.Less(t, late, early)
	})

	t.Run("AccuracyTracksSurprise", func(t *testing.T) {
		c := newTestCore(42)
		obs := oneHot(DefaultStateSize, 3)
		for i := 0; i < 100; i++ {
			c.SelectAction(obs, SelectGreedy, 0)
			c.Observe(obs)
		}
		assert.Greater(t, c.Accuracy(), 0.5)
	})
}

func TestSelectAction(t *testing.T) {
	t.Run("GreedyStaysInRange", func(t *testing.T) {
		c := newTestCore(42)
		for i := 0; i < 100; i++ {
			choice := c.SelectAction(oneHot(DefaultStateSize, i%DefaultStateSize), SelectGreedy, 0)
			assert.GreaterOrEqual(t, choice.Action, 0)
			assert.Less(t, choice.Action, len(c.actionPrefs))
			assert.GreaterOrEqual(t, choice.Confidence, 0.0)
			assert.LessOrEqual(t, choice.Confidence, 1.0)
		}
	})

	t.Run("PolicyOptimizationStaysInRange", func(t *testing.T) {
		c := newTestCore(42)
		for i := 0; i < 50; i++ {
			choice := c.SelectAction(oneHot(DefaultStateSize, 2), SelectPolicyOptimization, 3)
			assert.GreaterOrEqual(t, choice.Action, 0)
			assert.Less(t, choice.Action, len(c.actionPrefs))
			assert.LessOrEqual(t, choice.Confidence, 0.95)
		}
	})

	t.Run("ReinforceActionClamps", func(t *testing.T) {
		c := newTestCore(42)
		for i := 0; i < 100; i++ {
			c.ReinforceAction(0, 1.0)
		}
		assert.GreaterOrEqual(t, c.actionPrefs[0], 0.0)
	})
}

func TestAttentionAndThriving(t *testing.T) {
	t.Run("DecaysWithoutInteraction", func(t *testing.T) {
		c := newTestCore(42)
		previous := c.Attention()
		for tick := 1; tick <= 50; tick++ {
			c.Tick(float64(tick) * 0.1)
			assert.Less(t, c.Attention(), previous)
			previous = c.Attention()
		}
	})

	t.Run("InteractionBoosts", func(t *testing.T) {
		c := newTestCore(42)
		before := c.Attention()
		c.ReceiveInteraction("playing", 1.0)
		assert.Greater(t, c.Attention(), before)
		assert.LessOrEqual(t, c.Attention(), 100.0)
	})

	t.Run("DiminishingReturnsAboveEighty", func(t *testing.T) {
		c := newTestCore(42)
		for i := 0; i < 50; i++ {
			c.ReceiveInteraction("playing", 1.0)
		}
		assert.LessOrEqual(t, c.Attention(), 100.0)
	})

	t.Run("ThrivingGrowsUnderAttention", func(t *testing.T) {
		c := newTestCore(42)
		c.ReceiveInteraction("playing", 1.0)
		before := c.Thriving()
		c.Tick(0.1)
		assert.Greater(t, c.Thriving(), before-1e-9)
		assert.LessOrEqual(t, c.Thriving(), 100.0)
	})

	t.Run("AdaptToEnvironmentClampsRate", func(t *testing.T) {
		c := newTestCore(42)
		c.AdaptToEnvironment(10.0)
		assert.LessOrEqual(t, c.learningRate, 0.5)
		c.AdaptToEnvironment(0.0)
		assert.GreaterOrEqual(t, c.learningRate, 0.01)
	})
}

func TestStateRoundTrip(t *testing.T) {
	t.Run("ExportImportPreservesState", func(t *testing.T) {
		c := newTestCore(42)
		for i := 0; i < 30; i++ {
			c.Observe(oneHot(DefaultStateSize, i%DefaultStateSize))
		}
		c.ReceiveInteraction("petting", 0.8)
		c.ProcessEmojiInteraction("😊❤️", "user-1")

		state := c.ExportState()

		restored := newTestCore(99)
		require.NoError(t, restored.ImportState(state))

		assert.Equal(t, c.Beliefs(), restored.Beliefs())
		assert.Equal(t, c.actionPrefs, restored.actionPrefs)
		assert.InDelta(t, c.Accuracy(), restored.Accuracy(), 1e-12)
		assert.InDelta(t, c.Attention(), restored.Attention(), 1e-12)
		assert.InDelta(t, c.Thriving(), restored.Thriving(), 1e-12)
	})

	t.Run("DimensionMismatchRejected", func(t *testing.T) {
		c := newTestCore(42)
		state := c.ExportState()
		state.Beliefs = state.Beliefs[:3]
		assert.Error(t, c.ImportState(state))
	})
}
