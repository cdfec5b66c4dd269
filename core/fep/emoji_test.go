package fep

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmojis(t *testing.T) {
	t.Run("ExtractsKnownEmojis", func(t *testing.T) {
		emojis := ParseEmojis("hello 😊 world 🎮!")
		assert.Equal(t, []string{"😊", "🎮"}, emojis)
	})

	t.Run("KeepsVariationSelectors", func(t *testing.T) {
		emojis := ParseEmojis("❤️")
		require.Len(t, emojis, 1)
		table := DefaultEmojiTable()
		assert.True(t, table.Known(emojis[0]))
	})

	t.Run("EmptyInput", func(t *testing.T) {
		assert.Empty(t, ParseEmojis("just text"))
	})
}

func TestEmojiTable(t *testing.T) {
	table := DefaultEmojiTable()

	t.Run("EveryVocabularyEmojiHasEmotion", func(t *testing.T) {
		for _, group := range [][]string{table.Expressions, table.Needs, table.Responses, table.Modifiers} {
			for _, e := range group {
				assert.True(t, table.Known(e), "missing emotion vector for %q", e)
			}
		}
	})

	t.Run("ResponseIndex", func(t *testing.T) {
		assert.Equal(t, 0, table.ResponseIndex("❤️"))
		assert.Equal(t, -1, table.ResponseIndex("🦖"))
	})
}

func TestProcessEmojiInteraction(t *testing.T) {
	t.Run("ProducesResponseAndBoostsAttention", func(t *testing.T) {
		c := newTestCore(42)
		before := c.Attention()
		result := c.ProcessEmojiInteraction("😊❤️", "user-1")

		assert.NotEmpty(t, result.Response)
		assert.Greater(t, result.Attention, before)
		assert.GreaterOrEqual(t, result.Surprise, 0.0)
		assert.LessOrEqual(t, result.Surprise, 1.0)
		assert.Greater(t, result.Confidence, 0.0)
	})

	t.Run("EmotionalContextIsMeanOverKnown", func(t *testing.T) {
		c := newTestCore(42)
		ctx := c.emotionalContext([]string{"😊", "😔"})
		assert.InDelta(t, 0.0, ctx.Joy, 1e-9) // 0.8 + -0.8
		assert.Equal(t, 2, ctx.EmojiCount)
	})

	t.Run("UnknownSequenceUsesNeutralContext", func(t *testing.T) {
		c := newTestCore(42)
		ctx := c.emotionalContext(nil)
		assert.Zero(t, ctx.Joy)
		assert.InDelta(t, 0.3, ctx.AttentionPotential, 1e-9)
	})

	t.Run("UpdatesEmojiPreferences", func(t *testing.T) {
		c := newTestCore(42)
		c.ProcessEmojiInteraction("❤️", "user-1")
		found := false
		for k, v := range c.emojiPrefs {
			if canonicalEmoji(k) == canonicalEmoji("❤️") {
				found = true
				assert.Greater(t, v, 0.0)
			}
		}
		assert.True(t, found)
	})

	t.Run("HighAttentionFavoursPositiveResponses", func(t *testing.T) {
		positives := []string{"❤️", "🥰", "✨", "🎉", "😄"}
		hits := 0
		const runs = 100
		for seed := int64(0); seed < runs; seed++ {
			c := newTestCore(seed)
			state := c.ExportState()
			state.Attention = 90
			state.Thriving = 80
			require.NoError(t, c.ImportState(state))

			result := c.ProcessEmojiInteraction("😊", "user-1")
			for _, p := range positives {
				if strings.Contains(result.Response, canonicalEmoji(p)) {
					hits++
					break
				}
			}
		}
		assert.GreaterOrEqual(t, hits, 90, "positive responses in %d/%d runs", hits, runs)
	})
}

type stubAdvisor struct {
	advice *Advice
	err    error
}

func (s *stubAdvisor) Advise(PromptContext) (*Advice, error) { return s.advice, s.err }

func TestSemanticAdvisor(t *testing.T) {
	t.Run("AdviceReRanksCandidates", func(t *testing.T) {
		c := newTestCore(42)
		c.SetAdvisor(&stubAdvisor{advice: &Advice{
			PreferredResponseEmojis: []string{"🙏"},
			Confidence:              1.0,
		}})
		bonuses := c.adviceTokens()
		require.NotEmpty(t, bonuses)
		assert.InDelta(t, 0.3, bonuses[canonicalEmoji("🙏")], 1e-9)
	})

	t.Run("AdvisorFailureIsAbsence", func(t *testing.T) {
		c := newTestCore(42)
		c.SetAdvisor(&stubAdvisor{err: fmt.Errorf("model unavailable")})
		assert.Empty(t, c.adviceTokens())

		result := c.ProcessEmojiInteraction("😊", "user-1")
		assert.NotEmpty(t, result.Response)
	})

	t.Run("NoAdvisorConfigured", func(t *testing.T) {
		c := newTestCore(42)
		assert.Empty(t, c.adviceTokens())
	})
}
