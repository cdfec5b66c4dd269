package fep

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// EmotionalContext is the per-axis mean over the recognised emojis of
// one interaction.
type EmotionalContext struct {
	Joy                float64 `json:"joy"`
	Curiosity          float64 `json:"curiosity"`
	Contentment        float64 `json:"contentment"`
	AttentionPotential float64 `json:"attention_potential"`
	Sentiment          float64 `json:"overall_sentiment"`
	EmojiCount         int     `json:"emoji_count"`
}

// InteractionResult is the outcome of processing one emoji
// interaction.
type InteractionResult struct {
	Response   string           `json:"response_emojis"`
	Surprise   float64          `json:"surprise"`
	Confidence float64          `json:"confidence"`
	Attention  float64          `json:"attention"`
	Thriving   float64          `json:"thriving"`
	Context    EmotionalContext `json:"emotional_context"`
}

// ProcessEmojiInteraction handles a user emoji sequence end to end:
// parse, derive emotional context, credit attention, generate a
// multi-emoji response, observe the interaction, and adapt emoji
// preferences.
func (c *Core) ProcessEmojiInteraction(sequence, userID string) InteractionResult {
	emojis := ParseEmojis(sequence)
	ctx := c.emotionalContext(emojis)

	c.ReceiveInteraction("emoji", ctx.AttentionPotential)

	response := c.generateResponse(ctx)

	observed := c.Observe(c.interactionObservation(ctx))

	for _, e := range emojis {
		if v, ok := c.emoji.Emotion(e); ok {
			c.emojiPrefs[e] += 0.1 * v.Attention
		} else {
			c.logger.Debug("unknown emoji in interaction", "emoji", e, "user", userID)
		}
	}

	return InteractionResult{
		Response:   response,
		Surprise:   observed.Surprise,
		Confidence: 1.0 / (1.0 + observed.Surprise),
		Attention:  c.attention,
		Thriving:   c.thriving,
		Context:    ctx,
	}
}

func (c *Core) emotionalContext(emojis []string) EmotionalContext {
	ctx := EmotionalContext{AttentionPotential: 0.3, EmojiCount: len(emojis)}

	var joy, curiosity, contentment, attention float64
	valid := 0
	for _, e := range emojis {
		if v, ok := c.emoji.Emotion(e); ok {
			joy += v.Joy
			curiosity += v.Curiosity
			contentment += v.Contentment
			attention += v.Attention
			valid++
		}
	}
	if valid == 0 {
		return ctx
	}
	n := float64(valid)
	ctx.Joy = joy / n
	ctx.Curiosity = curiosity / n
	ctx.Contentment = contentment / n
	ctx.AttentionPotential = attention / n
	ctx.Sentiment = (ctx.Joy + ctx.Contentment) / 2.0
	return ctx
}

// generateResponse builds a multi-emoji reply: an optional expression
// (50%), the top-scoring response, an optional modifier (30%), and an
// occasional need emoji (20%) when thriving is low.
func (c *Core) generateResponse(ctx EmotionalContext) string {
	attention := c.attention / 100.0
	thriving := c.thriving / 100.0

	responseScores := c.scoreResponses(ctx, attention, thriving)
	expressionScores := c.scoreExpressions(ctx)
	modifierScores := c.scoreModifiers(ctx)

	addNoise(c, responseScores, 0.1)
	addNoise(c, expressionScores, 0.1)
	addNoise(c, modifierScores, 0.1)

	var parts []string

	if idx, best := argmax(expressionScores); c.rng.Float64() < 0.5 && best >= 0.3 {
		parts = append(parts, c.emoji.Expressions[idx])
	}

	idx, _ := argmax(responseScores)
	parts = append(parts, c.emoji.Responses[idx])

	if idx, best := argmax(modifierScores); c.rng.Float64() < 0.3 && best >= 0.2 {
		parts = append(parts, c.emoji.Modifiers[idx])
	}

	if c.rng.Float64() < 0.2 && thriving < 0.4 {
		needs := []string{"🍎", "🍕", "🎮", "💤", "🤗"}
		parts = append(parts, needs[c.rng.Intn(len(needs))])
	}

	return strings.Join(parts, "")
}

func (c *Core) scoreResponses(ctx EmotionalContext, attention, thriving float64) []float64 {
	positive := map[string]bool{"❤️": true, "🥰": true, "✨": true, "🎉": true}
	seeking := map[string]bool{"❓": true, "👋": true, "🤗": true}
	distress := map[string]bool{"😤": true, "💔": true, "👎": true}
	comforting := map[string]bool{"🤗": true, "🙏": true, "👋": true}

	advice := c.adviceTokens()

	scores := make([]float64, len(c.emoji.Responses))
	for i, emoji := range c.emoji.Responses {
		score := 0.3 * c.actionPrefs[i]

		if attention > 0.7 && positive[emoji] {
			score += 0.4
		} else if attention < 0.3 && seeking[emoji] {
			score += 0.4
		}

		if thriving > 0.7 && positive[emoji] {
			score += 0.3
		} else if thriving < 0.3 && distress[emoji] {
			score += 0.3
		}

		if ctx.Sentiment > 0.5 && positive[emoji] {
			score += 0.3
		} else if ctx.Sentiment < -0.3 && comforting[emoji] {
			score += 0.3
		}

		if bonus, ok := advice[canonicalEmoji(emoji)]; ok {
			score += bonus
		}
		scores[i] = score
	}
	return scores
}

func (c *Core) scoreExpressions(ctx EmotionalContext) []float64 {
	joyful := map[string]bool{"😊": true, "😍": true, "🥰": true, "😆": true}
	sad := map[string]bool{"😔": true}
	curious := map[string]bool{"🤔": true, "😋": true}
	content := map[string]bool{"😌": true, "😴": true}

	scores := make([]float64, len(c.emoji.Expressions))
	for i, emoji := range c.emoji.Expressions {
		switch {
		case ctx.Joy > 0.5 && joyful[emoji]:
			scores[i] = 0.6
		case ctx.Joy < -0.3 && sad[emoji]:
			scores[i] = 0.6
		case ctx.Curiosity > 0.5 && curious[emoji]:
			scores[i] = 0.5
		case ctx.Contentment > 0.5 && content[emoji]:
			scores[i] = 0.5
		}
	}
	return scores
}

func (c *Core) scoreModifiers(ctx EmotionalContext) []float64 {
	energetic := map[string]bool{"✨": true, "🔥": true, "⚡": true, "🌟": true}
	positive := map[string]bool{"💫": true, "⭐": true, "💝": true, "🎊": true}

	scores := make([]float64, len(c.emoji.Modifiers))
	for i, emoji := range c.emoji.Modifiers {
		if ctx.AttentionPotential > 0.7 && energetic[emoji] {
			scores[i] = 0.4
		} else if ctx.Sentiment > 0.5 && positive[emoji] {
			scores[i] = 0.3
		}
	}
	return scores
}

// adviceTokens consults the optional semantic advisor and maps its
// preferred tokens to score bonuses. Advisor failure is treated as
// absence of advice; tokens are compared in canonical form, so a
// missing or extra variation selector still matches.
func (c *Core) adviceTokens() map[string]float64 {
	if c.advisor == nil {
		return nil
	}
	advice, err := c.advisor.Advise(PromptContext{
		Attention: c.attention,
		Thriving:  c.thriving,
	})
	if err != nil || advice == nil {
		if err != nil {
			c.logger.Warn("semantic advisor failed; using deterministic path", "error", err)
		}
		return nil
	}

	bonus := 0.3 * clamp01(advice.Confidence)
	out := make(map[string]float64)
	for _, token := range advice.PreferredResponseEmojis {
		token = canonicalEmoji(token)
		for _, candidate := range c.emoji.Responses {
			// Most emojis are a single rune, so any tolerance above zero
			// would match every candidate.
			if levenshtein.ComputeDistance(token, canonicalEmoji(candidate)) == 0 {
				out[canonicalEmoji(candidate)] = bonus
			}
		}
	}
	return out
}

func canonicalEmoji(e string) string {
	return strings.TrimSuffix(e, "️")
}

// interactionObservation encodes the emotional context of an
// interaction into an observation vector.
func (c *Core) interactionObservation(ctx EmotionalContext) []float64 {
	obs := make([]float64, c.stateSize)
	obs[0] = ctx.Joy
	obs[1] = ctx.Curiosity
	obs[2] = ctx.Contentment
	obs[3] = ctx.AttentionPotential
	obs[4] = c.attention / 100.0
	obs[5] = c.thriving / 100.0
	obs[6] = float64(ctx.EmojiCount) / 10.0
	obs[7] = ctx.Sentiment
	return obs
}

func addNoise(c *Core, scores []float64, scale float64) {
	for i := range scores {
		scores[i] += c.rng.NormFloat64() * scale
	}
}

func argmax(scores []float64) (int, float64) {
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	if len(scores) == 0 {
		return 0, 0
	}
	return best, scores[best]
}
