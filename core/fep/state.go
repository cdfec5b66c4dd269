package fep

import (
	"fmt"

	"github.com/emirpasic/gods/v2/queues/circularbuffer"
)

// State is the serialisable snapshot of a cognitive core.
type State struct {
	Beliefs           []float64          `json:"beliefs"`
	Precision         []float64          `json:"precision"`
	ActionPreferences []float64          `json:"action_preferences"`
	SurpriseHistory   []float64          `json:"surprise_history"`
	Accuracy          float64            `json:"accuracy"`
	LearningRate      float64            `json:"learning_rate"`
	Attention         float64            `json:"attention"`
	Thriving          float64            `json:"thriving"`
	LastInteraction   float64            `json:"last_interaction_hours"`
	InteractionCount  int                `json:"interaction_count"`
	EmojiPreferences  map[string]float64 `json:"emoji_preferences,omitempty"`
}

// ExportState copies the mutable core state into a snapshot.
func (c *Core) ExportState() State {
	history := c.surprise.Values()
	if len(history) > 50 {
		history = history[len(history)-50:]
	}
	prefs := make(map[string]float64, len(c.emojiPrefs))
	for k, v := range c.emojiPrefs {
		prefs[k] = v
	}
	return State{
		Beliefs:           append([]float64(nil), c.beliefs...),
		Precision:         append([]float64(nil), c.precision...),
		ActionPreferences: append([]float64(nil), c.actionPrefs...),
		SurpriseHistory:   append([]float64(nil), history...),
		Accuracy:          c.accuracy,
		LearningRate:      c.learningRate,
		Attention:         c.attention,
		Thriving:          c.thriving,
		LastInteraction:   c.lastInteractionHours,
		InteractionCount:  c.interactionCount,
		EmojiPreferences:  prefs,
	}
}

// ImportState restores the core from a snapshot. The belief dimension
// and action vocabulary must match the constructed core; a mismatch is
// an invariant violation.
func (c *Core) ImportState(s State) error {
	if len(s.Beliefs) != c.stateSize || len(s.Precision) != c.stateSize {
		return fmt.Errorf("fep: state dimension mismatch: got %d/%d, want %d",
			len(s.Beliefs), len(s.Precision), c.stateSize)
	}
	if len(s.ActionPreferences) != len(c.actionPrefs) {
		return fmt.Errorf("fep: action preference size mismatch: got %d, want %d",
			len(s.ActionPreferences), len(c.actionPrefs))
	}

	for i := range c.beliefs {
		c.beliefs[i] = clamp01(s.Beliefs[i])
		c.precision[i] = clamp(s.Precision[i], MinPrecision, MaxPrecision)
	}
	for i := range c.actionPrefs {
		c.actionPrefs[i] = clamp01(s.ActionPreferences[i])
	}

	c.surprise = circularbuffer.New[float64](surpriseHistoryCap)
	for _, v := range s.SurpriseHistory {
		c.surprise.Enqueue(v)
	}

	c.accuracy = clamp01(s.Accuracy)
	if s.LearningRate > 0 {
		c.learningRate = clamp(s.LearningRate, 0.01, 0.5)
	}
	c.attention = clamp(s.Attention, 0, 100)
	c.thriving = clamp(s.Thriving, 0, 100)
	c.lastInteractionHours = s.LastInteraction
	c.interactionCount = s.InteractionCount

	c.emojiPrefs = make(map[string]float64, len(s.EmojiPreferences))
	for k, v := range s.EmojiPreferences {
		c.emojiPrefs[k] = v
	}
	return nil
}
