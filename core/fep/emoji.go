package fep

import "strings"

// EmojiVector is the fixed emotional encoding of one emoji:
// joy, curiosity, contentment, and attention potential.
type EmojiVector struct {
	Joy         float64
	Curiosity   float64
	Contentment float64
	Attention   float64
}

// EmojiTable is the immutable emoji vocabulary used by the cognitive
// core. It is constructed once and injected; nothing mutates it after
// construction.
type EmojiTable struct {
	Expressions []string
	Needs       []string
	Responses   []string
	Modifiers   []string

	emotions map[string]EmojiVector
}

// DefaultEmojiTable builds the standard vocabulary.
func DefaultEmojiTable() *EmojiTable {
	return &EmojiTable{
		Expressions: []string{"😊", "😔", "😴", "🤔", "😋", "😆", "😍", "🥰", "😌", "😎"},
		Needs:       []string{"🍎", "🍕", "🎮", "💤", "🤗", "🚿", "🎯", "⚽", "📚", "🎵"},
		Responses:   []string{"❤️", "👍", "👎", "❓", "✨", "🎉", "💔", "😤", "🙏", "👋"},
		Modifiers:   []string{"❓", "✨", "🔥", "💫", "⭐", "💨", "⚡", "🌟", "💝", "🎊"},
		emotions: map[string]EmojiVector{
			"😊":  {0.8, 0.1, 0.7, 0.9},
			"😍":  {0.9, 0.3, 0.8, 0.95},
			"🥰":  {0.8, 0.1, 0.9, 0.9},
			"❤️": {0.9, 0.2, 0.9, 0.95},
			"🤗":  {0.6, 0.1, 0.8, 0.85},
			"😋":  {0.5, 0.2, 0.3, 0.7},
			"😆":  {0.9, 0.2, 0.5, 0.8},
			"🎉":  {0.8, 0.3, 0.6, 0.85},
			"✨":  {0.3, 0.4, 0.3, 0.6},
			"🤔":  {0.0, 0.8, 0.1, 0.4},
			"❓":  {0.0, 0.9, 0.0, 0.3},
			"👋":  {0.5, 0.1, 0.4, 0.5},
			"😔":  {-0.8, 0.0, -0.5, 0.1},
			"😴":  {0.0, 0.0, 0.9, 0.2},
			"👎":  {-0.4, 0.0, -0.2, 0.1},
			"💔":  {-0.8, 0.0, -0.8, 0.05},
			"🍎":  {0.1, 0.8, 0.2, 0.6},
			"🍕":  {0.3, 0.7, 0.4, 0.7},
			"🎮":  {0.4, 0.9, 0.3, 0.8},
			"💤":  {0.0, 0.0, 0.9, 0.2},
			"👍":  {0.4, 0.0, 0.3, 0.6},
			"😤":  {-0.3, 0.2, -0.4, 0.2},
			"🙏":  {0.3, 0.0, 0.8, 0.5},
			"😌":  {0.2, 0.0, 0.9, 0.6},
			"😎":  {0.6, 0.1, 0.7, 0.6},
			"🚿":  {0.2, 0.1, 0.6, 0.4},
			"🎯":  {0.4, 0.7, 0.3, 0.6},
			"⚽":  {0.5, 0.8, 0.4, 0.7},
			"📚":  {0.2, 0.9, 0.3, 0.5},
			"🎵":  {0.6, 0.3, 0.5, 0.6},
			"🔥":  {0.7, 0.4, 0.2, 0.7},
			"💫":  {0.4, 0.5, 0.3, 0.5},
			"⭐":  {0.5, 0.3, 0.4, 0.6},
			"💨":  {0.2, 0.6, 0.1, 0.3},
			"⚡":  {0.6, 0.7, 0.2, 0.6},
			"🌟":  {0.6, 0.4, 0.5, 0.7},
			"💝":  {0.8, 0.2, 0.8, 0.9},
			"🎊":  {0.8, 0.3, 0.6, 0.85},
		},
	}
}

// Emotion looks up the emotional encoding of an emoji, tolerating a
// missing or extra variation selector.
func (t *EmojiTable) Emotion(emoji string) (EmojiVector, bool) {
	if v, ok := t.emotions[emoji]; ok {
		return v, true
	}
	if v, ok := t.emotions[strings.TrimSuffix(emoji, "️")]; ok {
		return v, true
	}
	if v, ok := t.emotions[emoji+"️"]; ok {
		return v, true
	}
	return EmojiVector{}, false
}

// Known reports whether the emoji is in the vocabulary.
func (t *EmojiTable) Known(emoji string) bool {
	_, ok := t.Emotion(emoji)
	return ok
}

// ResponseIndex returns the position of an emoji in the response
// vocabulary, or -1.
func (t *EmojiTable) ResponseIndex(emoji string) int {
	for i, e := range t.Responses {
		if e == emoji || strings.TrimSuffix(e, "️") == strings.TrimSuffix(emoji, "️") {
			return i
		}
	}
	return -1
}

// ParseEmojis extracts emoji tokens from a string by Unicode range,
// folding variation selectors into the preceding token.
func ParseEmojis(s string) []string {
	var out []string
	for _, r := range s {
		switch {
		case r == 0xFE0F || r == 0x200D:
			if len(out) > 0 {
				out[len(out)-1] += string(r)
			}
		case isEmojiRune(r):
			out = append(out, string(r))
		}
	}
	return out
}

func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F5FF:
		return true
	case r >= 0x1F600 && r <= 0x1F64F:
		return true
	case r >= 0x1F680 && r <= 0x1F6FF:
		return true
	case r >= 0x1F900 && r <= 0x1F9FF:
		return true
	case r >= 0x1F1E0 && r <= 0x1F1FF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r >= 0x2B00 && r <= 0x2BFF:
		return true
	}
	return false
}
