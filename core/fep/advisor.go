package fep

// PromptContext is the state handed to a semantic advisor when asking
// for response guidance.
type PromptContext struct {
	PetID      string   `json:"pet_id,omitempty"`
	UserEmojis []string `json:"user_emojis,omitempty"`
	Attention  float64  `json:"attention"`
	Thriving   float64  `json:"thriving"`
}

// Advice is an advisor's optional re-weighting of response candidates.
type Advice struct {
	PreferredResponseEmojis []string `json:"preferred_response_emojis,omitempty"`
	Confidence              float64  `json:"confidence"`
	Reasoning               string   `json:"reasoning,omitempty"`
}

// Advisor is an optional external semantic model. Its output is
// advisory only: matching candidates gain 0.3 * confidence, and the
// core produces a complete response without it.
type Advisor interface {
	Advise(ctx PromptContext) (*Advice, error)
}
