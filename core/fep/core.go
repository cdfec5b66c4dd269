// Package fep implements the active-inference cognitive core: a
// predictive-coding belief vector with precision-weighted prediction
// error, softmax action selection, attention-based thriving, and
// emoji response generation that adapts its preferences from
// experience.
package fep

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/emirpasic/gods/v2/queues/circularbuffer"
	"gonum.org/v1/gonum/floats"
)

// Dimension and parameter defaults.
const (
	DefaultStateSize = 15

	MinPrecision = 0.1
	MaxPrecision = 2.0

	baseLearningRate    = 0.1
	precisionUpdateRate = 0.05

	surpriseHistoryCap = 100

	attentionDecayRate = 0.02 // per simulated hour since last interaction
	thrivingGrowthRate = 0.05
	thrivingDecayRate  = 0.01

	defaultExplorationRate = 0.3
)

// interactionMultipliers weights the attention value of each
// interaction kind.
var interactionMultipliers = map[string]float64{
	"emoji":    1.0,
	"petting":  1.5,
	"feeding":  1.2,
	"playing":  1.8,
	"training": 1.3,
	"checking": 0.8,
}

// Observation reports one processed observation.
type Observation struct {
	Surprise   float64   `json:"surprise"`
	FreeEnergy float64   `json:"free_energy"`
	Beliefs    []float64 `json:"beliefs"`
}

// Core is the per-pet active-inference engine.
type Core struct {
	stateSize int

	beliefs     []float64
	precision   []float64
	predictions []float64
	predErr     []float64

	actionPrefs []float64

	learningRate float64
	accuracy     float64
	surprise     *circularbuffer.Queue[float64]

	attention            float64
	thriving             float64
	lastInteractionHours float64
	clockHours           float64
	interactionCount     int

	explorationRate float64

	emoji      *EmojiTable
	emojiPrefs map[string]float64

	advisor Advisor
	rng     *rand.Rand
	logger  *slog.Logger
}

// NewCore builds a cognitive core with uniformly sampled initial
// beliefs and varied starting action preferences. The emoji table is
// injected and never mutated.
func NewCore(stateSize int, table *EmojiTable, rng *rand.Rand, logger *slog.Logger) *Core {
	if stateSize <= 0 {
		stateSize = DefaultStateSize
	}
	if table == nil {
		table = DefaultEmojiTable()
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Core{
		stateSize:       stateSize,
		beliefs:         make([]float64, stateSize),
		precision:       make([]float64, stateSize),
		predictions:     make([]float64, stateSize),
		predErr:         make([]float64, stateSize),
		actionPrefs:     make([]float64, len(table.Responses)),
		learningRate:    baseLearningRate,
		accuracy:        0.5,
		surprise:        circularbuffer.New[float64](surpriseHistoryCap),
		attention:       50,
		thriving:        50,
		explorationRate: defaultExplorationRate,
		emoji:           table,
		emojiPrefs:      make(map[string]float64),
		rng:             rng,
		logger:          logger,
	}
	for i := range c.beliefs {
		c.beliefs[i] = rng.Float64()
		c.precision[i] = 1.0
	}
	for i := range c.actionPrefs {
		c.actionPrefs[i] = 0.2 + 0.6*rng.Float64()
	}
	return c
}

// SetAdvisor attaches an optional semantic advisor. The core produces
// complete responses without one; advice only re-ranks candidates.
func (c *Core) SetAdvisor(a Advisor) { c.advisor = a }

// StateSize returns the belief dimensionality, constant for the
// lifetime of the core.
func (c *Core) StateSize() int { return c.stateSize }

// Observe processes an observation vector: computes precision-weighted
// surprise, updates beliefs and precision, and folds the result into
// the smoothed prediction accuracy.
func (c *Core) Observe(observation []float64) Observation {
	obs := c.fit(observation)

	floats.SubTo(c.predErr, obs, c.predictions)
	raw := 0.0
	for i, e := range c.predErr {
		raw += e * e * c.precision[i]
	}
	surprise := sigmoid(raw - 2.0)

	c.updateBeliefs(obs)

	c.surprise.Enqueue(surprise)
	c.accuracy = 0.9*c.accuracy + 0.1*(1.0-surprise)

	return Observation{
		Surprise:   surprise,
		FreeEnergy: c.freeEnergy(),
		Beliefs:    c.Beliefs(),
	}
}

func (c *Core) updateBeliefs(obs []float64) {
	rate := c.learningRate * (1.0 + (1.0 - c.accuracy))
	for i := range c.beliefs {
		err := obs[i] - c.beliefs[i]
		c.beliefs[i] = clamp01(c.beliefs[i] + rate*err*c.precision[i])
		c.precision[i] = clamp(c.precision[i]+precisionUpdateRate*(1.0-math.Abs(err)), MinPrecision, MaxPrecision)
	}
}

func (c *Core) freeEnergy() float64 {
	totalErr := 0.0
	for _, e := range c.predErr {
		totalErr += e * e
	}
	return totalErr / (floats.Sum(c.precision) + 1e-6)
}

// AdaptToEnvironment scales the learning rate with environment
// complexity so noisier worlds learn faster.
func (c *Core) AdaptToEnvironment(complexity float64) {
	c.learningRate = clamp(baseLearningRate*(1.0+complexity), 0.01, 0.5)
}

// Tick advances the core's simulated clock, decaying attention with
// time since the last interaction and updating thriving accordingly.
func (c *Core) Tick(simHours float64) {
	c.clockHours = simHours

	elapsed := simHours - c.lastInteractionHours
	if elapsed < 0 {
		elapsed = 0
	}
	decay := attentionDecayRate * elapsed
	c.attention = math.Max(0, c.attention-decay)

	if c.attention > 30 {
		c.thriving = math.Min(100, c.thriving+thrivingGrowthRate*(c.attention/100.0))
	} else {
		c.thriving = math.Max(0, c.thriving-thrivingDecayRate)
	}
}

// ReceiveInteraction credits attention for an interaction of the
// given kind and intensity, with diminishing returns above 80.
func (c *Core) ReceiveInteraction(kind string, intensity float64) {
	c.interactionCount++
	c.lastInteractionHours = c.clockHours

	multiplier, ok := interactionMultipliers[kind]
	if !ok {
		multiplier = 1.0
	}
	boost := 10.0 * intensity * multiplier
	if c.attention > 80 {
		boost *= 1.0 - (c.attention-80)/20
	}
	c.attention = math.Min(100, c.attention+boost)
	c.thriving = math.Min(100, c.thriving+10.0*intensity*multiplier*0.5*intensity)
}

// Attention returns the current attention level in [0,100].
func (c *Core) Attention() float64 { return c.attention }

// Thriving returns the current thriving level in [0,100].
func (c *Core) Thriving() float64 { return c.thriving }

// Accuracy returns the smoothed prediction accuracy in [0,1].
func (c *Core) Accuracy() float64 { return c.accuracy }

// Beliefs returns a copy of the belief vector.
func (c *Core) Beliefs() []float64 {
	out := make([]float64, len(c.beliefs))
	copy(out, c.beliefs)
	return out
}

// SurpriseHistory returns the recorded surprise values, oldest first.
func (c *Core) SurpriseHistory() []float64 {
	return c.surprise.Values()
}

// MeanRecentSurprise averages the last n recorded surprise values.
func (c *Core) MeanRecentSurprise(n int) float64 {
	values := c.surprise.Values()
	if len(values) == 0 {
		return 0
	}
	if n > 0 && len(values) > n {
		values = values[len(values)-n:]
	}
	return floats.Sum(values) / float64(len(values))
}

// fit resizes an observation to the state dimension by truncation or
// zero padding.
func (c *Core) fit(observation []float64) []float64 {
	obs := make([]float64, c.stateSize)
	copy(obs, observation)
	return obs
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// softmax converts scores to a probability distribution with the
// given temperature, stabilised by the max score.
func softmax(scores []float64, temperature float64) []float64 {
	if temperature <= 0 {
		temperature = 1.0
	}
	max := floats.Max(scores)
	probs := make([]float64, len(scores))
	for i, s := range scores {
		probs[i] = math.Exp((s - max) / temperature)
	}
	total := floats.Sum(probs)
	floats.Scale(1/total, probs)
	return probs
}

// sampleIndex draws an index from a probability distribution.
func sampleIndex(rng *rand.Rand, probs []float64) int {
	r := rng.Float64()
	cumulative := 0.0
	for i, p := range probs {
		cumulative += p
		if r <= cumulative {
			return i
		}
	}
	return len(probs) - 1
}
