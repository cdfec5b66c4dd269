package fep

// SelectionMode chooses between one-step greedy selection and
// multi-step policy optimisation.
type SelectionMode int

const (
	SelectGreedy SelectionMode = iota
	SelectPolicyOptimization
)

const (
	policySequenceCount = 20
	discountFactor      = 0.9
	highSurpriseCutoff  = 2.0
)

// ActionChoice reports the selected action and the confidence of the
// selection.
type ActionChoice struct {
	Action     int     `json:"action"`
	Confidence float64 `json:"confidence"`
}

// SelectAction chooses an action index for the current state. Greedy
// mode scores each action by preference minus expected belief error
// and samples by softmax; policy mode evaluates candidate action
// sequences over the given horizon.
func (c *Core) SelectAction(state []float64, mode SelectionMode, horizon int) ActionChoice {
	if mode == SelectPolicyOptimization {
		if horizon <= 0 {
			horizon = 3
		}
		return c.selectWithPolicyOptimization(state, horizon)
	}
	return c.selectGreedy(state)
}

func (c *Core) selectGreedy(state []float64) ActionChoice {
	st := c.fit(state)
	actionCount := len(c.actionPrefs)

	values := make([]float64, actionCount)
	for action := 0; action < actionCount; action++ {
		predicted := c.predictNext(st, action)
		expectedErr := 0.0
		for i, p := range predicted {
			d := p - c.beliefs[i]
			expectedErr += d * d
		}
		values[action] = c.actionPrefs[action] - expectedErr
	}

	probs := softmax(values, 1.0)
	action := sampleIndex(c.rng, probs)
	return ActionChoice{Action: action, Confidence: probs[action]}
}

// predictNext applies the one-step predictive model: a weighted blend
// of the current state, a one-hot action effect, and the beliefs. The
// result is stored as the current prediction.
func (c *Core) predictNext(state []float64, action int) []float64 {
	predicted := make([]float64, c.stateSize)
	for i := range predicted {
		effect := 0.0
		if i == action {
			effect = 0.1
		}
		predicted[i] = clamp01(0.9*state[i] + effect + 0.05*c.beliefs[i])
	}
	copy(c.predictions, predicted)
	return predicted
}

func (c *Core) selectWithPolicyOptimization(state []float64, horizon int) ActionChoice {
	st := c.fit(state)
	sequences := c.generateSequences(horizon)

	bestScore := 0.0
	bestIdx := 0
	for i, seq := range sequences {
		score := c.evaluateSequence(st, seq)
		if i == 0 || score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if c.rng.Float64() < c.explorationRate {
		return ActionChoice{
			Action:     c.rng.Intn(len(c.actionPrefs)),
			Confidence: 0.6,
		}
	}
	confidence := bestScore / 8.0
	if confidence > 0.95 {
		confidence = 0.95
	}
	if confidence < 0 {
		confidence = 0
	}
	return ActionChoice{Action: sequences[bestIdx][0], Confidence: confidence}
}

// generateSequences produces candidate action sequences through three
// strategies (preference-greedy, exploratory, balanced), filling any
// remainder with purely random sequences.
func (c *Core) generateSequences(horizon int) [][]int {
	perStrategy := policySequenceCount / 3
	sequences := make([][]int, 0, policySequenceCount)

	for i := 0; i < perStrategy; i++ {
		sequences = append(sequences, c.sequenceWithRandomChance(horizon, 0.0))
	}
	for i := 0; i < perStrategy; i++ {
		sequences = append(sequences, c.sequenceWithRandomChance(horizon, 0.6))
	}
	for i := 0; i < perStrategy; i++ {
		sequences = append(sequences, c.sequenceWithRandomChance(horizon, 0.4))
	}
	for len(sequences) < policySequenceCount {
		sequences = append(sequences, c.sequenceWithRandomChance(horizon, 1.0))
	}
	return sequences
}

func (c *Core) sequenceWithRandomChance(horizon int, randomChance float64) []int {
	seq := make([]int, horizon)
	for i := range seq {
		if randomChance > 0 && c.rng.Float64() < randomChance {
			seq[i] = c.rng.Intn(len(c.actionPrefs))
		} else {
			seq[i] = c.samplePreferredAction()
		}
	}
	return seq
}

func (c *Core) samplePreferredAction() int {
	total := 0.0
	for _, p := range c.actionPrefs {
		total += p
	}
	if total <= 0 {
		return c.rng.Intn(len(c.actionPrefs))
	}
	r := c.rng.Float64() * total
	cumulative := 0.0
	for i, p := range c.actionPrefs {
		cumulative += p
		if r <= cumulative {
			return i
		}
	}
	return len(c.actionPrefs) - 1
}

// evaluateSequence forward-simulates a sequence with the predictive
// model, accumulating discounted rewards for surprise reduction,
// attention seeking, thriving maintenance and preference alignment,
// with a penalty for landing in highly surprising states.
func (c *Core) evaluateSequence(state []float64, sequence []int) float64 {
	current := make([]float64, len(state))
	copy(current, state)

	total := 0.0
	discount := 1.0
	for _, action := range sequence {
		next := c.simulateNext(current, action)
		reward := 2.0 * (c.expectedSurprise(current) - c.expectedSurprise(next))

		if c.attention < 50 && action <= 2 {
			reward += 1.0
		}
		if c.thriving > 70 && action >= 3 && action <= 5 {
			reward += 0.5
		}
		if action < len(c.actionPrefs) {
			reward += 0.3 * c.actionPrefs[action]
		}
		if c.expectedSurprise(next) > highSurpriseCutoff {
			reward -= 1.0
		}

		total += reward * discount
		discount *= discountFactor
		current = next
	}
	return total
}

// simulateNext is the planning variant of the predictive model; it
// does not touch the stored predictions.
func (c *Core) simulateNext(state []float64, action int) []float64 {
	next := make([]float64, len(state))
	for i := range next {
		v := state[i]
		if i == action {
			v += 0.1
		}
		next[i] = clamp01(v)
	}
	return next
}

// expectedSurprise measures how far a state sits from the current
// beliefs.
func (c *Core) expectedSurprise(state []float64) float64 {
	total := 0.0
	for i, s := range state {
		d := s - c.beliefs[i]
		total += d * d
	}
	return total
}

// ReinforceAction shifts the preference of an action down in
// proportion to the surprise its outcome produced.
func (c *Core) ReinforceAction(action int, outcomeSurprise float64) {
	if action < 0 || action >= len(c.actionPrefs) {
		return
	}
	c.actionPrefs[action] = clamp01(c.actionPrefs[action] - c.learningRate*outcomeSurprise)
}
