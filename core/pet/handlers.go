package pet

import (
	"github.com/gnarlynerd-lab/pets/core/bus"
)

// handleMessage dispatches one inbox message to its typed handler.
// Unknown types route to a logging no-op.
func (a *Agent) handleMessage(msg bus.Message) {
	moodBefore := a.Vitals.Mood

	switch msg.Type {
	case bus.TypeFeed:
		a.handleFeed(msg)
	case bus.TypePlay:
		a.handlePlay(msg)
	case bus.TypePet:
		a.handlePetting(msg)
	case bus.TypeTrain:
		a.handleTraining(msg)
	case bus.TypeCheck:
		a.handleChecking(msg)
	case bus.TypePetInteraction:
		a.handlePetInteraction(msg)
	case bus.TypeEmoji:
		a.handleEmoji(msg)
	case bus.TypeStatusUpdate, bus.TypeCollaborationRequest:
		// Informational; remembered but without state effects.
	default:
		a.logger.Warn("ignoring message of unknown type", "pet", a.ID, "type", msg.Type)
		return
	}

	a.LastInteractionAtHours = a.simHours
	a.recordInteraction(msg.Sender, string(msg.Type), msg.Content, moodBefore)
}

func (a *Agent) handleFeed(msg bus.Message) {
	amount := msg.Float("amount", 1.0)
	kind := msg.String("food_type", "basic")

	multiplier := 1.0
	switch kind {
	case "premium":
		multiplier = 1.5
	case "treat":
		multiplier = 0.5
	}

	hungerReduction := amount * 20.0 * multiplier
	a.Needs.Hunger = clamp(a.Needs.Hunger-hungerReduction, 0, 100)
	a.Needs.Thirst = clamp(a.Needs.Thirst-hungerReduction*0.3, 0, 100)

	moodBoost := hungerReduction / 10.0
	if moodBoost > 10 {
		moodBoost = 10
	}
	a.Vitals.Mood = clamp(a.Vitals.Mood+moodBoost, 0, 100)

	a.adjustHumanRelationship(msg.Sender, 0.5)
	a.mind.ReceiveInteraction("feeding", amount)
}

func (a *Agent) handlePlay(msg bus.Message) {
	intensity := msg.Float("intensity", 1.0)
	duration := msg.Float("duration", 1.0)

	satisfaction := intensity * duration * 15.0
	a.Needs.Play = clamp(a.Needs.Play-satisfaction, 0, 100)
	a.Needs.Social = clamp(a.Needs.Social-satisfaction*0.5, 0, 100)
	a.Needs.Rest = clamp(a.Needs.Rest+intensity*duration*5.0, 0, 100)

	moodBoost := satisfaction / 5.0
	if moodBoost > 20 {
		moodBoost = 20
	}
	a.Vitals.Mood = clamp(a.Vitals.Mood+moodBoost, 0, 100)

	a.Vitals.Energy = clamp(a.Vitals.Energy-intensity*duration*10.0, 0, 100)
	a.energy.SetEnergy(a.Vitals.Energy)

	a.adjustHumanRelationship(msg.Sender, intensity)
	a.mind.ReceiveInteraction("playing", intensity*2.0)
}

func (a *Agent) handlePetting(msg bus.Message) {
	duration := msg.Float("duration", 1.0)
	location := msg.String("location", "head")

	a.Needs.Social = clamp(a.Needs.Social-duration*10.0, 0, 100)

	locationMultiplier := 1.0
	if location == "belly" && a.Traits["extraversion"] < 0.4 {
		locationMultiplier = 0.5
	} else if location == "head" && a.Traits["affection"] > 0.7 {
		locationMultiplier = 1.5
	}
	moodBoost := duration * 5.0 * (0.5 + a.Traits["extraversion"]) * locationMultiplier
	a.Vitals.Mood = clamp(a.Vitals.Mood+moodBoost, 0, 100)

	a.adjustHumanRelationship(msg.Sender, 0.3*duration)
	a.mind.ReceiveInteraction("petting", duration)
}

func (a *Agent) handleTraining(msg bus.Message) {
	skill := msg.String("skill", "basic")
	difficulty := msg.Float("difficulty", 1.0)
	duration := msg.Float("duration", 1.0)

	conscientiousness := a.Traits["conscientiousness"]
	effectiveness := conscientiousness * duration
	if difficulty > conscientiousness*1.5 {
		effectiveness *= 0.5
	}

	if a.rng.Float64() < effectiveness*0.2 {
		name := "trained_" + skill
		if _, ok := a.behaviorPatterns[name]; !ok {
			a.behaviorPatterns[name] = 0.2
		}
	}

	a.Vitals.Energy = clamp(a.Vitals.Energy-difficulty*duration*5.0, 0, 100)
	a.energy.SetEnergy(a.Vitals.Energy)
	a.Needs.Rest = clamp(a.Needs.Rest+difficulty*duration*3.0, 0, 100)

	a.adjustHumanRelationship(msg.Sender, effectiveness*0.5)
	a.mind.ReceiveInteraction("training", duration*1.5)
}

func (a *Agent) handleChecking(msg bus.Message) {
	duration := msg.Float("duration", 0.5)

	a.Needs.Social = clamp(a.Needs.Social-duration*5.0, 0, 100)
	a.Vitals.Mood = clamp(a.Vitals.Mood+duration*2.0, 0, 100)

	a.adjustHumanRelationship(msg.Sender, 0.1)
	a.mind.ReceiveInteraction("checking", duration*0.5)
}

func (a *Agent) handlePetInteraction(msg bus.Message) {
	compatibility := msg.Float("compatibility", 0.5)

	delta := (compatibility - 0.5) * 2.0
	a.adjustPetRelationship(msg.Sender, delta)

	if a.PetRelationships[msg.Sender] > 0 {
		a.Needs.Social = clamp(a.Needs.Social-10.0, 0, 100)
	}

	// Play between pets can spread behaviours by mimicry.
	if msg.String("interaction_type", "meet") == "play" && a.rng.Float64() < 0.2 {
		if other := msg.String("behavior", ""); other != "" {
			if _, ok := a.behaviorPatterns[other]; !ok {
				a.behaviorPatterns[other] = 0.3
			}
		}
	}
}

func (a *Agent) handleEmoji(msg bus.Message) {
	sequence := msg.String("emojis", "")
	result := a.mind.ProcessEmojiInteraction(sequence, msg.Sender)
	a.lastResponse = result.Response
	a.adjustHumanRelationship(msg.Sender, 0.1*result.Context.Sentiment)
}

// adjustHumanRelationship applies a relationship delta scaled by the
// pet's personality: agreeableness amplifies positive changes,
// neuroticism amplifies negative ones. Clamped to [-10, 10].
func (a *Agent) adjustHumanRelationship(userID string, delta float64) {
	if userID == "" {
		return
	}
	if delta > 0 {
		delta *= 0.5 + a.Traits["agreeableness"]
	} else {
		delta *= 0.5 + a.Traits["neuroticism"]
	}
	a.HumanRelationships[userID] = clamp(a.HumanRelationships[userID]+delta, -10, 10)
}

func (a *Agent) adjustPetRelationship(petID string, delta float64) {
	if petID == "" {
		return
	}
	a.PetRelationships[petID] = clamp(a.PetRelationships[petID]+delta, -10, 10)
}

// LastEmojiResponse returns the most recent emoji response the pet
// produced.
func (a *Agent) LastEmojiResponse() string { return a.lastResponse }
