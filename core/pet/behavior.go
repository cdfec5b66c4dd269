package pet

import (
	"sort"
	"strings"

	"github.com/gnarlynerd-lab/pets/core/boundary"
	"github.com/gnarlynerd-lab/pets/core/cognition"
	"github.com/gnarlynerd-lab/pets/core/env"
	"github.com/gnarlynerd-lab/pets/core/fep"
)

// BehaviorType is the closed set of behaviours a pet can perform.
type BehaviorType string

const (
	BehaviorRest                BehaviorType = "rest"
	BehaviorSeekFood            BehaviorType = "seek_food"
	BehaviorSeekWater           BehaviorType = "seek_water"
	BehaviorPlayful             BehaviorType = "playful"
	BehaviorSad                 BehaviorType = "sad"
	BehaviorHappy               BehaviorType = "happy"
	BehaviorSocialFriendly      BehaviorType = "social_friendly"
	BehaviorSocialAvoid         BehaviorType = "social_avoid"
	BehaviorSocialCurious       BehaviorType = "social_curious"
	BehaviorSeekAttention       BehaviorType = "seek_attention"
	BehaviorExplore             BehaviorType = "explore"
	BehaviorSeekShelter         BehaviorType = "seek_shelter"
	BehaviorSunbathe            BehaviorType = "sunbathe"
	BehaviorNightAlert          BehaviorType = "night_alert"
	BehaviorDeepSleep           BehaviorType = "deep_sleep"
	BehaviorSocialGather        BehaviorType = "social_gather"
	BehaviorMeditate            BehaviorType = "meditate"
	BehaviorFrolic              BehaviorType = "frolic"
	BehaviorInvestigate         BehaviorType = "investigate"
	BehaviorCautious            BehaviorType = "cautious"
	BehaviorBoundaryRestoration BehaviorType = "boundary_restoration"
	BehaviorBoundaryStretching  BehaviorType = "boundary_stretching"
	BehaviorGroom               BehaviorType = "groom"
	BehaviorStretch             BehaviorType = "stretch"
	BehaviorLookAround          BehaviorType = "look_around"
	BehaviorYawn                BehaviorType = "yawn"
)

// Behavior is one active behaviour with its trigger and intensity.
type Behavior struct {
	Type      BehaviorType `json:"type"`
	Intensity float64      `json:"intensity"`
	Cause     string       `json:"cause"`
	Target    string       `json:"target,omitempty"`
}

var idleBehaviors = []BehaviorType{BehaviorGroom, BehaviorStretch, BehaviorLookAround, BehaviorYawn}

// behaviorExperience maps behaviours to the cognitive experience they
// provide when dominant.
var behaviorExperience = map[BehaviorType]cognition.ExperienceType{
	BehaviorExplore:            cognition.ExperienceExploration,
	BehaviorInvestigate:        cognition.ExperienceExploration,
	BehaviorPlayful:            cognition.ExperiencePlay,
	BehaviorFrolic:             cognition.ExperiencePlay,
	BehaviorSocialFriendly:     cognition.ExperienceSocialInteraction,
	BehaviorSocialCurious:      cognition.ExperienceSocialInteraction,
	BehaviorSocialGather:       cognition.ExperienceSocialInteraction,
	BehaviorBoundaryStretching: cognition.ExperienceBoundaryChallenge,
}

// generateBehaviors assembles the active behaviour list from needs,
// mood, social context, traits, environment, boundary state, trained
// patterns, and an occasional idle impulse.
func (a *Agent) generateBehaviors(view *env.View) []Behavior {
	if a.Vitals.Energy < 10 {
		return []Behavior{{Type: BehaviorRest, Intensity: 1.0, Cause: "low_energy"}}
	}

	var behaviors []Behavior

	// Need thresholds.
	if a.Needs.Hunger > 70 {
		behaviors = append(behaviors, Behavior{Type: BehaviorSeekFood, Intensity: a.Needs.Hunger / 100.0, Cause: "hunger"})
	}
	if a.Needs.Thirst > 70 {
		behaviors = append(behaviors, Behavior{Type: BehaviorSeekWater, Intensity: a.Needs.Thirst / 100.0, Cause: "thirst"})
	}
	if a.Needs.Play > 70 {
		behaviors = append(behaviors, Behavior{Type: BehaviorPlayful, Intensity: a.Needs.Play / 100.0, Cause: "boredom"})
	}
	if a.Needs.Rest > 70 {
		behaviors = append(behaviors, Behavior{Type: BehaviorRest, Intensity: a.Needs.Rest / 100.0, Cause: "fatigue"})
	}

	// Mood extremes.
	if a.Vitals.Mood < 30 {
		behaviors = append(behaviors, Behavior{Type: BehaviorSad, Intensity: (30 - a.Vitals.Mood) / 30, Cause: "low_mood"})
	} else if a.Vitals.Mood > 70 {
		behaviors = append(behaviors, Behavior{Type: BehaviorHappy, Intensity: (a.Vitals.Mood - 70) / 30, Cause: "high_mood"})
	}

	// Social proximity scaled by relationship polarity.
	if a.Needs.Social > 50 {
		if target := a.nearestPet(view); target != "" {
			relationship := a.PetRelationships[target]
			switch {
			case relationship > 3:
				behaviors = append(behaviors, Behavior{Type: BehaviorSocialFriendly, Intensity: 0.7, Cause: "liked_pet", Target: target})
			case relationship < -3:
				behaviors = append(behaviors, Behavior{Type: BehaviorSocialAvoid, Intensity: 0.7, Cause: "disliked_pet", Target: target})
			default:
				behaviors = append(behaviors, Behavior{Type: BehaviorSocialCurious, Intensity: 0.5, Cause: "neutral_pet", Target: target})
			}
		}
	}

	// Trait triggers.
	if a.Traits["curiosity"] > 0.7 {
		behaviors = append(behaviors, Behavior{Type: BehaviorExplore, Intensity: a.Traits["curiosity"] - 0.3, Cause: "curiosity"})
	}

	behaviors = append(behaviors, a.environmentBehaviors(view)...)

	// Active inference proposes one behaviour of its own.
	if inferred := a.inferredBehavior(); inferred != nil && !containsType(behaviors, inferred.Type) {
		behaviors = append(behaviors, *inferred)
	}

	// Boundary state rules.
	permeability := a.energy.Boundary().Permeability()
	if permeability > 0.8 {
		behaviors = append(behaviors, Behavior{Type: BehaviorBoundaryRestoration, Intensity: permeability - 0.5, Cause: "vulnerable_boundary"})
	} else if permeability < 0.3 {
		behaviors = append(behaviors, Behavior{Type: BehaviorBoundaryStretching, Intensity: 0.8 - permeability, Cause: "rigid_boundary"})
	}

	// Occasional idle behaviour.
	if a.rng.Float64() < 0.1 {
		behaviors = append(behaviors, Behavior{
			Type:      idleBehaviors[a.rng.Intn(len(idleBehaviors))],
			Intensity: a.rng.Float64() * 0.5,
			Cause:     "random",
		})
	}

	// Trained and mimicked behaviours fire on their activation odds.
	names := make([]string, 0, len(a.behaviorPatterns))
	for name := range a.behaviorPatterns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		activation := a.behaviorPatterns[name]
		if strings.HasPrefix(name, "trained_") && a.rng.Float64() < activation {
			behaviors = append(behaviors, Behavior{Type: BehaviorType(name), Intensity: activation, Cause: "training"})
		}
	}

	return behaviors
}

// fepActionBehaviors maps the first action indices of the cognitive
// core to concrete need-addressing behaviours.
var fepActionBehaviors = []BehaviorType{
	BehaviorSeekFood,
	BehaviorSeekWater,
	BehaviorSocialGather,
	BehaviorPlayful,
	BehaviorRest,
}

// inferredBehavior lets the cognitive core propose a behaviour by
// selecting an action against the current beliefs.
func (a *Agent) inferredBehavior() *Behavior {
	choice := a.mind.SelectAction(a.mind.Beliefs(), fep.SelectGreedy, 0)
	if choice.Action >= len(fepActionBehaviors) {
		return nil
	}
	return &Behavior{
		Type:      fepActionBehaviors[choice.Action],
		Intensity: 0.7,
		Cause:     "active_inference",
	}
}

func containsType(behaviors []Behavior, t BehaviorType) bool {
	for _, b := range behaviors {
		if b.Type == t {
			return true
		}
	}
	return false
}

func (a *Agent) environmentBehaviors(view *env.View) []Behavior {
	var behaviors []Behavior
	permeability := a.energy.Boundary().Permeability()

	switch view.CurrentWeather {
	case env.WeatherRainy, env.WeatherStormy:
		if permeability > 0.7 {
			behaviors = append(behaviors, Behavior{Type: BehaviorSeekShelter, Intensity: 0.7, Cause: "bad_weather"})
		}
	case env.WeatherClear:
		if permeability > 0.5 {
			behaviors = append(behaviors, Behavior{Type: BehaviorSunbathe, Intensity: 0.5, Cause: "nice_weather"})
		}
	}

	hour := view.TimeOfDay
	if hour >= 22 || hour < 6 {
		if a.Traits["neuroticism"] > 0.6 {
			behaviors = append(behaviors, Behavior{Type: BehaviorNightAlert, Intensity: a.Traits["neuroticism"] - 0.4, Cause: "night_time"})
		} else if a.Needs.Rest > 60 {
			behaviors = append(behaviors, Behavior{Type: BehaviorDeepSleep, Intensity: a.Needs.Rest / 100.0, Cause: "night_time_tired"})
		}
	}

	switch view.CurrentRegion {
	case "central":
		behaviors = append(behaviors, Behavior{Type: BehaviorSocialGather, Intensity: 0.6, Cause: "central_area"})
	case "quiet":
		behaviors = append(behaviors, Behavior{Type: BehaviorMeditate, Intensity: 0.7, Cause: "quiet_corner"})
	case "play":
		behaviors = append(behaviors, Behavior{Type: BehaviorFrolic, Intensity: 0.8, Cause: "play_zone"})
	}

	if view.Tier == env.TierFull {
		if view.NoveltyLevel > 0.7 && a.Traits["openness"] > 0.5 {
			behaviors = append(behaviors, Behavior{Type: BehaviorInvestigate, Intensity: view.NoveltyLevel * a.Traits["openness"], Cause: "high_novelty"})
		} else if view.NoveltyLevel > 0.8 && a.Traits["neuroticism"] > 0.7 {
			behaviors = append(behaviors, Behavior{Type: BehaviorCautious, Intensity: view.NoveltyLevel * a.Traits["neuroticism"], Cause: "high_novelty_stress"})
		}
	}

	return behaviors
}

func (a *Agent) nearestPet(view *env.View) string {
	if region, ok := view.Regions[view.CurrentRegion]; ok {
		for _, id := range region.CurrentPets {
			if id != a.ID {
				return id
			}
		}
	}
	for _, cp := range view.CompetingPets {
		if cp.Region == view.CurrentRegion {
			return cp.ID
		}
	}
	return ""
}

// performBehaviors executes the active behaviours: each consumes
// energy proportional to intensity and applies its fixed effect map.
func (a *Agent) performBehaviors(view *env.View, behaviors []Behavior) {
	b := a.energy.Boundary()

	for _, behavior := range behaviors {
		i := behavior.Intensity
		a.Vitals.Energy = clamp(a.Vitals.Energy-i*2.0, 0, 100)

		switch behavior.Type {
		case BehaviorRest:
			a.Needs.Rest = clamp(a.Needs.Rest-i*20.0, 0, 100)
		case BehaviorExplore:
			a.Needs.Play = clamp(a.Needs.Play-i*10.0, 0, 100)
		case BehaviorSeekFood:
			if a.envOps != nil {
				result := a.envOps.ConsumeResources(a.Region, map[string]float64{"food": 10})
				if result.Success && result.Consumed["food"] > 0 {
					a.Needs.Hunger = clamp(a.Needs.Hunger-i*25.0, 0, 100)
				}
			}
		case BehaviorSeekWater:
			if a.envOps != nil {
				result := a.envOps.ConsumeResources(a.Region, map[string]float64{"water": 10})
				if result.Success && result.Consumed["water"] > 0 {
					a.Needs.Thirst = clamp(a.Needs.Thirst-i*25.0, 0, 100)
				}
			}
		case BehaviorSunbathe:
			a.Vitals.Energy = clamp(a.Vitals.Energy+i*5.0, 0, 100)
			a.Vitals.Mood = clamp(a.Vitals.Mood+i*3.0, 0, 100)
			a.Needs.Rest = clamp(a.Needs.Rest-i*10.0, 0, 100)
		case BehaviorSeekShelter:
			b.AdjustPermeability(-0.1*i, 0.3, boundary.MaxPermeability)
		case BehaviorNightAlert:
			a.Vitals.Energy = clamp(a.Vitals.Energy-i*3.0, 0, 100)
			b.AdjustSize(0.1*i, boundary.MinSize, 1.5)
		case BehaviorDeepSleep:
			a.Vitals.Energy = clamp(a.Vitals.Energy+i*10.0, 0, 100)
			a.Needs.Rest = clamp(a.Needs.Rest-i*30.0, 0, 100)
			b.ScaleMaintenanceCost(0.9)
		case BehaviorInvestigate:
			a.cog.ProcessExperience(cognition.ExperienceExploration, i*0.8, a.Traits)
			a.Needs.Play = clamp(a.Needs.Play-i*15.0, 0, 100)
		case BehaviorBoundaryRestoration:
			invested := a.Vitals.Energy * 0.2
			if invested > i*10.0 {
				invested = i * 10.0
			}
			a.energy.SetEnergy(a.Vitals.Energy)
			if result := a.energy.ConsumeEnergy(invested, "boundary_repair"); result.Success {
				a.Vitals.Energy = result.Remaining
			}
			b.AdjustPermeability(-0.15*i, 0.3, boundary.MaxPermeability)
		case BehaviorBoundaryStretching:
			b.AdjustPermeability(0.1*i, boundary.MinPermeability, 0.8)
			a.cog.ProcessExperience(cognition.ExperienceBoundaryChallenge, i*0.7, a.Traits)
		case BehaviorPlayful:
			a.Needs.Play = clamp(a.Needs.Play-i*10.0, 0, 100)
		case BehaviorFrolic:
			a.Needs.Play = clamp(a.Needs.Play-i*15.0, 0, 100)
			a.Vitals.Mood = clamp(a.Vitals.Mood+i*2.0, 0, 100)
		case BehaviorMeditate:
			a.Needs.Rest = clamp(a.Needs.Rest-i*15.0, 0, 100)
		case BehaviorSocialGather, BehaviorSocialFriendly, BehaviorSocialCurious:
			a.Needs.Social = clamp(a.Needs.Social-i*10.0, 0, 100)
		case BehaviorSeekAttention:
			a.Needs.Social = clamp(a.Needs.Social-i*5.0, 0, 100)
		}
	}

	a.energy.SetEnergy(a.Vitals.Energy)
}
