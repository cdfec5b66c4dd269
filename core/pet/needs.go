package pet

import (
	"math"

	"github.com/gnarlynerd-lab/pets/core/env"
)

// Needs are the pet's unmet needs, each in [0,100] with higher
// meaning more unmet.
type Needs struct {
	Hunger float64 `json:"hunger"`
	Thirst float64 `json:"thirst"`
	Social float64 `json:"social"`
	Play   float64 `json:"play"`
	Rest   float64 `json:"rest"`
}

type namedNeed struct {
	name  string
	value float64
}

func (n *Needs) values() []namedNeed {
	return []namedNeed{
		{"hunger", n.Hunger},
		{"thirst", n.Thirst},
		{"social", n.Social},
		{"play", n.Play},
		{"rest", n.Rest},
	}
}

func (n *Needs) average() float64 {
	return (n.Hunger + n.Thirst + n.Social + n.Play + n.Rest) / 5.0
}

// dominantIndex returns the index of the highest need in the fixed
// hunger/thirst/social/play/rest ordering.
func (n *Needs) dominantIndex() int {
	best := 0
	values := n.values()
	for i, v := range values {
		if v.value > values[best].value {
			best = i
		}
	}
	return best
}

// dominantName returns the name of the highest need.
func (n *Needs) dominantName() string {
	return n.values()[n.dominantIndex()].name
}

// drift applies the fixed per-tick need increments plus environmental
// modifiers, then clamps everything to [0,100].
func (n *Needs) drift(view *env.View) {
	n.Hunger += 0.5
	n.Thirst += 0.8
	n.Social += 0.3
	n.Play += 0.4
	n.Rest += 0.2

	if view != nil {
		if view.Tier >= env.TierMedium {
			// Weather energy reduces the rest need; gloomy weather
			// raises the social need.
			n.Rest -= view.Effects.Energy * 0.5
			if view.Effects.Mood < 0 {
				n.Social += math.Abs(view.Effects.Mood) * 0.3
			}
			n.Social -= view.SocialAtmosphere * 0.2
			n.Rest += view.SocialAtmosphere * 0.1
		}

		hour := view.TimeOfDay
		if (hour >= 7 && hour < 9) || (hour >= 12 && hour < 14) || (hour >= 18 && hour < 20) {
			n.Hunger += 0.3
		}
		if hour >= 22 || hour < 6 {
			n.Rest += 0.4
		}
	}

	n.clampAll()
}

func (n *Needs) clampAll() {
	n.Hunger = clamp(n.Hunger, 0, 100)
	n.Thirst = clamp(n.Thirst, 0, 100)
	n.Social = clamp(n.Social, 0, 100)
	n.Play = clamp(n.Play, 0, 100)
	n.Rest = clamp(n.Rest, 0, 100)
}
