package pet

import (
	"github.com/gnarlynerd-lab/pets/core/boundary"
	"github.com/gnarlynerd-lab/pets/core/cognition"
	"github.com/gnarlynerd-lab/pets/core/env"
)

// interactWithEnvironment rolls the per-tick chances to assimilate an
// element (30%), project into the environment (20%), or change
// region (10%).
func (a *Agent) interactWithEnvironment(view *env.View) {
	if a.rng.Float64() < 0.3 {
		a.tryAssimilation(view)
	}
	if a.rng.Float64() < 0.2 {
		a.tryProjection(view)
	}
	if a.rng.Float64() < 0.1 {
		a.considerRegionChange(view)
	}
}

func (a *Agent) tryAssimilation(view *env.View) {
	exchange := a.energy.Exchange()
	candidates := exchange.ScanEnvironment(view, a.projectionCompatibility)
	if len(candidates) == 0 {
		return
	}

	chosen := a.chooseAssimilationTarget(candidates)
	result := exchange.AssimilateElement(chosen)
	if !result.Success {
		return
	}

	a.cog.ProcessExperience(cognition.ExperienceAssimilation, 0.7, a.Traits)
	a.Episodic = append(a.Episodic, EpisodicRecord{
		Timestamp:   a.simHours,
		Counterpart: "",
		Type:        "assimilation",
		Content:     map[string]any{"element": string(chosen.Type), "id": chosen.ID},
	})
	if len(a.Episodic) > episodicCap {
		a.Episodic = a.Episodic[len(a.Episodic)-episodicCap:]
	}
}

// chooseAssimilationTarget picks a candidate by weighted roll: easier
// elements weigh more, openness favours resources, and social
// intelligence favours other pets' projections.
func (a *Agent) chooseAssimilationTarget(candidates []boundary.Candidate) boundary.Candidate {
	weights := make([]float64, len(candidates))
	total := 0.0
	for i, c := range candidates {
		w := 1.0 - c.Difficulty*0.8
		switch c.Type {
		case boundary.ElementResource:
			w *= 1.0 + (a.Traits["openness"] - 0.5)
		case boundary.ElementProjection:
			w *= 1.0 + a.cog.Level(cognition.AreaSocialIntelligence)
		}
		if w < 0 {
			w = 0
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return candidates[a.rng.Intn(len(candidates))]
	}
	r := a.rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return candidates[i]
		}
	}
	return candidates[0]
}

// projectionCompatibility scores how compatible another pet's
// projection is with this pet, from trait properties and the existing
// relationship.
func (a *Agent) projectionCompatibility(p *env.Projection) float64 {
	score := 0.5
	score += a.PetRelationships[p.SourcePet] / 40.0
	for name, value := range p.Properties {
		if own, ok := a.Traits[name]; ok {
			score -= 0.1 * abs(own-value)
		}
	}
	return clamp(score, 0, 1)
}

func (a *Agent) tryProjection(view *env.View) {
	projType := a.chooseProjectionType()
	properties := a.projectionProperties(projType)

	result := a.energy.Exchange().ProjectToEnvironment(projType, properties, a.Region)
	if !result.Success {
		return
	}
	if a.envOps != nil {
		a.envOps.AddPetProjection(a.ID, result.Projection)
	}

	a.cog.ProcessExperience(cognition.ExperienceBoundaryChallenge, 0.6, a.Traits)
}

// chooseProjectionType weighs projection kinds by personality:
// extraverts signal socially, conscientious pets share knowledge,
// neurotic pets mark territory.
func (a *Agent) chooseProjectionType() string {
	options := []struct {
		kind   string
		weight float64
	}{
		{"social_signal", 0.4 + a.Traits["extraversion"]*0.6},
		{"knowledge_share", 0.3 + a.Traits["conscientiousness"]*0.7},
		{"territorial_marker", 0.3 + a.Traits["neuroticism"]*0.6},
	}
	total := 0.0
	for _, o := range options {
		total += o.weight
	}
	r := a.rng.Float64() * total
	cumulative := 0.0
	for _, o := range options {
		cumulative += o.weight
		if r <= cumulative {
			return o.kind
		}
	}
	return "social_signal"
}

func (a *Agent) projectionProperties(projType string) map[string]float64 {
	switch projType {
	case "territorial_marker":
		return map[string]float64{
			"strength": a.Vitals.Energy / 100.0 * 0.7,
			"duration": 5 + a.Vitals.Energy/20,
		}
	case "social_signal":
		return map[string]float64{
			"intensity": a.Vitals.Mood / 100.0 * 0.8,
			"duration":  3 + a.Vitals.Mood/25,
		}
	case "knowledge_share":
		quality := a.cog.Level(cognition.AreaLanguageProcessing)
		return map[string]float64{
			"quality":  quality,
			"duration": 4 + quality*10,
		}
	}
	return map[string]float64{}
}

// considerRegionChange moves toward the region best matching the most
// pressing unmet need, or wanders.
func (a *Agent) considerRegionChange(view *env.View) {
	available := make([]string, 0, len(view.Regions))
	for _, id := range []string{"central", "play", "quiet"} {
		if _, ok := view.Regions[id]; ok && id != a.Region {
			available = append(available, id)
		}
	}
	if len(available) == 0 {
		return
	}

	chosen := ""
	switch {
	case a.Needs.Hunger > 60 || a.Needs.Thirst > 60:
		chosen = pick(available, "central")
	case a.Needs.Rest > 70:
		chosen = pick(available, "quiet")
	case a.Needs.Play > 60:
		chosen = pick(available, "play")
	case a.Needs.Social > 60:
		for _, id := range available {
			if region := view.Regions[id]; region != nil && len(region.CurrentPets) > 0 {
				chosen = id
				break
			}
		}
	}
	if chosen == "" {
		chosen = available[a.rng.Intn(len(available))]
	}

	if a.envOps != nil {
		if result := a.envOps.UpdatePetLocation(a.ID, chosen); !result.Success {
			return
		}
	}
	previous := a.Region
	a.Region = chosen
	a.Episodic = append(a.Episodic, EpisodicRecord{
		Timestamp: a.simHours,
		Type:      "region_change",
		Content:   map[string]any{"from": previous, "to": chosen},
	})
	if len(a.Episodic) > episodicCap {
		a.Episodic = a.Episodic[len(a.Episodic)-episodicCap:]
	}
}

func pick(available []string, want string) string {
	for _, id := range available {
		if id == want {
			return id
		}
	}
	return ""
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
