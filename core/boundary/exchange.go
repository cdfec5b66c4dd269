package boundary

import (
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/gnarlynerd-lab/pets/core/env"
)

// Default assimilation difficulty per element type.
const (
	FeatureDifficulty    = 0.6
	ResourceDifficulty   = 0.3
	ProjectionDifficulty = 0.7
)

// Candidate describes an environmental element that could be pulled
// across the boundary.
type Candidate struct {
	Type       ElementType
	ID         string
	Location   string
	Difficulty float64

	// Resource fields.
	Name   string
	Amount float64

	// Feature fields.
	Effect map[string]float64

	// Projection fields.
	SourcePet  string
	Properties map[string]float64
}

// ProjectionStatus reports one maintained projection after a tick.
type ProjectionStatus struct {
	ProjectionID string  `json:"projection_id"`
	Status       string  `json:"status"` // maintained | dissipated | failed
	Stability    float64 `json:"stability"`
	Reason       string  `json:"reason,omitempty"`
}

// IntegrationEvent records one element advancing its integration.
type IntegrationEvent struct {
	ElementID   string  `json:"element_id"`
	Integration float64 `json:"integration"`
}

// ProjectionResult is the outcome of projecting into the environment.
type ProjectionResult struct {
	Success      bool            `json:"success"`
	Reason       string          `json:"reason,omitempty"`
	ProjectionID string          `json:"projection_id,omitempty"`
	Projection   *env.Projection `json:"projection,omitempty"`
}

// ExchangeSystem moves discrete elements across a pet's boundary in
// both directions: assimilation inward, projections outward.
type ExchangeSystem struct {
	petID    string
	boundary *System

	projections map[string]*projectionRecord
	rng         *rand.Rand
}

type projectionRecord struct {
	id        string
	projType  string
	regionID  string
	stability float64
}

// NewExchangeSystem builds the exchange layer on top of a boundary.
func NewExchangeSystem(petID string, boundary *System, rng *rand.Rand) *ExchangeSystem {
	return &ExchangeSystem{
		petID:       petID,
		boundary:    boundary,
		projections: make(map[string]*projectionRecord),
		rng:         rng,
	}
}

// ScanEnvironment lists the assimilable elements visible in the view.
// Features below complexity 0.8 qualify; resources always do; other
// pets' projections only when compatible enough.
func (x *ExchangeSystem) ScanEnvironment(view *env.View, compatibility func(*env.Projection) float64) []Candidate {
	var out []Candidate

	regionIDs := make([]string, 0, len(view.Regions))
	for id := range view.Regions {
		regionIDs = append(regionIDs, id)
	}
	sort.Strings(regionIDs)

	for _, regionID := range regionIDs {
		region := view.Regions[regionID]
		for _, f := range region.Features {
			if f.Complexity < 0.8 {
				out = append(out, Candidate{
					Type:       ElementFeature,
					ID:         f.Type,
					Location:   regionID,
					Difficulty: FeatureDifficulty,
					Effect:     f.Effect,
				})
			}
		}
		for _, name := range sortedNames(region.Resources) {
			amount := region.Resources[name]
			if amount > 0 && name != "ambient_energy" {
				out = append(out, Candidate{
					Type:       ElementResource,
					ID:         name,
					Location:   regionID,
					Difficulty: ResourceDifficulty,
					Name:       name,
					Amount:     amount,
				})
			}
		}
		for _, p := range region.Projections {
			if p.SourcePet == x.petID {
				continue
			}
			if compatibility != nil && compatibility(p) > 0.3 {
				out = append(out, Candidate{
					Type:       ElementProjection,
					ID:         p.ID,
					Location:   regionID,
					Difficulty: ProjectionDifficulty,
					SourcePet:  p.SourcePet,
					Properties: p.Properties,
				})
			}
		}
	}
	return out
}

// AssimilateElement attempts to assimilate one candidate, computing
// its effect map on success.
func (x *ExchangeSystem) AssimilateElement(c Candidate) AssimilationResult {
	effects := elementEffects(c)
	return x.boundary.AttemptAssimilation(c.Type, c.Properties, effects, c.Difficulty)
}

func elementEffects(c Candidate) map[string]float64 {
	switch c.Type {
	case ElementFeature:
		out := make(map[string]float64, len(c.Effect))
		for k, v := range c.Effect {
			out[k] = v
		}
		return out
	case ElementResource:
		switch c.Name {
		case "food":
			return map[string]float64{"energy": c.Amount * 2}
		case "knowledge":
			return map[string]float64{"intelligence": c.Amount * 0.1}
		case "social":
			return map[string]float64{"charisma": c.Amount * 0.1}
		}
		return map[string]float64{}
	case ElementProjection:
		out := map[string]float64{"social_connection": 0.2}
		for k, v := range c.Properties {
			out["trait_"+k] = v * 0.1
		}
		return out
	}
	return map[string]float64{}
}

// ProjectToEnvironment creates an outward projection. Projecting
// requires a somewhat permeable boundary.
func (x *ExchangeSystem) ProjectToEnvironment(projType string, properties map[string]float64, regionID string) ProjectionResult {
	if x.boundary.Permeability() < 0.3 {
		return ProjectionResult{Success: false, Reason: "boundary_too_rigid"}
	}

	id := uuid.Must(uuid.NewRandomFromReader(x.rng)).String()
	x.projections[id] = &projectionRecord{
		id:        id,
		projType:  projType,
		regionID:  regionID,
		stability: 0.5,
	}

	return ProjectionResult{
		Success:      true,
		ProjectionID: id,
		Projection: &env.Projection{
			ID:         id,
			Type:       projType,
			SourcePet:  x.petID,
			RegionID:   regionID,
			Stability:  0.5,
			Properties: properties,
		},
	}
}

// MaintainProjections advances the stability of every outstanding
// projection for one tick and drops the dissipated ones. The caller
// mirrors removals into the environment.
func (x *ExchangeSystem) MaintainProjections(view *env.View) []ProjectionStatus {
	ids := make([]string, 0, len(x.projections))
	for id := range x.projections {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []ProjectionStatus
	for _, id := range ids {
		rec := x.projections[id]
		region, ok := view.Regions[rec.regionID]
		if !ok {
			delete(x.projections, id)
			out = append(out, ProjectionStatus{ProjectionID: id, Status: "failed", Reason: "region_not_found"})
			continue
		}

		change := -0.05
		for _, f := range region.Features {
			if f.Type == rec.projType {
				change += 0.02
			}
		}
		creatorPresent := false
		others := 0
		for _, pid := range region.CurrentPets {
			if pid == x.petID {
				creatorPresent = true
			} else {
				others++
			}
		}
		if creatorPresent {
			change += 0.05
		}
		change -= 0.01 * float64(others)

		rec.stability = math.Max(0, math.Min(1, rec.stability+change))
		// Repeated -0.05 steps leave a float residue just above zero;
		// treat anything that small as fully decayed.
		if rec.stability <= 1e-9 {
			delete(x.projections, id)
			out = append(out, ProjectionStatus{ProjectionID: id, Status: "dissipated", Reason: "zero_stability"})
			continue
		}
		out = append(out, ProjectionStatus{ProjectionID: id, Status: "maintained", Stability: rec.stability})
	}
	return out
}

// IntegrateElements advances integration of assimilated elements.
// Each element progresses by 0.1 with probability 0.1*(1-level);
// effect magnitudes scale with the new level.
func (x *ExchangeSystem) IntegrateElements() []IntegrationEvent {
	var out []IntegrationEvent
	for _, e := range x.boundary.Elements() {
		if e.Integration >= 1.0 {
			continue
		}
		if x.rng.Float64() < 0.1*(1-e.Integration) {
			e.Integration = math.Min(1.0, e.Integration+0.1)
			out = append(out, IntegrationEvent{ElementID: e.ID, Integration: e.Integration})
		}
	}
	return out
}

// ProjectionIDs lists the live projection ids in stable order.
func (x *ExchangeSystem) ProjectionIDs() []string {
	ids := make([]string, 0, len(x.projections))
	for id := range x.projections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ProjectionCount reports the number of live projections.
func (x *ExchangeSystem) ProjectionCount() int { return len(x.projections) }

func sortedNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
