package env

import (
	"math"
	"sort"
)

// Feature is a static regional descriptor that pets can perceive and,
// when simple enough, assimilate.
type Feature struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Complexity  float64            `json:"complexity"`
	Effect      map[string]float64 `json:"effect,omitempty"`
}

// resourcePolicy fixes the cap and per-tick regeneration of a named
// regional resource.
type resourcePolicy struct {
	cap  float64
	rate float64
}

// Region is a named area of the environment with its own resources,
// features, occupant set, and projection storage.
type Region struct {
	ID        string
	Name      string
	Features  []Feature
	Resources map[string]float64

	policies     map[string]resourcePolicy
	energyFactor float64

	pets        map[string]bool
	projections map[string]*Projection
}

// DefaultRegions builds the standard central / quiet / play layout.
func DefaultRegions() map[string]*Region {
	return map[string]*Region{
		"central": {
			ID:   "central",
			Name: "Central Area",
			Features: []Feature{
				{Type: "social_hub", Description: "A gathering place", Complexity: 0.4},
				{Type: "resource_node", Description: "A food cache", Complexity: 0.3, Effect: map[string]float64{"energy": 2}},
			},
			Resources:    map[string]float64{"food": 50, "water": 50},
			policies:     map[string]resourcePolicy{"food": {50, 0.3}, "water": {50, 0.5}},
			energyFactor: 1.2,
			pets:         make(map[string]bool),
			projections:  make(map[string]*Projection),
		},
		"quiet": {
			ID:   "quiet",
			Name: "Quiet Corner",
			Features: []Feature{
				{Type: "rest_spot", Description: "A peaceful resting area", Complexity: 0.2},
				{Type: "knowledge_source", Description: "A place of learning", Complexity: 0.7, Effect: map[string]float64{"intelligence": 0.1}},
			},
			Resources:    map[string]float64{"knowledge": 30},
			policies:     map[string]resourcePolicy{"knowledge": {30, 0.2}},
			energyFactor: 0.8,
			pets:         make(map[string]bool),
			projections:  make(map[string]*Projection),
		},
		"play": {
			ID:   "play",
			Name: "Play Zone",
			Features: []Feature{
				{Type: "playground", Description: "An exciting play area", Complexity: 0.5},
				{Type: "toy_collection", Description: "A pile of toys", Complexity: 0.3, Effect: map[string]float64{"mood": 1}},
			},
			Resources:    map[string]float64{"toys": 30, "food": 10},
			policies:     map[string]resourcePolicy{"toys": {30, 0.1}, "food": {10, 0.1}},
			energyFactor: 1.5,
			pets:         make(map[string]bool),
			projections:  make(map[string]*Projection),
		},
	}
}

func (r *Region) regenerate(globalAmbient float64) {
	for _, name := range sortedResourceNames(r.Resources) {
		if p, ok := r.policies[name]; ok {
			r.Resources[name] = math.Min(p.cap, r.Resources[name]+p.rate)
		}
	}
	r.Resources["ambient_energy"] = globalAmbient * r.energyFactor
}

// PetIDs returns the occupants of the region in stable order.
func (r *Region) PetIDs() []string {
	ids := make([]string, 0, len(r.pets))
	for id := range r.pets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// UpdatePetLocation moves a pet into the named region, removing it
// from any other region first.
func (e *Environment) UpdatePetLocation(petID, regionID string) *OpResult {
	target, ok := e.Regions[regionID]
	if !ok {
		return &OpResult{Success: false, Reason: "region_not_found"}
	}
	for _, r := range e.Regions {
		delete(r.pets, petID)
	}
	target.pets[petID] = true
	return &OpResult{Success: true}
}

// RemovePet drops a pet from every region and discards its projections.
func (e *Environment) RemovePet(petID string) {
	for _, r := range e.Regions {
		delete(r.pets, petID)
	}
	for projID := range e.projections[petID] {
		e.RemovePetProjection(petID, projID)
	}
	delete(e.projections, petID)
}

// PetRegion returns the id of the region currently holding the pet,
// or the empty string when the pet is nowhere.
func (e *Environment) PetRegion(petID string) string {
	for _, id := range sortedRegionIDs(e.Regions) {
		if e.Regions[id].pets[petID] {
			return id
		}
	}
	return ""
}

// ConsumeResources withdraws up to the requested amounts from a
// region. Consumption is partial: each resource is consumed up to its
// availability and the consumed amounts are reported back.
func (e *Environment) ConsumeResources(regionID string, want map[string]float64) *ConsumeResult {
	region, ok := e.Regions[regionID]
	if !ok {
		return &ConsumeResult{OpResult: OpResult{Success: false, Reason: "region_not_found"}}
	}
	consumed := make(map[string]float64, len(want))
	for _, name := range sortedResourceNames(want) {
		amount := want[name]
		have := region.Resources[name]
		take := math.Min(have, amount)
		if take > 0 {
			region.Resources[name] = have - take
		}
		consumed[name] = take
	}
	return &ConsumeResult{OpResult: OpResult{Success: true}, Consumed: consumed}
}

// OpResult is the outcome of a policy-level environment operation.
// Failures here are recoverable and reported, never errors.
type OpResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// ConsumeResult reports how much of each requested resource was
// actually withdrawn.
type ConsumeResult struct {
	OpResult
	Consumed map[string]float64 `json:"consumed,omitempty"`
}

func sortedResourceNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
