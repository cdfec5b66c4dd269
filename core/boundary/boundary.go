// Package boundary implements the fluid boundary between a pet and
// its environment: the permeability/size state machine, element
// assimilation across the boundary, and the energy economy that pays
// for all of it.
package boundary

import (
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/gnarlynerd-lab/pets/core/env"
)

// Status is the per-tick outcome of boundary maintenance.
type Status string

const (
	StatusMaintained Status = "maintained"
	StatusFailing    Status = "failing"
)

// Permeability and size bounds. The boundary never closes completely
// and never fully dissolves.
const (
	MinPermeability = 0.1
	MaxPermeability = 1.0
	MinSize         = 0.2
	MaxSize         = 2.0
)

// ElementType classifies what kind of environmental element crossed
// the boundary.
type ElementType string

const (
	ElementFeature    ElementType = "feature"
	ElementResource   ElementType = "resource"
	ElementProjection ElementType = "pet_projection"
)

// Element is an environmental element assimilated into the pet, with
// a time-varying integration level in [0,1].
type Element struct {
	ID            string             `json:"id"`
	Type          ElementType        `json:"type"`
	Properties    map[string]float64 `json:"properties,omitempty"`
	Effects       map[string]float64 `json:"effects,omitempty"`
	Integration   float64            `json:"integration"`
	AssimilatedAt uint64             `json:"assimilated_at"`
}

// UpdateResult reports one tick of boundary maintenance.
type UpdateResult struct {
	Consumed     float64 `json:"energy_consumed"`
	Status       Status  `json:"status"`
	Permeability float64 `json:"permeability"`
	Size         float64 `json:"size"`
}

// AssimilationResult is the policy-level outcome of an assimilation
// attempt. A refusal is not an error.
type AssimilationResult struct {
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
	ElementID string `json:"element_id,omitempty"`
}

// Snapshot is an externally visible copy of the boundary scalars and
// the assimilated element descriptors.
type Snapshot struct {
	Permeability    float64    `json:"permeability"`
	Size            float64    `json:"size"`
	MaintenanceCost float64    `json:"maintenance_cost"`
	Stability       float64    `json:"stability"`
	Elements        []*Element `json:"elements,omitempty"`
}

// System maintains the boundary scalars and the set of assimilated
// elements for one pet.
type System struct {
	permeability    float64
	size            float64
	maintenanceCost float64
	elements        map[string]*Element

	tick uint64
	rng  *rand.Rand
}

// NewSystem builds a boundary in its resting state.
func NewSystem(rng *rand.Rand) *System {
	return &System{
		permeability:    0.5,
		size:            1.0,
		maintenanceCost: 0.1,
		elements:        make(map[string]*Element),
		rng:             rng,
	}
}

// Update runs one tick of boundary maintenance against the given
// environment view and energy allocation. When the allocation cannot
// cover the maintenance cost the boundary fails open: permeability
// rises and size shrinks.
func (s *System) Update(view *env.View, petID string, available float64) UpdateResult {
	s.tick++
	cost := s.maintenanceCost * s.size * (1 + environmentalPressure(view, petID))

	status := StatusMaintained
	if available < cost {
		s.permeability = math.Min(MaxPermeability, s.permeability+0.1)
		s.size = math.Max(MinSize, s.size-0.05)
		status = StatusFailing
	} else {
		s.permeability = math.Max(MinPermeability, s.permeability-0.01)
	}

	return UpdateResult{
		Consumed:     math.Min(cost, available),
		Status:       status,
		Permeability: s.permeability,
		Size:         s.size,
	}
}

// environmentalPressure is a deterministic function of the visible
// environment: weather, emotional extremes, crowding, social charge
// and novelty all push against the boundary.
func environmentalPressure(view *env.View, petID string) float64 {
	pressure := 0.0

	switch view.CurrentWeather {
	case env.WeatherStormy:
		pressure += 0.3
	case env.WeatherRainy, env.WeatherWindy:
		pressure += 0.1
	}

	if view.Tier == env.TierFull {
		pressure += math.Abs(view.EmotionalTone-0.5) * 0.4
		pressure += 0.15 * view.NoveltyLevel
	}
	if view.Tier >= env.TierMedium {
		pressure += 0.2 * view.SocialAtmosphere
	}
	pressure += 0.05 * float64(view.CompetingPetCount(petID))

	return pressure
}

// AttemptAssimilation tries to pull an element across the boundary.
// It fails outright below permeability 0.2, and otherwise succeeds
// with probability permeability * (1 - difficulty).
func (s *System) AttemptAssimilation(elemType ElementType, properties, effects map[string]float64, difficulty float64) AssimilationResult {
	if s.permeability < 0.2 {
		return AssimilationResult{Success: false, Reason: "boundary_too_rigid"}
	}
	if s.rng.Float64() >= s.permeability*(1-difficulty) {
		return AssimilationResult{Success: false, Reason: "assimilation_failed"}
	}

	// Ids are drawn from the simulation PRNG so replays are stable.
	id := uuid.Must(uuid.NewRandomFromReader(s.rng)).String()
	s.elements[id] = &Element{
		ID:            id,
		Type:          elemType,
		Properties:    properties,
		Effects:       effects,
		Integration:   0.1,
		AssimilatedAt: s.tick,
	}
	s.size = math.Min(MaxSize, s.size+0.1)

	return AssimilationResult{Success: true, ElementID: id}
}

// ReleaseElement returns a previously assimilated element to the
// environment, shrinking the boundary slightly.
func (s *System) ReleaseElement(elementID string) AssimilationResult {
	if _, ok := s.elements[elementID]; !ok {
		return AssimilationResult{Success: false, Reason: "element_not_found"}
	}
	delete(s.elements, elementID)
	s.size = math.Max(0.5, s.size-0.05)
	return AssimilationResult{Success: true, ElementID: elementID}
}

// Permeability returns the current boundary permeability.
func (s *System) Permeability() float64 { return s.permeability }

// Size returns the current boundary size.
func (s *System) Size() float64 { return s.size }

// AdjustPermeability shifts permeability by delta, clamped to the
// given floor and the global bounds. Behaviours such as seeking
// shelter or boundary stretching use this directly.
func (s *System) AdjustPermeability(delta, floor, ceil float64) {
	p := s.permeability + delta
	p = math.Max(math.Max(floor, MinPermeability), p)
	p = math.Min(math.Min(ceil, MaxPermeability), p)
	s.permeability = p
}

// AdjustSize shifts the boundary size by delta within [floor, ceil]
// intersected with the global bounds.
func (s *System) AdjustSize(delta, floor, ceil float64) {
	sz := s.size + delta
	sz = math.Max(math.Max(floor, MinSize), sz)
	sz = math.Min(math.Min(ceil, MaxSize), sz)
	s.size = sz
}

// ScaleMaintenanceCost multiplies the base maintenance cost; deep
// sleep uses this to cheapen upkeep.
func (s *System) ScaleMaintenanceCost(factor float64) {
	s.maintenanceCost *= factor
}

// ElementCount reports how many elements are currently assimilated.
func (s *System) ElementCount() int { return len(s.elements) }

// Elements returns the assimilated elements in stable id order.
func (s *System) Elements() []*Element {
	ids := make([]string, 0, len(s.elements))
	for id := range s.elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Element, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.elements[id])
	}
	return out
}

// Status returns a copy of the boundary state.
func (s *System) Status() Snapshot {
	return Snapshot{
		Permeability:    s.permeability,
		Size:            s.size,
		MaintenanceCost: s.maintenanceCost,
		Stability:       1.0 - s.permeability,
		Elements:        s.Elements(),
	}
}

// Restore overwrites the boundary scalars and element set from a
// snapshot; used by snapshot import.
func (s *System) Restore(snap Snapshot) {
	s.permeability = clamp(snap.Permeability, MinPermeability, MaxPermeability)
	s.size = clamp(snap.Size, MinSize, MaxSize)
	if snap.MaintenanceCost > 0 {
		s.maintenanceCost = snap.MaintenanceCost
	}
	s.elements = make(map[string]*Element, len(snap.Elements))
	for _, e := range snap.Elements {
		copied := *e
		s.elements[e.ID] = &copied
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
