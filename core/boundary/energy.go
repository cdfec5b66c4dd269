package boundary

import (
	"math"
	"math/rand"

	"github.com/gnarlynerd-lab/pets/core/env"
)

// Purpose names an energy allocation bucket, in priority order.
type Purpose string

const (
	PurposeBoundary     Purpose = "boundary_maintenance"
	PurposeCritical     Purpose = "critical_functions"
	PurposeGrowth       Purpose = "growth"
	PurposeSocial       Purpose = "social_activities"
	PurposeExploration  Purpose = "exploration"
	PurposeReproduction Purpose = "reproduction"
)

// allocationOrder fixes the priority in which buckets claim energy.
var allocationOrder = []Purpose{
	PurposeBoundary,
	PurposeCritical,
	PurposeGrowth,
	PurposeSocial,
	PurposeExploration,
	PurposeReproduction,
}

// MaxEnergy is the energy ceiling for every pet.
const MaxEnergy = 100.0

// StepResult reports one energy cycle.
type StepResult struct {
	EnergyLevel       float64             `json:"energy_level"`
	EnergyPercent     float64             `json:"energy_percent"`
	BoundaryStatus    Status              `json:"boundary_status"`
	Allocations       map[Purpose]float64 `json:"allocations"`
	Intake            float64             `json:"intake"`
	BoundaryConsumed  float64             `json:"boundary_consumed"`
	ProjectionReports []ProjectionStatus  `json:"projection_reports,omitempty"`
}

// ConsumeResult is the policy-level outcome of a direct energy spend.
type ConsumeResult struct {
	Success   bool    `json:"success"`
	Reason    string  `json:"reason,omitempty"`
	Remaining float64 `json:"remaining"`
}

// energyRecord is one entry of the bounded intake/allocation history.
type energyRecord struct {
	tick     uint64
	starting float64
	intake   float64
	boundary float64
	ending   float64
}

// EnergySystem owns a pet's energy pool, its boundary system, and its
// exchange system, and runs the per-tick intake and priority
// allocation cycle.
type EnergySystem struct {
	petID  string
	energy float64

	boundary *System
	exchange *ExchangeSystem

	history []energyRecord
	tick    uint64
}

// NewEnergySystem wires a boundary and exchange system for one pet.
func NewEnergySystem(petID string, initialEnergy float64, rng *rand.Rand) *EnergySystem {
	b := NewSystem(rng)
	return &EnergySystem{
		petID:    petID,
		energy:   math.Min(MaxEnergy, initialEnergy),
		boundary: b,
		exchange: NewExchangeSystem(petID, b, rng),
	}
}

// Boundary exposes the owned boundary system.
func (es *EnergySystem) Boundary() *System { return es.boundary }

// Exchange exposes the owned exchange system.
func (es *EnergySystem) Exchange() *ExchangeSystem { return es.exchange }

// Energy returns the current energy level.
func (es *EnergySystem) Energy() float64 { return es.energy }

// SetEnergy overwrites the energy level, clamped to [0, MaxEnergy].
func (es *EnergySystem) SetEnergy(v float64) {
	es.energy = math.Max(0, math.Min(MaxEnergy, v))
}

// Step runs one energy cycle: intake from the environment, priority
// allocation, boundary maintenance, and projection upkeep.
func (es *EnergySystem) Step(view *env.View) StepResult {
	es.tick++
	starting := es.energy

	intake := es.collectEnergy(view)
	es.energy = math.Min(MaxEnergy, es.energy+intake)

	allocations := es.allocate()

	boundaryResult := es.boundary.Update(view, es.petID, allocations[PurposeBoundary])
	es.energy = math.Max(0, es.energy-boundaryResult.Consumed)

	projections := es.exchange.MaintainProjections(view)
	es.exchange.IntegrateElements()

	es.history = append(es.history, energyRecord{
		tick:     es.tick,
		starting: starting,
		intake:   intake,
		boundary: boundaryResult.Consumed,
		ending:   es.energy,
	})
	if len(es.history) > 100 {
		es.history = es.history[len(es.history)-100:]
	}

	return StepResult{
		EnergyLevel:       es.energy,
		EnergyPercent:     es.energy / MaxEnergy * 100,
		BoundaryStatus:    boundaryResult.Status,
		Allocations:       allocations,
		Intake:            intake,
		BoundaryConsumed:  boundaryResult.Consumed,
		ProjectionReports: projections,
	}
}

// collectEnergy draws energy from visible food, ambient energy scaled
// by boundary size, and a small fixed amount per assimilated element.
func (es *EnergySystem) collectEnergy(view *env.View) float64 {
	collected := 0.0

	if food, ok := view.Resources["food"]; ok {
		collected += food * (0.5 + 0.5*es.boundary.Permeability())
	}
	collected += view.AmbientEnergy * es.boundary.Size() * 0.8
	collected += 0.5 * float64(es.boundary.ElementCount())

	return collected
}

// allocate splits the current energy pool across the fixed priority
// buckets. The boundary claims 20-50% depending on how open it is;
// the later buckets only engage above their energy thresholds.
func (es *EnergySystem) allocate() map[Purpose]float64 {
	allocations := make(map[Purpose]float64, len(allocationOrder))
	remaining := es.energy

	for _, purpose := range allocationOrder {
		var allocation float64
		switch purpose {
		case PurposeBoundary:
			percent := 0.2
			if es.boundary.Permeability() > 0.7 {
				percent = 0.5
			}
			allocation = remaining * percent
		case PurposeCritical:
			allocation = remaining * 0.2
		case PurposeGrowth:
			if es.energy > MaxEnergy*0.5 {
				allocation = remaining * 0.3
			}
		case PurposeSocial:
			if es.energy > MaxEnergy*0.3 {
				allocation = remaining * 0.2
			}
		case PurposeExploration:
			if es.energy > MaxEnergy*0.4 {
				allocation = remaining * 0.15
			}
		case PurposeReproduction:
			if es.energy > MaxEnergy*0.8 {
				allocation = remaining
			}
		}
		allocations[purpose] = allocation
		remaining -= allocation
	}
	return allocations
}

// AddEnergy credits energy from an external source.
func (es *EnergySystem) AddEnergy(amount float64, source string) float64 {
	es.energy = math.Min(MaxEnergy, es.energy+amount)
	return es.energy
}

// ConsumeEnergy debits energy for a named purpose, refusing when the
// pool cannot cover it.
func (es *EnergySystem) ConsumeEnergy(amount float64, purpose string) ConsumeResult {
	if amount > es.energy {
		return ConsumeResult{Success: false, Reason: "insufficient_energy", Remaining: es.energy}
	}
	es.energy -= amount
	return ConsumeResult{Success: true, Remaining: es.energy}
}

// AssimilatedEffects combines the effect maps of every assimilated
// element, weighted by integration level.
func (es *EnergySystem) AssimilatedEffects() map[string]float64 {
	effects := make(map[string]float64)
	for _, e := range es.boundary.Elements() {
		for name, value := range e.Effects {
			effects[name] += value * e.Integration
		}
	}
	return effects
}
