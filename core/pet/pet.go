// Package pet implements the pet agent: the composition of the
// boundary/energy economy, cognitive development, and the
// active-inference core, together with traits, needs, vitals,
// memories and relationships, driven by a per-tick step pipeline.
package pet

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/gnarlynerd-lab/pets/core/boundary"
	"github.com/gnarlynerd-lab/pets/core/bus"
	"github.com/gnarlynerd-lab/pets/core/cognition"
	"github.com/gnarlynerd-lab/pets/core/env"
	"github.com/gnarlynerd-lab/pets/core/fep"
)

// EnvOps is the narrow mutation interface of the environment that an
// agent may touch during its step.
type EnvOps interface {
	AddPetProjection(petID string, p *env.Projection) *env.OpResult
	RemovePetProjection(petID, projectionID string) *env.OpResult
	SetProjectionStability(petID, projectionID string, stability float64)
	UpdatePetLocation(petID, regionID string) *env.OpResult
	ConsumeResources(regionID string, want map[string]float64) *env.ConsumeResult
}

// DevelopmentStage is a pet's life stage, derived from its age.
type DevelopmentStage string

const (
	StageInfant     DevelopmentStage = "infant"
	StageChild      DevelopmentStage = "child"
	StageAdolescent DevelopmentStage = "adolescent"
	StageAdult      DevelopmentStage = "adult"
	StageElder      DevelopmentStage = "elder"
)

// Vitals are the pet's health, energy and mood, each in [0,100].
type Vitals struct {
	Health float64 `json:"health"`
	Energy float64 `json:"energy"`
	Mood   float64 `json:"mood"`
}

// daysPerTick converts ticks to age: one tick is 6 simulated minutes.
const daysPerTick = 1.0 / 240.0

// attention thresholds for neglect and overstimulation.
const (
	attentionLowThreshold  = 20.0
	attentionHighThreshold = 80.0
)

// Agent is one digital pet.
type Agent struct {
	ID        string
	OwnerID   string
	SessionID string
	Name      string

	CreatedAtHours         float64
	LastInteractionAtHours float64

	Traits           map[string]float64
	TraitConnections map[string]float64

	Vitals Vitals
	Needs  Needs

	Age   float64
	Stage DevelopmentStage

	Episodic     []EpisodicRecord
	Semantic     map[string]SemanticEntry
	Counterparts map[string]*CounterpartMemory

	HumanRelationships map[string]float64
	PetRelationships   map[string]float64

	behaviorPatterns map[string]float64
	activeBehaviors  []Behavior
	lastResponse     string

	energy *boundary.EnergySystem
	cog    *cognition.System
	mind   *fep.Core

	Region string

	envOps   EnvOps
	rng      *rand.Rand
	logger   *slog.Logger
	tick     uint64
	simHours float64
}

// Options configures agent construction.
type Options struct {
	ID            string
	OwnerID       string
	SessionID     string
	Name          string
	InitialTraits map[string]float64
	EmojiTable    *fep.EmojiTable
	Advisor       fep.Advisor
	Logger        *slog.Logger
}

// New builds a pet agent with sampled traits and all subsystems
// wired. Exactly one of OwnerID / SessionID should be set.
func New(opts Options, rng *rand.Rand) *Agent {
	id := opts.ID
	if id == "" {
		// Drawn from the simulation PRNG, not process entropy, so a
		// seeded run creates the same pets every time.
		id = uuid.Must(uuid.NewRandomFromReader(rng)).String()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &Agent{
		ID:                 id,
		OwnerID:            opts.OwnerID,
		SessionID:          opts.SessionID,
		Name:               opts.Name,
		TraitConnections:   defaultTraitConnections(rng),
		Vitals:             Vitals{Health: 100, Energy: 100, Mood: 50},
		Needs:              Needs{},
		Stage:              StageInfant,
		Semantic:           make(map[string]SemanticEntry),
		Counterparts:       make(map[string]*CounterpartMemory),
		HumanRelationships: make(map[string]float64),
		PetRelationships:   make(map[string]float64),
		behaviorPatterns:   make(map[string]float64),
		energy:             boundary.NewEnergySystem(id, 100, rng),
		cog:                cognition.NewSystem(),
		mind:               fep.NewCore(fep.DefaultStateSize, opts.EmojiTable, rng, logger),
		Region:             "central",
		rng:                rng,
		logger:             logger,
	}
	if opts.InitialTraits != nil {
		a.Traits = copyTraits(opts.InitialTraits)
	} else {
		a.Traits = sampleTraits(rng)
	}
	if opts.Advisor != nil {
		a.mind.SetAdvisor(opts.Advisor)
	}
	return a
}

// AttachEnvironment gives the agent its environment mutation handle.
// The simulation model calls this when adding the agent to the arena.
func (a *Agent) AttachEnvironment(ops EnvOps) { a.envOps = ops }

// Energy exposes the owned energy system.
func (a *Agent) Energy() *boundary.EnergySystem { return a.energy }

// Cognition exposes the owned cognitive development system.
func (a *Agent) Cognition() *cognition.System { return a.cog }

// Mind exposes the owned active-inference core.
func (a *Agent) Mind() *fep.Core { return a.mind }

// MigrateToOwner is the single permitted ownership transition: an
// anonymous session pet becomes owned and the session id is cleared.
func (a *Agent) MigrateToOwner(ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("pet %s: empty owner id", a.ID)
	}
	if a.OwnerID != "" && a.OwnerID != ownerID {
		return fmt.Errorf("pet %s: already owned by %s", a.ID, a.OwnerID)
	}
	a.OwnerID = ownerID
	a.SessionID = ""
	return nil
}

// Step runs the per-tick pipeline for this agent and produces its
// tick report. An error return signals an invariant violation; policy
// failures are absorbed into the report.
func (a *Agent) Step(view *env.View, inbox []bus.Message) (*TickReport, error) {
	a.tick++
	a.simHours += env.TickHours

	// 1. Age and stage.
	a.Age += daysPerTick
	a.Stage = stageForAge(a.Age)

	// 2. Inbox drain, FIFO.
	for _, msg := range inbox {
		a.handleMessage(msg)
	}

	// 3. The view was sensed by the caller at our current
	// permeability; nothing to do here beyond trusting it.

	// 4. Energy tick.
	energyResult := a.energy.Step(view)
	a.Vitals.Energy = energyResult.EnergyLevel
	if a.envOps != nil {
		for _, ps := range energyResult.ProjectionReports {
			if ps.Status == "maintained" {
				a.envOps.SetProjectionStability(a.ID, ps.ProjectionID, ps.Stability)
			} else {
				a.envOps.RemovePetProjection(a.ID, ps.ProjectionID)
			}
		}
	}

	// 5. Need drift.
	a.Needs.drift(view)

	// 6. FEP observation of the sensed world.
	a.mind.Tick(a.simHours)
	if view.Tier == env.TierFull {
		a.mind.AdaptToEnvironment(view.NoveltyLevel)
	}
	observed := a.mind.Observe(a.encodeObservation(view))
	if observed.Surprise > 2.0 {
		a.energy.Boundary().AdjustPermeability(-0.02*observed.Surprise, 0.2, boundary.MaxPermeability)
	}

	// 7. Vitals update.
	a.updateVitals(energyResult.BoundaryStatus)

	// 8. Environmental interaction.
	a.interactWithEnvironment(view)

	// 9. Behaviour generation and execution.
	a.activeBehaviors = a.generateBehaviors(view)
	a.performBehaviors(view, a.activeBehaviors)

	// 10. Cognitive update from the dominant behaviour plus ambient
	// observation.
	a.updateCognition()

	// 11. Trait evolution, every 10th tick.
	if a.tick%10 == 0 {
		a.evolveTraits()
	}

	// 12. Memory consolidation.
	a.consolidateMemory()

	if err := a.checkInvariants(); err != nil {
		return nil, err
	}

	return a.buildReport(observed.Surprise, energyResult.BoundaryStatus), nil
}

func stageForAge(age float64) DevelopmentStage {
	switch {
	case age < 1:
		return StageInfant
	case age < 5:
		return StageChild
	case age < 10:
		return StageAdolescent
	case age < 25:
		return StageAdult
	default:
		return StageElder
	}
}

// encodeObservation folds weather, time bucket, dominant need, energy
// bucket and mood bucket into an observation index, presented to the
// cognitive core as a one-hot vector.
func (a *Agent) encodeObservation(view *env.View) []float64 {
	weatherIdx := map[env.Weather]int{
		env.WeatherClear:  0,
		env.WeatherCloudy: 1,
		env.WeatherRainy:  2,
		env.WeatherStormy: 3,
		env.WeatherFoggy:  4,
		env.WeatherWindy:  5,
	}[view.CurrentWeather]

	hour := view.TimeOfDay
	timeBucket := 0
	switch {
	case hour >= 12 && hour < 18:
		timeBucket = 1
	case hour >= 18 && hour < 22:
		timeBucket = 2
	case hour >= 22 || hour < 6:
		timeBucket = 3
	}

	needIdx := a.Needs.dominantIndex()
	energyBucket := int(math.Min(a.Vitals.Energy/20, 4))
	moodBucket := int(math.Min(a.Vitals.Mood/20, 4))

	features := []int{weatherIdx, timeBucket, needIdx, energyBucket, moodBucket}
	index := 0
	for i, f := range features {
		index += f * pow(5, i)
	}
	obs := make([]float64, a.mind.StateSize())
	obs[index%len(obs)] = 1.0
	return obs
}

func pow(base, exp int) int {
	out := 1
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}

func (a *Agent) updateVitals(status boundary.Status) {
	avgNeed := a.Needs.average()

	moodChange := 1.0 - 0.02*avgNeed
	healthChange := 0.5 - 0.01*avgNeed
	if status == boundary.StatusFailing {
		moodChange -= 1.0
		healthChange -= 1.0
	}
	a.Vitals.Mood = clamp(a.Vitals.Mood+moodChange, 0, 100)
	a.Vitals.Health = clamp(a.Vitals.Health+healthChange, 0, 100)

	effects := a.energy.AssimilatedEffects()
	if v, ok := effects["energy"]; ok {
		a.Vitals.Energy = clamp(a.Vitals.Energy+v, 0, 100)
		a.energy.SetEnergy(a.Vitals.Energy)
	}
	if v, ok := effects["health"]; ok {
		a.Vitals.Health = clamp(a.Vitals.Health+v, 0, 100)
	}
	if v, ok := effects["mood"]; ok {
		a.Vitals.Mood = clamp(a.Vitals.Mood+v, 0, 100)
	}
}

func (a *Agent) updateCognition() {
	if len(a.activeBehaviors) > 0 {
		dominant := a.activeBehaviors[0]
		if exp, ok := behaviorExperience[dominant.Type]; ok {
			a.cog.ProcessExperience(exp, 0.6+dominant.Intensity*0.4, a.Traits)
		}
	}
	// Ambient observation scales with how open the boundary is.
	a.cog.ProcessExperience(
		cognition.ExperienceObservation,
		0.3+a.energy.Boundary().Permeability()*0.5,
		a.Traits,
	)
}

func (a *Agent) checkInvariants() error {
	check := func(name string, v, lo, hi float64) error {
		if v < lo || v > hi || math.IsNaN(v) {
			return fmt.Errorf("pet %s: invariant violation: %s=%v outside [%v,%v]", a.ID, name, v, lo, hi)
		}
		return nil
	}
	if err := check("health", a.Vitals.Health, 0, 100); err != nil {
		return err
	}
	if err := check("energy", a.Vitals.Energy, 0, 100); err != nil {
		return err
	}
	if err := check("mood", a.Vitals.Mood, 0, 100); err != nil {
		return err
	}
	for _, nv := range a.Needs.values() {
		if err := check("need:"+nv.name, nv.value, 0, 100); err != nil {
			return err
		}
	}
	b := a.energy.Boundary()
	if err := check("permeability", b.Permeability(), boundary.MinPermeability, boundary.MaxPermeability); err != nil {
		return err
	}
	if err := check("size", b.Size(), boundary.MinSize, boundary.MaxSize); err != nil {
		return err
	}
	for _, e := range b.Elements() {
		if err := check("integration:"+e.ID, e.Integration, 0, 1); err != nil {
			return err
		}
	}
	for name, v := range a.Traits {
		if err := check("trait:"+name, v, 0, 1); err != nil {
			return err
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
