// Package sim drives the simulation: it owns the agent arena, the
// environment, the single PRNG, and the tick scheduler.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/gnarlynerd-lab/pets/core/bus"
	"github.com/gnarlynerd-lab/pets/core/env"
	"github.com/gnarlynerd-lab/pets/core/fep"
	"github.com/gnarlynerd-lab/pets/core/pet"
)

// EnvironmentReport is the per-tick environment observation record.
type EnvironmentReport struct {
	Tick             uint64      `json:"tick"`
	TimeOfDay        float64     `json:"time_of_day"`
	Weather          env.Weather `json:"weather"`
	AmbientEnergy    float64     `json:"ambient_energy"`
	NoveltyLevel     float64     `json:"novelty_level"`
	ActiveEventCount int         `json:"active_events_count"`
}

// TickResult is everything observable about one simulation tick.
type TickResult struct {
	Tick        uint64            `json:"tick"`
	Aborted     bool              `json:"aborted,omitempty"`
	Environment EnvironmentReport `json:"environment"`
	Agents      []*pet.TickReport `json:"agents"`
	Quarantined []string          `json:"quarantined,omitempty"`
}

// Collector observes tick results between ticks.
type Collector interface {
	OnTick(result *TickResult)
}

// Options configures model construction.
type Options struct {
	Seed       int64
	EmojiTable *fep.EmojiTable
	Advisor    fep.Advisor
	Bus        *bus.InMemoryBus
	Logger     *slog.Logger
}

// Model owns the agent roster, the environment, the PRNG and the tick
// counter, and schedules the per-tick work.
type Model struct {
	rng         *rand.Rand
	environment *env.Environment
	agents      map[string]*pet.Agent
	msgBus      *bus.InMemoryBus
	emojiTable  *fep.EmojiTable
	advisor     fep.Advisor
	collectors  []Collector

	tick   uint64
	logger *slog.Logger
}

// NewModel builds a model with a deterministic PRNG seeded once at
// construction. All randomness in the core flows from this generator.
func NewModel(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	msgBus := opts.Bus
	if msgBus == nil {
		msgBus = bus.NewInMemoryBus(logger)
	}
	table := opts.EmojiTable
	if table == nil {
		table = fep.DefaultEmojiTable()
	}
	return &Model{
		rng:         rng,
		environment: env.New(rng, logger),
		agents:      make(map[string]*pet.Agent),
		msgBus:      msgBus,
		emojiTable:  table,
		advisor:     opts.Advisor,
		logger:      logger,
	}
}

// Environment exposes the owned environment.
func (m *Model) Environment() *env.Environment { return m.environment }

// Bus exposes the message bus used for interaction delivery.
func (m *Model) Bus() *bus.InMemoryBus { return m.msgBus }

// Tick returns the completed tick count.
func (m *Model) Tick() uint64 { return m.tick }

// AddCollector registers a between-tick observer.
func (m *Model) AddCollector(c Collector) {
	m.collectors = append(m.collectors, c)
}

// AddAgent places an externally constructed agent into the arena.
func (m *Model) AddAgent(a *pet.Agent) {
	m.agents[a.ID] = a
	a.AttachEnvironment(m.environment)
	m.msgBus.Register(a.ID)
	m.environment.UpdatePetLocation(a.ID, a.Region)
	m.logger.Info("added pet to simulation", "id", a.ID, "name", a.Name)
}

// CreatePet builds a pet with sampled traits and adds it.
func (m *Model) CreatePet(name string) *pet.Agent {
	a := pet.New(pet.Options{
		Name:       name,
		EmojiTable: m.emojiTable,
		Advisor:    m.advisor,
		Logger:     m.logger,
	}, m.rng)
	m.AddAgent(a)
	return a
}

// CreatePetForUser builds a pet owned by an authenticated user.
func (m *Model) CreatePetForUser(ownerID, name string) *pet.Agent {
	a := pet.New(pet.Options{
		OwnerID:    ownerID,
		Name:       name,
		EmojiTable: m.emojiTable,
		Advisor:    m.advisor,
		Logger:     m.logger,
	}, m.rng)
	m.AddAgent(a)
	return a
}

// CreatePetForSession builds a pet bound to an anonymous session.
func (m *Model) CreatePetForSession(sessionID, name string) *pet.Agent {
	a := pet.New(pet.Options{
		SessionID:  sessionID,
		Name:       name,
		EmojiTable: m.emojiTable,
		Advisor:    m.advisor,
		Logger:     m.logger,
	}, m.rng)
	m.AddAgent(a)
	return a
}

// MigratePet transfers a session pet to an authenticated owner.
func (m *Model) MigratePet(petID, ownerID string) error {
	a, ok := m.agents[petID]
	if !ok {
		return fmt.Errorf("sim: pet not found: %s", petID)
	}
	return a.MigrateToOwner(ownerID)
}

// GetAgent looks an agent up by id.
func (m *Model) GetAgent(id string) (*pet.Agent, bool) {
	a, ok := m.agents[id]
	return a, ok
}

// RemoveAgent destroys a pet, dropping its projections and inbox.
func (m *Model) RemoveAgent(id string) {
	if _, ok := m.agents[id]; !ok {
		return
	}
	delete(m.agents, id)
	m.environment.RemovePet(id)
	m.msgBus.Unregister(id)
	m.logger.Info("removed pet from simulation", "id", id)
}

// AgentIDs lists the roster in stable order.
func (m *Model) AgentIDs() []string {
	ids := make([]string, 0, len(m.agents))
	for id := range m.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Step runs one simulation tick: environment first, then message
// drain, spontaneous pet-to-pet interactions, and agent steps in
// uniformly random order. Cancellation is checked between agents; an
// aborted tick abandons the remaining agents but never partial agent
// state.
func (m *Model) Step(ctx context.Context) *TickResult {
	m.environment.Step()

	ids := m.AgentIDs()

	inboxes := make(map[string][]bus.Message, len(ids))
	for _, id := range ids {
		inboxes[id] = m.msgBus.Drain(id)
	}

	m.facilitatePetInteractions(ids)

	// Uniformly random processing order, deterministic given the seed.
	order := make([]string, len(ids))
	copy(order, ids)
	m.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	result := &TickResult{Tick: m.tick + 1}
	for _, id := range order {
		select {
		case <-ctx.Done():
			result.Aborted = true
			m.logger.Warn("tick aborted", "tick", result.Tick)
			goto done
		default:
		}

		a := m.agents[id]
		view := m.environment.GetPetView(id, a.Energy().Boundary().Permeability())
		report, err := a.Step(view, inboxes[id])
		if err != nil {
			m.logger.Error("quarantining agent for this tick", "id", id, "error", err)
			result.Quarantined = append(result.Quarantined, id)
			continue
		}
		result.Agents = append(result.Agents, report)
	}

done:
	m.tick++
	result.Tick = m.tick
	result.Environment = EnvironmentReport{
		Tick:             m.tick,
		TimeOfDay:        m.environment.TimeOfDay,
		Weather:          m.environment.CurrentWeather,
		AmbientEnergy:    m.environment.AmbientEnergy,
		NoveltyLevel:     m.environment.NoveltyLevel,
		ActiveEventCount: m.environment.ActiveEventCount(),
	}

	for _, c := range m.collectors {
		c.OnTick(result)
	}
	return result
}

// facilitatePetInteractions rolls, for each pet, a 30% chance of a
// pairwise interaction with a pet sharing its region. The message is
// delivered through the bus and therefore lands next tick.
func (m *Model) facilitatePetInteractions(ids []string) {
	for _, id := range ids {
		if m.rng.Float64() >= 0.3 {
			continue
		}
		a := m.agents[id]
		region := m.environment.PetRegion(id)
		if region == "" {
			continue
		}
		var neighbours []string
		for _, other := range m.environment.Regions[region].PetIDs() {
			if other != id {
				neighbours = append(neighbours, other)
			}
		}
		if len(neighbours) == 0 {
			continue
		}
		other := neighbours[m.rng.Intn(len(neighbours))]
		compatibility := m.petCompatibility(a, m.agents[other])

		m.msgBus.Deliver(bus.Message{
			Sender:    id,
			Recipient: other,
			Type:      bus.TypePetInteraction,
			Content: map[string]any{
				"interaction_type": "meet",
				"compatibility":    compatibility,
			},
			Timestamp: uint64(m.environment.SimHours() * 3600 * 1000),
		})
	}
}

// petCompatibility scores two pets from trait similarity, their
// existing relationship, and a little noise.
func (m *Model) petCompatibility(a, b *pet.Agent) float64 {
	if a == nil || b == nil {
		return 0.5
	}
	totalDiff := 0.0
	n := 0
	for _, name := range pet.TraitNames {
		av, aok := a.Traits[name]
		bv, bok := b.Traits[name]
		if aok && bok {
			diff := av - bv
			if diff < 0 {
				diff = -diff
			}
			totalDiff += diff
			n++
		}
	}
	compatibility := 0.5
	if n > 0 {
		compatibility = 1.0 - totalDiff/float64(n)
	}
	compatibility += a.PetRelationships[b.ID] * 0.02
	compatibility += m.rng.Float64()*0.2 - 0.1

	if compatibility < 0 {
		return 0
	}
	if compatibility > 1 {
		return 1
	}
	return compatibility
}
