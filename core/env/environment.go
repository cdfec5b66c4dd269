package env

import (
	"log/slog"
	"math"
	"math/rand"
	"sort"
)

// Weather is the categorical weather state of the shared environment.
type Weather string

const (
	WeatherClear  Weather = "clear"
	WeatherCloudy Weather = "cloudy"
	WeatherRainy  Weather = "rainy"
	WeatherStormy Weather = "stormy"
	WeatherFoggy  Weather = "foggy"
	WeatherWindy  Weather = "windy"
)

// WeatherEffects describes how the current weather nudges pet state.
type WeatherEffects struct {
	Energy float64 `json:"energy"`
	Mood   float64 `json:"mood"`
}

var weatherEffectTable = map[Weather]WeatherEffects{
	WeatherClear:  {Energy: 0.2, Mood: 0.2},
	WeatherCloudy: {Energy: 0.0, Mood: -0.1},
	WeatherRainy:  {Energy: -0.1, Mood: -0.1},
	WeatherStormy: {Energy: -0.2, Mood: -0.2},
	WeatherFoggy:  {Energy: -0.1, Mood: 0.0},
	WeatherWindy:  {Energy: 0.1, Mood: 0.1},
}

// weatherTransitions is a first-order Markov chain over weather states.
var weatherTransitions = map[Weather][]weatherEdge{
	WeatherClear:  {{WeatherClear, 0.7}, {WeatherCloudy, 0.25}, {WeatherWindy, 0.05}},
	WeatherCloudy: {{WeatherClear, 0.2}, {WeatherCloudy, 0.5}, {WeatherRainy, 0.25}, {WeatherFoggy, 0.05}},
	WeatherRainy:  {{WeatherCloudy, 0.3}, {WeatherRainy, 0.5}, {WeatherStormy, 0.2}},
	WeatherStormy: {{WeatherRainy, 0.3}, {WeatherStormy, 0.5}, {WeatherCloudy, 0.2}},
	WeatherFoggy:  {{WeatherFoggy, 0.6}, {WeatherCloudy, 0.3}, {WeatherClear, 0.1}},
	WeatherWindy:  {{WeatherWindy, 0.5}, {WeatherClear, 0.3}, {WeatherCloudy, 0.2}},
}

type weatherEdge struct {
	to   Weather
	prob float64
}

// Event is a transient environmental event with a remaining duration in ticks.
type Event struct {
	Type      string             `json:"type"`
	Remaining int                `json:"remaining"`
	Params    map[string]float64 `json:"params,omitempty"`
	Weather   Weather            `json:"weather,omitempty"`
	Resource  string             `json:"resource,omitempty"`
}

// TickHours is the simulated duration of one tick (6 minutes).
const TickHours = 0.1

// Environment is the shared, tick-advanced world state for all pets.
//
// It owns the regions, the weather chain, global resources, and the
// storage for pet projections. It is mutated only by the simulation
// model and through its narrow mutation interface (projections, pet
// location, resource consumption).
type Environment struct {
	TimeOfDay        float64
	DayOfWeek        int
	DayCount         int
	AmbientEnergy    float64
	SocialAtmosphere float64
	NoveltyLevel     float64
	EmotionalTone    float64
	Temperature      float64
	CurrentWeather   Weather

	Resources map[string]float64
	Regions   map[string]*Region

	projections map[string]map[string]*Projection // pet id -> projection id -> projection
	events      []*Event

	tick   uint64
	rng    *rand.Rand
	logger *slog.Logger
}

// New builds the default three-region environment.
func New(rng *rand.Rand, logger *slog.Logger) *Environment {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Environment{
		TimeOfDay:        8.0,
		DayOfWeek:        1,
		AmbientEnergy:    1.0,
		SocialAtmosphere: 0.7,
		NoveltyLevel:     0.5,
		EmotionalTone:    0.5,
		Temperature:      0.5,
		CurrentWeather:   WeatherClear,
		Resources: map[string]float64{
			"food":      100,
			"water":     100,
			"toys":      50,
			"knowledge": 100,
		},
		Regions:     DefaultRegions(),
		projections: make(map[string]map[string]*Projection),
		rng:         rng,
		logger:      logger,
	}
	return e
}

// Tick returns the number of steps the environment has advanced.
func (e *Environment) Tick() uint64 { return e.tick }

// Step advances the environment by one tick: time, weather, ambient
// energy, resource regeneration, novelty decay, and active events.
func (e *Environment) Step() {
	e.tick++
	e.TimeOfDay += TickHours
	if e.TimeOfDay >= 24 {
		e.TimeOfDay -= 24
		e.DayOfWeek = (e.DayOfWeek % 7) + 1
		e.DayCount++
	}

	e.updateWeather()
	e.updateResources()

	e.NoveltyLevel = math.Max(0.1, e.NoveltyLevel*0.99)
	if e.rng.Float64() < 0.01 {
		e.NoveltyLevel = math.Min(1.0, e.NoveltyLevel+0.3)
	}

	e.processEvents()
}

// SimHours returns the total simulated hours elapsed since creation.
func (e *Environment) SimHours() float64 {
	return float64(e.DayCount)*24 + e.TimeOfDay
}

func (e *Environment) updateWeather() {
	edges := weatherTransitions[e.CurrentWeather]
	r := e.rng.Float64()
	cumulative := 0.0
	for _, edge := range edges {
		cumulative += edge.prob
		if r <= cumulative {
			e.CurrentWeather = edge.to
			break
		}
	}

	// Temperature drifts with persistence.
	e.Temperature = 0.8*e.Temperature + 0.2*e.rng.Float64()

	hour := e.TimeOfDay
	if hour >= 6 && hour < 18 {
		dayEnergy := 0.6 + 0.4*(1-math.Abs((hour-12)/6))
		e.AmbientEnergy = dayEnergy * (0.8 + 0.4*e.rng.Float64())
	} else {
		e.AmbientEnergy = 0.2 + 0.1*e.rng.Float64()
	}

	if e.CurrentWeather == WeatherStormy {
		e.AmbientEnergy *= 0.7
	} else if e.CurrentWeather == WeatherClear && hour >= 10 && hour < 14 {
		e.AmbientEnergy *= 1.3
	}
}

func (e *Environment) updateResources() {
	regenerate := func(name string, cap, rate float64) {
		e.Resources[name] = math.Min(cap, e.Resources[name]+rate)
	}
	regenerate("food", 100, 0.5)
	regenerate("water", 100, 0.8)
	regenerate("toys", 50, 0.2)
	regenerate("knowledge", 100, 0.3)

	for _, id := range sortedRegionIDs(e.Regions) {
		e.Regions[id].regenerate(e.AmbientEnergy)
	}
}

func (e *Environment) processEvents() {
	kept := e.events[:0]
	for _, ev := range e.events {
		ev.Remaining--
		switch ev.Type {
		case "weather_event":
			if ev.Weather != "" {
				e.CurrentWeather = ev.Weather
			}
		case "resource_boost":
			if _, ok := e.Resources[ev.Resource]; ok {
				e.Resources[ev.Resource] += ev.Params["amount"]
			}
		case "novelty_spike":
			e.NoveltyLevel = math.Min(1.0, e.NoveltyLevel+ev.Params["intensity"])
		}
		if ev.Remaining > 0 {
			kept = append(kept, ev)
		}
	}
	e.events = kept
}

// AddEvent queues a transient event; events raise the novelty level.
func (e *Environment) AddEvent(ev *Event) {
	e.events = append(e.events, ev)
	e.NoveltyLevel = math.Min(1.0, e.NoveltyLevel+0.15)
}

// ActiveEventCount reports the number of live events.
func (e *Environment) ActiveEventCount() int { return len(e.events) }

// WeatherEffectsFor returns the effect table entry for a weather state.
func WeatherEffectsFor(w Weather) WeatherEffects { return weatherEffectTable[w] }

func sortedRegionIDs(regions map[string]*Region) []string {
	ids := make([]string, 0, len(regions))
	for id := range regions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
