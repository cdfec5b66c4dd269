package env

import "sort"

// ViewTier names how much of the environment a pet perceives. The
// boundary permeability selects the tier; fields are additive across
// tiers.
type ViewTier int

const (
	TierNarrow ViewTier = iota // permeability < 0.3
	TierMedium                 // 0.3 <= permeability < 0.7
	TierFull                   // permeability >= 0.7
)

// RegionView is the per-region slice of a pet's environment view.
type RegionView struct {
	ID          string
	Name        string
	Features    []Feature
	Resources   map[string]float64
	CurrentPets []string
	Projections []*Projection
}

// CompetingPet identifies another pet visible at full perception.
type CompetingPet struct {
	ID     string
	Region string
}

// View is a pet-specific perception of the environment. Narrow-tier
// views carry only time, weather, scaled ambient energy and the
// current region; medium adds weather effects, social atmosphere and
// partially revealed regions; full adds everything plus competing
// pets.
type View struct {
	Tier           ViewTier
	TimeOfDay      float64
	CurrentWeather Weather
	AmbientEnergy  float64
	CurrentRegion  string

	DayOfWeek        int
	Effects          WeatherEffects
	SocialAtmosphere float64

	DayCount      int
	NoveltyLevel  float64
	EmotionalTone float64
	Temperature   float64
	Resources     map[string]float64
	CompetingPets []CompetingPet

	Regions map[string]*RegionView
}

// GetPetView assembles the perception of the environment available to
// one pet at the given boundary permeability.
func (e *Environment) GetPetView(petID string, permeability float64) *View {
	current := e.PetRegion(petID)

	if permeability < 0.3 {
		return &View{
			Tier:           TierNarrow,
			TimeOfDay:      e.TimeOfDay,
			CurrentWeather: e.CurrentWeather,
			AmbientEnergy:  e.AmbientEnergy * permeability * 2,
			CurrentRegion:  current,
			Regions:        map[string]*RegionView{},
		}
	}

	v := &View{
		TimeOfDay:        e.TimeOfDay,
		CurrentWeather:   e.CurrentWeather,
		AmbientEnergy:    e.AmbientEnergy,
		CurrentRegion:    current,
		DayOfWeek:        e.DayOfWeek,
		Effects:          weatherEffectTable[e.CurrentWeather],
		SocialAtmosphere: e.SocialAtmosphere,
		Regions:          make(map[string]*RegionView),
	}

	if permeability < 0.7 {
		v.Tier = TierMedium
		// Full detail only for the pet's own region; other regions
		// reveal each feature independently with probability equal to
		// the permeability.
		for _, id := range sortedRegionIDs(e.Regions) {
			region := e.Regions[id]
			if id == current {
				v.Regions[id] = e.regionView(region, petID, true, 1.0)
				continue
			}
			v.Regions[id] = e.regionView(region, petID, false, permeability)
		}
		return v
	}

	v.Tier = TierFull
	v.DayCount = e.DayCount
	v.NoveltyLevel = e.NoveltyLevel
	v.EmotionalTone = e.EmotionalTone
	v.Temperature = e.Temperature
	v.Resources = copyResources(e.Resources)
	for _, id := range sortedRegionIDs(e.Regions) {
		v.Regions[id] = e.regionView(e.Regions[id], petID, true, 1.0)
	}
	for _, id := range sortedRegionIDs(e.Regions) {
		for _, other := range e.Regions[id].PetIDs() {
			if other != petID {
				v.CompetingPets = append(v.CompetingPets, CompetingPet{ID: other, Region: id})
			}
		}
	}
	return v
}

func (e *Environment) regionView(r *Region, petID string, full bool, revealProb float64) *RegionView {
	rv := &RegionView{ID: r.ID, Name: r.Name}
	for _, f := range r.Features {
		if full || e.rng.Float64() < revealProb {
			rv.Features = append(rv.Features, f)
		}
	}
	if full {
		rv.Resources = copyResources(r.Resources)
		rv.CurrentPets = r.PetIDs()
		for _, id := range sortedProjectionIDs(r.projections) {
			rv.Projections = append(rv.Projections, r.projections[id])
		}
	}
	return rv
}

// CompetingPetCount counts other pets sharing a region with the given
// pet; used as a boundary pressure term.
func (v *View) CompetingPetCount(petID string) int {
	n := 0
	if region, ok := v.Regions[v.CurrentRegion]; ok {
		for _, id := range region.CurrentPets {
			if id != petID {
				n++
			}
		}
	}
	if n == 0 {
		for _, cp := range v.CompetingPets {
			if cp.Region == v.CurrentRegion && cp.ID != petID {
				n++
			}
		}
	}
	return n
}

func copyResources(src map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(src))
	for k, val := range src {
		out[k] = val
	}
	return out
}

func sortedProjectionIDs(m map[string]*Projection) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
