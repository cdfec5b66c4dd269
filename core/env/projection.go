package env

import "math"

// Projection is a piece of a pet placed into the environment. The
// environment owns its storage; the originating pet keeps only the id.
type Projection struct {
	ID          string             `json:"id"`
	Type        string             `json:"type"`
	SourcePet   string             `json:"source_pet"`
	RegionID    string             `json:"region_id"`
	Stability   float64            `json:"stability"`
	Properties  map[string]float64 `json:"properties,omitempty"`
	CreatedTick uint64             `json:"created_tick"`
}

// Effects returns the stability-scaled influence of the projection on
// its region.
func (p *Projection) Effects() map[string]float64 {
	switch p.Type {
	case "territorial_marker":
		return map[string]float64{
			"territory_claim": 0.5 * p.Stability,
			"pet_presence":    0.3 * p.Stability,
		}
	case "social_signal":
		return map[string]float64{
			"social_presence": 0.7 * p.Stability,
			"communication":   0.5 * p.Stability,
		}
	case "knowledge_share":
		return map[string]float64{
			"shared_knowledge": 0.6 * p.Stability,
			"teaching":         0.4 * p.Stability,
		}
	}
	return map[string]float64{}
}

// AddPetProjection stores a projection for a pet. Social signals lift
// the shared social atmosphere; knowledge shares feed the knowledge
// resource pool.
func (e *Environment) AddPetProjection(petID string, p *Projection) *OpResult {
	region, ok := e.Regions[p.RegionID]
	if !ok {
		return &OpResult{Success: false, Reason: "region_not_found"}
	}
	if e.projections[petID] == nil {
		e.projections[petID] = make(map[string]*Projection)
	}
	p.SourcePet = petID
	p.CreatedTick = e.tick
	e.projections[petID][p.ID] = p
	region.projections[p.ID] = p

	switch p.Type {
	case "social_signal":
		e.SocialAtmosphere = math.Min(1.0, e.SocialAtmosphere+0.05)
	case "knowledge_share":
		e.Resources["knowledge"] = math.Min(100, e.Resources["knowledge"]+2)
	}

	e.NoveltyLevel = math.Min(1.0, e.NoveltyLevel+0.1)
	return &OpResult{Success: true}
}

// RemovePetProjection deletes a projection placed by the pet.
func (e *Environment) RemovePetProjection(petID, projectionID string) *OpResult {
	owned, ok := e.projections[petID]
	if !ok {
		return &OpResult{Success: false, Reason: "projection_not_found"}
	}
	p, ok := owned[projectionID]
	if !ok {
		return &OpResult{Success: false, Reason: "projection_not_found"}
	}
	if region, ok := e.Regions[p.RegionID]; ok {
		delete(region.projections, projectionID)
	}
	delete(owned, projectionID)
	return &OpResult{Success: true}
}

// ProjectionStability reports the stored stability of a projection, or
// false when it no longer exists.
func (e *Environment) ProjectionStability(petID, projectionID string) (float64, bool) {
	if owned, ok := e.projections[petID]; ok {
		if p, ok := owned[projectionID]; ok {
			return p.Stability, true
		}
	}
	return 0, false
}

// SetProjectionStability records a new stability value for a stored
// projection. The exchange system drives the decay; the environment
// only holds the canonical copy.
func (e *Environment) SetProjectionStability(petID, projectionID string, stability float64) {
	if owned, ok := e.projections[petID]; ok {
		if p, ok := owned[projectionID]; ok {
			p.Stability = stability
		}
	}
}
