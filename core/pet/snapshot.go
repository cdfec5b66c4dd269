package pet

import (
	"encoding/json"
	"fmt"

	"github.com/gnarlynerd-lab/pets/core/boundary"
	"github.com/gnarlynerd-lab/pets/core/cognition"
	"github.com/gnarlynerd-lab/pets/core/fep"
)

// SnapshotVersion is the current snapshot blob schema version.
const SnapshotVersion = 1

// Snapshot is the versioned, serialisable state of one pet.
type Snapshot struct {
	Version int `json:"version"`

	PetID     string `json:"pet_id"`
	OwnerID   string `json:"owner_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Name      string `json:"name"`

	CreationTime        float64 `json:"creation_time"`
	LastInteractionTime float64 `json:"last_interaction_time"`

	Traits           map[string]float64 `json:"traits"`
	TraitConnections map[string]float64 `json:"trait_connections"`

	Vitals Vitals `json:"vitals"`
	Needs  Needs  `json:"needs"`

	Boundary boundary.Snapshot `json:"boundary"`

	CognitiveAreas map[cognition.Area]float64 `json:"cognitive_areas"`

	FEP fep.State `json:"fep"`

	Episodic     []EpisodicRecord              `json:"episodic"`
	Semantic     map[string]SemanticEntry      `json:"semantic"`
	Counterparts map[string]*CounterpartMemory `json:"counterparts,omitempty"`

	HumanRelationships map[string]float64 `json:"human_relationships"`
	PetRelationships   map[string]float64 `json:"pet_relationships"`

	BehaviorPatterns map[string]float64 `json:"behavior_patterns,omitempty"`

	Region           string           `json:"region"`
	Age              float64          `json:"age"`
	DevelopmentStage DevelopmentStage `json:"development_stage"`
}

// ExportState captures the pet's complete persistent state. Episodic
// memory is truncated to the 50 most recent entries.
func (a *Agent) ExportState() *Snapshot {
	episodic := a.Episodic
	if len(episodic) > 50 {
		episodic = episodic[len(episodic)-50:]
	}
	episodicCopy := make([]EpisodicRecord, len(episodic))
	copy(episodicCopy, episodic)

	return &Snapshot{
		Version:             SnapshotVersion,
		PetID:               a.ID,
		OwnerID:             a.OwnerID,
		SessionID:           a.SessionID,
		Name:                a.Name,
		CreationTime:        a.CreatedAtHours,
		LastInteractionTime: a.LastInteractionAtHours,
		Traits:              copyTraits(a.Traits),
		TraitConnections:    copyFloatMap(a.TraitConnections),
		Vitals:              a.Vitals,
		Needs:               a.Needs,
		Boundary:            a.energy.Boundary().Status(),
		CognitiveAreas:      a.cog.AreaValues(),
		FEP:                 a.mind.ExportState(),
		Episodic:            episodicCopy,
		Semantic:            copySemantic(a.Semantic),
		Counterparts:        copyCounterparts(a.Counterparts),
		HumanRelationships:  copyFloatMap(a.HumanRelationships),
		PetRelationships:    copyFloatMap(a.PetRelationships),
		BehaviorPatterns:    copyFloatMap(a.behaviorPatterns),
		Region:              a.Region,
		Age:                 a.Age,
		DevelopmentStage:    a.Stage,
	}
}

// ImportState restores a pet from a snapshot. The snapshot version
// must be known and the FEP dimensions must match.
func (a *Agent) ImportState(s *Snapshot) error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("pet %s: unsupported snapshot version %d", a.ID, s.Version)
	}

	a.ID = s.PetID
	a.OwnerID = s.OwnerID
	a.SessionID = s.SessionID
	a.Name = s.Name
	a.CreatedAtHours = s.CreationTime
	a.LastInteractionAtHours = s.LastInteractionTime

	a.Traits = copyTraits(s.Traits)
	a.TraitConnections = copyFloatMap(s.TraitConnections)

	a.Vitals = Vitals{
		Health: clamp(s.Vitals.Health, 0, 100),
		Energy: clamp(s.Vitals.Energy, 0, 100),
		Mood:   clamp(s.Vitals.Mood, 0, 100),
	}
	a.Needs = s.Needs
	a.Needs.clampAll()

	a.energy.Boundary().Restore(s.Boundary)
	a.energy.SetEnergy(a.Vitals.Energy)
	a.cog.Restore(s.CognitiveAreas)
	if err := a.mind.ImportState(s.FEP); err != nil {
		return err
	}

	a.Episodic = make([]EpisodicRecord, len(s.Episodic))
	copy(a.Episodic, s.Episodic)
	a.Semantic = copySemantic(s.Semantic)
	a.Counterparts = copyCounterparts(s.Counterparts)

	a.HumanRelationships = clampFloatMap(s.HumanRelationships, -10, 10)
	a.PetRelationships = clampFloatMap(s.PetRelationships, -10, 10)
	a.behaviorPatterns = copyFloatMap(s.BehaviorPatterns)
	if a.behaviorPatterns == nil {
		a.behaviorPatterns = make(map[string]float64)
	}

	if s.Region != "" {
		a.Region = s.Region
	}
	a.Age = s.Age
	a.Stage = stageForAge(a.Age)
	return nil
}

// MarshalBlob serialises a snapshot to its stable JSON blob form.
func (s *Snapshot) MarshalBlob() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalBlob parses a snapshot blob.
func UnmarshalBlob(blob []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil, fmt.Errorf("parsing pet snapshot: %w", err)
	}
	return &s, nil
}

func copyFloatMap(src map[string]float64) map[string]float64 {
	if src == nil {
		return nil
	}
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func clampFloatMap(src map[string]float64, lo, hi float64) map[string]float64 {
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = clamp(v, lo, hi)
	}
	return out
}

func copySemantic(src map[string]SemanticEntry) map[string]SemanticEntry {
	out := make(map[string]SemanticEntry, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func copyCounterparts(src map[string]*CounterpartMemory) map[string]*CounterpartMemory {
	out := make(map[string]*CounterpartMemory, len(src))
	for k, v := range src {
		if v == nil {
			continue
		}
		counts := make(map[string]int, len(v.InteractionCounts))
		for ck, cv := range v.InteractionCounts {
			counts[ck] = cv
		}
		out[k] = &CounterpartMemory{
			InteractionCounts: counts,
			LastSeen:          v.LastSeen,
			FavoriteActivity:  v.FavoriteActivity,
		}
	}
	return out
}
