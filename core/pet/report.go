package pet

import (
	"github.com/gnarlynerd-lab/pets/core/boundary"
	"github.com/gnarlynerd-lab/pets/core/cognition"
)

// TickReport is the per-tick, per-agent observation record. The
// schema is stable; fields are only added in backward-compatible
// ways.
type TickReport struct {
	Tick   uint64 `json:"tick"`
	PetID  string `json:"pet_id"`
	Name   string `json:"name,omitempty"`
	Region string `json:"region"`

	Vitals Vitals `json:"vitals"`
	Needs  Needs  `json:"needs"`

	Boundary        boundary.Snapshot          `json:"boundary_snapshot"`
	BoundaryStatus  boundary.Status            `json:"boundary_status"`
	Cognitive       map[cognition.Area]float64 `json:"cognitive_snapshot"`
	Stage           cognition.Stage            `json:"cognitive_stage"`
	ActiveBehaviors []Behavior                 `json:"active_behaviours"`

	Surprise  float64 `json:"surprise"`
	Attention float64 `json:"attention"`
	Thriving  float64 `json:"thriving"`

	Age              float64          `json:"age"`
	DevelopmentStage DevelopmentStage `json:"development_stage"`
	EmojiResponse    string           `json:"emoji_response,omitempty"`
}

func (a *Agent) buildReport(surprise float64, status boundary.Status) *TickReport {
	report := &TickReport{
		Tick:             a.tick,
		PetID:            a.ID,
		Name:             a.Name,
		Region:           a.Region,
		Vitals:           a.Vitals,
		Needs:            a.Needs,
		Boundary:         a.energy.Boundary().Status(),
		BoundaryStatus:   status,
		Cognitive:        a.cog.AreaValues(),
		Stage:            a.cog.Stage(),
		Surprise:         surprise,
		Attention:        a.mind.Attention(),
		Thriving:         a.mind.Thriving(),
		Age:              a.Age,
		DevelopmentStage: a.Stage,
		EmojiResponse:    a.lastResponse,
	}
	report.ActiveBehaviors = append(report.ActiveBehaviors, a.activeBehaviors...)
	a.lastResponse = ""
	return report
}
