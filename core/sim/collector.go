package sim

import "gonum.org/v1/gonum/stat"

// MetricsSample is one tick of roster-wide averages.
type MetricsSample struct {
	Tick            uint64  `json:"tick"`
	AvgAttention    float64 `json:"avg_attention"`
	AvgHealth       float64 `json:"avg_health"`
	AvgMood         float64 `json:"avg_mood"`
	AvgPermeability float64 `json:"avg_permeability"`
	AvgCognition    float64 `json:"avg_cognitive_level"`
	AgentCount      int     `json:"agent_count"`
}

// MetricsCollector samples roster averages between ticks.
type MetricsCollector struct {
	samples []MetricsSample
	cap     int
}

// NewMetricsCollector keeps up to cap samples (0 means unbounded).
func NewMetricsCollector(cap int) *MetricsCollector {
	return &MetricsCollector{cap: cap}
}

// OnTick implements Collector.
func (mc *MetricsCollector) OnTick(result *TickResult) {
	n := len(result.Agents)
	sample := MetricsSample{Tick: result.Tick, AgentCount: n}
	if n > 0 {
		attention := make([]float64, n)
		health := make([]float64, n)
		mood := make([]float64, n)
		permeability := make([]float64, n)
		cognitive := make([]float64, n)
		for i, r := range result.Agents {
			attention[i] = r.Attention
			health[i] = r.Vitals.Health
			mood[i] = r.Vitals.Mood
			permeability[i] = r.Boundary.Permeability
			total := 0.0
			for _, v := range r.Cognitive {
				total += v
			}
			if len(r.Cognitive) > 0 {
				cognitive[i] = total / float64(len(r.Cognitive))
			}
		}
		sample.AvgAttention = stat.Mean(attention, nil)
		sample.AvgHealth = stat.Mean(health, nil)
		sample.AvgMood = stat.Mean(mood, nil)
		sample.AvgPermeability = stat.Mean(permeability, nil)
		sample.AvgCognition = stat.Mean(cognitive, nil)
	}

	mc.samples = append(mc.samples, sample)
	if mc.cap > 0 && len(mc.samples) > mc.cap {
		mc.samples = mc.samples[len(mc.samples)-mc.cap:]
	}
}

// Samples returns the collected samples, oldest first.
func (mc *MetricsCollector) Samples() []MetricsSample {
	out := make([]MetricsSample, len(mc.samples))
	copy(out, mc.samples)
	return out
}

// Latest returns the most recent sample, if any.
func (mc *MetricsCollector) Latest() (MetricsSample, bool) {
	if len(mc.samples) == 0 {
		return MetricsSample{}, false
	}
	return mc.samples[len(mc.samples)-1], true
}
