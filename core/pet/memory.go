package pet

import (
	"fmt"
	"sort"
)

// episodicCap bounds the episodic memory; the oldest entries are
// evicted first.
const episodicCap = 100

// EpisodicRecord is one remembered interaction or experience.
type EpisodicRecord struct {
	Timestamp   float64            `json:"timestamp"`
	Counterpart string             `json:"counterpart"`
	Type        string             `json:"type"`
	Content     map[string]any     `json:"content,omitempty"`
	VitalDeltas map[string]float64 `json:"vital_deltas,omitempty"`
}

// SemanticEntry is consolidated knowledge about a recurring
// (counterpart, interaction) pattern.
type SemanticEntry struct {
	Counterpart   string  `json:"entity_id"`
	Interaction   string  `json:"interaction_type"`
	Frequency     int     `json:"freq"`
	AvgMoodEffect float64 `json:"avg_mood_effect"`
	LastUpdated   float64 `json:"last_updated"`
}

// CounterpartMemory aggregates what the pet knows about one user or
// pet it has interacted with.
type CounterpartMemory struct {
	InteractionCounts map[string]int `json:"interaction_counts"`
	LastSeen          float64        `json:"last_interaction"`
	FavoriteActivity  string         `json:"favorite_activity,omitempty"`
}

// recordInteraction appends an episodic record and refreshes the
// per-counterpart aggregates, including the derived favourite
// activity.
func (a *Agent) recordInteraction(counterpart, interactionType string, content map[string]any, moodBefore float64) {
	a.Episodic = append(a.Episodic, EpisodicRecord{
		Timestamp:   a.simHours,
		Counterpart: counterpart,
		Type:        interactionType,
		Content:     content,
		VitalDeltas: map[string]float64{
			"mood":   a.Vitals.Mood - moodBefore,
			"health": 0,
			"energy": 0,
		},
	})
	if len(a.Episodic) > episodicCap {
		a.Episodic = a.Episodic[len(a.Episodic)-episodicCap:]
	}

	cm, ok := a.Counterparts[counterpart]
	if !ok {
		cm = &CounterpartMemory{InteractionCounts: make(map[string]int)}
		a.Counterparts[counterpart] = cm
	}
	cm.InteractionCounts[interactionType]++
	cm.LastSeen = a.simHours

	best, bestCount := "", 0
	kinds := make([]string, 0, len(cm.InteractionCounts))
	for k := range cm.InteractionCounts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		if cm.InteractionCounts[k] > bestCount {
			best, bestCount = k, cm.InteractionCounts[k]
		}
	}
	cm.FavoriteActivity = best
}

// consolidateMemory scans the recent episodic window for recurring
// (counterpart, interaction) pairs and promotes any seen three or
// more times into semantic memory with its mean mood effect.
func (a *Agent) consolidateMemory() {
	if len(a.Episodic) < 10 {
		return
	}
	recent := a.Episodic
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}

	type pair struct{ counterpart, interaction string }
	counts := make(map[pair]int)
	moodTotals := make(map[pair]float64)
	for _, m := range recent {
		if m.Counterpart == "" {
			continue
		}
		p := pair{m.Counterpart, m.Type}
		counts[p]++
		moodTotals[p] += m.VitalDeltas["mood"]
	}

	pairs := make([]pair, 0, len(counts))
	for p := range counts {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].counterpart != pairs[j].counterpart {
			return pairs[i].counterpart < pairs[j].counterpart
		}
		return pairs[i].interaction < pairs[j].interaction
	})

	for _, p := range pairs {
		count := counts[p]
		if count < 3 {
			continue
		}
		key := fmt.Sprintf("%s:%s", p.counterpart, p.interaction)
		a.Semantic[key] = SemanticEntry{
			Counterpart:   p.counterpart,
			Interaction:   p.interaction,
			Frequency:     count,
			AvgMoodEffect: moodTotals[p] / float64(count),
			LastUpdated:   a.simHours,
		}
	}
}
