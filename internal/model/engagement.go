package model

import "time"

// Engagement state keys touched by the pipeline. Everything else under
// engagement_state belongs to other subsystems and must survive a
// merge-write byte for byte.
const (
	engagementLoopsKey = "active_habit_loops"
	discoveryLoopKey   = "discovery"
)

// DiscoveryLoop is the habit-loop sub-object the pipeline owns. It is fully
// replaced on every triggering run.
type DiscoveryLoop struct {
	Active          bool      `json:"active"`
	TriggeredCount  int       `json:"triggered_count"`
	LastTriggeredAt time.Time `json:"last_triggered_at"`
	PendingDeals    []string  `json:"pending_deals"`
}

// EngagementPatch is a typed partial update of engagement_state. Each level
// holds named optional fields; nil means "leave that branch alone".
type EngagementPatch struct {
	HabitLoops HabitLoopsPatch
}

// HabitLoopsPatch is the partial update for the active_habit_loops level.
type HabitLoopsPatch struct {
	Discovery *DiscoveryLoop
}

// CurrentDiscoveryLoop decodes the discovery loop out of a raw
// engagement_state map, defaulting every field if absent or malformed.
func CurrentDiscoveryLoop(state map[string]any) DiscoveryLoop {
	var loop DiscoveryLoop

	loops, ok := state[engagementLoopsKey].(map[string]any)
	if !ok {
		return loop
	}
	raw, ok := loops[discoveryLoopKey].(map[string]any)
	if !ok {
		return loop
	}

	if v, ok := raw["active"].(bool); ok {
		loop.Active = v
	}
	switch v := raw["triggered_count"].(type) {
	case float64:
		loop.TriggeredCount = int(v)
	case int:
		loop.TriggeredCount = v
	}
	if v, ok := raw["last_triggered_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			loop.LastTriggeredAt = t
		}
	}
	if v, ok := raw["pending_deals"].([]any); ok {
		for _, id := range v {
			if s, ok := id.(string); ok {
				loop.PendingDeals = append(loop.PendingDeals, s)
			}
		}
	}
	return loop
}

// MergeEngagement applies a patch to a raw engagement_state map and returns
// the merged copy. Semantics are shallow merge at each level the patch
// touches and full replacement below that: sibling keys of
// active_habit_loops and of engagement_state are preserved unchanged, while
// the discovery sub-object is overwritten wholesale. The input map is not
// mutated.
func MergeEngagement(state map[string]any, patch EngagementPatch) map[string]any {
	merged := make(map[string]any, len(state)+1)
	for k, v := range state {
		merged[k] = v
	}

	if patch.HabitLoops.Discovery == nil {
		return merged
	}

	loops := make(map[string]any)
	if prior, ok := state[engagementLoopsKey].(map[string]any); ok {
		for k, v := range prior {
			loops[k] = v
		}
	}

	d := patch.HabitLoops.Discovery
	pending := d.PendingDeals
	if pending == nil {
		pending = []string{}
	}
	loops[discoveryLoopKey] = map[string]any{
		"active":            d.Active,
		"triggered_count":   d.TriggeredCount,
		"last_triggered_at": d.LastTriggeredAt.UTC().Format(time.RFC3339),
		"pending_deals":     pending,
	}

	merged[engagementLoopsKey] = loops
	return merged
}
