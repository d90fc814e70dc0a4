package combat

import (
	"fmt"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/conditions"
)

// Helped marks a creature that gets advantage on its next attack roll
const Helped conditions.Type = "helped"

// applyTimed applies cond to target and schedules its removal after
// remaining of the source's turn boundaries. An existing timer for the same
// target, condition and source is replaced.
func (e *Engine) applyTimed(target *CombatantState, cond conditions.Type, sourceID string, boundary Boundary, remaining int) {
	target.addCondition(cond)
	for i, t := range e.state.Timers {
		if t.TargetID == target.ID && t.Condition == cond && t.SourceID == sourceID {
			e.state.Timers[i].Boundary = boundary
			e.state.Timers[i].Remaining = remaining
			return
		}
	}
	e.state.Timers = append(e.state.Timers, ConditionTimer{
		TargetID:  target.ID,
		Condition: cond,
		SourceID:  sourceID,
		Boundary:  boundary,
		Remaining: remaining,
	})
	e.event(EventConditionApplied, target.ID, fmt.Sprintf("%s is %s", target.Name, cond), map[string]any{
		"condition": string(cond),
		"source":    sourceID,
	})
}

// expireTimers ticks the timers owned by id at boundary. Timers on id whose
// source has left the fight expire too, since their source has no turns left.
func (e *Engine) expireTimers(id string, boundary Boundary) {
	kept := e.state.Timers[:0]
	for _, t := range e.state.Timers {
		expired := false
		switch {
		case t.SourceID == id && t.Boundary == boundary:
			t.Remaining--
			expired = t.Remaining <= 0
		case t.TargetID == id && t.SourceID != id && !e.registry.IsActive(t.SourceID):
			expired = true
		}
		if !expired {
			kept = append(kept, t)
			continue
		}
		target, ok := e.state.Combatants[t.TargetID]
		if ok && target.removeCondition(t.Condition) {
			e.event(EventConditionExpired, t.TargetID, fmt.Sprintf("%s is no longer %s", target.Name, t.Condition), map[string]any{
				"condition": string(t.Condition),
				"source":    t.SourceID,
			})
		}
	}
	e.state.Timers = kept
}
