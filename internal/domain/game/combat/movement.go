package combat

import (
	"fmt"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/conditions"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
)

// walkResult is how far a walk got
type walkResult struct {
	Path    []grid.Position
	Spent   int
	Damage  int
	Stopped string
	// Halted is set when a sentinel hit ends the mover's movement for the turn
	Halted bool
}

// MoveCombatant moves the current combatant to x, y along the cheapest path,
// resolving opportunity attacks and hazards on the way
func (e *Engine) MoveCombatant(id string, x, y int) (*ActionResult, error) {
	c, reason := e.actorCheck()
	if reason != "" {
		return e.reject("%s", reason), nil
	}
	if id != c.ID {
		return e.reject("it is %s's turn, not %s's", c.Name, e.name(id)), nil
	}
	turn := e.state.Turn
	if turn.MovementLocked {
		return e.reject("%s cannot move after Steady Aim", c.Name), nil
	}

	from, dest := e.state.Positions[c.ID], grid.Position{X: x, Y: y}
	switch {
	case dest == from:
		return e.reject("%s is already at %s", c.Name, dest), nil
	case !e.state.Grid.InBounds(dest):
		return e.reject("%s is off the map", dest), nil
	case !e.state.Grid.Walkable(dest) || e.state.Grid.Cell(dest).Terrain == grid.TerrainPit:
		return e.reject("%s cannot stand at %s", c.Name, dest), nil
	}
	if other, taken := e.occupant(dest); taken {
		return e.reject("%s is occupied by %s", dest, e.name(other)), nil
	}

	remaining := e.effectiveSpeed(c) + turn.MovementBonus - turn.MovementUsed
	if remaining <= 0 {
		return e.reject("%s has no movement remaining", c.Name), nil
	}
	path, cost, ok := e.state.Grid.FindPath(from, dest, e.passableFor(c))
	if !ok {
		return e.reject("no path from %s to %s", from, dest), nil
	}
	if c.has(conditions.Prone) {
		cost *= 2
	}
	if cost > remaining {
		return e.reject("moving to %s needs %d ft but %s has %d ft left", dest, cost, c.Name, remaining), nil
	}

	walked, err := e.walk(c, path, true)
	if err != nil {
		return nil, err
	}
	turn.MovementUsed += walked.Spent
	if walked.Halted {
		turn.MovementUsed = max(turn.MovementUsed, e.effectiveSpeed(c)+turn.MovementBonus)
	}

	end := e.state.Positions[c.ID]
	desc := fmt.Sprintf("%s moves from %s to %s", c.Name, from, end)
	if walked.Stopped != "" {
		desc += " (" + walked.Stopped + ")"
	}
	data := map[string]any{
		"from":          from.String(),
		"to":            end.String(),
		"path":          positionStrings(walked.Path),
		"cost":          walked.Spent,
		"movement_used": turn.MovementUsed,
	}
	if walked.Stopped != "" {
		data["stopped"] = walked.Stopped
	}
	e.event(EventMove, c.ID, desc, data)
	return &ActionResult{Success: true, Description: desc, DamageDealt: walked.Damage, ExtraData: data}, nil
}

// passableFor lets c pass through allies but not hostiles
func (e *Engine) passableFor(c *CombatantState) func(grid.Position) bool {
	return func(p grid.Position) bool {
		id, taken := e.occupant(p)
		return !taken || !e.isHostile(c, e.state.Combatants[id])
	}
}

// walk steps c along path. Each step first gives every threatened hostile a
// chance at an opportunity attack when provoke is set, then enters the cell
// and resolves hazards. Walking stops early when c drops or a sentinel hits.
func (e *Engine) walk(c *CombatantState, path []grid.Position, provoke bool) (*walkResult, error) {
	out := &walkResult{}
	start := e.state.Positions[c.ID]
	factor := 1
	if c.has(conditions.Prone) {
		factor = 2
	}

	for _, step := range path {
		if provoke {
			halted, err := e.opportunityAttacks(c, e.state.Positions[c.ID], step)
			if err != nil {
				return nil, err
			}
			if c.HP == 0 {
				out.Stopped = c.Name + " dropped"
				e.settle(c, start, out)
				return out, nil
			}
			if halted {
				out.Halted = true
				out.Stopped = "stopped by a sentinel"
				e.settle(c, start, out)
				return out, nil
			}
		}

		e.state.Positions[c.ID] = step
		out.Path = append(out.Path, step)
		out.Spent += e.state.Grid.StepCost(step) * factor
		e.checkGrappleDistance(c)

		if cell := e.state.Grid.Cell(step); cell.Hazard != nil {
			dealt, err := e.hazard(c, cell)
			if err != nil {
				return nil, err
			}
			out.Damage += dealt
			if c.HP == 0 {
				out.Stopped = c.Name + " dropped"
				e.settle(c, start, out)
				return out, nil
			}
		}
	}
	return out, nil
}

// settle backs a mover that stopped partway off any cell it shares with an
// ally, to the last free cell of its path or to where it started
func (e *Engine) settle(c *CombatantState, start grid.Position, out *walkResult) {
	for len(out.Path) > 0 && e.sharesCell(c) {
		out.Path = out.Path[:len(out.Path)-1]
		if len(out.Path) == 0 {
			e.state.Positions[c.ID] = start
		} else {
			e.state.Positions[c.ID] = out.Path[len(out.Path)-1]
		}
	}
	e.checkGrappleDistance(c)
}

func (e *Engine) sharesCell(c *CombatantState) bool {
	at := e.state.Positions[c.ID]
	for _, id := range e.sortedIDs() {
		if id == c.ID || !e.registry.IsActive(id) {
			continue
		}
		if e.state.Positions[id] == at {
			return true
		}
	}
	return false
}

// opportunityAttacks resolves every reaction provoked by c leaving from for
// to. It reports whether a sentinel hit stopped the mover.
func (e *Engine) opportunityAttacks(c *CombatantState, from, to grid.Position) (bool, error) {
	halted := false
	for _, id := range e.sortedIDs() {
		threat := e.state.Combatants[id]
		if id == c.ID || !e.isHostile(c, threat) || !e.standing(threat) || e.state.ReactionsUsed[id] {
			continue
		}
		if e.conditions.IsIncapacitated(threat.Conditions) {
			continue
		}
		if e.state.Turn.Disengaged && !threat.hasFeat(FeatSentinel) {
			continue
		}
		w, reason, err := e.lookupWeapon(threat, "")
		if err != nil {
			return false, err
		}
		if reason != "" || w.Ranged {
			continue
		}
		if !grid.LeavesReach(e.state.Positions[id], w.Reach, from, to) {
			continue
		}

		report, reason, err := e.resolveAttack(threat, c, w, attackOptions{Opportunity: true})
		if err != nil {
			return false, err
		}
		if reason != "" {
			continue
		}
		e.state.ReactionsUsed[id] = true

		result := attackResult(threat, report)
		e.event(EventOpportunityAttack, threat.ID, "Opportunity attack: "+result.Description, result.ExtraData)

		if report.Outcome.Hit && threat.hasFeat(FeatSentinel) {
			halted = true
		}
		if c.HP == 0 {
			return halted, nil
		}
	}
	return halted, nil
}

func positionStrings(path []grid.Position) []string {
	out := make([]string, len(path))
	for i, p := range path {
		out[i] = p.String()
	}
	return out
}
