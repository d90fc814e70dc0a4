package combat

import (
	"fmt"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/conditions"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

// escapeModifier is the better of Athletics and Acrobatics
func escapeModifier(c *CombatantState) int {
	return max(c.skillModifier(rules.Athletics), c.skillModifier(rules.Acrobatics))
}

// maneuverCheck validates the shared grapple and shove preconditions
func (e *Engine) maneuverCheck(c *CombatantState, targetID string) (*CombatantState, string) {
	if reason := e.attackSpent(); reason != "" {
		return nil, reason
	}
	target, reason := e.targetOf(c, targetID)
	if reason != "" {
		return nil, reason
	}
	if e.distance(c.ID, target.ID) > 5 {
		return nil, target.Name + " is not adjacent"
	}
	if target.Size > c.Size+1 {
		return nil, fmt.Sprintf("%s is too large (%s) for %s (%s)", target.Name, target.Size, c.Name, c.Size)
	}
	return target, ""
}

func (e *Engine) contest(c, target *CombatantState) (*rules.ContestOutcome, error) {
	out, err := e.resolver.Contest(c.skillModifier(rules.Athletics), escapeModifier(target))
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to roll contest between %s and %s", c.ID, target.ID)
	}
	return out, nil
}

func (e *Engine) grapple(c *CombatantState, a Grapple) (*ActionResult, error) {
	target, reason := e.maneuverCheck(c, a.Target)
	if reason != "" {
		return e.reject("%s", reason), nil
	}
	if target.GrappledBy == c.ID {
		return e.reject("%s is already grappling %s", c.Name, target.Name), nil
	}

	out, err := e.contest(c, target)
	if err != nil {
		return nil, err
	}
	e.commitAttack()

	data := map[string]any{
		"maneuver":       "grapple",
		"target":         target.ID,
		"attacker_total": out.AttackerTotal,
		"defender_total": out.DefenderTotal,
		"success":        out.AttackerWins,
	}
	result := &ActionResult{Success: true, TargetID: target.ID, ExtraData: data}
	if !out.AttackerWins {
		result.Description = fmt.Sprintf("%s fails to grapple %s (%d vs %d)", c.Name, target.Name, out.AttackerTotal, out.DefenderTotal)
		e.event(EventManeuver, c.ID, result.Description, data)
		return result, nil
	}

	if previous, ok := e.state.Combatants[target.GrappledBy]; ok {
		e.releaseGrapple(previous, target, "grabbed by "+c.Name)
	}
	target.GrappledBy = c.ID
	target.addCondition(conditions.Grappled)
	c.Grappling = append(c.Grappling, target.ID)

	result.Description = fmt.Sprintf("%s grapples %s (%d vs %d)", c.Name, target.Name, out.AttackerTotal, out.DefenderTotal)
	result.EffectsApplied = []string{string(conditions.Grappled)}
	e.event(EventManeuver, c.ID, result.Description, data)
	return result, nil
}

func (e *Engine) shove(c *CombatantState, a Shove) (*ActionResult, error) {
	mode := a.Mode
	if mode == "" {
		mode = ShoveProne
	}
	if mode != ShoveProne && mode != ShovePush {
		return e.reject("unknown shove mode %q", a.Mode), nil
	}
	target, reason := e.maneuverCheck(c, a.Target)
	if reason != "" {
		return e.reject("%s", reason), nil
	}

	var dest grid.Position
	if mode == ShovePush {
		dest = grid.PushDestination(e.state.Positions[c.ID], e.state.Positions[target.ID], 1)
		if !e.canBeDisplacedTo(target, dest) {
			return e.reject("there is no room to push %s to %s", target.Name, dest), nil
		}
	}

	out, err := e.contest(c, target)
	if err != nil {
		return nil, err
	}
	e.commitAttack()

	data := map[string]any{
		"maneuver":       "shove",
		"mode":           string(mode),
		"target":         target.ID,
		"attacker_total": out.AttackerTotal,
		"defender_total": out.DefenderTotal,
		"success":        out.AttackerWins,
	}
	result := &ActionResult{Success: true, TargetID: target.ID, ExtraData: data}
	if !out.AttackerWins {
		result.Description = fmt.Sprintf("%s fails to shove %s (%d vs %d)", c.Name, target.Name, out.AttackerTotal, out.DefenderTotal)
		e.event(EventManeuver, c.ID, result.Description, data)
		return result, nil
	}

	switch mode {
	case ShoveProne:
		target.addCondition(conditions.Prone)
		result.Description = fmt.Sprintf("%s shoves %s prone", c.Name, target.Name)
		result.EffectsApplied = []string{string(conditions.Prone)}
		e.event(EventManeuver, c.ID, result.Description, data)
	case ShovePush:
		result.Description = fmt.Sprintf("%s shoves %s to %s", c.Name, target.Name, dest)
		result.EffectsApplied = []string{"pushed"}
		data["destination"] = dest.String()
		e.event(EventManeuver, c.ID, result.Description, data)
		dealt, err := e.displace(target, dest)
		if err != nil {
			return nil, err
		}
		result.DamageDealt = dealt
	}
	return result, nil
}

func (e *Engine) escape(c *CombatantState) (*ActionResult, error) {
	if reason := e.actionSpent(); reason != "" {
		return e.reject("%s", reason), nil
	}
	grappler, ok := e.state.Combatants[c.GrappledBy]
	if !ok {
		return e.reject("%s is not grappled", c.Name), nil
	}

	out, err := e.resolver.Contest(escapeModifier(c), grappler.skillModifier(rules.Athletics))
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to roll escape for %s", c.ID)
	}
	e.commitAction()

	data := map[string]any{
		"maneuver":       "escape",
		"grappler":       grappler.ID,
		"attacker_total": out.AttackerTotal,
		"defender_total": out.DefenderTotal,
		"success":        out.AttackerWins,
	}
	result := &ActionResult{Success: true, TargetID: grappler.ID, ExtraData: data}
	if !out.AttackerWins {
		result.Description = fmt.Sprintf("%s fails to escape %s (%d vs %d)", c.Name, grappler.Name, out.AttackerTotal, out.DefenderTotal)
		e.event(EventManeuver, c.ID, result.Description, data)
		return result, nil
	}
	result.Description = fmt.Sprintf("%s escapes %s (%d vs %d)", c.Name, grappler.Name, out.AttackerTotal, out.DefenderTotal)
	e.event(EventManeuver, c.ID, result.Description, data)
	e.releaseGrapple(grappler, c, "escaped")
	return result, nil
}

// canBeDisplacedTo reports whether c can be forced into p
func (e *Engine) canBeDisplacedTo(c *CombatantState, p grid.Position) bool {
	if !e.state.Grid.Walkable(p) {
		return false
	}
	id, taken := e.occupant(p)
	return !taken || id == c.ID
}

// push forces target up to cells squares directly away from att, stopping
// early at anything in the way or at the edge of a pit
func (e *Engine) push(att, target *CombatantState, cells int) (grid.Position, error) {
	source, start := e.state.Positions[att.ID], e.state.Positions[target.ID]
	dest := start
	for step := 1; step <= cells; step++ {
		next := grid.PushDestination(source, start, step)
		if !e.canBeDisplacedTo(target, next) {
			break
		}
		dest = next
		if e.state.Grid.Cell(next).Terrain == grid.TerrainPit {
			break
		}
	}
	if dest == start {
		return dest, nil
	}
	e.event(EventMove, target.ID, fmt.Sprintf("%s is pushed to %s", target.Name, dest), map[string]any{
		"from":   start.String(),
		"to":     dest.String(),
		"forced": true,
	})
	_, err := e.displace(target, dest)
	return dest, err
}

// displace moves c to dest outside its own movement and resolves falls and
// hazards there. It returns the damage taken.
func (e *Engine) displace(c *CombatantState, dest grid.Position) (int, error) {
	fromCell := e.state.Grid.Cell(e.state.Positions[c.ID])
	e.state.Positions[c.ID] = dest
	e.checkGrappleDistance(c)

	toCell := e.state.Grid.Cell(dest)
	dealt := 0

	fall := 0
	switch {
	case toCell.Terrain == grid.TerrainPit:
		fall = toCell.Depth
	case fromCell.Elevation-toCell.Elevation >= 10:
		fall = fromCell.Elevation - toCell.Elevation
	}
	if fall > 0 {
		n, err := e.fall(c, fall)
		if err != nil {
			return dealt, err
		}
		dealt += n
	}

	if toCell.Hazard != nil && e.registry.IsActive(c.ID) {
		n, err := e.hazard(c, toCell)
		if err != nil {
			return dealt, err
		}
		dealt += n
	}
	return dealt, nil
}

func (e *Engine) fall(c *CombatantState, feet int) (int, error) {
	expr := grid.FallDamage(feet)
	amount := 0
	if !expr.IsZero() {
		roll, err := e.resolver.RollDamage(expr, false)
		if err != nil {
			return 0, dnderr.Wrap(err, "failed to roll fall damage")
		}
		amount = roll.Total
	}
	report, err := e.damage(c, amount, rules.Bludgeoning, false)
	if err != nil {
		return 0, err
	}
	if e.registry.IsActive(c.ID) {
		c.addCondition(conditions.Prone)
	}
	e.event(EventHazard, c.ID, fmt.Sprintf("%s falls %d ft and takes %d damage", c.Name, feet, report.Dealt), map[string]any{
		"hazard": "fall",
		"feet":   feet,
		"damage": report.Dealt,
	})
	return report.Dealt, nil
}

func (e *Engine) hazard(c *CombatantState, cell grid.Cell) (int, error) {
	roll, err := e.resolver.RollDamage(cell.Hazard.Damage, false)
	if err != nil {
		return 0, dnderr.Wrapf(err, "failed to roll %s damage", cell.Hazard.Name)
	}
	report, err := e.damage(c, roll.Total, rules.DamageType(cell.Hazard.DamageType), false)
	if err != nil {
		return 0, err
	}
	e.event(EventHazard, c.ID, fmt.Sprintf("%s takes %d %s damage from %s", c.Name, report.Dealt, cell.Hazard.DamageType, cell.Hazard.Name), map[string]any{
		"hazard":      cell.Hazard.Name,
		"damage":      report.Dealt,
		"damage_type": cell.Hazard.DamageType,
		"position":    cell.Position.String(),
	})
	return report.Dealt, nil
}

// checkGrappleDistance breaks grapples stretched beyond five feet by c moving
func (e *Engine) checkGrappleDistance(c *CombatantState) {
	for _, id := range append([]string(nil), c.Grappling...) {
		if target, ok := e.state.Combatants[id]; ok && e.distance(c.ID, id) > 5 {
			e.releaseGrapple(c, target, "moved out of reach")
		}
	}
	if grappler, ok := e.state.Combatants[c.GrappledBy]; ok && e.distance(c.ID, grappler.ID) > 5 {
		e.releaseGrapple(grappler, c, "moved out of reach")
	}
}
