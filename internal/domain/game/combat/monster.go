package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/monster"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

// rollRecharge rolls a d6 for each of c's abilities on cooldown
func (e *Engine) rollRecharge(c *CombatantState) error {
	pool := e.state.Recharge[c.ID]
	for _, ability := range c.AreaAbilities {
		if ability.Recharge <= 0 {
			continue
		}
		available, seen := pool[ability.ID]
		if !seen || available {
			continue
		}
		roll, err := e.roller.Roll(1, 6, 0)
		if err != nil {
			return dnderr.Wrapf(err, "failed to roll recharge for %s", ability.ID)
		}
		recharged := roll.Total >= ability.Recharge
		if recharged {
			pool[ability.ID] = true
		}
		e.event(EventRecharge, c.ID, fmt.Sprintf("%s rolls %d to recharge %s", c.Name, roll.Total, ability.Name), map[string]any{
			"ability":   ability.ID,
			"roll":      roll.Total,
			"needed":    ability.Recharge,
			"recharged": recharged,
		})
	}
	return nil
}

// abilityAvailable reports whether an area ability is off cooldown. Abilities
// that were never used are available.
func (e *Engine) abilityAvailable(monsterID, abilityID string) bool {
	available, seen := e.state.Recharge[monsterID][abilityID]
	return !seen || available
}

func (e *Engine) multiattack(c *CombatantState, a Multiattack) (*ActionResult, error) {
	if reason := e.actionSpent(); reason != "" {
		return e.reject("%s", reason), nil
	}
	if len(c.Multiattack) == 0 {
		return e.reject("%s has no multiattack", c.Name), nil
	}
	target, reason := e.targetOf(c, a.Target)
	if reason != "" {
		return e.reject("%s", reason), nil
	}

	// Validate the first swing so a routine that cannot start changes nothing
	first, ok := monster.FindAction(c.Actions, c.Multiattack[0])
	if !ok {
		return e.reject("%s has no action %s", c.Name, c.Multiattack[0]), nil
	}
	if dist := e.distance(c.ID, target.ID); dist > first.MaxRange() {
		return e.reject("%s is out of range (%d ft, %s reaches %d ft)", target.Name, dist, first.Name, first.MaxRange()), nil
	}

	e.commitAction()
	result := &ActionResult{Success: true, TargetID: target.ID, ExtraData: map[string]any{}}
	var attacks []map[string]any
	hits := 0
	for _, key := range c.Multiattack {
		if !e.registry.IsActive(target.ID) {
			break
		}
		action, ok := monster.FindAction(c.Actions, key)
		if !ok {
			continue
		}
		report, reason, err := e.resolveAttack(c, target, actionProfile(action), attackOptions{})
		if err != nil {
			return nil, err
		}
		if reason != "" {
			attacks = append(attacks, map[string]any{"action": key, "skipped": reason})
			continue
		}
		sub := attackResult(c, report)
		e.event(EventAttack, c.ID, sub.Description, sub.ExtraData)
		attacks = append(attacks, sub.ExtraData)
		result.DamageDealt += report.Damage.Dealt
		if report.Outcome.Hit {
			hits++
		}
		if target.HP == 0 {
			break
		}
	}

	result.Description = fmt.Sprintf("%s multiattacks %s: %d of %d hit for %d damage", c.Name, target.Name, hits, len(attacks), result.DamageDealt)
	result.ExtraData["attacks"] = attacks
	result.ExtraData["hits"] = hits
	e.event(EventMultiattack, c.ID, result.Description, map[string]any{
		"target": target.ID,
		"hits":   hits,
		"damage": result.DamageDealt,
	})
	return result, nil
}

func (e *Engine) useAbility(c *CombatantState, a UseAbility) (*ActionResult, error) {
	if reason := e.actionSpent(); reason != "" {
		return e.reject("%s", reason), nil
	}
	ability, ok := monster.FindAreaAbility(c.AreaAbilities, a.Ability)
	if !ok {
		return e.reject("%s has no ability %s", c.Name, a.Ability), nil
	}
	if !e.abilityAvailable(c.ID, ability.ID) {
		return e.reject("%s is recharging", ability.Name), nil
	}
	area, reason := e.aimArea(c, ability, a.Target, a.Point)
	if reason != "" {
		return e.reject("%s", reason), nil
	}

	e.commitAction()
	result, err := e.resolveArea(c, ability, area, EventMonsterAbility)
	if err != nil {
		return nil, err
	}
	if ability.Recharge > 0 {
		if e.state.Recharge[c.ID] == nil {
			e.state.Recharge[c.ID] = make(map[string]bool)
		}
		e.state.Recharge[c.ID][ability.ID] = false
	}
	return result, nil
}

// aimArea builds the area for an ability aimed at a combatant or a point
func (e *Engine) aimArea(c *CombatantState, ability *monster.AreaAbility, targetID string, point grid.Position) (grid.Area, string) {
	if targetID != "" {
		t, ok := e.state.Combatants[targetID]
		if !ok {
			return grid.Area{}, "unknown target " + targetID
		}
		point = e.state.Positions[t.ID]
	}
	origin := e.state.Positions[c.ID]

	switch ability.Shape {
	case grid.ShapeSphere:
		if dist := grid.Distance(origin, point); dist > ability.Range {
			return grid.Area{}, fmt.Sprintf("%s is out of range (%d ft, range %d ft)", point, dist, ability.Range)
		}
		return grid.Area{Shape: grid.ShapeSphere, Size: ability.Size, Origin: point}, ""
	case grid.ShapeCone, grid.ShapeLine:
		if point == origin {
			return grid.Area{}, ability.Name + " needs a direction"
		}
		return grid.Area{Shape: ability.Shape, Size: ability.Size, Origin: origin, Toward: point}, ""
	}
	return grid.Area{}, fmt.Sprintf("%s has unknown shape %q", ability.Name, ability.Shape)
}

// resolveArea rolls damage once and applies it to everyone in the area
// except the user
func (e *Engine) resolveArea(c *CombatantState, ability *monster.AreaAbility, area grid.Area, typ EventType) (*ActionResult, error) {
	roll, err := e.resolver.RollDamage(ability.Damage, false)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to roll damage for %s", ability.ID)
	}

	candidates := make(map[string]grid.Position)
	for id, p := range e.state.Positions {
		if id != c.ID && e.registry.IsActive(id) {
			candidates[id] = p
		}
	}

	result := &ActionResult{Success: true, ExtraData: map[string]any{}}
	targets := map[string]any{}
	for _, id := range grid.Within(area, candidates) {
		target := e.state.Combatants[id]
		amount := roll.Total
		saved := false
		if ability.HasSave() {
			saved, err = e.save(target, ability.SaveAbility, ability.DC)
			if err != nil {
				return nil, err
			}
			if saved {
				if ability.HalfOnSave {
					amount /= 2
				} else {
					amount = 0
				}
			}
		}
		report, err := e.damage(target, amount, ability.DamageType, false)
		if err != nil {
			return nil, err
		}
		result.DamageDealt += report.Dealt
		entry := map[string]any{"damage": report.Dealt, "saved": saved}
		if report.ConcentrationDC > 0 {
			entry["concentration_dc"] = report.ConcentrationDC
			entry["concentration_broken"] = report.ConcentrationBroken
		}
		targets[id] = entry
	}

	result.Description = fmt.Sprintf("%s uses %s, hitting %d creature(s) for %d total damage", c.Name, ability.Name, len(targets), result.DamageDealt)
	result.ExtraData["ability"] = ability.ID
	result.ExtraData["rolled"] = roll.Total
	result.ExtraData["targets"] = targets
	result.ExtraData["shape"] = string(area.Shape)
	e.event(typ, c.ID, result.Description, result.ExtraData)
	return result, nil
}

// ExecuteLegendaryAction spends a monster's legendary pool outside its own
// turn. target is a combatant id for attack and move options; area options
// are aimed at it.
func (e *Engine) ExecuteLegendaryAction(monsterID, actionID, target string) (*ActionResult, error) {
	if e.state.Phase != PhaseActive || e.state.Turn == nil {
		return e.reject("combat is not active"), nil
	}
	c, ok := e.state.Combatants[monsterID]
	if !ok {
		return e.reject("unknown combatant %s", monsterID), nil
	}
	if e.state.Turn.CombatantID == monsterID {
		return e.reject("cannot use legendary actions on its own turn"), nil
	}
	if !e.standing(c) || e.conditions.IsIncapacitated(c.Conditions) {
		return e.reject("%s cannot act", c.Name), nil
	}
	var option *monster.LegendaryAction
	for _, la := range c.LegendaryActions {
		if la.ID == actionID {
			option = la
			break
		}
	}
	if option == nil {
		return e.reject("%s has no legendary action %s", c.Name, actionID), nil
	}
	if option.Cost > e.state.LegendaryRemaining[monsterID] {
		return e.reject("not enough legendary actions"), nil
	}

	var (
		result *ActionResult
		reason string
		err    error
	)
	switch option.Kind {
	case monster.LegendaryAttack:
		result, reason, err = e.legendaryAttack(c, option, target)
	case monster.LegendaryAbility:
		result, reason, err = e.legendaryAbility(c, option, target)
	case monster.LegendaryMove:
		result, reason, err = e.legendaryMove(c, target)
	default:
		reason = fmt.Sprintf("legendary action %s has unknown kind %q", option.ID, option.Kind)
	}
	if err != nil {
		return nil, err
	}
	if reason != "" {
		return e.reject("%s", reason), nil
	}

	e.state.LegendaryRemaining[monsterID] -= option.Cost
	result.ExtraData["legendary_action"] = option.ID
	result.ExtraData["cost"] = option.Cost
	result.ExtraData["remaining"] = e.state.LegendaryRemaining[monsterID]
	e.event(EventLegendaryAction, c.ID, fmt.Sprintf("%s uses %s (%d left)", c.Name, option.Name, e.state.LegendaryRemaining[monsterID]), map[string]any{
		"legendary_action": option.ID,
		"cost":             option.Cost,
		"remaining":        e.state.LegendaryRemaining[monsterID],
		"target":           target,
	})
	e.logger.Debug("legendary action",
		zap.String("combatant_id", c.ID),
		zap.String("action", option.ID),
		zap.Int("remaining", e.state.LegendaryRemaining[monsterID]))
	return result, nil
}

func (e *Engine) legendaryAttack(c *CombatantState, option *monster.LegendaryAction, targetID string) (*ActionResult, string, error) {
	action, ok := monster.FindAction(c.Actions, option.Ref)
	if !ok {
		return nil, fmt.Sprintf("%s has no action %s", c.Name, option.Ref), nil
	}
	target, reason := e.targetOf(c, targetID)
	if reason != "" {
		return nil, reason, nil
	}
	report, reason, err := e.resolveAttack(c, target, actionProfile(action), attackOptions{Opportunity: true})
	if err != nil || reason != "" {
		return nil, reason, err
	}
	result := attackResult(c, report)
	e.event(EventAttack, c.ID, result.Description, result.ExtraData)
	return result, "", nil
}

func (e *Engine) legendaryAbility(c *CombatantState, option *monster.LegendaryAction, targetID string) (*ActionResult, string, error) {
	ability, ok := monster.FindAreaAbility(c.AreaAbilities, option.Ref)
	if !ok {
		return nil, fmt.Sprintf("%s has no ability %s", c.Name, option.Ref), nil
	}
	if targetID == "" {
		return nil, "a target is required", nil
	}
	area, reason := e.aimArea(c, ability, targetID, grid.Position{})
	if reason != "" {
		return nil, reason, nil
	}
	result, err := e.resolveArea(c, ability, area, EventMonsterAbility)
	return result, "", err
}

// legendaryMove moves up to half speed toward a combatant without provoking
func (e *Engine) legendaryMove(c *CombatantState, targetID string) (*ActionResult, string, error) {
	target, reason := e.targetOf(c, targetID)
	if reason != "" {
		return nil, reason, nil
	}
	from := e.state.Positions[c.ID]
	path, _, ok := e.state.Grid.FindPath(from, e.state.Positions[target.ID], e.passableFor(c))
	if !ok {
		return nil, "no path to " + target.Name, nil
	}
	path = path[:len(path)-1]

	budget := e.effectiveSpeed(c) / 2
	spent, steps := 0, 0
	for i, p := range path {
		cost := e.state.Grid.StepCost(p)
		if spent+cost > budget {
			break
		}
		spent += cost
		if _, taken := e.occupant(p); !taken {
			steps = i + 1
		}
	}
	if steps == 0 {
		return nil, c.Name + " cannot move any closer", nil
	}

	walked, err := e.walk(c, path[:steps], false)
	if err != nil {
		return nil, "", err
	}
	end := e.state.Positions[c.ID]
	desc := fmt.Sprintf("%s moves from %s to %s", c.Name, from, end)
	data := map[string]any{
		"from":      from.String(),
		"to":        end.String(),
		"path":      positionStrings(walked.Path),
		"cost":      walked.Spent,
		"legendary": true,
	}
	e.event(EventMove, c.ID, desc, data)
	return &ActionResult{Success: true, Description: desc, TargetID: target.ID, DamageDealt: walked.Damage, ExtraData: data}, "", nil
}
