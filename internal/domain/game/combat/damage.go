package combat

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/conditions"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

type damageReport struct {
	Dealt   int
	Dropped bool
	Died    bool
	// ConcentrationDC is set when the damage forced a concentration save
	ConcentrationDC     int
	ConcentrationBroken bool
}

// damage applies one damage instance: resistances, hit points, dropping to
// zero and then the concentration save
func (e *Engine) damage(target *CombatantState, amount int, dtype rules.DamageType, critical bool) (damageReport, error) {
	var report damageReport
	if amount <= 0 || target.DeathSaves.Dead {
		return report, nil
	}

	wasDown := target.HP == 0
	out := e.resolver.ApplyDamage(rules.DamageInput{
		HP:         target.HP,
		MaxHP:      target.MaxHP,
		Damage:     amount,
		Resistant:  target.resists(dtype),
		Immune:     target.immune(dtype),
		Vulnerable: target.vulnerable(dtype),
	})
	report.Dealt = out.Dealt
	if out.Dealt == 0 {
		return report, nil
	}
	target.TookDamage = true
	target.HP = out.HP

	switch {
	case wasDown && target.isPlayer():
		e.damageWhileDown(target, out.Dealt, critical)
		report.Died = target.DeathSaves.Dead
		return report, nil
	case !wasDown && out.HP == 0:
		report.Dropped = true
		massive := target.isPlayer() && out.Overflow >= target.MaxHP
		e.dropToZero(target, massive)
		report.Died = target.DeathSaves.Dead || !target.isPlayer()
		return report, nil
	}

	if target.Concentration != "" {
		dc, broken, err := e.concentrationCheck(target, out.Dealt)
		if err != nil {
			return report, err
		}
		report.ConcentrationDC, report.ConcentrationBroken = dc, broken
	}
	return report, nil
}

// damageWhileDown adds death save failures to a player already at 0 hp
func (e *Engine) damageWhileDown(c *CombatantState, dealt int, critical bool) {
	if dealt >= c.MaxHP {
		e.kill(c, "massive damage while down")
		return
	}
	c.DeathSaves.Stable = false
	failures := 1
	if critical {
		failures = 2
	}
	c.DeathSaves.Failures += failures
	e.event(EventDeathSave, c.ID, fmt.Sprintf("%s suffers %d death save failure(s) from damage", c.Name, failures), map[string]any{
		"failures":  c.DeathSaves.Failures,
		"successes": c.DeathSaves.Successes,
		"damage":    dealt,
	})
	if c.DeathSaves.Failures >= 3 {
		e.kill(c, "three failed death saves")
	}
}

// dropToZero handles a combatant reaching 0 hp. Monsters leave the fight;
// players fall unconscious unless dead is set.
func (e *Engine) dropToZero(c *CombatantState, dead bool) {
	c.HP = 0
	e.endRage(c, "dropped to 0 hit points")
	e.endConcentration(c, "dropped to 0 hit points")
	e.releaseGrapples(c, "dropped to 0 hit points")

	if !c.isPlayer() {
		e.registry.SetActive(c.ID, false)
		e.registry.SetConscious(c.ID, false)
		e.event(EventCombatantDied, c.ID, c.Name+" is slain", nil)
		return
	}
	if dead {
		e.kill(c, "massive damage")
		return
	}

	e.registry.SetConscious(c.ID, false)
	c.DeathSaves = DeathSaves{}
	c.addCondition(conditions.Unconscious)
	c.addCondition(conditions.Prone)
	e.event(EventCombatantDown, c.ID, c.Name+" falls unconscious", nil)
}

func (e *Engine) kill(c *CombatantState, reason string) {
	c.HP = 0
	c.DeathSaves.Dead = true
	c.DeathSaves.Stable = false
	e.endRage(c, "died")
	e.endConcentration(c, "died")
	e.releaseGrapples(c, "died")
	e.registry.SetActive(c.ID, false)
	e.registry.SetConscious(c.ID, false)
	e.event(EventCombatantDied, c.ID, fmt.Sprintf("%s dies (%s)", c.Name, reason), map[string]any{"reason": reason})
	e.logger.Debug("combatant died", zap.String("combatant_id", c.ID), zap.String("reason", reason))
}

// heal restores hit points, reviving an unconscious player
func (e *Engine) heal(c *CombatantState, amount int) int {
	before := c.HP
	c.HP = rules.Heal(c.HP, c.MaxHP, amount)
	if before == 0 && c.HP > 0 {
		e.revive(c)
	}
	return c.HP - before
}

func (e *Engine) revive(c *CombatantState) {
	c.DeathSaves = DeathSaves{}
	c.removeCondition(conditions.Unconscious)
	e.registry.SetConscious(c.ID, true)
}

// deathSave rolls one death saving throw for a player at 0 hp
func (e *Engine) deathSave(c *CombatantState) error {
	roll, err := e.resolver.RollD20(0, false, false)
	if err != nil {
		return dnderr.Wrapf(err, "failed to roll death save for %s", c.ID)
	}
	natural := roll.Natural()

	var outcome string
	switch {
	case natural == 20:
		c.HP = 1
		e.revive(c)
		outcome = "regains 1 hit point"
	case natural == 1:
		c.DeathSaves.Failures += 2
		outcome = "fails twice"
	case natural >= 10:
		c.DeathSaves.Successes++
		outcome = "succeeds"
	default:
		c.DeathSaves.Failures++
		outcome = "fails"
	}

	e.event(EventDeathSave, c.ID, fmt.Sprintf("%s rolls a death save (%d) and %s", c.Name, natural, outcome), map[string]any{
		"natural":   natural,
		"successes": c.DeathSaves.Successes,
		"failures":  c.DeathSaves.Failures,
	})

	switch {
	case c.DeathSaves.Failures >= 3:
		e.kill(c, "three failed death saves")
	case c.DeathSaves.Successes >= 3:
		c.DeathSaves.Stable = true
		e.event(EventDeathSave, c.ID, c.Name+" is stable", map[string]any{"stable": true})
	}
	return nil
}

// concentrationCheck rolls the CON save forced by damage and reports the DC
// and whether concentration broke
func (e *Engine) concentrationCheck(c *CombatantState, damage int) (int, bool, error) {
	dc := rules.ConcentrationDC(damage)
	mods := e.conditions.SaveModifiers(c.Conditions, c.Exhaustion, rules.Constitution)
	save, err := e.resolver.SavingThrow(rules.SaveInput{
		Modifier:     c.saveModifier(rules.Constitution),
		DC:           dc,
		Advantage:    mods.Advantage || c.hasFeat(FeatWarCaster),
		Disadvantage: mods.Disadvantage,
		AutoFail:     mods.AutoFail,
	})
	if err != nil {
		return 0, false, dnderr.Wrapf(err, "failed to roll concentration for %s", c.ID)
	}

	spell := c.Concentration
	e.event(EventConcentration, c.ID, fmt.Sprintf("%s makes a DC %d concentration save for %s: %d", c.Name, dc, spell, save.Total), map[string]any{
		"spell":   spell,
		"dc":      dc,
		"damage":  damage,
		"total":   save.Total,
		"success": save.Success,
	})
	if !save.Success {
		c.Concentration = ""
	}
	return dc, !save.Success, nil
}

func (e *Engine) endConcentration(c *CombatantState, reason string) {
	if c.Concentration == "" {
		return
	}
	spell := c.Concentration
	c.Concentration = ""
	e.event(EventConcentration, c.ID, fmt.Sprintf("%s loses concentration on %s: %s", c.Name, spell, reason), map[string]any{
		"spell":  spell,
		"reason": reason,
	})
}

// releaseGrapples breaks every grapple c is part of
func (e *Engine) releaseGrapples(c *CombatantState, reason string) {
	for _, id := range slices.Clone(c.Grappling) {
		if target, ok := e.state.Combatants[id]; ok {
			e.releaseGrapple(c, target, reason)
		}
	}
	if grappler, ok := e.state.Combatants[c.GrappledBy]; ok {
		e.releaseGrapple(grappler, c, reason)
	}
}

func (e *Engine) releaseGrapple(grappler, target *CombatantState, reason string) {
	grappler.Grappling = slices.DeleteFunc(grappler.Grappling, func(id string) bool { return id == target.ID })
	if len(grappler.Grappling) == 0 {
		grappler.Grappling = nil
	}
	if target.GrappledBy == grappler.ID {
		target.GrappledBy = ""
		target.removeCondition(conditions.Grappled)
	}
	e.event(EventGrappleReleased, target.ID, fmt.Sprintf("%s is no longer grappled by %s (%s)", target.Name, grappler.Name, reason), map[string]any{
		"grappler": grappler.ID,
		"reason":   reason,
	})
}
