package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/KirkDiggler/dnd-tactics/internal/dice"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/conditions"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/monster"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rulebook"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

// weaponProfile is everything the attack pipeline needs about one attack
// option, whether it comes from the weapon catalog or a monster stat block
type weaponProfile struct {
	Key         string
	Name        string
	Damage      dice.Expression
	DamageType  rules.DamageType
	AttackBonus int
	Ability     rules.Ability
	AbilityMod  int
	Reach       int
	NormalRange int
	MaxRange    int
	Ranged      bool
	Ammunition  string
	// Weapon is nil for monster actions
	Weapon *equipment.Weapon
}

func (w *weaponProfile) has(prop string) bool {
	return w.Weapon != nil && w.Weapon.HasProperty(prop)
}

func (w *weaponProfile) mastery() string {
	if w.Weapon == nil {
		return ""
	}
	return w.Weapon.Mastery
}

// lookupWeapon resolves a weapon key for c. Monsters check their own action
// list first; an empty key means the main hand, or a monster's first action.
// A non-empty reason means the weapon is unknown.
func (e *Engine) lookupWeapon(c *CombatantState, key string) (*weaponProfile, string, error) {
	if key == "" {
		switch {
		case c.MainHand != "":
			key = c.MainHand
		case len(c.Actions) > 0:
			key = c.Actions[0].Key
		default:
			key = equipment.WeaponKeyUnarmedStrike
		}
	}
	if action, ok := monster.FindAction(c.Actions, key); ok {
		return actionProfile(action), "", nil
	}

	w, err := e.weapons.Weapon(key)
	if err != nil {
		if !dnderr.IsNotFound(err) {
			return nil, "", dnderr.Wrapf(err, "failed to look up weapon %s", key)
		}
		if key != equipment.WeaponKeyUnarmedStrike {
			return nil, "unknown weapon " + key, nil
		}
		w = &equipment.Weapon{
			Key:         equipment.WeaponKeyUnarmedStrike,
			Name:        "Unarmed Strike",
			Category:    "simple",
			WeaponRange: "melee",
			Damage:      dice.Expression{Bonus: 1},
			DamageType:  rules.Bludgeoning,
		}
	}
	return e.weaponProfileFor(c, w), "", nil
}

func actionProfile(a *monster.Action) *weaponProfile {
	p := &weaponProfile{
		Key:         a.Key,
		Name:        a.Name,
		Damage:      a.Damage,
		DamageType:  a.DamageType,
		AttackBonus: a.AttackBonus,
		Ability:     rules.Strength,
		Reach:       5,
		NormalRange: a.NormalRange(),
		MaxRange:    a.MaxRange(),
		Ranged:      a.Ranged,
	}
	if !a.Ranged {
		p.Reach = a.MaxRange()
	}
	return p
}

func (e *Engine) weaponProfileFor(c *CombatantState, w *equipment.Weapon) *weaponProfile {
	ability := w.AttackAbility(c.Abilities)
	damage := w.Damage

	if c.isClass(rulebook.ClassMonk, 1) && w.IsMonkWeapon() {
		if c.Abilities.Modifier(rules.Dexterity) > c.Abilities.Modifier(ability) {
			ability = rules.Dexterity
		}
		if die := e.features.MartialArtsDie(c.Level); damage.Count <= 1 && damage.Sides < die {
			damage = dice.Expression{Count: 1, Sides: die}
		}
	}

	mod := c.Abilities.Modifier(ability)
	p := &weaponProfile{
		Key:         w.Key,
		Name:        w.Name,
		Damage:      damage,
		DamageType:  w.DamageType,
		AttackBonus: c.ProficiencyBonus + mod + w.MagicBonus,
		Ability:     ability,
		AbilityMod:  mod,
		Reach:       w.Reach(),
		NormalRange: w.NormalRange(),
		MaxRange:    w.MaxRange(),
		Ranged:      w.IsRanged(),
		Weapon:      w,
	}
	if w.UsesAmmunition() {
		p.Ammunition = w.Ammunition
	}
	return p
}

// attackOptions select the reduced forms of the pipeline
type attackOptions struct {
	// Opportunity attacks skip ammunition, sneak attack and mastery
	Opportunity bool
	OffHand     bool
	// Cleave is the extra swing from the cleave mastery
	Cleave bool
}

type attackReport struct {
	Outcome      *rules.AttackOutcome
	Target       *CombatantState
	Weapon       *weaponProfile
	Ranged       bool
	Advantage    bool
	Disadvantage bool
	Cover        grid.Cover
	SneakAttack  int
	RageBonus    int
	Damage       damageReport
	Effects      []string
	Extra        map[string]any
}

// resolveAttack runs the attack pipeline. Every rejection happens before
// anything is mutated; a non-empty reason means nothing changed.
func (e *Engine) resolveAttack(att, tgt *CombatantState, w *weaponProfile, opts attackOptions) (*attackReport, string, error) {
	from, to := e.state.Positions[att.ID], e.state.Positions[tgt.ID]
	dist := grid.Distance(from, to)
	if dist > w.MaxRange {
		return nil, fmt.Sprintf("%s is out of range (%d ft, %s reaches %d ft)", tgt.Name, dist, w.Name, w.MaxRange), nil
	}
	ranged := w.Ranged || dist > w.Reach

	useAmmo := !opts.Opportunity && w.Ammunition != ""
	if useAmmo && !e.ammo.Available(att.ID, w.Ammunition) {
		return nil, fmt.Sprintf("%s is out of %s ammunition", att.Name, w.Ammunition), nil
	}

	cover := e.state.Grid.CoverBetween(from, to, func(p grid.Position) bool {
		id, ok := e.occupant(p)
		return ok && id != att.ID && id != tgt.ID
	})
	if cover == grid.CoverTotal {
		return nil, tgt.Name + " has total cover", nil
	}
	if ranged && att.hasFeat(FeatSharpshooter) {
		cover = grid.CoverNone
	}

	if useAmmo {
		if err := e.ammo.Consume(att.ID, w.Ammunition); err != nil {
			return nil, "", dnderr.Wrapf(err, "failed to consume %s for %s", w.Ammunition, att.ID)
		}
	}

	turn := e.state.Turn
	onTurn := turn != nil && turn.CombatantID == att.ID && !opts.Opportunity
	report := &attackReport{Target: tgt, Weapon: w, Ranged: ranged, Cover: cover, Extra: map[string]any{}}

	var adv, dis bool
	if ranged && dist > w.NormalRange {
		dis = true
		report.Effects = append(report.Effects, "long range")
	}
	if ranged && !att.hasFeat(FeatCrossbowExpert) && len(e.hostilesWithin(att, from, 5)) > 0 {
		dis = true
		report.Effects = append(report.Effects, "ranged attack in melee")
	}
	if att.VexTarget == tgt.ID {
		adv = true
		att.VexTarget, att.VexExpires = "", 0
		report.Effects = append(report.Effects, "vex")
	}
	if att.SteadyAim {
		adv = true
		att.SteadyAim = false
		report.Effects = append(report.Effects, "steady aim")
	}
	mods := e.conditions.AttackModifiers(conditions.AttackContext{
		Attacker:           att.Conditions,
		AttackerExhaustion: att.Exhaustion,
		Target:             tgt.Conditions,
		WithinFiveFeet:     dist <= 5,
	})
	adv = adv || mods.Advantage
	dis = dis || mods.Disadvantage
	if att.has(Helped) {
		adv = true
	}
	if att.Size <= rules.SizeSmall && w.has(equipment.PropertyHeavy) {
		dis = true
		report.Effects = append(report.Effects, "heavy weapon")
	}

	fresh := e.state.Round == 1 && (tgt.Surprised || !e.hasActed(tgt.ID))
	assassinate := e.subclasses.Assassinate(att.Class, att.Subclass, att.Level) && fresh
	if assassinate {
		adv = true
		report.Effects = append(report.Effects, "assassinate")
	}
	autoCrit := assassinate || (dist <= 5 && (tgt.has(conditions.Unconscious) || tgt.has(conditions.Paralyzed)))

	for _, token := range []conditions.Type{conditions.Hidden, conditions.Sapped, Helped} {
		att.removeCondition(token)
	}
	report.Advantage, report.Disadvantage = adv, dis

	mod := w.AbilityMod
	if mod > 0 && (opts.Cleave || (opts.OffHand && !att.hasFeat(FeatTwoWeaponFighter))) {
		mod = 0
	}
	damage := w.Damage
	if w.Weapon != nil {
		damage.Bonus += mod + w.Weapon.MagicBonus
	}

	outcome, err := e.resolver.ResolveAttack(rules.AttackInput{
		AttackBonus:       w.AttackBonus + e.state.Grid.ElevationModifier(from, to),
		TargetAC:          tgt.AC + cover.ACBonus(),
		Damage:            damage,
		DamageType:        w.DamageType,
		Advantage:         adv,
		Disadvantage:      dis,
		CriticalThreshold: e.subclasses.CriticalThreshold(att.Class, att.Subclass, att.Level),
		AutoCritical:      autoCrit,
	})
	if err != nil {
		return nil, "", dnderr.Wrapf(err, "failed to resolve attack by %s", att.ID)
	}
	report.Outcome = outcome
	if onTurn && e.isHostile(att, tgt) {
		turn.AttackedHostile = true
	}

	if !outcome.Hit {
		if err := e.graze(att, tgt, w, opts, report); err != nil {
			return nil, "", err
		}
		return report, "", nil
	}

	total := outcome.Damage
	if onTurn && !turn.SneakAttackUsed && e.sneakAttackApplies(att, tgt, w, ranged, adv, dis) {
		roll, err := e.resolver.RollDamage(dice.Expression{Count: e.features.SneakAttackDice(att.Level), Sides: 6}, outcome.Critical)
		if err != nil {
			return nil, "", dnderr.Wrap(err, "failed to roll sneak attack")
		}
		turn.SneakAttackUsed = true
		report.SneakAttack = roll.Total
		total += roll.Total
		report.Effects = append(report.Effects, "sneak attack")
	}
	if att.Raging && !ranged && w.Ability == rules.Strength {
		report.RageBonus = e.features.RageDamageBonus(att.Level)
		total += report.RageBonus
		report.Effects = append(report.Effects, "rage")
	}

	dealt, err := e.damage(tgt, total, w.DamageType, outcome.Critical)
	if err != nil {
		return nil, "", err
	}
	report.Damage = dealt
	if onTurn {
		turn.LastHit = &HitRecord{TargetID: tgt.ID, Weapon: w.Key, Critical: outcome.Critical, Melee: !ranged}
	}

	if !opts.Opportunity && !opts.Cleave {
		if err := e.applyMastery(att, tgt, w, ranged, report); err != nil {
			return nil, "", err
		}
	}
	return report, "", nil
}

func (e *Engine) hasActed(id string) bool {
	entry, ok := e.registry.Lookup(id)
	return ok && entry.HasActed
}

func (e *Engine) sneakAttackApplies(att, tgt *CombatantState, w *weaponProfile, ranged, adv, dis bool) bool {
	if att.Class != rulebook.ClassRogue || w.Weapon == nil {
		return false
	}
	if !w.Weapon.IsFinesse() && !ranged {
		return false
	}
	if dis && !adv {
		return false
	}
	if adv && !dis {
		return true
	}
	// An ally of the rogue next to the target also qualifies
	for _, id := range e.sortedIDs() {
		ally := e.state.Combatants[id]
		if id == att.ID || id == tgt.ID || e.isHostile(att, ally) || !e.standing(ally) {
			continue
		}
		if e.conditions.IsIncapacitated(ally.Conditions) {
			continue
		}
		if e.distance(id, tgt.ID) <= 5 {
			return true
		}
	}
	return false
}

// graze deals the ability modifier on a miss
func (e *Engine) graze(att, tgt *CombatantState, w *weaponProfile, opts attackOptions, report *attackReport) error {
	if opts.Opportunity || opts.Cleave || w.mastery() != equipment.MasteryGraze || !att.masters(w.Key) {
		return nil
	}
	if w.AbilityMod <= 0 {
		return nil
	}
	dealt, err := e.damage(tgt, w.AbilityMod, w.DamageType, false)
	if err != nil {
		return err
	}
	report.Damage = dealt
	report.Effects = append(report.Effects, equipment.MasteryGraze)
	report.Extra["mastery"] = equipment.MasteryGraze
	return nil
}

// applyMastery resolves the weapon mastery riders of a hit
func (e *Engine) applyMastery(att, tgt *CombatantState, w *weaponProfile, ranged bool, report *attackReport) error {
	mastery := w.mastery()
	if mastery == "" || !att.masters(w.Key) {
		return nil
	}
	up := e.standing(tgt)

	switch mastery {
	case equipment.MasteryVex:
		if report.Damage.Dealt > 0 {
			att.VexTarget = tgt.ID
			att.VexExpires = e.state.Round + 1
		}
	case equipment.MasterySap:
		if !up {
			return nil
		}
		e.applyTimed(tgt, conditions.Sapped, att.ID, BoundaryStart, 1)
	case equipment.MasterySlow:
		if !up || report.Damage.Dealt == 0 {
			return nil
		}
		e.applyTimed(tgt, conditions.Slowed, att.ID, BoundaryStart, 1)
	case equipment.MasteryTopple:
		if !up {
			return nil
		}
		dc := 8 + att.ProficiencyBonus + w.AbilityMod
		saved, err := e.save(tgt, rules.Constitution, dc)
		if err != nil {
			return err
		}
		report.Extra["topple_dc"] = dc
		if saved {
			return nil
		}
		if tgt.addCondition(conditions.Prone) {
			e.event(EventConditionApplied, tgt.ID, tgt.Name+" is knocked prone", map[string]any{"condition": string(conditions.Prone), "source": att.ID})
		}
	case equipment.MasteryPush:
		if !up || tgt.Size > rules.SizeLarge {
			return nil
		}
		moved, err := e.push(att, tgt, 2)
		if err != nil {
			return err
		}
		report.Extra["pushed_to"] = moved
	case equipment.MasteryCleave:
		if ranged || e.state.Turn == nil || e.state.Turn.CleaveUsed {
			return nil
		}
		second := e.cleaveTarget(att, tgt, w)
		if second == nil {
			return nil
		}
		e.state.Turn.CleaveUsed = true
		cleave, reason, err := e.resolveAttack(att, second, w, attackOptions{Cleave: true})
		if err != nil {
			return err
		}
		if reason != "" {
			return nil
		}
		report.Extra["cleave_target"] = second.ID
		report.Extra["cleave_hit"] = cleave.Outcome.Hit
		report.Extra["cleave_damage"] = cleave.Damage.Dealt
	default:
		return nil
	}
	report.Effects = append(report.Effects, mastery)
	report.Extra["mastery"] = mastery
	return nil
}

// cleaveTarget finds another hostile next to the first target and within reach
func (e *Engine) cleaveTarget(att, first *CombatantState, w *weaponProfile) *CombatantState {
	for _, id := range e.sortedIDs() {
		c := e.state.Combatants[id]
		if id == first.ID || id == att.ID || !e.isHostile(att, c) || !e.standing(c) {
			continue
		}
		if e.distance(id, first.ID) <= 5 && e.distance(att.ID, id) <= w.Reach {
			return c
		}
	}
	return nil
}

// save rolls a saving throw for c with its condition modifiers
func (e *Engine) save(c *CombatantState, ability rules.Ability, dc int) (bool, error) {
	mods := e.conditions.SaveModifiers(c.Conditions, c.Exhaustion, ability)
	if ability == rules.Strength && c.Raging {
		mods.Advantage = true
	}
	out, err := e.resolver.SavingThrow(rules.SaveInput{
		Modifier:     c.saveModifier(ability),
		DC:           dc,
		Advantage:    mods.Advantage,
		Disadvantage: mods.Disadvantage,
		AutoFail:     mods.AutoFail,
	})
	if err != nil {
		return false, dnderr.Wrapf(err, "failed to roll %s save for %s", ability, c.ID)
	}
	e.logger.Debug("saving throw",
		zap.String("combatant_id", c.ID),
		zap.String("ability", string(ability)),
		zap.Int("dc", dc),
		zap.Int("total", out.Total),
		zap.Bool("success", out.Success))
	return out.Success, nil
}

// attackEventData is the structured payload of attack events
func attackEventData(r *attackReport) map[string]any {
	data := map[string]any{
		"target":       r.Target.ID,
		"weapon":       r.Weapon.Key,
		"hit":          r.Outcome.Hit,
		"critical":     r.Outcome.Critical,
		"natural":      r.Outcome.Natural,
		"attack_total": r.Outcome.AttackTotal,
		"attack_rolls": r.Outcome.AttackRolls,
		"damage":       r.Damage.Dealt,
		"damage_type":  string(r.Weapon.DamageType),
		"advantage":    r.Advantage,
		"disadvantage": r.Disadvantage,
		"cover":        r.Cover.String(),
	}
	if r.SneakAttack > 0 {
		data["sneak_attack"] = r.SneakAttack
	}
	if r.RageBonus > 0 {
		data["rage_bonus"] = r.RageBonus
	}
	if r.Damage.ConcentrationDC > 0 {
		data["concentration_dc"] = r.Damage.ConcentrationDC
		data["concentration_broken"] = r.Damage.ConcentrationBroken
	}
	for k, v := range r.Extra {
		data[k] = v
	}
	return data
}

func describeAttack(att *CombatantState, r *attackReport) string {
	switch {
	case !r.Outcome.Hit && r.Damage.Dealt > 0:
		return fmt.Sprintf("%s misses %s with %s but grazes for %d damage", att.Name, r.Target.Name, r.Weapon.Name, r.Damage.Dealt)
	case !r.Outcome.Hit:
		return fmt.Sprintf("%s misses %s with %s (%d)", att.Name, r.Target.Name, r.Weapon.Name, r.Outcome.AttackTotal)
	case r.Outcome.Critical:
		return fmt.Sprintf("%s critically hits %s with %s for %d damage", att.Name, r.Target.Name, r.Weapon.Name, r.Damage.Dealt)
	}
	return fmt.Sprintf("%s hits %s with %s for %d damage", att.Name, r.Target.Name, r.Weapon.Name, r.Damage.Dealt)
}

// attackResult turns a report into the caller-facing result
func attackResult(att *CombatantState, r *attackReport) *ActionResult {
	return &ActionResult{
		Success:        true,
		Description:    describeAttack(att, r),
		DamageDealt:    r.Damage.Dealt,
		TargetID:       r.Target.ID,
		EffectsApplied: r.Effects,
		ExtraData:      attackEventData(r),
	}
}
