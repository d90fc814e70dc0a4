package combat

import (
	"fmt"
	"slices"

	"github.com/KirkDiggler/dnd-tactics/internal/dice"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/conditions"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rulebook"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

// BonusAction is something a combatant does with its bonus action
type BonusAction interface {
	isBonusAction()
}

// OffHandAttack follows a light melee attack with the off-hand weapon
type OffHandAttack struct {
	Target string `json:"target" yaml:"target"`
}

type Rage struct{}

type SecondWind struct{}

// MovementMode selects what a movement feature does
type MovementMode string

const (
	ModeDash      MovementMode = "dash"
	ModeDisengage MovementMode = "disengage"
	ModeHide      MovementMode = "hide"
)

// CunningAction is a rogue's dash, disengage or hide
type CunningAction struct {
	Mode MovementMode `json:"mode" yaml:"mode"`
}

type SteadyAim struct{}

// MartialArts makes one unarmed strike after the Attack action
type MartialArts struct {
	Target string `json:"target" yaml:"target"`
}

// FlurryOfBlows spends a ki point on two unarmed strikes
type FlurryOfBlows struct {
	Target string `json:"target" yaml:"target"`
}

type PatientDefense struct{}

// StepOfTheWind spends a ki point to dash or disengage
type StepOfTheWind struct {
	Mode MovementMode `json:"mode" yaml:"mode"`
}

func (OffHandAttack) isBonusAction()  {}
func (Rage) isBonusAction()           {}
func (SecondWind) isBonusAction()     {}
func (CunningAction) isBonusAction()  {}
func (SteadyAim) isBonusAction()      {}
func (MartialArts) isBonusAction()    {}
func (FlurryOfBlows) isBonusAction()  {}
func (PatientDefense) isBonusAction() {}
func (StepOfTheWind) isBonusAction()  {}

func (e *Engine) bonusHandler(action BonusAction) (handler, error) {
	switch a := action.(type) {
	case OffHandAttack:
		return func(c *CombatantState) (*ActionResult, error) { return e.offHandAttack(c, a) }, nil
	case Rage:
		return e.rage, nil
	case SecondWind:
		return e.secondWind, nil
	case CunningAction:
		return func(c *CombatantState) (*ActionResult, error) { return e.cunningAction(c, a) }, nil
	case SteadyAim:
		return e.steadyAim, nil
	case MartialArts:
		return func(c *CombatantState) (*ActionResult, error) { return e.martialArts(c, a) }, nil
	case FlurryOfBlows:
		return func(c *CombatantState) (*ActionResult, error) { return e.flurryOfBlows(c, a) }, nil
	case PatientDefense:
		return e.patientDefense, nil
	case StepOfTheWind:
		return func(c *CombatantState) (*ActionResult, error) { return e.stepOfTheWind(c, a) }, nil
	case nil:
		return nil, dnderr.ProtocolViolation("bonus action is required")
	}
	return nil, dnderr.ProtocolViolationf("unknown bonus action %T", action)
}

// TakeBonusAction resolves a bonus action for the current combatant
func (e *Engine) TakeBonusAction(action BonusAction) (*ActionResult, error) {
	h, err := e.bonusHandler(action)
	if err != nil {
		return nil, err
	}
	c, reason := e.actorCheck()
	if reason != "" {
		return e.reject("%s", reason), nil
	}
	return h(c)
}

func (e *Engine) bonusSpent() string {
	if e.state.Turn.BonusActionTaken {
		return "bonus action already taken"
	}
	return ""
}

// featureGate rejects creatures below the class level a feature needs
func featureGate(c *CombatantState, feature, class string, level int) string {
	if !c.isClass(class, level) {
		return fmt.Sprintf("%s requires a level %d %s", feature, level, class)
	}
	return ""
}

func (e *Engine) offHandAttack(c *CombatantState, a OffHandAttack) (*ActionResult, error) {
	turn := e.state.Turn
	if !turn.OffHandEligible {
		return e.reject("%s has not attacked with a light melee weapon this turn", c.Name), nil
	}
	if c.OffHand == "" {
		return e.reject("%s has nothing in the off hand", c.Name), nil
	}
	w, reason, err := e.lookupWeapon(c, c.OffHand)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		return e.reject("%s", reason), nil
	}
	if w.Weapon == nil || !w.Weapon.IsLight() || w.Ranged {
		return e.reject("%s is not a light melee weapon", w.Name), nil
	}
	nick := w.mastery() == equipment.MasteryNick && c.masters(w.Key) && !turn.NickUsed
	if !nick {
		if reason := e.bonusSpent(); reason != "" {
			return e.reject("%s", reason), nil
		}
	}
	target, reason := e.targetOf(c, a.Target)
	if reason != "" {
		return e.reject("%s", reason), nil
	}

	report, reason, err := e.resolveAttack(c, target, w, attackOptions{OffHand: true})
	if err != nil {
		return nil, err
	}
	if reason != "" {
		return e.reject("%s", reason), nil
	}

	turn.OffHandEligible = false
	if nick {
		turn.NickUsed = true
	} else {
		turn.BonusActionTaken = true
	}
	result := attackResult(c, report)
	result.ExtraData["off_hand"] = true
	result.ExtraData["nick"] = nick
	e.event(EventBonusAction, c.ID, "Off-hand: "+result.Description, result.ExtraData)
	return result, nil
}

func (e *Engine) rage(c *CombatantState) (*ActionResult, error) {
	if reason := featureGate(c, "Rage", rulebook.ClassBarbarian, 1); reason != "" {
		return e.reject("%s", reason), nil
	}
	if c.Raging {
		return e.reject("%s is already raging", c.Name), nil
	}
	if reason := e.bonusSpent(); reason != "" {
		return e.reject("%s", reason), nil
	}
	if c.RageUsesRemaining == 0 {
		return e.reject("%s has no rage uses remaining", c.Name), nil
	}

	e.state.Turn.BonusActionTaken = true
	if c.RageUsesRemaining != rulebook.Unlimited {
		c.RageUsesRemaining--
	}
	c.Raging = true
	c.RageRounds = 0
	c.addCondition(conditions.Raging)
	c.RageAddedResistances = nil
	for _, t := range rules.PhysicalDamageTypes {
		if !c.resists(t) {
			c.Resistances = append(c.Resistances, t)
			c.RageAddedResistances = append(c.RageAddedResistances, t)
		}
	}

	desc := fmt.Sprintf("%s flies into a rage", c.Name)
	data := map[string]any{
		"feature":             "rage",
		"rage_uses_remaining": c.RageUsesRemaining,
		"damage_bonus":        e.features.RageDamageBonus(c.Level),
	}
	e.event(EventFeature, c.ID, desc, data)
	return &ActionResult{Success: true, Description: desc, EffectsApplied: []string{string(conditions.Raging)}, ExtraData: data}, nil
}

func (e *Engine) secondWind(c *CombatantState) (*ActionResult, error) {
	if reason := featureGate(c, "Second Wind", rulebook.ClassFighter, 1); reason != "" {
		return e.reject("%s", reason), nil
	}
	if reason := e.bonusSpent(); reason != "" {
		return e.reject("%s", reason), nil
	}
	if c.SecondWindRemaining <= 0 {
		return e.reject("%s has no Second Wind uses remaining", c.Name), nil
	}

	roll, err := e.resolver.RollDamage(dice.Expression{Count: 1, Sides: 10, Bonus: c.Level}, false)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to roll second wind")
	}
	e.state.Turn.BonusActionTaken = true
	c.SecondWindRemaining--
	healed := e.heal(c, roll.Total)

	desc := fmt.Sprintf("%s uses Second Wind and regains %d hit points", c.Name, healed)
	data := map[string]any{
		"feature":        "second_wind",
		"rolled":         roll.Total,
		"healed":         healed,
		"hp":             c.HP,
		"uses_remaining": c.SecondWindRemaining,
	}
	e.event(EventFeature, c.ID, desc, data)
	return &ActionResult{Success: true, Description: desc, ExtraData: data}, nil
}

func (e *Engine) cunningAction(c *CombatantState, a CunningAction) (*ActionResult, error) {
	if reason := featureGate(c, "Cunning Action", rulebook.ClassRogue, 2); reason != "" {
		return e.reject("%s", reason), nil
	}
	if reason := e.bonusSpent(); reason != "" {
		return e.reject("%s", reason), nil
	}
	switch a.Mode {
	case ModeDash:
		e.state.Turn.BonusActionTaken = true
		return e.applyDash(c, EventBonusAction), nil
	case ModeDisengage:
		e.state.Turn.BonusActionTaken = true
		return e.applyDisengage(c, EventBonusAction), nil
	case ModeHide:
		e.state.Turn.BonusActionTaken = true
		return e.applyHide(c, EventBonusAction)
	}
	return e.reject("unknown cunning action %q", a.Mode), nil
}

func (e *Engine) steadyAim(c *CombatantState) (*ActionResult, error) {
	if reason := featureGate(c, "Steady Aim", rulebook.ClassRogue, 3); reason != "" {
		return e.reject("%s", reason), nil
	}
	if reason := e.bonusSpent(); reason != "" {
		return e.reject("%s", reason), nil
	}
	turn := e.state.Turn
	if turn.MovementUsed > 0 {
		return e.reject("%s has already moved this turn", c.Name), nil
	}

	turn.BonusActionTaken = true
	turn.MovementLocked = true
	c.SteadyAim = true
	desc := c.Name + " takes careful aim"
	data := map[string]any{"feature": "steady_aim"}
	e.event(EventFeature, c.ID, desc, data)
	return &ActionResult{Success: true, Description: desc, EffectsApplied: []string{"steady_aim"}, ExtraData: data}, nil
}

// unarmedStrike resolves one bonus unarmed strike
func (e *Engine) unarmedStrike(c *CombatantState, target *CombatantState) (*attackReport, string, error) {
	w, reason, err := e.lookupWeapon(c, equipment.WeaponKeyUnarmedStrike)
	if err != nil || reason != "" {
		return nil, reason, err
	}
	return e.resolveAttack(c, target, w, attackOptions{})
}

func (e *Engine) martialArtsCheck(c *CombatantState, feature string, level int) string {
	if reason := featureGate(c, feature, rulebook.ClassMonk, level); reason != "" {
		return reason
	}
	if reason := e.bonusSpent(); reason != "" {
		return reason
	}
	if !e.state.Turn.AttackActionTaken {
		return feature + " requires taking the Attack action first"
	}
	return ""
}

func (e *Engine) martialArts(c *CombatantState, a MartialArts) (*ActionResult, error) {
	if reason := e.martialArtsCheck(c, "Martial Arts", 1); reason != "" {
		return e.reject("%s", reason), nil
	}
	if !e.state.Turn.MonkWeaponAttack {
		return e.reject("Martial Arts requires attacking with a monk weapon or unarmed strike"), nil
	}
	target, reason := e.targetOf(c, a.Target)
	if reason != "" {
		return e.reject("%s", reason), nil
	}
	report, reason, err := e.unarmedStrike(c, target)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		return e.reject("%s", reason), nil
	}

	e.state.Turn.BonusActionTaken = true
	result := attackResult(c, report)
	result.ExtraData["feature"] = "martial_arts"
	e.event(EventBonusAction, c.ID, "Martial Arts: "+result.Description, result.ExtraData)
	return result, nil
}

func (e *Engine) flurryOfBlows(c *CombatantState, a FlurryOfBlows) (*ActionResult, error) {
	if reason := e.martialArtsCheck(c, "Flurry of Blows", 2); reason != "" {
		return e.reject("%s", reason), nil
	}
	if c.KiRemaining <= 0 {
		return e.reject("%s has no ki remaining", c.Name), nil
	}
	target, reason := e.targetOf(c, a.Target)
	if reason != "" {
		return e.reject("%s", reason), nil
	}
	// Check reach before spending ki
	if w, reason, err := e.lookupWeapon(c, equipment.WeaponKeyUnarmedStrike); err != nil {
		return nil, err
	} else if reason != "" {
		return e.reject("%s", reason), nil
	} else if dist := e.distance(c.ID, target.ID); dist > w.MaxRange {
		return e.reject("%s is out of range (%d ft)", target.Name, dist), nil
	}

	e.state.Turn.BonusActionTaken = true
	c.KiRemaining--
	result := &ActionResult{Success: true, TargetID: target.ID, ExtraData: map[string]any{"feature": "flurry_of_blows"}}
	var strikes []map[string]any
	for range 2 {
		if !e.registry.IsActive(target.ID) || target.HP == 0 {
			break
		}
		report, reason, err := e.unarmedStrike(c, target)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			break
		}
		sub := attackResult(c, report)
		e.event(EventBonusAction, c.ID, "Flurry of Blows: "+sub.Description, sub.ExtraData)
		strikes = append(strikes, sub.ExtraData)
		result.DamageDealt += report.Damage.Dealt
	}
	result.Description = fmt.Sprintf("%s unleashes a flurry of blows on %s for %d damage", c.Name, target.Name, result.DamageDealt)
	result.ExtraData["strikes"] = strikes
	result.ExtraData["ki_remaining"] = c.KiRemaining
	return result, nil
}

func (e *Engine) kiFeature(c *CombatantState, feature string) string {
	if reason := featureGate(c, feature, rulebook.ClassMonk, 2); reason != "" {
		return reason
	}
	if reason := e.bonusSpent(); reason != "" {
		return reason
	}
	if c.KiRemaining <= 0 {
		return c.Name + " has no ki remaining"
	}
	return ""
}

func (e *Engine) patientDefense(c *CombatantState) (*ActionResult, error) {
	if reason := e.kiFeature(c, "Patient Defense"); reason != "" {
		return e.reject("%s", reason), nil
	}
	e.state.Turn.BonusActionTaken = true
	c.KiRemaining--
	result := e.applyDodge(c, EventBonusAction)
	result.ExtraData["ki_remaining"] = c.KiRemaining
	return result, nil
}

func (e *Engine) stepOfTheWind(c *CombatantState, a StepOfTheWind) (*ActionResult, error) {
	if reason := e.kiFeature(c, "Step of the Wind"); reason != "" {
		return e.reject("%s", reason), nil
	}
	var result *ActionResult
	switch a.Mode {
	case ModeDash:
		e.state.Turn.BonusActionTaken = true
		c.KiRemaining--
		result = e.applyDash(c, EventBonusAction)
	case ModeDisengage:
		e.state.Turn.BonusActionTaken = true
		c.KiRemaining--
		result = e.applyDisengage(c, EventBonusAction)
	default:
		return e.reject("unknown step of the wind mode %q", a.Mode), nil
	}
	result.ExtraData["ki_remaining"] = c.KiRemaining
	return result, nil
}

// UseActionSurge gives a fighter one more action this turn. Used before the
// current action is spent, the extra action waits until it is.
func (e *Engine) UseActionSurge() (*ActionResult, error) {
	c, reason := e.actorCheck()
	if reason != "" {
		return e.reject("%s", reason), nil
	}
	if reason := featureGate(c, "Action Surge", rulebook.ClassFighter, 2); reason != "" {
		return e.reject("%s", reason), nil
	}
	turn := e.state.Turn
	if turn.ActionSurgeUsed {
		return e.reject("Action Surge already used this turn"), nil
	}
	if c.ActionSurgeRemaining <= 0 {
		return e.reject("%s has no Action Surge uses remaining", c.Name), nil
	}

	c.ActionSurgeRemaining--
	turn.ActionSurgeUsed = true
	turn.SurgedActions++
	turn.drawSurgedAction()

	desc := c.Name + " surges into action"
	data := map[string]any{"feature": "action_surge", "uses_remaining": c.ActionSurgeRemaining}
	e.event(EventFeature, c.ID, desc, data)
	return &ActionResult{Success: true, Description: desc, ExtraData: data}, nil
}

// UseDivineSmite spends a spell slot to add radiant damage to a melee hit
// the paladin landed this turn
func (e *Engine) UseDivineSmite(slotLevel int, targetID string) (*ActionResult, error) {
	c, reason := e.actorCheck()
	if reason != "" {
		return e.reject("%s", reason), nil
	}
	if reason := featureGate(c, "Divine Smite", rulebook.ClassPaladin, 2); reason != "" {
		return e.reject("%s", reason), nil
	}
	if reason := e.bonusSpent(); reason != "" {
		return e.reject("%s", reason), nil
	}
	if slotLevel < 1 || c.SpellSlots[slotLevel] <= 0 {
		return e.reject("%s has no level %d spell slot", c.Name, slotLevel), nil
	}
	hit := e.state.Turn.LastHit
	if hit == nil || hit.TargetID != targetID || !hit.Melee {
		return e.reject("Divine Smite requires a melee weapon hit on %s this turn", e.name(targetID)), nil
	}
	target, reason := e.targetOf(c, targetID)
	if reason != "" {
		return e.reject("%s", reason), nil
	}

	count := min(5, 1+slotLevel)
	if slices.Contains([]string{"undead", "fiend"}, target.CreatureType) {
		count++
	}
	roll, err := e.resolver.RollDamage(dice.Expression{Count: count, Sides: 8}, hit.Critical)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to roll divine smite")
	}

	e.state.Turn.BonusActionTaken = true
	c.SpellSlots[slotLevel]--
	report, err := e.damage(target, roll.Total, rules.Radiant, hit.Critical)
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("%s smites %s for %d radiant damage", c.Name, target.Name, report.Dealt)
	data := map[string]any{
		"feature":         "divine_smite",
		"slot_level":      slotLevel,
		"dice":            count,
		"critical":        hit.Critical,
		"damage":          report.Dealt,
		"slots_remaining": c.SpellSlots[slotLevel],
	}
	if report.ConcentrationDC > 0 {
		data["concentration_dc"] = report.ConcentrationDC
	}
	e.event(EventFeature, c.ID, desc, data)
	return &ActionResult{Success: true, Description: desc, DamageDealt: report.Dealt, TargetID: target.ID, ExtraData: data}, nil
}

// UseStunningStrike spends ki to try to stun a creature the monk hit in
// melee this turn
func (e *Engine) UseStunningStrike(targetID string) (*ActionResult, error) {
	c, reason := e.actorCheck()
	if reason != "" {
		return e.reject("%s", reason), nil
	}
	if reason := featureGate(c, "Stunning Strike", rulebook.ClassMonk, 5); reason != "" {
		return e.reject("%s", reason), nil
	}
	turn := e.state.Turn
	if turn.StunningStrikeUsed {
		return e.reject("Stunning Strike already used this turn"), nil
	}
	if c.KiRemaining <= 0 {
		return e.reject("%s has no ki remaining", c.Name), nil
	}
	if turn.LastHit == nil || turn.LastHit.TargetID != targetID || !turn.LastHit.Melee {
		return e.reject("Stunning Strike requires a melee hit on %s this turn", e.name(targetID)), nil
	}
	target, reason := e.targetOf(c, targetID)
	if reason != "" {
		return e.reject("%s", reason), nil
	}

	dc := 8 + c.ProficiencyBonus + c.Abilities.Modifier(rules.Wisdom)
	saved, err := e.save(target, rules.Constitution, dc)
	if err != nil {
		return nil, err
	}
	c.KiRemaining--
	turn.StunningStrikeUsed = true

	data := map[string]any{"feature": "stunning_strike", "dc": dc, "saved": saved, "ki_remaining": c.KiRemaining}
	result := &ActionResult{Success: true, TargetID: target.ID, ExtraData: data}
	if saved {
		result.Description = fmt.Sprintf("%s resists %s's Stunning Strike", target.Name, c.Name)
	} else {
		e.applyTimed(target, conditions.Stunned, c.ID, BoundaryEnd, 2)
		for _, id := range slices.Clone(target.Grappling) {
			if held, ok := e.state.Combatants[id]; ok {
				e.releaseGrapple(target, held, "stunned")
			}
		}
		result.Description = fmt.Sprintf("%s stuns %s", c.Name, target.Name)
		result.EffectsApplied = []string{string(conditions.Stunned)}
	}
	e.event(EventFeature, c.ID, result.Description, data)
	return result, nil
}
