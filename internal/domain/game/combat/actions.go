package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/conditions"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

// Action is something a combatant does with its action. The set of variants
// is closed; TakeAction rejects anything else as a protocol violation.
type Action interface {
	isAction()
}

// Attack makes one attack of the Attack action
type Attack struct {
	Target string `json:"target" yaml:"target"`
	// Weapon is a catalog key or monster action key; empty means the main hand
	Weapon string `json:"weapon,omitempty" yaml:"weapon"`
}

type Dash struct{}

type Disengage struct{}

type Dodge struct{}

// Help gives an ally advantage on its next attack roll
type Help struct {
	Target string `json:"target" yaml:"target"`
}

type Hide struct{}

// Grapple replaces one attack of the Attack action
type Grapple struct {
	Target string `json:"target" yaml:"target"`
}

// ShoveMode is what a successful shove does
type ShoveMode string

const (
	ShoveProne ShoveMode = "prone"
	ShovePush  ShoveMode = "push"
)

// Shove replaces one attack of the Attack action
type Shove struct {
	Target string    `json:"target" yaml:"target"`
	Mode   ShoveMode `json:"mode" yaml:"mode"`
}

// Escape attempts to break a grapple
type Escape struct{}

// Multiattack runs a monster's multiattack routine against one target
type Multiattack struct {
	Target string `json:"target" yaml:"target"`
}

// UseAbility uses a monster's area ability. The area is aimed at Target's
// position when set, otherwise at Point.
type UseAbility struct {
	Ability string        `json:"ability" yaml:"ability"`
	Target  string        `json:"target,omitempty" yaml:"target"`
	Point   grid.Position `json:"point" yaml:"point"`
}

// Concentrate starts concentrating on a spell, replacing any other
type Concentrate struct {
	Spell string `json:"spell" yaml:"spell"`
}

func (Attack) isAction()      {}
func (Dash) isAction()        {}
func (Disengage) isAction()   {}
func (Dodge) isAction()       {}
func (Help) isAction()        {}
func (Hide) isAction()        {}
func (Grapple) isAction()     {}
func (Shove) isAction()       {}
func (Escape) isAction()      {}
func (Multiattack) isAction() {}
func (UseAbility) isAction()  {}
func (Concentrate) isAction() {}

type handler func(c *CombatantState) (*ActionResult, error)

func (e *Engine) actionHandler(action Action) (handler, error) {
	switch a := action.(type) {
	case Attack:
		return func(c *CombatantState) (*ActionResult, error) { return e.attack(c, a) }, nil
	case Dash:
		return e.dash, nil
	case Disengage:
		return e.disengage, nil
	case Dodge:
		return e.dodge, nil
	case Help:
		return func(c *CombatantState) (*ActionResult, error) { return e.help(c, a) }, nil
	case Hide:
		return e.hide, nil
	case Grapple:
		return func(c *CombatantState) (*ActionResult, error) { return e.grapple(c, a) }, nil
	case Shove:
		return func(c *CombatantState) (*ActionResult, error) { return e.shove(c, a) }, nil
	case Escape:
		return e.escape, nil
	case Multiattack:
		return func(c *CombatantState) (*ActionResult, error) { return e.multiattack(c, a) }, nil
	case UseAbility:
		return func(c *CombatantState) (*ActionResult, error) { return e.useAbility(c, a) }, nil
	case Concentrate:
		return func(c *CombatantState) (*ActionResult, error) { return e.concentrate(c, a) }, nil
	case nil:
		return nil, dnderr.ProtocolViolation("action is required")
	}
	return nil, dnderr.ProtocolViolationf("unknown action %T", action)
}

// TakeAction resolves an action for the current combatant
func (e *Engine) TakeAction(action Action) (*ActionResult, error) {
	h, err := e.actionHandler(action)
	if err != nil {
		return nil, err
	}
	c, reason := e.actorCheck()
	if reason != "" {
		return e.reject("%s", reason), nil
	}
	result, err := h(c)
	if err != nil {
		e.logger.Error("action failed",
			zap.String("combatant_id", c.ID),
			zap.String("action", fmt.Sprintf("%T", action)),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

// actionSpent is the rejection for a non-attack action when the action is gone
func (e *Engine) actionSpent() string {
	t := e.state.Turn
	if t.ActionTaken || t.AttackActionTaken {
		return "action already taken"
	}
	return ""
}

// attackSpent is the rejection for attack-type actions
func (e *Engine) attackSpent() string {
	t := e.state.Turn
	switch {
	case t.AttackActionTaken && t.AttacksMade >= t.MaxAttacks:
		return "no attacks remaining"
	case t.ActionTaken:
		return "action already taken"
	}
	return ""
}

func (e *Engine) commitAction() {
	e.state.Turn.ActionTaken = true
	e.state.Turn.drawSurgedAction()
}

func (e *Engine) commitAttack() {
	t := e.state.Turn
	t.AttacksMade++
	t.AttackActionTaken = true
	if t.AttacksMade >= t.MaxAttacks {
		t.ActionTaken = true
		t.drawSurgedAction()
	}
}

// targetOf finds a target that is still in the fight
func (e *Engine) targetOf(c *CombatantState, id string) (*CombatantState, string) {
	if id == "" {
		return nil, "a target is required"
	}
	t, ok := e.state.Combatants[id]
	if !ok {
		return nil, "unknown target " + id
	}
	if id == c.ID {
		return nil, c.Name + " cannot target itself"
	}
	if !e.registry.IsActive(id) {
		return nil, t.Name + " is no longer in the fight"
	}
	return t, ""
}

func (e *Engine) attack(c *CombatantState, a Attack) (*ActionResult, error) {
	if reason := e.attackSpent(); reason != "" {
		return e.reject("%s", reason), nil
	}
	target, reason := e.targetOf(c, a.Target)
	if reason != "" {
		return e.reject("%s", reason), nil
	}
	w, reason, err := e.lookupWeapon(c, a.Weapon)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		return e.reject("%s", reason), nil
	}
	turn := e.state.Turn
	if w.has(equipment.PropertyLoading) && turn.AttacksMade > 0 && !c.hasFeat(FeatCrossbowExpert) {
		return e.reject("%s has the loading property and has already fired this action", w.Name), nil
	}

	report, reason, err := e.resolveAttack(c, target, w, attackOptions{})
	if err != nil {
		return nil, err
	}
	if reason != "" {
		return e.reject("%s", reason), nil
	}

	e.commitAttack()
	if w.Weapon != nil && !report.Ranged && w.Weapon.IsLight() {
		turn.OffHandEligible = true
		turn.MainHandWeapon = w.Key
	}
	if w.Weapon != nil && w.Weapon.IsMonkWeapon() {
		turn.MonkWeaponAttack = true
	}

	result := attackResult(c, report)
	result.ExtraData["attacks_made"] = turn.AttacksMade
	result.ExtraData["max_attacks"] = turn.MaxAttacks
	e.event(EventAttack, c.ID, result.Description, result.ExtraData)
	return result, nil
}

func (e *Engine) effectiveSpeed(c *CombatantState) int {
	tooHeavy := false
	if c.Armor != "" {
		if armor, err := e.weapons.Armor(c.Armor); err == nil {
			tooHeavy = armor.TooHeavyFor(c.Abilities.Strength)
		}
	}
	return e.conditions.EffectiveSpeed(conditions.SpeedContext{
		Base:          c.Speed,
		Conditions:    c.Conditions,
		Exhaustion:    c.Exhaustion,
		Encumbered:    c.Encumbered,
		ArmorTooHeavy: tooHeavy,
	})
}

func (e *Engine) dash(c *CombatantState) (*ActionResult, error) {
	if reason := e.actionSpent(); reason != "" {
		return e.reject("%s", reason), nil
	}
	e.commitAction()
	return e.applyDash(c, EventAction), nil
}

func (e *Engine) applyDash(c *CombatantState, typ EventType) *ActionResult {
	bonus := e.effectiveSpeed(c)
	e.state.Turn.MovementBonus += bonus
	desc := fmt.Sprintf("%s dashes (+%d ft)", c.Name, bonus)
	data := map[string]any{"action": "dash", "movement_bonus": e.state.Turn.MovementBonus}
	e.event(typ, c.ID, desc, data)
	return &ActionResult{Success: true, Description: desc, EffectsApplied: []string{"dash"}, ExtraData: data}
}

func (e *Engine) disengage(c *CombatantState) (*ActionResult, error) {
	if reason := e.actionSpent(); reason != "" {
		return e.reject("%s", reason), nil
	}
	e.commitAction()
	return e.applyDisengage(c, EventAction), nil
}

func (e *Engine) applyDisengage(c *CombatantState, typ EventType) *ActionResult {
	e.state.Turn.Disengaged = true
	desc := c.Name + " disengages"
	data := map[string]any{"action": "disengage"}
	e.event(typ, c.ID, desc, data)
	return &ActionResult{Success: true, Description: desc, EffectsApplied: []string{"disengage"}, ExtraData: data}
}

func (e *Engine) dodge(c *CombatantState) (*ActionResult, error) {
	if reason := e.actionSpent(); reason != "" {
		return e.reject("%s", reason), nil
	}
	e.commitAction()
	return e.applyDodge(c, EventAction), nil
}

func (e *Engine) applyDodge(c *CombatantState, typ EventType) *ActionResult {
	e.applyTimed(c, conditions.Dodging, c.ID, BoundaryStart, 1)
	desc := c.Name + " takes the Dodge action"
	data := map[string]any{"action": "dodge"}
	e.event(typ, c.ID, desc, data)
	return &ActionResult{Success: true, Description: desc, EffectsApplied: []string{string(conditions.Dodging)}, ExtraData: data}
}

func (e *Engine) help(c *CombatantState, a Help) (*ActionResult, error) {
	if reason := e.actionSpent(); reason != "" {
		return e.reject("%s", reason), nil
	}
	ally, reason := e.targetOf(c, a.Target)
	if reason != "" {
		return e.reject("%s", reason), nil
	}
	if e.isHostile(c, ally) {
		return e.reject("%s can only help an ally", c.Name), nil
	}
	if ally.HP == 0 {
		return e.reject("%s is unconscious", ally.Name), nil
	}

	e.commitAction()
	e.applyTimed(ally, Helped, c.ID, BoundaryStart, 1)
	desc := fmt.Sprintf("%s helps %s", c.Name, ally.Name)
	data := map[string]any{"action": "help", "target": ally.ID}
	e.event(EventAction, c.ID, desc, data)
	return &ActionResult{Success: true, Description: desc, TargetID: ally.ID, EffectsApplied: []string{string(Helped)}, ExtraData: data}, nil
}

func (e *Engine) hide(c *CombatantState) (*ActionResult, error) {
	if reason := e.actionSpent(); reason != "" {
		return e.reject("%s", reason), nil
	}
	e.commitAction()
	return e.applyHide(c, EventAction)
}

// applyHide rolls Stealth against the best passive Perception among the
// hostiles still fighting
func (e *Engine) applyHide(c *CombatantState, typ EventType) (*ActionResult, error) {
	disadvantage := false
	if c.Armor != "" {
		if armor, err := e.weapons.Armor(c.Armor); err == nil {
			disadvantage = armor.StealthDisadvantage
		}
	}
	roll, err := e.resolver.RollD20(c.skillModifier(rules.Stealth), false, disadvantage)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to roll stealth for %s", c.ID)
	}

	dc := 0
	for _, id := range e.sortedIDs() {
		other := e.state.Combatants[id]
		if e.isHostile(c, other) && e.standing(other) {
			dc = max(dc, other.passivePerception())
		}
	}

	hidden := roll.Total >= dc
	data := map[string]any{"action": "hide", "stealth": roll.Total, "dc": dc, "hidden": hidden}
	desc := fmt.Sprintf("%s fails to hide (%d vs %d)", c.Name, roll.Total, dc)
	var effects []string
	if hidden {
		c.addCondition(conditions.Hidden)
		desc = fmt.Sprintf("%s hides (%d vs %d)", c.Name, roll.Total, dc)
		effects = append(effects, string(conditions.Hidden))
	}
	e.event(typ, c.ID, desc, data)
	return &ActionResult{Success: true, Description: desc, EffectsApplied: effects, ExtraData: data}, nil
}

func (e *Engine) concentrate(c *CombatantState, a Concentrate) (*ActionResult, error) {
	if reason := e.actionSpent(); reason != "" {
		return e.reject("%s", reason), nil
	}
	if a.Spell == "" {
		return e.reject("a spell is required"), nil
	}

	e.commitAction()
	previous := c.Concentration
	if previous != "" {
		e.endConcentration(c, "started concentrating on "+a.Spell)
	}
	c.Concentration = a.Spell
	desc := fmt.Sprintf("%s concentrates on %s", c.Name, a.Spell)
	data := map[string]any{"spell": a.Spell}
	if previous != "" {
		data["replaced"] = previous
	}
	e.event(EventConcentration, c.ID, desc, data)
	return &ActionResult{Success: true, Description: desc, EffectsApplied: []string{"concentration"}, ExtraData: data}, nil
}
