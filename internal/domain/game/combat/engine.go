// Package combat is the turn-based combat engine. An Engine owns one
// encounter's CombatState, enforces the action economy and resolves attacks,
// maneuvers, class features and monster abilities against it. Numeric rules,
// turn order, conditions and geometry are delegated to their own packages.
package combat

import (
	"fmt"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/KirkDiggler/dnd-tactics/internal/dice"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/ammunition"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/conditions"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/game/initiative"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rulebook"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
	"github.com/KirkDiggler/dnd-tactics/internal/uuid"
)

// gridMargin is the number of empty cells added around the combatants when
// no map is supplied
const gridMargin = 5

// Config holds the collaborators an Engine needs. Roller and Weapons are
// required; everything else has a standard default.
type Config struct {
	Registry   initiative.Registry
	Roller     dice.Roller
	Resolver   rules.Resolver
	Weapons    equipment.Catalog
	Features   rulebook.ClassFeatures
	Subclasses rulebook.Subclasses
	Conditions conditions.Translator
	Ammunition ammunition.Tracker
	Logger     *zap.Logger
	IDs        uuid.Generator
}

// Engine resolves one encounter. It is not safe for concurrent use.
type Engine struct {
	registry   initiative.Registry
	roller     dice.Roller
	resolver   rules.Resolver
	weapons    equipment.Catalog
	features   rulebook.ClassFeatures
	subclasses rulebook.Subclasses
	conditions conditions.Translator
	ammo       ammunition.Tracker
	logger     *zap.Logger
	ids        uuid.Generator

	state *CombatState
}

// NewEngine creates an engine with no combat running
func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		panic("config is required")
	}
	if cfg.Roller == nil {
		panic("roller is required")
	}
	if cfg.Weapons == nil {
		panic("weapon catalog is required")
	}

	e := &Engine{
		registry:   cfg.Registry,
		roller:     cfg.Roller,
		resolver:   cfg.Resolver,
		weapons:    cfg.Weapons,
		features:   cfg.Features,
		subclasses: cfg.Subclasses,
		conditions: cfg.Conditions,
		ammo:       cfg.Ammunition,
		logger:     cfg.Logger,
		ids:        cfg.IDs,
		state:      newCombatState(),
	}
	if e.registry == nil {
		e.registry = initiative.NewTracker()
	}
	if e.resolver == nil {
		e.resolver = rules.NewResolver(e.roller)
	}
	if e.features == nil {
		e.features = rulebook.NewClassFeatures()
	}
	if e.subclasses == nil {
		e.subclasses = rulebook.NewSubclasses()
	}
	if e.conditions == nil {
		e.conditions = conditions.NewTranslator()
	}
	if e.ammo == nil {
		e.ammo = ammunition.NewLedger()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.ids == nil {
		e.ids = uuid.NewSequentialGenerator("event")
	}
	return e
}

// State returns a deep copy of the combat state
func (e *Engine) State() *CombatState {
	clone, err := e.state.Clone()
	if err != nil {
		e.logger.Error("failed to copy combat state", zap.Error(err))
		return nil
	}
	return clone
}

// Phase is the current lifecycle phase
func (e *Engine) Phase() Phase {
	return e.state.Phase
}

// CurrentCombatant returns the id of the combatant whose turn it is
func (e *Engine) CurrentCombatant() (string, bool) {
	if e.state.Turn == nil {
		return "", false
	}
	return e.state.Turn.CombatantID, true
}

// StartCombat validates the roster and map, rolls initiative and starts the
// first turn. It returns the initiative order.
func (e *Engine) StartCombat(players, enemies []*Combatant, positions map[string]grid.Position, g *grid.Grid) ([]string, error) {
	if e.state.Phase != PhaseNotInCombat {
		return nil, dnderr.ProtocolViolationf("cannot start combat in phase %s", e.state.Phase)
	}
	if len(players)+len(enemies) == 0 {
		return nil, dnderr.ProtocolViolation("cannot start combat without combatants")
	}

	roster := make([]*CombatantState, 0, len(players)+len(enemies))
	seen := make(map[string]bool, len(players)+len(enemies))
	add := func(sheets []*Combatant, side initiative.Side) error {
		for _, sheet := range sheets {
			if sheet == nil || sheet.ID == "" {
				return dnderr.ProtocolViolation("combatant id is required")
			}
			if seen[sheet.ID] {
				return dnderr.ProtocolViolationf("duplicate combatant id %s", sheet.ID)
			}
			seen[sheet.ID] = true
			roster = append(roster, normalize(sheet, side, e.features))
		}
		return nil
	}
	if err := add(players, initiative.SideParty); err != nil {
		return nil, err
	}
	if err := add(enemies, initiative.SideEnemies); err != nil {
		return nil, err
	}

	if g == nil {
		all := make([]grid.Position, 0, len(positions))
		for _, p := range positions {
			all = append(all, p)
		}
		g = grid.Bounding(all, gridMargin)
	} else {
		g = g.Clone()
	}

	occupied := make(map[grid.Position]string, len(positions))
	for _, c := range roster {
		p, ok := positions[c.ID]
		if !ok {
			return nil, dnderr.ProtocolViolationf("no position for combatant %s", c.ID)
		}
		if !g.InBounds(p) {
			return nil, dnderr.ProtocolViolationf("position %s for %s is off the map", p, c.ID)
		}
		if !g.Walkable(p) {
			return nil, dnderr.ProtocolViolationf("position %s for %s is not walkable", p, c.ID)
		}
		if other, taken := occupied[p]; taken {
			return nil, dnderr.ProtocolViolationf("%s and %s share position %s", other, c.ID, p)
		}
		occupied[p] = c.ID
	}
	for id := range positions {
		if !seen[id] {
			return nil, dnderr.ProtocolViolationf("position given for unknown combatant %s", id)
		}
	}

	entries := make([]*initiative.Entry, 0, len(roster))
	for _, c := range roster {
		entries = append(entries, &initiative.Entry{
			ID:              c.ID,
			Name:            c.Name,
			Side:            c.Side,
			Dexterity:       c.Abilities.Dexterity,
			InitiativeBonus: c.InitiativeBonus,
		})
	}
	if err := e.registry.Load(entries); err != nil {
		return nil, dnderr.Wrap(err, "failed to load combatants")
	}

	state := newCombatState()
	state.Phase = PhaseRollingInitiative
	state.Grid = g
	for _, c := range roster {
		state.Combatants[c.ID] = c
		state.Positions[c.ID] = positions[c.ID]
	}
	e.state = state

	order, err := e.registry.RollAllInitiative(e.roller)
	if err != nil {
		e.state = newCombatState()
		return nil, dnderr.Wrap(err, "failed to roll initiative")
	}

	ledger, hasLedger := e.ammo.(ammunition.Ledger)
	for _, c := range roster {
		if c.LegendaryPerRound > 0 {
			state.LegendaryRemaining[c.ID] = c.LegendaryPerRound
		}
		if hasLedger && c.Ammunition != nil {
			ledger.Load(c.ID, c.Ammunition)
		}
		if c.HP == 0 {
			e.dropToZero(c, false)
		}
	}

	state.Phase = PhaseActive
	state.Round = e.registry.CurrentRound()
	initiatives := make(map[string]any, len(order))
	for _, id := range order {
		if entry, ok := e.registry.Lookup(id); ok {
			initiatives[id] = entry.Initiative
		}
	}
	e.event(EventCombatStarted, "", fmt.Sprintf("Combat started with %d combatants", len(roster)), map[string]any{
		"order":      slices.Clone(order),
		"initiative": initiatives,
	})
	e.logger.Info("combat started",
		zap.Int("combatants", len(roster)),
		zap.Strings("order", order))

	if e.registry.IsCombatOver() {
		e.finish("")
		return order, nil
	}
	current, ok := e.registry.CurrentCombatant()
	if !ok {
		e.finish("")
		return order, nil
	}
	if err := e.beginTurnChain(current.ID); err != nil {
		return nil, err
	}
	return order, nil
}

// EndCombat stops the encounter and summarises it
func (e *Engine) EndCombat(reason string) (*Summary, error) {
	switch e.state.Phase {
	case PhaseRollingInitiative, PhaseActive:
	default:
		return nil, dnderr.ProtocolViolationf("cannot end combat in phase %s", e.state.Phase)
	}
	return e.finish(reason), nil
}

func (e *Engine) finish(reason string) *Summary {
	result := string(e.registry.CombatResult())
	if result == "" {
		result = "ended:" + reason
	}
	e.state.Result = result
	e.state.Phase = PhaseEnded
	e.state.Turn = nil
	e.event(EventCombatEnded, "", "Combat ended: "+result, map[string]any{"result": result, "reason": reason})
	e.logger.Info("combat ended", zap.String("result", result), zap.Int("rounds", e.state.Round))
	return e.summary(reason)
}

func (e *Engine) summary(reason string) *Summary {
	s := &Summary{
		Result:     e.state.Result,
		Reason:     reason,
		Rounds:     e.state.Round,
		EventCount: len(e.state.Events),
	}
	for _, id := range e.sortedIDs() {
		c := e.state.Combatants[id]
		if e.registry.IsActive(id) && c.HP > 0 {
			s.Survivors = append(s.Survivors, id)
		} else {
			s.Casualties = append(s.Casualties, id)
		}
	}
	return s
}

// EndTurn runs end-of-turn effects, advances initiative and starts the next
// turn. It returns the next combatant, or "" once combat has ended.
func (e *Engine) EndTurn() (string, error) {
	if e.state.Phase == PhaseEnded {
		return "", nil
	}
	if e.state.Phase != PhaseActive || e.state.Turn == nil {
		return "", dnderr.ProtocolViolationf("cannot end turn in phase %s", e.state.Phase)
	}

	ending := e.state.Turn.CombatantID
	e.endOfTurn(ending)
	e.event(EventTurnEnded, ending, e.name(ending)+" ended their turn", nil)

	next, ok := e.registry.AdvanceTurn()
	if !ok {
		e.finish("")
		return "", nil
	}
	if err := e.beginTurnChain(next); err != nil {
		return "", err
	}
	if e.state.Phase == PhaseEnded || e.state.Turn == nil {
		return "", nil
	}
	return e.state.Turn.CombatantID, nil
}

// beginTurnChain starts id's turn, advancing again past anyone who dies on
// their own death save
func (e *Engine) beginTurnChain(id string) error {
	for attempts := 0; attempts <= len(e.state.Combatants); attempts++ {
		if err := e.startTurn(id); err != nil {
			return err
		}
		if e.registry.IsActive(id) {
			return nil
		}
		next, ok := e.registry.AdvanceTurn()
		if !ok {
			e.finish("")
			return nil
		}
		id = next
	}
	return dnderr.Internal("no combatant could start a turn")
}

func (e *Engine) startTurn(id string) error {
	c, ok := e.state.Combatants[id]
	if !ok {
		return dnderr.Internal("turn order names unknown combatant " + id)
	}
	e.state.Round = e.registry.CurrentRound()
	if !e.registry.IsActive(id) {
		// the fallen still tick their start-of-turn timers but take no turn
		e.expireTimers(id, BoundaryStart)
		return nil
	}
	e.state.Turn = &TurnState{CombatantID: id, Round: e.state.Round}
	delete(e.state.ReactionsUsed, id)

	e.expireTimers(id, BoundaryStart)

	if c.isPlayer() && c.HP == 0 && !c.DeathSaves.Stable && !c.DeathSaves.Dead {
		if err := e.deathSave(c); err != nil {
			return err
		}
		if c.DeathSaves.Dead {
			return nil
		}
	}

	e.state.Turn.MaxAttacks = e.maxAttacks(c)

	if err := e.rollRecharge(c); err != nil {
		return err
	}
	if c.LegendaryPerRound > 0 {
		e.state.LegendaryRemaining[id] = c.LegendaryPerRound
	}

	e.event(EventTurnStarted, id, fmt.Sprintf("Round %d: %s's turn", e.state.Round, c.Name), nil)
	e.logger.Debug("turn started", zap.String("combatant_id", id), zap.Int("round", e.state.Round))
	return nil
}

func (e *Engine) maxAttacks(c *CombatantState) int {
	if c.Kind == KindMonster {
		return 1
	}
	return max(1, e.features.ExtraAttacks(c.Class, c.Level))
}

func (e *Engine) endOfTurn(id string) {
	c := e.state.Combatants[id]
	turn := e.state.Turn

	if c.Raging {
		c.RageRounds++
		switch {
		case c.RageRounds >= 10:
			e.endRage(c, "rage ran its full minute")
		case !turn.AttackedHostile && !c.TookDamage:
			e.endRage(c, "neither attacked nor took damage")
		}
	}

	e.expireTimers(id, BoundaryEnd)

	if c.VexTarget != "" && c.VexExpires <= e.state.Round {
		c.VexTarget = ""
		c.VexExpires = 0
	}
	c.Surprised = false
	c.SteadyAim = false
	c.TookDamage = false
}

func (e *Engine) endRage(c *CombatantState, reason string) {
	if !c.Raging {
		return
	}
	c.Raging = false
	c.RageRounds = 0
	c.removeCondition(conditions.Raging)
	c.Resistances = slices.DeleteFunc(c.Resistances, func(t rules.DamageType) bool {
		return slices.Contains(c.RageAddedResistances, t)
	})
	c.RageAddedResistances = nil
	e.event(EventRageEnded, c.ID, fmt.Sprintf("%s's rage ends: %s", c.Name, reason), map[string]any{"reason": reason})
}

// event appends to the audit log
func (e *Engine) event(typ EventType, combatantID, description string, data map[string]any) {
	e.state.Events = append(e.state.Events, Event{
		ID:          e.ids.New(),
		Type:        typ,
		Round:       e.state.Round,
		CombatantID: combatantID,
		Description: description,
		Data:        data,
	})
}

func (e *Engine) reject(format string, args ...any) *ActionResult {
	msg := fmt.Sprintf(format, args...)
	e.logger.Debug("action rejected", zap.String("reason", msg))
	return &ActionResult{Success: false, Description: msg}
}

func (e *Engine) name(id string) string {
	if c, ok := e.state.Combatants[id]; ok {
		return c.Name
	}
	return id
}

func (e *Engine) sortedIDs() []string {
	ids := make([]string, 0, len(e.state.Combatants))
	for id := range e.state.Combatants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// actorCheck returns a rejection reason when the current combatant cannot act
func (e *Engine) actorCheck() (*CombatantState, string) {
	if e.state.Phase != PhaseActive || e.state.Turn == nil {
		return nil, "combat is not active"
	}
	c := e.state.Combatants[e.state.Turn.CombatantID]
	switch {
	case c.HP <= 0:
		return nil, c.Name + " is at 0 hit points"
	case e.conditions.IsIncapacitated(c.Conditions):
		return nil, c.Name + " is incapacitated"
	case c.Surprised && e.state.Round == 1:
		return nil, c.Name + " is surprised"
	}
	return c, ""
}

func (e *Engine) isHostile(a, b *CombatantState) bool {
	return a.Side != b.Side
}

// standing reports whether a combatant is in the fight and conscious
func (e *Engine) standing(c *CombatantState) bool {
	return e.registry.IsActive(c.ID) && c.HP > 0
}

func (e *Engine) occupant(p grid.Position) (string, bool) {
	for _, id := range e.sortedIDs() {
		if !e.registry.IsActive(id) {
			continue
		}
		if e.state.Positions[id] == p {
			return id, true
		}
	}
	return "", false
}

func (e *Engine) distance(a, b string) int {
	return grid.Distance(e.state.Positions[a], e.state.Positions[b])
}

// hostilesWithin returns standing, non-incapacitated hostiles of c within feet
func (e *Engine) hostilesWithin(c *CombatantState, at grid.Position, feet int) []*CombatantState {
	var out []*CombatantState
	for _, id := range e.sortedIDs() {
		other := e.state.Combatants[id]
		if id == c.ID || !e.isHostile(c, other) || !e.standing(other) {
			continue
		}
		if e.conditions.IsIncapacitated(other.Conditions) {
			continue
		}
		if grid.Distance(at, e.state.Positions[id]) <= feet {
			out = append(out, other)
		}
	}
	return out
}
