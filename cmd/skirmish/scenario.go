package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/game/combat"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/monster"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
	"github.com/KirkDiggler/dnd-tactics/internal/services/encounter"
)

// defaultRounds bounds a scenario that sets no round limit
const defaultRounds = 10

// Scenario is a scripted encounter: a roster, an optional map and, per
// combatant, the steps it repeats on each of its turns
type Scenario struct {
	Name      string                   `yaml:"name"`
	Rounds    int                      `yaml:"rounds"`
	Grid      *grid.Grid               `yaml:"grid"`
	Players   []*combat.Combatant      `yaml:"players"`
	Enemies   []*Enemy                 `yaml:"enemies"`
	Positions map[string]grid.Position `yaml:"positions"`
	Script    map[string][]*Step       `yaml:"script"`
}

// Enemy is a bestiary monster or an inline sheet
type Enemy struct {
	ID      string            `yaml:"id"`
	Name    string            `yaml:"name"`
	Monster string            `yaml:"monster"`
	Sheet   *combat.Combatant `yaml:"sheet"`
}

// Step is one scripted call. Do names the operation; the other fields are
// its arguments.
type Step struct {
	Do      string `yaml:"do"`
	Actor   string `yaml:"actor"`
	Target  string `yaml:"target"`
	Weapon  string `yaml:"weapon"`
	Mode    string `yaml:"mode"`
	Ability string `yaml:"ability"`
	Spell   string `yaml:"spell"`
	Option  string `yaml:"option"`
	Slot    int    `yaml:"slot"`
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Reason  string `yaml:"reason"`
}

// LoadScenario reads a scenario file
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to open scenario %s", path)
	}
	defer f.Close()
	return ParseScenario(f)
}

// ParseScenario decodes a scenario and checks its steps name known operations
func ParseScenario(r io.Reader) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeValidation, "failed to parse scenario")
	}
	if s.Name == "" {
		return nil, dnderr.Validationf("scenario name is required")
	}
	for id, steps := range s.Script {
		for i, step := range steps {
			if step == nil || !knownStep(step.Do) {
				return nil, dnderr.Validationf("%s step %d: unknown operation %q", id, i+1, stepName(step))
			}
			if step.Do == "end_turn" {
				return nil, dnderr.Validationf("%s step %d: turns end on their own", id, i+1)
			}
		}
	}
	if s.Rounds <= 0 {
		s.Rounds = defaultRounds
	}
	return &s, nil
}

func stepName(s *Step) string {
	if s == nil {
		return ""
	}
	return s.Do
}

// MonsterKeys lists the bestiary monsters the scenario needs
func (s *Scenario) MonsterKeys() []string {
	var keys []string
	seen := make(map[string]bool)
	for _, e := range s.Enemies {
		if e.Monster != "" && !seen[e.Monster] {
			seen[e.Monster] = true
			keys = append(keys, e.Monster)
		}
	}
	return keys
}

// Roster resolves the enemies against the bestiary
func (s *Scenario) Roster(bestiary monster.Bestiary) (players, enemies []*combat.Combatant, err error) {
	for i, e := range s.Enemies {
		switch {
		case e.Sheet != nil:
			enemies = append(enemies, e.Sheet)
		case e.Monster != "":
			template, err := bestiary.Monster(e.Monster)
			if err != nil {
				return nil, nil, dnderr.Wrapf(err, "enemy %d", i+1)
			}
			id := e.ID
			if id == "" {
				id = fmt.Sprintf("%s-%d", e.Monster, i+1)
			}
			c := combat.FromTemplate(id, template)
			if e.Name != "" {
				c.Name = e.Name
			}
			enemies = append(enemies, c)
		default:
			return nil, nil, dnderr.Validationf("enemy %d needs a monster or a sheet", i+1)
		}
	}
	return s.Players, enemies, nil
}

var actionSteps = map[string]func(*Step) combat.Action{
	"attack":      func(s *Step) combat.Action { return combat.Attack{Target: s.Target, Weapon: s.Weapon} },
	"dash":        func(*Step) combat.Action { return combat.Dash{} },
	"disengage":   func(*Step) combat.Action { return combat.Disengage{} },
	"dodge":       func(*Step) combat.Action { return combat.Dodge{} },
	"help":        func(s *Step) combat.Action { return combat.Help{Target: s.Target} },
	"hide":        func(*Step) combat.Action { return combat.Hide{} },
	"grapple":     func(s *Step) combat.Action { return combat.Grapple{Target: s.Target} },
	"shove":       func(s *Step) combat.Action { return combat.Shove{Target: s.Target, Mode: combat.ShoveMode(s.Mode)} },
	"escape":      func(*Step) combat.Action { return combat.Escape{} },
	"multiattack": func(s *Step) combat.Action { return combat.Multiattack{Target: s.Target} },
	"use_ability": func(s *Step) combat.Action {
		return combat.UseAbility{Ability: s.Ability, Target: s.Target, Point: grid.Position{X: s.X, Y: s.Y}}
	},
	"concentrate": func(s *Step) combat.Action { return combat.Concentrate{Spell: s.Spell} },
}

var bonusSteps = map[string]func(*Step) combat.BonusAction{
	"off_hand_attack": func(s *Step) combat.BonusAction { return combat.OffHandAttack{Target: s.Target} },
	"rage":            func(*Step) combat.BonusAction { return combat.Rage{} },
	"second_wind":     func(*Step) combat.BonusAction { return combat.SecondWind{} },
	"cunning_action": func(s *Step) combat.BonusAction {
		return combat.CunningAction{Mode: combat.MovementMode(s.Mode)}
	},
	"steady_aim":      func(*Step) combat.BonusAction { return combat.SteadyAim{} },
	"martial_arts":    func(s *Step) combat.BonusAction { return combat.MartialArts{Target: s.Target} },
	"flurry_of_blows": func(s *Step) combat.BonusAction { return combat.FlurryOfBlows{Target: s.Target} },
	"patient_defense": func(*Step) combat.BonusAction { return combat.PatientDefense{} },
	"step_of_the_wind": func(s *Step) combat.BonusAction {
		return combat.StepOfTheWind{Mode: combat.MovementMode(s.Mode)}
	},
}

var otherSteps = map[string]bool{
	"move":            true,
	"action_surge":    true,
	"divine_smite":    true,
	"stunning_strike": true,
	"legendary":       true,
	"end":             true,
}

func knownStep(do string) bool {
	_, action := actionSteps[do]
	_, bonus := bonusSteps[do]
	return action || bonus || otherSteps[do]
}

// Runner plays a scenario through the encounter service
type Runner struct {
	service encounter.Service
	logger  *zap.Logger
}

// Outcome is how a scripted encounter finished
type Outcome struct {
	EncounterID string
	Order       []string
	Rejected    int
	Summary     *combat.Summary
}

// Run starts the encounter and plays turns until one side wins or the round
// limit passes. Each turn runs the current combatant's script, then ends.
// Rule rejections are logged and play continues; protocol violations stop
// the run.
func (r *Runner) Run(ctx context.Context, s *Scenario, bestiary monster.Bestiary) (*Outcome, error) {
	players, enemies, err := s.Roster(bestiary)
	if err != nil {
		return nil, err
	}

	started, err := r.service.StartEncounter(ctx, &encounter.StartEncounterInput{
		Name:      s.Name,
		Players:   players,
		Enemies:   enemies,
		Positions: s.Positions,
		Grid:      s.Grid,
	})
	if err != nil {
		return nil, err
	}
	id := started.Encounter.ID
	out := &Outcome{EncounterID: id, Order: started.Order}
	r.logger.Info("initiative", zap.String("encounter_id", id), zap.Strings("order", started.Order))

	state := started.Encounter.Snapshot.State
	for state.Phase == combat.PhaseActive && state.Round <= s.Rounds {
		current := state.Turn.CombatantID
		for i, step := range s.Script[current] {
			result, summary, err := r.play(ctx, id, current, step)
			if err != nil {
				return nil, dnderr.Wrapf(err, "%s step %d (%s)", current, i+1, step.Do)
			}
			if summary != nil {
				out.Summary = summary
				return out, nil
			}
			r.report(out, current, step, result)
		}

		next, err := r.service.EndTurn(ctx, id)
		if err != nil {
			return nil, err
		}
		record, err := r.service.GetEncounter(ctx, id)
		if err != nil {
			return nil, err
		}
		state = record.Snapshot.State
		if next != "" {
			r.logger.Debug("next turn", zap.String("combatant", next), zap.Int("round", state.Round))
		}
	}

	if state.Phase == combat.PhaseEnded {
		out.Summary = summarize(state)
		return out, nil
	}
	summary, err := r.service.EndEncounter(ctx, id, fmt.Sprintf("no winner after %d rounds", s.Rounds))
	if err != nil {
		return nil, err
	}
	out.Summary = summary
	return out, nil
}

func (r *Runner) report(out *Outcome, actor string, step *Step, result *combat.ActionResult) {
	if result == nil {
		return
	}
	if result.Success {
		r.logger.Info(result.Description,
			zap.String("actor", actor),
			zap.String("do", step.Do),
			zap.Int("damage", result.DamageDealt))
		return
	}
	out.Rejected++
	r.logger.Warn("rejected",
		zap.String("actor", actor),
		zap.String("do", step.Do),
		zap.String("reason", result.Description))
}

// play runs one step for actor. It returns a summary when the step ends combat.
func (r *Runner) play(ctx context.Context, id, actor string, step *Step) (*combat.ActionResult, *combat.Summary, error) {
	if build, ok := actionSteps[step.Do]; ok {
		result, err := r.service.TakeAction(ctx, id, build(step))
		return result, nil, err
	}
	if build, ok := bonusSteps[step.Do]; ok {
		result, err := r.service.TakeBonusAction(ctx, id, build(step))
		return result, nil, err
	}

	switch step.Do {
	case "move":
		result, err := r.service.MoveCombatant(ctx, id, actor, grid.Position{X: step.X, Y: step.Y})
		return result, nil, err
	case "action_surge":
		result, err := r.service.UseActionSurge(ctx, id)
		return result, nil, err
	case "divine_smite":
		result, err := r.service.UseDivineSmite(ctx, id, step.Slot, step.Target)
		return result, nil, err
	case "stunning_strike":
		result, err := r.service.UseStunningStrike(ctx, id, step.Target)
		return result, nil, err
	case "legendary":
		// a monster's legendary action is scripted on another combatant's turn
		result, err := r.service.LegendaryAction(ctx, id, &encounter.LegendaryActionInput{
			MonsterID: step.Actor,
			ActionID:  step.Option,
			TargetID:  step.Target,
		})
		return result, nil, err
	case "end":
		summary, err := r.service.EndEncounter(ctx, id, step.Reason)
		return nil, summary, err
	}
	return nil, nil, dnderr.ProtocolViolationf("unknown step %q", step.Do)
}

// summarize describes a combat that ended on its own
func summarize(state *combat.CombatState) *combat.Summary {
	s := &combat.Summary{
		Result:     state.Result,
		Rounds:     state.Round,
		EventCount: len(state.Events),
	}
	ids := make([]string, 0, len(state.Combatants))
	for id := range state.Combatants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if state.Combatants[id].HP > 0 {
			s.Survivors = append(s.Survivors, id)
		} else {
			s.Casualties = append(s.Casualties, id)
		}
	}
	return s
}
