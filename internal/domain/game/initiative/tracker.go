// Package initiative owns turn order for an encounter: who is in the fight,
// which side they are on, whose turn it is and when the fight is over.
package initiative

import (
	"slices"
	"sort"

	"github.com/KirkDiggler/dnd-tactics/internal/dice"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

// Side is the team a combatant fights for
type Side string

const (
	SideParty   Side = "party"
	SideEnemies Side = "enemies"
)

// Result is how a fight ended
type Result string

const (
	ResultNone    Result = ""
	ResultVictory Result = "victory"
	ResultDefeat  Result = "defeat"
	ResultDraw    Result = "draw"
)

// Entry is one combatant in the turn order
type Entry struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Side            Side   `json:"side"`
	Dexterity       int    `json:"dexterity"`
	InitiativeBonus int    `json:"initiative_bonus"`
	Initiative      int    `json:"initiative"`
	// Active is false once a combatant is dead or removed from the fight
	Active bool `json:"active"`
	// Conscious is false while a combatant is at zero hit points
	Conscious bool `json:"conscious"`
	HasActed  bool `json:"has_acted"`
}

// State is the persisted form of a Tracker
type State struct {
	Entries []*Entry `json:"entries"`
	Order   []string `json:"order"`
	Turn    int      `json:"turn"`
	Round   int      `json:"round"`
}

// Registry is the turn order the combat engine consults
type Registry interface {
	Load(entries []*Entry) error
	RollAllInitiative(roller dice.Roller) ([]string, error)
	CurrentCombatant() (*Entry, bool)
	Lookup(id string) (*Entry, bool)
	// AdvanceTurn moves to the next active combatant. It returns false when
	// combat is over.
	AdvanceTurn() (string, bool)
	IsCombatOver() bool
	CombatResult() Result
	CurrentRound() int
	SetActive(id string, active bool)
	SetConscious(id string, conscious bool)
	IsActive(id string) bool
	Order() []string
	State() State
	Restore(state State) error
}

// Tracker is the standard Registry. It is not safe for concurrent use.
type Tracker struct {
	entries map[string]*Entry
	loaded  []string
	order   []string
	turn    int
	round   int
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]*Entry)}
}

// Load replaces the roster. Entries start active and conscious.
func (t *Tracker) Load(entries []*Entry) error {
	t.entries = make(map[string]*Entry, len(entries))
	t.loaded = t.loaded[:0]
	t.order = nil
	t.turn, t.round = 0, 0

	for _, e := range entries {
		if e == nil || e.ID == "" {
			return dnderr.InvalidArgument("combatant id is required")
		}
		if _, dup := t.entries[e.ID]; dup {
			return dnderr.InvalidArgumentf("duplicate combatant id %s", e.ID)
		}
		copied := *e
		copied.Active, copied.Conscious = true, true
		t.entries[e.ID] = &copied
		t.loaded = append(t.loaded, e.ID)
	}
	return nil
}

// RollAllInitiative rolls d20 + DEX modifier + bonus for everyone, in roster
// order, and sorts highest first. Ties go to the higher DEX score, then to
// the lower id.
func (t *Tracker) RollAllInitiative(roller dice.Roller) ([]string, error) {
	if len(t.loaded) == 0 {
		return nil, dnderr.InvalidArgument("no combatants to roll initiative for")
	}

	for _, id := range t.loaded {
		e := t.entries[id]
		roll, err := roller.Roll(1, 20, rules.AbilityModifier(e.Dexterity)+e.InitiativeBonus)
		if err != nil {
			return nil, dnderr.Wrapf(err, "failed to roll initiative for %s", id)
		}
		e.Initiative = roll.Total
	}

	t.order = slices.Clone(t.loaded)
	sort.SliceStable(t.order, func(i, j int) bool {
		a, b := t.entries[t.order[i]], t.entries[t.order[j]]
		if a.Initiative != b.Initiative {
			return a.Initiative > b.Initiative
		}
		if a.Dexterity != b.Dexterity {
			return a.Dexterity > b.Dexterity
		}
		return a.ID < b.ID
	})

	t.round = 1
	t.turn = 0
	t.skipInactive()
	return slices.Clone(t.order), nil
}

// CurrentCombatant returns whose turn it is
func (t *Tracker) CurrentCombatant() (*Entry, bool) {
	if t.turn < 0 || t.turn >= len(t.order) {
		return nil, false
	}
	return t.entries[t.order[t.turn]], true
}

// Lookup returns the entry for id
func (t *Tracker) Lookup(id string) (*Entry, bool) {
	e, ok := t.entries[id]
	return e, ok
}

func (t *Tracker) AdvanceTurn() (string, bool) {
	if current, ok := t.CurrentCombatant(); ok {
		current.HasActed = true
	}
	if t.IsCombatOver() {
		return "", false
	}

	t.turn++
	t.skipInactive()
	if t.turn >= len(t.order) {
		t.round++
		t.turn = 0
		for _, e := range t.entries {
			e.HasActed = false
		}
		t.skipInactive()
	}

	current, ok := t.CurrentCombatant()
	if !ok {
		return "", false
	}
	return current.ID, true
}

func (t *Tracker) skipInactive() {
	for t.turn < len(t.order) && !t.entries[t.order[t.turn]].Active {
		t.turn++
	}
}

// IsCombatOver is true when one side has nobody left standing
func (t *Tracker) IsCombatOver() bool {
	return t.CombatResult() != ResultNone
}

func (t *Tracker) CombatResult() Result {
	party, enemies := 0, 0
	for _, e := range t.entries {
		if !e.Active || !e.Conscious {
			continue
		}
		switch e.Side {
		case SideParty:
			party++
		case SideEnemies:
			enemies++
		}
	}

	switch {
	case party > 0 && enemies > 0:
		return ResultNone
	case party > 0:
		return ResultVictory
	case enemies > 0:
		return ResultDefeat
	}
	return ResultDraw
}

func (t *Tracker) CurrentRound() int {
	return t.round
}

func (t *Tracker) SetActive(id string, active bool) {
	if e, ok := t.entries[id]; ok {
		e.Active = active
	}
}

func (t *Tracker) SetConscious(id string, conscious bool) {
	if e, ok := t.entries[id]; ok {
		e.Conscious = conscious
	}
}

func (t *Tracker) IsActive(id string) bool {
	e, ok := t.entries[id]
	return ok && e.Active
}

// Order returns the initiative order
func (t *Tracker) Order() []string {
	return slices.Clone(t.order)
}

// State returns a deep copy of the tracker for persistence
func (t *Tracker) State() State {
	s := State{Order: slices.Clone(t.order), Turn: t.turn, Round: t.round}
	for _, id := range t.loaded {
		copied := *t.entries[id]
		s.Entries = append(s.Entries, &copied)
	}
	return s
}

// Restore replaces the tracker with a persisted state
func (t *Tracker) Restore(state State) error {
	entries := make(map[string]*Entry, len(state.Entries))
	loaded := make([]string, 0, len(state.Entries))
	for _, e := range state.Entries {
		if e == nil || e.ID == "" {
			return dnderr.InvalidArgument("initiative state has an entry without an id")
		}
		copied := *e
		entries[e.ID] = &copied
		loaded = append(loaded, e.ID)
	}
	for _, id := range state.Order {
		if _, ok := entries[id]; !ok {
			return dnderr.InvalidArgumentf("initiative order references unknown combatant %s", id)
		}
	}

	t.entries = entries
	t.loaded = loaded
	t.order = slices.Clone(state.Order)
	t.turn = state.Turn
	t.round = state.Round
	return nil
}
