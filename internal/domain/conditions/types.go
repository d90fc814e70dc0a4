// Package conditions translates the condition tags on a combatant into the
// mechanical modifiers the combat engine applies.
package conditions

import (
	"slices"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
)

// Type is a condition tag
type Type string

// Standard D&D 5e conditions
const (
	Blinded       Type = "blinded"
	Charmed       Type = "charmed"
	Deafened      Type = "deafened"
	Frightened    Type = "frightened"
	Grappled      Type = "grappled"
	Incapacitated Type = "incapacitated"
	Invisible     Type = "invisible"
	Paralyzed     Type = "paralyzed"
	Petrified     Type = "petrified"
	Poisoned      Type = "poisoned"
	Prone         Type = "prone"
	Restrained    Type = "restrained"
	Stunned       Type = "stunned"
	Unconscious   Type = "unconscious"
)

// Combat tags the engine applies on top of the standard conditions
const (
	Dodging Type = "dodging"
	Hidden  Type = "hidden"
	Raging  Type = "raging"
	// Sapped imposes disadvantage on the creature's next attack roll
	Sapped Type = "sapped"
	// Slowed reduces speed by ten feet
	Slowed Type = "slowed"
)

// Set is an ordered set of condition tags
type Set []Type

// Has reports whether t is in the set
func (s Set) Has(t Type) bool {
	return slices.Contains(s, t)
}

// With returns the set with t added
func (s Set) With(t Type) Set {
	if s.Has(t) {
		return s
	}
	return append(s, t)
}

// Without returns the set with t removed
func (s Set) Without(t Type) Set {
	return slices.DeleteFunc(slices.Clone(s), func(c Type) bool { return c == t })
}

// Effect describes what a condition does
type Effect struct {
	AttackAdvantage    bool // Advantage on own attacks
	AttackDisadvantage bool // Disadvantage on own attacks
	DefenseAdvantage   bool // Attackers have advantage
	// DefenseDisadvantage gives attackers disadvantage
	DefenseDisadvantage bool

	CantMove      bool
	Incapacitated bool

	SaveAdvantage    map[rules.Ability]bool
	SaveDisadvantage map[rules.Ability]bool
	SaveAutoFail     map[rules.Ability]bool
}

var strDex = map[rules.Ability]bool{rules.Strength: true, rules.Dexterity: true}

var standardEffects = map[Type]Effect{
	Blinded: {
		AttackDisadvantage: true,
		DefenseAdvantage:   true,
	},
	Frightened: {
		AttackDisadvantage: true,
	},
	Grappled: {
		CantMove: true,
	},
	Incapacitated: {
		Incapacitated: true,
	},
	Invisible: {
		AttackAdvantage:     true,
		DefenseDisadvantage: true,
	},
	Paralyzed: {
		Incapacitated:    true,
		CantMove:         true,
		DefenseAdvantage: true,
		SaveAutoFail:     strDex,
	},
	Petrified: {
		Incapacitated:    true,
		CantMove:         true,
		DefenseAdvantage: true,
		SaveAutoFail:     strDex,
	},
	Poisoned: {
		AttackDisadvantage: true,
	},
	// Prone's defensive effect depends on distance, see AttackModifiers
	Prone: {
		AttackDisadvantage: true,
	},
	Restrained: {
		CantMove:           true,
		AttackDisadvantage: true,
		DefenseAdvantage:   true,
		SaveDisadvantage:   map[rules.Ability]bool{rules.Dexterity: true},
	},
	Stunned: {
		Incapacitated:    true,
		CantMove:         true,
		DefenseAdvantage: true,
		SaveAutoFail:     strDex,
	},
	Unconscious: {
		Incapacitated:    true,
		CantMove:         true,
		DefenseAdvantage: true,
		SaveAutoFail:     strDex,
	},
	Dodging: {
		DefenseDisadvantage: true,
		SaveAdvantage:       map[rules.Ability]bool{rules.Dexterity: true},
	},
	Hidden: {
		AttackAdvantage:     true,
		DefenseDisadvantage: true,
	},
	Raging: {
		SaveAdvantage: map[rules.Ability]bool{rules.Strength: true},
	},
	Sapped: {
		AttackDisadvantage: true,
	},
}

// EffectOf returns the standard effect for t; unknown tags have no effect
func EffectOf(t Type) Effect {
	return standardEffects[t]
}
