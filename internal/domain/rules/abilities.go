// Package rules holds the numeric primitives of the 5e ruleset: ability and
// proficiency math, attack and damage resolution, saves and contests.
package rules

import (
	"fmt"
	"strings"
)

// Ability is one of the six ability scores
type Ability string

const (
	Strength     Ability = "str"
	Dexterity    Ability = "dex"
	Constitution Ability = "con"
	Intelligence Ability = "int"
	Wisdom       Ability = "wis"
	Charisma     Ability = "cha"
)

// AbilityScores holds raw ability scores
type AbilityScores struct {
	Strength     int `json:"str" yaml:"str"`
	Dexterity    int `json:"dex" yaml:"dex"`
	Constitution int `json:"con" yaml:"con"`
	Intelligence int `json:"int" yaml:"int"`
	Wisdom       int `json:"wis" yaml:"wis"`
	Charisma     int `json:"cha" yaml:"cha"`
}

// Score returns the raw score for a
func (s AbilityScores) Score(a Ability) int {
	switch a {
	case Strength:
		return s.Strength
	case Dexterity:
		return s.Dexterity
	case Constitution:
		return s.Constitution
	case Intelligence:
		return s.Intelligence
	case Wisdom:
		return s.Wisdom
	case Charisma:
		return s.Charisma
	}
	return 10
}

// Modifier returns the ability modifier for a
func (s AbilityScores) Modifier(a Ability) int {
	return AbilityModifier(s.Score(a))
}

// WithDefaults replaces unset scores with 10
func (s AbilityScores) WithDefaults() AbilityScores {
	for _, p := range []*int{&s.Strength, &s.Dexterity, &s.Constitution, &s.Intelligence, &s.Wisdom, &s.Charisma} {
		if *p == 0 {
			*p = 10
		}
	}
	return s
}

// AbilityModifier is floor((score - 10) / 2)
func AbilityModifier(score int) int {
	d := score - 10
	if d < 0 {
		return (d - 1) / 2
	}
	return d / 2
}

// ProficiencyBonus is +2 at level 1, rising by one every four levels
func ProficiencyBonus(level int) int {
	if level < 1 {
		return 2
	}
	return 2 + (level-1)/4
}

// Skill is an ability check the engine rolls
type Skill string

const (
	Athletics  Skill = "athletics"
	Acrobatics Skill = "acrobatics"
	Stealth    Skill = "stealth"
	Perception Skill = "perception"
)

// Ability returns the ability a skill is keyed to
func (s Skill) Ability() Ability {
	switch s {
	case Athletics:
		return Strength
	case Acrobatics, Stealth:
		return Dexterity
	case Perception:
		return Wisdom
	}
	return Strength
}

// Size is a creature size category. The zero value is medium.
type Size int

const (
	SizeTiny Size = iota - 2
	SizeSmall
	SizeMedium
	SizeLarge
	SizeHuge
	SizeGargantuan
)

var sizeNames = []string{"tiny", "small", "medium", "large", "huge", "gargantuan"}

func (s Size) String() string {
	i := int(s - SizeTiny)
	if i < 0 || i >= len(sizeNames) {
		return "medium"
	}
	return sizeNames[i]
}

// MarshalText renders the size name
func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a size name; empty means medium
func (s *Size) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	if name == "" {
		*s = SizeMedium
		return nil
	}
	for i, n := range sizeNames {
		if n == name {
			*s = SizeTiny + Size(i)
			return nil
		}
	}
	return fmt.Errorf("unknown size %q", text)
}

// DamageType names a kind of damage
type DamageType string

const (
	Bludgeoning DamageType = "bludgeoning"
	Piercing    DamageType = "piercing"
	Slashing    DamageType = "slashing"
	Fire        DamageType = "fire"
	Cold        DamageType = "cold"
	Lightning   DamageType = "lightning"
	Thunder     DamageType = "thunder"
	Acid        DamageType = "acid"
	Poison      DamageType = "poison"
	Necrotic    DamageType = "necrotic"
	Radiant     DamageType = "radiant"
	Force       DamageType = "force"
	Psychic     DamageType = "psychic"
)

// PhysicalDamageTypes are the types rage resists
var PhysicalDamageTypes = []DamageType{Bludgeoning, Piercing, Slashing}
