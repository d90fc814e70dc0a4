package equipment

import (
	"slices"

	"github.com/KirkDiggler/dnd-tactics/internal/dice"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
)

const (
	// WeaponKeyShortsword is the key for shortsword weapons
	WeaponKeyShortsword = "shortsword"
	// WeaponKeyUnarmedStrike is the built-in unarmed attack
	WeaponKeyUnarmedStrike = "unarmed-strike"
)

// Weapon properties the engine understands
const (
	PropertyAmmunition = "ammunition"
	PropertyFinesse    = "finesse"
	PropertyHeavy      = "heavy"
	PropertyLight      = "light"
	PropertyLoading    = "loading"
	PropertyReach      = "reach"
	PropertyThrown     = "thrown"
	PropertyTwoHanded  = "two-handed"
	PropertyVersatile  = "versatile"
)

// Weapon masteries
const (
	MasteryCleave = "cleave"
	MasteryGraze  = "graze"
	MasteryNick   = "nick"
	MasteryPush   = "push"
	MasterySap    = "sap"
	MasterySlow   = "slow"
	MasteryTopple = "topple"
	MasteryVex    = "vex"
)

// Weapon is catalog data for one weapon. Ranges are in feet.
type Weapon struct {
	Key             string           `json:"key" yaml:"key"`
	Name            string           `json:"name" yaml:"name"`
	Category        string           `json:"category" yaml:"category"`
	WeaponRange     string           `json:"weapon_range" yaml:"weapon_range"`
	Damage          dice.Expression  `json:"damage" yaml:"damage"`
	DamageType      rules.DamageType `json:"damage_type" yaml:"damage_type"`
	TwoHandedDamage *dice.Expression `json:"two_handed_damage,omitempty" yaml:"two_handed_damage"`
	Range           int              `json:"range,omitempty" yaml:"range"`
	LongRange       int              `json:"long_range,omitempty" yaml:"long_range"`
	Properties      []string         `json:"properties,omitempty" yaml:"properties"`
	Mastery         string           `json:"mastery,omitempty" yaml:"mastery"`
	MagicBonus      int              `json:"magic_bonus,omitempty" yaml:"magic_bonus"`
	// Ammunition names the ammunition kind consumed, such as "arrow"
	Ammunition string `json:"ammunition,omitempty" yaml:"ammunition"`
}

func (w *Weapon) IsRanged() bool {
	return w.WeaponRange == "ranged"
}

func (w *Weapon) IsMelee() bool {
	return !w.IsRanged()
}

func (w *Weapon) IsSimple() bool {
	return w.Category == "simple"
}

func (w *Weapon) IsFinesse() bool {
	return w.HasProperty(PropertyFinesse)
}

func (w *Weapon) IsLight() bool {
	return w.HasProperty(PropertyLight)
}

func (w *Weapon) IsHeavy() bool {
	return w.HasProperty(PropertyHeavy)
}

func (w *Weapon) IsTwoHanded() bool {
	return w.HasProperty(PropertyTwoHanded)
}

func (w *Weapon) UsesAmmunition() bool {
	return w.HasProperty(PropertyAmmunition)
}

// IsMonkWeapon returns true if this weapon can be used with monk Martial Arts.
// Monk weapons are shortswords, unarmed strikes, and simple melee weapons
// without the two-handed or heavy property.
func (w *Weapon) IsMonkWeapon() bool {
	if w.Key == WeaponKeyShortsword || w.Key == WeaponKeyUnarmedStrike {
		return true
	}
	return w.IsSimple() && w.IsMelee() && !w.IsTwoHanded() && !w.IsHeavy()
}

// HasProperty checks if the weapon has a specific property
func (w *Weapon) HasProperty(prop string) bool {
	return slices.Contains(w.Properties, prop)
}

// Reach is the melee reach in feet
func (w *Weapon) Reach() int {
	if w.HasProperty(PropertyReach) {
		return 10
	}
	return 5
}

// NormalRange is the distance up to which attacks suffer no long-range
// penalty. Melee weapons use their reach.
func (w *Weapon) NormalRange() int {
	if w.IsMelee() && !w.HasProperty(PropertyThrown) {
		return w.Reach()
	}
	return max(w.Range, w.Reach())
}

// MaxRange is the long range when listed, four times the normal range for
// ammunition weapons without one, and the normal range otherwise.
func (w *Weapon) MaxRange() int {
	switch {
	case w.IsMelee() && !w.HasProperty(PropertyThrown):
		return w.Reach()
	case w.LongRange > 0:
		return w.LongRange
	case w.UsesAmmunition():
		return 4 * w.Range
	}
	return w.NormalRange()
}

// AttackAbility selects the ability an attack with this weapon uses:
// finesse takes the better of STR and DEX, ammunition weapons use DEX, and
// everything else uses STR.
func (w *Weapon) AttackAbility(scores rules.AbilityScores) rules.Ability {
	switch {
	case w.IsFinesse():
		if scores.Modifier(rules.Dexterity) > scores.Modifier(rules.Strength) {
			return rules.Dexterity
		}
		return rules.Strength
	case w.UsesAmmunition():
		return rules.Dexterity
	}
	return rules.Strength
}
