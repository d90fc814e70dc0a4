package combat

import (
	"math"
	"slices"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/conditions"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/game/initiative"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/monster"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rulebook"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
)

// Kind separates player characters from monsters
type Kind string

const (
	KindPlayer  Kind = "player"
	KindMonster Kind = "monster"
)

// Feats the engine recognises
const (
	FeatSentinel         = "sentinel"
	FeatSharpshooter     = "sharpshooter"
	FeatCrossbowExpert   = "crossbow-expert"
	FeatWarCaster        = "war-caster"
	FeatTwoWeaponFighter = "two-weapon-fighting"
)

// Combatant is the sheet a caller supplies when starting combat. Zero values
// are filled with defaults when combat starts; the optional resource
// pointers override the class formulas.
type Combatant struct {
	ID               string              `json:"id" yaml:"id"`
	Name             string              `json:"name" yaml:"name"`
	Kind             Kind                `json:"kind" yaml:"kind"`
	CreatureType     string              `json:"creature_type,omitempty" yaml:"creature_type"`
	HP               int                 `json:"hp" yaml:"hp"`
	MaxHP            int                 `json:"max_hp" yaml:"max_hp"`
	AC               int                 `json:"ac" yaml:"ac"`
	Speed            int                 `json:"speed" yaml:"speed"`
	Size             rules.Size          `json:"size" yaml:"size"`
	Abilities        rules.AbilityScores `json:"abilities" yaml:"abilities"`
	Class            string              `json:"class,omitempty" yaml:"class"`
	Subclass         string              `json:"subclass,omitempty" yaml:"subclass"`
	Level            int                 `json:"level,omitempty" yaml:"level"`
	ProficiencyBonus int                 `json:"proficiency_bonus,omitempty" yaml:"proficiency_bonus"`
	InitiativeBonus  int                 `json:"initiative_bonus,omitempty" yaml:"initiative_bonus"`

	SkillProficiencies []rules.Skill      `json:"skill_proficiencies,omitempty" yaml:"skill_proficiencies"`
	SaveProficiencies  []rules.Ability    `json:"save_proficiencies,omitempty" yaml:"save_proficiencies"`
	Feats              []string           `json:"feats,omitempty" yaml:"feats"`
	WeaponMasteries    []string           `json:"weapon_masteries,omitempty" yaml:"weapon_masteries"`
	Resistances        []rules.DamageType `json:"resistances,omitempty" yaml:"resistances"`
	Immunities         []rules.DamageType `json:"immunities,omitempty" yaml:"immunities"`
	Vulnerabilities    []rules.DamageType `json:"vulnerabilities,omitempty" yaml:"vulnerabilities"`
	Conditions         []conditions.Type  `json:"conditions,omitempty" yaml:"conditions"`
	Exhaustion         int                `json:"exhaustion,omitempty" yaml:"exhaustion"`
	Surprised          bool               `json:"surprised,omitempty" yaml:"surprised"`
	Concentration      string             `json:"concentration,omitempty" yaml:"concentration"`

	MainHand   string         `json:"main_hand,omitempty" yaml:"main_hand"`
	OffHand    string         `json:"off_hand,omitempty" yaml:"off_hand"`
	Armor      string         `json:"armor,omitempty" yaml:"armor"`
	Encumbered bool           `json:"encumbered,omitempty" yaml:"encumbered"`
	Ammunition map[string]int `json:"ammunition,omitempty" yaml:"ammunition"`

	SpellSlots      map[int]int `json:"spell_slots,omitempty" yaml:"spell_slots"`
	RageUses        *int        `json:"rage_uses,omitempty" yaml:"rage_uses"`
	KiPoints        *int        `json:"ki_points,omitempty" yaml:"ki_points"`
	SecondWindUses  *int        `json:"second_wind_uses,omitempty" yaml:"second_wind_uses"`
	ActionSurgeUses *int        `json:"action_surge_uses,omitempty" yaml:"action_surge_uses"`

	Actions           []*monster.Action          `json:"actions,omitempty" yaml:"actions"`
	Multiattack       []string                   `json:"multiattack,omitempty" yaml:"multiattack"`
	AreaAbilities     []*monster.AreaAbility     `json:"area_abilities,omitempty" yaml:"area_abilities"`
	LegendaryActions  []*monster.LegendaryAction `json:"legendary_actions,omitempty" yaml:"legendary_actions"`
	LegendaryPerRound int                        `json:"legendary_per_round,omitempty" yaml:"legendary_per_round"`
}

// FromTemplate builds a monster combatant from a bestiary entry
func FromTemplate(id string, t *monster.Template) *Combatant {
	t = t.Clone()
	return &Combatant{
		ID:                id,
		Name:              t.Name,
		Kind:              KindMonster,
		CreatureType:      t.Type,
		HP:                t.HitPoints,
		MaxHP:             t.HitPoints,
		AC:                t.ArmorClass,
		Speed:             t.Speed,
		Size:              t.Size,
		Abilities:         t.Abilities,
		ProficiencyBonus:  challengeProficiency(t.ChallengeRating),
		Resistances:       t.Resistances,
		Immunities:        t.Immunities,
		Vulnerabilities:   t.Vulnerabilities,
		Actions:           t.Actions,
		Multiattack:       t.Multiattack,
		AreaAbilities:     t.AreaAbilities,
		LegendaryActions:  t.LegendaryActions,
		LegendaryPerRound: t.LegendaryPerRound,
	}
}

// challengeProficiency is +2 up to CR 4, rising by one every four ratings
func challengeProficiency(cr float64) int {
	rating := int(math.Ceil(cr))
	return 2 + max(0, rating-1)/4
}

// DeathSaves tracks a dying player
type DeathSaves struct {
	Successes int  `json:"successes"`
	Failures  int  `json:"failures"`
	Stable    bool `json:"stable"`
	Dead      bool `json:"dead"`
}

// CombatantState is the typed, mutable record the engine keeps for each
// combatant. It is the single source of truth for anything that changes
// during combat.
type CombatantState struct {
	Combatant

	Side initiative.Side `json:"side"`

	Raging               bool               `json:"raging,omitempty"`
	RageRounds           int                `json:"rage_rounds,omitempty"`
	RageUsesRemaining    int                `json:"rage_uses_remaining"`
	RageAddedResistances []rules.DamageType `json:"rage_added_resistances,omitempty"`
	KiRemaining          int                `json:"ki_remaining"`
	SecondWindRemaining  int                `json:"second_wind_remaining"`
	ActionSurgeRemaining int                `json:"action_surge_remaining"`

	DeathSaves DeathSaves `json:"death_saves"`
	GrappledBy string     `json:"grappled_by,omitempty"`
	Grappling  []string   `json:"grappling,omitempty"`

	// VexTarget grants advantage on the next attack against that combatant
	VexTarget  string `json:"vex_target,omitempty"`
	VexExpires int    `json:"vex_expires,omitempty"`
	SteadyAim  bool   `json:"steady_aim,omitempty"`
	// TookDamage is set by damage taken since the combatant's last turn ended
	TookDamage bool `json:"took_damage,omitempty"`
}

func (c *CombatantState) isPlayer() bool {
	return c.Kind == KindPlayer
}

func (c *CombatantState) has(cond conditions.Type) bool {
	return slices.Contains(c.Conditions, cond)
}

func (c *CombatantState) addCondition(cond conditions.Type) bool {
	if c.has(cond) {
		return false
	}
	c.Conditions = append(c.Conditions, cond)
	return true
}

func (c *CombatantState) removeCondition(cond conditions.Type) bool {
	if !c.has(cond) {
		return false
	}
	c.Conditions = slices.DeleteFunc(c.Conditions, func(t conditions.Type) bool { return t == cond })
	return true
}

func (c *CombatantState) hasFeat(feat string) bool {
	return slices.Contains(c.Feats, feat)
}

func (c *CombatantState) masters(weaponKey string) bool {
	return slices.Contains(c.WeaponMasteries, weaponKey)
}

func (c *CombatantState) resists(t rules.DamageType) bool {
	return slices.Contains(c.Resistances, t)
}

func (c *CombatantState) immune(t rules.DamageType) bool {
	return slices.Contains(c.Immunities, t)
}

func (c *CombatantState) vulnerable(t rules.DamageType) bool {
	return slices.Contains(c.Vulnerabilities, t)
}

func (c *CombatantState) skillModifier(skill rules.Skill) int {
	mod := c.Abilities.Modifier(skill.Ability())
	if slices.Contains(c.SkillProficiencies, skill) {
		mod += c.ProficiencyBonus
	}
	return mod
}

func (c *CombatantState) saveModifier(ability rules.Ability) int {
	mod := c.Abilities.Modifier(ability)
	if slices.Contains(c.SaveProficiencies, ability) {
		mod += c.ProficiencyBonus
	}
	return mod
}

// passivePerception is 10 + Perception
func (c *CombatantState) passivePerception() int {
	return 10 + c.skillModifier(rules.Perception)
}

func (c *CombatantState) isClass(class string, minLevel int) bool {
	return c.Class == class && c.Level >= minLevel
}

// normalize turns a caller's sheet into engine state, filling every default
// once so no read site needs a fallback.
func normalize(sheet *Combatant, side initiative.Side, features rulebook.ClassFeatures) *CombatantState {
	c := *sheet
	c.Conditions = slices.Clone(sheet.Conditions)
	c.Resistances = slices.Clone(sheet.Resistances)
	c.Immunities = slices.Clone(sheet.Immunities)
	c.Vulnerabilities = slices.Clone(sheet.Vulnerabilities)
	c.Feats = slices.Clone(sheet.Feats)
	c.WeaponMasteries = slices.Clone(sheet.WeaponMasteries)

	if c.Kind == "" {
		if side == initiative.SideParty {
			c.Kind = KindPlayer
		} else {
			c.Kind = KindMonster
		}
	}
	if c.Name == "" {
		c.Name = c.ID
	}
	if c.Level < 1 {
		c.Level = 1
	}
	if c.Speed <= 0 {
		c.Speed = 30
	}
	if c.MaxHP < 0 {
		c.MaxHP = 0
	}
	if c.MaxHP == 0 && c.HP > 0 {
		c.MaxHP = c.HP
	}
	c.HP = min(max(c.HP, 0), c.MaxHP)
	if c.ProficiencyBonus <= 0 {
		c.ProficiencyBonus = rules.ProficiencyBonus(c.Level)
	}
	c.Abilities = c.Abilities.WithDefaults()

	state := &CombatantState{Combatant: c, Side: side}

	state.RageUsesRemaining = resource(sheet.RageUses, c.Class == rulebook.ClassBarbarian, func() int { return features.RageUses(c.Level) })
	state.KiRemaining = resource(sheet.KiPoints, c.Class == rulebook.ClassMonk, func() int { return features.KiPoints(c.Level) })
	state.SecondWindRemaining = resource(sheet.SecondWindUses, c.Class == rulebook.ClassFighter, func() int { return features.SecondWindUses(c.Level) })
	state.ActionSurgeRemaining = resource(sheet.ActionSurgeUses, c.Class == rulebook.ClassFighter, func() int { return features.ActionSurgeUses(c.Level) })

	if sheet.SpellSlots != nil {
		state.SpellSlots = make(map[int]int, len(sheet.SpellSlots))
		for k, v := range sheet.SpellSlots {
			state.SpellSlots[k] = v
		}
	} else {
		state.SpellSlots = features.SpellSlots(c.Class, c.Level)
	}
	return state
}

func resource(override *int, applies bool, formula func() int) int {
	if override != nil {
		return *override
	}
	if !applies {
		return 0
	}
	return formula()
}
