// Package monster holds parsed monster stat blocks: attack actions,
// multiattack routines, recharge-gated area abilities and legendary actions.
package monster

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/dnd-tactics/internal/dice"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
)

// Action is a single weapon-like attack from a stat block
type Action struct {
	Key         string           `json:"key" yaml:"key"`
	Name        string           `json:"name" yaml:"name"`
	AttackBonus int              `json:"attack_bonus" yaml:"attack_bonus"`
	Damage      dice.Expression  `json:"damage" yaml:"damage"`
	DamageType  rules.DamageType `json:"damage_type" yaml:"damage_type"`
	// Reach in feet for melee actions, five when unset
	Reach     int  `json:"reach,omitempty" yaml:"reach"`
	Ranged    bool `json:"ranged,omitempty" yaml:"ranged"`
	Range     int  `json:"range,omitempty" yaml:"range"`
	LongRange int  `json:"long_range,omitempty" yaml:"long_range"`
}

// MaxRange is the farthest distance in feet the action can target
func (a *Action) MaxRange() int {
	if a.Ranged {
		return max(a.Range, a.LongRange)
	}
	if a.Reach > 0 {
		return a.Reach
	}
	return 5
}

// NormalRange is the distance beyond which a ranged action has disadvantage
func (a *Action) NormalRange() int {
	if a.Ranged {
		return a.Range
	}
	return a.MaxRange()
}

// AreaAbility is a save-or-damage effect such as a breath weapon
type AreaAbility struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	// Recharge is the lowest d6 roll that restores the ability; zero means at will
	Recharge int        `json:"recharge,omitempty" yaml:"recharge"`
	Shape    grid.Shape `json:"shape" yaml:"shape"`
	// Size is the radius of a sphere or the length of a cone or line, in feet
	Size int `json:"size" yaml:"size"`
	// Range is how far from the user a sphere may be centred, in feet
	Range       int              `json:"range,omitempty" yaml:"range"`
	SaveAbility rules.Ability    `json:"save_ability,omitempty" yaml:"save_ability"`
	DC          int              `json:"dc,omitempty" yaml:"dc"`
	Damage      dice.Expression  `json:"damage" yaml:"damage"`
	DamageType  rules.DamageType `json:"damage_type" yaml:"damage_type"`
	HalfOnSave  bool             `json:"half_on_save,omitempty" yaml:"half_on_save"`
}

// HasSave reports whether targets get a saving throw
func (a *AreaAbility) HasSave() bool {
	return a.SaveAbility != "" && a.DC > 0
}

// LegendaryKind is what a legendary action does
type LegendaryKind string

const (
	LegendaryAttack  LegendaryKind = "attack"
	LegendaryAbility LegendaryKind = "ability"
	LegendaryMove    LegendaryKind = "move"
)

// LegendaryAction is an option spent from the legendary pool
type LegendaryAction struct {
	ID   string        `json:"id" yaml:"id"`
	Name string        `json:"name" yaml:"name"`
	Cost int           `json:"cost" yaml:"cost"`
	Kind LegendaryKind `json:"kind" yaml:"kind"`
	// Ref names the action or area ability used by attack and ability kinds
	Ref string `json:"ref,omitempty" yaml:"ref"`
}

// Template is a monster stat block
type Template struct {
	Key             string              `json:"key" yaml:"key"`
	Name            string              `json:"name" yaml:"name"`
	Type            string              `json:"type" yaml:"type"`
	Size            rules.Size          `json:"size" yaml:"size"`
	ArmorClass      int                 `json:"armor_class" yaml:"armor_class"`
	HitPoints       int                 `json:"hit_points" yaml:"hit_points"`
	HitDice         string              `json:"hit_dice,omitempty" yaml:"hit_dice"`
	Speed           int                 `json:"speed" yaml:"speed"`
	ChallengeRating float64             `json:"challenge_rating" yaml:"challenge_rating"`
	Abilities       rules.AbilityScores `json:"abilities" yaml:"abilities"`
	Resistances     []rules.DamageType  `json:"resistances,omitempty" yaml:"resistances"`
	Immunities      []rules.DamageType  `json:"immunities,omitempty" yaml:"immunities"`
	Vulnerabilities []rules.DamageType  `json:"vulnerabilities,omitempty" yaml:"vulnerabilities"`

	Actions []*Action `json:"actions,omitempty" yaml:"actions"`
	// Multiattack lists action keys resolved in order
	Multiattack       []string           `json:"multiattack,omitempty" yaml:"multiattack"`
	AreaAbilities     []*AreaAbility     `json:"area_abilities,omitempty" yaml:"area_abilities"`
	LegendaryActions  []*LegendaryAction `json:"legendary_actions,omitempty" yaml:"legendary_actions"`
	LegendaryPerRound int                `json:"legendary_per_round,omitempty" yaml:"legendary_per_round"`
}

// Action finds an action by key or, failing that, by case-insensitive name
func (t *Template) Action(key string) (*Action, bool) {
	return FindAction(t.Actions, key)
}

// AreaAbility finds an area ability by id
func (t *Template) AreaAbility(id string) (*AreaAbility, bool) {
	return FindAreaAbility(t.AreaAbilities, id)
}

// LegendaryAction finds a legendary action by id
func (t *Template) LegendaryAction(id string) (*LegendaryAction, bool) {
	for _, la := range t.LegendaryActions {
		if la.ID == id {
			return la, true
		}
	}
	return nil, false
}

// FindAction searches actions by key, then by name
func FindAction(actions []*Action, key string) (*Action, bool) {
	for _, a := range actions {
		if a.Key == key {
			return a, true
		}
	}
	for _, a := range actions {
		if strings.EqualFold(a.Name, key) {
			return a, true
		}
	}
	return nil, false
}

// FindAreaAbility searches abilities by id
func FindAreaAbility(abilities []*AreaAbility, id string) (*AreaAbility, bool) {
	for _, a := range abilities {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

var rechargePattern = regexp.MustCompile(`(?i)recharge\s+(\d)(?:\s*[-–]\s*6)?`)

// ParseRecharge reads the threshold from a name like "Fire Breath (Recharge 5-6)".
// It returns zero when the name has no recharge.
func ParseRecharge(name string) int {
	m := rechargePattern.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 6 {
		return 0
	}
	return n
}

// Slug turns a display name into a key: "Fire Breath (Recharge 5-6)" becomes "fire-breath"
func Slug(name string) string {
	if i := strings.Index(name, "("); i >= 0 {
		name = name[:i]
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
