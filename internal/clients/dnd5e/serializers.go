package dnd5e

import (
	"regexp"
	"strconv"
	"strings"

	apiEntities "github.com/fadedpez/dnd5e-api/entities"

	"github.com/KirkDiggler/dnd-tactics/internal/dice"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/monster"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

// weaponRange is the SRD range and ammunition of a ranged or thrown weapon.
// The API reference items carry neither.
type weaponRange struct {
	normal, long int
	ammunition   string
}

var srdRanges = map[string]weaponRange{
	"dagger":         {normal: 20, long: 60},
	"dart":           {normal: 20, long: 60},
	"handaxe":        {normal: 20, long: 60},
	"javelin":        {normal: 30, long: 120},
	"light-hammer":   {normal: 20, long: 60},
	"spear":          {normal: 20, long: 60},
	"trident":        {normal: 20, long: 60},
	"net":            {normal: 5, long: 15},
	"blowgun":        {normal: 25, long: 100, ammunition: "blowgun-needle"},
	"crossbow-hand":  {normal: 30, long: 120, ammunition: "bolt"},
	"crossbow-heavy": {normal: 100, long: 400, ammunition: "bolt"},
	"crossbow-light": {normal: 80, long: 320, ammunition: "bolt"},
	"longbow":        {normal: 150, long: 600, ammunition: "arrow"},
	"shortbow":       {normal: 80, long: 320, ammunition: "arrow"},
	"sling":          {normal: 30, long: 120, ammunition: "sling-bullet"},
}

func apiWeaponToWeapon(input *apiEntities.Weapon) (*equipment.Weapon, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("weapon is required")
	}

	w := &equipment.Weapon{
		Key:         input.Key,
		Name:        input.Name,
		Category:    strings.ToLower(input.WeaponCategory),
		WeaponRange: strings.ToLower(input.WeaponRange),
		Properties:  apiReferenceItemKeys(input.Properties),
	}

	if input.Damage != nil {
		expr, err := dice.Parse(input.Damage.DamageDice)
		if err != nil {
			return nil, dnderr.WrapWithCode(err, dnderr.CodeValidation, "weapon "+input.Key+" has unreadable damage")
		}
		w.Damage = expr
		w.DamageType = apiDamageTypeToDamageType(input.Damage.DamageType)
	}
	if input.TwoHandedDamage != nil {
		expr, err := dice.Parse(input.TwoHandedDamage.DamageDice)
		if err == nil {
			w.TwoHandedDamage = &expr
		}
	}

	if r, ok := srdRanges[w.Key]; ok {
		w.Range, w.LongRange, w.Ammunition = r.normal, r.long, r.ammunition
	}
	return w, nil
}

func apiArmorToArmor(input *apiEntities.Armor) (*equipment.Armor, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("armor is required")
	}

	var category equipment.ArmorCategory
	switch strings.ToLower(input.ArmorCategory) {
	case "light":
		category = equipment.ArmorCategoryLight
	case "medium":
		category = equipment.ArmorCategoryMedium
	case "heavy":
		category = equipment.ArmorCategoryHeavy
	case "shield":
		category = equipment.ArmorCategoryShield
	default:
		return nil, dnderr.Validationf("armor %s has unknown category %q", input.Key, input.ArmorCategory)
	}

	return &equipment.Armor{
		Key:                 input.Key,
		Name:                input.Name,
		Category:            category,
		BaseAC:              int(input.ArmorClass.Base),
		StealthDisadvantage: input.StealthDisadvantage,
	}, nil
}

func apiDamageTypeToDamageType(input *apiEntities.ReferenceItem) rules.DamageType {
	if input == nil {
		return ""
	}
	return rules.DamageType(strings.ToLower(input.Key))
}

func apiReferenceItemKeys(input []*apiEntities.ReferenceItem) []string {
	if input == nil {
		return nil
	}

	keys := make([]string, 0, len(input))
	for _, item := range input {
		if item != nil && item.Key != "" {
			keys = append(keys, item.Key)
		}
	}
	return keys
}

func apiMonsterToTemplate(input *apiEntities.Monster) *monster.Template {
	if input == nil {
		return nil
	}

	return &monster.Template{
		Key:             input.Key,
		Name:            input.Name,
		Type:            strings.ToLower(input.Type),
		ArmorClass:      int(input.ArmorClass),
		HitPoints:       int(input.HitPoints),
		HitDice:         input.HitDice,
		ChallengeRating: float64(input.ChallengeRating),
		Actions:         apisToMonsterActions(input.MonsterActions),
	}
}

func apisToMonsterActions(input []*apiEntities.MonsterAction) []*monster.Action {
	if input == nil {
		return nil
	}

	var actions []*monster.Action
	for _, ma := range input {
		if action := apiToMonsterAction(ma); action != nil {
			actions = append(actions, action)
		}
	}
	return actions
}

var (
	reachPattern = regexp.MustCompile(`reach (\d+) ft`)
	rangePattern = regexp.MustCompile(`range (\d+)(?:/(\d+))? ft`)
)

// apiToMonsterAction keeps attacks only: entries without damage, such as the
// multiattack description, are dropped
func apiToMonsterAction(input *apiEntities.MonsterAction) *monster.Action {
	if input == nil || len(input.Damage) == 0 || input.Damage[0] == nil {
		return nil
	}

	expr, err := dice.Parse(input.Damage[0].DamageDice)
	if err != nil {
		return nil
	}

	action := &monster.Action{
		Key:         monster.Slug(input.Name),
		Name:        input.Name,
		AttackBonus: int(input.AttackBonus),
		Damage:      expr,
		DamageType:  apiDamageTypeToDamageType(input.Damage[0].DamageType),
	}

	desc := strings.ToLower(input.Description)
	if strings.HasPrefix(desc, "ranged") {
		if m := rangePattern.FindStringSubmatch(desc); m != nil {
			action.Ranged = true
			action.Range, _ = strconv.Atoi(m[1])
			if m[2] != "" {
				action.LongRange, _ = strconv.Atoi(m[2])
			}
		}
	} else if m := reachPattern.FindStringSubmatch(desc); m != nil {
		action.Reach, _ = strconv.Atoi(m[1])
	}
	return action
}
