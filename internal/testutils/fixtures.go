package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/dnd-tactics/internal/dice"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/game/combat"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/monster"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rulebook"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
)

// CreateTestFighter creates a level 5 fighter with a longsword
func CreateTestFighter(id, name string) *combat.Combatant {
	return &combat.Combatant{
		ID:                 id,
		Name:               name,
		Class:              rulebook.ClassFighter,
		Level:              5,
		HP:                 44,
		AC:                 18,
		Abilities:          rules.AbilityScores{Strength: 16, Dexterity: 12, Constitution: 14, Intelligence: 10, Wisdom: 10, Charisma: 10},
		SkillProficiencies: []rules.Skill{rules.Athletics},
		SaveProficiencies:  []rules.Ability{rules.Strength, rules.Constitution},
		MainHand:           "longsword",
	}
}

// CreateTestGoblin creates a goblin with a scimitar
func CreateTestGoblin(id string) *combat.Combatant {
	return &combat.Combatant{
		ID:           id,
		Name:         "Goblin",
		CreatureType: "humanoid",
		HP:           7,
		AC:           15,
		Size:         rules.SizeSmall,
		Abilities:    rules.AbilityScores{Strength: 8, Dexterity: 14, Constitution: 10, Intelligence: 10, Wisdom: 8, Charisma: 8},
		Actions: []*monster.Action{
			{
				Key:         "scimitar",
				Name:        "Scimitar",
				AttackBonus: 4,
				Damage:      dice.MustParse("1d6+2"),
				DamageType:  rules.Slashing,
			},
		},
	}
}

// CreateTestMonster builds a combatant from the bundled bestiary
func CreateTestMonster(t *testing.T, key, id string) *combat.Combatant {
	t.Helper()
	bestiary, err := monster.DefaultBestiary()
	require.NoError(t, err)
	template, err := bestiary.Monster(key)
	require.NoError(t, err)
	return combat.FromTemplate(id, template)
}

// CreateTestSkirmish lines a fighter up against a goblin in adjacent cells
func CreateTestSkirmish() (players, enemies []*combat.Combatant, positions map[string]grid.Position) {
	players = []*combat.Combatant{CreateTestFighter("fighter", "Fighter")}
	enemies = []*combat.Combatant{CreateTestGoblin("goblin")}
	positions = map[string]grid.Position{
		"fighter": {X: 1, Y: 1},
		"goblin":  {X: 2, Y: 1},
	}
	return players, enemies, positions
}
