package combat

import (
	"github.com/KirkDiggler/dnd-tactics/internal/dice"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/monster"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
)

func dragonSheet() *Combatant {
	return &Combatant{
		ID:        "dragon",
		Name:      "Dragon",
		HP:        110,
		AC:        17,
		Speed:     40,
		Size:      rules.SizeLarge,
		Abilities: rules.AbilityScores{Strength: 19, Dexterity: 10, Constitution: 17},
		Actions: []*monster.Action{{
			Key:         "bite",
			Name:        "Bite",
			AttackBonus: 7,
			Damage:      dice.MustParse("2d10+4"),
			DamageType:  rules.Piercing,
			Reach:       10,
		}},
		AreaAbilities: []*monster.AreaAbility{{
			ID:          "fire-breath",
			Name:        "Fire Breath",
			Recharge:    5,
			Shape:       grid.ShapeCone,
			Size:        15,
			SaveAbility: rules.Dexterity,
			DC:          13,
			Damage:      dice.MustParse("2d6"),
			DamageType:  rules.Fire,
			HalfOnSave:  true,
		}},
		LegendaryPerRound: 3,
		LegendaryActions: []*monster.LegendaryAction{
			{ID: "wing", Name: "Wing Attack", Cost: 2, Kind: monster.LegendaryMove},
			{ID: "step", Name: "Step", Cost: 1, Kind: monster.LegendaryMove},
			{ID: "bite", Name: "Bite", Cost: 1, Kind: monster.LegendaryAttack, Ref: "bite"},
		},
	}
}

func (s *EngineTestSuite) legendary(monsterID, actionID, target string) *ActionResult {
	result, err := s.engine.ExecuteLegendaryAction(monsterID, actionID, target)
	s.Require().NoError(err)
	s.Require().NotNil(result)
	return result
}

func (s *EngineTestSuite) TestMultiattack_StopsWhenTheTargetDrops() {
	ogre := ogreSheet()
	ogre.Multiattack = []string{"greatclub", "greatclub"}
	wizard := wizardSheet()
	wizard.HP = 8
	// wizard 2, ogre 20-1
	s.start([]*Combatant{wizard}, []*Combatant{ogre},
		map[string]grid.Position{"wizard": at(1, 1), "ogre": at(2, 1)}, 2, 20)
	s.Require().Equal("ogre", s.engine.state.Turn.CombatantID)

	s.rolls(15, 3, 3)
	result := s.act(Multiattack{Target: "wizard"})
	s.Require().True(result.Success)
	s.Equal(1, result.ExtraData["hits"])
	s.Len(result.ExtraData["attacks"], 1)
	s.Equal(10, result.DamageDealt)
	s.Zero(s.combatant("wizard").HP)
	s.Equal(1, s.lastEvent(EventMultiattack).Data["hits"])
	s.Equal(0, s.roller.Remaining())
}

func (s *EngineTestSuite) TestMultiattack_RunsEveryAttack() {
	ogre := ogreSheet()
	ogre.Multiattack = []string{"greatclub", "greatclub"}
	s.start([]*Combatant{fighterSheet(5)}, []*Combatant{ogre},
		map[string]grid.Position{"fighter": at(1, 1), "ogre": at(2, 1)}, 2, 20)

	// a hit for 2d8+4 then a miss
	s.rolls(15, 3, 3, 2)
	result := s.act(Multiattack{Target: "fighter"})
	s.Require().True(result.Success)
	s.Equal(1, result.ExtraData["hits"])
	s.Len(result.ExtraData["attacks"], 2)
	s.Equal(34, s.combatant("fighter").HP)
	s.Equal(2, s.countEvents(EventAttack))
}

func (s *EngineTestSuite) TestMultiattack_OutOfRangeChangesNothing() {
	ogre := ogreSheet()
	ogre.Multiattack = []string{"greatclub", "greatclub"}
	s.start([]*Combatant{wizardSheet()}, []*Combatant{ogre},
		map[string]grid.Position{"wizard": at(1, 1), "ogre": at(3, 1)}, 2, 20)
	before := s.encoded()

	result := s.act(Multiattack{Target: "wizard"})
	s.False(result.Success)
	s.Equal("Wizard is out of range (10 ft, Greatclub reaches 5 ft)", result.Description)
	s.JSONEq(string(before), string(s.encoded()))
}

func (s *EngineTestSuite) TestMultiattack_RequiresARoutine() {
	s.start([]*Combatant{wizardSheet()}, []*Combatant{ogreSheet()},
		map[string]grid.Position{"wizard": at(1, 1), "ogre": at(2, 1)}, 2, 20)

	result := s.act(Multiattack{Target: "wizard"})
	s.False(result.Success)
	s.Equal("Ogre has no multiattack", result.Description)
}

func (s *EngineTestSuite) TestAreaAbility_SavesAndRecharge() {
	// fighter 2+1, wizard 2+0, dragon 20
	s.start([]*Combatant{fighterSheet(5), wizardSheet()}, []*Combatant{dragonSheet()},
		map[string]grid.Position{"dragon": at(0, 0), "fighter": at(2, 0), "wizard": at(2, 1)}, 2, 2, 20)
	s.Require().Equal("dragon", s.engine.state.Turn.CombatantID)

	// 2d6 rolls 7; the fighter saves on 15+1, the wizard fails on 2
	s.rolls(3, 4, 15, 2)
	result := s.act(UseAbility{Ability: "fire-breath", Target: "fighter"})
	s.Require().True(result.Success)
	s.Equal(7, result.ExtraData["rolled"])
	s.Equal(10, result.DamageDealt)
	s.Equal(41, s.combatant("fighter").HP)
	s.Equal(13, s.combatant("wizard").HP)
	s.Equal(map[string]any{"damage": 3, "saved": true}, result.ExtraData["targets"].(map[string]any)["fighter"])
	s.False(s.engine.abilityAvailable("dragon", "fire-breath"))
	s.Equal(0, s.roller.Remaining())

	s.Equal("fighter", s.endTurn())
	s.Equal("wizard", s.endTurn())

	// a recharge roll of 4 misses the 5 needed
	s.rolls(4)
	s.Equal("dragon", s.endTurn())
	s.Equal(false, s.lastEvent(EventRecharge).Data["recharged"])
	blocked := s.act(UseAbility{Ability: "fire-breath", Target: "fighter"})
	s.False(blocked.Success)
	s.Equal("Fire Breath is recharging", blocked.Description)

	s.Equal("fighter", s.endTurn())
	s.Equal("wizard", s.endTurn())
	s.rolls(6)
	s.Equal("dragon", s.endTurn())
	s.Equal(true, s.lastEvent(EventRecharge).Data["recharged"])
	s.True(s.engine.abilityAvailable("dragon", "fire-breath"))
	s.Equal(2, s.countEvents(EventRecharge))
}

func (s *EngineTestSuite) TestAreaAbility_NeedsADirection() {
	s.start([]*Combatant{fighterSheet(5)}, []*Combatant{dragonSheet()},
		map[string]grid.Position{"dragon": at(0, 0), "fighter": at(2, 0)}, 2, 20)

	result := s.act(UseAbility{Ability: "fire-breath", Point: at(0, 0)})
	s.False(result.Success)
	s.Equal("Fire Breath needs a direction", result.Description)
}

func (s *EngineTestSuite) TestLegendaryActions_SpendThePool() {
	// fighter 15+1, dragon 2
	s.start([]*Combatant{fighterSheet(5)}, []*Combatant{dragonSheet()},
		map[string]grid.Position{"fighter": at(0, 0), "dragon": at(6, 0)}, 15, 2)
	s.Equal(3, s.engine.state.LegendaryRemaining["dragon"])

	// half of 40 ft
	wing := s.legendary("dragon", "wing", "fighter")
	s.Require().True(wing.Success)
	s.Equal(2, s.engine.state.Positions["dragon"].X)
	s.Equal(10, s.engine.distance("dragon", "fighter"))
	s.Equal(1, wing.ExtraData["remaining"])

	again := s.legendary("dragon", "wing", "fighter")
	s.False(again.Success)
	s.Equal("not enough legendary actions", again.Description)

	step := s.legendary("dragon", "step", "fighter")
	s.Require().True(step.Success)
	s.Equal(5, s.engine.distance("dragon", "fighter"))
	s.Zero(s.engine.state.LegendaryRemaining["dragon"])
	s.Equal(2, s.countEvents(EventLegendaryAction))

	// the pool refills at the start of the dragon's turn, where it cannot be spent
	s.Equal("dragon", s.endTurn())
	s.Equal(3, s.engine.state.LegendaryRemaining["dragon"])
	own := s.legendary("dragon", "step", "fighter")
	s.False(own.Success)
	s.Equal("cannot use legendary actions on its own turn", own.Description)
}

func (s *EngineTestSuite) TestLegendaryActions_Attack() {
	s.start([]*Combatant{fighterSheet(5)}, []*Combatant{dragonSheet()},
		map[string]grid.Position{"fighter": at(0, 0), "dragon": at(2, 0)}, 15, 2)

	// 15+7 hits AC 18, 2d10 rolls 5,5 +4
	s.rolls(15, 5, 5)
	result := s.legendary("dragon", "bite", "fighter")
	s.Require().True(result.Success)
	s.Equal(30, s.combatant("fighter").HP)
	s.Equal(2, s.engine.state.LegendaryRemaining["dragon"])

	// a legendary attack does not use the dragon's reaction or the fighter's turn
	s.False(s.engine.state.ReactionsUsed["dragon"])
	s.Zero(s.engine.state.Turn.AttacksMade)
	s.Equal("fighter", s.engine.state.Turn.CombatantID)

	unknown := s.legendary("dragon", "tail", "fighter")
	s.False(unknown.Success)
	s.Equal("Dragon has no legendary action tail", unknown.Description)
}
