package combat

import (
	"github.com/KirkDiggler/dnd-tactics/internal/domain/conditions"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
)

// wielding is a level 5 fighter who has mastered weapon and carries it
func wielding(weapon string) *Combatant {
	fighter := fighterSheet(5)
	fighter.MainHand = weapon
	fighter.WeaponMasteries = []string{weapon}
	return fighter
}

func (s *EngineTestSuite) TestMastery_Cleave() {
	second := ogreSheet()
	second.ID, second.Name = "ogre2", "Second Ogre"
	s.start([]*Combatant{wielding("greataxe")}, []*Combatant{ogreSheet(), second},
		map[string]grid.Position{"fighter": at(1, 1), "ogre": at(2, 1), "ogre2": at(2, 2)}, 15, 5, 5)

	// 1d12 rolls 6 +3, then the cleave swing rolls 6 with no modifier
	s.rolls(15, 6, 15, 6)
	result := s.act(Attack{Target: "ogre"})
	s.Require().True(result.Success)
	s.Equal("cleave", result.ExtraData["mastery"])
	s.Equal("ogre2", result.ExtraData["cleave_target"])
	s.Equal(true, result.ExtraData["cleave_hit"])
	s.Equal(6, result.ExtraData["cleave_damage"])
	s.Equal(50, s.combatant("ogre").HP)
	s.Equal(53, s.combatant("ogre2").HP)
	s.Equal(1, s.engine.state.Turn.AttacksMade)
	s.True(s.engine.state.Turn.CleaveUsed)

	// once per turn
	s.rolls(15, 6)
	again := s.act(Attack{Target: "ogre"})
	s.Require().True(again.Success)
	s.Nil(again.ExtraData["cleave_target"])
	s.Equal(0, s.roller.Remaining())
}

func (s *EngineTestSuite) TestMastery_GrazeOnAMiss() {
	s.duel(wielding("greatsword"))

	// 2+6=8 misses AC 11
	s.rolls(2)
	result := s.act(Attack{Target: "ogre"})
	s.Require().True(result.Success)
	s.Equal(false, result.ExtraData["hit"])
	s.Equal("graze", result.ExtraData["mastery"])
	s.Equal(3, result.DamageDealt)
	s.Contains(result.Description, "grazes for 3 damage")
	s.Equal(56, s.combatant("ogre").HP)
	s.Equal(0, s.roller.Remaining())
}

func (s *EngineTestSuite) TestMastery_GrazeNeedsTheMastery() {
	fighter := fighterSheet(5)
	fighter.MainHand = "greatsword"
	s.duel(fighter)

	s.rolls(2)
	result := s.act(Attack{Target: "ogre"})
	s.Require().True(result.Success)
	s.Equal(0, result.DamageDealt)
	s.Equal(59, s.combatant("ogre").HP)
}

func (s *EngineTestSuite) TestMastery_VexGrantsAdvantageOnTheNextAttack() {
	s.duel(wielding("rapier"))

	s.rolls(15, 5)
	first := s.act(Attack{Target: "ogre"})
	s.Require().True(first.Success)
	s.Equal("vex", first.ExtraData["mastery"])
	s.Equal("ogre", s.combatant("fighter").VexTarget)

	// advantage keeps the 15
	s.rolls(3, 15, 5)
	second := s.act(Attack{Target: "ogre"})
	s.Require().True(second.Success)
	s.Equal(true, second.ExtraData["advantage"])
	s.Equal(true, second.ExtraData["hit"])
	s.Contains(second.EffectsApplied, "vex")
	s.Equal(59-16, s.combatant("ogre").HP)
	s.Equal(0, s.roller.Remaining())
}

func (s *EngineTestSuite) TestMastery_SapImposesDisadvantage() {
	s.duel(wielding("longsword"))

	s.rolls(15, 5)
	result := s.act(Attack{Target: "ogre"})
	s.Require().True(result.Success)
	s.Equal("sap", result.ExtraData["mastery"])
	s.True(s.combatant("ogre").has(conditions.Sapped))
	s.Equal("ogre", s.endTurn())

	// disadvantage keeps the 3, 3+6=9 misses AC 18
	s.rolls(15, 3)
	swing := s.act(Attack{Target: "fighter"})
	s.Require().True(swing.Success)
	s.Equal(true, swing.ExtraData["disadvantage"])
	s.Equal(false, swing.ExtraData["hit"])
	s.False(s.combatant("ogre").has(conditions.Sapped))
	s.Equal(44, s.combatant("fighter").HP)
	s.Equal(0, s.roller.Remaining())
}

func (s *EngineTestSuite) TestMastery_SlowLastsUntilTheAttackersNextTurn() {
	s.duel(wielding("club"))

	s.rolls(15, 2)
	result := s.act(Attack{Target: "ogre"})
	s.Require().True(result.Success)
	s.Equal("slow", result.ExtraData["mastery"])

	ogre := s.combatant("ogre")
	s.True(ogre.has(conditions.Slowed))
	s.Equal(30, s.engine.effectiveSpeed(ogre))

	s.Equal("ogre", s.endTurn())
	s.True(ogre.has(conditions.Slowed))
	s.Equal("fighter", s.endTurn())
	s.False(ogre.has(conditions.Slowed))
	s.Equal(40, s.engine.effectiveSpeed(ogre))
}

func (s *EngineTestSuite) TestMastery_PushMovesTheTargetAway() {
	s.roller.SetRolls([]int{15, 5})
	_, err := s.engine.StartCombat([]*Combatant{wielding("greatclub")}, []*Combatant{ogreSheet()},
		map[string]grid.Position{"fighter": at(1, 1), "ogre": at(2, 1)}, grid.New(8, 4))
	s.Require().NoError(err)

	s.rolls(15, 5)
	result := s.act(Attack{Target: "ogre"})
	s.Require().True(result.Success)
	s.Equal("push", result.ExtraData["mastery"])
	s.Equal(at(4, 1), result.ExtraData["pushed_to"])
	s.Equal(at(4, 1), s.engine.state.Positions["ogre"])
	s.Equal(true, s.lastEvent(EventMove).Data["forced"])
}

func (s *EngineTestSuite) TestMastery_PushStopsAtAWall() {
	g := grid.New(8, 4)
	g.SetCell(grid.Cell{Position: at(4, 1), Terrain: grid.TerrainWall})
	s.roller.SetRolls([]int{15, 5})
	_, err := s.engine.StartCombat([]*Combatant{wielding("greatclub")}, []*Combatant{ogreSheet()},
		map[string]grid.Position{"fighter": at(1, 1), "ogre": at(2, 1)}, g)
	s.Require().NoError(err)

	s.rolls(15, 5)
	result := s.act(Attack{Target: "ogre"})
	s.Require().True(result.Success)
	s.Equal(at(3, 1), s.engine.state.Positions["ogre"])
}
