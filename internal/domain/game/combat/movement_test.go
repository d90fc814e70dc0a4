package combat

import (
	"github.com/KirkDiggler/dnd-tactics/internal/dice"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/conditions"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
)

func (s *EngineTestSuite) move(id string, x, y int) *ActionResult {
	result, err := s.engine.MoveCombatant(id, x, y)
	s.Require().NoError(err)
	s.Require().NotNil(result)
	return result
}

func (s *EngineTestSuite) TestMove_LeavingReachProvokes() {
	s.duel(fighterSheet(5))

	// 15+6=21 hits AC 18, 2d8 rolls 3,3 +4
	s.rolls(15, 3, 3)
	result := s.move("fighter", 0, 1)
	s.Require().True(result.Success)
	s.Equal(at(0, 1), s.engine.state.Positions["fighter"])
	s.Equal(5, s.engine.state.Turn.MovementUsed)
	s.Equal(34, s.combatant("fighter").HP)
	s.True(s.engine.state.ReactionsUsed["ogre"])
	s.Equal("ogre", s.lastEvent(EventOpportunityAttack).CombatantID)
	s.Equal(0, s.roller.Remaining())

	// the ogre's reaction is spent
	s.rolls()
	s.True(s.move("fighter", 2, 3).Success)
	s.Equal(1, s.countEvents(EventOpportunityAttack))
}

func (s *EngineTestSuite) TestMove_WithinReachDoesNotProvoke() {
	s.duel(fighterSheet(5))

	result := s.move("fighter", 2, 2)
	s.Require().True(result.Success)
	s.Zero(s.countEvents(EventOpportunityAttack))
	s.Equal(0, s.roller.Remaining())
}

func (s *EngineTestSuite) TestMove_DisengageAvoidsOpportunityAttacks() {
	s.duel(fighterSheet(5))
	s.Require().True(s.act(Disengage{}).Success)

	result := s.move("fighter", 0, 1)
	s.Require().True(result.Success)
	s.Zero(s.countEvents(EventOpportunityAttack))
	s.Equal(44, s.combatant("fighter").HP)
}

func (s *EngineTestSuite) TestMove_SentinelStopsTheMover() {
	ogre := ogreSheet()
	ogre.Feats = []string{FeatSentinel}
	s.start([]*Combatant{fighterSheet(5)}, []*Combatant{ogre},
		map[string]grid.Position{"fighter": at(1, 1), "ogre": at(2, 1)}, 15, 5)
	s.Require().True(s.act(Disengage{}).Success)

	s.rolls(15, 3, 3)
	result := s.move("fighter", 0, 1)
	s.Require().True(result.Success)
	s.Equal(at(1, 1), s.engine.state.Positions["fighter"])
	s.Equal(30, s.engine.state.Turn.MovementUsed)
	s.Equal("stopped by a sentinel", result.ExtraData["stopped"])

	blocked := s.move("fighter", 0, 1)
	s.False(blocked.Success)
	s.Equal("Fighter has no movement remaining", blocked.Description)
}

func (s *EngineTestSuite) TestMove_Rejections() {
	s.roller.SetRolls([]int{15, 5})
	_, err := s.engine.StartCombat([]*Combatant{fighterSheet(5)}, []*Combatant{ogreSheet()},
		map[string]grid.Position{"fighter": at(1, 1), "ogre": at(2, 1)}, grid.New(12, 12))
	s.Require().NoError(err)

	testCases := []struct {
		name string
		id   string
		x, y int
		want string
	}{
		{name: "other combatant", id: "ogre", x: 3, y: 3, want: "it is Fighter's turn, not Ogre's"},
		{name: "same cell", id: "fighter", x: 1, y: 1, want: "Fighter is already at (1,1)"},
		{name: "off map", id: "fighter", x: 50, y: 1, want: "(50,1) is off the map"},
		{name: "occupied", id: "fighter", x: 2, y: 1, want: "(2,1) is occupied by Ogre"},
		{name: "too far", id: "fighter", x: 8, y: 1, want: "moving to (8,1) needs 35 ft but Fighter has 30 ft left"},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			result := s.move(tc.id, tc.x, tc.y)
			s.False(result.Success)
			s.Equal(tc.want, result.Description)
		})
	}
	s.Equal(at(1, 1), s.engine.state.Positions["fighter"])
	s.Zero(s.engine.state.Turn.MovementUsed)
}

func (s *EngineTestSuite) TestMove_DashAddsMovement() {
	s.start([]*Combatant{fighterSheet(5)}, []*Combatant{ogreSheet()},
		map[string]grid.Position{"fighter": at(0, 0), "ogre": at(14, 0)}, 15, 5)
	s.Require().True(s.act(Dash{}).Success)

	result := s.move("fighter", 10, 0)
	s.Require().True(result.Success)
	s.Equal(50, s.engine.state.Turn.MovementUsed)
}

func (s *EngineTestSuite) TestMove_ProneDoublesCost() {
	fighter := fighterSheet(5)
	fighter.Conditions = []conditions.Type{conditions.Prone}
	s.start([]*Combatant{fighter}, []*Combatant{ogreSheet()},
		map[string]grid.Position{"fighter": at(0, 0), "ogre": at(8, 8)}, 15, 5)

	result := s.move("fighter", 1, 0)
	s.Require().True(result.Success)
	s.Equal(10, s.engine.state.Turn.MovementUsed)
}

func (s *EngineTestSuite) TestMove_HazardDamagesOnEntry() {
	g := grid.New(10, 10)
	g.SetCell(grid.Cell{
		Position: at(1, 2),
		Terrain:  grid.TerrainOpen,
		Hazard:   &grid.Hazard{Name: "burning oil", Damage: dice.MustParse("1d4"), DamageType: string(rules.Fire)},
	})
	s.roller.SetRolls([]int{15, 5})
	_, err := s.engine.StartCombat([]*Combatant{fighterSheet(5)}, []*Combatant{ogreSheet()},
		map[string]grid.Position{"fighter": at(1, 1), "ogre": at(8, 8)}, g)
	s.Require().NoError(err)

	s.rolls(3)
	result := s.move("fighter", 1, 2)
	s.Require().True(result.Success)
	s.Equal(3, result.DamageDealt)
	s.Equal(41, s.combatant("fighter").HP)
	s.Equal("burning oil", s.lastEvent(EventHazard).Data["hazard"])
}

func (s *EngineTestSuite) TestMove_PassesThroughAllies() {
	g := grid.New(5, 3)
	for y := 0; y < 3; y++ {
		if y == 1 {
			continue
		}
		g.SetCell(grid.Cell{Position: at(2, y), Terrain: grid.TerrainWall})
	}
	wizard := wizardSheet()
	s.roller.SetRolls([]int{15, 10, 5})
	_, err := s.engine.StartCombat([]*Combatant{fighterSheet(5), wizard}, []*Combatant{ogreSheet()},
		map[string]grid.Position{"fighter": at(1, 1), "wizard": at(2, 1), "ogre": at(4, 0)}, g)
	s.Require().NoError(err)

	result := s.move("fighter", 3, 1)
	s.Require().True(result.Success)
	s.Equal(at(3, 1), s.engine.state.Positions["fighter"])
}

func (s *EngineTestSuite) TestMove_SentinelHaltOnAllyBacksOffTheirCell() {
	g := grid.New(5, 3)
	g.SetCell(grid.Cell{Position: at(2, 0), Terrain: grid.TerrainWall})
	g.SetCell(grid.Cell{Position: at(2, 2), Terrain: grid.TerrainWall})
	ogre := ogreSheet()
	ogre.Feats = []string{FeatSentinel}
	s.roller.SetRolls([]int{15, 10, 5})
	_, err := s.engine.StartCombat([]*Combatant{fighterSheet(5), wizardSheet()}, []*Combatant{ogre},
		map[string]grid.Position{"fighter": at(1, 1), "wizard": at(2, 1), "ogre": at(1, 0)}, g)
	s.Require().NoError(err)

	// leaving the wizard's cell provokes; 15+6=21 hits, 2d8 rolls 3,3 +4
	s.rolls(15, 3, 3)
	result := s.move("fighter", 3, 1)
	s.Require().True(result.Success)
	s.Equal("stopped by a sentinel", result.ExtraData["stopped"])
	s.Equal(at(1, 1), s.engine.state.Positions["fighter"])
	s.Equal(at(2, 1), s.engine.state.Positions["wizard"])
	s.Empty(result.ExtraData["path"])
	s.Equal(34, s.combatant("fighter").HP)
	s.Equal(0, s.roller.Remaining())
}

func (s *EngineTestSuite) TestMove_DroppingOnAllyLandsOnLastFreeCell() {
	g := grid.New(6, 3)
	g.SetCell(grid.Cell{Position: at(3, 0), Terrain: grid.TerrainWall})
	g.SetCell(grid.Cell{Position: at(3, 2), Terrain: grid.TerrainWall})
	g.SetCell(grid.Cell{
		Position: at(3, 1),
		Terrain:  grid.TerrainOpen,
		Hazard:   &grid.Hazard{Name: "burning oil", Damage: dice.MustParse("1d4"), DamageType: string(rules.Fire)},
	})
	fighter := fighterSheet(5)
	fighter.HP = 2
	s.roller.SetRolls([]int{15, 10, 5})
	_, err := s.engine.StartCombat([]*Combatant{fighter, wizardSheet()}, []*Combatant{ogreSheet()},
		map[string]grid.Position{"fighter": at(1, 1), "wizard": at(3, 1), "ogre": at(5, 0)}, g)
	s.Require().NoError(err)

	s.rolls(2)
	result := s.move("fighter", 4, 1)
	s.Require().True(result.Success)
	s.Equal("Fighter dropped", result.ExtraData["stopped"])
	s.Equal(at(2, 1), s.engine.state.Positions["fighter"])
	s.Equal([]string{at(2, 1).String()}, result.ExtraData["path"])
	s.Equal(0, s.combatant("fighter").HP)
}
