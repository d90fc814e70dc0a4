package combat

import (
	"github.com/KirkDiggler/dnd-tactics/internal/domain/conditions"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
)

// startOnGrid starts a fighter against the ogre on g, fighter first
func (s *EngineTestSuite) startOnGrid(g *grid.Grid, ogrePos grid.Position) {
	s.roller.SetRolls([]int{15, 5})
	_, err := s.engine.StartCombat([]*Combatant{fighterSheet(5)}, []*Combatant{ogreSheet()},
		map[string]grid.Position{"fighter": at(1, 1), "ogre": ogrePos}, g)
	s.Require().NoError(err)
}

func (s *EngineTestSuite) TestGrapple_Succeeds() {
	s.duel(fighterSheet(5))

	// athletics 15+3 against the ogre's 5+4
	s.rolls(15, 5)
	result := s.act(Grapple{Target: "ogre"})
	s.Require().True(result.Success)
	s.Equal(true, result.ExtraData["success"])
	s.Equal(18, result.ExtraData["attacker_total"])
	s.Equal(9, result.ExtraData["defender_total"])

	ogre := s.combatant("ogre")
	s.True(ogre.has(conditions.Grappled))
	s.Equal("fighter", ogre.GrappledBy)
	s.Equal([]string{"ogre"}, s.combatant("fighter").Grappling)
	s.Equal(1, s.engine.state.Turn.AttacksMade)
	s.Zero(s.engine.effectiveSpeed(ogre))

	// the grapple used one of two attacks
	s.rolls(15, 5)
	s.True(s.act(Attack{Target: "ogre"}).Success)
	s.Equal("no attacks remaining", s.act(Grapple{Target: "ogre"}).Description)
}

func (s *EngineTestSuite) TestGrapple_TieGoesToTheDefender() {
	s.duel(fighterSheet(5))

	s.rolls(10, 9)
	result := s.act(Grapple{Target: "ogre"})
	s.Require().True(result.Success)
	s.Equal(false, result.ExtraData["success"])
	s.Empty(s.combatant("ogre").GrappledBy)
	s.Equal(1, s.engine.state.Turn.AttacksMade)
}

func (s *EngineTestSuite) TestEscape_ReleasesTheGrapple() {
	s.duel(fighterSheet(5))
	s.rolls(15, 5)
	s.Require().True(s.act(Grapple{Target: "ogre"}).Success)
	s.Equal("ogre", s.endTurn())

	// the ogre's 15+4 beats the fighter's 5+3
	s.rolls(15, 5)
	result := s.act(Escape{})
	s.Require().True(result.Success)
	s.Equal(true, result.ExtraData["success"])

	ogre := s.combatant("ogre")
	s.False(ogre.has(conditions.Grappled))
	s.Empty(ogre.GrappledBy)
	s.Empty(s.combatant("fighter").Grappling)
	s.Equal("escaped", s.lastEvent(EventGrappleReleased).Data["reason"])
	s.True(s.engine.state.Turn.ActionTaken)

	again := s.act(Escape{})
	s.False(again.Success)
	s.Equal("action already taken", again.Description)
}

func (s *EngineTestSuite) TestGrapple_ReleasedWhenTheGrapplerDrops() {
	fighter := fighterSheet(5)
	fighter.HP, fighter.MaxHP = 8, 44
	s.duel(fighter)
	s.rolls(15, 5)
	s.Require().True(s.act(Grapple{Target: "ogre"}).Success)
	s.Equal("ogre", s.endTurn())

	// 15+6 hits, 2d8 rolls 3,3 +4 drops the fighter
	s.rolls(15, 3, 3)
	s.Require().True(s.act(Attack{Target: "fighter"}).Success)

	s.Equal(0, s.combatant("fighter").HP)
	s.Empty(s.combatant("fighter").Grappling)
	ogre := s.combatant("ogre")
	s.False(ogre.has(conditions.Grappled))
	s.Empty(ogre.GrappledBy)
	s.Equal("dropped to 0 hit points", s.lastEvent(EventGrappleReleased).Data["reason"])
	s.Equal(0, s.roller.Remaining())
}

func (s *EngineTestSuite) TestEscape_RequiresAGrapple() {
	s.duel(fighterSheet(5))

	result := s.act(Escape{})
	s.False(result.Success)
	s.Equal("Fighter is not grappled", result.Description)
}

func (s *EngineTestSuite) TestShove_PushIntoPit() {
	g := grid.New(8, 4)
	g.SetCell(grid.Cell{Position: at(3, 1), Terrain: grid.TerrainPit, Depth: 20})
	s.startOnGrid(g, at(2, 1))

	s.rolls(15, 5)
	s.Require().True(s.act(Grapple{Target: "ogre"}).Success)

	// contest 15 against 5, then 2d6 falling damage
	s.rolls(15, 5, 3, 4)
	result := s.act(Shove{Target: "ogre", Mode: ShovePush})
	s.Require().True(result.Success)
	s.Equal(7, result.DamageDealt)
	s.Equal("(3,1)", result.ExtraData["destination"])

	ogre := s.combatant("ogre")
	s.Equal(at(3, 1), s.engine.state.Positions["ogre"])
	s.Equal(52, ogre.HP)
	s.True(ogre.has(conditions.Prone))
	s.False(ogre.has(conditions.Grappled))
	s.Equal("moved out of reach", s.lastEvent(EventGrappleReleased).Data["reason"])
	s.Equal("fall", s.lastEvent(EventHazard).Data["hazard"])
	s.Equal(0, s.roller.Remaining())
}

func (s *EngineTestSuite) TestShove_KnocksProne() {
	s.duel(fighterSheet(5))

	s.rolls(15, 5)
	result := s.act(Shove{Target: "ogre"})
	s.Require().True(result.Success)
	s.Equal(string(ShoveProne), result.ExtraData["mode"])
	s.True(s.combatant("ogre").has(conditions.Prone))
	s.Equal(at(2, 1), s.engine.state.Positions["ogre"])
}

func (s *EngineTestSuite) TestManeuvers_Rejections() {
	huge := ogreSheet()
	huge.Size = rules.SizeHuge

	walled := grid.New(8, 4)
	walled.SetCell(grid.Cell{Position: at(3, 1), Terrain: grid.TerrainWall})

	testCases := []struct {
		name   string
		setup  func()
		action Action
		want   string
	}{
		{
			name: "not adjacent",
			setup: func() {
				s.startOnGrid(grid.New(8, 4), at(3, 1))
			},
			action: Grapple{Target: "ogre"},
			want:   "Ogre is not adjacent",
		},
		{
			name: "too large",
			setup: func() {
				s.start([]*Combatant{fighterSheet(5)}, []*Combatant{huge},
					map[string]grid.Position{"fighter": at(1, 1), "ogre": at(2, 1)}, 15, 5)
			},
			action: Shove{Target: "ogre"},
			want:   "Ogre is too large (huge) for Fighter (medium)",
		},
		{
			name: "no room to push",
			setup: func() {
				s.startOnGrid(walled, at(2, 1))
			},
			action: Shove{Target: "ogre", Mode: ShovePush},
			want:   "there is no room to push Ogre to (3,1)",
		},
		{
			name: "unknown mode",
			setup: func() {
				s.duel(fighterSheet(5))
			},
			action: Shove{Target: "ogre", Mode: "sideways"},
			want:   `unknown shove mode "sideways"`,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			tc.setup()

			result := s.act(tc.action)
			s.False(result.Success)
			s.Equal(tc.want, result.Description)
			s.Zero(s.engine.state.Turn.AttacksMade)
			s.Equal(0, s.roller.Remaining())
		})
	}
}
