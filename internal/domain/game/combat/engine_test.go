package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/dnd-tactics/internal/dice"
	mockdice "github.com/KirkDiggler/dnd-tactics/internal/dice/mock"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/equipment"
	mockequipment "github.com/KirkDiggler/dnd-tactics/internal/domain/equipment/mock"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/game/initiative"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/monster"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rulebook"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

func newTestEngine(t require.TestingT, roller dice.Roller) *Engine {
	catalog, err := equipment.DefaultCatalog()
	require.NoError(t, err)
	return NewEngine(&Config{Roller: roller, Weapons: catalog})
}

func fighterSheet(level int) *Combatant {
	return &Combatant{
		ID:        "fighter",
		Name:      "Fighter",
		Class:     rulebook.ClassFighter,
		Level:     level,
		HP:        44,
		AC:        18,
		Abilities: rules.AbilityScores{Strength: 16, Dexterity: 12, Constitution: 14},
		MainHand:  "longsword",
	}
}

func ogreSheet() *Combatant {
	return &Combatant{
		ID:           "ogre",
		Name:         "Ogre",
		CreatureType: "giant",
		HP:           59,
		AC:           11,
		Speed:        40,
		Size:         rules.SizeLarge,
		Abilities:    rules.AbilityScores{Strength: 19, Dexterity: 8, Constitution: 16, Wisdom: 7},
		Actions: []*monster.Action{{
			Key:         "greatclub",
			Name:        "Greatclub",
			AttackBonus: 6,
			Damage:      dice.MustParse("2d8+4"),
			DamageType:  rules.Bludgeoning,
		}},
	}
}

func wizardSheet() *Combatant {
	return &Combatant{
		ID:        "wizard",
		Name:      "Wizard",
		Class:     rulebook.ClassWizard,
		Level:     5,
		HP:        20,
		AC:        12,
		Abilities: rules.AbilityScores{Intelligence: 18},
		MainHand:  "quarterstaff",
	}
}

func at(x, y int) grid.Position {
	return grid.Position{X: x, Y: y}
}

type EngineTestSuite struct {
	suite.Suite
	roller *mockdice.ManualMockRoller
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) SetupTest() {
	s.roller = mockdice.NewManualMockRoller()
	s.engine = newTestEngine(s.T(), s.roller)
}

// start begins combat with the given initiative rolls, players first
func (s *EngineTestSuite) start(players, enemies []*Combatant, positions map[string]grid.Position, rolls ...int) []string {
	s.roller.SetRolls(rolls)
	order, err := s.engine.StartCombat(players, enemies, positions, nil)
	s.Require().NoError(err)
	return order
}

// duel starts fighter against ogre with the fighter acting first
func (s *EngineTestSuite) duel(fighter *Combatant) {
	s.start([]*Combatant{fighter}, []*Combatant{ogreSheet()},
		map[string]grid.Position{"fighter": at(1, 1), "ogre": at(2, 1)}, 15, 5)
}

func (s *EngineTestSuite) rolls(rolls ...int) {
	s.roller.SetRolls(rolls)
}

func (s *EngineTestSuite) act(a Action) *ActionResult {
	result, err := s.engine.TakeAction(a)
	s.Require().NoError(err)
	s.Require().NotNil(result)
	return result
}

func (s *EngineTestSuite) bonus(a BonusAction) *ActionResult {
	result, err := s.engine.TakeBonusAction(a)
	s.Require().NoError(err)
	s.Require().NotNil(result)
	return result
}

func (s *EngineTestSuite) endTurn() string {
	next, err := s.engine.EndTurn()
	s.Require().NoError(err)
	return next
}

func (s *EngineTestSuite) combatant(id string) *CombatantState {
	c, ok := s.engine.state.Combatants[id]
	s.Require().True(ok, "no combatant %s", id)
	return c
}

func (s *EngineTestSuite) lastEvent(typ EventType) *Event {
	events := s.engine.state.Events
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == typ {
			return &events[i]
		}
	}
	s.FailNow("no event of type " + string(typ))
	return nil
}

func (s *EngineTestSuite) countEvents(typ EventType) int {
	n := 0
	for _, ev := range s.engine.state.Events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

// encoded is the engine's current snapshot as JSON
func (s *EngineTestSuite) encoded() []byte {
	snap, err := s.engine.Snapshot()
	s.Require().NoError(err)
	raw, err := snap.Encode()
	s.Require().NoError(err)
	return raw
}

func (s *EngineTestSuite) TestStartCombat_RollsInitiativeAndStartsFirstTurn() {
	order := s.start([]*Combatant{fighterSheet(5)}, []*Combatant{ogreSheet()},
		map[string]grid.Position{"fighter": at(1, 1), "ogre": at(2, 1)}, 5, 15)

	// fighter 5+1=6, ogre 15-1=14
	s.Equal([]string{"ogre", "fighter"}, order)
	s.Equal(PhaseActive, s.engine.Phase())
	s.Equal(1, s.engine.state.Round)

	current, ok := s.engine.CurrentCombatant()
	s.Require().True(ok)
	s.Equal("ogre", current)

	events := s.engine.state.Events
	s.Require().Len(events, 2)
	s.Equal(EventCombatStarted, events[0].Type)
	s.Equal(EventTurnStarted, events[1].Type)
	s.Equal("ogre", events[1].CombatantID)
	s.NotEqual(events[0].ID, events[1].ID)

	fighter := s.combatant("fighter")
	s.Equal(KindPlayer, fighter.Kind)
	s.Equal(44, fighter.MaxHP)
	s.Equal(3, fighter.ProficiencyBonus)
	s.Equal(1, fighter.SecondWindRemaining)
	s.Equal(1, fighter.ActionSurgeRemaining)
	s.Equal(KindMonster, s.combatant("ogre").Kind)
	s.Equal(0, s.roller.Remaining())
}

func (s *EngineTestSuite) TestStartCombat_BuildsBoundingGrid() {
	s.duel(fighterSheet(1))

	s.Equal(2+1+gridMargin, s.engine.state.Grid.Width)
	s.Equal(1+1+gridMargin, s.engine.state.Grid.Height)
}

func (s *EngineTestSuite) TestStartCombat_Twice() {
	s.duel(fighterSheet(1))

	_, err := s.engine.StartCombat([]*Combatant{fighterSheet(1)}, nil, map[string]grid.Position{"fighter": at(0, 0)}, nil)
	s.Require().Error(err)
	s.True(dnderr.IsProtocolViolation(err))
}

func (s *EngineTestSuite) TestEndTurn_BeforeStart() {
	_, err := s.engine.EndTurn()
	s.Require().Error(err)
	s.True(dnderr.IsProtocolViolation(err))
}

func (s *EngineTestSuite) TestEndCombat_BeforeStart() {
	_, err := s.engine.EndCombat("test")
	s.Require().Error(err)
	s.True(dnderr.IsProtocolViolation(err))
}

func (s *EngineTestSuite) TestTakeAction_BeforeStart() {
	result := s.act(Attack{Target: "ogre"})
	s.False(result.Success)
	s.Equal("combat is not active", result.Description)
}

func (s *EngineTestSuite) TestTakeAction_UnknownVariants() {
	s.duel(fighterSheet(1))
	before := len(s.engine.state.Events)

	_, err := s.engine.TakeAction(nil)
	s.Require().Error(err)
	s.True(dnderr.IsProtocolViolation(err))

	_, err = s.engine.TakeAction(&Attack{Target: "ogre"})
	s.Require().Error(err)
	s.True(dnderr.IsProtocolViolation(err))

	_, err = s.engine.TakeBonusAction(nil)
	s.Require().Error(err)
	s.True(dnderr.IsProtocolViolation(err))

	s.Len(s.engine.state.Events, before)
}

func (s *EngineTestSuite) TestEndTurn_AdvancesAndWrapsRound() {
	s.duel(fighterSheet(1))

	s.Equal("ogre", s.endTurn())
	s.Equal(1, s.engine.state.Round)

	s.Equal("fighter", s.endTurn())
	s.Equal(2, s.engine.state.Round)
	s.Equal(2, s.engine.state.Turn.Round)
	s.Equal(2, s.countEvents(EventTurnEnded))
}

func (s *EngineTestSuite) TestEndCombat_Summary() {
	s.duel(fighterSheet(1))

	summary, err := s.engine.EndCombat("players fled")
	s.Require().NoError(err)
	s.Equal("ended:players fled", summary.Result)
	s.Equal([]string{"fighter", "ogre"}, summary.Survivors)
	s.Empty(summary.Casualties)
	s.Equal(PhaseEnded, s.engine.Phase())
	s.Equal(EventCombatEnded, s.lastEvent(EventCombatEnded).Type)

	next, err := s.engine.EndTurn()
	s.Require().NoError(err)
	s.Empty(next)

	_, err = s.engine.EndCombat("again")
	s.True(dnderr.IsProtocolViolation(err))
}

func (s *EngineTestSuite) TestCombatEndsInVictoryWhenLastEnemyFalls() {
	s.duel(fighterSheet(1))
	s.engine.state.Combatants["ogre"].HP = 5

	// 15+5=20 hits, 1d8 rolls 4 +3
	s.rolls(15, 4)
	result := s.act(Attack{Target: "ogre"})
	s.Require().True(result.Success)
	s.Equal(7, result.DamageDealt)
	s.Equal(0, s.combatant("ogre").HP)
	s.False(s.engine.registry.IsActive("ogre"))

	s.Empty(s.endTurn())
	s.Equal(PhaseEnded, s.engine.Phase())
	s.Equal(string(initiative.ResultVictory), s.engine.state.Result)
}

func (s *EngineTestSuite) TestRejectionLeavesStateUntouched() {
	s.duel(fighterSheet(5))
	before := s.encoded()

	result := s.act(Attack{Target: "ogre", Weapon: "lightsaber"})
	s.False(result.Success)
	s.Equal("unknown weapon lightsaber", result.Description)

	result = s.act(Attack{Target: "nobody"})
	s.False(result.Success)

	result = s.act(Attack{Target: "fighter"})
	s.False(result.Success)

	s.Equal(before, s.encoded())
}

func (s *EngineTestSuite) TestSurprisedCombatantCannotActInRoundOne() {
	ogre := ogreSheet()
	ogre.Surprised = true
	s.start([]*Combatant{fighterSheet(1)}, []*Combatant{ogre},
		map[string]grid.Position{"fighter": at(1, 1), "ogre": at(2, 1)}, 5, 20)

	result := s.act(Attack{Target: "fighter"})
	s.False(result.Success)
	s.Equal("Ogre is surprised", result.Description)

	s.Equal("fighter", s.endTurn())
	s.False(s.combatant("ogre").Surprised)
}

func (s *EngineTestSuite) TestSnapshot_RoundTrip() {
	s.duel(fighterSheet(5))
	s.rolls(15, 5)
	s.Require().True(s.act(Attack{Target: "ogre"}).Success)

	raw := s.encoded()
	decoded, err := DecodeSnapshot(raw)
	s.Require().NoError(err)

	catalog, err := equipment.DefaultCatalog()
	s.Require().NoError(err)
	restoredRoller := mockdice.NewManualMockRoller()
	restored, err := Restore(&Config{Roller: restoredRoller, Weapons: catalog}, decoded)
	s.Require().NoError(err)

	again, err := restored.Snapshot()
	s.Require().NoError(err)
	rawAgain, err := again.Encode()
	s.Require().NoError(err)
	s.JSONEq(string(raw), string(rawAgain))
	s.Len(restored.state.Events, len(s.engine.state.Events))

	// Both engines resolve the next attack identically
	s.rolls(12, 6)
	restoredRoller.SetRolls([]int{12, 6})
	original := s.act(Attack{Target: "ogre"})
	replayed, err := restored.TakeAction(Attack{Target: "ogre"})
	s.Require().NoError(err)
	s.Equal(original.DamageDealt, replayed.DamageDealt)
	s.Equal(original.Description, replayed.Description)

	rawAgain, err = func() ([]byte, error) {
		snap, err := restored.Snapshot()
		if err != nil {
			return nil, err
		}
		return snap.Encode()
	}()
	s.Require().NoError(err)
	s.JSONEq(string(s.encoded()), string(rawAgain))
}

func (s *EngineTestSuite) TestDecodeSnapshot_Invalid() {
	_, err := DecodeSnapshot([]byte("{not json"))
	s.Require().Error(err)
	s.True(dnderr.IsInvalidArgument(err))
}

func (s *EngineTestSuite) TestState_ReturnsCopy() {
	s.duel(fighterSheet(1))

	state := s.engine.State()
	s.Require().NotNil(state)
	state.Combatants["ogre"].HP = 1
	s.Equal(59, s.combatant("ogre").HP)
}

func TestStartCombat_InvalidRosters(t *testing.T) {
	small := grid.New(5, 5)
	walled := grid.New(5, 5)
	walled.SetCell(grid.Cell{Position: at(0, 0), Terrain: grid.TerrainWall})

	testCases := []struct {
		name      string
		players   []*Combatant
		enemies   []*Combatant
		positions map[string]grid.Position
		grid      *grid.Grid
	}{
		{
			name: "empty roster",
		},
		{
			name:      "missing id",
			players:   []*Combatant{{Name: "Nobody", HP: 5}},
			positions: map[string]grid.Position{},
		},
		{
			name:      "duplicate id",
			players:   []*Combatant{fighterSheet(1)},
			enemies:   []*Combatant{fighterSheet(1)},
			positions: map[string]grid.Position{"fighter": at(0, 0)},
		},
		{
			name:      "missing position",
			players:   []*Combatant{fighterSheet(1)},
			enemies:   []*Combatant{ogreSheet()},
			positions: map[string]grid.Position{"fighter": at(0, 0)},
		},
		{
			name:      "shared position",
			players:   []*Combatant{fighterSheet(1)},
			enemies:   []*Combatant{ogreSheet()},
			positions: map[string]grid.Position{"fighter": at(1, 1), "ogre": at(1, 1)},
		},
		{
			name:      "off the map",
			players:   []*Combatant{fighterSheet(1)},
			positions: map[string]grid.Position{"fighter": at(9, 9)},
			grid:      small,
		},
		{
			name:      "inside a wall",
			players:   []*Combatant{fighterSheet(1)},
			positions: map[string]grid.Position{"fighter": at(0, 0)},
			grid:      walled,
		},
		{
			name:      "position for unknown combatant",
			players:   []*Combatant{fighterSheet(1)},
			positions: map[string]grid.Position{"fighter": at(0, 0), "ghost": at(1, 1)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine := newTestEngine(t, mockdice.NewManualMockRoller(10, 10))
			_, err := engine.StartCombat(tc.players, tc.enemies, tc.positions, tc.grid)
			require.Error(t, err)
			assert.True(t, dnderr.IsProtocolViolation(err), "got %v", err)
			assert.Equal(t, PhaseNotInCombat, engine.Phase())
		})
	}
}

func TestNewEngine_RequiresRollerAndCatalog(t *testing.T) {
	catalog, err := equipment.DefaultCatalog()
	require.NoError(t, err)

	assert.Panics(t, func() { NewEngine(nil) })
	assert.Panics(t, func() { NewEngine(&Config{Weapons: catalog}) })
	assert.Panics(t, func() { NewEngine(&Config{Roller: mockdice.NewManualMockRoller()}) })
	assert.NotPanics(t, func() { NewEngine(&Config{Roller: mockdice.NewManualMockRoller(), Weapons: catalog}) })
}

func TestTakeAction_CatalogFailureIsAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mockequipment.NewMockCatalog(ctrl)
	catalog.EXPECT().Armor(gomock.Any()).Return(nil, dnderr.NotFound("no armor")).AnyTimes()
	catalog.EXPECT().Weapon("longsword").
		Return(nil, dnderr.New(dnderr.CodeUnavailable, "catalog offline"))

	engine := NewEngine(&Config{Roller: mockdice.NewManualMockRoller(15, 5), Weapons: catalog})
	_, err := engine.StartCombat([]*Combatant{fighterSheet(1)}, []*Combatant{ogreSheet()},
		map[string]grid.Position{"fighter": at(1, 1), "ogre": at(2, 1)}, nil)
	require.NoError(t, err)

	result, err := engine.TakeAction(Attack{Target: "ogre"})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, dnderr.CodeUnavailable, dnderr.GetCode(err))
	for _, ev := range engine.State().Events {
		assert.NotEqual(t, EventAttack, ev.Type)
	}
}

func (s *EngineTestSuite) TestStartCombat_FallenFirstInInitiativeTakesNoTurn() {
	fallen := ogreSheet()
	fallen.HP, fallen.MaxHP = 0, 59
	second := ogreSheet()
	second.ID, second.Name = "ogre2", "Second Ogre"

	// fighter 5+1=6, ogre 15-1=14, ogre2 10-1=9
	order := s.start([]*Combatant{fighterSheet(5)}, []*Combatant{fallen, second},
		map[string]grid.Position{"fighter": at(1, 1), "ogre": at(2, 1), "ogre2": at(3, 3)}, 5, 15, 10)
	s.Equal([]string{"ogre", "ogre2", "fighter"}, order)

	current, ok := s.engine.CurrentCombatant()
	s.Require().True(ok)
	s.Equal("ogre2", current)
	s.Equal("ogre2", s.engine.state.Turn.CombatantID)

	for _, ev := range s.engine.state.Events {
		if ev.Type == EventTurnStarted {
			s.NotEqual("ogre", ev.CombatantID)
		}
	}
	s.Equal(1, s.countEvents(EventTurnStarted))
	s.Equal(0, s.roller.Remaining())
}
