package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/KirkDiggler/dnd-tactics/internal/dice"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/game/combat"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/monster"
	mockmonster "github.com/KirkDiggler/dnd-tactics/internal/domain/monster/mock"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
	"github.com/KirkDiggler/dnd-tactics/internal/repositories/encounters"
	"github.com/KirkDiggler/dnd-tactics/internal/services/encounter"
	mockencounter "github.com/KirkDiggler/dnd-tactics/internal/services/encounter/mock"
	"github.com/KirkDiggler/dnd-tactics/internal/testutils"
	"github.com/KirkDiggler/dnd-tactics/internal/uuid"
)

func TestParseScenario(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "missing name",
			input:   "rounds: 2\n",
			wantErr: "name is required",
		},
		{
			name:    "unknown operation",
			input:   "name: x\nscript:\n  fighter:\n    - {do: fireball}\n",
			wantErr: `unknown operation "fireball"`,
		},
		{
			name:    "explicit end turn",
			input:   "name: x\nscript:\n  fighter:\n    - {do: end_turn}\n",
			wantErr: "turns end on their own",
		},
		{
			name:    "unknown field",
			input:   "name: x\nwinner: fighter\n",
			wantErr: "failed to parse scenario",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, dnderr.Is(err, dnderr.CodeValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_DefaultsRounds(t *testing.T) {
	s, err := ParseScenario(strings.NewReader("name: quick\n"))
	require.NoError(t, err)
	assert.Equal(t, defaultRounds, s.Rounds)
}

func TestLoadScenario_GoblinAmbush(t *testing.T) {
	s, err := LoadScenario("scenarios/goblin_ambush.yaml")
	require.NoError(t, err)

	assert.Equal(t, "Goblin Ambush", s.Name)
	assert.Equal(t, 8, s.Rounds)
	assert.Equal(t, []string{"goblin"}, s.MonsterKeys())
	require.NotNil(t, s.Grid)
	assert.False(t, s.Grid.Walkable(s.Grid.Cells[0].Position))

	bestiary, err := monster.DefaultBestiary()
	require.NoError(t, err)
	players, enemies, err := s.Roster(bestiary)
	require.NoError(t, err)

	require.Len(t, players, 1)
	assert.Equal(t, "longsword", players[0].MainHand)
	require.Len(t, enemies, 2)
	assert.Equal(t, "goblin-1", enemies[0].ID)
	assert.Equal(t, "Goblin Archer", enemies[1].Name)
	assert.Equal(t, 7, enemies[1].HP)
}

func TestScenario_Roster(t *testing.T) {
	bestiary, err := monster.DefaultBestiary()
	require.NoError(t, err)

	t.Run("default ids", func(t *testing.T) {
		s := &Scenario{Enemies: []*Enemy{{Monster: "orc"}, {Monster: "orc"}}}
		_, enemies, err := s.Roster(bestiary)
		require.NoError(t, err)
		assert.Equal(t, "orc-1", enemies[0].ID)
		assert.Equal(t, "orc-2", enemies[1].ID)
	})

	t.Run("inline sheet", func(t *testing.T) {
		goblin := testutils.CreateTestGoblin("sneak")
		s := &Scenario{Enemies: []*Enemy{{Sheet: goblin}}}
		_, enemies, err := s.Roster(bestiary)
		require.NoError(t, err)
		assert.Same(t, goblin, enemies[0])
	})

	t.Run("unknown monster", func(t *testing.T) {
		s := &Scenario{Enemies: []*Enemy{{Monster: "tarrasque"}}}
		_, _, err := s.Roster(bestiary)
		assert.True(t, dnderr.IsNotFound(err))
	})

	t.Run("bestiary lookup per enemy", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mock := mockmonster.NewMockBestiary(ctrl)
		goblin, err := bestiary.Monster("goblin")
		require.NoError(t, err)
		mock.EXPECT().Monster("goblin").Return(goblin, nil).Times(2)

		s := &Scenario{Enemies: []*Enemy{
			{Monster: "goblin", ID: "lookout"},
			{Monster: "goblin", Name: "Goblin Boss"},
		}}
		_, enemies, err := s.Roster(mock)
		require.NoError(t, err)
		assert.Equal(t, "lookout", enemies[0].ID)
		assert.Equal(t, "goblin-2", enemies[1].ID)
		assert.Equal(t, "Goblin Boss", enemies[1].Name)
	})

	t.Run("empty enemy", func(t *testing.T) {
		s := &Scenario{Enemies: []*Enemy{{ID: "ghost"}}}
		_, _, err := s.Roster(bestiary)
		assert.Error(t, err)
	})
}

func endedRecord(id string) *encounters.Record {
	return &encounters.Record{
		ID: id,
		Snapshot: &combat.Snapshot{State: &combat.CombatState{
			Phase:  combat.PhaseEnded,
			Round:  1,
			Result: "victory",
			Combatants: map[string]*combat.CombatantState{
				"goblin":  {Combatant: combat.Combatant{ID: "goblin", HP: 0}},
				"fighter": {Combatant: combat.Combatant{ID: "fighter", HP: 44}},
			},
		}},
	}
}

func TestRunner_DispatchesScriptForCurrentCombatant(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mockencounter.NewMockService(ctrl)
	ctx := context.Background()

	s := &Scenario{
		Name:    "duel",
		Rounds:  3,
		Players: []*combat.Combatant{testutils.CreateTestFighter("fighter", "Fighter")},
		Enemies: []*Enemy{{Sheet: testutils.CreateTestGoblin("goblin")}},
		Script: map[string][]*Step{
			"fighter": {
				{Do: "attack", Target: "goblin"},
				{Do: "second_wind"},
			},
		},
	}

	started := &encounters.Record{
		ID: "enc-1",
		Snapshot: &combat.Snapshot{State: &combat.CombatState{
			Phase: combat.PhaseActive,
			Round: 1,
			Turn:  &combat.TurnState{CombatantID: "fighter", Round: 1},
		}},
	}

	gomock.InOrder(
		svc.EXPECT().StartEncounter(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, input *encounter.StartEncounterInput) (*encounter.StartEncounterOutput, error) {
				assert.Equal(t, "duel", input.Name)
				assert.Len(t, input.Enemies, 1)
				return &encounter.StartEncounterOutput{Encounter: started, Order: []string{"fighter", "goblin"}}, nil
			}),
		svc.EXPECT().TakeAction(ctx, "enc-1", combat.Attack{Target: "goblin"}).
			Return(&combat.ActionResult{Success: true, Description: "hit", DamageDealt: 9}, nil),
		svc.EXPECT().TakeBonusAction(ctx, "enc-1", combat.SecondWind{}).
			Return(&combat.ActionResult{Success: false, Description: "already at full health"}, nil),
		svc.EXPECT().EndTurn(ctx, "enc-1").Return("", nil),
		svc.EXPECT().GetEncounter(ctx, "enc-1").Return(endedRecord("enc-1"), nil),
	)

	runner := &Runner{service: svc, logger: zap.NewNop()}
	out, err := runner.Run(ctx, s, monster.NewBestiary())
	require.NoError(t, err)

	assert.Equal(t, "enc-1", out.EncounterID)
	assert.Equal(t, 1, out.Rejected)
	require.NotNil(t, out.Summary)
	assert.Equal(t, "victory", out.Summary.Result)
	assert.Equal(t, []string{"fighter"}, out.Summary.Survivors)
	assert.Equal(t, []string{"goblin"}, out.Summary.Casualties)
}

func TestRunner_ProtocolViolationStopsRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mockencounter.NewMockService(ctrl)
	ctx := context.Background()

	s := &Scenario{
		Name:    "bad target",
		Rounds:  1,
		Players: []*combat.Combatant{testutils.CreateTestFighter("fighter", "Fighter")},
		Enemies: []*Enemy{{Sheet: testutils.CreateTestGoblin("goblin")}},
		Script: map[string][]*Step{
			"fighter": {{Do: "move", X: 40, Y: 40}},
		},
	}
	started := &encounters.Record{
		ID: "enc-2",
		Snapshot: &combat.Snapshot{State: &combat.CombatState{
			Phase: combat.PhaseActive,
			Round: 1,
			Turn:  &combat.TurnState{CombatantID: "fighter", Round: 1},
		}},
	}

	svc.EXPECT().StartEncounter(ctx, gomock.Any()).
		Return(&encounter.StartEncounterOutput{Encounter: started, Order: []string{"fighter", "goblin"}}, nil)
	svc.EXPECT().MoveCombatant(ctx, "enc-2", "fighter", gomock.Any()).
		Return(nil, dnderr.ProtocolViolationf("position off the map"))

	runner := &Runner{service: svc, logger: zap.NewNop()}
	_, err := runner.Run(ctx, s, monster.NewBestiary())
	require.Error(t, err)
	assert.True(t, dnderr.IsProtocolViolation(err))
	assert.Contains(t, err.Error(), "fighter step 1 (move)")
}

func TestRunner_PlaysGoblinAmbushToTheEnd(t *testing.T) {
	s, err := LoadScenario("scenarios/goblin_ambush.yaml")
	require.NoError(t, err)

	catalog, err := equipment.DefaultCatalog()
	require.NoError(t, err)
	bestiary, err := monster.DefaultBestiary()
	require.NoError(t, err)

	repo := encounters.NewInMemoryRepository()
	svc := encounter.NewService(&encounter.ServiceConfig{
		Repository:    repo,
		Roller:        dice.NewSeededRoller(7),
		Weapons:       catalog,
		UUIDGenerator: uuid.NewSequentialGenerator("skirmish"),
		Logger:        zap.NewNop(),
	})

	runner := &Runner{service: svc, logger: zap.NewNop()}
	out, err := runner.Run(context.Background(), s, bestiary)
	require.NoError(t, err)

	require.NotNil(t, out.Summary)
	assert.Len(t, out.Order, 3)
	assert.LessOrEqual(t, out.Summary.Rounds, s.Rounds+1)
	assert.Len(t, append(out.Summary.Survivors, out.Summary.Casualties...), 3)
	assert.Contains(t, []string{"victory", "defeat", "draw", "ended:no winner after 8 rounds"}, out.Summary.Result)

	record, err := repo.Get(context.Background(), out.EncounterID)
	require.NoError(t, err)
	assert.Equal(t, combat.PhaseEnded, record.Snapshot.State.Phase)

	active, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}
