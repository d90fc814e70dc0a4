package encounter

//go:generate mockgen -destination=mock/mock_service.go -package=mockencounter -source=service.go

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/KirkDiggler/dnd-tactics/internal/dice"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/game/combat"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
	"github.com/KirkDiggler/dnd-tactics/internal/repositories/encounters"
	"github.com/KirkDiggler/dnd-tactics/internal/uuid"
)

// Service defines the encounter service interface
type Service interface {
	// StartEncounter rolls initiative for a new encounter and stores it
	StartEncounter(ctx context.Context, input *StartEncounterInput) (*StartEncounterOutput, error)

	// GetEncounter retrieves an encounter by ID
	GetEncounter(ctx context.Context, encounterID string) (*encounters.Record, error)

	// ListActive retrieves every encounter that has not ended
	ListActive(ctx context.Context) ([]*encounters.Record, error)

	// TakeAction resolves an action for the current combatant
	TakeAction(ctx context.Context, encounterID string, action combat.Action) (*combat.ActionResult, error)

	// TakeBonusAction resolves a bonus action for the current combatant
	TakeBonusAction(ctx context.Context, encounterID string, action combat.BonusAction) (*combat.ActionResult, error)

	// MoveCombatant moves the current combatant to a cell
	MoveCombatant(ctx context.Context, encounterID, combatantID string, to grid.Position) (*combat.ActionResult, error)

	// UseActionSurge grants the current fighter another action
	UseActionSurge(ctx context.Context, encounterID string) (*combat.ActionResult, error)

	// UseDivineSmite spends a spell slot on radiant damage after a hit
	UseDivineSmite(ctx context.Context, encounterID string, slotLevel int, targetID string) (*combat.ActionResult, error)

	// UseStunningStrike spends a ki point to try to stun a target after a hit
	UseStunningStrike(ctx context.Context, encounterID, targetID string) (*combat.ActionResult, error)

	// LegendaryAction runs a monster's legendary action outside its turn
	LegendaryAction(ctx context.Context, encounterID string, input *LegendaryActionInput) (*combat.ActionResult, error)

	// EndTurn advances to the next turn and returns who acts next
	EndTurn(ctx context.Context, encounterID string) (string, error)

	// EndEncounter stops combat and summarises it
	EndEncounter(ctx context.Context, encounterID, reason string) (*combat.Summary, error)
}

// StartEncounterInput contains data for starting an encounter
type StartEncounterInput struct {
	Name      string
	Players   []*combat.Combatant
	Enemies   []*combat.Combatant
	Positions map[string]grid.Position
	// Grid is optional; a map is sized around the combatants when nil
	Grid *grid.Grid
}

// StartEncounterOutput is the stored encounter and its initiative order
type StartEncounterOutput struct {
	Encounter *encounters.Record
	Order     []string
}

// LegendaryActionInput names a monster's legendary option and its target
type LegendaryActionInput struct {
	MonsterID string
	ActionID  string
	TargetID  string
}

type service struct {
	repository    encounters.Repository
	roller        dice.Roller
	weapons       equipment.Catalog
	uuidGenerator uuid.Generator
	logger        *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository    encounters.Repository
	Roller        dice.Roller
	Weapons       equipment.Catalog
	UUIDGenerator uuid.Generator
	Logger        *zap.Logger
}

// NewService creates a new encounter service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("ServiceConfig cannot be nil")
	}
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.Roller == nil {
		panic("roller is required")
	}
	if cfg.Weapons == nil {
		panic("weapon catalog is required")
	}

	svc := &service{
		repository: cfg.Repository,
		roller:     cfg.Roller,
		weapons:    cfg.Weapons,
		logger:     cfg.Logger,
		locks:      make(map[string]*sync.Mutex),
	}

	if cfg.UUIDGenerator != nil {
		svc.uuidGenerator = cfg.UUIDGenerator
	} else {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}

	return svc
}

// engineConfig builds fresh collaborators for one engine. The turn order
// registry and ammunition ledger are restored from the snapshot, so they
// are never shared between encounters.
func (s *service) engineConfig(encounterID string) *combat.Config {
	return &combat.Config{
		Roller:  s.roller,
		Weapons: s.weapons,
		Logger:  s.logger.With(zap.String("encounter_id", encounterID)),
	}
}

func (s *service) lock(encounterID string) func() {
	s.mu.Lock()
	l, ok := s.locks[encounterID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[encounterID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// StartEncounter rolls initiative for a new encounter and stores it
func (s *service) StartEncounter(ctx context.Context, input *StartEncounterInput) (*StartEncounterOutput, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, dnderr.InvalidArgument("encounter name is required")
	}

	encounterID := s.uuidGenerator.New()
	unlock := s.lock(encounterID)
	defer unlock()

	engine := combat.NewEngine(s.engineConfig(encounterID))
	order, err := engine.StartCombat(input.Players, input.Enemies, input.Positions, input.Grid)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to start combat")
	}

	snap, err := engine.Snapshot()
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to snapshot encounter")
	}
	record := &encounters.Record{
		ID:       encounterID,
		Name:     input.Name,
		Phase:    engine.Phase(),
		Round:    snap.State.Round,
		Snapshot: snap,
	}
	if err := s.repository.Create(ctx, record); err != nil {
		return nil, dnderr.Wrap(err, "failed to create encounter")
	}

	s.logger.Info("encounter started",
		zap.String("encounter_id", encounterID),
		zap.String("name", input.Name),
		zap.Strings("order", order))

	return &StartEncounterOutput{Encounter: record, Order: order}, nil
}

// GetEncounter retrieves an encounter by ID
func (s *service) GetEncounter(ctx context.Context, encounterID string) (*encounters.Record, error) {
	if strings.TrimSpace(encounterID) == "" {
		return nil, dnderr.InvalidArgument("encounter ID is required")
	}

	record, err := s.repository.Get(ctx, encounterID)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to get encounter '%s'", encounterID)
	}
	return record, nil
}

// ListActive retrieves every encounter that has not ended
func (s *service) ListActive(ctx context.Context) ([]*encounters.Record, error) {
	records, err := s.repository.ListActive(ctx)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to list active encounters")
	}
	return records, nil
}

// mutate loads an encounter, runs fn against a restored engine and saves the
// new snapshot when fn reports a change. Calls for the same encounter are
// serialized.
func (s *service) mutate(ctx context.Context, encounterID string, fn func(e *combat.Engine) (bool, error)) error {
	if strings.TrimSpace(encounterID) == "" {
		return dnderr.InvalidArgument("encounter ID is required")
	}

	unlock := s.lock(encounterID)
	defer unlock()

	record, err := s.repository.Get(ctx, encounterID)
	if err != nil {
		return dnderr.Wrapf(err, "failed to get encounter '%s'", encounterID)
	}

	engine, err := combat.Restore(s.engineConfig(encounterID), record.Snapshot)
	if err != nil {
		return dnderr.Wrapf(err, "failed to restore encounter '%s'", encounterID)
	}

	changed, err := fn(engine)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	snap, err := engine.Snapshot()
	if err != nil {
		return dnderr.Wrap(err, "failed to snapshot encounter")
	}
	record.Snapshot = snap
	record.Phase = engine.Phase()
	record.Round = snap.State.Round
	if err := s.repository.Update(ctx, record); err != nil {
		return dnderr.Wrapf(err, "failed to save encounter '%s'", encounterID)
	}
	return nil
}

// act runs an operation that yields an ActionResult. Rejected results leave
// the stored encounter untouched.
func (s *service) act(ctx context.Context, encounterID string, op func(e *combat.Engine) (*combat.ActionResult, error)) (*combat.ActionResult, error) {
	var result *combat.ActionResult
	err := s.mutate(ctx, encounterID, func(e *combat.Engine) (bool, error) {
		var err error
		result, err = op(e)
		if err != nil {
			return false, err
		}
		if !result.Success {
			s.logger.Debug("action rejected",
				zap.String("encounter_id", encounterID),
				zap.String("reason", result.Description))
		}
		return result.Success, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TakeAction resolves an action for the current combatant
func (s *service) TakeAction(ctx context.Context, encounterID string, action combat.Action) (*combat.ActionResult, error) {
	return s.act(ctx, encounterID, func(e *combat.Engine) (*combat.ActionResult, error) {
		return e.TakeAction(action)
	})
}

// TakeBonusAction resolves a bonus action for the current combatant
func (s *service) TakeBonusAction(ctx context.Context, encounterID string, action combat.BonusAction) (*combat.ActionResult, error) {
	return s.act(ctx, encounterID, func(e *combat.Engine) (*combat.ActionResult, error) {
		return e.TakeBonusAction(action)
	})
}

// MoveCombatant moves the current combatant to a cell
func (s *service) MoveCombatant(ctx context.Context, encounterID, combatantID string, to grid.Position) (*combat.ActionResult, error) {
	return s.act(ctx, encounterID, func(e *combat.Engine) (*combat.ActionResult, error) {
		return e.MoveCombatant(combatantID, to.X, to.Y)
	})
}

// UseActionSurge grants the current fighter another action
func (s *service) UseActionSurge(ctx context.Context, encounterID string) (*combat.ActionResult, error) {
	return s.act(ctx, encounterID, func(e *combat.Engine) (*combat.ActionResult, error) {
		return e.UseActionSurge()
	})
}

// UseDivineSmite spends a spell slot on radiant damage after a hit
func (s *service) UseDivineSmite(ctx context.Context, encounterID string, slotLevel int, targetID string) (*combat.ActionResult, error) {
	return s.act(ctx, encounterID, func(e *combat.Engine) (*combat.ActionResult, error) {
		return e.UseDivineSmite(slotLevel, targetID)
	})
}

// UseStunningStrike spends a ki point to try to stun a target after a hit
func (s *service) UseStunningStrike(ctx context.Context, encounterID, targetID string) (*combat.ActionResult, error) {
	return s.act(ctx, encounterID, func(e *combat.Engine) (*combat.ActionResult, error) {
		return e.UseStunningStrike(targetID)
	})
}

// LegendaryAction runs a monster's legendary action outside its turn
func (s *service) LegendaryAction(ctx context.Context, encounterID string, input *LegendaryActionInput) (*combat.ActionResult, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}
	return s.act(ctx, encounterID, func(e *combat.Engine) (*combat.ActionResult, error) {
		return e.ExecuteLegendaryAction(input.MonsterID, input.ActionID, input.TargetID)
	})
}

// EndTurn advances to the next turn and returns who acts next
func (s *service) EndTurn(ctx context.Context, encounterID string) (string, error) {
	var next string
	err := s.mutate(ctx, encounterID, func(e *combat.Engine) (bool, error) {
		if e.Phase() == combat.PhaseEnded {
			return false, nil
		}
		var err error
		next, err = e.EndTurn()
		if err != nil {
			return false, err
		}
		if e.Phase() == combat.PhaseEnded {
			s.logger.Info("encounter finished",
				zap.String("encounter_id", encounterID),
				zap.String("result", e.State().Result))
		}
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return next, nil
}

// EndEncounter stops combat and summarises it
func (s *service) EndEncounter(ctx context.Context, encounterID, reason string) (*combat.Summary, error) {
	var summary *combat.Summary
	err := s.mutate(ctx, encounterID, func(e *combat.Engine) (bool, error) {
		var err error
		summary, err = e.EndCombat(reason)
		if err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("encounter ended",
		zap.String("encounter_id", encounterID),
		zap.String("result", summary.Result),
		zap.Int("rounds", summary.Rounds))
	return summary, nil
}
