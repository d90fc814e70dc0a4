package combat

import (
	"encoding/json"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/ammunition"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/game/initiative"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

// Snapshot is the persisted form of an engine
type Snapshot struct {
	State      *CombatState              `json:"state"`
	Registry   initiative.State          `json:"registry"`
	Ammunition map[string]map[string]int `json:"ammunition,omitempty"`
}

// Snapshot captures everything needed to rebuild the engine
func (e *Engine) Snapshot() (*Snapshot, error) {
	state, err := e.state.Clone()
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to copy combat state")
	}
	snap := &Snapshot{State: state, Registry: e.registry.State()}
	if ledger, ok := e.ammo.(ammunition.Ledger); ok {
		snap.Ammunition = ledger.Counts()
	}
	return snap, nil
}

// Encode renders the snapshot as JSON
func (s *Snapshot) Encode() ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to encode snapshot")
	}
	return raw, nil
}

// DecodeSnapshot parses a snapshot written by Encode
func DecodeSnapshot(raw []byte) (*Snapshot, error) {
	snap := &Snapshot{State: newCombatState()}
	if err := json.Unmarshal(raw, snap); err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeInvalidArgument, "failed to decode snapshot")
	}
	if snap.State == nil {
		return nil, dnderr.InvalidArgument("snapshot has no combat state")
	}
	fillMaps(snap.State)
	return snap, nil
}

func fillMaps(s *CombatState) {
	fresh := newCombatState()
	if s.Positions == nil {
		s.Positions = fresh.Positions
	}
	if s.Combatants == nil {
		s.Combatants = fresh.Combatants
	}
	if s.Recharge == nil {
		s.Recharge = fresh.Recharge
	}
	if s.LegendaryRemaining == nil {
		s.LegendaryRemaining = fresh.LegendaryRemaining
	}
	if s.ReactionsUsed == nil {
		s.ReactionsUsed = fresh.ReactionsUsed
	}
}

// Restore rebuilds an engine from a snapshot. The snapshot is copied, so
// the caller may keep using it.
func Restore(cfg *Config, snap *Snapshot) (*Engine, error) {
	if snap == nil || snap.State == nil {
		return nil, dnderr.InvalidArgument("snapshot is required")
	}
	e := NewEngine(cfg)

	state, err := snap.State.Clone()
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to copy combat state")
	}
	fillMaps(state)
	if err := e.registry.Restore(snap.Registry); err != nil {
		return nil, dnderr.Wrap(err, "failed to restore turn order")
	}
	if ledger, ok := e.ammo.(ammunition.Ledger); ok && snap.Ammunition != nil {
		ledger.Restore(snap.Ammunition)
	}
	if seeker, ok := e.ids.(interface{ Seek(int) }); ok {
		seeker.Seek(len(state.Events))
	}
	e.state = state
	return e, nil
}
