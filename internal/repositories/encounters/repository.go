package encounters

//go:generate mockgen -destination=mock/mock_repository.go -package=mockencrepo -source=repository.go

import (
	"context"
	"time"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/game/combat"
)

// Record is a stored encounter: its engine snapshot plus listing metadata
type Record struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Phase     combat.Phase     `json:"phase"`
	Round     int              `json:"round"`
	Snapshot  *combat.Snapshot `json:"snapshot"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Active reports whether the encounter still belongs in the active index
func (r *Record) Active() bool {
	return r.Phase != combat.PhaseEnded
}

// Repository defines the interface for encounter storage operations
type Repository interface {
	// Create stores a new encounter
	Create(ctx context.Context, record *Record) error

	// Get retrieves an encounter by ID
	Get(ctx context.Context, id string) (*Record, error)

	// Update replaces the snapshot of an existing encounter
	Update(ctx context.Context, record *Record) error

	// Delete removes an encounter
	Delete(ctx context.Context, id string) error

	// ListActive retrieves every encounter that has not ended
	ListActive(ctx context.Context) ([]*Record, error)
}
