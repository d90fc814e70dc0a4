package encounters

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

type inMemoryRepository struct {
	mu           sync.RWMutex
	encounters   map[string][]byte
	timeProvider TimeProvider
}

// NewInMemoryRepository creates a new in-memory encounter repository.
// Records are stored encoded so callers never share state with the store.
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		encounters:   make(map[string][]byte),
		timeProvider: &RealTimeProvider{},
	}
}

// Create stores a new encounter
func (r *inMemoryRepository) Create(ctx context.Context, record *Record) error {
	if err := validate(record); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[record.ID]; exists {
		return dnderr.AlreadyExists("encounter with ID '"+record.ID+"' already exists").
			WithMeta("encounter_id", record.ID)
	}

	record.CreatedAt = r.timeProvider.Now()
	record.UpdatedAt = record.CreatedAt
	return r.put(record)
}

// Get retrieves an encounter by ID
func (r *inMemoryRepository) Get(ctx context.Context, id string) (*Record, error) {
	if id == "" {
		return nil, dnderr.InvalidArgument("encounter ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	raw, exists := r.encounters[id]
	if !exists {
		return nil, dnderr.NotFoundf("encounter with ID '%s' not found", id).
			WithMeta("encounter_id", id)
	}
	return decodeRecord(raw)
}

// Update replaces the snapshot of an existing encounter
func (r *inMemoryRepository) Update(ctx context.Context, record *Record) error {
	if err := validate(record); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	raw, exists := r.encounters[record.ID]
	if !exists {
		return dnderr.NotFoundf("encounter with ID '%s' not found", record.ID).
			WithMeta("encounter_id", record.ID)
	}
	existing, err := decodeRecord(raw)
	if err != nil {
		return err
	}

	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = r.timeProvider.Now()
	return r.put(record)
}

// Delete removes an encounter
func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[id]; !exists {
		return dnderr.NotFoundf("encounter with ID '%s' not found", id).
			WithMeta("encounter_id", id)
	}
	delete(r.encounters, id)
	return nil
}

// ListActive retrieves every encounter that has not ended, oldest first
func (r *inMemoryRepository) ListActive(ctx context.Context) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*Record
	for _, raw := range r.encounters {
		record, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		if record.Active() {
			records = append(records, record)
		}
	}
	sortRecords(records)
	return records, nil
}

func (r *inMemoryRepository) put(record *Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return dnderr.Wrapf(err, "failed to marshal encounter %s", record.ID)
	}
	r.encounters[record.ID] = raw
	return nil
}

func validate(record *Record) error {
	if record == nil {
		return dnderr.InvalidArgument("encounter cannot be nil")
	}
	if record.ID == "" {
		return dnderr.InvalidArgument("encounter ID is required")
	}
	if record.Snapshot == nil {
		return dnderr.InvalidArgument("encounter snapshot is required").
			WithMeta("encounter_id", record.ID)
	}
	return nil
}

func decodeRecord(raw []byte) (*Record, error) {
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, dnderr.Wrap(err, "failed to unmarshal encounter")
	}
	return &record, nil
}

func sortRecords(records []*Record) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
}
