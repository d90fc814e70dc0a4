package encounters

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

const (
	// Key patterns
	encounterKeyPrefix  = "encounter:"
	activeEncountersKey = "encounters:active"

	// TTL for encounter snapshots (7 days)
	encounterTTL = 7 * 24 * time.Hour
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client       redis.UniversalClient
	TimeProvider TimeProvider
	Logger       *zap.Logger
	// TTL is refreshed on every write
	TTL time.Duration
}

// redisRepository implements Repository using Redis. Each encounter is a JSON
// blob; the ids of encounters that have not ended are kept in a set.
type redisRepository struct {
	client       redis.UniversalClient
	timeProvider TimeProvider
	logger       *zap.Logger
	ttl          time.Duration
}

// NewRedisRepository creates a new Redis-backed encounter repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("redis client is required")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = encounterTTL
	}
	timeProvider := cfg.TimeProvider
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &redisRepository{
		client:       cfg.Client,
		timeProvider: timeProvider,
		logger:       logger,
		ttl:          ttl,
	}
}

func (r *redisRepository) key(id string) string {
	return encounterKeyPrefix + id
}

// Create stores a new encounter
func (r *redisRepository) Create(ctx context.Context, record *Record) error {
	if err := validate(record); err != nil {
		return err
	}

	exists, err := r.client.Exists(ctx, r.key(record.ID)).Result()
	if err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to check encounter existence")
	}
	if exists > 0 {
		return dnderr.AlreadyExists("encounter with ID '"+record.ID+"' already exists").
			WithMeta("encounter_id", record.ID)
	}

	record.CreatedAt = r.timeProvider.Now()
	record.UpdatedAt = record.CreatedAt
	if err := r.write(ctx, record); err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to create encounter "+record.ID)
	}

	r.logger.Info("encounter created",
		zap.String("encounter_id", record.ID),
		zap.String("phase", string(record.Phase)))
	return nil
}

// Get retrieves an encounter by ID
func (r *redisRepository) Get(ctx context.Context, id string) (*Record, error) {
	if id == "" {
		return nil, dnderr.InvalidArgument("encounter ID is required")
	}

	raw, err := r.client.Get(ctx, r.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, dnderr.NotFoundf("encounter with ID '%s' not found", id).
			WithMeta("encounter_id", id)
	}
	if err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to get encounter "+id)
	}
	return decodeRecord([]byte(raw))
}

// Update replaces the snapshot of an existing encounter, keeping its
// creation time
func (r *redisRepository) Update(ctx context.Context, record *Record) error {
	if err := validate(record); err != nil {
		return err
	}

	existing, err := r.Get(ctx, record.ID)
	if err != nil {
		return err
	}

	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = r.timeProvider.Now()
	if err := r.write(ctx, record); err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to update encounter "+record.ID)
	}

	r.logger.Debug("encounter updated",
		zap.String("encounter_id", record.ID),
		zap.String("phase", string(record.Phase)),
		zap.Int("round", record.Round))
	return nil
}

// write stores the blob and maintains the active index atomically
func (r *redisRepository) write(ctx context.Context, record *Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return dnderr.Wrap(err, "failed to marshal encounter")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(record.ID), string(data), r.ttl)
	if record.Active() {
		pipe.SAdd(ctx, activeEncountersKey, record.ID)
	} else {
		pipe.SRem(ctx, activeEncountersKey, record.ID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Delete removes an encounter
func (r *redisRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dnderr.InvalidArgument("encounter ID is required")
	}

	pipe := r.client.TxPipeline()
	deleted := pipe.Del(ctx, r.key(id))
	pipe.SRem(ctx, activeEncountersKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to delete encounter "+id)
	}
	if deleted.Val() == 0 {
		return dnderr.NotFoundf("encounter with ID '%s' not found", id).
			WithMeta("encounter_id", id)
	}

	r.logger.Info("encounter deleted", zap.String("encounter_id", id))
	return nil
}

// ListActive retrieves every encounter in the active index, oldest first.
// Ids whose snapshot has expired are pruned from the index.
func (r *redisRepository) ListActive(ctx context.Context) ([]*Record, error) {
	ids, err := r.client.SMembers(ctx, activeEncountersKey).Result()
	if err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to list active encounter IDs")
	}

	var (
		mu      sync.Mutex
		records = make([]*Record, 0, len(ids))
		expired []any
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error {
			record, err := r.Get(gctx, id)
			if dnderr.IsNotFound(err) {
				mu.Lock()
				expired = append(expired, id)
				mu.Unlock()
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			records = append(records, record)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(expired) > 0 {
		if err := r.client.SRem(ctx, activeEncountersKey, expired...).Err(); err != nil {
			r.logger.Warn("failed to prune expired encounters", zap.Error(err), zap.Int("count", len(expired)))
		}
	}

	sortRecords(records)
	return records, nil
}
