package dnd5e

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/monster"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

const defaultConcurrency = 8

// ImporterConfig holds configuration for the importer
type ImporterConfig struct {
	Client   Client
	Catalog  *equipment.MemoryCatalog
	Bestiary *monster.MemoryBestiary
	Logger   *zap.Logger
	// Concurrency caps in-flight API requests
	Concurrency int
}

// Importer copies weapons and monsters from the API into local catalogs.
// Entries already present locally are kept; they carry data the API does
// not publish, such as weapon masteries and legendary actions.
type Importer struct {
	client      Client
	catalog     *equipment.MemoryCatalog
	bestiary    *monster.MemoryBestiary
	logger      *zap.Logger
	concurrency int
}

// ImportResult counts what an import did
type ImportResult struct {
	Imported int
	Kept     int
	Skipped  []string
}

// NewImporter creates a new importer
func NewImporter(cfg *ImporterConfig) *Importer {
	if cfg == nil {
		panic("ImporterConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("client is required")
	}

	i := &Importer{
		client:      cfg.Client,
		catalog:     cfg.Catalog,
		bestiary:    cfg.Bestiary,
		logger:      cfg.Logger,
		concurrency: cfg.Concurrency,
	}
	if i.catalog == nil {
		i.catalog = equipment.NewCatalog()
	}
	if i.bestiary == nil {
		i.bestiary = monster.NewBestiary()
	}
	if i.logger == nil {
		i.logger = zap.NewNop()
	}
	if i.concurrency <= 0 {
		i.concurrency = defaultConcurrency
	}
	return i
}

// Catalog is the catalog weapons are imported into
func (i *Importer) Catalog() *equipment.MemoryCatalog {
	return i.catalog
}

// Bestiary is the bestiary monsters are imported into
func (i *Importer) Bestiary() *monster.MemoryBestiary {
	return i.bestiary
}

// ImportWeapons fetches the given weapons, or the whole weapon category when
// keys is empty. Entries the API cannot describe are skipped; only request
// cancellation fails the import.
func (i *Importer) ImportWeapons(ctx context.Context, keys []string) (*ImportResult, error) {
	if len(keys) == 0 {
		var err error
		keys, err = i.client.ListEquipmentKeys(ctx, "weapon")
		if err != nil {
			return nil, dnderr.Wrap(err, "failed to list weapons")
		}
	}

	return i.run(ctx, keys,
		func(key string) bool {
			_, err := i.catalog.Weapon(key)
			return err == nil
		},
		func(ctx context.Context, key string) error {
			w, err := i.client.GetWeapon(ctx, key)
			if err != nil {
				return err
			}
			return i.catalog.AddWeapon(w)
		})
}

// ImportMonsters fetches the given monsters into the bestiary
func (i *Importer) ImportMonsters(ctx context.Context, keys []string) (*ImportResult, error) {
	return i.run(ctx, keys,
		func(key string) bool {
			_, err := i.bestiary.Monster(key)
			return err == nil
		},
		func(ctx context.Context, key string) error {
			t, err := i.client.GetMonster(ctx, key)
			if err != nil {
				return err
			}
			return i.bestiary.Add(t)
		})
}

func (i *Importer) run(ctx context.Context, keys []string, exists func(string) bool, fetch func(context.Context, string) error) (*ImportResult, error) {
	var (
		mu     sync.Mutex
		result = &ImportResult{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)
	for _, key := range keys {
		if exists(key) {
			result.Kept++
			continue
		}
		g.Go(func() error {
			err := fetch(gctx, key)
			if gctx.Err() != nil {
				return gctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				i.logger.Warn("skipping catalog entry", zap.String("key", key), zap.Error(err))
				result.Skipped = append(result.Skipped, key)
				return nil
			}
			result.Imported++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dnderr.Wrap(err, "import cancelled")
	}

	i.logger.Info("catalog import finished",
		zap.Int("imported", result.Imported),
		zap.Int("kept", result.Kept),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}
