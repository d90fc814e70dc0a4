// Command skirmish plays a scripted encounter through the encounter service
// and prints how it ended.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KirkDiggler/dnd-tactics/internal/clients/dnd5e"
	"github.com/KirkDiggler/dnd-tactics/internal/config"
	"github.com/KirkDiggler/dnd-tactics/internal/dice"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/equipment"
	"github.com/KirkDiggler/dnd-tactics/internal/domain/monster"
	"github.com/KirkDiggler/dnd-tactics/internal/observability"
	"github.com/KirkDiggler/dnd-tactics/internal/repositories/encounters"
	"github.com/KirkDiggler/dnd-tactics/internal/services/encounter"
	"github.com/KirkDiggler/dnd-tactics/internal/uuid"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	scenarioPath := flag.String("scenario", "cmd/skirmish/scenarios/goblin_ambush.yaml", "path to a scenario file")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *scenarioPath, logger); err != nil {
		logger.Fatal("skirmish failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, scenarioPath string, logger *zap.Logger) error {
	scenario, err := LoadScenario(scenarioPath)
	if err != nil {
		return err
	}

	catalog, bestiary, err := loadContent(cfg.Catalog)
	if err != nil {
		return err
	}

	if cfg.DND5E.Enabled {
		if err := importMissing(ctx, cfg.DND5E, bestiary, scenario.MonsterKeys(), logger); err != nil {
			return err
		}
	}

	var roller dice.Roller
	if cfg.Engine.Seed != 0 {
		roller = dice.NewSeededRoller(cfg.Engine.Seed)
	} else {
		roller = dice.NewRandomRoller()
	}
	if cfg.Engine.LogRolls {
		roller = dice.NewLoggedRoller(roller, logger.Named("dice"))
	}

	repo, closeRepo := newRepository(ctx, cfg.Redis, logger)
	defer closeRepo()

	svc := encounter.NewService(&encounter.ServiceConfig{
		Repository:    repo,
		Roller:        roller,
		Weapons:       catalog,
		UUIDGenerator: uuid.NewGoogleUUIDGenerator(),
		Logger:        logger.Named("encounter"),
	})

	runner := &Runner{service: svc, logger: logger.Named("skirmish")}
	outcome, err := runner.Run(ctx, scenario, bestiary)
	if err != nil {
		return err
	}

	printOutcome(scenario, outcome)
	return nil
}

func loadContent(cfg config.CatalogConfig) (*equipment.MemoryCatalog, *monster.MemoryBestiary, error) {
	var (
		catalog  *equipment.MemoryCatalog
		bestiary *monster.MemoryBestiary
		err      error
	)

	if cfg.WeaponsPath != "" {
		catalog, err = equipment.LoadCatalogFile(cfg.WeaponsPath)
	} else {
		catalog, err = equipment.DefaultCatalog()
	}
	if err != nil {
		return nil, nil, err
	}

	if cfg.BestiaryPath != "" {
		bestiary, err = monster.LoadBestiaryFile(cfg.BestiaryPath)
	} else {
		bestiary, err = monster.DefaultBestiary()
	}
	if err != nil {
		return nil, nil, err
	}
	return catalog, bestiary, nil
}

// importMissing fetches scenario monsters the local bestiary lacks
func importMissing(ctx context.Context, cfg config.DND5EConfig, bestiary *monster.MemoryBestiary, keys []string, logger *zap.Logger) error {
	var missing []string
	for _, key := range keys {
		if _, err := bestiary.Monster(key); err != nil {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	client, err := dnd5e.New(&dnd5e.Config{
		HttpClient: &http.Client{},
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		Logger:     logger.Named("dnd5e"),
	})
	if err != nil {
		return err
	}

	importer := dnd5e.NewImporter(&dnd5e.ImporterConfig{
		Client:   client,
		Bestiary: bestiary,
		Logger:   logger.Named("import"),
	})
	_, err = importer.ImportMonsters(ctx, missing)
	return err
}

// newRepository connects to Redis when a URL is configured and falls back to
// memory when it cannot
func newRepository(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (encounters.Repository, func()) {
	noop := func() {}
	if cfg.URL == "" {
		logger.Info("No redis url configured, using in-memory encounters")
		return encounters.NewInMemoryRepository(), noop
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		logger.Warn("Failed to parse redis url, falling back to memory", zap.Error(err))
		return encounters.NewInMemoryRepository(), noop
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Failed to connect to redis, falling back to memory", zap.Error(err))
		_ = client.Close()
		return encounters.NewInMemoryRepository(), noop
	}

	logger.Info("Using redis for encounters", zap.String("addr", opts.Addr))
	repo := encounters.NewRedisRepository(&encounters.RedisRepoConfig{
		Client: client,
		Logger: logger.Named("redis"),
		TTL:    cfg.TTL,
	})
	return repo, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Error closing redis client", zap.Error(err))
		}
	}
}

func printOutcome(s *Scenario, out *Outcome) {
	fmt.Printf("%s (%s)\n", s.Name, out.EncounterID)
	fmt.Printf("  initiative: %s\n", strings.Join(out.Order, ", "))
	if out.Summary == nil {
		return
	}
	fmt.Printf("  result:     %s after %d rounds\n", out.Summary.Result, out.Summary.Rounds)
	fmt.Printf("  survivors:  %s\n", strings.Join(out.Summary.Survivors, ", "))
	fmt.Printf("  casualties: %s\n", strings.Join(out.Summary.Casualties, ", "))
	if out.Rejected > 0 {
		fmt.Printf("  %d scripted steps were rejected\n", out.Rejected)
	}
}
