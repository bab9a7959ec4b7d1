package api

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"infinite-experiment/werewolf/internal/common"
	"infinite-experiment/werewolf/internal/config"
	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/db"
	"infinite-experiment/werewolf/internal/db/repositories"
	"infinite-experiment/werewolf/internal/logging"
	"infinite-experiment/werewolf/internal/metrics"
	"infinite-experiment/werewolf/internal/providers"
	"infinite-experiment/werewolf/internal/services"
)

// gameLockTTL bounds how long a crashed replica can hold a game.
const gameLockTTL = 2 * time.Minute

type Repositories struct {
	Store *repositories.Store
	Keys  *repositories.KeysRepo
}

type Services struct {
	Cache       common.CacheInterface
	Locker      common.GameLocker
	Catalog     *services.CatalogService
	Permissions *services.PermissionService
	Games       *services.GameService
	Signups     *services.SignupService
	Events      *services.EventService
	Scenarios   *services.ScenarioService
}

type Dependencies struct {
	GormDB   *gorm.DB
	SQLDB    *sqlx.DB
	Redis    *redis.Client
	Queue    *common.ReactionQueue
	Platform providers.ChatPlatform
	Metrics  *metrics.MetricsRegistry
	Repo     *Repositories
	Services *Services
}

// InitDependencies opens the databases and redis named by cfg and wires every service.
func InitDependencies(cfg *config.Config, metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	gormDB, sqlDB, err := openDatabases(cfg)
	if err != nil {
		return nil, err
	}

	var (
		redisClient *redis.Client
		cache       common.CacheInterface
		locker      common.GameLocker
		queue       *common.ReactionQueue
	)
	if cfg.RedisEnabled {
		redisClient, err = common.NewRedisClient(cfg.RedisAddr(), cfg.RedisPassword, 0)
		if err != nil {
			return nil, err
		}
		cache = common.NewRedisCacheService(redisClient)
		locker = common.NewRedisGameLocker(redisClient, gameLockTTL)
		queue = common.NewReactionQueue(redisClient, constants.ReactionStream)
		logging.Info("Redis enabled: shared cache, distributed game locks and reaction queue")
	} else {
		cache = common.NewCacheService(cfg.Game.CatalogCacheTTL, 2*cfg.Game.CatalogCacheTTL)
		locker = common.NewLocalGameLocker()
		logging.Info("Redis disabled: in-process cache and game locks, reactions handled inline")
	}

	platform, err := providers.NewDiscordProvider(cfg.DiscordBaseURL, cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	deps := NewDependencies(cfg.Game, gormDB, sqlDB, platform, cache, locker, metricsReg)
	deps.Redis = redisClient
	deps.Queue = queue
	return deps, nil
}

func openDatabases(cfg *config.Config) (*gorm.DB, *sqlx.DB, error) {
	if cfg.DBDriver == "sqlite" {
		gormDB, err := db.InitSQLiteORM(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.WrapGorm(gormDB, "sqlite3")
		if err != nil {
			return nil, nil, err
		}
		return gormDB, sqlDB, nil
	}

	sqlDB, err := db.InitPostgres(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	gormDB, err := db.InitPostgresORM(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	return gormDB, sqlDB, nil
}

// NewDependencies wires the services over already opened stores.
func NewDependencies(
	gameCfg config.GameConfig,
	gormDB *gorm.DB,
	sqlDB *sqlx.DB,
	platform providers.ChatPlatform,
	cache common.CacheInterface,
	locker common.GameLocker,
	metricsReg *metrics.MetricsRegistry,
) *Dependencies {
	repos := &Repositories{
		Store: repositories.NewStore(gormDB),
		Keys:  repositories.NewApiKeysRepo(sqlDB),
	}

	catalog := services.NewCatalogService(repos.Store, cache, gameCfg.CatalogCacheTTL)
	permissions := services.NewPermissionService(platform, repos.Store, metricsReg)

	svcs := &Services{
		Cache:       cache,
		Locker:      locker,
		Catalog:     catalog,
		Permissions: permissions,
		Games:       services.NewGameService(platform, repos.Store, catalog, permissions, locker, services.NewSeededShuffler(), gameCfg),
		Signups:     services.NewSignupService(platform, repos.Store, locker, gameCfg),
		Events:      services.NewEventService(platform, repos.Store, permissions, locker, gameCfg),
		Scenarios:   services.NewScenarioService(repos.Store, catalog, gameCfg),
	}

	return &Dependencies{
		GormDB:   gormDB,
		SQLDB:    sqlDB,
		Platform: platform,
		Metrics:  metricsReg,
		Repo:     repos,
		Services: svcs,
	}
}

// Close releases the connections opened by InitDependencies.
func (d *Dependencies) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// the redis cache owns the redis client
	keep(d.Services.Cache.Close())
	if d.SQLDB != nil {
		keep(d.SQLDB.Close())
	}
	if d.GormDB != nil {
		if sqlDB, err := d.GormDB.DB(); err == nil {
			keep(sqlDB.Close())
		}
	}
	if firstErr != nil {
		return fmt.Errorf("failed to close dependencies: %w", firstErr)
	}
	return nil
}
