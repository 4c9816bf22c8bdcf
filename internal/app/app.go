package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/humanbelnik/moviematch/internal/config"
	http_init "github.com/humanbelnik/moviematch/internal/delivery/http/init"
	http_participant_middleware "github.com/humanbelnik/moviematch/internal/delivery/http/middleware/participant"
	http_room "github.com/humanbelnik/moviematch/internal/delivery/http/room"
	ws_room "github.com/humanbelnik/moviematch/internal/delivery/ws/room"
	infra_badger_init "github.com/humanbelnik/moviematch/internal/infra/badger/init"
	infra_badger_room "github.com/humanbelnik/moviematch/internal/infra/badger/room"
	infra_catalog_memory "github.com/humanbelnik/moviematch/internal/infra/catalog/memory"
	infra_pg_init "github.com/humanbelnik/moviematch/internal/infra/postgres/init"
	infra_postgres_movie "github.com/humanbelnik/moviematch/internal/infra/postgres/movie"
	infra_qdrant_catalog "github.com/humanbelnik/moviematch/internal/infra/qdrant/catalog"
	infra_qdrant_init "github.com/humanbelnik/moviematch/internal/infra/qdrant/init"
	infra_redis_directory "github.com/humanbelnik/moviematch/internal/infra/redis/directory"
	infra_redis_init "github.com/humanbelnik/moviematch/internal/infra/redis/init"
	infra_sql_room "github.com/humanbelnik/moviematch/internal/infra/sql/room"
	infra_sqlite_init "github.com/humanbelnik/moviematch/internal/infra/sqlite/init"
	"github.com/humanbelnik/moviematch/internal/model"
	service_swipe "github.com/humanbelnik/moviematch/internal/service/swipe"
	service_token "github.com/humanbelnik/moviematch/internal/service/token"
	usecase_room "github.com/humanbelnik/moviematch/internal/usecase/room"
	usecase_session "github.com/humanbelnik/moviematch/internal/usecase/session"
	"github.com/jmoiron/sqlx"
)

// DirectoryKey is the redis key namespace of the lobby listing.
const DirectoryKey = "rooms"

func Go(cfg *config.Config) {
	logger := cfg.Logger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pgConn *sqlx.DB
	postgres := func() *sqlx.DB {
		if pgConn == nil {
			pgConn = infra_pg_init.MustEstablishConn(cfg.Postgres)
		}
		return pgConn
	}

	catalog, err := mustCatalog(ctx, cfg, postgres, logger)
	if err != nil {
		log.Fatalf("failed to prepare movie catalog: %v", err)
	}

	storeOpts := []usecase_room.Option{
		usecase_room.WithLogger(logger),
		usecase_room.WithRetention(cfg.Rooms.Retention),
		usecase_room.WithMaxCodeAttempts(cfg.Rooms.MaxCodeAttempts),
	}
	repo, closeRepo, err := mustRepository(ctx, cfg, postgres, logger)
	if err != nil {
		log.Fatalf("failed to prepare room storage: %v", err)
	}
	defer closeRepo()
	if repo != nil {
		storeOpts = append(storeOpts, usecase_room.WithRepository(repo))
	}
	store := usecase_room.New(catalog, storeOpts...)

	hub := ws_room.NewHub(ws_room.WithLogger(logger))
	go hub.Run(ctx)

	sessionOpts := []usecase_session.Option{
		usecase_session.WithLogger(logger),
		usecase_session.WithPublisher(hub),
	}
	if cfg.Redis.Enabled {
		redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
		defer redisConn.Close()
		directory := infra_redis_directory.New(redisConn, cfg.Redis.Prefix+":"+DirectoryKey,
			infra_redis_directory.WithTTL(cfg.Rooms.Retention))
		sessionOpts = append(sessionOpts, usecase_session.WithDirectory(directory))
	}
	sessions := usecase_session.New(store, service_swipe.New(), sessionOpts...)

	if _, err := store.Restore(ctx); err != nil {
		log.Fatalf("failed to restore rooms: %v", err)
	}
	sessions.SyncDirectory(ctx)

	go sessions.RunMaintenance(ctx, cfg.Rooms.SweepInterval)

	if cfg.Token.Secret == "" {
		logger.Warn("TOKEN_SECRET is not set, using a random secret; participant tokens will not survive a restart")
	}
	tokens := service_token.New(cfg.Token.Secret, cfg.Token.TTL)
	participantMiddleware := http_participant_middleware.New(tokens)

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_room.New(sessions, tokens, participantMiddleware, http_room.WithLogger(logger)))
	controllerPool.Add(ws_room.NewController(hub, sessions, participantMiddleware, ws_room.WithControllerLogger(logger)))

	controllerPool.Register()
	controllerPool.RunAll(ctx, net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port))
}

func mustCatalog(
	ctx context.Context,
	cfg *config.Config,
	postgres func() *sqlx.DB,
	logger *slog.Logger,
) (usecase_room.MovieCatalog, error) {
	var seed []model.Movie
	if cfg.Catalog.Seed {
		seed = infra_catalog_memory.Seed()
	}

	switch cfg.Catalog.Driver {
	case config.CatalogMemory:
		if len(seed) == 0 {
			logger.Warn("memory catalog is empty, every room creation will be rejected")
		}
		return infra_catalog_memory.New(seed), nil

	case config.CatalogPostgres:
		repo := infra_postgres_movie.New(postgres())
		if err := repo.InitSchema(ctx); err != nil {
			return nil, err
		}
		seeded, err := repo.SeedIfEmpty(ctx, seed)
		if err != nil {
			return nil, err
		}
		logger.Info("movie catalog ready", slog.String("driver", "postgres"), slog.Int("seeded", seeded))
		return repo, nil

	case config.CatalogQdrant:
		catalog := infra_qdrant_catalog.New(
			infra_qdrant_init.MustEstablishConn(cfg.Qdrant),
			infra_qdrant_catalog.WithCollection(cfg.Qdrant.Collection),
			infra_qdrant_catalog.WithLimit(cfg.Qdrant.Limit),
			infra_qdrant_catalog.WithLogger(logger),
		)
		if err := catalog.EnsureCollection(ctx); err != nil {
			return nil, err
		}
		if len(seed) > 0 {
			if err := catalog.Store(ctx, seed...); err != nil {
				return nil, err
			}
		}
		logger.Info("movie catalog ready", slog.String("driver", "qdrant"), slog.Int("seeded", len(seed)))
		return catalog, nil
	}

	return nil, fmt.Errorf("unknown catalog driver %q", cfg.Catalog.Driver)
}

// mustRepository returns a nil repository for the memory driver.
func mustRepository(
	ctx context.Context,
	cfg *config.Config,
	postgres func() *sqlx.DB,
	logger *slog.Logger,
) (usecase_room.RoomRepository, func(), error) {
	noop := func() {}

	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return nil, noop, nil

	case config.StoragePostgres:
		driver := infra_sql_room.New(postgres(), infra_sql_room.WithLogger(logger))
		if err := driver.InitSchema(ctx); err != nil {
			return nil, noop, err
		}
		return driver, noop, nil

	case config.StorageSQLite:
		db, err := infra_sqlite_init.Open(cfg.Storage.SqlitePath)
		if err != nil {
			return nil, noop, err
		}
		driver := infra_sql_room.New(db, infra_sql_room.WithLogger(logger))
		if err := driver.InitSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return driver, func() { _ = db.Close() }, nil

	case config.StorageBadger:
		db, err := infra_badger_init.Open(cfg.Storage.BadgerDir)
		if err != nil {
			return nil, noop, err
		}
		repo := infra_badger_room.New(db,
			infra_badger_room.WithLogger(logger),
			infra_badger_room.WithRetention(cfg.Rooms.Retention),
		)
		return repo, func() { _ = db.Close() }, nil
	}

	return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
