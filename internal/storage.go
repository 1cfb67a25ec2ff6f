package internal

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/kv"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Storage holds the configured kv backend plus whatever connection it lives on.
type Storage struct {
	store       kv.Store
	redisClient *redis.Client
	dbPool      *pgxpool.Pool
	sqliteDB    *sqlx.DB
	// non-nil only for the postgres backend
	poolCollector prometheus.Collector
}

// StorageSecrets are the backend credentials kept out of the config file.
type StorageSecrets struct {
	RedisPassword    string
	PostgresPassword string
}

// StorageSecretsFromEnv reads FITTRACK_REDIS_PASS and FITTRACK_POSTGRES_PASS.
func StorageSecretsFromEnv() StorageSecrets {
	return StorageSecrets{
		RedisPassword:    os.Getenv("FITTRACK_REDIS_PASS"),
		PostgresPassword: os.Getenv("FITTRACK_POSTGRES_PASS"),
	}
}

// OpenStorage connects the backend selected by cfg.StorageBackend, running
// migrations for the sql ones.
func OpenStorage(ctx context.Context, cfg *config.Config, secrets StorageSecrets, tracingEnabled bool) (*Storage, error) {
	s := &Storage{}

	switch cfg.StorageBackend {
	case config.BackendMemory:
		log.Warnln("using in-memory storage, nothing survives a restart")
		s.store = kv.NewMemoryStore()
	case config.BackendRedis:
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: secrets.RedisPassword,
			DB:       0, // use default DB
		})

		rdbStatus := s.redisClient.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
		s.store = kv.NewRedisStore(s.redisClient, cfg.RedisKeyPrefix)
	case config.BackendPostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         cfg.PostgresUser,
			DBPassword:     secrets.PostgresPassword,
			TracingEnabled: tracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		s.dbPool = dbPool

		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}

		sqlDB := stdlib.OpenDBFromPool(dbPool)
		err = db.RunMigrations(sqlDB, db.DialectPostgres)
		if closeErr := sqlDB.Close(); closeErr != nil {
			log.Warnf("close migrations db handle: %s", closeErr)
		}
		if err != nil {
			dbPool.Close()
			return nil, err
		}

		s.poolCollector = pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		)
		s.store = kv.NewPsqlStore(dbPool)
	case config.BackendSQLite:
		sqliteDB, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(sqliteDB.DB, db.DialectSQLite); err != nil {
			_ = sqliteDB.Close()
			return nil, err
		}
		s.sqliteDB = sqliteDB
		s.store = kv.NewSQLiteStore(sqliteDB)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.StorageBackend)
	}

	if cfg.CacheEnabled {
		log.Debugf("read cache enabled: %d MB, ttl [%s]", cfg.CacheSizeMB, cfg.CacheTTLDuration())
		s.store = kv.NewCachedStore(s.store, cfg.CacheSizeMB, cfg.CacheTTLDuration())
	}

	log.Infof("storage backend: %s", cfg.StorageBackend)
	return s, nil
}

func (s *Storage) KV() kv.Store {
	return s.store
}

// Close releases every connection the backend holds.
func (s *Storage) Close() error {
	var err error
	if s.redisClient != nil {
		err = multierr.Append(err, s.redisClient.Close())
	}
	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}
	if s.sqliteDB != nil {
		err = multierr.Append(err, s.sqliteDB.Close())
	}
	return err
}
