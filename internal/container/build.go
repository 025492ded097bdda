package container

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-task-manager/config"
	esinfra "github.com/oksasatya/go-ddd-task-manager/internal/infrastructure/elasticsearch"
	"github.com/oksasatya/go-ddd-task-manager/internal/infrastructure/memory"
	mongoinfra "github.com/oksasatya/go-ddd-task-manager/internal/infrastructure/mongodb"
	pginfra "github.com/oksasatya/go-ddd-task-manager/internal/infrastructure/postgres"
	redisinfra "github.com/oksasatya/go-ddd-task-manager/internal/infrastructure/redis"
	"github.com/oksasatya/go-ddd-task-manager/pkg/helpers"
)

// Build connects the configured store and every enabled integration.
// The caller must Close the container.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := c.buildIntegrations(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func buildStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		c := New(cfg, logger, pginfra.NewUserRepository(pool), pginfra.NewTaskRepository(pool), pginfra.NewPinger(pool))
		c.OnClose(pool.Close)
		return c, nil

	case config.StoreDriverMongoDB:
		client, err := mongoinfra.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongoinfra.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("mongodb indexes: %w", err)
		}
		c := New(cfg, logger, mongoinfra.NewUserRepository(db), mongoinfra.NewTaskRepository(db), mongoinfra.NewPinger(client))
		c.OnClose(func() { _ = client.Disconnect(context.Background()) })
		return c, nil

	case config.StoreDriverMemory:
		store := memory.NewStore()
		logger.Warn("using in-memory store; data is lost on restart")
		return New(cfg, logger, store, store.Tasks(), store), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func (c *Container) buildIntegrations(ctx context.Context) error {
	cfg, logger := c.Config, c.Logger

	if cfg.RedisAddr != "" {
		rdb := redisinfra.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		c.OnClose(func() { _ = rdb.Close() })
		cache := redisinfra.NewUserCache(rdb, cfg.UserCacheTTL)
		if err := cache.Ping(ctx); err != nil {
			// the gate falls back to the store on cache errors
			logger.WithError(err).Warn("redis unreachable at startup")
		}
		c.Cache = cache
		logger.WithField("addr", cfg.RedisAddr).Info("user cache enabled")
	}

	if cfg.MailSendEnabled && cfg.RabbitMQURL != "" {
		pub, err := helpers.DialJobQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		c.OnClose(pub.Close)
		c.Mail = pub
		logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("welcome emails enabled")
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := esinfra.NewClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			return fmt.Errorf("elasticsearch client: %w", err)
		}
		indexer := esinfra.NewTaskIndexer(es, cfg.ESTasksIndex)
		// indexing is best-effort, so an unreachable cluster does not block startup
		if err := indexer.EnsureIndex(ctx); err != nil {
			logger.WithError(err).Warn("elasticsearch index not ready")
		}
		c.Indexer = indexer
		logger.WithField("index", cfg.ESTasksIndex).Info("task indexing enabled")
	}

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return fmt.Errorf("gcs client: %w", err)
		}
		c.OnClose(func() { _ = gcs.Close() })
		c.Exports = helpers.NewGCSUploader(gcs, cfg.GCSBucket)
		logger.WithField("bucket", cfg.GCSBucket).Info("task export enabled")
	}
	return nil
}
