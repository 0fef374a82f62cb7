// Package container holds the infrastructure clients built at startup so the
// router can wire modules from them.
package container

import (
	"context"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-service/config"
	"github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/account-service/internal/infrastructure/postgres"
	"github.com/oksasatya/account-service/pkg/helpers"
)

// Container is built once in main. Optional clients are nil when their
// feature is disabled.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	PGPool    *pgxpool.Pool
	Redis     *redis.Client
	ES        *elasticsearch.Client
	RabbitPub *helpers.RabbitPublisher
	GCS       *storage.Client

	directory repository.UserDirectory
}

func New(cfg *config.Config, logger *logrus.Logger) *Container {
	return &Container{Config: cfg, Logger: logger}
}

// Directory returns the configured UserDirectory, creating it on first use.
func (c *Container) Directory() repository.UserDirectory {
	if c.directory != nil {
		return c.directory
	}
	if c.PGPool != nil && !c.UsesMemoryDirectory() {
		c.directory = pginfra.NewUserDirectory(c.PGPool, c.Config.BcryptCost)
	} else {
		c.directory = memory.NewUserDirectory(c.Config.BcryptCost)
	}
	return c.directory
}

func (c *Container) UsesMemoryDirectory() bool {
	return strings.EqualFold(c.Config.DirectoryDriver, "memory")
}

// HealthChecks returns a ping per connected backend.
func (c *Container) HealthChecks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{}
	if c.PGPool != nil {
		checks["postgres"] = c.PGPool.Ping
	}
	if c.Redis != nil {
		rdb := c.Redis
		checks["redis"] = func(ctx context.Context) error { return helpers.PingRedis(ctx, rdb) }
	}
	return checks
}

// Close releases every client that was opened.
func (c *Container) Close() {
	if c.RabbitPub != nil {
		c.RabbitPub.Close()
	}
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.PGPool != nil {
		c.PGPool.Close()
	}
}
