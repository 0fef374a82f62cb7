package router

import (
	"time"

	accountapp "github.com/oksasatya/account-service/internal/application"
	"github.com/oksasatya/account-service/internal/container"
	"github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/internal/infrastructure/events"
	"github.com/oksasatya/account-service/internal/infrastructure/export"
	"github.com/oksasatya/account-service/internal/infrastructure/search"
	handlers "github.com/oksasatya/account-service/internal/interface/http"
	"github.com/oksasatya/account-service/internal/interface/middleware"
	"github.com/oksasatya/account-service/internal/router/modules"
	"github.com/oksasatya/account-service/pkg/helpers"
)

type AccountModuleDeps struct {
	Directory repository.UserDirectory
	Service   *accountapp.AccountService
	Handler   *handlers.AccountHandler
}

// BuildAccountDeps wires the account service with whichever optional
// backends the container holds.
func BuildAccountDeps(c *container.Container) AccountModuleDeps {
	cfg := c.Config
	dir := c.Directory()

	var opts []accountapp.Option
	if c.RabbitPub != nil {
		opts = append(opts, accountapp.WithEvents(events.NewPublisher(c.RabbitPub)))
	}
	if c.ES != nil {
		opts = append(opts, accountapp.WithIndexer(search.NewUserIndex(c.ES, cfg.ESUsersIndex)))
	}
	if c.GCS != nil && cfg.GCSBucket != "" {
		opts = append(opts, accountapp.WithExporter(export.NewGCSExporter(c.GCS, cfg.GCSBucket, cfg.ExportPrefix)))
	}

	if hash, err := helpers.NewPlaceholderHash(cfg.BcryptCost); err == nil {
		opts = append(opts, accountapp.WithPlaceholderHash(hash))
	} else if c.Logger != nil {
		c.Logger.WithError(err).Warn("placeholder hash generation failed; using default")
	}

	service := accountapp.NewAccountService(dir, helpers.BcryptVerifier{}, c.Logger, opts...)
	handler := handlers.NewAccountHandler(service, c.Logger)

	return AccountModuleDeps{
		Directory: dir,
		Service:   service,
		Handler:   handler,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config
	r.Use(middleware.RealIP(cfg.TrustedProxyList()...))

	deps := BuildAccountDeps(c)
	r.Add(modules.NewAccountModule(deps.Handler, c.Redis, cfg.RateLimitPerMinute, time.Minute))
	r.Add(modules.NewSystemModule(c.HealthChecks(), cfg.DebugMetricsEnabled, c.Redis, cfg.RateLimitPerMinute, time.Minute))
}
