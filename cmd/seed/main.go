package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"

	"github.com/oksasatya/account-service/config"
	"github.com/oksasatya/account-service/internal/domain/entity"
	"github.com/oksasatya/account-service/internal/domain/repository"
	pginfra "github.com/oksasatya/account-service/internal/infrastructure/postgres"
	"github.com/oksasatya/account-service/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	dir := pginfra.NewUserDirectory(pool, cfg.BcryptCost)
	entry := logger.WithField("email", cfg.SeedEmail)

	existing, err := dir.FindByEmail(ctx, cfg.SeedEmail)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		u, err := dir.Create(ctx, entity.NewUser{Name: cfg.SeedName, Email: cfg.SeedEmail, Password: cfg.SeedPassword})
		if err != nil {
			entry.Fatalf("failed to seed user: %v", err)
		}
		entry.WithField("id", u.ID).Info("seeded user")
	case err != nil:
		entry.Fatalf("failed to look up seed user: %v", err)
	default:
		if err := dir.SetPassword(ctx, existing.ID, cfg.SeedPassword); err != nil {
			entry.Fatalf("failed to reset seed password: %v", err)
		}
		entry.WithField("id", existing.ID).Info("seed user exists; password reset")
	}
}
