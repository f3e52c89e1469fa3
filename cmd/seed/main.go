package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/authmify/config"
	"github.com/oksasatya/authmify/internal/application"
	"github.com/oksasatya/authmify/internal/domain/repository"
	pginfra "github.com/oksasatya/authmify/internal/infrastructure/postgres"
	"github.com/oksasatya/authmify/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := pginfra.NewUserRepository(pool)
	hasher := helpers.NewPasswordHasher(cfg.BcryptCost)

	email := application.NormalizeEmail("demo@authmify.local")
	password := "password123"

	if u, err := repo.FindByEmail(ctx, email); err == nil {
		fmt.Printf("user already seeded: id=%s email=%s\n", u.ID, u.Email)
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Fatalf("failed to look up user: %v", err)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	u, err := repo.Create(ctx, email, hash)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", u.ID, u.Email, password)
}
