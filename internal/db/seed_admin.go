package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vedang-raul/taskhub/internal/config"
	"github.com/vedang-raul/taskhub/internal/domain/user"
	"github.com/vedang-raul/taskhub/internal/repo/postgres"
	"github.com/vedang-raul/taskhub/internal/security"
)

// EnsureAdminUser seeds a first admin from config so a fresh deployment is
// usable without knowing the registration admin code. No-op when unset or the
// email already exists.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	repo := postgres.NewUsersRepo(pool, nil)

	_, err = repo.Create(ctx, cfg.AdminName, cfg.AdminEmail, hash, user.RoleAdmin)

	if err != nil && !errors.Is(err, user.ErrEmailAlreadyUsed) {
		return err
	}

	return nil
}
