package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/domain/auth"
	"workforce/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureRolePermissions(ctx, pool); err != nil {
		return err
	}
	_, err := EnsureAdmin(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword, cfg.SeedAdminName)
	return err
}

func ensureRolePermissions(ctx context.Context, pool *pgxpool.Pool) error {
	var existing int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM role_permissions").Scan(&existing); err != nil {
		return err
	}
	// An edited mapping is left alone; admin always keeps the full set.
	if existing > 0 {
		for _, perm := range auth.AllPermissions {
			if _, err := pool.Exec(ctx, "INSERT INTO role_permissions (role, permission) VALUES ($1, $2) ON CONFLICT DO NOTHING", auth.RoleAdmin, perm); err != nil {
				return err
			}
		}
		return nil
	}

	for role, perms := range auth.DefaultRolePermissions {
		for _, perm := range perms {
			if _, err := pool.Exec(ctx, "INSERT INTO role_permissions (role, permission) VALUES ($1, $2) ON CONFLICT DO NOTHING", role, perm); err != nil {
				return err
			}
		}
	}
	return nil
}

// EnsureAdmin creates an active admin profile unless one with the email exists.
// It returns true when a profile was created.
func EnsureAdmin(ctx context.Context, pool *pgxpool.Pool, email, password, fullName string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return false, nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM profiles WHERE lower(email) = $1", email).Scan(&id)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(fullName) == "" {
		fullName = "Administrator"
	}
	_, err = pool.Exec(ctx, `
    INSERT INTO profiles (email, password_hash, full_name, role, employment_type, status)
    VALUES ($1,$2,$3,$4,'full_time','active')
  `, email, hash, fullName, auth.RoleAdmin)
	if err != nil {
		return false, err
	}
	return true, nil
}
