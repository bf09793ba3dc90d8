package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"mileage/internal/domain/auth"
	"mileage/internal/platform/config"
)

// Seed is idempotent: permissions, roles and grants are upserted, the admin
// user is only created when missing.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	permIDs, err := ensurePermissions(ctx, pool)
	if err != nil {
		return err
	}

	roleIDs, err := ensureRoles(ctx, pool)
	if err != nil {
		return err
	}

	if err := ensureGrants(ctx, pool, roleIDs, permIDs); err != nil {
		return err
	}

	return ensureAdminUser(ctx, pool, roleIDs[auth.RoleAdmin], cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensurePermissions(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	for _, perm := range auth.DefaultPermissions {
		if _, err := pool.Exec(ctx, "INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", perm); err != nil {
			return nil, err
		}
	}

	permIDs := map[string]string{}
	rows, err := pool.Query(ctx, "SELECT id, key FROM permissions")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, key string
		if err := rows.Scan(&id, &key); err != nil {
			return nil, err
		}
		permIDs[key] = id
	}
	return permIDs, rows.Err()
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	roleIDs := map[string]string{}
	for roleName := range auth.RolePermissions {
		var id string
		if err := pool.QueryRow(ctx, "SELECT id FROM roles WHERE name = $1", roleName).Scan(&id); err != nil {
			if err = pool.QueryRow(ctx, "INSERT INTO roles (name) VALUES ($1) RETURNING id", roleName).Scan(&id); err != nil {
				return nil, err
			}
		}
		roleIDs[roleName] = id
	}
	return roleIDs, nil
}

func ensureGrants(ctx context.Context, pool *pgxpool.Pool, roleIDs, permIDs map[string]string) error {
	for roleName, perms := range auth.RolePermissions {
		for _, permKey := range perms {
			permID, ok := permIDs[permKey]
			if !ok {
				return fmt.Errorf("permission not seeded: %s", permKey)
			}
			_, err := pool.Exec(ctx,
				"INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
				roleIDs[roleName], permID)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, roleID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	if err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id); err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return pool.QueryRow(ctx,
		"INSERT INTO users (email, password_hash, role_id) VALUES ($1, $2, $3) RETURNING id",
		email, hash, roleID).Scan(&id)
}
