package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fjhdream/truck-billing/internal/domain"
)

// RoleRepo defines the persistence operations for role assignments.
type RoleRepo interface {
	// Upsert assigns roleType to userID, returning the existing assignment
	// when the user already holds that role.
	Upsert(ctx context.Context, userID string, roleType domain.RoleType) (domain.Role, error)

	// ListByUser returns the user's assignments ordered by role type.
	// An unknown user yields an empty slice.
	ListByUser(ctx context.Context, userID string) ([]domain.Role, error)

	// ListAll returns every assignment of every user, ordered by user then role.
	ListAll(ctx context.Context) ([]domain.Role, error)
}

type pgRoleRepo struct {
	db db
}

// NewRoleRepo constructs a RoleRepo backed by the provided db connection.
func NewRoleRepo(db db) RoleRepo {
	return &pgRoleRepo{db: db}
}

func (r *pgRoleRepo) Upsert(ctx context.Context, userID string, roleType domain.RoleType) (domain.Role, error) {
	const q = `
		INSERT INTO roles (user_id, role_type)
		VALUES (@user_id, @role_type)
		ON CONFLICT (user_id, role_type) DO UPDATE SET role_type = EXCLUDED.role_type
		RETURNING id, user_id, role_type, created_at`

	result, err := scanRole(r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID, "role_type": string(roleType)}))
	if err != nil {
		return domain.Role{}, mapErr("repo.RoleRepo.Upsert", err)
	}
	return result, nil
}

func (r *pgRoleRepo) ListByUser(ctx context.Context, userID string) ([]domain.Role, error) {
	const q = `
		SELECT id, user_id, role_type, created_at
		FROM roles
		WHERE user_id = @user_id
		ORDER BY role_type`

	return r.list(ctx, "repo.RoleRepo.ListByUser", q, pgx.NamedArgs{"user_id": userID})
}

func (r *pgRoleRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	const q = `
		SELECT id, user_id, role_type, created_at
		FROM roles
		ORDER BY user_id, role_type`

	return r.list(ctx, "repo.RoleRepo.ListAll", q, pgx.NamedArgs{})
}

func (r *pgRoleRepo) list(ctx context.Context, op, q string, args pgx.NamedArgs) ([]domain.Role, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	roles := []domain.Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, mapErr(op+": scan", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(op+": rows", err)
	}
	return roles, nil
}

func scanRole(s scanner) (domain.Role, error) {
	var (
		role     domain.Role
		id       pgtype.UUID
		roleType string
	)
	if err := s.Scan(&id, &role.UserID, &roleType, &role.CreatedAt); err != nil {
		return domain.Role{}, err
	}
	role.ID = uuid.UUID(id.Bytes)
	role.Type = domain.RoleType(roleType)
	return role, nil
}
