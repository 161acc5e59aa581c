package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fjhdream/truck-billing/internal/domain"
)

// DriverRepo defines the persistence operations for team_drivers links.
// All operations are scoped by teamID.
type DriverRepo interface {
	// Ensure links userID to the team, or returns the existing link if the
	// pair is already present. Never creates a duplicate.
	Ensure(ctx context.Context, teamID uuid.UUID, userID string) (domain.TeamDriver, error)

	// Delete unlinks userID from the team and returns the number of rows
	// removed. Zero rows is not an error.
	Delete(ctx context.Context, teamID uuid.UUID, userID string) (int64, error)

	// ListByTeam returns the team's drivers in insertion order.
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.TeamDriver, error)

	// DeleteByTeam removes every driver link of the team.
	DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error)
}

// pgDriverRepo is the Postgres implementation of DriverRepo.
type pgDriverRepo struct {
	db db
}

// NewDriverRepo constructs a DriverRepo backed by the provided db connection.
func NewDriverRepo(db db) DriverRepo {
	return &pgDriverRepo{db: db}
}

// Ensure inserts the link or returns the existing row on conflict.
// The DO UPDATE SET no-op forces RETURNING to fire for the existing row too;
// DO NOTHING would return no row at all.
func (r *pgDriverRepo) Ensure(ctx context.Context, teamID uuid.UUID, userID string) (domain.TeamDriver, error) {
	const q = `
		INSERT INTO team_drivers (team_id, user_id)
		VALUES (@team_id, @user_id)
		ON CONFLICT (team_id, user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, team_id, user_id, created_at`

	result, err := scanDriver(r.db.QueryRow(ctx, q, pgx.NamedArgs{"team_id": teamID, "user_id": userID}))
	if err != nil {
		return domain.TeamDriver{}, mapErr("repo.DriverRepo.Ensure", err)
	}
	return result, nil
}

func (r *pgDriverRepo) Delete(ctx context.Context, teamID uuid.UUID, userID string) (int64, error) {
	const q = `DELETE FROM team_drivers WHERE team_id = @team_id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"team_id": teamID, "user_id": userID})
	if err != nil {
		return 0, mapErr("repo.DriverRepo.Delete", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgDriverRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.TeamDriver, error) {
	const q = `
		SELECT id, team_id, user_id, created_at
		FROM team_drivers
		WHERE team_id = @team_id
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"team_id": teamID})
	if err != nil {
		return nil, mapErr("repo.DriverRepo.ListByTeam", err)
	}
	defer rows.Close()

	drivers := []domain.TeamDriver{}
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, mapErr("repo.DriverRepo.ListByTeam: scan", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("repo.DriverRepo.ListByTeam: rows", err)
	}
	return drivers, nil
}

func (r *pgDriverRepo) DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM team_drivers WHERE team_id = @team_id`, pgx.NamedArgs{"team_id": teamID})
	if err != nil {
		return 0, mapErr("repo.DriverRepo.DeleteByTeam", err)
	}
	return tag.RowsAffected(), nil
}

func scanDriver(s scanner) (domain.TeamDriver, error) {
	var (
		d      domain.TeamDriver
		id     pgtype.UUID
		teamID pgtype.UUID
	)
	if err := s.Scan(&id, &teamID, &d.UserID, &d.CreatedAt); err != nil {
		return domain.TeamDriver{}, err
	}
	d.ID = uuid.UUID(id.Bytes)
	d.TeamID = uuid.UUID(teamID.Bytes)
	return d, nil
}
