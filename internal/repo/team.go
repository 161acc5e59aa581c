package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fjhdream/truck-billing/internal/domain"
)

// TeamRepo defines the persistence operations for Teams.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type TeamRepo interface {
	// Create inserts a new team and returns the persisted record (with DB-generated
	// id, created_at, and updated_at populated).
	Create(ctx context.Context, team domain.Team) (domain.Team, error)

	// GetByID retrieves a single team by its UUID primary key.
	// Returns domain.ErrNotFound if no team with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Team, error)

	// ListByOwner returns the teams owned by a user, oldest first.
	ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Team, error)

	// UpdateName replaces the team name and returns the updated record.
	// Returns domain.ErrNotFound if no team with that ID exists.
	UpdateName(ctx context.Context, id uuid.UUID, name string) (domain.Team, error)

	// Delete removes the team row only. Rows referencing the team must be
	// deleted first. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTeamRepo is the Postgres implementation of TeamRepo.
type pgTeamRepo struct {
	db db
}

// NewTeamRepo constructs a TeamRepo backed by the provided db connection.
func NewTeamRepo(db db) TeamRepo {
	return &pgTeamRepo{db: db}
}

const teamColumns = `id, team_name, owner_user_id, created_at, updated_at`

// Create inserts a new team row and returns the full persisted record.
func (r *pgTeamRepo) Create(ctx context.Context, team domain.Team) (domain.Team, error) {
	const q = `
		INSERT INTO teams (team_name, owner_user_id)
		VALUES (@team_name, @owner_user_id)
		RETURNING ` + teamColumns

	args := pgx.NamedArgs{
		"team_name":     team.Name,
		"owner_user_id": team.OwnerUserID,
	}

	result, err := scanTeam(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Team{}, mapErr("repo.TeamRepo.Create", err)
	}
	return result, nil
}

// GetByID retrieves a team by primary key.
func (r *pgTeamRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Team, error) {
	const q = `SELECT ` + teamColumns + ` FROM teams WHERE id = @id`

	result, err := scanTeam(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Team{}, mapErr("repo.TeamRepo.GetByID", err)
	}
	return result, nil
}

// ListByOwner returns all teams of an owner ordered by creation time.
func (r *pgTeamRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Team, error) {
	const q = `
		SELECT ` + teamColumns + `
		FROM teams
		WHERE owner_user_id = @owner_user_id
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_user_id": ownerUserID})
	if err != nil {
		return nil, mapErr("repo.TeamRepo.ListByOwner", err)
	}
	defer rows.Close()

	teams := []domain.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, mapErr("repo.TeamRepo.ListByOwner: scan", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("repo.TeamRepo.ListByOwner: rows", err)
	}
	return teams, nil
}

// UpdateName overwrites team_name and bumps updated_at.
func (r *pgTeamRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) (domain.Team, error) {
	const q = `
		UPDATE teams
		SET team_name  = @team_name,
		    updated_at = clock_timestamp()
		WHERE id = @id
		RETURNING ` + teamColumns

	result, err := scanTeam(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "team_name": name}))
	if err != nil {
		return domain.Team{}, mapErr("repo.TeamRepo.UpdateName", err)
	}
	return result, nil
}

// Delete removes a team by primary key.
func (r *pgTeamRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM teams WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return mapErr("repo.TeamRepo.Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return mapErr("repo.TeamRepo.Delete", domain.ErrNotFound)
	}
	return nil
}

// scanTeam maps a single database row into a domain.Team.
func scanTeam(s scanner) (domain.Team, error) {
	var (
		t  domain.Team
		id pgtype.UUID
	)
	if err := s.Scan(&id, &t.Name, &t.OwnerUserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Team{}, err
	}
	t.ID = uuid.UUID(id.Bytes)
	return t, nil
}
