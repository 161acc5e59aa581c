package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fjhdream/truck-billing/internal/domain"
)

// CarRepo defines the persistence operations for team_cars links.
// All operations are scoped by teamID.
type CarRepo interface {
	// Ensure links a plate number to the team, or returns the existing link.
	Ensure(ctx context.Context, teamID uuid.UUID, plateNumber string) (domain.TeamCar, error)

	// Delete removes the car link with the given id under the team and returns
	// the number of rows removed. Zero rows is not an error.
	Delete(ctx context.Context, teamID, carID uuid.UUID) (int64, error)

	// ListByTeam returns the team's cars in insertion order.
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.TeamCar, error)

	// DeleteByTeam removes every car link of the team.
	DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error)
}

type pgCarRepo struct {
	db db
}

// NewCarRepo constructs a CarRepo backed by the provided db connection.
func NewCarRepo(db db) CarRepo {
	return &pgCarRepo{db: db}
}

func (r *pgCarRepo) Ensure(ctx context.Context, teamID uuid.UUID, plateNumber string) (domain.TeamCar, error) {
	const q = `
		INSERT INTO team_cars (team_id, plate_number)
		VALUES (@team_id, @plate_number)
		ON CONFLICT (team_id, plate_number) DO UPDATE SET plate_number = EXCLUDED.plate_number
		RETURNING id, team_id, plate_number, created_at`

	result, err := scanCar(r.db.QueryRow(ctx, q, pgx.NamedArgs{"team_id": teamID, "plate_number": plateNumber}))
	if err != nil {
		return domain.TeamCar{}, mapErr("repo.CarRepo.Ensure", err)
	}
	return result, nil
}

func (r *pgCarRepo) Delete(ctx context.Context, teamID, carID uuid.UUID) (int64, error) {
	const q = `DELETE FROM team_cars WHERE team_id = @team_id AND id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"team_id": teamID, "id": carID})
	if err != nil {
		return 0, mapErr("repo.CarRepo.Delete", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgCarRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.TeamCar, error) {
	const q = `
		SELECT id, team_id, plate_number, created_at
		FROM team_cars
		WHERE team_id = @team_id
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"team_id": teamID})
	if err != nil {
		return nil, mapErr("repo.CarRepo.ListByTeam", err)
	}
	defer rows.Close()

	cars := []domain.TeamCar{}
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, mapErr("repo.CarRepo.ListByTeam: scan", err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("repo.CarRepo.ListByTeam: rows", err)
	}
	return cars, nil
}

func (r *pgCarRepo) DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM team_cars WHERE team_id = @team_id`, pgx.NamedArgs{"team_id": teamID})
	if err != nil {
		return 0, mapErr("repo.CarRepo.DeleteByTeam", err)
	}
	return tag.RowsAffected(), nil
}

func scanCar(s scanner) (domain.TeamCar, error) {
	var (
		c      domain.TeamCar
		id     pgtype.UUID
		teamID pgtype.UUID
	)
	if err := s.Scan(&id, &teamID, &c.PlateNumber, &c.CreatedAt); err != nil {
		return domain.TeamCar{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	c.TeamID = uuid.UUID(teamID.Bytes)
	return c, nil
}
