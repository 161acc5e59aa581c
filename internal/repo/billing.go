package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fjhdream/truck-billing/internal/domain"
)

// BillingRepo defines the persistence operations for billing periods.
type BillingRepo interface {
	// Create inserts an open billing period (end_time NULL).
	Create(ctx context.Context, billing domain.Billing) (domain.Billing, error)

	// GetByID returns domain.ErrNotFound when the period does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Billing, error)

	// ListByTeam returns the team's billing periods, newest first.
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.Billing, error)

	// Close sets end_time on an open period and returns the updated record.
	// Returns domain.ErrNotFound when no open period with that id exists,
	// which covers both a missing row and an already closed one.
	Close(ctx context.Context, id uuid.UUID, at time.Time) (domain.Billing, error)

	// DeleteByTeam removes every billing period of the team. Their line items
	// must be deleted first.
	DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error)
}

type pgBillingRepo struct {
	db db
}

// NewBillingRepo constructs a BillingRepo backed by the provided db connection.
func NewBillingRepo(db db) BillingRepo {
	return &pgBillingRepo{db: db}
}

const billingColumns = `id, team_id, name, start_time, end_time`

func (r *pgBillingRepo) Create(ctx context.Context, billing domain.Billing) (domain.Billing, error) {
	const q = `
		INSERT INTO billings (team_id, name, start_time)
		VALUES (@team_id, @name, @start_time)
		RETURNING ` + billingColumns

	args := pgx.NamedArgs{
		"team_id":    billing.TeamID,
		"name":       billing.Name,
		"start_time": billing.StartTime,
	}

	result, err := scanBilling(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Billing{}, mapErr("repo.BillingRepo.Create", err)
	}
	return result, nil
}

func (r *pgBillingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Billing, error) {
	const q = `SELECT ` + billingColumns + ` FROM billings WHERE id = @id`

	result, err := scanBilling(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Billing{}, mapErr("repo.BillingRepo.GetByID", err)
	}
	return result, nil
}

func (r *pgBillingRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.Billing, error) {
	const q = `
		SELECT ` + billingColumns + `
		FROM billings
		WHERE team_id = @team_id
		ORDER BY start_time DESC, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"team_id": teamID})
	if err != nil {
		return nil, mapErr("repo.BillingRepo.ListByTeam", err)
	}
	defer rows.Close()

	billings := []domain.Billing{}
	for rows.Next() {
		b, err := scanBilling(rows)
		if err != nil {
			return nil, mapErr("repo.BillingRepo.ListByTeam: scan", err)
		}
		billings = append(billings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("repo.BillingRepo.ListByTeam: rows", err)
	}
	return billings, nil
}

// Close is guarded on end_time IS NULL so that two concurrent closes cannot
// both win. The loser sees ErrNotFound and re-reads the row.
func (r *pgBillingRepo) Close(ctx context.Context, id uuid.UUID, at time.Time) (domain.Billing, error) {
	const q = `
		UPDATE billings
		SET end_time = GREATEST(@end_time::timestamptz, start_time)
		WHERE id = @id AND end_time IS NULL
		RETURNING ` + billingColumns

	result, err := scanBilling(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "end_time": at}))
	if err != nil {
		return domain.Billing{}, mapErr("repo.BillingRepo.Close", err)
	}
	return result, nil
}

func (r *pgBillingRepo) DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM billings WHERE team_id = @team_id`, pgx.NamedArgs{"team_id": teamID})
	if err != nil {
		return 0, mapErr("repo.BillingRepo.DeleteByTeam", err)
	}
	return tag.RowsAffected(), nil
}

func scanBilling(s scanner) (domain.Billing, error) {
	var (
		b       domain.Billing
		id      pgtype.UUID
		teamID  pgtype.UUID
		endTime pgtype.Timestamptz
	)
	if err := s.Scan(&id, &teamID, &b.Name, &b.StartTime, &endTime); err != nil {
		return domain.Billing{}, err
	}
	b.ID = uuid.UUID(id.Bytes)
	b.TeamID = uuid.UUID(teamID.Bytes)
	if endTime.Valid {
		t := endTime.Time
		b.EndTime = &t
	}
	return b, nil
}
