package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fjhdream/truck-billing/internal/domain"
)

// BillingItemRepo defines the persistence operations for line items of a
// billing period. All single-row operations are scoped by billingID.
type BillingItemRepo interface {
	// Create inserts a line item only while its period is open. A missing or
	// closed period yields ErrNotFound and nothing is written.
	Create(ctx context.Context, item domain.BillingItem) (domain.BillingItem, error)

	// Delete removes one line item of an open period and returns the number
	// of rows removed. Zero rows is not an error; a closed period always
	// reports zero.
	Delete(ctx context.Context, billingID, id uuid.UUID) (int64, error)

	// ListByBilling returns the period's line items ordered by charge time.
	ListByBilling(ctx context.Context, billingID uuid.UUID) ([]domain.BillingItem, error)

	// DeleteByTeam removes the line items of every billing period of the team.
	DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error)
}

type pgBillingItemRepo struct {
	db db
}

// NewBillingItemRepo constructs a BillingItemRepo backed by the provided db connection.
func NewBillingItemRepo(db db) BillingItemRepo {
	return &pgBillingItemRepo{db: db}
}

func (r *pgBillingItemRepo) Create(ctx context.Context, item domain.BillingItem) (domain.BillingItem, error) {
	// The period row is share-locked so a concurrent close waits for us or
	// we see its end_time.
	const q = `
		WITH open_billing AS (
			SELECT id FROM billings
			WHERE id = @billing_id AND end_time IS NULL
			FOR SHARE
		)
		INSERT INTO billing_items (billing_id, item_id, cost, time)
		SELECT open_billing.id, @item_id::uuid, @cost::bigint, @time::timestamptz
		FROM open_billing
		RETURNING id, billing_id, item_id, cost, time`

	args := pgx.NamedArgs{
		"billing_id": item.BillingID,
		"item_id":    item.ItemID,
		"cost":       item.Cost,
		"time":       item.Time,
	}

	result, err := scanBillingItem(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.BillingItem{}, mapErr("repo.BillingItemRepo.Create", err)
	}
	return result, nil
}

func (r *pgBillingItemRepo) Delete(ctx context.Context, billingID, id uuid.UUID) (int64, error) {
	const q = `
		WITH open_billing AS (
			SELECT id FROM billings
			WHERE id = @billing_id AND end_time IS NULL
			FOR SHARE
		)
		DELETE FROM billing_items bi
		USING open_billing
		WHERE bi.billing_id = open_billing.id AND bi.id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"billing_id": billingID, "id": id})
	if err != nil {
		return 0, mapErr("repo.BillingItemRepo.Delete", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgBillingItemRepo) ListByBilling(ctx context.Context, billingID uuid.UUID) ([]domain.BillingItem, error) {
	const q = `
		SELECT id, billing_id, item_id, cost, time
		FROM billing_items
		WHERE billing_id = @billing_id
		ORDER BY time, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"billing_id": billingID})
	if err != nil {
		return nil, mapErr("repo.BillingItemRepo.ListByBilling", err)
	}
	defer rows.Close()

	items := []domain.BillingItem{}
	for rows.Next() {
		it, err := scanBillingItem(rows)
		if err != nil {
			return nil, mapErr("repo.BillingItemRepo.ListByBilling: scan", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("repo.BillingItemRepo.ListByBilling: rows", err)
	}
	return items, nil
}

func (r *pgBillingItemRepo) DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	const q = `
		DELETE FROM billing_items
		WHERE billing_id IN (SELECT id FROM billings WHERE team_id = @team_id)`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"team_id": teamID})
	if err != nil {
		return 0, mapErr("repo.BillingItemRepo.DeleteByTeam", err)
	}
	return tag.RowsAffected(), nil
}

func scanBillingItem(s scanner) (domain.BillingItem, error) {
	var (
		it        domain.BillingItem
		id        pgtype.UUID
		billingID pgtype.UUID
		itemID    pgtype.UUID
	)
	if err := s.Scan(&id, &billingID, &itemID, &it.Cost, &it.Time); err != nil {
		return domain.BillingItem{}, err
	}
	it.ID = uuid.UUID(id.Bytes)
	it.BillingID = uuid.UUID(billingID.Bytes)
	if itemID.Valid {
		v := uuid.UUID(itemID.Bytes)
		it.ItemID = &v
	}
	return it, nil
}
