package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fjhdream/truck-billing/internal/domain"
)

// ItemRepo defines the persistence operations for a team's item catalog.
type ItemRepo interface {
	Create(ctx context.Context, item domain.Item) (domain.Item, error)

	// GetByID returns domain.ErrNotFound when the item does not exist or
	// belongs to another team.
	GetByID(ctx context.Context, teamID, id uuid.UUID) (domain.Item, error)

	// ListByTeam returns the catalog ordered by name.
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.Item, error)

	// DeleteByTeam removes the whole catalog of a team. Billing items that
	// reference catalog entries must be deleted first.
	DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error)
}

type pgItemRepo struct {
	db db
}

// NewItemRepo constructs an ItemRepo backed by the provided db connection.
func NewItemRepo(db db) ItemRepo {
	return &pgItemRepo{db: db}
}

func (r *pgItemRepo) Create(ctx context.Context, item domain.Item) (domain.Item, error) {
	const q = `
		INSERT INTO items (team_id, item_type, name, icon_url)
		VALUES (@team_id, @item_type, @name, @icon_url)
		RETURNING id, team_id, item_type, name, icon_url`

	args := pgx.NamedArgs{
		"team_id":   item.TeamID,
		"item_type": string(item.Type),
		"name":      item.Name,
		"icon_url":  item.IconURL,
	}

	result, err := scanItem(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Item{}, mapErr("repo.ItemRepo.Create", err)
	}
	return result, nil
}

func (r *pgItemRepo) GetByID(ctx context.Context, teamID, id uuid.UUID) (domain.Item, error) {
	const q = `
		SELECT id, team_id, item_type, name, icon_url
		FROM items
		WHERE team_id = @team_id AND id = @id`

	result, err := scanItem(r.db.QueryRow(ctx, q, pgx.NamedArgs{"team_id": teamID, "id": id}))
	if err != nil {
		return domain.Item{}, mapErr("repo.ItemRepo.GetByID", err)
	}
	return result, nil
}

func (r *pgItemRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.Item, error) {
	const q = `
		SELECT id, team_id, item_type, name, icon_url
		FROM items
		WHERE team_id = @team_id
		ORDER BY name, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"team_id": teamID})
	if err != nil {
		return nil, mapErr("repo.ItemRepo.ListByTeam", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, mapErr("repo.ItemRepo.ListByTeam: scan", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("repo.ItemRepo.ListByTeam: rows", err)
	}
	return items, nil
}

func (r *pgItemRepo) DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE team_id = @team_id`, pgx.NamedArgs{"team_id": teamID})
	if err != nil {
		return 0, mapErr("repo.ItemRepo.DeleteByTeam", err)
	}
	return tag.RowsAffected(), nil
}

func scanItem(s scanner) (domain.Item, error) {
	var (
		it       domain.Item
		id       pgtype.UUID
		teamID   pgtype.UUID
		itemType string
	)
	if err := s.Scan(&id, &teamID, &itemType, &it.Name, &it.IconURL); err != nil {
		return domain.Item{}, err
	}
	it.ID = uuid.UUID(id.Bytes)
	it.TeamID = uuid.UUID(teamID.Bytes)
	it.Type = domain.ItemType(itemType)
	return it, nil
}
