package repo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fjhdream/truck-billing/internal/domain"
)

// UserRepo defines the persistence operations for Users.
type UserRepo interface {
	// Create inserts a user with a caller-supplied id.
	// A second insert with the same id fails with a StoreError wrapping ErrDuplicate.
	Create(ctx context.Context, user domain.User) (domain.User, error)

	// GetByID returns domain.ErrNotFound when no user has that id.
	GetByID(ctx context.Context, id string) (domain.User, error)

	// List returns every user ordered by creation time.
	List(ctx context.Context) ([]domain.User, error)
}

type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

func (r *pgUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (id, display_name, avatar_url)
		VALUES (@id, @display_name, @avatar_url)
		RETURNING id, display_name, avatar_url, created_at`

	args := pgx.NamedArgs{
		"id":           user.ID,
		"display_name": user.DisplayName,
		"avatar_url":   user.AvatarURL,
	}

	result, err := scanUser(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.User{}, mapErr("repo.UserRepo.Create", err)
	}
	return result, nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	const q = `SELECT id, display_name, avatar_url, created_at FROM users WHERE id = @id`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.User{}, mapErr("repo.UserRepo.GetByID", err)
	}
	return result, nil
}

func (r *pgUserRepo) List(ctx context.Context) ([]domain.User, error) {
	const q = `SELECT id, display_name, avatar_url, created_at FROM users ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, mapErr("repo.UserRepo.List", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapErr("repo.UserRepo.List: scan", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("repo.UserRepo.List: rows", err)
	}
	return users, nil
}

func scanUser(s scanner) (domain.User, error) {
	var u domain.User
	if err := s.Scan(&u.ID, &u.DisplayName, &u.AvatarURL, &u.CreatedAt); err != nil {
		return domain.User{}, err
	}
	return u, nil
}
