package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjhdream/truck-billing/internal/domain"
	"github.com/fjhdream/truck-billing/internal/repo"
)

// UserService creates and reads user profiles.
type UserService struct {
	deps  Deps
	roles *RoleService
}

// NewUserService constructs a UserService. The role gate for ListAll is
// resolved through roles.
func NewUserService(deps Deps, roles *RoleService) *UserService {
	return &UserService{deps: deps.withDefaults(), roles: roles}
}

// Create persists a user together with the default role in one transaction
// and returns the user id. Either both rows exist afterwards or neither does.
func (s *UserService) Create(ctx context.Context, user domain.User) (string, error) {
	err := observe(ctx, s.deps, "user.create", func(ctx context.Context) error {
		user.ID = strings.TrimSpace(user.ID)
		user.DisplayName = strings.TrimSpace(user.DisplayName)
		if user.ID == "" {
			return fmt.Errorf("%w: user id is required", domain.ErrValidation)
		}
		if user.DisplayName == "" {
			return fmt.Errorf("%w: display name is required", domain.ErrValidation)
		}
		return s.deps.Tx.InTx(ctx, func(r repo.Repos) error {
			if _, err := r.Users.Create(ctx, user); err != nil {
				return err
			}
			_, err := r.Roles.Upsert(ctx, user.ID, domain.DefaultRole)
			return err
		})
	})
	if err != nil {
		return "", fmt.Errorf("service.UserService.Create: %w", err)
	}
	s.deps.Log.InfoContext(ctx, "user created", "user_id", user.ID, "role", domain.DefaultRole)
	return user.ID, nil
}

// Get returns the profile of id with the role types it holds.
func (s *UserService) Get(ctx context.Context, id string) (domain.UserView, error) {
	user, err := s.deps.Repos.Users.GetByID(ctx, id)
	if err != nil {
		return domain.UserView{}, fmt.Errorf("service.UserService.Get: %w", err)
	}
	set, err := s.roles.RolesFor(ctx, id)
	if err != nil {
		return domain.UserView{}, fmt.Errorf("service.UserService.Get: %w", err)
	}
	return domain.UserView{User: user, Roles: set.Types()}, nil
}

// ListAll returns every user with their roles. Only an ADMIN may call it;
// the gate is checked before anything else is read.
func (s *UserService) ListAll(ctx context.Context, requestingUserID string) ([]domain.UserView, error) {
	var views []domain.UserView
	err := observe(ctx, s.deps, "user.list_all", func(ctx context.Context) error {
		if err := s.roles.Require(ctx, requestingUserID, domain.RoleAdmin); err != nil {
			return err
		}
		users, err := s.deps.Repos.Users.List(ctx)
		if err != nil {
			return err
		}
		roles, err := s.deps.Repos.Roles.ListAll(ctx)
		if err != nil {
			return err
		}
		byUser := make(map[string][]domain.Role, len(users))
		for _, r := range roles {
			byUser[r.UserID] = append(byUser[r.UserID], r)
		}
		views = make([]domain.UserView, 0, len(users))
		for _, u := range users {
			views = append(views, domain.UserView{User: u, Roles: domain.NewRoleSet(byUser[u.ID]).Types()})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service.UserService.ListAll: %w", err)
	}
	return views, nil
}
