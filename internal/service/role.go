package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjhdream/truck-billing/internal/domain"
)

// RoleService resolves role assignments and gates privileged operations.
type RoleService struct {
	deps Deps
}

// NewRoleService constructs a RoleService.
func NewRoleService(deps Deps) *RoleService {
	return &RoleService{deps: deps.withDefaults()}
}

// RolesFor returns the set of roles held by userID. A user with no roles,
// or an unknown user, yields an empty set.
func (s *RoleService) RolesFor(ctx context.Context, userID string) (domain.RoleSet, error) {
	roles, err := s.deps.Repos.Roles.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.RoleService.RolesFor: %w", err)
	}
	return domain.NewRoleSet(roles), nil
}

// IsAdmin reports whether userID holds the ADMIN role.
func (s *RoleService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	set, err := s.RolesFor(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.Has(domain.RoleAdmin), nil
}

// Require returns domain.ErrForbidden unless userID holds role.
// Callers must check it before doing any work.
func (s *RoleService) Require(ctx context.Context, userID string, role domain.RoleType) error {
	set, err := s.RolesFor(ctx, userID)
	if err != nil {
		return err
	}
	if !set.Has(role) {
		s.deps.Log.WarnContext(ctx, "role gate denied", "user_id", userID, "required_role", role)
		return fmt.Errorf("%w: user %q lacks role %s", domain.ErrForbidden, userID, role)
	}
	return nil
}

// Assign gives userID the role named roleType. Re-assigning a held role
// returns the existing assignment.
func (s *RoleService) Assign(ctx context.Context, userID, roleType string) (domain.Role, error) {
	var role domain.Role
	err := observe(ctx, s.deps, "role.assign", func(ctx context.Context) error {
		uid := strings.TrimSpace(userID)
		if uid == "" {
			return fmt.Errorf("%w: user id is required", domain.ErrValidation)
		}
		rt, err := domain.ParseRoleType(roleType)
		if err != nil {
			return err
		}
		if _, err := s.deps.Repos.Users.GetByID(ctx, uid); err != nil {
			return err
		}
		role, err = s.deps.Repos.Roles.Upsert(ctx, uid, rt)
		return err
	})
	if err != nil {
		return domain.Role{}, fmt.Errorf("service.RoleService.Assign: %w", err)
	}
	return role, nil
}

// Grant is Assign on behalf of callerID. Granting ADMIN requires the caller
// to hold ADMIN; the first admin is assigned out of band.
func (s *RoleService) Grant(ctx context.Context, callerID, userID, roleType string) (domain.Role, error) {
	rt, err := domain.ParseRoleType(roleType)
	if err != nil {
		return domain.Role{}, fmt.Errorf("service.RoleService.Grant: %w", err)
	}
	if rt == domain.RoleAdmin {
		if err := s.Require(ctx, callerID, domain.RoleAdmin); err != nil {
			return domain.Role{}, fmt.Errorf("service.RoleService.Grant: %w", err)
		}
	}
	role, err := s.Assign(ctx, userID, string(rt))
	if err != nil {
		return domain.Role{}, err
	}
	s.deps.Log.InfoContext(ctx, "role granted", "caller_id", callerID, "user_id", role.UserID, "role", role.Type)
	return role, nil
}

// ListByUser returns the role assignments of userID ordered by role type.
func (s *RoleService) ListByUser(ctx context.Context, userID string) ([]domain.Role, error) {
	roles, err := s.deps.Repos.Roles.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.RoleService.ListByUser: %w", err)
	}
	return roles, nil
}
