package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a person known to the system. ID is assigned by the identity
// provider (e.g. an OAuth subject) and is never generated here.
type User struct {
	ID          string
	DisplayName string
	AvatarURL   *string
	CreatedAt   time.Time
}

// UserView is a user profile joined with the role types the user holds.
type UserView struct {
	User
	Roles []RoleType
}

// RoleType is the kind of a role assignment.
type RoleType string

const (
	RoleAdmin  RoleType = "ADMIN"
	RoleDriver RoleType = "DRIVER"
	RoleOwner  RoleType = "OWNER"
)

// DefaultRole is assigned to every user at creation.
const DefaultRole = RoleDriver

// ParseRoleType accepts the role name in any case ("admin", "Admin", "ADMIN").
func ParseRoleType(s string) (RoleType, error) {
	switch r := RoleType(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleDriver, RoleOwner:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role type %q", ErrValidation, s)
}

// Role is a single role assignment row.
type Role struct {
	ID        uuid.UUID
	UserID    string
	Type      RoleType
	CreatedAt time.Time
}

// RoleSet is the resolved set of role types held by a user.
type RoleSet map[RoleType]struct{}

// NewRoleSet builds a set from role rows. Duplicate rows collapse.
func NewRoleSet(roles []Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r.Type] = struct{}{}
	}
	return set
}

// Has reports whether the set contains t.
func (s RoleSet) Has(t RoleType) bool {
	_, ok := s[t]
	return ok
}

// Types returns the role types sorted by name, never nil.
func (s RoleSet) Types() []RoleType {
	out := make([]RoleType, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
