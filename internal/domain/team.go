// Package domain contains the core data types for the truck-billing service.
// This package depends only on uuid and is imported by every other internal
// package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Team is a fleet operator. It is the root of the team aggregate: drivers,
// cars, catalog items and billing periods all belong to exactly one team.
type Team struct {
	ID          uuid.UUID
	Name        string
	OwnerUserID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TeamDriver links a user to a team they drive for.
// At most one link exists per (TeamID, UserID).
type TeamDriver struct {
	ID        uuid.UUID
	TeamID    uuid.UUID
	UserID    string
	CreatedAt time.Time
}

// TeamCar links a vehicle, identified by its plate, to a team.
// At most one link exists per (TeamID, PlateNumber).
type TeamCar struct {
	ID          uuid.UUID
	TeamID      uuid.UUID
	PlateNumber string
	CreatedAt   time.Time
}
