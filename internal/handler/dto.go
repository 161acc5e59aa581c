package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/fjhdream/truck-billing/internal/domain"
)

// Wire types for the JSON API. Field names follow spec/openapi.yaml.

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type CreateUserRequest struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

type CreateUserResponse struct {
	ID string `json:"id"`
}

type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Roles       []string  `json:"roles"`
}

type AssignRoleRequest struct {
	RoleType string `json:"role_type"`
}

type Role struct {
	ID        openapi_types.UUID `json:"id"`
	UserID    string             `json:"user_id"`
	RoleType  string             `json:"role_type"`
	CreatedAt time.Time          `json:"created_at"`
}

type CreateTeamRequest struct {
	TeamName string `json:"team_name"`
}

type RenameTeamRequest = CreateTeamRequest

type Team struct {
	ID          openapi_types.UUID `json:"id"`
	TeamName    string             `json:"team_name"`
	OwnerUserID string             `json:"owner_user_id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type AddDriverRequest struct {
	UserID string `json:"user_id"`
}

type Driver struct {
	ID        openapi_types.UUID `json:"id"`
	TeamID    openapi_types.UUID `json:"team_id"`
	UserID    string             `json:"user_id"`
	CreatedAt time.Time          `json:"created_at"`
}

type AddCarRequest struct {
	PlateNumber string `json:"plate_number"`
}

type Car struct {
	ID          openapi_types.UUID `json:"id"`
	TeamID      openapi_types.UUID `json:"team_id"`
	PlateNumber string             `json:"plate_number"`
	CreatedAt   time.Time          `json:"created_at"`
}

// RemovedResponse reports how many rows a delete touched. Zero is a
// successful no-op.
type RemovedResponse struct {
	RowsAffected int64 `json:"rows_affected"`
}

type CreateItemRequest struct {
	ItemType string  `json:"item_type"`
	Name     string  `json:"name"`
	IconURL  *string `json:"icon_url,omitempty"`
}

type Item struct {
	ID       openapi_types.UUID `json:"id"`
	TeamID   openapi_types.UUID `json:"team_id"`
	ItemType string             `json:"item_type"`
	Name     string             `json:"name"`
	IconURL  *string            `json:"icon_url,omitempty"`
}

type CreateBillingRequest struct {
	Name *string `json:"name,omitempty"`
}

type Billing struct {
	ID        openapi_types.UUID `json:"id"`
	TeamID    openapi_types.UUID `json:"team_id"`
	Name      string             `json:"name"`
	StartTime time.Time          `json:"start_time"`
	EndTime   *time.Time         `json:"end_time"`
	Open      bool               `json:"open"`
}

type AddBillingItemRequest struct {
	ItemID *openapi_types.UUID `json:"item_id,omitempty"`
	Cost   *int64              `json:"cost"`
	Time   *time.Time          `json:"time,omitempty"`
}

type BillingItem struct {
	ID        openapi_types.UUID  `json:"id"`
	BillingID openapi_types.UUID  `json:"billing_id"`
	ItemID    *openapi_types.UUID `json:"item_id,omitempty"`
	Cost      int64               `json:"cost"`
	Time      time.Time           `json:"time"`
}

type StatementRow struct {
	ItemID   string    `json:"item_id,omitempty"`
	ItemName string    `json:"item_name,omitempty"`
	Cost     int64     `json:"cost"`
	Time     time.Time `json:"time"`
}

type Statement struct {
	Billing Billing        `json:"billing"`
	Rows    []StatementRow `json:"rows"`
	Total   int64          `json:"total"`
}

func toUser(v domain.UserView) User {
	roles := make([]string, 0, len(v.Roles))
	for _, r := range v.Roles {
		roles = append(roles, string(r))
	}
	return User{
		ID:          v.ID,
		DisplayName: v.DisplayName,
		AvatarURL:   v.AvatarURL,
		CreatedAt:   v.CreatedAt,
		Roles:       roles,
	}
}

func toRole(r domain.Role) Role {
	return Role{ID: r.ID, UserID: r.UserID, RoleType: string(r.Type), CreatedAt: r.CreatedAt}
}

func toTeam(t domain.Team) Team {
	return Team{
		ID:          t.ID,
		TeamName:    t.Name,
		OwnerUserID: t.OwnerUserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toDriver(d domain.TeamDriver) Driver {
	return Driver{ID: d.ID, TeamID: d.TeamID, UserID: d.UserID, CreatedAt: d.CreatedAt}
}

func toCar(c domain.TeamCar) Car {
	return Car{ID: c.ID, TeamID: c.TeamID, PlateNumber: c.PlateNumber, CreatedAt: c.CreatedAt}
}

func toItem(i domain.Item) Item {
	return Item{ID: i.ID, TeamID: i.TeamID, ItemType: string(i.Type), Name: i.Name, IconURL: i.IconURL}
}

func toBilling(b domain.Billing) Billing {
	return Billing{
		ID:        b.ID,
		TeamID:    b.TeamID,
		Name:      b.Name,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Open:      b.IsOpen(),
	}
}

func toBillingItem(i domain.BillingItem) BillingItem {
	return BillingItem{ID: i.ID, BillingID: i.BillingID, ItemID: i.ItemID, Cost: i.Cost, Time: i.Time}
}

func toStatement(st domain.Statement) Statement {
	rows := make([]StatementRow, 0, len(st.Rows))
	for _, r := range st.Rows {
		rows = append(rows, StatementRow(r))
	}
	return Statement{Billing: toBilling(st.Billing), Rows: rows, Total: st.Total}
}

// mapSlice converts a domain slice to its wire form. The result is never nil
// so empty lists encode as [].
func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
