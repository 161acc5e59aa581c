// Package handler implements the HTTP handlers for the truck-billing API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, team.go, etc.) but all share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/fjhdream/truck-billing/internal/domain"
	"github.com/fjhdream/truck-billing/internal/service"
)

// The interfaces below describe the business operations the handlers depend
// on. Defining them here, in the consumer package, lets handler tests inject
// mocks without touching the database or service layer.

// UserServicer creates and reads users.
type UserServicer interface {
	Create(ctx context.Context, user domain.User) (string, error)
	Get(ctx context.Context, id string) (domain.UserView, error)
	ListAll(ctx context.Context, requestingUserID string) ([]domain.UserView, error)
}

// RoleServicer grants and lists roles.
type RoleServicer interface {
	Grant(ctx context.Context, callerID, userID, roleType string) (domain.Role, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Role, error)
}

// TeamAggregate is a resolved team.
type TeamAggregate interface {
	Model() domain.Team
	Rename(ctx context.Context, name string) (domain.Team, error)
	AddDriver(ctx context.Context, userID string) (domain.TeamDriver, error)
	AddCar(ctx context.Context, plateNumber string) (domain.TeamCar, error)
	RemoveDriver(ctx context.Context, userID string) (int64, error)
	RemoveCar(ctx context.Context, carID string) (int64, error)
	ListDrivers(ctx context.Context) ([]domain.TeamDriver, error)
	ListCars(ctx context.Context) ([]domain.TeamCar, error)
	Delete(ctx context.Context) error
	CreateBilling(ctx context.Context, name *string) (domain.Billing, error)
	ListBillings(ctx context.Context) ([]domain.Billing, error)
}

// TeamServicer creates, lists and resolves teams.
type TeamServicer interface {
	Create(ctx context.Context, ownerUserID, name string) (domain.Team, error)
	Resolve(ctx context.Context, teamID string) (TeamAggregate, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Team, error)
}

// BillingAggregate is a resolved billing period.
type BillingAggregate interface {
	Model() domain.Billing
	End(ctx context.Context) (domain.Billing, error)
	AddItem(ctx context.Context, item domain.BillingItem) (domain.BillingItem, error)
	DeleteItem(ctx context.Context, itemID string) (int64, error)
	ListItems(ctx context.Context) ([]domain.BillingItem, error)
	Statement(ctx context.Context) (domain.Statement, error)
}

// BillingServicer resolves billing periods.
type BillingServicer interface {
	Resolve(ctx context.Context, billingID string) (BillingAggregate, error)
}

// ItemServicer manages a team's item catalog.
type ItemServicer interface {
	Create(ctx context.Context, teamID, itemType, name string, iconURL *string) (domain.Item, error)
	ListByTeam(ctx context.Context, teamID string) ([]domain.Item, error)
}

// Services bundles every dependency of the Server. Nil members are allowed
// in tests that only exercise some routes.
type Services struct {
	Users    UserServicer
	Roles    RoleServicer
	Teams    TeamServicer
	Billings BillingServicer
	Items    ItemServicer
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	svc Services
	log *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{svc: svc, log: log}
}

// teamServiceAdapter narrows *service.Team to TeamAggregate.
type teamServiceAdapter struct {
	*service.TeamService
}

func (a teamServiceAdapter) Resolve(ctx context.Context, teamID string) (TeamAggregate, error) {
	t, err := a.TeamService.Resolve(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// TeamsFrom adapts a TeamService to TeamServicer.
func TeamsFrom(s *service.TeamService) TeamServicer {
	return teamServiceAdapter{s}
}

type billingServiceAdapter struct {
	*service.BillingService
}

func (a billingServiceAdapter) Resolve(ctx context.Context, billingID string) (BillingAggregate, error) {
	b, err := a.BillingService.Resolve(ctx, billingID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// BillingsFrom adapts a BillingService to BillingServicer.
func BillingsFrom(s *service.BillingService) BillingServicer {
	return billingServiceAdapter{s}
}

// compile-time checks: the service layer must satisfy the handler interfaces.
var (
	_ UserServicer     = (*service.UserService)(nil)
	_ RoleServicer     = (*service.RoleService)(nil)
	_ ItemServicer     = (*service.ItemService)(nil)
	_ TeamAggregate    = (*service.Team)(nil)
	_ BillingAggregate = (*service.Billing)(nil)
)
