package handler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/fjhdream/truck-billing/internal/domain"
	"github.com/fjhdream/truck-billing/internal/handler"
)

// ---- mock UserServicer -----------------------------------------------------

type mockUserServicer struct {
	create  func(ctx context.Context, user domain.User) (string, error)
	get     func(ctx context.Context, id string) (domain.UserView, error)
	listAll func(ctx context.Context, requestingUserID string) ([]domain.UserView, error)
}

func (m *mockUserServicer) Create(ctx context.Context, user domain.User) (string, error) {
	return m.create(ctx, user)
}

func (m *mockUserServicer) Get(ctx context.Context, id string) (domain.UserView, error) {
	return m.get(ctx, id)
}

func (m *mockUserServicer) ListAll(ctx context.Context, requestingUserID string) ([]domain.UserView, error) {
	return m.listAll(ctx, requestingUserID)
}

// ---- mock RoleServicer -----------------------------------------------------

type mockRoleServicer struct {
	grant      func(ctx context.Context, callerID, userID, roleType string) (domain.Role, error)
	listByUser func(ctx context.Context, userID string) ([]domain.Role, error)
}

func (m *mockRoleServicer) Grant(ctx context.Context, callerID, userID, roleType string) (domain.Role, error) {
	return m.grant(ctx, callerID, userID, roleType)
}

func (m *mockRoleServicer) ListByUser(ctx context.Context, userID string) ([]domain.Role, error) {
	return m.listByUser(ctx, userID)
}

// ---- mock TeamServicer / TeamAggregate -------------------------------------

type mockTeamServicer struct {
	create      func(ctx context.Context, ownerUserID, name string) (domain.Team, error)
	resolve     func(ctx context.Context, teamID string) (handler.TeamAggregate, error)
	listByOwner func(ctx context.Context, ownerUserID string) ([]domain.Team, error)
}

func (m *mockTeamServicer) Create(ctx context.Context, ownerUserID, name string) (domain.Team, error) {
	return m.create(ctx, ownerUserID, name)
}

func (m *mockTeamServicer) Resolve(ctx context.Context, teamID string) (handler.TeamAggregate, error) {
	return m.resolve(ctx, teamID)
}

func (m *mockTeamServicer) ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Team, error) {
	return m.listByOwner(ctx, ownerUserID)
}

type mockTeam struct {
	model         domain.Team
	rename        func(ctx context.Context, name string) (domain.Team, error)
	addDriver     func(ctx context.Context, userID string) (domain.TeamDriver, error)
	addCar        func(ctx context.Context, plateNumber string) (domain.TeamCar, error)
	removeDriver  func(ctx context.Context, userID string) (int64, error)
	removeCar     func(ctx context.Context, carID string) (int64, error)
	listDrivers   func(ctx context.Context) ([]domain.TeamDriver, error)
	listCars      func(ctx context.Context) ([]domain.TeamCar, error)
	delete        func(ctx context.Context) error
	createBilling func(ctx context.Context, name *string) (domain.Billing, error)
	listBillings  func(ctx context.Context) ([]domain.Billing, error)
}

func (m *mockTeam) Model() domain.Team { return m.model }

func (m *mockTeam) Rename(ctx context.Context, name string) (domain.Team, error) {
	return m.rename(ctx, name)
}

func (m *mockTeam) AddDriver(ctx context.Context, userID string) (domain.TeamDriver, error) {
	return m.addDriver(ctx, userID)
}

func (m *mockTeam) AddCar(ctx context.Context, plateNumber string) (domain.TeamCar, error) {
	return m.addCar(ctx, plateNumber)
}

func (m *mockTeam) RemoveDriver(ctx context.Context, userID string) (int64, error) {
	return m.removeDriver(ctx, userID)
}

func (m *mockTeam) RemoveCar(ctx context.Context, carID string) (int64, error) {
	return m.removeCar(ctx, carID)
}

func (m *mockTeam) ListDrivers(ctx context.Context) ([]domain.TeamDriver, error) {
	return m.listDrivers(ctx)
}

func (m *mockTeam) ListCars(ctx context.Context) ([]domain.TeamCar, error) {
	return m.listCars(ctx)
}

func (m *mockTeam) Delete(ctx context.Context) error { return m.delete(ctx) }

func (m *mockTeam) CreateBilling(ctx context.Context, name *string) (domain.Billing, error) {
	return m.createBilling(ctx, name)
}

func (m *mockTeam) ListBillings(ctx context.Context) ([]domain.Billing, error) {
	return m.listBillings(ctx)
}

// ---- mock BillingServicer / BillingAggregate -------------------------------

type mockBillingServicer struct {
	resolve func(ctx context.Context, billingID string) (handler.BillingAggregate, error)
}

func (m *mockBillingServicer) Resolve(ctx context.Context, billingID string) (handler.BillingAggregate, error) {
	return m.resolve(ctx, billingID)
}

type mockBilling struct {
	model      domain.Billing
	end        func(ctx context.Context) (domain.Billing, error)
	addItem    func(ctx context.Context, item domain.BillingItem) (domain.BillingItem, error)
	deleteItem func(ctx context.Context, itemID string) (int64, error)
	listItems  func(ctx context.Context) ([]domain.BillingItem, error)
	statement  func(ctx context.Context) (domain.Statement, error)
}

func (m *mockBilling) Model() domain.Billing { return m.model }

func (m *mockBilling) End(ctx context.Context) (domain.Billing, error) { return m.end(ctx) }

func (m *mockBilling) AddItem(ctx context.Context, item domain.BillingItem) (domain.BillingItem, error) {
	return m.addItem(ctx, item)
}

func (m *mockBilling) DeleteItem(ctx context.Context, itemID string) (int64, error) {
	return m.deleteItem(ctx, itemID)
}

func (m *mockBilling) ListItems(ctx context.Context) ([]domain.BillingItem, error) {
	return m.listItems(ctx)
}

func (m *mockBilling) Statement(ctx context.Context) (domain.Statement, error) {
	return m.statement(ctx)
}

// ---- mock ItemServicer -----------------------------------------------------

type mockItemServicer struct {
	create     func(ctx context.Context, teamID, itemType, name string, iconURL *string) (domain.Item, error)
	listByTeam func(ctx context.Context, teamID string) ([]domain.Item, error)
}

func (m *mockItemServicer) Create(ctx context.Context, teamID, itemType, name string, iconURL *string) (domain.Item, error) {
	return m.create(ctx, teamID, itemType, name, iconURL)
}

func (m *mockItemServicer) ListByTeam(ctx context.Context, teamID string) ([]domain.Item, error) {
	return m.listByTeam(ctx, teamID)
}

// ---- mock TokenParser ------------------------------------------------------

// stubParser accepts exactly one token.
type stubParser struct {
	token  string
	userID string
}

func (p stubParser) Parse(token string) (string, error) {
	if token != p.token {
		return "", errors.New("bad token")
	}
	return p.userID, nil
}

// compile-time checks: mocks must satisfy the handler interfaces.
var (
	_ handler.UserServicer     = (*mockUserServicer)(nil)
	_ handler.RoleServicer     = (*mockRoleServicer)(nil)
	_ handler.TeamServicer     = (*mockTeamServicer)(nil)
	_ handler.TeamAggregate    = (*mockTeam)(nil)
	_ handler.BillingServicer  = (*mockBillingServicer)(nil)
	_ handler.BillingAggregate = (*mockBilling)(nil)
	_ handler.ItemServicer     = (*mockItemServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks. The bearer token
// "good-token" authenticates as "admin-1".
func newHTTPHandler(svc handler.Services) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := handler.NewServer(svc, log)
	return srv.Routes(handler.RouterOptions{
		Auth: stubParser{token: "good-token", userID: "admin-1"},
	})
}

// teamsWith returns a TeamServicer that resolves every id to team.
func teamsWith(team *mockTeam) *mockTeamServicer {
	return &mockTeamServicer{
		resolve: func(_ context.Context, _ string) (handler.TeamAggregate, error) {
			return team, nil
		},
	}
}

// billingsWith returns a BillingServicer that resolves every id to b.
func billingsWith(b *mockBilling) *mockBillingServicer {
	return &mockBillingServicer{
		resolve: func(_ context.Context, _ string) (handler.BillingAggregate, error) {
			return b, nil
		},
	}
}
