package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fjhdream/truck-billing/internal/domain"
	"github.com/fjhdream/truck-billing/internal/repo"
)

// Hand-written test doubles for the repo interfaces.
// Each method is a function field: set only the ones your test needs.

type mockUserRepo struct {
	create  func(ctx context.Context, user domain.User) (domain.User, error)
	getByID func(ctx context.Context, id string) (domain.User, error)
	list    func(ctx context.Context) ([]domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	return m.create(ctx, user)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	return m.list(ctx)
}

type mockRoleRepo struct {
	upsert     func(ctx context.Context, userID string, roleType domain.RoleType) (domain.Role, error)
	listByUser func(ctx context.Context, userID string) ([]domain.Role, error)
	listAll    func(ctx context.Context) ([]domain.Role, error)
}

func (m *mockRoleRepo) Upsert(ctx context.Context, userID string, roleType domain.RoleType) (domain.Role, error) {
	return m.upsert(ctx, userID, roleType)
}
func (m *mockRoleRepo) ListByUser(ctx context.Context, userID string) ([]domain.Role, error) {
	return m.listByUser(ctx, userID)
}
func (m *mockRoleRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	return m.listAll(ctx)
}

type mockTeamRepo struct {
	create      func(ctx context.Context, team domain.Team) (domain.Team, error)
	getByID     func(ctx context.Context, id uuid.UUID) (domain.Team, error)
	listByOwner func(ctx context.Context, ownerUserID string) ([]domain.Team, error)
	updateName  func(ctx context.Context, id uuid.UUID, name string) (domain.Team, error)
	delete      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTeamRepo) Create(ctx context.Context, team domain.Team) (domain.Team, error) {
	return m.create(ctx, team)
}
func (m *mockTeamRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Team, error) {
	return m.getByID(ctx, id)
}
func (m *mockTeamRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Team, error) {
	return m.listByOwner(ctx, ownerUserID)
}
func (m *mockTeamRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) (domain.Team, error) {
	return m.updateName(ctx, id, name)
}
func (m *mockTeamRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

type mockDriverRepo struct {
	ensure       func(ctx context.Context, teamID uuid.UUID, userID string) (domain.TeamDriver, error)
	delete       func(ctx context.Context, teamID uuid.UUID, userID string) (int64, error)
	listByTeam   func(ctx context.Context, teamID uuid.UUID) ([]domain.TeamDriver, error)
	deleteByTeam func(ctx context.Context, teamID uuid.UUID) (int64, error)
}

func (m *mockDriverRepo) Ensure(ctx context.Context, teamID uuid.UUID, userID string) (domain.TeamDriver, error) {
	return m.ensure(ctx, teamID, userID)
}
func (m *mockDriverRepo) Delete(ctx context.Context, teamID uuid.UUID, userID string) (int64, error) {
	return m.delete(ctx, teamID, userID)
}
func (m *mockDriverRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.TeamDriver, error) {
	return m.listByTeam(ctx, teamID)
}
func (m *mockDriverRepo) DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	return m.deleteByTeam(ctx, teamID)
}

type mockCarRepo struct {
	ensure       func(ctx context.Context, teamID uuid.UUID, plateNumber string) (domain.TeamCar, error)
	delete       func(ctx context.Context, teamID, carID uuid.UUID) (int64, error)
	listByTeam   func(ctx context.Context, teamID uuid.UUID) ([]domain.TeamCar, error)
	deleteByTeam func(ctx context.Context, teamID uuid.UUID) (int64, error)
}

func (m *mockCarRepo) Ensure(ctx context.Context, teamID uuid.UUID, plateNumber string) (domain.TeamCar, error) {
	return m.ensure(ctx, teamID, plateNumber)
}
func (m *mockCarRepo) Delete(ctx context.Context, teamID, carID uuid.UUID) (int64, error) {
	return m.delete(ctx, teamID, carID)
}
func (m *mockCarRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.TeamCar, error) {
	return m.listByTeam(ctx, teamID)
}
func (m *mockCarRepo) DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	return m.deleteByTeam(ctx, teamID)
}

type mockItemRepo struct {
	create       func(ctx context.Context, item domain.Item) (domain.Item, error)
	getByID      func(ctx context.Context, teamID, id uuid.UUID) (domain.Item, error)
	listByTeam   func(ctx context.Context, teamID uuid.UUID) ([]domain.Item, error)
	deleteByTeam func(ctx context.Context, teamID uuid.UUID) (int64, error)
}

func (m *mockItemRepo) Create(ctx context.Context, item domain.Item) (domain.Item, error) {
	return m.create(ctx, item)
}
func (m *mockItemRepo) GetByID(ctx context.Context, teamID, id uuid.UUID) (domain.Item, error) {
	return m.getByID(ctx, teamID, id)
}
func (m *mockItemRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.Item, error) {
	return m.listByTeam(ctx, teamID)
}
func (m *mockItemRepo) DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	return m.deleteByTeam(ctx, teamID)
}

type mockBillingRepo struct {
	create       func(ctx context.Context, billing domain.Billing) (domain.Billing, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Billing, error)
	listByTeam   func(ctx context.Context, teamID uuid.UUID) ([]domain.Billing, error)
	close        func(ctx context.Context, id uuid.UUID, at time.Time) (domain.Billing, error)
	deleteByTeam func(ctx context.Context, teamID uuid.UUID) (int64, error)
}

func (m *mockBillingRepo) Create(ctx context.Context, billing domain.Billing) (domain.Billing, error) {
	return m.create(ctx, billing)
}
func (m *mockBillingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Billing, error) {
	return m.getByID(ctx, id)
}
func (m *mockBillingRepo) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]domain.Billing, error) {
	return m.listByTeam(ctx, teamID)
}
func (m *mockBillingRepo) Close(ctx context.Context, id uuid.UUID, at time.Time) (domain.Billing, error) {
	return m.close(ctx, id, at)
}
func (m *mockBillingRepo) DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	return m.deleteByTeam(ctx, teamID)
}

type mockBillingItemRepo struct {
	create        func(ctx context.Context, item domain.BillingItem) (domain.BillingItem, error)
	delete        func(ctx context.Context, billingID, id uuid.UUID) (int64, error)
	listByBilling func(ctx context.Context, billingID uuid.UUID) ([]domain.BillingItem, error)
	deleteByTeam  func(ctx context.Context, teamID uuid.UUID) (int64, error)
}

func (m *mockBillingItemRepo) Create(ctx context.Context, item domain.BillingItem) (domain.BillingItem, error) {
	return m.create(ctx, item)
}
func (m *mockBillingItemRepo) Delete(ctx context.Context, billingID, id uuid.UUID) (int64, error) {
	return m.delete(ctx, billingID, id)
}
func (m *mockBillingItemRepo) ListByBilling(ctx context.Context, billingID uuid.UUID) ([]domain.BillingItem, error) {
	return m.listByBilling(ctx, billingID)
}
func (m *mockBillingItemRepo) DeleteByTeam(ctx context.Context, teamID uuid.UUID) (int64, error) {
	return m.deleteByTeam(ctx, teamID)
}

// compile-time checks: every mock must satisfy its repo interface.
var (
	_ repo.UserRepo        = (*mockUserRepo)(nil)
	_ repo.RoleRepo        = (*mockRoleRepo)(nil)
	_ repo.TeamRepo        = (*mockTeamRepo)(nil)
	_ repo.DriverRepo      = (*mockDriverRepo)(nil)
	_ repo.CarRepo         = (*mockCarRepo)(nil)
	_ repo.ItemRepo        = (*mockItemRepo)(nil)
	_ repo.BillingRepo     = (*mockBillingRepo)(nil)
	_ repo.BillingItemRepo = (*mockBillingItemRepo)(nil)
)

// fakeTxRunner runs fn against a fixed Repos and counts outcomes. When store
// is set it is snapshotted on begin and restored on rollback.
type fakeTxRunner struct {
	repos repo.Repos
	store *memStore

	mu         sync.Mutex
	begins     int
	commits    int
	rollbacks  int
	beginError error
}

func (f *fakeTxRunner) InTx(ctx context.Context, fn func(r repo.Repos) error) error {
	f.mu.Lock()
	f.begins++
	beginErr := f.beginError
	f.mu.Unlock()
	if beginErr != nil {
		return domain.NewStoreError("fakeTxRunner.InTx: begin", beginErr)
	}

	var snap memSnapshot
	if f.store != nil {
		snap = f.store.snapshot()
	}

	err := fn(f.repos)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		if f.store != nil {
			f.store.restore(snap)
		}
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

var _ repo.TxRunner = (*fakeTxRunner)(nil)

// recordingHooks captures every ObserveOperation call.
type recordingHooks struct {
	mu  sync.Mutex
	ops []string
}

func (h *recordingHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops = append(h.ops, name+":"+status)
}

func (h *recordingHooks) seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.ops...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
