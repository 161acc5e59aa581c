package service_test

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fjhdream/truck-billing/internal/domain"
	"github.com/fjhdream/truck-billing/internal/repo"
	"github.com/fjhdream/truck-billing/internal/service"
)

// memStore wires the func-field mocks to in-memory tables so scenario tests
// can run a whole aggregate lifecycle without a database.
type memStore struct {
	mu           sync.Mutex
	users        map[string]domain.User
	roles        []domain.Role
	teams        map[uuid.UUID]domain.Team
	drivers      []domain.TeamDriver
	cars         []domain.TeamCar
	items        map[uuid.UUID]domain.Item
	billings     map[uuid.UUID]domain.Billing
	billingItems []domain.BillingItem
	clock        time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]domain.User{},
		teams:    map[uuid.UUID]domain.Team{},
		items:    map[uuid.UUID]domain.Item{},
		billings: map[uuid.UUID]domain.Billing{},
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// memSnapshot is a deep copy of every table.
type memSnapshot struct {
	users        map[string]domain.User
	roles        []domain.Role
	teams        map[uuid.UUID]domain.Team
	drivers      []domain.TeamDriver
	cars         []domain.TeamCar
	items        map[uuid.UUID]domain.Item
	billings     map[uuid.UUID]domain.Billing
	billingItems []domain.BillingItem
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		users:        maps.Clone(s.users),
		roles:        slices.Clone(s.roles),
		teams:        maps.Clone(s.teams),
		drivers:      slices.Clone(s.drivers),
		cars:         slices.Clone(s.cars),
		items:        maps.Clone(s.items),
		billings:     maps.Clone(s.billings),
		billingItems: slices.Clone(s.billingItems),
	}
}

// restore puts every table back to snap. The clock keeps running.
func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.roles = snap.roles
	s.teams = snap.teams
	s.drivers = snap.drivers
	s.cars = snap.cars
	s.items = snap.items
	s.billings = snap.billings
	s.billingItems = snap.billingItems
}

// closeBilling sets end_time directly, as a concurrent End would.
func (s *memStore) closeBilling(id uuid.UUID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.billings[id]
	b.EndTime = &at
	s.billings[id] = b
}

// tick returns a strictly increasing timestamp for created_at columns.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) repos() repo.Repos {
	return repo.Repos{
		Users: &mockUserRepo{
			create: func(_ context.Context, u domain.User) (domain.User, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				if _, ok := s.users[u.ID]; ok {
					return domain.User{}, domain.NewStoreError("mem.users", domain.ErrDuplicate)
				}
				u.CreatedAt = s.tick()
				s.users[u.ID] = u
				return u, nil
			},
			getByID: func(_ context.Context, id string) (domain.User, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				u, ok := s.users[id]
				if !ok {
					return domain.User{}, domain.ErrNotFound
				}
				return u, nil
			},
			list: func(_ context.Context) ([]domain.User, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				out := []domain.User{}
				for _, u := range s.users {
					out = append(out, u)
				}
				sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
				return out, nil
			},
		},
		Roles: &mockRoleRepo{
			upsert: func(_ context.Context, userID string, rt domain.RoleType) (domain.Role, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				for _, r := range s.roles {
					if r.UserID == userID && r.Type == rt {
						return r, nil
					}
				}
				r := domain.Role{ID: uuid.New(), UserID: userID, Type: rt, CreatedAt: s.tick()}
				s.roles = append(s.roles, r)
				return r, nil
			},
			listByUser: func(_ context.Context, userID string) ([]domain.Role, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				out := []domain.Role{}
				for _, r := range s.roles {
					if r.UserID == userID {
						out = append(out, r)
					}
				}
				return out, nil
			},
			listAll: func(_ context.Context) ([]domain.Role, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				return append([]domain.Role{}, s.roles...), nil
			},
		},
		Teams: &mockTeamRepo{
			create: func(_ context.Context, t domain.Team) (domain.Team, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				t.ID = uuid.New()
				t.CreatedAt = s.tick()
				t.UpdatedAt = t.CreatedAt
				s.teams[t.ID] = t
				return t, nil
			},
			getByID: func(_ context.Context, id uuid.UUID) (domain.Team, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				t, ok := s.teams[id]
				if !ok {
					return domain.Team{}, domain.ErrNotFound
				}
				return t, nil
			},
			listByOwner: func(_ context.Context, owner string) ([]domain.Team, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				out := []domain.Team{}
				for _, t := range s.teams {
					if t.OwnerUserID == owner {
						out = append(out, t)
					}
				}
				return out, nil
			},
			updateName: func(_ context.Context, id uuid.UUID, name string) (domain.Team, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				t, ok := s.teams[id]
				if !ok {
					return domain.Team{}, domain.ErrNotFound
				}
				t.Name = name
				t.UpdatedAt = s.tick()
				s.teams[id] = t
				return t, nil
			},
			delete: func(_ context.Context, id uuid.UUID) error {
				s.mu.Lock()
				defer s.mu.Unlock()
				if _, ok := s.teams[id]; !ok {
					return domain.ErrNotFound
				}
				delete(s.teams, id)
				return nil
			},
		},
		Drivers: &mockDriverRepo{
			ensure: func(_ context.Context, teamID uuid.UUID, userID string) (domain.TeamDriver, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				for _, d := range s.drivers {
					if d.TeamID == teamID && d.UserID == userID {
						return d, nil
					}
				}
				d := domain.TeamDriver{ID: uuid.New(), TeamID: teamID, UserID: userID, CreatedAt: s.tick()}
				s.drivers = append(s.drivers, d)
				return d, nil
			},
			delete: func(_ context.Context, teamID uuid.UUID, userID string) (int64, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				var n int64
				kept := s.drivers[:0]
				for _, d := range s.drivers {
					if d.TeamID == teamID && d.UserID == userID {
						n++
						continue
					}
					kept = append(kept, d)
				}
				s.drivers = kept
				return n, nil
			},
			listByTeam: func(_ context.Context, teamID uuid.UUID) ([]domain.TeamDriver, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				out := []domain.TeamDriver{}
				for _, d := range s.drivers {
					if d.TeamID == teamID {
						out = append(out, d)
					}
				}
				return out, nil
			},
			deleteByTeam: func(_ context.Context, teamID uuid.UUID) (int64, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				var n int64
				kept := s.drivers[:0]
				for _, d := range s.drivers {
					if d.TeamID == teamID {
						n++
						continue
					}
					kept = append(kept, d)
				}
				s.drivers = kept
				return n, nil
			},
		},
		Cars: &mockCarRepo{
			ensure: func(_ context.Context, teamID uuid.UUID, plate string) (domain.TeamCar, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				for _, c := range s.cars {
					if c.TeamID == teamID && c.PlateNumber == plate {
						return c, nil
					}
				}
				c := domain.TeamCar{ID: uuid.New(), TeamID: teamID, PlateNumber: plate, CreatedAt: s.tick()}
				s.cars = append(s.cars, c)
				return c, nil
			},
			delete: func(_ context.Context, teamID, carID uuid.UUID) (int64, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				var n int64
				kept := s.cars[:0]
				for _, c := range s.cars {
					if c.TeamID == teamID && c.ID == carID {
						n++
						continue
					}
					kept = append(kept, c)
				}
				s.cars = kept
				return n, nil
			},
			listByTeam: func(_ context.Context, teamID uuid.UUID) ([]domain.TeamCar, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				out := []domain.TeamCar{}
				for _, c := range s.cars {
					if c.TeamID == teamID {
						out = append(out, c)
					}
				}
				return out, nil
			},
			deleteByTeam: func(_ context.Context, teamID uuid.UUID) (int64, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				var n int64
				kept := s.cars[:0]
				for _, c := range s.cars {
					if c.TeamID == teamID {
						n++
						continue
					}
					kept = append(kept, c)
				}
				s.cars = kept
				return n, nil
			},
		},
		Items: &mockItemRepo{
			create: func(_ context.Context, it domain.Item) (domain.Item, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				it.ID = uuid.New()
				s.items[it.ID] = it
				return it, nil
			},
			getByID: func(_ context.Context, teamID, id uuid.UUID) (domain.Item, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				it, ok := s.items[id]
				if !ok || it.TeamID != teamID {
					return domain.Item{}, domain.ErrNotFound
				}
				return it, nil
			},
			listByTeam: func(_ context.Context, teamID uuid.UUID) ([]domain.Item, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				out := []domain.Item{}
				for _, it := range s.items {
					if it.TeamID == teamID {
						out = append(out, it)
					}
				}
				sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
				return out, nil
			},
			deleteByTeam: func(_ context.Context, teamID uuid.UUID) (int64, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				var n int64
				for id, it := range s.items {
					if it.TeamID == teamID {
						delete(s.items, id)
						n++
					}
				}
				return n, nil
			},
		},
		Billings: &mockBillingRepo{
			create: func(_ context.Context, b domain.Billing) (domain.Billing, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				b.ID = uuid.New()
				b.EndTime = nil
				s.billings[b.ID] = b
				return b, nil
			},
			getByID: func(_ context.Context, id uuid.UUID) (domain.Billing, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				b, ok := s.billings[id]
				if !ok {
					return domain.Billing{}, domain.ErrNotFound
				}
				return b, nil
			},
			listByTeam: func(_ context.Context, teamID uuid.UUID) ([]domain.Billing, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				out := []domain.Billing{}
				for _, b := range s.billings {
					if b.TeamID == teamID {
						out = append(out, b)
					}
				}
				sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
				return out, nil
			},
			close: func(_ context.Context, id uuid.UUID, at time.Time) (domain.Billing, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				b, ok := s.billings[id]
				if !ok || b.EndTime != nil {
					return domain.Billing{}, domain.ErrNotFound
				}
				if at.Before(b.StartTime) {
					at = b.StartTime
				}
				b.EndTime = &at
				s.billings[id] = b
				return b, nil
			},
			deleteByTeam: func(_ context.Context, teamID uuid.UUID) (int64, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				var n int64
				for id, b := range s.billings {
					if b.TeamID == teamID {
						delete(s.billings, id)
						n++
					}
				}
				return n, nil
			},
		},
		BillingItems: &mockBillingItemRepo{
			create: func(_ context.Context, it domain.BillingItem) (domain.BillingItem, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				if b, ok := s.billings[it.BillingID]; !ok || !b.IsOpen() {
					return domain.BillingItem{}, domain.ErrNotFound
				}
				it.ID = uuid.New()
				s.billingItems = append(s.billingItems, it)
				return it, nil
			},
			delete: func(_ context.Context, billingID, id uuid.UUID) (int64, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				if b, ok := s.billings[billingID]; !ok || !b.IsOpen() {
					return 0, nil
				}
				var n int64
				kept := s.billingItems[:0]
				for _, it := range s.billingItems {
					if it.BillingID == billingID && it.ID == id {
						n++
						continue
					}
					kept = append(kept, it)
				}
				s.billingItems = kept
				return n, nil
			},
			listByBilling: func(_ context.Context, billingID uuid.UUID) ([]domain.BillingItem, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				out := []domain.BillingItem{}
				for _, it := range s.billingItems {
					if it.BillingID == billingID {
						out = append(out, it)
					}
				}
				sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
				return out, nil
			},
			deleteByTeam: func(_ context.Context, teamID uuid.UUID) (int64, error) {
				s.mu.Lock()
				defer s.mu.Unlock()
				var n int64
				kept := s.billingItems[:0]
				for _, it := range s.billingItems {
					if b, ok := s.billings[it.BillingID]; ok && b.TeamID == teamID {
						n++
						continue
					}
					kept = append(kept, it)
				}
				s.billingItems = kept
				return n, nil
			},
		},
	}
}

// newDeps wires Deps to the store with a fixed clock.
func (s *memStore) newDeps(now time.Time) (service.Deps, *fakeTxRunner, *recordingHooks) {
	r := s.repos()
	tx := &fakeTxRunner{repos: r, store: s}
	hooks := &recordingHooks{}
	return service.Deps{
		Repos: r,
		Tx:    tx,
		Hooks: hooks,
		Log:   discardLogger(),
		Now:   func() time.Time { return now },
	}, tx, hooks
}
