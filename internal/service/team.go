package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fjhdream/truck-billing/internal/domain"
	"github.com/fjhdream/truck-billing/internal/repo"
)

// TeamService creates, lists and resolves teams.
type TeamService struct {
	deps Deps
}

// NewTeamService constructs a TeamService.
func NewTeamService(deps Deps) *TeamService {
	return &TeamService{deps: deps.withDefaults()}
}

// Create validates and persists a new team owned by ownerUserID.
func (s *TeamService) Create(ctx context.Context, ownerUserID, name string) (domain.Team, error) {
	var team domain.Team
	err := observe(ctx, s.deps, "team.create", func(ctx context.Context) error {
		owner := strings.TrimSpace(ownerUserID)
		if owner == "" {
			return fmt.Errorf("%w: owner user id is required", domain.ErrValidation)
		}
		n := strings.TrimSpace(name)
		if n == "" {
			return fmt.Errorf("%w: team name is required", domain.ErrValidation)
		}

		var err error
		team, err = s.deps.Repos.Teams.Create(ctx, domain.Team{Name: n, OwnerUserID: owner})
		return err
	})
	if err != nil {
		return domain.Team{}, fmt.Errorf("service.TeamService.Create: %w", err)
	}
	s.deps.Log.InfoContext(ctx, "team created", "team_id", team.ID, "owner_user_id", team.OwnerUserID)
	return team, nil
}

// Resolve parses teamID and loads the team. Every aggregate operation on the
// returned handle acts on a fresh read from the store.
func (s *TeamService) Resolve(ctx context.Context, teamID string) (*Team, error) {
	var team domain.Team
	err := observe(ctx, s.deps, "team.resolve", func(ctx context.Context) error {
		id, err := parseID("team id", teamID)
		if err != nil {
			return err
		}
		team, err = s.deps.Repos.Teams.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.TeamService.Resolve: %w", err)
	}
	return &Team{deps: s.deps, team: team}, nil
}

// ListByOwner returns every team owned by ownerUserID. Never nil.
func (s *TeamService) ListByOwner(ctx context.Context, ownerUserID string) ([]domain.Team, error) {
	teams, err := s.deps.Repos.Teams.ListByOwner(ctx, strings.TrimSpace(ownerUserID))
	if err != nil {
		return nil, fmt.Errorf("service.TeamService.ListByOwner: %w", err)
	}
	return teams, nil
}

// Team is a resolved team aggregate. It holds the team row read at resolve
// time; the collections it owns are always read from the store.
type Team struct {
	deps Deps
	team domain.Team
}

// Model returns the team row as of the last read or write through this handle.
func (t *Team) Model() domain.Team {
	return t.team
}

func (t *Team) attrs() attribute.KeyValue {
	return attribute.String("team.id", t.team.ID.String())
}

// Rename replaces the team name.
func (t *Team) Rename(ctx context.Context, name string) (domain.Team, error) {
	err := observe(ctx, t.deps, "team.rename", func(ctx context.Context) error {
		n := strings.TrimSpace(name)
		if n == "" {
			return fmt.Errorf("%w: team name is required", domain.ErrValidation)
		}
		updated, err := t.deps.Repos.Teams.UpdateName(ctx, t.team.ID, n)
		if err != nil {
			return err
		}
		t.team = updated
		return nil
	}, t.attrs())
	if err != nil {
		return domain.Team{}, fmt.Errorf("service.Team.Rename: %w", err)
	}
	return t.team, nil
}

// AddDriver links userID to the team. Adding an existing driver returns the
// existing link.
func (t *Team) AddDriver(ctx context.Context, userID string) (domain.TeamDriver, error) {
	var driver domain.TeamDriver
	err := observe(ctx, t.deps, "team.add_driver", func(ctx context.Context) error {
		uid := strings.TrimSpace(userID)
		if uid == "" {
			return fmt.Errorf("%w: user id is required", domain.ErrValidation)
		}
		var err error
		driver, err = t.deps.Repos.Drivers.Ensure(ctx, t.team.ID, uid)
		return err
	}, t.attrs())
	if err != nil {
		return domain.TeamDriver{}, fmt.Errorf("service.Team.AddDriver: %w", err)
	}
	return driver, nil
}

// AddCar links a plate number to the team. Adding an existing plate returns
// the existing link.
func (t *Team) AddCar(ctx context.Context, plateNumber string) (domain.TeamCar, error) {
	var car domain.TeamCar
	err := observe(ctx, t.deps, "team.add_car", func(ctx context.Context) error {
		plate := strings.TrimSpace(plateNumber)
		if plate == "" {
			return fmt.Errorf("%w: plate number is required", domain.ErrValidation)
		}
		var err error
		car, err = t.deps.Repos.Cars.Ensure(ctx, t.team.ID, plate)
		return err
	}, t.attrs())
	if err != nil {
		return domain.TeamCar{}, fmt.Errorf("service.Team.AddCar: %w", err)
	}
	return car, nil
}

// RemoveDriver unlinks userID from the team and returns the number of links
// removed. Removing a driver that is not linked succeeds with 0.
func (t *Team) RemoveDriver(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := observe(ctx, t.deps, "team.remove_driver", func(ctx context.Context) error {
		var err error
		n, err = t.deps.Repos.Drivers.Delete(ctx, t.team.ID, strings.TrimSpace(userID))
		return err
	}, t.attrs())
	if err != nil {
		return 0, fmt.Errorf("service.Team.RemoveDriver: %w", err)
	}
	t.deps.Log.InfoContext(ctx, "driver removed", "team_id", t.team.ID, "user_id", userID, "rows_affected", n)
	return n, nil
}

// RemoveCar unlinks the car with carID and returns the number of links
// removed. Removing a car that is not linked succeeds with 0.
func (t *Team) RemoveCar(ctx context.Context, carID string) (int64, error) {
	var n int64
	err := observe(ctx, t.deps, "team.remove_car", func(ctx context.Context) error {
		id, err := parseID("car id", carID)
		if err != nil {
			return err
		}
		n, err = t.deps.Repos.Cars.Delete(ctx, t.team.ID, id)
		return err
	}, t.attrs())
	if err != nil {
		return 0, fmt.Errorf("service.Team.RemoveCar: %w", err)
	}
	t.deps.Log.InfoContext(ctx, "car removed", "team_id", t.team.ID, "car_id", carID, "rows_affected", n)
	return n, nil
}

// ListDrivers returns the team's drivers in the order they were added.
func (t *Team) ListDrivers(ctx context.Context) ([]domain.TeamDriver, error) {
	drivers, err := t.deps.Repos.Drivers.ListByTeam(ctx, t.team.ID)
	if err != nil {
		return nil, fmt.Errorf("service.Team.ListDrivers: %w", err)
	}
	return drivers, nil
}

// ListCars returns the team's cars in the order they were added.
func (t *Team) ListCars(ctx context.Context) ([]domain.TeamCar, error) {
	cars, err := t.deps.Repos.Cars.ListByTeam(ctx, t.team.ID)
	if err != nil {
		return nil, fmt.Errorf("service.Team.ListCars: %w", err)
	}
	return cars, nil
}

// Delete removes the team and everything it owns in one transaction.
// Children go first: foreign keys reject removing a referenced row.
func (t *Team) Delete(ctx context.Context) error {
	id := t.team.ID
	var counts [5]int64
	err := observe(ctx, t.deps, "team.delete", func(ctx context.Context) error {
		return t.deps.Tx.InTx(ctx, func(r repo.Repos) error {
			steps := []func(context.Context) (int64, error){
				func(ctx context.Context) (int64, error) { return r.BillingItems.DeleteByTeam(ctx, id) },
				func(ctx context.Context) (int64, error) { return r.Cars.DeleteByTeam(ctx, id) },
				func(ctx context.Context) (int64, error) { return r.Drivers.DeleteByTeam(ctx, id) },
				func(ctx context.Context) (int64, error) { return r.Billings.DeleteByTeam(ctx, id) },
				func(ctx context.Context) (int64, error) { return r.Items.DeleteByTeam(ctx, id) },
			}
			for i, step := range steps {
				n, err := step(ctx)
				if err != nil {
					return err
				}
				counts[i] = n
			}
			return r.Teams.Delete(ctx, id)
		})
	}, t.attrs())
	if err != nil {
		return fmt.Errorf("service.Team.Delete: %w", err)
	}
	t.deps.Log.InfoContext(ctx, "team deleted",
		"team_id", id,
		"billing_items", counts[0],
		"cars", counts[1],
		"drivers", counts[2],
		"billings", counts[3],
		"items", counts[4],
	)
	return nil
}

// CreateBilling opens a new billing period starting now. A nil or blank name
// defaults to the current local date.
func (t *Team) CreateBilling(ctx context.Context, name *string) (domain.Billing, error) {
	var billing domain.Billing
	err := observe(ctx, t.deps, "team.create_billing", func(ctx context.Context) error {
		now := t.deps.Now()
		n := now.Format(domain.BillingDateLayout)
		if name != nil && strings.TrimSpace(*name) != "" {
			n = strings.TrimSpace(*name)
		}
		var err error
		billing, err = t.deps.Repos.Billings.Create(ctx, domain.Billing{
			TeamID:    t.team.ID,
			Name:      n,
			StartTime: now,
		})
		return err
	}, t.attrs())
	if err != nil {
		return domain.Billing{}, fmt.Errorf("service.Team.CreateBilling: %w", err)
	}
	t.deps.Log.InfoContext(ctx, "billing opened", "team_id", t.team.ID, "billing_id", billing.ID, "name", billing.Name)
	return billing, nil
}

// ListBillings returns the team's billing periods, newest first.
func (t *Team) ListBillings(ctx context.Context) ([]domain.Billing, error) {
	billings, err := t.deps.Repos.Billings.ListByTeam(ctx, t.team.ID)
	if err != nil {
		return nil, fmt.Errorf("service.Team.ListBillings: %w", err)
	}
	return billings, nil
}
