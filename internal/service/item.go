package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjhdream/truck-billing/internal/domain"
)

// ItemService manages a team's catalog of chargeable items.
type ItemService struct {
	deps  Deps
	teams *TeamService
}

// NewItemService constructs an ItemService. Team ids are resolved through teams.
func NewItemService(deps Deps, teams *TeamService) *ItemService {
	return &ItemService{deps: deps.withDefaults(), teams: teams}
}

// Create adds an item to the catalog of teamID. itemType is parsed with
// domain.ParseItemType; empty means BASIC.
func (s *ItemService) Create(ctx context.Context, teamID, itemType, name string, iconURL *string) (domain.Item, error) {
	var item domain.Item
	err := observe(ctx, s.deps, "item.create", func(ctx context.Context) error {
		n := strings.TrimSpace(name)
		if n == "" {
			return fmt.Errorf("%w: item name is required", domain.ErrValidation)
		}
		typ, err := domain.ParseItemType(itemType)
		if err != nil {
			return err
		}
		team, err := s.teams.Resolve(ctx, teamID)
		if err != nil {
			return err
		}
		item, err = s.deps.Repos.Items.Create(ctx, domain.Item{
			TeamID:  team.Model().ID,
			Type:    typ,
			Name:    n,
			IconURL: iconURL,
		})
		return err
	})
	if err != nil {
		return domain.Item{}, fmt.Errorf("service.ItemService.Create: %w", err)
	}
	return item, nil
}

// ListByTeam returns the catalog of teamID ordered by name.
func (s *ItemService) ListByTeam(ctx context.Context, teamID string) ([]domain.Item, error) {
	team, err := s.teams.Resolve(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("service.ItemService.ListByTeam: %w", err)
	}
	items, err := s.deps.Repos.Items.ListByTeam(ctx, team.Model().ID)
	if err != nil {
		return nil, fmt.Errorf("service.ItemService.ListByTeam: %w", err)
	}
	return items, nil
}
