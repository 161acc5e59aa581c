package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fjhdream/truck-billing/internal/domain"
)

// BillingService resolves billing periods by id.
type BillingService struct {
	deps Deps
}

// NewBillingService constructs a BillingService.
func NewBillingService(deps Deps) *BillingService {
	return &BillingService{deps: deps.withDefaults()}
}

// Resolve parses billingID and loads the billing period.
func (s *BillingService) Resolve(ctx context.Context, billingID string) (*Billing, error) {
	var billing domain.Billing
	err := observe(ctx, s.deps, "billing.resolve", func(ctx context.Context) error {
		id, err := parseID("billing id", billingID)
		if err != nil {
			return err
		}
		billing, err = s.deps.Repos.Billings.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.BillingService.Resolve: %w", err)
	}
	return &Billing{deps: s.deps, billing: billing}, nil
}

// Billing is a resolved billing period. Operations re-read the period before
// acting so that a stale handle never overrides a newer state.
type Billing struct {
	deps    Deps
	billing domain.Billing
}

// Model returns the billing row as of the last read through this handle.
func (b *Billing) Model() domain.Billing {
	return b.billing
}

func (b *Billing) attrs() attribute.KeyValue {
	return attribute.String("billing.id", b.billing.ID.String())
}

// refresh re-reads the period. A vanished row is ErrEmptyBilling.
func (b *Billing) refresh(ctx context.Context) error {
	fresh, err := b.deps.Repos.Billings.GetByID(ctx, b.billing.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrEmptyBilling, b.billing.ID)
	}
	if err != nil {
		return err
	}
	b.billing = fresh
	return nil
}

// requireOpen refreshes the period and rejects changes to a closed one.
func (b *Billing) requireOpen(ctx context.Context) error {
	if err := b.refresh(ctx); err != nil {
		return err
	}
	if !b.billing.IsOpen() {
		return fmt.Errorf("%w: %s", domain.ErrBillingClosed, b.billing.ID)
	}
	return nil
}

// writeRejected explains a guarded write that touched no row.
func (b *Billing) writeRejected(ctx context.Context) error {
	if err := b.requireOpen(ctx); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", domain.ErrBillingClosed, b.billing.ID)
}

// End closes the period. Closing an already closed period is a no-op that
// returns the stored row; end_time is set once and never moves.
func (b *Billing) End(ctx context.Context) (domain.Billing, error) {
	closedNow := false
	err := observe(ctx, b.deps, "billing.end", func(ctx context.Context) error {
		if err := b.refresh(ctx); err != nil {
			return err
		}
		if !b.billing.IsOpen() {
			return nil
		}
		closed, err := b.deps.Repos.Billings.Close(ctx, b.billing.ID, b.deps.Now())
		if errors.Is(err, domain.ErrNotFound) {
			// Lost the race to another close, or the row vanished.
			return b.refresh(ctx)
		}
		if err != nil {
			return err
		}
		b.billing = closed
		closedNow = true
		return nil
	}, b.attrs())
	if err != nil {
		return domain.Billing{}, fmt.Errorf("service.Billing.End: %w", err)
	}
	if closedNow {
		b.deps.Log.InfoContext(ctx, "billing closed", "billing_id", b.billing.ID, "end_time", b.billing.EndTime)
	}
	return b.billing, nil
}

// AddItem records a charge against an open period. A zero Time defaults to
// now. A non-nil ItemID must name an item of the period's team.
func (b *Billing) AddItem(ctx context.Context, item domain.BillingItem) (domain.BillingItem, error) {
	var created domain.BillingItem
	err := observe(ctx, b.deps, "billing.add_item", func(ctx context.Context) error {
		if item.Cost < 0 {
			return fmt.Errorf("%w: cost must not be negative", domain.ErrValidation)
		}
		if err := b.requireOpen(ctx); err != nil {
			return err
		}
		if item.ItemID != nil {
			_, err := b.deps.Repos.Items.GetByID(ctx, b.billing.TeamID, *item.ItemID)
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: item %s is not in the team catalog", domain.ErrValidation, *item.ItemID)
			}
			if err != nil {
				return err
			}
		}
		item.BillingID = b.billing.ID
		if item.Time.IsZero() {
			item.Time = b.deps.Now()
		}
		var err error
		created, err = b.deps.Repos.BillingItems.Create(ctx, item)
		if errors.Is(err, domain.ErrNotFound) {
			// Closed or removed between the check and the insert.
			return b.writeRejected(ctx)
		}
		return err
	}, b.attrs())
	if err != nil {
		return domain.BillingItem{}, fmt.Errorf("service.Billing.AddItem: %w", err)
	}
	return created, nil
}

// DeleteItem removes a charge from an open period and returns the number of
// rows removed. Deleting an absent charge succeeds with 0.
func (b *Billing) DeleteItem(ctx context.Context, itemID string) (int64, error) {
	var n int64
	err := observe(ctx, b.deps, "billing.delete_item", func(ctx context.Context) error {
		id, err := parseID("billing item id", itemID)
		if err != nil {
			return err
		}
		if err := b.requireOpen(ctx); err != nil {
			return err
		}
		n, err = b.deps.Repos.BillingItems.Delete(ctx, b.billing.ID, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return b.requireOpen(ctx)
		}
		return nil
	}, b.attrs())
	if err != nil {
		return 0, fmt.Errorf("service.Billing.DeleteItem: %w", err)
	}
	b.deps.Log.InfoContext(ctx, "billing item deleted", "billing_id", b.billing.ID, "item_id", itemID, "rows_affected", n)
	return n, nil
}

// ListItems returns the period's charges ordered by time.
func (b *Billing) ListItems(ctx context.Context) ([]domain.BillingItem, error) {
	items, err := b.deps.Repos.BillingItems.ListByBilling(ctx, b.billing.ID)
	if err != nil {
		return nil, fmt.Errorf("service.Billing.ListItems: %w", err)
	}
	return items, nil
}

// Statement builds the flat statement of the period: its header, one row per
// charge with the catalog item name resolved, and the total cost.
func (b *Billing) Statement(ctx context.Context) (domain.Statement, error) {
	var st domain.Statement
	err := observe(ctx, b.deps, "billing.statement", func(ctx context.Context) error {
		if err := b.refresh(ctx); err != nil {
			return err
		}
		items, err := b.deps.Repos.BillingItems.ListByBilling(ctx, b.billing.ID)
		if err != nil {
			return err
		}
		catalog, err := b.deps.Repos.Items.ListByTeam(ctx, b.billing.TeamID)
		if err != nil {
			return err
		}
		names := make(map[string]string, len(catalog))
		for _, it := range catalog {
			names[it.ID.String()] = it.Name
		}

		st = domain.Statement{Billing: b.billing, Rows: make([]domain.StatementRow, 0, len(items))}
		for _, it := range items {
			row := domain.StatementRow{Cost: it.Cost, Time: it.Time}
			if it.ItemID != nil {
				row.ItemID = it.ItemID.String()
				row.ItemName = names[row.ItemID]
			}
			st.Rows = append(st.Rows, row)
			st.Total += it.Cost
		}
		return nil
	}, b.attrs())
	if err != nil {
		return domain.Statement{}, fmt.Errorf("service.Billing.Statement: %w", err)
	}
	return st, nil
}
