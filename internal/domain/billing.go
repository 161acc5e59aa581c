package domain

import (
	"time"

	"github.com/google/uuid"
)

// BillingDateLayout is the format of the default billing period name.
const BillingDateLayout = "2006-01-02"

// Billing is a named billing period of a team.
// EndTime is nil while the period is open. Once set it never changes.
type Billing struct {
	ID        uuid.UUID
	TeamID    uuid.UUID
	Name      string
	StartTime time.Time
	EndTime   *time.Time
}

// IsOpen reports whether the period still accepts line items.
func (b Billing) IsOpen() bool {
	return b.EndTime == nil
}

// BillingItem is one charge recorded against a billing period.
// Cost is in minor currency units (cents).
// ItemID is nil for ad-hoc charges that do not reference the team catalog.
type BillingItem struct {
	ID        uuid.UUID
	BillingID uuid.UUID
	ItemID    *uuid.UUID
	Cost      int64
	Time      time.Time
}

// Statement is a flat, denormalized view of one billing period: the header
// repeated on every row, one row per line item. A period with no items
// yields a statement with no rows and a zero total.
type Statement struct {
	Billing Billing
	Rows    []StatementRow
	Total   int64
}

// StatementRow is a single line of a Statement.
type StatementRow struct {
	ItemID   string // empty for ad-hoc charges
	ItemName string // empty when the catalog item is unknown
	Cost     int64
	Time     time.Time
}
