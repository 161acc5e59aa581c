package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ItemType classifies catalog items.
type ItemType string

const (
	ItemTypeBasic  ItemType = "BASIC"
	ItemTypeCustom ItemType = "CUSTOM"
)

// ParseItemType accepts the type name in any case.
// An empty string defaults to ItemTypeBasic.
func ParseItemType(s string) (ItemType, error) {
	switch ItemType(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ItemTypeBasic:
		return ItemTypeBasic, nil
	case ItemTypeCustom:
		return ItemTypeCustom, nil
	}
	return "", fmt.Errorf("%w: unknown item type %q", ErrValidation, s)
}

// Item is an entry of a team's catalog of chargeable things (fuel, tolls,
// maintenance). Billing items may reference it.
type Item struct {
	ID      uuid.UUID
	TeamID  uuid.UUID
	Type    ItemType
	Name    string
	IconURL *string
}
