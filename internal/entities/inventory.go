package entities

import "time"

// InventoryEntry is one stack of an item owned by a user. Several entries
// for the same (owner, item) may coexist: unstackable items always get their
// own entry and stackable grants split when they would exceed the max stack.
type InventoryEntry struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	ItemCode   string    `json:"item_code"`
	Quantity   int       `json:"quantity"`
	AcquiredAt time.Time `json:"acquired_at"`
	Source     string    `json:"source"`
}
