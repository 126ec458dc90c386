package model

import "time"

// ShoppingList is one shopping trip: a named list of line items dated at
// creation (or purchase). Total is the denormalized sum of the purchased
// line items, refreshed on every item write.
type ShoppingList struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Date           time.Time `json:"date"`
	Total          float64   `json:"total"`
	ItemCount      int       `json:"item_count"`
	PurchasedCount int       `json:"purchased_count"`
}

// LineItem is one product line on a shopping list. The product is an owned
// label string, not a reference into the catalog, so the line stays valid
// when the catalog entry is renamed or deleted. A freshly added item has all
// numeric fields at zero, meaning "not yet purchased".
type LineItem struct {
	ID        int64   `json:"id"`
	ListID    int64   `json:"list_id"`
	Label     string  `json:"label"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
	Unit      string  `json:"unit"`
}

// Purchased reports whether the item has been bought. This is derived, never
// stored: an item counts as purchased exactly when both quantity and unit
// price have been filled in.
func (li LineItem) Purchased() bool {
	return li.Quantity > 0 && li.UnitPrice > 0
}

// Product is a catalog entry used to pre-fill item labels and units.
type Product struct {
	ID         int64    `json:"id"`
	Label      string   `json:"label"`
	Unit       string   `json:"unit"`
	CategoryID *int64   `json:"category_id"`
	AvgPrice   *float64 `json:"avg_price"`
}

// Notification is a reminder scheduled for a point in time, optionally
// linked to the shopping list it concerns. Recurrence holds a repeat rule
// (see internal/recurrence); when set, firing the reminder schedules the
// next occurrence.
type Notification struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Date       time.Time `json:"date"`
	Read       bool      `json:"read"`
	ListID     *int64    `json:"list_id"`
	Recurrence string    `json:"recurrence,omitempty"`
}
