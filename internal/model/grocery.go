package model

import "time"

// Store is a shopping location an Item may be associated with.
type Store struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item is a catalog entry for a purchasable product. Stores holds the
// resolved store set; an empty set means the item is available anywhere.
type Item struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	DefaultQuantity *string   `json:"default_quantity"`
	QuantityIsInt   bool      `json:"quantity_is_int"`
	Section         *string   `json:"section"`
	Stores          []Store   `json:"stores"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// GroceryItem is one line on a user's working grocery list. Quantity is the
// optional override; the display quantity falls through to the item's
// default. IntQuantity is populated only for integer-quantity items whose
// resolved quantity parses as a whole number.
type GroceryItem struct {
	ID          int64     `json:"id"`
	ItemID      int64     `json:"item_id"`
	UserID      int64     `json:"user_id"`
	Quantity    *string   `json:"quantity"`
	IntQuantity *int64    `json:"int_quantity"`
	Purchased   bool      `json:"purchased"`
	Item        Item      `json:"item"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Template struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TemplateItem struct {
	ID         int64     `json:"id"`
	TemplateID int64     `json:"template_id"`
	ItemID     int64     `json:"item_id"`
	Quantity   *string   `json:"quantity"`
	Item       Item      `json:"item"`
	CreatedAt  time.Time `json:"created_at"`
}

type TemplateWithItems struct {
	Template
	Items []TemplateItem `json:"items"`
}
