package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/bywater/internal/grocery"
	"github.com/dukerupert/bywater/internal/model"
)

// GroceryStore manages per-user grocery list entries. Every mutation is
// scoped to a user id; a miss on (id, user_id) reads as ErrNotFound so a
// user cannot touch another user's entries.
type GroceryStore struct {
	db *sql.DB
}

func NewGroceryStore(db *sql.DB) *GroceryStore {
	return &GroceryStore{db: db}
}

// GroceryItemUpdate holds the fields of a partial entry update. Nil means
// "leave unchanged".
type GroceryItemUpdate struct {
	Quantity  *string
	Purchased *bool
}

const groceryCols = `id, item_id, user_id, quantity, int_quantity, purchased, created_at, updated_at`

func scanGroceryItem(scanner interface{ Scan(...any) error }) (*model.GroceryItem, error) {
	var gi model.GroceryItem
	var qty sql.NullString
	var intQty sql.NullInt64
	var purchased int

	err := scanner.Scan(&gi.ID, &gi.ItemID, &gi.UserID, &qty, &intQty, &purchased, &gi.CreatedAt, &gi.UpdatedAt)
	if err != nil {
		return nil, err
	}

	gi.Purchased = purchased != 0
	if qty.Valid {
		gi.Quantity = &qty.String
	}
	if intQty.Valid {
		gi.IntQuantity = &intQty.Int64
	}
	return &gi, nil
}

func getGroceryItem(q dbtx, id int64) (*model.GroceryItem, error) {
	row := q.QueryRow(`SELECT `+groceryCols+` FROM grocery_items WHERE id = ?`, id)
	gi, err := scanGroceryItem(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("grocery item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get grocery item: %w", err)
	}

	item, err := getItem(q, gi.ItemID)
	if err != nil {
		return nil, err
	}
	gi.Item = *item
	return gi, nil
}

// Add puts an item on the user's list. The quantity override is stored
// verbatim (nil when absent); int_quantity is computed by the resolver from
// the effective quantity.
func (s *GroceryStore) Add(userID, itemID int64, quantity *string) (*model.GroceryItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	item, err := getItem(tx, itemID)
	if err != nil {
		return nil, err
	}

	ok, err := userExists(tx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	resolved := grocery.ResolveQuantity(quantity, *item)

	result, err := tx.Exec(
		`INSERT INTO grocery_items (item_id, user_id, quantity, int_quantity) VALUES (?, ?, ?, ?)`,
		itemID, userID, nullString(quantity), nullInt64(resolved.IntValue),
	)
	if err != nil {
		return nil, fmt.Errorf("insert grocery item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return getGroceryItem(s.db, id)
}

func (s *GroceryStore) GetByID(id int64) (*model.GroceryItem, error) {
	return getGroceryItem(s.db, id)
}

// ListByUser returns the user's entries, newest first, each hydrated with
// its catalog item. When storeID is set, entries are filtered through the
// shared store predicate: items sold at that store plus items with no store
// associations.
func (s *GroceryStore) ListByUser(userID int64, storeID *int64) ([]model.GroceryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+groceryCols+` FROM grocery_items WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list grocery items: %w", err)
	}
	defer rows.Close()

	var entries []model.GroceryItem
	for rows.Next() {
		gi, err := scanGroceryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grocery item: %w", err)
		}
		entries = append(entries, *gi)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	filtered := []model.GroceryItem{}
	for i := range entries {
		item, err := getItem(s.db, entries[i].ItemID)
		if err != nil {
			return nil, err
		}
		entries[i].Item = *item
		if grocery.IncludedForStore(*item, storeID) {
			filtered = append(filtered, entries[i])
		}
	}
	return filtered, nil
}

// Update edits an entry owned by userID. Changing the quantity re-runs the
// resolver so int_quantity tracks the new effective quantity.
func (s *GroceryStore) Update(id, userID int64, upd GroceryItemUpdate) (*model.GroceryItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var itemID int64
	err = tx.QueryRow(
		`SELECT item_id FROM grocery_items WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&itemID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("grocery item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("check grocery item: %w", err)
	}

	var sets []string
	var args []any

	if upd.Quantity != nil {
		item, err := getItem(tx, itemID)
		if err != nil {
			return nil, err
		}
		resolved := grocery.ResolveQuantity(upd.Quantity, *item)
		sets = append(sets, "quantity = ?", "int_quantity = ?")
		args = append(args, *upd.Quantity, nullInt64(resolved.IntValue))
	}
	if upd.Purchased != nil {
		var purchased int
		if *upd.Purchased {
			purchased = 1
		}
		sets = append(sets, "purchased = ?")
		args = append(args, purchased)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, id)
		if _, err := tx.Exec(
			`UPDATE grocery_items SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
			args...,
		); err != nil {
			return nil, fmt.Errorf("update grocery item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return getGroceryItem(s.db, id)
}

func (s *GroceryStore) Delete(id, userID int64) error {
	result, err := s.db.Exec(
		`DELETE FROM grocery_items WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete grocery item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("grocery item %d: %w", id, ErrNotFound)
	}
	return nil
}
