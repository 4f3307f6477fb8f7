package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/bywater/internal/grocery"
	"github.com/dukerupert/bywater/internal/model"
)

// ItemStore manages the item catalog and each item's store-availability set.
type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

// ItemUpdate holds the fields of a partial item update. Nil means "leave
// unchanged"; a nil StoreIDs slice leaves the store set alone, a non-nil
// slice (including an empty one) replaces it entirely.
type ItemUpdate struct {
	Name            *string
	DefaultQuantity *string
	QuantityIsInt   *bool
	Section         *string
	StoreIDs        []int64
}

const itemCols = `id, name, default_quantity, quantity_is_int, section, created_at, updated_at`

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var item model.Item
	var defaultQty, section sql.NullString
	var isInt int

	err := scanner.Scan(&item.ID, &item.Name, &defaultQty, &isInt, &section, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	item.QuantityIsInt = isInt != 0
	if defaultQty.Valid {
		item.DefaultQuantity = &defaultQty.String
	}
	if section.Valid {
		item.Section = &section.String
	}
	item.Stores = []model.Store{}
	return &item, nil
}

// getItem loads one item with its store set hydrated. Shared with the
// grocery and template stores so every read path returns the same shape.
func getItem(q dbtx, id int64) (*model.Item, error) {
	row := q.QueryRow(`SELECT `+itemCols+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	item.Stores, err = getItemStores(q, id)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func getItemStores(q dbtx, itemID int64) ([]model.Store, error) {
	rows, err := q.Query(
		`SELECT s.id, s.name, s.created_at, s.updated_at
		 FROM stores s
		 JOIN item_stores ist ON s.id = ist.store_id
		 WHERE ist.item_id = ?
		 ORDER BY s.name`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("query item stores: %w", err)
	}
	defer rows.Close()

	stores := []model.Store{}
	for rows.Next() {
		st, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item store: %w", err)
		}
		stores = append(stores, *st)
	}
	return stores, rows.Err()
}

// setItemStores replaces the item's store set: remove all, then add. The
// caller supplies the transaction. Duplicate ids in the input collapse
// silently; unknown ids fail with ErrNotFound.
func setItemStores(tx *sql.Tx, itemID int64, storeIDs []int64) error {
	if _, err := tx.Exec(`DELETE FROM item_stores WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("clear item stores: %w", err)
	}

	seen := make(map[int64]struct{}, len(storeIDs))
	for _, sid := range storeIDs {
		if _, dup := seen[sid]; dup {
			continue
		}
		seen[sid] = struct{}{}

		var id int64
		err := tx.QueryRow(`SELECT id FROM stores WHERE id = ?`, sid).Scan(&id)
		if err == sql.ErrNoRows {
			return fmt.Errorf("store %d: %w", sid, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("check store: %w", err)
		}

		if _, err := tx.Exec(
			`INSERT INTO item_stores (item_id, store_id) VALUES (?, ?)`,
			itemID, sid,
		); err != nil {
			return fmt.Errorf("insert item store: %w", err)
		}
	}
	return nil
}

func (s *ItemStore) Create(name string, defaultQuantity *string, quantityIsInt bool, section *string, storeIDs []int64) (*model.Item, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	exists, err := itemNameExists(tx, name, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("item name %q already exists: %w", name, ErrConflict)
	}

	var isInt int
	if quantityIsInt {
		isInt = 1
	}

	result, err := tx.Exec(
		`INSERT INTO items (name, default_quantity, quantity_is_int, section) VALUES (?, ?, ?, ?)`,
		name, nullString(defaultQuantity), isInt, nullString(section),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("item name %q already exists: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := setItemStores(tx, id, storeIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return getItem(s.db, id)
}

func (s *ItemStore) GetByID(id int64) (*model.Item, error) {
	return getItem(s.db, id)
}

// List returns catalog items, filtered by section (exact match) and store.
// The store filter uses the shared predicate: items with an empty store set
// are included for every store.
func (s *ItemStore) List(storeID *int64, section *string) ([]model.Item, error) {
	var rows *sql.Rows
	var err error
	if section != nil {
		rows, err = s.db.Query(`SELECT `+itemCols+` FROM items WHERE section = ? ORDER BY name`, *section)
	} else {
		rows, err = s.db.Query(`SELECT ` + itemCols + ` FROM items ORDER BY name`)
	}
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	filtered := []model.Item{}
	for i := range items {
		items[i].Stores, err = getItemStores(s.db, items[i].ID)
		if err != nil {
			return nil, err
		}
		if grocery.IncludedForStore(items[i], storeID) {
			filtered = append(filtered, items[i])
		}
	}
	return filtered, nil
}

func (s *ItemStore) Update(id int64, upd ItemUpdate) (*model.Item, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRow(`SELECT id FROM items WHERE id = ?`, id).Scan(&existing)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("check item: %w", err)
	}

	var sets []string
	var args []any

	if upd.Name != nil {
		exists, err := itemNameExists(tx, *upd.Name, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("item name %q already exists: %w", *upd.Name, ErrConflict)
		}
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.DefaultQuantity != nil {
		sets = append(sets, "default_quantity = ?")
		args = append(args, *upd.DefaultQuantity)
	}
	if upd.QuantityIsInt != nil {
		var isInt int
		if *upd.QuantityIsInt {
			isInt = 1
		}
		sets = append(sets, "quantity_is_int = ?")
		args = append(args, isInt)
	}
	if upd.Section != nil {
		sets = append(sets, "section = ?")
		args = append(args, *upd.Section)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, id)
		if _, err := tx.Exec(
			`UPDATE items SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
			args...,
		); err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("item %d: %w", id, ErrConflict)
			}
			return nil, fmt.Errorf("update item: %w", err)
		}
	}

	if upd.StoreIDs != nil {
		if err := setItemStores(tx, id, upd.StoreIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return getItem(s.db, id)
}

// Delete removes an item. Grocery entries and template items referencing it
// are removed by the schema's cascade rules.
func (s *ItemStore) Delete(id int64) error {
	if _, err := getItem(s.db, id); err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func itemNameExists(q dbtx, name string, excludeID int64) (bool, error) {
	var id int64
	err := q.QueryRow(`SELECT id FROM items WHERE name = ? AND id != ?`, name, excludeID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check item name: %w", err)
	}
	return true, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}
