package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/bywater/internal/model"
)

// Registry manages the household's named stores (shopping locations).
type Registry struct {
	db *sql.DB
}

func NewRegistry(db *sql.DB) *Registry {
	return &Registry{db: db}
}

const storeCols = `id, name, created_at, updated_at`

func scanStore(scanner interface{ Scan(...any) error }) (*model.Store, error) {
	var st model.Store
	err := scanner.Scan(&st.ID, &st.Name, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *Registry) Create(name string) (*model.Store, error) {
	exists, err := storeNameExists(r.db, name, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("store name %q already exists: %w", name, ErrConflict)
	}

	result, err := r.db.Exec(`INSERT INTO stores (name) VALUES (?)`, name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("store name %q already exists: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("insert store: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return r.GetByID(id)
}

func (r *Registry) List() ([]model.Store, error) {
	rows, err := r.db.Query(`SELECT ` + storeCols + ` FROM stores ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var stores []model.Store
	for rows.Next() {
		st, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, *st)
	}
	return stores, rows.Err()
}

func (r *Registry) GetByID(id int64) (*model.Store, error) {
	row := r.db.QueryRow(`SELECT `+storeCols+` FROM stores WHERE id = ?`, id)
	st, err := scanStore(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}
	return st, nil
}

func (r *Registry) Update(id int64, name string) (*model.Store, error) {
	if _, err := r.GetByID(id); err != nil {
		return nil, err
	}

	exists, err := storeNameExists(r.db, name, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("store name %q already exists: %w", name, ErrConflict)
	}

	_, err = r.db.Exec(
		`UPDATE stores SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("store name %q already exists: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("update store: %w", err)
	}
	return r.GetByID(id)
}

// Delete removes a store. It fails with ErrConflict while any item still
// lists the store in its availability set; the guard lives here rather than
// relying on the schema so the caller gets a typed failure instead of a
// driver error.
func (r *Registry) Delete(id int64) error {
	if _, err := r.GetByID(id); err != nil {
		return err
	}

	var refs int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM item_stores WHERE store_id = ?`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("count store references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("store %d is referenced by %d items: %w", id, refs, ErrConflict)
	}

	if _, err := r.db.Exec(`DELETE FROM stores WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	return nil
}

func storeNameExists(q dbtx, name string, excludeID int64) (bool, error) {
	var id int64
	err := q.QueryRow(`SELECT id FROM stores WHERE name = ? AND id != ?`, name, excludeID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check store name: %w", err)
	}
	return true, nil
}
