package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dukerupert/bywater/internal/grocery"
	"github.com/dukerupert/bywater/internal/model"
)

// TemplateStore manages reusable grocery templates and their item sets.
type TemplateStore struct {
	db *sql.DB
}

func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

// TemplateItemInput is one item+quantity pair at template creation.
type TemplateItemInput struct {
	ItemID   int64
	Quantity *string
}

// TemplateUpdate holds the fields of a metadata-only template update.
type TemplateUpdate struct {
	Name      *string
	IsDefault *bool
}

// ApplyResult summarizes a template application.
type ApplyResult struct {
	TemplateID   int64 `json:"template_id"`
	UserID       int64 `json:"user_id"`
	ItemsAdded   int   `json:"items_added"`
	ItemsSkipped int   `json:"items_skipped"`
}

const templateCols = `id, name, is_default, user_id, created_at, updated_at`

func scanTemplate(scanner interface{ Scan(...any) error }) (*model.Template, error) {
	var t model.Template
	var isDefault int
	err := scanner.Scan(&t.ID, &t.Name, &isDefault, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.IsDefault = isDefault != 0
	return &t, nil
}

func getTemplate(q dbtx, id int64) (*model.Template, error) {
	row := q.QueryRow(`SELECT `+templateCols+` FROM grocery_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// Create makes a new template, optionally seeded with items. Every item id
// must exist; the whole creation is one transaction. Setting is_default
// clears the flag on the user's other templates.
func (s *TemplateStore) Create(userID int64, name string, isDefault bool, items []TemplateItemInput) (*model.TemplateWithItems, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ok, err := userExists(tx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	var isDefaultInt int
	if isDefault {
		isDefaultInt = 1
		if _, err := tx.Exec(
			`UPDATE grocery_templates SET is_default = 0 WHERE user_id = ?`,
			userID,
		); err != nil {
			return nil, fmt.Errorf("clear default templates: %w", err)
		}
	}

	result, err := tx.Exec(
		`INSERT INTO grocery_templates (name, is_default, user_id) VALUES (?, ?, ?)`,
		name, isDefaultInt, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for _, in := range items {
		if err := insertTemplateItem(tx, id, in.ItemID, in.Quantity); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func insertTemplateItem(tx dbtx, templateID, itemID int64, quantity *string) error {
	var id int64
	err := tx.QueryRow(`SELECT id FROM items WHERE id = ?`, itemID).Scan(&id)
	if err == sql.ErrNoRows {
		return fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check item: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO grocery_template_items (template_id, item_id, quantity) VALUES (?, ?, ?)`,
		templateID, itemID, nullString(quantity),
	); err != nil {
		return fmt.Errorf("insert template item: %w", err)
	}
	return nil
}

func (s *TemplateStore) ListByUser(userID int64) ([]model.Template, error) {
	rows, err := s.db.Query(
		`SELECT `+templateCols+` FROM grocery_templates WHERE user_id = ? ORDER BY is_default DESC, name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// GetByID returns the template with its item set, each template item
// hydrated with the full catalog item.
func (s *TemplateStore) GetByID(id int64) (*model.TemplateWithItems, error) {
	t, err := getTemplate(s.db, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT id, template_id, item_id, quantity, created_at
		 FROM grocery_template_items WHERE template_id = ? ORDER BY created_at, id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("list template items: %w", err)
	}
	defer rows.Close()

	items := []model.TemplateItem{}
	for rows.Next() {
		var ti model.TemplateItem
		var qty sql.NullString
		if err := rows.Scan(&ti.ID, &ti.TemplateID, &ti.ItemID, &qty, &ti.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan template item: %w", err)
		}
		if qty.Valid {
			ti.Quantity = &qty.String
		}
		items = append(items, ti)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		item, err := getItem(s.db, items[i].ItemID)
		if err != nil {
			return nil, err
		}
		items[i].Item = *item
	}

	return &model.TemplateWithItems{Template: *t, Items: items}, nil
}

func (s *TemplateStore) Update(id int64, upd TemplateUpdate) (*model.Template, error) {
	t, err := getTemplate(s.db, id)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var sets []string
	var args []any

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.IsDefault != nil {
		var isDefault int
		if *upd.IsDefault {
			isDefault = 1
			if _, err := tx.Exec(
				`UPDATE grocery_templates SET is_default = 0 WHERE user_id = ? AND id != ?`,
				t.UserID, id,
			); err != nil {
				return nil, fmt.Errorf("clear default templates: %w", err)
			}
		}
		sets = append(sets, "is_default = ?")
		args = append(args, isDefault)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, id)
		if _, err := tx.Exec(
			`UPDATE grocery_templates SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
			args...,
		); err != nil {
			return nil, fmt.Errorf("update template: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return getTemplate(s.db, id)
}

func (s *TemplateStore) Delete(id int64) error {
	if _, err := getTemplate(s.db, id); err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM grocery_templates WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

func (s *TemplateStore) AddItem(templateID, itemID int64, quantity *string) (*model.TemplateItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := getTemplate(tx, templateID); err != nil {
		return nil, err
	}
	if err := insertTemplateItem(tx, templateID, itemID, quantity); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	var ti model.TemplateItem
	var qty sql.NullString
	err = s.db.QueryRow(
		`SELECT id, template_id, item_id, quantity, created_at
		 FROM grocery_template_items
		 WHERE template_id = ? AND item_id = ?
		 ORDER BY id DESC LIMIT 1`,
		templateID, itemID,
	).Scan(&ti.ID, &ti.TemplateID, &ti.ItemID, &qty, &ti.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get template item: %w", err)
	}
	if qty.Valid {
		ti.Quantity = &qty.String
	}

	item, err := getItem(s.db, ti.ItemID)
	if err != nil {
		return nil, err
	}
	ti.Item = *item
	return &ti, nil
}

// RemoveItem drops the given catalog item from the template.
func (s *TemplateStore) RemoveItem(templateID, itemID int64) error {
	if _, err := getTemplate(s.db, templateID); err != nil {
		return err
	}

	result, err := s.db.Exec(
		`DELETE FROM grocery_template_items WHERE template_id = ? AND item_id = ?`,
		templateID, itemID,
	)
	if err != nil {
		return fmt.Errorf("delete template item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("item %d in template %d: %w", itemID, templateID, ErrNotFound)
	}
	return nil
}

// Apply merges the template into the user's grocery list. Items the user
// already has an entry for are left untouched, quantity and purchased flag
// included. Missing items get a fresh unpurchased entry with the template's
// quantity override and a resolver-computed int_quantity. A template item
// whose catalog item no longer exists is skipped rather than failing the
// batch. The whole merge runs in one transaction.
func (s *TemplateStore) Apply(templateID, userID int64) (*ApplyResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := getTemplate(tx, templateID); err != nil {
		return nil, err
	}

	ok, err := userExists(tx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	rows, err := tx.Query(
		`SELECT item_id, quantity FROM grocery_template_items WHERE template_id = ? ORDER BY created_at, id`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("list template items: %w", err)
	}

	type pending struct {
		itemID   int64
		quantity *string
	}
	var templateItems []pending
	for rows.Next() {
		var p pending
		var qty sql.NullString
		if err := rows.Scan(&p.itemID, &qty); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan template item: %w", err)
		}
		if qty.Valid {
			p.quantity = &qty.String
		}
		templateItems = append(templateItems, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ApplyResult{TemplateID: templateID, UserID: userID}
	for _, p := range templateItems {
		item, err := getItem(tx, p.itemID)
		if errors.Is(err, ErrNotFound) {
			// Stale reference: the catalog item was deleted after the
			// template was built. Skip it, don't abort the batch.
			result.ItemsSkipped++
			continue
		}
		if err != nil {
			return nil, err
		}

		var existing int64
		err = tx.QueryRow(
			`SELECT id FROM grocery_items WHERE user_id = ? AND item_id = ?`,
			userID, p.itemID,
		).Scan(&existing)
		if err == nil {
			result.ItemsSkipped++
			continue
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("check existing entry: %w", err)
		}

		resolved := grocery.ResolveQuantity(p.quantity, *item)
		if _, err := tx.Exec(
			`INSERT INTO grocery_items (item_id, user_id, quantity, int_quantity, purchased) VALUES (?, ?, ?, ?, 0)`,
			p.itemID, userID, nullString(p.quantity), nullInt64(resolved.IntValue),
		); err != nil {
			return nil, fmt.Errorf("insert grocery item: %w", err)
		}
		result.ItemsAdded++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}
