package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/bywater/internal/model"
)

type ProviderStore struct {
	db *sql.DB
}

func NewProviderStore(db *sql.DB) *ProviderStore {
	return &ProviderStore{db: db}
}

// ProviderUpdate holds the fields of a partial provider update.
type ProviderUpdate struct {
	Name    *string
	Phone   *string
	Email   *string
	Website *string
	Address *string
	Info    *string
}

const providerCols = `id, name, phone, email, website, address, info, created_at, updated_at`

func scanProvider(scanner interface{ Scan(...any) error }) (*model.Provider, error) {
	var p model.Provider
	err := scanner.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.Website, &p.Address, &p.Info, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func getProvider(q dbtx, id int64) (*model.Provider, error) {
	row := q.QueryRow(`SELECT `+providerCols+` FROM providers WHERE id = ?`, id)
	p, err := scanProvider(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("provider %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	return p, nil
}

func (s *ProviderStore) Create(name, phone, email, website, address, info string) (*model.Provider, error) {
	result, err := s.db.Exec(
		`INSERT INTO providers (name, phone, email, website, address, info) VALUES (?, ?, ?, ?, ?, ?)`,
		name, phone, email, website, address, info,
	)
	if err != nil {
		return nil, fmt.Errorf("insert provider: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ProviderStore) List() ([]model.Provider, error) {
	rows, err := s.db.Query(`SELECT ` + providerCols + ` FROM providers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	var providers []model.Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		providers = append(providers, *p)
	}
	return providers, rows.Err()
}

func (s *ProviderStore) GetByID(id int64) (*model.Provider, error) {
	return getProvider(s.db, id)
}

func (s *ProviderStore) Update(id int64, upd ProviderUpdate) (*model.Provider, error) {
	if _, err := getProvider(s.db, id); err != nil {
		return nil, err
	}

	var sets []string
	var args []any
	appendSet := func(col string, val *string) {
		if val != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *val)
		}
	}
	appendSet("name", upd.Name)
	appendSet("phone", upd.Phone)
	appendSet("email", upd.Email)
	appendSet("website", upd.Website)
	appendSet("address", upd.Address)
	appendSet("info", upd.Info)

	if len(sets) > 0 {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, id)
		if _, err := s.db.Exec(
			`UPDATE providers SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
			args...,
		); err != nil {
			return nil, fmt.Errorf("update provider: %w", err)
		}
	}
	return s.GetByID(id)
}

// Delete removes a provider, failing with ErrConflict while appointments
// still reference it.
func (s *ProviderStore) Delete(id int64) error {
	if _, err := getProvider(s.db, id); err != nil {
		return err
	}

	var refs int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM appointments WHERE provider_id = ?`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("count provider references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("provider %d is referenced by %d appointments: %w", id, refs, ErrConflict)
	}

	if _, err := s.db.Exec(`DELETE FROM providers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete provider: %w", err)
	}
	return nil
}
