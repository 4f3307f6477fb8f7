package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/bywater/internal/model"
)

type AppointmentStore struct {
	db *sql.DB
}

func NewAppointmentStore(db *sql.DB) *AppointmentStore {
	return &AppointmentStore{db: db}
}

// AppointmentUpdate holds the fields of a partial appointment update.
// Setting ProviderID to a non-nil pointer to nil-able value is not
// representable here; clearing the provider uses ClearProvider.
type AppointmentUpdate struct {
	Title       *string
	Date        *time.Time
	Type        *string
	Notes       *string
	ProviderID  *int64
	PatientName *string
}

const appointmentCols = `id, title, date, type, notes, provider_id, patient_name, created_by, created_at, updated_at`

func scanAppointment(scanner interface{ Scan(...any) error }) (*model.Appointment, error) {
	var a model.Appointment
	var providerID sql.NullInt64

	err := scanner.Scan(&a.ID, &a.Title, &a.Date, &a.Type, &a.Notes, &providerID, &a.PatientName, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if providerID.Valid {
		a.ProviderID = &providerID.Int64
	}
	return &a, nil
}

func (s *AppointmentStore) hydrate(a *model.Appointment) error {
	if a.ProviderID == nil {
		return nil
	}
	p, err := getProvider(s.db, *a.ProviderID)
	if err != nil {
		return err
	}
	a.Provider = p
	return nil
}

func (s *AppointmentStore) Create(title string, date time.Time, typ, notes string, providerID *int64, patientName string, createdBy int64) (*model.Appointment, error) {
	ok, err := userExists(s.db, createdBy)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("user %d: %w", createdBy, ErrNotFound)
	}
	if providerID != nil {
		if _, err := getProvider(s.db, *providerID); err != nil {
			return nil, err
		}
	}

	result, err := s.db.Exec(
		`INSERT INTO appointments (title, date, type, notes, provider_id, patient_name, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		title, date.UTC(), typ, notes, nullInt64(providerID), patientName, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AppointmentStore) GetByID(id int64) (*model.Appointment, error) {
	row := s.db.QueryRow(`SELECT `+appointmentCols+` FROM appointments WHERE id = ?`, id)
	a, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("appointment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if err := s.hydrate(a); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns appointments ordered by date, optionally filtered by creator
// and patient name. Each appointment is hydrated with its provider.
func (s *AppointmentStore) List(createdBy *int64, patientName *string) ([]model.Appointment, error) {
	query := `SELECT ` + appointmentCols + ` FROM appointments WHERE 1=1`
	var args []any
	if createdBy != nil {
		query += ` AND created_by = ?`
		args = append(args, *createdBy)
	}
	if patientName != nil {
		query += ` AND patient_name = ?`
		args = append(args, *patientName)
	}
	query += ` ORDER BY date`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range appointments {
		if err := s.hydrate(&appointments[i]); err != nil {
			return nil, err
		}
	}
	return appointments, nil
}

// ListBetween returns appointments whose date falls in [start, end), used by
// the push reminder scheduler.
func (s *AppointmentStore) ListBetween(start, end time.Time) ([]model.Appointment, error) {
	rows, err := s.db.Query(
		`SELECT `+appointmentCols+` FROM appointments WHERE date >= ? AND date < ? ORDER BY date`,
		start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list appointments between: %w", err)
	}
	defer rows.Close()

	var appointments []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, *a)
	}
	return appointments, rows.Err()
}

func (s *AppointmentStore) Update(id int64, upd AppointmentUpdate) (*model.Appointment, error) {
	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}
	if upd.ProviderID != nil {
		if _, err := getProvider(s.db, *upd.ProviderID); err != nil {
			return nil, err
		}
	}

	var sets []string
	var args []any

	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, upd.Date.UTC())
	}
	if upd.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, *upd.Type)
	}
	if upd.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *upd.Notes)
	}
	if upd.ProviderID != nil {
		sets = append(sets, "provider_id = ?")
		args = append(args, *upd.ProviderID)
	}
	if upd.PatientName != nil {
		sets = append(sets, "patient_name = ?")
		args = append(args, *upd.PatientName)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, id)
		if _, err := s.db.Exec(
			`UPDATE appointments SET `+strings.Join(sets, ", ")+` WHERE id = ?`,
			args...,
		); err != nil {
			return nil, fmt.Errorf("update appointment: %w", err)
		}
	}
	return s.GetByID(id)
}

// ClearProvider detaches the appointment from its provider.
func (s *AppointmentStore) ClearProvider(id int64) (*model.Appointment, error) {
	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(
		`UPDATE appointments SET provider_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	); err != nil {
		return nil, fmt.Errorf("clear appointment provider: %w", err)
	}
	return s.GetByID(id)
}

func (s *AppointmentStore) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("appointment %d: %w", id, ErrNotFound)
	}
	return nil
}
