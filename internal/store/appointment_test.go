package store

import (
	"errors"
	"testing"
	"time"
)

func TestAppointmentCreateAndHydrate(t *testing.T) {
	db := openTestDB(t)
	providers := NewProviderStore(db)
	appointments := NewAppointmentStore(db)

	user := createTestUser(t, db, "Alice", "alice@example.com")
	p, _ := providers.Create("Dr. Smith", "", "", "", "", "")

	when := time.Date(2026, 9, 10, 14, 30, 0, 0, time.UTC)
	a, err := appointments.Create("Checkup", when, "medical", "bring records", &p.ID, "Alice", user.ID)
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	if a.Provider == nil || a.Provider.Name != "Dr. Smith" {
		t.Errorf("provider not hydrated: %+v", a.Provider)
	}
	if !a.Date.Equal(when) {
		t.Errorf("date = %v, want %v", a.Date, when)
	}

	if _, err := appointments.Create("X", when, "medical", "", nil, "", 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("create with unknown user err = %v, want ErrNotFound", err)
	}
	bad := int64(9999)
	if _, err := appointments.Create("X", when, "medical", "", &bad, "", user.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("create with unknown provider err = %v, want ErrNotFound", err)
	}
}

func TestAppointmentListFilters(t *testing.T) {
	db := openTestDB(t)
	appointments := NewAppointmentStore(db)

	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")

	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	appointments.Create("Dentist", base.Add(48*time.Hour), "dental", "", nil, "Kid A", alice.ID)
	appointments.Create("Physical", base, "medical", "", nil, "Kid B", alice.ID)
	appointments.Create("Eye exam", base.Add(24*time.Hour), "vision", "", nil, "Kid A", bob.ID)

	all, err := appointments.List(nil, nil)
	if err != nil {
		t.Fatalf("list appointments: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 appointments, got %d", len(all))
	}
	if all[0].Title != "Physical" {
		t.Errorf("expected date ordering, first = %q", all[0].Title)
	}

	mine, _ := appointments.List(&alice.ID, nil)
	if len(mine) != 2 {
		t.Errorf("expected 2 for alice, got %d", len(mine))
	}

	kidA, _ := appointments.List(nil, strPtr("Kid A"))
	if len(kidA) != 2 {
		t.Errorf("expected 2 for Kid A, got %d", len(kidA))
	}
}

func TestAppointmentListBetween(t *testing.T) {
	db := openTestDB(t)
	appointments := NewAppointmentStore(db)

	user := createTestUser(t, db, "Alice", "alice@example.com")
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	appointments.Create("Soon", base.Add(time.Hour), "medical", "", nil, "", user.ID)
	appointments.Create("Later", base.Add(72*time.Hour), "medical", "", nil, "", user.ID)

	got, err := appointments.ListBetween(base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("list between: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Soon" {
		t.Errorf("window list = %+v, want only Soon", got)
	}
}

func TestAppointmentUpdateAndClearProvider(t *testing.T) {
	db := openTestDB(t)
	providers := NewProviderStore(db)
	appointments := NewAppointmentStore(db)

	user := createTestUser(t, db, "Alice", "alice@example.com")
	p, _ := providers.Create("Dr. Smith", "", "", "", "", "")

	when := time.Date(2026, 9, 10, 14, 30, 0, 0, time.UTC)
	a, _ := appointments.Create("Checkup", when, "medical", "", &p.ID, "", user.ID)

	newDate := when.Add(24 * time.Hour)
	updated, err := appointments.Update(a.ID, AppointmentUpdate{Date: &newDate, Notes: strPtr("rescheduled")})
	if err != nil {
		t.Fatalf("update appointment: %v", err)
	}
	if !updated.Date.Equal(newDate) {
		t.Errorf("date = %v, want %v", updated.Date, newDate)
	}
	if updated.Notes != "rescheduled" {
		t.Errorf("notes = %q", updated.Notes)
	}

	cleared, err := appointments.ClearProvider(a.ID)
	if err != nil {
		t.Fatalf("clear provider: %v", err)
	}
	if cleared.ProviderID != nil || cleared.Provider != nil {
		t.Errorf("provider not cleared: %+v", cleared)
	}

	if err := appointments.Delete(a.ID); err != nil {
		t.Fatalf("delete appointment: %v", err)
	}
	if err := appointments.Delete(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete err = %v, want ErrNotFound", err)
	}
}
