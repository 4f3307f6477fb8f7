package store

import (
	"errors"
	"testing"
	"time"
)

func TestProviderCRUD(t *testing.T) {
	db := openTestDB(t)
	providers := NewProviderStore(db)

	p, err := providers.Create("Dr. Smith", "555-1234", "smith@example.com", "", "", "Pediatrician")
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	if p.Name != "Dr. Smith" || p.Info != "Pediatrician" {
		t.Errorf("provider = %+v", p)
	}

	updated, err := providers.Update(p.ID, ProviderUpdate{Phone: strPtr("555-9999")})
	if err != nil {
		t.Fatalf("update provider: %v", err)
	}
	if updated.Phone != "555-9999" {
		t.Errorf("phone = %q, want %q", updated.Phone, "555-9999")
	}
	if updated.Name != "Dr. Smith" {
		t.Errorf("partial update clobbered name: %q", updated.Name)
	}

	if _, err := providers.Update(9999, ProviderUpdate{Name: strPtr("X")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing err = %v, want ErrNotFound", err)
	}

	if err := providers.Delete(p.ID); err != nil {
		t.Fatalf("delete provider: %v", err)
	}
	if _, err := providers.GetByID(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get deleted err = %v, want ErrNotFound", err)
	}
}

func TestProviderDeleteGuard(t *testing.T) {
	db := openTestDB(t)
	providers := NewProviderStore(db)
	appointments := NewAppointmentStore(db)

	user := createTestUser(t, db, "Alice", "alice@example.com")
	p, _ := providers.Create("Dr. Smith", "", "", "", "", "")

	_, err := appointments.Create("Checkup", time.Now().Add(24*time.Hour), "medical", "", &p.ID, "Alice", user.ID)
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	if err := providers.Delete(p.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("delete referenced provider err = %v, want ErrConflict", err)
	}
}
