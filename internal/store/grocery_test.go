package store

import (
	"errors"
	"testing"
)

func TestGroceryAddResolvesQuantity(t *testing.T) {
	db := openTestDB(t)
	items := NewItemStore(db)
	groceries := NewGroceryStore(db)

	user := createTestUser(t, db, "Alice", "alice@example.com")
	eggs, _ := items.Create("Eggs", strPtr("12"), true, nil, nil)

	entry, err := groceries.Add(user.ID, eggs.ID, nil)
	if err != nil {
		t.Fatalf("add grocery item: %v", err)
	}
	// No override: quantity stays empty, int value comes from the default.
	if entry.Quantity != nil {
		t.Errorf("quantity = %v, want nil", entry.Quantity)
	}
	if entry.IntQuantity == nil || *entry.IntQuantity != 12 {
		t.Errorf("int quantity = %v, want 12", entry.IntQuantity)
	}
	if entry.Purchased {
		t.Error("new entry should not be purchased")
	}
	if entry.Item.Name != "Eggs" {
		t.Errorf("hydrated item name = %q", entry.Item.Name)
	}

	// Override wins over the default.
	milk, _ := items.Create("Milk", strPtr("1"), true, nil, nil)
	entry, err = groceries.Add(user.ID, milk.ID, strPtr("3"))
	if err != nil {
		t.Fatalf("add with override: %v", err)
	}
	if entry.Quantity == nil || *entry.Quantity != "3" {
		t.Errorf("quantity = %v, want %q", entry.Quantity, "3")
	}
	if entry.IntQuantity == nil || *entry.IntQuantity != 3 {
		t.Errorf("int quantity = %v, want 3", entry.IntQuantity)
	}
}

func TestGroceryAddNonIntQuantity(t *testing.T) {
	db := openTestDB(t)
	items := NewItemStore(db)
	groceries := NewGroceryStore(db)

	user := createTestUser(t, db, "Alice", "alice@example.com")
	butter, _ := items.Create("Butter", strPtr("1 lb"), true, nil, nil)

	entry, err := groceries.Add(user.ID, butter.ID, nil)
	if err != nil {
		t.Fatalf("add grocery item: %v", err)
	}
	if entry.IntQuantity != nil {
		t.Errorf("int quantity = %v, want nil for unparseable text", entry.IntQuantity)
	}
}

func TestGroceryAddValidatesReferences(t *testing.T) {
	db := openTestDB(t)
	items := NewItemStore(db)
	groceries := NewGroceryStore(db)

	user := createTestUser(t, db, "Alice", "alice@example.com")
	eggs, _ := items.Create("Eggs", nil, false, nil, nil)

	if _, err := groceries.Add(user.ID, 9999, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("add unknown item err = %v, want ErrNotFound", err)
	}
	if _, err := groceries.Add(9999, eggs.ID, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("add unknown user err = %v, want ErrNotFound", err)
	}
}

func TestGroceryListStoreFilter(t *testing.T) {
	db := openTestDB(t)
	reg := NewRegistry(db)
	items := NewItemStore(db)
	groceries := NewGroceryStore(db)

	user := createTestUser(t, db, "Alice", "alice@example.com")
	tj, _ := reg.Create("TraderJoes")
	wf, _ := reg.Create("WholeFoods")

	butter, _ := items.Create("Butter", nil, false, nil, []int64{tj.ID, wf.ID})
	muffins, _ := items.Create("Muffins", nil, false, nil, []int64{tj.ID})
	rice, _ := items.Create("Rice", nil, false, nil, nil)

	groceries.Add(user.ID, butter.ID, nil)
	groceries.Add(user.ID, muffins.ID, nil)
	groceries.Add(user.ID, rice.ID, nil)

	got, err := groceries.ListByUser(user.ID, &wf.ID)
	if err != nil {
		t.Fatalf("list grocery items: %v", err)
	}
	names := make(map[string]bool, len(got))
	for _, e := range got {
		names[e.Item.Name] = true
	}
	if len(got) != 2 || !names["Butter"] || !names["Rice"] {
		t.Errorf("filtered list = %v, want Butter and Rice", names)
	}
}

func TestGroceryListScopedToUser(t *testing.T) {
	db := openTestDB(t)
	items := NewItemStore(db)
	groceries := NewGroceryStore(db)

	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")

	eggs, _ := items.Create("Eggs", nil, false, nil, nil)
	groceries.Add(alice.ID, eggs.ID, nil)

	got, err := groceries.ListByUser(bob.ID, nil)
	if err != nil {
		t.Fatalf("list grocery items: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("bob's list should be empty, got %d entries", len(got))
	}
}

func TestGroceryUpdate(t *testing.T) {
	db := openTestDB(t)
	items := NewItemStore(db)
	groceries := NewGroceryStore(db)

	user := createTestUser(t, db, "Alice", "alice@example.com")
	eggs, _ := items.Create("Eggs", strPtr("12"), true, nil, nil)
	entry, _ := groceries.Add(user.ID, eggs.ID, nil)

	// Changing the quantity re-resolves the integer value.
	updated, err := groceries.Update(entry.ID, user.ID, GroceryItemUpdate{Quantity: strPtr("6")})
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if updated.IntQuantity == nil || *updated.IntQuantity != 6 {
		t.Errorf("int quantity = %v, want 6", updated.IntQuantity)
	}

	updated, err = groceries.Update(entry.ID, user.ID, GroceryItemUpdate{Purchased: boolPtr(true)})
	if err != nil {
		t.Fatalf("update purchased: %v", err)
	}
	if !updated.Purchased {
		t.Error("purchased not set")
	}
}

func TestGroceryOwnership(t *testing.T) {
	db := openTestDB(t)
	items := NewItemStore(db)
	groceries := NewGroceryStore(db)

	alice := createTestUser(t, db, "Alice", "alice@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")

	eggs, _ := items.Create("Eggs", nil, false, nil, nil)
	entry, _ := groceries.Add(alice.ID, eggs.ID, nil)

	if _, err := groceries.Update(entry.ID, bob.ID, GroceryItemUpdate{Purchased: boolPtr(true)}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update from wrong user err = %v, want ErrNotFound", err)
	}
	if err := groceries.Delete(entry.ID, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete from wrong user err = %v, want ErrNotFound", err)
	}

	if err := groceries.Delete(entry.ID, alice.ID); err != nil {
		t.Fatalf("delete own entry: %v", err)
	}
	if err := groceries.Delete(entry.ID, alice.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete err = %v, want ErrNotFound", err)
	}
}
