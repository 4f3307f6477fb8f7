package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/bywater/internal/database"
	"github.com/dukerupert/bywater/internal/logging"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv := New(db, Config{}, logging.Setup("error"))
	return srv.Router()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	router := newTestServer(t)
	rec := doJSON(t, router, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGroceryFlow(t *testing.T) {
	router := newTestServer(t)

	user := decode[map[string]any](t, doJSON(t, router, "POST", "/api/users",
		map[string]string{"name": "Alice", "email": "alice@example.com"}))
	userID := int64(user["id"].(float64))

	tj := decode[map[string]any](t, doJSON(t, router, "POST", "/api/stores",
		map[string]string{"name": "TraderJoes"}))
	tjID := int64(tj["id"].(float64))

	rec := doJSON(t, router, "POST", "/api/items", map[string]any{
		"name":             "Eggs",
		"default_quantity": "12",
		"quantity_is_int":  true,
		"store_ids":        []int64{tjID},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create item: %d %s", rec.Code, rec.Body.String())
	}
	item := decode[map[string]any](t, rec)
	itemID := int64(item["id"].(float64))

	rec = doJSON(t, router, "POST", "/api/grocery-items", map[string]any{
		"user_id": userID,
		"item_id": itemID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add grocery item: %d %s", rec.Code, rec.Body.String())
	}
	entry := decode[map[string]any](t, rec)
	if entry["int_quantity"].(float64) != 12 {
		t.Errorf("int_quantity = %v, want 12", entry["int_quantity"])
	}

	// Filter by a store the item is not listed at: empty.
	other := decode[map[string]any](t, doJSON(t, router, "POST", "/api/stores",
		map[string]string{"name": "WholeFoods"}))
	otherID := int64(other["id"].(float64))

	rec = doJSON(t, router, "GET",
		fmt.Sprintf("/api/grocery-items?user_id=%d&store_id=%d", userID, otherID), nil)
	entries := decode[[]map[string]any](t, rec)
	if len(entries) != 0 {
		t.Errorf("expected empty filtered list, got %d entries", len(entries))
	}
}

func TestTemplateApplyRoute(t *testing.T) {
	router := newTestServer(t)

	user := decode[map[string]any](t, doJSON(t, router, "POST", "/api/users",
		map[string]string{"name": "Alice", "email": "alice@example.com"}))
	userID := int64(user["id"].(float64))

	item := decode[map[string]any](t, doJSON(t, router, "POST", "/api/items",
		map[string]any{"name": "Milk"}))
	itemID := int64(item["id"].(float64))

	tpl := decode[map[string]any](t, doJSON(t, router, "POST", "/api/grocery-templates", map[string]any{
		"user_id": userID,
		"name":    "Weekly",
		"items":   []map[string]any{{"item_id": itemID}},
	}))
	tplID := int64(tpl["id"].(float64))

	rec := doJSON(t, router, "POST",
		fmt.Sprintf("/api/grocery-templates/%d/apply?user_id=%d", tplID, userID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("apply: %d %s", rec.Code, rec.Body.String())
	}
	result := decode[map[string]any](t, rec)
	if result["items_added"].(float64) != 1 {
		t.Errorf("items_added = %v, want 1", result["items_added"])
	}

	// Second apply skips the existing entry.
	rec = doJSON(t, router, "POST",
		fmt.Sprintf("/api/grocery-templates/%d/apply?user_id=%d", tplID, userID), nil)
	result = decode[map[string]any](t, rec)
	if result["items_skipped"].(float64) != 1 {
		t.Errorf("items_skipped = %v, want 1", result["items_skipped"])
	}
}

func TestErrorMapping(t *testing.T) {
	router := newTestServer(t)

	// Missing rows map to 404.
	if rec := doJSON(t, router, "GET", "/api/items/9999", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing item status = %d, want 404", rec.Code)
	}

	// Duplicate names map to 409.
	doJSON(t, router, "POST", "/api/stores", map[string]string{"name": "TraderJoes"})
	if rec := doJSON(t, router, "POST", "/api/stores", map[string]string{"name": "TraderJoes"}); rec.Code != http.StatusConflict {
		t.Errorf("duplicate store status = %d, want 409", rec.Code)
	}

	// Referenced store delete maps to 409.
	st := decode[map[string]any](t, doJSON(t, router, "POST", "/api/stores",
		map[string]string{"name": "WholeFoods"}))
	stID := int64(st["id"].(float64))
	doJSON(t, router, "POST", "/api/items", map[string]any{
		"name":      "Butter",
		"store_ids": []int64{stID},
	})
	if rec := doJSON(t, router, "DELETE", fmt.Sprintf("/api/stores/%d", stID), nil); rec.Code != http.StatusConflict {
		t.Errorf("referenced store delete status = %d, want 409", rec.Code)
	}

	// Malformed input maps to 400.
	if rec := doJSON(t, router, "POST", "/api/stores", map[string]string{"name": "  "}); rec.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want 400", rec.Code)
	}
}
