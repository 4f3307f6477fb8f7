package grocery

import (
	"testing"

	"github.com/dukerupert/bywater/internal/model"
)

func strPtr(s string) *string { return &s }

func TestResolveQuantityOverrideWins(t *testing.T) {
	item := model.Item{DefaultQuantity: strPtr("1 lb"), QuantityIsInt: true}

	q := ResolveQuantity(strPtr("3"), item)
	if q.Display == nil || *q.Display != "3" {
		t.Errorf("display = %v, want %q", q.Display, "3")
	}
	if q.IntValue == nil || *q.IntValue != 3 {
		t.Errorf("int value = %v, want 3", q.IntValue)
	}
}

func TestResolveQuantityFallsThroughToDefault(t *testing.T) {
	item := model.Item{DefaultQuantity: strPtr("1 lb"), QuantityIsInt: false}

	q := ResolveQuantity(nil, item)
	if q.Display == nil || *q.Display != "1 lb" {
		t.Errorf("display = %v, want %q", q.Display, "1 lb")
	}
	if q.IntValue != nil {
		t.Errorf("int value = %d, want unset", *q.IntValue)
	}
}

func TestResolveQuantityNonNumericOverride(t *testing.T) {
	item := model.Item{QuantityIsInt: true}

	q := ResolveQuantity(strPtr("two"), item)
	if q.Display == nil || *q.Display != "two" {
		t.Errorf("display = %v, want %q", q.Display, "two")
	}
	if q.IntValue != nil {
		t.Errorf("int value = %d, want unset for non-numeric display", *q.IntValue)
	}
}

func TestResolveQuantityIntFlagOff(t *testing.T) {
	// A numeric-looking quantity never gets parsed unless the item is
	// flagged as integer-quantity.
	item := model.Item{DefaultQuantity: strPtr("4"), QuantityIsInt: false}

	q := ResolveQuantity(nil, item)
	if q.IntValue != nil {
		t.Errorf("int value = %d, want unset when quantity_is_int is false", *q.IntValue)
	}
}

func TestResolveQuantityNoDisplay(t *testing.T) {
	item := model.Item{QuantityIsInt: true}

	q := ResolveQuantity(nil, item)
	if q.Display != nil {
		t.Errorf("display = %q, want unset", *q.Display)
	}
	if q.IntValue != nil {
		t.Errorf("int value = %d, want unset", *q.IntValue)
	}
}

func TestResolveQuantityTrimsWhitespace(t *testing.T) {
	item := model.Item{QuantityIsInt: true}

	q := ResolveQuantity(strPtr(" 12 "), item)
	if q.IntValue == nil || *q.IntValue != 12 {
		t.Errorf("int value = %v, want 12", q.IntValue)
	}
}
