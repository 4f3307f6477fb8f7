// Package grocery holds the pure grocery-list logic: quantity resolution
// and store filtering. It performs no I/O.
package grocery

import (
	"strconv"
	"strings"

	"github.com/dukerupert/bywater/internal/model"
)

// Quantity is the resolved quantity for a list entry: the display string
// (override or the item's default, either may be absent) and, for items
// flagged quantity_is_int, the parsed whole-number value.
type Quantity struct {
	Display  *string
	IntValue *int64
}

// ResolveQuantity computes the effective quantity for an entry referencing
// item. An explicit override always wins verbatim; otherwise the item's
// default quantity is used. IntValue is populated only when the item is
// flagged quantity_is_int and the chosen display string parses as a base-10
// integer — a non-numeric string is not an error, the numeric value just
// stays unset.
func ResolveQuantity(override *string, item model.Item) Quantity {
	display := override
	if display == nil {
		display = item.DefaultQuantity
	}

	q := Quantity{Display: display}
	if !item.QuantityIsInt || display == nil {
		return q
	}

	n, err := strconv.ParseInt(strings.TrimSpace(*display), 10, 64)
	if err != nil {
		return q
	}
	q.IntValue = &n
	return q
}
