package grocery

import "github.com/dukerupert/bywater/internal/model"

// IncludedForStore reports whether item should appear when shopping at the
// given store. A nil storeID means no filter. An item with no store
// associations is treated as available at every store.
//
// Both the item catalog listing and the grocery list listing go through this
// one predicate; do not inline the empty-set check at call sites.
func IncludedForStore(item model.Item, storeID *int64) bool {
	if storeID == nil {
		return true
	}
	if len(item.Stores) == 0 {
		return true
	}
	for _, s := range item.Stores {
		if s.ID == *storeID {
			return true
		}
	}
	return false
}
