package usecase

import (
	"sort"
	"strings"
	"time"

	"github.com/yourusername/pantry-bot/internal/domain/constants"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
)

// Status OUT iff reserve == 0, LOW iff 0 < reserve < threshold, else OK.
func Status(item entity.Item) entity.Status {
	switch {
	case item.ReserveCount <= 0:
		return entity.StatusOut
	case item.ReserveCount < item.RestockThreshold:
		return entity.StatusLow
	default:
		return entity.StatusOK
	}
}

// Shortage threshold minus reserve, floored at zero.
func Shortage(item entity.Item) int {
	if d := item.RestockThreshold - item.ReserveCount; d > 0 {
		return d
	}
	return 0
}

// ShoppingList every non-OK item in table order, each exactly once.
func ShoppingList(table entity.Table) []entity.ShoppingEntry {
	return ShoppingListWithFlags(table, nil)
}

// ShoppingListWithFlags also includes OK items the session flagged as running
// low; flagged non-OK items are marked but not duplicated.
func ShoppingListWithFlags(table entity.Table, flagged map[string]bool) []entity.ShoppingEntry {
	out := make([]entity.ShoppingEntry, 0)
	for _, item := range table.Items {
		status := Status(item)
		isFlagged := flagged[normalizeKey(item.Name)]
		if status == entity.StatusOK && !isFlagged {
			continue
		}
		out = append(out, entity.ShoppingEntry{
			Item:     item,
			Status:   status,
			Shortage: Shortage(item),
			Flagged:  isFlagged,
		})
	}
	return out
}

// ApplyDelta reserve = max(0, reserve + delta).
func ApplyDelta(item entity.Item, delta int) entity.Item {
	item.ReserveCount += delta
	if item.ReserveCount < 0 {
		item.ReserveCount = 0
	}
	return item
}

// MarkPurchased sets reserve to the restock threshold through ApplyDelta.
func MarkPurchased(item entity.Item) entity.Item {
	return ApplyDelta(item, item.RestockThreshold-item.ReserveCount)
}

// DaysUntil whole calendar days from today to t in today's location.
func DaysUntil(t, today time.Time) int {
	loc := today.Location()
	y1, m1, d1 := today.Date()
	y2, m2, d2 := t.In(loc).Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// ExpiryStatus is NONE for non-perishable items and for empty or invalid dates.
func ExpiryStatus(item entity.Item, today time.Time, perishable bool) entity.ExpiryStatus {
	status, _ := expiryStatusDays(item, today, perishable)
	return status
}

func expiryStatusDays(item entity.Item, today time.Time, perishable bool) (entity.ExpiryStatus, int) {
	if !perishable {
		return entity.ExpiryNone, 0
	}
	exp, ok := item.Expiry(today.Location())
	if !ok {
		return entity.ExpiryNone, 0
	}
	days := DaysUntil(exp, today)
	switch {
	case days < 0:
		return entity.ExpiryExpired, days
	case days <= constants.ExpiryCriticalDays:
		return entity.ExpiryCritical, days
	case days <= constants.ExpiryWarningDays:
		return entity.ExpiryWarning, days
	default:
		return entity.ExpiryOK, days
	}
}

// ExpiryPanel perishable items with a valid date, soonest first.
func ExpiryPanel(table entity.Table, today time.Time, isPerishable func(category string) bool) []entity.ExpiryEntry {
	out := make([]entity.ExpiryEntry, 0)
	for _, item := range table.Items {
		perishable := isPerishable != nil && isPerishable(item.Category)
		status, days := expiryStatusDays(item, today, perishable)
		if status == entity.ExpiryNone {
			continue
		}
		out = append(out, entity.ExpiryEntry{Item: item, Status: status, DaysLeft: days})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysLeft < out[j].DaysLeft })
	return out
}

var statusRank = map[entity.Status]int{
	entity.StatusOut: 0,
	entity.StatusLow: 1,
	entity.StatusOK:  2,
}

// SortForDisplay OUT, LOW, OK; table order inside each group.
func SortForDisplay(items []entity.Item) []entity.Item {
	out := append([]entity.Item(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return statusRank[Status(out[i])] < statusRank[Status(out[j])]
	})
	return out
}

// CategoryGroup kategoriya bo'yicha guruh (tab)
type CategoryGroup struct {
	Category string
	Items    []entity.Item
}

// GroupByCategory keeps first-seen category order; uncategorised items go last.
func GroupByCategory(items []entity.Item) []CategoryGroup {
	var groups []CategoryGroup
	index := make(map[string]int)
	var uncategorised []entity.Item
	for _, item := range items {
		cat := strings.TrimSpace(item.Category)
		if cat == "" {
			uncategorised = append(uncategorised, item)
			continue
		}
		key := strings.ToLower(cat)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CategoryGroup{Category: cat})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	if len(uncategorised) > 0 {
		groups = append(groups, CategoryGroup{Category: "", Items: uncategorised})
	}
	return groups
}

func normalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
