package usecase

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		reserve, threshold int
		want               entity.Status
	}{
		{0, 3, entity.StatusOut},
		{2, 3, entity.StatusLow},
		{3, 3, entity.StatusOK},
		{5, 3, entity.StatusOK},
		{0, 0, entity.StatusOut},
		{1, 0, entity.StatusOK},
	}
	for _, c := range cases {
		item := entity.Item{ReserveCount: c.reserve, RestockThreshold: c.threshold}
		assert.Equal(t, c.want, Status(item), "reserve=%d threshold=%d", c.reserve, c.threshold)
	}
}

func TestApplyDelta_NeverNegative(t *testing.T) {
	assert.Equal(t, 0, ApplyDelta(entity.Item{ReserveCount: 0}, -1).ReserveCount)
	assert.Equal(t, 0, ApplyDelta(entity.Item{ReserveCount: 2}, -10).ReserveCount)
	assert.Equal(t, 3, ApplyDelta(entity.Item{ReserveCount: 2}, 1).ReserveCount)
}

func TestMarkPurchased_SetsThreshold(t *testing.T) {
	got := MarkPurchased(entity.Item{ReserveCount: 1, RestockThreshold: 5})
	assert.Equal(t, 5, got.ReserveCount)

	// already above threshold: purchase brings it back down to the threshold
	got = MarkPurchased(entity.Item{ReserveCount: 7, RestockThreshold: 5})
	assert.Equal(t, 5, got.ReserveCount)
}

func TestShoppingList_ExcludesOKKeepsOrder(t *testing.T) {
	table := entity.Table{Items: []entity.Item{
		{Name: "a", ReserveCount: 0, RestockThreshold: 2},
		{Name: "b", ReserveCount: 5, RestockThreshold: 3},
		{Name: "c", ReserveCount: 1, RestockThreshold: 3},
		{Name: "d", ReserveCount: 3, RestockThreshold: 3},
	}}
	list := ShoppingList(table)

	var names []string
	for _, e := range list {
		names = append(names, e.Item.Name)
		assert.GreaterOrEqual(t, e.Shortage, 0)
	}
	if diff := cmp.Diff([]string{"a", "c"}, names); diff != "" {
		t.Fatalf("shopping list mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, list[0].Shortage)
	assert.Equal(t, entity.StatusLow, list[1].Status)
}

func TestShoppingListWithFlags(t *testing.T) {
	table := entity.Table{Items: []entity.Item{
		{Name: "米", ReserveCount: 4, RestockThreshold: 1},
		{Name: "しょうゆ", ReserveCount: 0, RestockThreshold: 1},
	}}
	list := ShoppingListWithFlags(table, map[string]bool{"米": true, "しょうゆ": true})
	assert.Len(t, list, 2)
	assert.True(t, list[0].Flagged)
	assert.Equal(t, entity.StatusOK, list[0].Status)
	assert.Equal(t, 0, list[0].Shortage)
	assert.True(t, list[1].Flagged)
}

func TestExpiryStatus(t *testing.T) {
	today := time.Date(2026, 10, 18, 15, 0, 0, 0, time.Local)
	cases := map[string]entity.ExpiryStatus{
		"2026-10-17": entity.ExpiryExpired,
		"2026-10-18": entity.ExpiryCritical,
		"2026-10-21": entity.ExpiryCritical,
		"2026-10-22": entity.ExpiryWarning,
		"2026/10/25": entity.ExpiryWarning,
		"2026-10-26": entity.ExpiryOK,
		"":           entity.ExpiryNone,
		"soon":       entity.ExpiryNone,
		"2026-13-45": entity.ExpiryNone,
	}
	for date, want := range cases {
		item := entity.Item{ExpiryDate: date}
		assert.Equal(t, want, ExpiryStatus(item, today, true), "date %q", date)
	}
	assert.Equal(t, entity.ExpiryNone, ExpiryStatus(entity.Item{ExpiryDate: "2026-10-17"}, today, false))
}

func TestExpiryPanel_PerishableOnlySoonestFirst(t *testing.T) {
	today := time.Date(2026, 10, 18, 9, 0, 0, 0, time.Local)
	table := entity.Table{Items: []entity.Item{
		{Name: "牛乳", Category: "食品", ExpiryDate: "2026-10-25"},
		{Name: "洗剤", Category: "日用品", ExpiryDate: "2026-10-19"},
		{Name: "卵", Category: "食品", ExpiryDate: "2026-10-19"},
		{Name: "パン", Category: "食品"},
	}}
	panel := ExpiryPanel(table, today, func(c string) bool { return c == "食品" })
	if assert.Len(t, panel, 2) {
		assert.Equal(t, "卵", panel[0].Item.Name)
		assert.Equal(t, 1, panel[0].DaysLeft)
		assert.Equal(t, "牛乳", panel[1].Item.Name)
	}
}

func TestSortForDisplayAndGroups(t *testing.T) {
	items := []entity.Item{
		{Name: "ok1", Category: "食品", ReserveCount: 3, RestockThreshold: 1},
		{Name: "out1", Category: "日用品", ReserveCount: 0, RestockThreshold: 1},
		{Name: "low1", Category: "食品", ReserveCount: 1, RestockThreshold: 2},
		{Name: "nocat", ReserveCount: 0, RestockThreshold: 1},
	}
	sorted := SortForDisplay(items)
	var names []string
	for _, it := range sorted {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"out1", "nocat", "low1", "ok1"}, names)
	assert.Equal(t, "ok1", items[0].Name, "input slice untouched")

	groups := GroupByCategory(sorted)
	if assert.Len(t, groups, 3) {
		assert.Equal(t, "日用品", groups[0].Category)
		assert.Equal(t, "食品", groups[1].Category)
		assert.Len(t, groups[1].Items, 2)
		assert.Equal(t, "", groups[2].Category)
	}
}

func TestExpiryStatus_ReadsDatesInTodaysZone(t *testing.T) {
	for _, loc := range []*time.Location{time.FixedZone("HST", -10*3600), time.FixedZone("JST", 9*3600)} {
		today := time.Date(2026, 10, 18, 0, 30, 0, 0, loc)
		assert.Equal(t, entity.ExpiryCritical, ExpiryStatus(entity.Item{ExpiryDate: "2026-10-18"}, today, true), loc.String())
		assert.Equal(t, entity.ExpiryExpired, ExpiryStatus(entity.Item{ExpiryDate: "2026-10-17"}, today, true), loc.String())

		panel := ExpiryPanel(entity.Table{Items: []entity.Item{{Name: "豆腐", Category: "食品", ExpiryDate: "2026-10-18"}}}, today, func(string) bool { return true })
		if assert.Len(t, panel, 1) {
			assert.Equal(t, 0, panel[0].DaysLeft, loc.String())
		}
	}
}

func TestDaysUntil_CalendarDays(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	today := time.Date(2026, 10, 18, 23, 59, 0, 0, loc)
	assert.Equal(t, 1, DaysUntil(time.Date(2026, 10, 19, 0, 1, 0, 0, loc), today))
	assert.Equal(t, 0, DaysUntil(time.Date(2026, 10, 18, 0, 0, 0, 0, loc), today))
	assert.Equal(t, -18, DaysUntil(time.Date(2026, 9, 30, 12, 0, 0, 0, loc), today))
}
