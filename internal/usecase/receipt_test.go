package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
)

func TestMatchReceiptLine(t *testing.T) {
	m, ok := MatchReceiptLine("しょうゆ 150円 x2", []string{"しょうゆ"})
	assert.True(t, ok)
	assert.Equal(t, entity.ReceiptMatch{Name: "しょうゆ", Quantity: 2, Line: "しょうゆ 150円 x2"}, m)

	_, ok = MatchReceiptLine("unknown item", []string{"しょうゆ"})
	assert.False(t, ok)
}

func TestMatchReceiptLine_Quantities(t *testing.T) {
	names := []string{"トイレットペーパー", "ティッシュ", "卵", "Milk"}
	cases := map[string]int{
		"卵 198円":           1,
		"卵 2個 396円":        2,
		"卵 ×3":             3,
		"卵 *4 792円":        4,
		"2 卵 396円":         2,
		"ＭＩＬＫ　２点":          2,
		"milk 1000ml 238円": 1,
		"ﾃｨｯｼｭ 398円 X2":    2,
	}
	for line, want := range cases {
		m, ok := MatchReceiptLine(line, names)
		if assert.True(t, ok, "line %q", line) {
			assert.Equal(t, want, m.Quantity, "line %q", line)
		}
	}
}

func TestMatchReceiptLine_FirstNameWins(t *testing.T) {
	m, ok := MatchReceiptLine("しょうゆせんべい 1袋", []string{"しょうゆ", "せんべい"})
	assert.True(t, ok)
	assert.Equal(t, "しょうゆ", m.Name)
}

func TestMatchReceipt_AliasesAndMerge(t *testing.T) {
	text := "スーパーマーケット\nしょうゆ 150円 x2\n醤油 150円\nティッシュ 5箱 298円\n合計 748円"
	aliases := [][2]string{{"醤油", "しょうゆ"}, {"ティッシュ", "ティッシュペーパー"}}
	got := MatchReceipt(text, []string{"しょうゆ", "ティッシュペーパー"}, aliases)

	if assert.Len(t, got, 2) {
		assert.Equal(t, "しょうゆ", got[0].Name)
		assert.Equal(t, 3, got[0].Quantity)
		assert.Equal(t, "ティッシュペーパー", got[1].Name)
		assert.Equal(t, 5, got[1].Quantity)
	}
}

func TestMatchReceipt_Empty(t *testing.T) {
	assert.Empty(t, MatchReceipt("", []string{"しょうゆ"}, nil))
}
