package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/usecase"
)

// Callback data prefikslari. Data is "<action>|<arg>", at most 64 bytes.
const (
	cbDecrement     = "inv_dec"
	cbIncrement     = "inv_inc"
	cbPurchase      = "inv_buy"
	cbNoop          = "noop"
	cbReceiptApply  = "rcpt_apply"
	cbReceiptCancel = "rcpt_cancel"
)

// maxButtonRows Telegram allows 100 buttons per keyboard, four per row here.
const maxButtonRows = 25

func callbackData(action string, arg string) string {
	return action + "|" + arg
}

// parseCallback splits "action|arg".
func parseCallback(data string) (action, arg string) {
	action, arg, _ = strings.Cut(data, "|")
	return action, arg
}

// parseIndex view ichidagi indeks
func parseIndex(arg string, n int) (int, bool) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// refsFor maps display-ordered items back to their table rows. Duplicate
// names take rows in table order.
func refsFor(table entity.Table, items []entity.Item) []usecase.ItemRef {
	used := make([]bool, len(table.Items))
	refs := make([]usecase.ItemRef, 0, len(items))
	for _, item := range items {
		row := -1
		for i, t := range table.Items {
			if !used[i] && t.Name == item.Name {
				row = i
				used[i] = true
				break
			}
		}
		refs = append(refs, usecase.ItemRef{Row: row, Name: item.Name})
	}
	return refs
}

// stockView /stock matni va tugmalari. category filters when non-empty.
func stockView(snap usecase.Snapshot, category string) (string, *tgbotapi.InlineKeyboardMarkup, []usecase.ItemRef) {
	items := make([]entity.Item, 0, len(snap.Sorted))
	for _, item := range snap.Sorted {
		if category == "" || strings.EqualFold(strings.TrimSpace(item.Category), category) {
			items = append(items, item)
		}
	}

	var b strings.Builder
	title := "📦 在庫"
	if category != "" {
		title += " [" + category + "]"
	}
	fmt.Fprintf(&b, "%s (%s)\n", title, snap.Today.Format("2006-01-02"))
	if len(items) == 0 {
		b.WriteString("\n項目がありません。/add で追加できます。")
		return b.String(), nil, nil
	}
	b.WriteString("\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%s  予備 %d / 補充 %d  %s\n",
			item.DisplayName(), item.ReserveCount, item.RestockThreshold, usecase.Status(item).Label())
	}

	refs := refsFor(snap.Table, items)
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, item := range items {
		if i >= maxButtonRows {
			b.WriteString("\n(ボタンは先頭の25件のみ。/stock <カテゴリ> で絞り込めます)")
			break
		}
		idx := strconv.Itoa(i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖", callbackData(cbDecrement, idx)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %d", item.DisplayName(), item.ReserveCount), cbNoop),
			tgbotapi.NewInlineKeyboardButtonData("➕", callbackData(cbIncrement, idx)),
			tgbotapi.NewInlineKeyboardButtonData("✓", callbackData(cbPurchase, idx)),
		))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return b.String(), &markup, refs
}

// shoppingView /buy: derived list with ✓ buttons plus the chat's manual notes.
func shoppingView(snap usecase.Snapshot, sess entity.Session) (string, *tgbotapi.InlineKeyboardMarkup, []usecase.ItemRef) {
	var b strings.Builder
	b.WriteString("🛒 買い物リスト\n\n")
	items := make([]entity.Item, 0, len(snap.ShoppingList))
	if len(snap.ShoppingList) == 0 {
		b.WriteString("補充が必要な項目はありません。\n")
	}
	for _, e := range snap.ShoppingList {
		items = append(items, e.Item)
		line := fmt.Sprintf("• %s  %s", e.Item.DisplayName(), e.Status.Label())
		if e.Shortage > 0 {
			line += fmt.Sprintf("  (あと %d)", e.Shortage)
		}
		if e.Flagged {
			line += "  🚩"
		}
		b.WriteString(line + "\n")
	}
	if len(sess.ManualList) > 0 {
		b.WriteString("\n📝 メモ\n")
		for i, entry := range sess.ManualList {
			fmt.Fprintf(&b, "%d. %s\n", i+1, entry)
		}
	}

	if len(items) == 0 {
		return b.String(), nil, nil
	}
	refs := refsFor(snap.Table, items)
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, item := range items {
		if i >= maxButtonRows*4 {
			break
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✓ 購入済み: "+item.DisplayName(), callbackData(cbPurchase, strconv.Itoa(i))),
		))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return b.String(), &markup, refs
}

// expiryText /expiry paneli
func expiryText(snap usecase.Snapshot) string {
	if len(snap.Expiry) == 0 {
		return "⏰ 期限が登録された食品はありません。"
	}
	var b strings.Builder
	b.WriteString("⏰ 賞味期限\n\n")
	for _, e := range snap.Expiry {
		var left string
		switch {
		case e.DaysLeft < 0:
			left = fmt.Sprintf("%d日超過", -e.DaysLeft)
		case e.DaysLeft == 0:
			left = "今日まで"
		default:
			left = fmt.Sprintf("あと%d日", e.DaysLeft)
		}
		fmt.Fprintf(&b, "%s  %s  %s %s\n", e.Item.DisplayName(), e.Item.ExpiryDate, left, e.Status.Label())
	}
	return b.String()
}

// receiptView OCR preview with apply/cancel buttons.
func receiptView(preview usecase.ReceiptPreview, key string) (string, *tgbotapi.InlineKeyboardMarkup) {
	var b strings.Builder
	b.WriteString("🧾 レシート読み取り結果\n\n")
	if len(preview.Matches) == 0 {
		b.WriteString("在庫の項目と一致する行はありませんでした。")
		return b.String(), nil
	}
	for _, m := range preview.Matches {
		fmt.Fprintf(&b, "• %s  +%d\n", m.Name, m.Quantity)
	}
	b.WriteString("\n在庫に反映しますか？")
	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ 反映", callbackData(cbReceiptApply, key)),
		tgbotapi.NewInlineKeyboardButtonData("✖ キャンセル", callbackData(cbReceiptCancel, key)),
	))
	return b.String(), &markup
}

func receiptResultText(res usecase.ReceiptResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ %d件を在庫に反映しました。\n", len(res.Applied))
	for _, m := range res.Applied {
		fmt.Fprintf(&b, "• %s  +%d\n", m.Name, m.Quantity)
	}
	if len(res.Skipped) > 0 {
		b.WriteString("\nスキップ:\n")
		for _, m := range res.Skipped {
			fmt.Fprintf(&b, "• %s\n", m.Name)
		}
	}
	return b.String()
}
