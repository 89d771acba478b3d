package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/pkg/logger"
)

const helpMessage = `🏠 在庫管理ボット

/stock [カテゴリ] - 在庫一覧 (➖/➕/✓ ボタン付き)
/buy - 買い物リスト
/expiry - 賞味期限の近い食品
/add 名前|カテゴリ|補充しきい値|予備数|賞味期限|アイコン - 項目を追加
/note テキスト - メモを追加 (/note で一覧, /note del 番号, /note clear)
/low 名前 - 「残りわずか」の印を付ける/外す
/export [csv|xlsx] - 在庫をファイルで受け取る

レシートの写真を送ると、読み取った項目を在庫に反映できます。`

// handleCommand komandalarni qayta ishlash
func (h *BotHandler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	cmd := strings.ToLower(message.Command())
	args := strings.TrimSpace(message.CommandArguments())

	switch cmd {
	case "start", "help":
		h.sendMessage(chatID, helpMessage)
	case "stock":
		h.handleStockCommand(ctx, chatID, args)
	case "buy":
		h.handleBuyCommand(ctx, chatID)
	case "expiry":
		h.handleExpiryCommand(ctx, chatID)
	case "add":
		h.handleAddCommand(ctx, chatID, args)
	case "note":
		h.handleNoteCommand(ctx, chatID, args)
	case "low":
		h.handleLowCommand(ctx, chatID, args)
	case "export":
		h.handleExportCommand(ctx, chatID, args)
	default:
		h.sendMessage(chatID, "不明なコマンドです。/help で一覧を表示します。")
	}
}

func (h *BotHandler) handleStockCommand(ctx context.Context, chatID int64, category string) {
	sess, err := h.sessions.Get(ctx, sessionKey(chatID))
	if err != nil {
		h.warn(chatID, err)
		return
	}
	snap, err := h.inventory.Snapshot(ctx, sess.LowFlags)
	if err != nil {
		h.warn(chatID, err)
		return
	}
	text, markup, refs := stockView(snap, category)
	h.sendView(chatID, text, markup, listView{Category: category, Refs: refs})
}

func (h *BotHandler) handleBuyCommand(ctx context.Context, chatID int64) {
	sess, err := h.sessions.Get(ctx, sessionKey(chatID))
	if err != nil {
		h.warn(chatID, err)
		return
	}
	snap, err := h.inventory.Snapshot(ctx, sess.LowFlags)
	if err != nil {
		h.warn(chatID, err)
		return
	}
	text, markup, refs := shoppingView(snap, sess)
	h.sendView(chatID, text, markup, listView{Shopping: true, Refs: refs})
}

func (h *BotHandler) handleExpiryCommand(ctx context.Context, chatID int64) {
	snap, err := h.inventory.Snapshot(ctx, nil)
	if err != nil {
		h.warn(chatID, err)
		return
	}
	h.sendMessage(chatID, expiryText(snap))
}

// sendView sends a list message and remembers which rows its buttons mean.
func (h *BotHandler) sendView(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup, view listView) {
	sent, err := h.sendText(chatID, text, markup)
	if err != nil {
		logger.ErrorLogger.Printf("Xabar yuborishda xatolik: %v", err)
		return
	}
	if len(view.Refs) > 0 {
		h.views.Set(viewKey(chatID, sent.MessageID), view)
	}
}

func (h *BotHandler) handleAddCommand(ctx context.Context, chatID int64, args string) {
	item, err := parseAddArgs(args)
	if err != nil {
		h.sendMessage(chatID, "⚠️ "+err.Error()+"\n例: /add 牛乳|食品|2|1|2026-10-25|🥛")
		return
	}
	added, err := h.inventory.AddItem(ctx, item)
	if err != nil {
		h.warn(chatID, err)
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("➕ 追加しました: %s (予備 %d / 補充 %d)", added.DisplayName(), added.ReserveCount, added.RestockThreshold))
}

// parseAddArgs "name|category|threshold|reserve|expiry|icon"; only name is required.
func parseAddArgs(args string) (entity.Item, error) {
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	field := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}
	item := entity.Item{
		Name:       field(0),
		Category:   field(1),
		ExpiryDate: field(4),
		Icon:       field(5),
	}
	if item.Name == "" {
		return entity.Item{}, fmt.Errorf("名前を入力してください")
	}
	for i, dst := range []*int{&item.RestockThreshold, &item.ReserveCount} {
		raw := field(2 + i)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return entity.Item{}, fmt.Errorf("数値が正しくありません: %q", raw)
		}
		*dst = n
	}
	if item.ExpiryDate != "" {
		if _, ok := item.Expiry(nil); !ok {
			return entity.Item{}, fmt.Errorf("日付が正しくありません: %q", item.ExpiryDate)
		}
	}
	return item, nil
}

func (h *BotHandler) handleNoteCommand(ctx context.Context, chatID int64, args string) {
	id := sessionKey(chatID)
	var (
		sess entity.Session
		err  error
	)
	switch fields := strings.Fields(args); {
	case args == "":
		sess, err = h.sessions.Get(ctx, id)
	case strings.EqualFold(args, "clear"):
		sess, err = h.sessions.ClearManual(ctx, id)
	case len(fields) == 2 && strings.EqualFold(fields[0], "del"):
		n, convErr := strconv.Atoi(fields[1])
		if convErr != nil || n < 1 {
			h.sendMessage(chatID, "⚠️ 番号を指定してください。例: /note del 2")
			return
		}
		sess, err = h.sessions.RemoveManual(ctx, id, n-1)
	default:
		sess, err = h.sessions.AddManual(ctx, id, args)
	}
	if err != nil {
		h.warn(chatID, err)
		return
	}
	h.sendMessage(chatID, manualListText(sess.ManualList))
}

func manualListText(list []string) string {
	if len(list) == 0 {
		return "📝 メモは空です。"
	}
	var b strings.Builder
	b.WriteString("📝 メモ\n")
	for i, entry := range list {
		fmt.Fprintf(&b, "%d. %s\n", i+1, entry)
	}
	return b.String()
}

// handleLowCommand toggles the chat's "running low" flag for one item.
func (h *BotHandler) handleLowCommand(ctx context.Context, chatID int64, name string) {
	if name == "" {
		h.sendMessage(chatID, "⚠️ 名前を指定してください。例: /low 牛乳")
		return
	}
	id := sessionKey(chatID)
	sess, err := h.sessions.Get(ctx, id)
	if err != nil {
		h.warn(chatID, err)
		return
	}
	low := !sess.LowFlags[strings.ToLower(name)]
	if _, err := h.sessions.SetLowFlag(ctx, id, name, low); err != nil {
		h.warn(chatID, err)
		return
	}
	if low {
		h.sendMessage(chatID, "🚩 「"+name+"」を残りわずかとして買い物リストに追加しました。")
	} else {
		h.sendMessage(chatID, "「"+name+"」の印を外しました。")
	}
}

func (h *BotHandler) handleExportCommand(ctx context.Context, chatID int64, format string) {
	switch format = strings.ToLower(format); format {
	case "", "csv", "xlsx":
	default:
		h.sendMessage(chatID, "⚠️ 形式は csv か xlsx を指定してください。")
		return
	}
	data, filename, err := h.inventory.Export(ctx, format)
	if err != nil {
		h.warn(chatID, err)
		return
	}
	if err := h.sendDocument(chatID, filename, data, "📤 "+filename); err != nil {
		logger.ErrorLogger.Printf("Fayl yuborishda xatolik: %v", err)
	}
}
