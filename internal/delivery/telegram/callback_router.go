package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/usecase"
)

// handleCallback inline tugmalarni qayta ishlash
func (h *BotHandler) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.Message.Chat == nil {
		h.answerCallback(cq.ID, "")
		return
	}
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID

	action, arg := parseCallback(cq.Data)
	switch action {
	case cbNoop:
		h.answerCallback(cq.ID, "")
	case cbDecrement, cbIncrement, cbPurchase:
		h.handleItemCallback(ctx, cq, action, arg)
	case cbReceiptApply:
		h.handleReceiptApply(ctx, cq.ID, chatID, messageID, arg)
	case cbReceiptCancel:
		h.previews.Delete(arg)
		h.answerCallback(cq.ID, "キャンセルしました")
		h.editMessage(chatID, messageID, "🧾 レシートの反映をキャンセルしました。", nil)
	default:
		h.answerCallback(cq.ID, "")
	}
}

// handleItemCallback ➖/➕/✓ on a /stock or /buy message, then re-renders it.
func (h *BotHandler) handleItemCallback(ctx context.Context, cq *tgbotapi.CallbackQuery, action, arg string) {
	chatID := cq.Message.Chat.ID
	key := viewKey(chatID, cq.Message.MessageID)
	view, ok := h.views.Get(key)
	if !ok {
		h.answerCallback(cq.ID, "一覧が古くなりました。/stock をもう一度送ってください。")
		return
	}
	idx, ok := parseIndex(arg, len(view.Refs))
	if !ok {
		h.answerCallback(cq.ID, "")
		return
	}
	ref := view.Refs[idx]

	var (
		item entity.Item
		err  error
	)
	switch action {
	case cbDecrement:
		item, err = h.inventory.Adjust(ctx, ref, -1)
	case cbIncrement:
		item, err = h.inventory.Adjust(ctx, ref, 1)
	case cbPurchase:
		item, err = h.inventory.MarkPurchased(ctx, ref)
	}
	if err != nil {
		h.answerCallback(cq.ID, "")
		h.warn(chatID, err)
		return
	}
	h.answerCallback(cq.ID, fmt.Sprintf("%s: %d", item.Name, item.ReserveCount))
	h.refreshView(ctx, chatID, cq.Message.MessageID, view)
}

// refreshView redraws the list in place so the buttons keep matching rows.
func (h *BotHandler) refreshView(ctx context.Context, chatID int64, messageID int, view listView) {
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

	var (
		text   string
		markup *tgbotapi.InlineKeyboardMarkup
		refs   []usecase.ItemRef
	)
	if view.Shopping {
		text, markup, refs = shoppingView(snap, sess)
	} else {
		text, markup, refs = stockView(snap, view.Category)
	}
	h.editMessage(chatID, messageID, text, markup)
	key := viewKey(chatID, messageID)
	if len(refs) == 0 {
		h.views.Delete(key)
		return
	}
	view.Refs = refs
	h.views.Set(key, view)
}

func (h *BotHandler) handleReceiptApply(ctx context.Context, callbackID string, chatID int64, messageID int, key string) {
	draft, ok := h.previews.Take(key)
	if !ok || draft.Owner != sessionKey(chatID) {
		h.answerCallback(callbackID, "このプレビューは期限切れです。")
		h.editMessage(chatID, messageID, "🧾 プレビューの有効期限が切れました。もう一度写真を送ってください。", nil)
		return
	}
	res, err := h.inventory.ApplyReceipt(ctx, draft.Preview.Matches)
	if err != nil {
		h.answerCallback(callbackID, "")
		h.warn(chatID, err)
		return
	}
	h.answerCallback(callbackID, "反映しました")
	h.editMessage(chatID, messageID, receiptResultText(res), nil)
}
