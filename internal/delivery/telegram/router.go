package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/pantry-bot/pkg/logger"
)

// Start botni ishga tushirish. Blocks until ctx is done.
func (h *BotHandler) Start(ctx context.Context) error {
	h.workerPool.start(ctx)
	defer h.workerPool.shutdown()
	go h.cleanupSessions(ctx)
	go h.views.Run(ctx)
	go h.previews.Run(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := h.api.GetUpdatesChan(u)
	defer h.api.StopReceivingUpdates()

	logger.InfoLogger.Printf("🤖 Telegram bot ishga tushdi (%d worker)", h.workerPool.workerCount)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go h.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate one update; a panic here never takes the bot down.
func (h *BotHandler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorLogger.Printf("❌ Panic update=%d: %v", update.UpdateID, r)
			if chatID := updateChatID(update); chatID != 0 {
				h.sendMessage(chatID, "⚠️ 内部エラーが発生しました。もう一度お試しください。")
			}
		}
	}()

	if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		h.handleMessage(ctx, update.Message)
	}
}

// handleMessage xabarni qayta ishlash
func (h *BotHandler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}
	if fileID, mime, ok := receiptFile(message); ok {
		h.enqueueReceipt(message.Chat.ID, fileID, mime)
		return
	}
	if message.IsCommand() || strings.HasPrefix(strings.TrimSpace(message.Text), "/") {
		h.handleCommand(ctx, message)
		return
	}
	if strings.TrimSpace(message.Text) != "" {
		h.sendMessage(message.Chat.ID, "コマンドを送ってください。/help で一覧を表示します。")
	}
}

// receiptFile picks the largest photo, or an image sent as a document.
func receiptFile(message *tgbotapi.Message) (fileID, mime string, ok bool) {
	if n := len(message.Photo); n > 0 {
		best := message.Photo[0]
		for _, p := range message.Photo[1:] {
			if p.Width*p.Height > best.Width*best.Height {
				best = p
			}
		}
		return best.FileID, "image/jpeg", true
	}
	if doc := message.Document; doc != nil && strings.HasPrefix(doc.MimeType, "image/") {
		return doc.FileID, doc.MimeType, true
	}
	return "", "", false
}

func updateChatID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}
