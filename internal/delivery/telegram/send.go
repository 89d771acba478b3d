package telegram

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/usecase"
	"github.com/yourusername/pantry-bot/pkg/logger"
)

// telegramTextLimit bitta xabar uchun max belgilar
const telegramTextLimit = 4096

// sendText sends a message with an optional inline keyboard.
func (h *BotHandler) sendText(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) (*tgbotapi.Message, error) {
	if h.api == nil {
		return nil, fmt.Errorf("telegram bot is nil")
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	sent, err := h.api.Send(msg)
	if err != nil {
		return nil, err
	}
	return &sent, nil
}

// sendMessage oddiy xabar yuborish (uzun matn bo'laklarga bo'linadi)
func (h *BotHandler) sendMessage(chatID int64, text string) {
	if strings.TrimSpace(text) == "" {
		logger.ErrorLogger.Printf("⚠️ Bo'sh xabar yuborilmoqchi bo'ldi! ChatID: %d", chatID)
		return
	}
	for _, chunk := range splitIntoChunks(text, telegramTextLimit) {
		if _, err := h.sendText(chatID, chunk, nil); err != nil {
			logger.ErrorLogger.Printf("Xabar yuborishda xatolik: %v", err)
			return
		}
	}
}

// editMessage replaces a message's text and keyboard in place.
func (h *BotHandler) editMessage(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	var edit tgbotapi.EditMessageTextConfig
	if markup != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *markup)
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	if _, err := h.api.Send(edit); err != nil && !isNotModified(err) {
		logger.ErrorLogger.Printf("Xabarni tahrirlashda xatolik: %v", err)
	}
}

func (h *BotHandler) sendDocument(chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	_, err := h.api.Send(doc)
	return err
}

// answerCallback spinnerni to'xtatish
func (h *BotHandler) answerCallback(id, text string) {
	if _, err := h.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		logger.ErrorLogger.Printf("Callback javobida xatolik: %v", err)
	}
}

// warn sends the chat counterpart of the web diagnostics panel.
func (h *BotHandler) warn(chatID int64, err error) {
	logger.ErrorLogger.Printf("⚠️ chat=%d: %v", chatID, err)
	h.sendMessage(chatID, errorText(err))
}

// errorText maps a boundary error onto a short user-facing message.
func errorText(err error) string {
	switch entity.ErrorKind(err) {
	case entity.ErrAuth:
		return "⚠️ 認証エラー: サービスアカウントの認証情報を確認してください。"
	case entity.ErrNotFound:
		return "⚠️ シートが見つかりません: SPREADSHEET_ID と共有設定を確認してください。"
	case entity.ErrConnect:
		return "⚠️ 接続エラー: しばらくしてからもう一度お試しください。"
	case entity.ErrRead:
		return "⚠️ データを読み込めませんでした。"
	case entity.ErrWrite:
		return "⚠️ 保存に失敗しました。変更は反映されていません。"
	case entity.ErrOCR:
		return "⚠️ レシートを読み取れませんでした。"
	}
	if errors.Is(err, usecase.ErrItemNotFound) {
		return "⚠️ 項目が見つかりません。/stock で一覧を更新してください。"
	}
	return "⚠️ 予期しないエラーが発生しました。"
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}

// splitIntoChunks matnni Telegram limitiga mos bo'laklarga bo'ladi
func splitIntoChunks(s string, limit int) []string {
	if limit <= 0 {
		return []string{s}
	}
	var chunks []string
	var current strings.Builder
	count := 0
	for _, r := range s {
		current.WriteRune(r)
		count++
		if count >= limit {
			chunks = append(chunks, current.String())
			current.Reset()
			count = 0
		}
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
