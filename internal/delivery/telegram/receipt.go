package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/yourusername/pantry-bot/internal/domain/constants"
	"github.com/yourusername/pantry-bot/internal/infrastructure/cache"
	"github.com/yourusername/pantry-bot/pkg/logger"
)

// enqueueReceipt rate-limits and queues a receipt photo for OCR.
func (h *BotHandler) enqueueReceipt(chatID int64, fileID, mime string) {
	if !h.workerPool.allow(chatID) {
		h.sendMessage(chatID, "⚠️ 送信が多すぎます。少し待ってからもう一度お試しください。")
		return
	}
	if !h.startProcessing(chatID) {
		h.sendMessage(chatID, "⏳ 前のレシートを読み取り中です。少々お待ちください。")
		return
	}
	h.sendMessage(chatID, "🔍 レシートを読み取っています...")
	if !h.workerPool.submit(receiptJob{chatID: chatID, fileID: fileID, mime: mime}) {
		h.endProcessing(chatID)
		h.sendMessage(chatID, "⚠️ 混み合っています。しばらくしてからもう一度お試しください。")
	}
}

// processReceipt download, OCR, match, then a preview waiting for ✅.
func (h *BotHandler) processReceipt(ctx context.Context, job receiptJob) {
	image, err := h.downloadFile(ctx, job.fileID)
	if err != nil {
		logger.ErrorLogger.Printf("❌ Rasm yuklanmadi chat=%d: %v", job.chatID, err)
		h.sendMessage(job.chatID, "⚠️ 画像をダウンロードできませんでした。もう一度送ってください。")
		return
	}
	mime := job.mime
	if detected := http.DetectContentType(image); detected != "application/octet-stream" {
		mime = detected
	}

	preview, err := h.inventory.PreviewReceipt(ctx, image, mime)
	if err != nil {
		h.warn(job.chatID, err)
		return
	}

	owner := sessionKey(job.chatID)
	key := cache.Key(owner, image)
	text, markup := receiptView(preview, key)
	if markup != nil {
		h.previews.Set(key, receiptDraft{Owner: owner, Preview: preview})
	}
	if _, err := h.sendText(job.chatID, text, markup); err != nil {
		logger.ErrorLogger.Printf("Xabar yuborishda xatolik: %v", err)
	}
}

// downloadFile Telegram serveridan fayl yuklash
func (h *BotHandler) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := h.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxReceiptUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) > constants.MaxReceiptUploadSize {
		return nil, fmt.Errorf("file is larger than %d bytes", constants.MaxReceiptUploadSize)
	}
	return data, nil
}
