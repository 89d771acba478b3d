package telegram

import (
	"context"
	"time"

	"github.com/yourusername/pantry-bot/pkg/logger"
)

// cleanupInterval eski chat sessiyalarini tekshirish oralig'i
const cleanupInterval = 15 * time.Minute

// cleanupSessions - eski sessiyalarni tozalash (memory leak oldini olish)
func (h *BotHandler) cleanupSessions(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.cleanupOnce(ctx)
		}
	}
}

func (h *BotHandler) cleanupOnce(ctx context.Context) {
	removed := h.sessions.Cleanup(ctx, h.sessionTTL)
	views := h.views.Purge()
	previews := h.previews.Purge()

	if removed+views+previews > 0 {
		logger.InfoLogger.Printf("🧹 Cleanup: %d sessiya, %d view, %d preview", removed, views, previews)
	}
}
