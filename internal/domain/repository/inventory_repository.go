package repository

import (
	"context"
	"time"

	"github.com/yourusername/pantry-bot/internal/domain/entity"
)

// InventoryGateway tashqi jadval bilan ishlash uchun interface.
// WriteAll har doim butun jadvalni qayta yozadi; qisman yangilash yo'q.
type InventoryGateway interface {
	// ReadAll jadvalning barcha qatorlarini o'qish
	ReadAll(ctx context.Context) (entity.Table, error)

	// WriteAll sarlavha va barcha qatorlarni 1-qatordan boshlab qayta yozish
	WriteAll(ctx context.Context, table entity.Table) error
}

// OCRRepository chek rasmidan matn ajratib beruvchi hamkor
type OCRRepository interface {
	// ReadText rasm baytlaridan tanilgan matnni qaytaradi (topilmasa bo'sh satr)
	ReadText(ctx context.Context, image []byte, mimeType string) (string, error)
}

// SessionRepository per-viewer transient state (manual list, low flags)
type SessionRepository interface {
	// Get returns the session, creating an empty one when id is unknown.
	Get(ctx context.Context, id string) (entity.Session, error)

	// AddManual ro'yxatga erkin matnli yozuv qo'shish (takrorlar e'tiborsiz)
	AddManual(ctx context.Context, id, entry string) (entity.Session, error)

	// RemoveManual index bo'yicha yozuvni o'chirish
	RemoveManual(ctx context.Context, id string, index int) (entity.Session, error)

	// ClearManual qo'lda kiritilgan ro'yxatni tozalash
	ClearManual(ctx context.Context, id string) (entity.Session, error)

	// SetLowFlag marks or unmarks an item as running low for this session only.
	SetLowFlag(ctx context.Context, id, name string, low bool) (entity.Session, error)

	// Cleanup drops sessions idle longer than ttl and returns how many went.
	Cleanup(ctx context.Context, ttl time.Duration) int
}
