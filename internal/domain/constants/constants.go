package constants

import "time"

// Sheet konstantalari
const (
	// DefaultWorksheet inventar jadvali joylashgan varaq nomi
	DefaultWorksheet = "inventory"

	// SheetsScope Google Sheets o'qish/yozish ruxsati
	SheetsScope = "https://www.googleapis.com/auth/spreadsheets"

	// SheetRequestTimeout bitta Sheets so'rovi uchun max vaqt
	SheetRequestTimeout = 20 * time.Second
)

// Kanonik ustun nomlari (jadval sarlavhasi)
const (
	ColumnIcon             = "icon"
	ColumnName             = "name"
	ColumnCategory         = "category"
	ColumnStockCount       = "stockCount"
	ColumnReserveCount     = "reserveCount"
	ColumnRestockThreshold = "restockThreshold"
	ColumnExpiryDate       = "expiryDate"

	// ColumnStatus faqat eksportda qo'shiladi, jadvalga yozilmaydi
	ColumnStatus = "status"
)

// Yaroqlilik muddati chegaralari (kunlarda)
const (
	ExpiryWarningDays  = 7
	ExpiryCriticalDays = 3
)

// Session konstantalari
const (
	// DefaultSessionTTL foydalanuvchi sessiyasi qancha yashaydi
	DefaultSessionTTL = 12 * time.Hour

	// SessionCookieName web sessiya cookie nomi
	SessionCookieName = "pantry_session"

	// MaxManualListEntries qo'lda kiritilgan xarid ro'yxati limiti
	MaxManualListEntries = 100
)

// Receipt / OCR konstantalari
const (
	// GeminiModelName chek o'qish uchun model
	GeminiModelName = "gemini-2.5-flash"

	// OCRTemperature past qiymat - matnni aynan ko'chirish uchun
	OCRTemperature = 0.0

	// MaxRetries OCR so'rovi uchun max urinishlar
	MaxRetries = 3

	// RetryDelay urinishlar orasidagi kutish (soniya)
	RetryDelay = 2

	// MaxReceiptUploadSize maksimal rasm hajmi (bayt)
	MaxReceiptUploadSize = 8 * 1024 * 1024 // 8MB

	// DefaultSimulatedOCRDelay simulyatsiya qilingan OCR kechikishi
	DefaultSimulatedOCRDelay = 1500 * time.Millisecond
)

// DefaultTimezone uy xo'jaligi joylashgan vaqt zonasi
const DefaultTimezone = "Asia/Tokyo"
