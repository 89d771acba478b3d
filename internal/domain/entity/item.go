package entity

import (
	"strings"
	"time"
)

// Item inventar jadvalining bitta qatori
type Item struct {
	Icon             string `json:"icon"`
	Name             string `json:"name"`
	Category         string `json:"category"`
	StockCount       int    `json:"stock_count"`       // Nominal, logikada ishlatilmaydi
	ReserveCount     int    `json:"reserve_count"`     // Asosiy kuzatiladigan son
	RestockThreshold int    `json:"restock_threshold"` // Qayta xarid nuqtasi
	ExpiryDate       string `json:"expiry_date"`       // Katakdagi xom matn

	// Extra noma'lum ustunlar qiymati (sarlavha -> qiymat)
	Extra map[string]string `json:"extra,omitempty"`
}

var expiryLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"2006-1-2",
	"01/02/2006",
	time.RFC3339,
}

// Expiry parses ExpiryDate as a date in loc (UTC when nil). ok is false for
// empty or unparseable values.
func (i Item) Expiry(loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	raw := strings.TrimSpace(i.ExpiryDate)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range expiryLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DisplayName icon bilan birga nom
func (i Item) DisplayName() string {
	name := strings.TrimSpace(i.Name)
	if name == "" {
		name = "(no name)"
	}
	if icon := strings.TrimSpace(i.Icon); icon != "" {
		return icon + " " + name
	}
	return name
}

// Clone returns a copy that does not share the Extra map.
func (i Item) Clone() Item {
	out := i
	if i.Extra != nil {
		out.Extra = make(map[string]string, len(i.Extra))
		for k, v := range i.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Status derived three-valued stock health.
type Status string

const (
	StatusOK  Status = "OK"
	StatusLow Status = "LOW"
	StatusOut Status = "OUT"
)

// Label UI uchun qisqa belgi
func (s Status) Label() string {
	switch s {
	case StatusOut:
		return "🔴 在庫切れ"
	case StatusLow:
		return "🟡 残りわずか"
	default:
		return "🟢 OK"
	}
}

// ExpiryStatus yaroqlilik holati
type ExpiryStatus string

const (
	ExpiryNone     ExpiryStatus = "NONE"
	ExpiryOK       ExpiryStatus = "OK"
	ExpiryWarning  ExpiryStatus = "WARNING"
	ExpiryCritical ExpiryStatus = "CRITICAL"
	ExpiryExpired  ExpiryStatus = "EXPIRED"
)

// Label UI uchun qisqa belgi
func (s ExpiryStatus) Label() string {
	switch s {
	case ExpiryExpired:
		return "⛔ 期限切れ"
	case ExpiryCritical:
		return "🔥 3日以内"
	case ExpiryWarning:
		return "⚠️ 1週間以内"
	case ExpiryOK:
		return "✅"
	default:
		return ""
	}
}

// ShoppingEntry xarid ro'yxatidagi element
type ShoppingEntry struct {
	Item     Item   `json:"item"`
	Status   Status `json:"status"`
	Shortage int    `json:"shortage"`
	Flagged  bool   `json:"flagged"` // sessiyada "kam qoldi" deb belgilangan
}

// ExpiryEntry muddat paneli uchun element
type ExpiryEntry struct {
	Item     Item         `json:"item"`
	Status   ExpiryStatus `json:"status"`
	DaysLeft int          `json:"days_left"`
}

// ReceiptMatch chek qatoridan topilgan mahsulot
type ReceiptMatch struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Line     string `json:"line,omitempty"`
}
