package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/domain/repository"
	"github.com/yourusername/pantry-bot/internal/infrastructure/catalog"
	"github.com/yourusername/pantry-bot/internal/infrastructure/export"
	"github.com/yourusername/pantry-bot/pkg/logger"
)

// ErrItemNotFound jadvalda bunday nomli mahsulot yo'q
var ErrItemNotFound = errors.New("item not found")

// ItemRef identifies a row by its position in the last render plus its name.
// The name wins when the row moved between render and click.
type ItemRef struct {
	Row  int
	Name string
}

// Snapshot one render cycle's worth of derived state.
type Snapshot struct {
	Table        entity.Table
	Sorted       []entity.Item
	Groups       []CategoryGroup
	ShoppingList []entity.ShoppingEntry
	Expiry       []entity.ExpiryEntry
	Today        time.Time
}

// ReceiptPreview OCR natijasi va topilgan mosliklar
type ReceiptPreview struct {
	Text    string
	Matches []entity.ReceiptMatch
}

// ReceiptResult qo'llangan mosliklar
type ReceiptResult struct {
	Applied []entity.ReceiptMatch
	Skipped []entity.ReceiptMatch
}

// InventoryUseCase inventar bilan ishlash
type InventoryUseCase interface {
	Load(ctx context.Context) (entity.Table, error)
	Snapshot(ctx context.Context, flagged map[string]bool) (Snapshot, error)
	Adjust(ctx context.Context, ref ItemRef, delta int) (entity.Item, error)
	MarkPurchased(ctx context.Context, ref ItemRef) (entity.Item, error)
	AddItem(ctx context.Context, item entity.Item) (entity.Item, error)
	PreviewReceipt(ctx context.Context, image []byte, mimeType string) (ReceiptPreview, error)
	ApplyReceipt(ctx context.Context, matches []entity.ReceiptMatch) (ReceiptResult, error)
	Export(ctx context.Context, format string) ([]byte, string, error)
	IsPerishable(category string) bool
}

type inventoryUseCase struct {
	gateway repository.InventoryGateway
	ocr     repository.OCRRepository
	catalog *catalog.Catalog
	now     func() time.Time
	loc     *time.Location
}

// Option configures the inventory use case.
type Option func(*inventoryUseCase)

// WithLocation sets the zone "today" and expiry dates are read in.
func WithLocation(loc *time.Location) Option {
	return func(u *inventoryUseCase) {
		if loc != nil {
			u.loc = loc
		}
	}
}

// NewInventoryUseCase yangi inventory use case yaratish. ocr may be nil when
// receipt scanning is disabled.
func NewInventoryUseCase(gateway repository.InventoryGateway, ocr repository.OCRRepository, cat *catalog.Catalog, opts ...Option) InventoryUseCase {
	if cat == nil {
		cat = catalog.Default()
	}
	u := &inventoryUseCase{
		gateway: gateway,
		ocr:     ocr,
		catalog: cat,
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *inventoryUseCase) Load(ctx context.Context) (entity.Table, error) {
	return u.gateway.ReadAll(ctx)
}

func (u *inventoryUseCase) IsPerishable(category string) bool {
	return u.catalog.IsPerishable(category)
}

func (u *inventoryUseCase) Snapshot(ctx context.Context, flagged map[string]bool) (Snapshot, error) {
	table, err := u.gateway.ReadAll(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	today := u.now().In(u.loc)
	sorted := SortForDisplay(table.Items)
	return Snapshot{
		Table:        table,
		Sorted:       sorted,
		Groups:       GroupByCategory(sorted),
		ShoppingList: ShoppingListWithFlags(table, flagged),
		Expiry:       ExpiryPanel(table, today, u.catalog.IsPerishable),
		Today:        today,
	}, nil
}

// mutate re-reads the table, changes one row in memory and writes the whole
// table back.
func (u *inventoryUseCase) mutate(ctx context.Context, ref ItemRef, fn func(entity.Item) entity.Item) (entity.Item, error) {
	table, err := u.gateway.ReadAll(ctx)
	if err != nil {
		return entity.Item{}, err
	}
	idx := resolveRef(table, ref)
	if idx < 0 {
		return entity.Item{}, fmt.Errorf("%w: %q", ErrItemNotFound, ref.Name)
	}
	updated := fn(table.Items[idx])
	table.Items[idx] = updated
	if err := u.gateway.WriteAll(ctx, table); err != nil {
		return entity.Item{}, err
	}
	return updated, nil
}

func resolveRef(table entity.Table, ref ItemRef) int {
	if ref.Row >= 0 && ref.Row < len(table.Items) {
		if normalizeKey(table.Items[ref.Row].Name) == normalizeKey(ref.Name) {
			return ref.Row
		}
	}
	return table.IndexOf(ref.Name)
}

func (u *inventoryUseCase) Adjust(ctx context.Context, ref ItemRef, delta int) (entity.Item, error) {
	item, err := u.mutate(ctx, ref, func(it entity.Item) entity.Item { return ApplyDelta(it, delta) })
	if err != nil {
		return item, err
	}
	logger.InfoLogger.Printf("📦 %s: reserve %+d -> %d", item.Name, delta, item.ReserveCount)
	return item, nil
}

func (u *inventoryUseCase) MarkPurchased(ctx context.Context, ref ItemRef) (entity.Item, error) {
	item, err := u.mutate(ctx, ref, MarkPurchased)
	if err != nil {
		return item, err
	}
	logger.InfoLogger.Printf("🛒 %s purchased, reserve = %d", item.Name, item.ReserveCount)
	return item, nil
}

func (u *inventoryUseCase) AddItem(ctx context.Context, item entity.Item) (entity.Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return entity.Item{}, fmt.Errorf("name is required")
	}
	item.Icon = strings.TrimSpace(item.Icon)
	item.Category = strings.TrimSpace(item.Category)
	item.ExpiryDate = strings.TrimSpace(item.ExpiryDate)
	if item.Icon == "" {
		item.Icon = u.catalog.IconFor(item.Category)
	}
	item.StockCount = clampZero(item.StockCount)
	item.ReserveCount = clampZero(item.ReserveCount)
	item.RestockThreshold = clampZero(item.RestockThreshold)

	table, err := u.gateway.ReadAll(ctx)
	if err != nil {
		return entity.Item{}, err
	}
	table.Items = append(table.Items, item)
	if err := u.gateway.WriteAll(ctx, table); err != nil {
		return entity.Item{}, err
	}
	logger.InfoLogger.Printf("➕ Yangi mahsulot qo'shildi: %s", item.Name)
	return item, nil
}

func (u *inventoryUseCase) PreviewReceipt(ctx context.Context, image []byte, mimeType string) (ReceiptPreview, error) {
	if u.ocr == nil {
		return ReceiptPreview{}, entity.NewGatewayError("ocr", entity.ErrOCR, fmt.Errorf("receipt scanning is disabled"))
	}
	if len(image) == 0 {
		return ReceiptPreview{}, entity.NewGatewayError("ocr", entity.ErrOCR, fmt.Errorf("empty image"))
	}
	text, err := u.ocr.ReadText(ctx, image, mimeType)
	if err != nil {
		logger.ErrorLogger.Printf("❌ OCR xatosi: %v", err)
		return ReceiptPreview{}, entity.NewGatewayError("ocr", entity.ErrOCR, err)
	}
	if strings.TrimSpace(text) == "" {
		return ReceiptPreview{}, entity.NewGatewayError("ocr", entity.ErrOCR, fmt.Errorf("no text recognized"))
	}

	table, err := u.gateway.ReadAll(ctx)
	if err != nil {
		return ReceiptPreview{Text: text}, err
	}
	return ReceiptPreview{
		Text:    text,
		Matches: MatchReceipt(text, table.Names(), u.catalog.AliasPairs()),
	}, nil
}

func (u *inventoryUseCase) ApplyReceipt(ctx context.Context, matches []entity.ReceiptMatch) (ReceiptResult, error) {
	var res ReceiptResult
	if len(matches) == 0 {
		return res, nil
	}
	table, err := u.gateway.ReadAll(ctx)
	if err != nil {
		return res, err
	}
	for _, m := range matches {
		idx := table.IndexOf(m.Name)
		if idx < 0 || m.Quantity <= 0 {
			res.Skipped = append(res.Skipped, m)
			continue
		}
		table.Items[idx] = ApplyDelta(table.Items[idx], m.Quantity)
		res.Applied = append(res.Applied, m)
	}
	if len(res.Applied) == 0 {
		return res, nil
	}
	if err := u.gateway.WriteAll(ctx, table); err != nil {
		return ReceiptResult{Skipped: matches}, err
	}
	logger.InfoLogger.Printf("🧾 Chekdan %d ta mahsulot to'ldirildi", len(res.Applied))
	return res, nil
}

func (u *inventoryUseCase) Export(ctx context.Context, format string) ([]byte, string, error) {
	table, err := u.gateway.ReadAll(ctx)
	if err != nil {
		return nil, "", err
	}
	stamp := u.now().In(u.loc).Format("20060102_150405")
	statusOf := func(item entity.Item) string { return string(Status(item)) }

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		data, err := export.CSV(table, statusOf)
		if err != nil {
			return nil, "", err
		}
		return data, fmt.Sprintf("inventory_%s.csv", stamp), nil
	case "xlsx":
		data, err := export.XLSX(table, statusOf)
		if err != nil {
			return nil, "", err
		}
		return data, fmt.Sprintf("inventory_%s.xlsx", stamp), nil
	default:
		return nil, "", fmt.Errorf("unsupported export format %q", format)
	}
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
