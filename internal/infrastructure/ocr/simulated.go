// Package ocr holds the offline receipt reader used when no OCR service is
// configured.
package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/domain/repository"
)

// Simulated returns a fixed transcript after a delay. Receipts built from the
// current inventory names let the full scan→apply flow run without a network.
type Simulated struct {
	delay   time.Duration
	gateway repository.InventoryGateway
	lines   []string
}

var _ repository.OCRRepository = (*Simulated)(nil)

// NewSimulated simulyatsiya qilingan OCR. lines overrides the generated
// transcript when not empty.
func NewSimulated(delay time.Duration, gateway repository.InventoryGateway, lines ...string) *Simulated {
	return &Simulated{delay: delay, gateway: gateway, lines: lines}
}

func (s *Simulated) ReadText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("empty image")
	}
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if len(s.lines) > 0 {
		return strings.Join(s.lines, "\n"), nil
	}
	if s.gateway == nil {
		return "", nil
	}
	table, err := s.gateway.ReadAll(ctx)
	if err != nil {
		return "", err
	}
	return transcriptFor(table), nil
}

// transcriptFor fakes a receipt restocking every item that is not OK.
func transcriptFor(table entity.Table) string {
	var b strings.Builder
	b.WriteString("スーパーマーケット\n")
	total := 0
	for i, item := range table.Items {
		if item.ReserveCount > item.RestockThreshold {
			continue
		}
		qty := item.RestockThreshold - item.ReserveCount + 1
		price := 100 + 50*(i%5)
		total += price * qty
		fmt.Fprintf(&b, "%s %d円 x%d\n", strings.TrimSpace(item.Name), price, qty)
	}
	fmt.Fprintf(&b, "合計 %d円", total)
	return b.String()
}
