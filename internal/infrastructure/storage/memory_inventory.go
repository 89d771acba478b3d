package storage

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/domain/repository"
	"github.com/yourusername/pantry-bot/internal/infrastructure/sheets"
	"github.com/yourusername/pantry-bot/pkg/logger"
)

// MemoryInventory is an InventoryGateway held in process memory. It backs
// local runs and demos when no spreadsheet is configured.
type MemoryInventory struct {
	mu     sync.RWMutex
	table  entity.Table
	writes int
}

var _ repository.InventoryGateway = (*MemoryInventory)(nil)

// NewMemoryInventory in-memory inventar yaratish
func NewMemoryInventory(seed entity.Table) *MemoryInventory {
	if len(seed.Columns) == 0 {
		seed.Columns = sheets.CanonicalColumns()
	}
	if seed.Items == nil {
		seed.Items = []entity.Item{}
	}
	return &MemoryInventory{table: seed.Clone()}
}

// ReadAll jadval nusxasini qaytaradi
func (m *MemoryInventory) ReadAll(ctx context.Context) (entity.Table, error) {
	if err := ctx.Err(); err != nil {
		return entity.Table{}, entity.NewGatewayError("read", entity.ErrConnect, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table.Clone(), nil
}

// WriteAll butun jadvalni almashtiradi
func (m *MemoryInventory) WriteAll(ctx context.Context, table entity.Table) error {
	if err := ctx.Err(); err != nil {
		return entity.NewGatewayError("write", entity.ErrConnect, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(table.Columns) == 0 {
		table.Columns = sheets.CanonicalColumns()
	}
	m.table = table.Clone()
	m.writes++
	return nil
}

// Writes number of WriteAll calls so far.
func (m *MemoryInventory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// LoadXLSXSeed reads a workbook laid out like the inventory sheet. The named
// worksheet is used when present, otherwise the first one.
func LoadXLSXSeed(path, worksheet string) (entity.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return entity.Table{}, entity.NewGatewayError("seed", entity.ErrNotFound, err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return entity.Table{}, entity.NewGatewayError("seed", entity.ErrRead, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	for _, name := range f.GetSheetList() {
		if name == worksheet {
			sheet = name
			break
		}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return entity.Table{}, entity.NewGatewayError("seed", entity.ErrRead, err)
	}
	table, err := sheets.DecodeValues(rows)
	if err != nil {
		return entity.Table{}, entity.NewGatewayError("seed", entity.ErrRead, fmt.Errorf("%s: %w", path, err))
	}
	logger.InfoLogger.Printf("📥 Seed yuklandi: %s (%d ta mahsulot)", path, len(table.Items))
	return table, nil
}
