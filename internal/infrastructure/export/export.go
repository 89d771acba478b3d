// Package export renders the inventory table as CSV or XLSX downloads.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/pantry-bot/internal/domain/constants"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StatusFunc derived status column uchun qiymat
type StatusFunc func(entity.Item) string

// Headers table headers plus the derived status column.
func Headers(table entity.Table) []string {
	return append(table.Headers(), constants.ColumnStatus)
}

// RowStrings one row's cells in header order, status last.
func RowStrings(table entity.Table, item entity.Item, status StatusFunc) []string {
	out := make([]string, 0, len(table.Columns)+1)
	for _, col := range table.Columns {
		out = append(out, col.Value(item))
	}
	if status != nil {
		out = append(out, status(item))
	} else {
		out = append(out, "")
	}
	return out
}

// CSV full table dump, UTF-8 with BOM so spreadsheet apps detect the encoding.
func CSV(table entity.Table, status StatusFunc) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write(Headers(table)); err != nil {
		return nil, err
	}
	for _, item := range table.Items {
		if err := w.Write(RowStrings(table, item, status)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// XLSX the same dump as a workbook; count columns are written as numbers.
func XLSX(table entity.Table, status StatusFunc) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, constants.DefaultWorksheet); err != nil {
		return nil, err
	}
	sheet = constants.DefaultWorksheet

	for i, h := range Headers(table) {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for r, item := range table.Items {
		rowIdx := r + 2
		values := RowStrings(table, item, status)
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err != nil {
				return nil, err
			}
			var value interface{} = v
			if c < len(table.Columns) && table.Columns[c].IsCount() {
				if n, err := strconv.Atoi(v); err == nil {
					value = n
				}
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
