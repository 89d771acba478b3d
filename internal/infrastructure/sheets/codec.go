package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/pantry-bot/internal/domain/constants"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"golang.org/x/text/width"
)

// headerAliases maps normalized header text to a field. Older sheets used the
// Japanese column names.
var headerAliases = map[string]entity.Field{
	"icon":     entity.FieldIcon,
	"emoji":    entity.FieldIcon,
	"アイコン":     entity.FieldIcon,
	"絵文字":      entity.FieldIcon,
	"name":     entity.FieldName,
	"item":     entity.FieldName,
	"itemname": entity.FieldName,
	"項目名":      entity.FieldName,
	"品名":       entity.FieldName,
	"名前":       entity.FieldName,
	"category": entity.FieldCategory,
	"カテゴリ":     entity.FieldCategory,
	"カテゴリー":    entity.FieldCategory,
	"分類":       entity.FieldCategory,

	"stockcount": entity.FieldStockCount,
	"stock":      entity.FieldStockCount,
	"在庫数":        entity.FieldStockCount,
	"在庫":         entity.FieldStockCount,

	"reservecount": entity.FieldReserveCount,
	"reserve":      entity.FieldReserveCount,
	"予備数":          entity.FieldReserveCount,
	"予備":           entity.FieldReserveCount,

	"restockthreshold": entity.FieldRestockThreshold,
	"threshold":        entity.FieldRestockThreshold,
	"補充しきい値":           entity.FieldRestockThreshold,
	"しきい値":             entity.FieldRestockThreshold,

	"expirydate": entity.FieldExpiryDate,
	"expiry":     entity.FieldExpiryDate,
	"賞味期限":       entity.FieldExpiryDate,
	"消費期限":       entity.FieldExpiryDate,
	"期限":         entity.FieldExpiryDate,
}

// canonicalColumns order used for new sheets and for synthesized columns.
var canonicalColumns = []entity.Column{
	{Header: constants.ColumnIcon, Field: entity.FieldIcon},
	{Header: constants.ColumnName, Field: entity.FieldName},
	{Header: constants.ColumnCategory, Field: entity.FieldCategory},
	{Header: constants.ColumnStockCount, Field: entity.FieldStockCount},
	{Header: constants.ColumnReserveCount, Field: entity.FieldReserveCount},
	{Header: constants.ColumnRestockThreshold, Field: entity.FieldRestockThreshold},
	{Header: constants.ColumnExpiryDate, Field: entity.FieldExpiryDate},
}

// CanonicalColumns returns a copy of the canonical header.
func CanonicalColumns() []entity.Column {
	return append([]entity.Column(nil), canonicalColumns...)
}

func normalizeHeaderValue(s string) string {
	s = width.Fold.String(strings.TrimSpace(s))
	s = strings.ToLower(s)
	s = strings.NewReplacer("_", "", "-", "", " ", "", "—", "", "–", "", ".", "", "　", "").Replace(s)
	return s
}

// fieldForHeader resolves a header cell to a field.
func fieldForHeader(header string) entity.Field {
	if f, ok := headerAliases[normalizeHeaderValue(header)]; ok {
		return f
	}
	return entity.FieldUnknown
}

// mapHeader builds the column list for a header row and appends any missing
// canonical columns. A header without a name column is rejected. Unknown
// columns get a positional key when their text is blank or already taken so
// every cell keeps its own Extra slot.
func mapHeader(header []string) ([]entity.Column, error) {
	cols := make([]entity.Column, 0, len(header)+len(canonicalColumns))
	seen := make(map[entity.Field]bool)
	keys := make(map[string]bool)
	for _, raw := range header {
		if h := strings.TrimSpace(raw); h != "" && fieldForHeader(h) == entity.FieldUnknown {
			keys[h] = true
		}
	}
	for i, raw := range header {
		h := strings.TrimSpace(raw)
		field := fieldForHeader(h)
		if field != entity.FieldUnknown && seen[field] {
			// Takroriy ustun - qiymati Extra da saqlanadi
			field = entity.FieldUnknown
		}
		col := entity.Column{Header: raw, Field: field}
		if field != entity.FieldUnknown {
			seen[field] = true
		} else if h == "" || claimed(cols, h) {
			col.Key = positionalKey(i, keys)
		}
		cols = append(cols, col)
	}
	if !seen[entity.FieldName] {
		return nil, fmt.Errorf("header has no name column: %q", header)
	}
	for _, c := range canonicalColumns {
		if !seen[c.Field] {
			cols = append(cols, c)
		}
	}
	return cols, nil
}

// claimed reports whether an earlier unknown column already uses key.
func claimed(cols []entity.Column, key string) bool {
	for _, c := range cols {
		if c.Field == entity.FieldUnknown && c.ExtraKey() == key {
			return true
		}
	}
	return false
}

func positionalKey(i int, keys map[string]bool) string {
	key := fmt.Sprintf("column%d", i+1)
	for keys[key] {
		key += "_"
	}
	keys[key] = true
	return key
}

// DecodeValues turns a sheet value grid into a table. Row 0 is the header.
func DecodeValues(values [][]string) (entity.Table, error) {
	if len(values) == 0 || isBlankRow(values[0]) {
		return entity.Table{Columns: CanonicalColumns(), Items: []entity.Item{}}, nil
	}
	cols, err := mapHeader(values[0])
	if err != nil {
		return entity.Table{}, err
	}
	table := entity.Table{Columns: cols, Items: make([]entity.Item, 0, len(values)-1)}
	for _, row := range values[1:] {
		if isBlankRow(row) {
			continue
		}
		table.Items = append(table.Items, decodeRow(cols, row))
	}
	return table, nil
}

func decodeRow(cols []entity.Column, row []string) entity.Item {
	var item entity.Item
	for i, col := range cols {
		var raw string
		if i < len(row) {
			raw = row[i]
		}
		switch col.Field {
		case entity.FieldIcon:
			item.Icon = strings.TrimSpace(raw)
		case entity.FieldName:
			item.Name = strings.TrimSpace(raw)
		case entity.FieldCategory:
			item.Category = strings.TrimSpace(raw)
		case entity.FieldStockCount:
			item.StockCount = coerceCount(raw)
		case entity.FieldReserveCount:
			item.ReserveCount = coerceCount(raw)
		case entity.FieldRestockThreshold:
			item.RestockThreshold = coerceCount(raw)
		case entity.FieldExpiryDate:
			item.ExpiryDate = strings.TrimSpace(raw)
		default:
			if raw == "" {
				continue
			}
			if item.Extra == nil {
				item.Extra = make(map[string]string)
			}
			item.Extra[col.ExtraKey()] = raw
		}
	}
	return item
}

// EncodeValues header + all rows; counts are written as numbers.
func EncodeValues(table entity.Table) [][]interface{} {
	cols := table.Columns
	if len(cols) == 0 {
		cols = canonicalColumns
	}
	out := make([][]interface{}, 0, len(table.Items)+1)
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c.Header
	}
	out = append(out, header)
	for _, item := range table.Items {
		row := make([]interface{}, len(cols))
		for i, c := range cols {
			switch c.Field {
			case entity.FieldStockCount:
				row[i] = item.StockCount
			case entity.FieldReserveCount:
				row[i] = item.ReserveCount
			case entity.FieldRestockThreshold:
				row[i] = item.RestockThreshold
			default:
				row[i] = c.Value(item)
			}
		}
		out = append(out, row)
	}
	return out
}

// coerceCount: non-numeric or negative cells become 0, never an error.
func coerceCount(raw string) int {
	raw = strings.TrimSpace(width.Fold.String(raw))
	if raw == "" || strings.HasPrefix(raw, "-") {
		return 0
	}
	n, ok := parseInventoryQuantity(raw)
	if !ok {
		return 0
	}
	return n
}

func parseInventoryQuantity(raw string) (int, bool) {
	// Faqat raqamlar va ajratgichlarni qoldiramiz
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == ' ' {
			b.WriteRune(r)
		}
	}
	clean := strings.TrimSpace(b.String())
	if clean == "" {
		return 0, false
	}
	clean = strings.ReplaceAll(clean, " ", "")

	dot := strings.LastIndex(clean, ".")
	comma := strings.LastIndex(clean, ",")

	switch {
	case dot >= 0 && comma >= 0:
		if dot > comma {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.ReplaceAll(clean, ",", ".")
		}
	case dot >= 0:
		if strings.Count(clean, ".") > 1 {
			clean = strings.ReplaceAll(clean, ".", "")
		} else if after := clean[dot+1:]; len(after) == 3 {
			clean = strings.ReplaceAll(clean, ".", "")
		}
	case comma >= 0:
		if strings.Count(clean, ",") > 1 {
			clean = strings.ReplaceAll(clean, ",", "")
		} else if after := clean[comma+1:]; len(after) == 3 {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.ReplaceAll(clean, ",", ".")
		}
	}

	val, err := strconv.ParseFloat(clean, 64)
	if err != nil || val < 0 {
		return 0, false
	}
	return int(val), true
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// interfaceRowsToStrings converts the API's [][]interface{} to strings.
func interfaceRowsToStrings(rows [][]interface{}) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, v := range row {
			switch t := v.(type) {
			case nil:
				cells[j] = ""
			case string:
				cells[j] = t
			case float64:
				cells[j] = strconv.FormatFloat(t, 'f', -1, 64)
			default:
				cells[j] = fmt.Sprint(t)
			}
		}
		out[i] = cells
	}
	return out
}
