package entity

import (
	"strconv"
	"strings"
)

// Field identifies which Item attribute a sheet column carries.
type Field int

const (
	FieldUnknown Field = iota
	FieldIcon
	FieldName
	FieldCategory
	FieldStockCount
	FieldReserveCount
	FieldRestockThreshold
	FieldExpiryDate
)

// Column jadval sarlavhasidagi ustun. Header is the sheet text as read and is
// written back unchanged; Key names the Item.Extra slot of an unknown column
// when the header text is blank or repeated.
type Column struct {
	Header string `json:"header"`
	Field  Field  `json:"field"`
	Key    string `json:"key,omitempty"`
}

// ExtraKey Item.Extra kaliti
func (c Column) ExtraKey() string {
	if c.Key != "" {
		return c.Key
	}
	return strings.TrimSpace(c.Header)
}

// Table ordered inventory rows plus the header they were read with.
type Table struct {
	Columns []Column `json:"columns"`
	Items   []Item   `json:"items"`
}

// Clone deep-copies the table so handlers can mutate freely.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]Column(nil), t.Columns...),
		Items:   make([]Item, len(t.Items)),
	}
	for i, item := range t.Items {
		out.Items[i] = item.Clone()
	}
	return out
}

// IndexOf returns the first row whose name matches (trimmed, case-insensitive), or -1.
func (t Table) IndexOf(name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return -1
	}
	for i, item := range t.Items {
		if strings.ToLower(strings.TrimSpace(item.Name)) == want {
			return i
		}
	}
	return -1
}

// Names mahsulot nomlari (jadval tartibida, bo'shlari tashlab)
func (t Table) Names() []string {
	out := make([]string, 0, len(t.Items))
	for _, item := range t.Items {
		if name := strings.TrimSpace(item.Name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Headers sarlavha matnlari
func (t Table) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = col.Header
	}
	return out
}

// Value renders the column's cell for item as sheet text.
func (c Column) Value(item Item) string {
	switch c.Field {
	case FieldIcon:
		return item.Icon
	case FieldName:
		return item.Name
	case FieldCategory:
		return item.Category
	case FieldStockCount:
		return strconv.Itoa(item.StockCount)
	case FieldReserveCount:
		return strconv.Itoa(item.ReserveCount)
	case FieldRestockThreshold:
		return strconv.Itoa(item.RestockThreshold)
	case FieldExpiryDate:
		return item.ExpiryDate
	default:
		return item.Extra[c.ExtraKey()]
	}
}

// IsCount reports whether the column holds an integer count.
func (c Column) IsCount() bool {
	return c.Field == FieldStockCount || c.Field == FieldReserveCount || c.Field == FieldRestockThreshold
}
