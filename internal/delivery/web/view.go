package web

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/usecase"
	"github.com/yourusername/pantry-bot/pkg/logger"
)

// itemRow one rendered row; Row is the item's index in the sheet.
type itemRow struct {
	Row      int
	Item     entity.Item
	Status   entity.Status
	Expiry   entity.ExpiryStatus
	DaysLeft int
	Flagged  bool
}

type tabView struct {
	Key    string
	Label  string
	Rows   []itemRow
	Active bool
}

type pageData struct {
	Today        string
	StoreLabel   string
	Tabs         []tabView
	ShoppingList []entity.ShoppingEntry
	ManualList   []string
	Expiry       []entity.ExpiryEntry
	Receipt      *receiptView
	Notice       string
	Diagnostics  *Diagnostics
	Credentials  entity.CredentialDiagnostics
	ItemCount    int
	Categories   []string
}

type receiptView struct {
	Key     string
	Text    string
	Matches []entity.ReceiptMatch
}

const allTab = "all"

var templateFuncs = template.FuncMap{
	"statusClass": func(s entity.Status) string { return strings.ToLower(string(s)) },
	"expiryClass": func(s entity.ExpiryStatus) string { return strings.ToLower(string(s)) },
}

// buildTabs turns the sorted snapshot into an "all" tab plus one tab per
// category, in the snapshot's group order.
func buildTabs(snap usecase.Snapshot, active string, flagged map[string]bool, perishable func(string) bool) []tabView {
	// Nom bo'yicha qator indekslari (takroriy nomlar jadval tartibida)
	rowOf := make(map[string][]int)
	for i, item := range snap.Table.Items {
		key := normalizeName(item.Name)
		rowOf[key] = append(rowOf[key], i)
	}

	rows := make([]itemRow, 0, len(snap.Sorted))
	for _, item := range snap.Sorted {
		key := normalizeName(item.Name)
		row := -1
		if q := rowOf[key]; len(q) > 0 {
			row, rowOf[key] = q[0], q[1:]
		}
		days := 0
		if t, ok := item.Expiry(snap.Today.Location()); ok {
			days = usecase.DaysUntil(t, snap.Today)
		}
		rows = append(rows, itemRow{
			Row:      row,
			Item:     item,
			Status:   usecase.Status(item),
			Expiry:   usecase.ExpiryStatus(item, snap.Today, perishable(item.Category)),
			DaysLeft: days,
			Flagged:  flagged[key],
		})
	}

	tabs := []tabView{{Key: allTab, Label: "すべて", Rows: rows}}
	for _, g := range snap.Groups {
		tab := tabView{Key: g.Category, Label: g.Category}
		if g.Category == "" {
			tab.Key, tab.Label = "-", "未分類"
		}
		want := normalizeName(g.Category)
		for _, r := range rows {
			if normalizeName(r.Item.Category) == want {
				tab.Rows = append(tab.Rows, r)
			}
		}
		tabs = append(tabs, tab)
	}

	found := false
	for i := range tabs {
		if tabs[i].Key == active {
			tabs[i].Active = true
			found = true
		}
	}
	if !found {
		tabs[0].Active = true
	}
	return tabs
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *Server) credentialDiagnostics() entity.CredentialDiagnostics {
	if s.credentials == nil {
		return entity.CredentialDiagnostics{}
	}
	return s.credentials()
}

func (s *Server) render(c *gin.Context, status int, data pageData) {
	if data.Today == "" {
		data.Today = time.Now().In(s.loc).Format("2006-01-02")
	}
	data.StoreLabel = s.storeLabel
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(c.Writer, "index.gohtml", data); err != nil {
		logger.ErrorLogger.Printf("❌ Template xatosi: %v", err)
		c.String(http.StatusInternalServerError, "template error: %v", err)
	}
}
