package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/pantry-bot/internal/domain/constants"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/infrastructure/cache"
	"github.com/yourusername/pantry-bot/internal/usecase"
	"github.com/yourusername/pantry-bot/pkg/logger"
)

// index is the whole read-render cycle: session, snapshot, page.
func (s *Server) index(c *gin.Context) {
	ctx := c.Request.Context()
	data := pageData{Credentials: s.credentialDiagnostics()}

	if f, ok := s.flashes.Take(sessionID(c)); ok {
		data.Notice = f.Notice
		data.Diagnostics = f.Diagnostics
	}

	sess, err := s.sessions.Get(ctx, sessionID(c))
	if err != nil {
		d := diagnose(err)
		data.Diagnostics = &d
		s.render(c, http.StatusOK, data)
		return
	}
	data.ManualList = sess.ManualList

	snap, err := s.inventory.Snapshot(ctx, sess.LowFlags)
	if err != nil {
		logger.ErrorLogger.Printf("❌ Inventar o'qilmadi: %v", err)
		d := diagnose(err)
		if data.Diagnostics == nil {
			data.Diagnostics = &d
		}
		s.render(c, http.StatusOK, data)
		return
	}

	data.Today = snap.Today.In(s.loc).Format("2006-01-02")
	data.Tabs = buildTabs(snap, c.Query("tab"), sess.LowFlags, s.inventory.IsPerishable)
	data.ShoppingList = snap.ShoppingList
	data.Expiry = snap.Expiry
	data.ItemCount = len(snap.Table.Items)
	for _, g := range snap.Groups {
		if g.Category != "" {
			data.Categories = append(data.Categories, g.Category)
		}
	}
	if key := c.Query("receipt"); key != "" {
		if draft, ok := s.previews.Get(key); ok && draft.Owner == sessionID(c) {
			data.Receipt = &receiptView{Key: key, Text: draft.Preview.Text, Matches: draft.Preview.Matches}
		}
	}
	if s.metrics != nil {
		counts := make(map[entity.Status]int)
		for _, item := range snap.Table.Items {
			counts[usecase.Status(item)]++
		}
		s.metrics.SetStatusCounts(counts)
	}
	s.render(c, http.StatusOK, data)
}

// redirectHome PRG: flash ni saqlab bosh sahifaga qaytarish
func (s *Server) redirectHome(c *gin.Context, notice string, err error, query url.Values) {
	f := flash{Notice: notice}
	if err != nil {
		d := diagnose(err)
		f.Diagnostics = &d
	}
	if f.Notice != "" || f.Diagnostics != nil {
		s.flashes.Set(sessionID(c), f)
	}
	if query == nil {
		query = url.Values{}
	}
	if tab := c.PostForm("tab"); tab != "" && query.Get("tab") == "" {
		query.Set("tab", tab)
	}
	target := "/"
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	c.Redirect(http.StatusSeeOther, target)
}

func itemRefFromForm(c *gin.Context) usecase.ItemRef {
	row, err := strconv.Atoi(c.PostForm("row"))
	if err != nil {
		row = -1
	}
	return usecase.ItemRef{Row: row, Name: c.PostForm("name")}
}

func (s *Server) adjust(c *gin.Context) {
	delta, err := strconv.Atoi(c.PostForm("delta"))
	if err != nil || delta == 0 {
		s.redirectHome(c, "", fmt.Errorf("invalid delta %q", c.PostForm("delta")), nil)
		return
	}
	item, err := s.inventory.Adjust(c.Request.Context(), itemRefFromForm(c), delta)
	if err != nil {
		s.redirectHome(c, "", err, nil)
		return
	}
	s.redirectHome(c, fmt.Sprintf("%s の予備数を %d にしました", item.Name, item.ReserveCount), nil, nil)
}

func (s *Server) purchase(c *gin.Context) {
	item, err := s.inventory.MarkPurchased(c.Request.Context(), itemRefFromForm(c))
	if err != nil {
		s.redirectHome(c, "", err, nil)
		return
	}
	s.redirectHome(c, fmt.Sprintf("✓ %s を購入済みにしました (予備数 %d)", item.Name, item.ReserveCount), nil, nil)
}

type addItemForm struct {
	Icon             string `form:"icon"`
	Name             string `form:"name" binding:"required"`
	Category         string `form:"category"`
	StockCount       int    `form:"stockCount" binding:"min=0"`
	ReserveCount     int    `form:"reserveCount" binding:"min=0"`
	RestockThreshold int    `form:"restockThreshold" binding:"min=0"`
	ExpiryDate       string `form:"expiryDate"`
}

func (s *Server) addItem(c *gin.Context) {
	var form addItemForm
	if err := c.ShouldBind(&form); err != nil {
		s.redirectHome(c, "", fmt.Errorf("入力内容を確認してください: %w", err), nil)
		return
	}
	item, err := s.inventory.AddItem(c.Request.Context(), entity.Item{
		Icon:             form.Icon,
		Name:             form.Name,
		Category:         form.Category,
		StockCount:       form.StockCount,
		ReserveCount:     form.ReserveCount,
		RestockThreshold: form.RestockThreshold,
		ExpiryDate:       form.ExpiryDate,
	})
	if err != nil {
		s.redirectHome(c, "", err, nil)
		return
	}
	s.redirectHome(c, fmt.Sprintf("➕ %s を追加しました", item.DisplayName()), nil, nil)
}

func (s *Server) setFlag(c *gin.Context) {
	low := c.PostForm("low") == "1"
	if _, err := s.sessions.SetLowFlag(c.Request.Context(), sessionID(c), c.PostForm("name"), low); err != nil {
		s.redirectHome(c, "", err, nil)
		return
	}
	s.redirectHome(c, "", nil, nil)
}

func (s *Server) addManual(c *gin.Context) {
	if _, err := s.sessions.AddManual(c.Request.Context(), sessionID(c), c.PostForm("entry")); err != nil {
		s.redirectHome(c, "", err, nil)
		return
	}
	s.redirectHome(c, "", nil, nil)
}

func (s *Server) removeManual(c *gin.Context) {
	index, err := strconv.Atoi(c.PostForm("index"))
	if err == nil {
		_, err = s.sessions.RemoveManual(c.Request.Context(), sessionID(c), index)
	}
	s.redirectHome(c, "", err, nil)
}

func (s *Server) clearManual(c *gin.Context) {
	_, err := s.sessions.ClearManual(c.Request.Context(), sessionID(c))
	s.redirectHome(c, "", err, nil)
}

// scanReceipt runs OCR and matching, then parks the result for confirmation.
// Nothing is written here.
func (s *Server) scanReceipt(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxReceiptUploadSize)
	fh, err := c.FormFile("receipt")
	if err != nil {
		s.redirectHome(c, "", entity.NewGatewayError("upload", entity.ErrOCR, err), nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.redirectHome(c, "", entity.NewGatewayError("upload", entity.ErrOCR, err), nil)
		return
	}
	defer f.Close()
	image, err := io.ReadAll(io.LimitReader(f, constants.MaxReceiptUploadSize))
	if err != nil {
		s.redirectHome(c, "", entity.NewGatewayError("upload", entity.ErrOCR, err), nil)
		return
	}

	mimeType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(image)
	}

	key := cache.Key(sessionID(c), image)
	if _, ok := s.previews.Get(key); !ok {
		preview, err := s.inventory.PreviewReceipt(c.Request.Context(), image, mimeType)
		if err != nil {
			s.redirectHome(c, "", err, nil)
			return
		}
		s.previews.Set(key, receiptDraft{Owner: sessionID(c), Preview: preview})
	}
	s.redirectHome(c, "", nil, url.Values{"receipt": {key}})
}

// applyReceipt writes the confirmed matches; quantities may be edited and
// rows unticked in the preview form.
func (s *Server) applyReceipt(c *gin.Context) {
	key := c.PostForm("key")
	draft, ok := s.previews.Get(key)
	if !ok || draft.Owner != sessionID(c) {
		s.redirectHome(c, "", errors.New("レシートの確認期限が切れました。もう一度アップロードしてください"), nil)
		return
	}

	var confirmed []entity.ReceiptMatch
	for i, m := range draft.Preview.Matches {
		if c.PostForm(fmt.Sprintf("use_%d", i)) != "1" {
			continue
		}
		if q, err := strconv.Atoi(c.PostForm(fmt.Sprintf("qty_%d", i))); err == nil {
			m.Quantity = q
		}
		confirmed = append(confirmed, m)
	}

	res, err := s.inventory.ApplyReceipt(c.Request.Context(), confirmed)
	if err != nil {
		s.redirectHome(c, "", err, url.Values{"receipt": {key}})
		return
	}
	s.previews.Delete(key)
	s.redirectHome(c, fmt.Sprintf("🧾 %d 件を補充しました", len(res.Applied)), nil, nil)
}

func (s *Server) export(c *gin.Context) {
	data, filename, err := s.inventory.Export(c.Request.Context(), c.Param("format"))
	if err != nil {
		s.redirectHome(c, "", err, nil)
		return
	}
	contentType := "text/csv; charset=utf-8"
	if strings.HasSuffix(filename, ".xlsx") {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

type apiItem struct {
	Row    int                 `json:"row"`
	Item   entity.Item         `json:"item"`
	Status entity.Status       `json:"status"`
	Expiry entity.ExpiryStatus `json:"expiry_status"`
}

func (s *Server) apiInventory(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := s.sessions.Get(ctx, sessionID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	snap, err := s.inventory.Snapshot(ctx, sess.LowFlags)
	if err != nil {
		d := diagnose(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": d.Title, "kind": d.Kind, "detail": d.Message})
		return
	}
	items := make([]apiItem, 0, len(snap.Table.Items))
	for i, item := range snap.Table.Items {
		items = append(items, apiItem{
			Row:    i,
			Item:   item,
			Status: usecase.Status(item),
			Expiry: usecase.ExpiryStatus(item, snap.Today, s.inventory.IsPerishable(item.Category)),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"items":         items,
		"shopping_list": snap.ShoppingList,
		"expiry":        snap.Expiry,
		"manual_list":   sess.ManualList,
	})
}
