package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/infrastructure/catalog"
)

type stubGateway struct {
	table    entity.Table
	readErr  error
	writeErr error
	writes   int
}

func (s *stubGateway) ReadAll(ctx context.Context) (entity.Table, error) {
	if s.readErr != nil {
		return entity.Table{}, s.readErr
	}
	return s.table.Clone(), nil
}

func (s *stubGateway) WriteAll(ctx context.Context, table entity.Table) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes++
	s.table = table.Clone()
	return nil
}

type stubOCR struct {
	text string
	err  error
}

func (s stubOCR) ReadText(ctx context.Context, image []byte, mimeType string) (string, error) {
	return s.text, s.err
}

func newStubGateway() *stubGateway {
	return &stubGateway{table: entity.Table{
		Columns: []entity.Column{
			{Header: "name", Field: entity.FieldName},
			{Header: "category", Field: entity.FieldCategory},
			{Header: "reserveCount", Field: entity.FieldReserveCount},
			{Header: "restockThreshold", Field: entity.FieldRestockThreshold},
			{Header: "expiryDate", Field: entity.FieldExpiryDate},
		},
		Items: []entity.Item{
			{Name: "しょうゆ", Category: "調味料", ReserveCount: 0, RestockThreshold: 1},
			{Name: "牛乳", Category: "食品", ReserveCount: 2, RestockThreshold: 1, ExpiryDate: "2026-10-20"},
			{Name: "洗剤", Category: "日用品", ReserveCount: 1, RestockThreshold: 5},
		},
	}}
}

func newTestUseCase(gw *stubGateway, ocr stubOCR) *inventoryUseCase {
	uc := NewInventoryUseCase(gw, ocr, catalog.Default()).(*inventoryUseCase)
	uc.now = func() time.Time { return time.Date(2026, 10, 18, 10, 0, 0, 0, time.Local) }
	return uc
}

func TestSnapshot_TodayInConfiguredZone(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	uc := NewInventoryUseCase(newStubGateway(), stubOCR{}, catalog.Default(), WithLocation(jst)).(*inventoryUseCase)
	uc.now = func() time.Time { return time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC) }

	snap, err := uc.Snapshot(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, jst, snap.Today.Location())
	assert.Equal(t, 19, snap.Today.Day())
}

func TestSnapshot(t *testing.T) {
	uc := newTestUseCase(newStubGateway(), stubOCR{})
	snap, err := uc.Snapshot(context.Background(), map[string]bool{"牛乳": true})
	require.NoError(t, err)

	assert.Len(t, snap.ShoppingList, 3, "two non-OK items plus one flagged OK item")
	assert.Equal(t, "しょうゆ", snap.Sorted[0].Name)
	require.Len(t, snap.Expiry, 1)
	assert.Equal(t, entity.ExpiryCritical, snap.Expiry[0].Status)
}

func TestAdjust_ClampsAndWrites(t *testing.T) {
	gw := newStubGateway()
	uc := newTestUseCase(gw, stubOCR{})

	item, err := uc.Adjust(context.Background(), ItemRef{Row: 0, Name: "しょうゆ"}, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, item.ReserveCount)

	item, err = uc.Adjust(context.Background(), ItemRef{Row: 0, Name: "しょうゆ"}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, item.ReserveCount)
	assert.Equal(t, 2, gw.writes)
	assert.Equal(t, 1, gw.table.Items[0].ReserveCount)
}

func TestAdjust_StaleRowFallsBackToName(t *testing.T) {
	gw := newStubGateway()
	uc := newTestUseCase(gw, stubOCR{})

	// row 0 is しょうゆ, but the click said 洗剤
	item, err := uc.Adjust(context.Background(), ItemRef{Row: 0, Name: "洗剤"}, 2)
	require.NoError(t, err)
	assert.Equal(t, "洗剤", item.Name)
	assert.Equal(t, 3, gw.table.Items[2].ReserveCount)
	assert.Equal(t, 0, gw.table.Items[0].ReserveCount)
}

func TestAdjust_UnknownItem(t *testing.T) {
	uc := newTestUseCase(newStubGateway(), stubOCR{})
	_, err := uc.Adjust(context.Background(), ItemRef{Row: -1, Name: "nope"}, 1)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestMarkPurchased(t *testing.T) {
	gw := newStubGateway()
	uc := newTestUseCase(gw, stubOCR{})

	item, err := uc.MarkPurchased(context.Background(), ItemRef{Row: 2, Name: "洗剤"})
	require.NoError(t, err)
	assert.Equal(t, 5, item.ReserveCount)
}

func TestWriteErrorSurfaces(t *testing.T) {
	gw := newStubGateway()
	gw.writeErr = entity.NewGatewayError("write", entity.ErrWrite, errors.New("quota"))
	uc := newTestUseCase(gw, stubOCR{})

	_, err := uc.Adjust(context.Background(), ItemRef{Row: 0, Name: "しょうゆ"}, 1)
	assert.ErrorIs(t, err, entity.ErrWrite)
}

func TestAddItem(t *testing.T) {
	gw := newStubGateway()
	uc := newTestUseCase(gw, stubOCR{})

	item, err := uc.AddItem(context.Background(), entity.Item{Name: "  卵 ", Category: "食品", ReserveCount: -2, RestockThreshold: 1})
	require.NoError(t, err)
	assert.Equal(t, "卵", item.Name)
	assert.Equal(t, 0, item.ReserveCount)
	assert.NotEmpty(t, item.Icon, "icon taken from the category")
	assert.Len(t, gw.table.Items, 4)

	_, err = uc.AddItem(context.Background(), entity.Item{Name: " "})
	assert.Error(t, err)
}

func TestPreviewAndApplyReceipt(t *testing.T) {
	gw := newStubGateway()
	uc := newTestUseCase(gw, stubOCR{text: "しょうゆ 150円 x2\nunknown item\n洗剤 2個"})

	preview, err := uc.PreviewReceipt(context.Background(), []byte{0xff, 0xd8}, "image/jpeg")
	require.NoError(t, err)
	require.Len(t, preview.Matches, 2)
	assert.Equal(t, 0, gw.writes, "preview never writes")

	res, err := uc.ApplyReceipt(context.Background(), append(preview.Matches, entity.ReceiptMatch{Name: "ghost", Quantity: 1}))
	require.NoError(t, err)
	assert.Len(t, res.Applied, 2)
	assert.Len(t, res.Skipped, 1)
	assert.Equal(t, 2, gw.table.Items[0].ReserveCount)
	assert.Equal(t, 3, gw.table.Items[2].ReserveCount)
	assert.Equal(t, 1, gw.writes)
}

func TestPreviewReceipt_OCRFailures(t *testing.T) {
	ctx := context.Background()

	_, err := newTestUseCase(newStubGateway(), stubOCR{err: errors.New("timeout")}).PreviewReceipt(ctx, []byte{1}, "image/png")
	assert.ErrorIs(t, err, entity.ErrOCR)

	_, err = newTestUseCase(newStubGateway(), stubOCR{text: "  "}).PreviewReceipt(ctx, []byte{1}, "image/png")
	assert.ErrorIs(t, err, entity.ErrOCR)

	_, err = newTestUseCase(newStubGateway(), stubOCR{text: "x"}).PreviewReceipt(ctx, nil, "image/png")
	assert.ErrorIs(t, err, entity.ErrOCR)

	uc := NewInventoryUseCase(newStubGateway(), nil, nil)
	_, err = uc.PreviewReceipt(ctx, []byte{1}, "image/png")
	assert.ErrorIs(t, err, entity.ErrOCR)
}

func TestExport(t *testing.T) {
	uc := newTestUseCase(newStubGateway(), stubOCR{})

	data, name, err := uc.Export(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "inventory_20261018_100000.csv", name)
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(data), "しょうゆ,調味料,0,1,,OUT")

	_, name, err = uc.Export(context.Background(), "XLSX")
	require.NoError(t, err)
	assert.Equal(t, "inventory_20261018_100000.xlsx", name)

	_, _, err = uc.Export(context.Background(), "pdf")
	assert.Error(t, err)
}

func TestReadErrorPropagates(t *testing.T) {
	gw := newStubGateway()
	gw.readErr = entity.NewGatewayError("read", entity.ErrRead, errors.New("bad header"))
	uc := newTestUseCase(gw, stubOCR{})

	_, err := uc.Snapshot(context.Background(), nil)
	assert.ErrorIs(t, err, entity.ErrRead)
}
