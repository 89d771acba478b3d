package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/infrastructure/catalog"
	"github.com/yourusername/pantry-bot/internal/infrastructure/ocr"
	"github.com/yourusername/pantry-bot/internal/infrastructure/storage"
	"github.com/yourusername/pantry-bot/internal/usecase"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testChat int64 = 42

// fakeAPI records everything the handler sends.
type fakeAPI struct {
	mu      sync.Mutex
	nextID  int
	sent    []tgbotapi.Chattable
	answers []tgbotapi.CallbackConfig
	fileURL string
	updates chan tgbotapi.Update
	stopped bool
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: f.nextID, Chat: &tgbotapi.Chat{ID: testChat}}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		f.answers = append(f.answers, cb)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return f.fileURL + "/" + fileID, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

// sentMessage is a sent or edited message plus the id it got.
type sentMessage struct {
	ID     int
	Text   string
	Markup *tgbotapi.InlineKeyboardMarkup
}

func (f *fakeAPI) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for i, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			sm := sentMessage{ID: i + 1, Text: m.Text}
			if kb, ok := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
				sm.Markup = &kb
			}
			out = append(out, sm)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, sentMessage{ID: m.MessageID, Text: m.Text, Markup: m.ReplyMarkup})
		}
	}
	return out
}

func (f *fakeAPI) last() sentMessage {
	msgs := f.messages()
	if len(msgs) == 0 {
		return sentMessage{}
	}
	return msgs[len(msgs)-1]
}

func (f *fakeAPI) lastAnswer() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.answers) == 0 {
		return ""
	}
	return f.answers[len(f.answers)-1].Text
}

func seedTable() entity.Table {
	return entity.Table{Items: []entity.Item{
		{Icon: "🥛", Name: "牛乳", Category: "食品", ReserveCount: 2, RestockThreshold: 1, ExpiryDate: "2000-01-01"},
		{Icon: "🧻", Name: "トイレットペーパー", Category: "日用品", ReserveCount: 0, RestockThreshold: 2},
		{Icon: "🍶", Name: "しょうゆ", Category: "調味料", ReserveCount: 1, RestockThreshold: 1},
	}}
}

type harness struct {
	t     *testing.T
	api   *fakeAPI
	h     *BotHandler
	store *storage.MemoryInventory
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := storage.NewMemoryInventory(seedTable())
	reader := ocr.NewSimulated(0, nil, "しょうゆ 150円 x2", "unknown item 100円")
	api := &fakeAPI{updates: make(chan tgbotapi.Update)}
	h := newHandler(api, Options{
		Inventory: usecase.NewInventoryUseCase(store, reader, catalog.Default()),
		Sessions:  storage.NewMemorySessionRepository(0),
		Workers:   1,
	})
	return &harness{t: t, api: api, h: h, store: store}
}

func command(text string) *tgbotapi.Message {
	length := len(strings.Fields(text)[0])
	return &tgbotapi.Message{
		MessageID: 1000,
		Chat:      &tgbotapi.Chat{ID: testChat, Type: "private"},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func (hs *harness) send(text string) sentMessage {
	hs.h.handleMessage(context.Background(), command(text))
	return hs.api.last()
}

func (hs *harness) press(messageID int, data string) {
	hs.h.handleCallback(context.Background(), &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{MessageID: messageID, Chat: &tgbotapi.Chat{ID: testChat}},
		Data:    data,
	})
}

func (hs *harness) reserveOf(name string) int {
	table, err := hs.store.ReadAll(context.Background())
	require.NoError(hs.t, err)
	idx := table.IndexOf(name)
	require.GreaterOrEqual(hs.t, idx, 0, "item %q", name)
	return table.Items[idx].ReserveCount
}

// buttonData finds the callback data of the first button whose data starts
// with prefix on the given row.
func buttonData(t *testing.T, markup *tgbotapi.InlineKeyboardMarkup, row int, prefix string) string {
	t.Helper()
	require.NotNil(t, markup)
	require.Less(t, row, len(markup.InlineKeyboard))
	for _, b := range markup.InlineKeyboard[row] {
		if b.CallbackData != nil && strings.HasPrefix(*b.CallbackData, prefix) {
			return *b.CallbackData
		}
	}
	t.Fatalf("no %q button on row %d", prefix, row)
	return ""
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data, action, arg string
	}{
		{"inv_dec|3", cbDecrement, "3"},
		{"rcpt_apply|abc|def", cbReceiptApply, "abc|def"},
		{"noop", cbNoop, ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		action, arg := parseCallback(tt.data)
		assert.Equal(t, tt.action, action, tt.data)
		assert.Equal(t, tt.arg, arg, tt.data)
	}
	_, ok := parseIndex("5", 3)
	assert.False(t, ok)
	_, ok = parseIndex("-1", 3)
	assert.False(t, ok)
	i, ok := parseIndex("2", 3)
	assert.True(t, ok)
	assert.Equal(t, 2, i)
}

func TestParseAddArgs(t *testing.T) {
	item, err := parseAddArgs("牛乳 | 食品 | 2 | 1 | 2026-10-25 | 🥛")
	require.NoError(t, err)
	assert.Equal(t, entity.Item{Name: "牛乳", Category: "食品", RestockThreshold: 2, ReserveCount: 1, ExpiryDate: "2026-10-25", Icon: "🥛"}, item)

	item, err = parseAddArgs("洗剤")
	require.NoError(t, err)
	assert.Equal(t, "洗剤", item.Name)
	assert.Zero(t, item.RestockThreshold)

	for _, bad := range []string{"", "|食品", "x|y|two", "x|y|1|-1", "x|y|1|1|someday"} {
		_, err := parseAddArgs(bad)
		assert.Error(t, err, bad)
	}
}

func TestRefsFor_DuplicateNamesTakeRowsInOrder(t *testing.T) {
	table := entity.Table{Items: []entity.Item{{Name: "a"}, {Name: "b"}, {Name: "a"}}}
	refs := refsFor(table, []entity.Item{{Name: "a"}, {Name: "a"}, {Name: "b"}})
	assert.Equal(t, []usecase.ItemRef{{Row: 0, Name: "a"}, {Row: 2, Name: "a"}, {Row: 1, Name: "b"}}, refs)
}

func TestSplitIntoChunks(t *testing.T) {
	assert.Equal(t, []string{"あい", "う"}, splitIntoChunks("あいう", 2))
	assert.Equal(t, []string{"abc"}, splitIntoChunks("abc", 0))
}

func TestStockCommand_ButtonsChangeTheRightRow(t *testing.T) {
	hs := newHarness(t)
	msg := hs.send("/stock")
	assert.Contains(t, msg.Text, "🧻 トイレットペーパー")
	require.NotNil(t, msg.Markup)
	require.Len(t, msg.Markup.InlineKeyboard, 3)

	// OUT first, so row 0 is the toilet paper.
	hs.press(msg.ID, buttonData(t, msg.Markup, 0, cbIncrement))
	assert.Equal(t, 1, hs.reserveOf("トイレットペーパー"))
	assert.Equal(t, "トイレットペーパー: 1", hs.api.lastAnswer())

	edited := hs.api.last()
	assert.Equal(t, msg.ID, edited.ID)
	assert.Contains(t, edited.Text, "予備 1 / 補充 2")

	// The redraw keeps the buttons pointing at rows.
	hs.press(msg.ID, buttonData(t, edited.Markup, 0, cbDecrement))
	assert.Equal(t, 0, hs.reserveOf("トイレットペーパー"))
}

func TestStockCommand_CategoryFilter(t *testing.T) {
	hs := newHarness(t)
	msg := hs.send("/stock 食品")
	assert.Contains(t, msg.Text, "牛乳")
	assert.NotContains(t, msg.Text, "しょうゆ")
	require.Len(t, msg.Markup.InlineKeyboard, 1)

	hs.press(msg.ID, buttonData(t, msg.Markup, 0, cbPurchase))
	assert.Equal(t, 1, hs.reserveOf("牛乳"))
}

func TestCallback_UnknownViewIsRejected(t *testing.T) {
	hs := newHarness(t)
	hs.press(999, "inv_inc|0")
	assert.Contains(t, hs.api.lastAnswer(), "/stock")
	assert.Equal(t, 0, hs.reserveOf("トイレットペーパー"))
}

func TestBuyCommand_ShowsFlagsAndNotes(t *testing.T) {
	hs := newHarness(t)
	hs.send("/note 卵")
	assert.Contains(t, hs.send("/note 電池").Text, "2. 電池")
	assert.Contains(t, hs.send("/low 牛乳").Text, "🚩")

	msg := hs.send("/buy")
	assert.Contains(t, msg.Text, "🥛 牛乳")
	assert.Contains(t, msg.Text, "🚩")
	assert.Contains(t, msg.Text, "1. 卵")

	assert.NotContains(t, hs.send("/note del 1").Text, "卵")
	assert.Contains(t, hs.send("/note clear").Text, "空")
	assert.Contains(t, hs.send("/low 牛乳").Text, "外しました")
}

func TestBuyCommand_PurchaseRedrawsShoppingList(t *testing.T) {
	hs := newHarness(t)
	msg := hs.send("/buy")
	require.NotNil(t, msg.Markup)
	hs.press(msg.ID, buttonData(t, msg.Markup, 0, cbPurchase))

	assert.Equal(t, 2, hs.reserveOf("トイレットペーパー"))
	edited := hs.api.last()
	assert.Equal(t, msg.ID, edited.ID)
	assert.Contains(t, edited.Text, "🛒")
	assert.NotContains(t, edited.Text, "トイレットペーパー")
}

func TestAddCommand(t *testing.T) {
	hs := newHarness(t)
	assert.Contains(t, hs.send("/add 洗剤|日用品|1|0").Text, "追加しました")
	assert.Equal(t, 0, hs.reserveOf("洗剤"))
	assert.Contains(t, hs.send("/add").Text, "例:")
}

func TestExportCommand_SendsDocument(t *testing.T) {
	hs := newHarness(t)
	hs.send("/export xlsx")

	hs.api.mu.Lock()
	defer hs.api.mu.Unlock()
	require.NotEmpty(t, hs.api.sent)
	doc, ok := hs.api.sent[len(hs.api.sent)-1].(tgbotapi.DocumentConfig)
	require.True(t, ok, "want a document, got %T", hs.api.sent[len(hs.api.sent)-1])
	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(file.Name, ".xlsx"), file.Name)
	assert.NotEmpty(t, file.Bytes)
}

func TestExportCommand_UnknownFormat(t *testing.T) {
	hs := newHarness(t)
	assert.Contains(t, hs.send("/export pdf").Text, "csv か xlsx")
}

func TestErrorText(t *testing.T) {
	assert.Contains(t, errorText(entity.NewGatewayError("write", entity.ErrWrite, assert.AnError)), "保存に失敗")
	assert.Contains(t, errorText(entity.NewGatewayError("connect", entity.ErrAuth, assert.AnError)), "認証エラー")
	assert.Contains(t, errorText(usecase.ErrItemNotFound), "/stock")
	assert.Contains(t, errorText(assert.AnError), "予期しない")
}

func TestReceiptPhoto_PreviewThenApply(t *testing.T) {
	hs := newHarness(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("\xff\xd8\xff\xe0 fake jpeg"))
	}))
	defer srv.Close()
	hs.api.fileURL = srv.URL

	ctx, cancel := context.WithCancel(context.Background())
	hs.h.workerPool.start(ctx)
	defer func() {
		cancel()
		hs.h.workerPool.shutdown()
	}()

	hs.h.handleMessage(ctx, &tgbotapi.Message{
		MessageID: 5,
		Chat:      &tgbotapi.Chat{ID: testChat},
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", Width: 90, Height: 90},
			{FileID: "large", Width: 1280, Height: 960},
		},
	})

	var preview sentMessage
	require.Eventually(t, func() bool {
		preview = hs.api.last()
		return preview.Markup != nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, preview.Text, "しょうゆ  +2")
	assert.NotContains(t, preview.Text, "unknown")

	apply := buttonData(t, preview.Markup, 0, cbReceiptApply)
	hs.press(preview.ID, apply)
	assert.Equal(t, 3, hs.reserveOf("しょうゆ"))
	assert.Contains(t, hs.api.last().Text, "1件を在庫に反映")

	// A second press finds nothing to apply.
	hs.press(preview.ID, apply)
	assert.Equal(t, 3, hs.reserveOf("しょうゆ"))
	assert.Contains(t, hs.api.lastAnswer(), "期限切れ")
}

func TestReceiptFile(t *testing.T) {
	id, mime, ok := receiptFile(&tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc", MimeType: "image/png"}})
	assert.True(t, ok)
	assert.Equal(t, "doc", id)
	assert.Equal(t, "image/png", mime)

	_, _, ok = receiptFile(&tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc", MimeType: "application/pdf"}})
	assert.False(t, ok)
}

func TestWorkerPool_RateLimitPerChat(t *testing.T) {
	wp := newWorkerPool(nil, 1)
	for i := 0; i < receiptBurst; i++ {
		assert.True(t, wp.allow(1))
	}
	assert.False(t, wp.allow(1))
	assert.True(t, wp.allow(2))

	assert.Equal(t, 2, wp.evictIdle(time.Now().Add(rateLimiterMaxIdleTime+time.Minute)))
}

func TestWorkerPool_SubmitAfterShutdown(t *testing.T) {
	wp := newWorkerPool(nil, 1)
	wp.shutdown()
	assert.False(t, wp.submit(receiptJob{chatID: 1}))
	wp.shutdown()
}

func TestStart_HandlesUpdatesUntilCancelled(t *testing.T) {
	hs := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hs.h.Start(ctx) }()

	hs.api.updates <- tgbotapi.Update{UpdateID: 1, Message: command("/help")}
	require.Eventually(t, func() bool {
		return strings.Contains(hs.api.last().Text, "/stock")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return")
	}
	hs.api.mu.Lock()
	assert.True(t, hs.api.stopped)
	hs.api.mu.Unlock()
}
