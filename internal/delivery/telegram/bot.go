// Package telegram is the chat surface of the pantry: stock list with inline
// buttons, shopping list, manual notes, exports and receipt photos.
package telegram

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/pantry-bot/internal/domain/constants"
	"github.com/yourusername/pantry-bot/internal/domain/repository"
	"github.com/yourusername/pantry-bot/internal/infrastructure/cache"
	"github.com/yourusername/pantry-bot/internal/usecase"
)

// botAPI the part of *tgbotapi.BotAPI the handler uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Options BotHandler bog'liqliklari
type Options struct {
	Inventory  usecase.InventoryUseCase
	Sessions   repository.SessionRepository
	Workers    int
	SessionTTL time.Duration
	HTTPClient *http.Client
}

// BotHandler Telegram bot handler
type BotHandler struct {
	api        botAPI
	inventory  usecase.InventoryUseCase
	sessions   repository.SessionRepository
	httpClient *http.Client
	sessionTTL time.Duration

	// views: "chat:message" -> the rows behind that message's buttons
	views *cache.TTLCache[listView]
	// previews: receipt key -> draft waiting for ✅
	previews *cache.TTLCache[receiptDraft]

	processingMu sync.Mutex
	processing   map[int64]bool

	workerPool *workerPool
}

// listView what a list message shows, so a button press can redraw it.
type listView struct {
	Shopping bool
	Category string
	Refs     []usecase.ItemRef
}

type receiptDraft struct {
	Owner   string
	Preview usecase.ReceiptPreview
}

// NewBotHandler yangi bot handler yaratish
func NewBotHandler(token string, opts Options) (*BotHandler, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return newHandler(api, opts), nil
}

func newHandler(api botAPI, opts Options) *BotHandler {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = constants.DefaultSessionTTL
	}
	h := &BotHandler{
		api:        api,
		inventory:  opts.Inventory,
		sessions:   opts.Sessions,
		httpClient: client,
		sessionTTL: ttl,
		views:      cache.New[listView](ttl, cache.DefaultMaxSize),
		previews:   cache.New[receiptDraft](cache.DefaultTTL, cache.DefaultMaxSize),
		processing: make(map[int64]bool),
	}
	h.workerPool = newWorkerPool(h, opts.Workers)
	return h
}

// sessionKey chat bo'yicha sessiya ID (web cookie'lari bilan to'qnashmaydi)
func sessionKey(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

func viewKey(chatID int64, messageID int) string {
	return fmt.Sprintf("%d:%d", chatID, messageID)
}

// startProcessing bitta chat uchun bitta chek ishlov berilishi
func (h *BotHandler) startProcessing(chatID int64) bool {
	h.processingMu.Lock()
	defer h.processingMu.Unlock()
	if h.processing[chatID] {
		return false
	}
	h.processing[chatID] = true
	return true
}

func (h *BotHandler) endProcessing(chatID int64) {
	h.processingMu.Lock()
	delete(h.processing, chatID)
	h.processingMu.Unlock()
}
