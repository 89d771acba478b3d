// Package web serves the household inventory dashboard.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/pantry-bot/internal/domain/constants"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/domain/repository"
	"github.com/yourusername/pantry-bot/internal/infrastructure/cache"
	"github.com/yourusername/pantry-bot/internal/infrastructure/metrics"
	"github.com/yourusername/pantry-bot/internal/usecase"
	"github.com/yourusername/pantry-bot/pkg/logger"
)

//go:embed templates/*
var templateFS embed.FS

// Options web server bog'liqliklari
type Options struct {
	Inventory   usecase.InventoryUseCase
	Sessions    repository.SessionRepository
	Metrics     *metrics.Recorder
	Credentials func() entity.CredentialDiagnostics
	StoreLabel  string
	CORSOrigins []string
	SessionTTL  time.Duration
	Location    *time.Location
}

// Server HTTP handlerlar to'plami
type Server struct {
	inventory   usecase.InventoryUseCase
	sessions    repository.SessionRepository
	metrics     *metrics.Recorder
	credentials func() entity.CredentialDiagnostics
	storeLabel  string
	corsOrigins []string
	sessionTTL  time.Duration
	loc         *time.Location

	templates *template.Template
	previews  *cache.TTLCache[receiptDraft]
	flashes   *cache.TTLCache[flash]
}

// receiptDraft a scanned receipt waiting for confirmation.
type receiptDraft struct {
	Owner   string
	Preview usecase.ReceiptPreview
}

type flash struct {
	Notice      string
	Diagnostics *Diagnostics
}

// New parses the embedded templates once.
func New(opts Options) (*Server, error) {
	if opts.Inventory == nil || opts.Sessions == nil {
		return nil, fmt.Errorf("web: inventory and sessions are required")
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = constants.DefaultSessionTTL
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	tmpl, err := template.New("index.gohtml").Funcs(templateFuncs).ParseFS(templateFS, "templates/index.gohtml")
	if err != nil {
		return nil, err
	}
	return &Server{
		inventory:   opts.Inventory,
		sessions:    opts.Sessions,
		metrics:     opts.Metrics,
		credentials: opts.Credentials,
		storeLabel:  opts.StoreLabel,
		corsOrigins: opts.CORSOrigins,
		sessionTTL:  opts.SessionTTL,
		loc:         opts.Location,
		templates:   tmpl,
		previews:    cache.New[receiptDraft](cache.DefaultTTL, cache.DefaultMaxSize),
		flashes:     cache.New[flash](time.Minute, 1000),
	}, nil
}

// Handler builds the gin engine with every route.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.MaxMultipartMemory = constants.MaxReceiptUploadSize
	r.Use(s.requestLogger(), s.recoverToDiagnostics(), s.observe(), s.sessionMiddleware())

	r.GET("/", s.index)
	r.POST("/items", s.addItem)
	r.POST("/items/adjust", s.adjust)
	r.POST("/items/purchase", s.purchase)
	r.POST("/flags", s.setFlag)
	r.POST("/manual", s.addManual)
	r.POST("/manual/delete", s.removeManual)
	r.POST("/manual/clear", s.clearManual)
	r.POST("/receipt", s.scanReceipt)
	r.POST("/receipt/apply", s.applyReceipt)
	r.GET("/export/:format", s.export)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("/api")
	if len(s.corsOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins: s.corsOrigins,
			AllowMethods: []string{"GET", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	api.GET("/inventory", s.apiInventory)

	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	return r
}

// RunJanitor removes idle sessions and stale previews until ctx ends.
func (s *Server) RunJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = 10 * time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions := s.sessions.Cleanup(ctx, s.sessionTTL)
			previews := s.previews.Purge()
			s.flashes.Purge()
			if sessions > 0 || previews > 0 {
				logger.InfoLogger.Printf("🧹 Tozalandi: %d sessiya, %d chek", sessions, previews)
			}
		}
	}
}
