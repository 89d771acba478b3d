package main

import (
	"context"
	"fmt"

	"github.com/yourusername/pantry-bot/config"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/internal/domain/repository"
	"github.com/yourusername/pantry-bot/internal/infrastructure/catalog"
	"github.com/yourusername/pantry-bot/internal/infrastructure/gemini"
	"github.com/yourusername/pantry-bot/internal/infrastructure/metrics"
	"github.com/yourusername/pantry-bot/internal/infrastructure/ocr"
	"github.com/yourusername/pantry-bot/internal/infrastructure/sheets"
	"github.com/yourusername/pantry-bot/internal/infrastructure/storage"
	"github.com/yourusername/pantry-bot/internal/usecase"
	"github.com/yourusername/pantry-bot/pkg/logger"
)

// app every dependency one process needs, built once from config.
type app struct {
	cfg         *config.Config
	metrics     *metrics.Recorder
	inventory   usecase.InventoryUseCase
	sessions    repository.SessionRepository
	credentials func() entity.CredentialDiagnostics
	storeLabel  string
	closers     []func() error
}

// buildApp Dependency Injection: config -> store -> OCR -> use case.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("konfiguratsiya yuklanmadi: %w", err)
	}

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		if cat, err = catalog.Load(cfg.CatalogFile); err != nil {
			return nil, fmt.Errorf("katalog yuklanmadi: %w", err)
		}
	}

	a := &app{cfg: cfg, metrics: metrics.NewRecorder()}

	// 1. Store
	var gateway repository.InventoryGateway
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		seed := entity.Table{}
		if cfg.MemorySeedXLSX != "" {
			if seed, err = storage.LoadXLSXSeed(cfg.MemorySeedXLSX, cfg.Worksheet); err != nil {
				return nil, fmt.Errorf("seed yuklanmadi: %w", err)
			}
		}
		gateway = storage.NewMemoryInventory(seed)
		a.storeLabel = "memory"
		a.credentials = func() entity.CredentialDiagnostics {
			return entity.CredentialDiagnostics{Source: "memory"}
		}
	default:
		creds, source, credErr := cfg.CredentialsBytes()
		if credErr != nil {
			// Lazy gateway reports this on every request instead of exiting.
			logger.ErrorLogger.Printf("⚠️ Credentials o'qilmadi: %v", credErr)
		}
		lazy := sheets.NewLazy(sheets.Config{
			SpreadsheetID: cfg.SpreadsheetID,
			Worksheet:     cfg.Worksheet,
			WriteMode:     sheets.WriteMode(cfg.WriteMode),
			Credentials:   creds,
			Source:        source,
		})
		gateway = lazy
		a.storeLabel = "Google Sheets / " + cfg.Worksheet
		a.credentials = lazy.Diagnostics
	}
	gateway = a.metrics.InstrumentGateway(gateway)
	logger.InfoLogger.Printf("✅ Store tayyor (%s)", a.storeLabel)

	// 2. OCR
	var reader repository.OCRRepository
	switch cfg.OCRDriver {
	case config.OCRDriverGemini:
		client, err := gemini.NewOCRClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("gemini client yaratilmadi: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		reader = client
		logger.InfoLogger.Println("✅ Gemini OCR tayyor")
	case config.OCRDriverSimulated:
		reader = ocr.NewSimulated(cfg.OCRSimulatedDelay, gateway)
		logger.InfoLogger.Printf("✅ Simulyatsiya OCR (delay=%s)", cfg.OCRSimulatedDelay)
	default:
		logger.InfoLogger.Println("ℹ️ OCR o'chirilgan")
	}
	if reader != nil {
		reader = a.metrics.InstrumentOCR(reader)
	}

	// 3. Use case + sessions
	a.inventory = usecase.NewInventoryUseCase(gateway, reader, cat, usecase.WithLocation(cfg.Location()))
	a.sessions = storage.NewMemorySessionRepository(0)
	return a, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			logger.ErrorLogger.Printf("close: %v", err)
		}
	}
}
