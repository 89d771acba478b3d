package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourusername/pantry-bot/internal/delivery/telegram"
	"github.com/yourusername/pantry-bot/internal/delivery/web"
	"github.com/yourusername/pantry-bot/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the inventory page",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServices(true, false)
	},
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServices(false, true)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web page and the Telegram bot together",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServices(true, true)
	},
}

// runServices starts the requested surfaces and blocks until a signal.
func runServices(withWeb, withBot bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.InfoLogger.Println("🚀 Ilova ishga tushmoqda...")
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if withBot && a.cfg.TelegramToken == "" {
		if !withWeb {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable bo'sh")
		}
		logger.InfoLogger.Println("ℹ️ TELEGRAM_BOT_TOKEN bo'sh, bot ishga tushmaydi")
		withBot = false
	}

	g, ctx := errgroup.WithContext(ctx)
	if withWeb {
		srv, err := web.New(web.Options{
			Inventory:   a.inventory,
			Sessions:    a.sessions,
			Metrics:     a.metrics,
			Credentials: a.credentials,
			StoreLabel:  a.storeLabel,
			CORSOrigins: a.cfg.CORSOrigins,
			SessionTTL:  a.cfg.SessionTTL,
			Location:    a.cfg.Location(),
		})
		if err != nil {
			return fmt.Errorf("web server yaratilmadi: %w", err)
		}
		httpServer := &http.Server{
			Addr:              a.cfg.HTTPAddr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			srv.RunJanitor(ctx, 10*time.Minute)
			return nil
		})
		g.Go(func() error {
			logger.InfoLogger.Printf("🌐 Web server: http://%s", a.cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	if withBot {
		bot, err := telegram.NewBotHandler(a.cfg.TelegramToken, telegram.Options{
			Inventory:  a.inventory,
			Sessions:   a.sessions,
			Workers:    a.cfg.OCRWorkers,
			SessionTTL: a.cfg.SessionTTL,
		})
		if err != nil {
			return fmt.Errorf("bot handler yaratilmadi: %w", err)
		}
		g.Go(func() error {
			if err := bot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("bot: %w", err)
			}
			return nil
		})
	}

	err = g.Wait()
	logger.InfoLogger.Println("✅ To'xtatildi.")
	return err
}
