package web

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yourusername/pantry-bot/internal/domain/constants"
	"github.com/yourusername/pantry-bot/pkg/logger"
	"go.uber.org/zap"
)

const sessionKey = "session_id"

// sessionMiddleware ensures every request carries a session cookie.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(constants.SessionCookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		// Har so'rovda muddatni yangilash
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(constants.SessionCookieName, id, int(s.sessionTTL/time.Second), "/", "", false, true)
		c.Set(sessionKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

// recoverToDiagnostics turns a panic anywhere in a handler into the
// diagnostics page; the process keeps serving.
func (s *Server) recoverToDiagnostics() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.ErrorLogger.Printf("❌ PANIC %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, recovered, debug.Stack())
		d := Diagnostics{
			Level:   levelError,
			Title:   "予期しないエラー",
			Message: fmt.Sprint(recovered),
			Hint:    "ページを再読み込みしてください。問題が続く場合はログを確認してください。",
		}
		s.render(c, http.StatusInternalServerError, pageData{Diagnostics: &d, Credentials: s.credentialDiagnostics()})
		c.Abort()
	})
}

// observe records the route/status pair once the handler chain finishes.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if s.metrics != nil {
			s.metrics.ObserveHTTP(c.FullPath(), c.Writer.Status())
		}
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.L().Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
