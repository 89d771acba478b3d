package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yourusername/pantry-bot/internal/domain/constants"
)

// Store drayverlari
const (
	StoreDriverSheets = "sheets"
	StoreDriverMemory = "memory"
)

// Sheets yozish rejimlari
const (
	WriteModeOverwrite = "overwrite"
	WriteModeClear     = "clear"
)

// OCR drayverlari
const (
	OCRDriverGemini    = "gemini"
	OCRDriverSimulated = "simulated"
	OCRDriverOff       = "off"
)

// Config ilovaning konfiguratsiyasi
type Config struct {
	StoreDriver     string
	SpreadsheetID   string
	Worksheet       string
	WriteMode       string
	CredentialsFile string
	CredentialsJSON string
	MemorySeedXLSX  string

	OCRDriver         string
	OCRSimulatedDelay time.Duration
	GeminiAPIKey      string

	TelegramToken string
	HTTPAddr      string
	CORSOrigins   []string
	CatalogFile   string
	Timezone      string
	SessionTTL    time.Duration
	OCRWorkers    int

	AllowEmptySecrets bool
	LogLevel          string
}

// Load konfiguratsiyani yuklash
func Load() (*Config, error) {
	// .env faylini yuklash (mavjud bo'lsa)
	_ = godotenv.Load()

	cfg := &Config{
		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", StoreDriverSheets)),
		SpreadsheetID:     strings.TrimSpace(os.Getenv("SPREADSHEET_ID")),
		Worksheet:         getEnv("SHEETS_WORKSHEET", constants.DefaultWorksheet),
		WriteMode:         strings.ToLower(getEnv("SHEETS_WRITE_MODE", WriteModeOverwrite)),
		CredentialsFile:   strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_FILE")),
		CredentialsJSON:   strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_JSON")),
		MemorySeedXLSX:    strings.TrimSpace(os.Getenv("MEMORY_SEED_XLSX")),
		OCRDriver:         strings.ToLower(getEnv("OCR_DRIVER", OCRDriverGemini)),
		OCRSimulatedDelay: getEnvDuration("OCR_SIMULATED_DELAY", constants.DefaultSimulatedOCRDelay),
		GeminiAPIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		TelegramToken:     strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8501"),
		CORSOrigins:       getEnvList("CORS_ORIGINS"),
		CatalogFile:       strings.TrimSpace(os.Getenv("CATALOG_FILE")),
		Timezone:          getEnv("APP_TIMEZONE", constants.DefaultTimezone),
		SessionTTL:        getEnvDuration("SESSION_TTL", constants.DefaultSessionTTL),
		OCRWorkers:        getEnvInt("OCR_WORKERS", 2),
		AllowEmptySecrets: getEnvBool("ALLOW_EMPTY_SECRETS", false),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks driver names and the secrets each driver needs.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverSheets, StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER noto'g'ri: %q (sheets|memory)", c.StoreDriver)
	}
	switch c.WriteMode {
	case WriteModeOverwrite, WriteModeClear:
	default:
		return fmt.Errorf("SHEETS_WRITE_MODE noto'g'ri: %q (overwrite|clear)", c.WriteMode)
	}
	switch c.OCRDriver {
	case OCRDriverGemini, OCRDriverSimulated, OCRDriverOff:
	default:
		return fmt.Errorf("OCR_DRIVER noto'g'ri: %q (gemini|simulated|off)", c.OCRDriver)
	}
	if c.OCRWorkers <= 0 {
		c.OCRWorkers = 1
	}

	// Validatsiya
	if c.AllowEmptySecrets {
		return nil
	}
	if c.StoreDriver == StoreDriverSheets {
		if c.SpreadsheetID == "" {
			return fmt.Errorf("SPREADSHEET_ID environment variable bo'sh")
		}
		if c.CredentialsFile == "" && c.CredentialsJSON == "" {
			return fmt.Errorf("GOOGLE_CREDENTIALS_FILE yoki GOOGLE_CREDENTIALS_JSON kerak")
		}
	}
	if c.OCRDriver == OCRDriverGemini && c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable bo'sh (yoki OCR_DRIVER=off)")
	}
	return nil
}

// CredentialsBytes service-account JSON ni fayl yoki env dan o'qiydi
func (c *Config) CredentialsBytes() ([]byte, string, error) {
	if c.CredentialsJSON != "" {
		return []byte(c.CredentialsJSON), "GOOGLE_CREDENTIALS_JSON", nil
	}
	if c.CredentialsFile == "" {
		return nil, "", fmt.Errorf("credentials not configured")
	}
	raw, err := os.ReadFile(c.CredentialsFile)
	if err != nil {
		return nil, c.CredentialsFile, fmt.Errorf("read credentials file: %w", err)
	}
	return raw, c.CredentialsFile, nil
}

// Location APP_TIMEZONE bo'yicha vaqt zonasi
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	if c.Timezone == constants.DefaultTimezone {
		return time.FixedZone(c.Timezone, 9*60*60)
	}
	return time.Local
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return d
	}
	// Faqat son bo'lsa - soniya deb hisoblaymiz
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

// getEnvList vergul bilan ajratilgan ro'yxat
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
