// Package gemini reads receipt text from images with the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/yourusername/pantry-bot/internal/domain/constants"
	"github.com/yourusername/pantry-bot/internal/domain/repository"
	"github.com/yourusername/pantry-bot/pkg/logger"
	"google.golang.org/api/option"
)

// OCRClient Gemini asosidagi chek o'quvchi
type OCRClient struct {
	client     *genai.Client
	model      *genai.GenerativeModel
	maxRetries int
	retryDelay time.Duration
}

var _ repository.OCRRepository = (*OCRClient)(nil)

// NewOCRClient yangi Gemini OCR client yaratish
func NewOCRClient(ctx context.Context, apiKey string) (*OCRClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(constants.GeminiModelName)
	// Matnni aynan ko'chirish uchun past temperatura
	model.SetTemperature(constants.OCRTemperature)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(ReceiptInstruction)},
	}

	return &OCRClient{
		client:     client,
		model:      model,
		maxRetries: constants.MaxRetries,
		retryDelay: constants.RetryDelay * time.Second,
	}, nil
}

// ReadText sends the image and returns the transcribed receipt lines.
// An image with no legible text yields "" and no error.
func (g *OCRClient) ReadText(ctx context.Context, image []byte, mimeType string) (string, error) {
	parts := []genai.Part{
		genai.ImageData(imageFormat(mimeType), image),
		genai.Text(ReceiptPrompt),
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		logger.InfoLogger.Printf("🔄 Gemini OCR so'rovi (urinish %d/%d)...", attempt, g.maxRetries)

		resp, err := g.model.GenerateContent(ctx, parts...)
		switch {
		case err != nil:
			lastErr = err
			logger.ErrorLogger.Printf("❌ Urinish %d xato: %v", attempt, err)
		case len(resp.Candidates) == 0:
			lastErr = fmt.Errorf("no response candidates")
			logger.ErrorLogger.Printf("⚠️ Urinish %d: Javob kandidatlari yo'q", attempt)
		case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
			return "", fmt.Errorf("response blocked by safety filter")
		default:
			text := cleanTranscript(extractText(resp))
			if text == noTextMarker {
				return "", nil
			}
			logger.InfoLogger.Printf("✅ Chek matni olindi (urinish %d, %d qator)", attempt, strings.Count(text, "\n")+1)
			return text, nil
		}

		if attempt < g.maxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(g.retryDelay):
			}
		}
	}
	return "", fmt.Errorf("gemini ocr failed after %d attempts: %w", g.maxRetries, lastErr)
}

// Close client ni yopish
func (g *OCRClient) Close() error {
	return g.client.Close()
}

// imageFormat "image/jpeg" -> "jpeg"
func imageFormat(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	format := strings.TrimPrefix(mimeType, "image/")
	switch format {
	case "", "jpg", "pjpeg":
		return "jpeg"
	default:
		return format
	}
}

// extractText javobdan textni ajratib olish
func extractText(resp *genai.GenerateContentResponse) string {
	var result strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				result.WriteString(string(t))
			}
		}
	}
	return result.String()
}

// cleanTranscript strips markdown fences and blank lines the model sometimes adds.
func cleanTranscript(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
