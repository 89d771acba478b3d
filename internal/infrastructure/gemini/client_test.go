package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

func TestImageFormat(t *testing.T) {
	assert.Equal(t, "jpeg", imageFormat("image/jpeg"))
	assert.Equal(t, "jpeg", imageFormat("image/jpg"))
	assert.Equal(t, "png", imageFormat("IMAGE/PNG"))
	assert.Equal(t, "webp", imageFormat("image/webp; q=1"))
	assert.Equal(t, "jpeg", imageFormat(""))
}

func TestExtractTextAndClean(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text("```\nしょうゆ 150円 x2\n\n"),
				genai.Text("トイレットペーパー 398円\n```"),
			}},
		}},
	}
	assert.Equal(t, "しょうゆ 150円 x2\nトイレットペーパー 398円", cleanTranscript(extractText(resp)))
}

func TestCleanTranscript_NoText(t *testing.T) {
	assert.Equal(t, noTextMarker, cleanTranscript("  NO_TEXT \n"))
}
