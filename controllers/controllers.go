package controllers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"memoai/services"
)

// AIProvider is the content generation boundary. The quiz call can fail and
// the caller must surface that; summaries, flashcards and transcripts are
// best-effort and degrade inside the provider.
type AIProvider interface {
	GenerateQuiz(ctx context.Context, topic, description string, numQuestions int) (*services.QuizDraft, error)
	GenerateSummary(ctx context.Context, content string) string
	GenerateFlashcards(ctx context.Context, content string, numCards int) []services.Flashcard
	GenerateTranscript(ctx context.Context, mediaURL string) string
}

// MediaStorage is the blob store boundary for uploaded video files.
type MediaStorage interface {
	Upload(data []byte, title, contentType string) (*services.UploadResult, error)
	Delete(publicURL string) error
}

func listParams(c *gin.Context) (skip, limit int) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	return skip, limit
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(fallback)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func boolQuery(c *gin.Context, key string, fallback bool) bool {
	v, err := strconv.ParseBool(c.DefaultQuery(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
