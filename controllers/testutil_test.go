package controllers_test

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"memoai/config"
	"memoai/models"
	"memoai/routes"
	"memoai/services"
)

// Minimal valid MP4 header (ftyp box); sniffs as video/mp4.
var mp4Bytes = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm',
	0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'i', 's', 'o', '2',
}

type fakeAI struct {
	QuizDraft  *services.QuizDraft
	QuizErr    error
	Summary    string
	Transcript string

	SummaryCalls    int
	TranscriptCalls int
}

func newFakeAI() *fakeAI {
	return &fakeAI{
		Summary:    "Generated summary",
		Transcript: "Generated transcript",
	}
}

func (f *fakeAI) GenerateQuiz(ctx context.Context, topic, description string, numQuestions int) (*services.QuizDraft, error) {
	if f.QuizErr != nil {
		return nil, f.QuizErr
	}
	if f.QuizDraft != nil {
		return f.QuizDraft, nil
	}
	return quizDraft(numQuestions), nil
}

func (f *fakeAI) GenerateSummary(ctx context.Context, content string) string {
	f.SummaryCalls++
	return f.Summary
}

func (f *fakeAI) GenerateFlashcards(ctx context.Context, content string, numCards int) []services.Flashcard {
	cards := make([]services.Flashcard, 0, numCards)
	for i := 0; i < numCards; i++ {
		cards = append(cards, services.Flashcard{
			Question: fmt.Sprintf("Question %d?", i+1),
			Answer:   fmt.Sprintf("Answer %d", i+1),
		})
	}
	return cards
}

func (f *fakeAI) GenerateTranscript(ctx context.Context, mediaURL string) string {
	f.TranscriptCalls++
	return f.Transcript
}

func quizDraft(numQuestions int) *services.QuizDraft {
	draft := &services.QuizDraft{
		Title:       "Generated quiz",
		Description: "Generated description",
	}
	for i := 0; i < numQuestions; i++ {
		q := services.QuestionDraft{
			Text:        fmt.Sprintf("Question %d?", i+1),
			Explanation: "Because.",
		}
		for j := 0; j < 4; j++ {
			q.Answers = append(q.Answers, services.AnswerDraft{
				Text:      fmt.Sprintf("Answer %d", j+1),
				IsCorrect: j == 0,
			})
		}
		draft.Questions = append(draft.Questions, q)
	}
	return draft
}

type fakeStorage struct {
	Result    *services.UploadResult
	UploadErr error
	DeleteErr error

	Uploads int
	Deletes int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		Result: &services.UploadResult{
			StorageID: "intro-video-123",
			URL:       "https://storage.example.com/storage/v1/object/public/uploads/videos/intro-video-123.mp4",
			SecureURL: "https://storage.example.com/storage/v1/object/public/uploads/videos/intro-video-123.mp4",
			Format:    "mp4",
		},
	}
}

func (f *fakeStorage) Upload(data []byte, title, contentType string) (*services.UploadResult, error) {
	if f.UploadErr != nil {
		return nil, f.UploadErr
	}
	f.Uploads++
	return f.Result, nil
}

func (f *fakeStorage) Delete(publicURL string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Deletes++
	return nil
}

func setupTestServer(t *testing.T) (*gin.Engine, *gorm.DB, *fakeAI, *fakeStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ai := newFakeAI()
	storage := newFakeStorage()

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine = routes.SetupRouter(engine, db, ai, storage)

	return engine, db, ai, storage
}

func createCourse(t *testing.T, db *gorm.DB, title string) models.Course {
	t.Helper()
	course := models.Course{Title: title, Description: "A course about " + title}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

// videoUpload builds a multipart body with a file part carrying the given
// content type.
func videoUpload(t *testing.T, contentType string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="lecture.mp4"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create file part: %v", err)
	}
	if _, err := part.Write(mp4Bytes); err != nil {
		t.Fatalf("write file part: %v", err)
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func count(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	tx := db.Model(model)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
