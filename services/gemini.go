package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"memoai/config"
)

const (
	geminiModel = "gemini-2.0-flash"

	// Blocking provider calls get explicit deadlines; the upstream behavior
	// was "wait until the client library returns".
	textTimeout       = 60 * time.Second
	transcribeTimeout = 5 * time.Minute

	// Sentinels for best-effort enrichments. Quiz generation never degrades
	// to a sentinel.
	SummaryUnavailable    = "Summary not available"
	TranscriptUnavailable = "Transcription not available"
)

// QuizDraft is the structure the generator must return for a quiz.
type QuizDraft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   []QuestionDraft `json:"questions"`
}

type QuestionDraft struct {
	Text        string        `json:"text"`
	Explanation string        `json:"explanation"`
	Answers     []AnswerDraft `json:"answers"`
}

type AnswerDraft struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GeminiService wraps the Gemini API for quiz, summary, flashcard and
// transcript generation. Stateless; one client per call.
type GeminiService struct {
	apiKey string
	model  string
}

func NewGeminiService(cfg config.Config) *GeminiService {
	return &GeminiService{
		apiKey: cfg.GeminiAPIKey,
		model:  geminiModel,
	}
}

func (s *GeminiService) newClient(ctx context.Context) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: create Gemini client: %v", ErrProvider, err)
	}
	return client, nil
}

func (s *GeminiService) generateText(ctx context.Context, parts ...genai.Part) (string, error) {
	client, err := s.newClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(s.model)
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrProvider)
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// GenerateQuiz asks Gemini for a complete quiz on the course topic. Malformed
// output fails with ErrGenerationFormat; an earlier design swallowed that
// behind a hardcoded fallback quiz, which masks provider failures and is
// explicitly not done here.
func (s *GeminiService) GenerateQuiz(ctx context.Context, topic, description string, numQuestions int) (*QuizDraft, error) {
	ctx, cancel := context.WithTimeout(ctx, textTimeout)
	defer cancel()

	prompt := fmt.Sprintf(`You write educational quizzes.
Create a quiz of %d questions on the topic: %s

Course description: %s

Each question has exactly 4 answers, exactly one of them correct, and a short
explanation of the correct answer.

Return only valid JSON with this exact structure, no other text:
{
  "title": "Quiz title",
  "description": "Quiz description",
  "questions": [
    {
      "text": "Question text",
      "explanation": "Why the correct answer is correct",
      "answers": [
        {"text": "Answer 1", "is_correct": true},
        {"text": "Answer 2", "is_correct": false},
        {"text": "Answer 3", "is_correct": false},
        {"text": "Answer 4", "is_correct": false}
      ]
    }
  ]
}`, numQuestions, topic, description)

	raw, err := s.generateText(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}

	return ParseQuizDraft(raw)
}

// ParseQuizDraft cleans Gemini's markdown fencing and validates the quiz
// contract: the three top-level keys present, 4 answers per question, exactly
// one marked correct.
func ParseQuizDraft(raw string) (*QuizDraft, error) {
	clean := stripFences(raw)

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(clean), &keys); err != nil {
		return nil, fmt.Errorf("%w: parse quiz JSON: %v", ErrGenerationFormat, err)
	}
	for _, key := range []string{"title", "description", "questions"} {
		if _, ok := keys[key]; !ok {
			return nil, fmt.Errorf("%w: missing key %q", ErrGenerationFormat, key)
		}
	}

	var draft QuizDraft
	if err := json.Unmarshal([]byte(clean), &draft); err != nil {
		return nil, fmt.Errorf("%w: parse quiz JSON: %v", ErrGenerationFormat, err)
	}
	if len(draft.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions returned", ErrGenerationFormat)
	}
	for i, q := range draft.Questions {
		if q.Text == "" {
			return nil, fmt.Errorf("%w: question %d has no text", ErrGenerationFormat, i+1)
		}
		if len(q.Answers) != 4 {
			return nil, fmt.Errorf("%w: question %d has %d answers, want 4", ErrGenerationFormat, i+1, len(q.Answers))
		}
		correct := 0
		for _, a := range q.Answers {
			if a.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return nil, fmt.Errorf("%w: question %d has %d correct answers, want 1", ErrGenerationFormat, i+1, correct)
		}
	}
	return &draft, nil
}

// GenerateSummary condenses note content. Best-effort: any provider failure
// degrades to the sentinel instead of failing the request.
func (s *GeminiService) GenerateSummary(ctx context.Context, content string) string {
	ctx, cancel := context.WithTimeout(ctx, textTimeout)
	defer cancel()

	prompt := fmt.Sprintf(`Summarize the following course note in a few short
paragraphs for a student revising the topic. Return only the summary text.

%s`, content)

	summary, err := s.generateText(ctx, genai.Text(prompt))
	if err != nil {
		log.Printf("summary generation failed: %v", err)
		return SummaryUnavailable
	}
	return strings.TrimSpace(summary)
}

// GenerateFlashcards turns note content into question/answer pairs.
// Best-effort: degrades to an empty slice.
func (s *GeminiService) GenerateFlashcards(ctx context.Context, content string, numCards int) []Flashcard {
	ctx, cancel := context.WithTimeout(ctx, textTimeout)
	defer cancel()

	prompt := fmt.Sprintf(`Create %d study flashcards from the following note.
Return only valid JSON, an array like:
[
  {"question": "Question 1?", "answer": "Answer 1"},
  {"question": "Question 2?", "answer": "Answer 2"}
]

%s`, numCards, content)

	raw, err := s.generateText(ctx, genai.Text(prompt))
	if err != nil {
		log.Printf("flashcard generation failed: %v", err)
		return []Flashcard{}
	}

	var cards []Flashcard
	if err := json.Unmarshal([]byte(stripFences(raw)), &cards); err != nil {
		log.Printf("flashcard JSON parse failed: %v", err)
		return []Flashcard{}
	}
	return cards
}

// GenerateTranscript downloads the stored media and asks Gemini to transcribe
// it via the Files API. Best-effort: degrades to the sentinel.
func (s *GeminiService) GenerateTranscript(ctx context.Context, mediaURL string) string {
	transcript, err := s.transcribe(ctx, mediaURL)
	if err != nil {
		log.Printf("transcript generation failed: %v", err)
		return TranscriptUnavailable
	}
	return transcript
}

func (s *GeminiService) transcribe(ctx context.Context, mediaURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build media request: %v", ErrProvider, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: download media: %v", ErrProvider, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: download media: status %d", ErrProvider, resp.StatusCode)
	}

	// Spool the media into a temp file; released on every exit path.
	tmp, err := os.CreateTemp("", "memoai-media-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return "", fmt.Errorf("%w: download media: %v", ErrProvider, err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind temp file: %w", err)
	}

	client, err := s.newClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "video/mp4"
	}
	file, err := client.UploadFile(ctx, "", tmp, &genai.UploadFileOptions{MIMEType: mime})
	if err != nil {
		return "", fmt.Errorf("%w: upload media to Gemini: %v", ErrProvider, err)
	}
	defer client.DeleteFile(ctx, file.Name)

	// Video files are processed asynchronously before they can be referenced.
	for file.State == genai.FileStateProcessing {
		time.Sleep(2 * time.Second)
		file, err = client.GetFile(ctx, file.Name)
		if err != nil {
			return "", fmt.Errorf("%w: poll Gemini file: %v", ErrProvider, err)
		}
	}
	if file.State != genai.FileStateActive {
		return "", fmt.Errorf("%w: Gemini file state %v", ErrProvider, file.State)
	}

	model := client.GenerativeModel(s.model)
	resp2, err := model.GenerateContent(ctx,
		genai.FileData{MIMEType: file.MIMEType, URI: file.URI},
		genai.Text("Transcribe the spoken audio of this video. Return only the transcript text."),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if len(resp2.Candidates) == 0 || resp2.Candidates[0].Content == nil || len(resp2.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrProvider)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", resp2.Candidates[0].Content.Parts[0])), nil
}

// stripFences removes the ```json fencing Gemini tends to wrap around
// structured output.
func stripFences(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "`")
	clean = strings.TrimPrefix(clean, "json")
	return strings.TrimSpace(clean)
}
