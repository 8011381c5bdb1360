package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"memoai/models"
	"memoai/services"
)

func uploadRequest(t *testing.T, engine http.Handler, contentType string, fields map[string]string, query string) *httptest.ResponseRecorder {
	t.Helper()
	body, formContentType := videoUpload(t, contentType, fields)
	req := httptest.NewRequest(http.MethodPost, "/api/videos"+query, body)
	req.Header.Set("Content-Type", formContentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestUploadVideoWithTranscript(t *testing.T) {
	engine, db, ai, storage := setupTestServer(t)
	course := createCourse(t, db, "Intro to Python")

	rec := uploadRequest(t, engine, "video/mp4", map[string]string{
		"title":       "Lecture 1",
		"description": "First lecture",
		"course_id":   strconv.Itoa(int(course.ID)),
	}, "")

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var video models.Video
	if err := json.Unmarshal(rec.Body.Bytes(), &video); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if video.StorageID != storage.Result.StorageID {
		t.Fatalf("storage id not persisted: %q", video.StorageID)
	}
	if video.Transcript == nil || *video.Transcript == "" {
		t.Fatalf("expected transcript, got %+v", video.Transcript)
	}
	if storage.Uploads != 1 || ai.TranscriptCalls != 1 {
		t.Fatalf("uploads=%d transcripts=%d, want 1/1", storage.Uploads, ai.TranscriptCalls)
	}
}

func TestUploadVideoWithoutTranscript(t *testing.T) {
	engine, db, ai, _ := setupTestServer(t)
	course := createCourse(t, db, "Intro to Python")

	rec := uploadRequest(t, engine, "video/mp4", map[string]string{
		"title":     "Lecture 1",
		"course_id": strconv.Itoa(int(course.ID)),
	}, "?generate_transcript=false")

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var video models.Video
	if err := json.Unmarshal(rec.Body.Bytes(), &video); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if video.Transcript != nil {
		t.Fatalf("expected no transcript, got %q", *video.Transcript)
	}
	if ai.TranscriptCalls != 0 {
		t.Fatalf("transcript generator called %d times, want 0", ai.TranscriptCalls)
	}
}

// A non-video content type is rejected up front: no storage call, no row.
func TestUploadVideoNonVideoContentType(t *testing.T) {
	engine, db, _, storage := setupTestServer(t)
	course := createCourse(t, db, "Intro to Python")

	rec := uploadRequest(t, engine, "text/plain", map[string]string{
		"title":     "Not a video",
		"course_id": strconv.Itoa(int(course.ID)),
	}, "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if n := count(t, db, &models.Video{}, ""); n != 0 {
		t.Fatalf("expected no video rows, got %d", n)
	}
	if storage.Uploads != 0 {
		t.Fatalf("storage called for rejected upload")
	}
}

func TestUploadVideoMissingCourse(t *testing.T) {
	engine, db, _, storage := setupTestServer(t)

	rec := uploadRequest(t, engine, "video/mp4", map[string]string{
		"title":     "Lecture",
		"course_id": "999",
	}, "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if n := count(t, db, &models.Video{}, ""); n != 0 {
		t.Fatalf("expected no video rows, got %d", n)
	}
	if storage.Uploads != 0 {
		t.Fatalf("storage called for missing course")
	}
}

// A storage id violating [A-Za-z0-9_-]+ never reaches persistence.
func TestUploadVideoInvalidStorageID(t *testing.T) {
	engine, db, _, storage := setupTestServer(t)
	course := createCourse(t, db, "Intro to Python")
	storage.Result = &services.UploadResult{
		StorageID: "bad id/with.junk",
		URL:       "https://storage.example.com/x",
		SecureURL: "https://storage.example.com/x",
		Format:    "mp4",
	}

	rec := uploadRequest(t, engine, "video/mp4", map[string]string{
		"title":     "Lecture",
		"course_id": strconv.Itoa(int(course.ID)),
	}, "")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	if n := count(t, db, &models.Video{}, ""); n != 0 {
		t.Fatalf("expected no video rows, got %d", n)
	}
}

func TestUploadVideoInvalidMedia(t *testing.T) {
	engine, db, _, storage := setupTestServer(t)
	course := createCourse(t, db, "Intro to Python")
	storage.UploadErr = fmt.Errorf("%w: content sniffed as text/plain", services.ErrInvalidMedia)

	rec := uploadRequest(t, engine, "video/mp4", map[string]string{
		"title":     "Lecture",
		"course_id": strconv.Itoa(int(course.ID)),
	}, "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if n := count(t, db, &models.Video{}, ""); n != 0 {
		t.Fatalf("expected no video rows, got %d", n)
	}
}

// When the provider refuses to delete, the local row must survive so the
// deletion can be retried.
func TestDeleteVideoProviderFailureKeepsRow(t *testing.T) {
	engine, db, _, storage := setupTestServer(t)
	course := createCourse(t, db, "Intro to Python")
	video := models.Video{
		Title:      "Lecture",
		StorageID:  "lecture-abc",
		StorageURL: "https://storage.example.com/storage/v1/object/public/uploads/videos/lecture-abc.mp4",
		CourseID:   course.ID,
	}
	if err := db.Create(&video).Error; err != nil {
		t.Fatalf("create video: %v", err)
	}
	storage.DeleteErr = fmt.Errorf("%w: status=503", services.ErrProvider)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/videos/%d", video.ID), nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	if n := count(t, db, &models.Video{}, ""); n != 1 {
		t.Fatalf("expected the video row to remain, got %d rows", n)
	}
}

func TestDeleteVideo(t *testing.T) {
	engine, db, _, storage := setupTestServer(t)
	course := createCourse(t, db, "Intro to Python")
	video := models.Video{
		Title:      "Lecture",
		StorageID:  "lecture-abc",
		StorageURL: "https://storage.example.com/storage/v1/object/public/uploads/videos/lecture-abc.mp4",
		CourseID:   course.ID,
	}
	if err := db.Create(&video).Error; err != nil {
		t.Fatalf("create video: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/videos/%d", video.ID), nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if storage.Deletes != 1 {
		t.Fatalf("storage deletes = %d, want 1", storage.Deletes)
	}
	if n := count(t, db, &models.Video{}, ""); n != 0 {
		t.Fatalf("expected 0 video rows, got %d", n)
	}
}

func TestRegenerateTranscript(t *testing.T) {
	engine, db, ai, _ := setupTestServer(t)
	course := createCourse(t, db, "Intro to Python")
	video := models.Video{
		Title:      "Lecture",
		StorageID:  "lecture-abc",
		StorageURL: "https://storage.example.com/storage/v1/object/public/uploads/videos/lecture-abc.mp4",
		CourseID:   course.ID,
	}
	if err := db.Create(&video).Error; err != nil {
		t.Fatalf("create video: %v", err)
	}

	ai.Transcript = "Refreshed transcript"
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/videos/%d/regenerate-transcript", video.ID), nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got models.Video
	if err := db.First(&got, video.ID).Error; err != nil {
		t.Fatalf("reload video: %v", err)
	}
	if got.Transcript == nil || *got.Transcript != "Refreshed transcript" {
		t.Fatalf("transcript not refreshed: %+v", got.Transcript)
	}
}

func TestUpdateVideoRejectsNonPositiveDuration(t *testing.T) {
	engine, db, _, _ := setupTestServer(t)
	course := createCourse(t, db, "Intro to Python")
	video := models.Video{
		Title:      "Lecture",
		StorageID:  "lecture-abc",
		StorageURL: "https://storage.example.com/storage/v1/object/public/uploads/videos/lecture-abc.mp4",
		CourseID:   course.ID,
	}
	if err := db.Create(&video).Error; err != nil {
		t.Fatalf("create video: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/videos/%d", video.ID),
		strings.NewReader(`{"duration":-3}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
