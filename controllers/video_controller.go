package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"memoai/models"
	"memoai/services"
)

type VideoController struct {
	DB      *gorm.DB
	AI      AIProvider
	Storage MediaStorage
}

func NewVideoController(db *gorm.DB, ai AIProvider, storage MediaStorage) *VideoController {
	return &VideoController{DB: db, AI: ai, Storage: storage}
}

type UpdateVideoRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	CourseID    *uint    `json:"course_id"`
	Duration    *float64 `json:"duration"`
}

func (h *VideoController) GetVideos(c *gin.Context) {
	skip, limit := listParams(c)

	query := h.DB.Model(&models.Video{})
	if title := c.Query("title"); title != "" {
		query = query.Where("title LIKE ?", "%"+title+"%")
	}
	if courseID := c.Query("course_id"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}

	var videos []models.Video
	if err := query.Offset(skip).Limit(limit).Find(&videos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list videos"})
		return
	}
	c.JSON(http.StatusOK, videos)
}

// UploadVideo takes a multipart upload (file + title + description? +
// course_id), stores the file, persists the row and attaches a best-effort
// transcript. Malformed media fails before any external call; a storage
// failure leaves no row behind.
func (h *VideoController) UploadVideo(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file attached"})
		return
	}
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	description := c.PostForm("description")
	courseID, err := strconv.ParseUint(c.PostForm("course_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course_id"})
		return
	}
	generateTranscript := boolQuery(c, "generate_transcript", true)

	var course models.Course
	if err := h.DB.First(&course, uint(courseID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load course"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is not a video"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not open uploaded file"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
		return
	}

	result, err := h.Storage.Upload(data, title, contentType)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMedia) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File content is not a video"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not upload video to storage"})
		return
	}
	// Boundary check: never persist a storage reference that violates the
	// format invariants, whatever the provider claims.
	if err := result.Validate(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage returned an invalid object reference"})
		return
	}

	video := models.Video{
		Title:       title,
		Description: description,
		StorageID:   result.StorageID,
		StorageURL:  result.SecureURL,
		Duration:    result.Duration,
		CourseID:    course.ID,
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&video).Error; err != nil {
			return err
		}
		if generateTranscript {
			transcript := h.AI.GenerateTranscript(c.Request.Context(), video.StorageURL)
			video.Transcript = &transcript
			if err := tx.Save(&video).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save video"})
		return
	}
	c.JSON(http.StatusCreated, video)
}

func (h *VideoController) GetVideo(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid video id"})
		return
	}

	var video models.Video
	if err := h.DB.First(&video, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load video"})
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *VideoController) UpdateVideo(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid video id"})
		return
	}

	var req UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Duration != nil && *req.Duration <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration must be positive"})
		return
	}

	var video models.Video
	if err := h.DB.First(&video, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load video"})
		return
	}

	if req.CourseID != nil && *req.CourseID != video.CourseID {
		var course models.Course
		if err := h.DB.First(&course, *req.CourseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load course"})
			return
		}
		video.CourseID = *req.CourseID
	}
	if req.Title != nil {
		video.Title = *req.Title
	}
	if req.Description != nil {
		video.Description = *req.Description
	}
	if req.Duration != nil {
		video.Duration = req.Duration
	}

	if err := h.DB.Save(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update video"})
		return
	}
	c.JSON(http.StatusOK, video)
}

// DeleteVideo removes the stored object first. If the provider refuses, the
// row stays put; a row pointing at a possibly-still-present remote object can
// be retried, a dangling storage object cannot.
func (h *VideoController) DeleteVideo(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid video id"})
		return
	}

	var video models.Video
	if err := h.DB.First(&video, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load video"})
		return
	}

	if err := h.Storage.Delete(video.StorageURL); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete video from storage"})
		return
	}

	if err := h.DB.Delete(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete video"})
		return
	}
	c.Status(http.StatusNoContent)
}

// RegenerateTranscript refreshes the transcript from the stored media.
func (h *VideoController) RegenerateTranscript(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid video id"})
		return
	}

	var video models.Video
	if err := h.DB.First(&video, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load video"})
		return
	}

	transcript := h.AI.GenerateTranscript(c.Request.Context(), video.StorageURL)
	video.Transcript = &transcript
	if err := h.DB.Save(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save transcript"})
		return
	}
	c.JSON(http.StatusOK, video)
}
