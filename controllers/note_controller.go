package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"memoai/models"
)

type NoteController struct {
	DB *gorm.DB
	AI AIProvider
}

func NewNoteController(db *gorm.DB, ai AIProvider) *NoteController {
	return &NoteController{DB: db, AI: ai}
}

type CreateNoteRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	CourseID uint   `json:"course_id" binding:"required"`
}

type UpdateNoteRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	CourseID *uint   `json:"course_id"`
}

func (h *NoteController) GetNotes(c *gin.Context) {
	skip, limit := listParams(c)

	query := h.DB.Model(&models.Note{})
	if title := c.Query("title"); title != "" {
		query = query.Where("title LIKE ?", "%"+title+"%")
	}
	if courseID := c.Query("course_id"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}

	var notes []models.Note
	if err := query.Offset(skip).Limit(limit).Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list notes"})
		return
	}
	c.JSON(http.StatusOK, notes)
}

// CreateNote inserts the note and, unless generate_summary=false, attaches a
// generated summary before the transaction commits.
func (h *NoteController) CreateNote(c *gin.Context) {
	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	generateSummary := boolQuery(c, "generate_summary", true)

	note := models.Note{
		Title:    req.Title,
		Content:  req.Content,
		CourseID: req.CourseID,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, req.CourseID).Error; err != nil {
			return err
		}
		if err := tx.Create(&note).Error; err != nil {
			return err
		}
		if generateSummary {
			summary := h.AI.GenerateSummary(c.Request.Context(), note.Content)
			note.Summary = &summary
			if err := tx.Save(&note).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create note"})
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *NoteController) GetNote(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note id"})
		return
	}

	var note models.Note
	if err := h.DB.First(&note, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load note"})
		return
	}
	c.JSON(http.StatusOK, note)
}

// UpdateNote applies the provided fields. A content change regenerates the
// summary so it never describes stale content; regenerate_summary=true forces
// the same thing.
func (h *NoteController) UpdateNote(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note id"})
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	regenerate := boolQuery(c, "regenerate_summary", false)

	var note models.Note
	if err := h.DB.First(&note, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load note"})
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if req.CourseID != nil && *req.CourseID != note.CourseID {
			var course models.Course
			if err := tx.First(&course, *req.CourseID).Error; err != nil {
				return err
			}
			note.CourseID = *req.CourseID
		}
		if req.Title != nil {
			note.Title = *req.Title
		}
		contentChanged := req.Content != nil && *req.Content != note.Content
		if req.Content != nil {
			note.Content = *req.Content
		}
		if regenerate || contentChanged {
			summary := h.AI.GenerateSummary(c.Request.Context(), note.Content)
			note.Summary = &summary
		}
		return tx.Save(&note).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update note"})
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *NoteController) DeleteNote(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note id"})
		return
	}

	var note models.Note
	if err := h.DB.First(&note, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load note"})
		return
	}

	if err := h.DB.Delete(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete note"})
		return
	}
	c.Status(http.StatusNoContent)
}

// RegenerateSummary refreshes the summary from the current content.
// Idempotent: calling it twice with unchanged content yields a valid summary
// both times.
func (h *NoteController) RegenerateSummary(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note id"})
		return
	}

	var note models.Note
	if err := h.DB.First(&note, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load note"})
		return
	}

	summary := h.AI.GenerateSummary(c.Request.Context(), note.Content)
	note.Summary = &summary
	if err := h.DB.Save(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save summary"})
		return
	}
	c.JSON(http.StatusOK, note)
}

// GenerateFlashcards returns generated cards without persisting anything.
func (h *NoteController) GenerateFlashcards(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note id"})
		return
	}
	numCards := intQuery(c, "num_cards", 10)

	var note models.Note
	if err := h.DB.First(&note, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load note"})
		return
	}

	cards := h.AI.GenerateFlashcards(c.Request.Context(), note.Content, numCards)
	c.JSON(http.StatusOK, gin.H{
		"note_id":    note.ID,
		"flashcards": cards,
	})
}
