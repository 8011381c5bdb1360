package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"memoai/models"
)

type QuizController struct {
	DB *gorm.DB
}

func NewQuizController(db *gorm.DB) *QuizController {
	return &QuizController{DB: db}
}

type CreateQuizRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	CourseID    uint   `json:"course_id" binding:"required"`
}

type UpdateQuizRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CourseID    *uint   `json:"course_id"`
}

func (h *QuizController) GetQuizzes(c *gin.Context) {
	skip, limit := listParams(c)

	query := h.DB.Model(&models.Quiz{})
	if title := c.Query("title"); title != "" {
		query = query.Where("title LIKE ?", "%"+title+"%")
	}
	if courseID := c.Query("course_id"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}

	var quizzes []models.Quiz
	if err := query.Offset(skip).Limit(limit).Find(&quizzes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list quizzes"})
		return
	}
	c.JSON(http.StatusOK, quizzes)
}

func (h *QuizController) CreateQuiz(c *gin.Context) {
	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var course models.Course
	if err := h.DB.First(&course, req.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load course"})
		return
	}

	quiz := models.Quiz{
		Title:       req.Title,
		Description: req.Description,
		CourseID:    req.CourseID,
	}
	if err := h.DB.Create(&quiz).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create quiz"})
		return
	}
	c.JSON(http.StatusCreated, quiz)
}

func (h *QuizController) GetQuiz(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz id"})
		return
	}

	var quiz models.Quiz
	if err := h.DB.Preload("Questions.Answers").First(&quiz, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load quiz"})
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (h *QuizController) UpdateQuiz(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz id"})
		return
	}

	var req UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var quiz models.Quiz
	if err := h.DB.First(&quiz, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load quiz"})
		return
	}

	if req.CourseID != nil && *req.CourseID != quiz.CourseID {
		var course models.Course
		if err := h.DB.First(&course, *req.CourseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load course"})
			return
		}
		quiz.CourseID = *req.CourseID
	}
	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}

	if err := h.DB.Save(&quiz).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update quiz"})
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// DeleteQuiz removes the quiz; questions and answers cascade.
func (h *QuizController) DeleteQuiz(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz id"})
		return
	}

	var quiz models.Quiz
	if err := h.DB.First(&quiz, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load quiz"})
		return
	}

	if err := h.DB.Delete(&quiz).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete quiz"})
		return
	}
	c.Status(http.StatusNoContent)
}
