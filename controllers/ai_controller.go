package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"memoai/models"
	"memoai/services"
)

type AIController struct {
	DB *gorm.DB
	AI AIProvider
}

func NewAIController(db *gorm.DB, ai AIProvider) *AIController {
	return &AIController{DB: db, AI: ai}
}

// GenerateQuiz builds a full quiz from the course topic. The provider call
// happens before any insert, so a generation failure leaves no rows behind;
// the inserts themselves run in one transaction, so a partial quiz is never
// visible to readers.
func (h *AIController) GenerateQuiz(c *gin.Context) {
	courseID, err := strconv.ParseUint(c.Param("course_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
		return
	}
	numQuestions := intQuery(c, "num_questions", 5)

	var course models.Course
	if err := h.DB.First(&course, uint(courseID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load course"})
		return
	}

	draft, err := h.AI.GenerateQuiz(c.Request.Context(), course.Title, course.Description, numQuestions)
	if err != nil {
		if errors.Is(err, services.ErrGenerationFormat) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Quiz generator returned malformed output"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Quiz generation failed"})
		return
	}

	quiz := models.Quiz{
		Title:       draft.Title,
		Description: draft.Description,
		CourseID:    course.ID,
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&quiz).Error; err != nil {
			return err
		}
		for _, qd := range draft.Questions {
			question := models.Question{
				Text:        qd.Text,
				Explanation: qd.Explanation,
				QuizID:      quiz.ID,
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
			for _, ad := range qd.Answers {
				answer := models.Answer{
					Text:       ad.Text,
					IsCorrect:  ad.IsCorrect,
					QuestionID: question.ID,
				}
				if err := tx.Create(&answer).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save generated quiz"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Quiz generated successfully",
		"quiz_id": quiz.ID,
	})
}
