package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"memoai/controllers"
)

// SetupRouter registers every resource route. Providers come in as the
// controller-side interfaces so tests can swap in fakes.
func SetupRouter(r *gin.Engine, db *gorm.DB, ai controllers.AIProvider, storage controllers.MediaStorage) *gin.Engine {
	health := controllers.NewHealthController(db)
	courses := controllers.NewCourseController(db)
	notes := controllers.NewNoteController(db, ai)
	quizzes := controllers.NewQuizController(db)
	videos := controllers.NewVideoController(db, ai, storage)
	aiCtrl := controllers.NewAIController(db, ai)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", health.HealthCheck)

	api := r.Group("/api")
	{
		api.GET("/courses", courses.GetCourses)
		api.POST("/courses", courses.CreateCourse)
		api.GET("/courses/:id", courses.GetCourse)
		api.PUT("/courses/:id", courses.UpdateCourse)
		api.DELETE("/courses/:id", courses.DeleteCourse)

		api.GET("/notes", notes.GetNotes)
		api.POST("/notes", notes.CreateNote)
		api.GET("/notes/:id", notes.GetNote)
		api.PUT("/notes/:id", notes.UpdateNote)
		api.DELETE("/notes/:id", notes.DeleteNote)
		api.POST("/notes/:id/regenerate-summary", notes.RegenerateSummary)
		api.POST("/notes/:id/generate-flashcards", notes.GenerateFlashcards)

		api.GET("/quizzes", quizzes.GetQuizzes)
		api.POST("/quizzes", quizzes.CreateQuiz)
		api.GET("/quizzes/:id", quizzes.GetQuiz)
		api.PUT("/quizzes/:id", quizzes.UpdateQuiz)
		api.DELETE("/quizzes/:id", quizzes.DeleteQuiz)

		api.POST("/ai/generate-quiz/:course_id", aiCtrl.GenerateQuiz)

		api.GET("/videos", videos.GetVideos)
		api.POST("/videos", videos.UploadVideo)
		api.GET("/videos/:id", videos.GetVideo)
		api.PUT("/videos/:id", videos.UpdateVideo)
		api.DELETE("/videos/:id", videos.DeleteVideo)
		api.POST("/videos/:id/regenerate-transcript", videos.RegenerateTranscript)
	}

	return r
}
