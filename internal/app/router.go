package app

import (
	"quiz_portal_backend/docs"
	"quiz_portal_backend/internal/config"
	"quiz_portal_backend/internal/middleware"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/me", c.auth.Me)

	rg.GET("/quiz-categories", c.quiz.ListCategories)
	rg.GET("/quizzes", c.quiz.ListQuizzes)
	rg.GET("/quizzes/:id", c.quiz.GetQuiz)
	rg.GET("/quizzes/:id/can-start", c.attempt.CanStart)
	rg.POST("/quizzes/:id/attempts", c.attempt.StartAttempt)

	rg.GET("/attempts", c.attempt.ListMyAttempts)
	rg.GET("/attempts/:id", c.attempt.GetAttempt)
	rg.POST("/attempts/:id/answer", c.attempt.SelectOption)
	rg.POST("/attempts/:id/complete", c.attempt.CompleteAttempt)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Teacher))
	{
		admin.POST("/question-categories", c.questionBank.CreateCategory)
		admin.GET("/question-categories", c.questionBank.ListCategories)
		admin.PUT("/question-categories/:id", c.questionBank.RenameCategory)
		admin.DELETE("/question-categories/:id", c.questionBank.DeleteCategory)

		admin.POST("/questions", c.questionBank.CreateQuestion)
		admin.GET("/questions", c.questionBank.ListQuestions)
		admin.GET("/questions/:id", c.questionBank.GetQuestion)
		admin.PUT("/questions/:id", c.questionBank.UpdateQuestion)
		admin.DELETE("/questions/:id", c.questionBank.DeleteQuestion)
		admin.POST("/questions/images", c.questionBank.UploadImage)

		admin.POST("/quiz-categories", c.quiz.CreateCategory)
		admin.DELETE("/quiz-categories/:id", c.quiz.DeleteCategory)

		admin.POST("/quizzes", c.quiz.CreateQuiz)
		admin.PUT("/quizzes/:id", c.quiz.UpdateQuiz)
		admin.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)

		admin.POST("/quizzes/:id/groups", c.quiz.AddGroup)
		admin.POST("/quizzes/:id/groups/swap", c.quiz.SwapGroups)
		admin.DELETE("/quizzes/:id/groups/:groupId", c.quiz.RemoveGroup)
		admin.POST("/quizzes/:id/questions", c.quiz.AddQuestion)
		admin.POST("/quizzes/:id/questions/swap", c.quiz.SwapQuestions)
		admin.DELETE("/quizzes/:id/questions/:linkId", c.quiz.RemoveQuestion)

		admin.POST("/quizzes/:id/allowed-users", c.quiz.AddAllowedUser)
		admin.DELETE("/quizzes/:id/allowed-users/:userId", c.quiz.RemoveAllowedUser)
		admin.POST("/quizzes/:id/allowed-grades", c.quiz.AddAllowedGrade)
		admin.DELETE("/quizzes/:id/allowed-grades/:gradeId", c.quiz.RemoveAllowedGrade)
	}
}
