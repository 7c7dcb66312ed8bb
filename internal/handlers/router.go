package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepforge/content-admin-service/internal/auth"
	"github.com/prepforge/content-admin-service/internal/config"
	"github.com/prepforge/content-admin-service/internal/repositories"
	"github.com/prepforge/content-admin-service/internal/services"
	"github.com/prepforge/content-admin-service/internal/utils"
	"github.com/prepforge/content-admin-service/internal/validator"
)

type HandlerManager struct {
	chapterHandler    *ChapterHandler
	questionHandler   *QuestionHandler
	breakdownHandler  *BreakdownHandler
	videoHandler      *VideoHandler
	testHandler       *TestHandler
	suggestionHandler *SuggestionHandler
	exportHandler     *ExportHandler
	authMiddleware    *CasdoorAuthMiddleware
	serviceManager    services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
	gate *auth.Gate,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo, gate, logger)

	return &HandlerManager{
		chapterHandler:    NewChapterHandler(serviceManager.Chapter(), validator, logger),
		questionHandler:   NewQuestionHandler(serviceManager.Question(), validator, logger),
		breakdownHandler:  NewBreakdownHandler(serviceManager.Breakdown(), validator, logger),
		videoHandler:      NewVideoHandler(serviceManager.Video(), validator, logger),
		testHandler:       NewTestHandler(serviceManager.TestBuilder(), validator, logger),
		suggestionHandler: NewSuggestionHandler(serviceManager.Suggestion(), validator, logger),
		exportHandler:     NewExportHandler(serviceManager.Export(), logger),
		authMiddleware:    authMiddleware,
		serviceManager:    serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint, unauthenticated
	router.GET("/health", hm.healthCheck)

	// Every admin panel route requires an authenticated admin. Deletes
	// are additionally restricted to primary admins.
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	v1.Use(hm.authMiddleware.RequireAdmin())
	{
		// Cross-chapter skill tag union for filter widgets
		v1.GET("/skill-tags", hm.chapterHandler.ListAllSkillTags)

		// Chapter catalog
		chapters := v1.Group("/chapters")
		{
			chapters.POST("", hm.chapterHandler.CreateChapter)
			chapters.GET("", hm.chapterHandler.ListChapters)
			chapters.GET("/:id", hm.chapterHandler.GetChapter)
			chapters.PUT("/:id", hm.chapterHandler.UpdateChapter)
			chapters.DELETE("/:id", hm.authMiddleware.RequireDelete(), hm.chapterHandler.DeleteChapter)

			chapters.GET("/:id/skill-tags", hm.chapterHandler.GetSkillTags)
			chapters.PUT("/:id/skill-tags", hm.chapterHandler.UpdateSkillTags)
			chapters.POST("/:id/recount", hm.chapterHandler.RecountChapter)
			chapters.POST("/:id/backfill-test-bank", hm.questionHandler.BackfillTestBank)

			// Nested child resources
			chapters.GET("/:id/questions", hm.questionHandler.ListChapterQuestions)
			chapters.GET("/:id/breakdowns", hm.breakdownHandler.ListChapterBreakdowns)
			chapters.GET("/:id/videos", hm.videoHandler.ListChapterVideos)
			chapters.GET("/:id/export", hm.exportHandler.ExportChapterBank)
		}

		// Question banks
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("/search", hm.questionHandler.SearchQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.authMiddleware.RequireDelete(), hm.questionHandler.DeleteQuestion)
		}

		// Breakdowns and their slide decks
		breakdowns := v1.Group("/breakdowns")
		{
			breakdowns.POST("", hm.breakdownHandler.CreateBreakdown)
			breakdowns.GET("/:id", hm.breakdownHandler.GetBreakdown)
			breakdowns.PUT("/:id", hm.breakdownHandler.UpdateBreakdown)
			breakdowns.DELETE("/:id", hm.authMiddleware.RequireDelete(), hm.breakdownHandler.DeleteBreakdown)

			breakdowns.GET("/:id/slides", hm.breakdownHandler.GetBreakdownSlides)
			breakdowns.POST("/:id/slides", hm.breakdownHandler.AddSlide)
			breakdowns.PUT("/:id/slides/:slideId", hm.breakdownHandler.UpdateSlide)
			breakdowns.DELETE("/:id/slides/:slideId", hm.authMiddleware.RequireDelete(), hm.breakdownHandler.DeleteSlide)
			breakdowns.POST("/:id/slides/:slideId/move", hm.breakdownHandler.MoveSlide)
		}

		// Chapter videos
		videos := v1.Group("/videos")
		{
			videos.POST("", hm.videoHandler.CreateVideo)
			videos.GET("/:id", hm.videoHandler.GetVideo)
			videos.PUT("/:id", hm.videoHandler.UpdateVideo)
			videos.DELETE("/:id", hm.authMiddleware.RequireDelete(), hm.videoHandler.DeleteVideo)
		}

		// Mock test builder
		tests := v1.Group("/tests")
		{
			tests.POST("", hm.testHandler.CreateTest)
			tests.GET("", hm.testHandler.ListTests)
			tests.POST("/candidates", hm.testHandler.FetchCandidates)
			tests.GET("/:id", hm.testHandler.GetTest)
			tests.PUT("/:id", hm.testHandler.UpdateTest)
			tests.DELETE("/:id", hm.authMiddleware.RequireDelete(), hm.testHandler.DeleteTest)

			tests.GET("/:id/items", hm.testHandler.GetTestItems)
			tests.PUT("/:id/items", hm.testHandler.SaveTestItems)
			tests.POST("/:id/items/:questionId/move", hm.testHandler.MoveTestItem)
			tests.POST("/:id/apply-assigned-marks", hm.testHandler.ApplyAssignedMarks)
			tests.GET("/:id/validate-stage", hm.testHandler.ValidateStage)
			tests.POST("/:id/publish", hm.testHandler.PublishTest)
			tests.POST("/:id/archive", hm.testHandler.ArchiveTest)
			tests.GET("/:id/export", hm.exportHandler.ExportTest)
		}

		// AI annotation suggestions
		suggestions := v1.Group("/suggestions")
		{
			suggestions.POST("", hm.suggestionHandler.Suggest)
			suggestions.POST("/refine-latex", hm.suggestionHandler.RefineLatex)
			suggestions.GET("/status", hm.suggestionHandler.Status)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
