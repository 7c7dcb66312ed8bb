package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepforge/content-admin-service/internal/services"
	"github.com/prepforge/content-admin-service/internal/utils"
	"github.com/prepforge/content-admin-service/internal/validator"
)

type SuggestionHandler struct {
	BaseHandler
	suggestionService services.SuggestionService
	validator         *validator.Validator
}

func NewSuggestionHandler(
	suggestionService services.SuggestionService,
	validator *validator.Validator,
	logger utils.Logger,
) *SuggestionHandler {
	return &SuggestionHandler{
		BaseHandler:       NewBaseHandler(logger),
		suggestionService: suggestionService,
		validator:         validator,
	}
}

// Suggest proposes annotations for a question
// @Summary Suggest annotations
// @Description Proposes skill tags, a title and a difficulty for the given question text, constrained to the chapter's vocabulary
// @Tags suggestions
// @Accept json
// @Produce json
// @Param input body services.SuggestionInput true "Question content"
// @Success 200 {object} services.SuggestionResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /suggestions [post]
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	var req services.SuggestionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	result, err := h.suggestionService.Suggest(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RefineLatex cleans up a question's LaTeX markup
// @Summary Refine LaTeX
// @Description Fixes broken LaTeX markup without changing the question's meaning; without a configured model the content returns unchanged
// @Tags suggestions
// @Accept json
// @Produce json
// @Param input body object true "Content"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /suggestions/refine-latex [post]
func (h *SuggestionHandler) RefineLatex(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	refined, err := h.suggestionService.RefineLatex(c.Request.Context(), req.Content, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": refined, "from_model": h.suggestionService.Enabled()})
}

// Status reports whether model-backed suggestions are available
// @Summary Suggestion status
// @Description Reports whether the annotation model is configured; when it is not, suggestions fall back to heuristics
// @Tags suggestions
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /suggestions/status [get]
func (h *SuggestionHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"enabled": h.suggestionService.Enabled()})
}
