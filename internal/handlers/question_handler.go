package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepforge/content-admin-service/internal/models"
	"github.com/prepforge/content-admin-service/internal/repositories"
	"github.com/prepforge/content-admin-service/internal/services"
	"github.com/prepforge/content-admin-service/internal/utils"
	"github.com/prepforge/content-admin-service/internal/validator"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
	validator       *validator.Validator
}

func NewQuestionHandler(
	questionService services.QuestionService,
	validator *validator.Validator,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
		validator:       validator,
	}
}

// CreateQuestion creates a new question in one of the chapter banks
// @Summary Create question
// @Description Creates a question in the chapter's diagnostic, practice or test bank
// @Tags questions
// @Accept json
// @Produce json
// @Param question body services.CreateQuestionRequest true "Question data"
// @Success 201 {object} services.QuestionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req services.CreateQuestionRequest
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

	question, err := h.questionService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// GetQuestion retrieves a question by ID
// @Summary Get question
// @Description Retrieves a question with its answer shape and annotations
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} services.QuestionResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// ListChapterQuestions lists one bank of a chapter
// @Summary List chapter questions
// @Description Lists the questions of one bank within a chapter
// @Tags questions
// @Produce json
// @Param id path int true "Chapter ID"
// @Param bank query string true "Bank" Enums(diagnostic, practice, test)
// @Success 200 {array} services.QuestionResponse
// @Failure 400 {object} ErrorResponse
// @Router /chapters/{id}/questions [get]
func (h *QuestionHandler) ListChapterQuestions(c *gin.Context) {
	chapterID := h.parseIDParam(c, "id")
	if chapterID == 0 {
		return
	}

	bank := models.QuestionBank(c.DefaultQuery("bank", string(models.BankPractice)))
	if !bank.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid bank parameter",
			Details: "bank must be one of diagnostic, practice, test",
		})
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	questions, err := h.questionService.ListByChapter(c.Request.Context(), chapterID, bank, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"questions": questions, "total": len(questions)})
}

// SearchQuestions searches questions across chapters
// @Summary Search questions
// @Description Searches questions by text with bank, type and tag filters
// @Tags questions
// @Produce json
// @Param q query string true "Search text"
// @Param bank query string false "Bank filter"
// @Param status query string false "Status filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} services.QuestionListResponse
// @Router /questions/search [get]
func (h *QuestionHandler) SearchQuestions(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	filters := repositories.QuestionFilters{
		Limit:  parseQueryInt(c, "limit", 20),
		Offset: parseQueryInt(c, "offset", 0),
	}
	if raw := c.Query("bank"); raw != "" {
		bank := models.QuestionBank(raw)
		filters.Bank = &bank
	}
	if raw := c.Query("status"); raw != "" {
		status := models.QuestionStatus(raw)
		filters.Status = &status
	}
	if raw := c.Query("band"); raw != "" {
		band := models.DifficultyBand(raw)
		filters.Band = &band
	}

	questions, err := h.questionService.Search(c.Request.Context(), c.Query("q"), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// BackfillTestBank fills missing computed fields across a chapter's test bank
// @Summary Backfill test bank
// @Description Fills missing bands, marks, timing and tag pairs across the chapter's test bank
// @Tags questions
// @Produce json
// @Param id path int true "Chapter ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /chapters/{id}/backfill-test-bank [post]
func (h *QuestionHandler) BackfillTestBank(c *gin.Context) {
	chapterID := h.parseIDParam(c, "id")
	if chapterID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	updated, err := h.questionService.BackfillTestBank(c.Request.Context(), chapterID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// UpdateQuestion updates a question
// @Summary Update question
// @Description Updates a question's content, answer shape or annotations
// @Tags questions
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param question body services.UpdateQuestionRequest true "Question data"
// @Success 200 {object} services.QuestionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [put]
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateQuestionRequest
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

	question, err := h.questionService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion deletes a question
// @Summary Delete question
// @Description Deletes a question from its bank
// @Tags questions
// @Param id path int true "Question ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
