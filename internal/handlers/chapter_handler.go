package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepforge/content-admin-service/internal/repositories"
	"github.com/prepforge/content-admin-service/internal/services"
	"github.com/prepforge/content-admin-service/internal/utils"
	"github.com/prepforge/content-admin-service/internal/validator"
)

type ChapterHandler struct {
	BaseHandler
	chapterService services.ChapterService
	validator      *validator.Validator
}

func NewChapterHandler(
	chapterService services.ChapterService,
	validator *validator.Validator,
	logger utils.Logger,
) *ChapterHandler {
	return &ChapterHandler{
		BaseHandler:    NewBaseHandler(logger),
		chapterService: chapterService,
		validator:      validator,
	}
}

// CreateChapter creates a new chapter
// @Summary Create chapter
// @Description Creates a new catalog chapter with its skill tag vocabulary
// @Tags chapters
// @Accept json
// @Produce json
// @Param chapter body services.CreateChapterRequest true "Chapter data"
// @Success 201 {object} services.ChapterResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /chapters [post]
func (h *ChapterHandler) CreateChapter(c *gin.Context) {
	var req services.CreateChapterRequest
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

	chapter, err := h.chapterService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, chapter)
}

// GetChapter retrieves a chapter by ID
// @Summary Get chapter
// @Description Retrieves a chapter with its denormalized child counters
// @Tags chapters
// @Produce json
// @Param id path int true "Chapter ID"
// @Success 200 {object} services.ChapterResponse
// @Failure 404 {object} ErrorResponse
// @Router /chapters/{id} [get]
func (h *ChapterHandler) GetChapter(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	chapter, err := h.chapterService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, chapter)
}

// ListChapters lists chapters with filtering
// @Summary List chapters
// @Description Lists catalog chapters with optional subject and search filters
// @Tags chapters
// @Produce json
// @Param subject query string false "Subject filter"
// @Param search query string false "Search by name"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} services.ChapterListResponse
// @Router /chapters [get]
func (h *ChapterHandler) ListChapters(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	filters := repositories.ChapterFilters{
		Search:    c.Query("search"),
		Limit:     parseQueryInt(c, "limit", 20),
		Offset:    parseQueryInt(c, "offset", 0),
		SortBy:    c.DefaultQuery("sort_by", "display_order"),
		SortOrder: c.DefaultQuery("sort_order", "asc"),
	}
	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}

	chapters, err := h.chapterService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, chapters)
}

// UpdateChapter updates a chapter
// @Summary Update chapter
// @Description Updates chapter metadata
// @Tags chapters
// @Accept json
// @Produce json
// @Param id path int true "Chapter ID"
// @Param chapter body services.UpdateChapterRequest true "Chapter data"
// @Success 200 {object} services.ChapterResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /chapters/{id} [put]
func (h *ChapterHandler) UpdateChapter(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateChapterRequest
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

	chapter, err := h.chapterService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, chapter)
}

// DeleteChapter deletes a chapter and all of its children
// @Summary Delete chapter
// @Description Deletes a chapter with its questions, breakdowns and videos
// @Tags chapters
// @Param id path int true "Chapter ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /chapters/{id} [delete]
func (h *ChapterHandler) DeleteChapter(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.chapterService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSkillTags retrieves a chapter's skill tag vocabulary
// @Summary Get skill tags
// @Description Retrieves the chapter's skill tag vocabulary
// @Tags chapters
// @Produce json
// @Param id path int true "Chapter ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /chapters/{id}/skill-tags [get]
func (h *ChapterHandler) GetSkillTags(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	tags, err := h.chapterService.GetSkillTags(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"skill_tags": tags})
}

// ListAllSkillTags retrieves the union of every chapter's vocabulary
// @Summary List all skill tags
// @Description Retrieves the distinct union of every chapter's skill tags
// @Tags chapters
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /skill-tags [get]
func (h *ChapterHandler) ListAllSkillTags(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	tags, err := h.chapterService.ListAllSkillTags(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"skill_tags": tags})
}

// UpdateSkillTags replaces a chapter's skill tag vocabulary
// @Summary Update skill tags
// @Description Replaces the chapter's skill tag vocabulary
// @Tags chapters
// @Accept json
// @Produce json
// @Param id path int true "Chapter ID"
// @Param tags body object true "Skill tags"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /chapters/{id}/skill-tags [put]
func (h *ChapterHandler) UpdateSkillTags(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req struct {
		SkillTags []string `json:"skill_tags" binding:"required"`
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

	tags, err := h.chapterService.UpdateSkillTags(c.Request.Context(), id, req.SkillTags, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"skill_tags": tags})
}

// RecountChapter reconciles the chapter's denormalized counters
// @Summary Recount chapter
// @Description Recomputes the chapter's child counters from source tables
// @Tags chapters
// @Produce json
// @Param id path int true "Chapter ID"
// @Success 200 {object} services.ChapterResponse
// @Failure 404 {object} ErrorResponse
// @Router /chapters/{id}/recount [post]
func (h *ChapterHandler) RecountChapter(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	chapter, err := h.chapterService.Recount(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, chapter)
}
