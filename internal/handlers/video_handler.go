package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepforge/content-admin-service/internal/repositories"
	"github.com/prepforge/content-admin-service/internal/services"
	"github.com/prepforge/content-admin-service/internal/utils"
	"github.com/prepforge/content-admin-service/internal/validator"
)

type VideoHandler struct {
	BaseHandler
	videoService services.VideoService
	validator    *validator.Validator
}

func NewVideoHandler(
	videoService services.VideoService,
	validator *validator.Validator,
	logger utils.Logger,
) *VideoHandler {
	return &VideoHandler{
		BaseHandler:  NewBaseHandler(logger),
		videoService: videoService,
		validator:    validator,
	}
}

// CreateVideo registers a new chapter video
// @Summary Create video
// @Description Registers a video lesson under a chapter
// @Tags videos
// @Accept json
// @Produce json
// @Param video body services.CreateVideoRequest true "Video data"
// @Success 201 {object} models.ChapterVideo
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /videos [post]
func (h *VideoHandler) CreateVideo(c *gin.Context) {
	var req services.CreateVideoRequest
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

	video, err := h.videoService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, video)
}

// GetVideo retrieves a video by ID
// @Summary Get video
// @Description Retrieves a chapter video
// @Tags videos
// @Produce json
// @Param id path int true "Video ID"
// @Success 200 {object} models.ChapterVideo
// @Failure 404 {object} ErrorResponse
// @Router /videos/{id} [get]
func (h *VideoHandler) GetVideo(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	video, err := h.videoService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, video)
}

// ListChapterVideos lists a chapter's videos
// @Summary List chapter videos
// @Description Lists the video lessons of a chapter with optional filters
// @Tags videos
// @Produce json
// @Param id path int true "Chapter ID"
// @Param difficulty query int false "Difficulty filter"
// @Param skill_tag query string false "Skill tag filter"
// @Success 200 {object} services.VideoListResponse
// @Router /chapters/{id}/videos [get]
func (h *VideoHandler) ListChapterVideos(c *gin.Context) {
	chapterID := h.parseIDParam(c, "id")
	if chapterID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	filters := repositories.VideoFilters{
		Limit:  parseQueryInt(c, "limit", 50),
		Offset: parseQueryInt(c, "offset", 0),
	}
	if raw := c.Query("difficulty"); raw != "" {
		d := parseQueryInt(c, "difficulty", 0)
		filters.Difficulty = &d
	}
	if tag := c.Query("skill_tag"); tag != "" {
		filters.SkillTag = &tag
	}

	videos, err := h.videoService.ListByChapter(c.Request.Context(), chapterID, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, videos)
}

// UpdateVideo updates a video
// @Summary Update video
// @Description Updates a chapter video's metadata
// @Tags videos
// @Accept json
// @Produce json
// @Param id path int true "Video ID"
// @Param video body services.UpdateVideoRequest true "Video data"
// @Success 200 {object} models.ChapterVideo
// @Failure 404 {object} ErrorResponse
// @Router /videos/{id} [put]
func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateVideoRequest
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

	video, err := h.videoService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, video)
}

// DeleteVideo deletes a video
// @Summary Delete video
// @Description Removes a video from its chapter
// @Tags videos
// @Param id path int true "Video ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /videos/{id} [delete]
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.videoService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
