package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepforge/content-admin-service/internal/services"
	"github.com/prepforge/content-admin-service/internal/utils"
	"github.com/prepforge/content-admin-service/internal/validator"
)

type BreakdownHandler struct {
	BaseHandler
	breakdownService services.BreakdownService
	validator        *validator.Validator
}

func NewBreakdownHandler(
	breakdownService services.BreakdownService,
	validator *validator.Validator,
	logger utils.Logger,
) *BreakdownHandler {
	return &BreakdownHandler{
		BaseHandler:      NewBaseHandler(logger),
		breakdownService: breakdownService,
		validator:        validator,
	}
}

// CreateBreakdown creates a new breakdown
// @Summary Create breakdown
// @Description Creates a breakdown topic under a chapter
// @Tags breakdowns
// @Accept json
// @Produce json
// @Param breakdown body services.CreateBreakdownRequest true "Breakdown data"
// @Success 201 {object} services.BreakdownResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /breakdowns [post]
func (h *BreakdownHandler) CreateBreakdown(c *gin.Context) {
	var req services.CreateBreakdownRequest
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

	breakdown, err := h.breakdownService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, breakdown)
}

// GetBreakdown retrieves a breakdown by ID
// @Summary Get breakdown
// @Description Retrieves a breakdown with its slide count
// @Tags breakdowns
// @Produce json
// @Param id path int true "Breakdown ID"
// @Success 200 {object} services.BreakdownResponse
// @Failure 404 {object} ErrorResponse
// @Router /breakdowns/{id} [get]
func (h *BreakdownHandler) GetBreakdown(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	breakdown, err := h.breakdownService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// GetBreakdownSlides retrieves a breakdown with its ordered deck
// @Summary Get breakdown slides
// @Description Retrieves a breakdown with its slides in deck order
// @Tags breakdowns
// @Produce json
// @Param id path int true "Breakdown ID"
// @Success 200 {object} models.Breakdown
// @Failure 404 {object} ErrorResponse
// @Router /breakdowns/{id}/slides [get]
func (h *BreakdownHandler) GetBreakdownSlides(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	breakdown, err := h.breakdownService.GetWithSlides(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// ListChapterBreakdowns lists a chapter's breakdowns
// @Summary List chapter breakdowns
// @Description Lists the breakdown topics of a chapter
// @Tags breakdowns
// @Produce json
// @Param id path int true "Chapter ID"
// @Success 200 {array} services.BreakdownResponse
// @Router /chapters/{id}/breakdowns [get]
func (h *BreakdownHandler) ListChapterBreakdowns(c *gin.Context) {
	chapterID := h.parseIDParam(c, "id")
	if chapterID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	breakdowns, err := h.breakdownService.ListByChapter(c.Request.Context(), chapterID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"breakdowns": breakdowns, "total": len(breakdowns)})
}

// UpdateBreakdown updates a breakdown
// @Summary Update breakdown
// @Description Updates a breakdown's metadata and skill tags
// @Tags breakdowns
// @Accept json
// @Produce json
// @Param id path int true "Breakdown ID"
// @Param breakdown body services.UpdateBreakdownRequest true "Breakdown data"
// @Success 200 {object} services.BreakdownResponse
// @Failure 404 {object} ErrorResponse
// @Router /breakdowns/{id} [put]
func (h *BreakdownHandler) UpdateBreakdown(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateBreakdownRequest
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

	breakdown, err := h.breakdownService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// DeleteBreakdown deletes a breakdown and its slides
// @Summary Delete breakdown
// @Description Deletes a breakdown with its slide deck
// @Tags breakdowns
// @Param id path int true "Breakdown ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /breakdowns/{id} [delete]
func (h *BreakdownHandler) DeleteBreakdown(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.breakdownService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddSlide appends a slide to a breakdown's deck
// @Summary Add slide
// @Description Appends a theory or question slide at the end of the deck
// @Tags breakdowns
// @Accept json
// @Produce json
// @Param id path int true "Breakdown ID"
// @Param slide body services.CreateSlideRequest true "Slide data"
// @Success 201 {object} models.Slide
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /breakdowns/{id}/slides [post]
func (h *BreakdownHandler) AddSlide(c *gin.Context) {
	breakdownID := h.parseIDParam(c, "id")
	if breakdownID == 0 {
		return
	}

	var req services.CreateSlideRequest
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

	slide, err := h.breakdownService.AddSlide(c.Request.Context(), breakdownID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, slide)
}

// UpdateSlide updates a slide within a breakdown
// @Summary Update slide
// @Description Updates a slide's content within its deck
// @Tags breakdowns
// @Accept json
// @Produce json
// @Param id path int true "Breakdown ID"
// @Param slideId path int true "Slide ID"
// @Param slide body services.UpdateSlideRequest true "Slide data"
// @Success 200 {object} models.Slide
// @Failure 404 {object} ErrorResponse
// @Router /breakdowns/{id}/slides/{slideId} [put]
func (h *BreakdownHandler) UpdateSlide(c *gin.Context) {
	breakdownID := h.parseIDParam(c, "id")
	if breakdownID == 0 {
		return
	}
	slideID := h.parseIDParam(c, "slideId")
	if slideID == 0 {
		return
	}

	var req services.UpdateSlideRequest
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

	slide, err := h.breakdownService.UpdateSlide(c.Request.Context(), breakdownID, slideID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, slide)
}

// DeleteSlide removes a slide from a breakdown's deck
// @Summary Delete slide
// @Description Removes a slide from its deck
// @Tags breakdowns
// @Param id path int true "Breakdown ID"
// @Param slideId path int true "Slide ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /breakdowns/{id}/slides/{slideId} [delete]
func (h *BreakdownHandler) DeleteSlide(c *gin.Context) {
	breakdownID := h.parseIDParam(c, "id")
	if breakdownID == 0 {
		return
	}
	slideID := h.parseIDParam(c, "slideId")
	if slideID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.breakdownService.DeleteSlide(c.Request.Context(), breakdownID, slideID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// MoveSlide swaps a slide with its neighbor
// @Summary Move slide
// @Description Moves a slide up or down one position in its deck
// @Tags breakdowns
// @Accept json
// @Produce json
// @Param id path int true "Breakdown ID"
// @Param slideId path int true "Slide ID"
// @Param move body object true "Direction"
// @Success 200 {array} models.Slide
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /breakdowns/{id}/slides/{slideId}/move [post]
func (h *BreakdownHandler) MoveSlide(c *gin.Context) {
	breakdownID := h.parseIDParam(c, "id")
	if breakdownID == 0 {
		return
	}
	slideID := h.parseIDParam(c, "slideId")
	if slideID == 0 {
		return
	}

	var req struct {
		Direction services.MoveDirection `json:"direction" binding:"required,oneof=up down"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: "direction must be up or down",
		})
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	slides, err := h.breakdownService.MoveSlide(c.Request.Context(), breakdownID, slideID, req.Direction, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slides": slides})
}
