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

type TestHandler struct {
	BaseHandler
	testService services.TestBuilderService
	validator   *validator.Validator
}

func NewTestHandler(
	testService services.TestBuilderService,
	validator *validator.Validator,
	logger utils.Logger,
) *TestHandler {
	return &TestHandler{
		BaseHandler: NewBaseHandler(logger),
		testService: testService,
		validator:   validator,
	}
}

// CreateTest creates a new mock test
// @Summary Create test
// @Description Creates a mock test in draft status
// @Tags tests
// @Accept json
// @Produce json
// @Param test body services.CreateTestRequest true "Test data"
// @Success 201 {object} services.TestResponse
// @Failure 400 {object} ErrorResponse
// @Router /tests [post]
func (h *TestHandler) CreateTest(c *gin.Context) {
	var req services.CreateTestRequest
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

	test, err := h.testService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, test)
}

// GetTest retrieves a test by ID
// @Summary Get test
// @Description Retrieves a mock test with its computed counts
// @Tags tests
// @Produce json
// @Param id path int true "Test ID"
// @Success 200 {object} services.TestResponse
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id} [get]
func (h *TestHandler) GetTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	test, err := h.testService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// GetTestItems retrieves a test with its ordered item list
// @Summary Get test items
// @Description Retrieves a mock test with its items in paper order
// @Tags tests
// @Produce json
// @Param id path int true "Test ID"
// @Success 200 {object} services.TestResponse
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id}/items [get]
func (h *TestHandler) GetTestItems(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	test, err := h.testService.GetWithItems(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// ListTests lists mock tests with filtering
// @Summary List tests
// @Description Lists mock tests with status, exam and search filters
// @Tags tests
// @Produce json
// @Param status query string false "Status filter"
// @Param exam query string false "Exam filter"
// @Param search query string false "Search by name"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} services.TestListResponse
// @Router /tests [get]
func (h *TestHandler) ListTests(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	filters := repositories.TestFilters{
		Search:    c.Query("search"),
		Limit:     parseQueryInt(c, "limit", 20),
		Offset:    parseQueryInt(c, "offset", 0),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.TestStatus(raw)
		filters.Status = &status
	}
	if raw := c.Query("exam"); raw != "" {
		exam := models.ExamType(raw)
		filters.Exam = &exam
	}

	tests, err := h.testService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

// UpdateTest updates a draft test's settings
// @Summary Update test
// @Description Updates a draft test's settings and default marks
// @Tags tests
// @Accept json
// @Produce json
// @Param id path int true "Test ID"
// @Param test body services.UpdateTestRequest true "Test data"
// @Success 200 {object} services.TestResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tests/{id} [put]
func (h *TestHandler) UpdateTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateTestRequest
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

	test, err := h.testService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// DeleteTest deletes a test
// @Summary Delete test
// @Description Deletes an unpublished mock test with its items
// @Tags tests
// @Param id path int true "Test ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tests/{id} [delete]
func (h *TestHandler) DeleteTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	if err := h.testService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// FetchCandidates returns builder candidates from the selected chapters
// @Summary Fetch candidates
// @Description Returns the union of the selected chapters' test banks for the item picker
// @Tags tests
// @Accept json
// @Produce json
// @Param criteria body services.CandidateRequest true "Selection criteria"
// @Success 200 {array} services.QuestionResponse
// @Failure 400 {object} ErrorResponse
// @Router /tests/candidates [post]
func (h *TestHandler) FetchCandidates(c *gin.Context) {
	var req services.CandidateRequest
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

	candidates, err := h.testService.FetchCandidates(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"candidates": candidates, "total": len(candidates)})
}

// SaveTestItems replaces the test's full item set
// @Summary Save test items
// @Description Replaces the item list in order and rewrites the derived counts
// @Tags tests
// @Accept json
// @Produce json
// @Param id path int true "Test ID"
// @Param items body services.SaveTestItemsRequest true "Item list"
// @Success 200 {object} services.TestResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /tests/{id}/items [put]
func (h *TestHandler) SaveTestItems(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SaveTestItemsRequest
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

	test, err := h.testService.SaveItems(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// MoveTestItem swaps an item with its neighbor in paper order
// @Summary Move test item
// @Description Moves an item up or down one position in the paper
// @Tags tests
// @Accept json
// @Produce json
// @Param id path int true "Test ID"
// @Param questionId path int true "Source question ID"
// @Param move body object true "Direction"
// @Success 200 {object} services.TestResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tests/{id}/items/{questionId}/move [post]
func (h *TestHandler) MoveTestItem(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	questionID := h.parseIDParam(c, "questionId")
	if questionID == 0 {
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

	test, err := h.testService.MoveItem(c.Request.Context(), id, questionID, req.Direction, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// ApplyAssignedMarks copies source-question marks onto the items
// @Summary Apply assigned marks
// @Description Copies each source question's own marks onto its item, skipping deleted sources
// @Tags tests
// @Produce json
// @Param id path int true "Test ID"
// @Success 200 {object} services.TestResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tests/{id}/apply-assigned-marks [post]
func (h *TestHandler) ApplyAssignedMarks(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	test, err := h.testService.ApplyAssignedMarks(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// ValidateStage gates a builder step transition
// @Summary Validate builder stage
// @Description Checks whether the test satisfies the requirements of a builder stage
// @Tags tests
// @Produce json
// @Param id path int true "Test ID"
// @Param stage query int true "Stage number"
// @Success 200 {object} services.StageValidation
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id}/validate-stage [get]
func (h *TestHandler) ValidateStage(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	stage := parseQueryInt(c, "stage", 1)
	result, err := h.testService.ValidateStage(c.Request.Context(), id, stage, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// PublishTest publishes a draft test
// @Summary Publish test
// @Description Publishes a draft test that has at least one item
// @Tags tests
// @Produce json
// @Param id path int true "Test ID"
// @Success 200 {object} services.TestResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tests/{id}/publish [post]
func (h *TestHandler) PublishTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	test, err := h.testService.Publish(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// ArchiveTest archives a test
// @Summary Archive test
// @Description Archives a draft or published test
// @Tags tests
// @Produce json
// @Param id path int true "Test ID"
// @Success 200 {object} services.TestResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tests/{id}/archive [post]
func (h *TestHandler) ArchiveTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	test, err := h.testService.Archive(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}
