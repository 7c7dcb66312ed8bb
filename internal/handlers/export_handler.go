package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepforge/content-admin-service/internal/models"
	"github.com/prepforge/content-admin-service/internal/services"
	"github.com/prepforge/content-admin-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// ExportChapterBank downloads one chapter bank as a workbook
// @Summary Export chapter bank
// @Description Renders one of the chapter's question banks as an XLSX download
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Chapter ID"
// @Param bank query string true "Bank" Enums(diagnostic, practice, test)
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /chapters/{id}/export [get]
func (h *ExportHandler) ExportChapterBank(c *gin.Context) {
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

	data, filename, err := h.exportService.ExportChapterBank(c.Request.Context(), chapterID, bank, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ExportTest downloads a mock test as a workbook
// @Summary Export test
// @Description Renders a mock test's summary and item list as an XLSX download
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Test ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id}/export [get]
func (h *ExportHandler) ExportTest(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	data, filename, err := h.exportService.ExportTest(c.Request.Context(), testID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
