package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/service"
	appErrors "github.com/Abhinav-Chauhan1/ERP-sub011/pkg/errors"
	"github.com/Abhinav-Chauhan1/ERP-sub011/pkg/response"
)

// ExportHandler serves CSV/PDF downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Timetable godoc
// @Summary Export a class timetable grid
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Class ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} byte
// @Security BearerAuth
// @Router /classes/{id}/timetable/export [get]
func (h *ExportHandler) Timetable(c *gin.Context) {
	format, err := service.ParseExportFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	result, err := h.service.TimetableGrid(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, result)
}

// MeritList godoc
// @Summary Export a merit list
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Merit list ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} byte
// @Security BearerAuth
// @Router /merit/lists/{id}/export [get]
func (h *ExportHandler) MeritList(c *gin.Context) {
	format, err := service.ParseExportFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	result, err := h.service.MeritList(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, result)
}

func serveDownload(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(200, result.ContentType, result.Data)
}
