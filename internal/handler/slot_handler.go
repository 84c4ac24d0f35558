package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/service"
	appErrors "github.com/Abhinav-Chauhan1/ERP-sub011/pkg/errors"
	"github.com/Abhinav-Chauhan1/ERP-sub011/pkg/response"
)

// SlotHandler manages timetable slot endpoints.
type SlotHandler struct {
	service *service.SlotService
}

// NewSlotHandler constructs handler.
func NewSlotHandler(svc *service.SlotService) *SlotHandler {
	return &SlotHandler{service: svc}
}

// List godoc
// @Summary List slots
// @Tags Slots
// @Produce json
// @Param timetableId query string false "Filter by timetable"
// @Param classId query string false "Filter by class"
// @Param sectionId query string false "Filter by section"
// @Param subjectTeacherId query string false "Filter by subject teacher"
// @Param roomId query string false "Filter by room"
// @Param day query string false "Filter by day"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /slots [get]
func (h *SlotHandler) List(c *gin.Context) {
	var filter models.TimeSlotFilter
	filter.TimetableID = c.Query("timetableId")
	filter.ClassID = c.Query("classId")
	filter.SectionID = c.Query("sectionId")
	filter.SubjectTeacherID = c.Query("subjectTeacherId")
	filter.RoomID = c.Query("roomId")
	filter.Day = strings.ToUpper(c.Query("day"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	slots, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, pagination)
}

// ListByTeacher godoc
// @Summary Weekly slots of a subject-teacher pairing
// @Tags Slots
// @Produce json
// @Param id path string true "Subject teacher ID"
// @Success 200 {object} response.Envelope
// @Router /subject-teachers/{id}/slots [get]
func (h *SlotHandler) ListByTeacher(c *gin.Context) {
	slots, err := h.service.ListBySubjectTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Create godoc
// @Summary Place a slot on a timetable
// @Tags Slots
// @Accept json
// @Produce json
// @Param payload body service.CreateSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /slots [post]
func (h *SlotHandler) Create(c *gin.Context) {
	var req service.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Update godoc
// @Summary Replace a slot
// @Tags Slots
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param payload body service.UpdateSlotRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /slots/{id} [put]
func (h *SlotHandler) Update(c *gin.Context) {
	var req service.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Delete godoc
// @Summary Remove a slot
// @Tags Slots
// @Param id path string true "Slot ID"
// @Success 204
// @Security BearerAuth
// @Router /slots/{id} [delete]
func (h *SlotHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
