package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/service"
	appErrors "github.com/Abhinav-Chauhan1/ERP-sub011/pkg/errors"
	"github.com/Abhinav-Chauhan1/ERP-sub011/pkg/response"
)

// MeritHandler manages merit configuration and list endpoints.
type MeritHandler struct {
	service *service.MeritService
}

// NewMeritHandler constructs handler.
func NewMeritHandler(svc *service.MeritService) *MeritHandler {
	return &MeritHandler{service: svc}
}

// CreateConfig godoc
// @Summary Create a merit configuration
// @Tags Merit
// @Accept json
// @Produce json
// @Param payload body service.CreateMeritConfigRequest true "Configuration payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /merit/configs [post]
func (h *MeritHandler) CreateConfig(c *gin.Context) {
	var req service.CreateMeritConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	config, err := h.service.CreateConfig(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, config)
}

// GetConfig godoc
// @Summary Get a merit configuration with ordered criteria
// @Tags Merit
// @Produce json
// @Param id path string true "Configuration ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /merit/configs/{id} [get]
func (h *MeritHandler) GetConfig(c *gin.Context) {
	config, err := h.service.GetConfig(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, config, nil)
}

// ReorderCriteria godoc
// @Summary Move a criterion to a new display position
// @Tags Merit
// @Accept json
// @Produce json
// @Param id path string true "Configuration ID"
// @Param payload body service.ReorderCriteriaRequest true "Reorder payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /merit/configs/{id}/reorder [post]
func (h *MeritHandler) ReorderCriteria(c *gin.Context) {
	var req service.ReorderCriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	criteria, err := h.service.ReorderCriteria(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, criteria, nil)
}

// Generate godoc
// @Summary Generate and persist a merit list
// @Tags Merit
// @Accept json
// @Produce json
// @Param id path string true "Configuration ID"
// @Param payload body service.GenerateMeritListRequest true "List payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /merit/configs/{id}/generate [post]
func (h *MeritHandler) Generate(c *gin.Context) {
	var req service.GenerateMeritListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	list, err := h.service.GenerateMeritList(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, list)
}

// Refresh godoc
// @Summary Queue an async merit list regeneration
// @Tags Merit
// @Accept json
// @Produce json
// @Param id path string true "Configuration ID"
// @Param payload body service.GenerateMeritListRequest true "List payload"
// @Success 202 {object} response.Envelope
// @Security BearerAuth
// @Router /merit/configs/{id}/refresh [post]
func (h *MeritHandler) Refresh(c *gin.Context) {
	var req service.GenerateMeritListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.EnqueueRefresh(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"status": "queued"}, nil)
}

// GetList godoc
// @Summary Get a persisted merit list
// @Tags Merit
// @Produce json
// @Param id path string true "Merit list ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /merit/lists/{id} [get]
func (h *MeritHandler) GetList(c *gin.Context) {
	list, err := h.service.GetMeritList(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}
