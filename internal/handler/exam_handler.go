package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/service"
	"github.com/Abhinav-Chauhan1/ERP-sub011/pkg/response"
)

// ExamHandler manages exam ranking endpoints.
type ExamHandler struct {
	service *service.ExamService
}

// NewExamHandler constructs handler.
func NewExamHandler(svc *service.ExamService) *ExamHandler {
	return &ExamHandler{service: svc}
}

// Ranking godoc
// @Summary Ranked results of an exam
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/ranking [get]
func (h *ExamHandler) Ranking(c *gin.Context) {
	ranking, err := h.service.Ranking(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ranking, nil)
}
