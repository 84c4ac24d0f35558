package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/middleware"
	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/models"
	"github.com/Abhinav-Chauhan1/ERP-sub011/internal/service"
)

// Handlers bundles every route handler for registration.
type Handlers struct {
	Auth       *AuthHandler
	Timetables *TimetableHandler
	Slots      *SlotHandler
	Merit      *MeritHandler
	Exams      *ExamHandler
	Exports    *ExportHandler

	AuthService *service.AuthService
}

// RegisterRoutes mounts the API under the given prefix. Scheduling writes
// require ADMIN; merit endpoints require ADMIN or REGISTRAR.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers) {
	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	api.GET("/timetables", h.Timetables.List)
	api.GET("/timetables/:id", h.Timetables.Get)
	api.GET("/classes/:id/timetable", h.Timetables.Grid)
	api.GET("/slots", h.Slots.List)
	api.GET("/subject-teachers/:id/slots", h.Slots.ListByTeacher)
	api.GET("/exams/:id/ranking", h.Exams.Ranking)

	secured := api.Group("", middleware.JWT(h.AuthService))
	secured.POST("/auth/logout", h.Auth.Logout)

	admin := secured.Group("", middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/timetables", h.Timetables.Create)
	admin.PUT("/timetables/:id", h.Timetables.Update)
	admin.POST("/timetables/:id/activate", h.Timetables.Activate)
	admin.DELETE("/timetables/:id", h.Timetables.Delete)
	admin.POST("/slots", h.Slots.Create)
	admin.PUT("/slots/:id", h.Slots.Update)
	admin.DELETE("/slots/:id", h.Slots.Delete)

	if h.Merit != nil {
		merit := secured.Group("", middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar))
		merit.POST("/merit/configs", h.Merit.CreateConfig)
		merit.GET("/merit/configs/:id", h.Merit.GetConfig)
		merit.POST("/merit/configs/:id/reorder", h.Merit.ReorderCriteria)
		merit.POST("/merit/configs/:id/generate", h.Merit.Generate)
		merit.POST("/merit/configs/:id/refresh", h.Merit.Refresh)
		merit.GET("/merit/lists/:id", h.Merit.GetList)
	}

	if h.Exports != nil {
		secured.GET("/classes/:id/timetable/export", h.Exports.Timetable)
		if h.Merit != nil {
			exports := secured.Group("", middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar))
			exports.GET("/merit/lists/:id/export", h.Exports.MeritList)
		}
	}
}
