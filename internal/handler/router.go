package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/schoolconnect/portal-api/internal/middleware"
	"github.com/schoolconnect/portal-api/internal/models"
	"github.com/schoolconnect/portal-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Contact      *ContactHandler
	Class        *ClassHandler
	Student      *StudentHandler
	Report       *ReportHandler
	Invoice      *InvoiceHandler
	Announcement *AnnouncementHandler
	Support      *SupportHandler
	Admin        *AdminHandler
	Timetable    *TimetableHandler
}

// RegisterRoutes mounts the portal API under the given prefix. Role checks
// here are a coarse prefilter; per-resource authorization happens in the
// policy engine.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, authService *service.AuthService) {
	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))

	authed.GET("/auth/me", h.Auth.Me)
	authed.GET("/users/:id", h.User.Get)

	authed.GET("/contacts", h.Contact.List)
	authed.GET("/messages/:contactId", h.Contact.Conversation)
	authed.POST("/messages", h.Contact.Send)

	authed.GET("/announcements", h.Announcement.List)
	authed.POST("/announcements", middleware.RequireRoles(models.RoleAdmin), h.Announcement.Create)

	teachers := authed.Group("/teachers", middleware.RequireRoles(models.RoleTeacher))
	teachers.GET("/:id/classes", h.Class.ClassesForTeacher)
	teachers.GET("/:id/timetables", h.Timetable.ForTeacher)

	classes := authed.Group("/classes", middleware.RequireRoles(models.RoleTeacher))
	classes.GET("/:id", h.Class.Get)
	classes.GET("/:id/students", h.Class.Students)
	classes.POST("/:id/students", h.Class.AddStudent)

	authed.GET("/students/:id", h.Student.Get)
	authed.PUT("/students/:id", middleware.RequireRoles(models.RoleTeacher), h.Student.Update)
	authed.DELETE("/students/:id", middleware.RequireRoles(models.RoleTeacher), h.Student.Delete)
	authed.GET("/students/:id/reports", h.Report.ListByStudent)
	authed.GET("/students/:id/invoices", h.Invoice.ListByStudent)
	authed.GET("/students/:id/timetable", h.Timetable.ForStudent)

	authed.GET("/parents/:id/students", middleware.RequireRoles(models.RoleParent), h.Student.Children)

	authed.PUT("/reports", middleware.RequireRoles(models.RoleTeacher), h.Report.Upsert)

	invoices := authed.Group("/invoices", middleware.RequireRoles(models.RoleParent))
	invoices.POST("/:id/pay", h.Invoice.Pay)
	invoices.GET("/:id/receipt", h.Invoice.Receipt)

	support := authed.Group("/support-requests", middleware.RequireRoles(models.RoleTeacher, models.RoleParent))
	support.POST("", h.Support.Create)
	support.GET("", h.Support.ListOwn)

	admin := authed.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/users", h.Admin.ListUsers)
	admin.GET("/users/export", h.Admin.ExportUsers)
	admin.GET("/stats", h.Admin.Stats)
	admin.GET("/support-requests", h.Support.ListAll)
	admin.PUT("/support-requests/:id", h.Support.Update)
}
