// Package server assembles the gin engine from the per-domain handlers.
package server

import (
	"github.com/gin-gonic/gin"

	"project-management/backend/internal/audit"
	audithandler "project-management/backend/internal/audit/handler"
	commenthandler "project-management/backend/internal/comment/handler"
	healthhandler "project-management/backend/internal/health/handler"
	identityhandler "project-management/backend/internal/identity/handler"
	notificationhandler "project-management/backend/internal/notification/handler"
	projecthandler "project-management/backend/internal/project/handler"
	"project-management/backend/internal/security"
	"project-management/backend/internal/server/middleware"
	taskhandler "project-management/backend/internal/task/handler"
	userhandler "project-management/backend/internal/user/handler"
)

// Deps carries everything the router mounts.
type Deps struct {
	Tokens        *security.TokenProvider
	AuditLogger   audit.AuditLogger
	Identity      *identityhandler.Handler
	Users         *userhandler.Handler
	Projects      *projecthandler.Handler
	Tasks         *taskhandler.Handler
	Comments      *commenthandler.Handler
	Notifications *notificationhandler.Handler
	Audit         *audithandler.Handler
	Health        *healthhandler.Handler
}

// NewRouter builds the gin engine with the full route table. Register, login,
// and the health probe are public; everything else requires a bearer token.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")
	api.POST("/register", d.Identity.Register)
	api.POST("/login", d.Identity.Login)
	api.GET("/healthz", d.Health.Check)

	authed := api.Group("")
	authed.Use(middleware.Auth(d.Tokens), middleware.Audit(d.AuditLogger))

	authed.GET("/users/me", d.Users.Me)
	authed.PATCH("/users/me/email", d.Users.UpdateEmail)
	authed.POST("/users/me/password", d.Users.ChangePassword)
	authed.GET("/users", d.Users.List)
	authed.GET("/team-members", d.Users.TeamMembers)
	authed.POST("/users/:id/approve", d.Users.Approve)
	authed.DELETE("/users/:id/reject", d.Users.Reject)
	authed.DELETE("/users/:id", d.Users.Delete)

	authed.GET("/projects", d.Projects.List)
	authed.POST("/projects", d.Projects.Create)
	authed.GET("/projects/:id", d.Projects.Get)
	authed.PUT("/projects/:id", d.Projects.Update)
	authed.DELETE("/projects/:id", d.Projects.Delete)
	authed.POST("/projects/:id/members", d.Projects.AddMember)
	authed.DELETE("/projects/:id/members/:uid", d.Projects.RemoveMember)

	authed.GET("/tasks", d.Tasks.List)
	authed.GET("/tasks/mine", d.Tasks.Mine)
	authed.GET("/tasks/gantt", d.Tasks.Gantt)
	authed.POST("/tasks", d.Tasks.Create)
	authed.GET("/tasks/:id", d.Tasks.Get)
	authed.PUT("/tasks/:id", d.Tasks.Update)
	authed.PATCH("/tasks/:id/status", d.Tasks.UpdateStatus)
	authed.DELETE("/tasks/:id", d.Tasks.Delete)
	authed.GET("/tasks/:id/comments", d.Comments.ListByTask)
	authed.POST("/tasks/:id/comments", d.Comments.Create)
	authed.DELETE("/comments/:id", d.Comments.Delete)

	authed.GET("/notifications", d.Notifications.List)
	authed.GET("/notifications/unread-count", d.Notifications.UnreadCount)
	authed.PATCH("/notifications/:id/read", d.Notifications.MarkRead)

	authed.GET("/dashboard/stats", d.Tasks.Dashboard)
	authed.GET("/audit", d.Audit.List)

	return r
}
