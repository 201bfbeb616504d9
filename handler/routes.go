package handler

import (
	"mosaic/records"

	"github.com/gin-gonic/gin"
)

var recordsService *records.Service

// InitAppRoutes registers the unified record API and the admin surface on
// the given engine.
func InitAppRoutes(r *gin.Engine, service *records.Service) {
	recordsService = service

	r.GET("/status", StatusHandler)

	crm := r.Group("/crm")
	crm.POST("/companies", CreateCompanyHandler)
	crm.POST("/companies/batch", CreateCompaniesHandler)
	crm.GET("/companies", GetCompaniesHandler)
	crm.GET("/companies/:id", GetCompanyHandler)

	crm.POST("/users", CreateUserHandler)
	crm.POST("/users/batch", CreateUsersHandler)
	crm.GET("/users", GetUsersHandler)
	crm.GET("/users/:id", GetUserHandler)

	crm.POST("/notes", CreateNoteHandler)
	crm.POST("/notes/batch", CreateNotesHandler)
	crm.GET("/notes", GetNotesHandler)
	crm.GET("/notes/:id", GetNoteHandler)

	ticketing := r.Group("/ticketing")
	ticketing.POST("/comments", CreateCommentHandler)
	ticketing.POST("/comments/batch", CreateCommentsHandler)
	ticketing.GET("/comments", GetCommentsHandler)
	ticketing.GET("/comments/:id", GetCommentHandler)

	admin := r.Group("/admin")
	admin.POST("/linked_users", CreateLinkedUserHandler)
	admin.GET("/linked_users", GetLinkedUsersHandler)
	admin.POST("/connections", CreateConnectionHandler)
	admin.POST("/attributes", CreateAttributeHandler)
	admin.GET("/attributes", GetAttributesHandler)
	admin.POST("/webhook_endpoints", CreateWebhookEndpointHandler)
}

func StatusHandler(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
