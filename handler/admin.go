package handler

import (
	"net/http"

	"mosaic/model/model"
	"mosaic/model/store"

	"github.com/gin-gonic/gin"
)

func CreateLinkedUserHandler(c *gin.Context) {
	var linkedUser model.LinkedUser
	if err := c.BindJSON(&linkedUser); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid linked user payload."})
		return
	}

	status, err := store.GetStore().CreateLinkedUser(&linkedUser)
	if err != nil {
		abortWithError(c, status, err)
		return
	}

	c.JSON(status, linkedUser)
}

func GetLinkedUsersHandler(c *gin.Context) {
	linkedUsers, status := store.GetStore().GetAllLinkedUsers()
	writeGetResponse(c, status, linkedUsers)
}

func CreateConnectionHandler(c *gin.Context) {
	var connection model.Connection
	if err := c.BindJSON(&connection); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid connection payload."})
		return
	}

	status, err := store.GetStore().CreateConnection(&connection)
	if err != nil {
		abortWithError(c, status, err)
		return
	}

	c.JSON(status, connection)
}

func CreateAttributeHandler(c *gin.Context) {
	var attribute model.Attribute
	if err := c.BindJSON(&attribute); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid attribute payload."})
		return
	}

	status, err := store.GetStore().CreateAttribute(&attribute)
	if err != nil {
		abortWithError(c, status, err)
		return
	}

	c.JSON(status, attribute)
}

func GetAttributesHandler(c *gin.Context) {
	linkedUserID, providerSlug, ok := writeScope(c)
	if !ok {
		return
	}
	objectKind := c.Query("object_kind")
	if objectKind == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing object_kind."})
		return
	}

	attributes, status := store.GetStore().GetAttributes(providerSlug, linkedUserID, objectKind)
	writeGetResponse(c, status, attributes)
}

func CreateWebhookEndpointHandler(c *gin.Context) {
	var endpoint model.WebhookEndpoint
	if err := c.BindJSON(&endpoint); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook endpoint payload."})
		return
	}

	status, err := store.GetStore().CreateWebhookEndpoint(&endpoint)
	if err != nil {
		abortWithError(c, status, err)
		return
	}

	c.JSON(status, endpoint)
}
