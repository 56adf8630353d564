package handlers

import (
	"errors"
	"net/http"

	"taskboard/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

// callerIdentity reads the request-scoped identity stored by the auth
// middleware.
func callerIdentity(c *gin.Context) (services.Identity, bool) {
	userIDValue, exists := c.Get("user_id")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return services.Identity{}, false
	}

	userID, ok := userIDValue.(uuid.UUID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return services.Identity{}, false
	}

	role, _ := c.Get("user_role")
	roleStr, _ := role.(string)

	return services.Identity{UserID: userID, Role: roleStr}, true
}

// handleServiceError maps service failures onto the response taxonomy:
// field errors are 400, missing records 404, ownership failures 403,
// anything else a generic 500.
func handleServiceError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": "Task not found"})
	case errors.Is(err, services.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"msg": "Access denied"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
