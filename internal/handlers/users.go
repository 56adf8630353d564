package handlers

import (
	"net/http"

	"taskboard/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	db          *gorm.DB
	userService services.UserService
}

func NewUserHandler(db *gorm.DB, userService services.UserService) *UserHandler {
	return &UserHandler{db: db, userService: userService}
}

// GetUsers lists all users without credentials. Admin only.
func (h *UserHandler) GetUsers(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	if !caller.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"msg": "Access denied"})
		return
	}

	users, err := h.userService.GetUsers(h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, users)
}
