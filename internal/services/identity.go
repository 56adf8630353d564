package services

import (
	"taskboard/backend/internal/models"

	"github.com/gofrs/uuid"
)

// Identity is the verified caller passed into every service call. It is
// built per request from the bearer token, never from shared state.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}
