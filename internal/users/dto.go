package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/autoyard/autoyard-backend/pkg/db/models"
)

// ExternalIdentity is what the session token tells us about the caller.
type ExternalIdentity struct {
	ExternalID string
	Name       string
	Email      string
	ImageURL   string
}

// UserDTO is the admin-facing view of a user.
type UserDTO struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"externalId"`
	Email      string    `json:"email"`
	Name       *string   `json:"name,omitempty"`
	ImageURL   *string   `json:"imageUrl,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
}

func FromModel(u models.User) UserDTO {
	return UserDTO{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Email:      u.Email,
		Name:       u.Name,
		ImageURL:   u.ImageURL,
		Phone:      u.Phone,
		Role:       u.Role.String(),
		CreatedAt:  u.CreatedAt,
	}
}

func actorFromModel(u *models.User) *Actor {
	return &Actor{UserID: u.ID, ExternalID: u.ExternalID, Role: u.Role}
}
