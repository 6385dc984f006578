package transport

import (
	"time"

	"github.com/google/uuid"
)

type StaffResponse struct {
	ID           uuid.UUID  `json:"id"`
	FullName     string     `json:"fullName"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	AvatarURL    string     `json:"avatarUrl,omitempty"`
	Status       string     `json:"status"`
	Online       bool       `json:"online"`
	LastActiveAt *time.Time `json:"lastActiveAt,omitempty"`
}

type CreateStaffRequest struct {
	FullName  string `json:"fullName" validate:"required,min=1,max=120"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Role      string `json:"role" validate:"required,staffrole"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
}

type UpdateStaffRequest struct {
	FullName  *string `json:"fullName" validate:"omitempty,min=1,max=120"`
	Role      *string `json:"role" validate:"omitempty,staffrole"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
}

type SetPresenceRequest struct {
	Status string `json:"status" validate:"required,oneof=online offline"`
}

type PresenceResponse struct {
	Status string `json:"status"`
	Online bool   `json:"online"`
}
