package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
	RoleGuest Role = "GUEST"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleGuest:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Company      string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the projection handed to clients.
type PublicUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Role    Role   `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:      u.ID.String(),
		Name:    u.Name,
		Email:   u.Email,
		Company: u.Company,
		Role:    u.Role,
	}
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	UserId       uuid.UUID
}

type SignUpInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
	Company              string
	Role                 Role
}

// UpdateProfileInput holds the fields of a partial profile update. Empty
// strings mean "leave unchanged".
type UpdateProfileInput struct {
	Name     string
	Email    string
	Password string
	Company  string
}

func (in UpdateProfileInput) Empty() bool {
	return in.Name == "" && in.Email == "" && in.Password == "" && in.Company == ""
}
