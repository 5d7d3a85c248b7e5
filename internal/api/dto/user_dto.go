package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

// ChangeNameRequest payload.
type ChangeNameRequest struct {
	Name string `json:"name" form:"name"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// UserView is the public shape of an account. The password hash is never exposed.
type UserView struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	IsAdmin   bool        `json:"is_admin"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewUserView maps a user; nil stays nil so anonymous view-models carry "user": null.
func NewUserView(user *domain.User) *UserView {
	if user == nil {
		return nil
	}
	return &UserView{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		IsAdmin:   user.IsAdmin(),
		CreatedAt: user.CreatedAt,
	}
}
