package models

import (
	"time"
)

// User is one registered account.
type User struct {
	ID        string    `json:"_id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Username   string `json:"username"` // stored lowercase
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	Avatar     string `json:"avatar"`
	CoverImage string `json:"coverImage"`

	// Internal only - never returned in JSON
	Password     string `json:"-"` // argon2id hash
	RefreshToken string `json:"-"` // empty when logged out
}

// Sanitized returns a copy with the password hash and refresh token stripped.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Password = ""
	out.RefreshToken = ""
	return &out
}
