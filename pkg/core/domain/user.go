package domain

import "time"

// User is an admin account allowed to sign in with a password
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
