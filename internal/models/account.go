package models

import "time"

// Account is a stored credential. Password is kept exactly as submitted.
type Account struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Site      string    `json:"site"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
