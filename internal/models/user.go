package models

import (
	"errors"
	"time"
)

// ErrEmailTaken is returned by the store when a unique email constraint fires.
var ErrEmailTaken = errors.New("email already in use")

type User struct {
	ID             int64     `json:"id" db:"id"`
	FirstName      string    `json:"firstname" db:"firstname"`
	MiddleName     *string   `json:"middlename" db:"middlename"`
	LastName       string    `json:"lastname" db:"lastname"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	ProfilePicture string    `json:"profilepicture" db:"profile_picture"`
	Token          *string   `json:"-" db:"token"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser carries the fields needed to insert a freshly registered user.
type NewUser struct {
	FirstName      string
	MiddleName     *string
	LastName       string
	Email          string
	PasswordHash   string
	ProfilePicture string
}

type ProfileUpdate struct {
	FirstName  string
	MiddleName *string
	LastName   string
	Email      string
}
