package models

import (
	"time"

	"github.com/google/uuid"
)

// Role labels granted to users
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents a shop customer or administrator.
// The e-mail address is the authentication subject.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Surname      string     `json:"surname" db:"surname"`
	Birthday     *time.Time `json:"birthday,omitempty" db:"birthday"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Balance      int64      `json:"balance" db:"balance"`
	Address      string     `json:"address,omitempty" db:"address"`
	PhoneNumber  string     `json:"phoneNumber,omitempty" db:"phone_number"`
	Roles        []string   `json:"roles" db:"roles"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User with the USER role when no roles are given
func NewUser(name, surname, email, passwordHash string, roles ...string) *User {
	if len(roles) == 0 {
		roles = []string{RoleUser}
	}
	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Name:         name,
		Surname:      surname,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasRole reports whether the user carries role
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}
