package domain

import (
	"strings"
	"time"
)

// Role distinguishes students from administrators.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Roles lists every known role.
var Roles = []Role{RoleStudent, RoleAdmin}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// User is the domain model for accounts that submit or handle tickets.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return joinName(u.FirstName, u.LastName)
}

// Summary strips everything but the public identity fields.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

// UserSummary is the identity projection exposed alongside tickets.
type UserSummary struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
