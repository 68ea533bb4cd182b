package domain

import "time"

type Role string

const (
	RoleGuest Role = "guest"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
