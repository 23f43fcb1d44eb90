package domain

import "time"

// User is the domain model for portal accounts. Students, teachers,
// admins and parents share one table, differentiated by Role.
type User struct {
	ID           string
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
