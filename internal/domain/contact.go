package domain

import "time"

// ContactKind categorizes directory entries.
type ContactKind string

const (
	ContactKindStaff    ContactKind = "STAFF"
	ContactKindOffice   ContactKind = "OFFICE"
	ContactKindExternal ContactKind = "EXTERNAL"
)

// Contact is a school directory entry.
type Contact struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Kind      ContactKind
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
