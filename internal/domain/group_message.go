package domain

import "time"

// GroupMessage is a post in a class or school-wide message group.
type GroupMessage struct {
	ID         string
	GroupName  string
	AuthorID   string
	AuthorRole Role
	Body       string
	PostedAt   time.Time
}
