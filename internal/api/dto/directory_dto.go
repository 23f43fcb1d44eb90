package dto

import "time"

// ContactRequest payload for creating/updating directory entries.
type ContactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Kind  string `json:"kind"`
	Notes string `json:"notes"`
}

// ContactResponse serializes a directory entry.
type ContactResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Kind      string    `json:"kind"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostMessageRequest payload for group posts.
type PostMessageRequest struct {
	Body string `json:"body"`
}

// MessageResponse serializes a group post.
type MessageResponse struct {
	ID         string    `json:"id"`
	GroupName  string    `json:"group_name"`
	AuthorID   string    `json:"author_id"`
	AuthorRole string    `json:"author_role"`
	Body       string    `json:"body"`
	PostedAt   time.Time `json:"posted_at"`
}
