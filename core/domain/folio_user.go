package domain

import "time"

// User is stored under user:<email>. Email is the primary key.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Identity is what the identity provider tells us about a signed-in person.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// NewUser builds the record written on first sign-in.
func NewUser(id Identity, now time.Time) *User {
	return &User{
		ID:        id.Subject,
		Email:     id.Email,
		Name:      id.Name,
		Image:     id.Picture,
		CreatedAt: now,
	}
}

// Session is the authenticated caller carried by a session token.
type Session struct {
	TokenID   string
	Email     string
	Name      string
	Image     string
	ExpiresAt time.Time
}
