// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. The email is the unique login
// identity; uniqueness is enforced at the persistence boundary.
type User struct {
	ID           uuid.UUID `json:"id"`       // Unique identifier, generated at creation.
	FullName     string    `json:"fullName"` // Display name, required.
	Email        string    `json:"email"`    // Login identity, unique across all users.
	PasswordHash string    `json:"-"`        // bcrypt digest. The raw password is never stored.
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Sanitized returns a copy of the user with credential material removed,
// suitable for returning to callers.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}

	clone := *u
	clone.PasswordHash = ""

	return &clone
}
