// Package session is the identity/continuity collaborator of the analysis
// core: it issues opaque session ids, remembers who is logged in, and lets
// sessions expire.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User is the identity attached to a session. Guests carry an expiry.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email,omitempty"`
	Name      string     `json:"name"`
	Guest     bool       `json:"guest"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Expired reports whether a guest account has outlived its expiry.
func (u *User) Expired(now time.Time) bool {
	return u != nil && u.ExpiresAt != nil && !now.Before(*u.ExpiresAt)
}

// NewGuestUser issues a guest identity named after the issue time.
func NewGuestUser(now time.Time, ttl time.Duration) *User {
	expires := now.Add(ttl)
	return &User{
		ID:        uuid.NewString(),
		Name:      fmt.Sprintf("guest-%d", now.UnixMilli()),
		Guest:     true,
		ExpiresAt: &expires,
		CreatedAt: now,
	}
}

// Session correlates requests of one client. User is nil until login.
type Session struct {
	ID        string    `json:"id"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Store interface {
	// Create issues a new anonymous session.
	Create(ctx context.Context) (*Session, error)
	// Get loads a live session; unknown or expired ids yield errx.ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// Save persists changes to a session and refreshes its expiry.
	Save(ctx context.Context, s *Session) error
	// Destroy removes a session.
	Destroy(ctx context.Context, id string) error
}
