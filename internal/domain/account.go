package domain

import (
	"strings"
	"time"
)

type Profile struct {
	FullName     string `json:"full_name"`
	PhoneNumber  string `json:"phone_number"`
	Email        string `json:"email"`
	ProfileImage string `json:"profile_image"`
}

// Complete reports whether the profile satisfies the checkout gate.
func (p Profile) Complete() bool {
	return strings.TrimSpace(p.FullName) != "" && strings.TrimSpace(p.PhoneNumber) != ""
}

type Address struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	IsDefault bool   `json:"is_default"`
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}

// Session is an authenticated session issued by the auth provider.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// ExpiresWithin reports whether the access token expires before now+d.
func (s *Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return now.Add(d).After(s.ExpiresAt)
}
