// Package session holds the client's authentication state: the bearer
// token and the user it belongs to. The session is an explicit object
// passed into the store and aggregators rather than ambient global
// state, with Load/Save persistence between runs.
package session

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/inhabitapp/inhabit/internal/models"
)

// Session is the client's current credential and user.
type Session struct {
	mu   sync.Mutex
	file string

	// Token is the bearer credential, empty when unauthenticated.
	Token string `json:"token"`
	// User is the authenticated user, nil when unauthenticated.
	User *models.User `json:"user,omitempty"`
}

// New returns a session persisted at the given file path.
func New(file string) *Session {
	return &Session{file: file}
}

// Load reads the stored credential. A missing file leaves the session
// unauthenticated and is not an error.
func (s *Session) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(s)
}

// Save persists the current credential.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(s.file)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(s)
}

// Set installs a credential after login or registration.
func (s *Session) Set(token string, user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Token = token
	s.User = user
}

// Clear discards the credential. Called on logout and whenever the
// service answers 401.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Token = ""
	s.User = nil
}

// BearerToken returns the current token, empty when unauthenticated.
func (s *Session) BearerToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Token
}

// CurrentUser returns the authenticated user or nil.
func (s *Session) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.User
}

// Authenticated reports whether a credential is present.
func (s *Session) Authenticated() bool {
	return s.BearerToken() != ""
}
