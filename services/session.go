// ABOUTME: Session management service for the BFF auth pattern
// ABOUTME: Stores and retrieves auth sessions using cache backend

package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/artspark/gallery-bff/cache"
	"github.com/artspark/gallery-bff/models"
)

// SessionService manages server-side authentication sessions
type SessionService struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewSessionService creates a new session service. Sessions live for ttl
// after creation.
func NewSessionService(c *cache.Cache, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionService{cache: c, ttl: ttl}
}

// Create generates a new session holding the upstream bearer token and
// stores it in the cache. Returns the session.
func (s *SessionService) Create(user models.AuthUser, accessToken string) (*models.Session, error) {
	sessionID, err := randomToken()
	if err != nil {
		return nil, err
	}
	csrfToken, err := randomToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &models.Session{
		ID:          sessionID,
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Surname:     user.Surname,
		Roles:       user.Roles,
		AccessToken: accessToken,
		CSRFToken:   csrfToken,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	s.cache.SetWithTTL(sessionKey(sessionID), session, s.ttl)

	return session, nil
}

// Get retrieves a session by ID
func (s *SessionService) Get(sessionID string) (*models.Session, error) {
	val, ok := s.cache.Get(sessionKey(sessionID))
	if !ok {
		return nil, errors.New("session not found")
	}

	session, ok := val.(*models.Session)
	if !ok {
		return nil, errors.New("invalid session data")
	}

	return session, nil
}

// Delete removes a session from the cache
func (s *SessionService) Delete(sessionID string) {
	s.cache.Clear(sessionKey(sessionID))
}

// randomToken returns 32 bytes of cryptographically secure random data,
// base64url encoded.
func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// sessionKey returns the cache key for a session ID
func sessionKey(sessionID string) string {
	return "session:" + sessionID
}
