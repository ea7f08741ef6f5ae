// Package sessions carries an opaque session id in a signed cookie and keeps
// the session record (the logged in user id) in a server side store.
package sessions

import (
	"context"
	"encoding/base32"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/dan47bennett/typescript-reddit/internal/apperrors"
	"github.com/dan47bennett/typescript-reddit/internal/logger"
	"github.com/dan47bennett/typescript-reddit/internal/models"
)

const (
	// DefaultCookieName matches the cookie the web client expects.
	DefaultCookieName = "qid"
	// DefaultMaxAge is the cookie lifetime, roughly ten years.
	DefaultMaxAge = 10 * 365 * 24 * time.Hour

	idKeyLength = 32
)

//go:generate mockgen -source=manager.go -destination=mock_store.go -package=sessions

// Store persists session records by id.
type Store interface {
	Get(ctx context.Context, id string) (*models.SessionData, error)
	Save(ctx context.Context, id string, data models.SessionData, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Config holds cookie settings for a Manager.
type Config struct {
	CookieName string
	Secret     string
	Secure     bool
	MaxAge     time.Duration
}

// Session is the per-request view of a session. A zero UserID means anonymous.
type Session struct {
	ID     string
	UserID int

	issue bool
	clear bool
}

func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != 0
}

// Manager loads sessions from requests and writes their cookies back.
type Manager struct {
	store   Store
	codec   *securecookie.SecureCookie
	name    string
	options *sessions.Options
	ttl     time.Duration
}

func NewManager(store Store, cfg Config) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}

	hashKey := []byte(cfg.Secret)
	if len(hashKey) == 0 {
		logger.Log.Warnw("session secret is empty, using a random key; sessions will not survive a restart")
		hashKey = securecookie.GenerateRandomKey(idKeyLength)
	}

	maxAge := int(cfg.MaxAge / time.Second)
	codec := securecookie.New(hashKey, nil).MaxAge(maxAge)

	return &Manager{
		store: store,
		codec: codec,
		name:  cfg.CookieName,
		options: &sessions.Options{
			Path:     "/",
			MaxAge:   maxAge,
			Secure:   cfg.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
		ttl: cfg.MaxAge,
	}
}

// Load resolves the session carried by r. Missing, tampered and expired
// cookies yield an anonymous session; only store failures are returned.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.name)
	if err != nil {
		return &Session{}, nil
	}

	var id string
	if err := m.codec.Decode(m.name, cookie.Value, &id); err != nil {
		logger.Log.Debugw("discarding session cookie", "error", err)
		return &Session{}, nil
	}

	data, err := m.store.Get(r.Context(), id)
	if errors.Is(err, apperrors.ErrSessionNotFound) {
		return &Session{}, nil
	}
	if err != nil {
		logger.Log.Errorw("failed to load session", "err", err)
		return nil, err
	}

	return &Session{ID: id, UserID: data.UserID}, nil
}

// Establish binds s to userID under a freshly generated id and drops the
// previous record, if any.
func (m *Manager) Establish(ctx context.Context, s *Session, userID int) error {
	id := newSessionID()

	if err := m.store.Save(ctx, id, models.SessionData{UserID: userID}, m.ttl); err != nil {
		logger.Log.Errorw("failed to save session", "user_id", userID, "err", err)
		return err
	}

	if s.ID != "" {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			logger.Log.Warnw("failed to delete rotated session", "err", err)
		}
	}

	s.ID = id
	s.UserID = userID
	s.issue = true
	s.clear = false
	return nil
}

// Destroy removes the record of s and marks its cookie for clearing.
// The cookie is cleared even when the store delete fails.
func (m *Manager) Destroy(ctx context.Context, s *Session) error {
	var err error
	if s.ID != "" {
		err = m.store.Delete(ctx, s.ID)
		if err != nil {
			logger.Log.Errorw("failed to delete session", "err", err)
		}
	}

	s.ID = ""
	s.UserID = 0
	s.issue = false
	s.clear = true
	return err
}

// Write sets or clears the session cookie when s changed during the request.
func (m *Manager) Write(w http.ResponseWriter, s *Session) error {
	switch {
	case s.clear:
		opts := *m.options
		opts.MaxAge = -1
		http.SetCookie(w, sessions.NewCookie(m.name, "", &opts))
	case s.issue:
		encoded, err := m.codec.Encode(m.name, s.ID)
		if err != nil {
			logger.Log.Errorw("failed to encode session cookie", "err", err)
			return err
		}
		http.SetCookie(w, sessions.NewCookie(m.name, encoded, m.options))
	}
	return nil
}

func newSessionID() string {
	return strings.TrimRight(
		base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(idKeyLength)), "=")
}
