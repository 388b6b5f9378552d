package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Keys of the values kept in a session
const (
	userIDKey   = "user_id"
	returnToKey = "return_to"
)

// Flash categories
const (
	FlashError = "error"
	FlashInfo  = "info"
)

// Manager reads and writes the authentication state kept in the session
type Manager struct {
	store  sessions.Store
	name   string
	logger *zap.Logger
}

// NewManager creates a new session manager for the cookie called name
func NewManager(store sessions.Store, name string, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		name:   name,
		logger: logger,
	}
}

// session returns the request's session.
// A cookie that fails signature or expiry checks is ignored, the stores already hand back a fresh session for it.
func (m *Manager) session(r *http.Request) (*sessions.Session, error) {
	s, err := m.store.Get(r, m.name)
	if err != nil {
		var cookieErr securecookie.Error
		if errors.As(err, &cookieErr) && cookieErr.IsDecode() && s != nil {
			m.logger.Debug("discarding invalid session cookie", zap.Error(err))
			return s, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// UserID returns the identity stored in the session, if any
func (m *Manager) UserID(r *http.Request) (int, bool, error) {
	s, err := m.session(r)
	if err != nil {
		return 0, false, err
	}
	id, ok := s.Values[userIDKey].(int)
	return id, ok, nil
}

// LogIn establishes the login state for the user id and returns the remembered
// return path, or "" when none is set. Both happen in a single save.
// The session id is rotated so an id issued before login cannot be reused.
func (m *Manager) LogIn(w http.ResponseWriter, r *http.Request, id int) (string, error) {
	s, err := m.session(r)
	if err != nil {
		return "", err
	}
	returnTo, _ := s.Values[returnToKey].(string)
	delete(s.Values, returnToKey)
	s.ID = ""
	s.Values[userIDKey] = id
	if err := m.save(w, r, s); err != nil {
		return "", err
	}
	if !IsLocalPath(returnTo) {
		return "", nil
	}
	return returnTo, nil
}

// Clear removes the login state. Clearing an anonymous session is a no-op that still succeeds.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	s, err := m.session(r)
	if err != nil {
		return err
	}
	if _, ok := s.Values[userIDKey]; !ok {
		if _, ok := s.Values[returnToKey]; !ok {
			return nil
		}
	}
	delete(s.Values, userIDKey)
	delete(s.Values, returnToKey)
	return m.save(w, r, s)
}

// AddFlash queues a one-shot message of the given kind
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) error {
	s, err := m.session(r)
	if err != nil {
		return err
	}
	s.AddFlash(message, kind)
	return m.save(w, r, s)
}

// Flashes returns and removes the queued messages of the given kind
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request, kind string) ([]string, error) {
	s, err := m.session(r)
	if err != nil {
		return nil, err
	}
	raw := s.Flashes(kind)
	if len(raw) == 0 {
		return nil, nil
	}
	messages := make([]string, 0, len(raw))
	for _, v := range raw {
		if msg, ok := v.(string); ok {
			messages = append(messages, msg)
		}
	}
	if err := m.save(w, r, s); err != nil {
		return nil, err
	}
	return messages, nil
}

// SetReturnTo remembers where to send the user after login.
// Anything other than a local path is ignored.
func (m *Manager) SetReturnTo(w http.ResponseWriter, r *http.Request, path string) error {
	if !IsLocalPath(path) {
		return nil
	}
	s, err := m.session(r)
	if err != nil {
		return err
	}
	s.Values[returnToKey] = path
	return m.save(w, r, s)
}

func (m *Manager) save(w http.ResponseWriter, r *http.Request, s *sessions.Session) error {
	if err := s.Save(r, w); err != nil {
		m.logger.Error("failed to save session", zap.Error(err))
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// IsLocalPath reports whether path is a same-site absolute path
func IsLocalPath(path string) bool {
	if !strings.HasPrefix(path, "/") {
		return false
	}
	if strings.HasPrefix(path, "//") || strings.HasPrefix(path, "/\\") {
		return false
	}
	return !strings.ContainsAny(path, "\r\n")
}
