// Package session provides the cookie session transport used to keep users logged in
package session

import (
	"context"
	"crypto/sha256"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/LucianoSainz/w5d1/internal/config"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/hkdf"
)

// keyPrefix namespaces session values in Redis
const keyPrefix = "session:"

func init() {
	// flashes are kept as []interface{} values
	gob.Register([]interface{}{})
}

// RedisClient is the subset of the go-redis client used by RedisStore
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewStore creates the session store selected by cfg.Backend.
// client is only used by the redis backend and may be nil otherwise.
func NewStore(cfg config.SessionConfig, client RedisClient) (sessions.Store, error) {
	options := &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	hashKey, blockKey, err := deriveKeys(cfg.Secret)
	if err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case config.SessionBackendRedis:
		if client == nil {
			return nil, fmt.Errorf("redis session backend requires a redis client")
		}
		store := NewRedisStore(client, hashKey, blockKey)
		store.Options = options
		store.MaxAge(options.MaxAge)
		return store, nil
	case config.SessionBackendCookie, "":
		store := sessions.NewCookieStore(hashKey, blockKey)
		store.Options = options
		store.MaxAge(options.MaxAge)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session backend: %q", cfg.Backend)
	}
}

// deriveKeys expands secret into a signing key and an AES-256 encryption key
func deriveKeys(secret string) (hashKey, blockKey []byte, err error) {
	if secret == "" {
		return nil, nil, fmt.Errorf("session secret is required")
	}
	hashKey = make([]byte, 64)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte("session hash key")), hashKey); err != nil {
		return nil, nil, fmt.Errorf("failed to derive session hash key: %w", err)
	}
	blockKey = make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte("session block key")), blockKey); err != nil {
		return nil, nil, fmt.Errorf("failed to derive session block key: %w", err)
	}
	return hashKey, blockKey, nil
}

// RedisStore stores session values in Redis and only a signed session id in the cookie
type RedisStore struct {
	Codecs  []securecookie.Codec
	Options *sessions.Options

	client     RedisClient
	serializer securecookie.GobEncoder
}

// NewRedisStore returns a new RedisStore.
// keyPairs are used to sign the session id cookie, see sessions.NewCookieStore.
func NewRedisStore(client RedisClient, keyPairs ...[]byte) *RedisStore {
	store := &RedisStore{
		Codecs: securecookie.CodecsFromPairs(keyPairs...),
		Options: &sessions.Options{
			Path:   "/",
			MaxAge: 86400 * 30,
		},
		client: client,
	}
	store.MaxAge(store.Options.MaxAge)
	return store
}

// Get returns a session for the given name after adding it to the registry
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New returns a session for the given name without adding it to the registry.
// A missing or expired Redis entry yields a fresh session.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	if err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.Codecs...); err != nil {
		session.ID = ""
		return session, err
	}

	found, err := s.load(r.Context(), session)
	if err != nil {
		return session, err
	}
	if !found {
		session.ID = ""
		return session, nil
	}
	session.IsNew = false
	return session, nil
}

// Save persists the session values in Redis and writes the id cookie.
// A negative MaxAge deletes the session.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	ctx := r.Context()

	if session.Options.MaxAge <= 0 {
		if session.ID != "" {
			if err := s.client.Del(ctx, keyPrefix+session.ID).Err(); err != nil {
				return fmt.Errorf("failed to delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	data, err := s.serializer.Serialize(session.Values)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}
	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if err := s.client.Set(ctx, keyPrefix+session.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// MaxAge sets the maximum age for the store and the underlying cookie implementation
func (s *RedisStore) MaxAge(age int) {
	s.Options.MaxAge = age
	for _, codec := range s.Codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxAge(age)
		}
	}
}

func (s *RedisStore) load(ctx context.Context, session *sessions.Session) (bool, error) {
	data, err := s.client.Get(ctx, keyPrefix+session.ID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load session: %w", err)
	}
	if err := s.serializer.Deserialize(data, &session.Values); err != nil {
		return false, fmt.Errorf("failed to deserialize session: %w", err)
	}
	return true, nil
}
