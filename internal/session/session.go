// Package session holds per-visitor transient state in Redis, correlated
// across requests by a signed cookie. The cookie value is an HS256 token
// whose subject is the session ID; the named values live in a Redis hash
// that expires with the session TTL.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "venuetix:session"

// Reserved value names used by the flows.
const (
	KeyUserID   = "user_id"
	KeyLocale   = "locale"
	KeyOTP      = "otp"
	KeyUsername = "username"
	KeyPassword = "password"
	KeyMobile   = "mobile"
)

// Flash is a one-shot status message surfaced on the next rendered page.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type Manager struct {
	rdb        *redis.Client
	secret     string
	ttl        time.Duration
	cookieName string
}

func NewManager(rdb *redis.Client, secret string, ttl time.Duration, cookieName string) *Manager {
	return &Manager{
		rdb:        rdb,
		secret:     secret,
		ttl:        ttl,
		cookieName: cookieName,
	}
}

type Session struct {
	id  string
	rdb *redis.Client
	ttl time.Duration
}

func valuesKey(id string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, id)
}

func flashKey(id string) string {
	return fmt.Sprintf("%s:%s:flash", keyPrefix, id)
}

// Load resolves the visitor's session from the request cookie, creating a
// fresh session when the cookie is absent or its signature does not check
// out. The second return value reports whether a new cookie must be issued.
func (m *Manager) Load(r *http.Request) (*Session, bool) {
	if cookie, err := r.Cookie(m.cookieName); err == nil {
		if id, err := m.parseToken(cookie.Value); err == nil {
			return &Session{id: id, rdb: m.rdb, ttl: m.ttl}, false
		}
	}
	return &Session{id: uuid.NewString(), rdb: m.rdb, ttl: m.ttl}, true
}

// Issue writes the session cookie for sess to the response.
func (m *Manager) Issue(w http.ResponseWriter, sess *Session) error {
	token, err := m.signToken(sess.id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) signToken(sid string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

func (m *Manager) parseToken(tokenString string) (string, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(m.secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := tok.Claims.(*jwt.RegisteredClaims)
	if !ok || !tok.Valid || claims.Subject == "" {
		return "", errors.New("invalid session token")
	}
	return claims.Subject, nil
}

func (s *Session) ID() string {
	return s.id
}

// Get returns the named value, or "" when it was never set.
func (s *Session) Get(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.HGet(ctx, valuesKey(s.id), key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (s *Session) Set(ctx context.Context, key, value string) error {
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, valuesKey(s.id), key, value)
	pipe.Expire(ctx, valuesKey(s.id), s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// SetAll stages several values in one round trip.
func (s *Session) SetAll(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, valuesKey(s.id), values)
	pipe.Expire(ctx, valuesKey(s.id), s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Session) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.HDel(ctx, valuesKey(s.id), keys...).Err()
}

// Clear drops the whole session: values and pending flashes.
func (s *Session) Clear(ctx context.Context) error {
	return s.rdb.Del(ctx, valuesKey(s.id), flashKey(s.id)).Err()
}

// Flash queues a one-shot message for the next rendered page.
func (s *Session) Flash(ctx context.Context, level, message string) error {
	payload, err := json.Marshal(Flash{Level: level, Message: message})
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, flashKey(s.id), payload)
	pipe.Expire(ctx, flashKey(s.id), s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Flashes pops and returns all queued messages.
func (s *Session) Flashes(ctx context.Context) ([]Flash, error) {
	pipe := s.rdb.TxPipeline()
	items := pipe.LRange(ctx, flashKey(s.id), 0, -1)
	pipe.Del(ctx, flashKey(s.id))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	raw, err := items.Result()
	if err != nil {
		return nil, err
	}

	flashes := make([]Flash, 0, len(raw))
	for _, item := range raw {
		var f Flash
		if err := json.Unmarshal([]byte(item), &f); err != nil {
			continue
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}

// UserID returns the authenticated identity marker, or 0 when anonymous.
func (s *Session) UserID(ctx context.Context) (int64, error) {
	val, err := s.Get(ctx, KeyUserID)
	if err != nil || val == "" {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

func (s *Session) SetUserID(ctx context.Context, id int64) error {
	return s.Set(ctx, KeyUserID, strconv.FormatInt(id, 10))
}

func (s *Session) Locale(ctx context.Context) (string, error) {
	return s.Get(ctx, KeyLocale)
}

func (s *Session) SetLocale(ctx context.Context, locale string) error {
	return s.Set(ctx, KeyLocale, locale)
}
