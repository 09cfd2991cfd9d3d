// Package session holds the process-wide authentication state: whether a
// merchant is logged in, who they are and the bearer token to send. Readers
// either call Snapshot on every operation or Subscribe to changes; nothing
// should keep a copy of the token around.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// ErrExpired is returned when a token's exp claim is in the past.
var ErrExpired = errors.New("session token expired")

// Identity is the merchant a token was issued to.
type Identity struct {
	UserID    string
	Username  string
	StoreName string
}

// Snapshot is the session state at one moment.
type Snapshot struct {
	Authenticated bool
	Token         string
	Identity      Identity
	ExpiresAt     time.Time
}

// Store is the session state shared by the dashboard components.
type Store struct {
	mu      sync.RWMutex
	current Snapshot
	subs    map[int]func(Snapshot)
	nextSub int
	now     func() time.Time
}

// NewStore returns an unauthenticated store.
func NewStore() *Store {
	return &Store{
		subs: make(map[int]func(Snapshot)),
		now:  time.Now,
	}
}

// Snapshot returns the current session state. An expired session reads as
// unauthenticated.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current.Authenticated && !s.current.ExpiresAt.IsZero() && !s.now().Before(s.current.ExpiresAt) {
		return Snapshot{}
	}
	return s.current
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	return s.Snapshot().Token
}

// Login installs token as the current credential. The identity is read from
// the token's claims; the signature is the server's business and is not
// checked here.
func (s *Store) Login(token string) error {
	snap, err := s.parse(token)
	if err != nil {
		return err
	}
	s.set(snap)
	return nil
}

// Logout clears the session.
func (s *Store) Logout() {
	s.set(Snapshot{})
}

// Subscribe registers fn to be called with the new state after every change.
// fn runs on the goroutine that made the change and must not block. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) set(snap Snapshot) {
	s.mu.Lock()
	changed := s.current != snap
	s.current = snap
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) parse(token string) (Snapshot, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return Snapshot{}, fmt.Errorf("malformed session token: %w", err)
	}

	snap := Snapshot{
		Authenticated: true,
		Token:         token,
		Identity: Identity{
			UserID:    stringClaim(claims, "user_id"),
			Username:  stringClaim(claims, "username"),
			StoreName: stringClaim(claims, "store_name"),
		},
	}
	if snap.Identity.UserID == "" {
		return Snapshot{}, errors.New("session token carries no user_id")
	}
	if exp, ok := claims["exp"].(float64); ok {
		snap.ExpiresAt = time.Unix(int64(exp), 0)
		if !s.now().Before(snap.ExpiresAt) {
			return Snapshot{}, ErrExpired
		}
	}
	return snap, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
