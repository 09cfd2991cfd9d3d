package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, userID string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    userID,
		"username":   "merchant-" + userID,
		"store_name": "Store " + userID,
		"exp":        exp.Unix(),
	})
	s, err := token.SignedString([]byte("any-secret"))
	require.NoError(t, err)
	return s
}

func TestStore_LoginAndLogout(t *testing.T) {
	s := NewStore()
	assert.False(t, s.Snapshot().Authenticated)
	assert.Empty(t, s.Token())

	tok := signToken(t, "u1", time.Now().Add(time.Hour))
	require.NoError(t, s.Login(tok))

	snap := s.Snapshot()
	assert.True(t, snap.Authenticated)
	assert.Equal(t, tok, snap.Token)
	assert.Equal(t, Identity{UserID: "u1", Username: "merchant-u1", StoreName: "Store u1"}, snap.Identity)

	s.Logout()
	assert.False(t, s.Snapshot().Authenticated)
}

func TestStore_RejectsBadTokens(t *testing.T) {
	s := NewStore()
	assert.Error(t, s.Login("garbage"))
	assert.ErrorIs(t, s.Login(signToken(t, "u1", time.Now().Add(-time.Minute))), ErrExpired)

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"username": "x"})
	raw, _ := noUser.SignedString([]byte("k"))
	assert.Error(t, s.Login(raw))
	assert.False(t, s.Snapshot().Authenticated)
}

func TestStore_ExpiryIsReadOnEveryAccess(t *testing.T) {
	s := NewStore()
	now := time.Now()
	s.now = func() time.Time { return now }
	require.NoError(t, s.Login(signToken(t, "u1", now.Add(time.Minute))))
	assert.True(t, s.Snapshot().Authenticated)

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	assert.False(t, s.Snapshot().Authenticated)
	assert.Empty(t, s.Token())
}

func TestStore_SubscribeSeesEveryChange(t *testing.T) {
	s := NewStore()
	var mu sync.Mutex
	var seen []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, snap)
	})

	exp := time.Now().Add(time.Hour)
	first := signToken(t, "u1", exp)
	require.NoError(t, s.Login(first))
	require.NoError(t, s.Login(first)) // unchanged, no notification
	require.NoError(t, s.Login(signToken(t, "u2", exp)))
	s.Logout()

	unsubscribe()
	unsubscribe()
	require.NoError(t, s.Login(first))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.Equal(t, "u1", seen[0].Identity.UserID)
	assert.Equal(t, "u2", seen[1].Identity.UserID)
	assert.False(t, seen[2].Authenticated)
}

func TestStore_FileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewStore()
	require.NoError(t, s.Login(signToken(t, "u1", time.Now().Add(time.Hour))))
	require.NoError(t, s.SaveFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded := NewStore()
	require.NoError(t, loaded.LoadFile(path))
	assert.Equal(t, s.Snapshot(), loaded.Snapshot())

	s.Logout()
	require.NoError(t, s.SaveFile(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, loaded.LoadFile(path))
	assert.False(t, loaded.Snapshot().Authenticated)
}

func TestStore_WatchPicksUpExternalLogin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")

	watched := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watched.Watch(ctx, path, nil) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	other := NewStore()
	require.NoError(t, other.Login(signToken(t, "u9", time.Now().Add(time.Hour))))

	// The watcher may not be registered yet on the first write; keep saving
	// until it notices.
	require.Eventually(t, func() bool {
		_ = other.SaveFile(path)
		return watched.Snapshot().Identity.UserID == "u9"
	}, 5*time.Second, 50*time.Millisecond)
}
