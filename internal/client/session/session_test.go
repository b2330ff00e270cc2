package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	MemoryStore
	saveErr  error
	clearErr error
}

func (f *failingStore) Save(ctx context.Context, c Credentials) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemoryStore.Save(ctx, c)
}

func (f *failingStore) Clear(ctx context.Context) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	return f.MemoryStore.Clear(ctx)
}

func signedAccess(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)})
	s, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func TestSession_SaveAndToken(t *testing.T) {
	store := NewMemoryStore()
	s := New(store)
	ctx := context.Background()

	assert.Nil(t, s.Token())
	assert.False(t, s.Authenticated())

	require.NoError(t, s.Save(ctx, "A1", "R1"))
	require.NoError(t, s.SetUserID(ctx, "7"))

	tok := s.Token()
	require.NotNil(t, tok)
	assert.Equal(t, "A1", tok.AccessToken)
	assert.Equal(t, "R1", tok.RefreshToken)
	assert.Equal(t, "Bearer", tok.Type())
	assert.True(t, tok.Expiry.IsZero(), "opaque access tokens carry no expiry")
	assert.True(t, s.Authenticated())
	assert.Equal(t, "7", s.UserID())

	persisted, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Credentials{AccessToken: "A1", RefreshToken: "R1", UserID: "7"}, persisted)
}

func TestSession_TokenExpiryFromJWT(t *testing.T) {
	s := New(NewMemoryStore())
	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)

	require.NoError(t, s.Save(context.Background(), signedAccess(t, exp), "R"))
	assert.True(t, exp.Equal(s.Token().Expiry))
}

func TestSession_SaveDropsPreviousUser(t *testing.T) {
	s := New(NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "A1", "R1"))
	require.NoError(t, s.SetUserID(ctx, "7"))
	require.NoError(t, s.Save(ctx, "A2", "R2"))

	assert.Empty(t, s.UserID())
}

func TestSession_UpdateAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps refresh when not rotated", func(t *testing.T) {
		s := New(NewMemoryStore())
		require.NoError(t, s.Save(ctx, "A1", "R1"))

		tok, err := s.UpdateAccess(ctx, "R1", "A2", "")
		require.NoError(t, err)
		assert.Equal(t, "A2", tok.AccessToken)
		assert.Equal(t, "R1", tok.RefreshToken)
	})

	t.Run("rotates refresh", func(t *testing.T) {
		s := New(NewMemoryStore())
		require.NoError(t, s.Save(ctx, "A1", "R1"))

		tok, err := s.UpdateAccess(ctx, "R1", "A2", "R2")
		require.NoError(t, err)
		assert.Equal(t, "R2", tok.RefreshToken)
	})

	t.Run("cleared meanwhile", func(t *testing.T) {
		s := New(NewMemoryStore())
		require.NoError(t, s.Save(ctx, "A1", "R1"))
		require.NoError(t, s.Clear(ctx))

		_, err := s.UpdateAccess(ctx, "R1", "A2", "")
		require.ErrorIs(t, err, ErrSessionChanged)
		assert.False(t, s.Authenticated())
	})

	t.Run("replaced by a new login meanwhile", func(t *testing.T) {
		s := New(NewMemoryStore())
		require.NoError(t, s.Save(ctx, "A1", "R1"))
		require.NoError(t, s.Save(ctx, "B1", "S1"))

		_, err := s.UpdateAccess(ctx, "R1", "A2", "")
		require.ErrorIs(t, err, ErrSessionChanged)
		assert.Equal(t, "B1", s.Token().AccessToken)
	})
}

func TestSession_StoreFailureLeavesMemoryUntouched(t *testing.T) {
	store := &failingStore{}
	s := New(store)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "A1", "R1"))

	store.saveErr = errors.New("disk full")
	_, err := s.UpdateAccess(ctx, "R1", "A2", "")
	require.Error(t, err)
	assert.Equal(t, "A1", s.Token().AccessToken)
}

func TestSession_ClearDropsMemoryEvenIfStoreFails(t *testing.T) {
	store := &failingStore{}
	s := New(store)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "A1", "R1"))

	store.clearErr = errors.New("locked")
	require.Error(t, s.Clear(ctx))
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.RefreshToken())
}

func TestSession_Load(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, Credentials{AccessToken: "A", RefreshToken: "R", UserID: "3"}))

	s := New(store)
	require.NoError(t, s.Load(ctx))
	assert.Equal(t, "A", s.Token().AccessToken)
	assert.Equal(t, "3", s.UserID())
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s := New(NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "A0", "R"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.UpdateAccess(ctx, "R", "A1", "")
		}()
		go func() {
			defer wg.Done()
			_ = s.Token()
		}()
	}
	wg.Wait()

	assert.Equal(t, "A1", s.Token().AccessToken)
}
