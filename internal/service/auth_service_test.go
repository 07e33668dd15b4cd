package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/stuteach-backend/internal/config"
	"github.com/stemsi/stuteach-backend/internal/model"
	"github.com/stemsi/stuteach-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T, rdb *redis.Client) (*AuthService, *repository.MemoryUserRepository) {
	t.Helper()
	users := repository.NewMemoryUserRepository(repository.NewMemoryDB())
	return NewAuthService(testConfig(), users, rdb), users
}

func seedUser(t *testing.T, users *repository.MemoryUserRepository, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Name: "Ana", Email: "ana@school.test", PasswordHash: "x", Role: role}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestPasswordRoundTrip(t *testing.T) {
	auth, _ := newAuth(t, nil)

	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, auth.CheckPassword(hash, "secret123"))
	assert.ErrorIs(t, auth.CheckPassword(hash, "wrong"), ErrInvalidCredentials)
}

func TestResolveCaller(t *testing.T) {
	auth, users := newAuth(t, nil)
	u := seedUser(t, users, model.RoleTeacher)

	token, err := auth.GenerateToken(u)
	require.NoError(t, err)

	caller, claims, err := auth.ResolveCaller(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, caller.UserID)
	assert.Equal(t, model.RoleTeacher, caller.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestResolveCaller_Failures(t *testing.T) {
	auth, users := newAuth(t, nil)
	u := seedUser(t, users, model.RoleStudent)
	ctx := context.Background()

	_, _, err := auth.ResolveCaller(ctx, "")
	assert.ErrorIs(t, err, ErrTokenMissing)

	_, _, err = auth.ResolveCaller(ctx, "not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other := NewAuthService(&config.Config{JWTSecret: "other", JWTExpiry: time.Hour, BcryptCost: 4}, users, nil)
	forged, err := other.GenerateToken(u)
	require.NoError(t, err)
	_, _, err = auth.ResolveCaller(ctx, forged)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	ghost := &model.User{ID: uuid.New(), Role: model.RoleTeacher}
	orphan, err := auth.GenerateToken(ghost)
	require.NoError(t, err)
	_, _, err = auth.ResolveCaller(ctx, orphan)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResolveCaller_Expired(t *testing.T) {
	auth, users := newAuth(t, nil)
	u := seedUser(t, users, model.RoleStudent)

	auth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := auth.GenerateToken(u)
	require.NoError(t, err)
	auth.now = time.Now

	_, _, err = auth.ResolveCaller(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestResolveCaller_RejectsOtherAlgorithms(t *testing.T) {
	auth, users := newAuth(t, nil)
	u := seedUser(t, users, model.RoleTeacher)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           u.ID,
		Role:             u.Role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, _, err = auth.ResolveCaller(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRevoke(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	auth, users := newAuth(t, rdb)
	u := seedUser(t, users, model.RoleTeacher)
	ctx := context.Background()

	token, err := auth.GenerateToken(u)
	require.NoError(t, err)
	_, claims, err := auth.ResolveCaller(ctx, token)
	require.NoError(t, err)

	require.NoError(t, auth.Revoke(ctx, claims))
	key := config.CacheKey.RevokedTokenKey(claims.ID)
	assert.True(t, mr.Exists(key))
	assert.Greater(t, mr.TTL(key), time.Duration(0))

	_, _, err = auth.ResolveCaller(ctx, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists(key))
}

func TestRevoke_WithoutRedisIsNoop(t *testing.T) {
	auth, users := newAuth(t, nil)
	u := seedUser(t, users, model.RoleTeacher)

	token, err := auth.GenerateToken(u)
	require.NoError(t, err)
	_, claims, err := auth.ResolveCaller(context.Background(), token)
	require.NoError(t, err)

	assert.NoError(t, auth.Revoke(context.Background(), claims))
	_, _, err = auth.ResolveCaller(context.Background(), token)
	assert.NoError(t, err)
}
