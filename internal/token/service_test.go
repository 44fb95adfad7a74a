package token

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yerokha312/cooks-corner/internal/cache"
	"github.com/yerokha312/cooks-corner/internal/models"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Role{}, &models.RefreshToken{})
	assert.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	kv := cache.NewRedisCache(client)

	service := NewService("jwt-secret-for-tests-jwt-secret-for", NewCryptor("cipher-key"), NewStore(db), kv)
	return service, db
}

func newTestUser(t *testing.T, db *gorm.DB) *models.User {
	user := &models.User{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hashed",
		Enabled:  true,
		Roles:    []models.Role{{Authority: "USER"}},
	}
	assert.NoError(t, db.Create(user).Error)
	return user
}

func TestAccessTokenValidatesWhileCached(t *testing.T) {
	service, db := newTestService(t)
	user := newTestUser(t, db)
	ctx := context.Background()

	accessToken, err := service.GenerateAccessToken(ctx, user)
	assert.NoError(t, err)

	claims, err := service.ValidateAccessToken(ctx, accessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.Email, claims.Subject)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Name, claims.Name)
	assert.Equal(t, KindAccess, claims.TokenType)
	assert.Equal(t, "USER", claims.Scopes)
	assert.Equal(t, "self", claims.Issuer)
}

func TestNewLoginInvalidatesPreviousAccessToken(t *testing.T) {
	service, db := newTestService(t)
	user := newTestUser(t, db)
	ctx := context.Background()

	first, err := service.GenerateAccessToken(ctx, user)
	assert.NoError(t, err)

	// claim timestamps have second granularity
	time.Sleep(1100 * time.Millisecond)

	second, err := service.GenerateAccessToken(ctx, user)
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = service.ValidateAccessToken(ctx, first)
	assert.True(t, IsInvalidToken(err))
	assert.EqualError(t, err, "Token is revoked")

	_, err = service.ValidateAccessToken(ctx, second)
	assert.NoError(t, err)
}

func TestConfirmationTokenIsSingleUse(t *testing.T) {
	service, db := newTestService(t)
	user := newTestUser(t, db)
	ctx := context.Background()

	encrypted, err := service.GenerateConfirmationToken(ctx, user)
	assert.NoError(t, err)

	email, err := service.ConfirmationTokenIsValid(ctx, encrypted)
	assert.NoError(t, err)
	assert.Equal(t, user.Email, email)

	_, err = service.ConfirmationTokenIsValid(ctx, encrypted)
	assert.True(t, IsInvalidToken(err))
	assert.EqualError(t, err, "Confirmation link is expired")
}

func TestNewConfirmationTokenSupersedesPrevious(t *testing.T) {
	service, db := newTestService(t)
	user := newTestUser(t, db)
	ctx := context.Background()

	first, err := service.GenerateConfirmationToken(ctx, user)
	assert.NoError(t, err)
	second, err := service.GenerateConfirmationToken(ctx, user)
	assert.NoError(t, err)

	_, err = service.ConfirmationTokenIsValid(ctx, first)
	assert.EqualError(t, err, "Confirmation link is expired")

	email, err := service.ConfirmationTokenIsValid(ctx, second)
	assert.NoError(t, err)
	assert.Equal(t, user.Email, email)
}

func TestConfirmationTokenRejectsGarbage(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.ConfirmationTokenIsValid(context.Background(), "garbage")
	assert.True(t, IsInvalidToken(err))
}

func TestRefreshAccessToken(t *testing.T) {
	service, db := newTestService(t)
	user := newTestUser(t, db)
	ctx := context.Background()

	refreshToken, err := service.GenerateRefreshToken(ctx, user)
	assert.NoError(t, err)

	login, err := service.RefreshAccessToken(ctx, "Bearer "+refreshToken)
	assert.NoError(t, err)
	assert.Equal(t, refreshToken, login.RefreshToken)
	assert.Equal(t, user.ID, login.UserID)
	assert.Equal(t, user.Name, login.Name)

	claims, err := service.ValidateAccessToken(ctx, login.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, KindAccess, claims.TokenType)
}

func TestRefreshRequiresBearerPrefix(t *testing.T) {
	service, db := newTestService(t)
	user := newTestUser(t, db)
	ctx := context.Background()

	refreshToken, err := service.GenerateRefreshToken(ctx, user)
	assert.NoError(t, err)

	_, err = service.RefreshAccessToken(ctx, refreshToken)
	assert.True(t, IsInvalidToken(err))
	assert.EqualError(t, err, "Invalid token format")
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	service, db := newTestService(t)
	user := newTestUser(t, db)
	ctx := context.Background()

	accessToken, err := service.GenerateAccessToken(ctx, user)
	assert.NoError(t, err)

	_, err = service.RefreshAccessToken(ctx, "Bearer "+accessToken)
	assert.True(t, IsInvalidToken(err))
	assert.EqualError(t, err, "Invalid token type")
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	service, db := newTestService(t)
	user := newTestUser(t, db)

	past := time.Now().Add(-2 * refreshLifetime)
	expired, err := service.encode(service.claims(past, refreshLifetime, user.Email, user.ID, "USER", KindRefresh, user.Name))
	assert.NoError(t, err)

	_, err = service.RefreshAccessToken(context.Background(), "Bearer "+expired)
	assert.True(t, IsInvalidToken(err))
	assert.EqualError(t, err, "Refresh token expired")
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	service, db := newTestService(t)
	user := newTestUser(t, db)

	// signed correctly but never persisted
	orphan, err := service.encode(service.claims(time.Now(), refreshLifetime, user.Email, user.ID, "USER", KindRefresh, user.Name))
	assert.NoError(t, err)

	_, err = service.RefreshAccessToken(context.Background(), "Bearer "+orphan)
	assert.True(t, IsInvalidToken(err))
	assert.EqualError(t, err, "Token is revoked")
}

func TestRevokeTokenInvalidatesRefreshToken(t *testing.T) {
	service, db := newTestService(t)
	user := newTestUser(t, db)
	ctx := context.Background()

	refreshToken, err := service.GenerateRefreshToken(ctx, user)
	assert.NoError(t, err)

	err = service.RevokeToken(ctx, "Bearer "+refreshToken)
	assert.NoError(t, err)

	_, err = service.RefreshAccessToken(ctx, "Bearer "+refreshToken)
	assert.EqualError(t, err, "Token is revoked")
}

func TestRevokeTokenPrefersAccessCacheEntry(t *testing.T) {
	service, db := newTestService(t)
	user := newTestUser(t, db)
	ctx := context.Background()

	accessToken, err := service.GenerateAccessToken(ctx, user)
	assert.NoError(t, err)
	refreshToken, err := service.GenerateRefreshToken(ctx, user)
	assert.NoError(t, err)

	err = service.RevokeToken(ctx, "Bearer "+accessToken)
	assert.NoError(t, err)

	_, err = service.ValidateAccessToken(ctx, accessToken)
	assert.EqualError(t, err, "Token is revoked")

	// refresh token stays live
	_, err = service.RefreshAccessToken(ctx, "Bearer "+refreshToken)
	assert.NoError(t, err)
}

func TestRevokeAllTokens(t *testing.T) {
	service, db := newTestService(t)
	user := newTestUser(t, db)
	ctx := context.Background()

	accessToken, err := service.GenerateAccessToken(ctx, user)
	assert.NoError(t, err)
	firstRefresh, err := service.GenerateRefreshToken(ctx, user)
	assert.NoError(t, err)
	secondRefresh, err := service.GenerateRefreshToken(ctx, user)
	assert.NoError(t, err)

	err = service.RevokeAllTokens(ctx, user.Email)
	assert.NoError(t, err)

	_, err = service.ValidateAccessToken(ctx, accessToken)
	assert.EqualError(t, err, "Token is revoked")
	_, err = service.RefreshAccessToken(ctx, "Bearer "+firstRefresh)
	assert.EqualError(t, err, "Token is revoked")
	_, err = service.RefreshAccessToken(ctx, "Bearer "+secondRefresh)
	assert.EqualError(t, err, "Token is revoked")
}

func TestMultipleRefreshTokensStayIndependent(t *testing.T) {
	service, db := newTestService(t)
	user := newTestUser(t, db)
	ctx := context.Background()

	first, err := service.GenerateRefreshToken(ctx, user)
	assert.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	second, err := service.GenerateRefreshToken(ctx, user)
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)

	err = service.RevokeToken(ctx, "Bearer "+first)
	assert.NoError(t, err)

	_, err = service.RefreshAccessToken(ctx, "Bearer "+first)
	assert.EqualError(t, err, "Token is revoked")
	_, err = service.RefreshAccessToken(ctx, "Bearer "+second)
	assert.NoError(t, err)
}

func TestGetEmailFromToken(t *testing.T) {
	service, db := newTestService(t)
	user := newTestUser(t, db)

	refreshToken, err := service.GenerateRefreshToken(context.Background(), user)
	assert.NoError(t, err)

	email, err := service.GetEmailFromToken("Bearer " + refreshToken)
	assert.NoError(t, err)
	assert.Equal(t, user.Email, email)

	_, err = service.GetEmailFromToken(refreshToken)
	assert.EqualError(t, err, "Invalid token format")
}

func TestValidateAccessTokenRejectsTamperedSignature(t *testing.T) {
	service, db := newTestService(t)
	user := newTestUser(t, db)
	ctx := context.Background()

	accessToken, err := service.GenerateAccessToken(ctx, user)
	assert.NoError(t, err)

	parts := strings.Split(accessToken, ".")
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	_, err = service.ValidateAccessToken(ctx, tampered)
	assert.True(t, IsInvalidToken(err))
}

func TestStoreDeleteExpired(t *testing.T) {
	service, db := newTestService(t)
	user := newTestUser(t, db)

	live, err := service.GenerateRefreshToken(context.Background(), user)
	assert.NoError(t, err)

	stale := models.RefreshToken{
		UserID:    user.ID,
		Token:     "stale",
		IssuedAt:  time.Now().Add(-2 * refreshLifetime),
		ExpiresAt: time.Now().Add(-refreshLifetime),
	}
	assert.NoError(t, db.Create(&stale).Error)

	deleted, err := service.store.DeleteExpired(time.Now())
	assert.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = service.RefreshAccessToken(context.Background(), "Bearer "+live)
	assert.NoError(t, err)
}
