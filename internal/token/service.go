package token

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yerokha312/cooks-corner/internal/cache"
	"github.com/yerokha312/cooks-corner/internal/models"
)

const (
	KindConfirmation = "CONFIRMATION"
	KindAccess       = "ACCESS"
	KindRefresh      = "REFRESH"

	bearerPrefix = "Bearer "

	confirmationKeyPrefix = "confirmation_token:"
	accessKeyPrefix       = "access_token:"
)

// Token lifetimes are multiples of the 5 minute base unit.
const (
	baseLifetime    = 5 * time.Minute
	accessLifetime  = 3 * baseLifetime
	refreshLifetime = 12 * 24 * 7 * baseLifetime
)

// Claims is the signed claim set shared by all three token kinds.
type Claims struct {
	Scopes    string `json:"scopes"`
	TokenType string `json:"tokenType"`
	UserID    uint   `json:"userId"`
	Name      string `json:"name"`
	jwt.RegisteredClaims
}

// LoginResponse carries a freshly minted token pair together with the
// identity fields clients render without decoding the tokens.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       uint   `json:"user_id"`
	Name         string `json:"name"`
}

// Service mints, validates and revokes the three token kinds. The cache and
// the store are injected; the service holds no ambient state.
type Service struct {
	secret  []byte
	cryptor *Cryptor
	store   *Store
	kv      cache.Cache
}

func NewService(secret string, cryptor *Cryptor, store *Store, kv cache.Cache) *Service {
	return &Service{
		secret:  []byte(secret),
		cryptor: cryptor,
		store:   store,
		kv:      kv,
	}
}

// GenerateConfirmationToken mints a short-lived single-use token, caches its
// encrypted form under the user's email and returns that encrypted form. The
// same token shape serves both email confirmation and password reset; the
// caller distinguishes the purpose by query-parameter name only.
func (s *Service) GenerateConfirmationToken(ctx context.Context, user *models.User) (string, error) {
	signed, err := s.sign(user, baseLifetime, KindConfirmation)
	if err != nil {
		return "", err
	}

	encrypted, err := s.cryptor.Encrypt(bearerPrefix + signed)
	if err != nil {
		return "", err
	}

	key := confirmationKeyPrefix + user.Email
	if err := s.kv.Set(ctx, key, encrypted, baseLifetime); err != nil {
		return "", err
	}

	return encrypted, nil
}

// ConfirmationTokenIsValid checks the presented encrypted token against the
// cached entry for its subject and consumes the entry on success. A second
// validation of the same token fails.
func (s *Service) ConfirmationTokenIsValid(ctx context.Context, encryptedToken string) (string, error) {
	plain, err := s.cryptor.Decrypt(encryptedToken)
	if err != nil {
		return "", invalid("Invalid token")
	}

	claims, err := s.decode(plain)
	if err != nil {
		return "", err
	}

	email := claims.Subject
	key := confirmationKeyPrefix + email
	cached, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok || cached != encryptedToken {
		return "", invalid("Confirmation link is expired")
	}

	if err := s.kv.Delete(ctx, key); err != nil {
		return "", err
	}

	return email, nil
}

// GenerateAccessToken mints an access token and caches its encrypted form
// under the user's email for the token's lifetime. The cache entry is the
// proof of current validity; a later login for the same user overwrites it.
func (s *Service) GenerateAccessToken(ctx context.Context, user *models.User) (string, error) {
	signed, err := s.sign(user, accessLifetime, KindAccess)
	if err != nil {
		return "", err
	}

	encrypted, err := s.cryptor.Encrypt(signed)
	if err != nil {
		return "", err
	}

	key := accessKeyPrefix + user.Email
	if err := s.kv.Set(ctx, key, encrypted, accessLifetime); err != nil {
		return "", err
	}

	return signed, nil
}

// GenerateRefreshToken mints a refresh token and persists its encrypted form.
// A user may hold many valid refresh tokens at once (multi-device).
func (s *Service) GenerateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	signed, err := s.sign(user, refreshLifetime, KindRefresh)
	if err != nil {
		return "", err
	}

	encrypted, err := s.cryptor.Encrypt(bearerPrefix + signed)
	if err != nil {
		return "", err
	}

	now := time.Now()
	record := &models.RefreshToken{
		UserID:    user.ID,
		Token:     encrypted,
		IssuedAt:  now,
		ExpiresAt: now.Add(refreshLifetime),
	}
	if err := s.store.Save(record); err != nil {
		return "", err
	}

	return signed, nil
}

// RefreshAccessToken exchanges a presented refresh token (with its "Bearer "
// prefix) for a new access token. The refresh token itself is returned
// unchanged, stripped of the prefix.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	claims, err := s.decode(refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != KindRefresh {
		return nil, invalid("Invalid token type")
	}

	if claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
		return nil, invalid("Refresh token expired")
	}

	revoked, err := s.isRevoked(refreshToken, claims.Subject)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, invalid("Token is revoked")
	}

	accessClaims := s.claims(time.Now(), accessLifetime, claims.Subject, claims.UserID, claims.Scopes, KindAccess, claims.Name)
	accessToken, err := s.encode(accessClaims)
	if err != nil {
		return nil, err
	}

	encrypted, err := s.cryptor.Encrypt(accessToken)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Set(ctx, accessKeyPrefix+claims.Subject, encrypted, accessLifetime); err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: strings.TrimPrefix(refreshToken, bearerPrefix),
		UserID:       claims.UserID,
		Name:         claims.Name,
	}, nil
}

// RevokeToken invalidates a single presented token. A token whose subject has
// a live access cache entry is treated as an access token; otherwise the
// subject's refresh-token records are searched for a decryption match.
func (s *Service) RevokeToken(ctx context.Context, presented string) error {
	claims, err := s.decode(presented)
	if err != nil {
		return err
	}

	key := accessKeyPrefix + claims.Subject
	exists, err := s.kv.Exists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return s.kv.Delete(ctx, key)
	}

	records, err := s.store.FindNotRevokedByEmail(claims.Subject)
	if err != nil {
		return err
	}
	for i := range records {
		decrypted, err := s.cryptor.Decrypt(records[i].Token)
		if err != nil {
			continue
		}
		if decrypted == presented {
			records[i].Revoked = true
			return s.store.Save(&records[i])
		}
	}

	return nil
}

// RevokeAllTokens drops the subject's access cache entry and flags every
// non-revoked refresh-token record. Used on password reset and account
// deletion.
func (s *Service) RevokeAllTokens(ctx context.Context, email string) error {
	if err := s.kv.Delete(ctx, accessKeyPrefix+email); err != nil {
		return err
	}

	records, err := s.store.FindNotRevokedByEmail(email)
	if err != nil {
		return err
	}
	for i := range records {
		records[i].Revoked = true
	}
	return s.store.SaveAll(records)
}

// ValidateAccessToken verifies signature and expiry of a raw access token and
// requires the cached entry for its subject to decrypt back to the presented
// token. An overwritten or evicted entry means the token is no longer valid
// even though its signature still checks out.
func (s *Service) ValidateAccessToken(ctx context.Context, tokenStr string) (*Claims, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		return nil, err
	}

	if claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
		return nil, invalid("Token expired")
	}

	cached, ok, err := s.kv.Get(ctx, accessKeyPrefix+claims.Subject)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalid("Token is revoked")
	}

	decrypted, err := s.cryptor.Decrypt(cached)
	if err != nil || decrypted != tokenStr {
		return nil, invalid("Token is revoked")
	}

	return claims, nil
}

// GetEmailFromToken decodes a prefixed token and returns its subject.
func (s *Service) GetEmailFromToken(presented string) (string, error) {
	claims, err := s.decode(presented)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *Service) isRevoked(refreshToken, email string) (bool, error) {
	records, err := s.store.FindNotRevokedByEmail(email)
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		return true, nil
	}

	for _, record := range records {
		decrypted, err := s.cryptor.Decrypt(record.Token)
		if err != nil {
			continue
		}
		if decrypted == refreshToken {
			return false, nil
		}
	}

	return true, nil
}

func (s *Service) sign(user *models.User, lifetime time.Duration, kind string) (string, error) {
	return s.encode(s.claims(time.Now(), lifetime, user.Email, user.ID, scopes(user), kind, user.Name))
}

func (s *Service) claims(now time.Time, lifetime time.Duration, subject string, userID uint, scopeStr, kind, name string) *Claims {
	return &Claims{
		Scopes:    scopeStr,
		TokenType: kind,
		UserID:    userID,
		Name:      name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "self",
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
}

func (s *Service) encode(claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// decode strips the mandatory "Bearer " prefix and verifies the signature.
// Expiry is checked separately by each caller so the failure can be reported
// as its own error kind.
func (s *Service) decode(presented string) (*Claims, error) {
	if !strings.HasPrefix(presented, bearerPrefix) {
		return nil, invalid("Invalid token format")
	}

	return s.parse(strings.TrimPrefix(presented, bearerPrefix))
}

func (s *Service) parse(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, invalid("Invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, invalid("Invalid token")
	}

	return claims, nil
}

func scopes(user *models.User) string {
	authorities := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		authorities = append(authorities, role.Authority)
	}
	return strings.Join(authorities, " ")
}
