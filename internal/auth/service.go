package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yerokha312/cooks-corner/internal/mail"
	"github.com/yerokha312/cooks-corner/internal/models"
	"github.com/yerokha312/cooks-corner/internal/token"
	"github.com/yerokha312/cooks-corner/internal/utils"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrUserAlreadyEnabled = errors.New("user has already confirmed email address")
	ErrBadCredentials     = errors.New("invalid username or password")
	ErrDisabled           = errors.New("account has not been enabled")
	ErrUserDeleted        = errors.New("user has been deleted")
	ErrUserNotFound       = errors.New("user not found")
)

type Service struct {
	db          *gorm.DB
	tokens      *token.Service
	mailer      mail.Sender
	frontendURL string
}

func NewService(db *gorm.DB, tokens *token.Service, mailer mail.Sender, frontendURL string) *Service {
	return &Service{db: db, tokens: tokens, mailer: mailer, frontendURL: frontendURL}
}

// linkBase resolves the base URL emailed links point at. Clients may pass
// their own; the configured frontend URL is the fallback.
func (s *Service) linkBase(url string) string {
	if url == "" {
		return s.frontendURL
	}
	return url
}

// Register creates a disabled account and sends the confirmation email. The
// account stays unusable until the emailed link is followed.
func (s *Service) Register(ctx context.Context, name, email, password, url string) (string, error) {
	email = strings.ToLower(email)
	if !s.IsEmailAvailable(email) {
		return "", ErrEmailTaken
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return "", err
	}

	var role models.Role
	if err := s.db.Where("authority = ?", "USER").First(&role).Error; err != nil {
		return "", err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		Password:     hashed,
		Roles:        []models.Role{role},
		RegisteredAt: time.Now(),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return "", err
	}

	if err := s.SendConfirmationEmail(ctx, url, email); err != nil {
		return "", err
	}

	return email, nil
}

func (s *Service) IsEmailAvailable(email string) bool {
	var count int64
	s.db.Model(&models.User{}).Where("email = ?", strings.ToLower(email)).Count(&count)
	return count == 0
}

func (s *Service) SendConfirmationEmail(ctx context.Context, url, email string) error {
	user, err := s.findByEmail(email)
	if err != nil {
		return err
	}
	if user.Enabled {
		return ErrUserAlreadyEnabled
	}

	confirmationToken, err := s.tokens.GenerateConfirmationToken(ctx, user)
	if err != nil {
		return err
	}

	return s.mailer.SendEmailConfirmation(user.Email, s.linkBase(url)+"?ct="+confirmationToken, user.Name)
}

func (s *Service) Login(ctx context.Context, email, password string) (*token.LoginResponse, error) {
	user, err := s.findByEmail(email)
	if err != nil {
		return nil, ErrBadCredentials
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrBadCredentials
	}
	if !user.Enabled {
		return nil, ErrDisabled
	}
	if user.Deleted {
		return nil, ErrUserDeleted
	}

	accessToken, err := s.tokens.GenerateAccessToken(ctx, user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &token.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       user.ID,
		Name:         user.Name,
	}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*token.LoginResponse, error) {
	return s.tokens.RefreshAccessToken(ctx, refreshToken)
}

func (s *Service) ConfirmEmail(ctx context.Context, encryptedToken string) error {
	email, err := s.tokens.ConfirmationTokenIsValid(ctx, encryptedToken)
	if err != nil {
		return err
	}

	return s.db.Model(&models.User{}).Where("email = ?", email).Update("enabled", true).Error
}

// Logout revokes the presented access token and refresh token independently.
func (s *Service) Logout(ctx context.Context, accessHeader, refreshToken string) error {
	if err := s.tokens.RevokeToken(ctx, accessHeader); err != nil {
		return err
	}
	return s.tokens.RevokeToken(ctx, refreshToken)
}

// ForgotPassword intentionally reports success for unknown emails so account
// existence is not leaked.
func (s *Service) ForgotPassword(ctx context.Context, email, url string) error {
	user, err := s.findByEmail(email)
	if err != nil {
		return nil
	}

	confirmationToken, err := s.tokens.GenerateConfirmationToken(ctx, user)
	if err != nil {
		return err
	}

	return s.mailer.SendPasswordReset(user.Email, s.linkBase(url)+"?rpt="+confirmationToken, user.Name)
}

func (s *Service) ResetPassword(ctx context.Context, encryptedToken, password string) error {
	email, err := s.tokens.ConfirmationTokenIsValid(ctx, encryptedToken)
	if err != nil {
		return err
	}

	user, err := s.findByEmail(email)
	if err != nil {
		return ErrUserNotFound
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	user.Password = hashed

	if err := s.tokens.RevokeAllTokens(ctx, email); err != nil {
		return err
	}

	return s.db.Save(user).Error
}

// RequestRecovery behaves like ForgotPassword: unknown emails no-op.
func (s *Service) RequestRecovery(ctx context.Context, email, url string) error {
	user, err := s.findByEmail(email)
	if err != nil {
		return nil
	}

	confirmationToken, err := s.tokens.GenerateConfirmationToken(ctx, user)
	if err != nil {
		return err
	}

	return s.mailer.SendAccountRecovery(user.Email, s.linkBase(url)+"?are="+confirmationToken, user.Name)
}

func (s *Service) Recover(ctx context.Context, encryptedToken string) error {
	email, err := s.tokens.ConfirmationTokenIsValid(ctx, encryptedToken)
	if err != nil {
		return err
	}

	user, err := s.findByEmail(email)
	if err != nil {
		return ErrUserNotFound
	}

	user.Deleted = false
	return s.db.Save(user).Error
}

func (s *Service) findByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Roles").Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}
