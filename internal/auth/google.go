package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/yerokha312/cooks-corner/internal/models"
	"github.com/yerokha312/cooks-corner/internal/response"
	"github.com/yerokha312/cooks-corner/internal/token"
)

var googleOauthConfig = &oauth2.Config{
	RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
	ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
	ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
	Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
	Endpoint:     google.Endpoint,
}

var (
	stateStore = make(map[string]time.Time)
	stateMutex sync.Mutex
)

func generateState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

func storeState(state string) {
	stateMutex.Lock()
	defer stateMutex.Unlock()
	stateStore[state] = time.Now().Add(5 * time.Minute)

	for k, v := range stateStore {
		if time.Now().After(v) {
			delete(stateStore, k)
		}
	}
}

func validateState(state string) bool {
	stateMutex.Lock()
	defer stateMutex.Unlock()

	expiry, exists := stateStore[state]
	if !exists || time.Now().After(expiry) {
		return false
	}
	delete(stateStore, state)
	return true
}

func (h *Handler) GoogleLogin(c *fiber.Ctx) error {
	state := generateState()
	storeState(state)
	return c.Redirect(googleOauthConfig.AuthCodeURL(state))
}

func (h *Handler) GoogleCallback(c *fiber.Ctx) error {
	if !validateState(c.Query("state")) {
		return response.BadRequest(c, "Invalid state parameter", nil)
	}

	oauthToken, err := googleOauthConfig.Exchange(context.Background(), c.Query("code"))
	if err != nil {
		return response.InternalError(c, "Failed to exchange token")
	}

	client := googleOauthConfig.Client(context.Background(), oauthToken)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return response.InternalError(c, "Failed to get user info")
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var userData struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(data, &userData); err != nil || userData.Email == "" {
		return response.InternalError(c, "Failed to parse user info")
	}

	login, err := h.service.GoogleLogin(c.Context(), userData.Email, userData.Name)
	if err != nil {
		return response.InternalError(c, "Failed to sign in with Google")
	}

	return response.Success(c, login, "Login successful")
}

// GoogleLogin provisions a confirmed account on first sight of a Google
// identity and issues the usual token pair. Deleted accounts stay deleted.
func (s *Service) GoogleLogin(ctx context.Context, email, name string) (*token.LoginResponse, error) {
	email = strings.ToLower(email)

	user, err := s.findByEmail(email)
	if err != nil {
		var role models.Role
		if err := s.db.Where("authority = ?", "USER").First(&role).Error; err != nil {
			return nil, err
		}

		created := models.User{
			Name:         name,
			Email:        email,
			Password:     "-",
			Provider:     "google",
			Enabled:      true,
			Roles:        []models.Role{role},
			RegisteredAt: time.Now(),
		}
		if err := s.db.Create(&created).Error; err != nil {
			return nil, err
		}
		user = &created
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
