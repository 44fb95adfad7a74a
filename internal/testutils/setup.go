package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yerokha312/cooks-corner/internal/cache"
	"github.com/yerokha312/cooks-corner/internal/database"
	"github.com/yerokha312/cooks-corner/internal/mail"
	"github.com/yerokha312/cooks-corner/internal/models"
	"github.com/yerokha312/cooks-corner/internal/server"
	"github.com/yerokha312/cooks-corner/internal/token"
	"github.com/yerokha312/cooks-corner/internal/utils"
)

const (
	TestJWTSecret = "test-jwt-secret-test-jwt-secret-test"
	TestTokenKey  = "test-encryption-key"
	TestPassword  = "password123"
)

// Env bundles everything a handler test needs: the app under test plus the
// collaborators it was wired with.
type Env struct {
	App    *fiber.App
	DB     *gorm.DB
	Cache  cache.Cache
	Tokens *token.Service
}

func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err, "Failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Follow{},
		&models.Image{},
		&models.Category{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.RecipeLike{},
		&models.RecipeBookmark{},
		&models.Comment{},
		&models.CommentLike{},
		&models.RefreshToken{},
	)
	assert.NoError(t, err, "Failed to migrate test database")

	err = database.SeedDefaults(db)
	assert.NoError(t, err, "Failed to seed defaults")

	return db
}

func TestCache(t *testing.T) cache.Cache {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return cache.NewRedisCache(client)
}

func SetupTestApp(t *testing.T) *Env {
	db := TestDB(t)
	database.DB = db
	kv := TestCache(t)

	err := utils.InitLocalStorage()
	assert.NoError(t, err, "Failed to initialize storage")
	utils.SetStorageMode(true)

	app := server.New(server.Deps{
		DB:          db,
		Cache:       kv,
		Mailer:      mail.Noop{},
		Secret:      TestJWTSecret,
		TokenKey:    TestTokenKey,
		FrontendURL: "http://localhost:3000",
	})

	tokens := token.NewService(TestJWTSecret, token.NewCryptor(TestTokenKey), token.NewStore(db), kv)

	return &Env{App: app, DB: db, Cache: kv, Tokens: tokens}
}

// CreateTestUser creates an enabled account with the USER role.
func CreateTestUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	hashed, err := utils.HashPassword(TestPassword)
	assert.NoError(t, err)

	var role models.Role
	err = db.Where("authority = ?", "USER").First(&role).Error
	assert.NoError(t, err, "USER role not seeded")

	user := &models.User{
		Name:         name,
		Email:        email,
		Password:     hashed,
		Provider:     "local",
		Enabled:      true,
		Roles:        []models.Role{role},
		RegisteredAt: time.Now(),
	}
	err = db.Create(user).Error
	assert.NoError(t, err, "Failed to create test user")

	db.Preload("Roles").First(user, user.ID)
	return user
}

// GetAuthToken mints and caches an access token for the user, the same way a
// login would.
func GetAuthToken(t *testing.T, env *Env, user *models.User) string {
	accessToken, err := env.Tokens.GenerateAccessToken(context.Background(), user)
	assert.NoError(t, err, "Failed to generate test token")
	return accessToken
}

func MakeRequest(app *fiber.App, method, url string, body interface{}, token string) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

func MakeMultipartRequest(app *fiber.App, method, url string, fields map[string]string, token string) (*httptest.ResponseRecorder, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, val := range fields {
		writer.WriteField(key, val)
	}

	contentType := writer.FormDataContentType()
	writer.Close()

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", contentType)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

// MakeMultipartImageRequest is MakeMultipartRequest with an attached image
// part. The part's Content-Type is set explicitly because CreateFormFile
// hardcodes application/octet-stream, which upload validation rejects.
func MakeMultipartImageRequest(app *fiber.App, method, url string, fields map[string]string, fileName string, data []byte, token string) (*httptest.ResponseRecorder, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, val := range fields {
		writer.WriteField(key, val)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, fileName))
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	part.Write(data)

	contentType := writer.FormDataContentType()
	writer.Close()

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", contentType)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

type StandardResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorDetail    `json:"error"`
	Meta    *Meta           `json:"meta"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func ParseResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	if resp.Body.Len() == 0 {
		t.Log("Warning: Response body is empty")
		return
	}

	err := json.NewDecoder(resp.Body).Decode(v)
	if err != nil && err != io.EOF {
		t.Logf("Response body: %s", resp.Body.String())
		assert.NoError(t, err, "Failed to parse response")
	}
}

func AssertSuccess(t *testing.T, resp *httptest.ResponseRecorder) StandardResponse {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.True(t, result.Success, "Expected success response")
	assert.Nil(t, result.Error, "Expected no error")
	return result
}

func AssertError(t *testing.T, resp *httptest.ResponseRecorder, expectedCode string) StandardResponse {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.False(t, result.Success, "Expected error response")
	assert.NotNil(t, result.Error, "Expected error object")
	if result.Error != nil {
		assert.Equal(t, expectedCode, result.Error.Code, "Error code mismatch")
	}
	return result
}
