package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/yerokha312/cooks-corner/internal/response"
	"github.com/yerokha312/cooks-corner/internal/token"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		URL      string `json:"url"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.Name == "" || body.Email == "" || body.Password == "" {
		return response.ValidationError(c, map[string]string{
			"name":     "name is required",
			"email":    "email is required",
			"password": "password is required",
		})
	}

	email, err := h.service.Register(c.Context(), body.Name, body.Email, body.Password, body.URL)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return response.Conflict(c, "Email "+body.Email+" already taken")
		}
		return response.InternalError(c, "Failed to register user")
	}

	return response.Created(c, fiber.Map{"email": email}, "Confirmation link sent to "+email)
}

func (h *Handler) EmailAvailable(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}

	if err := c.BodyParser(&body); err != nil || body.Email == "" {
		return response.BadRequest(c, "Invalid request body", nil)
	}

	return response.Success(c, h.service.IsEmailAvailable(body.Email), "Availability checked")
}

func (h *Handler) ResendConfirmation(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
		URL   string `json:"url"`
	}

	if err := c.BodyParser(&body); err != nil || body.Email == "" {
		return response.BadRequest(c, "Invalid request body", nil)
	}

	if err := h.service.SendConfirmationEmail(c.Context(), body.URL, body.Email); err != nil {
		switch {
		case errors.Is(err, ErrUserAlreadyEnabled):
			return response.Conflict(c, "User has already confirmed email address")
		case errors.Is(err, ErrUserNotFound):
			return response.NotFound(c, "User")
		default:
			return response.InternalError(c, "Failed to send confirmation email")
		}
	}

	return response.Success(c, nil, "Confirmation link sent to "+body.Email)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	login, err := h.service.Login(c.Context(), body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrDisabled):
			return response.Unauthorized(c, "Account has not been enabled")
		case errors.Is(err, ErrUserDeleted):
			return response.Forbidden(c, "User has been deleted")
		case errors.Is(err, ErrBadCredentials):
			return response.Unauthorized(c, "Invalid username or password")
		default:
			return response.InternalError(c, "Login failed")
		}
	}

	return response.Success(c, login, "Login successful")
}

func (h *Handler) RefreshToken(c *fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := c.BodyParser(&body); err != nil || body.RefreshToken == "" {
		return response.BadRequest(c, "Invalid request body", nil)
	}

	login, err := h.service.Refresh(c.Context(), body.RefreshToken)
	if err != nil {
		if token.IsInvalidToken(err) {
			return response.Unauthorized(c, err.Error())
		}
		return response.InternalError(c, "Failed to refresh token")
	}

	return response.Success(c, login, "Token refreshed successfully")
}

func (h *Handler) ConfirmEmail(c *fiber.Ctx) error {
	encryptedToken := c.Query("ct")
	if encryptedToken == "" {
		return response.BadRequest(c, "Confirmation token is required", nil)
	}

	if err := h.service.ConfirmEmail(c.Context(), encryptedToken); err != nil {
		if token.IsInvalidToken(err) {
			return response.Unauthorized(c, err.Error())
		}
		return response.InternalError(c, "Failed to confirm email")
	}

	return response.Success(c, nil, "Email confirmed successfully")
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := c.BodyParser(&body); err != nil || body.RefreshToken == "" {
		return response.BadRequest(c, "Invalid request body", nil)
	}

	accessHeader := c.Get("Authorization")
	if err := h.service.Logout(c.Context(), accessHeader, body.RefreshToken); err != nil {
		if token.IsInvalidToken(err) {
			return response.Unauthorized(c, err.Error())
		}
		return response.InternalError(c, "Logout failed")
	}

	return response.Success(c, nil, "Logout successful")
}

func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
		URL   string `json:"url"`
	}

	if err := c.BodyParser(&body); err != nil || body.Email == "" {
		return response.BadRequest(c, "Invalid request body", nil)
	}

	if err := h.service.ForgotPassword(c.Context(), body.Email, body.URL); err != nil {
		return response.InternalError(c, "Failed to send reset email")
	}

	return response.Success(c, nil, "If account exists, reset link has been sent")
}

func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	encryptedToken := c.Query("rpt")
	if encryptedToken == "" {
		return response.BadRequest(c, "Reset token is required", nil)
	}

	var body struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil || body.Password == "" {
		return response.BadRequest(c, "Invalid request body", nil)
	}

	if err := h.service.ResetPassword(c.Context(), encryptedToken, body.Password); err != nil {
		switch {
		case token.IsInvalidToken(err):
			return response.Unauthorized(c, err.Error())
		case errors.Is(err, ErrUserNotFound):
			return response.NotFound(c, "User")
		default:
			return response.InternalError(c, "Failed to reset password")
		}
	}

	return response.Success(c, nil, "Password reset successful")
}

func (h *Handler) RequestRecovery(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
		URL   string `json:"url"`
	}

	if err := c.BodyParser(&body); err != nil || body.Email == "" {
		return response.BadRequest(c, "Invalid request body", nil)
	}

	if err := h.service.RequestRecovery(c.Context(), body.Email, body.URL); err != nil {
		return response.InternalError(c, "Failed to send recovery email")
	}

	return response.Success(c, nil, "If account exists, recovery link has been sent")
}

func (h *Handler) Recover(c *fiber.Ctx) error {
	encryptedToken := c.Query("are")
	if encryptedToken == "" {
		return response.BadRequest(c, "Recovery token is required", nil)
	}

	if err := h.service.Recover(c.Context(), encryptedToken); err != nil {
		switch {
		case token.IsInvalidToken(err):
			return response.Unauthorized(c, err.Error())
		case errors.Is(err, ErrUserNotFound):
			return response.NotFound(c, "User")
		default:
			return response.InternalError(c, "Failed to recover account")
		}
	}

	return response.Success(c, nil, "Account recovered successfully")
}
