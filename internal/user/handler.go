package user

import (
	"encoding/json"
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/yerokha312/cooks-corner/internal/auth"
	"github.com/yerokha312/cooks-corner/internal/response"
	"github.com/yerokha312/cooks-corner/internal/utils"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID < 1 {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	viewerID := auth.UserID(c)
	profile, err := h.service.GetProfile(uint(userID), viewerID)
	if err != nil {
		return response.NotFound(c, "User")
	}

	if viewerID != uint(userID) {
		h.service.IncrementViewCount(uint(userID))
	}

	return response.Success(c, profile, "User retrieved successfully")
}

func (h *Handler) Follow(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID < 1 {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	if err := h.service.Follow(uint(userID), auth.UserID(c)); err != nil {
		switch {
		case errors.Is(err, ErrSelfFollow), errors.Is(err, ErrFollowDeleted):
			return response.BadRequest(c, err.Error(), nil)
		case errors.Is(err, ErrNotFound):
			return response.NotFound(c, "User")
		default:
			return response.InternalError(c, "Failed to follow user")
		}
	}

	return response.Success(c, nil, "Followed successfully")
}

func (h *Handler) Unfollow(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID < 1 {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	if err := h.service.Unfollow(uint(userID), auth.UserID(c)); err != nil {
		return response.InternalError(c, "Failed to unfollow user")
	}

	return response.Success(c, nil, "Unfollowed successfully")
}

// UpdateProfile accepts multipart form data: a "dto" JSON field plus an
// optional "image" file.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var dto struct {
		UserID uint   `json:"user_id"`
		Name   string `json:"name"`
		Bio    string `json:"bio"`
	}

	if err := json.Unmarshal([]byte(c.FormValue("dto")), &dto); err != nil {
		return response.BadRequest(c, "Invalid dto field", err.Error())
	}

	if dto.Name == "" {
		return response.ValidationError(c, map[string]string{"name": "name is required"})
	}

	var file *multipart.FileHeader
	if f, err := c.FormFile("image"); err == nil {
		file = f
	}

	profile, err := h.service.UpdateProfile(auth.UserID(c), dto.UserID, dto.Name, dto.Bio, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrIDMismatch):
			return response.Forbidden(c, "User id must match")
		case errors.Is(err, ErrNotFound):
			return response.NotFound(c, "User")
		default:
			return response.BadRequest(c, "Failed to update profile", err.Error())
		}
	}

	return response.Success(c, profile, "Profile updated successfully")
}

func (h *Handler) Search(c *fiber.Ctx) error {
	page, size := utils.PageParams(c, 12)

	dtos, total, err := h.service.Search(c.Query("query"), page, size)
	if err != nil {
		return response.InternalError(c, "Search failed")
	}

	return response.SuccessWithMeta(c, dtos, response.PageMeta(page, size, total), "Search success")
}

func (h *Handler) Followers(c *fiber.Ctx) error {
	return h.listEdges(c, h.service.Followers)
}

func (h *Handler) Following(c *fiber.Ctx) error {
	return h.listEdges(c, h.service.Following)
}

func (h *Handler) listEdges(c *fiber.Ctx, list func(uint, int, int) ([]Dto, int64, error)) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID < 1 {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	page, size := utils.PageParams(c, 12)
	dtos, total, err := list(uint(userID), page, size)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return response.NotFound(c, "User")
		}
		return response.InternalError(c, "Failed to fetch users")
	}

	return response.SuccessWithMeta(c, dtos, response.PageMeta(page, size, total), "Users retrieved successfully")
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	var body struct {
		Password string `json:"password"`
	}

	if err := c.BodyParser(&body); err != nil || body.Password == "" {
		return response.BadRequest(c, "Invalid request body", nil)
	}

	if err := h.service.Delete(c.Context(), auth.UserID(c), body.Password); err != nil {
		switch {
		case errors.Is(err, ErrWrongPassword):
			return response.Unauthorized(c, "Password is incorrect")
		case errors.Is(err, ErrNotFound):
			return response.NotFound(c, "User")
		default:
			return response.InternalError(c, "Failed to delete account")
		}
	}

	return response.Success(c, nil, "Account deleted")
}
