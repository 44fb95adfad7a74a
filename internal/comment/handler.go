package comment

import (
	"errors"

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

func (h *Handler) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if req.ObjectID == 0 || req.Text == "" {
		return response.ValidationError(c, map[string]string{
			"object_id": "object_id is required",
			"text":      "text is required",
		})
	}

	dto, err := h.service.Create(auth.UserID(c), &req)
	if err != nil {
		return h.mapError(c, err, "Failed to post comment")
	}

	return response.Created(c, dto, "Comment posted successfully")
}

func (h *Handler) Update(c *fiber.Ctx) error {
	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if req.CommentID == 0 || req.Text == "" {
		return response.BadRequest(c, "Invalid request body", nil)
	}

	dto, err := h.service.Update(auth.UserID(c), &req)
	if err != nil {
		return h.mapError(c, err, "Failed to update comment")
	}

	return response.Success(c, dto, "Comment updated successfully")
}

func (h *Handler) ListByRecipe(c *fiber.Ctx) error {
	recipeID, err := c.ParamsInt("recipeId")
	if err != nil || recipeID < 1 {
		return response.BadRequest(c, "Invalid recipe ID", nil)
	}

	page, size := utils.PageParams(c, 5)
	dtos, total, err := h.service.ListByRecipe(uint(recipeID), auth.UserID(c), page, size)
	if err != nil {
		if errors.Is(err, ErrRecipeNotFound) {
			return response.NotFound(c, "Recipe")
		}
		return response.InternalError(c, "Failed to fetch comments")
	}

	return response.SuccessWithMeta(c, dtos, response.PageMeta(page, size, total), "Comments retrieved successfully")
}

func (h *Handler) Replies(c *fiber.Ctx) error {
	commentID, err := c.ParamsInt("commentId")
	if err != nil || commentID < 1 {
		return response.BadRequest(c, "Invalid comment ID", nil)
	}

	page, size := utils.PageParams(c, 5)
	dtos, total, err := h.service.Replies(uint(commentID), auth.UserID(c), page, size)
	if err != nil {
		return response.InternalError(c, "Failed to fetch replies")
	}

	return response.SuccessWithMeta(c, dtos, response.PageMeta(page, size, total), "Replies retrieved successfully")
}

func (h *Handler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return response.NotFound(c, "Comment")
	case errors.Is(err, ErrRecipeNotFound):
		return response.NotFound(c, "Recipe")
	case errors.Is(err, ErrNotAuthor):
		return response.Forbidden(c, "User is not the author of this comment")
	default:
		return response.BadRequest(c, fallback, err.Error())
	}
}
