package recipe

import (
	"encoding/json"
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/yerokha312/cooks-corner/internal/auth"
	"github.com/yerokha312/cooks-corner/internal/database"
	"github.com/yerokha312/cooks-corner/internal/models"
	"github.com/yerokha312/cooks-corner/internal/response"
	"github.com/yerokha312/cooks-corner/internal/utils"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create accepts multipart form data: a "dto" JSON field plus an optional
// "image" file.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := json.Unmarshal([]byte(c.FormValue("dto")), &req); err != nil {
		return response.BadRequest(c, "Invalid dto field", err.Error())
	}

	if fields := validate(&req); len(fields) > 0 {
		return response.ValidationError(c, fields)
	}

	detail, err := h.service.Create(auth.UserID(c), &req, formFile(c))
	if err != nil {
		return h.mapError(c, err, "Failed to create recipe")
	}

	return response.Created(c, detail, "Recipe created successfully")
}

func (h *Handler) Update(c *fiber.Ctx) error {
	var req UpdateRequest
	if err := json.Unmarshal([]byte(c.FormValue("dto")), &req); err != nil {
		return response.BadRequest(c, "Invalid dto field", err.Error())
	}

	if req.RecipeID == 0 {
		return response.BadRequest(c, "Invalid recipe ID", nil)
	}
	if fields := validate(&req.CreateRequest); len(fields) > 0 {
		return response.ValidationError(c, fields)
	}

	detail, err := h.service.Update(auth.UserID(c), &req, formFile(c))
	if err != nil {
		return h.mapError(c, err, "Failed to update recipe")
	}

	return response.Success(c, detail, "Recipe updated successfully")
}

func (h *Handler) GetByID(c *fiber.Ctx) error {
	recipeID, err := c.ParamsInt("recipeId")
	if err != nil || recipeID < 1 {
		return response.BadRequest(c, "Invalid recipe ID", nil)
	}

	viewerID := auth.UserID(c)
	detail, err := h.service.GetByID(uint(recipeID), viewerID)
	if err != nil {
		return response.NotFound(c, "Recipe")
	}

	if viewerID != detail.AuthorID {
		h.service.IncrementViewCount(uint(recipeID))
	}

	return response.Success(c, detail, "Recipe retrieved successfully")
}

func (h *Handler) List(c *fiber.Ctx) error {
	page, size := utils.PageParams(c, 12)

	items, total, err := h.service.List(c.Query("query"), auth.UserID(c), page, size)
	if err != nil {
		return response.InternalError(c, "Failed to fetch recipes")
	}

	return response.SuccessWithMeta(c, items, response.PageMeta(page, size, total), "Recipes retrieved successfully")
}

func (h *Handler) ByCategory(c *fiber.Ctx) error {
	categoryID, err := c.ParamsInt("categoryId")
	if err != nil || categoryID < 1 {
		return response.BadRequest(c, "Invalid category ID", nil)
	}

	page, size := utils.PageParams(c, 12)
	items, total, err := h.service.ByCategory(uint(categoryID), auth.UserID(c), page, size)
	if err != nil {
		return response.InternalError(c, "Failed to fetch recipes")
	}

	return response.SuccessWithMeta(c, items, response.PageMeta(page, size, total), "Recipes retrieved successfully")
}

func (h *Handler) ByUser(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID < 1 {
		return response.BadRequest(c, "Invalid user ID", nil)
	}

	page, size := utils.PageParams(c, 12)
	items, total, err := h.service.ByUser(uint(userID), auth.UserID(c), page, size)
	if err != nil {
		return response.InternalError(c, "Failed to fetch recipes")
	}

	return response.SuccessWithMeta(c, items, response.PageMeta(page, size, total), "Recipes retrieved successfully")
}

func (h *Handler) Categories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := database.DB.Order("id").Find(&categories).Error; err != nil {
		return response.InternalError(c, "Failed to fetch categories")
	}

	return response.Success(c, categories, "Categories retrieved successfully")
}

func (h *Handler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return response.NotFound(c, "Recipe")
	case errors.Is(err, ErrCategoryNotFound):
		return response.NotFound(c, "Category")
	case errors.Is(err, ErrUserNotFound):
		return response.NotFound(c, "User")
	case errors.Is(err, ErrNotAuthor):
		return response.Forbidden(c, "User is not the author of this recipe")
	case errors.Is(err, ErrBadDifficulty):
		return response.BadRequest(c, err.Error(), nil)
	default:
		return response.BadRequest(c, fallback, err.Error())
	}
}

func validate(req *CreateRequest) map[string]string {
	fields := make(map[string]string)
	if req.Title == "" {
		fields["title"] = "title is required"
	}
	if req.Category == "" {
		fields["category"] = "category is required"
	}
	if req.Difficulty == "" {
		fields["difficulty"] = "difficulty is required"
	}
	if req.CookingTimeMinutes <= 0 {
		fields["cooking_time_minutes"] = "cooking time must be positive"
	}
	if len(req.Ingredients) == 0 {
		fields["ingredients"] = "at least one ingredient is required"
	}
	return fields
}

func formFile(c *fiber.Ctx) *multipart.FileHeader {
	if f, err := c.FormFile("image"); err == nil {
		return f
	}
	return nil
}
