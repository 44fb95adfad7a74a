package action

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/yerokha312/cooks-corner/internal/auth"
	"github.com/yerokha312/cooks-corner/internal/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Perform handles PUT /v1/actions/:actionId/:objectTypeId/:objectId.
func (h *Handler) Perform(c *fiber.Ctx) error {
	actionID, err := c.ParamsInt("actionId")
	if err != nil {
		return response.BadRequest(c, "Invalid action ID", nil)
	}
	objectTypeID, err := c.ParamsInt("objectTypeId")
	if err != nil {
		return response.BadRequest(c, "Invalid object type ID", nil)
	}
	objectID, err := c.ParamsInt("objectId")
	if err != nil || objectID < 1 {
		return response.BadRequest(c, "Invalid object ID", nil)
	}

	if err := h.service.Perform(auth.UserID(c), actionID, objectTypeID, objectID); err != nil {
		switch {
		case errors.Is(err, ErrUnknownAction), errors.Is(err, ErrUnknownObjectType), errors.Is(err, ErrNotBookmarkable):
			return response.BadRequest(c, err.Error(), nil)
		case errors.Is(err, ErrObjectNotFound):
			return response.NotFound(c, "Object")
		default:
			return response.InternalError(c, "Failed to perform action")
		}
	}

	return response.Success(c, nil, "Action performed successfully")
}
