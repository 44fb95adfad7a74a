package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// PageParams reads zero-based "page" and "size" query parameters, falling
// back to page 0 and the caller's default size.
func PageParams(c *fiber.Ctx, defaultSize int) (page, size int) {
	page, err := strconv.Atoi(c.Query("page", "0"))
	if err != nil || page < 0 {
		page = 0
	}

	size, err = strconv.Atoi(c.Query("size", strconv.Itoa(defaultSize)))
	if err != nil || size < 1 || size > 100 {
		size = defaultSize
	}

	return page, size
}
