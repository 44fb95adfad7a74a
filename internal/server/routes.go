package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/yerokha312/cooks-corner/internal/action"
	"github.com/yerokha312/cooks-corner/internal/auth"
	"github.com/yerokha312/cooks-corner/internal/comment"
	"github.com/yerokha312/cooks-corner/internal/recipe"
	"github.com/yerokha312/cooks-corner/internal/token"
	"github.com/yerokha312/cooks-corner/internal/user"
)

func SetupRoutes(
	app *fiber.App,
	tokens *token.Service,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	recipeHandler *recipe.Handler,
	commentHandler *comment.Handler,
	actionHandler *action.Handler,
) {
	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS, PATCH",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Cooks Corner API is running",
		})
	})

	v1 := app.Group("/v1")

	// ==========================================
	// AUTH ROUTES (No authentication required)
	// ==========================================
	authGroup := v1.Group("/auth")
	authGroup.Post("/registration", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
	}), authHandler.Register)
	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), authHandler.Login)
	authGroup.Get("/email-available", authHandler.EmailAvailable)
	authGroup.Post("/resend-confirmation", authHandler.ResendConfirmation)
	authGroup.Put("/confirmation", authHandler.ConfirmEmail)
	authGroup.Post("/refresh-token", limiter.New(limiter.Config{
		Max:        3,
		Expiration: 5 * time.Minute,
	}), authHandler.RefreshToken)
	authGroup.Post("/logout", auth.Protected(tokens), authHandler.Logout)
	authGroup.Get("/google/login", authHandler.GoogleLogin)
	authGroup.Get("/google/callback", authHandler.GoogleCallback)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Put("/reset-password", authHandler.ResetPassword)
	authGroup.Post("/recovery", authHandler.RequestRecovery)
	authGroup.Put("/recover", authHandler.Recover)

	// ==========================================
	// USER ROUTES
	// ==========================================
	userGroup := v1.Group("/users")
	userGroup.Get("/search", auth.Optional(tokens), userHandler.Search)
	userGroup.Get("/recipes/:userId", auth.Optional(tokens), recipeHandler.ByUser)
	userGroup.Get("/:userId", auth.Optional(tokens), userHandler.GetProfile)
	userGroup.Get("/:userId/followers", auth.Optional(tokens), userHandler.Followers)
	userGroup.Get("/:userId/following", auth.Optional(tokens), userHandler.Following)
	userGroup.Put("/:userId/follow", auth.Protected(tokens), userHandler.Follow)
	userGroup.Put("/:userId/unfollow", auth.Protected(tokens), userHandler.Unfollow)
	userGroup.Put("/profile", auth.Protected(tokens), userHandler.UpdateProfile)
	userGroup.Delete("/account", auth.Protected(tokens), userHandler.Delete)

	// ==========================================
	// RECIPE ROUTES
	// ==========================================
	recipeGroup := v1.Group("/recipes")
	recipeGroup.Get("/categories", recipeHandler.Categories)
	recipeGroup.Get("/categories/:categoryId", auth.Optional(tokens), recipeHandler.ByCategory)
	recipeGroup.Get("/:recipeId", auth.Optional(tokens), recipeHandler.GetByID)
	recipeGroup.Get("/", auth.Optional(tokens), recipeHandler.List)
	recipeGroup.Post("/", auth.Protected(tokens), recipeHandler.Create)
	recipeGroup.Put("/", auth.Protected(tokens), recipeHandler.Update)

	// ==========================================
	// COMMENT ROUTES
	// ==========================================
	commentGroup := v1.Group("/comments")
	commentGroup.Get("/recipes/:recipeId", auth.Optional(tokens), commentHandler.ListByRecipe)
	commentGroup.Get("/:commentId/replies", auth.Optional(tokens), commentHandler.Replies)
	commentGroup.Post("/", auth.Protected(tokens), commentHandler.Create)
	commentGroup.Put("/", auth.Protected(tokens), commentHandler.Update)

	// ==========================================
	// ACTION ROUTES
	// ==========================================
	v1.Put("/actions/:actionId/:objectTypeId/:objectId", auth.Protected(tokens), actionHandler.Perform)
}
