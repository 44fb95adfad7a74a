package server

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/yerokha312/cooks-corner/internal/action"
	"github.com/yerokha312/cooks-corner/internal/auth"
	"github.com/yerokha312/cooks-corner/internal/cache"
	"github.com/yerokha312/cooks-corner/internal/comment"
	"github.com/yerokha312/cooks-corner/internal/mail"
	"github.com/yerokha312/cooks-corner/internal/recipe"
	"github.com/yerokha312/cooks-corner/internal/token"
	"github.com/yerokha312/cooks-corner/internal/user"
)

// Deps carries the external collaborators the app is wired with. The cache
// and mailer are always injected so tests can substitute miniredis and a
// no-op sender.
type Deps struct {
	DB          *gorm.DB
	Cache       cache.Cache
	Mailer      mail.Sender
	Secret      string
	TokenKey    string
	FrontendURL string
}

func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024,
	})

	app.Static("/uploads", "./uploads", fiber.Static{
		Compress:  true,
		ByteRange: true,
		Browse:    false,
		MaxAge:    3600,
	})

	tokens := token.NewService(deps.Secret, token.NewCryptor(deps.TokenKey), token.NewStore(deps.DB), deps.Cache)

	authHandler := auth.NewHandler(auth.NewService(deps.DB, tokens, deps.Mailer, deps.FrontendURL))
	userHandler := user.NewHandler(user.NewService(deps.DB, tokens))
	recipeHandler := recipe.NewHandler(recipe.NewService(deps.DB))
	commentHandler := comment.NewHandler(comment.NewService(deps.DB))
	actionHandler := action.NewHandler(action.NewService(deps.DB))

	SetupRoutes(app, tokens, authHandler, userHandler, recipeHandler, commentHandler, actionHandler)

	return app
}
