package action

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yerokha312/cooks-corner/internal/models"
)

// Action and object type identifiers carried in the URL.
const (
	ActionLike           = 1
	ActionUnlike         = 10
	ActionBookmark       = 2
	ActionRemoveBookmark = 20

	ObjectComment = 1
	ObjectRecipe  = 2
)

var (
	ErrUnknownAction     = errors.New("unknown action")
	ErrUnknownObjectType = errors.New("unknown object type")
	ErrObjectNotFound    = errors.New("object not found")
	ErrNotBookmarkable   = errors.New("only recipes can be bookmarked")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Perform applies a like or bookmark action from a user to a recipe or a
// comment. Repeating an action or undoing an absent one is a no-op.
func (s *Service) Perform(userID uint, actionID, objectTypeID, objectID int) error {
	switch objectTypeID {
	case ObjectComment:
		return s.onComment(userID, actionID, uint(objectID))
	case ObjectRecipe:
		return s.onRecipe(userID, actionID, uint(objectID))
	default:
		return ErrUnknownObjectType
	}
}

func (s *Service) onComment(userID uint, actionID int, commentID uint) error {
	var comment models.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		return ErrObjectNotFound
	}

	switch actionID {
	case ActionLike:
		edge := models.CommentLike{UserID: userID, CommentID: commentID}
		return s.db.Where("user_id = ? AND comment_id = ?", userID, commentID).
			FirstOrCreate(&edge).Error
	case ActionUnlike:
		return s.db.Where("user_id = ? AND comment_id = ?", userID, commentID).
			Delete(&models.CommentLike{}).Error
	case ActionBookmark, ActionRemoveBookmark:
		return ErrNotBookmarkable
	default:
		return ErrUnknownAction
	}
}

func (s *Service) onRecipe(userID uint, actionID int, recipeID uint) error {
	var recipe models.Recipe
	if err := s.db.First(&recipe, recipeID).Error; err != nil {
		return ErrObjectNotFound
	}

	switch actionID {
	case ActionLike:
		edge := models.RecipeLike{UserID: userID, RecipeID: recipeID}
		return s.db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			FirstOrCreate(&edge).Error
	case ActionUnlike:
		return s.db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Delete(&models.RecipeLike{}).Error
	case ActionBookmark:
		edge := models.RecipeBookmark{UserID: userID, RecipeID: recipeID}
		return s.db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			FirstOrCreate(&edge).Error
	case ActionRemoveBookmark:
		return s.db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Delete(&models.RecipeBookmark{}).Error
	default:
		return ErrUnknownAction
	}
}
