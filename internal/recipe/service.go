package recipe

import (
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yerokha312/cooks-corner/internal/image"
	"github.com/yerokha312/cooks-corner/internal/models"
	"github.com/yerokha312/cooks-corner/internal/utils"
)

var (
	ErrNotFound         = errors.New("recipe not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrNotAuthor        = errors.New("user is not the author of this recipe")
	ErrBadDifficulty    = errors.New("difficulty must be one of EASY, MEDIUM, HARD")
)

type IngredientDto struct {
	Ingredient  string  `json:"ingredient"`
	Amount      float64 `json:"amount"`
	MeasureUnit string  `json:"measure_unit"`
}

type CreateRequest struct {
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	Difficulty         string          `json:"difficulty"`
	CookingTimeMinutes int             `json:"cooking_time_minutes"`
	Ingredients        []IngredientDto `json:"ingredients"`
}

type UpdateRequest struct {
	RecipeID uint `json:"recipe_id"`
	CreateRequest
}

// ListItem is the card view used by feeds and search results.
type ListItem struct {
	RecipeID     uint    `json:"recipe_id"`
	Title        string  `json:"title"`
	AuthorName   string  `json:"author_name"`
	ImageURL     *string `json:"image_url"`
	Likes        int64   `json:"likes"`
	Bookmarks    int64   `json:"bookmarks"`
	IsLiked      *bool   `json:"is_liked"`
	IsBookmarked *bool   `json:"is_bookmarked"`
}

// Detail is the full recipe view.
type Detail struct {
	RecipeID           uint            `json:"recipe_id"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Title              string          `json:"title"`
	AuthorName         string          `json:"author_name"`
	AuthorID           uint            `json:"author_id"`
	ImageURL           *string         `json:"image_url"`
	CookingTimeMinutes int             `json:"cooking_time_minutes"`
	Difficulty         string          `json:"difficulty"`
	Description        string          `json:"description"`
	Likes              int64           `json:"likes"`
	Bookmarks          int64           `json:"bookmarks"`
	Comments           int64           `json:"comments"`
	IsLiked            *bool           `json:"is_liked"`
	IsBookmarked       *bool           `json:"is_bookmarked"`
	Ingredients        []IngredientDto `json:"ingredients"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Create(userID uint, req *CreateRequest, file *multipart.FileHeader) (*Detail, error) {
	category, err := s.category(req.Category)
	if err != nil {
		return nil, err
	}

	difficulty := strings.ToUpper(req.Difficulty)
	if difficulty != models.DifficultyEasy && difficulty != models.DifficultyMedium && difficulty != models.DifficultyHard {
		return nil, ErrBadDifficulty
	}

	var author models.User
	if err := s.db.First(&author, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	entity := models.Recipe{
		Title:              req.Title,
		Description:        utils.SanitizeText(req.Description),
		Difficulty:         difficulty,
		CookingTimeMinutes: req.CookingTimeMinutes,
		CategoryID:         category.ID,
		UserID:             userID,
	}

	if file != nil {
		img, err := image.Process(s.db, file)
		if err != nil {
			return nil, err
		}
		entity.ImageID = &img.ID
	}

	if err := s.db.Create(&entity).Error; err != nil {
		return nil, err
	}

	if err := s.setIngredients(&entity, req.Ingredients); err != nil {
		return nil, err
	}

	return s.GetByID(entity.ID, userID)
}

func (s *Service) Update(viewerID uint, req *UpdateRequest, file *multipart.FileHeader) (*Detail, error) {
	entity, err := s.byID(req.RecipeID)
	if err != nil {
		return nil, err
	}
	if entity.UserID != viewerID {
		return nil, ErrNotAuthor
	}

	category, err := s.category(req.Category)
	if err != nil {
		return nil, err
	}

	difficulty := strings.ToUpper(req.Difficulty)
	if difficulty != models.DifficultyEasy && difficulty != models.DifficultyMedium && difficulty != models.DifficultyHard {
		return nil, ErrBadDifficulty
	}

	var replaced *models.Image
	if file != nil {
		replaced = entity.Image
		img, err := image.Process(s.db, file)
		if err != nil {
			return nil, err
		}
		entity.ImageID = &img.ID
		entity.Image = img
	}

	entity.Title = req.Title
	entity.Description = utils.SanitizeText(req.Description)
	entity.Difficulty = difficulty
	entity.CookingTimeMinutes = req.CookingTimeMinutes
	entity.CategoryID = category.ID
	entity.UpdatedAt = time.Now()

	if err := s.db.Save(entity).Error; err != nil {
		return nil, err
	}

	if err := s.db.Where("recipe_id = ?", entity.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return nil, err
	}
	if err := s.setIngredients(entity, req.Ingredients); err != nil {
		return nil, err
	}

	image.Cleanup(s.db, replaced)

	return s.GetByID(entity.ID, viewerID)
}

func (s *Service) GetByID(recipeID, viewerID uint) (*Detail, error) {
	entity, err := s.byID(recipeID)
	if err != nil {
		return nil, err
	}

	var likes, bookmarks int64
	s.db.Model(&models.RecipeLike{}).Where("recipe_id = ?", recipeID).Count(&likes)
	s.db.Model(&models.RecipeBookmark{}).Where("recipe_id = ?", recipeID).Count(&bookmarks)

	updatedAt := entity.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = entity.CreatedAt
	}

	authorName := ""
	if entity.Author != nil {
		authorName = entity.Author.Name
	}

	ingredients := make([]IngredientDto, 0, len(entity.Ingredients))
	for _, ri := range entity.Ingredients {
		name := ""
		if ri.Ingredient != nil {
			name = ri.Ingredient.Name
		}
		ingredients = append(ingredients, IngredientDto{
			Ingredient:  name,
			Amount:      ri.Amount,
			MeasureUnit: ri.MeasureUnit,
		})
	}

	return &Detail{
		RecipeID:           entity.ID,
		UpdatedAt:          updatedAt,
		Title:              entity.Title,
		AuthorName:         authorName,
		AuthorID:           entity.UserID,
		ImageURL:           imageURL(entity.Image),
		CookingTimeMinutes: entity.CookingTimeMinutes,
		Difficulty:         entity.Difficulty,
		Description:        entity.Description,
		Likes:              likes,
		Bookmarks:          bookmarks,
		Comments:           s.countComments(recipeID),
		IsLiked:            s.checkLiked(recipeID, viewerID),
		IsBookmarked:       s.checkBookmarked(recipeID, viewerID),
		Ingredients:        ingredients,
	}, nil
}

// List routes the query parameter: "my" and "saved" are personal feeds for
// authenticated viewers, any other text searches title and description, and
// an empty query returns the popular feed. All feeds order by view count.
func (s *Service) List(query string, viewerID uint, page, size int) ([]ListItem, int64, error) {
	query = strings.ToLower(query)

	if viewerID != 0 {
		switch query {
		case "my":
			return s.listWhere(s.db.Where("recipes.user_id = ?", viewerID), viewerID, page, size)
		case "saved":
			joined := s.db.
				Joins("JOIN recipe_bookmarks ON recipe_bookmarks.recipe_id = recipes.id").
				Where("recipe_bookmarks.user_id = ?", viewerID)
			return s.listWhere(joined, viewerID, page, size)
		}
	}

	if query == "" {
		return s.listWhere(s.db, viewerID, page, size)
	}

	like := "%" + query + "%"
	return s.listWhere(
		s.db.Where("LOWER(recipes.title) LIKE ? OR LOWER(recipes.description) LIKE ?", like, like),
		viewerID, page, size)
}

func (s *Service) ByCategory(categoryID, viewerID uint, page, size int) ([]ListItem, int64, error) {
	return s.listWhere(s.db.Where("recipes.category_id = ?", categoryID), viewerID, page, size)
}

func (s *Service) ByUser(userID, viewerID uint, page, size int) ([]ListItem, int64, error) {
	return s.listWhere(s.db.Where("recipes.user_id = ?", userID), viewerID, page, size)
}

func (s *Service) IncrementViewCount(recipeID uint) {
	s.db.Model(&models.Recipe{}).Where("id = ?", recipeID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
}

func (s *Service) listWhere(tx *gorm.DB, viewerID uint, page, size int) ([]ListItem, int64, error) {
	var total int64
	if err := tx.Model(&models.Recipe{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entities []models.Recipe
	err := tx.Model(&models.Recipe{}).
		Order("recipes.view_count DESC").
		Preload("Author").Preload("Image").
		Offset(page * size).Limit(size).
		Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	items := make([]ListItem, 0, len(entities))
	for i := range entities {
		entity := &entities[i]

		var likes, bookmarks int64
		s.db.Model(&models.RecipeLike{}).Where("recipe_id = ?", entity.ID).Count(&likes)
		s.db.Model(&models.RecipeBookmark{}).Where("recipe_id = ?", entity.ID).Count(&bookmarks)

		authorName := ""
		if entity.Author != nil {
			authorName = entity.Author.Name
		}

		items = append(items, ListItem{
			RecipeID:     entity.ID,
			Title:        entity.Title,
			AuthorName:   authorName,
			ImageURL:     imageURL(entity.Image),
			Likes:        likes,
			Bookmarks:    bookmarks,
			IsLiked:      s.checkLiked(entity.ID, viewerID),
			IsBookmarked: s.checkBookmarked(entity.ID, viewerID),
		})
	}

	return items, total, nil
}

func (s *Service) checkLiked(recipeID, viewerID uint) *bool {
	if viewerID == 0 {
		return nil
	}
	var count int64
	s.db.Model(&models.RecipeLike{}).
		Where("user_id = ? AND recipe_id = ?", viewerID, recipeID).Count(&count)
	liked := count > 0
	return &liked
}

func (s *Service) checkBookmarked(recipeID, viewerID uint) *bool {
	if viewerID == 0 {
		return nil
	}
	var count int64
	s.db.Model(&models.RecipeBookmark{}).
		Where("user_id = ? AND recipe_id = ?", viewerID, recipeID).Count(&count)
	bookmarked := count > 0
	return &bookmarked
}

// countComments counts top-level comments plus their direct replies.
func (s *Service) countComments(recipeID uint) int64 {
	var topLevel, replies int64
	s.db.Model(&models.Comment{}).Where("recipe_id = ?", recipeID).Count(&topLevel)
	s.db.Model(&models.Comment{}).
		Where("parent_id IN (?)", s.db.Model(&models.Comment{}).
			Select("id").Where("recipe_id = ?", recipeID)).
		Count(&replies)
	return topLevel + replies
}

func (s *Service) setIngredients(entity *models.Recipe, ingredients []IngredientDto) error {
	for _, dto := range ingredients {
		name := strings.ToLower(strings.TrimSpace(dto.Ingredient))
		if name == "" {
			continue
		}

		ingredient := models.Ingredient{Name: name}
		if err := s.db.Where("name = ?", name).FirstOrCreate(&ingredient).Error; err != nil {
			return err
		}

		ri := models.RecipeIngredient{
			RecipeID:     entity.ID,
			IngredientID: ingredient.ID,
			Amount:       dto.Amount,
			MeasureUnit:  dto.MeasureUnit,
		}
		if err := s.db.Create(&ri).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) byID(recipeID uint) (*models.Recipe, error) {
	var entity models.Recipe
	err := s.db.
		Preload("Author").Preload("Image").
		Preload("Ingredients").Preload("Ingredients.Ingredient").
		First(&entity, recipeID).Error
	if err != nil {
		return nil, ErrNotFound
	}
	return &entity, nil
}

func (s *Service) category(name string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("LOWER(name) = LOWER(?)", name).First(&category).Error; err != nil {
		return nil, ErrCategoryNotFound
	}
	return &category, nil
}

func imageURL(img *models.Image) *string {
	if img == nil {
		return nil
	}
	return &img.URL
}
