package comment

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yerokha312/cooks-corner/internal/models"
	"github.com/yerokha312/cooks-corner/internal/utils"
)

var (
	ErrNotFound       = errors.New("comment not found")
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrNotAuthor      = errors.New("user is not the author of this comment")
)

type CreateRequest struct {
	ObjectID uint   `json:"object_id"`
	IsReply  bool   `json:"is_reply"`
	Text     string `json:"text"`
}

type UpdateRequest struct {
	CommentID uint   `json:"comment_id"`
	Text      string `json:"text"`
}

// Dto is the comment view returned by all endpoints. Replies carries at most
// one page of direct replies; RepliesCount is the full count.
type Dto struct {
	CommentID    uint      `json:"comment_id"`
	AuthorID     uint      `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar *string   `json:"author_avatar"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Likes        int64     `json:"likes"`
	IsLiked      *bool     `json:"is_liked"`
	RepliesCount int64     `json:"replies_count"`
	Replies      []Dto     `json:"replies,omitempty"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create posts a comment. When IsReply is set, ObjectID names the parent
// comment; otherwise it names the recipe.
func (s *Service) Create(authorID uint, req *CreateRequest) (*Dto, error) {
	entity := models.Comment{
		AuthorID: authorID,
		Text:     utils.SanitizeText(req.Text),
	}

	if req.IsReply {
		var parent models.Comment
		if err := s.db.First(&parent, req.ObjectID).Error; err != nil {
			return nil, ErrNotFound
		}
		entity.ParentID = &parent.ID
	} else {
		var recipe models.Recipe
		if err := s.db.First(&recipe, req.ObjectID).Error; err != nil {
			return nil, ErrRecipeNotFound
		}
		entity.RecipeID = &recipe.ID
	}

	if err := s.db.Create(&entity).Error; err != nil {
		return nil, err
	}

	return s.GetByID(entity.ID, authorID)
}

func (s *Service) Update(viewerID uint, req *UpdateRequest) (*Dto, error) {
	var entity models.Comment
	if err := s.db.First(&entity, req.CommentID).Error; err != nil {
		return nil, ErrNotFound
	}
	if entity.AuthorID != viewerID {
		return nil, ErrNotAuthor
	}

	entity.Text = utils.SanitizeText(req.Text)
	entity.UpdatedAt = time.Now()
	if err := s.db.Save(&entity).Error; err != nil {
		return nil, err
	}

	return s.GetByID(entity.ID, viewerID)
}

func (s *Service) GetByID(commentID, viewerID uint) (*Dto, error) {
	var entity models.Comment
	if err := s.db.Preload("Author").Preload("Author.ProfileImage").First(&entity, commentID).Error; err != nil {
		return nil, ErrNotFound
	}

	dto := s.toDto(&entity, viewerID)
	return &dto, nil
}

// ListByRecipe returns a page of top-level comments, newest first, each with
// its first page of replies inlined.
func (s *Service) ListByRecipe(recipeID, viewerID uint, page, size int) ([]Dto, int64, error) {
	var recipe models.Recipe
	if err := s.db.First(&recipe, recipeID).Error; err != nil {
		return nil, 0, ErrRecipeNotFound
	}

	scope := s.db.Model(&models.Comment{}).Where("recipe_id = ?", recipeID)

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entities []models.Comment
	err := scope.
		Order("created_at DESC").
		Preload("Author").Preload("Author.ProfileImage").
		Offset(page * size).Limit(size).
		Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]Dto, 0, len(entities))
	for i := range entities {
		dto := s.toDto(&entities[i], viewerID)
		dto.Replies, _, _ = s.Replies(entities[i].ID, viewerID, 0, 5)
		dtos = append(dtos, dto)
	}
	return dtos, total, nil
}

// Replies returns a page of direct replies to a comment, oldest first.
func (s *Service) Replies(parentID, viewerID uint, page, size int) ([]Dto, int64, error) {
	scope := s.db.Model(&models.Comment{}).Where("parent_id = ?", parentID)

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entities []models.Comment
	err := scope.
		Order("created_at ASC").
		Preload("Author").Preload("Author.ProfileImage").
		Offset(page * size).Limit(size).
		Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]Dto, 0, len(entities))
	for i := range entities {
		dtos = append(dtos, s.toDto(&entities[i], viewerID))
	}
	return dtos, total, nil
}

func (s *Service) toDto(entity *models.Comment, viewerID uint) Dto {
	var likes, replies int64
	s.db.Model(&models.CommentLike{}).Where("comment_id = ?", entity.ID).Count(&likes)
	s.db.Model(&models.Comment{}).Where("parent_id = ?", entity.ID).Count(&replies)

	authorName := ""
	var avatar *string
	if entity.Author != nil {
		if entity.Author.Deleted {
			authorName = "Deleted User"
		} else {
			authorName = entity.Author.Name
			if entity.Author.ProfileImage != nil {
				avatar = &entity.Author.ProfileImage.URL
			}
		}
	}

	return Dto{
		CommentID:    entity.ID,
		AuthorID:     entity.AuthorID,
		AuthorName:   authorName,
		AuthorAvatar: avatar,
		Text:         entity.Text,
		CreatedAt:    entity.CreatedAt,
		UpdatedAt:    entity.UpdatedAt,
		Likes:        likes,
		IsLiked:      s.checkLiked(entity.ID, viewerID),
		RepliesCount: replies,
	}
}

func (s *Service) checkLiked(commentID, viewerID uint) *bool {
	if viewerID == 0 {
		return nil
	}
	var count int64
	s.db.Model(&models.CommentLike{}).
		Where("user_id = ? AND comment_id = ?", viewerID, commentID).Count(&count)
	liked := count > 0
	return &liked
}
