package user

import (
	"context"
	"errors"
	"mime/multipart"

	"gorm.io/gorm"

	"github.com/yerokha312/cooks-corner/internal/image"
	"github.com/yerokha312/cooks-corner/internal/models"
	"github.com/yerokha312/cooks-corner/internal/token"
	"github.com/yerokha312/cooks-corner/internal/utils"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrSelfFollow    = errors.New("you can not follow yourself")
	ErrFollowDeleted = errors.New("you can not follow a deleted user")
	ErrIDMismatch    = errors.New("user id must match")
	ErrWrongPassword = errors.New("password is incorrect")
)

// Profile is the public view of a user. Identity fields are nulled for
// deleted accounts, which render as "Deleted User".
type Profile struct {
	UserID      *uint   `json:"user_id"`
	Name        string  `json:"name"`
	Bio         *string `json:"bio"`
	ImageURL    *string `json:"image_url"`
	RecipeCount int64   `json:"recipe_count"`
	Followers   int64   `json:"followers"`
	Following   int64   `json:"following"`
	IsFollowed  *bool   `json:"is_followed"`
	Deleted     bool    `json:"deleted"`
}

// Dto is the list-item view used by search and follower/following pages.
type Dto struct {
	UserID   *uint   `json:"user_id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url"`
}

type Service struct {
	db     *gorm.DB
	tokens *token.Service
}

func NewService(db *gorm.DB, tokens *token.Service) *Service {
	return &Service{db: db, tokens: tokens}
}

func (s *Service) GetProfile(userID, viewerID uint) (*Profile, error) {
	entity, err := s.byID(userID)
	if err != nil {
		return nil, err
	}

	if entity.Deleted {
		return &Profile{Name: "Deleted User", Deleted: true}, nil
	}

	var recipeCount, followers, following int64
	s.db.Model(&models.Recipe{}).Where("user_id = ?", userID).Count(&recipeCount)
	s.db.Model(&models.Follow{}).Where("followee_id = ?", userID).Count(&followers)
	s.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&following)

	id := entity.ID
	return &Profile{
		UserID:      &id,
		Name:        entity.Name,
		Bio:         optional(entity.Bio),
		ImageURL:    imageURL(entity.ProfileImage),
		RecipeCount: recipeCount,
		Followers:   followers,
		Following:   following,
		IsFollowed:  s.checkFollowed(userID, viewerID),
		Deleted:     false,
	}, nil
}

// checkFollowed is nil when the viewer is anonymous or looking at themselves.
func (s *Service) checkFollowed(userID, viewerID uint) *bool {
	if viewerID == 0 || viewerID == userID {
		return nil
	}

	var count int64
	s.db.Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", viewerID, userID).
		Count(&count)
	followed := count > 0
	return &followed
}

func (s *Service) Follow(userID, viewerID uint) error {
	if userID == viewerID {
		return ErrSelfFollow
	}

	target, err := s.byID(userID)
	if err != nil {
		return err
	}
	if target.Deleted {
		return ErrFollowDeleted
	}

	edge := models.Follow{FollowerID: viewerID, FolloweeID: userID}
	return s.db.Where(models.Follow{FollowerID: viewerID, FolloweeID: userID}).
		FirstOrCreate(&edge).Error
}

func (s *Service) Unfollow(userID, viewerID uint) error {
	return s.db.Where("follower_id = ? AND followee_id = ?", viewerID, userID).
		Delete(&models.Follow{}).Error
}

func (s *Service) UpdateProfile(viewerID, requestedID uint, name, bio string, file *multipart.FileHeader) (*Profile, error) {
	if viewerID != requestedID {
		return nil, ErrIDMismatch
	}

	entity, err := s.byID(viewerID)
	if err != nil {
		return nil, err
	}

	entity.Name = name
	entity.Bio = utils.SanitizeText(bio)

	var replaced *models.Image
	if file != nil {
		replaced = entity.ProfileImage
		img, err := image.Process(s.db, file)
		if err != nil {
			return nil, err
		}
		entity.ImageID = &img.ID
		entity.ProfileImage = img
	}

	if err := s.db.Save(entity).Error; err != nil {
		return nil, err
	}

	image.Cleanup(s.db, replaced)

	return s.GetProfile(viewerID, 0)
}

// Search finds cooks by name or bio, most followed first. Empty queries
// return the most popular cooks.
func (s *Service) Search(query string, page, size int) ([]Dto, int64, error) {
	base := s.db.Model(&models.User{}).
		Where("deleted = ? AND enabled = ?", false, true)

	if query != "" {
		like := "%" + query + "%"
		base = base.Where("LOWER(name) LIKE LOWER(?) OR LOWER(bio) LIKE LOWER(?)", like, like)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entities []models.User
	err := base.
		Select("users.*, (SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id) AS follower_count").
		Order("follower_count DESC").
		Preload("ProfileImage").
		Offset(page * size).Limit(size).
		Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	return toDtos(entities), total, nil
}

func (s *Service) Followers(userID uint, page, size int) ([]Dto, int64, error) {
	return s.edgeList(userID, "followee_id", "follower_id", page, size)
}

func (s *Service) Following(userID uint, page, size int) ([]Dto, int64, error) {
	return s.edgeList(userID, "follower_id", "followee_id", page, size)
}

func (s *Service) edgeList(userID uint, whereCol, joinCol string, page, size int) ([]Dto, int64, error) {
	target, err := s.byID(userID)
	if err != nil {
		return nil, 0, err
	}
	if target.Deleted {
		return nil, 0, ErrNotFound
	}

	join := s.db.Model(&models.User{}).
		Joins("JOIN follows ON follows."+joinCol+" = users.id").
		Where("follows."+whereCol+" = ?", userID)

	var total int64
	if err := join.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entities []models.User
	err = join.Preload("ProfileImage").
		Offset(page * size).Limit(size).
		Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	return toDtos(entities), total, nil
}

// Delete soft-deletes the account after a password check and revokes every
// outstanding token. The record stays recoverable via the recovery flow.
func (s *Service) Delete(ctx context.Context, viewerID uint, password string) error {
	entity, err := s.byID(viewerID)
	if err != nil {
		return err
	}

	if !utils.CheckPasswordHash(password, entity.Password) {
		return ErrWrongPassword
	}

	entity.Deleted = true
	if err := s.tokens.RevokeAllTokens(ctx, entity.Email); err != nil {
		return err
	}

	return s.db.Save(entity).Error
}

func (s *Service) IncrementViewCount(userID uint) {
	s.db.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
}

func (s *Service) byID(userID uint) (*models.User, error) {
	var entity models.User
	if err := s.db.Preload("ProfileImage").First(&entity, userID).Error; err != nil {
		return nil, ErrNotFound
	}
	return &entity, nil
}

func toDtos(entities []models.User) []Dto {
	dtos := make([]Dto, 0, len(entities))
	for i := range entities {
		entity := &entities[i]
		if entity.Deleted {
			dtos = append(dtos, Dto{Name: "Deleted User"})
			continue
		}
		id := entity.ID
		dtos = append(dtos, Dto{UserID: &id, Name: entity.Name, ImageURL: imageURL(entity.ProfileImage)})
	}
	return dtos
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func imageURL(img *models.Image) *string {
	if img == nil {
		return nil
	}
	return &img.URL
}
