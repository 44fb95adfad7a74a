package token

import (
	"time"

	"gorm.io/gorm"

	"github.com/yerokha312/cooks-corner/internal/models"
)

// Store is the durable record of issued refresh tokens, kept for revocation
// auditing and multi-device logout. Rows are never deleted on revocation,
// only flagged.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Save(record *models.RefreshToken) error {
	return s.db.Save(record).Error
}

func (s *Store) SaveAll(records []models.RefreshToken) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.Save(&records).Error
}

func (s *Store) FindNotRevokedByEmail(email string) ([]models.RefreshToken, error) {
	var records []models.RefreshToken
	err := s.db.
		Joins("JOIN users ON users.id = refresh_tokens.user_id").
		Where("users.email = ? AND refresh_tokens.revoked = ?", email, false).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteExpired removes rows whose expiry has passed. Called from the
// background cleanup job, not from any request path.
func (s *Store) DeleteExpired(now time.Time) (int64, error) {
	result := s.db.Where("expires_at < ?", now).Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
