package models

import (
	"time"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RecipeID  *uint     `gorm:"index" json:"recipe_id,omitempty"`
	ParentID  *uint     `gorm:"index" json:"parent_id,omitempty"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Text      string    `gorm:"size:1000;not null" json:"text"`
	Replies   []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_comment_like;not null" json:"user_id"`
	CommentID uint      `gorm:"uniqueIndex:idx_user_comment_like;not null" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}
