package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password     string    `gorm:"size:255;not null" json:"-"`
	Bio          string    `gorm:"size:500" json:"bio,omitempty"`
	ImageID      *uint     `json:"-"`
	ProfileImage *Image    `gorm:"foreignKey:ImageID" json:"profile_image,omitempty"`
	Provider     string    `gorm:"size:50;default:'local'" json:"provider"`
	Enabled      bool      `gorm:"default:false" json:"enabled"`
	Deleted      bool      `gorm:"default:false" json:"-"`
	ViewCount    int64     `gorm:"default:0" json:"-"`
	Roles        []Role    `gorm:"many2many:user_roles" json:"roles,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
	UpdatedAt    time.Time `json:"-"`
}

type Role struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Authority string `gorm:"size:50;uniqueIndex" json:"authority"`
}

// Follow is a directed edge: follower follows followee. Both directions of the
// relation are answered by existence queries on this single table.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	FollowerID uint      `gorm:"uniqueIndex:idx_follower_followee;not null" json:"follower_id"`
	FolloweeID uint      `gorm:"uniqueIndex:idx_follower_followee;not null" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
