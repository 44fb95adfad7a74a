package models

import (
	"time"
)

const (
	DifficultyEasy   = "EASY"
	DifficultyMedium = "MEDIUM"
	DifficultyHard   = "HARD"
)

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex" json:"name"`
}

type Ingredient struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex" json:"name"`
}

type Recipe struct {
	ID                 uint               `gorm:"primaryKey" json:"id"`
	Title              string             `gorm:"size:255;not null" json:"title"`
	Description        string             `gorm:"size:1000" json:"description"`
	Difficulty         string             `gorm:"size:20;not null" json:"difficulty"`
	CookingTimeMinutes int                `json:"cooking_time_minutes"`
	CategoryID         uint               `gorm:"index" json:"category_id"`
	Category           *Category          `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	UserID             uint               `gorm:"index" json:"user_id"`
	Author             *User              `gorm:"foreignKey:UserID" json:"author,omitempty"`
	ImageID            *uint              `json:"-"`
	Image              *Image             `gorm:"foreignKey:ImageID" json:"image,omitempty"`
	Ingredients        []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
	ViewCount          int64              `gorm:"default:0" json:"view_count"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

type RecipeIngredient struct {
	ID           uint        `gorm:"primaryKey" json:"-"`
	RecipeID     uint        `gorm:"index;not null" json:"-"`
	IngredientID uint        `gorm:"not null" json:"-"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	Amount       float64     `json:"amount"`
	MeasureUnit  string      `gorm:"size:50" json:"measure_unit"`
}

type RecipeLike struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_recipe_like;not null" json:"user_id"`
	RecipeID  uint      `gorm:"uniqueIndex:idx_user_recipe_like;not null" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`
}

type RecipeBookmark struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_recipe_bookmark;not null" json:"user_id"`
	RecipeID  uint      `gorm:"uniqueIndex:idx_user_recipe_bookmark;not null" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`
}
