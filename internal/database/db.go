package database

import (
	"fmt"
	"log"

	"github.com/yerokha312/cooks-corner/internal/config"
	"github.com/yerokha312/cooks-corner/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	DB = db

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Follow{},
		&models.Image{},
		&models.Category{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.RecipeLike{},
		&models.RecipeBookmark{},
		&models.Comment{},
		&models.CommentLike{},
		&models.RefreshToken{},
	)
	if err != nil {
		return err
	}
	log.Println("Database migrated successfully!")
	return nil
}

// SeedDefaults creates the USER role and the fixed recipe categories when they
// are missing. Safe to run on every startup.
func SeedDefaults(db *gorm.DB) error {
	role := models.Role{Authority: "USER"}
	if err := db.Where(models.Role{Authority: role.Authority}).FirstOrCreate(&role).Error; err != nil {
		return err
	}

	for _, name := range []string{"Breakfast", "Lunch", "Dinner", "Dessert", "Snack"} {
		category := models.Category{Name: name}
		if err := db.Where(models.Category{Name: name}).FirstOrCreate(&category).Error; err != nil {
			return err
		}
	}

	return nil
}
