package main

import (
	"log"
	"os"
	"time"

	"github.com/yerokha312/cooks-corner/internal/cache"
	"github.com/yerokha312/cooks-corner/internal/config"
	"github.com/yerokha312/cooks-corner/internal/database"
	"github.com/yerokha312/cooks-corner/internal/mail"
	"github.com/yerokha312/cooks-corner/internal/server"
	"github.com/yerokha312/cooks-corner/internal/token"
	"github.com/yerokha312/cooks-corner/internal/utils"
)

func main() {
	cfg := config.Load()

	if len(cfg.JWTSecret) < 32 {
		log.Fatal("❌ JWT Configuration Error: JWT_SECRET must be at least 32 characters")
	}
	if cfg.TokenKey == "" {
		log.Fatal("❌ Token Configuration Error: TOKEN_ENCRYPTION_KEY is not set")
	}
	log.Println("✅ Token secrets validated")

	requiredEnvVars := map[string]string{
		"DB_HOST":     os.Getenv("DB_HOST"),
		"DB_NAME":     os.Getenv("DB_NAME"),
		"DB_USER":     os.Getenv("DB_USER"),
		"DB_PASSWORD": os.Getenv("DB_PASSWORD"),
	}

	for key, value := range requiredEnvVars {
		if value == "" {
			log.Fatalf("❌ Required environment variable %s is not set", key)
		}
	}
	log.Println("✅ Required environment variables validated")

	// ========== DATABASE SETUP ==========
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("❌ Database connection failed:", err)
	}
	database.DB = db

	if err := database.Migrate(db); err != nil {
		log.Fatal("❌ Migration failed: ", err)
	}
	log.Println("✅ Database migrated successfully")

	if err := database.SeedDefaults(db); err != nil {
		log.Println("⚠️  Failed to seed defaults (may already exist):", err)
	} else {
		log.Println("✅ Default roles and categories seeded")
	}

	// ========== REDIS SETUP ==========
	kv, err := cache.Connect(cfg)
	if err != nil {
		log.Fatal("❌ Redis connection failed:", err)
	}

	// ========== STORAGE SETUP ==========
	if err := utils.InitLocalStorage(); err != nil {
		log.Fatal("❌ Failed to initialize local storage:", err)
	}
	log.Println("✅ Local storage initialized at ./uploads/")

	useS3 := os.Getenv("USE_S3")
	if useS3 == "true" {
		s3Bucket := os.Getenv("S3_BUCKET")
		s3Region := os.Getenv("S3_REGION")
		cloudfrontURL := os.Getenv("CLOUDFRONT_URL")

		if s3Bucket != "" && s3Region != "" {
			if err := utils.InitS3(s3Bucket, s3Region, cloudfrontURL); err != nil {
				log.Println("⚠️  S3 initialization failed:", err)
				log.Println("⚠️  Falling back to local storage")
				utils.SetStorageMode(true)
			} else {
				log.Println("✅ S3 initialized successfully")
				log.Printf("☁️  Using S3: %s (region: %s)", s3Bucket, s3Region)
			}
		} else {
			log.Println("⚠️  USE_S3=true but S3_BUCKET or S3_REGION not configured")
			log.Println("⚠️  Falling back to local storage")
		}
	} else {
		log.Println("💾 Using LOCAL storage mode (./uploads/)")
		utils.SetStorageMode(true)
	}

	// ========== BACKGROUND JOBS ==========
	tokenStore := token.NewStore(db)
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			deleted, err := tokenStore.DeleteExpired(time.Now())
			if err != nil {
				log.Printf("⚠️  Refresh token cleanup failed: %v", err)
				continue
			}
			if deleted > 0 {
				log.Printf("🧹 Cleaned up %d expired refresh tokens", deleted)
			}
		}
	}()

	// ========== START SERVER ==========
	app := server.New(server.Deps{
		DB:          db,
		Cache:       kv,
		Mailer:      mail.NewSMTPSender(cfg),
		Secret:      cfg.JWTSecret,
		TokenKey:    cfg.TokenKey,
		FrontendURL: cfg.FrontendURL,
	})

	log.Printf("🚀 Cooks Corner server starting on %s", cfg.ServerAddr)
	log.Printf("💾 Storage Mode: %s", utils.GetStorageMode())
	log.Printf("🔐 JWT Authentication: Enabled")

	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Fatal("❌ Failed to start server:", err)
	}
}
