package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"sidesa/internal/audit"
	"sidesa/internal/auth"
	"sidesa/internal/httpserver"
	"sidesa/internal/jobs"
	"sidesa/internal/logger"
	"sidesa/internal/models"
	"sidesa/internal/storage"
)

func main() {
	_ = godotenv.Load()
	lg := logger.New()
	defer lg.Sync()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		lg.Fatalw("DATABASE_URL is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Session{}, &models.ActivityLog{},
		&models.News{}, &models.LetterTemplate{}, &models.GalleryItem{},
		&models.VillageProfile{}, &models.PopulationStat{}, &models.RegionData{},
	); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}
	seedSuperAdmin(db, lg)

	var store *storage.ObjectStore
	if cfg := storage.ConfigFromEnv(); cfg.Endpoint != "" {
		store, err = storage.NewObjectStore(cfg)
		if err != nil {
			lg.Fatalw("object store init failed", "error", err)
		}
		if err := store.EnsureBucket(context.Background()); err != nil {
			lg.Fatalw("bucket bootstrap failed", "bucket", cfg.Bucket, "error", err)
		}
		lg.Infow("object store ready", "bucket", cfg.Bucket)
	} else {
		lg.Warnw("S3_ENDPOINT not set, uploads disabled")
	}

	rec := audit.NewRecorder(db, lg)

	sched := jobs.NewScheduler(db, lg)
	if err := sched.Start(); err != nil {
		lg.Fatalw("scheduler start failed", "error", err)
	}

	router := httpserver.NewRouter(db, rec, store, lg)
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	lg.Infow("listening", "port", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		lg.Fatalw("server stopped", "error", err)
	}
}

// seedSuperAdmin bootstraps one super_admin from the environment so the
// back office is reachable before first-time registration. No-op when the
// variables are unset or the account already exists.
func seedSuperAdmin(db *gorm.DB, lg *zap.SugaredLogger) {
	email := strings.ToLower(os.Getenv("SEED_ADMIN_EMAIL"))
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	var count int64
	db.Model(&models.User{}).Where("LOWER(email) = ?", email).Count(&count)
	if count > 0 {
		return
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		lg.Errorw("seed admin hash failed", "error", err)
		return
	}
	u := models.User{
		Email:        email,
		FullName:     "Administrator",
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(&u).Error; err != nil {
		lg.Errorw("seed admin create failed", "error", err)
		return
	}
	lg.Infow("seeded super admin", "email", email)
}
