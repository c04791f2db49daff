package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sidesa/internal/auth"
	"sidesa/internal/models"
)

var nop = zap.NewNop().Sugar()

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Session{}, &models.ActivityLog{},
		&models.News{}, &models.LetterTemplate{}, &models.GalleryItem{},
		&models.VillageProfile{}, &models.PopulationStat{}, &models.RegionData{},
	))
	return db
}

func makeUser(t *testing.T, db *gorm.DB, email, password, role string, active bool) models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := models.User{
		Email:        email,
		FullName:     "Test User",
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// doJSON runs a handler against a JSON body, optionally with an identity in
// context, and decodes the response body into a generic map.
func doJSON(t *testing.T, h http.HandlerFunc, method, target string, body any, id *auth.Identity) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if id != nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), *id))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}
