package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sidesa/internal/audit"
	"sidesa/internal/auth"
	"sidesa/internal/httpserver/handlers"
	"sidesa/internal/models"
)

func TestCreateNews_SlugAndPublish(t *testing.T) {
	db := openTestDB(t)
	rec := audit.NewRecorder(db, nop)
	defer rec.Close()
	id := auth.Identity{UserID: "u1", Role: models.RoleAdmin}

	res, body := doJSON(t, handlers.CreateNews(db, rec, nop), http.MethodPost, "/v1/admin/news",
		map[string]any{"title": "Musyawarah Desa 2026!", "content": "body", "is_published": true}, &id)
	require.Equal(t, http.StatusCreated, res.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "musyawarah-desa-2026", data["slug"])
	assert.NotNil(t, data["published_at"])

	// Same title gets a distinct slug.
	res, body = doJSON(t, handlers.CreateNews(db, rec, nop), http.MethodPost, "/v1/admin/news",
		map[string]any{"title": "Musyawarah Desa 2026!", "content": "body"}, &id)
	require.Equal(t, http.StatusCreated, res.Code)
	second := body["data"].(map[string]any)
	assert.NotEqual(t, data["slug"], second["slug"])
}

func TestCreateNews_RequiresTitleAndContent(t *testing.T) {
	db := openTestDB(t)
	rec := audit.NewRecorder(db, nop)
	defer rec.Close()
	id := auth.Identity{UserID: "u1", Role: models.RoleAdmin}

	res, _ := doJSON(t, handlers.CreateNews(db, rec, nop), http.MethodPost, "/v1/admin/news",
		map[string]any{"title": "only a title"}, &id)

	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestListNews_PublishedOnly(t *testing.T) {
	db := openTestDB(t)
	rec := audit.NewRecorder(db, nop)
	defer rec.Close()
	id := auth.Identity{UserID: "u1", Role: models.RoleAdmin}

	create := handlers.CreateNews(db, rec, nop)
	res, _ := doJSON(t, create, http.MethodPost, "/", map[string]any{"title": "Draft", "content": "x"}, &id)
	require.Equal(t, http.StatusCreated, res.Code)
	res, _ = doJSON(t, create, http.MethodPost, "/", map[string]any{"title": "Live", "content": "x", "is_published": true}, &id)
	require.Equal(t, http.StatusCreated, res.Code)

	resp, body := doJSON(t, handlers.ListNews(db, nop), http.MethodGet, "/v1/news", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, body["data"], 1)

	// Draft is invisible by slug too.
	res, _ = doJSON(t, handlers.AdminListNews(db, nop), http.MethodGet, "/v1/admin/news", nil, &id)
	require.Equal(t, http.StatusOK, res.Code)
}
