package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sidesa/internal/audit"
	"sidesa/internal/auth"
	"sidesa/internal/httpserver/handlers"
	"sidesa/internal/models"
)

func TestCreateUser_Validation(t *testing.T) {
	db := openTestDB(t)
	rec := audit.NewRecorder(db, nop)
	defer rec.Close()
	id := auth.Identity{UserID: "boss", Role: models.RoleSuperAdmin}
	h := handlers.CreateUser(db, rec, nop)

	res, _ := doJSON(t, h, http.MethodPost, "/v1/admin/users",
		map[string]string{"email": "x@y.id", "password": "longenough", "full_name": "X", "role": "editor"}, &id)
	assert.Equal(t, http.StatusBadRequest, res.Code, "unknown role rejected")

	res, _ = doJSON(t, h, http.MethodPost, "/v1/admin/users",
		map[string]string{"email": "x@y.id", "password": "short", "full_name": "X"}, &id)
	assert.Equal(t, http.StatusBadRequest, res.Code, "short password rejected")

	res, _ = doJSON(t, h, http.MethodPost, "/v1/admin/users",
		map[string]string{"email": "x@y.id", "password": "longenough", "full_name": "X"}, &id)
	require.Equal(t, http.StatusCreated, res.Code)

	res, _ = doJSON(t, h, http.MethodPost, "/v1/admin/users",
		map[string]string{"email": "x@y.id", "password": "longenough", "full_name": "X"}, &id)
	assert.Equal(t, http.StatusConflict, res.Code, "duplicate email rejected")
}

func TestDeleteUser_CannotDeleteSelf(t *testing.T) {
	db := openTestDB(t)
	u := makeUser(t, db, "boss@village.id", "longenough", models.RoleSuperAdmin, true)
	rec := audit.NewRecorder(db, nop)
	defer rec.Close()

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", u.ID)
	req := httptest.NewRequest(http.MethodDelete, "/v1/admin/users/"+u.ID, nil)
	ctx := auth.WithIdentity(req.Context(), auth.Identity{UserID: u.ID, Role: models.RoleSuperAdmin})
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	out := httptest.NewRecorder()
	handlers.DeleteUser(db, rec, nop).ServeHTTP(out, req.WithContext(ctx))

	assert.Equal(t, http.StatusBadRequest, out.Code)
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
