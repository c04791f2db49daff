package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sidesa/internal/audit"
	"sidesa/internal/auth"
	"sidesa/internal/models"
)

func ListUsers(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var users []models.User
		if err := db.Order("created_at desc").Find(&users).Error; err != nil {
			lg.Errorw("user list failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		out := make([]userSummary, 0, len(users))
		for _, u := range users {
			out = append(out, summarize(u))
		}
		respondData(w, http.StatusOK, "ok", out)
	}
}

type createUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func CreateUser(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Email = normalizeEmail(req.Email)
		req.FullName = strings.TrimSpace(req.FullName)
		if req.Email == "" || req.Password == "" || req.FullName == "" {
			respondError(w, http.StatusBadRequest, "email, password and full_name are required")
			return
		}
		if !validEmail(req.Email) {
			respondError(w, http.StatusBadRequest, "invalid email format")
			return
		}
		if len(req.Password) < 8 {
			respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
			return
		}
		if req.Role == "" {
			req.Role = models.RoleAdmin
		}
		if !models.AdminRole(req.Role) {
			respondError(w, http.StatusBadRequest, "role must be super_admin or admin")
			return
		}

		var existing models.User
		if err := db.First(&existing, "LOWER(email) = ?", req.Email).Error; err == nil {
			respondError(w, http.StatusConflict, "email already registered")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			lg.Errorw("user lookup failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			lg.Errorw("password hash failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		u := models.User{
			Email:        req.Email,
			FullName:     req.FullName,
			PasswordHash: hash,
			Role:         req.Role,
			IsActive:     true,
		}
		if err := db.Create(&u).Error; err != nil {
			lg.Errorw("user create failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID:      auth.UserID(r.Context()),
			Action:      audit.ActionCreate,
			EntityType:  "user",
			EntityID:    u.ID,
			EntityTitle: u.Email,
		}))
		respondData(w, http.StatusCreated, "user created", summarize(u))
	}
}

type updateUserReq struct {
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
}

func UpdateUser(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req updateUserReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var u models.User
		if err := db.First(&u, "id = ?", id).Error; err != nil {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		if req.FullName != nil {
			name := strings.TrimSpace(*req.FullName)
			if name == "" {
				respondError(w, http.StatusBadRequest, "full_name cannot be empty")
				return
			}
			u.FullName = name
		}
		if req.Role != nil {
			if !models.AdminRole(*req.Role) {
				respondError(w, http.StatusBadRequest, "role must be super_admin or admin")
				return
			}
			u.Role = *req.Role
		}
		if req.IsActive != nil {
			u.IsActive = *req.IsActive
		}
		if req.Password != nil && *req.Password != "" {
			if len(*req.Password) < 8 {
				respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
				return
			}
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				lg.Errorw("password hash failed", "error", err)
				respondError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			u.PasswordHash = hash
		}
		if err := db.Save(&u).Error; err != nil {
			lg.Errorw("user update failed", "user_id", u.ID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID:      auth.UserID(r.Context()),
			Action:      audit.ActionUpdate,
			EntityType:  "user",
			EntityID:    u.ID,
			EntityTitle: u.Email,
		}))
		respondData(w, http.StatusOK, "user updated", summarize(u))
	}
}

func DeleteUser(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == auth.UserID(r.Context()) {
			respondError(w, http.StatusBadRequest, "cannot delete your own account")
			return
		}
		var u models.User
		if err := db.First(&u, "id = ?", id).Error; err != nil {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		if err := db.Delete(&u).Error; err != nil {
			lg.Errorw("user delete failed", "user_id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID:      auth.UserID(r.Context()),
			Action:      audit.ActionDelete,
			EntityType:  "user",
			EntityID:    u.ID,
			EntityTitle: u.Email,
		}))
		respondData(w, http.StatusOK, "user deleted", nil)
	}
}
