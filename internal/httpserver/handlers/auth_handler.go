package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sidesa/internal/audit"
	"sidesa/internal/auth"
	"sidesa/internal/models"
)

type userSummary struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func summarize(u models.User) userSummary {
	return userSummary{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Email = normalizeEmail(req.Email)
		if req.Email == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		var u models.User
		if err := db.First(&u, "LOWER(email) = ?", req.Email).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				lg.Errorw("login lookup failed", "error", err)
				respondError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if !u.IsActive {
			respondError(w, http.StatusForbidden, "account is inactive")
			return
		}
		if !models.AdminRole(u.Role) {
			respondError(w, http.StatusForbidden, "admin access required")
			return
		}

		sess := models.Session{
			JTI:       uuid.NewString(),
			UserID:    u.ID,
			ExpiresAt: time.Now().Add(auth.SessionTTL),
		}
		if err := db.Create(&sess).Error; err != nil {
			lg.Errorw("session create failed", "user_id", u.ID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		token, err := auth.SignSession(u.ID, sess.JTI)
		if err != nil {
			lg.Errorw("session sign failed", "user_id", u.ID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		auth.SetSessionCookie(w, token)

		// Best-effort; a failed timestamp update must not block the login.
		now := time.Now()
		if err := db.Model(&u).Update("last_login_at", now).Error; err != nil {
			lg.Warnw("last_login_at update failed", "user_id", u.ID, "error", err)
		} else {
			u.LastLoginAt = &now
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID: u.ID,
			Action: audit.ActionLogin,
		}))
		respondData(w, http.StatusOK, "login successful", summarize(u))
	}
}

// Logout revokes the session row behind the cookie and clears the cookie.
// It never fails: a missing or unknown session still gets a cleared cookie.
func Logout(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
			if claims, err := auth.VerifySession(cookie.Value); err == nil && claims.JWTID != "" {
				var sess models.Session
				if db.First(&sess, "jti = ?", claims.JWTID).Error == nil {
					now := time.Now()
					if err := db.Model(&sess).Update("revoked_at", now).Error; err != nil {
						lg.Warnw("session revoke failed", "jti", sess.JTI, "error", err)
					}
					rec.Record(audit.FromRequest(r, audit.Entry{
						UserID: sess.UserID,
						Action: audit.ActionLogout,
					}))
				}
			}
		}
		auth.ClearSessionCookie(w)
		respondData(w, http.StatusOK, "logout successful", nil)
	}
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Register handles first-time setup only: the first account becomes
// super_admin and further registrations are refused. Later accounts are
// created through user management.
func Register(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerReq
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

		var existing models.User
		if err := db.First(&existing, "LOWER(email) = ?", req.Email).Error; err == nil {
			respondError(w, http.StatusConflict, "email already registered")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			lg.Errorw("register lookup failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		var count int64
		if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
			lg.Errorw("user count failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if count > 0 {
			respondError(w, http.StatusForbidden, "registration is closed")
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
			Role:         models.RoleSuperAdmin,
			IsActive:     true,
		}
		if err := db.Create(&u).Error; err != nil {
			lg.Errorw("user create failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondData(w, http.StatusCreated, "account created", summarize(u))
	}
}

func Me(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u models.User
		if err := db.First(&u, "id = ?", auth.UserID(r.Context())).Error; err != nil {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondData(w, http.StatusOK, "ok", summarize(u))
	}
}
