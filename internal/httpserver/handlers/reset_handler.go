package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sidesa/internal/audit"
	"sidesa/internal/auth"
	"sidesa/internal/models"
)

// forgotMessage is returned for every forgot-password request, whether or not
// the account exists. Keeping it identical is the enumeration-resistance
// guarantee the flow depends on.
const forgotMessage = "If an account with that email exists, a password reset link has been sent."

type forgotReq struct {
	Email string `json:"email"`
}

func ForgotPassword(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forgotReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Email = normalizeEmail(req.Email)
		if !validEmail(req.Email) {
			respondError(w, http.StatusBadRequest, "invalid email format")
			return
		}

		var u models.User
		err := db.First(&u, "LOWER(email) = ?", req.Email).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				lg.Errorw("forgot-password lookup failed", "error", err)
				respondError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			respondData(w, http.StatusOK, forgotMessage, nil)
			return
		}
		if !u.IsActive {
			respondData(w, http.StatusOK, forgotMessage, nil)
			return
		}

		secret, err := auth.NewResetSecret()
		if err != nil {
			lg.Errorw("reset secret generation failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		hash := auth.HashResetSecret(secret)
		expires := time.Now().Add(auth.ResetTokenTTL)
		if err := db.Model(&u).Updates(map[string]any{
			"reset_token":         hash,
			"reset_token_expires": expires,
		}).Error; err != nil {
			lg.Errorw("reset token store failed", "user_id", u.ID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		// Email delivery is handled elsewhere. Outside production the reset
		// URL is exposed in the response for manual testing.
		if os.Getenv("APP_ENV") != "production" {
			respondData(w, http.StatusOK, forgotMessage, map[string]string{
				"reset_url": resetURL(secret, u.Email),
			})
			return
		}
		respondData(w, http.StatusOK, forgotMessage, nil)
	}
}

func resetURL(secret, email string) string {
	base := os.Getenv("PUBLIC_BASE_URL")
	if base == "" {
		base = "http://localhost:5173"
	}
	return fmt.Sprintf("%s/admin/reset-password?token=%s&email=%s",
		base, url.QueryEscape(secret), url.QueryEscape(email))
}

// findByResetToken resolves an (email, secret) pair to a user with a live
// token. Lookup miss and expiry deliberately share one answer.
func findByResetToken(db *gorm.DB, email, secret string, lg *zap.SugaredLogger) (models.User, bool) {
	var u models.User
	hash := auth.HashResetSecret(secret)
	err := db.First(&u, "LOWER(email) = ? AND reset_token = ?", normalizeEmail(email), hash).Error
	if err != nil {
		lg.Debugw("reset token lookup miss", "email", email)
		return models.User{}, false
	}
	if u.ResetTokenExpires == nil || time.Now().After(*u.ResetTokenExpires) {
		lg.Debugw("reset token expired", "user_id", u.ID)
		return models.User{}, false
	}
	return u, true
}

// ValidateResetToken is the GET half of the reset flow, called when the user
// opens the emailed link.
func ValidateResetToken(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		email := r.URL.Query().Get("email")
		if token == "" || email == "" {
			respondJSON(w, http.StatusBadRequest, map[string]any{"valid": false})
			return
		}
		u, ok := findByResetToken(db, email, token, lg)
		if !ok {
			respondJSON(w, http.StatusBadRequest, map[string]any{"valid": false})
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"valid": true, "email": u.Email})
	}
}

type resetReq struct {
	Token           string `json:"token"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ResetPassword consumes a reset token. Input validation runs before any
// store access so a failed attempt leaves the token usable.
func ResetPassword(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Token == "" || req.Email == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "token, email and password are required")
			return
		}
		if req.Password != req.ConfirmPassword {
			respondError(w, http.StatusBadRequest, "passwords do not match")
			return
		}
		if len(req.Password) < 6 {
			respondError(w, http.StatusBadRequest, "password must be at least 6 characters")
			return
		}

		u, ok := findByResetToken(db, req.Email, req.Token, lg)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid or expired reset token")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			lg.Errorw("password hash failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		// Clearing the token in the same update makes the secret single-use.
		if err := db.Model(&u).Updates(map[string]any{
			"password_hash":       hash,
			"reset_token":         nil,
			"reset_token_expires": nil,
		}).Error; err != nil {
			lg.Errorw("password reset store failed", "user_id", u.ID, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID: u.ID,
			Action: audit.ActionPasswordReset,
		}))
		respondData(w, http.StatusOK, "password has been reset, you can now log in", nil)
	}
}
