package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"gorm.io/gorm"

	"sidesa/internal/models"
)

func denyJSON(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// SessionAuth resolves the auth cookie to an active user. Missing cookie,
// bad signature, unknown/revoked/expired session and inactive account all
// read as unauthenticated.
func SessionAuth(db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				denyJSON(w, "authentication required", http.StatusUnauthorized)
				return
			}
			claims, err := VerifySession(cookie.Value)
			if err != nil {
				denyJSON(w, "invalid session", http.StatusUnauthorized)
				return
			}
			var sess models.Session
			if claims.JWTID == "" || db.First(&sess, "jti = ?", claims.JWTID).Error != nil {
				denyJSON(w, "invalid session", http.StatusUnauthorized)
				return
			}
			if sess.RevokedAt != nil || time.Now().After(sess.ExpiresAt) {
				denyJSON(w, "session expired", http.StatusUnauthorized)
				return
			}
			var user models.User
			if err := db.First(&user, "id = ?", sess.UserID).Error; err != nil {
				denyJSON(w, "invalid session", http.StatusUnauthorized)
				return
			}
			if !user.IsActive {
				denyJSON(w, "account is inactive", http.StatusUnauthorized)
				return
			}
			id := Identity{UserID: user.ID, Email: user.Email, Role: user.Role}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireCapability gates a route on the static permission table. It assumes
// SessionAuth already ran.
func RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasPermission(FromContext(r.Context()).Role, capability) {
				denyJSON(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
