package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is the lifetime of a login session and of the cookie carrying it.
const SessionTTL = 7 * 24 * time.Hour

// SignSession mints the cookie value for a session: an HS256 token whose jti
// must match a live sessions row. The cookie alone never authenticates.
func SignSession(userID, jti string) (string, error) {
	key := []byte(os.Getenv("JWT_SECRET"))
	if len(key) == 0 {
		return "", errors.New("JWT_SECRET is empty")
	}
	claims := jwt.MapClaims{
		"sub": userID,
		"jti": jti,
		"exp": time.Now().Add(SessionTTL).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// SessionClaims is what a verified cookie value resolves to.
type SessionClaims struct {
	Subject string
	JWTID   string
}

func VerifySession(tokenStr string) (SessionClaims, error) {
	key := []byte(os.Getenv("JWT_SECRET"))
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return SessionClaims{}, errors.New("invalid token")
	}
	mapc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, errors.New("invalid claims")
	}
	sub, _ := mapc["sub"].(string)
	jti, _ := mapc["jti"].(string)
	return SessionClaims{Subject: sub, JWTID: jti}, nil
}
