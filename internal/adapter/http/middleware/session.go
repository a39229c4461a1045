package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	. "todoclient/internal/adapter/http/helper"
	"todoclient/internal/core/domain"
)

const (
	SessionCookie = "session"
	UserIDKey     = "x-user-id"
)

var ErrInvalidSession = errors.New("invalid session")

// Sessions issues and verifies the signed session cookie shared by the auth
// and todo services.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	if ttl <= 0 {
		ttl = 3 * time.Hour
	}

	return &Sessions{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
	}
}

func (s *Sessions) CreateToken(userID domain.ID) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(s.ttl).Unix(),
	})

	return token.SignedString(s.secret)
}

func (s *Sessions) VerifyToken(tokenString string) (domain.ID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if !token.Valid {
		return "", ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidSession
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidSession
	}

	return domain.ID(userID), nil
}

// Issue sets the session cookie for userID.
func (s *Sessions) Issue(c *gin.Context, userID domain.ID) error {
	token, err := s.CreateToken(userID)
	if err != nil {
		return err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(s.ttl.Seconds()), "/", "", s.secure, true)

	return nil
}

func (s *Sessions) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", s.secure, true)
}

// Current returns the user id of a valid session cookie.
func (s *Sessions) Current(c *gin.Context) (domain.ID, bool) {
	token, err := c.Cookie(SessionCookie)
	if err != nil || token == "" {
		return "", false
	}

	userID, err := s.VerifyToken(token)
	if err != nil {
		return "", false
	}

	return userID, true
}

// RequireSession rejects requests without a valid session and stores the
// user id under UserIDKey.
func (s *Sessions) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := s.Current(c)
		if !ok {
			SendUnauthorizedError(c, "Not authenticated")
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func CurrentUserID(c *gin.Context) domain.ID {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(domain.ID); ok {
			return id
		}
	}

	return ""
}
