package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"replacementGame/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	UserIDCookie = "user_id"
	UserIDKey    = "user_id"

	userIDPrefix = "user_"
	userIDMaxAge = 365 * 24 * time.Hour
)

type userIDCtxKey struct{}

type IdentityConfig struct {
	// Generate mints an id for a browser that has none. Defaults to NewUserID.
	Generate func() string
	Secure   bool
}

// NewUserID returns a fresh anonymous player id.
func NewUserID() string {
	return userIDPrefix + uuid.NewString()
}

// Identity gives every browser a stable anonymous user id. The id lives in
// a long-lived cookie and is created on first contact. Handlers read it
// with UserID and pass it on explicitly.
func Identity(cfg IdentityConfig) echo.MiddlewareFunc {
	if cfg.Generate == nil {
		cfg.Generate = NewUserID
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := ""
			if cookie, err := c.Cookie(UserIDCookie); err == nil && validUserID(cookie.Value) {
				userID = cookie.Value
			}

			if userID == "" {
				userID = cfg.Generate()
				c.SetCookie(&http.Cookie{
					Name:     UserIDCookie,
					Value:    userID,
					Path:     "/",
					MaxAge:   int(userIDMaxAge / time.Second),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
				logger.Debug("Issued user id", "user_id", userID)
			}

			c.Set(UserIDKey, userID)
			req := c.Request()
			c.SetRequest(req.WithContext(context.WithValue(req.Context(), userIDCtxKey{}, userID)))

			return next(c)
		}
	}
}

// UserID returns the id set by Identity, or "" outside of it.
func UserID(c echo.Context) string {
	id, _ := c.Get(UserIDKey).(string)
	return id
}

func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDCtxKey{}).(string)
	return id
}

func validUserID(v string) bool {
	return strings.HasPrefix(v, userIDPrefix) && len(v) > len(userIDPrefix) && len(v) <= 128
}
