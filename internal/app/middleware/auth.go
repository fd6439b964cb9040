package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"app_backend/internal/api"
	authentity "app_backend/internal/feature/auth/domain/entity"
	"app_backend/internal/feature/users/domain/entity"
	jwtauth "app_backend/internal/platform/jwt"
)

// Context keys for the authenticated identity.
const (
	ContextUserID = "userID"
	ContextUser   = "currentUser"
)

// SessionFinder resolves a session key from the cookie to a session record.
// Goの慣例に従い、インターフェースはプロバイダーではなくコンシューマーが定義します。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*authentity.Session, error)
}

// UserFinder resolves a user ID to the identity record.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// AuthRequired restricts access to authenticated callers. The session cookie
// is checked first; API clients may instead present a bearer token. The
// resolved user is placed in the Gin context under ContextUser/ContextUserID.
func AuthRequired(sessions SessionFinder, users UserFinder, cookieName, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := resolveUserID(c, sessions, cookieName, jwtSecret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "authentication required"})
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "authentication required"})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUser, user)
		c.Next()
	}
}

// resolveUserID extracts the caller's user ID from the session cookie or,
// failing that, from an Authorization bearer token.
func resolveUserID(c *gin.Context, sessions SessionFinder, cookieName, jwtSecret string) (uint, bool) {
	if key, err := c.Cookie(cookieName); err == nil && key != "" {
		sess, err := sessions.FindByID(c.Request.Context(), key)
		if err == nil && sess.IsValid() {
			return sess.UserID, true
		}
	}

	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") && jwtSecret != "" {
		tokenStr := strings.TrimPrefix(auth, "Bearer ")
		if id, err := jwtauth.ParseUserID(tokenStr, jwtSecret); err == nil {
			return id, true
		}
	}

	return 0, false
}

// StaffRequired restricts access to staff users. Must run after AuthRequired.
func StaffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Error: "staff access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user from the Gin context, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	user, ok := v.(*entity.User)
	if !ok {
		return nil
	}
	return user
}
