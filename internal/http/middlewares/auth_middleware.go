package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vedang-raul/taskhub/internal/auth"
	"github.com/vedang-raul/taskhub/internal/domain/user"
	"github.com/vedang-raul/taskhub/internal/observability"
)

// UserResolver is kept small so tests can fake it easily.
type UserResolver interface {
	Resolve(ctx context.Context, raw string) (user.User, error)
}

type AuthMiddleware struct {
	guard   UserResolver
	metrics *observability.Prom
}

func NewAuthMiddleware(guard UserResolver, metrics *observability.Prom) *AuthMiddleware {
	return &AuthMiddleware{guard: guard, metrics: metrics}
}

// RequireAuth resolves the bearer token to a live user record and stashes the
// identity on the context. Every rejection uses the same status, code and
// message: a caller must not be able to tell a bad signature from an expired
// token from a deleted subject.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			m.metrics.AuthFailure("header")
			abortUnauthorized(c)
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			m.metrics.AuthFailure("header")
			abortUnauthorized(c)
			return
		}

		u, err := m.guard.Resolve(c.Request.Context(), raw)
		if err != nil {
			stage := "token"
			if errors.Is(err, auth.ErrUnknownSubject) {
				stage = "subject"
			}
			m.metrics.AuthFailure(stage)
			abortUnauthorized(c)
			return
		}

		c.Set(ctxUserKey, u)
		c.Set(ctxUserIDKey, u.ID)
		c.Set(ctxEmailKey, u.Email)
		c.Set(ctxRoleKey, u.Role)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": "Could not validate credentials",
		},
	})
}

// Helpers so handlers don't need to know the magic keys.

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func RoleFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
