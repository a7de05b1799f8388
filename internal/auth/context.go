package auth

import (
	"context"

	"github.com/gin-gonic/gin"
)

type ctxKey struct{}

type UserContext struct {
	UserID string
	Role   string
}

// Middleware copies the identity headers set by the upstream gateway into the
// request context. Authentication itself happens before requests reach us.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		uc := UserContext{
			UserID: c.GetHeader("X-User-ID"),
			Role:   c.GetHeader("X-User-Role"),
		}
		ctx := context.WithValue(c.Request.Context(), ctxKey{}, uc)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func WithUser(ctx context.Context, uc UserContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, uc)
}

// GetUserID returns the acting user, or "system" for background work.
func GetUserID(ctx context.Context) string {
	if uc, ok := ctx.Value(ctxKey{}).(UserContext); ok && uc.UserID != "" {
		return uc.UserID
	}
	return "system"
}
