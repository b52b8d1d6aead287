package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/greenhabit/session"
	"github.com/cppla/greenhabit/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextSessionTokenKey stores the raw session token from the cookie.
	ContextSessionTokenKey = "session_token"
)

// SessionLoader resolves the session cookie, if any, and records the user in the context.
// It never rejects a request; AuthRequired does that for protected routes.
func SessionLoader(sessions *session.Manager, cookieName string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(cookieName)
		if err != nil || token == "" {
			ctx.Next()
			return
		}
		ctx.Set(ContextSessionTokenKey, token)
		if userID, ok := sessions.Resolve(ctx.Request.Context(), token); ok {
			ctx.Set(ContextUserIDKey, userID)
		}
		ctx.Next()
	}
}

// AuthRequired rejects requests without a valid session before any handler runs.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := UserID(ctx); !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "Not logged in")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// UserID returns the authenticated user recorded by SessionLoader.
func UserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// SessionToken returns the raw session cookie value seen by SessionLoader.
func SessionToken(ctx *gin.Context) string {
	return ctx.GetString(ContextSessionTokenKey)
}
