package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"contactdesk/internal/common"
	"contactdesk/internal/domain/admin"

	"github.com/gin-gonic/gin"
)

// SessionAuthenticator resolves a session cookie value to the signed-in user.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*admin.User, error)
}

// RequireSession returns middleware that rejects requests without a valid session cookie
// and stores the signed-in user under admin.ContextUserKey.
func RequireSession(auth SessionAuthenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cookieName)
		if err != nil || sessionID == "" {
			common.Error(c, http.StatusUnauthorized, admin.MsgNotSignedIn)
			c.Abort()
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), sessionID)
		if err != nil {
			var unauthorized *common.UnauthorizedError
			if !errors.As(err, &unauthorized) {
				slog.Error("session lookup failed", "error", err)
			}
			common.HandleError(c, err)
			c.Abort()
			return
		}

		c.Set(admin.ContextUserKey, user)
		c.Next()
	}
}
