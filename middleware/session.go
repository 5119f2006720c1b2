package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"nstore-backend/session"
)

// Checker decides whether a protected page may render.
type Checker interface {
	Check(ctx context.Context) session.Decision
}

const loginPath = "/login"

// RequireSession guards admin pages. While the session check is still
// running the checking page is rendered and the browser retries shortly.
func RequireSession(guard Checker, fc *FlashCodec, checking gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch guard.Check(c.Request.Context()) {
		case session.DecisionRender:
			c.Next()

		case session.DecisionChecking:
			c.Header("Cache-Control", "no-store")
			if WantsJSON(c) {
				c.Header("Retry-After", "1")
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"error":      "session check in progress",
					"request_id": GetRequestID(c),
				})
				return
			}
			c.Header("Refresh", "1")
			checking(c)
			c.Abort()

		default:
			if WantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":      "authentication required",
					"request_id": GetRequestID(c),
				})
				return
			}
			fc.RedirectWithFlash(c, loginPath, FlashWarning, "Silakan login untuk mengakses halaman admin.")
			c.Abort()
		}
	}
}
