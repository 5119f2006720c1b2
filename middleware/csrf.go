package middleware

import (
	"context"
	"log/slog"
	"net/http"

	csrf "filippo.io/csrf/gorilla"
	"github.com/gin-gonic/gin"
)

type csrfPassKey struct{}

type csrfPass struct {
	c      *gin.Context
	passed bool
}

// CSRF rejects cross-origin state-changing requests using Fetch metadata
// headers. trustedOrigins are host[:port] values.
func CSRF(authKey []byte, trustedOrigins []string, l *slog.Logger) gin.HandlerFunc {
	opts := []csrf.Option{
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reason := "unknown"
			if err := csrf.FailureReason(r); err != nil {
				reason = err.Error()
			}
			l.Warn("csrf validation failed",
				"reason", reason,
				"method", r.Method,
				"path", r.URL.Path,
				"origin", r.Header.Get("Origin"),
				"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
			)
			http.Error(w, "Forbidden - permintaan lintas situs ditolak", http.StatusForbidden)
		})),
	}
	if len(trustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(trustedOrigins))
	}

	protect := csrf.Protect(authKey, opts...)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		p := r.Context().Value(csrfPassKey{}).(*csrfPass)
		p.passed = true
		p.c.Request = r
		p.c.Next()
	}))

	return func(c *gin.Context) {
		p := &csrfPass{c: c}
		protect.ServeHTTP(c.Writer, c.Request.WithContext(context.WithValue(c.Request.Context(), csrfPassKey{}, p)))
		if !p.passed {
			c.Abort()
		}
	}
}
