package middleware

import (
	"net/http"

	"linire-backend/internal/domain"
	"linire-backend/pkg/auth"
	"linire-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

const AdminLoginPath = "/admin/login"

// AdminSession admits requests carrying a valid admin session cookie and
// puts the admin principal into the request context. Everything else is
// redirected to the login page.
func AdminSession(sessions *auth.SessionManager, audit *security.AuditLogger) gin.HandlerFunc {
	if audit == nil {
		audit = security.NopAuditLogger()
	}
	return func(c *gin.Context) {
		token, _ := c.Cookie(auth.SessionCookieName)

		principal, err := sessions.Parse(token)
		if err != nil {
			if token != "" {
				audit.Log(c.Request.Context(), security.AuditEvent{
					Event:     security.EventUnauthorizedAccess,
					IP:        c.ClientIP(),
					UserAgent: c.GetHeader("User-Agent"),
					RequestID: GetRequestID(c),
					Details:   map[string]any{"path": c.Request.URL.Path, "reason": "invalid_session"},
				})
			}
			c.Redirect(http.StatusSeeOther, AdminLoginPath)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(domain.WithAdminPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}
