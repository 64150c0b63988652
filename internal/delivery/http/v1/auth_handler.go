package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"linire-backend/internal/delivery/http/middleware"
	"linire-backend/pkg/auth"
	"linire-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

const (
	msgLoginInvalid     = "Invalid username or password"
	msgLoginBlocked     = "Too many failed login attempts. Please try again later."
	msgLoginUnavailable = "Admin login is currently unavailable"
)

type AuthHandler struct {
	sessions     *auth.SessionManager
	tracker      *security.LoginTracker
	audit        *security.AuditLogger
	log          *slog.Logger
	siteName     string
	secureCookie bool
}

type loginPage struct {
	pageData
	Error    string
	Username string
}

// AuthConfig groups what the login routes need
type AuthConfig struct {
	Sessions     *auth.SessionManager
	Tracker      *security.LoginTracker
	Audit        *security.AuditLogger
	Logger       *slog.Logger
	SiteName     string
	SecureCookie bool
}

// NewAuthHandler registers the admin login and logout routes. limit guards
// the credential check.
func NewAuthHandler(admin *gin.RouterGroup, cfg AuthConfig, limit gin.HandlerFunc) {
	handler := &AuthHandler{
		sessions:     cfg.Sessions,
		tracker:      cfg.Tracker,
		audit:        cfg.Audit,
		log:          cfg.Logger,
		siteName:     cfg.SiteName,
		secureCookie: cfg.SecureCookie,
	}
	if handler.audit == nil {
		handler.audit = security.NopAuditLogger()
	}
	if handler.log == nil {
		handler.log = slog.Default()
	}

	admin.GET("/login", handler.LoginPage)
	admin.POST("/login", limit, handler.Login)
	admin.POST("/logout", handler.Logout)
}

// LoginPage shows the login form, or skips it for a live session
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if token, err := c.Cookie(auth.SessionCookieName); err == nil {
		if _, err := h.sessions.Parse(token); err == nil {
			c.Redirect(http.StatusSeeOther, "/admin")
			return
		}
	}
	h.render(c, http.StatusOK, "", "")
}

// Login checks the admin credentials and starts a session
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	ip := c.ClientIP()
	userAgent := c.GetHeader("User-Agent")
	reqID := middleware.GetRequestID(c)
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	blocked, err := h.tracker.IsBlocked(ctx, ip)
	if err != nil {
		h.log.Error("Login lockout check failed", "request_id", reqID, "error", err)
		h.render(c, http.StatusServiceUnavailable, msgLoginUnavailable, username)
		return
	}
	if blocked {
		h.audit.LogLoginBlocked(ctx, username, ip, userAgent, reqID)
		h.render(c, http.StatusTooManyRequests, msgLoginBlocked, username)
		return
	}

	if err := h.sessions.CheckCredentials(username, password); err != nil {
		if errors.Is(err, auth.ErrLoginDisabled) {
			h.log.Warn("Admin login attempted but no admin account is configured", "request_id", reqID)
			h.render(c, http.StatusServiceUnavailable, msgLoginUnavailable, username)
			return
		}

		h.audit.LogLoginFailed(ctx, username, ip, userAgent, reqID, "invalid_credentials")
		nowBlocked, _, err := h.tracker.RecordFailedAttempt(ctx, username, ip)
		if err != nil {
			h.log.Error("Failed to record login attempt", "request_id", reqID, "error", err)
		}
		if nowBlocked {
			h.render(c, http.StatusTooManyRequests, msgLoginBlocked, username)
			return
		}
		h.render(c, http.StatusUnauthorized, msgLoginInvalid, username)
		return
	}

	if err := h.tracker.ClearAttempts(ctx, ip); err != nil {
		h.log.Warn("Failed to clear login attempts", "request_id", reqID, "error", err)
	}

	token, _, err := h.sessions.Issue(username)
	if err != nil {
		h.log.Error("Failed to issue admin session", "request_id", reqID, "error", err)
		h.render(c, http.StatusServiceUnavailable, msgLoginUnavailable, username)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookieName, token, int(h.sessions.Lifetime().Seconds()), "/admin", "", h.secureCookie, true)

	h.audit.LogLoginSuccess(ctx, username, ip, userAgent, reqID)
	c.Redirect(http.StatusSeeOther, "/admin")
}

// Logout ends the session
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(auth.SessionCookieName); err == nil {
		if principal, err := h.sessions.Parse(token); err == nil {
			h.audit.Log(c.Request.Context(), security.AuditEvent{
				Event:        security.EventLogout,
				SubjectType:  "username",
				SubjectValue: security.MaskUsername(principal.Username),
				IP:           c.ClientIP(),
				UserAgent:    c.GetHeader("User-Agent"),
				RequestID:    middleware.GetRequestID(c),
			})
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookieName, "", -1, "/admin", "", h.secureCookie, true)
	c.Redirect(http.StatusSeeOther, middleware.AdminLoginPath)
}

func (h *AuthHandler) render(c *gin.Context, code int, errMsg, username string) {
	c.HTML(code, "login.html", loginPage{
		pageData: pageData{
			SiteName:   h.siteName,
			Title:      "Admin Login",
			CSRFToken:  middleware.CSRFToken(c),
			Filter:     "all",
			ReturnPage: 1,
		},
		Error:    errMsg,
		Username: username,
	})
}
