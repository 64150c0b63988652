package response

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const flashCookieName = "admin_flash"

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-shot message shown on the next rendered admin page
type Flash struct {
	Kind    FlashKind
	Message string
}

// SetFlash stores a message for the next request
func SetFlash(c *gin.Context, kind FlashKind, message string) {
	value := base64.RawURLEncoding.EncodeToString([]byte(string(kind) + "|" + message))
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, value, 60, "/admin", "", false, true)
}

// PopFlash reads and clears the pending message, if any
func PopFlash(c *gin.Context) *Flash {
	value, err := c.Cookie(flashCookieName)
	if err != nil || value == "" {
		return nil
	}
	c.SetCookie(flashCookieName, "", -1, "/admin", "", false, true)

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(string(raw), "|")
	if !ok {
		return nil
	}
	switch FlashKind(kind) {
	case FlashSuccess, FlashError:
		return &Flash{Kind: FlashKind(kind), Message: message}
	}
	return nil
}
