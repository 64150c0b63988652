package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"linire-backend/internal/delivery/http/response"
	"linire-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorHandler turns the last error added with c.Error into a JSON
// response. Internal details are logged, never sent.
func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				log.Error("Request failed",
					"request_id", GetRequestID(c),
					"path", c.FullPath(),
					"status", appErr.Code,
					"error", appErr.Err,
				)
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		log.Error("Internal Server Error", "request_id", GetRequestID(c), "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
