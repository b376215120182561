package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/huskybridge/marketplace/internal/app/models/dto"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
)

// RequestLogger logs one line per request
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}

		if userID, ok := c.Get(ContextUserID); ok {
			if id, ok := userID.(int64); ok {
				event = event.Int64("userID", id)
			}
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("clientIP", c.ClientIP()).
			Msg("HTTP request")
	}
}

// ConfirmAction rejects destructive requests that do not carry
// "X-Confirm-Action: true" with 428 Precondition Required.
func ConfirmAction() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.EqualFold(strings.TrimSpace(c.GetHeader(dto.ConfirmActionHeader)), "true") {
			HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrConfirmationRequired,
				"Repeat the request with the "+dto.ConfirmActionHeader+": true header"))
			return
		}
		c.Next()
	}
}
