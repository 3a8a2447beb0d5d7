package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"taskmanager/internal/domain"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Classify maps an error to the status and message sent to the client.
// Untyped errors become 500.
func Classify(err error) (int, string) {
	if errors.Is(err, service.ErrTokenExpired) {
		return http.StatusUnauthorized, domain.MsgTokenExpired
	}
	if he, ok := domain.AsHTTPError(err); ok {
		return he.Status, he.Message
	}
	return http.StatusInternalServerError, domain.MsgInternal
}

// ErrorHandler is the single place that writes error bodies. Handlers and
// middleware record errors with c.Error and abort.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, msg := Classify(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
				zap.Stack("stack"),
			)
		} else {
			log.Debug("request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", status),
				zap.String("error", msg),
			)
		}

		c.AbortWithStatusJSON(status, gin.H{"Error": msg})
	}
}

// Recovery turns a panic into a 500 with the usual error body.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.String("path", c.Request.URL.Path),
			zap.Error(fmt.Errorf("%v", recovered)),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"Error": domain.MsgInternal})
	})
}
