package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio-contact/internal/delivery/http/response"
	"portfolio-contact/pkg/apperror"
)

func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			var key interface{}
			if appErr.Key != "" {
				key = appErr.Key
			}
			response.Error(c, appErr.Code, appErr.Message, key)
			return
		}

		// Never expose internal error details to clients
		logger.Error("Internal server error", zap.Error(err), zap.String("path", c.FullPath()))
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
