package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/petmarket-trust/internal/interface/http/response"
	"github.com/ignatzorin/petmarket-trust/internal/logger"
)

// ErrorHandler отвечает на ошибки, добавленные через c.Error, если ответ ещё не отправлен.
// AppError отдаётся с его кодом, остальное маскируется под 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		logger.Get().WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Warn("Request error")

		response.Error(c, err.Err)
	}
}
