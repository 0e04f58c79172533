package daemon

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ginLogger logs every request through logger. Polled endpoints are
// logged at trace level; event streams are logged when they end.
func ginLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// other handler can change c.Path so:
		path := c.Request.URL.Path
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		statusCode := c.Writer.Status()
		dataLength := c.Writer.Size()
		if dataLength < 0 {
			dataLength = 0
		}

		entry := logger.WithFields(logrus.Fields{
			"statusCode": statusCode,
			"latency":    elapsed.Milliseconds(),
			"method":     c.Request.Method,
			"path":       path,
			"dataLength": dataLength,
		})

		if len(c.Errors) > 0 {
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
			return
		}

		switch {
		case statusCode >= http.StatusInternalServerError:
			entry.Error(fmt.Sprintf("%s %s %d", c.Request.Method, path, statusCode))
		case statusCode >= http.StatusBadRequest:
			entry.Warn(fmt.Sprintf("%s %s %d", c.Request.Method, path, statusCode))
		case path == "/events":
			entry.Debugf("event stream closed after %s", elapsed.Round(time.Second))
		default:
			entry.Tracef("%s %s %d (%dms)", c.Request.Method, path, statusCode, elapsed.Milliseconds())
		}
	}
}
