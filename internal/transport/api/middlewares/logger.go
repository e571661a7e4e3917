package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger logs every request once it is served.
func Logger(l *logrus.Logger) gin.HandlerFunc {
	entry := l.WithFields(logrus.Fields{"component": "api", "module": "router"})
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"uri":     c.Request.RequestURI,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"size":    c.Writer.Size(),
		}
		if userID, ok := c.Get(CurrentUserIDKey); ok {
			fields["userID"] = userID
		}
		log := entry.WithFields(fields)

		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			log = log.WithField("errors", errs.String())
		}
		switch status := c.Writer.Status(); {
		case status >= 500: //nolint:mnd
			log.Error("request served")
		case status >= 400: //nolint:mnd
			log.Warn("request served")
		default:
			log.Info("request served")
		}
	}
}
