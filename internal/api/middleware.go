package api

import (
	"net/http"
	"strings"

	"github.com/concave-dev/orderpace/internal/logging"
	"github.com/gin-gonic/gin"
)

// loggingMiddleware logs each request at a level matching its status. Health
// probes go to DEBUG and metrics scrapes are not logged.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		if param.Path == "/metrics" {
			return ""
		}

		logf := logging.Info
		switch {
		case param.StatusCode >= http.StatusInternalServerError:
			logf = logging.Error
		case param.StatusCode >= http.StatusBadRequest:
			logf = logging.Warn
		case strings.HasSuffix(param.Path, "/health"):
			logf = logging.Debug
		}

		logf("%s \"%s %s\" %d %s %s",
			param.ClientIP,
			param.Method,
			param.Path,
			param.StatusCode,
			param.Latency,
			param.ErrorMessage,
		)
		return ""
	})
}

// corsMiddleware provides CORS headers
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition, Retry-After")
		c.Header("Access-Control-Max-Age", "300")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// limitBody caps the request body of uploads
func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes)
		c.Next()
	}
}
