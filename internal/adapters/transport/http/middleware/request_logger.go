package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"
	RefreshHeader   = "refreshtoken"
)

func scrub(h http.Header) http.Header {
	clone := h.Clone()
	for k := range clone {
		lk := strings.ToLower(k)
		if strings.Contains(lk, "authorization") ||
			strings.Contains(lk, "cookie") ||
			lk == RefreshHeader {
			clone[k] = []string{"[redacted]"}
		}
	}
	return clone
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = ksuid.New().String()
		}
		c.Header(RequestIDHeader, reqID)
		l := log.With(zap.String("request_id", reqID))

		reqHeaders, _ := json.Marshal(scrub(c.Request.Header))
		l.Debug("incoming request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("origin", c.GetHeader("Origin")),
			zap.ByteString("hdr", reqHeaders),
		)

		ts := time.Now()
		c.Next()

		latency := time.Since(ts)
		respStatus := c.Writer.Status()

		for _, e := range c.Errors {
			fields := []zap.Field{
				zap.Int("status", respStatus),
				zap.String("message", customErrors.Message(e.Err)),
				zap.String("at", customErrors.Location(e.Err)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
			}
			if e.Meta != nil {
				fields = append(fields, zap.Any("fields", e.Meta))
			}
			if respStatus >= http.StatusInternalServerError {
				l.Error("request failed", fields...)
			} else {
				l.Info("request rejected", fields...)
			}
		}

		l.Info("completed",
			zap.Int("status", respStatus),
			zap.Duration("latency", latency),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
	}
}
