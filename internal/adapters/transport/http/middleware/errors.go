package middleware

import (
	"net/http"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
)

// ErrorBody is the only error shape clients ever see. Diagnostics stay in
// the server log.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
}

func StatusOf(err error) int {
	switch {
	case customErrors.IsInvalidArgument(err):
		return http.StatusBadRequest
	case customErrors.IsUnauthorized(err):
		return http.StatusUnauthorized
	case customErrors.IsForbidden(err):
		return http.StatusForbidden
	case customErrors.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Fail records err for the request logger and aborts with the generic body.
// meta, when given, is logged alongside (e.g. failing validation fields).
func Fail(c *gin.Context, err error, meta ...any) {
	ge := c.Error(err)
	if len(meta) > 0 {
		ge.SetMeta(meta[0])
	}
	status := StatusOf(err)
	c.AbortWithStatusJSON(status, ErrorBody{
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Path:       c.Request.URL.RequestURI(),
	})
}
