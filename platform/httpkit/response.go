// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"

	"pricing_gateway/platform/apperr"
	"pricing_gateway/platform/logger"

	"github.com/gin-gonic/gin"
)

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// NoContent sends a bare 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// HandleError maps domain errors to bare HTTP status responses. Error
// details never reach the client: server-side failures are logged with
// their cause instead. Untyped errors are treated as internal failures.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, log *logger.Logger, err error) bool {
	if err == nil {
		return false
	}

	status := http.StatusInternalServerError
	serverSide := true
	if domainErr, ok := apperr.As(err); ok {
		status = domainErr.HTTPStatus()
		serverSide = domainErr.ServerSide()
	}

	if serverSide && log != nil {
		log.WithContext(c.Request.Context()).
			HTTPError(c.Request.Method, c.Request.URL.Path, status, err, c.ClientIP())
	}

	c.AbortWithStatus(status)
	return true
}
