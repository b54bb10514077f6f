// SPDX-License-Identifier: MIT
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/thatcatcamp/smartsvg/internal/artifacts"
	"github.com/thatcatcamp/smartsvg/internal/coordinator"
	"github.com/thatcatcamp/smartsvg/internal/manipulation"
	"github.com/thatcatcamp/smartsvg/internal/palette"
	"github.com/thatcatcamp/smartsvg/internal/project"
	"github.com/thatcatcamp/smartsvg/internal/propagate"
	"github.com/thatcatcamp/smartsvg/internal/uploads"
	"gorm.io/gorm"
)

// statusFor maps an error to its HTTP status
func statusFor(err error) int {
	var (
		parseErr      *palette.ParseError
		shapeErr      *propagate.ShapeMismatchError
		validationErr *project.ValidationError
		serviceErr    *manipulation.ServiceError
	)

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, artifacts.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, coordinator.ErrStale), errors.Is(err, coordinator.ErrNotLoaded):
		return http.StatusConflict
	case errors.Is(err, uploads.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, uploads.ErrNotSVG):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, manipulation.ErrNotSupported):
		return http.StatusNotImplemented
	case errors.As(err, &parseErr),
		errors.As(err, &shapeErr),
		errors.As(err, &validationErr),
		errors.Is(err, coordinator.ErrUnknownColor),
		errors.Is(err, coordinator.ErrInvalidColor),
		errors.Is(err, coordinator.ErrUnknownDevice),
		errors.Is(err, coordinator.ErrUnknownTheme):
		return http.StatusBadRequest
	case errors.As(err, &serviceErr):
		if rejectedRequest(serviceErr.Status) {
			return serviceErr.Status
		}
		return http.StatusBadGateway
	case errors.Is(err, manipulation.ErrTokenExpired):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// rejectedRequest reports whether the service refused the request itself.
// 401, 403 and 404 concern our credentials and configuration, not the client.
func rejectedRequest(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return false
	}
	return status >= 400 && status < 500
}

// respondError writes err as a notification
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	n := coordinator.NotificationFor(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
		n.Message = "Internal server error"
	}
	c.JSON(status, gin.H{"error": n.Message, "notification": n})
}

// badRequest rejects a malformed request body or parameter
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
