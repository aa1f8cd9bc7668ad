package ginserver

import (
	"errors"
	"log/slog"

	gin "github.com/gin-gonic/gin"
	"net/http"

	"staybook/internal/app/authz"
	"staybook/internal/app/bookingsvc"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/listing"
	"staybook/internal/domain/notification"
	"staybook/internal/domain/user"
)

// envelope is the JSON shape every response uses.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Message: message})
}

// respondWithError maps domain and service errors onto the status taxonomy.
// Unexpected errors are logged and reported as a generic internal error so
// no internal detail reaches the caller.
func respondWithError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, listing.ErrNotFound),
		errors.Is(err, notification.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, authz.ErrForbidden),
		errors.Is(err, notification.ErrNotRecipient):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, booking.ErrDatesConflict):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, bookingsvc.ErrValidation),
		errors.Is(err, booking.ErrInvalidRange),
		errors.Is(err, booking.ErrInvalidGuests),
		errors.Is(err, booking.ErrGuestsExceedLimit),
		errors.Is(err, booking.ErrInvalidPrice),
		errors.Is(err, booking.ErrGuestNameRequired),
		errors.Is(err, booking.ErrGuestEmail),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, listing.ErrNotActive):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		if logger != nil {
			logger.Error("request failed", "error", err, "path", c.FullPath())
		}
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
