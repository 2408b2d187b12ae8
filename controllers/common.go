package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cueside/club-app/services"
	"github.com/cueside/club-app/utils"
)

// respondServiceError maps core service errors onto HTTP statuses so the
// terminal can tell "fix your input" from "retry" from "gone".
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoSession),
		errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrMemberNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrSessionExists),
		errors.Is(err, services.ErrSessionConflict):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrSessionNotStopped),
		errors.Is(err, services.ErrNoPaymentMethod),
		errors.Is(err, services.ErrSplitMismatch),
		errors.Is(err, services.ErrNoMemberAttached),
		errors.Is(err, services.ErrInsufficientHours),
		errors.Is(err, services.ErrMalformedItem):
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
