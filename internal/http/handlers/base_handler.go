// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental/internal/modules/booking"
	"carrental/internal/modules/catalog"
)

type errorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// isValidBookingID accepts the BK-XXXXXXXX shape the booking service generates.
func isValidBookingID(v string) bool {
	if len(v) < 4 || len(v) > 32 || v[:3] != "BK-" {
		return false
	}
	for _, c := range v[3:] {
		if (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeBookingError(c *gin.Context, err error) {
	var qe *booking.QuoteError
	switch {
	case errors.As(err, &qe):
		writeJSON(c, http.StatusUnprocessableEntity, errorResponse{
			Error:  err.Error(),
			Status: string(qe.Result.Status),
			Reason: string(qe.Result.Reason),
		})
	case errors.Is(err, booking.ErrZeroDay):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, booking.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrInvalidState), errors.Is(err, booking.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
