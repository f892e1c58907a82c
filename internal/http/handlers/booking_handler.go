// README: Booking handlers for create/list/get/confirm/cancel and the payment summary.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carrental/internal/http/middleware"
	"carrental/internal/modules/booking"
	"carrental/internal/modules/catalog"
	"carrental/internal/modules/quote"
)

type BookingHandler struct {
	booking *booking.Service
	catalog *catalog.Catalog
}

func NewBookingHandler(svc *booking.Service, cat *catalog.Catalog) *BookingHandler {
	return &BookingHandler{booking: svc, catalog: cat}
}

type createBookingReq struct {
	CarID    string               `json:"carId"`
	Name     string               `json:"name"`
	Phone    string               `json:"phone"`
	Window   quote.WindowInput    `json:"window"`
	Location quote.LocationConfig `json:"location"`
	Addons   []string             `json:"addons"`
}

type confirmBookingReq struct {
	Method  string `json:"method"`
	SlipRef string `json:"slipRef"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

type cancelBookingReq struct {
	Reason string `json:"reason"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.booking.Create(c.Request.Context(), booking.CreateCommand{
		SessionID: middleware.GetSessionID(c),
		VehicleID: req.CarID,
		Name:      req.Name,
		Phone:     req.Phone,
		Window:    req.Window,
		Location:  req.Location,
		Addons:    req.Addons,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, res)
}

func (h *BookingHandler) List(c *gin.Context) {
	var status booking.Status
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		s, ok := booking.ParseStatus(raw)
		if !ok {
			writeError(c, http.StatusBadRequest, "unknown status: "+raw)
			return
		}
		status = s
	}
	list, err := h.booking.ListBySession(c.Request.Context(), middleware.GetSessionID(c), status)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *BookingHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidBookingID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	b, err := h.booking.Get(c.Request.Context(), middleware.GetSessionID(c), id)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	id := c.Param("id")
	if !isValidBookingID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	var req confirmBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	b, err := h.booking.Confirm(c.Request.Context(), booking.ConfirmCommand{
		SessionID: middleware.GetSessionID(c),
		BookingID: id,
		Method:    booking.PaymentMethod(strings.TrimSpace(req.Method)),
		SlipRef:   req.SlipRef,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if !isValidBookingID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	// the body is optional
	var req cancelBookingReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	b, err := h.booking.Cancel(c.Request.Context(), booking.CancelCommand{
		SessionID: middleware.GetSessionID(c),
		BookingID: id,
		Reason:    req.Reason,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

// Payment rebuilds the payment step from the handoff query string.
func (h *BookingHandler) Payment(c *gin.Context) {
	handoff := booking.DecodeHandoff(c.Request.URL.Query(), h.catalog.IsAddonKey)
	sum, err := booking.Summarize(handoff, h.catalog)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sum)
}
