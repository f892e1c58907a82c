// README: Quote handler; always answers with the engine's Result, never an error status for bad input.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carrental/internal/modules/booking"
	"carrental/internal/modules/catalog"
	"carrental/internal/modules/quote"
)

type QuoteHandler struct {
	engine     *quote.Engine
	catalog    *catalog.Catalog
	booking    *booking.Service
	branchMode bool
}

func NewQuoteHandler(engine *quote.Engine, cat *catalog.Catalog, bookingSvc *booking.Service, branchMode bool) *QuoteHandler {
	return &QuoteHandler{engine: engine, catalog: cat, booking: bookingSvc, branchMode: branchMode}
}

type quoteReq struct {
	CarID    string               `json:"carId"`
	Window   quote.WindowInput    `json:"window"`
	Addons   []string             `json:"addons"`
	Location quote.LocationConfig `json:"location"`
}

type quoteResp struct {
	quote.Result
	ChatURL string `json:"chatUrl,omitempty"`
}

func (h *QuoteHandler) Create(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Location.BranchModeEnabled = h.branchMode

	res := h.engine.ComputeForVehicle(strings.TrimSpace(req.CarID), quote.Input{
		Window:            req.Window,
		SelectedAddonKeys: req.Addons,
		Location:          req.Location,
	})
	resp := quoteResp{Result: res}
	if res.OK() && res.Quote.RecommendAlternateChannel {
		resp.ChatURL = h.chatURL(req, res)
	}
	writeJSON(c, http.StatusOK, resp)
}

func (h *QuoteHandler) chatURL(req quoteReq, res quote.Result) string {
	q := res.Quote
	titles := make([]string, len(q.Addons))
	for i, l := range q.Addons {
		titles[i] = l.Title
	}
	d := booking.ChatDetails{
		CarID:       q.VehicleID,
		PickupPoint: res.Location.Pickup,
		PickupDate:  strings.TrimSpace(req.Window.PickupDate),
		PickupTime:  strings.TrimSpace(req.Window.PickupTime),
		ReturnPoint: res.Location.Return,
		ReturnDate:  strings.TrimSpace(req.Window.ReturnDate),
		ReturnTime:  strings.TrimSpace(req.Window.ReturnTime),
		Days:        q.Days,
		AddonTitles: titles,
		Amount:      q.GrandTotal,
	}
	if v, err := h.catalog.Vehicle(q.VehicleID); err == nil {
		d.CarName = v.Name
	}
	return h.booking.ChatURL(d)
}
