// README: Quote input/output types, result statuses and reason codes.
package quote

import (
	"errors"

	"carrental/internal/modules/catalog"
)

var (
	ErrIncomplete         = errors.New("rental window incomplete")
	ErrInvalidDateTime    = errors.New("invalid date or time")
	ErrReturnBeforePickup = errors.New("return is before pickup")
	ErrInvalidLocation    = errors.New("invalid pickup or return location")
	ErrUnknownVehicle     = errors.New("unknown vehicle")
)

type Status string

const (
	StatusIncomplete Status = "incomplete"
	StatusInvalid    Status = "invalid"
	StatusOK         Status = "ok"
)

type Reason string

const (
	ReasonNone               Reason = ""
	ReasonInvalidDateTime    Reason = "invalid_datetime"
	ReasonReturnBeforePickup Reason = "return_before_pickup"
	ReasonInvalidLocation    Reason = "invalid_location"
	ReasonUnknownVehicle     Reason = "unknown_vehicle"
)

// Err maps a reason back to its sentinel error; ReasonNone maps to nil.
func (r Reason) Err() error {
	switch r {
	case ReasonInvalidDateTime:
		return ErrInvalidDateTime
	case ReasonReturnBeforePickup:
		return ErrReturnBeforePickup
	case ReasonInvalidLocation:
		return ErrInvalidLocation
	case ReasonUnknownVehicle:
		return ErrUnknownVehicle
	}
	return nil
}

type Input struct {
	Vehicle           *catalog.Vehicle
	Window            WindowInput
	SelectedAddonKeys []string
	Location          LocationConfig
}

type Quote struct {
	VehicleID                 string      `json:"vehicleId"`
	PricePerDay               int64       `json:"pricePerDay"`
	Days                      int         `json:"days"`
	DiscountPercent           int         `json:"discountPercent"`
	SubTotal                  int64       `json:"subTotal"`
	DiscountAmount            int64       `json:"discountAmount"`
	VehicleNet                int64       `json:"vehicleNet"`
	AddonsTotal               int64       `json:"addonsTotal"`
	GrandTotal                int64       `json:"grandTotal"`
	RecommendAlternateChannel bool        `json:"recommendAlternateChannel"`
	Addons                    []AddonLine `json:"addons,omitempty"`
}

// AddonKeys lists the priced add-on keys in catalog order.
func (q *Quote) AddonKeys() []string {
	keys := make([]string, len(q.Addons))
	for i, l := range q.Addons {
		keys[i] = l.Key
	}
	return keys
}

// Result is the engine's only output. Quote is set iff Status is ok, so a
// missing quote is never confused with a zero-priced one.
type Result struct {
	Status   Status           `json:"status"`
	Reason   Reason           `json:"reason,omitempty"`
	Quote    *Quote           `json:"quote,omitempty"`
	Window   *Window          `json:"window,omitempty"`
	Location ResolvedLocation `json:"location"`
}

func (r Result) OK() bool {
	return r.Status == StatusOK
}

func (r Result) Err() error {
	switch r.Status {
	case StatusOK:
		return nil
	case StatusIncomplete:
		return ErrIncomplete
	}
	return r.Reason.Err()
}
