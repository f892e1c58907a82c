// README: Rental window resolution: date + time-of-day strings into ordered instants.
package quote

import (
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

type WindowInput struct {
	PickupDate string `json:"pickupDate"`
	PickupTime string `json:"pickupTime"`
	ReturnDate string `json:"returnDate"`
	ReturnTime string `json:"returnTime"`
}

type Window struct {
	Pickup time.Time `json:"pickup"`
	Return time.Time `json:"return"`
}

// ResolveEndpoint combines a YYYY-MM-DD date and an HH:MM time in loc.
// A blank component yields ErrIncomplete; anything else that does not form a
// real calendar date-time yields ErrInvalidDateTime.
func ResolveEndpoint(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, ErrIncomplete
	}
	if len(date) != len(DateLayout) || len(clock) != len(ClockLayout) {
		return time.Time{}, ErrInvalidDateTime
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDateTime
	}
	return t, nil
}

// ResolveWindow resolves both endpoints. Incomplete wins over invalid so a
// half-filled form is never reported as an error. Equal instants are ordered.
func ResolveWindow(in WindowInput, loc *time.Location) (Window, error) {
	pickup, pErr := ResolveEndpoint(in.PickupDate, in.PickupTime, loc)
	ret, rErr := ResolveEndpoint(in.ReturnDate, in.ReturnTime, loc)

	if pErr == ErrIncomplete || rErr == ErrIncomplete {
		return Window{}, ErrIncomplete
	}
	if pErr != nil {
		return Window{}, pErr
	}
	if rErr != nil {
		return Window{}, rErr
	}

	w := Window{Pickup: pickup, Return: ret}
	if ret.Before(pickup) {
		return w, ErrReturnBeforePickup
	}
	return w, nil
}

// Duration is zero for an unordered window.
func (w Window) Duration() time.Duration {
	if d := w.Return.Sub(w.Pickup); d > 0 {
		return d
	}
	return 0
}
