// README: Checkout handoff payload carried in the payment page query string.
package booking

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

const (
	dateTag  = "datetime=2006-01-02"
	clockTag = "datetime=15:04"

	// MaxHandoffDays bounds the rental length a handoff may claim (ten years).
	MaxHandoffDays = 3650
)

// Handoff is untrusted once it has travelled through a URL; use DecodeHandoff to read it back.
type Handoff struct {
	BookingID   string   `json:"bookingId"`
	CarID       string   `json:"carId"`
	Days        int      `json:"days"`
	PickupDate  string   `json:"pickupDate"`
	ReturnDate  string   `json:"returnDate"`
	PickupTime  string   `json:"pickupTime"`
	ReturnTime  string   `json:"returnTime"`
	PickupPoint string   `json:"pickupPoint"`
	ReturnPoint string   `json:"returnPoint"`
	Amount      int64    `json:"amount"`
	Addons      []string `json:"addons"`
}

func (h Handoff) Values() url.Values {
	addons := h.Addons
	if addons == nil {
		addons = []string{}
	}
	raw, _ := json.Marshal(addons)

	v := url.Values{}
	v.Set("bookingId", h.BookingID)
	v.Set("carId", h.CarID)
	v.Set("days", strconv.Itoa(h.Days))
	v.Set("pickupDate", h.PickupDate)
	v.Set("returnDate", h.ReturnDate)
	v.Set("pickupTime", h.PickupTime)
	v.Set("returnTime", h.ReturnTime)
	v.Set("pickupPoint", h.PickupPoint)
	v.Set("returnPoint", h.ReturnPoint)
	v.Set("amount", strconv.FormatInt(h.Amount, 10))
	v.Set("addons", string(raw))
	return v
}

// URL appends the encoded payload to path, e.g. "/payment?bookingId=...".
func (h Handoff) URL(path string) string {
	return path + "?" + h.Values().Encode()
}

// DecodeHandoff never fails: unparseable or negative numbers become 0, as do
// days beyond MaxHandoffDays. Malformed dates and times become blank, and
// add-ons go through ParseAddons.
func DecodeHandoff(v url.Values, isKnown func(string) bool) Handoff {
	h := Handoff{
		BookingID:   strings.TrimSpace(v.Get("bookingId")),
		CarID:       strings.TrimSpace(v.Get("carId")),
		Days:        boundedDays(v.Get("days")),
		PickupDate:  keepIf(v.Get("pickupDate"), dateTag),
		ReturnDate:  keepIf(v.Get("returnDate"), dateTag),
		PickupTime:  keepIf(v.Get("pickupTime"), clockTag),
		ReturnTime:  keepIf(v.Get("returnTime"), clockTag),
		PickupPoint: strings.TrimSpace(v.Get("pickupPoint")),
		ReturnPoint: strings.TrimSpace(v.Get("returnPoint")),
		Amount:      nonNegative(v.Get("amount")),
		Addons:      ParseAddons(v.Get("addons"), isKnown),
	}
	return h
}

// ParseAddons accepts only a JSON array of strings. Any other shape, including
// an array holding a non-string, yields an empty set. Unknown keys are dropped
// and duplicates collapse.
func ParseAddons(raw string, isKnown func(string) bool) []string {
	out := []string{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out
	}
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return out
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		key, ok := it.(string)
		if !ok {
			return []string{}
		}
		if isKnown != nil && !isKnown(key) {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func nonNegative(raw string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func boundedDays(raw string) int {
	n := nonNegative(raw)
	if n > MaxHandoffDays {
		return 0
	}
	return int(n)
}

func keepIf(raw, tag string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !validVar(raw, tag) {
		return ""
	}
	return raw
}
