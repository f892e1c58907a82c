package booking

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knownAddon(key string) bool {
	switch key {
	case "carSeat", "mountainDrive", "returnOtherBranch":
		return true
	}
	return false
}

func TestHandoffRoundTrip(t *testing.T) {
	h := Handoff{
		BookingID:   "BK-1A2B3C4D",
		CarID:       "c1",
		Days:        3,
		PickupDate:  "2030-03-01",
		ReturnDate:  "2030-03-04",
		PickupTime:  "10:00",
		ReturnTime:  "10:00",
		PickupPoint: "สาขาสุพรรณบุรี (ในเมือง)",
		ReturnPoint: "ท่ารถ & ตลาด",
		Amount:      4176,
		Addons:      []string{"returnOtherBranch"},
	}

	u, err := url.Parse(h.URL("/payment"))
	require.NoError(t, err)
	assert.Equal(t, "/payment", u.Path)
	assert.Equal(t, h, DecodeHandoff(u.Query(), knownAddon))
}

func TestHandoffNilAddonsEncodeAsEmptyArray(t *testing.T) {
	v := Handoff{CarID: "c1"}.Values()
	assert.Equal(t, "[]", v.Get("addons"))
	assert.Equal(t, []string{}, DecodeHandoff(v, knownAddon).Addons)
}

func TestDecodeHandoffMalformed(t *testing.T) {
	v := url.Values{}
	v.Set("carId", "  c2 ")
	v.Set("days", "-4")
	v.Set("amount", "12abc")
	v.Set("pickupDate", "2026-13-01")
	v.Set("returnDate", "01/03/2026")
	v.Set("pickupTime", "25:00")
	v.Set("returnTime", "9:5")
	v.Set("addons", `{"carSeat":true}`)

	h := DecodeHandoff(v, knownAddon)
	assert.Equal(t, "c2", h.CarID)
	assert.Zero(t, h.Days)
	assert.Zero(t, h.Amount)
	assert.Empty(t, h.PickupDate)
	assert.Empty(t, h.ReturnDate)
	assert.Empty(t, h.PickupTime)
	assert.Empty(t, h.ReturnTime)
	assert.Equal(t, []string{}, h.Addons)
}

func TestDecodeHandoffBoundsDays(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"3650", MaxHandoffDays},
		{"3651", 0},
		{"9000000000000000000", 0},
		{"99999999999999999999", 0},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			v := url.Values{}
			v.Set("days", tc.raw)
			assert.Equal(t, tc.want, DecodeHandoff(v, knownAddon).Days)
		})
	}
}

func TestParseAddons(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"not json", "carSeat", []string{}},
		{"object", `{"a":1}`, []string{}},
		{"string", `"carSeat"`, []string{}},
		{"mixed element types", `["carSeat", 3]`, []string{}},
		{"unknown keys dropped", `["carSeat","spaceship"]`, []string{"carSeat"}},
		{"duplicates collapse", `["carSeat","mountainDrive","carSeat"]`, []string{"carSeat", "mountainDrive"}},
		{"empty array", `[]`, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseAddons(tc.raw, knownAddon))
		})
	}
}

func TestParseAddonsWithoutCatalogKeepsStrings(t *testing.T) {
	assert.Equal(t, []string{"anything", "else"}, ParseAddons(`["anything","else","anything"]`, nil))
}

func TestBookingHandoff(t *testing.T) {
	svc, _ := newTestService(t, Options{BranchMode: true})
	res, err := svc.Create(t.Context(), validCreate("s1"))
	require.NoError(t, err)

	h := res.Booking.Handoff()
	assert.Equal(t, res.Booking.ID, h.BookingID)
	assert.Equal(t, "2030-03-01", h.PickupDate)
	assert.Equal(t, "สาขาสุพรรณบุรี (ในเมือง)", h.PickupPoint)
	assert.True(t, strings.Contains(res.PaymentURL, "amount=4176"))
}
