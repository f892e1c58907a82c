// README: End-to-end API tests through the gin router with in-memory stores.
package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"carrental/internal/http/middleware"
	"carrental/internal/modules/booking"
	"carrental/internal/modules/catalog"
	"carrental/internal/modules/quote"
)

func buildTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fx, err := catalog.DefaultFixture()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	cat, err := catalog.New(fx)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	engine, err := quote.NewEngine(cat, quote.DefaultConfig())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	svc := booking.NewService(booking.NewMemoryStore(time.Hour), engine, cat, booking.Options{
		AllowZeroDay:   true,
		BranchMode:     true,
		ChatChannelURL: "https://chat.example/msg",
	}, nil)

	return NewRouter(RouterDeps{
		Catalog:       cat,
		Quote:         engine,
		Booking:       svc,
		BranchMode:    true,
		SessionMaxAge: 3600,
	})
}

func doRequest(r http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func threeDayBooking() map[string]any {
	return map[string]any{
		"carId": "c1",
		"name":  "Somchai",
		"phone": "0812345678",
		"window": map[string]string{
			"pickupDate": "2030-03-01", "pickupTime": "10:00",
			"returnDate": "2030-03-04", "returnTime": "10:00",
		},
		"addons": []string{"returnOtherBranch"},
	}
}

func TestHealth(t *testing.T) {
	r := buildTestRouter(t)
	w := doRequest(r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("health = %d %q", w.Code, w.Body.String())
	}
}

func TestListVehicles(t *testing.T) {
	r := buildTestRouter(t)
	type listResp struct {
		Vehicles []catalog.Vehicle `json:"vehicles"`
		Count    int               `json:"count"`
	}

	cases := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"default price ascending", "", []string{"c1", "c2", "c4", "c5", "c6", "c3"}},
		{"grade descending", "?sort=grade_desc", []string{"c2", "c1", "c5", "c4", "c3", "c6"}},
		{"type filter", "?type=SUV", []string{"c3"}},
		{"all types", "?type=All&sort=price_desc", []string{"c3", "c6", "c5", "c4", "c2", "c1"}},
		{"name search", "?q=I5", []string{"c4", "c5"}},
		{"no match", "?q=tesla", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, "/api/vehicles"+tc.query, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			resp := decode[listResp](t, w)
			ids := make([]string, len(resp.Vehicles))
			for i, v := range resp.Vehicles {
				ids[i] = v.ID
			}
			if strings.Join(ids, ",") != strings.Join(tc.wantIDs, ",") || resp.Count != len(tc.wantIDs) {
				t.Errorf("ids = %v, want %v", ids, tc.wantIDs)
			}
		})
	}

	for _, q := range []string{"?sort=cheapest", "?type=Truck"} {
		if w := doRequest(r, http.MethodGet, "/api/vehicles"+q, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", q, w.Code)
		}
	}
}

func TestCatalogLookups(t *testing.T) {
	r := buildTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/vehicles/c4", nil)
	if w.Code != http.StatusOK || decode[catalog.Vehicle](t, w).Name != "BMW i5 eDrive40 M Sport" {
		t.Errorf("vehicle c4 = %d %s", w.Code, w.Body.String())
	}
	if w := doRequest(r, http.MethodGet, "/api/vehicles/c99", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown vehicle status = %d, want 404", w.Code)
	}

	w = doRequest(r, http.MethodGet, "/api/addons", nil)
	addons := decode[struct {
		Addons []catalog.AddonDefinition `json:"addons"`
	}](t, w)
	if len(addons.Addons) != 3 || addons.Addons[0].Key != "carSeat" {
		t.Errorf("addons = %+v", addons.Addons)
	}

	w = doRequest(r, http.MethodGet, "/api/locations", nil)
	loc := decode[struct {
		BranchModeEnabled bool     `json:"branchModeEnabled"`
		Branches          []string `json:"branches"`
		OtherOption       string   `json:"otherOption"`
	}](t, w)
	if !loc.BranchModeEnabled || len(loc.Branches) != 4 || loc.OtherOption != quote.OtherBranch {
		t.Errorf("locations = %+v", loc)
	}
}

type quoteResult struct {
	Status  quote.Status `json:"status"`
	Reason  quote.Reason `json:"reason"`
	Quote   *quote.Quote `json:"quote"`
	ChatURL string       `json:"chatUrl"`
}

func TestQuotes(t *testing.T) {
	r := buildTestRouter(t)

	w := doRequest(r, http.MethodPost, "/api/quotes", threeDayBooking())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	res := decode[quoteResult](t, w)
	if res.Status != quote.StatusOK || res.Quote == nil || res.Quote.GrandTotal != 4176 || res.ChatURL != "" {
		t.Fatalf("quote = %+v", res)
	}

	long := threeDayBooking()
	long["window"].(map[string]string)["returnDate"] = "2030-03-15"
	res = decode[quoteResult](t, doRequest(r, http.MethodPost, "/api/quotes", long))
	if !res.Quote.RecommendAlternateChannel || !strings.HasPrefix(res.ChatURL, "https://chat.example/msg?") {
		t.Errorf("high value quote = %+v", res)
	}

	incomplete := threeDayBooking()
	delete(incomplete, "window")
	res = decode[quoteResult](t, doRequest(r, http.MethodPost, "/api/quotes", incomplete))
	if res.Status != quote.StatusIncomplete || res.Quote != nil {
		t.Errorf("incomplete quote = %+v", res)
	}

	reversed := threeDayBooking()
	reversed["window"].(map[string]string)["returnDate"] = "2030-02-01"
	res = decode[quoteResult](t, doRequest(r, http.MethodPost, "/api/quotes", reversed))
	if res.Status != quote.StatusInvalid || res.Reason != quote.ReasonReturnBeforePickup {
		t.Errorf("reversed quote = %+v", res)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader("{"))
	bad := httptest.NewRecorder()
	r.ServeHTTP(bad, req)
	if bad.Code != http.StatusBadRequest {
		t.Errorf("malformed json status = %d, want 400", bad.Code)
	}
}

func TestBookingLifecycle(t *testing.T) {
	r := buildTestRouter(t)

	w := doRequest(r, http.MethodPost, "/api/bookings", threeDayBooking())
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", w.Code, w.Body.String())
	}
	sid := sessionCookie(t, w)
	created := decode[booking.CreateResult](t, w)
	id := created.Booking.ID
	if created.Booking.Status != booking.StatusPending || created.Handoff.Amount != 4176 {
		t.Fatalf("created = %+v", created)
	}

	list := decode[struct {
		Bookings []booking.Booking `json:"bookings"`
	}](t, doRequest(r, http.MethodGet, "/api/bookings", nil, sid))
	if len(list.Bookings) != 1 || list.Bookings[0].ID != id {
		t.Fatalf("session list = %+v", list)
	}

	// a fresh session sees nothing and cannot reach the booking
	other := doRequest(r, http.MethodGet, "/api/bookings", nil)
	if got := decode[struct {
		Bookings []booking.Booking `json:"bookings"`
	}](t, other); len(got.Bookings) != 0 {
		t.Errorf("other session list = %+v", got)
	}
	if w := doRequest(r, http.MethodGet, "/api/bookings/"+id, nil); w.Code != http.StatusNotFound {
		t.Errorf("other session get status = %d, want 404", w.Code)
	}

	confirm := map[string]string{
		"method": "promptpay", "name": "Somchai", "email": "s@example.com", "phone": "0812345678",
	}
	w = doRequest(r, http.MethodPost, "/api/bookings/"+id+"/confirm", confirm, sid)
	if w.Code != http.StatusOK || decode[booking.Booking](t, w).Status != booking.StatusConfirmed {
		t.Fatalf("confirm = %d %s", w.Code, w.Body.String())
	}
	if w := doRequest(r, http.MethodPost, "/api/bookings/"+id+"/confirm", confirm, sid); w.Code != http.StatusConflict {
		t.Errorf("double confirm status = %d, want 409", w.Code)
	}

	w = doRequest(r, http.MethodGet, "/api/bookings?status=confirmed", nil, sid)
	if got := decode[struct {
		Bookings []booking.Booking `json:"bookings"`
	}](t, w); len(got.Bookings) != 1 {
		t.Errorf("confirmed filter = %+v", got)
	}
	if w := doRequest(r, http.MethodGet, "/api/bookings?status=lost", nil, sid); w.Code != http.StatusBadRequest {
		t.Errorf("unknown status filter = %d, want 400", w.Code)
	}

	w = doRequest(r, http.MethodPost, "/api/bookings/"+id+"/cancel", nil, sid)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel = %d %s", w.Code, w.Body.String())
	}
	if b := decode[booking.Booking](t, w); b.Status != booking.StatusCancelled || b.CancelReason != "user_cancel" {
		t.Errorf("cancelled = %+v", b)
	}

	w = doRequest(r, http.MethodGet, "/api/bookings/"+id, nil, sid)
	if w.Code != http.StatusOK || decode[booking.Booking](t, w).Status != booking.StatusCancelled {
		t.Errorf("get after cancel = %d %s", w.Code, w.Body.String())
	}
	if w := doRequest(r, http.MethodGet, "/api/bookings/not-an-id", nil, sid); w.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", w.Code)
	}
}

func TestCreateBookingRejections(t *testing.T) {
	r := buildTestRouter(t)

	reversed := threeDayBooking()
	reversed["window"].(map[string]string)["returnDate"] = "2030-02-01"
	w := doRequest(r, http.MethodPost, "/api/bookings", reversed)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("reversed status = %d, want 422", w.Code)
	}
	body := decode[map[string]string](t, w)
	if body["reason"] != string(quote.ReasonReturnBeforePickup) || body["status"] != string(quote.StatusInvalid) {
		t.Errorf("reversed body = %v", body)
	}

	shortName := threeDayBooking()
	shortName["name"] = "A"
	if w := doRequest(r, http.MethodPost, "/api/bookings", shortName); w.Code != http.StatusBadRequest {
		t.Errorf("short name status = %d, want 400", w.Code)
	}

	unknownCar := threeDayBooking()
	unknownCar["carId"] = "c99"
	w = doRequest(r, http.MethodPost, "/api/bookings", unknownCar)
	if w.Code != http.StatusUnprocessableEntity || decode[map[string]string](t, w)["reason"] != string(quote.ReasonUnknownVehicle) {
		t.Errorf("unknown car = %d %s", w.Code, w.Body.String())
	}
}

func TestPaymentSummary(t *testing.T) {
	r := buildTestRouter(t)

	h := booking.Handoff{CarID: "c1", Days: 3, Amount: 4176, Addons: []string{"returnOtherBranch"}}
	w := doRequest(r, http.MethodGet, "/api"+h.URL("/payment"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	sum := decode[booking.PaymentSummary](t, w)
	if sum.DiscountPercent != 5 || sum.VehicleNet != 3676 || sum.TotalText != "4,176 บาท" {
		t.Errorf("summary = %+v", sum)
	}

	q := url.Values{"carId": {"c99"}}
	if w := doRequest(r, http.MethodGet, "/api/payment?"+q.Encode(), nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown car status = %d, want 404", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/payment", nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing car status = %d, want 400", w.Code)
	}
}
